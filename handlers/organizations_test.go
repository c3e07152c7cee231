// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/CAPTURE751/STUDENT-organization-management-system/models"
	"github.com/CAPTURE751/STUDENT-organization-management-system/testutil"
	"github.com/CAPTURE751/STUDENT-organization-management-system/voting"
)

func TestCreateOrganization(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewOrganizationHandler(db, testutil.GetTestConfig())

	tests := []struct {
		name           string
		body           any
		expectedStatus int
	}{
		{"valid", models.CreateOrganizationRequest{Name: "Chess Club", Type: "club"}, http.StatusCreated},
		{"blank name", models.CreateOrganizationRequest{Name: "   "}, http.StatusBadRequest},
		{"unknown field", map[string]string{"name": "X", "colour": "red"}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/organizations", tt.body, nil)
			w := httptest.NewRecorder()

			handler.CreateOrganization(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)
			if tt.expectedStatus == http.StatusCreated {
				var org models.Organization
				testutil.AssertJSON(t, w, &org)
				if org.ID == "" {
					t.Error("Expected organization ID")
				}
				if org.Name != "Chess Club" {
					t.Errorf("Expected name 'Chess Club', got %q", org.Name)
				}
			}
		})
	}
}

func TestAddMember(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewOrganizationHandler(db, testutil.GetTestConfig())
	orgID := testutil.CreateTestOrganization(t, db)

	tests := []struct {
		name           string
		orgID          string
		body           any
		expectedStatus int
		check          func(t *testing.T, m models.Member)
	}{
		{
			name:           "defaults to pending member",
			orgID:          orgID,
			body:           models.AddMemberRequest{Name: "Ada", Department: "Physics", AcademicYear: "Year 1"},
			expectedStatus: http.StatusCreated,
			check: func(t *testing.T, m models.Member) {
				if m.Status != voting.MemberPending {
					t.Errorf("Expected status pending, got %q", m.Status)
				}
				if m.Role != models.RoleMember {
					t.Errorf("Expected role member, got %q", m.Role)
				}
				if m.ID == "" {
					t.Error("Expected generated member ID")
				}
			},
		},
		{
			name:           "explicit id",
			orgID:          orgID,
			body:           models.AddMemberRequest{ID: "stu-1001", Name: "Grace", Status: voting.MemberActive, Role: "President"},
			expectedStatus: http.StatusCreated,
			check: func(t *testing.T, m models.Member) {
				if m.ID != "stu-1001" {
					t.Errorf("Expected id stu-1001, got %q", m.ID)
				}
				if m.Role != "president" {
					t.Errorf("Expected lowercased role, got %q", m.Role)
				}
			},
		},
		{
			name:           "duplicate id",
			orgID:          orgID,
			body:           models.AddMemberRequest{ID: "stu-1001", Name: "Grace again"},
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "malformed id",
			orgID:          orgID,
			body:           models.AddMemberRequest{ID: "has space", Name: "Bad"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "bad status",
			orgID:          orgID,
			body:           map[string]string{"name": "Bad", "status": "suspended"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unknown organization",
			orgID:          "nope",
			body:           models.AddMemberRequest{Name: "Ada"},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/organizations/"+tt.orgID+"/members", tt.body, nil)
			req.SetPathValue("id", tt.orgID)
			w := httptest.NewRecorder()

			handler.AddMember(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)
			if tt.check != nil && w.Code == tt.expectedStatus {
				var m models.Member
				testutil.AssertJSON(t, w, &m)
				tt.check(t, m)
			}
		})
	}
}

func TestListMembersAndLeaders(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewOrganizationHandler(db, testutil.GetTestConfig())
	orgID := testutil.CreateTestOrganization(t, db)

	testutil.AddTestMember(t, db, orgID, "Alice", voting.MemberActive, "president")
	testutil.AddTestMember(t, db, orgID, "Bob", voting.MemberActive, models.RoleMember)
	testutil.AddTestMember(t, db, orgID, "Carol", voting.MemberPending, models.RoleMember)

	list := func(query string) *httptest.ResponseRecorder {
		req := testutil.MakeRequest("GET", "/organizations/"+orgID+"/members"+query, nil, nil)
		req.SetPathValue("id", orgID)
		w := httptest.NewRecorder()
		handler.ListMembers(w, req)
		return w
	}

	w := list("")
	testutil.AssertStatus(t, w, http.StatusOK)
	var all []models.Member
	testutil.AssertJSON(t, w, &all)
	if len(all) != 3 {
		t.Errorf("Expected 3 members, got %d", len(all))
	}

	w = list("?status=active")
	testutil.AssertStatus(t, w, http.StatusOK)
	var active []models.Member
	testutil.AssertJSON(t, w, &active)
	if len(active) != 2 {
		t.Errorf("Expected 2 active members, got %d", len(active))
	}

	w = list("?status=banned")
	testutil.AssertStatus(t, w, http.StatusBadRequest)

	req := testutil.MakeRequest("GET", "/organizations/"+orgID+"/leaders", nil, nil)
	req.SetPathValue("id", orgID)
	w = httptest.NewRecorder()
	handler.ListLeaders(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	var leaders []models.Member
	testutil.AssertJSON(t, w, &leaders)
	if len(leaders) != 1 || leaders[0].Name != "Alice" {
		t.Errorf("Expected Alice as the only leader, got %+v", leaders)
	}
}
