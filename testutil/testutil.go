// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/CAPTURE751/STUDENT-organization-management-system/auth"
	"github.com/CAPTURE751/STUDENT-organization-management-system/cliparse"
	"github.com/CAPTURE751/STUDENT-organization-management-system/db"
	"github.com/CAPTURE751/STUDENT-organization-management-system/models"
	"github.com/CAPTURE751/STUDENT-organization-management-system/voting"
)

// SetupTestDB opens a private in-memory SQLite database with the full
// schema. It is closed when the test ends.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	ctx := context.Background()
	conn, err := db.Open(ctx, "sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(ctx, conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}
	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:               3318,
		DatabaseURL:        ":memory:",
		DatabaseType:       "sqlite",
		ReceiptSalt:        "test-receipt-salt",
		SubmitDelay:        0,
		SignatureThreshold: voting.DefaultSignatureThreshold,
		QuorumPercent:      voting.DefaultQuorumPercent,
		MajorityPercent:    voting.DefaultMajorityPercent,
		RateLimit:          1000,
		RateBurst:          1000,
	}
}

// CreateTestOrganization inserts an organization and returns its ID
func CreateTestOrganization(t *testing.T, conn *sql.DB) string {
	t.Helper()

	id, _ := auth.GenerateID(8)
	err := db.InsertOrganization(context.Background(), conn, models.Organization{
		ID:        id,
		Name:      "Test Society",
		Type:      "club",
		CreatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("Failed to create test organization: %v", err)
	}
	return id
}

// AddTestMember adds a member with the given status and role. Empty
// department and year are filled with "Physics" and "Year 2".
func AddTestMember(t *testing.T, conn *sql.DB, orgID, name, status, role string) string {
	t.Helper()

	id, _ := auth.GenerateID(8)
	err := db.InsertMember(context.Background(), conn, models.Member{
		ID:             id,
		OrganizationID: orgID,
		Name:           name,
		Department:     "Physics",
		AcademicYear:   "Year 2",
		Role:           role,
		Status:         status,
		JoinedAt:       time.Now(),
	})
	if err != nil {
		t.Fatalf("Failed to create test member: %v", err)
	}
	return id
}

// AddTestMembers adds n active plain members and returns their IDs
func AddTestMembers(t *testing.T, conn *sql.DB, orgID string, n int) []string {
	t.Helper()

	ids := make([]string, n)
	for i := range n {
		ids[i] = AddTestMember(t, conn, orgID, fmt.Sprintf("Member %03d", i), voting.MemberActive, models.RoleMember)
	}
	return ids
}

// CreateTestElection stores an election whose window puts it in the given
// status ("upcoming", "active" or "completed"). It has two positions,
// "<id>-pres" and "<id>-sec", each with candidates "-a" and "-b".
// The electorate is the org's eligible members at this point, hashed with
// the GetTestConfig salt; totalVoters is stored as given.
func CreateTestElection(t *testing.T, conn *sql.DB, orgID string, status voting.Status, totalVoters int) voting.Election {
	t.Helper()

	now := time.Now().UTC().Truncate(time.Second)
	var start, end time.Time
	switch status {
	case voting.StatusUpcoming:
		start, end = now.Add(time.Hour), now.Add(2*time.Hour)
	case voting.StatusActive:
		start, end = now.Add(-time.Hour), now.Add(time.Hour)
	case voting.StatusCompleted:
		start, end = now.Add(-2*time.Hour), now.Add(-time.Hour)
	default:
		t.Fatalf("unknown election status %q", status)
	}

	id, _ := auth.GenerateID(8)
	position := func(key, title string) voting.Position {
		pid := id + "-" + key
		return voting.Position{
			ID:    pid,
			Title: title,
			Candidates: []voting.Candidate{
				{ID: pid + "-a", Name: title + " A"},
				{ID: pid + "-b", Name: title + " B"},
			},
		}
	}

	e := voting.Election{
		ID:          id,
		Title:       "Test Election " + id,
		Description: "A test election",
		Type:        voting.TypeGeneral,
		VotingRule:  voting.RuleSingle,
		AutoClose:   true,
		StartsAt:    start,
		EndsAt:      end,
		TotalVoters: totalVoters,
		Positions:   []voting.Position{position("pres", "President"), position("sec", "Secretary")},
		Eligibility: voting.DefaultEligibility(),
	}
	ctx := context.Background()
	err := db.InTx(ctx, conn, func(tx *sql.Tx) error {
		voters, err := db.EligibleMembers(ctx, tx, orgID, e.Eligibility)
		if err != nil {
			return err
		}
		if err := db.InsertElection(ctx, tx, orgID, e, now); err != nil {
			return err
		}
		salt := GetTestConfig().ReceiptSalt
		return db.InsertElectorate(ctx, tx, e.ID, voters, func(memberID string) string {
			return auth.VoterHash(e.ID, memberID, salt)
		})
	})
	if err != nil {
		t.Fatalf("Failed to create test election: %v", err)
	}
	return e
}

// CastTestBallot records a ballot for a member the way the ballot handler
// does, bypassing HTTP.
func CastTestBallot(t *testing.T, conn *sql.DB, cfg cliparse.Config, electionID, memberID string, selections map[string]string) {
	t.Helper()

	ctx := context.Background()
	err := db.InTx(ctx, conn, func(tx *sql.Tx) error {
		now := time.Now()
		if err := db.RegisterVoter(ctx, tx, electionID, auth.VoterHash(electionID, memberID, cfg.ReceiptSalt), now); err != nil {
			return err
		}
		ballotID, _ := auth.GenerateID(16)
		if err := db.InsertBallot(ctx, tx, ballotID, electionID, selections, now); err != nil {
			return err
		}
		return db.IncrementVoted(ctx, tx, electionID)
	})
	if err != nil {
		t.Fatalf("Failed to cast test ballot: %v", err)
	}
}

// CreateTestPetition stores a collecting petition sized against
// totalMembers with the configured signature threshold.
func CreateTestPetition(t *testing.T, conn *sql.DB, cfg cliparse.Config, orgID string, totalMembers int) voting.Petition {
	t.Helper()

	id, _ := auth.GenerateID(8)
	p, err := voting.NewPetition(id, voting.PetitionDraft{
		AccusedLeader:           "Sam Smith",
		AccusedRole:             "Treasurer",
		ConstitutionalViolation: "Article 4.2",
		MisconductDescription:   "Spent club funds without approval.",
	}, totalMembers, cfg.SignatureThreshold, time.Now())
	if err != nil {
		t.Fatalf("Failed to build test petition: %v", err)
	}
	if err := db.InsertPetition(context.Background(), conn, orgID, p); err != nil {
		t.Fatalf("Failed to create test petition: %v", err)
	}
	return p
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body any, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// MemberHeader is the header map identifying a member
func MemberHeader(memberID string) map[string]string {
	return map[string]string{"X-Member-ID": memberID}
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
