// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/CAPTURE751/STUDENT-organization-management-system/auth"
	"github.com/CAPTURE751/STUDENT-organization-management-system/cliparse"
	"github.com/CAPTURE751/STUDENT-organization-management-system/db"
	"github.com/CAPTURE751/STUDENT-organization-management-system/middleware"
	"github.com/CAPTURE751/STUDENT-organization-management-system/models"
	"github.com/CAPTURE751/STUDENT-organization-management-system/voting"
)

var memberStatuses = []string{voting.MemberPending, voting.MemberActive, voting.MemberInactive, voting.MemberRejected}

type OrganizationHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewOrganizationHandler(db *sql.DB, cfg cliparse.Config) *OrganizationHandler {
	return &OrganizationHandler{db: db, cfg: cfg}
}

// CreateOrganization handles POST /organizations
func (h *OrganizationHandler) CreateOrganization(w http.ResponseWriter, r *http.Request) {
	var req models.CreateOrganizationRequest
	if !middleware.DecodeAndValidate(w, r, &req) {
		return
	}

	id, err := auth.GenerateID(8)
	if err != nil {
		slog.Error("failed to generate organization id", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create organization")
		return
	}

	org := models.Organization{
		ID:        id,
		Name:      strings.TrimSpace(req.Name),
		Type:      strings.TrimSpace(req.Type),
		CreatedAt: time.Now().UTC(),
	}
	if err := db.InsertOrganization(r.Context(), h.db, org); err != nil {
		slog.Error("failed to insert organization", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create organization")
		return
	}

	slog.Info("organization created", "organization_id", org.ID)
	middleware.JSONResponse(w, http.StatusCreated, org)
}

// AddMember handles POST /organizations/{id}/members
func (h *OrganizationHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	orgID := r.PathValue("id")
	if !h.organizationExists(w, r, orgID) {
		return
	}

	var req models.AddMemberRequest
	if !middleware.DecodeAndValidate(w, r, &req) {
		return
	}

	member := models.Member{
		OrganizationID: orgID,
		Name:           strings.TrimSpace(req.Name),
		Email:          req.Email,
		Department:     strings.TrimSpace(req.Department),
		AcademicYear:   strings.TrimSpace(req.AcademicYear),
		Gender:         req.Gender,
		Role:           strings.ToLower(strings.TrimSpace(req.Role)),
		Status:         req.Status,
		JoinedAt:       time.Now().UTC(),
	}
	if member.Role == "" {
		member.Role = models.RoleMember
	}
	if member.Status == "" {
		member.Status = voting.MemberPending
	}

	var err error
	if req.ID != "" {
		member.ID, err = auth.ParseMemberID(req.ID)
		if err != nil {
			middleware.ValidationErrorResponse(w, []voting.FieldError{{Field: "id", Error: err.Error()}})
			return
		}
	} else if member.ID, err = auth.GenerateID(8); err != nil {
		slog.Error("failed to generate member id", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to add member")
		return
	}

	if err := db.InsertMember(r.Context(), h.db, member); err != nil {
		if db.IsUniqueViolation(err) {
			middleware.ErrorResponse(w, http.StatusConflict, "Member ID already in use")
			return
		}
		slog.Error("failed to insert member", "error", err, "organization_id", orgID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to add member")
		return
	}

	slog.Info("member added", "organization_id", orgID, "member_id", member.ID, "status", member.Status)
	middleware.JSONResponse(w, http.StatusCreated, member)
}

// ListMembers handles GET /organizations/{id}/members?status=
func (h *OrganizationHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	orgID := r.PathValue("id")
	status := r.URL.Query().Get("status")
	if status != "" && !slices.Contains(memberStatuses, status) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "status must be one of "+strings.Join(memberStatuses, ", "))
		return
	}
	if !h.organizationExists(w, r, orgID) {
		return
	}

	members, err := db.ListMembers(r.Context(), h.db, orgID, status)
	if err != nil {
		slog.Error("failed to list members", "error", err, "organization_id", orgID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, members)
}

// ListLeaders handles GET /organizations/{id}/leaders
// Leaders are the members a petition can be raised against.
func (h *OrganizationHandler) ListLeaders(w http.ResponseWriter, r *http.Request) {
	orgID := r.PathValue("id")
	if !h.organizationExists(w, r, orgID) {
		return
	}

	leaders, err := db.Leaders(r.Context(), h.db, orgID)
	if err != nil {
		slog.Error("failed to list leaders", "error", err, "organization_id", orgID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, leaders)
}

func (h *OrganizationHandler) organizationExists(w http.ResponseWriter, r *http.Request, orgID string) bool {
	_, err := db.GetOrganization(r.Context(), h.db, orgID)
	if errors.Is(err, db.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Organization not found")
		return false
	}
	if err != nil {
		slog.Error("failed to query organization", "error", err, "organization_id", orgID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return false
	}
	return true
}
