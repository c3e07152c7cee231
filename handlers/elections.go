// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/CAPTURE751/STUDENT-organization-management-system/auth"
	"github.com/CAPTURE751/STUDENT-organization-management-system/cliparse"
	"github.com/CAPTURE751/STUDENT-organization-management-system/db"
	"github.com/CAPTURE751/STUDENT-organization-management-system/middleware"
	"github.com/CAPTURE751/STUDENT-organization-management-system/models"
	"github.com/CAPTURE751/STUDENT-organization-management-system/voting"
)

type ElectionHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewElectionHandler(db *sql.DB, cfg cliparse.Config) *ElectionHandler {
	return &ElectionHandler{db: db, cfg: cfg}
}

// ValidateDraft handles POST /elections/drafts/validate
// Walks the wizard as far as the draft allows and reports the field errors
// of every failing step.
func (h *ElectionHandler) ValidateDraft(w http.ResponseWriter, r *http.Request) {
	var draft voting.Draft
	if err := middleware.ParseJSONBody(w, r, &draft); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %v", err))
		return
	}

	wizard := voting.NewWizardFrom(draft)
	failing := wizard.ValidateAll()
	for wizard.Next() == nil {
	}

	resp := models.DraftValidationResponse{
		Valid:    len(failing) == 0,
		Step:     int(wizard.Step()),
		StepName: wizard.Step().String(),
		Progress: wizard.Progress(),
		Errors:   make(map[string][]voting.FieldError, len(failing)),
	}
	for step, fields := range failing {
		resp.Errors[step.String()] = fields
	}
	middleware.JSONResponse(w, http.StatusOK, resp)
}

// CreateElection handles POST /elections
// The electorate is fixed here: the pseudonyms of the organization's members
// admitted by the eligibility rules at creation time are stored alongside
// the election, and total voters is their number. Position and candidate
// ids are always minted by the server.
func (h *ElectionHandler) CreateElection(w http.ResponseWriter, r *http.Request) {
	var req models.CreateElectionRequest
	if !middleware.DecodeAndValidate(w, r, &req) {
		return
	}

	ctx := r.Context()
	if _, err := db.GetOrganization(ctx, h.db, req.OrganizationID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			middleware.ErrorResponse(w, http.StatusNotFound, "Organization not found")
			return
		}
		slog.Error("failed to query organization", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	election, err := voting.Complete(req.Draft.WithoutIDs())
	if err != nil {
		if fields := voting.Fields(err); len(fields) > 0 {
			middleware.ValidationErrorResponse(w, fields)
			return
		}
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if !election.EndsAt.After(election.StartsAt) {
		middleware.ValidationErrorResponse(w, []voting.FieldError{{Field: "details.ends_at", Error: "ends_at must be after starts_at"}})
		return
	}

	err = db.InTx(ctx, h.db, func(tx *sql.Tx) error {
		voters, err := db.EligibleMembers(ctx, tx, req.OrganizationID, election.Eligibility)
		if err != nil {
			return err
		}
		election.TotalVoters = len(voters)
		if err := db.InsertElection(ctx, tx, req.OrganizationID, election, time.Now()); err != nil {
			return err
		}
		return db.InsertElectorate(ctx, tx, election.ID, voters, func(memberID string) string {
			return auth.VoterHash(election.ID, memberID, h.cfg.ReceiptSalt)
		})
	})
	if err != nil {
		slog.Error("failed to create election", "error", err, "organization_id", req.OrganizationID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create election")
		return
	}

	if election.TotalVoters == 0 {
		slog.Warn("election created with no eligible voters", "election_id", election.ID)
	}
	slog.Info("election created",
		"election_id", election.ID,
		"organization_id", req.OrganizationID,
		"positions", len(election.Positions),
		"total_voters", election.TotalVoters,
	)

	middleware.JSONResponse(w, http.StatusCreated, models.CreateElectionResponse{
		ElectionID:  election.ID,
		TotalVoters: election.TotalVoters,
	})
}

// ListElections handles GET /elections?q=&org=&status=
func (h *ElectionHandler) ListElections(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	status := voting.Status(query.Get("status"))
	switch status {
	case "", voting.StatusUpcoming, voting.StatusActive, voting.StatusCompleted:
	default:
		middleware.ErrorResponse(w, http.StatusBadRequest, "status must be upcoming, active or completed")
		return
	}

	elections, err := db.ListElections(r.Context(), h.db, query.Get("org"))
	if err != nil {
		slog.Error("failed to list elections", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	byID := make(map[string]models.Election, len(elections))
	items := make([]voting.Item, 0, len(elections))
	for _, e := range elections {
		byID[e.ID] = e
		items = append(items, voting.ElectionItem(e.Election))
	}

	now := time.Now()
	summaries := []models.ElectionSummary{}
	for _, item := range voting.Filter(items, query.Get("q")) {
		e := byID[item.ID()]
		s := summarize(e, now)
		if status != "" && s.Status != status {
			continue
		}
		summaries = append(summaries, s)
	}
	middleware.JSONResponse(w, http.StatusOK, summaries)
}

// GetElection handles GET /elections/{id}
func (h *ElectionHandler) GetElection(w http.ResponseWriter, r *http.Request) {
	e, ok := loadElection(w, r, h.db)
	if !ok {
		return
	}
	middleware.JSONResponse(w, http.StatusOK, e)
}

func summarize(e models.Election, now time.Time) models.ElectionSummary {
	status := e.StatusAt(now)
	relative := humanize.Time(e.EndsAt)
	if status == voting.StatusUpcoming {
		relative = "starts " + humanize.Time(e.StartsAt)
	} else if status == voting.StatusActive {
		relative = "closes " + relative
	} else {
		relative = "ended " + relative
	}

	return models.ElectionSummary{
		ID:             e.ID,
		OrganizationID: e.OrganizationID,
		Title:          e.Title,
		Description:    e.Description,
		Type:           e.Type,
		Status:         status,
		StartsAt:       e.StartsAt,
		EndsAt:         e.EndsAt,
		TimeRemaining:  e.TimeRemaining(now),
		Relative:       relative,
		TotalVoters:    e.TotalVoters,
		VotedCount:     e.VotedCount,
		Turnout:        e.Turnout(),
		Positions:      len(e.Positions),
		Candidates:     e.CandidateCount(),
	}
}

// loadElection reads the {id} election and stamps its current status. It
// writes the 404 or 500 itself.
func loadElection(w http.ResponseWriter, r *http.Request, conn *sql.DB) (models.Election, bool) {
	id := r.PathValue("id")
	e, err := db.GetElection(r.Context(), conn, id)
	if errors.Is(err, db.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Election not found")
		return models.Election{}, false
	}
	if err != nil {
		slog.Error("failed to load election", "error", err, "election_id", id)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return models.Election{}, false
	}
	e.Status = e.StatusAt(time.Now())
	return e, true
}
