// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/CAPTURE751/STUDENT-organization-management-system/cache"
	"github.com/CAPTURE751/STUDENT-organization-management-system/cliparse"
	"github.com/CAPTURE751/STUDENT-organization-management-system/db"
	"github.com/CAPTURE751/STUDENT-organization-management-system/middleware"
	"github.com/CAPTURE751/STUDENT-organization-management-system/models"
	"github.com/CAPTURE751/STUDENT-organization-management-system/voting"
)

type ResultsHandler struct {
	db    *sql.DB
	cfg   cliparse.Config
	cache cache.Results
}

func NewResultsHandler(db *sql.DB, cfg cliparse.Config, results cache.Results) *ResultsHandler {
	if results == nil {
		results = cache.NewMemory()
	}
	return &ResultsHandler{db: db, cfg: cfg, cache: results}
}

// GetResults handles GET /elections/{id}/results?view=summary|detailed|analytics
// Returns 403 while the election is upcoming or active (results are sealed).
// Tallies of completed elections never change and are cached.
func (h *ResultsHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	view, err := voting.ParseViewMode(r.URL.Query().Get("view"))
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	e, ok := loadElection(w, r, h.db)
	if !ok {
		return
	}
	if e.Status != voting.StatusCompleted {
		middleware.ErrorResponse(w, http.StatusForbidden, "Results are hidden until the election ends")
		return
	}

	results, err := h.tabulate(r.Context(), e)
	if err != nil {
		slog.Error("failed to tabulate results", "error", err, "election_id", e.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to compute results")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, voting.BuildReport(e.Election, results, view))
}

func (h *ResultsHandler) tabulate(ctx context.Context, e models.Election) ([]voting.PositionResult, error) {
	if payload, ok, err := h.cache.Get(ctx, e.ID); err != nil {
		slog.Warn("results cache read failed", "error", err, "election_id", e.ID)
	} else if ok {
		var results []voting.PositionResult
		if err := json.Unmarshal(payload, &results); err == nil {
			return results, nil
		}
		slog.Warn("discarding unreadable cached results", "election_id", e.ID)
	}

	counts, err := db.CountVotes(ctx, h.db, e.ID)
	if err != nil {
		return nil, err
	}
	results := voting.Tabulate(e.Election, counts)

	if payload, err := json.Marshal(results); err == nil {
		if err := h.cache.Set(ctx, e.ID, payload); err != nil {
			slog.Warn("results cache write failed", "error", err, "election_id", e.ID)
		}
	}
	return results, nil
}
