// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/CAPTURE751/STUDENT-organization-management-system/auth"
	"github.com/CAPTURE751/STUDENT-organization-management-system/cliparse"
	"github.com/CAPTURE751/STUDENT-organization-management-system/db"
	"github.com/CAPTURE751/STUDENT-organization-management-system/live"
	"github.com/CAPTURE751/STUDENT-organization-management-system/middleware"
	"github.com/CAPTURE751/STUDENT-organization-management-system/models"
	"github.com/CAPTURE751/STUDENT-organization-management-system/voting"
)

var (
	errElectionClosed = errors.New("election closed before the ballot was recorded")
	errElectorateFull = errors.New("every eligible voter has already voted")
)

type BallotHandler struct {
	db  *sql.DB
	cfg cliparse.Config
	hub *live.Hub
}

func NewBallotHandler(db *sql.DB, cfg cliparse.Config, hub *live.Hub) *BallotHandler {
	return &BallotHandler{db: db, cfg: cfg, hub: hub}
}

// SubmitBallot handles POST /elections/{id}/ballots
// The voter is identified by X-Member-ID. Only a keyed hash of the member id
// is stored, in voter_registry; the ballot rows carry no voter column.
func (h *BallotHandler) SubmitBallot(w http.ResponseWriter, r *http.Request) {
	memberID, ok := middleware.MemberID(w, r)
	if !ok {
		return
	}

	var req models.SubmitBallotRequest
	if !middleware.DecodeAndValidate(w, r, &req) {
		return
	}

	e, ok := loadElection(w, r, h.db)
	if !ok {
		return
	}

	switch e.Status {
	case voting.StatusUpcoming:
		middleware.ErrorResponse(w, http.StatusConflict, "Election has not started yet")
		return
	case voting.StatusCompleted:
		middleware.ErrorResponse(w, http.StatusConflict, "Election has ended")
		return
	}

	if _, err := voting.NewBooth(e.Election); err != nil {
		middleware.ErrorResponse(w, http.StatusConflict, err.Error())
		return
	}
	if err := e.CheckSelections(req.Selections); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	// The electorate was fixed when the election was created; members who
	// joined or changed status since then are not in it.
	voterHash := auth.VoterHash(e.ID, memberID, h.cfg.ReceiptSalt)
	eligible, err := db.InElectorate(r.Context(), h.db, e.ID, voterHash)
	if err != nil {
		slog.Error("failed to check electorate", "error", err, "election_id", e.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if !eligible {
		middleware.ErrorResponse(w, http.StatusForbidden, "Not eligible to vote in this election")
		return
	}

	// Fail fast before the submit delay; the registry insert still decides.
	voted, err := db.HasVoted(r.Context(), h.db, e.ID, voterHash)
	if err != nil {
		slog.Error("failed to check voter registry", "error", err, "election_id", e.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if voted {
		middleware.ErrorResponse(w, http.StatusConflict, "You have already voted in this election")
		return
	}

	record := voting.BallotSubmitFunc(func(ctx context.Context, electionID string, selections map[string]string) (voting.Receipt, error) {
		return h.record(ctx, e, memberID, selections)
	})

	receipt, err := voting.Delayed(h.cfg.SubmitDelay, record).SubmitBallot(r.Context(), e.ID, req.Selections)
	switch {
	case err == nil:
	case errors.Is(err, voting.ErrAlreadyVoted):
		middleware.ErrorResponse(w, http.StatusConflict, "You have already voted in this election")
		return
	case errors.Is(err, errElectionClosed):
		middleware.ErrorResponse(w, http.StatusConflict, "Election has ended")
		return
	case errors.Is(err, errElectorateFull):
		middleware.ErrorResponse(w, http.StatusConflict, err.Error())
		return
	case errors.Is(err, context.Canceled):
		slog.Info("ballot submission cancelled", "election_id", e.ID)
		return
	default:
		slog.Error("failed to record ballot", "error", err, "election_id", e.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to submit ballot")
		return
	}

	if h.hub != nil {
		// The ballot is committed; a failed turnout read only skips the push.
		if update, err := h.turnout(r.Context(), e.ID); err != nil {
			slog.Warn("failed to read turnout", "error", err, "election_id", e.ID)
		} else {
			h.hub.Broadcast(update)
		}
	}

	slog.Info("ballot submitted", "election_id", e.ID, "selected", receipt.Selected, "positions", receipt.Total)

	middleware.JSONResponse(w, http.StatusCreated, models.SubmitBallotResponse{
		Receipt: receipt,
		Message: fmt.Sprintf("You voted for %d out of %d positions", receipt.Selected, receipt.Total),
	})
}

// record claims the voter slot, stores the ballot and bumps the turnout in
// one transaction.
func (h *BallotHandler) record(ctx context.Context, e models.Election, memberID string, selections map[string]string) (voting.Receipt, error) {
	now := time.Now()
	if e.StatusAt(now) != voting.StatusActive {
		return voting.Receipt{}, errElectionClosed
	}

	ballotID, err := auth.GenerateID(16)
	if err != nil {
		return voting.Receipt{}, err
	}
	receiptID, err := auth.GenerateReceipt()
	if err != nil {
		return voting.Receipt{}, err
	}

	err = db.InTx(ctx, h.db, func(tx *sql.Tx) error {
		voterHash := auth.VoterHash(e.ID, memberID, h.cfg.ReceiptSalt)
		if err := db.RegisterVoter(ctx, tx, e.ID, voterHash, now); err != nil {
			if db.IsUniqueViolation(err) {
				return voting.ErrAlreadyVoted
			}
			return err
		}
		if err := db.InsertBallot(ctx, tx, ballotID, e.ID, selections, now); err != nil {
			return err
		}
		if err := db.IncrementVoted(ctx, tx, e.ID); err != nil {
			if errors.Is(err, db.ErrStale) {
				return errElectorateFull
			}
			return err
		}
		return nil
	})
	if err != nil {
		return voting.Receipt{}, err
	}

	return voting.Receipt{
		ID:          receiptID,
		SubmittedAt: now.UTC(),
		Selected:    len(selections),
		Total:       len(e.Positions),
	}, nil
}

func (h *BallotHandler) turnout(ctx context.Context, electionID string) (models.LiveUpdate, error) {
	voted, total, err := db.Turnout(ctx, h.db, electionID)
	if err != nil {
		return models.LiveUpdate{}, err
	}
	e := voting.Election{VotedCount: voted, TotalVoters: total}
	return models.LiveUpdate{
		ElectionID:  electionID,
		VotedCount:  voted,
		TotalVoters: total,
		Turnout:     e.Turnout(),
		At:          time.Now().UTC(),
	}, nil
}

// Live handles GET /elections/{id}/live
// Upgrades to a websocket that receives a turnout update after every ballot.
func (h *BallotHandler) Live(w http.ResponseWriter, r *http.Request) {
	e, ok := loadElection(w, r, h.db)
	if !ok {
		return
	}

	snapshot := models.LiveUpdate{
		ElectionID:  e.ID,
		VotedCount:  e.VotedCount,
		TotalVoters: e.TotalVoters,
		Turnout:     e.Turnout(),
		At:          time.Now().UTC(),
	}
	if err := h.hub.ServeWS(w, r, e.ID, snapshot); err != nil {
		slog.Warn("live upgrade failed", "error", err, "election_id", e.ID)
	}
}
