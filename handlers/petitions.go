// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/CAPTURE751/STUDENT-organization-management-system/auth"
	"github.com/CAPTURE751/STUDENT-organization-management-system/cliparse"
	"github.com/CAPTURE751/STUDENT-organization-management-system/db"
	"github.com/CAPTURE751/STUDENT-organization-management-system/middleware"
	"github.com/CAPTURE751/STUDENT-organization-management-system/models"
	"github.com/CAPTURE751/STUDENT-organization-management-system/voting"
)

var errNotInElectorate = errors.New("member is not in the petition's electorate")

type PetitionHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewPetitionHandler(db *sql.DB, cfg cliparse.Config) *PetitionHandler {
	return &PetitionHandler{db: db, cfg: cfg}
}

// CreatePetition handles POST /petitions
// The signature requirement is sized from the organization's active
// members at filing time.
func (h *PetitionHandler) CreatePetition(w http.ResponseWriter, r *http.Request) {
	var req models.CreatePetitionRequest
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

	id, err := auth.GenerateID(8)
	if err != nil {
		slog.Error("failed to generate petition id", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create petition")
		return
	}

	var petition voting.Petition
	err = db.InTx(ctx, h.db, func(tx *sql.Tx) error {
		total, err := db.CountActiveMembers(ctx, tx, req.OrganizationID)
		if err != nil {
			return err
		}
		petition, err = voting.NewPetition(id, req.PetitionDraft, total, h.cfg.SignatureThreshold, time.Now().UTC())
		if err != nil {
			return err
		}
		return db.InsertPetition(ctx, tx, req.OrganizationID, petition)
	})
	if err != nil {
		if fields := voting.Fields(err); len(fields) > 0 {
			middleware.ValidationErrorResponse(w, fields)
			return
		}
		if errors.Is(err, voting.ErrNoMembers) {
			middleware.ErrorResponse(w, http.StatusConflict, "Organization has no active members")
			return
		}
		slog.Error("failed to create petition", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create petition")
		return
	}

	slog.Info("petition filed",
		"petition_id", petition.ID,
		"organization_id", req.OrganizationID,
		"required_signatures", petition.RequiredSignatures,
	)
	h.respondPetition(w, r, petition.ID, http.StatusCreated)
}

// ListPetitions handles GET /petitions?org=
func (h *PetitionHandler) ListPetitions(w http.ResponseWriter, r *http.Request) {
	petitions, err := db.ListPetitions(r.Context(), h.db, r.URL.Query().Get("org"))
	if err != nil {
		slog.Error("failed to list petitions", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, petitions)
}

// GetPetition handles GET /petitions/{id}
func (h *PetitionHandler) GetPetition(w http.ResponseWriter, r *http.Request) {
	h.respondPetition(w, r, r.PathValue("id"), http.StatusOK)
}

func (h *PetitionHandler) respondPetition(w http.ResponseWriter, r *http.Request, id string, status int) {
	p, ok := h.load(w, r, id)
	if !ok {
		return
	}
	supporters, err := db.Supporters(r.Context(), h.db, p.ID)
	if err != nil {
		slog.Error("failed to list supporters", "error", err, "petition_id", p.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	middleware.JSONResponse(w, status, models.PetitionDetail{Petition: p, Supporters: supporters})
}

// SignPetition handles POST /petitions/{id}/signatures
// Each active member of the organization may sign once. The petition is
// verified as soon as the threshold is reached; signing stays open until
// the vote opens.
func (h *PetitionHandler) SignPetition(w http.ResponseWriter, r *http.Request) {
	memberID, ok := middleware.MemberID(w, r)
	if !ok {
		return
	}
	p, ok := h.load(w, r, r.PathValue("id"))
	if !ok {
		return
	}
	if p.Status != voting.PetitionCollecting && p.Status != voting.PetitionVerified {
		middleware.ErrorResponse(w, http.StatusConflict, voting.ErrPetitionClosed.Error())
		return
	}
	if !h.activeMember(w, r, memberID, p.OrganizationID) {
		return
	}

	ctx := r.Context()
	err := db.InTx(ctx, h.db, func(tx *sql.Tx) error {
		if err := db.AddSignature(ctx, tx, p.ID, memberID, time.Now()); err != nil {
			if db.IsUniqueViolation(err) {
				return voting.ErrAlreadyVoted
			}
			return err
		}

		current, err := db.GetPetition(ctx, tx, p.ID)
		if err != nil {
			return err
		}
		wasCollecting := current.Status == voting.PetitionCollecting
		current.Signatures--
		if err := current.Petition.AddSignature(); err != nil {
			return err
		}
		if wasCollecting && current.Status == voting.PetitionVerified {
			err := db.SetPetitionStatus(ctx, tx, p.ID, voting.PetitionCollecting, voting.PetitionVerified)
			if err != nil && !errors.Is(err, db.ErrStale) {
				return err
			}
			slog.Info("petition verified", "petition_id", p.ID, "signatures", current.Signatures)
		}
		p = current
		return nil
	})
	switch {
	case err == nil:
	case errors.Is(err, voting.ErrAlreadyVoted):
		middleware.ErrorResponse(w, http.StatusConflict, "You have already signed this petition")
		return
	case errors.Is(err, voting.ErrPetitionClosed):
		middleware.ErrorResponse(w, http.StatusConflict, err.Error())
		return
	default:
		slog.Error("failed to sign petition", "error", err, "petition_id", p.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to sign petition")
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.SignatureResponse{
		Signatures: p.Signatures,
		Required:   p.RequiredSignatures,
		Progress:   p.Petition.Progress(),
		Status:     p.Status,
	})
}

// OpenVote handles POST /petitions/{id}/vote/open
// Fixes the electorate (the members active now) and the quorum and majority
// thresholds the tally will use. Only that electorate may vote.
func (h *PetitionHandler) OpenVote(w http.ResponseWriter, r *http.Request) {
	p, ok := h.load(w, r, r.PathValue("id"))
	if !ok {
		return
	}
	if err := p.Petition.OpenVote(); err != nil {
		middleware.ErrorResponse(w, http.StatusConflict, err.Error())
		return
	}

	ctx := r.Context()
	err := db.InTx(ctx, h.db, func(tx *sql.Tx) error {
		voters, err := db.EligibleMembers(ctx, tx, p.OrganizationID, voting.Eligibility{
			MembershipStatuses: []string{voting.MemberActive},
		})
		if err != nil {
			return err
		}
		if len(voters) == 0 {
			return voting.ErrNoMembers
		}
		err = db.OpenPetitionVote(ctx, tx, p.ID, len(voters), h.cfg.QuorumPercent, h.cfg.MajorityPercent, time.Now())
		if err != nil {
			return err
		}
		return db.InsertImpeachmentElectorate(ctx, tx, p.ID, voters, func(memberID string) string {
			return h.impeachmentVoter(p.ID, memberID)
		})
	})
	if errors.Is(err, db.ErrStale) {
		middleware.ErrorResponse(w, http.StatusConflict, "Petition changed; reload and try again")
		return
	}
	if errors.Is(err, voting.ErrNoMembers) {
		middleware.ErrorResponse(w, http.StatusConflict, "Organization has no active members")
		return
	}
	if err != nil {
		slog.Error("failed to open impeachment vote", "error", err, "petition_id", p.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to open vote")
		return
	}

	slog.Info("impeachment vote opened", "petition_id", p.ID)
	h.respondPetition(w, r, p.ID, http.StatusOK)
}

// CastVote handles POST /petitions/{id}/votes
func (h *PetitionHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	memberID, ok := middleware.MemberID(w, r)
	if !ok {
		return
	}

	var req models.CastVoteRequest
	if !middleware.DecodeAndValidate(w, r, &req) {
		return
	}

	p, ok := h.load(w, r, r.PathValue("id"))
	if !ok {
		return
	}
	if p.Status != voting.PetitionVoting {
		middleware.ErrorResponse(w, http.StatusConflict, voting.ErrNotVoting.Error())
		return
	}

	ballot := voting.NewImpeachmentBallot(p.ID)
	if err := ballot.Select(req.Choice); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	receipt, err := ballot.Submit(r.Context(), voting.VoteSubmitFunc(func(ctx context.Context, petitionID string, choice voting.Choice) (voting.Receipt, error) {
		return h.recordVote(ctx, petitionID, memberID, choice)
	}))
	switch {
	case err == nil:
	case errors.Is(err, voting.ErrAlreadyVoted):
		middleware.ErrorResponse(w, http.StatusConflict, "You have already voted on this petition")
		return
	case errors.Is(err, voting.ErrNotVoting):
		middleware.ErrorResponse(w, http.StatusConflict, err.Error())
		return
	case errors.Is(err, errNotInElectorate):
		middleware.ErrorResponse(w, http.StatusForbidden, "Not eligible to vote on this petition")
		return
	default:
		slog.Error("failed to record impeachment vote", "error", err, "petition_id", p.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to cast vote")
		return
	}

	slog.Info("impeachment vote cast", "petition_id", p.ID)
	middleware.JSONResponse(w, http.StatusCreated, models.CastVoteResponse{Receipt: receipt, Choice: ballot.Selected()})
}

func (h *PetitionHandler) recordVote(ctx context.Context, petitionID, memberID string, choice voting.Choice) (voting.Receipt, error) {
	voteID, err := auth.GenerateID(16)
	if err != nil {
		return voting.Receipt{}, err
	}
	receiptID, err := auth.GenerateReceipt()
	if err != nil {
		return voting.Receipt{}, err
	}

	now := time.Now()
	err = db.InTx(ctx, h.db, func(tx *sql.Tx) error {
		current, err := db.GetPetition(ctx, tx, petitionID)
		if err != nil {
			return err
		}
		if current.Status != voting.PetitionVoting {
			return voting.ErrNotVoting
		}
		voterHash := h.impeachmentVoter(petitionID, memberID)
		eligible, err := db.InImpeachmentElectorate(ctx, tx, petitionID, voterHash)
		if err != nil {
			return err
		}
		if !eligible {
			return errNotInElectorate
		}
		if err := db.RegisterImpeachmentVoter(ctx, tx, petitionID, voterHash, now); err != nil {
			if db.IsUniqueViolation(err) {
				return voting.ErrAlreadyVoted
			}
			return err
		}
		return db.InsertImpeachmentVote(ctx, tx, voteID, petitionID, choice, now)
	})
	if err != nil {
		return voting.Receipt{}, err
	}
	return voting.Receipt{ID: receiptID, SubmittedAt: now.UTC(), Selected: 1, Total: 1}, nil
}

// Tally handles GET /petitions/{id}/tally
func (h *PetitionHandler) Tally(w http.ResponseWriter, r *http.Request) {
	p, ok := h.load(w, r, r.PathValue("id"))
	if !ok {
		return
	}
	if p.Status != voting.PetitionVoting && p.Status != voting.PetitionCompleted {
		middleware.ErrorResponse(w, http.StatusConflict, voting.ErrNotVoting.Error())
		return
	}

	summary, err := h.tally(r.Context(), p)
	if err != nil {
		slog.Error("failed to tally impeachment vote", "error", err, "petition_id", p.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, summary)
}

// CloseVote handles POST /petitions/{id}/vote/close and returns the final
// tally.
func (h *PetitionHandler) CloseVote(w http.ResponseWriter, r *http.Request) {
	p, ok := h.load(w, r, r.PathValue("id"))
	if !ok {
		return
	}
	if err := p.Petition.CloseVote(); err != nil {
		middleware.ErrorResponse(w, http.StatusConflict, err.Error())
		return
	}

	err := db.ClosePetitionVote(r.Context(), h.db, p.ID, time.Now())
	if errors.Is(err, db.ErrStale) {
		middleware.ErrorResponse(w, http.StatusConflict, voting.ErrNotVoting.Error())
		return
	}
	if err != nil {
		slog.Error("failed to close impeachment vote", "error", err, "petition_id", p.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to close vote")
		return
	}

	summary, err := h.tally(r.Context(), p)
	if err != nil {
		slog.Error("failed to tally impeachment vote", "error", err, "petition_id", p.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	slog.Info("impeachment vote closed", "petition_id", p.ID, "impeached", summary.Impeached)
	middleware.JSONResponse(w, http.StatusOK, summary)
}

func (h *PetitionHandler) tally(ctx context.Context, p models.Petition) (voting.TallySummary, error) {
	impeach, dismiss, err := db.CountImpeachmentVotes(ctx, h.db, p.ID)
	if err != nil {
		return voting.TallySummary{}, err
	}
	t := voting.NewTally(p.EligibleVoters, impeach, dismiss, p.QuorumPercent, p.MajorityPercent)
	return t.Summary(time.Now().UTC()), nil
}

// impeachmentVoter keys a member to one petition's vote, apart from the
// hashes used for elections.
func (h *PetitionHandler) impeachmentVoter(petitionID, memberID string) string {
	return auth.VoterHash("impeachment:"+petitionID, memberID, h.cfg.ReceiptSalt)
}

func (h *PetitionHandler) load(w http.ResponseWriter, r *http.Request, id string) (models.Petition, bool) {
	p, err := db.GetPetition(r.Context(), h.db, id)
	if errors.Is(err, db.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Petition not found")
		return models.Petition{}, false
	}
	if err != nil {
		slog.Error("failed to load petition", "error", err, "petition_id", id)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return models.Petition{}, false
	}
	return p, true
}

// activeMember writes 403 unless memberID is an active member of orgID.
func (h *PetitionHandler) activeMember(w http.ResponseWriter, r *http.Request, memberID, orgID string) bool {
	m, err := db.GetMember(r.Context(), h.db, memberID)
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		slog.Error("failed to load member", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return false
	}
	if errors.Is(err, db.ErrNotFound) || m.OrganizationID != orgID {
		middleware.ErrorResponse(w, http.StatusForbidden, "Not a member of this organization")
		return false
	}
	if m.Status != voting.MemberActive {
		middleware.ErrorResponse(w, http.StatusForbidden, "Only active members may take part")
		return false
	}
	return true
}
