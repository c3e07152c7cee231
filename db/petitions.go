// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/CAPTURE751/STUDENT-organization-management-system/models"
	"github.com/CAPTURE751/STUDENT-organization-management-system/voting"
)

func InsertPetition(ctx context.Context, q Queryer, orgID string, p voting.Petition) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO petition (id, organization_id, accused_leader, accused_role, violation, misconduct,
			evidence_url, threshold_percent, total_members, required_signatures, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, p.ID, orgID, p.AccusedLeader, p.AccusedRole, p.ConstitutionalViolation, p.MisconductDescription,
		p.EvidenceURL, p.ThresholdPercent, p.TotalMembers, p.RequiredSignatures, string(p.Status), p.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert petition: %w", err)
	}
	return nil
}

// The signature count is derived from petition_signature, never stored.
const petitionSelect = `
	SELECT p.id, p.organization_id, p.accused_leader, p.accused_role, p.violation, p.misconduct,
		p.evidence_url, p.threshold_percent, p.total_members, p.required_signatures, p.status,
		p.eligible_voters, p.quorum_percent, p.majority_percent, p.opened_at, p.closed_at, p.created_at,
		(SELECT COUNT(*) FROM petition_signature s WHERE s.petition_id = p.id)
	FROM petition p`

func scanPetition(s interface{ Scan(...any) error }) (models.Petition, error) {
	var p models.Petition
	var status string
	var opened, closed sql.NullTime
	err := s.Scan(&p.ID, &p.OrganizationID, &p.AccusedLeader, &p.AccusedRole, &p.ConstitutionalViolation,
		&p.MisconductDescription, &p.EvidenceURL, &p.ThresholdPercent, &p.TotalMembers, &p.RequiredSignatures,
		&status, &p.EligibleVoters, &p.QuorumPercent, &p.MajorityPercent, &opened, &closed, &p.CreatedAt,
		&p.Signatures)
	if err != nil {
		return models.Petition{}, err
	}
	p.Status = voting.PetitionStatus(status)
	if opened.Valid {
		p.OpenedAt = &opened.Time
	}
	if closed.Valid {
		p.ClosedAt = &closed.Time
	}
	p.Progress = p.Petition.Progress()
	p.Remaining = p.RemainingSignatures()
	p.SupportShare = p.Petition.SupportShare()
	return p, nil
}

func GetPetition(ctx context.Context, q Queryer, id string) (models.Petition, error) {
	p, err := scanPetition(q.QueryRowContext(ctx, petitionSelect+` WHERE p.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Petition{}, ErrNotFound
	}
	if err != nil {
		return models.Petition{}, fmt.Errorf("get petition: %w", err)
	}
	return p, nil
}

// ListPetitions returns petitions newest first, optionally for one
// organization.
func ListPetitions(ctx context.Context, q Queryer, orgID string) ([]models.Petition, error) {
	query := petitionSelect
	var args []any
	if orgID != "" {
		query += ` WHERE p.organization_id = $1`
		args = append(args, orgID)
	}
	query += ` ORDER BY p.created_at DESC, p.id`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list petitions: %w", err)
	}
	defer rows.Close()

	petitions := []models.Petition{}
	for rows.Next() {
		p, err := scanPetition(rows)
		if err != nil {
			return nil, fmt.Errorf("scan petition: %w", err)
		}
		petitions = append(petitions, p)
	}
	return petitions, rows.Err()
}

// AddSignature records a supporter. Signing twice fails with a unique
// violation.
func AddSignature(ctx context.Context, q Queryer, petitionID, memberID string, at time.Time) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO petition_signature (petition_id, member_id, signed_at) VALUES ($1, $2, $3)
	`, petitionID, memberID, at.UTC())
	if err != nil {
		return fmt.Errorf("add signature: %w", err)
	}
	return nil
}

func Supporters(ctx context.Context, q Queryer, petitionID string) ([]models.Supporter, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT s.member_id, m.name, s.signed_at
		FROM petition_signature s
		JOIN membership m ON m.id = s.member_id
		WHERE s.petition_id = $1
		ORDER BY s.signed_at, s.member_id
	`, petitionID)
	if err != nil {
		return nil, fmt.Errorf("list supporters: %w", err)
	}
	defer rows.Close()

	supporters := []models.Supporter{}
	for rows.Next() {
		var s models.Supporter
		if err := rows.Scan(&s.MemberID, &s.Name, &s.SignedAt); err != nil {
			return nil, fmt.Errorf("scan supporter: %w", err)
		}
		supporters = append(supporters, s)
	}
	return supporters, rows.Err()
}

// SetPetitionStatus moves a petition from one status to another. ErrStale
// means it was no longer in the from status.
func SetPetitionStatus(ctx context.Context, q Queryer, id string, from, to voting.PetitionStatus) error {
	err := expectOne(q.ExecContext(ctx, `
		UPDATE petition SET status = $1 WHERE id = $2 AND status = $3
	`, string(to), id, string(from)))
	if err != nil && !errors.Is(err, ErrStale) {
		return fmt.Errorf("update petition status: %w", err)
	}
	return err
}

// OpenPetitionVote moves a verified petition to voting and fixes the
// electorate and thresholds the tally will use.
func OpenPetitionVote(ctx context.Context, q Queryer, id string, eligible int, quorumPct, majorityPct float64, at time.Time) error {
	err := expectOne(q.ExecContext(ctx, `
		UPDATE petition
		SET status = $1, eligible_voters = $2, quorum_percent = $3, majority_percent = $4, opened_at = $5
		WHERE id = $6 AND status = $7
	`, string(voting.PetitionVoting), eligible, quorumPct, majorityPct, at.UTC(), id, string(voting.PetitionVerified)))
	if err != nil && !errors.Is(err, ErrStale) {
		return fmt.Errorf("open petition vote: %w", err)
	}
	return err
}

func ClosePetitionVote(ctx context.Context, q Queryer, id string, at time.Time) error {
	err := expectOne(q.ExecContext(ctx, `
		UPDATE petition SET status = $1, closed_at = $2 WHERE id = $3 AND status = $4
	`, string(voting.PetitionCompleted), at.UTC(), id, string(voting.PetitionVoting)))
	if err != nil && !errors.Is(err, ErrStale) {
		return fmt.Errorf("close petition vote: %w", err)
	}
	return err
}

// RegisterImpeachmentVoter claims the (petition, voter hash) slot.
func RegisterImpeachmentVoter(ctx context.Context, q Queryer, petitionID, voterHash string, at time.Time) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO impeachment_voter (petition_id, voter_hash, voted_at) VALUES ($1, $2, $3)
	`, petitionID, voterHash, at.UTC())
	if err != nil {
		return fmt.Errorf("register impeachment voter: %w", err)
	}
	return nil
}

func InsertImpeachmentVote(ctx context.Context, q Queryer, id, petitionID string, choice voting.Choice, at time.Time) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO impeachment_vote (id, petition_id, choice, cast_at) VALUES ($1, $2, $3, $4)
	`, id, petitionID, string(choice), at.UTC())
	if err != nil {
		return fmt.Errorf("insert impeachment vote: %w", err)
	}
	return nil
}

// CountImpeachmentVotes returns the impeach and dismiss totals.
func CountImpeachmentVotes(ctx context.Context, q Queryer, petitionID string) (impeach, dismiss int, err error) {
	rows, err := q.QueryContext(ctx, `
		SELECT choice, COUNT(*) FROM impeachment_vote WHERE petition_id = $1 GROUP BY choice
	`, petitionID)
	if err != nil {
		return 0, 0, fmt.Errorf("count impeachment votes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var choice string
		var n int
		if err := rows.Scan(&choice, &n); err != nil {
			return 0, 0, fmt.Errorf("scan impeachment count: %w", err)
		}
		switch voting.Choice(choice) {
		case voting.ChoiceImpeach:
			impeach = n
		case voting.ChoiceDismiss:
			dismiss = n
		}
	}
	return impeach, dismiss, rows.Err()
}
