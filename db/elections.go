// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/CAPTURE751/STUDENT-organization-management-system/models"
	"github.com/CAPTURE751/STUDENT-organization-management-system/voting"
)

// InsertElection stores an election with its positions and candidates,
// keeping their order. Run it inside a transaction.
func InsertElection(ctx context.Context, q Queryer, orgID string, e voting.Election, createdAt time.Time) error {
	eligibility, err := json.Marshal(e.Eligibility)
	if err != nil {
		return fmt.Errorf("encode eligibility: %w", err)
	}

	_, err = q.ExecContext(ctx, `
		INSERT INTO election (id, organization_id, title, description, type, voting_rule, auto_close,
			starts_at, ends_at, total_voters, voted_count, eligibility, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, e.ID, orgID, e.Title, e.Description, string(e.Type), string(e.VotingRule), e.AutoClose,
		e.StartsAt.UTC(), e.EndsAt.UTC(), e.TotalVoters, e.VotedCount, string(eligibility), createdAt.UTC())
	if err != nil {
		return fmt.Errorf("insert election: %w", err)
	}

	for i, p := range e.Positions {
		_, err := q.ExecContext(ctx, `
			INSERT INTO election_position (id, election_id, title, description, sort_order)
			VALUES ($1, $2, $3, $4, $5)
		`, p.ID, e.ID, p.Title, p.Description, i)
		if err != nil {
			return fmt.Errorf("insert position: %w", err)
		}
		for j, c := range p.Candidates {
			_, err := q.ExecContext(ctx, `
				INSERT INTO candidate (id, position_id, name, department, academic_year, manifesto, photo_url, sort_order)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			`, c.ID, p.ID, c.Name, c.Department, c.AcademicYear, c.Manifesto, c.PhotoURL, j)
			if err != nil {
				return fmt.Errorf("insert candidate: %w", err)
			}
		}
	}
	return nil
}

const electionColumns = `id, organization_id, title, description, type, voting_rule, auto_close,
	starts_at, ends_at, total_voters, voted_count, eligibility, created_at`

func scanElection(s interface{ Scan(...any) error }) (models.Election, error) {
	var e models.Election
	var typ, rule, eligibility string
	err := s.Scan(&e.ID, &e.OrganizationID, &e.Title, &e.Description, &typ, &rule, &e.AutoClose,
		&e.StartsAt, &e.EndsAt, &e.TotalVoters, &e.VotedCount, &eligibility, &e.CreatedAt)
	if err != nil {
		return models.Election{}, err
	}
	e.Type = voting.ElectionType(typ)
	e.VotingRule = voting.VotingRule(rule)
	if err := json.Unmarshal([]byte(eligibility), &e.Eligibility); err != nil {
		return models.Election{}, fmt.Errorf("decode eligibility: %w", err)
	}
	return e, nil
}

// GetElection loads an election with its ordered positions and candidates.
// Status is left for the caller to derive.
func GetElection(ctx context.Context, q Queryer, id string) (models.Election, error) {
	e, err := scanElection(q.QueryRowContext(ctx, `
		SELECT `+electionColumns+` FROM election WHERE id = $1
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Election{}, ErrNotFound
	}
	if err != nil {
		return models.Election{}, fmt.Errorf("get election: %w", err)
	}

	if e.Positions, err = loadPositions(ctx, q, id); err != nil {
		return models.Election{}, err
	}
	return e, nil
}

func loadPositions(ctx context.Context, q Queryer, electionID string) ([]voting.Position, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT p.id, p.title, p.description, c.id, c.name, c.department, c.academic_year, c.manifesto, c.photo_url
		FROM election_position p
		LEFT JOIN candidate c ON c.position_id = p.id
		WHERE p.election_id = $1
		ORDER BY p.sort_order, c.sort_order
	`, electionID)
	if err != nil {
		return nil, fmt.Errorf("load positions: %w", err)
	}
	defer rows.Close()

	positions := []voting.Position{}
	for rows.Next() {
		var p voting.Position
		var cID, cName, cDept, cYear, cManifesto, cPhoto sql.NullString
		if err := rows.Scan(&p.ID, &p.Title, &p.Description, &cID, &cName, &cDept, &cYear, &cManifesto, &cPhoto); err != nil {
			return nil, fmt.Errorf("scan position: %w", err)
		}
		if n := len(positions); n == 0 || positions[n-1].ID != p.ID {
			p.Candidates = []voting.Candidate{}
			positions = append(positions, p)
		}
		if cID.Valid {
			last := &positions[len(positions)-1]
			last.Candidates = append(last.Candidates, voting.Candidate{
				ID:           cID.String,
				Name:         cName.String,
				Department:   cDept.String,
				AcademicYear: cYear.String,
				Manifesto:    cManifesto.String,
				PhotoURL:     cPhoto.String,
			})
		}
	}
	return positions, rows.Err()
}

// ListElections returns elections newest first, optionally for one
// organization, each with its positions loaded.
func ListElections(ctx context.Context, q Queryer, orgID string) ([]models.Election, error) {
	query := `SELECT ` + electionColumns + ` FROM election`
	var args []any
	if orgID != "" {
		query += ` WHERE organization_id = $1`
		args = append(args, orgID)
	}
	query += ` ORDER BY starts_at DESC, id`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list elections: %w", err)
	}
	elections := []models.Election{}
	for rows.Next() {
		e, err := scanElection(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan election: %w", err)
		}
		elections = append(elections, e)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Positions are loaded after the cursor is closed; SQLite runs with a
	// single connection.
	for i := range elections {
		if elections[i].Positions, err = loadPositions(ctx, q, elections[i].ID); err != nil {
			return nil, err
		}
	}
	return elections, nil
}

// RegisterVoter claims the (election, voter hash) slot. A second claim
// fails with a unique violation.
func RegisterVoter(ctx context.Context, q Queryer, electionID, voterHash string, at time.Time) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO voter_registry (election_id, voter_hash, voted_at)
		VALUES ($1, $2, $3)
	`, electionID, voterHash, at.UTC())
	if err != nil {
		return fmt.Errorf("register voter: %w", err)
	}
	return nil
}

// HasVoted reports whether the voter hash is already registered.
func HasVoted(ctx context.Context, q Queryer, electionID, voterHash string) (bool, error) {
	var exists bool
	err := q.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM voter_registry WHERE election_id = $1 AND voter_hash = $2)
	`, electionID, voterHash).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check voter: %w", err)
	}
	return exists, nil
}

// InsertBallot appends an anonymous ballot and its selections.
func InsertBallot(ctx context.Context, q Queryer, ballotID, electionID string, selections map[string]string, at time.Time) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO ballot (id, election_id, submitted_at) VALUES ($1, $2, $3)
	`, ballotID, electionID, at.UTC())
	if err != nil {
		return fmt.Errorf("insert ballot: %w", err)
	}
	for positionID, candidateID := range selections {
		_, err := q.ExecContext(ctx, `
			INSERT INTO ballot_selection (ballot_id, position_id, candidate_id) VALUES ($1, $2, $3)
		`, ballotID, positionID, candidateID)
		if err != nil {
			return fmt.Errorf("insert selection: %w", err)
		}
	}
	return nil
}

// IncrementVoted bumps voted_count unless it already equals total_voters,
// in which case ErrStale is returned.
func IncrementVoted(ctx context.Context, q Queryer, electionID string) error {
	err := expectOne(q.ExecContext(ctx, `
		UPDATE election SET voted_count = voted_count + 1
		WHERE id = $1 AND voted_count < total_voters
	`, electionID))
	if err != nil && !errors.Is(err, ErrStale) {
		return fmt.Errorf("increment voted count: %w", err)
	}
	return err
}

// CountVotes returns the stored vote counts per position and candidate.
func CountVotes(ctx context.Context, q Queryer, electionID string) (voting.Counts, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT s.position_id, s.candidate_id, COUNT(*)
		FROM ballot_selection s
		JOIN ballot b ON b.id = s.ballot_id
		WHERE b.election_id = $1
		GROUP BY s.position_id, s.candidate_id
	`, electionID)
	if err != nil {
		return nil, fmt.Errorf("count votes: %w", err)
	}
	defer rows.Close()

	counts := voting.Counts{}
	for rows.Next() {
		var positionID, candidateID string
		var n int
		if err := rows.Scan(&positionID, &candidateID, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		if counts[positionID] == nil {
			counts[positionID] = map[string]int{}
		}
		counts[positionID][candidateID] = n
	}
	return counts, rows.Err()
}

// Turnout returns the current voted and total voter counts.
func Turnout(ctx context.Context, q Queryer, electionID string) (voted, total int, err error) {
	err = q.QueryRowContext(ctx, `
		SELECT voted_count, total_voters FROM election WHERE id = $1
	`, electionID).Scan(&voted, &total)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, 0, ErrNotFound
	}
	if err != nil {
		return 0, 0, fmt.Errorf("get turnout: %w", err)
	}
	return voted, total, nil
}
