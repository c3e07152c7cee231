// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"fmt"
)

// An electorate is the set of voter pseudonyms allowed to take part in one
// election or impeachment vote. It is written once, in the transaction that
// creates the election or opens the vote, and never changes afterwards.

// InsertElectorate records who may vote in an election. voterHash maps a
// member id to the pseudonym stored in voter_registry.
func InsertElectorate(ctx context.Context, q Queryer, electionID string, memberIDs []string, voterHash func(memberID string) string) error {
	for _, id := range memberIDs {
		_, err := q.ExecContext(ctx, `
			INSERT INTO election_electorate (election_id, voter_hash) VALUES ($1, $2)
		`, electionID, voterHash(id))
		if err != nil {
			return fmt.Errorf("insert electorate: %w", err)
		}
	}
	return nil
}

func InElectorate(ctx context.Context, q Queryer, electionID, voterHash string) (bool, error) {
	var exists bool
	err := q.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM election_electorate WHERE election_id = $1 AND voter_hash = $2)
	`, electionID, voterHash).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check electorate: %w", err)
	}
	return exists, nil
}

// InsertImpeachmentElectorate records who may vote on a petition.
func InsertImpeachmentElectorate(ctx context.Context, q Queryer, petitionID string, memberIDs []string, voterHash func(memberID string) string) error {
	for _, id := range memberIDs {
		_, err := q.ExecContext(ctx, `
			INSERT INTO impeachment_electorate (petition_id, voter_hash) VALUES ($1, $2)
		`, petitionID, voterHash(id))
		if err != nil {
			return fmt.Errorf("insert impeachment electorate: %w", err)
		}
	}
	return nil
}

func InImpeachmentElectorate(ctx context.Context, q Queryer, petitionID, voterHash string) (bool, error) {
	var exists bool
	err := q.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM impeachment_electorate WHERE petition_id = $1 AND voter_hash = $2)
	`, petitionID, voterHash).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check impeachment electorate: %w", err)
	}
	return exists, nil
}
