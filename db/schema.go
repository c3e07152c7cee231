// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// The schema sticks to types and syntax shared by SQLite and PostgreSQL.
// Timestamps are always written by the application, in UTC.
const schema = `
-- Organizations and their roster
CREATE TABLE IF NOT EXISTS organization (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    type TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS membership (
    id TEXT PRIMARY KEY,
    organization_id TEXT NOT NULL REFERENCES organization(id) ON DELETE CASCADE,
    name TEXT NOT NULL,
    email TEXT NOT NULL DEFAULT '',
    department TEXT NOT NULL DEFAULT '',
    academic_year TEXT NOT NULL DEFAULT '',
    gender TEXT NOT NULL DEFAULT '',
    role TEXT NOT NULL DEFAULT 'member',
    status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'active', 'inactive', 'rejected')),
    joined_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_membership_org ON membership(organization_id, status);

-- Elections
CREATE TABLE IF NOT EXISTS election (
    id TEXT PRIMARY KEY,
    organization_id TEXT NOT NULL REFERENCES organization(id) ON DELETE CASCADE,
    title TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    type TEXT NOT NULL CHECK (type IN ('general', 'departmental', 'special')),
    voting_rule TEXT NOT NULL CHECK (voting_rule IN ('single', 'ranked', 'weighted')),
    auto_close BOOLEAN NOT NULL,
    starts_at TIMESTAMP NOT NULL,
    ends_at TIMESTAMP NOT NULL,
    total_voters INTEGER NOT NULL DEFAULT 0,
    voted_count INTEGER NOT NULL DEFAULT 0,
    eligibility TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL,
    CHECK (voted_count >= 0 AND voted_count <= total_voters)
);

CREATE INDEX IF NOT EXISTS idx_election_org ON election(organization_id);

-- Who may vote, fixed when the election is created
CREATE TABLE IF NOT EXISTS election_electorate (
    election_id TEXT NOT NULL REFERENCES election(id) ON DELETE CASCADE,
    voter_hash TEXT NOT NULL,
    PRIMARY KEY (election_id, voter_hash)
);

CREATE TABLE IF NOT EXISTS election_position (
    id TEXT PRIMARY KEY,
    election_id TEXT NOT NULL REFERENCES election(id) ON DELETE CASCADE,
    title TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    sort_order INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_position_election ON election_position(election_id);

CREATE TABLE IF NOT EXISTS candidate (
    id TEXT PRIMARY KEY,
    position_id TEXT NOT NULL REFERENCES election_position(id) ON DELETE CASCADE,
    name TEXT NOT NULL,
    department TEXT NOT NULL DEFAULT '',
    academic_year TEXT NOT NULL DEFAULT '',
    manifesto TEXT NOT NULL DEFAULT '',
    photo_url TEXT NOT NULL DEFAULT '',
    sort_order INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_candidate_position ON candidate(position_id);

-- Who has voted, by pseudonym only
CREATE TABLE IF NOT EXISTS voter_registry (
    election_id TEXT NOT NULL REFERENCES election(id) ON DELETE CASCADE,
    voter_hash TEXT NOT NULL,
    voted_at TIMESTAMP NOT NULL,
    PRIMARY KEY (election_id, voter_hash)
);

-- What was voted, with no voter column
CREATE TABLE IF NOT EXISTS ballot (
    id TEXT PRIMARY KEY,
    election_id TEXT NOT NULL REFERENCES election(id) ON DELETE CASCADE,
    submitted_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_ballot_election ON ballot(election_id);

CREATE TABLE IF NOT EXISTS ballot_selection (
    ballot_id TEXT NOT NULL REFERENCES ballot(id) ON DELETE CASCADE,
    position_id TEXT NOT NULL REFERENCES election_position(id) ON DELETE CASCADE,
    candidate_id TEXT NOT NULL REFERENCES candidate(id) ON DELETE CASCADE,
    PRIMARY KEY (ballot_id, position_id)
);

CREATE INDEX IF NOT EXISTS idx_selection_position ON ballot_selection(position_id, candidate_id);

-- Impeachment
CREATE TABLE IF NOT EXISTS petition (
    id TEXT PRIMARY KEY,
    organization_id TEXT NOT NULL REFERENCES organization(id) ON DELETE CASCADE,
    accused_leader TEXT NOT NULL,
    accused_role TEXT NOT NULL DEFAULT '',
    violation TEXT NOT NULL,
    misconduct TEXT NOT NULL,
    evidence_url TEXT NOT NULL DEFAULT '',
    threshold_percent DOUBLE PRECISION NOT NULL,
    total_members INTEGER NOT NULL,
    required_signatures INTEGER NOT NULL,
    status TEXT NOT NULL CHECK (status IN ('collecting', 'verified', 'voting', 'completed')),
    eligible_voters INTEGER NOT NULL DEFAULT 0,
    quorum_percent DOUBLE PRECISION NOT NULL DEFAULT 0,
    majority_percent DOUBLE PRECISION NOT NULL DEFAULT 0,
    opened_at TIMESTAMP,
    closed_at TIMESTAMP,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_petition_org ON petition(organization_id);

-- Who may vote on an impeachment, fixed when the vote opens
CREATE TABLE IF NOT EXISTS impeachment_electorate (
    petition_id TEXT NOT NULL REFERENCES petition(id) ON DELETE CASCADE,
    voter_hash TEXT NOT NULL,
    PRIMARY KEY (petition_id, voter_hash)
);

CREATE TABLE IF NOT EXISTS petition_signature (
    petition_id TEXT NOT NULL REFERENCES petition(id) ON DELETE CASCADE,
    member_id TEXT NOT NULL REFERENCES membership(id) ON DELETE CASCADE,
    signed_at TIMESTAMP NOT NULL,
    PRIMARY KEY (petition_id, member_id)
);

CREATE TABLE IF NOT EXISTS impeachment_voter (
    petition_id TEXT NOT NULL REFERENCES petition(id) ON DELETE CASCADE,
    voter_hash TEXT NOT NULL,
    voted_at TIMESTAMP NOT NULL,
    PRIMARY KEY (petition_id, voter_hash)
);

CREATE TABLE IF NOT EXISTS impeachment_vote (
    id TEXT PRIMARY KEY,
    petition_id TEXT NOT NULL REFERENCES petition(id) ON DELETE CASCADE,
    choice TEXT NOT NULL CHECK (choice IN ('impeach', 'dismiss')),
    cast_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_impeachment_vote_petition ON impeachment_vote(petition_id);
`
