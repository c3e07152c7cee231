// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the database, creates the schema and holds the queries.

# Drivers

Open accepts "sqlite" (modernc.org/sqlite, pure Go) or "postgres"
(github.com/lib/pq). The schema and every query use syntax both accept:
TEXT ids, $n placeholders, application-supplied UTC timestamps, and JSON
kept in TEXT columns. SQLite connections enable foreign keys and use a
single open connection.

	conn, err := db.Open(ctx, cfg.DatabaseType, cfg.DatabaseURL)
	err = db.CreateSchema(ctx, conn)

# Tables

  - organization, membership: the roster elections are sized from
  - election, election_position, candidate: election definitions
  - election_electorate: voter hashes allowed to vote, fixed at creation
  - voter_registry: (election, voter hash) pairs, one per voter
  - ballot, ballot_selection: anonymous ballots, no voter column
  - petition, petition_signature: impeachment petitions and supporters
  - impeachment_electorate: voter hashes fixed when the vote opens
  - impeachment_voter, impeachment_vote: the impeachment register and votes

# Relationships

	organization 1──* membership
	organization 1──* election 1──* election_position 1──* candidate
	election 1──* election_electorate
	election 1──* voter_registry
	election 1──* ballot 1──* ballot_selection
	organization 1──* petition 1──* petition_signature
	petition 1──* impeachment_electorate
	petition 1──* impeachment_voter
	petition 1──* impeachment_vote

# Invariants in SQL

  - election: CHECK (0 <= voted_count <= total_voters); IncrementVoted also
    refuses to go past total_voters.
  - voter_registry, impeachment_voter, petition_signature: primary keys make
    a second vote or signature fail; IsUniqueViolation recognizes it for
    both drivers.
  - Status changes are conditional updates (WHERE status = from); ErrStale
    reports a lost race.

# Queries

Every query function takes a Queryer, so it runs on *sql.DB or inside a
transaction started with InTx.
*/
package db
