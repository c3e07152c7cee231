// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the student elections API.

# Handler Types

Each handler is a struct with database and config dependencies:

  - OrganizationHandler: organizations, roster, leaders
  - ElectionHandler: draft validation, creation, catalog
  - BallotHandler: ballot submission and the live turnout stream
  - ResultsHandler: sealed results in three views, cached once final
  - PetitionHandler: petitions, signatures, impeachment votes and tallies

Handlers are created via constructor functions:

	electionHandler := handlers.NewElectionHandler(db, cfg)
	ballotHandler := handlers.NewBallotHandler(db, cfg, hub)

# Election Lifecycle

Status is derived from the clock, never stored:

	upcoming (now < starts_at) → active → completed (now >= ends_at)

Ballots are accepted only while active. Results return 403 until
completed.

# Ballot Secrecy and Deduplication

The voter sends X-Member-ID. The handler looks up HMAC(election, member)
in the electorate snapshot taken at creation (403 when absent), then in
one transaction:

 1. inserts HMAC(election, member) into voter_registry (primary key
    rejects a second ballot with 409)
 2. inserts the ballot and its selections, which carry no voter column
 3. increments voted_count, refusing to pass total_voters

The receipt id is random and not stored.

# Impeachment

	collecting → verified (signatures >= threshold) → voting → completed

Votes are deduplicated the same way, scoped to the petition.

# Error Responses

All errors return JSON:

	{"error": "Conflict", "message": "You have already voted in this election"}

Validation failures add a "fields" list. Status codes:

  - 400: invalid JSON, validation failures, unknown position or candidate
  - 401: missing or malformed X-Member-ID
  - 403: not a member, not eligible, results sealed
  - 404: organization, election or petition not found
  - 409: election not open, already voted or signed, wrong petition state
  - 429: rate limited
  - 500: database errors
*/
package handlers
