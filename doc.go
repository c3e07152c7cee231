// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the student elections API server.

The service runs elections for student organizations: a three-step setup
wizard, position-by-position ballots with sealed results, and impeachment
petitions that collect signatures before going to a quorum-checked vote.

# Starting the Server

The server reads CLI flags, falling back to environment variables and an
optional .env file:

	RECEIPT_SALT=change-me go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..." -seed seed/testdata/demo.yaml

# Configuration

Required settings:

  - RECEIPT_SALT (-receipt-salt): HMAC secret for voter pseudonyms

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite (default) or postgres
  - DATABASE_URL (-d): DSN; defaults to elections.db for sqlite
  - REDIS_URL (-redis): results cache; in-memory when unset or unreachable
  - SEED_FILE (-seed): YAML demo data loaded at startup
  - SUBMIT_DELAY (-submit-delay): pause before a ballot is acknowledged (default: 2s)
  - SIGNATURE_THRESHOLD (-signature-threshold): percent of active members (default: 20)
  - QUORUM_PERCENT (-quorum): percent of eligible members (default: 50)
  - MAJORITY_PERCENT (-majority): percent of votes cast (default: 66.67)
  - RATE_LIMIT, RATE_BURST (-rate-limit, -rate-burst): write throttling per client (default: 5/s, 10)

# Architecture

	main.go         - Entry point, server lifecycle
	cliparse/       - Configuration parsing
	db/             - Schema and queries (SQLite or PostgreSQL)
	voting/         - Elections, wizard, booth, petitions, tallies, results
	handlers/       - HTTP request handlers
	middleware/     - Logging, JSON, validation, CORS, rate limiting
	router/         - Route definitions
	cache/          - Results cache (Redis or in-memory)
	live/           - Websocket turnout updates
	seed/           - YAML demo data
	models/         - Request/response types
	auth/           - IDs, receipts, voter hashes
	testutil/       - Test helpers

# Graceful Shutdown

SIGINT or SIGTERM stops accepting connections, lets in-flight requests
finish for up to ten seconds, then disconnects websocket subscribers.
*/
package main
