// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the student elections API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(db, cfg, router.Services{Cache: c, Hub: hub, Limiter: rl})

Every route is wrapped with middleware.WithLogging. Write routes also pass
through the per-client rate limiter.

# Endpoints

Health:

	GET /health - 200 "OK", 503 when the database is unreachable

Organizations:

	POST /organizations               - Create organization
	POST /organizations/{id}/members  - Add member
	GET  /organizations/{id}/members  - Roster, ?status= filter
	GET  /organizations/{id}/leaders  - Active members holding a role

Elections:

	POST /elections/drafts/validate   - Per-step wizard validation
	POST /elections                   - Create from a complete draft
	GET  /elections                   - Catalog, ?q= &org= &status=
	GET  /elections/{id}              - Election with positions
	POST /elections/{id}/ballots      - Cast ballot (X-Member-ID)
	GET  /elections/{id}/live         - Websocket turnout stream
	GET  /elections/{id}/results      - ?view=summary|detailed|analytics, 403 until ended

Impeachment:

	POST /petitions                   - File petition
	GET  /petitions                   - List, ?org=
	GET  /petitions/{id}              - Petition with supporters
	POST /petitions/{id}/signatures   - Sign (X-Member-ID)
	POST /petitions/{id}/vote/open    - verified -> voting
	POST /petitions/{id}/votes        - impeach or dismiss (X-Member-ID)
	GET  /petitions/{id}/tally        - Quorum and majority status
	POST /petitions/{id}/vote/close   - voting -> completed
*/
package router
