// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs one line per request with method, path, status and duration_ms.
5xx responses are logged at error level.

# Rate Limiting

Writes (ballots, signatures, impeachment votes) go through a per-client
token bucket from golang.org/x/time/rate:

	rl := middleware.NewRateLimiter(cfg.RateLimit, cfg.RateBurst, cfg.ReceiptSalt)
	go rl.Run(ctx)
	mux.HandleFunc("POST /api/elections/{id}/ballots", rl.Limit(h.SubmitBallot))

Clients are keyed by a salted hash of their peer address. Behind a proxy
that overwrites X-Forwarded-For, TrustProxy(true) keys them by that header
instead. Over-budget requests get 429 with a Retry-After header.

# CORS Middleware

Enable cross-origin requests for frontend access. Listed origins may send
credentials; everyone else gets the wildcard:

	server := http.Server{
		Handler: middleware.CORS(cfg.CORSOrigins)(mux),
	}

Allows methods GET, POST, PUT, DELETE, OPTIONS with headers
Content-Type, Authorization, X-Member-ID.

# JSON Helpers

Write JSON responses:

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")
	middleware.ValidationErrorResponse(w, fields)

Parse and validate request bodies in one step:

	var req models.AddMemberRequest
	if !middleware.DecodeAndValidate(w, r, &req) {
		return
	}

Bodies are capped at 1 MiB and unknown fields are rejected.

# Member Identity

	memberID, ok := middleware.MemberID(w, r)

reads X-Member-ID and answers 401 when it is missing or malformed.

# Client IP Extraction

Get the peer address, or the forwarded client IP behind a trusted proxy:

	ip := middleware.RemoteIP(r)
	ip = middleware.GetClientIP(r) // X-Forwarded-For, X-Real-IP
*/
package middleware
