// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/CAPTURE751/STUDENT-organization-management-system/cache"
	"github.com/CAPTURE751/STUDENT-organization-management-system/cliparse"
	"github.com/CAPTURE751/STUDENT-organization-management-system/handlers"
	"github.com/CAPTURE751/STUDENT-organization-management-system/live"
	"github.com/CAPTURE751/STUDENT-organization-management-system/middleware"
)

// Services are the long-lived collaborators shared by the handlers. The
// caller runs any Hub and Limiter it passes in. Zero fields are filled with
// in-process defaults that NewRouter starts and that run until the process
// exits.
type Services struct {
	Cache   cache.Results
	Hub     *live.Hub
	Limiter *middleware.RateLimiter
}

func NewRouter(db *sql.DB, cfg cliparse.Config, svc Services) *http.ServeMux {
	if svc.Cache == nil {
		svc.Cache = cache.NewMemory()
	}
	if svc.Hub == nil {
		svc.Hub = live.NewHub()
		go svc.Hub.Run(context.Background())
	}
	if svc.Limiter == nil {
		svc.Limiter = middleware.NewRateLimiter(cfg.RateLimit, cfg.RateBurst, cfg.ReceiptSalt).TrustProxy(cfg.TrustProxy)
		go svc.Limiter.Run(context.Background())
	}

	mux := http.NewServeMux()

	orgHandler := handlers.NewOrganizationHandler(db, cfg)
	electionHandler := handlers.NewElectionHandler(db, cfg)
	ballotHandler := handlers.NewBallotHandler(db, cfg, svc.Hub)
	resultsHandler := handlers.NewResultsHandler(db, cfg, svc.Cache)
	petitionHandler := handlers.NewPetitionHandler(db, cfg)

	read := middleware.WithLogging
	write := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(svc.Limiter.Limit(h))
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Organizations and membership
	mux.HandleFunc("POST /organizations", write(orgHandler.CreateOrganization))
	mux.HandleFunc("POST /organizations/{id}/members", write(orgHandler.AddMember))
	mux.HandleFunc("GET /organizations/{id}/members", read(orgHandler.ListMembers))
	mux.HandleFunc("GET /organizations/{id}/leaders", read(orgHandler.ListLeaders))

	// Election setup and catalog
	mux.HandleFunc("POST /elections/drafts/validate", read(electionHandler.ValidateDraft))
	mux.HandleFunc("POST /elections", write(electionHandler.CreateElection))
	mux.HandleFunc("GET /elections", read(electionHandler.ListElections))
	mux.HandleFunc("GET /elections/{id}", read(electionHandler.GetElection))

	// Voting (results sealed until the election ends)
	mux.HandleFunc("POST /elections/{id}/ballots", write(ballotHandler.SubmitBallot))
	mux.HandleFunc("GET /elections/{id}/live", read(ballotHandler.Live))
	mux.HandleFunc("GET /elections/{id}/results", read(resultsHandler.GetResults))

	// Impeachment
	mux.HandleFunc("POST /petitions", write(petitionHandler.CreatePetition))
	mux.HandleFunc("GET /petitions", read(petitionHandler.ListPetitions))
	mux.HandleFunc("GET /petitions/{id}", read(petitionHandler.GetPetition))
	mux.HandleFunc("POST /petitions/{id}/signatures", write(petitionHandler.SignPetition))
	mux.HandleFunc("POST /petitions/{id}/vote/open", write(petitionHandler.OpenVote))
	mux.HandleFunc("POST /petitions/{id}/votes", write(petitionHandler.CastVote))
	mux.HandleFunc("GET /petitions/{id}/tally", read(petitionHandler.Tally))
	mux.HandleFunc("POST /petitions/{id}/vote/close", write(petitionHandler.CloseVote))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("student elections API v1"))
	})

	return mux
}
