// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/danielhkuo/electiond/cliparse"
	"github.com/danielhkuo/electiond/handlers"
	"github.com/danielhkuo/electiond/middleware"
	"github.com/danielhkuo/electiond/store"
	"github.com/danielhkuo/electiond/voting"
)

func NewRouter(st *store.Store, svc *voting.Service, cfg cliparse.Config) http.Handler {
	mux := http.NewServeMux()

	// Initialize handlers
	electionHandler := handlers.NewElectionHandler(st, svc)
	votingHandler := handlers.NewVotingHandler(st, svc)
	resultsHandler := handlers.NewResultsHandler(st, svc)

	admin := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(middleware.RequireAdmin(cfg.AdminKey, h))
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Election administration
	mux.HandleFunc("POST /elections", admin(electionHandler.CreateElection))
	mux.HandleFunc("PATCH /elections/{id}", admin(electionHandler.UpdateElection))
	mux.HandleFunc("DELETE /elections/{id}", admin(electionHandler.DeleteElection))
	mux.HandleFunc("POST /elections/{id}/candidates", admin(electionHandler.AddCandidate))
	mux.HandleFunc("PATCH /candidates/{id}", admin(electionHandler.UpdateCandidate))
	mux.HandleFunc("DELETE /candidates/{id}", admin(electionHandler.DeleteCandidate))
	mux.HandleFunc("POST /voters", admin(electionHandler.CreateVoter))
	mux.HandleFunc("DELETE /voters/{id}", admin(electionHandler.DeleteVoter))
	mux.HandleFunc("POST /voters/{id}/elections", admin(electionHandler.AssignVoter))

	// Election browsing (public)
	mux.HandleFunc("GET /elections", middleware.WithLogging(electionHandler.ListElections))
	mux.HandleFunc("GET /elections/{id}", middleware.WithLogging(electionHandler.GetElection))
	mux.HandleFunc("GET /elections/{id}/results", middleware.WithLogging(resultsHandler.GetResults))

	// Voting (voter identified by X-Voter-ID)
	mux.HandleFunc("POST /elections/{id}/votes", middleware.WithLogging(votingHandler.CastVote))
	mux.HandleFunc("GET /voters/me/votes", middleware.WithLogging(votingHandler.MyVotes))
	mux.HandleFunc("GET /voters/me/elections", middleware.WithLogging(votingHandler.MyElections))

	// Ballot corrections and tally repair
	mux.HandleFunc("GET /elections/{id}/ballots", admin(votingHandler.ListBallots))
	mux.HandleFunc("DELETE /ballots/{id}", admin(votingHandler.DeleteBallot))
	mux.HandleFunc("POST /admin/reconcile", admin(resultsHandler.Reconcile))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("electiond API v1"))
	})

	return middleware.CORS(mux)
}
