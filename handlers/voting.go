// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/electiond/auth"
	"github.com/danielhkuo/electiond/middleware"
	"github.com/danielhkuo/electiond/models"
	"github.com/danielhkuo/electiond/store"
	"github.com/danielhkuo/electiond/voting"
)

// VotingHandler serves vote casts, voter history, and admin ballot corrections.
type VotingHandler struct {
	store *store.Store
	svc   *voting.Service
}

func NewVotingHandler(st *store.Store, svc *voting.Service) *VotingHandler {
	return &VotingHandler{store: st, svc: svc}
}

// CastVote handles POST /elections/{id}/votes
// The voter is identified by the X-Voter-ID header.
func (h *VotingHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	voterID, err := auth.VoterID(r.Header.Get("X-Voter-ID"))
	if err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "X-Voter-ID header required")
		return
	}

	var req models.CastVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	ballot, err := h.svc.CastVote(r.Context(), voting.CastRequest{
		VoterID:     voterID,
		ElectionID:  r.PathValue("id"),
		CandidateID: req.CandidateID,
		Metadata: voting.Metadata{
			IP:        middleware.GetClientIP(r),
			UserAgent: r.UserAgent(),
		},
	})
	if err != nil {
		writeError(w, err, "Failed to cast vote")
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.CastVoteResponse{
		BallotID: ballot.ID,
		CastAt:   ballot.CastAt,
		Message:  "Vote recorded",
	})
}

// MyVotes handles GET /voters/me/votes
func (h *VotingHandler) MyVotes(w http.ResponseWriter, r *http.Request) {
	voterID, err := auth.VoterID(r.Header.Get("X-Voter-ID"))
	if err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "X-Voter-ID header required")
		return
	}

	history, err := h.svc.VoterHistory(r.Context(), voterID)
	if err != nil {
		writeError(w, err, "Failed to get voter history")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, history)
}

// MyElections handles GET /voters/me/elections
// Lists the elections the voter is assigned to with their current phase.
func (h *VotingHandler) MyElections(w http.ResponseWriter, r *http.Request) {
	voterID, err := auth.VoterID(r.Header.Get("X-Voter-ID"))
	if err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "X-Voter-ID header required")
		return
	}

	if _, err := h.store.GetVoter(r.Context(), voterID); err != nil {
		writeError(w, err, "Failed to get elections")
		return
	}

	assigned, err := h.store.EligibleElections(r.Context(), voterID)
	if err != nil {
		writeError(w, err, "Failed to get elections")
		return
	}
	for i := range assigned {
		assigned[i].Phase = h.svc.CurrentPhase(assigned[i].Election)
	}

	middleware.JSONResponse(w, http.StatusOK, assigned)
}

// ListBallots handles GET /elections/{id}/ballots (admin)
func (h *VotingHandler) ListBallots(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")

	if _, err := h.store.GetElection(r.Context(), electionID); err != nil {
		writeError(w, err, "Failed to list ballots")
		return
	}

	ballots, err := h.store.ListBallots(r.Context(), electionID)
	if err != nil {
		writeError(w, err, "Failed to list ballots")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, ballots)
}

// DeleteBallot handles DELETE /ballots/{id} (admin)
func (h *VotingHandler) DeleteBallot(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteBallot(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err, "Failed to delete ballot")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
