// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/danielhkuo/electiond/middleware"
	"github.com/danielhkuo/electiond/models"
	"github.com/danielhkuo/electiond/store"
	"github.com/danielhkuo/electiond/voting"
)

// ElectionHandler serves election, candidate and voter administration.
type ElectionHandler struct {
	store *store.Store
	svc   *voting.Service
}

func NewElectionHandler(st *store.Store, svc *voting.Service) *ElectionHandler {
	return &ElectionHandler{store: st, svc: svc}
}

// CreateElection handles POST /elections
func (h *ElectionHandler) CreateElection(w http.ResponseWriter, r *http.Request) {
	var req models.CreateElectionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	e, err := h.store.CreateElection(r.Context(), store.ElectionInput{
		Name:        req.Name,
		Description: req.Description,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
	})
	if err != nil {
		writeError(w, err, "Failed to create election")
		return
	}

	slog.Info("election created", "election_id", e.ID, "start", e.StartTime, "end", e.EndTime)

	middleware.JSONResponse(w, http.StatusCreated, models.CreateElectionResponse{
		ElectionID: e.ID,
	})
}

// ListElections handles GET /elections?phase=
func (h *ElectionHandler) ListElections(w http.ResponseWriter, r *http.Request) {
	phase := models.Phase(r.URL.Query().Get("phase"))

	elections, err := h.svc.ListElections(r.Context(), phase)
	if err != nil {
		writeError(w, err, "Failed to list elections")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, elections)
}

// GetElection handles GET /elections/{id}
func (h *ElectionHandler) GetElection(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")

	e, err := h.store.GetElection(r.Context(), electionID)
	if err != nil {
		writeError(w, err, "Failed to get election")
		return
	}
	e.Phase = h.svc.CurrentPhase(e)

	candidates, err := h.store.ListCandidates(r.Context(), electionID)
	if err != nil {
		writeError(w, err, "Failed to get election")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.ElectionWithCandidates{
		Election:   e,
		Candidates: candidates,
	})
}

// UpdateElection handles PATCH /elections/{id}
func (h *ElectionHandler) UpdateElection(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")

	var req models.UpdateElectionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	e, err := h.store.UpdateElection(r.Context(), electionID, store.ElectionPatch{
		Name:        req.Name,
		Description: req.Description,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
	})
	if err != nil {
		writeError(w, err, "Failed to update election")
		return
	}
	e.Phase = h.svc.CurrentPhase(e)

	slog.Info("election updated", "election_id", e.ID, "start", e.StartTime, "end", e.EndTime)

	middleware.JSONResponse(w, http.StatusOK, e)
}

// DeleteElection handles DELETE /elections/{id}
func (h *ElectionHandler) DeleteElection(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")

	if err := h.store.DeleteElection(r.Context(), electionID); err != nil {
		writeError(w, err, "Failed to delete election")
		return
	}

	slog.Info("election deleted", "election_id", electionID)
	w.WriteHeader(http.StatusNoContent)
}

// AddCandidate handles POST /elections/{id}/candidates
func (h *ElectionHandler) AddCandidate(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")

	var req models.AddCandidateRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	c, err := h.store.AddCandidate(r.Context(), electionID, store.CandidateInput{
		Name:        req.Name,
		Description: req.Description,
		Photo:       req.Photo,
	})
	if err != nil {
		writeError(w, err, "Failed to add candidate")
		return
	}

	slog.Info("candidate added", "election_id", electionID, "candidate_id", c.ID)

	middleware.JSONResponse(w, http.StatusCreated, models.AddCandidateResponse{
		CandidateID: c.ID,
	})
}

// UpdateCandidate handles PATCH /candidates/{id}
func (h *ElectionHandler) UpdateCandidate(w http.ResponseWriter, r *http.Request) {
	candidateID := r.PathValue("id")

	var req models.UpdateCandidateRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	c, err := h.store.UpdateCandidate(r.Context(), candidateID, store.CandidatePatch{
		Name:        req.Name,
		Description: req.Description,
		Photo:       req.Photo,
		ElectionID:  req.ElectionID,
	})
	if err != nil {
		writeError(w, err, "Failed to update candidate")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, c)
}

// DeleteCandidate handles DELETE /candidates/{id}
// The candidate's ballots go with it and the tallies are adjusted.
func (h *ElectionHandler) DeleteCandidate(w http.ResponseWriter, r *http.Request) {
	candidateID := r.PathValue("id")

	if err := h.store.DeleteCandidate(r.Context(), candidateID); err != nil {
		writeError(w, err, "Failed to delete candidate")
		return
	}

	slog.Info("candidate deleted", "candidate_id", candidateID)
	w.WriteHeader(http.StatusNoContent)
}

// CreateVoter handles POST /voters
func (h *ElectionHandler) CreateVoter(w http.ResponseWriter, r *http.Request) {
	var req models.CreateVoterRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	v, err := h.store.CreateVoter(r.Context(), req.Name, req.Email)
	if err != nil {
		writeError(w, err, "Failed to create voter")
		return
	}

	slog.Info("voter registered", "voter_id", v.ID)

	middleware.JSONResponse(w, http.StatusCreated, models.CreateVoterResponse{
		VoterID: v.ID,
	})
}

// AssignVoter handles POST /voters/{id}/elections
func (h *ElectionHandler) AssignVoter(w http.ResponseWriter, r *http.Request) {
	voterID := r.PathValue("id")

	var req models.AssignVoterRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.ElectionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "election_id is required")
		return
	}

	if err := h.store.AssignVoter(r.Context(), voterID, req.ElectionID); err != nil {
		writeError(w, err, "Failed to assign voter")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteVoter handles DELETE /voters/{id}
// The voter's ballots are withdrawn from every election they voted in.
func (h *ElectionHandler) DeleteVoter(w http.ResponseWriter, r *http.Request) {
	voterID := r.PathValue("id")

	if err := h.store.DeleteVoter(r.Context(), voterID); err != nil {
		writeError(w, err, "Failed to delete voter")
		return
	}

	slog.Info("voter deleted", "voter_id", voterID)
	w.WriteHeader(http.StatusNoContent)
}
