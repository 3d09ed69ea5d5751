// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/electiond/middleware"
	"github.com/danielhkuo/electiond/models"
	"github.com/danielhkuo/electiond/store"
	"github.com/danielhkuo/electiond/voting"
)

type ResultsHandler struct {
	store *store.Store
	svc   *voting.Service
}

func NewResultsHandler(st *store.Store, svc *voting.Service) *ResultsHandler {
	return &ResultsHandler{store: st, svc: svc}
}

// GetResults handles GET /elections/{id}/results
// Tallies are visible in every phase; the winner only once the window closed.
func (h *ResultsHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Results(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err, "Failed to get results")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.ResultsResponse{
		Results: res,
		Closes:  humanize.RelTime(res.EndTime, h.svc.Now(), "ago", "from now"),
	})
}

// Reconcile handles POST /admin/reconcile
// Recomputes every counter from the ballots and reports what drifted.
func (h *ResultsHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	report, err := h.store.Reconcile(r.Context())
	if err != nil {
		writeError(w, err, "Failed to reconcile tallies")
		return
	}

	if report.Drifted() {
		slog.Warn("tally drift repaired",
			"candidates", report.Candidates,
			"elections", report.Elections,
			"history", report.History,
		)
	}

	middleware.JSONResponse(w, http.StatusOK, models.ReconcileResponse{
		CandidatesRepaired: report.Candidates,
		ElectionsRepaired:  report.Elections,
		HistoryRepaired:    report.History,
	})
}
