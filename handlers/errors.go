// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/electiond/middleware"
	"github.com/danielhkuo/electiond/store"
)

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrInvalidInput),
		errors.Is(err, store.ErrInvalidWindow),
		errors.Is(err, store.ErrCandidateNotInElection):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrVoterNotEligible):
		return http.StatusForbidden
	case errors.Is(err, store.ErrElectionNotFound),
		errors.Is(err, store.ErrCandidateNotFound),
		errors.Is(err, store.ErrVoterNotFound),
		errors.Is(err, store.ErrBallotNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrDuplicateBallot),
		errors.Is(err, store.ErrElectionNotOngoing),
		errors.Is(err, store.ErrDuplicateEmail),
		errors.Is(err, store.ErrCandidateHasVotes),
		errors.Is(err, store.ErrElectionCompleted):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// writeError responds with the status for err. Internal errors are logged
// and replaced by fallback so storage details never reach the client.
func writeError(w http.ResponseWriter, err error, fallback string) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		slog.Error(fallback, "error", err)
		middleware.ErrorResponse(w, status, fallback)
		return
	}
	middleware.ErrorResponse(w, status, err.Error())
}
