// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /elections", middleware.WithLogging(handler))

Each request gets an X-Request-ID (echoed when the caller sends one) and a
single completion line with method, path, status and duration_ms.

# Admin Routes

	mux.HandleFunc("POST /admin/reconcile",
		middleware.WithLogging(middleware.RequireAdmin(cfg.AdminKey, h.Reconcile)))

Requests without a matching X-Admin-Key get 401.

# CORS Middleware

	server := http.Server{
		Handler: middleware.CORS(mux),
	}

Allows GET, POST, PATCH, PUT, DELETE, OPTIONS with headers
Content-Type, Authorization, X-Admin-Key, X-Voter-ID, X-Request-ID.

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")

	var req models.CastVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

Bodies larger than 1 MiB are rejected by ParseJSONBody.

# Client IP Extraction

	ip := middleware.GetClientIP(r)

The result is salted and hashed before it is stored on a ballot.
*/
package middleware
