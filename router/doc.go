// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the electiond API.

# Route Registration

NewRouter returns the mux wrapped in CORS:

	handler := router.NewRouter(st, svc, cfg)

# Endpoints

Health:

	GET /health

Election administration (requires X-Admin-Key):

	POST   /elections                 - Create election
	PATCH  /elections/{id}            - Rename or move the window
	DELETE /elections/{id}            - Delete election with its ballots
	POST   /elections/{id}/candidates - Add candidate
	PATCH  /candidates/{id}           - Edit or move candidate
	DELETE /candidates/{id}           - Remove candidate and its ballots
	POST   /voters                    - Register voter
	DELETE /voters/{id}               - Remove voter and withdraw their ballots
	POST   /voters/{id}/elections     - Make voter eligible for an election

Browsing (public):

	GET /elections              - List elections, optional ?phase=
	GET /elections/{id}         - Election with candidates
	GET /elections/{id}/results - Tallies and winner

Voting (requires X-Voter-ID):

	POST /elections/{id}/votes   - Cast a vote
	GET  /voters/me/votes        - Elections already voted in
	GET  /voters/me/elections    - Assigned elections with has_voted

Corrections (requires X-Admin-Key):

	GET    /elections/{id}/ballots - List ballots
	DELETE /ballots/{id}           - Delete a ballot and undo its counts
	POST   /admin/reconcile        - Recount tallies from ballots
*/
package router
