// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth holds the small identity helpers the API needs. Sessions and
accounts are handled upstream; this package only checks what arrives.

# Admin Key

Administrative routes require the X-Admin-Key header to match the configured
key:

	err := auth.ValidateAdminKey(r.Header.Get("X-Admin-Key"), cfg.AdminKey)

The comparison is constant time.

# Voter Identity

The session layer asserts the voter id in X-Voter-ID:

	voterID, err := auth.VoterID(r.Header.Get("X-Voter-ID"))

# ID Generation

Random UUIDv4 ids for database records:

	id, err := auth.GenerateID()

# IP Hashing

Ballots store a salted hash of the client IP, never the address itself:

	hash := auth.HashIP(ipAddress, salt)

Returns first 8 bytes (16 hex chars) of HMAC-SHA256.
*/
package auth
