// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrInvalidAdminKey = errors.New("invalid admin key")
	ErrMissingVoterID  = errors.New("missing voter id")
)

// GenerateID creates a random UUIDv4 record id
func GenerateID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to generate random ID: %w", err)
	}
	return id.String(), nil
}

// ValidateAdminKey compares the presented admin key with the configured one
// in constant time. An empty configured key rejects everything.
func ValidateAdminKey(presented, configured string) error {
	if configured == "" || !hmac.Equal([]byte(presented), []byte(configured)) {
		return ErrInvalidAdminKey
	}
	return nil
}

// VoterID normalises the voter id asserted by the upstream session layer
func VoterID(header string) (string, error) {
	id := strings.TrimSpace(header)
	if id == "" {
		return "", ErrMissingVoterID
	}
	return id, nil
}

// HashIP creates a one-way hash of an IP address for privacy
// Includes salt to prevent rainbow table attacks
func HashIP(ip, salt string) string {
	if ip == "" {
		return ""
	}
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(ip))
	sum := h.Sum(nil)
	// Return first 16 hex chars (64 bits) - enough for deduplication
	return hex.EncodeToString(sum[:8])
}
