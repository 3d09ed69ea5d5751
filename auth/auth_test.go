// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestGenerateID(t *testing.T) {
	id, err := GenerateID()
	if err != nil {
		t.Fatalf("GenerateID() error = %v", err)
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		t.Fatalf("GenerateID() returned non-UUID %q: %v", id, err)
	}
	if parsed.Version() != 4 {
		t.Errorf("GenerateID() version = %d, want 4", parsed.Version())
	}

	// Test randomness - two IDs should be different
	id2, _ := GenerateID()
	if id == id2 {
		t.Error("GenerateID() produced duplicate IDs (extremely unlikely)")
	}
}

func TestValidateAdminKey(t *testing.T) {
	tests := []struct {
		name       string
		presented  string
		configured string
		wantErr    bool
	}{
		{"matching key", "s3cret", "s3cret", false},
		{"wrong key", "guess", "s3cret", true},
		{"empty presented", "", "s3cret", true},
		{"nothing configured", "", "", true},
		{"case sensitive", "S3CRET", "s3cret", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAdminKey(tt.presented, tt.configured)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateAdminKey() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidAdminKey) {
				t.Errorf("ValidateAdminKey() error = %v, want ErrInvalidAdminKey", err)
			}
		})
	}
}

func TestVoterID(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr bool
	}{
		{"plain", "voter-1", "voter-1", false},
		{"trimmed", "  voter-2 ", "voter-2", false},
		{"empty", "", "", true},
		{"blank", "   ", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := VoterID(tt.header)
			if (err != nil) != tt.wantErr {
				t.Fatalf("VoterID() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("VoterID() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHashIP(t *testing.T) {
	tests := []struct {
		name string
		ip   string
		salt string
	}{
		{"IPv4", "192.168.1.1", "ip-salt"},
		{"IPv6", "2001:0db8:85a3::8a2e:0370:7334", "ip-salt"},
		{"localhost", "127.0.0.1", "ip-salt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash := HashIP(tt.ip, tt.salt)

			// Should be 16 hex characters (8 bytes * 2)
			if len(hash) != 16 {
				t.Errorf("HashIP() length = %d, want 16", len(hash))
			}

			for _, c := range hash {
				if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')) {
					t.Errorf("HashIP() contains invalid hex char: %c", c)
				}
			}

			if hash != HashIP(tt.ip, tt.salt) {
				t.Error("HashIP() is not deterministic")
			}
		})
	}

	if HashIP("192.168.1.1", "salt") == HashIP("192.168.1.2", "salt") {
		t.Error("HashIP() produced same hash for different IPs")
	}
	if HashIP("192.168.1.1", "salt1") == HashIP("192.168.1.1", "salt2") {
		t.Error("HashIP() produced same hash for different salts")
	}
	if HashIP("", "salt") != "" {
		t.Error("HashIP() should return empty string for empty IP")
	}
}

func BenchmarkGenerateID(b *testing.B) {
	for i := 0; i < b.N; i++ {
		GenerateID()
	}
}
