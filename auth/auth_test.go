// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"errors"
	"strings"
	"testing"
)

func isBase62(s string) bool {
	for _, c := range s {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')) {
			return false
		}
	}
	return true
}

func TestGenerateID(t *testing.T) {
	tests := []struct {
		name    string
		byteLen int
		wantLen int
	}{
		{"8 bytes", 8, 16},
		{"16 bytes", 16, 32},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := GenerateID(tt.byteLen)
			if err != nil {
				t.Fatalf("GenerateID() error = %v", err)
			}
			if len(id) != tt.wantLen {
				t.Errorf("GenerateID() length = %d, want %d", len(id), tt.wantLen)
			}
		})
	}

	id1, _ := GenerateID(16)
	id2, _ := GenerateID(16)
	if id1 == id2 {
		t.Error("GenerateID() produced duplicate IDs")
	}
}

func TestGenerateReceipt(t *testing.T) {
	seen := make(map[string]bool)
	for range 100 {
		r, err := GenerateReceipt()
		if err != nil {
			t.Fatalf("GenerateReceipt() error = %v", err)
		}
		parts := strings.Split(r, "-")
		if len(parts) != 3 || parts[0] != "VT" {
			t.Fatalf("GenerateReceipt() = %q, want VT-<a>-<b>", r)
		}
		if !isBase62(parts[1]) || !isBase62(parts[2]) {
			t.Errorf("GenerateReceipt() = %q, want base62 groups", r)
		}
		if seen[r] {
			t.Errorf("GenerateReceipt() produced duplicate receipt: %s", r)
		}
		seen[r] = true
	}
}

func TestVoterHash(t *testing.T) {
	h := VoterHash("election-1", "m-42", "salt")
	if len(h) != 32 {
		t.Errorf("VoterHash() length = %d, want 32", len(h))
	}
	if h != VoterHash("election-1", "m-42", "salt") {
		t.Error("VoterHash() is not deterministic")
	}

	tests := []struct {
		name                string
		scope, member, salt string
	}{
		{"other scope", "election-2", "m-42", "salt"},
		{"other member", "election-1", "m-43", "salt"},
		{"other salt", "election-1", "m-42", "pepper"},
		{"shifted boundary", "election-1m", "-42", "salt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if VoterHash(tt.scope, tt.member, tt.salt) == h {
				t.Error("VoterHash() collided for different inputs")
			}
		})
	}
}

func TestParseMemberID(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr error
	}{
		{"plain", "m-42", "m-42", nil},
		{"trimmed", "  abc_DEF  ", "abc_DEF", nil},
		{"empty", "", "", ErrMissingMember},
		{"blank", "   ", "", ErrMissingMember},
		{"spaces inside", "m 42", "", ErrInvalidMember},
		{"punctuation", "m;drop", "", ErrInvalidMember},
		{"too long", strings.Repeat("a", 65), "", ErrInvalidMember},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMemberID(tt.raw)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ParseMemberID() error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseMemberID() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBase62Encode(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  string
	}{
		{"zero bytes", []byte{0, 0, 0, 0}, "0"},
		{"one", []byte{0, 0, 0, 1}, "1"},
		{"sixty two", []byte{62}, "10"},
		{"max uint64", []byte{255, 255, 255, 255, 255, 255, 255, 255}, "lYGhA16ahyf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := base62Encode(tt.input); got != tt.want {
				t.Errorf("base62Encode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHashIP(t *testing.T) {
	h1 := HashIP("192.168.1.1", "ip-salt")
	if len(h1) != 16 {
		t.Errorf("HashIP() length = %d, want 16", len(h1))
	}
	if h1 == HashIP("192.168.1.2", "ip-salt") {
		t.Error("HashIP() produced same hash for different IPs")
	}
	if h1 == HashIP("192.168.1.1", "other") {
		t.Error("HashIP() produced same hash for different salts")
	}
}

func BenchmarkVoterHash(b *testing.B) {
	for b.Loop() {
		VoterHash("election-1", "m-42", "salt")
	}
}

func BenchmarkGenerateReceipt(b *testing.B) {
	for b.Loop() {
		_, _ = GenerateReceipt()
	}
}
