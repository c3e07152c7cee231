// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMissingMember = errors.New("missing member id")
	ErrInvalidMember = errors.New("invalid member id format")
)

// maxMemberIDLen bounds the X-Member-ID header.
const maxMemberIDLen = 64

// GenerateID creates a random hex ID of the specified byte length
func GenerateID(byteLen int) (string, error) {
	b := make([]byte, byteLen)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate random ID: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// GenerateReceipt creates the opaque confirmation id handed back for a
// recorded vote, e.g. "VT-1bQ7xZk3W-9fHq2LmP". It is random and carries no
// information about the voter or the ballot.
func GenerateReceipt() (string, error) {
	b := make([]byte, 12)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate receipt: %w", err)
	}
	return "VT-" + base62Encode(b[:6]) + "-" + base62Encode(b[6:]), nil
}

// VoterHash pseudonymizes a member for one scope (an election or a
// petition). The same member gets unrelated hashes in different scopes, so
// the dedup registers cannot be joined across votes.
func VoterHash(scope, memberID, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(scope))
	h.Write([]byte{0})
	h.Write([]byte(memberID))
	return hex.EncodeToString(h.Sum(nil)[:16])
}

// ParseMemberID checks the member id carried by a request header.
func ParseMemberID(raw string) (string, error) {
	id := strings.TrimSpace(raw)
	if id == "" {
		return "", ErrMissingMember
	}
	if len(id) > maxMemberIDLen {
		return "", ErrInvalidMember
	}
	for _, c := range id {
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '-' || c == '_') {
			return "", ErrInvalidMember
		}
	}
	return id, nil
}

// base62Encode converts up to 8 bytes to base62 (0-9, a-z, A-Z)
func base62Encode(data []byte) string {
	const base62Chars = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

	var num uint64
	for i := 0; i < len(data) && i < 8; i++ {
		num = num<<8 | uint64(data[i])
	}

	if num == 0 {
		return "0"
	}

	result := make([]byte, 0, 11)
	for num > 0 {
		result = append(result, base62Chars[num%62])
		num /= 62
	}

	for i, j := 0, len(result)-1; i < j; i, j = i+1, j-1 {
		result[i], result[j] = result[j], result[i]
	}

	return string(result)
}

// HashIP creates a one-way hash of a client address for rate limit keys
// and logs.
func HashIP(ip, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(ip))
	sum := h.Sum(nil)
	return hex.EncodeToString(sum[:8])
}
