// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"strings"
)

var (
	ErrInvalidAdminKey   = errors.New("invalid admin key")
	ErrInvalidBoothToken = errors.New("invalid booth token")
)

func sign(salt, value string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(value))
	// URL-safe base64 without padding
	return strings.TrimRight(base64.URLEncoding.EncodeToString(h.Sum(nil)), "=")
}

// NormalizeEmail lower-cases and trims an email for comparisons
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// GenerateAdminKey creates an HMAC-based admin key for an administrator email.
// This is deterministic and verifiable, so keys are never stored.
func GenerateAdminKey(email, salt string) string {
	return sign(salt, "admin:"+NormalizeEmail(email))
}

// ValidateAdminKey checks if the provided admin key belongs to the email
func ValidateAdminKey(email, adminKey, salt string) error {
	if adminKey == "" {
		return ErrInvalidAdminKey
	}
	expected := GenerateAdminKey(email, salt)
	if !hmac.Equal([]byte(adminKey), []byte(expected)) {
		return ErrInvalidAdminKey
	}
	return nil
}

// GenerateBoothToken binds a voting booth session to a matricula.
// It is handed out by voter identification and required to cast the vote.
func GenerateBoothToken(matricula, salt string) string {
	return sign(salt, "booth:"+strings.ToLower(strings.TrimSpace(matricula)))
}

// ValidateBoothToken checks the token against the matricula
func ValidateBoothToken(matricula, token, salt string) error {
	if token == "" {
		return ErrInvalidBoothToken
	}
	expected := GenerateBoothToken(matricula, salt)
	if !hmac.Equal([]byte(token), []byte(expected)) {
		return ErrInvalidBoothToken
	}
	return nil
}

// HashIP creates a one-way hash of an IP address for privacy
// Includes salt to prevent rainbow table attacks
func HashIP(ip, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(ip))
	sum := h.Sum(nil)
	// Return first 16 hex chars (64 bits) - enough for deduplication
	return hex.EncodeToString(sum[:8])
}

// ProtocolCode returns the registration protocol printed on forms:
// the first 8 characters of the id, upper-cased.
func ProtocolCode(id string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	return strings.ToUpper(id)
}
