package model

import "time"

// RevokedToken models an entry in the `token_blacklist` table. Entries
// are insert-only; ExpiresAt mirrors the token's own expiry so the table
// never needs to retain rows past natural expiry.
//
// Fields:
//  ID            – primary key identifier.
//  TokenHash     – SHA-256 hex digest of the token string (unique).
//  UserLogin     – login the token was issued to.
//  BlacklistedAt – when the token was revoked.
//  ExpiresAt     – the token's own expiry; rows past it are prunable.
type RevokedToken struct {
	ID            int64
	TokenHash     string
	UserLogin     string
	BlacklistedAt time.Time
	ExpiresAt     time.Time
}
