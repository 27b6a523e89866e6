package repository

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"time"
)

// TokenBlacklistRepo is the revocation ledger: tokens invalidated before
// natural expiry. Only a SHA-256 digest of the token is stored; the
// unique index on the digest is what makes Revoke idempotent. Implements
// auth.RevocationStore.
type TokenBlacklistRepo struct{ DB *sql.DB }

func NewTokenBlacklistRepo(db *sql.DB) *TokenBlacklistRepo { return &TokenBlacklistRepo{DB: db} }

// hashToken returns the SHA-256 hex digest used as the ledger key.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Revoke inserts a blacklist row for the token. A duplicate-key conflict
// means the token is already revoked and is treated as success.
func (r *TokenBlacklistRepo) Revoke(ctx context.Context, token, login string, expiresAt time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO token_blacklist (token_hash, user_login, expires_at) VALUES (?,?,?)",
		hashToken(token), login, expiresAt.UTC())
	if isDuplicateKey(err) {
		return nil
	}
	return err
}

// IsRevoked reports whether the token has a live blacklist entry. Rows
// whose expires_at has passed do not count: the token is already invalid
// through its own expiry.
func (r *TokenBlacklistRepo) IsRevoked(ctx context.Context, token string) (bool, error) {
	var id int64
	err := r.DB.QueryRowContext(ctx,
		"SELECT id FROM token_blacklist WHERE token_hash=? AND expires_at > NOW() LIMIT 1",
		hashToken(token)).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// PruneExpired deletes entries past their expiry and returns how many
// were removed. Purely storage reclamation; correctness never depends on
// it running.
func (r *TokenBlacklistRepo) PruneExpired(ctx context.Context) (int64, error) {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM token_blacklist WHERE expires_at <= NOW()")
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
