// Package auth implements token issuance and verification, credential
// checks and role-based permission decisions. It owns no storage of its
// own; persistence is reached through the store interfaces declared in
// store.go so the package can be exercised against fakes in tests.
package auth

import "errors"

var (
	// ErrInvalidCredentials is returned by Login for an unknown login and
	// for a wrong password alike, so callers cannot tell the two apart.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")

	// ErrInvalidToken covers every token failure visible to callers:
	// malformed, bad signature, expired, revoked or orphaned identity.
	ErrInvalidToken = errors.New("auth: invalid token")

	// ErrNotFound is returned by stores when a record does not exist.
	ErrNotFound = errors.New("auth: not found")
)
