package auth

import (
	"context"
	"time"
)

// Credential is the slice of a user record the auth package needs: who
// they are, which tenant they belong to, and the stored password hash.
type Credential struct {
	Login        string
	TenantID     int64
	PasswordHash string
}

// Role identifies the single role a user holds within a tenant.
type Role struct {
	ID   int64
	Name string
}

// CredentialStore answers identity lookups. Implementations return
// ErrNotFound when no matching user exists.
type CredentialStore interface {
	Credential(ctx context.Context, login string) (Credential, error)
	CredentialInTenant(ctx context.Context, login string, tenantID int64) (Credential, error)
}

// RevocationStore persists tokens invalidated before their natural
// expiry. Revoke must be idempotent: revoking the same token twice is
// success, and IsRevoked must observe a completed Revoke immediately.
type RevocationStore interface {
	Revoke(ctx context.Context, token, login string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, token string) (bool, error)
	PruneExpired(ctx context.Context) (int64, error)
}

// RoleStore resolves a user's role and the permissions granted to it.
// RoleForUser returns ErrNotFound when the user has no role assigned.
type RoleStore interface {
	RoleForUser(ctx context.Context, login string, tenantID int64) (Role, error)
	RoleHasPermission(ctx context.Context, roleID int64, resource, action string) (bool, error)
}
