package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
)

// Decision is the two-variant outcome of a permission check. Reason is
// set only on deny and is safe to show to the caller: which (resource,
// action) was refused is not sensitive, unlike authentication failures.
type Decision struct {
	Allowed bool
	Reason  string
}

// Allow is the single allowing decision.
var Allow = Decision{Allowed: true}

// Deny builds a denying decision with the given reason.
func Deny(reason string) Decision {
	return Decision{Reason: reason}
}

// Gate is the one place authorization decisions are made. Every check
// fails closed: no role, no matching permission, and any lookup error all
// deny.
type Gate struct {
	roles RoleStore
}

// NewGate returns a Gate backed by the given role store.
func NewGate(roles RoleStore) *Gate {
	return &Gate{roles: roles}
}

// Check reports whether the identity's role grants the exact (resource,
// action) permission. There is no wildcard matching and no inheritance
// between resources or actions.
func (g *Gate) Check(ctx context.Context, id Identity, resource, action string) Decision {
	role, err := g.roles.RoleForUser(ctx, id.Login, id.TenantID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Printf("auth: role lookup for %q failed: %v", id.Login, err)
			return Deny("permission check failed")
		}
		return Deny("no role assigned to user")
	}
	ok, err := g.roles.RoleHasPermission(ctx, role.ID, resource, action)
	if err != nil {
		log.Printf("auth: permission lookup for role %d failed: %v", role.ID, err)
		return Deny("permission check failed")
	}
	if !ok {
		return Deny(fmt.Sprintf("you don't have permission to %s %s", action, resource))
	}
	return Allow
}
