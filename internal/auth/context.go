package auth

import "context"

// Identity is the request-scoped result of a verified token. It is never
// persisted; middleware attaches it to the request context and it dies
// with the request.
type Identity struct {
	Login    string
	TenantID int64
}

type identityContextKey struct{}

// ContextWithIdentity attaches the authenticated identity to the context.
func ContextWithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, id)
}

// IdentityFromContext extracts the authenticated identity, reporting
// whether one was attached.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	if ctx == nil {
		return Identity{}, false
	}
	id, ok := ctx.Value(identityContextKey{}).(Identity)
	if !ok || id.Login == "" {
		return Identity{}, false
	}
	return id, true
}
