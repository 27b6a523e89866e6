package auth

import (
	"context"
	"errors"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// TokenPair is the access/refresh pair handed out by Login and Refresh.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Service orchestrates the token lifecycle: credential check and issuance
// at login, verification against codec + revocation ledger + live
// identity, reissue on refresh, and revocation on logout.
type Service struct {
	codec   *Codec
	creds   CredentialStore
	revoked RevocationStore
	now     func() time.Time
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithClock overrides the time source, for tests.
func WithClock(fn func() time.Time) ServiceOption {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// NewService wires the codec to the credential store and revocation
// ledger.
func NewService(codec *Codec, creds CredentialStore, revoked RevocationStore, opts ...ServiceOption) *Service {
	s := &Service{codec: codec, creds: creds, revoked: revoked, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login checks the password against the stored bcrypt hash and issues a
// fresh token pair. Unknown logins and wrong passwords both come back as
// ErrInvalidCredentials so the two are indistinguishable to callers.
func (s *Service) Login(ctx context.Context, login, password string) (TokenPair, Identity, error) {
	cred, err := s.creds.Credential(ctx, login)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Printf("auth: credential lookup for %q failed: %v", login, err)
		}
		return TokenPair{}, Identity{}, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)) != nil {
		return TokenPair{}, Identity{}, ErrInvalidCredentials
	}
	id := Identity{Login: cred.Login, TenantID: cred.TenantID}
	pair, err := s.issuePair(id)
	if err != nil {
		return TokenPair{}, Identity{}, err
	}
	return pair, id, nil
}

// Verify validates an access token end to end: signature and expiry via
// the codec, then the revocation ledger, then that the identity it names
// still exists. Every failure surfaces as ErrInvalidToken; the specific
// cause is logged for diagnosis only.
func (s *Service) Verify(ctx context.Context, raw string) (*Claims, error) {
	return s.verify(ctx, raw, TokenAccess)
}

// Refresh applies the same validation as Verify to a refresh token and
// issues a new access/refresh pair. The presented refresh token is not
// revoked and stays usable until its natural expiry.
func (s *Service) Refresh(ctx context.Context, raw string) (TokenPair, Identity, error) {
	claims, err := s.verify(ctx, raw, TokenRefresh)
	if err != nil {
		return TokenPair{}, Identity{}, ErrInvalidToken
	}
	id := claims.Identity()
	pair, err := s.issuePair(id)
	if err != nil {
		return TokenPair{}, Identity{}, err
	}
	return pair, id, nil
}

// Logout records the token in the revocation ledger so later Verify calls
// reject it ahead of its natural expiry. A token that has already expired
// needs no entry and is treated as logged out.
func (s *Service) Logout(ctx context.Context, raw string) error {
	claims, err := s.codec.DecodeExpired(raw)
	if err != nil {
		return ErrInvalidToken
	}
	expiresAt := claims.ExpiresAt.Time
	if !expiresAt.After(s.now()) {
		return nil
	}
	if err := s.revoked.Revoke(ctx, raw, claims.Login, expiresAt); err != nil {
		return err
	}
	return nil
}

func (s *Service) verify(ctx context.Context, raw string, kind TokenKind) (*Claims, error) {
	claims, err := s.codec.Decode(raw)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if TokenKind(claims.Kind) != kind {
		return nil, ErrInvalidToken
	}
	revoked, err := s.revoked.IsRevoked(ctx, raw)
	if err != nil {
		log.Printf("auth: revocation check failed: %v", err)
		return nil, ErrInvalidToken
	}
	if revoked {
		return nil, ErrInvalidToken
	}
	if _, err := s.creds.CredentialInTenant(ctx, claims.Login, claims.TenantID); err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Printf("auth: identity lookup for %q failed: %v", claims.Login, err)
		}
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *Service) issuePair(id Identity) (TokenPair, error) {
	access, err := s.codec.Issue(id, TokenAccess)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.codec.Issue(id, TokenRefresh)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
