package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

type fakeCreds struct {
	mu    sync.Mutex
	users map[string]Credential // keyed by login
}

func newFakeCreds(users ...Credential) *fakeCreds {
	m := make(map[string]Credential, len(users))
	for _, u := range users {
		m[u.Login] = u
	}
	return &fakeCreds{users: m}
}

func (f *fakeCreds) Credential(_ context.Context, login string) (Credential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[login]
	if !ok {
		return Credential{}, ErrNotFound
	}
	return u, nil
}

func (f *fakeCreds) CredentialInTenant(_ context.Context, login string, tenantID int64) (Credential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[login]
	if !ok || u.TenantID != tenantID {
		return Credential{}, ErrNotFound
	}
	return u, nil
}

func (f *fakeCreds) delete(login string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.users, login)
}

type fakeLedger struct {
	mu      sync.Mutex
	entries map[string]time.Time
	revokes int
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{entries: make(map[string]time.Time)}
}

func (f *fakeLedger) Revoke(_ context.Context, token, _ string, expiresAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.revokes++
	f.entries[token] = expiresAt
	return nil
}

func (f *fakeLedger) IsRevoked(_ context.Context, token string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.entries[token]
	return ok, nil
}

func (f *fakeLedger) PruneExpired(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	now := time.Now()
	for token, exp := range f.entries {
		if exp.Before(now) {
			delete(f.entries, token)
			n++
		}
	}
	return n, nil
}

func (f *fakeLedger) size() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	return string(h)
}

func newTestService(t *testing.T, cfg Config) (*Service, *fakeCreds, *fakeLedger) {
	t.Helper()
	creds := newFakeCreds(Credential{Login: "alice", TenantID: 3, PasswordHash: mustHash(t, "Secret1")})
	ledger := newFakeLedger()
	return NewService(newTestCodec(t, cfg), creds, ledger), creds, ledger
}

func TestLoginIssuesVerifiableTokens(t *testing.T) {
	svc, _, _ := newTestService(t, Config{})
	ctx := context.Background()

	pair, id, err := svc.Login(ctx, "alice", "Secret1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if id.Login != "alice" || id.TenantID != 3 {
		t.Fatalf("unexpected identity %+v", id)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("expected non-empty token pair")
	}

	claims, err := svc.Verify(ctx, pair.AccessToken)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.Login != "alice" || claims.TenantID != 3 {
		t.Fatalf("claims do not match identity: %+v", claims)
	}
}

func TestLoginEnumerationResistance(t *testing.T) {
	svc, _, _ := newTestService(t, Config{})
	ctx := context.Background()

	_, _, unknownErr := svc.Login(ctx, "nobody", "whatever")
	_, _, wrongErr := svc.Login(ctx, "alice", "wrong-password")

	if !errors.Is(unknownErr, ErrInvalidCredentials) {
		t.Fatalf("unknown login: expected ErrInvalidCredentials, got %v", unknownErr)
	}
	if !errors.Is(wrongErr, ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", wrongErr)
	}
	if unknownErr.Error() != wrongErr.Error() {
		t.Fatalf("errors must be indistinguishable: %q vs %q", unknownErr, wrongErr)
	}
}

func TestVerifyRejectsAccessTokenAsRefresh(t *testing.T) {
	svc, _, _ := newTestService(t, Config{})
	ctx := context.Background()

	pair, _, err := svc.Login(ctx, "alice", "Secret1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if _, _, err := svc.Refresh(ctx, pair.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("Refresh with access token: expected ErrInvalidToken, got %v", err)
	}
	if _, err := svc.Verify(ctx, pair.RefreshToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("Verify with refresh token: expected ErrInvalidToken, got %v", err)
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	svc, _, ledger := newTestService(t, Config{})
	ctx := context.Background()

	pair, _, err := svc.Login(ctx, "alice", "Secret1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if _, err := svc.Verify(ctx, pair.AccessToken); err != nil {
		t.Fatalf("Verify before logout: %v", err)
	}
	if err := svc.Logout(ctx, pair.AccessToken); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if ledger.size() != 1 {
		t.Fatalf("expected one ledger entry, got %d", ledger.size())
	}
	if _, err := svc.Verify(ctx, pair.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("Verify after logout: expected ErrInvalidToken, got %v", err)
	}
}

func TestLogoutExpiredTokenWritesNoEntry(t *testing.T) {
	svc, _, ledger := newTestService(t, Config{AccessTTL: -time.Minute})
	ctx := context.Background()

	pair, _, err := svc.Login(ctx, "alice", "Secret1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if err := svc.Logout(ctx, pair.AccessToken); err != nil {
		t.Fatalf("Logout of expired token: %v", err)
	}
	if ledger.size() != 0 {
		t.Fatalf("expired token needs no ledger entry, got %d", ledger.size())
	}
	// Still invalid: the codec's own expiry check rejects it.
	if _, err := svc.Verify(ctx, pair.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyRejectsDeletedIdentity(t *testing.T) {
	svc, creds, _ := newTestService(t, Config{})
	ctx := context.Background()

	pair, _, err := svc.Login(ctx, "alice", "Secret1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	creds.delete("alice")
	if _, err := svc.Verify(ctx, pair.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("stale token for deleted user: expected ErrInvalidToken, got %v", err)
	}
}

func TestRefreshIssuesNewVerifiablePair(t *testing.T) {
	svc, _, _ := newTestService(t, Config{})
	ctx := context.Background()

	pair, _, err := svc.Login(ctx, "alice", "Secret1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	next, id, err := svc.Refresh(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if id.Login != "alice" || id.TenantID != 3 {
		t.Fatalf("unexpected identity %+v", id)
	}
	if _, err := svc.Verify(ctx, next.AccessToken); err != nil {
		t.Fatalf("Verify of refreshed access token: %v", err)
	}
	// No rotation: the original refresh token remains usable.
	if _, _, err := svc.Refresh(ctx, pair.RefreshToken); err != nil {
		t.Fatalf("reused refresh token: %v", err)
	}
}

func TestRefreshRejectsRevokedToken(t *testing.T) {
	svc, _, _ := newTestService(t, Config{})
	ctx := context.Background()

	pair, _, err := svc.Login(ctx, "alice", "Secret1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if err := svc.Logout(ctx, pair.RefreshToken); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, _, err := svc.Refresh(ctx, pair.RefreshToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestRefreshRejectsExpiredToken(t *testing.T) {
	svc, _, _ := newTestService(t, Config{RefreshTTL: -time.Minute})
	ctx := context.Background()

	pair, _, err := svc.Login(ctx, "alice", "Secret1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if _, _, err := svc.Refresh(ctx, pair.RefreshToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestConcurrentLogoutIsIdempotent(t *testing.T) {
	svc, _, ledger := newTestService(t, Config{})
	ctx := context.Background()

	pair, _, err := svc.Login(ctx, "alice", "Secret1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- svc.Logout(ctx, pair.AccessToken)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent Logout: %v", err)
		}
	}
	if ledger.size() != 1 {
		t.Fatalf("token should be revoked exactly once, ledger has %d entries", ledger.size())
	}
}
