package auth

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func newTestCodec(t *testing.T, cfg Config) *Codec {
	t.Helper()
	if cfg.Secret == "" {
		cfg.Secret = "test-secret"
	}
	cd, err := NewCodec(cfg)
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	return cd
}

func TestCodecRoundTrip(t *testing.T) {
	cd := newTestCodec(t, Config{})
	id := Identity{Login: "alice", TenantID: 7}

	raw, err := cd.Issue(id, TokenAccess)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	claims, err := cd.Decode(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if claims.Login != "alice" || claims.TenantID != 7 {
		t.Fatalf("claims changed in round trip: %+v", claims)
	}
	if claims.Kind != string(TokenAccess) {
		t.Fatalf("unexpected kind %q", claims.Kind)
	}
	if claims.ExpiresAt == nil || !claims.ExpiresAt.After(time.Now()) {
		t.Fatalf("expected future expiry, got %v", claims.ExpiresAt)
	}
}

func TestCodecRejectsEmptySecret(t *testing.T) {
	if _, err := NewCodec(Config{}); err == nil {
		t.Fatal("expected error for empty secret")
	}
}

func TestCodecRejectsTamperedToken(t *testing.T) {
	cd := newTestCodec(t, Config{})
	raw, err := cd.Issue(Identity{Login: "alice", TenantID: 7}, TokenAccess)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	parts := strings.Split(raw, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token shape: %q", raw)
	}
	// Flip one character of the payload segment.
	payload := []byte(parts[1])
	if payload[0] == 'A' {
		payload[0] = 'B'
	} else {
		payload[0] = 'A'
	}
	tampered := parts[0] + "." + string(payload) + "." + parts[2]
	if _, err := cd.Decode(tampered); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestCodecRejectsWrongSecret(t *testing.T) {
	cd := newTestCodec(t, Config{Secret: "secret-a"})
	other := newTestCodec(t, Config{Secret: "secret-b"})

	raw, err := cd.Issue(Identity{Login: "alice", TenantID: 1}, TokenAccess)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := other.Decode(raw); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestCodecRejectsExpired(t *testing.T) {
	cd := newTestCodec(t, Config{AccessTTL: -time.Minute})
	raw, err := cd.Issue(Identity{Login: "alice", TenantID: 1}, TokenAccess)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := cd.Decode(raw); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
	// DecodeExpired still recovers the claims for revocation bookkeeping.
	claims, err := cd.DecodeExpired(raw)
	if err != nil {
		t.Fatalf("DecodeExpired: %v", err)
	}
	if claims.Login != "alice" {
		t.Fatalf("unexpected login %q", claims.Login)
	}
}

func TestCodecRejectsGarbage(t *testing.T) {
	cd := newTestCodec(t, Config{})
	for _, raw := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := cd.Decode(raw); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("Decode(%q): expected ErrInvalidToken, got %v", raw, err)
		}
	}
}

func TestCodecKindLifetimes(t *testing.T) {
	cd := newTestCodec(t, Config{AccessTTL: time.Hour, RefreshTTL: 48 * time.Hour})
	if cd.TTL(TokenAccess) != time.Hour {
		t.Fatalf("unexpected access TTL %v", cd.TTL(TokenAccess))
	}
	if cd.TTL(TokenRefresh) != 48*time.Hour {
		t.Fatalf("unexpected refresh TTL %v", cd.TTL(TokenRefresh))
	}

	raw, err := cd.Issue(Identity{Login: "alice", TenantID: 1}, TokenRefresh)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	claims, err := cd.Decode(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if claims.Kind != string(TokenRefresh) {
		t.Fatalf("unexpected kind %q", claims.Kind)
	}
}
