package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/vergon/rgr-api/internal/auth"
)

type stubCreds struct {
	cred auth.Credential
}

func (s *stubCreds) Credential(_ context.Context, login string) (auth.Credential, error) {
	if login != s.cred.Login {
		return auth.Credential{}, auth.ErrNotFound
	}
	return s.cred, nil
}

func (s *stubCreds) CredentialInTenant(_ context.Context, login string, tenantID int64) (auth.Credential, error) {
	if login != s.cred.Login || tenantID != s.cred.TenantID {
		return auth.Credential{}, auth.ErrNotFound
	}
	return s.cred, nil
}

type stubLedger struct {
	revoked map[string]bool
}

func (s *stubLedger) Revoke(_ context.Context, token, _ string, _ time.Time) error {
	if s.revoked == nil {
		s.revoked = map[string]bool{}
	}
	s.revoked[token] = true
	return nil
}

func (s *stubLedger) IsRevoked(_ context.Context, token string) (bool, error) {
	return s.revoked[token], nil
}

func (s *stubLedger) PruneExpired(context.Context) (int64, error) { return 0, nil }

type stubRoles struct {
	role   auth.Role
	grants map[string]bool
}

func (s *stubRoles) RoleForUser(context.Context, string, int64) (auth.Role, error) {
	if s.role.ID == 0 {
		return auth.Role{}, auth.ErrNotFound
	}
	return s.role, nil
}

func (s *stubRoles) RoleHasPermission(_ context.Context, _ int64, resource, action string) (bool, error) {
	return s.grants[resource+":"+action], nil
}

func newTestService(t *testing.T) *auth.Service {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("Secret1"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	codec, err := auth.NewCodec(auth.Config{Secret: "test-secret"})
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	creds := &stubCreds{cred: auth.Credential{Login: "alice", TenantID: 3, PasswordHash: string(hash)}}
	return auth.NewService(codec, creds, &stubLedger{})
}

func doRequest(h http.Handler, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAuthenticateRejectsMissingToken(t *testing.T) {
	e := echo.New()
	e.GET("/protected", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, Authenticate(newTestService(t)))

	for _, header := range []string{"", "Bearer ", "Token abc", "Bearer"} {
		rec := doRequest(e, header)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("header %q: status = %d, want 401", header, rec.Code)
		}
	}
}

func TestAuthenticateRejectsGarbageToken(t *testing.T) {
	e := echo.New()
	e.GET("/protected", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, Authenticate(newTestService(t)))

	rec := doRequest(e, "Bearer not.a.token")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "signature") {
		t.Fatalf("response leaks verification detail: %s", rec.Body.String())
	}
}

func TestAuthenticateInjectsIdentity(t *testing.T) {
	svc := newTestService(t)
	pair, _, err := svc.Login(context.Background(), "alice", "Secret1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	var got auth.Identity
	e := echo.New()
	e.GET("/protected", func(c echo.Context) error {
		id, ok := CurrentIdentity(c)
		if !ok {
			t.Fatal("identity missing from echo context")
		}
		got = id
		if _, ok := auth.IdentityFromContext(c.Request().Context()); !ok {
			t.Fatal("identity missing from request context")
		}
		return c.NoContent(http.StatusOK)
	}, Authenticate(svc))

	rec := doRequest(e, "Bearer "+pair.AccessToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got.Login != "alice" || got.TenantID != 3 {
		t.Fatalf("identity = %+v, want alice in tenant 3", got)
	}
}

func TestAuthenticateRejectsRefreshToken(t *testing.T) {
	svc := newTestService(t)
	pair, _, err := svc.Login(context.Background(), "alice", "Secret1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	e := echo.New()
	e.GET("/protected", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, Authenticate(svc))

	rec := doRequest(e, "Bearer "+pair.RefreshToken)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("refresh token accepted on protected route: status = %d", rec.Code)
	}
}

func TestRequirePermission(t *testing.T) {
	svc := newTestService(t)
	pair, _, err := svc.Login(context.Background(), "alice", "Secret1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	roles := &stubRoles{
		role:   auth.Role{ID: 1, Name: "manager"},
		grants: map[string]bool{"companies:read": true},
	}
	gate := auth.NewGate(roles)

	e := echo.New()
	e.GET("/protected", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, Authenticate(svc), RequirePermission(gate, "companies", "read"))
	e.GET("/forbidden", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, Authenticate(svc), RequirePermission(gate, "companies", "delete"))

	rec := doRequest(e, "Bearer "+pair.AccessToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("granted permission: status = %d, want 200", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/forbidden", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+pair.AccessToken)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("missing permission: status = %d, want 403", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "permission") {
		t.Fatalf("deny response missing reason: %s", rec.Body.String())
	}
}

func TestRequirePermissionWithoutAuthenticate(t *testing.T) {
	gate := auth.NewGate(&stubRoles{})

	e := echo.New()
	e.GET("/protected", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, RequirePermission(gate, "companies", "read"))

	rec := doRequest(e, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401 when no identity present", rec.Code)
	}
}
