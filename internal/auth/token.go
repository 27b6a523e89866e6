package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenKind distinguishes short-lived access tokens from the long-lived
// refresh tokens used only to mint new pairs.
type TokenKind string

const (
	TokenAccess  TokenKind = "access"
	TokenRefresh TokenKind = "refresh"
)

const (
	defaultIssuer     = "rgr-api"
	defaultAccessTTL  = 24 * time.Hour
	defaultRefreshTTL = 7 * 24 * time.Hour
)

// Config carries the signing material and token lifetimes. It is built
// once at startup and injected; nothing in this package reads the
// environment.
type Config struct {
	Secret     string
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

func (c Config) withDefaults() Config {
	if c.Issuer == "" {
		c.Issuer = defaultIssuer
	}
	if c.AccessTTL == 0 {
		c.AccessTTL = defaultAccessTTL
	}
	if c.RefreshTTL == 0 {
		c.RefreshTTL = defaultRefreshTTL
	}
	return c
}

// Claims is the fixed schema embedded in every issued token. Tokens whose
// payload does not match this shape are rejected during decode.
type Claims struct {
	Login    string `json:"login"`
	TenantID int64  `json:"cid"`
	Kind     string `json:"token_type"`
	jwt.RegisteredClaims
}

// Identity returns the {login, tenant} pair the claims were issued for.
func (c *Claims) Identity() Identity {
	return Identity{Login: c.Login, TenantID: c.TenantID}
}

// Codec signs and verifies tokens. It is stateless: revocation checks are
// deliberately left to the Service so signature and expiry act as a fast
// path before any ledger lookup.
type Codec struct {
	cfg Config
}

// NewCodec returns a Codec for the given config. An empty secret is
// refused; token lifetimes fall back to 24h access / 7d refresh.
func NewCodec(cfg Config) (*Codec, error) {
	if cfg.Secret == "" {
		return nil, errors.New("auth: token secret is required")
	}
	return &Codec{cfg: cfg.withDefaults()}, nil
}

// TTL reports the configured lifetime for the given token kind.
func (cd *Codec) TTL(kind TokenKind) time.Duration {
	if kind == TokenRefresh {
		return cd.cfg.RefreshTTL
	}
	return cd.cfg.AccessTTL
}

// Issue signs an HS256 token for the identity with the lifetime of the
// requested kind.
func (cd *Codec) Issue(id Identity, kind TokenKind) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		Login:    id.Login,
		TenantID: id.TenantID,
		Kind:     string(kind),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cd.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cd.TTL(kind))),
			ID:        uuid.NewString(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cd.cfg.Secret))
}

// Decode verifies signature, issuer and expiry and returns the claims.
// Any failure, including a payload that does not match the Claims schema,
// comes back as ErrInvalidToken.
func (cd *Codec) Decode(raw string) (*Claims, error) {
	return cd.parse(raw, jwt.WithValidMethods([]string{"HS256"}), jwt.WithIssuer(cd.cfg.Issuer), jwt.WithExpirationRequired())
}

// DecodeExpired verifies the signature but tolerates an elapsed expiry.
// Logout uses it: an expired token carries enough claims to identify its
// owner yet no longer needs a revocation entry.
func (cd *Codec) DecodeExpired(raw string) (*Claims, error) {
	claims, err := cd.parse(raw, jwt.WithValidMethods([]string{"HS256"}), jwt.WithIssuer(cd.cfg.Issuer), jwt.WithoutClaimsValidation())
	if err != nil {
		return nil, err
	}
	if claims.ExpiresAt == nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (cd *Codec) parse(raw string, opts ...jwt.ParserOption) (*Claims, error) {
	if raw == "" {
		return nil, ErrInvalidToken
	}
	tok, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(cd.cfg.Secret), nil
	}, opts...)
	if err != nil || !tok.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := tok.Claims.(*Claims)
	if !ok {
		return nil, ErrInvalidToken
	}
	if claims.Login == "" || claims.TenantID <= 0 {
		return nil, ErrInvalidToken
	}
	switch TokenKind(claims.Kind) {
	case TokenAccess, TokenRefresh:
	default:
		return nil, ErrInvalidToken
	}
	return claims, nil
}
