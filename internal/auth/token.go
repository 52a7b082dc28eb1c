package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// DefaultTokenTTL is the lifetime of every issued token.
	DefaultTokenTTL = 30 * time.Minute
	// DefaultIssuer is used when no issuer is configured.
	DefaultIssuer = "crudstore-backend"

	authoritiesClaim     = "authorities"
	authoritiesSeparator = ","
)

// Claims is the payload signed into every token.
type Claims struct {
	Authorities string `json:"authorities"`
	jwt.RegisteredClaims
}

// TokenCodec issues and verifies HS256 bearer tokens.
type TokenCodec struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// CodecOption configures TokenCodec behavior.
type CodecOption func(*TokenCodec) error

// WithIssuer overrides the iss claim written and required by the codec.
func WithIssuer(issuer string) CodecOption {
	return func(c *TokenCodec) error {
		issuer = strings.TrimSpace(issuer)
		if issuer != "" {
			c.issuer = issuer
		}
		return nil
	}
}

// WithTTL overrides the token lifetime.
func WithTTL(ttl time.Duration) CodecOption {
	return func(c *TokenCodec) error {
		if ttl > 0 {
			c.ttl = ttl
		}
		return nil
	}
}

// WithClock overrides time source (useful for tests).
func WithClock(fn func() time.Time) CodecOption {
	return func(c *TokenCodec) error {
		if fn != nil {
			c.now = fn
		}
		return nil
	}
}

// NewTokenCodec constructs a codec signing with the given secret.
func NewTokenCodec(secret string, opts ...CodecOption) (*TokenCodec, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("auth: token secret is required")
	}
	c := &TokenCodec{
		secret: []byte(secret),
		issuer: DefaultIssuer,
		ttl:    DefaultTokenTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Issuer returns the configured iss claim.
func (c *TokenCodec) Issuer() string { return c.issuer }

// Issue signs a token for username carrying the given authorities.
func (c *TokenCodec) Issue(username string, authorities []string) (string, error) {
	if strings.TrimSpace(username) == "" {
		return "", errors.New("auth: subject is required")
	}
	now := c.now().UTC()
	claims := Claims{
		Authorities: strings.Join(authorities, authoritiesSeparator),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
			ID:        uuid.NewString(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// Verify checks signature, issuer, expiry and not-before. Every failure is
// reported as ErrInvalidToken.
func (c *TokenCodec) Verify(raw string) (*Token, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrInvalidToken
	}
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidToken
		}
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(c.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return &Token{claims: claims}, nil
}

// Token is a verified token. Its accessors are only meaningful after Verify.
type Token struct {
	claims jwt.MapClaims
}

// Subject returns the sub claim.
func (t *Token) Subject() string {
	sub, _ := t.claims.GetSubject()
	return sub
}

// Claim returns a raw claim value by name.
func (t *Token) Claim(name string) (any, bool) {
	v, ok := t.claims[name]
	return v, ok
}

// ID returns the jti claim.
func (t *Token) ID() string {
	id, _ := t.claims["jti"].(string)
	return id
}

// ExpiresAt returns the exp claim.
func (t *Token) ExpiresAt() time.Time {
	exp, err := t.claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}

// Authorities splits the authorities claim. A missing or non-string claim
// is ErrInvalidToken.
func (t *Token) Authorities() ([]string, error) {
	v, ok := t.claims[authoritiesClaim]
	if !ok {
		return nil, ErrInvalidToken
	}
	s, ok := v.(string)
	if !ok {
		return nil, ErrInvalidToken
	}
	var out []string
	for _, part := range strings.Split(s, authoritiesSeparator) {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out, nil
}
