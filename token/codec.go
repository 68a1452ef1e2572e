package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/upb/schoolms-api/models"
)

var (
	// ErrInvalidToken is returned when the token is invalid
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired is returned when the token has expired. It also matches ErrInvalidToken.
	ErrTokenExpired = fmt.Errorf("%w: token expired", ErrInvalidToken)

	// ErrInvalidSecret is returned when the codec is built without a signing secret
	ErrInvalidSecret = errors.New("signing secret must not be empty")
)

// Decoder turns a bearer token into a request identity
type Decoder interface {
	Decode(tokenString string) (*models.Identity, error)
}

// Config holds configuration for Codec
type Config struct {
	Secret string
	Issuer string
	TTL    time.Duration
	Leeway time.Duration
	// Now overrides the wall clock, mainly for tests
	Now func() time.Time
}

// Codec issues and decodes HS256 signed access tokens
type Codec struct {
	secret []byte
	issuer string
	ttl    time.Duration
	leeway time.Duration
	now    func() time.Time
}

// NewCodec creates a new token codec
func NewCodec(config Config) (*Codec, error) {
	if config.Secret == "" {
		return nil, ErrInvalidSecret
	}
	if config.TTL <= 0 {
		config.TTL = 24 * time.Hour
	}
	if config.Now == nil {
		config.Now = time.Now
	}

	return &Codec{
		secret: []byte(config.Secret),
		issuer: config.Issuer,
		ttl:    config.TTL,
		leeway: config.Leeway,
		now:    config.Now,
	}, nil
}

// TTL returns the default token lifetime
func (c *Codec) TTL() time.Duration {
	return c.ttl
}

// Issue signs a token for the identity. A non-positive ttl uses the default lifetime.
func (c *Codec) Issue(identity models.Identity, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = c.ttl
	}
	now := c.now()

	claims := newClaims(identity)
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   identity.UserID.String(),
		Issuer:    c.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Decode verifies the token signature and expiry and returns the identity it carries
func (c *Codec) Decode(tokenString string) (*models.Identity, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
		jwt.WithLeeway(c.leeway),
		jwt.WithExpirationRequired(),
	}
	if c.issuer != "" {
		opts = append(opts, jwt.WithIssuer(c.issuer))
	}

	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	identity, err := claims.toIdentity()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return identity, nil
}
