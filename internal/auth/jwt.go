// Package auth provides token issuance, password hashing and the
// request authorizer for the bloglist API.
//
// AUTHENTICATION FLOW OVERVIEW:
//  1. Client POSTs username/password to /api/login
//  2. Server checks the bcrypt hash and issues a signed JWT (1 hour)
//  3. Client sends "Authorization: Bearer <jwt>" on protected routes
//  4. RequireUser extracts the token, verifies it, loads the user and
//     puts the user record in the request context
//
// Tokens are stateless. Nothing about a session is stored server-side, so
// validity is decided by the signature, the expiry and the issuer alone.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// DefaultTokenTTL is how long an issued token stays valid.
	DefaultTokenTTL = time.Hour

	issuer = "bloglist"
)

// TokenService handles JWT creation and validation.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService creates a TokenService with the given secret and the
// default one-hour lifetime.
// The secret should be at least 32 bytes of random data in production.
// Example: JWT_SECRET=$(openssl rand -hex 32)
func NewTokenService(secret string) (*TokenService, error) {
	return NewTokenServiceWithTTL(secret, DefaultTokenTTL)
}

// NewTokenServiceWithTTL is NewTokenService with a custom token lifetime.
func NewTokenServiceWithTTL(secret string, ttl time.Duration) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	if ttl <= 0 {
		return nil, errors.New("auth: token TTL must be positive")
	}
	return &TokenService{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Claims is the token payload. Username and ID are the two fields a
// client may rely on; the registered claims carry expiry and issuer.
type Claims struct {
	Username string `json:"username"`
	ID       string `json:"id"`
	jwt.RegisteredClaims
}

// Generate creates and signs a token for the given user.
//
// Signing algorithm: HS256 (HMAC-SHA256), symmetric.
func (s *TokenService) Generate(username, userID string) (string, error) {
	return s.GenerateWithDuration(username, userID, s.ttl)
}

// GenerateWithDuration creates a token with a custom expiry duration.
// Used in tests to mint already-expired tokens.
func (s *TokenService) GenerateWithDuration(username, userID string, d time.Duration) (string, error) {
	now := s.now()

	c := Claims{
		Username: username,
		ID:       userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies a JWT string and returns its claims.
//
// VALIDATION CHECKS (performed by the jwt library):
//   - Signature is valid (wasn't tampered with)
//   - Token is not expired, and carries an expiry at all
//   - Issuer matches "bloglist"
//   - Algorithm is HS256 (prevents algorithm confusion attacks)
//
// Validate does NOT require the id claim. Deciding what a token without a
// user id means is the authorizer's job.
func (s *TokenService) Validate(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&Claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("auth: token expired")
		}
		return nil, fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("auth: invalid token claims")
	}

	return c, nil
}
