// Package auth provides JWT issuance/verification, bcrypt password
// hashing, the Google OAuth provider, and the bearer-token middleware.
//
// A session token is a signed HS256 JWT carrying the user's id ("sub"),
// email and display name, valid for 24 hours. Protected handlers derive
// the acting user from the verified claims; never from the request body.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenTTL is the lifetime of a session token.
const TokenTTL = 24 * time.Hour

const issuer = "donatec"

// Claims is the verified payload of a session token.
type Claims struct {
	UserID string
	Email  string
	Name   string
}

// tokenClaims is the wire shape: registered claims plus our custom fields.
type tokenClaims struct {
	jwt.RegisteredClaims
	Email string `json:"correo"`
	Name  string `json:"nombre"`
}

// TokenService signs and verifies session tokens with an HMAC secret.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService with the given secret.
// The secret should be at least 32 bytes of random data in production.
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

// Generate creates and signs a session token for the given identity.
func (s *TokenService) Generate(userID, email, name string) (string, error) {
	return s.GenerateWithDuration(userID, email, name, TokenTTL)
}

// GenerateWithDuration creates a token with a custom expiry. Exposed for
// tests that need an already-expired token.
func (s *TokenService) GenerateWithDuration(userID, email, name string, d time.Duration) (string, error) {
	now := time.Now()

	c := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    issuer,
		},
		Email: email,
		Name:  name,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// ErrTokenExpired is returned by Validate for tokens past their expiry,
// so callers can distinguish "expired" from "forged or malformed".
var ErrTokenExpired = errors.New("auth: token expired")

// Validate parses and verifies a session token and returns its claims.
//
// Checks enforced: HS256 signature, expiry, issuer. Restricting the
// accepted algorithms blocks algorithm-confusion tokens.
func (s *TokenService) Validate(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&tokenClaims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*tokenClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("auth: invalid token claims")
	}
	if c.Subject == "" {
		return nil, fmt.Errorf("auth: token has no subject")
	}

	return &Claims{
		UserID: c.Subject,
		Email:  c.Email,
		Name:   c.Name,
	}, nil
}
