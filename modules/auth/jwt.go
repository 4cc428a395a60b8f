package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken is returned when the token is invalid.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken is returned when the token has expired.
	ErrExpiredToken = errors.New("token has expired")
	// ErrMissingSecret is returned when no signing secret is configured.
	ErrMissingSecret = errors.New("AUTH_JWT_SECRET is required")
)

// Config holds the settings needed to verify bearer tokens.
type Config struct {
	SecretKey string
	// Issuer is checked against the iss claim when set.
	Issuer string
}

// Validate reports missing settings.
func (c Config) Validate() error {
	if c.SecretKey == "" {
		return ErrMissingSecret
	}
	return nil
}

// Caller is the authenticated party behind a request.
type Caller struct {
	Subject string
}

// Verifier checks HMAC-signed JWT bearer tokens issued by an external party.
type Verifier struct {
	config Config
}

// NewVerifier creates a new Verifier with the given configuration.
func NewVerifier(config Config) *Verifier {
	return &Verifier{config: config}
}

// Verify validates the token and returns the caller it was issued to.
func (v *Verifier) Verify(tokenString string) (*Caller, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}),
		jwt.WithExpirationRequired(),
	}
	if v.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.config.Issuer))
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(_ *jwt.Token) (any, error) {
		return []byte(v.config.SecretKey), nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	return &Caller{Subject: claims.Subject}, nil
}
