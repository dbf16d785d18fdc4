package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tiendabot/storefront/internal/access"
)

// ErrInvalidToken is returned for tokens that fail signature or claim checks.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the payload the chat gateway signs for each forwarded command.
type Claims struct {
	Roles []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// Sign issues an HS256 token for caller valid for ttl.
func Sign(caller access.Caller, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Roles: caller.Roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   caller.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// Parse verifies token and returns the caller it describes.
func Parse(token string, secret []byte) (access.Caller, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return access.Caller{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return access.Caller{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return access.Caller{ID: claims.Subject, Roles: claims.Roles}, nil
}
