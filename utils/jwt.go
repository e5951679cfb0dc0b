package utils

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt"
)

var ErrMalformedToken = errors.New("malformed bearer token")

// TokenClaims is the subset of a visitor token this service reads.
// The upstream API owns the signing key, so the signature is not verified here;
// the token is only forwarded and inspected to skip obviously stale sessions.
type TokenClaims struct {
	Subject   string
	Email     string
	ExpiresAt time.Time
}

// Expired reports whether the token carries an exp claim in the past.
func (c TokenClaims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

// InspectToken decodes the claims of a JWT without verifying its signature.
func InspectToken(tokenString string) (TokenClaims, error) {
	var out TokenClaims
	claims := jwt.MapClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(tokenString, claims); err != nil {
		return out, ErrMalformedToken
	}

	if sub, ok := claims["sub"].(string); ok {
		out.Subject = sub
	}
	if email, ok := claims["email"].(string); ok {
		out.Email = email
	}
	if exp, ok := claims["exp"].(float64); ok {
		out.ExpiresAt = time.Unix(int64(exp), 0)
	}
	return out, nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) string {
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}
