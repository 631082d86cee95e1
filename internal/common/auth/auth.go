// Package auth verifies Supabase access tokens and exposes the resulting
// principal to the rest of the service.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid token")
)

// Principal is the authenticated caller as described by the Supabase JWT.
type Principal struct {
	UserID      string
	Email       string
	Role        string // postgres role claim, e.g. "authenticated"
	AppRole     string // app_metadata.role
	IsAdmin     bool   // fallback admin flag from app_metadata
	SessionID   string
	AccessToken string
	ExpiresAt   time.Time
}

type Verifier struct {
	secret []byte
	now    func() time.Time
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret), now: time.Now}
}

// Verify checks the HMAC signature and expiry and extracts the principal.
func (v *Verifier) Verify(token string) (*Principal, error) {
	if token == "" {
		return nil, ErrMissingToken
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	}, jwt.WithTimeFunc(v.now), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}

	p := &Principal{
		UserID:      stringClaim(claims, "sub"),
		Email:       stringClaim(claims, "email"),
		Role:        stringClaim(claims, "role"),
		SessionID:   stringClaim(claims, "session_id"),
		AccessToken: token,
	}
	if p.UserID == "" {
		return nil, fmt.Errorf("%w: empty subject", ErrInvalidToken)
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		p.ExpiresAt = exp.Time
	}

	if meta, ok := claims["app_metadata"].(map[string]interface{}); ok {
		if role, ok := meta["role"].(string); ok {
			p.AppRole = role
		}
		isAdmin, _ := meta["is_admin"].(bool)
		p.IsAdmin = isAdmin || p.AppRole == "admin"
	}

	return p, nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, error) {
	if header == "" {
		return "", ErrMissingToken
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", fmt.Errorf("%w: malformed authorization header", ErrInvalidToken)
	}
	return strings.TrimSpace(parts[1]), nil
}

func stringClaim(claims jwt.MapClaims, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}
