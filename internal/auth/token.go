// Package auth verifies the bearer tokens that identify the calling member.
// Tokens are issued elsewhere; this package only checks HS256 signatures and
// expiry, then exposes the member id (the "sub" claim) through the request
// context.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/goormcoder/ieum/backend/internal/domain"
)

var (
	ErrMissingToken = fmt.Errorf("%w: authorization token required", domain.ErrUnauthorized)
	ErrInvalidToken = fmt.Errorf("%w: invalid or expired token", domain.ErrUnauthorized)
)

// Verifier validates member tokens signed with a shared secret.
type Verifier struct {
	secret []byte
	now    func() time.Time
}

// NewVerifier returns a Verifier for tokens signed with secret.
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret), now: time.Now}
}

// Verify parses token and returns the member id carried in its subject.
func (v *Verifier) Verify(token string) (uuid.UUID, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (any, error) { return v.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(v.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w (%v)", ErrInvalidToken, err)
	}

	memberID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w (subject is not a member id)", ErrInvalidToken)
	}
	return memberID, nil
}

// Issue signs a token for memberID that expires after ttl. The API never
// calls it; it exists for tests and local tooling.
func (v *Verifier) Issue(memberID uuid.UUID, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		return "", errors.New("auth: ttl must be positive")
	}
	now := v.now()
	claims := jwt.RegisteredClaims{
		Subject:   memberID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, nil
}
