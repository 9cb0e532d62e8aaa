// Package auth issues and verifies session credentials: signed access
// tokens, opaque refresh and reset tokens, and bcrypt password hashes.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/itemkeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Issuer signs and verifies HS256 access tokens carrying the user id as sub.
type Issuer struct {
	secret   []byte
	validity time.Duration
	now      func() time.Time
}

// NewIssuer returns an Issuer with the given secret and token lifetime.
func NewIssuer(secret []byte, validity time.Duration) *Issuer {
	return &Issuer{secret: secret, validity: validity, now: time.Now}
}

// WithClock replaces the time source, for tests.
func (i *Issuer) WithClock(now func() time.Time) *Issuer {
	i.now = now
	return i
}

// Validity is the lifetime of issued access tokens.
func (i *Issuer) Validity() time.Duration {
	return i.validity
}

func (i *Issuer) IssueAccessToken(userID string) (string, error) {
	now := i.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(i.validity)),
	})

	return token.SignedString(i.secret)
}

// VerifyAccessToken checks signature, algorithm and expiry and returns the
// subject. Expired tokens yield common.ErrTokenExpired; every other failure
// yields common.ErrInvalidToken.
func (i *Issuer) VerifyAccessToken(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", common.ErrInvalidToken
	}

	if !token.Valid || claims.Subject == "" {
		return "", common.ErrInvalidToken
	}

	return claims.Subject, nil
}
