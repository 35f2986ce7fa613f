// Polyloc - Translation Management Backend
// Copyright 2026 Polyloc Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/polyloc/polyloc

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenPurpose restricts where a signed token may be redeemed. A password
// reset token must never pass as an email verification and vice versa.
type TokenPurpose string

const (
	PurposeVerifyEmail   TokenPurpose = "verify_email"
	PurposeResetPassword TokenPurpose = "reset_password"
)

var ErrInvalidToken = errors.New("invalid token")

// TokenService issues and verifies HMAC-signed single-purpose tokens that
// get sent to users out of band (email links).
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService creates a token service. secret must be kept private;
// anyone holding it can mint valid tokens.
func NewTokenService(secret string, ttl time.Duration) *TokenService {
	return &TokenService{secret: []byte(secret), ttl: ttl}
}

type tokenClaims struct {
	Purpose TokenPurpose `json:"purpose"`
	jwt.RegisteredClaims
}

// Issue creates a signed token binding userID to the given purpose.
func (t *TokenService) Issue(userID string, purpose TokenPurpose) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses a token and returns the user id it was issued for. Tokens
// with the wrong purpose, a bad signature or past expiry all yield
// ErrInvalidToken.
func (t *TokenService) Verify(tokenString string, purpose TokenPurpose) (string, error) {
	var claims tokenClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}
	if claims.Purpose != purpose || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
