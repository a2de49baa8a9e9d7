// Package auth verifies the access tokens carried by HELLO messages.
package auth

import (
	"errors"
	"fmt"

	jwt "github.com/form3tech-oss/jwt-go"
)

// ErrInvalidToken is returned for any token that fails verification.
// The cause is deliberately not exposed to clients.
var ErrInvalidToken = errors.New("invalid access token")

// Verifier checks HS256-signed tokens against a shared secret and
// extracts the player identity from the sub claim.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Verify returns the player id for a valid token.
func (v *Verifier) Verify(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", ErrInvalidToken
	}
	return sub, nil
}
