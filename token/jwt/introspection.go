// Package jwt reads the claims of JWT-shaped access and ID tokens for display.
// Signatures are NOT verified: the client is not the audience that validates them.
package jwt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-oauth2-client/token"
)

// ErrNotJWT is returned for opaque tokens.
var ErrNotJWT = errors.New("token is not a JWT")

// TokenIntrospection summarises the registered claims of a JWT.
// Active reflects the exp claim only.
type TokenIntrospection struct {
	Active bool             `json:"active"`          // exp is absent or in the future
	Aud    []string         `json:"aud,omitempty"`   // Audience
	Exp    *int64           `json:"exp,omitempty"`   // Expiration
	Iat    *int64           `json:"iat,omitempty"`   // Issued at time
	Iss    string           `json:"iss,omitempty"`   // Issuer of the token
	Sub    string           `json:"sub,omitempty"`   // Subject
	Scope  string           `json:"scope,omitempty"` // Scope claim, if the issuer sets one
	Claims jwtlib.MapClaims `json:"claims"`          // Every claim, verbatim
}

// Claims parses rawToken without verifying its signature.
func Claims(rawToken string) (jwtlib.MapClaims, error) {
	rawToken = strings.TrimSpace(rawToken)
	if strings.Count(rawToken, ".") != 2 {
		return nil, ErrNotJWT
	}

	claims := jwtlib.MapClaims{}
	if _, _, err := jwtlib.NewParser().ParseUnverified(rawToken, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotJWT, err)
	}
	return claims, nil
}

// Introspect extracts the registered claims of rawToken.
func Introspect(rawToken string) (*TokenIntrospection, error) {
	claims, err := Claims(rawToken)
	if err != nil {
		return nil, err
	}

	ti := &TokenIntrospection{Active: true, Claims: claims}
	ti.Iss, _ = claims.GetIssuer()
	ti.Sub, _ = claims.GetSubject()
	ti.Aud, _ = claims.GetAudience()
	ti.Scope, _ = claims["scope"].(string)

	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		v := iat.Unix()
		ti.Iat = &v
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		v := exp.Unix()
		ti.Exp = &v
		ti.Active = token.NowTimeFunc().Before(exp.Time)
	}
	return ti, nil
}

// Expiry returns the exp claim of rawToken, or the zero time when it has none.
func Expiry(rawToken string) (time.Time, error) {
	claims, err := Claims(rawToken)
	if err != nil {
		return time.Time{}, err
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("[jwt Expiry] invalid exp claim: %w", err)
	}
	if exp == nil {
		return time.Time{}, nil
	}
	return exp.Time, nil
}
