package security

import "time"

// TokenClaims is the verified content of a provider-issued bearer token.
// UserID is the provider identifier (the token subject).
type TokenClaims struct {
	UserID string
	Email  string
	Name   string
	Exp    time.Time
	Issuer string
}
