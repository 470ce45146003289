package session

import (
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// ErrDecodeFailed means the stored credential is not a readable JWT.
// Callers treat it as "unauthenticated", not as a fatal condition.
var ErrDecodeFailed = errors.New("credential decode failed")

// Claim URIs the backend embeds (ASP.NET identity defaults).
const (
	claimNameIdentifier = "http://schemas.xmlsoap.org/ws/2005/05/identity/claims/nameidentifier"
	claimName           = "http://schemas.xmlsoap.org/ws/2005/05/identity/claims/name"
)

// Claims is the typed view of the credential payload the client cares about.
type Claims struct {
	UserID    string
	UserName  string
	ExpiresAt time.Time
}

// decodeClaims parses the token payload without verifying the signature.
// The client has no signing key; the server is the authority, this is only
// a local read of who we are.
func decodeClaims(token string) (*Claims, error) {
	parser := jwt.NewParser()
	mapClaims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, mapClaims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}

	claims := &Claims{}
	if v, ok := mapClaims[claimNameIdentifier].(string); ok {
		claims.UserID = v
	}
	if v, ok := mapClaims[claimName].(string); ok {
		claims.UserName = v
	}
	if exp, err := mapClaims.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}
	return claims, nil
}
