package connection

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims holds display-only claims peeked from an access token.
// Values are unverified: they come from decoding the JWT payload without
// signature checking and must never drive authorization decisions. Cache
// validity is governed solely by the session's stored expiry.
type TokenClaims struct {
	// TenantID is the issuing tenant (tid claim).
	TenantID string

	// AppID is the authenticated application (appid claim, or azp for
	// v2.0 tokens).
	AppID string

	// Roles are the application permissions granted on the resource.
	Roles []string

	// IssuedAt is when the token was minted.
	IssuedAt time.Time

	// ExpiresAt is the token's own expiry claim.
	ExpiresAt time.Time
}

// PeekClaims decodes the access token without verifying its signature.
// Returns nil when the token is not a parseable JWT; opaque tokens are
// legitimate and simply yield no claims.
func PeekClaims(accessToken *Secret) *TokenClaims {
	if accessToken.IsEmpty() {
		return nil
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken.Reveal(), claims); err != nil {
		return nil
	}

	tc := &TokenClaims{}
	if v, ok := claims["tid"].(string); ok {
		tc.TenantID = v
	}
	if v, ok := claims["appid"].(string); ok {
		tc.AppID = v
	} else if v, ok := claims["azp"].(string); ok {
		tc.AppID = v
	}
	if roles, ok := claims["roles"].([]interface{}); ok {
		for _, role := range roles {
			if r, ok := role.(string); ok {
				tc.Roles = append(tc.Roles, r)
			}
		}
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		tc.IssuedAt = iat.Time
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		tc.ExpiresAt = exp.Time
	}

	return tc
}
