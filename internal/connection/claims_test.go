package connection

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedTestToken(t *testing.T, claims jwt.MapClaims) *Secret {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("unit-test-key"))
	require.NoError(t, err)
	return NewSecret(token)
}

func TestPeekClaims(t *testing.T) {
	t.Run("extracts display claims", func(t *testing.T) {
		issued := time.Now().Add(-time.Minute).Truncate(time.Second)
		expires := time.Now().Add(time.Hour).Truncate(time.Second)

		secret := signedTestToken(t, jwt.MapClaims{
			"tid":   testTenantID,
			"appid": testClientID,
			"roles": []string{"vso.project", "vso.build"},
			"iat":   jwt.NewNumericDate(issued),
			"exp":   jwt.NewNumericDate(expires),
		})

		claims := PeekClaims(secret)

		require.NotNil(t, claims)
		assert.Equal(t, testTenantID, claims.TenantID)
		assert.Equal(t, testClientID, claims.AppID)
		assert.Equal(t, []string{"vso.project", "vso.build"}, claims.Roles)
		assert.True(t, claims.IssuedAt.Equal(issued))
		assert.True(t, claims.ExpiresAt.Equal(expires))
	})

	t.Run("falls back to azp for the app ID", func(t *testing.T) {
		secret := signedTestToken(t, jwt.MapClaims{
			"azp": testClientID,
		})

		claims := PeekClaims(secret)

		require.NotNil(t, claims)
		assert.Equal(t, testClientID, claims.AppID)
	})

	t.Run("returns nil for opaque tokens", func(t *testing.T) {
		assert.Nil(t, PeekClaims(NewSecret("not-a-jwt")))
	})

	t.Run("returns nil for empty secrets", func(t *testing.T) {
		assert.Nil(t, PeekClaims(NewSecret("")))
		assert.Nil(t, PeekClaims(nil))
	})

	t.Run("tolerates missing claims", func(t *testing.T) {
		secret := signedTestToken(t, jwt.MapClaims{})

		claims := PeekClaims(secret)

		require.NotNil(t, claims)
		assert.Empty(t, claims.TenantID)
		assert.Empty(t, claims.AppID)
		assert.Empty(t, claims.Roles)
		assert.True(t, claims.ExpiresAt.IsZero())
	})
}
