package connection

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testTenantID = "11111111-2222-3333-4444-555555555555"
	testClientID = "aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee"
)

func TestNewAcquirer(t *testing.T) {
	t.Run("creates acquirer with defaults", func(t *testing.T) {
		a := NewAcquirer()
		require.NotNil(t, a.httpClient)
		assert.Equal(t, DefaultHTTPTimeout, a.httpClient.Timeout)
		assert.Equal(t, DefaultAuthority, a.authority)
	})

	t.Run("applies options", func(t *testing.T) {
		customHTTP := &http.Client{Timeout: 10 * time.Second}

		a := NewAcquirer(
			WithHTTPClient(customHTTP),
			WithAuthority("https://login.example.com/"),
		)

		assert.Same(t, customHTTP, a.httpClient)
		assert.Equal(t, "https://login.example.com", a.authority)
	})
}

func TestAcquirer_Acquire(t *testing.T) {
	t.Run("posts client credentials form and parses token", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, fmt.Sprintf("/%s/oauth2/v2.0/token", testTenantID), r.URL.Path)
			assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))

			require.NoError(t, r.ParseForm())
			assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
			assert.Equal(t, DevOpsResourceScope, r.PostForm.Get("scope"))
			assert.Equal(t, testClientID, r.PostForm.Get("client_id"))
			assert.Equal(t, "s3cret", r.PostForm.Get("client_secret"))

			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"access_token":"eyJtoken","token_type":"Bearer","expires_in":3599}`)
		}))
		defer server.Close()

		a := NewAcquirer(WithAuthority(server.URL), WithHTTPClient(server.Client()))
		token, err := a.Acquire(context.Background(), testTenantID, testClientID, NewSecret("s3cret"))

		require.NoError(t, err)
		assert.Equal(t, "eyJtoken", token.AccessToken)
		assert.Equal(t, "Bearer", token.TokenType)
		assert.Equal(t, 3599, token.ExpiresIn)
	})

	t.Run("surfaces provider error code and description", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"error":"invalid_client","error_description":"AADSTS7000215: Invalid client secret provided."}`)
		}))
		defer server.Close()

		a := NewAcquirer(WithAuthority(server.URL), WithHTTPClient(server.Client()))
		_, err := a.Acquire(context.Background(), testTenantID, testClientID, NewSecret("wrong"))

		require.Error(t, err)
		var authErr *AuthError
		require.ErrorAs(t, err, &authErr)
		assert.Equal(t, http.StatusUnauthorized, authErr.StatusCode)
		assert.Equal(t, "invalid_client", authErr.ProviderCode)
		assert.Contains(t, err.Error(), "invalid_client")
		assert.Contains(t, err.Error(), "AADSTS7000215")
	})

	t.Run("reports status when error body is not JSON", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprint(w, "upstream unavailable")
		}))
		defer server.Close()

		a := NewAcquirer(WithAuthority(server.URL), WithHTTPClient(server.Client()))
		_, err := a.Acquire(context.Background(), testTenantID, testClientID, NewSecret("s3cret"))

		require.Error(t, err)
		var authErr *AuthError
		require.ErrorAs(t, err, &authErr)
		assert.Equal(t, http.StatusServiceUnavailable, authErr.StatusCode)
		assert.Contains(t, err.Error(), "503")
	})

	t.Run("rejects malformed success body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"access_token": `)
		}))
		defer server.Close()

		a := NewAcquirer(WithAuthority(server.URL), WithHTTPClient(server.Client()))
		_, err := a.Acquire(context.Background(), testTenantID, testClientID, NewSecret("s3cret"))

		require.Error(t, err)
		assert.True(t, errors.Is(err, &AuthError{}))
		assert.Contains(t, err.Error(), "parse")
	})

	t.Run("rejects response without access_token", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"token_type":"Bearer","expires_in":3599}`)
		}))
		defer server.Close()

		a := NewAcquirer(WithAuthority(server.URL), WithHTTPClient(server.Client()))
		_, err := a.Acquire(context.Background(), testTenantID, testClientID, NewSecret("s3cret"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "access_token")
	})

	t.Run("rejects non-bearer token type", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"access_token":"abc","token_type":"MAC"}`)
		}))
		defer server.Close()

		a := NewAcquirer(WithAuthority(server.URL), WithHTTPClient(server.Client()))
		_, err := a.Acquire(context.Background(), testTenantID, testClientID, NewSecret("s3cret"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), `unexpected token type "MAC"`)
	})

	t.Run("validates inputs before any request", func(t *testing.T) {
		var calls int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
		}))
		defer server.Close()

		a := NewAcquirer(WithAuthority(server.URL), WithHTTPClient(server.Client()))

		_, err := a.Acquire(context.Background(), "", testClientID, NewSecret("s3cret"))
		require.Error(t, err)

		_, err = a.Acquire(context.Background(), testTenantID, "", NewSecret("s3cret"))
		require.Error(t, err)

		_, err = a.Acquire(context.Background(), testTenantID, testClientID, NewSecret(""))
		require.Error(t, err)

		_, err = a.Acquire(context.Background(), testTenantID, testClientID, nil)
		require.Error(t, err)

		assert.Equal(t, int32(0), atomic.LoadInt32(&calls), "no request may be sent for invalid inputs")
	})

	t.Run("wraps transport failures", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		serverURL := server.URL
		server.Close()

		a := NewAcquirer(WithAuthority(serverURL))
		_, err := a.Acquire(context.Background(), testTenantID, testClientID, NewSecret("s3cret"))

		require.Error(t, err)
		var authErr *AuthError
		require.ErrorAs(t, err, &authErr)
		assert.Zero(t, authErr.StatusCode)
		require.Error(t, authErr.Unwrap())
	})
}
