package connection

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidator_Validate(t *testing.T) {
	t.Run("reports success with project count", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "/acme/_apis/projects", r.URL.Path)
			assert.Equal(t, APIVersion, r.URL.Query().Get("api-version"))
			assert.Equal(t, "Bearer access-token-abc", r.Header.Get("Authorization"))

			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"count":3,"value":[{"name":"One"},{"name":"Two"},{"name":"Three"}]}`)
		}))
		defer server.Close()

		v := NewValidator(WithValidatorHTTPClient(server.Client()))
		result := v.Validate(context.Background(), server.URL+"/acme", NewSecret("access-token-abc"))

		require.NotNil(t, result)
		assert.True(t, result.Success)
		assert.Equal(t, "acme", result.OrganizationName)
		assert.Equal(t, 3, result.ResourceCount)
		assert.Equal(t, APIVersion, result.APIVersion)
		assert.Equal(t, http.StatusOK, result.StatusCode)
		assert.Contains(t, result.Message, "acme")
	})

	t.Run("reports rejection with status and body message", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"message":"TF400813: The user is not authorized to access this resource."}`)
		}))
		defer server.Close()

		v := NewValidator(WithValidatorHTTPClient(server.Client()))
		result := v.Validate(context.Background(), server.URL+"/acme", NewSecret("bad-token"))

		assert.False(t, result.Success)
		assert.Equal(t, http.StatusUnauthorized, result.StatusCode)
		assert.Contains(t, result.Message, "401")
		assert.Contains(t, result.Message, "TF400813")
	})

	t.Run("reports rejection without body message", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		v := NewValidator(WithValidatorHTTPClient(server.Client()))
		result := v.Validate(context.Background(), server.URL+"/ghost", NewSecret("token"))

		assert.False(t, result.Success)
		assert.Contains(t, result.Message, "404")
	})

	t.Run("reports unreachable organizations instead of failing", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		orgURL := server.URL + "/acme"
		server.Close()

		v := NewValidator()
		result := v.Validate(context.Background(), orgURL, NewSecret("token"))

		require.NotNil(t, result)
		assert.False(t, result.Success)
		assert.Zero(t, result.StatusCode)
		assert.Contains(t, result.Message, "not reachable")
	})

	t.Run("reports malformed project list", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"count": oops`)
		}))
		defer server.Close()

		v := NewValidator(WithValidatorHTTPClient(server.Client()))
		result := v.Validate(context.Background(), server.URL+"/acme", NewSecret("token"))

		assert.False(t, result.Success)
		assert.Contains(t, result.Message, "parse")
	})
}

func TestOrganizationName(t *testing.T) {
	tests := []struct {
		url      string
		expected string
	}{
		{"https://dev.azure.com/acme", "acme"},
		{"https://dev.azure.com/acme/", "acme"},
		{"https://dev.azure.com/my-org-42", "my-org-42"},
		{"acme", "acme"},
		{"", ""},
	}

	for _, tc := range tests {
		t.Run(tc.url, func(t *testing.T) {
			assert.Equal(t, tc.expected, OrganizationName(tc.url))
		})
	}
}
