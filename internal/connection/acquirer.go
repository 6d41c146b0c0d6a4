package connection

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"

	"azdoctl/pkg/logging"
)

const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// DefaultAuthority is the Microsoft Entra ID endpoint that mints
	// client-credential tokens.
	DefaultAuthority = "https://login.microsoftonline.com"
)

// Acquirer requests Azure DevOps access tokens from Microsoft Entra ID
// using the OAuth2 client credentials grant. Each call is a single HTTP
// round-trip: no caching, no retries.
type Acquirer struct {
	httpClient *http.Client
	authority  string
}

// AcquirerOption configures the Acquirer.
type AcquirerOption func(*Acquirer)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) AcquirerOption {
	return func(a *Acquirer) {
		a.httpClient = httpClient
	}
}

// WithAuthority overrides the Entra ID authority base URL. Used by tests
// to point the acquirer at a local endpoint.
func WithAuthority(authority string) AcquirerOption {
	return func(a *Acquirer) {
		a.authority = strings.TrimSuffix(authority, "/")
	}
}

// NewAcquirer creates a new token acquirer.
func NewAcquirer(opts ...AcquirerOption) *Acquirer {
	a := &Acquirer{
		httpClient: &http.Client{
			Timeout:   DefaultHTTPTimeout,
			Transport: cleanhttp.DefaultTransport(),
		},
		authority: DefaultAuthority,
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Acquire requests an access token for the Azure DevOps resource scope.
// The client secret is revealed only while the request form is encoded;
// the form's copy is dropped before Acquire returns, on every path.
func (a *Acquirer) Acquire(ctx context.Context, tenantID, clientID string, clientSecret *Secret) (*Token, error) {
	if tenantID == "" {
		return nil, &AuthError{Description: "tenant ID is required"}
	}
	if clientID == "" {
		return nil, &AuthError{Description: "client ID is required"}
	}
	if clientSecret.IsEmpty() {
		return nil, &AuthError{Description: "client secret is empty"}
	}

	tokenEndpoint := fmt.Sprintf("%s/%s/oauth2/v2.0/token", a.authority, tenantID)

	data := url.Values{
		"grant_type":    {"client_credentials"},
		"scope":         {DevOpsResourceScope},
		"client_id":     {clientID},
		"client_secret": {clientSecret.Reveal()},
	}
	defer data.Del("client_secret")

	logging.Debug("OAuth", "Requesting token for client %s from tenant %s",
		logging.TruncateID(clientID), logging.TruncateID(tenantID))

	return a.doTokenRequest(ctx, tokenEndpoint, data)
}

// doTokenRequest performs a token endpoint request.
func (a *Acquirer) doTokenRequest(ctx context.Context, tokenEndpoint string, data url.Values) (*Token, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenEndpoint, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, &AuthError{Description: "failed to create token request", Reason: err}
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, &AuthError{Description: "token request failed", Reason: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &AuthError{StatusCode: resp.StatusCode, Description: "failed to read token response", Reason: err}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, authErrorFromResponse(resp.StatusCode, body)
	}

	var token Token
	if err := json.Unmarshal(body, &token); err != nil {
		return nil, &AuthError{StatusCode: resp.StatusCode, Description: "failed to parse token response", Reason: err}
	}

	if token.AccessToken == "" {
		return nil, &AuthError{StatusCode: resp.StatusCode, Description: "token response is missing access_token"}
	}
	if !strings.EqualFold(token.TokenType, "Bearer") {
		return nil, &AuthError{StatusCode: resp.StatusCode, Description: fmt.Sprintf("unexpected token type %q", token.TokenType)}
	}

	logging.Debug("OAuth", "Token acquired (expires in %ds)", token.ExpiresIn)
	return &token, nil
}

// authErrorFromResponse extracts the provider error from a failed token
// response. Entra ID reports failures as {"error": ..., "error_description": ...}.
func authErrorFromResponse(statusCode int, body []byte) *AuthError {
	var providerErr struct {
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
	}
	if err := json.Unmarshal(body, &providerErr); err == nil && providerErr.Error != "" {
		return &AuthError{
			StatusCode:   statusCode,
			ProviderCode: providerErr.Error,
			Description:  providerErr.ErrorDescription,
		}
	}

	return &AuthError{
		StatusCode:  statusCode,
		Description: fmt.Sprintf("token endpoint returned status %d", statusCode),
	}
}
