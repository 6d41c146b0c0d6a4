package connection

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"

	"azdoctl/pkg/logging"
)

const (
	// APIVersion pins the Azure DevOps REST contract used by the probe.
	APIVersion = "7.1"

	// ValidatorTimeout bounds the organization probe.
	ValidatorTimeout = 30 * time.Second
)

// Validator probes an Azure DevOps organization to confirm that a token
// actually grants access. Failures are reported in the result, never as an
// error: callers decide whether an unreachable organization is terminal.
type Validator struct {
	httpClient *http.Client
}

// ValidatorOption configures the Validator.
type ValidatorOption func(*Validator)

// WithValidatorHTTPClient sets a custom HTTP client.
func WithValidatorHTTPClient(httpClient *http.Client) ValidatorOption {
	return func(v *Validator) {
		v.httpClient = httpClient
	}
}

// NewValidator creates a new organization validator.
func NewValidator(opts ...ValidatorOption) *Validator {
	v := &Validator{
		httpClient: &http.Client{
			Timeout:   ValidatorTimeout,
			Transport: cleanhttp.DefaultPooledTransport(),
		},
	}

	for _, opt := range opts {
		opt(v)
	}

	return v
}

// Validate lists the organization's projects with the given token. Listing
// is the cheapest call that proves both reachability and authorization;
// the project count comes back for free.
func (v *Validator) Validate(ctx context.Context, organizationURL string, accessToken *Secret) *ValidationResult {
	orgName := OrganizationName(organizationURL)
	result := &ValidationResult{
		OrganizationURL:  organizationURL,
		OrganizationName: orgName,
		APIVersion:       APIVersion,
	}

	probeURL := fmt.Sprintf("%s/_apis/projects?api-version=%s",
		strings.TrimSuffix(organizationURL, "/"), APIVersion)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, probeURL, nil)
	if err != nil {
		result.Message = fmt.Sprintf("failed to create validation request: %v", err)
		return result
	}
	req.Header.Set("Authorization", "Bearer "+accessToken.Reveal())
	req.Header.Set("Accept", "application/json")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		result.Message = fmt.Sprintf("organization %s is not reachable: %v", orgName, err)
		return result
	}
	defer resp.Body.Close()

	result.StatusCode = resp.StatusCode

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		result.Message = fmt.Sprintf("failed to read validation response: %v", err)
		return result
	}

	if resp.StatusCode != http.StatusOK {
		msg := fmt.Sprintf("organization probe returned status %d", resp.StatusCode)
		var devopsErr struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(body, &devopsErr); err == nil && devopsErr.Message != "" {
			msg = fmt.Sprintf("%s: %s", msg, devopsErr.Message)
		}
		result.Message = msg
		return result
	}

	var projects struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(body, &projects); err != nil {
		result.Message = fmt.Sprintf("failed to parse project list: %v", err)
		return result
	}

	result.Success = true
	result.ResourceCount = projects.Count
	result.Message = fmt.Sprintf("organization %s is reachable (%d projects visible)", orgName, projects.Count)

	logging.Debug("Validate", "Organization %s reachable, %d projects visible", orgName, projects.Count)
	return result
}

// OrganizationName derives the display name from an organization URL: the
// last non-empty path segment. No extra API call is needed for it.
func OrganizationName(organizationURL string) string {
	trimmed := strings.TrimSuffix(organizationURL, "/")
	idx := strings.LastIndex(trimmed, "/")
	if idx < 0 || idx == len(trimmed)-1 {
		return trimmed
	}
	return trimmed[idx+1:]
}
