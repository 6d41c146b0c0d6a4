package connection

import (
	"time"

	"golang.org/x/oauth2"
)

// DevOpsResourceScope is the OAuth scope that requests an Azure DevOps
// access token. The GUID is the resource application ID of the Azure
// DevOps service; "/.default" expands to the permissions granted to the
// client application in the tenant.
const DevOpsResourceScope = "499b84ac-1321-427f-aa17-267ca6975798/.default"

// SessionExpiryBuffer is the margin applied when checking session expiry.
// A session whose token expires within this buffer is treated as absent so
// callers never start work with a token about to lapse.
const SessionExpiryBuffer = 5 * time.Minute

// DefaultTokenLifetime is assumed when the token endpoint does not declare
// expires_in. Entra ID access tokens default to roughly one hour.
const DefaultTokenLifetime = time.Hour

// Session status constants for SessionSummary.Status.
const (
	// StatusConnected indicates a fresh token was acquired and validated.
	StatusConnected = "connected"

	// StatusReused indicates an existing cached session satisfied the request.
	StatusReused = "reused"
)

// Source identifies where an identity field's value was resolved from.
type Source string

const (
	SourceFlag    Source = "argument"
	SourceEnv     Source = "environment"
	SourceConfig  Source = "config"
	SourceDefault Source = "default"
)

// Identity is the set of inputs that establish a connection.
type Identity struct {
	// OrganizationURL is the Azure DevOps organization, e.g.
	// https://dev.azure.com/acme.
	OrganizationURL string

	// TenantID is the Entra ID tenant GUID.
	TenantID string

	// ClientID is the application (service principal) GUID.
	ClientID string

	// ClientSecret is the application secret. Connect consumes it: the
	// backing buffer is wiped before Connect returns.
	ClientSecret *Secret

	// Project optionally scopes the session to a project. It does not
	// participate in cache-reuse decisions.
	Project string

	// Provenance records where each field's value was resolved from.
	// Informational only; never part of cache-reuse decisions.
	Provenance map[string]Source
}

// Token is the token endpoint's successful response.
type Token struct {
	// AccessToken is the bearer token used for authorization.
	AccessToken string `json:"access_token"`

	// TokenType is expected to be "Bearer".
	TokenType string `json:"token_type"`

	// ExpiresIn is the token lifetime in seconds (from the token response).
	ExpiresIn int `json:"expires_in,omitempty"`
}

// Session is the cached connection state for one organization.
type Session struct {
	OrganizationURL  string
	OrganizationName string
	TenantID         string
	ClientID         string
	Project          string

	// AccessToken is the bearer token backing this session.
	AccessToken *Secret

	// TokenExpiry is the absolute expiry of the access token.
	TokenExpiry time.Time

	// EstablishedAt is when the token exchange completed.
	EstablishedAt time.Time

	// ResourceCount is the number of projects the validation probe saw.
	ResourceCount int

	// APIVersion is the REST contract version the session was validated
	// against.
	APIVersion string

	Provenance map[string]Source
}

// Clone returns a deep copy of the session. The access token buffer and
// the provenance map are copied, so mutating either side never affects
// the other.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	clone := *s
	clone.AccessToken = s.AccessToken.Clone()
	clone.Provenance = cloneProvenance(s.Provenance)
	return &clone
}

// Summarize converts the session into a reportable summary with the given
// status. The summary carries no token material and owns its own copy of
// the provenance map.
func (s *Session) Summarize(status string) *SessionSummary {
	return &SessionSummary{
		Status:           status,
		OrganizationURL:  s.OrganizationURL,
		OrganizationName: s.OrganizationName,
		TenantID:         s.TenantID,
		ClientID:         s.ClientID,
		Project:          s.Project,
		TokenExpiry:      s.TokenExpiry,
		EstablishedAt:    s.EstablishedAt,
		ResourceCount:    s.ResourceCount,
		Provenance:       cloneProvenance(s.Provenance),
	}
}

// ExpiresWithin reports whether the token expiry falls inside the given
// buffer from now. An expiry exactly on the boundary counts as inside.
func (s *Session) ExpiresWithin(buffer time.Duration) bool {
	return !s.TokenExpiry.After(time.Now().Add(buffer))
}

// Matches reports whether this session satisfies the identity's
// organization, tenant, and client. Project scope and the secret value are
// deliberately not compared: a session is organization-level state, and a
// rotated secret does not invalidate a token that is already minted.
func (s *Session) Matches(identity Identity) bool {
	return s.OrganizationURL == identity.OrganizationURL &&
		s.TenantID == identity.TenantID &&
		s.ClientID == identity.ClientID
}

// ToOAuth2Token converts the session to an oauth2.Token for compatibility
// with golang.org/x/oauth2 based clients.
func (s *Session) ToOAuth2Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken: s.AccessToken.Reveal(),
		TokenType:   "Bearer",
		Expiry:      s.TokenExpiry,
	}
}

// SessionSummary is the caller-facing description of a connection. It
// never carries the access token or the client secret.
type SessionSummary struct {
	Status           string            `json:"status"`
	OrganizationURL  string            `json:"organizationUrl"`
	OrganizationName string            `json:"organizationName"`
	TenantID         string            `json:"tenantId"`
	ClientID         string            `json:"clientId"`
	Project          string            `json:"project,omitempty"`
	TokenExpiry      time.Time         `json:"tokenExpiry"`
	EstablishedAt    time.Time         `json:"establishedAt"`
	ResourceCount    int               `json:"resourceCount,omitempty"`
	Provenance       map[string]Source `json:"provenance,omitempty"`
}

// Clone returns a copy of the summary with an independent provenance map.
func (s *SessionSummary) Clone() *SessionSummary {
	if s == nil {
		return nil
	}
	clone := *s
	clone.Provenance = cloneProvenance(s.Provenance)
	return &clone
}

// ValidationResult describes the outcome of an organization probe. A
// failed probe is a result, not an error: callers decide whether it is
// terminal.
type ValidationResult struct {
	// Success is true when the probe reached the organization and the
	// token was accepted.
	Success bool

	// OrganizationName is the display name derived from the URL.
	OrganizationName string

	// OrganizationURL is the probed organization.
	OrganizationURL string

	// ResourceCount is the number of projects visible to the identity.
	ResourceCount int

	// APIVersion is the REST contract version used by the probe.
	APIVersion string

	// StatusCode is the HTTP status of the probe response, 0 when no
	// response was received.
	StatusCode int

	// Message is a human-readable description of the outcome.
	Message string
}

func cloneProvenance(p map[string]Source) map[string]Source {
	if p == nil {
		return nil
	}
	out := make(map[string]Source, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}
