package connection

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"

	"azdoctl/pkg/logging"
)

// organizationURLPattern matches modern Azure DevOps organization URLs
// after trailing-slash normalization. Legacy *.visualstudio.com hosts are
// deliberately not accepted.
var organizationURLPattern = regexp.MustCompile(`^https://dev\.azure\.com/[A-Za-z0-9][A-Za-z0-9-]*$`)

// TokenAcquirer obtains an access token for the given service principal.
type TokenAcquirer interface {
	Acquire(ctx context.Context, tenantID, clientID string, clientSecret *Secret) (*Token, error)
}

// OrganizationValidator probes an organization for reachability with a
// candidate token.
type OrganizationValidator interface {
	Validate(ctx context.Context, organizationURL string, accessToken *Secret) *ValidationResult
}

// Manager orchestrates connection establishment: input validation, cache
// reuse, token acquisition, organization validation, and session caching.
type Manager struct {
	store     *Store
	acquirer  TokenAcquirer
	validator OrganizationValidator

	// connectGroup deduplicates concurrent Connect calls for the same
	// identity so only one token exchange is in flight at a time.
	connectGroup singleflight.Group
}

// ManagerOption configures the Manager.
type ManagerOption func(*Manager)

// WithAcquirer overrides the token acquirer.
func WithAcquirer(acquirer TokenAcquirer) ManagerOption {
	return func(m *Manager) {
		m.acquirer = acquirer
	}
}

// WithValidator overrides the organization validator.
func WithValidator(validator OrganizationValidator) ManagerOption {
	return func(m *Manager) {
		m.validator = validator
	}
}

// WithStore sets the session store. Hosts that share one cache across
// several managers inject it here.
func WithStore(store *Store) ManagerOption {
	return func(m *Manager) {
		m.store = store
	}
}

// NewManager creates a connection manager with its own in-memory session
// store unless one is injected.
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{
		store:     NewStore(),
		acquirer:  NewAcquirer(),
		validator: NewValidator(),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Connect establishes or reuses a connection for the given identity.
//
// Inputs are validated before any network activity; malformed inputs fail
// with a ValidationError regardless of cache state. Unless force is set, a
// cached session matching the identity's organization, tenant, and client
// is reused without touching the network. A fresh connect acquires a
// token, validates the organization with it, and only then replaces the
// cached session, so a failed connect never disturbs a working one.
//
// Connect consumes the identity's client secret: the backing buffer is
// wiped before Connect returns, on success and failure alike. Concurrent
// calls for the same identity share a single exchange.
func (m *Manager) Connect(ctx context.Context, identity Identity, force bool) (*SessionSummary, error) {
	defer identity.ClientSecret.Wipe()

	identity, err := validateIdentity(identity)
	if err != nil {
		logging.Warn("Connection", "Rejected connection inputs: %v", err)
		return nil, err
	}

	key := fmt.Sprintf("%s|%s|%s|%t", identity.OrganizationURL, identity.TenantID, identity.ClientID, force)
	result, err, shared := m.connectGroup.Do(key, func() (interface{}, error) {
		return m.connect(ctx, identity, force)
	})
	if err != nil {
		return nil, err
	}

	summary := result.(*SessionSummary)
	if shared {
		logging.Debug("Connection", "Joined in-flight connect for %s", summary.OrganizationName)
	}
	return summary.Clone(), nil
}

func (m *Manager) connect(ctx context.Context, identity Identity, force bool) (*SessionSummary, error) {
	if !force {
		if cached, ok := m.store.Read(); ok && cached.Matches(identity) {
			logging.Info("Connection", "Reusing cached session for %s", cached.OrganizationName)
			summary := cached.Summarize(StatusReused)
			summary.Project = identity.Project
			summary.Provenance = cloneProvenance(identity.Provenance)
			return summary, nil
		}
	} else {
		logging.Debug("Connection", "Force reconnect requested for %s", OrganizationName(identity.OrganizationURL))
	}

	token, err := m.acquirer.Acquire(ctx, identity.TenantID, identity.ClientID, identity.ClientSecret)
	if err != nil {
		return nil, err
	}

	accessToken := NewSecret(token.AccessToken)
	token.AccessToken = ""

	result := m.validator.Validate(ctx, identity.OrganizationURL, accessToken)
	if !result.Success {
		accessToken.Wipe()
		logging.Warn("Connection", "Discarding acquired token: %s", result.Message)
		return nil, &ValidationFailedError{Result: result}
	}

	lifetime := DefaultTokenLifetime
	if token.ExpiresIn > 0 {
		lifetime = time.Duration(token.ExpiresIn) * time.Second
	}

	now := time.Now()
	session := &Session{
		OrganizationURL:  identity.OrganizationURL,
		OrganizationName: result.OrganizationName,
		TenantID:         identity.TenantID,
		ClientID:         identity.ClientID,
		Project:          identity.Project,
		AccessToken:      accessToken,
		TokenExpiry:      now.Add(lifetime),
		EstablishedAt:    now,
		ResourceCount:    result.ResourceCount,
		APIVersion:       result.APIVersion,
		Provenance:       identity.Provenance,
	}

	if err := m.store.Write(session); err != nil {
		accessToken.Wipe()
		return nil, err
	}

	logging.Info("Connection", "Connected to %s as client %s (%d projects visible)",
		result.OrganizationName, logging.TruncateID(identity.ClientID), result.ResourceCount)

	return session.Summarize(StatusConnected), nil
}

// Session returns a copy of the cached session, if a valid one exists.
func (m *Manager) Session() (*Session, bool) {
	return m.store.Read()
}

// ClearSession drops the cached session. Safe to call when nothing is
// cached.
func (m *Manager) ClearSession() {
	m.store.Clear()
	logging.Info("Connection", "Session cleared")
}

// TokenSource adapts the manager to golang.org/x/oauth2 so callers can
// feed Azure DevOps REST clients directly. The source only surfaces the
// cached token; it never acquires on its own, so it fails once the session
// expires.
func (m *Manager) TokenSource() oauth2.TokenSource {
	return tokenSource{manager: m}
}

type tokenSource struct {
	manager *Manager
}

func (ts tokenSource) Token() (*oauth2.Token, error) {
	session, ok := ts.manager.Session()
	if !ok {
		return nil, fmt.Errorf("no valid session cached: connect first")
	}
	return session.ToOAuth2Token(), nil
}

// validateIdentity normalizes and validates connection inputs. The
// organization URL loses its trailing slash and GUIDs are lowercased, so
// cache comparisons always run on canonical forms.
func validateIdentity(identity Identity) (Identity, error) {
	identity.OrganizationURL = strings.TrimSuffix(strings.TrimSpace(identity.OrganizationURL), "/")

	if identity.OrganizationURL == "" {
		return identity, &ValidationError{Field: "organization URL", Reason: "must not be empty"}
	}
	if !organizationURLPattern.MatchString(identity.OrganizationURL) {
		return identity, &ValidationError{
			Field:  "organization URL",
			Reason: fmt.Sprintf("%q does not match https://dev.azure.com/<organization>", identity.OrganizationURL),
		}
	}

	if !validGUID(identity.TenantID) {
		return identity, &ValidationError{
			Field:  "tenant ID",
			Reason: fmt.Sprintf("%q is not a GUID", identity.TenantID),
		}
	}
	identity.TenantID = strings.ToLower(identity.TenantID)

	if !validGUID(identity.ClientID) {
		return identity, &ValidationError{
			Field:  "client ID",
			Reason: fmt.Sprintf("%q is not a GUID", identity.ClientID),
		}
	}
	identity.ClientID = strings.ToLower(identity.ClientID)

	if identity.ClientSecret.IsEmpty() {
		return identity, &ValidationError{Field: "client secret", Reason: "must not be empty"}
	}

	return identity, nil
}

// validGUID accepts only the canonical 8-4-4-4-12 rendering. uuid.Parse
// alone would admit braced, URN, and unhyphenated forms, which the token
// endpoint does not.
func validGUID(value string) bool {
	id, err := uuid.Parse(value)
	if err != nil {
		return false
	}
	return id.String() == strings.ToLower(value)
}

