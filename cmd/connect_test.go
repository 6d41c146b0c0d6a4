package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net"
	"testing"

	"azdoctl/internal/cli"
	"azdoctl/internal/config"
	"azdoctl/internal/connection"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testTenantID = "11111111-2222-3333-4444-555555555555"
	testClientID = "aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee"
	testOrgURL   = "https://dev.azure.com/acme"
)

type stubAcquirer struct {
	calls int
	err   error
}

func (a *stubAcquirer) Acquire(ctx context.Context, tenantID, clientID string, clientSecret *connection.Secret) (*connection.Token, error) {
	a.calls++
	if a.err != nil {
		return nil, a.err
	}
	return &connection.Token{AccessToken: "stub-access-token", TokenType: "Bearer", ExpiresIn: 3600}, nil
}

type stubValidator struct{}

func (v *stubValidator) Validate(ctx context.Context, organizationURL string, accessToken *connection.Secret) *connection.ValidationResult {
	return &connection.ValidationResult{
		Success:          true,
		OrganizationName: connection.OrganizationName(organizationURL),
		OrganizationURL:  organizationURL,
		ResourceCount:    3,
		StatusCode:       200,
	}
}

// withStubManager swaps the process-wide manager for one backed by stubs
// and restores the original when the test finishes.
func withStubManager(t *testing.T, acquirer connection.TokenAcquirer) {
	t.Helper()
	original := sessionManager
	sessionManager = connection.NewManager(
		connection.WithAcquirer(acquirer),
		connection.WithValidator(&stubValidator{}),
	)
	t.Cleanup(func() { sessionManager = original })
}

// snapshotConnectFlags restores the package-level flag values after the
// test, since tests assign them directly instead of going through cobra.
func snapshotConnectFlags(t *testing.T) {
	t.Helper()
	org, tenant, client, secret, project := connectOrganization, connectTenantID, connectClientID, connectClientSecret, connectProject
	force, output, quiet, cfgPath := connectForce, connectOutput, connectQuiet, connectConfigPath
	t.Cleanup(func() {
		connectOrganization, connectTenantID, connectClientID, connectClientSecret, connectProject = org, tenant, client, secret, project
		connectForce, connectOutput, connectQuiet, connectConfigPath = force, output, quiet, cfgPath
	})
}

// clearIdentityEnv blanks the AZDO_* variables so ambient credentials on
// the test host cannot leak into resolution.
func clearIdentityEnv(t *testing.T) {
	t.Helper()
	for _, name := range config.EnvVars {
		t.Setenv(name, "")
	}
}

// setConnectFlags fills the connect flags with a complete valid identity.
func setConnectFlags(t *testing.T) {
	t.Helper()
	snapshotConnectFlags(t)
	connectOrganization = testOrgURL
	connectTenantID = testTenantID
	connectClientID = testClientID
	connectClientSecret = "s3cret"
	connectProject = ""
	connectForce = false
	connectOutput = "table"
	connectQuiet = true
	connectConfigPath = t.TempDir()
}

func newTestCommand() (*cobra.Command, *bytes.Buffer) {
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetContext(context.Background())
	return cmd, &buf
}

func TestConnectCommandFlags(t *testing.T) {
	flags := connectCmd.Flags()

	org := flags.Lookup("organization")
	require.NotNil(t, org)
	assert.Equal(t, "o", org.Shorthand)

	project := flags.Lookup("project")
	require.NotNil(t, project)
	assert.Equal(t, "p", project.Shorthand)

	output := flags.Lookup("output")
	require.NotNil(t, output)
	assert.Equal(t, "table", output.DefValue)

	for _, name := range []string{"tenant-id", "client-id", "client-secret", "force", "quiet", "config-path"} {
		assert.NotNil(t, flags.Lookup(name), "flag %s should be registered", name)
	}
}

func TestRunConnect_TableOutput(t *testing.T) {
	clearIdentityEnv(t)
	setConnectFlags(t)
	acquirer := &stubAcquirer{}
	withStubManager(t, acquirer)

	cmd, buf := newTestCommand()
	err := runConnect(cmd, nil)
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "connected")
	assert.Contains(t, output, "acme")
	assert.Contains(t, output, testOrgURL)
	assert.Equal(t, 1, acquirer.calls)
	assert.NotContains(t, output, "stub-access-token")
}

func TestRunConnect_JSONOutput(t *testing.T) {
	clearIdentityEnv(t)
	setConnectFlags(t)
	connectOutput = "json"
	withStubManager(t, &stubAcquirer{})

	cmd, buf := newTestCommand()
	err := runConnect(cmd, nil)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "connected", decoded["status"])
	assert.Equal(t, "acme", decoded["organizationName"])
	assert.Equal(t, float64(3), decoded["resourceCount"])
	assert.NotContains(t, buf.String(), "stub-access-token")
}

func TestRunConnect_SecondCallReusesSession(t *testing.T) {
	clearIdentityEnv(t)
	setConnectFlags(t)
	acquirer := &stubAcquirer{}
	withStubManager(t, acquirer)

	cmd, _ := newTestCommand()
	require.NoError(t, runConnect(cmd, nil))

	// Each run resolves a fresh secret from the unchanged flag value, so
	// the wipe performed by the first connect does not starve the second.
	cmd2, buf2 := newTestCommand()
	require.NoError(t, runConnect(cmd2, nil))

	assert.Equal(t, 1, acquirer.calls, "cached session should be reused without a second token request")
	assert.Contains(t, buf2.String(), "reused")
}

func TestRunConnect_ForceReconnects(t *testing.T) {
	clearIdentityEnv(t)
	setConnectFlags(t)
	acquirer := &stubAcquirer{}
	withStubManager(t, acquirer)

	cmd, _ := newTestCommand()
	require.NoError(t, runConnect(cmd, nil))

	connectForce = true
	cmd2, _ := newTestCommand()
	require.NoError(t, runConnect(cmd2, nil))

	assert.Equal(t, 2, acquirer.calls)
}

func TestRunConnect_InvalidOutputFormat(t *testing.T) {
	snapshotConnectFlags(t)
	connectOutput = "xml"

	cmd, _ := newTestCommand()
	err := runConnect(cmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid output format")
	assert.Equal(t, cli.ExitGeneral, cli.ExitCode(err))
}

func TestRunConnect_InvalidIdentity(t *testing.T) {
	clearIdentityEnv(t)
	setConnectFlags(t)
	connectOrganization = "http://dev.azure.com/acme"
	withStubManager(t, &stubAcquirer{})

	cmd, _ := newTestCommand()
	err := runConnect(cmd, nil)
	require.Error(t, err)

	var invalid *connection.ValidationError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, cli.ExitInvalidInput, cli.ExitCode(err))
}

func TestRunConnect_AuthFailure(t *testing.T) {
	clearIdentityEnv(t)
	setConnectFlags(t)
	withStubManager(t, &stubAcquirer{err: &connection.AuthError{
		ProviderCode: "invalid_client",
		Description:  "AADSTS7000215: Invalid client secret provided.",
		StatusCode:   401,
	}})

	cmd, _ := newTestCommand()
	err := runConnect(cmd, nil)
	require.Error(t, err)

	var authErr *connection.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "invalid_client", authErr.ProviderCode)
	assert.Equal(t, cli.ExitAuthFailed, cli.ExitCode(err))
}

func TestDescribeConnectError(t *testing.T) {
	t.Run("typed errors pass through unchanged", func(t *testing.T) {
		original := &connection.ValidationError{Field: "tenantId", Reason: "not a GUID"}
		result := describeConnectError(original, testOrgURL)

		var invalid *connection.ValidationError
		require.ErrorAs(t, result, &invalid)
		assert.Same(t, original, invalid)
	})

	t.Run("transport errors gain guidance", func(t *testing.T) {
		dnsFailure := &net.DNSError{Err: "no such host", Name: "login.microsoftonline.com", IsNotFound: true}
		result := describeConnectError(dnsFailure, testOrgURL)

		var connErr *cli.ConnectionError
		require.ErrorAs(t, result, &connErr)
		assert.Equal(t, cli.ConnectionErrorDNS, connErr.Type)
		assert.Equal(t, testOrgURL, connErr.Endpoint)
	})

	t.Run("unclassified errors stay as they are", func(t *testing.T) {
		original := errors.New("failed to decode token response")
		result := describeConnectError(original, testOrgURL)
		assert.Equal(t, original, result)
	})
}
