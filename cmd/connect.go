package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"azdoctl/internal/cli"
	"azdoctl/internal/config"
	"azdoctl/internal/connection"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"
)

// Connect-specific flags
var (
	connectOrganization string
	connectTenantID     string
	connectClientID     string
	connectClientSecret string
	connectProject      string
	connectForce        bool
	connectOutput       string
	connectQuiet        bool
	connectConfigPath   string
)

// connectCmd represents the connect command
var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Establish an Azure DevOps session",
	Long: `Establish an Azure DevOps session with Entra ID client credentials.

The organization URL, tenant, client ID and client secret are resolved
from flags, AZDO_* environment variables and the config file, in that
order. The client secret is never read from the config file; pass it via
--client-secret or AZDO_CLIENT_SECRET.

The acquired token is validated against the organization before the
session is reported as established. An existing session for the same
organization, tenant and client is reused unless --force is given.

Examples:
  azdoctl connect                                  # Resolve from environment/config
  azdoctl connect -o https://dev.azure.com/acme    # Explicit organization
  azdoctl connect --force                          # Discard a cached session first
  azdoctl connect --output json --quiet            # Machine-readable output`,
	RunE: runConnect,
}

func init() {
	rootCmd.AddCommand(connectCmd)

	connectCmd.Flags().StringVarP(&connectOrganization, "organization", "o", "", "Azure DevOps organization URL (env: AZDO_ORG_URL)")
	connectCmd.Flags().StringVar(&connectTenantID, "tenant-id", "", "Entra ID tenant GUID (env: AZDO_TENANT_ID)")
	connectCmd.Flags().StringVar(&connectClientID, "client-id", "", "Service principal client GUID (env: AZDO_CLIENT_ID)")
	connectCmd.Flags().StringVar(&connectClientSecret, "client-secret", "", "Service principal client secret (env: AZDO_CLIENT_SECRET)")
	connectCmd.Flags().StringVarP(&connectProject, "project", "p", "", "Default project for the session (env: AZDO_PROJECT)")
	connectCmd.Flags().BoolVar(&connectForce, "force", false, "Discard any cached session and connect fresh")
	connectCmd.Flags().StringVar(&connectOutput, "output", "table", "Output format: table or json")
	connectCmd.Flags().BoolVarP(&connectQuiet, "quiet", "q", false, "Suppress non-essential output")
	connectCmd.Flags().StringVar(&connectConfigPath, "config-path", config.GetDefaultConfigPathOrPanic(), "Configuration directory")
}

func runConnect(cmd *cobra.Command, args []string) error {
	if connectOutput != "table" && connectOutput != "json" {
		return fmt.Errorf("invalid output format %q: expected table or json", connectOutput)
	}

	identity, err := resolveIdentity(connectConfigPath, map[string]string{
		config.FieldOrganization: connectOrganization,
		config.FieldTenantID:     connectTenantID,
		config.FieldClientID:     connectClientID,
		config.FieldClientSecret: connectClientSecret,
		config.FieldProject:      connectProject,
	})
	if err != nil {
		return err
	}

	// The spinner writes to stderr, so --output json piped to a file stays
	// clean either way; suppress it anyway for quiet and json runs.
	var spin *spinner.Spinner
	if !connectQuiet && connectOutput == "table" {
		spin = spinner.New(spinner.CharSets[14], 100*time.Millisecond)
		spin.Suffix = " Connecting to Azure DevOps..."
		spin.Start()
	}

	summary, err := sessionManager.Connect(cmd.Context(), identity, connectForce)
	if spin != nil {
		spin.Stop()
	}
	if err != nil {
		return describeConnectError(err, identity.OrganizationURL)
	}

	return printSummary(cmd, summary)
}

// resolveIdentity builds the connection identity from flags, environment
// and the config file, in that order of precedence.
func resolveIdentity(configPath string, flags map[string]string) (connection.Identity, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return connection.Identity{}, err
	}
	return config.Resolve(
		config.FlagProvider(flags),
		config.EnvProvider(),
		config.FileProvider(cfg),
	), nil
}

// describeConnectError keeps typed credential and validation errors intact
// for exit-code mapping and re-labels recognizable transport failures with
// user guidance. Anything else passes through unchanged.
func describeConnectError(err error, endpoint string) error {
	var invalidField *connection.ValidationError
	var authFailed *connection.AuthError
	var orgRejected *connection.ValidationFailedError
	if errors.As(err, &invalidField) || errors.As(err, &authFailed) || errors.As(err, &orgRejected) {
		return err
	}

	if connErr := cli.ClassifyConnectionError(err, endpoint); connErr != nil && connErr.Type != cli.ConnectionErrorUnknown {
		return connErr
	}
	return err
}

// printSummary renders the session summary in the format selected by
// --output.
func printSummary(cmd *cobra.Command, summary *connection.SessionSummary) error {
	if connectOutput == "json" {
		encoded, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode summary: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(encoded))
		return nil
	}

	var claims *connection.TokenClaims
	if session, ok := sessionManager.Session(); ok {
		claims = connection.PeekClaims(session.AccessToken)
	}
	cli.RenderSummary(cmd.OutOrStdout(), summary, claims)
	return nil
}
