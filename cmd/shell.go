package cmd

import (
	"azdoctl/internal/cli"
	"azdoctl/internal/config"
	"azdoctl/internal/connection"
	"azdoctl/internal/shell"

	"github.com/spf13/cobra"
)

// Shell-specific flags
var (
	shellOrganization string
	shellTenantID     string
	shellClientID     string
	shellClientSecret string
	shellProject      string
	shellConfigPath   string
)

// shellCmd represents the shell command
var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start an interactive session shell",
	Long: `Start an interactive shell for working with Azure DevOps sessions.

The shell keeps the session alive across commands: connect once, then
inspect it with 'status', flatten files with 'vars <file>' and drop it
with 'disconnect'. Identity flags and AZDO_* environment variables are
re-read on every connect.

Examples:
  azdoctl shell
  azdoctl shell -o https://dev.azure.com/acme`,
	RunE: runShell,
}

func init() {
	rootCmd.AddCommand(shellCmd)

	shellCmd.Flags().StringVarP(&shellOrganization, "organization", "o", "", "Azure DevOps organization URL (env: AZDO_ORG_URL)")
	shellCmd.Flags().StringVar(&shellTenantID, "tenant-id", "", "Entra ID tenant GUID (env: AZDO_TENANT_ID)")
	shellCmd.Flags().StringVar(&shellClientID, "client-id", "", "Service principal client GUID (env: AZDO_CLIENT_ID)")
	shellCmd.Flags().StringVar(&shellClientSecret, "client-secret", "", "Service principal client secret (env: AZDO_CLIENT_SECRET)")
	shellCmd.Flags().StringVarP(&shellProject, "project", "p", "", "Default project for the session (env: AZDO_PROJECT)")
	shellCmd.Flags().StringVar(&shellConfigPath, "config-path", config.GetDefaultConfigPathOrPanic(), "Configuration directory")
}

func runShell(cmd *cobra.Command, args []string) error {
	// A malformed config file is reported before the prompt appears; a
	// missing one is fine and resolution falls back to flags and env.
	cfg, err := config.LoadConfig(shellConfigPath)
	if err != nil {
		return err
	}

	flags := map[string]string{
		config.FieldOrganization: shellOrganization,
		config.FieldTenantID:     shellTenantID,
		config.FieldClientID:     shellClientID,
		config.FieldClientSecret: shellClientSecret,
		config.FieldProject:      shellProject,
	}

	// Resolved fresh on every connect: the manager consumes the client
	// secret each time, and environment changes should take effect without
	// restarting the shell.
	identity := func() connection.Identity {
		return config.Resolve(
			config.FlagProvider(flags),
			config.EnvProvider(),
			config.FileProvider(cfg),
		)
	}

	printer := &cli.Printer{Out: cmd.OutOrStdout(), Err: cmd.ErrOrStderr()}
	return shell.New(sessionManager, identity, printer).Run(cmd.Context())
}
