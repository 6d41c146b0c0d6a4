package cmd

import (
	"os"

	"azdoctl/internal/cli"
	"azdoctl/internal/connection"

	"github.com/spf13/cobra"
)

// rootCmd is the base command; subcommands attach themselves in their
// files' init() functions.
var rootCmd = &cobra.Command{
	Use:   "azdoctl",
	Short: "Connect to Azure DevOps with Entra ID client credentials",
	Long: `azdoctl establishes Azure DevOps sessions with Entra ID service
principals (client-credential flow), validates them against the
organization, and turns configuration files into pipeline variables,
dotenv files and environment exports.`,
	// Errors are reported by Execute with an exit code; repeating the
	// usage text on top of that is just noise.
	SilenceUsage: true,
}

// sessionManager is the process-wide connection manager. Sessions are held
// in memory only and end with the process; the shell command keeps one
// alive across multiple commands.
var sessionManager = connection.NewManager()

// SetVersion injects the build version from main before Execute runs.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the injected build version.
func GetVersion() string {
	return rootCmd.Version
}

// Execute runs the root command and exits the process with a semantic
// exit code when it fails. Called by main.main().
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "azdoctl version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		// 2 for invalid identity input, 3 for failed authentication or
		// organization validation, 1 for everything else.
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newSelfUpdateCmd())
}
