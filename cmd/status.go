package cmd

import (
	"fmt"

	"azdoctl/internal/cli"
	"azdoctl/internal/connection"

	"github.com/spf13/cobra"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current session",
	Long: `Show the Azure DevOps session held by this process.

Sessions live in memory only and are never written to disk, so a fresh
process starts without one. Inside 'azdoctl shell' this reports the
session established with 'connect'.`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	session, ok := sessionManager.Session()
	if !ok {
		fmt.Fprintln(cmd.OutOrStdout(), "Not connected. Run 'azdoctl connect' to establish a session.")
		return nil
	}

	summary := session.Summarize(connection.StatusConnected)
	cli.RenderSummary(cmd.OutOrStdout(), summary, connection.PeekClaims(session.AccessToken))
	return nil
}
