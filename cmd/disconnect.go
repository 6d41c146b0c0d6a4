package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// disconnectCmd represents the disconnect command
var disconnectCmd = &cobra.Command{
	Use:   "disconnect",
	Short: "Discard the current session",
	Long: `Discard the Azure DevOps session held by this process and wipe its
token from memory.

Disconnecting when no session exists is not an error.`,
	RunE: runDisconnect,
}

func init() {
	rootCmd.AddCommand(disconnectCmd)
}

func runDisconnect(cmd *cobra.Command, args []string) error {
	sessionManager.ClearSession()
	fmt.Fprintln(cmd.OutOrStdout(), "Disconnected.")
	return nil
}
