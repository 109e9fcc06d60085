package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var clearCmd = &cobra.Command{
	Use:   "clear <session-id>",
	Short: "Purge the service-side memory of a session",
	Long: `Purge the remote service's conversational memory for a session.

The interactive chat clears its own session with ctrl+l; this command
covers sessions created with 'shopchat ask --session'.`,
	Args: cobra.ExactArgs(1),
	RunE: runClear,
}

func runClear(cmd *cobra.Command, args []string) error {
	sessionID := args[0]

	if err := apiClient.ClearHistory(context.Background(), sessionID); err != nil {
		return fmt.Errorf("clear session %s: %w", sessionID, err)
	}

	fmt.Printf("Session %s cleared.\n", sessionID)
	return nil
}
