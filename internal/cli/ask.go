package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/raphaelgruber/shopchat/internal/client"
	"github.com/raphaelgruber/shopchat/internal/directive"
	"github.com/raphaelgruber/shopchat/internal/session"
	"github.com/spf13/cobra"
)

var askSession string

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask the assistant a single question",
	Long: `Ask the assistant a single question and print the answer.

Each invocation starts a fresh session unless --session reuses an
existing one, which keeps the service's conversational memory across
calls.

Examples:
  shopchat ask "What is the price of the eMark GM4 Mini UPS?"
  shopchat ask --session session_1718000000000 "And the bigger model?"`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVar(&askSession, "session", "", "reuse an existing session id")
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := args[0]
	ctx := context.Background()

	sessionID := askSession
	if sessionID == "" {
		sessionID = session.New()
	}

	answer, err := apiClient.Chat(ctx, sessionID, question)
	if err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			return fmt.Errorf("session rejected by the service: run 'shopchat login' and export SHOPCHAT_TOKEN")
		}
		return fmt.Errorf("send question: %w", err)
	}

	display, d := directive.Parse(answer)
	if display != "" {
		fmt.Println(directive.Enrich(display, directive.PlainRenderer()))
	}

	if d != nil {
		fmt.Printf("\nThe assistant offered an order form (request %s).\n", d.RequestID)
		if d.PrefillProduct != "" {
			fmt.Printf("Suggested product: %s\n", d.PrefillProduct)
		}
		fmt.Println("Place the order with 'shopchat order', or run 'shopchat chat' to fill it in conversationally.")
	}

	if askSession == "" {
		fmt.Printf("\nSession: %s (pass --session to continue this conversation)\n", sessionID)
	}
	return nil
}
