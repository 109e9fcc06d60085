package cli

import (
	"errors"
	"fmt"

	tea "charm.land/bubbletea/v2"
	"github.com/raphaelgruber/shopchat/internal/client"
	"github.com/raphaelgruber/shopchat/internal/conversation"
	"github.com/raphaelgruber/shopchat/internal/session"
	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session with the assistant",
	Long: `Start an interactive chat session with the retail assistant.

Ask about products, prices or company information. When the assistant
offers an order form, it opens inside the conversation: fill it in and
submit without leaving the chat.

Keys:
  enter        send the typed question
  tab          jump into a pending order form
  esc          leave the order form (edits are kept)
  ctrl+l       clear the conversation (asks for confirmation)
  ctrl+c       quit`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func runChat(cmd *cobra.Command, args []string) error {
	store := conversation.NewStore()
	model := newChatModel(apiClient, store, session.New())

	p := tea.NewProgram(model)
	finalModel, err := p.Run()
	if err != nil {
		return fmt.Errorf("chat UI error: %w", err)
	}

	if m, ok := finalModel.(chatModel); ok && m.fatal != nil {
		if errors.Is(m.fatal, client.ErrUnauthorized) {
			// The held token is gone for good; a fresh login is the only way on.
			return fmt.Errorf("session rejected by the service: run 'shopchat login' and export SHOPCHAT_TOKEN")
		}
		return m.fatal
	}
	return nil
}
