package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/raphaelgruber/shopchat/internal/client"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var loginCmd = &cobra.Command{
	Use:   "login <username>",
	Short: "Obtain a bearer token from the service",
	Long: `Exchange credentials for a bearer token.

The token is printed, never stored; export it for subsequent commands:

  export SHOPCHAT_TOKEN=$(shopchat login admin)`,
	Args: cobra.ExactArgs(1),
	RunE: runLogin,
}

func runLogin(cmd *cobra.Command, args []string) error {
	username := args[0]

	fmt.Fprint(os.Stderr, "Password: ")
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}

	token, err := apiClient.Login(context.Background(), username, string(password))
	if err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			return errors.New("invalid username or password")
		}
		return fmt.Errorf("login: %w", err)
	}

	// Token on stdout so the command composes with export/$(...).
	fmt.Println(token)
	return nil
}
