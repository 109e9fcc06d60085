// Package cli provides the command-line interface for shopchat.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/raphaelgruber/shopchat/internal/client"
	"github.com/raphaelgruber/shopchat/internal/config"
	"github.com/spf13/cobra"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	verbose bool

	// Global config, logger and API client
	cfg        config.Config
	logger     *slog.Logger
	logCleanup func() error
	apiClient  *client.Client
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "shopchat",
	Short: "Terminal front-end for the retail chat assistant",
	Long: `Shopchat is the terminal front-end of the retail chat assistant: an
interactive chat session against the remote question-answering service,
with inline order forms the assistant can open mid-conversation.

The service base URL comes from SHOPCHAT_API_URL (default
http://localhost:8000); a bearer token, when required, from SHOPCHAT_TOKEN
or 'shopchat login'.`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		cfg = config.Load()
		if verbose {
			cfg.LogLevel = slog.LevelDebug
		}

		// The chat screen owns the terminal; log to file only there.
		if cmd.Name() == "chat" {
			logger, logCleanup = config.SetupFileLogger(cfg.LogFile, cfg.LogLevel)
		} else {
			logger, logCleanup = config.SetupLogger(cfg.LogFile, cfg.LogLevel)
		}

		apiClient = client.New(cfg.APIBaseURL, cfg.APITimeout, logger)
		if cfg.APIToken != "" {
			apiClient.SetToken(cfg.APIToken)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCleanup != nil {
			if err := logCleanup(); err != nil {
				logger.Warn("failed to close log file", "error", err)
			}
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Add subcommands
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(productsCmd)
	rootCmd.AddCommand(productCmd)
	rootCmd.AddCommand(orderCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(loginCmd)
}

// exitWithError prints an error message and exits with code 1.
func exitWithError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
