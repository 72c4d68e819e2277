package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"bardo/pkg/logger"
)

var (
	configFile string
	verbose    bool
	logFile    string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "bardo",
	Short: "Work with Confluence pages and attachments from the command line",
	Long: `Bardo is a command line client for the Confluence REST API.
It publishes markdown files as pages, manages attachments, browses page
hierarchies and sends raw requests to any REST endpoint.`,
	Example: `  bardo upload -f ./docs/guide.md -s DOCS            # Create or update a page
  bardo list-pages -s DOCS -p "API"                 # List pages under a parent
  bardo get-page -s DOCS -p "Guide" -f markdown     # Fetch a page as markdown
  bardo api GET "space?limit=5" --jq '.results[].key'`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// newLogger writes to --log-file when set, otherwise to stdout.
func newLogger() *logger.Logger {
	if logFile == "" {
		return logger.New(verbose)
	}
	return logger.NewRotating(logFile, verbose)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "path to configuration file (default $BARDO_CONFIG or config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "write logs to a size-rotated file instead of stdout")
}
