package commands

import (
	"errors"
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"bardo/pkg/version"
)

var (
	versionShort bool
	versionJSON  bool
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the bardo build and the client id sent to Confluence",
	Long: `Print how this bardo binary was built and the User-Agent it sends.

Commit and build date come from -ldflags when set, otherwise from the VCS
stamp the Go toolchain embeds. --json prints the same fields for scripts.`,
	Example: `  bardo version
  bardo version --short
  bardo version --json | jq -r .git_commit`,
	Args: cobra.NoArgs,
	RunE: runVersion,
}

func runVersion(cmd *cobra.Command, _ []string) error {
	if versionShort && versionJSON {
		return errors.New("--short and --json cannot be combined")
	}

	info := version.Get()
	out := cmd.OutOrStdout()

	switch {
	case versionShort:
		fmt.Fprintln(out, info.Version)
	case versionJSON:
		data, err := json.MarshalIndent(struct {
			version.BuildInfo
			UserAgent string `json:"user_agent"`
		}{info, version.Product}, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode version: %w", err)
		}
		fmt.Fprintln(out, string(data))
	default:
		fmt.Fprintln(out, info.String())
		fmt.Fprintf(out, "user agent: %s\n", version.Product)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(versionCmd)

	versionCmd.Flags().BoolVar(&versionShort, "short", false, "print only the version")
	versionCmd.Flags().BoolVar(&versionJSON, "json", false, "print build information as JSON")
}
