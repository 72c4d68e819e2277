package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"bardo/internal/config"
	bardosync "bardo/internal/sync"
)

var (
	syncDryRun bool
	syncForce  bool
	syncDir    string
	syncSpace  string
)

// syncCmd publishes a whole markdown directory
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Publish a directory of markdown files as a Confluence page tree",
	Long: `Publish every markdown file under local.markdown_dir to the configured space.

Sub-directories become pages that list their children, and files become pages
beneath their directory's page. The tree is placed under confluence.parent_page
when one is configured.

Content hashes of published files are cached in .bardo/sync-cache.json inside
the markdown directory; unchanged files are skipped unless --force is given.`,
	Example: `  bardo sync --dry-run     # Preview the page tree
  bardo sync               # Publish new and changed files
  bardo sync --force       # Re-publish everything`,
	RunE: runSync,
}

func runSync(cmd *cobra.Command, args []string) error {
	log := newLogger()
	defer log.Close()

	cfg, err := config.LoadForListPages(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if syncDir != "" {
		cfg.Local.MarkdownDir = syncDir
	}
	if syncSpace != "" {
		cfg.Confluence.SpaceKey = syncSpace
	}

	client, err := newConfluenceClient(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	syncer, err := bardosync.New(cfg, client, log)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	res, err := syncer.Sync(cmd.Context(), bardosync.Options{DryRun: syncDryRun, Force: syncForce, Out: out})
	if res != nil && !syncDryRun {
		fmt.Fprintf(out, "\nSync complete: %d created, %d updated, %d skipped, %d failed\n",
			res.Created, res.Updated, res.Skipped, res.Failed)
	}
	return err
}

func init() {
	rootCmd.AddCommand(syncCmd)

	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "Show what would be published without changing anything")
	syncCmd.Flags().BoolVar(&syncForce, "force", false, "Re-publish files that have not changed since the last sync")
	syncCmd.Flags().StringVarP(&syncDir, "dir", "d", "", "Markdown directory (defaults to local.markdown_dir)")
	syncCmd.Flags().StringVarP(&syncSpace, "space", "s", "", "Confluence space key (defaults to confluence.space_key)")
}
