package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"bardo/internal/config"
	"bardo/internal/confluence"
)

var (
	listSpace  string
	listParent string
)

// listPagesCmd represents the list-pages command
var listPagesCmd = &cobra.Command{
	Use:   "list-pages",
	Short: "List page hierarchy from a Confluence space",
	Long: `List page hierarchy from a Confluence space with visual tree formatting.

The hierarchy is printed with icons:
  🏢 Space indicators
  📁 Folders (pages with children)
  📄 Pages (leaf nodes)

You can optionally specify a parent page to start the hierarchy from.`,
	Example: `  bardo list-pages -s DOCS                 # List all pages in space
  bardo list-pages -s DOCS -p "API"        # List pages under parent
  bardo list-pages -s TEAM -v              # List with verbose logging`,
	RunE: runListPages,
}

func runListPages(cmd *cobra.Command, args []string) error {
	log := newLogger()
	defer log.Close()

	cfg, err := config.LoadForListPages(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	spaceKey := firstNonEmpty(listSpace, cfg.Confluence.SpaceKey)
	if spaceKey == "" {
		return fmt.Errorf("space flag or confluence.space_key required for list-pages command")
	}
	parent := firstNonEmpty(listParent, cfg.Confluence.ParentPage)

	client, err := newConfluenceClient(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	pages, err := client.GetPageHierarchy(cmd.Context(), spaceKey, parent)
	if err != nil {
		return fmt.Errorf("failed to get page hierarchy: %w", err)
	}

	out := cmd.OutOrStdout()
	if parent != "" {
		fmt.Fprintf(out, "🏢 Space '%s' → 📁 '%s':\n\n", spaceKey, parent)
	} else {
		fmt.Fprintf(out, "🏢 Space '%s':\n\n", spaceKey)
	}

	printPageTree(out, pages, 0)
	return nil
}

func printPageTree(w io.Writer, pages []confluence.PageInfo, depth int) {
	for i, page := range pages {
		icon := "📄"
		if len(page.Children) > 0 {
			icon = "📁"
		}

		if depth == 0 {
			fmt.Fprintf(w, "%s %s (ID: %s)\n", icon, page.Title, page.ID)
		} else {
			branch := "├── "
			if i == len(pages)-1 {
				branch = "└── "
			}
			fmt.Fprintf(w, "%s%s%s %s (ID: %s)\n", strings.Repeat("  ", depth), branch, icon, page.Title, page.ID)
		}

		printPageTree(w, page.Children, depth+1)
	}
}

func init() {
	rootCmd.AddCommand(listPagesCmd)

	listPagesCmd.Flags().StringVarP(&listSpace, "space", "s", "", "Confluence space key (defaults to confluence.space_key)")
	listPagesCmd.Flags().StringVarP(&listParent, "parent", "p", "", "Parent page title to start from (defaults to confluence.parent_page)")
}
