package commands

import (
	"fmt"
	"strconv"

	htmldoc "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/spf13/cobra"

	"bardo/internal/config"
	"bardo/internal/confluence"
)

var (
	getPageSpace     string
	getPageIDOrTitle string
	getPageFormat    string
)

// getPageCmd prints the content of a single page
var getPageCmd = &cobra.Command{
	Use:   "get-page",
	Short: "Return the contents of a Confluence page",
	Long: `Fetch the content of a Confluence page by ID or title.

A numeric --page is tried as a page ID first and falls back to a title
lookup in the space given by --space (or confluence.space_key).`,
	Example: `  bardo get-page -s DOCS -p 123456789
  bardo get-page -s DOCS -p "My Page Title" -f markdown`,
	RunE: runGetPage,
}

func runGetPage(cmd *cobra.Command, args []string) error {
	if getPageIDOrTitle == "" {
		return fmt.Errorf("page flag is required for get-page command")
	}

	switch getPageFormat {
	case "", "storage", "html", "markdown":
	default:
		return fmt.Errorf("unsupported format: %s", getPageFormat)
	}

	log := newLogger()
	defer log.Close()

	cfg, err := config.LoadForListPages(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	spaceKey := firstNonEmpty(getPageSpace, cfg.Confluence.SpaceKey)

	client, err := newConfluenceClient(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	ctx := cmd.Context()
	var page *confluence.Page

	if isNumeric(getPageIDOrTitle) {
		page, err = client.GetPage(ctx, getPageIDOrTitle)
		if err != nil {
			log.Debug("failed to get page by ID: %v", err)
			page = nil
		}
	}

	if page == nil {
		if spaceKey == "" {
			return fmt.Errorf("space flag or confluence.space_key required to look up a page by title")
		}
		page, err = client.FindPageByTitle(ctx, spaceKey, getPageIDOrTitle)
		if err != nil {
			return fmt.Errorf("failed to find page by title: %w", err)
		}
	}

	if page == nil {
		return fmt.Errorf("page '%s' not found in space '%s'", getPageIDOrTitle, spaceKey)
	}

	format := firstNonEmpty(getPageFormat, "storage")
	content, err := generatePageOutput(page, format)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "# %s (ID: %s)\n\n", page.Title, page.ID)
	fmt.Fprintln(out, content)
	return nil
}

// generatePageOutput returns the page content in the requested format.
// It does not include the header line with title/ID.
func generatePageOutput(page *confluence.Page, format string) (string, error) {
	html := firstNonEmpty(page.Body.View.Value, page.Body.Storage.Value)

	switch format {
	case "storage":
		return page.Body.Storage.Value, nil
	case "html":
		return html, nil
	case "markdown":
		md, err := htmldoc.ConvertString(html)
		if err != nil {
			return html, nil // fallback to raw HTML on conversion errors
		}
		return md, nil
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

func isNumeric(s string) bool {
	_, err := strconv.ParseUint(s, 10, 64)
	return err == nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func init() {
	rootCmd.AddCommand(getPageCmd)

	getPageCmd.Flags().StringVarP(&getPageSpace, "space", "s", "", "Confluence space key (defaults to confluence.space_key)")
	getPageCmd.Flags().StringVarP(&getPageIDOrTitle, "page", "p", "", "Page title or ID to fetch (required)")
	getPageCmd.Flags().StringVarP(&getPageFormat, "format", "f", "storage", "Output format: storage|html|markdown")

	if err := getPageCmd.MarkFlagRequired("page"); err != nil {
		panic(fmt.Sprintf("Failed to mark page flag as required: %v", err))
	}
}
