package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"bardo/internal/config"
	"bardo/internal/confluence"
	"bardo/internal/images"
	"bardo/internal/markdown"
	"bardo/pkg/logger"
)

var (
	uploadFile     string
	uploadSpace    string
	uploadParent   string
	uploadNoImages bool
)

// uploadCmd uploads (creates or updates) a single markdown file as a Confluence page
var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Upload a single markdown file to Confluence",
	Long: `Create or update a Confluence page from a single local markdown file.

The space is taken from --space, falling back to confluence.space_key.

Parent resolution:
  - If --parent looks numeric it is treated as a page ID
  - Otherwise it is resolved as a title in the target space.

If a page with the markdown title already exists it will be updated; otherwise
it will be created. Local images referenced by the markdown are attached to
the page.`,
	Example: `  bardo upload -f ./docs/guide.md -s DOCS
  bardo upload -f ./docs/guide.md -s DOCS -p "User Guides"`,
	RunE: runUpload,
}

func runUpload(cmd *cobra.Command, args []string) error {
	if uploadFile == "" {
		return fmt.Errorf("file flag is required for upload command")
	}

	info, err := os.Stat(uploadFile)
	if err != nil {
		return fmt.Errorf("failed to access file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory; provide a single markdown file", uploadFile)
	}
	if !strings.EqualFold(filepath.Ext(uploadFile), ".md") {
		return fmt.Errorf("file must have .md extension: %s", uploadFile)
	}

	log := newLogger()
	defer log.Close()

	cfg, err := config.LoadForListPages(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	spaceKey := firstNonEmpty(uploadSpace, cfg.Confluence.SpaceKey)
	if spaceKey == "" {
		return fmt.Errorf("space flag or confluence.space_key required for upload command")
	}

	client, err := newConfluenceClient(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	doc, err := markdown.ParseFile(uploadFile)
	if err != nil {
		return fmt.Errorf("failed to parse markdown file: %w", err)
	}
	log.Debug("Parsed markdown file: title=%s", doc.Title)

	content := markdown.ConvertToConfluenceFormat(doc.Content)

	ctx := cmd.Context()
	parentID, err := resolveParent(ctx, client, log, spaceKey, firstNonEmpty(uploadParent, cfg.Confluence.ParentPage))
	if err != nil {
		return err
	}

	existing, err := client.FindPageByTitle(ctx, spaceKey, doc.Title)
	if err != nil {
		return fmt.Errorf("failed to search for existing page: %w", err)
	}

	out := cmd.OutOrStdout()
	var page *confluence.Page
	if existing != nil {
		log.Debug("Updating existing page ID=%s title=%s", existing.ID, existing.Title)
		page, err = client.UpdatePage(ctx, existing.ID, doc.Title, content)
		if err != nil {
			var forbidden *confluence.PageUpdateForbiddenError
			if errors.As(err, &forbidden) {
				return forbidden
			}
			return fmt.Errorf("failed to update page: %w", err)
		}
		fmt.Fprintf(out, "Updated page '%s' (ID: %s) in space '%s'\n", page.Title, page.ID, spaceKey)
	} else {
		if parentID != "" {
			log.Debug("Creating new page with parent %s", parentID)
			page, err = client.CreatePageWithParent(ctx, spaceKey, doc.Title, content, parentID)
		} else {
			log.Debug("Creating new root page in space %s", spaceKey)
			page, err = client.CreatePage(ctx, spaceKey, doc.Title, content)
		}
		if err != nil {
			return fmt.Errorf("failed to create page: %w", err)
		}
		fmt.Fprintf(out, "Created page '%s' (ID: %s) in space '%s'\n", page.Title, page.ID, spaceKey)
	}

	if uploadNoImages {
		return nil
	}
	return uploadImages(cmd, client, log, cfg.Images, page.ID, doc)
}

// resolveParent returns the page ID for parent, which may be an ID or a title.
func resolveParent(ctx context.Context, client confluence.ConfluenceClient, log *logger.Logger, spaceKey, parent string) (string, error) {
	if parent == "" {
		return "", nil
	}
	if isNumeric(parent) {
		log.Debug("Using numeric parent page ID: %s", parent)
		return parent, nil
	}

	log.Debug("Resolving parent by title: %s", parent)
	page, err := client.FindPageByTitle(ctx, spaceKey, parent)
	if err != nil {
		return "", fmt.Errorf("failed to resolve parent page '%s': %w", parent, err)
	}
	if page == nil {
		return "", fmt.Errorf("parent page '%s' not found in space '%s'", parent, spaceKey)
	}
	return page.ID, nil
}

func uploadImages(cmd *cobra.Command, client confluence.ConfluenceClient, log *logger.Logger, cfg config.ImagesConfig, pageID string, doc *markdown.Document) error {
	proc := images.NewProcessor(cfg, log)

	refs := proc.FindImageReferences(doc.Content, filepath.Dir(doc.FilePath))
	if len(refs) == 0 {
		return nil
	}

	valid, problems := proc.ValidateImageReferences(refs)
	for _, err := range problems {
		log.Warn("Skipping image: %v", err)
	}
	if len(valid) == 0 {
		return nil
	}

	attached, err := proc.Upload(cmd.Context(), client, pageID, valid)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Attached %d image(s) to page %s\n", len(uniqueAttachments(attached)), pageID)
	return nil
}

func uniqueAttachments(m map[string]*confluence.Attachment) map[string]struct{} {
	ids := make(map[string]struct{}, len(m))
	for _, att := range m {
		if att != nil {
			ids[att.ID] = struct{}{}
		}
	}
	return ids
}

func init() {
	rootCmd.AddCommand(uploadCmd)

	uploadCmd.Flags().StringVarP(&uploadFile, "file", "f", "", "Path to local markdown file (required)")
	uploadCmd.Flags().StringVarP(&uploadSpace, "space", "s", "", "Confluence space key (defaults to confluence.space_key)")
	uploadCmd.Flags().StringVarP(&uploadParent, "parent", "p", "", "Optional parent page title or ID")
	uploadCmd.Flags().BoolVar(&uploadNoImages, "no-images", false, "Do not attach local images referenced by the markdown")

	if err := uploadCmd.MarkFlagRequired("file"); err != nil {
		panic(fmt.Sprintf("Failed to mark file flag as required: %v", err))
	}
}
