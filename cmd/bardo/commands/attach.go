package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"bardo/internal/config"
)

var (
	attachPage string
	attachList bool
)

// attachCmd uploads files to an existing page or lists what is attached
var attachCmd = &cobra.Command{
	Use:   "attach --page ID [files...]",
	Short: "Attach files to a Confluence page or list its attachments",
	Long: `Upload one or more local files as attachments of the page with the given ID.
A file whose name matches an existing attachment replaces its data.

With --list the current attachments are printed with their download links.`,
	Example: `  bardo attach --page 123456 diagram.png report.pdf
  bardo attach --page 123456 --list`,
	RunE: runAttach,
}

func runAttach(cmd *cobra.Command, args []string) error {
	if !attachList && len(args) == 0 {
		return fmt.Errorf("at least one file is required unless --list is given")
	}

	log := newLogger()
	defer log.Close()

	cfg, err := config.LoadForListPages(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	client, err := newConfluenceClient(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	for _, path := range args {
		att, err := client.UploadAttachment(ctx, attachPage, path)
		if err != nil {
			return fmt.Errorf("failed to attach %s: %w", path, err)
		}
		fmt.Fprintf(out, "Attached '%s' (ID: %s) to page %s\n", att.Title, att.ID, attachPage)
	}

	if !attachList {
		return nil
	}

	attachments, err := client.ListAttachments(ctx, attachPage)
	if err != nil {
		return fmt.Errorf("failed to list attachments: %w", err)
	}
	if len(attachments) == 0 {
		fmt.Fprintf(out, "Page %s has no attachments\n", attachPage)
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tTYPE\tSIZE\tDOWNLOAD")
	for _, a := range attachments {
		link, err := client.GetAttachmentDownloadURL(ctx, attachPage, a.ID)
		if err != nil {
			log.Debug("no download link for %s: %v", a.ID, err)
			link = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", a.ID, a.Title, firstNonEmpty(a.MediaType, "-"), a.FileSize, link)
	}
	return tw.Flush()
}

func init() {
	rootCmd.AddCommand(attachCmd)

	attachCmd.Flags().StringVar(&attachPage, "page", "", "ID of the page to attach to (required)")
	attachCmd.Flags().BoolVarP(&attachList, "list", "l", false, "List the page's attachments after uploading")

	if err := attachCmd.MarkFlagRequired("page"); err != nil {
		panic(fmt.Sprintf("Failed to mark page flag as required: %v", err))
	}
}
