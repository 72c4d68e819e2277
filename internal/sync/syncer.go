// Package sync publishes a directory of markdown files as a Confluence page
// tree. Every sub-directory becomes a page listing its children, and each
// file becomes a page beneath its directory's page.
package sync

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"bardo/internal/config"
	"bardo/internal/confluence"
	"bardo/internal/images"
	"bardo/internal/markdown"
	"bardo/pkg/logger"
)

type Status string

const (
	StatusNew      Status = "new"
	StatusChanged  Status = "changed"
	StatusUpToDate Status = "up-to-date"
)

// Node is one entry of the planned page tree.
type Node struct {
	Title    string
	Path     string // relative to the markdown directory
	File     string // absolute or config-relative file path; empty for directories
	Hash     string
	Status   Status
	Children []*Node
}

func (n *Node) IsDirectory() bool { return n.File == "" }

type Options struct {
	DryRun bool
	// Force re-publishes files the cache reports as up to date.
	Force bool
	Out   io.Writer
}

type Result struct {
	Created int
	Updated int
	Skipped int
	Failed  int
}

type Syncer struct {
	config *config.Config
	client confluence.ConfluenceClient
	images *images.Processor
	meta   *Metadata
	logger *logger.Logger
}

func New(cfg *config.Config, client confluence.ConfluenceClient, log *logger.Logger) (*Syncer, error) {
	if cfg.Local.MarkdownDir == "" {
		return nil, errors.New("local.markdown_dir is required for sync")
	}
	if cfg.Confluence.SpaceKey == "" {
		return nil, errors.New("confluence.space_key is required for sync")
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Syncer{
		config: cfg,
		client: client,
		images: images.NewProcessor(cfg.Images, log),
		meta:   NewMetadata(cfg.Local.MarkdownDir, cfg.Confluence.SpaceKey),
		logger: log,
	}, nil
}

func (s *Syncer) Sync(ctx context.Context, opts Options) (*Result, error) {
	if opts.Out == nil {
		opts.Out = io.Discard
	}

	files, err := markdown.FindMarkdownFiles(s.config.Local.MarkdownDir, s.config.Local.Exclude)
	if err != nil {
		return nil, fmt.Errorf("failed to find markdown files: %w", err)
	}
	s.logger.Info("Found %d markdown files to sync", len(files))

	if err := s.meta.Load(); err != nil {
		return nil, err
	}

	tree, err := s.plan(files)
	if err != nil {
		return nil, err
	}

	if opts.DryRun {
		fmt.Fprintf(opts.Out, "🏢 Space '%s' - Dry Run Preview:\n\n", s.config.Confluence.SpaceKey)
		PrintTree(opts.Out, tree, 0)
		return &Result{}, nil
	}

	rootID, err := s.resolveRoot(ctx)
	if err != nil {
		return nil, err
	}

	res := &Result{}
	if err := s.publish(ctx, tree, rootID, opts, res); err != nil {
		return res, err
	}

	for _, gone := range s.meta.Prune(files) {
		s.logger.Info("Forgetting removed file %s (its page is left in place)", gone)
	}
	if err := s.meta.Save(); err != nil {
		return res, err
	}

	if res.Failed > 0 {
		return res, fmt.Errorf("%d file(s) failed to sync", res.Failed)
	}
	return res, nil
}

// plan arranges files under their directories, preserving walk order.
func (s *Syncer) plan(files []string) ([]*Node, error) {
	var roots []*Node
	dirs := make(map[string]*Node)

	var dirNode func(rel string) *Node
	dirNode = func(rel string) *Node {
		if n, ok := dirs[rel]; ok {
			return n
		}
		n := &Node{Title: directoryTitle(rel), Path: rel, Status: StatusNew}
		dirs[rel] = n
		if parent := filepath.Dir(rel); parent != "." {
			p := dirNode(parent)
			p.Children = append(p.Children, n)
		} else {
			roots = append(roots, n)
		}
		return n
	}

	for _, file := range files {
		rel, err := filepath.Rel(s.config.Local.MarkdownDir, file)
		if err != nil {
			rel = filepath.Base(file)
		}

		doc, err := markdown.ParseFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", file, err)
		}
		status, hash, err := s.meta.Status(file)
		if err != nil {
			return nil, err
		}

		n := &Node{Title: doc.Title, Path: rel, File: file, Hash: hash, Status: status}
		if dir := filepath.Dir(rel); dir != "." {
			d := dirNode(dir)
			d.Children = append(d.Children, n)
		} else {
			roots = append(roots, n)
		}
	}
	return roots, nil
}

func directoryTitle(rel string) string {
	name := strings.NewReplacer("-", " ", "_", " ").Replace(filepath.Base(rel))
	return cases.Title(language.English).String(name)
}

// resolveRoot returns the page the tree is published under, if configured.
func (s *Syncer) resolveRoot(ctx context.Context) (string, error) {
	parent := s.config.Confluence.ParentPage
	if parent == "" {
		return "", nil
	}
	page, err := s.client.FindPageByTitle(ctx, s.config.Confluence.SpaceKey, parent)
	if err != nil {
		return "", fmt.Errorf("failed to resolve parent page '%s': %w", parent, err)
	}
	if page == nil {
		return "", fmt.Errorf("parent page '%s' not found in space '%s'", parent, s.config.Confluence.SpaceKey)
	}
	return page.ID, nil
}

func (s *Syncer) publish(ctx context.Context, nodes []*Node, parentID string, opts Options, res *Result) error {
	for _, n := range nodes {
		if err := ctx.Err(); err != nil {
			return err
		}

		if n.IsDirectory() {
			id, err := s.ensureDirectoryPage(ctx, n, parentID, res)
			if err != nil {
				// Children cannot be placed without their directory page.
				s.logger.Error("Failed to create directory page for %s: %v", n.Path, err)
				res.Failed += countFiles(n.Children)
				continue
			}
			if err := s.publish(ctx, n.Children, id, opts, res); err != nil {
				return err
			}
			continue
		}

		if err := s.publishFile(ctx, n, parentID, opts, res); err != nil {
			s.logger.Error("Failed to sync file %s: %v", n.File, err)
			res.Failed++
		}
	}
	return nil
}

func countFiles(nodes []*Node) int {
	n := 0
	for _, c := range nodes {
		if c.IsDirectory() {
			n += countFiles(c.Children)
		} else {
			n++
		}
	}
	return n
}

func (s *Syncer) ensureDirectoryPage(ctx context.Context, n *Node, parentID string, res *Result) (string, error) {
	space := s.config.Confluence.SpaceKey

	existing, err := s.client.FindPageByTitle(ctx, space, n.Title)
	if err != nil {
		return "", err
	}
	if existing != nil {
		s.logger.Debug("Directory page '%s' exists (ID: %s)", n.Title, existing.ID)
		return existing.ID, nil
	}

	s.logger.Info("Creating directory page: %s", n.Title)
	page, err := s.create(ctx, n.Title, directoryContent(n.Title), parentID)
	if err != nil {
		return "", err
	}
	res.Created++
	return page.ID, nil
}

func directoryContent(title string) string {
	return fmt.Sprintf(`<h1>%s</h1>
<ac:structured-macro ac:name="children" ac:schema-version="1">
<ac:parameter ac:name="all">true</ac:parameter>
<ac:parameter ac:name="sort">title</ac:parameter>
</ac:structured-macro>`, title)
}

func (s *Syncer) create(ctx context.Context, title, content, parentID string) (*confluence.Page, error) {
	if parentID != "" {
		return s.client.CreatePageWithParent(ctx, s.config.Confluence.SpaceKey, title, content, parentID)
	}
	return s.client.CreatePage(ctx, s.config.Confluence.SpaceKey, title, content)
}

func (s *Syncer) publishFile(ctx context.Context, n *Node, parentID string, opts Options, res *Result) error {
	if n.Status == StatusUpToDate && !opts.Force && s.meta.PageID(n.File) != "" {
		s.logger.Debug("Skipping unchanged file %s", n.Path)
		res.Skipped++
		return nil
	}

	doc, err := markdown.ParseFile(n.File)
	if err != nil {
		return err
	}
	content := markdown.ConvertToConfluenceFormat(doc.Content)

	existing, err := s.existingPage(ctx, n)
	if err != nil {
		return err
	}

	var page *confluence.Page
	if existing != nil {
		page, err = s.client.UpdatePage(ctx, existing.ID, n.Title, content)
		if confluence.IsPageUpdateForbidden(err) {
			s.logger.Warn("Skipping '%s': %v", n.Title, err)
			res.Skipped++
			return nil
		}
		if err != nil {
			return err
		}
		res.Updated++
		fmt.Fprintf(opts.Out, "Updated '%s' (ID: %s)\n", page.Title, page.ID)
	} else {
		page, err = s.create(ctx, n.Title, content, parentID)
		if err != nil {
			return err
		}
		res.Created++
		fmt.Fprintf(opts.Out, "Created '%s' (ID: %s)\n", page.Title, page.ID)
	}

	if err := s.attachImages(ctx, page.ID, doc); err != nil {
		return err
	}

	s.meta.Record(n.File, n.Hash, page.ID, n.Title)
	return nil
}

// existingPage prefers the page recorded by the last sync, so a renamed
// heading updates the same page instead of creating a new one.
func (s *Syncer) existingPage(ctx context.Context, n *Node) (*confluence.Page, error) {
	if id := s.meta.PageID(n.File); id != "" {
		page, err := s.client.GetPage(ctx, id)
		if err == nil {
			return page, nil
		}
		s.logger.Debug("Cached page %s for %s is gone: %v", id, n.Path, err)
	}
	return s.client.FindPageByTitle(ctx, s.config.Confluence.SpaceKey, n.Title)
}

func (s *Syncer) attachImages(ctx context.Context, pageID string, doc *markdown.Document) error {
	refs := s.images.FindImageReferences(doc.Content, filepath.Dir(doc.FilePath))
	valid, problems := s.images.ValidateImageReferences(refs)
	for _, err := range problems {
		s.logger.Warn("Skipping image: %v", err)
	}
	if len(valid) == 0 {
		return nil
	}
	_, err := s.images.Upload(ctx, s.client, pageID, valid)
	return err
}

// PrintTree writes the planned tree with one status icon per page.
func PrintTree(w io.Writer, nodes []*Node, depth int) {
	for i, n := range nodes {
		prefix := ""
		if depth > 0 {
			prefix = strings.Repeat("  ", depth)
			if i == len(nodes)-1 {
				prefix += "└── "
			} else {
				prefix += "├── "
			}
		}

		icon, note := "📄", ""
		switch {
		case n.IsDirectory():
			icon, note = "📁", " (directory page)"
		case n.Status == StatusNew:
			icon, note = "🆕", " (new page)"
		case n.Status == StatusChanged:
			icon, note = "📝", " (will be updated)"
		case n.Status == StatusUpToDate:
			icon, note = "✅", " (up to date)"
		}

		fmt.Fprintf(w, "%s%s %s%s\n", prefix, icon, n.Title, note)
		PrintTree(w, n.Children, depth+1)
	}
}
