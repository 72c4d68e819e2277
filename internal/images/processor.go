package images

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"bardo/internal/config"
	"bardo/internal/confluence"
	"bardo/pkg/logger"
)

// DefaultFormats are accepted when the config lists none.
var DefaultFormats = []string{"png", "jpg", "jpeg", "gif", "svg", "webp"}

// maxParallelUploads bounds concurrent attachment uploads for one page.
const maxParallelUploads = 4

var imageRegex = regexp.MustCompile(`!\[([^\]]*)\]\(([^)\s]+)(?:\s+"[^"]*")?\)`)

// ImageReference represents an image found in markdown content
type ImageReference struct {
	MarkdownSyntax string // Original markdown: ![alt text](image.png)
	AltText        string
	FilePath       string // As written in the markdown
	AbsolutePath   string
}

// Filename is the attachment name the image is uploaded under.
func (r *ImageReference) Filename() string {
	return filepath.Base(r.AbsolutePath)
}

type Processor struct {
	config config.ImagesConfig
	logger *logger.Logger
}

func NewProcessor(cfg config.ImagesConfig, log *logger.Logger) *Processor {
	if len(cfg.SupportedFormats) == 0 {
		cfg.SupportedFormats = DefaultFormats
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Processor{config: cfg, logger: log}
}

// FindImageReferences returns the local images referenced by markdown,
// resolved against markdownDir. Remote images are left alone.
func (p *Processor) FindImageReferences(markdown string, markdownDir string) []*ImageReference {
	var references []*ImageReference

	for _, match := range imageRegex.FindAllStringSubmatch(markdown, -1) {
		ref := &ImageReference{
			MarkdownSyntax: match[0],
			AltText:        match[1],
			FilePath:       match[2],
		}

		if isRemote(ref.FilePath) {
			p.logger.Debug("Skipping remote image '%s'", ref.FilePath)
			continue
		}

		if filepath.IsAbs(ref.FilePath) {
			ref.AbsolutePath = filepath.Clean(ref.FilePath)
		} else {
			abs, err := filepath.Abs(filepath.Join(markdownDir, ref.FilePath))
			if err != nil {
				p.logger.Debug("Failed to resolve absolute path for image '%s': %v", ref.FilePath, err)
				continue
			}
			ref.AbsolutePath = abs
		}

		references = append(references, ref)
	}

	return references
}

func isRemote(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") || strings.HasPrefix(lower, "data:")
}

// ValidateImageFile checks if an image file exists and is supported
func (p *Processor) ValidateImageFile(ref *ImageReference) error {
	info, err := os.Stat(ref.AbsolutePath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("image file not found: %s", ref.AbsolutePath)
		}
		return fmt.Errorf("failed to access image file %s: %w", ref.AbsolutePath, err)
	}

	if !info.Mode().IsRegular() {
		return fmt.Errorf("image path is not a regular file: %s", ref.AbsolutePath)
	}

	if p.config.MaxFileSize > 0 && info.Size() > p.config.MaxFileSize {
		return fmt.Errorf("image file %s exceeds maximum size limit (%d bytes): %d bytes",
			ref.AbsolutePath, p.config.MaxFileSize, info.Size())
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(ref.AbsolutePath), "."))
	if !p.isFormatSupported(ext) {
		return fmt.Errorf("image format '%s' is not supported for file %s. Supported formats: %v",
			ext, ref.AbsolutePath, p.config.SupportedFormats)
	}

	p.logger.Debug("Validated image file '%s' (%d bytes, format: %s)", ref.AbsolutePath, info.Size(), ext)
	return nil
}

// ValidateImageReferences keeps the references that pass ValidateImageFile
// and returns the failures of the rest.
func (p *Processor) ValidateImageReferences(references []*ImageReference) ([]*ImageReference, []error) {
	var (
		validRefs []*ImageReference
		errs      []error
	)

	for _, ref := range references {
		if err := p.ValidateImageFile(ref); err != nil {
			p.logger.Debug("Skipping invalid image reference: %v", err)
			errs = append(errs, err)
			continue
		}
		validRefs = append(validRefs, ref)
	}

	return validRefs, errs
}

func (p *Processor) isFormatSupported(ext string) bool {
	return slices.ContainsFunc(p.config.SupportedFormats, func(format string) bool {
		return strings.EqualFold(format, ext)
	})
}

// Upload attaches every distinct image file in refs to pageID. Files with
// identical content are uploaded once. The result maps each reference's
// AbsolutePath to its attachment.
func (p *Processor) Upload(ctx context.Context, client confluence.ConfluenceClient, pageID string, refs []*ImageReference) (map[string]*confluence.Attachment, error) {
	byHash := make(map[string]*ImageReference)
	hashOf := make(map[string]string, len(refs))
	for _, ref := range refs {
		if _, seen := hashOf[ref.AbsolutePath]; seen {
			continue
		}
		h, err := CalculateImageHash(ref.AbsolutePath)
		if err != nil {
			return nil, err
		}
		hashOf[ref.AbsolutePath] = h
		if _, dup := byHash[h]; !dup {
			byHash[h] = ref
		}
	}

	var (
		mu       sync.Mutex
		uploaded = make(map[string]*confluence.Attachment, len(byHash))
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelUploads)
	for h, ref := range byHash {
		g.Go(func() error {
			att, err := client.UploadAttachment(ctx, pageID, ref.AbsolutePath)
			if err != nil {
				return fmt.Errorf("failed to upload image %s: %w", ref.FilePath, err)
			}
			p.logger.Debug("Uploaded image %s as attachment %s", ref.Filename(), att.ID)
			mu.Lock()
			uploaded[h] = att
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]*confluence.Attachment, len(hashOf))
	for path, h := range hashOf {
		out[path] = uploaded[h]
	}
	return out, nil
}

// CalculateImageHash calculates the SHA256 hash of an image file
func CalculateImageHash(imagePath string) (string, error) {
	file, err := os.Open(imagePath)
	if err != nil {
		return "", fmt.Errorf("failed to open image file: %w", err)
	}
	defer file.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", fmt.Errorf("failed to calculate hash: %w", err)
	}

	return fmt.Sprintf("%x", hash.Sum(nil)), nil
}
