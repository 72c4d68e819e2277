package sync

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	json "github.com/goccy/go-json"
)

// CacheDirName is created inside the markdown directory.
const CacheDirName = ".bardo"

const cacheVersion = "1"

type FileMetadata struct {
	Hash     string    `json:"hash"`
	LastSync time.Time `json:"last_sync"`
	PageID   string    `json:"page_id,omitempty"`
	Title    string    `json:"title"`
}

// Metadata remembers, per markdown file, the content hash and page of the
// last successful sync. Paths are stored relative to the markdown directory.
type Metadata struct {
	Files    map[string]FileMetadata `json:"files"`
	LastSync time.Time               `json:"last_sync"`
	SpaceKey string                  `json:"space_key"`
	Version  string                  `json:"version"`

	root string
	path string
}

func NewMetadata(markdownDir, spaceKey string) *Metadata {
	return &Metadata{
		Files:    make(map[string]FileMetadata),
		SpaceKey: spaceKey,
		Version:  cacheVersion,
		root:     markdownDir,
		path:     filepath.Join(markdownDir, CacheDirName, "sync-cache.json"),
	}
}

// Load reads the cache file. A missing file, or one written for another
// space, leaves the metadata empty.
func (m *Metadata) Load() error {
	data, err := os.ReadFile(m.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read sync cache: %w", err)
	}

	var stored Metadata
	if err := json.Unmarshal(data, &stored); err != nil {
		return fmt.Errorf("failed to parse sync cache: %w", err)
	}
	if stored.SpaceKey != m.SpaceKey || stored.Files == nil {
		return nil
	}
	m.Files = stored.Files
	m.LastSync = stored.LastSync
	return nil
}

func (m *Metadata) Save() error {
	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	m.LastSync = time.Now()
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal sync cache: %w", err)
	}
	if err := os.WriteFile(m.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write sync cache: %w", err)
	}
	return nil
}

func (m *Metadata) key(filePath string) string {
	if rel, err := filepath.Rel(m.root, filePath); err == nil {
		return filepath.ToSlash(rel)
	}
	return filepath.ToSlash(filePath)
}

// Status compares the file's current hash with the cached one.
func (m *Metadata) Status(filePath string) (Status, string, error) {
	hash, err := fileHash(filePath)
	if err != nil {
		return "", "", err
	}
	cached, ok := m.Files[m.key(filePath)]
	switch {
	case !ok:
		return StatusNew, hash, nil
	case cached.Hash != hash:
		return StatusChanged, hash, nil
	default:
		return StatusUpToDate, hash, nil
	}
}

func (m *Metadata) Record(filePath, hash, pageID, title string) {
	m.Files[m.key(filePath)] = FileMetadata{
		Hash:     hash,
		LastSync: time.Now(),
		PageID:   pageID,
		Title:    title,
	}
}

func (m *Metadata) PageID(filePath string) string {
	return m.Files[m.key(filePath)].PageID
}

// Prune drops entries for files that are no longer present and returns
// their paths.
func (m *Metadata) Prune(present []string) []string {
	keep := make(map[string]bool, len(present))
	for _, p := range present {
		keep[m.key(p)] = true
	}
	var removed []string
	for k := range m.Files {
		if !keep[k] {
			removed = append(removed, k)
			delete(m.Files, k)
		}
	}
	return removed
}

func fileHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to calculate hash: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
