package commands

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"bardo/internal/confluence"
)

func writeMarkdown(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write markdown: %v", err)
	}
	return path
}

func TestUploadCreatesNewPage(t *testing.T) {
	file := writeMarkdown(t, t.TempDir(), "test.md", "# Test Title\n\nSome body text.")
	mc := confluence.NewMockClient()
	withMockClient(t, mc)

	out, err := runCmdForTest(t, "upload", "-c", writeTempConfig(t, testConfigYAML), "-f", file)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	if len(mc.CreateCalls) != 1 || mc.CreateCalls[0] != "Test Title" {
		t.Fatalf("expected one create call for 'Test Title', got %v", mc.CreateCalls)
	}
	page := mc.PagesByTitle["DOCS:Test Title"]
	if page == nil {
		t.Fatal("page not stored in mock")
	}
	if !strings.Contains(page.Body.Storage.Value, "<p>Some body text.</p>") {
		t.Errorf("content not converted: %q", page.Body.Storage.Value)
	}
	if !strings.Contains(out, "Created page 'Test Title' (ID: Test Title-id) in space 'DOCS'") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestUploadUpdatesExistingPage(t *testing.T) {
	file := writeMarkdown(t, t.TempDir(), "test.md", "# Existing\n\nNew body.")
	mc := confluence.NewMockClient()
	existing := &confluence.Page{ID: "42", Title: "Existing"}
	existing.Version.Number = 3
	mc.Pages["42"] = existing
	mc.PagesByTitle["DOCS:Existing"] = existing
	withMockClient(t, mc)

	out, err := runCmdForTest(t, "upload", "-c", writeTempConfig(t, testConfigYAML), "-f", file)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if len(mc.CreateCalls) != 0 || len(mc.UpdateCalls) != 1 {
		t.Fatalf("expected a single update, got creates=%v updates=%v", mc.CreateCalls, mc.UpdateCalls)
	}
	if existing.Version.Number != 4 {
		t.Errorf("expected version 4, got %d", existing.Version.Number)
	}
	if !strings.Contains(out, "Updated page 'Existing' (ID: 42)") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestUploadForbiddenUpdate(t *testing.T) {
	file := writeMarkdown(t, t.TempDir(), "test.md", "# Locked\n")
	mc := confluence.NewMockClient()
	mc.ForbidUpdates = true
	locked := &confluence.Page{ID: "7", Title: "Locked"}
	mc.Pages["7"] = locked
	mc.PagesByTitle["DOCS:Locked"] = locked
	withMockClient(t, mc)

	_, err := runCmdForTest(t, "upload", "-c", writeTempConfig(t, testConfigYAML), "-f", file)
	if !confluence.IsPageUpdateForbidden(err) {
		t.Fatalf("expected forbidden update error, got %v", err)
	}
	var forbidden *confluence.PageUpdateForbiddenError
	if !errors.As(err, &forbidden) || forbidden.PageID != "7" {
		t.Fatalf("expected error for page 7, got %v", err)
	}
}

func TestUploadResolvesParentByTitle(t *testing.T) {
	file := writeMarkdown(t, t.TempDir(), "child.md", "# Child\n")
	mc := confluence.NewMockClient()
	parent := &confluence.Page{ID: "100", Title: "Parent"}
	mc.Pages["100"] = parent
	mc.PagesByTitle["DOCS:Parent"] = parent
	withMockClient(t, mc)

	if _, err := runCmdForTest(t, "upload", "-c", writeTempConfig(t, testConfigYAML), "-f", file, "-p", "Parent"); err != nil {
		t.Fatalf("upload: %v", err)
	}
	if len(mc.CreateCalls) != 1 || mc.CreateCalls[0] != "Child" {
		t.Fatalf("expected child to be created, got %v", mc.CreateCalls)
	}
	if mc.Parents["Child-id"] != "100" {
		t.Errorf("expected child under page 100, got %q", mc.Parents["Child-id"])
	}

	_, err := runCmdForTest(t, "upload", "-c", writeTempConfig(t, testConfigYAML), "-f", file, "-p", "Nowhere")
	if err == nil || !strings.Contains(err.Error(), "parent page 'Nowhere' not found in space 'DOCS'") {
		t.Fatalf("expected missing parent error, got %v", err)
	}
}

func TestUploadAttachesImages(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "diagram.png"), []byte("png-bytes"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "copy.png"), []byte("png-bytes"), 0o644); err != nil {
		t.Fatal(err)
	}
	file := writeMarkdown(t, dir, "doc.md", "# With Images\n\n![one](diagram.png)\n![two](copy.png)\n![missing](gone.png)\n![remote](https://example.com/x.png)\n")

	mc := confluence.NewMockClient()
	withMockClient(t, mc)

	out, err := runCmdForTest(t, "upload", "-c", writeTempConfig(t, testConfigYAML), "-f", file)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	atts := mc.Attachments["With Images-id"]
	if len(atts) != 1 {
		t.Fatalf("identical images should upload once, got %v", atts)
	}
	if !strings.Contains(out, "Attached 1 image(s) to page With Images-id") {
		t.Errorf("unexpected output: %q", out)
	}

	page := mc.PagesByTitle["DOCS:With Images"]
	if !strings.Contains(page.Body.Storage.Value, `<ri:attachment ri:filename="diagram.png"/>`) {
		t.Errorf("image macro missing from %q", page.Body.Storage.Value)
	}
}

func TestUploadSkipsImagesWhenAsked(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.png"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	file := writeMarkdown(t, dir, "doc.md", "# Plain\n\n![a](a.png)\n")
	mc := confluence.NewMockClient()
	withMockClient(t, mc)

	if _, err := runCmdForTest(t, "upload", "-c", writeTempConfig(t, testConfigYAML), "-f", file, "--no-images"); err != nil {
		t.Fatalf("upload: %v", err)
	}
	if len(mc.Attachments) != 0 {
		t.Fatalf("expected no attachments, got %v", mc.Attachments)
	}
}

func TestUploadRejectsBadInput(t *testing.T) {
	dir := t.TempDir()
	txt := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(txt, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	withMockClient(t, confluence.NewMockClient())
	cfg := writeTempConfig(t, testConfigYAML)

	testCases := []struct {
		name string
		file string
		want string
	}{
		{"missing file", filepath.Join(dir, "nope.md"), "failed to access file"},
		{"directory", dir, "is a directory"},
		{"wrong extension", txt, "must have .md extension"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := runCmdForTest(t, "upload", "-c", cfg, "-f", tc.file)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}
