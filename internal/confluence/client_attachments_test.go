package confluence

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	api "bardo/pkg/confluence"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestUploadAttachment(t *testing.T) {
	client, mockTransport := createTestClient(t)
	path := writeTempFile(t, "diagram.png", "png bytes")

	mockTransport.addResponse("POST", "/wiki/rest/api/content/123/child/attachment", http.StatusOK,
		results(api.Content{ID: "att1", Title: "diagram.png", Extensions: &api.Extensions{MediaType: "image/png", FileSize: 9}}))

	attachment, err := client.UploadAttachment(context.Background(), "123", path)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if attachment.ID != "att1" {
		t.Errorf("Expected attachment ID 'att1', got '%s'", attachment.ID)
	}
	if attachment.MediaType != "image/png" {
		t.Errorf("Expected media type 'image/png', got '%s'", attachment.MediaType)
	}

	req := mockTransport.getLastRequest()
	if req.Header.Get("X-Atlassian-Token") != "nocheck" {
		t.Error("Expected X-Atlassian-Token header")
	}
	if !strings.HasPrefix(req.Header.Get("Content-Type"), "multipart/form-data") {
		t.Errorf("Expected multipart request, got '%s'", req.Header.Get("Content-Type"))
	}
	if !strings.Contains(req.body, `filename="diagram.png"`) || !strings.Contains(req.body, "png bytes") {
		t.Errorf("Expected file part in body, got %q", req.body)
	}
}

func TestUploadAttachmentDuplicate(t *testing.T) {
	client, mockTransport := createTestClient(t)
	path := writeTempFile(t, "test attachment.txt", "test content")

	mockTransport.addResponse("POST", "/wiki/rest/api/content/123/child/attachment", http.StatusBadRequest,
		"Cannot add a new attachment with same file name as an existing attachment: test attachment.txt")
	mockTransport.addResponse("GET",
		"https://test.atlassian.net/wiki/rest/api/content/123/child/attachment?filename=test+attachment.txt",
		http.StatusOK, results(api.Content{ID: "att1", Title: "test attachment.txt"}))
	mockTransport.addResponse("POST", "/wiki/rest/api/content/123/child/attachment/att1/data", http.StatusOK,
		api.Content{ID: "att1", Title: "test attachment.txt", Version: &api.ContentVersion{Number: 2}})

	attachment, err := client.UploadAttachment(context.Background(), "123", path)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if attachment.ID != "att1" {
		t.Errorf("Expected attachment ID 'att1', got '%s'", attachment.ID)
	}
	if mockTransport.getRequestCount() != 3 {
		t.Errorf("Expected upload, lookup and data update requests, got %d", mockTransport.getRequestCount())
	}
	if last := mockTransport.getLastRequest(); !strings.Contains(last.body, "test content") {
		t.Errorf("Expected the file to be re-sent on update, got %q", last.body)
	}
}

func TestUploadAttachmentOtherBadRequest(t *testing.T) {
	client, mockTransport := createTestClient(t)
	path := writeTempFile(t, "a.txt", "x")

	mockTransport.addResponse("POST", "/wiki/rest/api/content/123/child/attachment", http.StatusBadRequest, "invalid")

	if _, err := client.UploadAttachment(context.Background(), "123", path); err == nil {
		t.Fatal("Expected error")
	}
	if mockTransport.getRequestCount() != 1 {
		t.Errorf("Expected a single request, got %d", mockTransport.getRequestCount())
	}
}

func TestUploadAttachmentMissingFile(t *testing.T) {
	client, mockTransport := createTestClient(t)

	_, err := client.UploadAttachment(context.Background(), "123", filepath.Join(t.TempDir(), "missing.png"))
	if err == nil || !strings.Contains(err.Error(), "failed to read attachment") {
		t.Errorf("Expected read error, got %v", err)
	}
	if mockTransport.getRequestCount() != 0 {
		t.Error("Expected no request")
	}
}

func TestListAttachments(t *testing.T) {
	client, mockTransport := createTestClient(t)

	mockTransport.addResponse("GET", "/wiki/rest/api/content/123/child/attachment", http.StatusOK,
		results(api.Content{ID: "att1", Title: "file1.txt"}, api.Content{ID: "att2", Title: "file2.txt"}))

	attachments, err := client.ListAttachments(context.Background(), "123")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(attachments) != 2 {
		t.Fatalf("Expected 2 attachments, got %d", len(attachments))
	}
	if attachments[1].Title != "file2.txt" {
		t.Errorf("Expected second attachment 'file2.txt', got '%s'", attachments[1].Title)
	}
}

func TestGetAttachmentDownloadURL(t *testing.T) {
	client, mockTransport := createTestClient(t)

	mockTransport.addResponse("GET", "/wiki/rest/api/content/123/child/attachment", http.StatusOK,
		results(api.Content{
			ID:    "att1",
			Title: "file1.txt",
			Links: api.ContentLinks{Download: "/download/attachments/123/file1.txt?version=1"},
		}))

	got, err := client.GetAttachmentDownloadURL(context.Background(), "123", "att1")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	want := "https://test.atlassian.net/wiki/download/attachments/123/file1.txt?version=1"
	if got != want {
		t.Errorf("Expected '%s', got '%s'", want, got)
	}

	if _, err := client.GetAttachmentDownloadURL(context.Background(), "123", "att9"); err == nil {
		t.Error("Expected error for unknown attachment")
	}
	if mockTransport.getRequestCount() != 1 {
		t.Errorf("Expected the listing to be fetched once, got %d requests", mockTransport.getRequestCount())
	}
}

func TestUploadAttachmentInvalidatesListing(t *testing.T) {
	client, mockTransport := createTestClient(t)
	path := writeTempFile(t, "file2.txt", "data")

	mockTransport.addResponse("GET", "/wiki/rest/api/content/123/child/attachment", http.StatusOK,
		results(api.Content{ID: "att1", Title: "file1.txt"}))
	mockTransport.addResponse("POST", "/wiki/rest/api/content/123/child/attachment", http.StatusOK,
		results(api.Content{ID: "att2", Title: "file2.txt"}))

	if _, err := client.ListAttachments(context.Background(), "123"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if _, err := client.UploadAttachment(context.Background(), "123", path); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if _, ok := client.attachments.get("123"); ok {
		t.Error("Expected the cached listing to be dropped after an upload")
	}
}
