package confluence

import "context"

// ConfluenceClient defines the interface for Confluence operations
type ConfluenceClient interface {
	CreatePage(ctx context.Context, spaceKey, title, content string) (*Page, error)
	CreatePageWithParent(ctx context.Context, spaceKey, title, content, parentID string) (*Page, error)
	UpdatePage(ctx context.Context, pageID, title, content string) (*Page, error)
	FindPageByTitle(ctx context.Context, spaceKey, title string) (*Page, error)
	GetPage(ctx context.Context, pageID string) (*Page, error)
	UploadAttachment(ctx context.Context, pageID, filePath string) (*Attachment, error)
	GetPageHierarchy(ctx context.Context, spaceKey, parentPageTitle string) ([]PageInfo, error)
	GetPageAncestors(ctx context.Context, pageID string) ([]PageInfo, error)
	GetChildPages(ctx context.Context, pageID string) ([]PageInfo, error)
	ListAttachments(ctx context.Context, pageID string) ([]Attachment, error)
	GetAttachmentDownloadURL(ctx context.Context, pageID, attachmentID string) (string, error)
}

// Ensure Client implements the interface
var _ ConfluenceClient = (*Client)(nil)
