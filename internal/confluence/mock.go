package confluence

import (
	"context"
	"sync"

	api "bardo/pkg/confluence"
)

// MockClient is an in-memory implementation of ConfluenceClient for tests.
// Attachment calls are safe for concurrent use.
type MockClient struct {
	mu sync.Mutex

	Pages            map[string]*Page        // pageID -> Page
	PagesByTitle     map[string]*Page        // spaceKey:title -> Page
	Children         map[string][]PageInfo   // pageID -> children
	Ancestors        map[string][]PageInfo   // pageID -> ancestors chain
	SpaceHierarchies map[string][]PageInfo   // spaceKey -> root pages (fully nested)
	Attachments      map[string][]Attachment // pageID -> attachments
	Parents          map[string]string       // created pageID -> parent pageID
	CreateCalls      []string                // titles created (for assertions)
	UpdateCalls      []string                // titles updated
	LastUploadedFile string
	FailFindByTitle  bool
	ForbidUpdates    bool
}

func NewMockClient() *MockClient {
	return &MockClient{
		Pages:            make(map[string]*Page),
		PagesByTitle:     make(map[string]*Page),
		Children:         make(map[string][]PageInfo),
		Ancestors:        make(map[string][]PageInfo),
		SpaceHierarchies: make(map[string][]PageInfo),
		Attachments:      make(map[string][]Attachment),
		Parents:          make(map[string]string),
	}
}

func (m *MockClient) key(spaceKey, title string) string { return spaceKey + ":" + title }

func (m *MockClient) CreatePage(_ context.Context, spaceKey, title, content string) (*Page, error) {
	p := &Page{ID: title + "-id", Title: title, Version: api.Version{Number: 1}}
	p.Space.Key = spaceKey
	p.Body.Storage.Value = content
	m.Pages[p.ID] = p
	m.PagesByTitle[m.key(spaceKey, title)] = p
	m.CreateCalls = append(m.CreateCalls, title)
	return p, nil
}

func (m *MockClient) CreatePageWithParent(ctx context.Context, spaceKey, title, content, parentID string) (*Page, error) {
	p, err := m.CreatePage(ctx, spaceKey, title, content)
	if err != nil {
		return nil, err
	}
	if parentID != "" {
		m.Parents[p.ID] = parentID
	}
	return p, nil
}

func (m *MockClient) UpdatePage(_ context.Context, pageID, title, content string) (*Page, error) {
	if m.ForbidUpdates {
		return nil, &PageUpdateForbiddenError{PageID: pageID, Title: title, Msg: "page is archived"}
	}
	if p, ok := m.Pages[pageID]; ok {
		p.Title = title
		p.Body.Storage.Value = content
		p.Version.Number++
		m.UpdateCalls = append(m.UpdateCalls, title)
		return p, nil
	}
	return nil, &APIError{StatusCode: 404}
}

func (m *MockClient) FindPageByTitle(_ context.Context, spaceKey, title string) (*Page, error) {
	if m.FailFindByTitle {
		return nil, &APIError{StatusCode: 500, Body: "find failed"}
	}
	return m.PagesByTitle[m.key(spaceKey, title)], nil
}

func (m *MockClient) GetPage(_ context.Context, pageID string) (*Page, error) {
	if p, ok := m.Pages[pageID]; ok {
		return p, nil
	}
	return nil, &APIError{StatusCode: 404}
}

func (m *MockClient) UploadAttachment(_ context.Context, pageID, filePath string) (*Attachment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	att := Attachment{ID: "att-" + filePath, Title: filePath}
	m.Attachments[pageID] = append(m.Attachments[pageID], att)
	m.LastUploadedFile = filePath
	return &att, nil
}

// GetPageHierarchy returns the children of the first page titled
// parentPageTitle, or the whole space tree when the title is empty.
func (m *MockClient) GetPageHierarchy(_ context.Context, spaceKey, parentPageTitle string) ([]PageInfo, error) {
	roots := m.SpaceHierarchies[spaceKey]
	if parentPageTitle == "" {
		return roots, nil
	}
	if p := findByTitle(roots, parentPageTitle); p != nil {
		return p.Children, nil
	}
	return []PageInfo{}, nil
}

func findByTitle(pages []PageInfo, title string) *PageInfo {
	for i := range pages {
		if pages[i].Title == title {
			return &pages[i]
		}
		if p := findByTitle(pages[i].Children, title); p != nil {
			return p
		}
	}
	return nil
}

func (m *MockClient) GetPageAncestors(_ context.Context, pageID string) ([]PageInfo, error) {
	return m.Ancestors[pageID], nil
}

func (m *MockClient) GetChildPages(_ context.Context, pageID string) ([]PageInfo, error) {
	return m.Children[pageID], nil
}

func (m *MockClient) ListAttachments(_ context.Context, pageID string) ([]Attachment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Attachments[pageID], nil
}

func (m *MockClient) GetAttachmentDownloadURL(_ context.Context, pageID, attachmentID string) (string, error) {
	return "https://wiki.example.com/download/attachments/" + pageID + "/" + attachmentID, nil
}

var _ ConfluenceClient = (*MockClient)(nil)
