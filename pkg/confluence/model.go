package confluence

// Request bodies.

type Space struct {
	Key string `json:"key"`
}

type Storage struct {
	Value          string `json:"value"`
	Representation string `json:"representation"`
}

type Body struct {
	Storage Storage `json:"storage"`
}

type Ancestor struct {
	ID string `json:"id"`
}

type Version struct {
	Number int `json:"number"`
}

// StorageBody wraps value in the "storage" representation.
func StorageBody(value string) Body {
	return Body{Storage: Storage{Value: value, Representation: "storage"}}
}

type CreatePageRequest struct {
	Type      string     `json:"type"`
	Title     string     `json:"title"`
	Space     Space      `json:"space"`
	Body      Body       `json:"body"`
	Ancestors []Ancestor `json:"ancestors,omitempty"`
}

// NewPage returns a CreatePageRequest for a page of storage content. An
// empty parentID creates a root page.
func NewPage(spaceKey, title, storage, parentID string) CreatePageRequest {
	req := CreatePageRequest{
		Type:  "page",
		Title: title,
		Space: Space{Key: spaceKey},
		Body:  StorageBody(storage),
	}
	if parentID != "" {
		req.Ancestors = []Ancestor{{ID: parentID}}
	}
	return req
}

// UpdatePageRequest is sent to content/{id}. ID only addresses the page and
// is not part of the body.
type UpdatePageRequest struct {
	ID        string     `json:"-"`
	Type      string     `json:"type"`
	Title     string     `json:"title"`
	Space     *Space     `json:"space,omitempty"`
	Body      Body       `json:"body"`
	Ancestors []Ancestor `json:"ancestors,omitempty"`
	Version   Version    `json:"version"`
}

type UploadAttachmentRequest struct {
	ContentID string `json:"-"`
	Name      string `json:"name"`
	File      string `json:"file"`
	Comment   string `json:"comment"`
}

// ToUpdate addresses an existing attachment with the same file.
func (r UploadAttachmentRequest) ToUpdate(data AttachmentData) UpdateAttachmentRequest {
	return UpdateAttachmentRequest{
		ContentID:    r.ContentID,
		AttachmentID: data.ID,
		Name:         r.Name,
		File:         r.File,
		Comment:      r.Comment,
	}
}

type UpdateAttachmentRequest struct {
	ContentID    string `json:"-"`
	AttachmentID string `json:"-"`
	Name         string `json:"name"`
	File         string `json:"file"`
	Comment      string `json:"comment"`
}

// Responses.

type Results[T any] struct {
	Results []T          `json:"results"`
	Start   int          `json:"start"`
	Limit   int          `json:"limit"`
	Size    int          `json:"size"`
	Links   ResultsLinks `json:"_links"`
}

type ResultsLinks struct {
	Self string `json:"self"`
	Base string `json:"base,omitempty"`
	Next string `json:"next,omitempty"`
}

type Links struct {
	Base    string `json:"base"`
	Context string `json:"context"`
	Self    string `json:"self"`
}

type ContentLinks struct {
	WebUI     string `json:"webui,omitempty"`
	Thumbnail string `json:"thumbnail,omitempty"`
	Download  string `json:"download,omitempty"`
	Edit      string `json:"edit,omitempty"`
	TinyUI    string `json:"tinyui,omitempty"`
	Self      string `json:"self"`
}

type Extensions struct {
	Position  any    `json:"position,omitempty"`
	MediaType string `json:"mediaType,omitempty"`
	FileSize  int64  `json:"fileSize,omitempty"`
	Comment   string `json:"comment,omitempty"`
}

type ProfilePicture struct {
	Path      string `json:"path"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	IsDefault bool   `json:"isDefault"`
}

type User struct {
	Type           string         `json:"type"`
	Username       string         `json:"username,omitempty"`
	UserKey        string         `json:"userKey,omitempty"`
	AccountID      string         `json:"accountId,omitempty"`
	ProfilePicture ProfilePicture `json:"profilePicture"`
	DisplayName    string         `json:"displayName"`
}

type ContentVersion struct {
	By        *User  `json:"by,omitempty"`
	When      string `json:"when"`
	Message   string `json:"message,omitempty"`
	Number    int    `json:"number"`
	MinorEdit bool   `json:"minorEdit"`
	Hidden    bool   `json:"hidden,omitempty"`
}

type ContentBody struct {
	Storage *Storage `json:"storage,omitempty"`
	View    *Storage `json:"view,omitempty"`
}

type ContentSpace struct {
	ID   int64  `json:"id"`
	Key  string `json:"key"`
	Name string `json:"name"`
	Type string `json:"type"`
}

type Label struct {
	Prefix string `json:"prefix"`
	Name   string `json:"name"`
	ID     string `json:"id"`
}

type Metadata struct {
	MediaType string          `json:"mediaType,omitempty"`
	Labels    *Results[Label] `json:"labels,omitempty"`
}

// Content is a page, blog post or attachment.
type Content struct {
	ID         string            `json:"id"`
	Type       string            `json:"type"`
	Status     string            `json:"status"`
	Title      string            `json:"title"`
	Space      *ContentSpace     `json:"space,omitempty"`
	Version    *ContentVersion   `json:"version,omitempty"`
	Body       *ContentBody      `json:"body,omitempty"`
	Ancestors  []Content         `json:"ancestors,omitempty"`
	Extensions *Extensions       `json:"extensions,omitempty"`
	Metadata   *Metadata         `json:"metadata,omitempty"`
	Links      ContentLinks      `json:"_links"`
	Expandable map[string]string `json:"_expandable,omitempty"`
}

// ChildContentServiceResponse is returned by content/{id}/child.
type ChildContentServiceResponse struct {
	Page       *Results[Content] `json:"page,omitempty"`
	Attachment *Results[Content] `json:"attachment,omitempty"`
	Comment    *Results[Content] `json:"comment,omitempty"`
	Links      Links             `json:"_links"`
	Expandable map[string]string `json:"_expandable,omitempty"`
}

// ContentData is the slice of Content needed to update a page.
type ContentData struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Version int    `json:"version"`
}

// ContentDataFrom defaults the version to 1 when content has none.
func ContentDataFrom(c Content) ContentData {
	v := 1
	if c.Version != nil {
		v = c.Version.Number
	}
	return ContentData{ID: c.ID, Title: c.Title, Version: v}
}

type AttachmentData struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

func AttachmentDataFrom(c Content) AttachmentData {
	return AttachmentData{ID: c.ID, Title: c.Title}
}
