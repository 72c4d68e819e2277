package confluence

import (
	"errors"
	"fmt"

	api "bardo/pkg/confluence"
)

type Page struct {
	ID        string      `json:"id,omitempty"`
	Title     string      `json:"title"`
	Body      PageBody    `json:"body,omitempty"`
	Space     api.Space   `json:"space,omitempty"`
	Version   api.Version `json:"version,omitempty"`
	Ancestors []PageInfo  `json:"ancestors,omitempty"`
	Links     PageLinks   `json:"_links,omitempty"`
}

type PageBody struct {
	Storage api.Storage `json:"storage"`
	View    api.Storage `json:"view"`
}

type PageLinks struct {
	WebUI string `json:"webui,omitempty"`
	Base  string `json:"base,omitempty"`
}

type PageInfo struct {
	ID       string     `json:"id"`
	Title    string     `json:"title"`
	Children []PageInfo `json:"children,omitempty"`
}

type Attachment struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	MediaType    string `json:"mediaType,omitempty"`
	FileSize     int64  `json:"fileSize,omitempty"`
	DownloadPath string `json:"download,omitempty"`
}

func attachmentFrom(c api.Content) Attachment {
	a := Attachment{ID: c.ID, Title: c.Title, DownloadPath: c.Links.Download}
	if c.Extensions != nil {
		a.MediaType = c.Extensions.MediaType
		a.FileSize = c.Extensions.FileSize
	}
	return a
}

// APIError is a response whose status the operation did not expect.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("API request failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("API request failed with status %d: %s", e.StatusCode, e.Body)
}

// PageUpdateForbiddenError is returned when Confluence refuses to update a
// page, typically because it is archived or restricted.
type PageUpdateForbiddenError struct {
	PageID string
	Title  string
	Msg    string
}

func (e *PageUpdateForbiddenError) Error() string {
	return e.Msg
}

func IsPageUpdateForbidden(err error) bool {
	var target *PageUpdateForbiddenError
	return errors.As(err, &target)
}
