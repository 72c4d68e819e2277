package confluence

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	api "bardo/pkg/confluence"
	"bardo/pkg/confluence/form"
)

// duplicateAttachment is the message Confluence answers a 400 with when the
// page already has an attachment of the same name.
const duplicateAttachment = "same file name as an existing attachment"

// UploadAttachment attaches filePath to pageID. An attachment with the same
// name is replaced by a new version instead.
func (c *Client) UploadAttachment(ctx context.Context, pageID, filePath string) (*Attachment, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read attachment: %w", err)
	}
	name := filepath.Base(filePath)

	newForm := func() *form.Form {
		return form.New().AddFile(form.FileField, name, mime.TypeByExtension(filepath.Ext(name)), bytes.NewReader(data))
	}

	c.logger.Debug("Uploading attachment %s to page %s", name, pageID)
	defer c.attachments.forget(pageID)
	chain := c.api.Post(nil).Content().ContentID(pageID).Child().Attachment(newForm())
	result, resp, err := execute[api.Results[api.Content]](ctx, chain)
	if err == nil {
		if len(result.Results) == 0 {
			return nil, fmt.Errorf("upload of %s returned no attachment", name)
		}
		att := attachmentFrom(result.Results[0])
		return &att, nil
	}
	if resp == nil || resp.StatusCode != http.StatusBadRequest || !strings.Contains(string(resp.Raw), duplicateAttachment) {
		return nil, err
	}

	existing, err := c.findAttachment(ctx, pageID, name)
	if err != nil {
		return nil, fmt.Errorf("failed to find existing attachment %s: %w", name, err)
	}

	c.logger.Debug("Attachment %s exists on page %s as %s, uploading new version", name, pageID, existing.ID)
	update := c.api.Post(nil).Content().ContentID(pageID).Child().Attachment(newForm()).AttachmentID(existing.ID).Data()
	updated, _, err := execute[api.Content](ctx, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update attachment %s: %w", name, err)
	}
	att := attachmentFrom(*updated)
	if att.ID == "" {
		att = *existing
	}
	return &att, nil
}

var errAttachmentNotFound = errors.New("attachment not found")

func (c *Client) findAttachment(ctx context.Context, pageID, name string) (*Attachment, error) {
	chain := c.api.Get().Content().ContentID(pageID).Child().Attachment().Filename(url.QueryEscape(name))
	result, _, err := execute[api.Results[api.Content]](ctx, chain)
	if err != nil {
		return nil, err
	}
	for _, r := range result.Results {
		if r.Title == name {
			att := attachmentFrom(r)
			return &att, nil
		}
	}
	return nil, errAttachmentNotFound
}

// ListAttachments always asks the server and refreshes the cached listing
// of pageID.
func (c *Client) ListAttachments(ctx context.Context, pageID string) ([]Attachment, error) {
	result, _, err := execute[api.Results[api.Content]](ctx, c.api.Get().Content().ContentID(pageID).Child().Attachment())
	if err != nil {
		return nil, err
	}

	attachments := make([]Attachment, 0, len(result.Results))
	for _, r := range result.Results {
		attachments = append(attachments, attachmentFrom(r))
	}
	c.attachments.put(pageID, attachments)
	return attachments, nil
}

// GetAttachmentDownloadURL returns the absolute download link of an
// attachment of pageID. A listing cached by ListAttachments is reused.
func (c *Client) GetAttachmentDownloadURL(ctx context.Context, pageID, attachmentID string) (string, error) {
	attachments, ok := c.attachments.get(pageID)
	if !ok {
		var err error
		if attachments, err = c.ListAttachments(ctx, pageID); err != nil {
			return "", err
		}
	}
	for _, a := range attachments {
		if a.ID != attachmentID {
			continue
		}
		if a.DownloadPath == "" {
			return "", fmt.Errorf("attachment %s has no download link", attachmentID)
		}
		return c.baseURL + a.DownloadPath, nil
	}
	return "", fmt.Errorf("%w: %s on page %s", errAttachmentNotFound, attachmentID, pageID)
}
