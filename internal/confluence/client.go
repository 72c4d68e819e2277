// Package confluence implements page and attachment operations on top of
// the typed request builder in bardo/pkg/confluence.
package confluence

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	api "bardo/pkg/confluence"
	"bardo/pkg/logger"
)

const restPath = "/rest/api"

type Client struct {
	baseURL string
	api     *api.Client
	logger  *logger.Logger

	attachments *attachmentCache
}

// NewClient connects to the Confluence site at baseURL (for Cloud, including
// the /wiki prefix) with basic auth.
func NewClient(baseURL, username, apiToken string, log *logger.Logger, opts ...api.Option) (*Client, error) {
	return newClient(nil, baseURL, username, apiToken, log, opts...)
}

// newClient uses hc when it is not nil.
func newClient(hc *http.Client, baseURL, username, apiToken string, log *logger.Logger, opts ...api.Option) (*Client, error) {
	if log == nil {
		log = logger.Discard()
	}
	baseURL = strings.TrimSuffix(baseURL, "/")
	host := baseURL + restPath

	opts = append([]api.Option{api.WithBasicAuth(username, apiToken), api.WithLogger(log)}, opts...)

	var (
		c   *api.Client
		err error
	)
	if hc != nil {
		c, err = api.NewWithClient(hc, host, opts...)
	} else {
		c, err = api.New(host, opts...)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	cache, err := newAttachmentCache(attachmentCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create attachment cache: %w", err)
	}

	return &Client{baseURL: baseURL, api: c, logger: log, attachments: cache}, nil
}

// execute runs the chain and returns the decoded body when the response
// status is 200.
func execute[T any](ctx context.Context, e api.Executor) (*T, *api.Response[T], error) {
	resp, err := api.Execute[T](ctx, e)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to execute request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, resp, &APIError{StatusCode: resp.StatusCode, Body: string(resp.Raw)}
	}
	if resp.Data == nil {
		return nil, resp, fmt.Errorf("failed to decode response: %q", truncate(string(resp.Raw), 200))
	}
	return resp.Data, resp, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func (c *Client) CreatePage(ctx context.Context, spaceKey, title, content string) (*Page, error) {
	return c.CreatePageWithParent(ctx, spaceKey, title, content, "")
}

func (c *Client) CreatePageWithParent(ctx context.Context, spaceKey, title, content, parentID string) (*Page, error) {
	if parentID != "" {
		c.logger.Debug("Creating page '%s' in space %s under %s", title, spaceKey, parentID)
	} else {
		c.logger.Debug("Creating page '%s' in space %s", title, spaceKey)
	}

	req := api.NewPage(spaceKey, title, content, parentID)
	page, _, err := execute[Page](ctx, c.api.Post(req).Content())
	if err != nil {
		return nil, err
	}
	return page, nil
}

func (c *Client) UpdatePage(ctx context.Context, pageID, title, content string) (*Page, error) {
	currentPage, err := c.GetPage(ctx, pageID)
	if err != nil {
		return nil, fmt.Errorf("failed to get current page version: %w", err)
	}

	req := api.UpdatePageRequest{
		ID:      pageID,
		Type:    "page",
		Title:   title,
		Body:    api.StorageBody(content),
		Version: api.Version{Number: currentPage.Version.Number + 1},
	}
	c.logger.Debug("Updating page %s to version %d", pageID, req.Version.Number)

	page, resp, err := execute[Page](ctx, c.api.Put(req).Content().ContentID(req.ID))
	if resp != nil && resp.StatusCode == http.StatusForbidden {
		return nil, &PageUpdateForbiddenError{
			PageID: pageID,
			Title:  title,
			Msg:    fmt.Sprintf("page '%s' (%s) cannot be updated: %s", title, pageID, resp.Raw),
		}
	}
	if err != nil {
		return nil, err
	}
	return page, nil
}

func (c *Client) GetPage(ctx context.Context, pageID string) (*Page, error) {
	chain := c.api.Get().Content().ContentID(pageID).Expand("body.storage,body.view,version,space")
	page, _, err := execute[Page](ctx, chain)
	if err != nil {
		return nil, err
	}
	return page, nil
}

// FindPageByTitle returns nil without an error when no page matches.
func (c *Client) FindPageByTitle(ctx context.Context, spaceKey, title string) (*Page, error) {
	chain := c.api.Get().Content().
		SpaceKey(url.QueryEscape(spaceKey)).
		Title(url.QueryEscape(title)).
		Expand("body.storage,version")

	result, _, err := execute[api.Results[Page]](ctx, chain)
	if err != nil {
		return nil, err
	}
	if len(result.Results) == 0 {
		return nil, nil
	}
	return &result.Results[0], nil
}
