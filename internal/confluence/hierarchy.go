package confluence

import (
	"context"
	"fmt"
	"net/url"

	api "bardo/pkg/confluence"
)

// spacePageLimit caps the single listing used to build a space tree.
const spacePageLimit = 1000

func (c *Client) GetPageHierarchy(ctx context.Context, spaceKey, parentPageTitle string) ([]PageInfo, error) {
	if parentPageTitle == "" {
		pages, err := c.getAllPagesInSpace(ctx, spaceKey)
		if err != nil {
			return nil, fmt.Errorf("failed to get pages in space: %w", err)
		}
		return pages, nil
	}

	parentPage, err := c.FindPageByTitle(ctx, spaceKey, parentPageTitle)
	if err != nil {
		return nil, fmt.Errorf("failed to find parent page '%s': %w", parentPageTitle, err)
	}
	if parentPage == nil {
		return nil, fmt.Errorf("parent page '%s' not found in space '%s'", parentPageTitle, spaceKey)
	}

	pages, err := c.GetChildPages(ctx, parentPage.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get child pages: %w", err)
	}
	return pages, nil
}

func (c *Client) getAllPagesInSpace(ctx context.Context, spaceKey string) ([]PageInfo, error) {
	endpoint := fmt.Sprintf("content?spaceKey=%s&type=page&limit=%d&expand=ancestors",
		url.QueryEscape(spaceKey), spacePageLimit)

	result, _, err := execute[api.Results[api.Content]](ctx, c.api.Get().CustomEndpoint(endpoint))
	if err != nil {
		return nil, err
	}
	if result.Size >= spacePageLimit {
		c.logger.Warn("space %s has at least %d pages, the tree may be incomplete", spaceKey, spacePageLimit)
	}
	return buildPageTree(result.Results), nil
}

// buildPageTree nests pages under their immediate parent, the last entry of
// their ancestors. Pages whose parent is not in the listing become roots.
// Listing order is kept at every level.
func buildPageTree(pages []api.Content) []PageInfo {
	known := make(map[string]bool, len(pages))
	for _, p := range pages {
		known[p.ID] = true
	}

	children := make(map[string][]api.Content)
	var roots []api.Content
	for _, p := range pages {
		if n := len(p.Ancestors); n > 0 && known[p.Ancestors[n-1].ID] {
			parentID := p.Ancestors[n-1].ID
			children[parentID] = append(children[parentID], p)
			continue
		}
		roots = append(roots, p)
	}

	var build func([]api.Content) []PageInfo
	build = func(level []api.Content) []PageInfo {
		out := make([]PageInfo, 0, len(level))
		for _, p := range level {
			out = append(out, PageInfo{ID: p.ID, Title: p.Title, Children: build(children[p.ID])})
		}
		return out
	}
	return build(roots)
}

// GetChildPages returns the direct children of pageID with their own
// descendants filled in.
func (c *Client) GetChildPages(ctx context.Context, pageID string) ([]PageInfo, error) {
	chain := c.api.Get().Content().ContentID(pageID).Child().Expand("page")
	result, _, err := execute[api.ChildContentServiceResponse](ctx, chain)
	if err != nil {
		return nil, err
	}
	if result.Page == nil {
		return []PageInfo{}, nil
	}

	pages := make([]PageInfo, 0, len(result.Page.Results))
	for _, child := range result.Page.Results {
		info := PageInfo{ID: child.ID, Title: child.Title}
		grandChildren, err := c.GetChildPages(ctx, child.ID)
		if err != nil {
			c.logger.Warn("failed to get children for page '%s': %v", child.Title, err)
		} else {
			info.Children = grandChildren
		}
		pages = append(pages, info)
	}
	return pages, nil
}

// GetPageAncestors returns the ancestors of pageID, root first.
func (c *Client) GetPageAncestors(ctx context.Context, pageID string) ([]PageInfo, error) {
	chain := c.api.Get().Content().ContentID(pageID).Expand("ancestors")
	page, _, err := execute[Page](ctx, chain)
	if err != nil {
		return nil, err
	}
	if page.Ancestors == nil {
		return []PageInfo{}, nil
	}
	return page.Ancestors, nil
}
