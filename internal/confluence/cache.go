package confluence

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

const attachmentCacheSize = 128

// attachmentCache holds the last attachment listing of each page.
type attachmentCache struct {
	cache *lru.Cache[string, []Attachment]
}

func newAttachmentCache(maxItems int) (*attachmentCache, error) {
	c, err := lru.New[string, []Attachment](maxItems)
	if err != nil {
		return nil, err
	}
	return &attachmentCache{cache: c}, nil
}

func (c *attachmentCache) get(pageID string) ([]Attachment, bool) {
	return c.cache.Get(pageID)
}

func (c *attachmentCache) put(pageID string, attachments []Attachment) {
	c.cache.Add(pageID, attachments)
}

func (c *attachmentCache) forget(pageID string) {
	c.cache.Remove(pageID)
}
