package teamsnap

import (
	"context"
	"fmt"
	"log/slog"

	"snapsync/internal/hypermedia"
)

// DefaultAPIRoot is the discovery document of the TeamSnap v3 API.
const DefaultAPIRoot = "https://api.teamsnap.com/v3"

// AmbiguousResultError is returned when a lookup expected exactly one result.
// Count is zero when nothing matched.
type AmbiguousResultError struct {
	Resource string
	Count    int
}

func (e *AmbiguousResultError) Error() string {
	if e.Count == 0 {
		return fmt.Sprintf("no %s found", e.Resource)
	}
	return fmt.Sprintf("expected exactly one %s, got %d", e.Resource, e.Count)
}

// Client wraps a hypermedia client with TeamSnap-specific lookups.
type Client struct {
	hm      *hypermedia.Client
	apiRoot string
	logger  *slog.Logger
	root    *hypermedia.Collection
}

// NewClient creates a TeamSnap client rooted at apiRoot (DefaultAPIRoot if empty).
func NewClient(hm *hypermedia.Client, apiRoot string, logger *slog.Logger) *Client {
	if apiRoot == "" {
		apiRoot = DefaultAPIRoot
	}
	return &Client{hm: hm, apiRoot: apiRoot, logger: logger}
}

// link resolves a relation advertised by the API root.
func (c *Client) link(ctx context.Context, rel string) (string, error) {
	if c.root == nil {
		root, err := c.hm.Fetch(ctx, c.apiRoot, nil)
		if err != nil {
			return "", fmt.Errorf("failed to fetch api root: %w", err)
		}
		c.root = root
		c.logger.Debug("Retrieved TeamSnap links", "count", len(root.Links))
	}
	return c.root.Link(rel)
}

// single returns the only item of coll, or an AmbiguousResultError.
func single(coll *hypermedia.Collection, resource string) (hypermedia.Item, error) {
	if len(coll.Items) != 1 {
		return hypermedia.Item{}, &AmbiguousResultError{Resource: resource, Count: len(coll.Items)}
	}
	return coll.Items[0], nil
}
