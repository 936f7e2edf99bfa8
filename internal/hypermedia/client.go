package hypermedia

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// searchSuffix is appended to a resource href when query parameters are sent.
const searchSuffix = "/search"

// HTTPError is returned for any response other than 200 OK.
type HTTPError struct {
	StatusCode int
	URI        string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.URI, e.StatusCode)
}

// Client fetches Collection+JSON documents. Authentication is the concern of
// the underlying http.Client.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient wraps an existing HTTP client.
func NewClient(httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{httpClient: httpClient, logger: logger}
}

// NewBearerClient returns a client that sends "Authorization: Bearer <token>"
// on every request. A zero timeout means no per-call limit.
func NewBearerClient(ctx context.Context, accessToken string, timeout time.Duration, logger *slog.Logger) *Client {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"})
	httpClient := oauth2.NewClient(ctx, ts)
	httpClient.Timeout = timeout
	return NewClient(httpClient, logger)
}

// Fetch issues a GET for uri. When params is non-empty the search sub-path is
// used and params become the query string.
func (c *Client) Fetch(ctx context.Context, uri string, params url.Values) (*Collection, error) {
	target := uri
	if len(params) > 0 {
		target = strings.TrimSuffix(uri, "/") + searchSuffix + "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.collection+json, application/json")

	c.logger.Debug("Fetching collection", "uri", target)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &HTTPError{StatusCode: resp.StatusCode, URI: target}
	}

	var doc document
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode collection from %s: %w", target, err)
	}
	return &doc.Collection, nil
}

// Resolve fetches the root document and returns the href of its link named rel.
func (c *Client) Resolve(ctx context.Context, rootURI, rel string) (string, error) {
	root, err := c.Fetch(ctx, rootURI, nil)
	if err != nil {
		return "", err
	}
	return root.Link(rel)
}
