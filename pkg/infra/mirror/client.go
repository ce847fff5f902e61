package mirror

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/cvd-tools/cvdget/pkg/domain/interfaces"
)

const defaultTimeout = 30 * time.Second

// Client downloads database files from HTTP mirrors. It satisfies
// interfaces.Transport.
type Client struct {
	httpClient *http.Client
}

type Option func(*Client)

// WithTimeout overrides the per-request timeout (default 30s)
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// New creates a mirror client
func New(opts ...Option) *Client {
	client := &Client{
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Fetch issues a GET request for url, presenting itself with the given
// User-Agent identity. The caller must close the returned body. A 403
// response maps to interfaces.ErrBlocked and a 404 to
// interfaces.ErrNotFound so callers can tell refusal from absence.
func (c *Client) Fetch(ctx context.Context, url, identity string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create request", goerr.V("url", url))
	}
	req.Header.Set("User-Agent", identity)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "request failed", goerr.V("url", url))
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		switch resp.StatusCode {
		case http.StatusForbidden:
			return nil, goerr.Wrap(interfaces.ErrBlocked, "mirror rejected request", goerr.V("url", url), goerr.V("status", resp.StatusCode))
		case http.StatusNotFound:
			return nil, goerr.Wrap(interfaces.ErrNotFound, "mirror has no such file", goerr.V("url", url))
		default:
			return nil, goerr.New("unexpected response status", goerr.V("url", url), goerr.V("status", resp.StatusCode))
		}
	}

	return resp.Body, nil
}
