package access

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const catalogRequestTimeout = 10 * time.Second

// Catalog answers access checks by querying the resource catalog HTTP API:
// a 200 means accessible, a 404 or 403 means not, anything else is a failed
// check. The catalog owns its own request timeout.
type Catalog struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// NewCatalog creates a catalog client for the given base URL.
func NewCatalog(baseURL string, logger *slog.Logger) *Catalog {
	return &Catalog{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: catalogRequestTimeout},
		logger:  logger,
	}
}

// Checkers returns the image, board, and model checkers backed by this
// catalog.
func (c *Catalog) Checkers() Checkers {
	return Checkers{
		Images: CheckerFunc(c.checkImage),
		Boards: CheckerFunc(c.checkBoard),
		Models: CheckerFunc(c.checkModel),
	}
}

func (c *Catalog) checkImage(ctx context.Context, name string) (bool, error) {
	return c.exists(ctx, "/api/v1/images/i/"+url.PathEscape(name))
}

func (c *Catalog) checkBoard(ctx context.Context, id string) (bool, error) {
	return c.exists(ctx, "/api/v1/boards/"+url.PathEscape(id))
}

func (c *Catalog) checkModel(ctx context.Context, key string) (bool, error) {
	return c.exists(ctx, "/api/v2/models/i/"+url.PathEscape(key))
}

func (c *Catalog) exists(ctx context.Context, path string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return false, fmt.Errorf("build catalog request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("query resource catalog: %w", err)
	}

	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		_ = resp.Body.Close()
	}()

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound, http.StatusForbidden:
		return false, nil
	default:
		c.logger.Warn("unexpected resource catalog response",
			"path", path,
			"status", resp.StatusCode)

		return false, fmt.Errorf("resource catalog returned %s", resp.Status)
	}
}
