// Package cdc downloads the CDC/ATSDR SVI county table over HTTP. It is an
// alternative to reading the table from a local file, enabled by setting
// SVI_DATASET_URL.
package cdc

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/elder-vulnerability-index/internal/adapter/dataset"
	"github.com/couchcryptid/elder-vulnerability-index/internal/domain"
)

// Client fetches the SVI CSV export from a configured URL.
type Client struct {
	url        string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates an SVI download client.
func NewClient(url string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// LoadSVI downloads and decodes the SVI county table.
func (c *Client) LoadSVI(ctx context.Context) ([]domain.SVIRow, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "text/csv")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch svi table: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("svi source error: status %d: %s", resp.StatusCode, body)
	}

	rows, err := dataset.ReadSVI(resp.Body)
	if err != nil {
		return nil, err
	}

	c.logger.Info("svi table downloaded",
		"url", c.url,
		"rows", len(rows),
		"duration", time.Since(start),
	)
	return rows, nil
}
