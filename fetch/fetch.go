// Package fetch downloads vintage snapshot files from the publisher. One
// numeric identifier maps to one prior release of the series; failures are
// skipped per identifier so a single bad vintage never aborts the batch.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/time/rate"
)

var ErrBadRange = errors.New("start vintage must not be below end vintage")

// Client downloads a descending range of vintage snapshots into a local
// directory, writing each as v<N>.csv.
type Client struct {
	// URLTemplate must contain one %d verb for the vintage identifier.
	URLTemplate string
	Dir         string
	HTTPClient  *http.Client
	// Spacing is the minimum interval between requests to the publisher.
	Spacing time.Duration
}

// New returns a Client with the given url template and target directory.
func New(urlTemplate, dir string, spacing time.Duration) *Client {
	return &Client{
		URLTemplate: urlTemplate,
		Dir:         dir,
		HTTPClient:  &http.Client{Timeout: 30 * time.Second},
		Spacing:     spacing,
	}
}

// Download fetches vintages start down to end inclusive. Each identifier
// that fails is logged at warning level and skipped. Returns the number of
// snapshots written. The spacing between requests is enforced even across
// failures.
func (c *Client) Download(ctx context.Context, start, end int) (int, error) {
	if start < end {
		return 0, ErrBadRange
	}
	if err := os.MkdirAll(c.Dir, 0o755); err != nil {
		return 0, fmt.Errorf("unable to create snapshot directory, %w", err)
	}

	limiter := rate.NewLimiter(rate.Every(c.Spacing), 1)
	var downloaded int
	for i := start; i >= end; i-- {
		if err := limiter.Wait(ctx); err != nil {
			return downloaded, err
		}
		if err := c.fetchOne(ctx, i); err != nil {
			slog.Warn("failed to download vintage", slog.Int("vintage", i), slog.String("error", err.Error()))
			continue
		}
		slog.Info("downloaded vintage", slog.Int("vintage", i))
		downloaded++
	}
	return downloaded, nil
}

func (c *Client) fetchOne(ctx context.Context, id int) error {
	url := fmt.Sprintf(c.URLTemplate, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	path := filepath.Join(c.Dir, fmt.Sprintf("v%d.csv", id))
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if _, err := io.Copy(file, resp.Body); err != nil {
		os.Remove(path)
		return err
	}
	return nil
}
