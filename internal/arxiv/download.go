// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package arxiv

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/pdiddy/paperdock/internal/httputil"
)

// DownloadPDF streams the PDF for arxivID to destPath. The body is copied
// in bounded chunks so multi-megabyte papers are never buffered whole in
// memory. The download goes to a temp file in the destination directory
// and is renamed over destPath only on success, so a partial transfer
// never shows up at the final path. Non-2xx responses become a
// *TransportError.
func (c *Client) DownloadPDF(ctx context.Context, arxivID, destPath string) error {
	url := PDFBase + arxivID + ".pdf"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Accept", "application/pdf")

	resp, err := httputil.DoWithRetry(ctx, c.http, req, 0)
	if err != nil {
		return &TransportError{Op: "download " + arxivID, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &TransportError{Op: "download " + arxivID, Err: fmt.Errorf("HTTP %d", resp.StatusCode)}
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".download-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, copyErr := io.Copy(tmpFile, resp.Body)
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing download: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
