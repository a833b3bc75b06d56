// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package arxiv fetches paper metadata and PDFs from arXiv.
package arxiv

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/pdiddy/paperdock/internal/httputil"
	"github.com/pdiddy/paperdock/pkg/types"
)

// Endpoint bases. Declared as vars so tests can substitute httptest servers.
var (
	APIBase = "https://export.arxiv.org/api/query"
	PDFBase = "https://arxiv.org/pdf/"
)

// ErrNotFound reports that arXiv has no record for the identifier.
var ErrNotFound = errors.New("arxiv: paper not found")

// TransportError wraps a network or HTTP failure talking to arXiv. The
// cache layer never swallows it; a failed fetch must not look like a
// cacheable result.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("arxiv: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Client issues requests against the arXiv API.
type Client struct {
	http *http.Client
	cfg  types.ArxivConfig
}

// NewClient builds a client with the configured timeout and user agent.
func NewClient(cfg types.ArxivConfig) *Client {
	if cfg.UserAgent == "" {
		cfg.UserAgent = "paperdock/0.1"
	}
	return &Client{
		http: &http.Client{Timeout: cfg.Timeout},
		cfg:  cfg,
	}
}

// Atom feed structures for the arXiv query API. Only the first entry of a
// response is consumed.
type atomFeed struct {
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	Title      string         `xml:"title"`
	Summary    string         `xml:"summary"`
	Published  string         `xml:"published"`
	Authors    []atomAuthor   `xml:"author"`
	Categories []atomCategory `xml:"category"`
}

type atomAuthor struct {
	Name string `xml:"name"`
}

type atomCategory struct {
	Term string `xml:"term,attr"`
}

// FetchMetadata queries the arXiv API for one identifier and parses the
// first entry of the Atom response. It returns ErrNotFound when the feed
// has no entries and a *TransportError on network or HTTP failure.
func (c *Client) FetchMetadata(ctx context.Context, arxivID string) (*types.Metadata, error) {
	url := fmt.Sprintf("%s?id_list=%s", APIBase, arxivID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, c.http, req, 0)
	if err != nil {
		return nil, &TransportError{Op: "query " + arxivID, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &TransportError{Op: "query " + arxivID, Err: fmt.Errorf("HTTP %d", resp.StatusCode)}
	}

	var feed atomFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("parsing arXiv response: %w", err)
	}

	if len(feed.Entries) == 0 {
		return nil, ErrNotFound
	}

	entry := feed.Entries[0]
	md := &types.Metadata{
		ArxivID:   arxivID,
		Title:     strings.TrimSpace(entry.Title),
		Abstract:  strings.TrimSpace(entry.Summary),
		Published: strings.TrimSpace(entry.Published),
	}
	for _, a := range entry.Authors {
		md.Authors = append(md.Authors, strings.TrimSpace(a.Name))
	}
	for _, cat := range entry.Categories {
		if cat.Term != "" {
			md.Categories = append(md.Categories, cat.Term)
		}
	}
	return md, nil
}
