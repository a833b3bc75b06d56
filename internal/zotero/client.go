// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package zotero writes papers into a locally running Zotero through its
// connector API and resolves assigned item keys through the local web API.
package zotero

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pdiddy/paperdock/pkg/types"
)

const (
	defaultBaseURL     = "http://127.0.0.1:23119"
	defaultTimeout     = 30 * time.Second
	defaultPingTimeout = 5 * time.Second
)

// ErrServiceUnavailable reports that the local Zotero instance is not
// reachable. There is no retry; the user has to start Zotero.
var ErrServiceUnavailable = errors.New("zotero: connector not available; start Zotero and enable the connector")

// SaveError reports that Zotero rejected a write. It carries the remote
// status and error body for diagnosis.
type SaveError struct {
	Op     string
	Status int
	Body   string
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("zotero: %s failed: HTTP %d: %s", e.Op, e.Status, e.Body)
}

// Client talks to the local Zotero instance. The connector endpoints
// handle writes; the web API endpoint handles item lookups.
type Client struct {
	baseURL     string
	userID      int
	apiKey      string
	http        *http.Client
	pingTimeout time.Duration
}

// NewClient builds a client from config, filling in the connector
// defaults for anything unset.
func NewClient(cfg types.ZoteroConfig) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	pingTimeout := cfg.PingTimeout
	if pingTimeout <= 0 {
		pingTimeout = defaultPingTimeout
	}
	return &Client{
		baseURL:     base,
		userID:      cfg.UserID,
		apiKey:      cfg.APIKey,
		http:        &http.Client{Timeout: timeout},
		pingTimeout: pingTimeout,
	}
}

// Ping probes the connector endpoint with a short timeout. Any failure
// maps to ErrServiceUnavailable.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.pingTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/connector/ping", nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: HTTP %d", ErrServiceUnavailable, resp.StatusCode)
	}
	return nil
}

// Item is one record returned by the Zotero web API.
type Item struct {
	Key  string   `json:"key"`
	Data ItemData `json:"data"`
}

// ItemData holds the fields of an item we inspect during duplicate checks.
type ItemData struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// SearchItems queries the local web API for top-level items matching q,
// newest first.
func (c *Client) SearchItems(ctx context.Context, q string, limit int) ([]Item, error) {
	params := url.Values{
		"format":    {"json"},
		"limit":     {strconv.Itoa(limit)},
		"sort":      {"dateAdded"},
		"direction": {"desc"},
	}
	if q != "" {
		params.Set("q", q)
	}
	u := fmt.Sprintf("%s/api/users/%d/items/top?%s", c.baseURL, c.userID, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Zotero-API-Key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("zotero search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("zotero search returned HTTP %d", resp.StatusCode)
	}

	var items []Item
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("parsing zotero search response: %w", err)
	}
	return items, nil
}

// Creator is one structured author name in a connector item payload.
type Creator struct {
	CreatorType string `json:"creatorType"`
	FirstName   string `json:"firstName,omitempty"`
	LastName    string `json:"lastName,omitempty"`
	Name        string `json:"name,omitempty"`
}

// connectorItem is the record payload for /connector/saveItems.
type connectorItem struct {
	ItemType     string    `json:"itemType"`
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Creators     []Creator `json:"creators"`
	AbstractNote string    `json:"abstractNote"`
	URL          string    `json:"url"`
	Publisher    string    `json:"publisher"`
	ArchiveID    string    `json:"archiveID"`
	DOI          string    `json:"DOI"`
	Extra        string    `json:"extra"`
	Date         string    `json:"date,omitempty"`
}

// SaveItem submits one record through the connector under the given
// session token. The connector answers 201 on success; anything else is a
// *SaveError carrying the remote error body.
func (c *Client) SaveItem(ctx context.Context, item connectorItem, sessionID string) error {
	payload := map[string]any{
		"items":     []connectorItem{item},
		"sessionID": sessionID,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding saveItems payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/connector/saveItems", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("zotero saveItems: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		errBody, _ := io.ReadAll(resp.Body)
		return &SaveError{Op: "saveItems", Status: resp.StatusCode, Body: string(errBody)}
	}
	io.Copy(io.Discard, resp.Body)
	return nil
}

// attachmentMeta is the JSON-in-header correlation object naming the
// parent record, display title, and session token for an attachment.
type attachmentMeta struct {
	ParentItemID string `json:"parentItemID"`
	URL          string `json:"url"`
	Title        string `json:"title"`
	SessionID    string `json:"sessionID"`
}

// SaveAttachment posts a PDF body with its correlation metadata in the
// X-Metadata header.
func (c *Client) SaveAttachment(ctx context.Context, meta attachmentMeta, pdf []byte) error {
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("encoding attachment metadata: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/connector/saveAttachment", bytes.NewReader(pdf))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/pdf")
	req.Header.Set("X-Metadata", string(metaJSON))

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("zotero saveAttachment: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		errBody, _ := io.ReadAll(resp.Body)
		return &SaveError{Op: "saveAttachment", Status: resp.StatusCode, Body: string(errBody)}
	}
	io.Copy(io.Discard, resp.Body)
	return nil
}
