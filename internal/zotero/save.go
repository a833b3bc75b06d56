// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package zotero

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/pdiddy/paperdock/pkg/types"
)

// ErrSaveIndeterminate reports that an item was submitted but its
// library-assigned key could not be confirmed afterwards. Callers should
// re-check later rather than resubmit blindly.
var ErrSaveIndeterminate = errors.New("zotero: item submitted but its key could not be confirmed")

// sessionPrefix namespaces the connector session tokens issued per save.
const sessionPrefix = "paperdock-"

// titleQueryLimit truncates duplicate-check queries; the Zotero search
// endpoint misbehaves on very long exact queries.
const titleQueryLimit = 60

// PaperSource provides cached paper metadata and PDFs.
type PaperSource interface {
	GetOrFetchMetadata(ctx context.Context, arxivID string) (*types.Metadata, error)
	GetOrFetchBinary(ctx context.Context, arxivID string) (string, error)
}

// Saver coordinates one save operation: connectivity check, duplicate
// check, record submission, attachment submission, and key resolution.
// Saves for different identifiers may run concurrently; two concurrent
// saves of the same identifier can race past the duplicate check and
// both submit. Callers wanting exclusivity serialize per identifier.
type Saver struct {
	client *Client
	papers PaperSource

	// resolveDelay is the grace period before resolving the assigned
	// key; Zotero indexes new items asynchronously and an immediate
	// search would not see them. Tests set this to zero.
	resolveDelay time.Duration
}

// NewSaver wires a saver to the connector client and the paper cache.
func NewSaver(client *Client, papers PaperSource, cfg types.ZoteroConfig) *Saver {
	delay := cfg.ResolveDelay
	if delay <= 0 {
		delay = 2 * time.Second
	}
	return &Saver{client: client, papers: papers, resolveDelay: delay}
}

// Ping reports whether the local Zotero instance is reachable.
func (s *Saver) Ping(ctx context.Context) error {
	return s.client.Ping(ctx)
}

// Save writes the paper identified by arxivID into Zotero, attaching its
// PDF when includePDF is set and the PDF can be obtained. Save is safe to
// call repeatedly for the same identifier: an already-saved paper is
// detected by the duplicate check and its existing key returned without a
// second write.
//
// Saving is a two-step sequence with no compensating action: when the
// attachment step fails after the record was created, the record stays.
// Re-running save then finds the duplicate and does not resubmit.
func (s *Saver) Save(ctx context.Context, arxivID string, includePDF bool) (string, error) {
	if err := s.client.Ping(ctx); err != nil {
		return "", err
	}

	md, err := s.papers.GetOrFetchMetadata(ctx, arxivID)
	if err != nil {
		return "", err
	}

	if key, err := s.FindSaved(ctx, arxivID, md.Title); err != nil {
		return "", err
	} else if key != "" {
		return key, nil
	}

	// A PDF failure must not block saving the record itself.
	var pdfPath string
	if includePDF {
		if p, err := s.papers.GetOrFetchBinary(ctx, arxivID); err == nil {
			pdfPath = p
		} else {
			fmt.Fprintf(os.Stderr, "warning: PDF unavailable for %s, saving without attachment: %v\n", arxivID, err)
		}
	}

	sessionID := sessionPrefix + arxivID
	itemKey := newItemKey()

	item := connectorItem{
		ItemType:     "preprint",
		ID:           itemKey,
		Title:        md.Title,
		Creators:     buildCreators(md.Authors),
		AbstractNote: md.Abstract,
		URL:          types.AbsURL(arxivID),
		Publisher:    "arXiv",
		ArchiveID:    "arXiv:" + arxivID,
		DOI:          "10.48550/arXiv." + arxivID,
		Extra:        "arXiv:" + arxivID,
		Date:         validDate(md.Published),
	}

	if err := s.client.SaveItem(ctx, item, sessionID); err != nil {
		return "", err
	}

	if pdfPath != "" {
		pdf, err := os.ReadFile(pdfPath)
		if err != nil {
			return "", fmt.Errorf("reading PDF %s: %w", pdfPath, err)
		}
		meta := attachmentMeta{
			ParentItemID: itemKey,
			URL:          types.PDFURL(arxivID),
			Title:        arxivID + ".pdf",
			SessionID:    sessionID,
		}
		if err := s.client.SaveAttachment(ctx, meta, pdf); err != nil {
			return "", err
		}
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-time.After(s.resolveDelay):
	}

	key, err := s.FindSaved(ctx, arxivID, md.Title)
	if err != nil {
		return "", err
	}
	if key == "" {
		return "", ErrSaveIndeterminate
	}
	return key, nil
}

// FindSaved looks the paper up in the library by a truncated title query,
// then matches candidates on the canonical identifier substring in their
// URL. It returns the assigned item key, or "" when the paper is not
// found. The match is heuristic, not transactional: a lagging search
// index can miss a just-saved item.
func (s *Saver) FindSaved(ctx context.Context, arxivID, title string) (string, error) {
	items, err := s.client.SearchItems(ctx, truncateRunes(title, titleQueryLimit), 10)
	if err != nil {
		return "", err
	}
	for _, it := range items {
		if strings.Contains(it.Data.URL, "arxiv.org/abs/"+arxivID) {
			return it.Key, nil
		}
	}
	return "", nil
}

const (
	keyLetters  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	keyAlphabet = keyLetters + "0123456789"
)

// newItemKey generates the 8-character local item ID the connector
// expects: first character alphabetic, the rest alphanumeric. It only
// correlates the record with its attachment inside one save operation;
// the durable key is assigned by Zotero.
func newItemKey() string {
	b := make([]byte, 8)
	b[0] = keyLetters[rand.IntN(len(keyLetters))]
	for i := 1; i < len(b); i++ {
		b[i] = keyAlphabet[rand.IntN(len(keyAlphabet))]
	}
	return string(b)
}

// buildCreators splits author strings into structured name parts: on the
// first space when present (first name(s), last name), otherwise a single
// organizational or mononym name.
func buildCreators(authors []string) []Creator {
	creators := make([]Creator, 0, len(authors))
	for _, author := range authors {
		author = strings.TrimSpace(author)
		if author == "" {
			continue
		}
		if first, last, ok := strings.Cut(author, " "); ok {
			creators = append(creators, Creator{CreatorType: "author", FirstName: first, LastName: last})
		} else {
			creators = append(creators, Creator{CreatorType: "author", Name: author})
		}
	}
	return creators
}

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// validDate accepts a strict YYYY-MM-DD prefix checked for calendar
// validity and returns it, or "" for anything else. The date is a
// best-effort field; invalid shapes are dropped, never fatal.
func validDate(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 10 {
		s = s[:10]
	}
	if !datePattern.MatchString(s) {
		return ""
	}
	if _, err := time.Parse("2006-01-02", s); err != nil {
		return ""
	}
	return s
}

// truncateRunes shortens s to at most n runes, keeping multi-byte titles
// valid UTF-8 in the search query.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
