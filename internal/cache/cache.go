// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cache implements the on-disk paper cache that mediates between
// the rate-limited arXiv API and local consumers. It stores two payload
// kinds per identifier: a JSON metadata record under metadata/ and the
// PDF under pdf/. Metadata expires after a TTL because arXiv can correct
// records upstream; a PDF at a versioned identifier is immutable, so it
// is only ever re-validated for corruption (zero size), never for age.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/pdiddy/paperdock/pkg/types"
)

const (
	metadataDir = "metadata"
	pdfDir      = "pdf"

	defaultMetadataTTL = 24 * time.Hour
)

// Fetcher retrieves a paper's metadata from the remote source.
type Fetcher interface {
	FetchMetadata(ctx context.Context, arxivID string) (*types.Metadata, error)
}

// Downloader streams a paper's PDF from the remote source to a local path.
type Downloader interface {
	DownloadPDF(ctx context.Context, arxivID, destPath string) error
}

// Store is the disk-backed cache. It exclusively owns the files under its
// two cache directories.
type Store struct {
	metaDir    string
	pdfDir     string
	fetcher    Fetcher
	downloader Downloader
	ttl        time.Duration

	// now is replaced in tests to control freshness checks.
	now func() time.Time
}

// NewStore creates the cache directories and returns a store wired to the
// given fetcher and downloader.
func NewStore(cfg types.CacheConfig, f Fetcher, d Downloader) (*Store, error) {
	ttl := cfg.MetadataTTL
	if ttl <= 0 {
		ttl = defaultMetadataTTL
	}

	s := &Store{
		metaDir:    filepath.Join(cfg.Dir, metadataDir),
		pdfDir:     filepath.Join(cfg.Dir, pdfDir),
		fetcher:    f,
		downloader: d,
		ttl:        ttl,
		now:        time.Now,
	}

	for _, dir := range []string{s.metaDir, s.pdfDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating cache directory %s: %w", dir, err)
		}
	}
	return s, nil
}

// metadataEnvelope is the on-disk metadata format: the record's fields
// plus the write timestamp, which is stripped on read.
type metadataEnvelope struct {
	types.Metadata
	CachedAt time.Time `json:"_cached_at"`
}

func (s *Store) metadataPath(arxivID string) string {
	return filepath.Join(s.metaDir, arxivID+".json")
}

func (s *Store) pdfPath(arxivID string) string {
	return filepath.Join(s.pdfDir, arxivID+".pdf")
}

// GetOrFetchMetadata returns the cached metadata record when it is younger
// than the TTL, fetching and re-caching otherwise. An unreadable or
// unparsable cached copy counts as a miss, not an error. Fetch failures
// (including not-found) propagate and leave nothing cached.
func (s *Store) GetOrFetchMetadata(ctx context.Context, arxivID string) (*types.Metadata, error) {
	path := s.metadataPath(arxivID)

	if data, err := os.ReadFile(path); err == nil {
		var env metadataEnvelope
		if err := json.Unmarshal(data, &env); err == nil && s.now().Sub(env.CachedAt) < s.ttl {
			md := env.Metadata
			return &md, nil
		}
	}

	md, err := s.fetcher.FetchMetadata(ctx, arxivID)
	if err != nil {
		return nil, err
	}

	env := metadataEnvelope{Metadata: *md, CachedAt: s.now()}
	if data, err := json.MarshalIndent(env, "", "  "); err == nil {
		if werr := os.WriteFile(path, data, 0o644); werr != nil {
			fmt.Fprintf(os.Stderr, "warning: caching metadata for %s: %v\n", arxivID, werr)
		}
	}
	return md, nil
}

// GetOrFetchBinary returns the path of the cached PDF, downloading it
// first when absent. A zero-byte cached file is a corrupted partial write:
// it is deleted and the PDF re-downloaded. Non-empty cached PDFs are
// served without any age check.
func (s *Store) GetOrFetchBinary(ctx context.Context, arxivID string) (string, error) {
	path := s.pdfPath(arxivID)

	if fi, err := os.Stat(path); err == nil {
		if fi.Size() > 0 {
			return path, nil
		}
		if err := os.Remove(path); err != nil {
			return "", fmt.Errorf("removing corrupted cache file %s: %w", path, err)
		}
	}

	if err := s.downloader.DownloadPDF(ctx, arxivID, path); err != nil {
		return "", err
	}
	return path, nil
}

// Info reports the cache state for one identifier without side effects.
func (s *Store) Info(arxivID string) types.CacheInfo {
	var info types.CacheInfo

	if fi, err := os.Stat(s.pdfPath(arxivID)); err == nil {
		info.PDFCached = true
		info.PDFSize = fi.Size()
	}

	data, err := os.ReadFile(s.metadataPath(arxivID))
	if err != nil {
		return info
	}
	info.MetadataCached = true

	var env metadataEnvelope
	if err := json.Unmarshal(data, &env); err == nil && !env.CachedAt.IsZero() {
		info.MetadataAgeHours = s.now().Sub(env.CachedAt).Hours()
	}
	return info
}

// Evict deletes both cache files for an identifier. Missing files are not
// an error; eviction is idempotent.
func (s *Store) Evict(arxivID string) error {
	var errs []error
	for _, path := range []string{s.metadataPath(arxivID), s.pdfPath(arxivID)} {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
