// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert turns cached PDFs into Markdown text. Conversion is
// CPU-bound and runs under a bounded semaphore so concurrent API requests
// cannot saturate the process; results are cached by a hash of the input
// file's content, so identical bytes are converted at most once no matter
// where the file lives.
package convert

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"time"

	"go.yaml.in/yaml/v3"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"

	"github.com/pdiddy/paperdock/pkg/types"
)

const defaultWorkers = 4

// Converter transforms a PDF file into Markdown text. Backends
// (markitdown, pdftotext) implement this interface.
type Converter interface {
	// Convert reads a PDF at pdfPath and returns the Markdown content.
	Convert(pdfPath string) (string, error)
}

// Service runs conversions through a backend with caching and a bounded
// worker pool.
type Service struct {
	conv  Converter
	store *TextStore
	sem   *semaphore.Weighted
	group singleflight.Group
}

// NewService wires a conversion service. workers bounds concurrent
// backend invocations; 0 means the default (4).
func NewService(conv Converter, store *TextStore, workers int) *Service {
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &Service{
		conv:  conv,
		store: store,
		sem:   semaphore.NewWeighted(int64(workers)),
	}
}

// Markdown returns the Markdown text for the paper's PDF. The result is
// cached keyed by the SHA-256 of the file content; concurrent requests
// for the same content share one conversion.
func (s *Service) Markdown(ctx context.Context, paper types.Paper) (string, error) {
	sum, err := fileHash(paper.PDFPath)
	if err != nil {
		return "", fmt.Errorf("hashing %s: %w", paper.PDFPath, err)
	}

	v, err, _ := s.group.Do(sum, func() (any, error) {
		if text, ok, err := s.store.Get(sum); err != nil {
			return nil, err
		} else if ok {
			return text, nil
		}

		if err := s.sem.Acquire(ctx, 1); err != nil {
			return nil, err
		}
		defer s.sem.Release(1)

		raw, err := s.conv.Convert(paper.PDFPath)
		if err != nil {
			return nil, fmt.Errorf("converting %s: %w", paper.PDFPath, err)
		}

		text := withFrontmatter(paper, raw)
		if err := s.store.Put(sum, text); err != nil {
			fmt.Fprintf(os.Stderr, "warning: caching conversion for %s: %v\n", paper.ID, err)
		}
		return text, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// fileHash computes the SHA-256 of a file's content, streaming.
func fileHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// frontmatter is the YAML header prepended to converted Markdown.
type frontmatter struct {
	PaperID     string `yaml:"paper_id"`
	Title       string `yaml:"title,omitempty"`
	SourcePDF   string `yaml:"source_pdf"`
	ConvertedAt string `yaml:"converted_at"`
}

func withFrontmatter(paper types.Paper, body string) string {
	fm := frontmatter{
		PaperID:     paper.ID,
		Title:       paper.Title,
		SourcePDF:   paper.PDFPath,
		ConvertedAt: time.Now().UTC().Format(time.RFC3339),
	}
	data, err := yaml.Marshal(fm)
	if err != nil {
		return body
	}
	return "---\n" + string(data) + "---\n\n" + body
}
