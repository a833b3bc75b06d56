// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "strings"

// Metadata holds the bibliographic record for one arXiv paper as returned
// by the arXiv query API. Downstream components treat it as read-only.
type Metadata struct {
	// ArxivID is the versioned arXiv identifier (e.g. "1706.03762").
	ArxivID string `json:"arxiv_id"`

	// Title is the paper title.
	Title string `json:"title"`

	// Authors lists the paper authors in source order. May be empty.
	Authors []string `json:"authors"`

	// Abstract is the paper abstract.
	Abstract string `json:"abstract"`

	// Published is the publication timestamp as reported by arXiv
	// (ISO-8601), possibly empty.
	Published string `json:"published"`

	// Categories lists arXiv category terms (e.g. "cs.CL").
	Categories []string `json:"categories"`
}

// AbsURL returns the canonical abstract page URL for an arXiv identifier.
func AbsURL(arxivID string) string {
	return "https://arxiv.org/abs/" + arxivID
}

// PDFURL returns the PDF download URL for an arXiv identifier.
func PDFURL(arxivID string) string {
	return "https://arxiv.org/pdf/" + arxivID + ".pdf"
}

// Paper is the resolved view of a paper: metadata joined with the local
// PDF location. This is the shape served to API clients.
type Paper struct {
	// ID is the arXiv identifier.
	ID string `json:"id"`

	// Title is the paper title.
	Title string `json:"title"`

	// Authors is the comma-joined author list.
	Authors string `json:"authors"`

	// Year is the four-digit publication year, empty when unknown.
	Year string `json:"year,omitempty"`

	// Abstract is the paper abstract.
	Abstract string `json:"abstract"`

	// URL is the abstract page URL.
	URL string `json:"url"`

	// Tags carries the arXiv categories.
	Tags []string `json:"tags"`

	// PDFPath is the local filesystem path to the cached PDF.
	PDFPath string `json:"pdf_path,omitempty"`

	// HasPDF reports whether a PDF is available locally.
	HasPDF bool `json:"has_pdf"`
}

// PaperFromMetadata builds the resolved view from a metadata record and a
// local PDF path. An empty pdfPath marks the paper as metadata-only.
func PaperFromMetadata(md Metadata, pdfPath string) Paper {
	var year string
	if len(md.Published) >= 4 {
		year = md.Published[:4]
	}
	return Paper{
		ID:       md.ArxivID,
		Title:    md.Title,
		Authors:  strings.Join(md.Authors, ", "),
		Year:     year,
		Abstract: md.Abstract,
		URL:      AbsURL(md.ArxivID),
		Tags:     md.Categories,
		PDFPath:  pdfPath,
		HasPDF:   pdfPath != "",
	}
}

// CacheInfo is a diagnostic snapshot of the cache state for one identifier.
type CacheInfo struct {
	// MetadataCached reports whether a metadata record exists on disk.
	MetadataCached bool `json:"metadata_cached"`

	// PDFCached reports whether a PDF exists on disk.
	PDFCached bool `json:"pdf_cached"`

	// PDFSize is the cached PDF size in bytes, 0 when absent.
	PDFSize int64 `json:"pdf_size"`

	// MetadataAgeHours is the age of the metadata record in hours,
	// 0 when absent or unreadable.
	MetadataAgeHours float64 `json:"metadata_age_hours"`
}
