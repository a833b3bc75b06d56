// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package arxiv

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/paperdock/internal/httputil"
	"github.com/pdiddy/paperdock/pkg/types"
)

func init() {
	httputil.RetryBaseDelay = 1 * time.Millisecond
}

const sampleFeedXML = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <id>http://arxiv.org/abs/1706.03762v7</id>
    <title>Attention Is All You Need</title>
    <summary>
      The dominant sequence transduction models are based on complex
      recurrent or convolutional neural networks.
    </summary>
    <published>2017-06-12T17:57:34Z</published>
    <author><name>Ashish Vaswani</name></author>
    <author><name>Noam Shazeer</name></author>
    <category term="cs.CL" scheme="http://arxiv.org/schemas/atom"/>
    <category term="cs.LG" scheme="http://arxiv.org/schemas/atom"/>
  </entry>
</feed>`

const emptyFeedXML = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <opensearch:totalResults xmlns:opensearch="http://a9.com/-/spec/opensearch/1.1/">0</opensearch:totalResults>
</feed>`

func testClient() *Client {
	return NewClient(types.ArxivConfig{
		HTTPConfig: types.HTTPConfig{Timeout: 5 * time.Second, UserAgent: "test/0.1"},
	})
}

func TestFetchMetadata(t *testing.T) {
	var gotQuery string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(sampleFeedXML))
	}))
	defer ts.Close()

	orig := APIBase
	APIBase = ts.URL
	defer func() { APIBase = orig }()

	md, err := testClient().FetchMetadata(context.Background(), "1706.03762")
	if err != nil {
		t.Fatalf("FetchMetadata: %v", err)
	}

	if gotQuery != "id_list=1706.03762" {
		t.Errorf("query = %q, want id_list=1706.03762", gotQuery)
	}
	if md.ArxivID != "1706.03762" {
		t.Errorf("ArxivID = %q", md.ArxivID)
	}
	if md.Title != "Attention Is All You Need" {
		t.Errorf("Title = %q", md.Title)
	}
	if !strings.HasPrefix(md.Abstract, "The dominant sequence") {
		t.Errorf("Abstract not trimmed: %q", md.Abstract)
	}
	if len(md.Authors) != 2 || md.Authors[0] != "Ashish Vaswani" || md.Authors[1] != "Noam Shazeer" {
		t.Errorf("Authors = %v", md.Authors)
	}
	if md.Published != "2017-06-12T17:57:34Z" {
		t.Errorf("Published = %q", md.Published)
	}
	if len(md.Categories) != 2 || md.Categories[0] != "cs.CL" || md.Categories[1] != "cs.LG" {
		t.Errorf("Categories = %v", md.Categories)
	}
}

func TestFetchMetadataNotFound(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(emptyFeedXML))
	}))
	defer ts.Close()

	orig := APIBase
	APIBase = ts.URL
	defer func() { APIBase = orig }()

	_, err := testClient().FetchMetadata(context.Background(), "0000.00000")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestFetchMetadataHTTPError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	orig := APIBase
	APIBase = ts.URL
	defer func() { APIBase = orig }()

	_, err := testClient().FetchMetadata(context.Background(), "1706.03762")
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("err = %v, want *TransportError", err)
	}
}

func TestDownloadPDF(t *testing.T) {
	body := strings.Repeat("pdf-bytes-", 1000)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/1706.03762.pdf") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(body))
	}))
	defer ts.Close()

	orig := PDFBase
	PDFBase = ts.URL + "/"
	defer func() { PDFBase = orig }()

	dest := filepath.Join(t.TempDir(), "1706.03762.pdf")
	if err := testClient().DownloadPDF(context.Background(), "1706.03762", dest); err != nil {
		t.Fatalf("DownloadPDF: %v", err)
	}

	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("reading download: %v", err)
	}
	if string(data) != body {
		t.Errorf("downloaded %d bytes, want %d", len(data), len(body))
	}
}

func TestDownloadPDFHTTPError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	orig := PDFBase
	PDFBase = ts.URL + "/"
	defer func() { PDFBase = orig }()

	dir := t.TempDir()
	dest := filepath.Join(dir, "9999.99999.pdf")
	err := testClient().DownloadPDF(context.Background(), "9999.99999", dest)
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("err = %v, want *TransportError", err)
	}

	// No file, partial or otherwise, should exist at the destination.
	if _, statErr := os.Stat(dest); !os.IsNotExist(statErr) {
		t.Errorf("destination file exists after failed download")
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("leftover temp files: %v", entries)
	}
}
