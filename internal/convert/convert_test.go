// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paperdock/pkg/types"
)

// countingConverter returns fixed output and counts invocations.
type countingConverter struct {
	calls  atomic.Int32
	output string
}

func (c *countingConverter) Convert(_ string) (string, error) {
	c.calls.Add(1)
	return c.output, nil
}

func newTestService(t *testing.T, conv Converter) *Service {
	t.Helper()
	store, err := OpenTextStore(filepath.Join(t.TempDir(), "conversions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return NewService(conv, store, 2)
}

func writeTempPDF(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestMarkdownConvertsAndCaches(t *testing.T) {
	conv := &countingConverter{output: "# Converted\n\nBody text."}
	svc := newTestService(t, conv)
	ctx := context.Background()

	paper := types.Paper{ID: "1706.03762", Title: "Attention Is All You Need", PDFPath: writeTempPDF(t, "a.pdf", "identical bytes")}

	text, err := svc.Markdown(ctx, paper)
	require.NoError(t, err)
	assert.Equal(t, int32(1), conv.calls.Load())

	// Frontmatter carries the paper identity.
	assert.True(t, strings.HasPrefix(text, "---\n"))
	assert.Contains(t, text, `paper_id: "1706.03762"`)
	assert.Contains(t, text, "# Converted")

	// Second request for the same file hits the cache.
	again, err := svc.Markdown(ctx, paper)
	require.NoError(t, err)
	assert.Equal(t, int32(1), conv.calls.Load())
	assert.Equal(t, text, again)
}

func TestMarkdownCacheKeyedByContentNotPath(t *testing.T) {
	conv := &countingConverter{output: "converted"}
	svc := newTestService(t, conv)
	ctx := context.Background()

	// Same bytes at two different paths: one conversion.
	p1 := types.Paper{ID: "x", PDFPath: writeTempPDF(t, "one.pdf", "identical bytes")}
	p2 := types.Paper{ID: "x", PDFPath: writeTempPDF(t, "two.pdf", "identical bytes")}

	_, err := svc.Markdown(ctx, p1)
	require.NoError(t, err)
	_, err = svc.Markdown(ctx, p2)
	require.NoError(t, err)
	assert.Equal(t, int32(1), conv.calls.Load())

	// Different bytes convert again.
	p3 := types.Paper{ID: "y", PDFPath: writeTempPDF(t, "three.pdf", "different bytes")}
	_, err = svc.Markdown(ctx, p3)
	require.NoError(t, err)
	assert.Equal(t, int32(2), conv.calls.Load())
}

func TestMarkdownMissingFile(t *testing.T) {
	svc := newTestService(t, &countingConverter{output: "x"})
	_, err := svc.Markdown(context.Background(), types.Paper{ID: "z", PDFPath: "/nonexistent/file.pdf"})
	assert.Error(t, err)
}

func TestTextStoreRoundTrip(t *testing.T) {
	store, err := OpenTextStore(filepath.Join(t.TempDir(), "sub", "conversions.db"))
	require.NoError(t, err)
	defer store.Close()

	_, ok, err := store.Get("deadbeef")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Put("deadbeef", "markdown body"))
	text, ok, err := store.Get("deadbeef")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "markdown body", text)

	// Replacing an entry is allowed.
	require.NoError(t, store.Put("deadbeef", "updated"))
	text, _, err = store.Get("deadbeef")
	require.NoError(t, err)
	assert.Equal(t, "updated", text)
}
