// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"sync"

	"github.com/pdiddy/paperdock/internal/container"
	"github.com/pdiddy/paperdock/pkg/types"
)

const imageMarkitdown = "markitdown:latest"

// NewConverter builds the configured backend.
func NewConverter(cfg types.ConversionConfig) (Converter, error) {
	switch cfg.Backend {
	case types.BackendMarkitdown, "":
		rt, err := container.DetectRuntime()
		if err != nil {
			return nil, err
		}
		return NewMarkitdownConverter(rt)
	case types.BackendPdftotext:
		return NewPdftotextConverter()
	default:
		return nil, fmt.Errorf("unknown conversion backend %q", cfg.Backend)
	}
}

// MarkitdownConverter pipes PDFs through the markitdown container image
// using an injected container runtime (docker or podman).
type MarkitdownConverter struct {
	runtime container.Runtime
}

// NewMarkitdownConverter verifies the markitdown image exists locally and
// returns a converter bound to the runtime.
func NewMarkitdownConverter(rt container.Runtime) (*MarkitdownConverter, error) {
	if err := rt.ImageExists(imageMarkitdown); err != nil {
		return nil, fmt.Errorf("markitdown image not available in %s: %w", rt.Name(), err)
	}
	return &MarkitdownConverter{runtime: rt}, nil
}

// Convert streams the PDF through the container and returns the Markdown.
func (m *MarkitdownConverter) Convert(pdfPath string) (string, error) {
	f, err := os.Open(pdfPath)
	if err != nil {
		return "", fmt.Errorf("opening PDF %s: %w", pdfPath, err)
	}
	defer f.Close()

	var out bytes.Buffer
	if err := m.runtime.Run(imageMarkitdown, f, &out); err != nil {
		return "", fmt.Errorf("converting %s with markitdown: %w", pdfPath, err)
	}
	if out.Len() == 0 {
		return "", fmt.Errorf("markitdown produced empty output for %s", pdfPath)
	}
	return out.String(), nil
}

// PdftotextConverter shells out to poppler's pdftotext.
type PdftotextConverter struct {
	bin string
}

// NewPdftotextConverter locates the pdftotext binary on PATH.
func NewPdftotextConverter() (*PdftotextConverter, error) {
	bin, err := exec.LookPath("pdftotext")
	if err != nil {
		return nil, fmt.Errorf("pdftotext not found on PATH: %w", err)
	}
	return &PdftotextConverter{bin: bin}, nil
}

// Convert runs pdftotext with layout preserved, writing to stdout.
func (p *PdftotextConverter) Convert(pdfPath string) (string, error) {
	var out bytes.Buffer
	cmd := exec.Command(p.bin, "-layout", pdfPath, "-")
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("converting %s with pdftotext: %w", pdfPath, err)
	}
	if out.Len() == 0 {
		return "", fmt.Errorf("pdftotext produced empty output for %s", pdfPath)
	}
	return out.String(), nil
}

// Lazy defers backend construction until the first conversion, so the
// API server can start without a container runtime or pdftotext present.
type Lazy struct {
	cfg  types.ConversionConfig
	once sync.Once
	conv Converter
	err  error
}

// NewLazy wraps NewConverter for deferred initialization.
func NewLazy(cfg types.ConversionConfig) *Lazy {
	return &Lazy{cfg: cfg}
}

// Convert initializes the backend on first use, then delegates.
func (l *Lazy) Convert(pdfPath string) (string, error) {
	l.once.Do(func() {
		l.conv, l.err = NewConverter(l.cfg)
	})
	if l.err != nil {
		return "", l.err
	}
	return l.conv.Convert(pdfPath)
}
