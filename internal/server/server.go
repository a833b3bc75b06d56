// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the HTTP API the frontend consumes: paper
// resolution, cache inspection, text conversion, and save-to-Zotero.
package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pdiddy/paperdock/internal/arxiv"
	"github.com/pdiddy/paperdock/internal/zotero"
	"github.com/pdiddy/paperdock/pkg/types"
)

// PaperStore is the cache surface the handlers consume.
type PaperStore interface {
	GetOrFetchMetadata(ctx context.Context, arxivID string) (*types.Metadata, error)
	GetOrFetchBinary(ctx context.Context, arxivID string) (string, error)
	Info(arxivID string) types.CacheInfo
	Evict(arxivID string) error
}

// TextProvider converts a paper's PDF to Markdown.
type TextProvider interface {
	Markdown(ctx context.Context, paper types.Paper) (string, error)
}

// Library is the save-side surface of the reference library.
type Library interface {
	Ping(ctx context.Context) error
	Save(ctx context.Context, arxivID string, includePDF bool) (string, error)
	FindSaved(ctx context.Context, arxivID, title string) (string, error)
}

// Server wires the HTTP routes to the application components. All
// components are injected; the server owns none of their lifecycles.
type Server struct {
	store   PaperStore
	text    TextProvider
	library Library
	cfg     types.ServerConfig
}

// New builds a server from its collaborators.
func New(store PaperStore, text TextProvider, library Library, cfg types.ServerConfig) *Server {
	return &Server{store: store, text: text, library: library, cfg: cfg}
}

// Router assembles the gin engine with middleware and routes.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), requestID(), cors(s.cfg.AllowedOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")
	api.GET("/arxiv/:id", s.getPaper)
	api.GET("/arxiv/:id/pdf", s.getPDF)
	api.GET("/arxiv/:id/markdown", s.getMarkdown)
	api.GET("/arxiv/:id/info", s.getCacheInfo)
	api.DELETE("/arxiv/:id/cache", s.clearCache)
	api.GET("/arxiv/:id/zotero", s.getSaved)
	api.POST("/arxiv/:id/zotero", s.saveToZotero)
	api.GET("/zotero/ping", s.pingZotero)

	return r
}

// Run starts the HTTP server on the configured address.
func (s *Server) Run() error {
	return s.Router().Run(s.cfg.Addr)
}

func (s *Server) getPaper(c *gin.Context) {
	id := c.Param("id")
	md, err := s.store.GetOrFetchMetadata(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	pdfPath, err := s.store.GetOrFetchBinary(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.PaperFromMetadata(*md, pdfPath))
}

func (s *Server) getPDF(c *gin.Context) {
	path, err := s.store.GetOrFetchBinary(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.Header("Content-Type", "application/pdf")
	c.File(path)
}

func (s *Server) getMarkdown(c *gin.Context) {
	id := c.Param("id")
	md, err := s.store.GetOrFetchMetadata(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	pdfPath, err := s.store.GetOrFetchBinary(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	text, err := s.text.Markdown(c.Request.Context(), types.PaperFromMetadata(*md, pdfPath))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"arxiv_id": id, "markdown": text})
}

func (s *Server) getCacheInfo(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.Info(c.Param("id")))
}

func (s *Server) clearCache(c *gin.Context) {
	if err := s.store.Evict(c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}

func (s *Server) pingZotero(c *gin.Context) {
	connected := s.library.Ping(c.Request.Context()) == nil
	c.JSON(http.StatusOK, gin.H{"connected": connected})
}

// getSaved checks whether the paper already exists in the library, without
// writing anything.
func (s *Server) getSaved(c *gin.Context) {
	id := c.Param("id")
	if err := s.library.Ping(c.Request.Context()); err != nil {
		writeError(c, err)
		return
	}
	md, err := s.store.GetOrFetchMetadata(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	key, err := s.library.FindSaved(c.Request.Context(), id, md.Title)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"saved": key != "", "key": key})
}

func (s *Server) saveToZotero(c *gin.Context) {
	id := c.Param("id")
	includePDF := c.DefaultQuery("include_pdf", "true") != "false"

	key, err := s.library.Save(c.Request.Context(), id, includePDF)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": key})
}

// writeError maps the application error taxonomy onto HTTP statuses.
func writeError(c *gin.Context, err error) {
	var saveErr *zotero.SaveError
	var transportErr *arxiv.TransportError

	switch {
	case errors.Is(err, arxiv.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "code": "not_found"})
	case errors.Is(err, zotero.ErrServiceUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error(), "code": "service_unavailable"})
	case errors.Is(err, zotero.ErrSaveIndeterminate):
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": err.Error(), "code": "save_indeterminate"})
	case errors.As(err, &saveErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": saveErr.Error(), "code": "save_failed"})
	case errors.As(err, &transportErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": transportErr.Error(), "code": "transport_error"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "code": "internal"})
	}
}
