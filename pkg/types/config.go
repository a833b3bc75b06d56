// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make
// network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "paperdock/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// ArxivConfig holds settings for talking to arXiv.
type ArxivConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`
}

// CacheConfig holds settings for the on-disk paper cache.
type CacheConfig struct {
	// Dir is the cache base directory (contains metadata/ and pdf/).
	Dir string `json:"dir" yaml:"dir" mapstructure:"dir"`

	// MetadataTTL is how long a cached metadata record stays fresh
	// (default 24h). PDFs never expire; they are only checked for
	// corruption.
	MetadataTTL time.Duration `json:"metadata_ttl" yaml:"metadata_ttl" mapstructure:"metadata_ttl"`
}

// ZoteroConfig holds settings for the local Zotero instance.
type ZoteroConfig struct {
	// BaseURL is the Zotero connector endpoint (default
	// "http://127.0.0.1:23119").
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// UserID selects the local web API user (0 for the local API).
	UserID int `json:"user_id" yaml:"user_id" mapstructure:"user_id"`

	// APIKey is an optional Zotero web API key, sent when present.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// Timeout is the request timeout for save and search calls (default 30s).
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// PingTimeout is the timeout for the connectivity probe (default 5s).
	PingTimeout time.Duration `json:"ping_timeout" yaml:"ping_timeout" mapstructure:"ping_timeout"`

	// ResolveDelay is the grace period between submitting an item and
	// searching for its assigned key; Zotero indexes new items
	// asynchronously (default 2s).
	ResolveDelay time.Duration `json:"resolve_delay" yaml:"resolve_delay" mapstructure:"resolve_delay"`
}

// ConversionBackend identifies the PDF-to-Markdown conversion tool.
type ConversionBackend string

const (
	BackendMarkitdown ConversionBackend = "markitdown"
	BackendPdftotext  ConversionBackend = "pdftotext"
)

// ConversionConfig holds settings for the conversion stage.
type ConversionConfig struct {
	// Backend selects the conversion tool: markitdown or pdftotext.
	Backend ConversionBackend `json:"backend" yaml:"backend" mapstructure:"backend"`

	// Workers bounds the number of concurrent conversions (default 4).
	Workers int `json:"workers" yaml:"workers" mapstructure:"workers"`

	// CacheDB is the path to the SQLite database holding conversion
	// results keyed by content hash.
	CacheDB string `json:"cache_db" yaml:"cache_db" mapstructure:"cache_db"`
}

// ServerConfig holds settings for the HTTP API server.
type ServerConfig struct {
	// Addr is the listen address (default "127.0.0.1:8000").
	Addr string `json:"addr" yaml:"addr" mapstructure:"addr"`

	// AllowedOrigins lists CORS origins permitted to call the API.
	AllowedOrigins []string `json:"allowed_origins" yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// Config groups all component configurations.
type Config struct {
	Server     ServerConfig     `json:"server" yaml:"server" mapstructure:"server"`
	Arxiv      ArxivConfig      `json:"arxiv" yaml:"arxiv" mapstructure:"arxiv"`
	Cache      CacheConfig      `json:"cache" yaml:"cache" mapstructure:"cache"`
	Zotero     ZoteroConfig     `json:"zotero" yaml:"zotero" mapstructure:"zotero"`
	Conversion ConversionConfig `json:"conversion" yaml:"conversion" mapstructure:"conversion"`
}
