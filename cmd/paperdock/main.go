// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the paperdock CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paperdock/internal/secrets"
	"github.com/pdiddy/paperdock/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the paperdock CLI.
var rootCmd = &cobra.Command{
	Use:   "paperdock",
	Short: "Fetch, cache, convert, and save arXiv papers",
	Long: `paperdock resolves arXiv identifiers to paper metadata and PDFs, keeps
them in a local disk cache, converts PDFs to Markdown, and saves papers
into a running Zotero instance through its connector API.

Each operation is a subcommand: fetch, convert, save, and cache. The
serve subcommand exposes the same operations over HTTP for the web UI.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./paperdock.yaml or ~/.config/paperdock/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("paperdock")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "paperdock"))
		}
	}

	viper.SetDefault("server.addr", "127.0.0.1:8000")
	viper.SetDefault("arxiv.timeout", "30s")
	viper.SetDefault("arxiv.user_agent", "paperdock/"+version)
	viper.SetDefault("cache.dir", "cache")
	viper.SetDefault("cache.metadata_ttl", "24h")
	viper.SetDefault("zotero.base_url", "http://127.0.0.1:23119")
	viper.SetDefault("zotero.timeout", "30s")
	viper.SetDefault("zotero.ping_timeout", "5s")
	viper.SetDefault("zotero.resolve_delay", "2s")
	viper.SetDefault("conversion.backend", "markitdown")
	viper.SetDefault("conversion.workers", 4)
	viper.SetDefault("conversion.cache_db", filepath.Join("cache", "conversions.db"))

	viper.SetEnvPrefix("PAPERDOCK")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig materializes the full configuration from viper, env, and
// secrets. The Zotero API key falls back to the zotero-api-key secret
// when not set in config.
func loadConfig() (types.Config, error) {
	var cfg types.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Zotero.APIKey == "" {
		cfg.Zotero.APIKey = loadedSecrets["zotero-api-key"]
	}
	return cfg, nil
}

func main() {
	// .env is optional; absence is not an error.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
