// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paperdock/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long: `Serve exposes the paper operations over HTTP for the web UI:
metadata and PDF resolution, Markdown conversion, cache inspection,
and save-to-Zotero.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default 127.0.0.1:8000)")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		viper.Set("server.addr", addr)
	}

	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.Close()

	srv := server.New(a.store, a.text, a.saver, a.cfg.Server)
	fmt.Fprintf(os.Stderr, "Listening on %s\n", a.cfg.Server.Addr)
	return srv.Run()
}
