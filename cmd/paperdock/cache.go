// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and clear the local paper cache",
}

var cacheInfoCmd = &cobra.Command{
	Use:   "info [arxiv-id]",
	Short: "Show cache state for a paper",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp()
		if err != nil {
			return err
		}
		defer a.Close()

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(a.store.Info(args[0]))
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear [arxiv-ids...]",
	Short: "Remove cached metadata and PDFs",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp()
		if err != nil {
			return err
		}
		defer a.Close()

		for _, id := range args {
			if err := a.store.Evict(id); err != nil {
				return fmt.Errorf("clear %s: %w", id, err)
			}
			fmt.Printf("cleared %s\n", id)
		}
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheInfoCmd, cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}
