// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paperdock/pkg/types"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [arxiv-ids...]",
	Short: "Fetch paper metadata and PDFs into the local cache",
	Long: `Fetch resolves arXiv identifiers to metadata and PDFs, caching both
on disk. Cached papers are served without touching arXiv; stale metadata
is refreshed transparently. Prints the resolved records as JSON.`,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().Bool("no-pdf", false, "fetch metadata only, skip the PDF download")

	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide one or more arXiv identifiers")
	}
	noPDF, _ := cmd.Flags().GetBool("no-pdf")

	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.Close()

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	var failed int
	for _, id := range args {
		md, err := a.store.GetOrFetchMetadata(cmd.Context(), id)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", id, err)
			failed++
			continue
		}
		var pdfPath string
		if !noPDF {
			pdfPath, err = a.store.GetOrFetchBinary(cmd.Context(), id)
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s: %v\n", id, err)
				failed++
				continue
			}
		}
		if err := enc.Encode(types.PaperFromMetadata(*md, pdfPath)); err != nil {
			return err
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d paper(s) failed", failed)
	}
	return nil
}
