// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var saveCmd = &cobra.Command{
	Use:   "save [arxiv-ids...]",
	Short: "Save papers into the local Zotero library",
	Long: `Save submits papers to a running Zotero instance through its connector
API: a preprint record plus the PDF as an attachment. Papers already in
the library are skipped. Saving is idempotent; rerunning after a partial
failure completes or short-circuits cleanly.`,
	RunE: runSave,
}

func init() {
	saveCmd.Flags().Bool("no-pdf", false, "save the record without the PDF attachment")

	rootCmd.AddCommand(saveCmd)
}

func runSave(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide one or more arXiv identifiers")
	}
	noPDF, _ := cmd.Flags().GetBool("no-pdf")

	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.Close()

	var failed int
	for _, id := range args {
		key, err := a.saver.Save(cmd.Context(), id, !noPDF)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", id, err)
			failed++
			continue
		}
		fmt.Printf("%s saved as %s\n", id, key)
	}
	if failed > 0 {
		return fmt.Errorf("%d paper(s) failed to save", failed)
	}
	return nil
}
