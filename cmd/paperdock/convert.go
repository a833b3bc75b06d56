// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paperdock/pkg/types"
)

var convertCmd = &cobra.Command{
	Use:   "convert [arxiv-ids...]",
	Short: "Convert cached PDFs to Markdown",
	Long: `Convert transforms a paper's PDF into Markdown with a YAML frontmatter
header. Results are cached by content hash, so repeated conversions of
the same PDF are free. Supports markitdown (container-based) and
pdftotext backends.`,
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().String("backend", "", "conversion backend: markitdown or pdftotext")
	convertCmd.Flags().String("output-dir", "", "write <id>.md files here instead of stdout")

	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide one or more arXiv identifiers")
	}
	if backend, _ := cmd.Flags().GetString("backend"); backend != "" {
		viper.Set("conversion.backend", backend)
	}
	outDir, _ := cmd.Flags().GetString("output-dir")

	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.Close()

	var failed int
	for _, id := range args {
		md, err := a.store.GetOrFetchMetadata(cmd.Context(), id)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", id, err)
			failed++
			continue
		}
		pdfPath, err := a.store.GetOrFetchBinary(cmd.Context(), id)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", id, err)
			failed++
			continue
		}
		text, err := a.text.Markdown(cmd.Context(), types.PaperFromMetadata(*md, pdfPath))
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", id, err)
			failed++
			continue
		}
		if outDir == "" {
			fmt.Println(text)
			continue
		}
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return err
		}
		dest := filepath.Join(outDir, id+".md")
		if err := os.WriteFile(dest, []byte(text), 0o644); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "wrote %s\n", dest)
	}
	if failed > 0 {
		return fmt.Errorf("%d paper(s) failed conversion", failed)
	}
	return nil
}
