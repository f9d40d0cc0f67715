package main

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"

	"storefront/internal/domain"

	"github.com/spf13/cobra"
)

var (
	exportCollection string
	exportOutput     string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Print the collections as JSON",
	Long: `Export reads every collection through the repositories and prints one
JSON document keyed by collection, in the same shape import accepts.

Example:
  storectl export > backup.json
  storectl export --collection orders -o orders.json`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportCollection, "collection", "", "export a single collection")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "write to a file instead of stdout")
}

func runExport(cmd *cobra.Command, args []string) error {
	if exportCollection != "" && !slices.Contains(domain.Collections, exportCollection) {
		return fmt.Errorf("unknown collection %q", exportCollection)
	}

	doc, err := loadDocument(contextOf(cmd), storefront.Services, exportCollection)
	if err != nil {
		return err
	}

	output, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	output = append(output, '\n')

	if exportOutput == "" {
		_, err = cmd.OutOrStdout().Write(output)
		return err
	}
	return os.WriteFile(exportOutput, output, 0o644)
}
