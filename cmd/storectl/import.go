package main

import (
	"fmt"
	"io"
	"os"

	"storefront/internal/domain"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace collections from a JSON document",
	Long: `Import reads a document keyed by collection and replaces every collection
it names. Collections missing from the document are left alone. Use - to read
from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	var data []byte
	var err error
	if args[0] == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}

	doc, err := parseDocument(data)
	if err != nil {
		return err
	}

	counts, err := saveDocument(contextOf(cmd), storefront.Services, doc)
	if err != nil {
		return err
	}

	for _, name := range domain.Collections {
		if n, ok := counts[name]; ok {
			fmt.Fprintf(cmd.OutOrStdout(), "%-10s %d\n", name, n)
		}
	}
	log.Info("Imported document", zap.String("source", args[0]), zap.Any("counts", counts))
	return nil
}
