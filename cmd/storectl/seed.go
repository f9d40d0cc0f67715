package main

import (
	_ "embed"
	"fmt"

	"storefront/internal/domain"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

//go:embed seed/catalog.json
var sampleCatalog []byte

var seedForce bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the sample catalog",
	Long: `Seed writes the bundled sample catalog into every collection. It refuses
to overwrite a store that already has products unless --force is given.`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().BoolVar(&seedForce, "force", false, "replace existing collections")
}

func runSeed(cmd *cobra.Command, args []string) error {
	ctx := contextOf(cmd)

	existing, err := storefront.Services.Products.List(ctx)
	if err != nil {
		return fmt.Errorf("list products: %w", err)
	}
	if len(existing) > 0 && !seedForce {
		return fmt.Errorf("store already has %d products (use --force to replace them)", len(existing))
	}

	doc, err := parseDocument(sampleCatalog)
	if err != nil {
		return err
	}
	counts, err := saveDocument(ctx, storefront.Services, doc)
	if err != nil {
		return err
	}

	for _, name := range domain.Collections {
		fmt.Fprintf(cmd.OutOrStdout(), "%-10s %d\n", name, counts[name])
	}
	log.Info("Seeded sample catalog", zap.Any("counts", counts))
	return nil
}
