package main

import (
	"github.com/nutriscan/backend/internal/domain"
	"github.com/nutriscan/backend/internal/infrastructure/cache"
	"github.com/nutriscan/backend/internal/infrastructure/openfoodfacts"
	"github.com/nutriscan/backend/internal/infrastructure/usda"
	"github.com/nutriscan/backend/internal/usecase"
	"github.com/spf13/cobra"
)

// lookupCmd queries the product databases for a barcode
var lookupCmd = &cobra.Command{
	Use:   "lookup [barcode]",
	Short: "Look a barcode up in Open Food Facts, falling back to USDA when configured",
	Args:  cobra.ExactArgs(1),
	RunE:  runLookup,
}

func runLookup(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	productCache := cache.NewMemoryCache(0)
	defer productCache.Close()

	primary := openfoodfacts.NewClient(cfg.OpenFoodFacts.BaseURL, cfg.OpenFoodFacts.UserAgent, cfg.OpenFoodFacts.RequestsPerMinute, logger)
	var fallback domain.ProductSource
	if cfg.USDA.APIKey != "" {
		fallback = usda.NewClient(cfg.USDA.APIKey, cfg.USDA.BaseURL, logger)
	}

	products := usecase.NewProductService(productCache, primary, fallback, usecase.ProductServiceConfig{CacheTTL: cfg.Cache.TTL}, logger)
	product, err := products.Lookup(ctx, args[0])
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), product)
}
