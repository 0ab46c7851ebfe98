package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/nutriscan/backend/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const maxBarcodeLength = 128

// Package-level compiled regex pattern for performance
var retailBarcodeRegex = regexp.MustCompile(`^\d{6,14}$`)

// ProductServiceConfig holds configuration for the product service
type ProductServiceConfig struct {
	CacheTTL time.Duration
	// FetchTimeout bounds one shared upstream lookup
	FetchTimeout time.Duration
}

// ProductService looks up products by barcode with caching and a fallback source
type ProductService struct {
	cache        domain.CacheRepository
	sources      []domain.ProductSource
	cacheTTL     time.Duration
	fetchTimeout time.Duration
	group        singleflight.Group
	logger       *zap.Logger
}

// NewProductService creates a product service. Sources are tried in order;
// a nil fallback is skipped.
func NewProductService(
	cache domain.CacheRepository,
	primary domain.ProductSource,
	fallback domain.ProductSource,
	config ProductServiceConfig,
	logger *zap.Logger,
) *ProductService {
	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 168 * time.Hour // Default 7 days
	}

	fetchTimeout := config.FetchTimeout
	if fetchTimeout == 0 {
		fetchTimeout = 30 * time.Second
	}

	sources := []domain.ProductSource{primary}
	if fallback != nil {
		sources = append(sources, fallback)
	}

	return &ProductService{
		cache:        cache,
		sources:      sources,
		cacheTTL:     cacheTTL,
		fetchTimeout: fetchTimeout,
		logger:       logger.Named("products"),
	}
}

// ValidateBarcode accepts retail codes of 6 to 14 digits and, for 2D symbols,
// any printable text up to 128 characters
func ValidateBarcode(barcode string) error {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return fmt.Errorf("%w: barcode is empty", domain.ErrInvalidBarcode)
	}
	if retailBarcodeRegex.MatchString(barcode) {
		return nil
	}
	if isNumeric(barcode) {
		return fmt.Errorf("%w: numeric barcodes must have 6 to 14 digits", domain.ErrInvalidBarcode)
	}
	if len(barcode) > maxBarcodeLength {
		return fmt.Errorf("%w: barcode longer than %d characters", domain.ErrInvalidBarcode, maxBarcodeLength)
	}
	for _, r := range barcode {
		if r < 0x20 || r == 0x7f {
			return fmt.Errorf("%w: barcode contains control characters", domain.ErrInvalidBarcode)
		}
	}
	return nil
}

// Lookup returns the product for barcode.
// Flow: validate -> check cache -> query sources in order -> cache -> return
func (s *ProductService) Lookup(ctx context.Context, barcode string) (*domain.Product, error) {
	barcode = strings.TrimSpace(barcode)
	if err := ValidateBarcode(barcode); err != nil {
		return nil, err
	}

	cacheKey := generateCacheKey(barcode)

	if cached, err := s.getFromCache(ctx, cacheKey); err == nil {
		cached.Source = domain.SourceCache
		return cached, nil
	} else if !errors.Is(err, domain.ErrCacheMiss) {
		s.logger.Warn("cache read failed", zap.String("barcode", barcode), zap.Error(err))
	}

	// Concurrent scans of one barcode share a single upstream request. The
	// shared fetch outlives any one caller, so it runs on a detached context.
	ch := s.group.DoChan(cacheKey, func() (interface{}, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.fetchTimeout)
		defer cancel()

		product, err := s.fetch(fetchCtx, barcode)
		if err != nil {
			return nil, err
		}
		if err := s.setInCache(fetchCtx, cacheKey, product); err != nil {
			s.logger.Warn("cache write failed", zap.String("barcode", barcode), zap.Error(err))
		}
		return product, nil
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		return nil, res.Err
	}
	v, shared := res.Val, res.Shared

	product := v.(*domain.Product)
	if shared {
		copied := *product
		return &copied, nil
	}
	return product, nil
}

// fetch queries each source in order. Not-found from every source yields
// domain.ErrProductNotFound; otherwise the last upstream failure is returned.
func (s *ProductService) fetch(ctx context.Context, barcode string) (*domain.Product, error) {
	var lastErr error
	for i, source := range s.sources {
		product, err := source.LookupBarcode(ctx, barcode)
		if err == nil {
			return product, nil
		}
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrProductAPIFailure, ctx.Err())
		}
		if errors.Is(err, domain.ErrProductNotFound) {
			continue
		}
		s.logger.Warn("product source failed", zap.Int("source", i), zap.String("barcode", barcode), zap.Error(err))
		lastErr = err
	}

	if lastErr != nil {
		if errors.Is(lastErr, domain.ErrProductAPIFailure) {
			return nil, lastErr
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrProductAPIFailure, lastErr)
	}
	return nil, domain.ErrProductNotFound
}

// generateCacheKey creates the cache key for a barcode.
// Format: "product:{barcode}"
func generateCacheKey(barcode string) string {
	return "product:" + barcode
}

// getFromCache retrieves a product from cache
func (s *ProductService) getFromCache(ctx context.Context, key string) (*domain.Product, error) {
	value, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	var product domain.Product
	if err := json.Unmarshal(value, &product); err != nil {
		// Treat undecodable entries as a miss so they get refreshed
		return nil, domain.ErrCacheMiss
	}
	return &product, nil
}

// setInCache stores a product in cache
func (s *ProductService) setInCache(ctx context.Context, key string, product *domain.Product) error {
	data, err := json.Marshal(product)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, key, data, s.cacheTTL)
}

// isNumeric checks if a string contains only digits
func isNumeric(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return len(s) > 0
}
