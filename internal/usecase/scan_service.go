package usecase

import (
	"context"
	"errors"
	"image"
	"strings"

	"github.com/nutriscan/backend/internal/domain"
	"go.uber.org/zap"
)

// ProductLookup resolves a barcode to a product
type ProductLookup interface {
	Lookup(ctx context.Context, barcode string) (*domain.Product, error)
}

// HistoryLookup finds and records analyzed products in a user's history
type HistoryLookup interface {
	Get(ctx context.Context, username, barcode string) (*domain.HistoryEntry, error)
	Save(ctx context.Context, username string, product *domain.Product, analysis string) (*domain.HistoryEntry, error)
}

// ScanService turns a barcode photo into the next screen for the client
type ScanService struct {
	decoder  domain.BarcodeDecoder
	products ProductLookup
	history  HistoryLookup
	logger   *zap.Logger
}

// NewScanService creates a new scan service
func NewScanService(decoder domain.BarcodeDecoder, products ProductLookup, history HistoryLookup, logger *zap.Logger) *ScanService {
	return &ScanService{
		decoder:  decoder,
		products: products,
		history:  history,
		logger:   logger.Named("scan"),
	}
}

// ScanImage decodes the barcode in img and resolves it with Resolve
func (s *ScanService) ScanImage(ctx context.Context, username string, img image.Image) (*domain.ScanResult, error) {
	decoded, err := s.decoder.Decode(ctx, img)
	if err != nil {
		return &domain.ScanResult{State: domain.ScanStateReady}, err
	}

	s.logger.Debug("barcode detected", zap.String("barcode", decoded.Text), zap.String("format", decoded.Format))
	return s.resolve(ctx, username, decoded)
}

// Resolve looks barcode up in the user's history first and in the product
// databases second. When neither knows it the result is in the ready state
// and the error is domain.ErrProductNotFound.
func (s *ScanService) Resolve(ctx context.Context, username, barcode string) (*domain.ScanResult, error) {
	return s.resolve(ctx, username, &domain.DecodedBarcode{Text: strings.TrimSpace(barcode)})
}

func (s *ScanService) resolve(ctx context.Context, username string, decoded *domain.DecodedBarcode) (*domain.ScanResult, error) {
	if err := ValidateBarcode(decoded.Text); err != nil {
		return &domain.ScanResult{State: domain.ScanStateReady, Barcode: decoded}, err
	}

	entry, err := s.history.Get(ctx, username, decoded.Text)
	switch {
	case err == nil:
		return &domain.ScanResult{
			State:      domain.ScanStateFoundInHistory,
			Barcode:    decoded,
			Product:    entry.Product(),
			History:    entry,
			Assessment: entry.Assessment(),
		}, nil
	case !errors.Is(err, domain.ErrHistoryEntryNotFound):
		// A failed history read should not block a fresh lookup
		s.logger.Warn("history lookup failed", zap.String("username", username), zap.Error(err))
	}

	product, err := s.products.Lookup(ctx, decoded.Text)
	if err != nil {
		return &domain.ScanResult{State: domain.ScanStateReady, Barcode: decoded}, err
	}

	return &domain.ScanResult{
		State:   domain.ScanStateShowingDetails,
		Barcode: decoded,
		Product: product,
	}, nil
}
