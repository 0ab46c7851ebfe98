package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/nutriscan/backend/internal/domain"
	"go.uber.org/zap"
)

// HistoryServiceConfig holds configuration for the history service
type HistoryServiceConfig struct {
	MaxEntries int
}

// HistoryService manages the product history stored in each user's profile
type HistoryService struct {
	profiles   domain.ProfileRepository
	maxEntries int
	now        func() time.Time
	logger     *zap.Logger
}

// NewHistoryService creates a new history service
func NewHistoryService(profiles domain.ProfileRepository, config HistoryServiceConfig, logger *zap.Logger) *HistoryService {
	maxEntries := config.MaxEntries
	if maxEntries <= 0 {
		maxEntries = 20
	}
	return &HistoryService{
		profiles:   profiles,
		maxEntries: maxEntries,
		now:        time.Now,
		logger:     logger.Named("history"),
	}
}

// NewHistoryEntry builds the history record for an analyzed product
func NewHistoryEntry(product *domain.Product, analysis string, at time.Time) domain.HistoryEntry {
	name := product.ProductName
	if name == "" {
		name = domain.UnknownProductName
	}
	allergens := product.Allergens
	if allergens == nil {
		allergens = []string{}
	}
	return domain.HistoryEntry{
		ID:              uuid.NewString(),
		Barcode:         product.Barcode,
		ProductName:     name,
		Timestamp:       at.Format(domain.HistoryTimeLayout),
		AnalysisSummary: ExtractSummary(analysis),
		SafetyRating:    ExtractSafetyRating(analysis),
		FullAnalysis:    analysis,
		NutritionInfo:   product.NutritionInfo(),
		Allergens:       allergens,
	}
}

// AddToHistory replaces the entry with the same barcode in place, or prepends
// entry and keeps at most maxEntries items
func AddToHistory(history []domain.HistoryEntry, entry domain.HistoryEntry, maxEntries int) []domain.HistoryEntry {
	if entry.Barcode != "" {
		for i := range history {
			if history[i].Barcode == entry.Barcode {
				history[i] = entry
				return history
			}
		}
	}

	updated := make([]domain.HistoryEntry, 0, len(history)+1)
	updated = append(updated, entry)
	updated = append(updated, history...)
	if len(updated) > maxEntries {
		updated = updated[:maxEntries]
	}
	return updated
}

// Save records an analysis of product in the user's history
func (s *HistoryService) Save(ctx context.Context, username string, product *domain.Product, analysis string) (*domain.HistoryEntry, error) {
	entry := NewHistoryEntry(product, analysis, s.now())

	_, err := s.profiles.Update(ctx, username, func(p *domain.Profile) error {
		p.ProductHistory = AddToHistory(p.ProductHistory, entry, s.maxEntries)
		return nil
	})
	if err != nil {
		s.logger.Error("failed to save history entry",
			zap.String("username", username),
			zap.String("barcode", product.Barcode),
			zap.Error(err))
		return nil, err
	}

	s.logger.Debug("history entry saved",
		zap.String("username", username),
		zap.String("barcode", entry.Barcode),
		zap.String("rating", string(entry.SafetyRating)))
	return &entry, nil
}

// List returns the user's history, most recent first
func (s *HistoryService) List(ctx context.Context, username string) ([]domain.HistoryEntry, error) {
	profile, err := s.profiles.Get(ctx, username)
	if err != nil {
		return nil, err
	}
	if profile.ProductHistory == nil {
		return []domain.HistoryEntry{}, nil
	}
	return profile.ProductHistory, nil
}

// Get returns the history entry for barcode, or domain.ErrHistoryEntryNotFound
func (s *HistoryService) Get(ctx context.Context, username, barcode string) (*domain.HistoryEntry, error) {
	history, err := s.List(ctx, username)
	if err != nil {
		return nil, err
	}
	for i := range history {
		if history[i].Barcode == barcode {
			entry := history[i]
			return &entry, nil
		}
	}
	return nil, domain.ErrHistoryEntryNotFound
}

// GroupByRating splits the user's history by safety rating, keeping order within each group
func (s *HistoryService) GroupByRating(ctx context.Context, username string) (*domain.HistoryByRating, error) {
	history, err := s.List(ctx, username)
	if err != nil {
		return nil, err
	}
	return GroupHistory(history), nil
}

// GroupHistory splits entries by safety rating; unrecognized ratings go to Unknown
func GroupHistory(history []domain.HistoryEntry) *domain.HistoryByRating {
	grouped := &domain.HistoryByRating{
		Unsafe:  []domain.HistoryEntry{},
		Caution: []domain.HistoryEntry{},
		Safe:    []domain.HistoryEntry{},
		Unknown: []domain.HistoryEntry{},
	}
	for _, entry := range history {
		switch entry.SafetyRating {
		case domain.RatingUnsafe:
			grouped.Unsafe = append(grouped.Unsafe, entry)
		case domain.RatingCaution:
			grouped.Caution = append(grouped.Caution, entry)
		case domain.RatingSafe:
			grouped.Safe = append(grouped.Safe, entry)
		default:
			grouped.Unknown = append(grouped.Unknown, entry)
		}
	}
	return grouped
}

// Delete removes the entry for barcode from the user's history
func (s *HistoryService) Delete(ctx context.Context, username, barcode string) error {
	_, err := s.profiles.Update(ctx, username, func(p *domain.Profile) error {
		for i := range p.ProductHistory {
			if p.ProductHistory[i].Barcode == barcode {
				p.ProductHistory = append(p.ProductHistory[:i], p.ProductHistory[i+1:]...)
				return nil
			}
		}
		return domain.ErrHistoryEntryNotFound
	})
	return err
}
