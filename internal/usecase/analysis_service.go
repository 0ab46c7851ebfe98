package usecase

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/nutriscan/backend/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// AnalysisService produces personalized safety assessments
type AnalysisService struct {
	profiles  domain.ProfileRepository
	products  ProductLookup
	history   HistoryLookup
	reader    domain.LabelReader
	generator domain.TextGenerator
	matcher   *AllergenMatcher
	logger    *zap.Logger
}

// NewAnalysisService creates a new analysis service with dependencies
func NewAnalysisService(
	profiles domain.ProfileRepository,
	products ProductLookup,
	history HistoryLookup,
	reader domain.LabelReader,
	generator domain.TextGenerator,
	logger *zap.Logger,
) *AnalysisService {
	return &AnalysisService{
		profiles:  profiles,
		products:  products,
		history:   history,
		reader:    reader,
		generator: generator,
		matcher:   NewAllergenMatcher(AllergenMatcherConfig{}),
		logger:    logger.Named("analysis"),
	}
}

// AnalyzeBarcode assesses the product with barcode for the user and saves the result to history.
// Flow: load profile and product concurrently -> match allergens -> prompt model -> extract rating -> save
func (s *AnalysisService) AnalyzeBarcode(ctx context.Context, username, barcode string) (*domain.Assessment, error) {
	if err := ValidateBarcode(barcode); err != nil {
		return nil, err
	}

	var (
		profile *domain.Profile
		product *domain.Product
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.profiles.Get(gctx, username)
		if err != nil {
			return err
		}
		if !p.IsComplete() {
			return domain.ErrProfileIncomplete
		}
		profile = p
		return nil
	})
	g.Go(func() error {
		p, err := s.products.Lookup(gctx, barcode)
		if err != nil {
			return err
		}
		product = p
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	alerts := s.matcher.MatchProduct(profile.Allergies, product)
	analysis, err := s.generate(ctx, profile, FormatProductText(product), alerts)
	if err != nil {
		return nil, err
	}

	assessment := &domain.Assessment{
		Product:        product,
		SafetyRating:   ExtractSafetyRating(analysis),
		Summary:        ExtractSummary(analysis),
		Analysis:       analysis,
		AllergenAlerts: alerts,
	}

	if _, err := s.history.Save(ctx, username, product, analysis); err != nil {
		// The assessment is still useful without a history record
		s.logger.Error("failed to save analysis to history", zap.String("barcode", product.Barcode), zap.Error(err))
	} else {
		assessment.SavedToHistory = true
	}

	s.logger.Info("product analyzed",
		zap.String("username", username),
		zap.String("barcode", product.Barcode),
		zap.String("rating", string(assessment.SafetyRating)),
		zap.Int("allergen_alerts", len(alerts)))
	return assessment, nil
}

// AnalyzeLabel reads a nutrition label photo and assesses it for the user.
// Label analyses have no barcode and are not saved to history.
func (s *AnalysisService) AnalyzeLabel(ctx context.Context, username string, img image.Image) (*domain.Assessment, error) {
	profile, err := s.profiles.Get(ctx, username)
	if err != nil {
		return nil, err
	}
	if !profile.IsComplete() {
		return nil, domain.ErrProfileIncomplete
	}

	text, err := s.reader.ReadText(ctx, img)
	if err != nil {
		return nil, err
	}

	facts := ParseLabel(text)
	alerts := s.matcher.Match(profile.Allergies, facts.Allergens, facts.Ingredients)

	analysis, err := s.generate(ctx, profile, FormatLabelText(&facts), alerts)
	if err != nil {
		return nil, err
	}

	return &domain.Assessment{
		Label:          &facts,
		SafetyRating:   ExtractSafetyRating(analysis),
		Summary:        ExtractSummary(analysis),
		Analysis:       analysis,
		AllergenAlerts: alerts,
	}, nil
}

func (s *AnalysisService) generate(ctx context.Context, profile *domain.Profile, nutritionText string, alerts []domain.AllergenAlert) (string, error) {
	analysis, err := s.generator.Generate(ctx, BuildPrompt(profile, nutritionText, alerts))
	if err != nil {
		if errors.Is(err, domain.ErrAnalysisFailed) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", domain.ErrAnalysisFailed, err)
	}
	return analysis, nil
}
