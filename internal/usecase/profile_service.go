package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/nutriscan/backend/internal/domain"
	"go.uber.org/zap"
)

// FlowAction is what the client is about to do when it asks for the next step
type FlowAction string

const (
	ActionScan         FlowAction = "scan"
	ActionEditProfile  FlowAction = "edit_profile"
	ActionSavePersonal FlowAction = "save_personal"
	ActionSaveHealth   FlowAction = "save_health"
	ActionAnalyze      FlowAction = "analyze"
)

// FlowTransition is the screen the client should show next
type FlowTransition struct {
	Step domain.FlowStep `json:"step"`
	Flow domain.FlowType `json:"flow"`
}

// NextStep decides the next screen for action. An empty flow means onboarding.
func NextStep(profile *domain.Profile, action FlowAction, flow domain.FlowType) (FlowTransition, error) {
	if flow == "" {
		flow = domain.FlowOnboarding
	}

	switch action {
	case ActionScan:
		if !profile.IsComplete() {
			return FlowTransition{Step: domain.StepPersonalInfo, Flow: domain.FlowOnboarding}, nil
		}
		return FlowTransition{Step: domain.StepBarcodeScanning, Flow: flow}, nil
	case ActionAnalyze:
		if !profile.IsComplete() {
			return FlowTransition{Step: domain.StepPersonalInfo, Flow: domain.FlowOnboarding}, nil
		}
		return FlowTransition{Step: domain.StepResults, Flow: flow}, nil
	case ActionEditProfile:
		return FlowTransition{Step: domain.StepPersonalInfo, Flow: domain.FlowProfileUpdate}, nil
	case ActionSavePersonal:
		return FlowTransition{Step: domain.StepHealthInfo, Flow: flow}, nil
	case ActionSaveHealth:
		if flow == domain.FlowOnboarding {
			return FlowTransition{Step: domain.StepBarcodeScanning, Flow: flow}, nil
		}
		return FlowTransition{Step: domain.StepWelcome, Flow: flow}, nil
	}
	return FlowTransition{}, fmt.Errorf("%w: unknown action %q", domain.ErrInvalidRequest, action)
}

// ValidatePersonalInfo checks the first profile form step
func ValidatePersonalInfo(info domain.PersonalInfo) error {
	if strings.TrimSpace(info.Name) == "" {
		return domain.NewValidationError("Name is required")
	}
	if info.Age <= 0 || info.Age > 120 {
		return domain.NewValidationError("Please enter a valid age")
	}
	if info.Height <= 0 || info.Weight <= 0 {
		return domain.NewValidationError("Height and weight must be positive numbers")
	}
	return nil
}

// NormalizeRestrictions validates restriction options, removes duplicates and
// defaults an empty selection to None
func NormalizeRestrictions(restrictions []string) ([]string, error) {
	allowed := make(map[string]string, len(domain.DietaryRestrictions))
	for _, r := range domain.DietaryRestrictions {
		allowed[strings.ToLower(r)] = r
	}

	out := make([]string, 0, len(restrictions))
	seen := make(map[string]bool)
	for _, r := range restrictions {
		canonical, ok := allowed[strings.ToLower(strings.TrimSpace(r))]
		if !ok {
			return nil, domain.NewValidationError(fmt.Sprintf("Unknown dietary restriction: %s", r))
		}
		if !seen[canonical] {
			seen[canonical] = true
			out = append(out, canonical)
		}
	}

	if len(out) == 0 {
		return []string{domain.RestrictionNone}, nil
	}
	return out, nil
}

// ProfileService reads and updates health profiles
type ProfileService struct {
	profiles domain.ProfileRepository
	logger   *zap.Logger
}

// NewProfileService creates a new profile service
func NewProfileService(profiles domain.ProfileRepository, logger *zap.Logger) *ProfileService {
	return &ProfileService{
		profiles: profiles,
		logger:   logger.Named("profiles"),
	}
}

// Get returns the user's profile; a user without one gets an empty profile
func (s *ProfileService) Get(ctx context.Context, username string) (*domain.Profile, error) {
	return s.profiles.Get(ctx, username)
}

// SavePersonalInfo validates and stores the personal step, keeping every other field
func (s *ProfileService) SavePersonalInfo(ctx context.Context, username string, info domain.PersonalInfo, flow domain.FlowType) (*domain.Profile, FlowTransition, error) {
	if err := ValidatePersonalInfo(info); err != nil {
		return nil, FlowTransition{}, err
	}

	profile, err := s.profiles.Update(ctx, username, func(p *domain.Profile) error {
		p.Name = strings.TrimSpace(info.Name)
		p.Age = info.Age
		p.Height = info.Height
		p.Weight = info.Weight
		return nil
	})
	if err != nil {
		return nil, FlowTransition{}, err
	}

	next, err := NextStep(profile, ActionSavePersonal, flow)
	return profile, next, err
}

// SaveHealthInfo validates and stores the health step, keeping every other field
func (s *ProfileService) SaveHealthInfo(ctx context.Context, username string, info domain.HealthInfo, flow domain.FlowType) (*domain.Profile, FlowTransition, error) {
	restrictions, err := NormalizeRestrictions(info.DietaryRestrictions)
	if err != nil {
		return nil, FlowTransition{}, err
	}

	profile, err := s.profiles.Update(ctx, username, func(p *domain.Profile) error {
		p.HealthConditions = strings.TrimSpace(info.HealthConditions)
		p.Allergies = strings.TrimSpace(info.Allergies)
		p.DietaryRestrictions = restrictions
		return nil
	})
	if err != nil {
		return nil, FlowTransition{}, err
	}

	s.logger.Info("health profile saved", zap.String("username", username), zap.Bool("complete", profile.IsComplete()))

	next, err := NextStep(profile, ActionSaveHealth, flow)
	return profile, next, err
}

// NextStep loads the profile and decides the next screen for action
func (s *ProfileService) NextStep(ctx context.Context, username string, action FlowAction, flow domain.FlowType) (FlowTransition, error) {
	profile, err := s.profiles.Get(ctx, username)
	if err != nil {
		return FlowTransition{}, err
	}
	return NextStep(profile, action, flow)
}
