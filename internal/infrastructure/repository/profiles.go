package repository

import (
	"context"
	"sync"

	"github.com/nutriscan/backend/internal/domain"
)

// Profiles stores every user's profile, history included, in one JSON document keyed by username
type Profiles struct {
	store domain.DocumentStore
	key   string
	mu    sync.Mutex
}

// NewProfiles creates a profile repository backed by the document at key
func NewProfiles(store domain.DocumentStore, key string) *Profiles {
	return &Profiles{store: store, key: key}
}

// Get returns the user's profile; a user without one gets an empty profile
func (r *Profiles) Get(ctx context.Context, username string) (*domain.Profile, error) {
	profiles, err := loadMap[domain.Profile](ctx, r.store, r.key)
	if err != nil {
		return nil, err
	}
	profile := profiles[username]
	return &profile, nil
}

// Save replaces the user's profile
func (r *Profiles) Save(ctx context.Context, username string, profile *domain.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	profiles, err := loadMap[domain.Profile](ctx, r.store, r.key)
	if err != nil {
		return err
	}
	profiles[username] = *profile
	return saveMap(ctx, r.store, r.key, profiles)
}

// Update loads the user's profile, applies fn and saves the result.
// Nothing is written when fn returns an error.
func (r *Profiles) Update(ctx context.Context, username string, fn func(*domain.Profile) error) (*domain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	profiles, err := loadMap[domain.Profile](ctx, r.store, r.key)
	if err != nil {
		return nil, err
	}

	profile := profiles[username]
	if err := fn(&profile); err != nil {
		return nil, err
	}
	profiles[username] = profile

	if err := saveMap(ctx, r.store, r.key, profiles); err != nil {
		return nil, err
	}
	return &profile, nil
}
