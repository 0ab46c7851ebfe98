package repository

import (
	"context"
	"sync"

	"github.com/nutriscan/backend/internal/domain"
)

// Users stores every account's credentials in one JSON document keyed by username
type Users struct {
	store domain.DocumentStore
	key   string
	mu    sync.Mutex
}

// NewUsers creates a credentials repository backed by the document at key
func NewUsers(store domain.DocumentStore, key string) *Users {
	return &Users{store: store, key: key}
}

// Get returns the stored user or domain.ErrUserNotFound
func (r *Users) Get(ctx context.Context, username string) (*domain.User, error) {
	users, err := loadMap[domain.User](ctx, r.store, r.key)
	if err != nil {
		return nil, err
	}
	user, ok := users[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	user.Username = username
	return &user, nil
}

// Create adds a new user, failing with domain.ErrUserExists for a taken username
func (r *Users) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := loadMap[domain.User](ctx, r.store, r.key)
	if err != nil {
		return err
	}
	if _, exists := users[user.Username]; exists {
		return domain.ErrUserExists
	}
	users[user.Username] = *user
	return saveMap(ctx, r.store, r.key, users)
}

// Update replaces an existing user
func (r *Users) Update(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := loadMap[domain.User](ctx, r.store, r.key)
	if err != nil {
		return err
	}
	if _, exists := users[user.Username]; !exists {
		return domain.ErrUserNotFound
	}
	users[user.Username] = *user
	return saveMap(ctx, r.store, r.key, users)
}
