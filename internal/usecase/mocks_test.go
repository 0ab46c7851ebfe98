package usecase

import (
	"context"
	"image"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nutriscan/backend/internal/domain"
)

// MockCacheRepository is a mock implementation of domain.CacheRepository
type MockCacheRepository struct {
	mu        sync.Mutex
	data      map[string][]byte
	getError  error
	setError  error
	setCalled bool
}

func NewMockCacheRepository() *MockCacheRepository {
	return &MockCacheRepository{data: make(map[string][]byte)}
}

func (m *MockCacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getError != nil {
		return nil, m.getError
	}
	if value, ok := m.data[key]; ok {
		return value, nil
	}
	return nil, domain.ErrCacheMiss
}

func (m *MockCacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setCalled = true
	if m.setError != nil {
		return m.setError
	}
	m.data[key] = value
	return nil
}

func (m *MockCacheRepository) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *MockCacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok, nil
}

// MockProductSource is a mock implementation of domain.ProductSource
type MockProductSource struct {
	product *domain.Product
	err     error
	delay   time.Duration
	calls   int32
}

func (m *MockProductSource) LookupBarcode(ctx context.Context, barcode string) (*domain.Product, error) {
	atomic.AddInt32(&m.calls, 1)
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.err != nil {
		return nil, m.err
	}
	p := *m.product
	p.Barcode = barcode
	return &p, nil
}

func (m *MockProductSource) Calls() int {
	return int(atomic.LoadInt32(&m.calls))
}

// MockUserRepository is a mock implementation of domain.UserRepository
type MockUserRepository struct {
	users     map[string]domain.User
	getError  error
	createErr error
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{users: make(map[string]domain.User)}
}

func (m *MockUserRepository) Get(ctx context.Context, username string) (*domain.User, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	u, ok := m.users[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	if _, ok := m.users[user.Username]; ok {
		return domain.ErrUserExists
	}
	m.users[user.Username] = *user
	return nil
}

func (m *MockUserRepository) Update(ctx context.Context, user *domain.User) error {
	if _, ok := m.users[user.Username]; !ok {
		return domain.ErrUserNotFound
	}
	m.users[user.Username] = *user
	return nil
}

// MockProfileRepository is an in-memory domain.ProfileRepository
type MockProfileRepository struct {
	mu          sync.Mutex
	profiles    map[string]domain.Profile
	getError    error
	updateError error
	saveError   error
	saveCalls   int
}

func NewMockProfileRepository() *MockProfileRepository {
	return &MockProfileRepository{profiles: make(map[string]domain.Profile)}
}

func (m *MockProfileRepository) Get(ctx context.Context, username string) (*domain.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getError != nil {
		return nil, m.getError
	}
	p := m.profiles[username]
	return &p, nil
}

func (m *MockProfileRepository) Save(ctx context.Context, username string, profile *domain.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveCalls++
	if m.saveError != nil {
		return m.saveError
	}
	m.profiles[username] = *profile
	return nil
}

func (m *MockProfileRepository) Update(ctx context.Context, username string, fn func(*domain.Profile) error) (*domain.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateError != nil {
		return nil, m.updateError
	}
	p := m.profiles[username]
	if err := fn(&p); err != nil {
		return nil, err
	}
	m.profiles[username] = p
	return &p, nil
}

// MockTokenIssuer is a mock implementation of domain.TokenIssuer
type MockTokenIssuer struct {
	issued []string
}

func (m *MockTokenIssuer) Issue(user *domain.User) (string, time.Time, error) {
	m.issued = append(m.issued, user.Username)
	return "token-for-" + user.Username, time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC), nil
}

func (m *MockTokenIssuer) Verify(token string) (string, error) {
	return "", domain.ErrInvalidToken
}

// MockBarcodeDecoder is a mock implementation of domain.BarcodeDecoder
type MockBarcodeDecoder struct {
	result *domain.DecodedBarcode
	err    error
}

func (m *MockBarcodeDecoder) Decode(ctx context.Context, img image.Image) (*domain.DecodedBarcode, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

// MockLabelReader is a mock implementation of domain.LabelReader
type MockLabelReader struct {
	text string
	err  error
}

func (m *MockLabelReader) ReadText(ctx context.Context, img image.Image) (string, error) {
	return m.text, m.err
}

// MockTextGenerator records prompts and returns a canned response
type MockTextGenerator struct {
	response string
	err      error
	prompts  []string
}

func (m *MockTextGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	m.prompts = append(m.prompts, prompt)
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

// MockProductLookup is a mock implementation of ProductLookup
type MockProductLookup struct {
	products map[string]*domain.Product
	err      error
	calls    int
}

func (m *MockProductLookup) Lookup(ctx context.Context, barcode string) (*domain.Product, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.products[barcode]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return p, nil
}

// completeProfile returns a profile that passes IsComplete
func completeProfile() domain.Profile {
	return domain.Profile{
		Name:                "Ada",
		Age:                 34,
		Height:              170,
		Weight:              62,
		HealthConditions:    "Type 2 diabetes",
		Allergies:           "peanuts, milk",
		DietaryRestrictions: []string{domain.RestrictionVegetarian},
	}
}

// nutellaProduct returns a typical Open Food Facts product
func nutellaProduct() *domain.Product {
	return &domain.Product{
		Barcode:     "3017620422003",
		ProductName: "Nutella",
		Brand:       "Ferrero",
		ServingSize: "15 g",
		Calories:    domain.Float(539),
		Ingredients: "Sugar, palm oil, hazelnuts 13%, skimmed milk powder 8.7%, fat-reduced cocoa 7.4%, emulsifier: lecithins (soya), vanillin",
		Allergens:   []string{"en:milk", "en:nuts", "en:soybeans"},
		Nutrients: domain.Nutrients{
			Fat:           domain.Float(30.9),
			Proteins:      domain.Float(6.3),
			Carbohydrates: domain.Float(57.5),
			Sugars:        domain.Float(56.3),
			Sodium:        domain.Float(0.0428),
		},
		Source: domain.SourceOpenFoodFacts,
	}
}
