package domain

import (
	"context"
	"image"
	"time"
)

// DocumentStore reads and writes whole JSON documents by key
type DocumentStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, body []byte) error
}

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// UserRepository persists user credentials
type UserRepository interface {
	Get(ctx context.Context, username string) (*User, error)
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
}

// ProfileRepository persists health profiles keyed by username
type ProfileRepository interface {
	Get(ctx context.Context, username string) (*Profile, error)
	Save(ctx context.Context, username string, profile *Profile) error
	// Update applies fn to the stored profile and saves the result atomically
	Update(ctx context.Context, username string, fn func(*Profile) error) (*Profile, error)
}

// ProductSource looks up nutrition facts by barcode
type ProductSource interface {
	LookupBarcode(ctx context.Context, barcode string) (*Product, error)
}

// BarcodeDecoder finds a barcode symbol in an image
type BarcodeDecoder interface {
	Decode(ctx context.Context, img image.Image) (*DecodedBarcode, error)
}

// LabelReader extracts raw text from a nutrition label image
type LabelReader interface {
	ReadText(ctx context.Context, img image.Image) (string, error)
}

// TextGenerator produces a completion for a prompt
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// TokenIssuer signs and verifies session tokens
type TokenIssuer interface {
	Issue(user *User) (string, time.Time, error)
	Verify(token string) (string, error)
}
