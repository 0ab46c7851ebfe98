package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nutriscan/backend/internal/domain"
)

// loadMap reads a JSON object document; a missing document is an empty map
func loadMap[T any](ctx context.Context, store domain.DocumentStore, key string) (map[string]T, error) {
	body, err := store.Get(ctx, key)
	if errors.Is(err, domain.ErrDocumentNotFound) {
		return make(map[string]T), nil
	}
	if err != nil {
		return nil, err
	}

	docs := make(map[string]T)
	if len(body) == 0 {
		return docs, nil
	}
	if err := json.Unmarshal(body, &docs); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", domain.ErrStorageFailure, key, err)
	}
	return docs, nil
}

// saveMap writes a JSON object document
func saveMap[T any](ctx context.Context, store domain.DocumentStore, key string, docs map[string]T) error {
	body, err := json.Marshal(docs)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", domain.ErrStorageFailure, key, err)
	}
	return store.Put(ctx, key, body)
}
