// Package kvstore is the persisted key/value boundary of the engine. Every value is a
// whole JSON document; writes replace the document atomically and nothing merges.
package kvstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/yigit/curriculum/internal/pkg/apperrors"
)

// Store is a string-keyed byte store
type Store interface {
	// Get returns the value for key and whether it exists
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set replaces the value for key
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Keys lists keys with the given prefix in sorted order
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// GetJSON decodes the value under key into out. It reports false when the key is absent.
// Undecodable data yields an error wrapping ErrMalformedStorage.
func GetJSON(ctx context.Context, s Store, key string, out interface{}) (bool, error) {
	raw, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return true, fmt.Errorf("%w: key %s: %v", apperrors.ErrMalformedStorage, key, err)
	}
	return true, nil
}

// SetJSON encodes v and stores it under key
func SetJSON(ctx context.Context, s Store, key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	return s.Set(ctx, key, raw)
}
