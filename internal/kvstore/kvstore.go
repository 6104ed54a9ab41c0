// Package kvstore is the durable key-value storage used for client preferences,
// the shopping list and supermarket overrides. Values are JSON text.
package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Keys written by the application. Absence of a key means "use default".
const (
	KeyTheme        = "theme"
	KeyShoppingList = "shopping_list"
	KeySupermarkets = "supermarkets_config"
)

var (
	ErrNotFound = errors.New("key not found")
)

// Store defines the interface for key-value persistence
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// GetJSON loads key into v. found is false when the key is absent.
// A value that fails to decode is returned as an error so callers can fall back to defaults.
func GetJSON(ctx context.Context, s Store, key string, v any) (found bool, err error) {
	raw, err := s.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return true, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return true, nil
}

// SetJSON encodes v and stores it under key
func SetJSON(ctx context.Context, s Store, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := s.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}
