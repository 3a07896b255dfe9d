package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Keys of the persisted collections. One key per entity kind.
const (
	KeyTodos       = "@todos"
	KeyBudgets     = "@budgets"
	KeyAccounts    = "@accounts"
	KeyCategories  = "@categories"
	KeyInvestments = "@investments"
	KeySavings     = "@savings"
	KeyGroupCode   = "@groupCode"
	KeyGroup       = "@group"
	KeyIdentity    = "@identity"
	KeyDisplayName = "@displayName"
)

// Load decodes the value stored under key, returning def when the key has
// never been written.
func Load[T any](ctx context.Context, repo KVRepo, key string, def T) (T, error) {
	raw, err := repo.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return def, nil
		}
		return def, err
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return def, fmt.Errorf("decoding %s: %w", key, err)
	}
	return out, nil
}

// Save encodes value as JSON and stores it under key.
func Save[T any](ctx context.Context, repo KVRepo, key string, value T) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	return repo.Put(ctx, key, raw)
}
