package repository

import (
	"context"
)

// KVRepo is the on-device key-value store. Each domain collection is kept
// under one fixed key as a single JSON document.
type KVRepo interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
}
