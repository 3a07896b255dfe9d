// Package docstore abstracts the shared real-time document database that
// group members sync through. Documents live in collections addressed by
// slash-separated paths; every collection can be watched for full snapshots.
package docstore

import (
	"context"
	"errors"
	"strings"
)

// MaxBatchWrites is the most operations a single Batch may carry.
const MaxBatchWrites = 500

// GroupsPath is the top-level collection holding group documents.
const GroupsPath = "groups"

var (
	ErrNotFound      = errors.New("document not found")
	ErrBatchTooLarge = errors.New("batch exceeds write limit")
	ErrNilField      = errors.New("nil field value")
	ErrInvalidPath   = errors.New("invalid collection path")
)

// Fields is the body of a document. Values must be JSON-compatible and
// never nil.
type Fields map[string]any

// Doc is one stored document.
type Doc struct {
	ID     string `json:"id"`
	Fields Fields `json:"fields"`
}

// Filter is an equality constraint on a top-level field.
type Filter struct {
	Field string `json:"field"`
	Value any    `json:"value"`
}

// Where builds an equality filter.
func Where(field string, value any) Filter {
	return Filter{Field: field, Value: value}
}

type OpKind string

const (
	OpSet    OpKind = "set"
	OpMerge  OpKind = "merge"
	OpDelete OpKind = "delete"
)

// Op is one write inside a Batch.
type Op struct {
	Kind   OpKind `json:"kind"`
	Path   string `json:"path"`
	ID     string `json:"id"`
	Fields Fields `json:"fields,omitempty"`
}

// Unsubscribe stops a watch. It is safe to call more than once.
type Unsubscribe func()

// Store is the remote document database.
type Store interface {
	// Add stores fields under a generated id and returns it.
	Add(ctx context.Context, path string, fields Fields) (string, error)
	// Set creates or replaces a document.
	Set(ctx context.Context, path, id string, fields Fields) error
	// Merge updates the given fields of an existing document.
	Merge(ctx context.Context, path, id string, fields Fields) error
	Delete(ctx context.Context, path, id string) error
	Get(ctx context.Context, path, id string) (Doc, error)
	Query(ctx context.Context, path string, filters ...Filter) ([]Doc, error)
	// Batch applies up to MaxBatchWrites operations atomically.
	Batch(ctx context.Context, ops []Op) error
	// Watch delivers the full collection once immediately and again after
	// every change, until the returned Unsubscribe is called.
	Watch(ctx context.Context, path string, onSnapshot func([]Doc), onError func(error)) (Unsubscribe, error)
}

// CollectionPath is the path of a group-scoped collection.
func CollectionPath(code, name string) string {
	return GroupsPath + "/" + code + "/" + name
}

// CleanPath trims surrounding slashes and rejects empty segments.
func CleanPath(path string) (string, error) {
	path = strings.Trim(path, "/")
	if path == "" {
		return "", ErrInvalidPath
	}
	for _, seg := range strings.Split(path, "/") {
		if seg == "" {
			return "", ErrInvalidPath
		}
	}
	return path, nil
}

// Matches reports whether a document satisfies every filter.
func Matches(f Fields, filters []Filter) bool {
	for _, flt := range filters {
		v, ok := f[flt.Field]
		if !ok || !sameValue(v, flt.Value) {
			return false
		}
	}
	return true
}
