// Package remote is the gateway between the data store and the shared
// document store. It converts entities to their shared shapes and scopes
// every operation to the active group code.
package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/alexanderramin/hearth/internal/auth"
	"github.com/alexanderramin/hearth/internal/docstore"
	"github.com/rs/zerolog"
)

// Collection names under groups/{code}/.
const (
	CollectionBudgets    = "budgets"
	CollectionTodos      = "todos"
	CollectionAccounts   = "accounts"
	CollectionCategories = "categories"
	// CollectionMeta holds the group document itself.
	CollectionMeta = "meta"
)

// GroupDocID is the id of the group document inside CollectionMeta.
const GroupDocID = "group"

// CategoriesDocID is the single document holding a group's category
// settings.
const CategoriesDocID = "default"

// MaxCodeAttempts bounds group code generation retries on collision.
const MaxCodeAttempts = 10

var (
	ErrNoIdentity    = errors.New("no identity")
	ErrNoActiveGroup = errors.New("no active group")
	ErrGroupNotFound = errors.New("group not found")
	ErrCodeExhausted = errors.New("could not generate an unused group code")
)

// Gateway performs group-scoped reads and writes.
type Gateway struct {
	store docstore.Store
	ids   auth.Provider
	log   zerolog.Logger
	rand  io.Reader
	now   func() time.Time

	mu   sync.RWMutex
	code string
}

type Option func(*Gateway)

// WithCodeSource sets the entropy used for group codes.
func WithCodeSource(r io.Reader) Option {
	return func(g *Gateway) {
		g.rand = r
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(g *Gateway) {
		g.now = now
	}
}

func New(store docstore.Store, ids auth.Provider, log zerolog.Logger, opts ...Option) *Gateway {
	g := &Gateway{
		store: store,
		ids:   ids,
		log:   log.With().Str("component", "remote").Logger(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Bind makes code the active group for subsequent operations.
func (g *Gateway) Bind(code string) {
	g.mu.Lock()
	g.code = code
	g.mu.Unlock()
}

// Unbind clears the active group.
func (g *Gateway) Unbind() {
	g.Bind("")
}

// Code returns the active group code, or "".
func (g *Gateway) Code() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.code
}

// Identity returns the current identity or ErrNoIdentity.
func (g *Gateway) Identity(ctx context.Context) (string, error) {
	if g.ids == nil {
		return "", ErrNoIdentity
	}
	uid, err := g.ids.Identity(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoIdentity, err)
	}
	if uid == "" {
		return "", ErrNoIdentity
	}
	return uid, nil
}

// scope checks the write preconditions and returns the active code and
// identity.
func (g *Gateway) scope(ctx context.Context) (string, string, error) {
	uid, err := g.Identity(ctx)
	if err != nil {
		return "", "", err
	}
	code := g.Code()
	if code == "" {
		return "", "", ErrNoActiveGroup
	}
	return code, uid, nil
}

func (g *Gateway) activeCode() (string, error) {
	code := g.Code()
	if code == "" {
		return "", ErrNoActiveGroup
	}
	return code, nil
}

// watch subscribes to a group collection, decoding every document with
// decode. Documents that fail to decode are skipped and logged.
func watch[T any](ctx context.Context, g *Gateway, collection string, decode func(docstore.Doc) (T, error), onData func([]T), onError func(error)) (docstore.Unsubscribe, error) {
	code, err := g.activeCode()
	if err != nil {
		return nil, err
	}
	path := docstore.CollectionPath(code, collection)
	return g.store.Watch(ctx, path, func(docs []docstore.Doc) {
		onData(decodeAll(g.log, path, docs, decode))
	}, onError)
}

func decodeAll[T any](log zerolog.Logger, path string, docs []docstore.Doc, decode func(docstore.Doc) (T, error)) []T {
	out := make([]T, 0, len(docs))
	for _, d := range docs {
		v, err := decode(d)
		if err != nil {
			log.Warn().Err(err).Str("path", path).Str("id", d.ID).Msg("skipping undecodable document")
			continue
		}
		out = append(out, v)
	}
	return out
}
