// Package store is the in-memory authority over every domain collection.
// It persists locally in solo mode, routes writes through the remote
// gateway in group mode, and notifies subscribers after every change.
package store

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/alexanderramin/hearth/internal/db"
	"github.com/alexanderramin/hearth/internal/docstore"
	"github.com/alexanderramin/hearth/internal/domain"
	"github.com/alexanderramin/hearth/internal/repository"
	"github.com/rs/zerolog"
)

var (
	ErrGroupsDisabled   = errors.New("group sync is not configured")
	ErrAlreadyInGroup   = errors.New("already in a group")
	ErrNotInGroup       = errors.New("not in a group")
	ErrDuplicateAccount = errors.New("account already exists")
	ErrProtectedAccount = errors.New("the default account cannot be deleted")
	ErrUnknownCategory  = errors.New("unknown category")
)

// Remote is the subset of the sync gateway the store drives.
type Remote interface {
	Bind(code string)
	Unbind()
	Identity(ctx context.Context) (string, error)

	CreateBudget(ctx context.Context, e domain.BudgetEntry) (string, error)
	UpdateBudget(ctx context.Context, e domain.BudgetEntry) error
	DeleteBudget(ctx context.Context, id string) error
	SubscribeBudgets(ctx context.Context, onData func([]domain.BudgetEntry), onError func(error)) (docstore.Unsubscribe, error)
	FetchBudgetsByAuthor(ctx context.Context, code, uid string) ([]domain.BudgetEntry, error)
	UploadBudgets(ctx context.Context, entries []domain.BudgetEntry) error

	CreateTodo(ctx context.Context, t domain.Todo) (string, error)
	UpdateTodo(ctx context.Context, t domain.Todo) error
	DeleteTodo(ctx context.Context, id string) error
	SubscribeTodos(ctx context.Context, onData func([]domain.Todo), onError func(error)) (docstore.Unsubscribe, error)
	FetchTodosByAuthor(ctx context.Context, code, uid string) ([]domain.Todo, error)
	UploadTodos(ctx context.Context, todos []domain.Todo) error

	CreateAccount(ctx context.Context, a domain.Account) error
	UpdateAccount(ctx context.Context, a domain.Account) error
	DeleteAccount(ctx context.Context, name string) error
	SubscribeAccounts(ctx context.Context, onData func([]domain.Account), onError func(error)) (docstore.Unsubscribe, error)
	ClaimAccounts(ctx context.Context, names []string) error
	UploadAccounts(ctx context.Context, accounts []domain.Account) error

	SaveCategories(ctx context.Context, c domain.CategorySettings) error
	SubscribeCategories(ctx context.Context, onData func(domain.CategorySettings, bool), onError func(error)) (docstore.Unsubscribe, error)

	CreateGroup(ctx context.Context, name, displayName string) (domain.Group, error)
	JoinGroup(ctx context.Context, code, displayName string) (domain.Group, error)
	LeaveGroup(ctx context.Context) error
	UpdateMember(ctx context.Context, displayName, color string) error
	SubscribeGroup(ctx context.Context, onData func(domain.Group, bool), onError func(error)) (docstore.Unsubscribe, error)
}

// State is a point-in-time copy of everything the store holds.
type State struct {
	Mode   domain.Mode
	Status domain.SyncStatus

	Todos       []domain.Todo
	Budgets     []domain.BudgetEntry
	Accounts    []domain.Account
	Categories  domain.CategorySettings
	Investments []domain.Investment
	Savings     []domain.Savings

	GroupCode   string
	Group       domain.Group
	Identity    string
	DisplayName string
}

// Clone returns a deep copy.
func (s State) Clone() State {
	out := s
	out.Todos = slices.Clone(s.Todos)
	out.Budgets = slices.Clone(s.Budgets)
	out.Accounts = slices.Clone(s.Accounts)
	out.Categories = s.Categories.Clone()
	out.Investments = slices.Clone(s.Investments)
	out.Savings = slices.Clone(s.Savings)
	out.Group = s.Group.Clone()
	return out
}

// Timer is the handle returned by an AfterFunc implementation.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules fn after d, like time.AfterFunc.
type AfterFunc func(d time.Duration, fn func()) Timer

// Store owns the domain collections. The mutex guards state only; it is
// never held across I/O or listener callbacks.
type Store struct {
	kv     repository.KVRepo
	uow    db.UnitOfWork
	remote Remote
	log    zerolog.Logger
	now    func() time.Time
	deb    *debouncer

	// saveMu orders local writes: a save reads state and writes it under
	// this lock, so a later save always lands after an earlier one.
	saveMu sync.Mutex

	mu        sync.Mutex
	state     State
	rev       uint64
	writers   writers
	listeners map[int]func(rev uint64)
	nextID    int

	// Group sync bookkeeping.
	syncing    bool
	leaving    bool
	syncGen    uint64
	subs       []docstore.Unsubscribe
	syncCancel context.CancelFunc
	ready      *initialSync
	healing    bool
	claimed    map[string]bool
}

type Option func(*Store)

// WithDebounce sets the quiet period before a collection is saved.
func WithDebounce(d time.Duration) Option {
	return func(s *Store) {
		s.deb.wait = d
	}
}

// WithAfterFunc replaces the timer source used for debouncing.
func WithAfterFunc(fn AfterFunc) Option {
	return func(s *Store) {
		s.deb.after = fn
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithUnitOfWork makes multi-collection saves atomic.
func WithUnitOfWork(uow db.UnitOfWork) Option {
	return func(s *Store) {
		s.uow = uow
	}
}

// WithRemote enables group mode through the given gateway.
func WithRemote(r Remote) Option {
	return func(s *Store) {
		s.remote = r
	}
}

// New returns an empty solo-mode store. Call Load to read persisted data.
func New(kv repository.KVRepo, log zerolog.Logger, opts ...Option) *Store {
	s := &Store{
		kv:        kv,
		log:       log.With().Str("component", "store").Logger(),
		now:       time.Now,
		listeners: make(map[int]func(uint64)),
		claimed:   make(map[string]bool),
		state: State{
			Mode:       domain.ModeSolo,
			Status:     domain.SyncDisconnected,
			Categories: domain.DefaultCategorySettings(),
		},
	}
	s.deb = newDebouncer(500*time.Millisecond, s.saveKind)
	for _, opt := range opts {
		opt(s)
	}
	s.writers = s.writersFor(domain.ModeSolo)
	return s
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Revision increases by one for every applied change.
func (s *Store) Revision() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rev
}

func (s *Store) Status() domain.SyncStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Status
}

func (s *Store) Mode() domain.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Mode
}

// AccountBalances derives every account's running balance.
func (s *Store) AccountBalances() map[string]int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.Balances(s.state.Accounts, s.state.Budgets)
}

// Subscribe registers fn to be called with the new revision after every
// change. Calls happen on the goroutine that made the change.
func (s *Store) Subscribe(fn func(rev uint64)) (cancel func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

// mutate applies fn to the state and, when it reports a change, bumps the
// revision, schedules saves for kinds and notifies listeners.
func (s *Store) mutate(fn func(st *State) bool, kinds ...Kind) bool {
	s.mu.Lock()
	if !fn(&s.state) {
		s.mu.Unlock()
		return false
	}
	s.rev++
	rev := s.rev
	s.mu.Unlock()

	for _, k := range kinds {
		s.deb.schedule(k)
	}
	s.notify(rev)
	return true
}

func (s *Store) notify(rev uint64) {
	s.mu.Lock()
	ids := make([]int, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	fns := make([]func(uint64), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.listeners[id])
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(rev)
	}
}

func (s *Store) currentWriters() writers {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writers
}

// indexOf returns the position of the first element matching id.
func indexOf[T any](items []T, id string, key func(T) string) int {
	return slices.IndexFunc(items, func(v T) bool { return key(v) == id })
}
