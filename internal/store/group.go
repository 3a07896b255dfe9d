package store

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/alexanderramin/hearth/internal/docstore"
	"github.com/alexanderramin/hearth/internal/domain"
	"golang.org/x/sync/errgroup"
)

// subscription opens one of the group listeners.
type subscription struct {
	kind Kind
	open func(ctx context.Context) (docstore.Unsubscribe, error)
}

// StartGroupSync connects the store to its persisted group: it binds the
// gateway, tears down stale listeners, switches every shared collection to
// the remote writer and opens the five group subscriptions in parallel.
// A subscription that fails to open leaves only its own collection stale.
// Calls made while another is in flight return nil immediately.
func (s *Store) StartGroupSync(ctx context.Context) error {
	if s.remote == nil {
		return ErrGroupsDisabled
	}
	s.mu.Lock()
	if s.syncing {
		s.mu.Unlock()
		return nil
	}
	code := s.state.GroupCode
	if code == "" {
		s.mu.Unlock()
		return ErrNotInGroup
	}
	s.syncing = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.syncing = false
		s.mu.Unlock()
	}()

	for {
		next, err := s.connect(ctx, code)
		if next == "" {
			return err
		}
		// Joined another group while this one was connecting.
		code = next
	}
}

// connect runs one connection attempt for code. It returns the new group
// code when the store moved to another group before the attempt took hold.
func (s *Store) connect(ctx context.Context, code string) (string, error) {
	s.setStatus(domain.SyncConnecting)

	uid, err := s.remote.Identity(ctx)
	if err != nil {
		s.setStatus(domain.SyncDisconnected)
		return "", fmt.Errorf("starting group sync: %w", err)
	}

	group := s.writersFor(domain.ModeGroup)
	syncCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	var (
		gen         uint64
		subs        []subscription
		stale       []docstore.Unsubscribe
		staleCancel context.CancelFunc
		abandoned   bool
		next        string
	)
	s.mutate(func(st *State) bool {
		if s.leaving || st.GroupCode != code {
			// Left or switched groups while resolving the identity.
			abandoned = true
			if s.leaving {
				return false
			}
			next = st.GroupCode
			if next == "" {
				st.Status = domain.SyncDisconnected
				return true
			}
			return false
		}
		s.remote.Bind(code)
		s.syncGen++
		gen = s.syncGen
		stale, staleCancel = s.takeSubscriptionsLocked()
		subs = s.groupSubscriptions(gen)
		s.ready = newInitialSync(subs)
		s.syncCancel = cancel
		s.writers = group
		st.Mode = domain.ModeGroup
		st.Identity = uid
		return true
	})
	if abandoned {
		cancel()
		s.log.Info().Str("code", code).Msg("group changed while connecting; attempt dropped")
		return next, nil
	}
	stopSubscriptions(stale, staleCancel)

	unsubs := make([]docstore.Unsubscribe, len(subs))
	errs := make([]error, len(subs))
	var g errgroup.Group
	for i, sub := range subs {
		g.Go(func() error {
			unsub, err := sub.open(syncCtx)
			if err != nil {
				errs[i] = fmt.Errorf("subscribing to %s: %w", sub.kind, err)
				return nil
			}
			unsubs[i] = unsub
			return nil
		})
	}
	_ = g.Wait()

	var (
		opened []docstore.Unsubscribe
		failed []Kind
	)
	for i, sub := range subs {
		if errs[i] != nil {
			s.log.Warn().Err(errs[i]).Str("collection", string(sub.kind)).Msg("group subscription failed; collection stays stale")
			failed = append(failed, sub.kind)
			continue
		}
		opened = append(opened, unsubs[i])
	}

	s.mu.Lock()
	current := s.syncGen == gen
	if current {
		s.subs = opened
		s.ready.mark(failed...)
	}
	s.mu.Unlock()
	if !current {
		// Disconnected while subscribing.
		stopSubscriptions(opened, nil)
		return "", nil
	}

	if len(opened) == 0 {
		s.setStatus(domain.SyncDisconnected)
		return "", errors.Join(errs...)
	}
	s.setStatus(domain.SyncConnected)
	s.log.Info().Str("code", code).Int("subscriptions", len(opened)).Msg("group sync started")
	return "", nil
}

func (s *Store) groupSubscriptions(gen uint64) []subscription {
	r := s.remote
	return []subscription{
		{KindBudgets, func(ctx context.Context) (docstore.Unsubscribe, error) {
			return r.SubscribeBudgets(ctx, func(items []domain.BudgetEntry) {
				s.replaceCollection(gen, KindBudgets, func(st *State) { st.Budgets = items })
			}, s.subscriptionError(gen, KindBudgets))
		}},
		{KindTodos, func(ctx context.Context) (docstore.Unsubscribe, error) {
			return r.SubscribeTodos(ctx, func(items []domain.Todo) {
				s.replaceCollection(gen, KindTodos, func(st *State) { st.Todos = items })
			}, s.subscriptionError(gen, KindTodos))
		}},
		{KindAccounts, func(ctx context.Context) (docstore.Unsubscribe, error) {
			return r.SubscribeAccounts(ctx, func(items []domain.Account) {
				s.onAccounts(ctx, gen, items)
			}, s.subscriptionError(gen, KindAccounts))
		}},
		{KindCategories, func(ctx context.Context) (docstore.Unsubscribe, error) {
			return r.SubscribeCategories(ctx, func(c domain.CategorySettings, found bool) {
				if !found {
					s.delivered(gen, KindCategories)
					return
				}
				c.Normalize()
				s.replaceCollection(gen, KindCategories, func(st *State) { st.Categories = c })
			}, s.subscriptionError(gen, KindCategories))
		}},
		{KindGroup, func(ctx context.Context) (docstore.Unsubscribe, error) {
			return r.SubscribeGroup(ctx, func(grp domain.Group, found bool) {
				if !found {
					s.log.Warn().Msg("group document is gone")
					s.delivered(gen, KindGroup)
					return
				}
				s.replaceCollection(gen, KindGroup, func(st *State) { st.Group = grp })
			}, s.subscriptionError(gen, KindGroup))
		}},
	}
}

// replaceCollection applies a snapshot unless it belongs to a torn-down
// sync session.
func (s *Store) replaceCollection(gen uint64, k Kind, apply func(*State)) {
	s.mutate(func(st *State) bool {
		if s.syncGen != gen {
			return false
		}
		apply(st)
		return true
	}, k)
	s.delivered(gen, k)
}

func (s *Store) subscriptionError(gen uint64, k Kind) func(error) {
	return func(err error) {
		s.mu.Lock()
		current := s.syncGen == gen
		s.mu.Unlock()
		if !current {
			return
		}
		s.log.Warn().Err(err).Str("collection", string(k)).Msg("group subscription error")
	}
}

// onAccounts applies an accounts snapshot. Accounts without an owner are
// attributed to the current identity locally and claimed remotely once per
// session; the claim's own echo finds nothing left to heal.
func (s *Store) onAccounts(ctx context.Context, gen uint64, items []domain.Account) {
	var claim []string
	s.mutate(func(st *State) bool {
		if s.syncGen != gen {
			return false
		}
		next := slices.Clone(items)
		var orphans []string
		if st.Identity != "" {
			for i := range next {
				if next[i].OwnerID != "" {
					continue
				}
				next[i].OwnerID = st.Identity
				if !s.claimed[next[i].Name] {
					orphans = append(orphans, next[i].Name)
				}
			}
		}
		if len(orphans) > 0 && !s.healing {
			s.healing = true
			for _, name := range orphans {
				s.claimed[name] = true
			}
			claim = orphans
		}
		st.Accounts = next
		return true
	}, KindAccounts)
	s.delivered(gen, KindAccounts)
	if len(claim) == 0 {
		return
	}

	err := s.remote.ClaimAccounts(ctx, claim)

	s.mu.Lock()
	s.healing = false
	if err != nil {
		for _, name := range claim {
			delete(s.claimed, name)
		}
	}
	s.mu.Unlock()
	if err != nil {
		s.log.Error().Err(err).Strs("accounts", claim).Msg("claiming orphaned accounts failed")
		return
	}
	s.log.Info().Strs("accounts", claim).Msg("claimed orphaned accounts")
}

// CreateGroup creates a new group, seeds it with the local budgets, todos,
// accounts and categories, and starts syncing. Seeding failures are logged
// and do not stop the group from starting.
func (s *Store) CreateGroup(ctx context.Context, name, displayName string) (domain.Group, error) {
	if s.remote == nil {
		return domain.Group{}, ErrGroupsDisabled
	}
	s.mu.Lock()
	if s.state.GroupCode != "" {
		s.mu.Unlock()
		return domain.Group{}, ErrAlreadyInGroup
	}
	seed := s.state.Clone()
	s.mu.Unlock()

	grp, err := s.remote.CreateGroup(ctx, name, displayName)
	if err != nil {
		return domain.Group{}, fmt.Errorf("creating group: %w", err)
	}
	s.remote.Bind(grp.Code)

	if err := s.remote.UploadBudgets(ctx, seed.Budgets); err != nil {
		s.log.Error().Err(err).Int("count", len(seed.Budgets)).Msg("uploading budgets failed")
	}
	if err := s.remote.UploadTodos(ctx, seed.Todos); err != nil {
		s.log.Error().Err(err).Int("count", len(seed.Todos)).Msg("uploading todos failed")
	}
	if err := s.remote.UploadAccounts(ctx, seed.Accounts); err != nil {
		s.log.Error().Err(err).Int("count", len(seed.Accounts)).Msg("uploading accounts failed")
	}
	if err := s.remote.SaveCategories(ctx, seed.Categories); err != nil {
		s.log.Error().Err(err).Msg("uploading categories failed")
	}

	s.enterGroup(ctx, grp, displayName)
	return grp, s.StartGroupSync(ctx)
}

// JoinGroup adds the current identity to the group with code and starts
// syncing. Local solo data is replaced by the group's shared data.
func (s *Store) JoinGroup(ctx context.Context, code, displayName string) (domain.Group, error) {
	if s.remote == nil {
		return domain.Group{}, ErrGroupsDisabled
	}
	code, err := domain.NormalizeGroupCode(code)
	if err != nil {
		return domain.Group{}, err
	}
	s.mu.Lock()
	inGroup := s.state.GroupCode != ""
	s.mu.Unlock()
	if inGroup {
		return domain.Group{}, ErrAlreadyInGroup
	}

	grp, err := s.remote.JoinGroup(ctx, code, displayName)
	if err != nil {
		return domain.Group{}, fmt.Errorf("joining group %s: %w", code, err)
	}
	s.enterGroup(ctx, grp, displayName)
	return grp, s.StartGroupSync(ctx)
}

// enterGroup records membership and persists it right away.
func (s *Store) enterGroup(ctx context.Context, grp domain.Group, displayName string) {
	s.mutate(func(st *State) bool {
		st.GroupCode = grp.Code
		st.Group = grp.Clone()
		if displayName != "" {
			st.DisplayName = displayName
		}
		return true
	})
	_ = s.persist(ctx, KindGroup)
}

// DisconnectGroup leaves the group and returns to solo mode keeping only
// what the current identity owns. Subscriptions are cancelled before the
// owned records are fetched so no late snapshot can overwrite the result.
// When the fetch fails the budgets, todos and accounts are cleared instead
// of keeping a partial mix.
func (s *Store) DisconnectGroup(ctx context.Context) error {
	if s.remote == nil {
		return ErrGroupsDisabled
	}
	s.mu.Lock()
	code := s.state.GroupCode
	uid := s.state.Identity
	accounts := slices.Clone(s.state.Accounts)
	if code == "" {
		s.mu.Unlock()
		return ErrNotInGroup
	}
	s.leaving = true
	s.syncGen++
	subs, cancel := s.takeSubscriptionsLocked()
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.leaving = false
		s.mu.Unlock()
	}()
	stopSubscriptions(subs, cancel)

	var fetchErr error
	if uid == "" {
		uid, fetchErr = s.remote.Identity(ctx)
	}
	var (
		budgets []domain.BudgetEntry
		todos   []domain.Todo
	)
	if fetchErr == nil {
		budgets, fetchErr = s.remote.FetchBudgetsByAuthor(ctx, code, uid)
	}
	if fetchErr == nil {
		todos, fetchErr = s.remote.FetchTodosByAuthor(ctx, code, uid)
	}

	mine := make([]domain.Account, 0, len(accounts))
	if fetchErr != nil {
		s.log.Error().Err(fetchErr).Str("code", code).Msg("fetching own records failed; clearing shared collections")
		budgets, todos = []domain.BudgetEntry{}, []domain.Todo{}
		mine = append(mine, domain.Account{Name: domain.DefaultAccount})
	} else {
		for _, a := range accounts {
			if a.OwnedBy(uid) {
				mine = append(mine, a)
			}
		}
		if indexOf(mine, domain.DefaultAccount, accountsCollection.key) < 0 {
			mine = append([]domain.Account{{Name: domain.DefaultAccount, OwnerID: uid}}, mine...)
		}
	}

	if err := s.remote.LeaveGroup(ctx); err != nil {
		s.log.Error().Err(err).Str("code", code).Msg("leaving group failed")
	}
	s.remote.Unbind()

	solo := s.writersFor(domain.ModeSolo)
	s.mutate(func(st *State) bool {
		st.Budgets = budgets
		st.Todos = todos
		st.Accounts = mine
		st.Mode = domain.ModeSolo
		st.Status = domain.SyncDisconnected
		st.GroupCode = ""
		st.Group = domain.Group{}
		s.writers = solo
		clear(s.claimed)
		return true
	})
	kinds := []Kind{KindBudgets, KindTodos, KindAccounts, KindGroup}
	s.deb.cancel(kinds...)
	if err := s.persist(ctx, kinds...); err != nil {
		return fmt.Errorf("saving solo data: %w", err)
	}
	s.log.Info().Str("code", code).
		Int("budgets", len(budgets)).
		Int("todos", len(todos)).
		Int("accounts", len(mine)).
		Msg("left group")

	s.materializeSavings()
	if fetchErr != nil {
		return fmt.Errorf("fetching own records: %w", fetchErr)
	}
	return nil
}

// UpdateProfile changes the display name and, in group mode, the member
// entry other members see.
func (s *Store) UpdateProfile(ctx context.Context, displayName, color string) error {
	s.mu.Lock()
	grouped := s.state.Mode == domain.ModeGroup
	s.mu.Unlock()
	if grouped {
		if err := s.remote.UpdateMember(ctx, displayName, color); err != nil {
			return fmt.Errorf("updating member profile: %w", err)
		}
	}
	s.mutate(func(st *State) bool {
		if st.DisplayName == displayName {
			return false
		}
		st.DisplayName = displayName
		return true
	}, KindGroup)
	return nil
}

func (s *Store) setStatus(status domain.SyncStatus) {
	s.mutate(func(st *State) bool {
		if st.Status == status {
			return false
		}
		st.Status = status
		return true
	})
}

// takeSubscriptionsLocked detaches the active listeners. The caller stops
// them after releasing the lock.
func (s *Store) takeSubscriptionsLocked() ([]docstore.Unsubscribe, context.CancelFunc) {
	subs, cancel := s.subs, s.syncCancel
	s.subs, s.syncCancel = nil, nil
	s.ready.release()
	s.ready = nil
	return subs, cancel
}

func stopSubscriptions(subs []docstore.Unsubscribe, cancel context.CancelFunc) {
	for _, unsub := range subs {
		unsub()
	}
	if cancel != nil {
		cancel()
	}
}
