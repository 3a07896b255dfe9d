package store

import (
	"context"
	"errors"
)

// ErrKeyChanged is returned when an updater rewrites the item's identity.
var ErrKeyChanged = errors.New("item identity cannot change")

func addItem[T any](ctx context.Context, s *Store, c collection[T], w writer[T], v T) error {
	if err := w.add(ctx, v); err != nil {
		s.logWriteFailure(c.kind, "add", c.key(v), err)
		return err
	}
	return nil
}

// updateItem applies fn to a copy of the item with id and writes the
// result. A missing id is a silent no-op reported as false.
func updateItem[T any](ctx context.Context, s *Store, c collection[T], w writer[T], id string, fn func(*T), check func(*T) error) (bool, error) {
	cur, ok := c.find(s, id)
	if !ok {
		return false, nil
	}
	next := cur
	fn(&next)
	if c.key(next) != id {
		return false, ErrKeyChanged
	}
	if check != nil {
		if err := check(&next); err != nil {
			return false, err
		}
	}
	if err := w.update(ctx, next); err != nil {
		s.logWriteFailure(c.kind, "update", id, err)
		return false, err
	}
	return true, nil
}

// deleteItem removes the item with id. Missing ids are ignored.
func deleteItem[T any](ctx context.Context, s *Store, c collection[T], w writer[T], id string) (bool, error) {
	cur, ok := c.find(s, id)
	if !ok {
		return false, nil
	}
	if err := w.remove(ctx, cur); err != nil {
		s.logWriteFailure(c.kind, "delete", id, err)
		return false, err
	}
	return true, nil
}

func (s *Store) logWriteFailure(k Kind, op, id string, err error) {
	s.log.Error().Err(err).
		Str("kind", string(k)).
		Str("op", op).
		Str("id", id).
		Msg("write failed")
}
