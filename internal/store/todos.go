package store

import (
	"context"
	"time"

	"github.com/alexanderramin/hearth/internal/domain"
	"github.com/google/uuid"
)

// AddTodo assigns an id and creation time when missing, validates t and
// hands it to the active writer. In group mode the todo appears once the
// subscription delivers it.
func (s *Store) AddTodo(ctx context.Context, t domain.Todo) (domain.Todo, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = s.now().UTC()
	}
	if err := t.Validate(); err != nil {
		return domain.Todo{}, err
	}
	if err := addItem(ctx, s, todosCollection, s.currentWriters().todos, t); err != nil {
		return domain.Todo{}, err
	}
	return t, nil
}

// UpdateTodo applies fn to the todo with id. Assigning a new Schedule
// replaces every kind-specific field at once.
func (s *Store) UpdateTodo(ctx context.Context, id string, fn func(*domain.Todo)) (bool, error) {
	return updateItem(ctx, s, todosCollection, s.currentWriters().todos, id, fn, (*domain.Todo).Validate)
}

func (s *Store) DeleteTodo(ctx context.Context, id string) (bool, error) {
	return deleteItem(ctx, s, todosCollection, s.currentWriters().todos, id)
}

// ToggleTodo flips the completion flag of the todo with id.
func (s *Store) ToggleTodo(ctx context.Context, id string) (bool, error) {
	return s.UpdateTodo(ctx, id, func(t *domain.Todo) {
		t.Completed = !t.Completed
	})
}

// TodosOn returns the todos placed on day's calendar cell.
func (s *Store) TodosOn(day time.Time) []domain.Todo {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Todo
	for _, t := range s.state.Todos {
		if t.OccursOn(day) {
			out = append(out, t)
		}
	}
	return out
}
