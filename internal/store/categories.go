package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/alexanderramin/hearth/internal/domain"
)

var errEmptyCategory = errors.New("category name is required")

// updateCategories applies fn to a copy of the settings and writes the
// result when fn reports a change.
func (s *Store) updateCategories(ctx context.Context, fn func(c *domain.CategorySettings) (bool, error)) (bool, error) {
	s.mu.Lock()
	next := s.state.Categories.Clone()
	s.mu.Unlock()

	changed, err := fn(&next)
	if err != nil || !changed {
		return false, err
	}
	next.Normalize()
	if err := s.currentWriters().categories.save(ctx, next); err != nil {
		s.logWriteFailure(KindCategories, "save", "", err)
		return false, err
	}
	return true, nil
}

func (s *Store) AddCategory(ctx context.Context, name string) (bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return false, errEmptyCategory
	}
	return s.updateCategories(ctx, func(c *domain.CategorySettings) (bool, error) {
		if slices.Contains(c.Categories, name) {
			return false, nil
		}
		c.Categories = append(c.Categories, name)
		return true, nil
	})
}

// DeleteCategory removes name from both the category and fixed sets.
func (s *Store) DeleteCategory(ctx context.Context, name string) (bool, error) {
	return s.updateCategories(ctx, func(c *domain.CategorySettings) (bool, error) {
		i := slices.Index(c.Categories, name)
		if i < 0 {
			return false, nil
		}
		c.Categories = slices.Delete(c.Categories, i, i+1)
		c.FixedCategories = slices.DeleteFunc(c.FixedCategories, func(f string) bool { return f == name })
		return true, nil
	})
}

// SetFixedCategory marks or unmarks an existing category as a fixed expense.
func (s *Store) SetFixedCategory(ctx context.Context, name string, fixed bool) (bool, error) {
	return s.updateCategories(ctx, func(c *domain.CategorySettings) (bool, error) {
		if !slices.Contains(c.Categories, name) {
			return false, fmt.Errorf("%w: %q", ErrUnknownCategory, name)
		}
		if c.IsFixed(name) == fixed {
			return false, nil
		}
		if fixed {
			c.FixedCategories = append(c.FixedCategories, name)
		} else {
			c.FixedCategories = slices.DeleteFunc(c.FixedCategories, func(f string) bool { return f == name })
		}
		return true, nil
	})
}

// SetMonthlyGoal sets the expense ceiling for month ("YYYY-MM"). A
// non-positive amount removes the goal.
func (s *Store) SetMonthlyGoal(ctx context.Context, month string, amount int64) (bool, error) {
	if err := domain.ValidateMonthKey(month); err != nil {
		return false, err
	}
	return s.updateCategories(ctx, func(c *domain.CategorySettings) (bool, error) {
		cur, ok := c.MonthlyGoals[month]
		if amount <= 0 {
			if !ok {
				return false, nil
			}
			delete(c.MonthlyGoals, month)
			return true, nil
		}
		if ok && cur == amount {
			return false, nil
		}
		c.MonthlyGoals[month] = amount
		return true, nil
	})
}
