package store

import (
	"slices"

	"github.com/alexanderramin/hearth/internal/domain"
	"github.com/google/uuid"
)

// materializeSavings appends a ledger entry for every installment payment
// that is due but missing. It only runs in solo mode; in a group every
// member's client would otherwise generate the same payments. Returns the
// number of entries added.
func (s *Store) materializeSavings() int {
	now := s.now()
	added := 0
	s.mutate(func(st *State) bool {
		if st.Mode != domain.ModeSolo {
			return false
		}
		missing := domain.MissingSavingsPayments(st.Savings, st.Budgets, now)
		if len(missing) == 0 {
			return false
		}
		for i := range missing {
			missing[i].ID = uuid.NewString()
			missing[i].CreatedAt = now.UTC()
		}
		st.Budgets = append(slices.Clone(st.Budgets), missing...)
		added = len(missing)
		return true
	}, KindBudgets)
	if added > 0 {
		s.log.Info().Int("entries", added).Msg("materialized savings payments")
	}
	return added
}

// MaterializeSavings runs the savings payment scan on demand.
func (s *Store) MaterializeSavings() int {
	return s.materializeSavings()
}
