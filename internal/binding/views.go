package binding

import (
	"github.com/alexanderramin/hearth/internal/domain"
	"github.com/alexanderramin/hearth/internal/store"
)

// Ledger is what the budget screens depend on.
type Ledger struct {
	Budgets    []domain.BudgetEntry
	Categories domain.CategorySettings
}

// Accounts carries the accounts with their derived balances and the
// identity needed to tell own accounts from shared ones.
type Accounts struct {
	Accounts []domain.Account
	Balances map[string]int64
	Identity string
}

// Mine reports whether the account called name belongs to the current
// identity.
func (a Accounts) Mine(name string) bool {
	for _, acc := range a.Accounts {
		if acc.Name == name {
			return acc.OwnedBy(a.Identity)
		}
	}
	return false
}

type Group struct {
	Mode        domain.Mode
	Status      domain.SyncStatus
	Code        string
	Group       domain.Group
	DisplayName string
}

type Portfolio struct {
	Investments []domain.Investment
	Savings     []domain.Savings
}

func TodosView(src Source) *View[[]domain.Todo] {
	return NewView(src, func(st store.State) []domain.Todo { return st.Todos })
}

func LedgerView(src Source) *View[Ledger] {
	return NewView(src, func(st store.State) Ledger {
		return Ledger{Budgets: st.Budgets, Categories: st.Categories}
	})
}

func AccountsView(src Source) *View[Accounts] {
	return NewView(src, func(st store.State) Accounts {
		return Accounts{
			Accounts: st.Accounts,
			Balances: domain.Balances(st.Accounts, st.Budgets),
			Identity: st.Identity,
		}
	})
}

func GroupView(src Source) *View[Group] {
	return NewView(src, func(st store.State) Group {
		return Group{
			Mode:        st.Mode,
			Status:      st.Status,
			Code:        st.GroupCode,
			Group:       st.Group,
			DisplayName: st.DisplayName,
		}
	})
}

func PortfolioView(src Source) *View[Portfolio] {
	return NewView(src, func(st store.State) Portfolio {
		return Portfolio{Investments: st.Investments, Savings: st.Savings}
	})
}
