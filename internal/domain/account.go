package domain

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidAccount = errors.New("invalid account")

// Account is a named money bucket. OwnerID is tracked only in group mode.
type Account struct {
	Name           string `json:"name"`
	InitialBalance int64  `json:"initialBalance"`
	OwnerID        string `json:"ownerId,omitempty"`
}

func (a *Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidAccount)
	}
	// Names double as remote document ids.
	if strings.Contains(a.Name, "/") {
		return fmt.Errorf("%w: name %q cannot contain '/'", ErrInvalidAccount, a.Name)
	}
	return nil
}

// OwnedBy reports whether the account belongs to uid. Accounts without a
// recorded owner predate ownership tracking and count as everyone's own.
func (a Account) OwnedBy(uid string) bool {
	return a.OwnerID == "" || a.OwnerID == uid
}

// RunningBalance is the initial balance plus every signed entry that
// references the account.
func RunningBalance(a Account, entries []BudgetEntry) int64 {
	bal := a.InitialBalance
	for _, e := range entries {
		if e.Account == a.Name {
			bal += e.Signed()
		}
	}
	return bal
}

// Balances computes RunningBalance for every account in one pass.
func Balances(accounts []Account, entries []BudgetEntry) map[string]int64 {
	out := make(map[string]int64, len(accounts))
	for _, a := range accounts {
		out[a.Name] = a.InitialBalance
	}
	for _, e := range entries {
		if _, ok := out[e.Account]; ok {
			out[e.Account] += e.Signed()
		}
	}
	return out
}
