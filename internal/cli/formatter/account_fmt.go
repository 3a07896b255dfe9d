package formatter

import (
	"fmt"

	"github.com/alexanderramin/hearth/internal/analytics"
	"github.com/alexanderramin/hearth/internal/binding"
	"github.com/alexanderramin/hearth/internal/domain"
)

// FormatAccounts renders accounts with their running balances. When an
// identity is set, accounts owned by another member are labelled with the
// owner's name and cannot be edited from this device.
func FormatAccounts(v binding.Accounts, grp domain.Group) string {
	headers := []string{"ACCOUNT", "BALANCE", "INITIAL"}
	if v.Identity != "" {
		headers = append(headers, "OWNER")
	}

	var total int64
	rows := make([][]string, 0, len(v.Accounts)+1)
	for _, a := range v.Accounts {
		bal := v.Balances[a.Name]
		total += bal
		name := a.Name
		if a.Name == domain.DefaultAccount {
			name = Bold(name)
		}
		row := []string{
			name,
			AmountStyle(bal).Render(analytics.FormatWon(bal)),
			Dim(analytics.FormatWon(a.InitialBalance)),
		}
		if v.Identity != "" {
			owner := StyleGreen.Render("me")
			if !a.OwnedBy(v.Identity) {
				owner = memberLabel(grp, a.OwnerID)
			}
			row = append(row, owner)
		}
		rows = append(rows, row)
	}

	out := RenderAlignedTable(headers, []Align{AlignLeft, AlignRight, AlignRight}, rows)
	return out + fmt.Sprintf("%s %s\n", Dim("Total"), Bold(analytics.FormatWon(total)))
}
