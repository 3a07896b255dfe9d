package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/hearth/internal/binding"
)

// FormatGroupStatus renders the mode, connection state and member list.
func FormatGroupStatus(g binding.Group, identity string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s\n", ModeBadge(g.Mode), StatusIndicator(g.Status))

	if g.Code == "" {
		b.WriteString(Dim("Not in a group. Create one with 'hearth group create' or join with 'hearth group join CODE'."))
		return RenderBox("Group", b.String())
	}

	name := g.Group.Name
	if name == "" {
		name = "Shared"
	}
	fmt.Fprintf(&b, "\n%s %s\n", Bold(name), StyleYellow.Render(g.Code))

	if len(g.Group.Members) > 0 {
		b.WriteString("\n")
		for _, uid := range g.Group.Members {
			label := MemberStyle(g.Group.MemberColors[uid]).Render("● " + g.Group.MemberName(uid))
			if uid == identity {
				label += Dim(" (you)")
			}
			b.WriteString("  " + label + "\n")
		}
	}
	return RenderBox("Group", strings.TrimRight(b.String(), "\n"))
}
