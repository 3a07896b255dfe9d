package formatter

import (
	"slices"
	"strconv"
	"strings"

	"github.com/alexanderramin/hearth/internal/domain"
)

// FormatTodoList renders todos as a table. Completed todos sort last. In a
// group the author column shows the member's display name in their color.
func FormatTodoList(todos []domain.Todo, grp domain.Group) string {
	sorted := slices.Clone(todos)
	slices.SortStableFunc(sorted, func(a, b domain.Todo) int {
		if a.Completed != b.Completed {
			if a.Completed {
				return 1
			}
			return -1
		}
		return a.CreatedAt.Compare(b.CreatedAt)
	})

	withAuthor := slices.ContainsFunc(sorted, func(t domain.Todo) bool { return t.AuthorID != "" })
	headers := []string{"ID", "", "TITLE", "WHEN"}
	if withAuthor {
		headers = append(headers, "BY")
	}

	rows := make([][]string, 0, len(sorted))
	for _, t := range sorted {
		check, title := StyleDim.Render("○"), t.Title
		if t.Completed {
			check, title = StyleGreen.Render("✔"), StyleDim.Render(t.Title)
		}
		row := []string{TruncID(t.ID), check, title, StyleBlue.Render(ScheduleLabel(t.Schedule))}
		if withAuthor {
			row = append(row, memberLabel(grp, t.AuthorID))
		}
		rows = append(rows, row)
	}
	return RenderTable(headers, rows)
}

// TodoCounts summarizes open and done todos, e.g. "3 open · 1 done".
func TodoCounts(todos []domain.Todo) string {
	done := 0
	for _, t := range todos {
		if t.Completed {
			done++
		}
	}
	return strings.Join([]string{
		Bold(strconv.Itoa(len(todos)-done)) + " open",
		Dim(strconv.Itoa(done) + " done"),
	}, Dim(" · "))
}

func memberLabel(grp domain.Group, uid string) string {
	if uid == "" {
		return orDash("")
	}
	return MemberStyle(grp.MemberColors[uid]).Render(grp.MemberName(uid))
}
