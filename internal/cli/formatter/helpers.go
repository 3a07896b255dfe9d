package formatter

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/alexanderramin/hearth/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// RenderBox wraps content in a rounded-border box with an optional title.
func RenderBox(title string, content string) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorDim).
		PaddingLeft(2).
		PaddingRight(2).
		PaddingTop(1).
		PaddingBottom(1)

	if title != "" {
		return boxStyle.Render(StyleHeader.Render(strings.ToUpper(title)) + "\n\n" + content)
	}
	return boxStyle.Render(content)
}

// RelativeDateFrom returns a human-friendly relative date string from a
// reference time.
func RelativeDateFrom(t time.Time, now time.Time) string {
	days := int(math.Round(domain.DateOf(t).Sub(domain.DateOf(now)).Hours() / 24))

	switch {
	case days == 0:
		return "Today"
	case days == 1:
		return "Tomorrow"
	case days == -1:
		return "Yesterday"
	case days > 0 && days < 14:
		return fmt.Sprintf("In %dd", days)
	case days > 0 && days < 60:
		return fmt.Sprintf("In %dw", days/7)
	case days > 0:
		return fmt.Sprintf("In %dmo", days/30)
	case days > -14:
		return fmt.Sprintf("%dd ago", -days)
	case days > -60:
		return fmt.Sprintf("%dw ago", -days/7)
	default:
		return fmt.Sprintf("%dmo ago", -days/30)
	}
}

// ScheduleLabel describes when a todo appears, e.g. "every MON" or
// "until 2024-06-30".
func ScheduleLabel(s domain.Schedule) string {
	switch v := s.(type) {
	case domain.Weekly:
		return "every " + domain.WeekdayTag(v.Weekday)
	case domain.MonthlyDay:
		return fmt.Sprintf("monthly on %d", v.Day)
	case domain.Deadline:
		return "until " + v.Date.Format(domain.DateLayout)
	case domain.OnDate:
		return "on " + v.Date.Format(domain.DateLayout)
	case domain.DateRange:
		return v.Start.Format(domain.DateLayout) + " → " + v.End.Format(domain.DateLayout)
	default:
		return "--"
	}
}

// TruncID returns the first 8 characters of an ID, dimmed.
func TruncID(id string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	return StyleDim.Render(id)
}

// orDash renders empty strings as a dimmed "--".
func orDash(s string) string {
	if s == "" {
		return StyleDim.Render("--")
	}
	return s
}
