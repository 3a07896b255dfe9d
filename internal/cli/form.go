package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/hearth/internal/cli/formatter"
	"github.com/alexanderramin/hearth/internal/domain"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

func hearthHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorGreen)
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

// runTodoForm asks for a title and a schedule on the terminal.
func runTodoForm(today time.Time) (string, domain.Schedule, error) {
	var title, when string
	kind := string(domain.ScheduleOnDate)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Value(&title).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("title is required")
					}
					return nil
				}),
			huh.NewSelect[string]().
				Title("Repeat").
				Options(
					huh.NewOption("Once", string(domain.ScheduleOnDate)),
					huh.NewOption("Every week", string(domain.ScheduleWeekly)),
					huh.NewOption("Every month", string(domain.ScheduleMonthlyDay)),
					huh.NewOption("Until a deadline", string(domain.ScheduleDeadline)),
				).
				Value(&kind),
		),
		huh.NewGroup(
			huh.NewInput().
				TitleFunc(func() string { return scheduleQuestion(domain.ScheduleKind(kind)) }, &kind).
				Placeholder(today.Format(domain.DateLayout)).
				Value(&when).
				Validate(func(s string) error {
					_, err := parseScheduleAnswer(domain.ScheduleKind(kind), s, today)
					return err
				}),
		),
	).WithTheme(hearthHuhTheme()).WithShowHelp(false)

	if err := form.Run(); err != nil {
		return "", nil, err
	}
	sched, err := parseScheduleAnswer(domain.ScheduleKind(kind), when, today)
	return strings.TrimSpace(title), sched, err
}

func scheduleQuestion(kind domain.ScheduleKind) string {
	switch kind {
	case domain.ScheduleWeekly:
		return "Weekday (MON..SUN)"
	case domain.ScheduleMonthlyDay:
		return "Day of month (1-31)"
	case domain.ScheduleDeadline:
		return "Deadline (YYYY-MM-DD)"
	default:
		return "Date (YYYY-MM-DD, blank for today)"
	}
}

// parseScheduleAnswer turns a form answer into a schedule. A blank date
// means today.
func parseScheduleAnswer(kind domain.ScheduleKind, answer string, today time.Time) (domain.Schedule, error) {
	answer = strings.TrimSpace(answer)
	switch kind {
	case domain.ScheduleWeekly:
		wd, err := domain.ParseWeekday(answer)
		if err != nil {
			return nil, err
		}
		return domain.Weekly{Weekday: wd}, nil
	case domain.ScheduleMonthlyDay:
		day, err := strconv.Atoi(answer)
		if err != nil || day < 1 || day > 31 {
			return nil, fmt.Errorf("day must be 1-31")
		}
		return domain.MonthlyDay{Day: day}, nil
	}

	d := domain.DateOf(today)
	if answer != "" {
		var err error
		if d, err = domain.ParseDate(answer); err != nil {
			return nil, fmt.Errorf("use YYYY-MM-DD format")
		}
	}
	if kind == domain.ScheduleDeadline {
		return domain.Deadline{Date: d}, nil
	}
	return domain.OnDate{Date: d}, nil
}
