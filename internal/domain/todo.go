package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidTodo     = errors.New("invalid todo")
	ErrInvalidSchedule = errors.New("invalid schedule")
)

// Schedule is the sealed set of ways a todo can be placed on the calendar.
// Each variant carries exactly the fields relevant to its kind, so switching
// kinds replaces the whole value and nothing from the old kind survives.
type Schedule interface {
	Kind() ScheduleKind
	// OccursOn reports whether the todo should appear on the given civil date.
	OccursOn(day time.Time) bool
	validate() error
}

// Weekly repeats every week on the same weekday.
type Weekly struct {
	Weekday time.Weekday
}

// MonthlyDay repeats on a day of the month. Days past the end of a short
// month fall on its last day.
type MonthlyDay struct {
	Day int
}

// Deadline is shown on every day up to and including Date.
type Deadline struct {
	Date time.Time
}

// OnDate is shown on a single day.
type OnDate struct {
	Date time.Time
}

// DateRange spans Start through End inclusive.
type DateRange struct {
	Start time.Time
	End   time.Time
}

func (Weekly) Kind() ScheduleKind     { return ScheduleWeekly }
func (MonthlyDay) Kind() ScheduleKind { return ScheduleMonthlyDay }
func (Deadline) Kind() ScheduleKind   { return ScheduleDeadline }
func (OnDate) Kind() ScheduleKind     { return ScheduleOnDate }
func (DateRange) Kind() ScheduleKind  { return ScheduleDateRange }

func (s Weekly) OccursOn(day time.Time) bool { return day.Weekday() == s.Weekday }

func (s MonthlyDay) OccursOn(day time.Time) bool {
	return ClampedDate(day.Year(), day.Month(), s.Day).Day() == day.Day()
}

func (s Deadline) OccursOn(day time.Time) bool { return !DateOf(day).After(DateOf(s.Date)) }

func (s OnDate) OccursOn(day time.Time) bool { return DateOf(day).Equal(DateOf(s.Date)) }

func (s DateRange) OccursOn(day time.Time) bool {
	d := DateOf(day)
	return !d.Before(DateOf(s.Start)) && !d.After(DateOf(s.End))
}

func (s Weekly) validate() error {
	if s.Weekday < time.Sunday || s.Weekday > time.Saturday {
		return fmt.Errorf("%w: weekday %d out of range", ErrInvalidSchedule, s.Weekday)
	}
	return nil
}

func (s MonthlyDay) validate() error {
	if s.Day < 1 || s.Day > 31 {
		return fmt.Errorf("%w: day of month %d must be 1-31", ErrInvalidSchedule, s.Day)
	}
	return nil
}

func (s Deadline) validate() error {
	if s.Date.IsZero() {
		return fmt.Errorf("%w: deadline date is required", ErrInvalidSchedule)
	}
	return nil
}

func (s OnDate) validate() error {
	if s.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidSchedule)
	}
	return nil
}

func (s DateRange) validate() error {
	if s.Start.IsZero() || s.End.IsZero() {
		return fmt.Errorf("%w: range needs start and end dates", ErrInvalidSchedule)
	}
	if s.End.Before(s.Start) {
		return fmt.Errorf("%w: range ends before it starts", ErrInvalidSchedule)
	}
	return nil
}

type Todo struct {
	ID        string
	Title     string
	Schedule  Schedule
	Completed bool
	CreatedAt time.Time
	// AuthorID is only set in group mode.
	AuthorID string
}

func (t *Todo) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidTodo)
	}
	if t.Schedule == nil {
		return fmt.Errorf("%w: schedule is required", ErrInvalidTodo)
	}
	return t.Schedule.validate()
}

// OccursOn reports whether the todo belongs on the given day's calendar cell.
func (t *Todo) OccursOn(day time.Time) bool {
	if t.Schedule == nil {
		return false
	}
	return t.Schedule.OccursOn(day)
}

var weekdayTags = [...]string{"SUN", "MON", "TUE", "WED", "THU", "FRI", "SAT"}

// WeekdayTag returns the three-letter tag stored for a weekday.
func WeekdayTag(d time.Weekday) string {
	if d < time.Sunday || d > time.Saturday {
		return ""
	}
	return weekdayTags[d]
}

// ParseWeekday accepts a weekday tag ("MON") or an English weekday name.
func ParseWeekday(s string) (time.Weekday, error) {
	up := strings.ToUpper(strings.TrimSpace(s))
	for i, tag := range weekdayTags {
		if up == tag || (len(up) > 3 && strings.HasPrefix(up, tag)) {
			return time.Weekday(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown weekday %q", ErrInvalidSchedule, s)
}

// TodoRecord is the flat persisted form of a Todo. Only the fields of the
// record's Type are populated; the rest are left empty and omitted.
type TodoRecord struct {
	ID        string       `json:"id"`
	Title     string       `json:"title"`
	Type      ScheduleKind `json:"type"`
	Weekday   string       `json:"weekday,omitempty"`
	Day       int          `json:"day,omitempty"`
	Deadline  string       `json:"deadline,omitempty"`
	Date      string       `json:"date,omitempty"`
	StartDate string       `json:"startDate,omitempty"`
	EndDate   string       `json:"endDate,omitempty"`
	Completed bool         `json:"completed"`
	CreatedAt time.Time    `json:"createdAt"`
	AuthorID  string       `json:"authorId,omitempty"`
}

// Record flattens the todo for storage.
func (t Todo) Record() TodoRecord {
	r := TodoRecord{
		ID:        t.ID,
		Title:     t.Title,
		Completed: t.Completed,
		CreatedAt: t.CreatedAt,
		AuthorID:  t.AuthorID,
	}
	switch s := t.Schedule.(type) {
	case Weekly:
		r.Type = ScheduleWeekly
		r.Weekday = WeekdayTag(s.Weekday)
	case MonthlyDay:
		r.Type = ScheduleMonthlyDay
		r.Day = s.Day
	case Deadline:
		r.Type = ScheduleDeadline
		r.Deadline = s.Date.Format(DateLayout)
	case OnDate:
		r.Type = ScheduleOnDate
		r.Date = s.Date.Format(DateLayout)
	case DateRange:
		r.Type = ScheduleDateRange
		r.StartDate = s.Start.Format(DateLayout)
		r.EndDate = s.End.Format(DateLayout)
	}
	return r
}

// TodoFromRecord rebuilds a Todo, reading only the fields that belong to the
// record's Type. Leftover fields of another kind are ignored.
func TodoFromRecord(r TodoRecord) (Todo, error) {
	t := Todo{
		ID:        r.ID,
		Title:     r.Title,
		Completed: r.Completed,
		CreatedAt: r.CreatedAt,
		AuthorID:  r.AuthorID,
	}
	switch r.Type {
	case ScheduleWeekly:
		wd, err := ParseWeekday(r.Weekday)
		if err != nil {
			return Todo{}, err
		}
		t.Schedule = Weekly{Weekday: wd}
	case ScheduleMonthlyDay:
		t.Schedule = MonthlyDay{Day: r.Day}
	case ScheduleDeadline:
		d, err := ParseDate(r.Deadline)
		if err != nil {
			return Todo{}, fmt.Errorf("%w: %v", ErrInvalidSchedule, err)
		}
		t.Schedule = Deadline{Date: d}
	case ScheduleOnDate:
		d, err := ParseDate(r.Date)
		if err != nil {
			return Todo{}, fmt.Errorf("%w: %v", ErrInvalidSchedule, err)
		}
		t.Schedule = OnDate{Date: d}
	case ScheduleDateRange:
		start, err := ParseDate(r.StartDate)
		if err != nil {
			return Todo{}, fmt.Errorf("%w: %v", ErrInvalidSchedule, err)
		}
		end, err := ParseDate(r.EndDate)
		if err != nil {
			return Todo{}, fmt.Errorf("%w: %v", ErrInvalidSchedule, err)
		}
		t.Schedule = DateRange{Start: start, End: end}
	default:
		return Todo{}, fmt.Errorf("%w: unknown schedule type %q", ErrInvalidSchedule, r.Type)
	}
	if err := t.Validate(); err != nil {
		return Todo{}, err
	}
	return t, nil
}
