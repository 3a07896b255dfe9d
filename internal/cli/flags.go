package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/hearth/internal/domain"
	"github.com/spf13/pflag"
)

var (
	_ pflag.Value = (*dateValue)(nil)
	_ pflag.Value = (*monthValue)(nil)
	_ pflag.Value = (*weekdayValue)(nil)
)

// dateValue is a YYYY-MM-DD flag. The zero time means unset.
type dateValue struct{ t *time.Time }

func newDateValue(p *time.Time) *dateValue { return &dateValue{t: p} }

func (d *dateValue) String() string {
	if d.t == nil || d.t.IsZero() {
		return ""
	}
	return d.t.Format(domain.DateLayout)
}

func (d *dateValue) Set(s string) error {
	t, err := domain.ParseDate(strings.TrimSpace(s))
	if err != nil {
		return err
	}
	*d.t = t
	return nil
}

func (d *dateValue) Type() string { return "date" }

// monthValue is a YYYY-MM flag.
type monthValue struct{ m *string }

func newMonthValue(p *string) *monthValue { return &monthValue{m: p} }

func (v *monthValue) String() string { return *v.m }

func (v *monthValue) Set(s string) error {
	s = strings.TrimSpace(s)
	if err := domain.ValidateMonthKey(s); err != nil {
		return err
	}
	*v.m = s
	return nil
}

func (v *monthValue) Type() string { return "month" }

// weekdayValue accepts MON..SUN or an English weekday name.
type weekdayValue struct {
	d   *time.Weekday
	set bool
}

func (v *weekdayValue) String() string {
	if !v.set {
		return ""
	}
	return domain.WeekdayTag(*v.d)
}

func (v *weekdayValue) Set(s string) error {
	d, err := domain.ParseWeekday(s)
	if err != nil {
		return err
	}
	*v.d = d
	v.set = true
	return nil
}

func (v *weekdayValue) Type() string { return "weekday" }

// resolveID matches input against item IDs: exact match first, then a
// unique prefix.
func resolveID[T any](items []T, id func(T) string, input, what string) (string, error) {
	if input == "" {
		return "", fmt.Errorf("%s ID is required", what)
	}
	for _, it := range items {
		if id(it) == input {
			return input, nil
		}
	}
	var matches []string
	for _, it := range items {
		if strings.HasPrefix(id(it), input) {
			matches = append(matches, id(it))
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%s not found: %q", what, input)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%s ID prefix %q is ambiguous (%d matches)", what, input, len(matches))
	}
}

// notFound turns an update or delete that matched nothing into an error.
func notFound(ok bool, err error, what, id string) error {
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s not found: %q", what, id)
	}
	return nil
}
