package formatter

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/alexanderramin/hearth/internal/domain"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

func stripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestRelativeDateFrom(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		input time.Time
		want  string
	}{
		{"today", now, "Today"},
		{"today earlier clock", date(2024, 6, 15), "Today"},
		{"tomorrow", now.Add(24 * time.Hour), "Tomorrow"},
		{"yesterday", now.Add(-24 * time.Hour), "Yesterday"},
		{"3 days future", now.Add(3 * 24 * time.Hour), "In 3d"},
		{"3 days past", now.Add(-3 * 24 * time.Hour), "3d ago"},
		{"3 weeks future", now.Add(21 * 24 * time.Hour), "In 3w"},
		{"3 months future", now.Add(90 * 24 * time.Hour), "In 3mo"},
		{"2 weeks past", now.Add(-14 * 24 * time.Hour), "2w ago"},
		{"3 months past", now.Add(-90 * 24 * time.Hour), "3mo ago"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RelativeDateFrom(tt.input, now))
		})
	}
}

func TestScheduleLabel(t *testing.T) {
	tests := []struct {
		schedule domain.Schedule
		want     string
	}{
		{domain.Weekly{Weekday: time.Monday}, "every MON"},
		{domain.MonthlyDay{Day: 31}, "monthly on 31"},
		{domain.Deadline{Date: date(2024, 6, 30)}, "until 2024-06-30"},
		{domain.OnDate{Date: date(2024, 7, 1)}, "on 2024-07-01"},
		{domain.DateRange{Start: date(2024, 6, 1), End: date(2024, 6, 3)}, "2024-06-01 → 2024-06-03"},
		{nil, "--"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, ScheduleLabel(tt.schedule))
		})
	}
}

func TestStatusIndicator(t *testing.T) {
	assert.Contains(t, StatusIndicator(domain.SyncConnected), "CONNECTED")
	assert.Contains(t, StatusIndicator(domain.SyncConnecting), "CONNECTING")
	assert.Contains(t, StatusIndicator(domain.SyncDisconnected), "DISCONNECTED")
	assert.Contains(t, ModeBadge(domain.ModeGroup), "GROUP")
	assert.Contains(t, ModeBadge(domain.ModeSolo), "SOLO")
}

func TestTruncID(t *testing.T) {
	got := TruncID("a1b2c3d4-e5f6-7890-abcd-ef1234567890")
	assert.Contains(t, got, "a1b2c3d4")
	assert.NotContains(t, got, "e5f6")

	assert.Contains(t, TruncID("short"), "short")
}

func TestHeader_UnderlinesVisibleWidth(t *testing.T) {
	lines := strings.Split(stripANSI(Header("가계부")), "\n")
	assert.Len(t, lines, 2)
	assert.Equal(t, lipgloss.Width(lines[0]), lipgloss.Width(lines[1]))
}

func TestRenderBox(t *testing.T) {
	result := RenderBox("test", "content here")
	assert.Contains(t, result, "TEST")
	assert.Contains(t, result, "content here")
	assert.Contains(t, result, "╭")
	assert.Contains(t, result, "╰")

	assert.Contains(t, RenderBox("", "just content"), "just content")
}

func TestRenderAlignedTable(t *testing.T) {
	out := stripANSI(RenderAlignedTable(
		[]string{"NAME", "AMOUNT"},
		[]Align{AlignLeft, AlignRight},
		[][]string{{"식비", "₩4,500"}, {"교통", "₩12,000"}},
	))
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Len(t, lines, 4)
	for _, l := range lines {
		assert.Equal(t, lipgloss.Width(lines[0]), lipgloss.Width(l), "every row spans the same width: %q", l)
	}
	assert.True(t, strings.HasSuffix(lines[2], " ₩4,500"), "right aligned: %q", lines[2])
	assert.Empty(t, RenderTable(nil, nil))
}
