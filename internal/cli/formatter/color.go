package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/hearth/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

// Predefined lipgloss styles.
var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// StatusIndicator returns a colored sync status such as "● CONNECTED".
func StatusIndicator(status domain.SyncStatus) string {
	switch status {
	case domain.SyncConnected:
		return StyleGreen.Render("● CONNECTED")
	case domain.SyncConnecting:
		return StyleYellow.Render("◌ CONNECTING")
	default:
		return StyleDim.Render("○ DISCONNECTED")
	}
}

// ModeBadge labels the store's operating mode.
func ModeBadge(mode domain.Mode) string {
	if mode == domain.ModeGroup {
		return StylePurple.Render("▲ GROUP")
	}
	return StyleBlue.Render("● SOLO")
}

// AmountStyle colors income green and expenses red.
func AmountStyle(signed int64) lipgloss.Style {
	switch {
	case signed > 0:
		return StyleGreen
	case signed < 0:
		return StyleRed
	default:
		return StyleFg
	}
}

// MemberStyle renders text in a group member's color, falling back to the
// foreground color when none is assigned.
func MemberStyle(hex string) lipgloss.Style {
	if hex == "" {
		return StyleFg
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(hex))
}

// Header renders a section header with the orange header style and an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", lipgloss.Width(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

// Dim renders text in the muted/dim color.
func Dim(text string) string {
	return StyleDim.Render(text)
}

// Bold renders text in bold with the foreground color.
func Bold(text string) string {
	return StyleBold.Render(text)
}
