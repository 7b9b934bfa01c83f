// Package themes holds the color schemes of the terminal browser.
package themes

import "github.com/charmbracelet/lipgloss"

// Theme defines the visual style for the TUI.
type Theme struct {
	Title       lipgloss.Style
	Subtitle    lipgloss.Style
	Normal      lipgloss.Style
	Bold        lipgloss.Style
	Muted       lipgloss.Style
	ActiveTab   lipgloss.Style
	InactiveTab lipgloss.Style
	TableHeader lipgloss.Style
	Selected    lipgloss.Style
	Box         lipgloss.Style

	StatusSuccess lipgloss.Style
	StatusWarning lipgloss.Style
	StatusError   lipgloss.Style
	StatusInfo    lipgloss.Style

	Primary lipgloss.Color
	Border  lipgloss.Color
}

func build(primary, fg, muted, border, success, warning, danger, info lipgloss.Color) Theme {
	return Theme{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(primary),
		Subtitle: lipgloss.NewStyle().
			Foreground(muted),
		Normal: lipgloss.NewStyle().
			Foreground(fg),
		Bold: lipgloss.NewStyle().
			Bold(true).
			Foreground(fg),
		Muted: lipgloss.NewStyle().
			Foreground(muted).
			Italic(true),
		ActiveTab: lipgloss.NewStyle().
			Bold(true).
			Foreground(fg).
			Background(primary).
			Padding(0, 1),
		InactiveTab: lipgloss.NewStyle().
			Foreground(muted).
			Padding(0, 1),
		TableHeader: lipgloss.NewStyle().
			Bold(true).
			Foreground(primary).
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(border).
			BorderBottom(true),
		Selected: lipgloss.NewStyle().
			Bold(true).
			Foreground(fg).
			Background(border),
		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Padding(0, 1),

		StatusSuccess: lipgloss.NewStyle().Foreground(success).Bold(true),
		StatusWarning: lipgloss.NewStyle().Foreground(warning).Bold(true),
		StatusError:   lipgloss.NewStyle().Foreground(danger).Bold(true),
		StatusInfo:    lipgloss.NewStyle().Foreground(info),

		Primary: primary,
		Border:  border,
	}
}

// Default matches the report chart palette.
var Default = build(
	lipgloss.Color("#5B6CFF"),
	lipgloss.Color("#F3F4F6"),
	lipgloss.Color("#9CA3AF"),
	lipgloss.Color("#374151"),
	lipgloss.Color("#2ECC71"),
	lipgloss.Color("#FF9F40"),
	lipgloss.Color("#FF6384"),
	lipgloss.Color("#36A2EB"),
)

// CatppuccinMocha is the Catppuccin Mocha theme.
var CatppuccinMocha = build(
	lipgloss.Color("#cba6f7"),
	lipgloss.Color("#cdd6f4"),
	lipgloss.Color("#6c7086"),
	lipgloss.Color("#45475a"),
	lipgloss.Color("#a6e3a1"),
	lipgloss.Color("#f9e2af"),
	lipgloss.Color("#f38ba8"),
	lipgloss.Color("#89dceb"),
)

// GetTheme returns a theme by name.
func GetTheme(name string) Theme {
	switch name {
	case "catppuccin-mocha":
		return CatppuccinMocha
	default:
		return Default
	}
}

// StatusStyle picks the style for a record status.
func (t Theme) StatusStyle(status string) lipgloss.Style {
	switch status {
	case "paid", "completed", "settled", "delivered", "received":
		return t.StatusSuccess
	case "pending", "processing", "confirmed", "sent":
		return t.StatusWarning
	case "overdue", "cancelled", "canceled":
		return t.StatusError
	default:
		return t.Normal
	}
}
