// theme.go - Lipgloss styles for the dark and light themes.

package theme

import "github.com/charmbracelet/lipgloss"

// Styles groups every style the components render with.
type Styles struct {
	Name string
	Dark bool

	App          lipgloss.Style
	Header       lipgloss.Style
	Footer       lipgloss.Style
	Sidebar      lipgloss.Style
	SidebarTitle lipgloss.Style
	Item         lipgloss.Style
	ActiveItem   lipgloss.Style
	CursorItem   lipgloss.Style
	Muted        lipgloss.Style
	UserBubble   lipgloss.Style
	UserLabel    lipgloss.Style
	BotLabel     lipgloss.Style
	ModelTag     lipgloss.Style
	Welcome      lipgloss.Style
	Input        lipgloss.Style
	Modal        lipgloss.Style
	Selected     lipgloss.Style
	NoticeInfo   lipgloss.Style
	NoticeOK     lipgloss.Style
	NoticeError  lipgloss.Style
	Spinner      lipgloss.Style
}

type palette struct {
	fg, muted, accent, border, selectedBg, userBg lipgloss.Color
	ok, err                                       lipgloss.Color
}

var (
	darkPalette = palette{
		fg: "252", muted: "240", accent: "39", border: "240", selectedBg: "236", userBg: "24",
		ok: "42", err: "203",
	}
	lightPalette = palette{
		fg: "235", muted: "245", accent: "33", border: "250", selectedBg: "254", userBg: "153",
		ok: "28", err: "160",
	}
)

// New returns the styles for name ("dark" or "light"; anything else is dark).
func New(name string) *Styles {
	p, dark := darkPalette, true
	if name == "light" {
		p, dark = lightPalette, false
	} else {
		name = "dark"
	}
	return &Styles{
		Name:         name,
		Dark:         dark,
		App:          lipgloss.NewStyle().Foreground(p.fg),
		Header:       lipgloss.NewStyle().Bold(true).Foreground(p.accent).Padding(0, 1),
		Footer:       lipgloss.NewStyle().Foreground(p.muted).Padding(0, 1),
		Sidebar:      lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(p.border).Padding(0, 1),
		SidebarTitle: lipgloss.NewStyle().Bold(true).Foreground(p.accent),
		Item:         lipgloss.NewStyle().Foreground(p.fg),
		ActiveItem:   lipgloss.NewStyle().Bold(true).Foreground(p.accent),
		CursorItem:   lipgloss.NewStyle().Bold(true).Foreground(p.accent).Background(p.selectedBg),
		Muted:        lipgloss.NewStyle().Foreground(p.muted),
		UserBubble:   lipgloss.NewStyle().Background(p.userBg).Foreground(p.fg).Padding(0, 1),
		UserLabel:    lipgloss.NewStyle().Bold(true).Foreground(p.accent),
		BotLabel:     lipgloss.NewStyle().Bold(true).Foreground(p.ok),
		ModelTag:     lipgloss.NewStyle().Italic(true).Foreground(p.muted),
		Welcome:      lipgloss.NewStyle().Bold(true).Foreground(p.accent).Align(lipgloss.Center),
		Input:        lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(p.border),
		Modal:        lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(p.accent).Padding(1, 4),
		Selected:     lipgloss.NewStyle().Bold(true).Foreground(p.accent).Background(p.selectedBg),
		NoticeInfo:   lipgloss.NewStyle().Foreground(p.fg).Border(lipgloss.RoundedBorder()).BorderForeground(p.accent).Padding(0, 1),
		NoticeOK:     lipgloss.NewStyle().Foreground(p.ok).Border(lipgloss.RoundedBorder()).BorderForeground(p.ok).Padding(0, 1),
		NoticeError:  lipgloss.NewStyle().Foreground(p.err).Border(lipgloss.RoundedBorder()).BorderForeground(p.err).Padding(0, 1),
		Spinner:      lipgloss.NewStyle().Foreground(p.accent),
	}
}
