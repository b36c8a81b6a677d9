// form.go - FormModal: a small credentials form used by the login and register commands.
// It runs as its own tea.Program; Values holds the result once Submitted is true.

package dialogs

import (
	"strings"

	"ragchat/src/components/theme"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// FormField describes one input.
type FormField struct {
	Label  string
	Secret bool
	Value  string
}

// FormModal collects a few text values.
type FormModal struct {
	Title     string
	fields    []FormField
	inputs    []textinput.Model
	focus     int
	Submitted bool
	Cancelled bool
	styles    *theme.Styles
	width     int
	height    int
}

func NewFormModal(title string, fields []FormField, st *theme.Styles) *FormModal {
	f := &FormModal{Title: title, fields: fields, styles: st, width: 60, height: 16}
	for i, fld := range fields {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Placeholder = fld.Label
		ti.SetValue(fld.Value)
		ti.CharLimit = 256
		ti.Width = 40
		if fld.Secret {
			ti.EchoMode = textinput.EchoPassword
			ti.EchoCharacter = '•'
		}
		if i == 0 {
			ti.Focus()
		}
		f.inputs = append(f.inputs, ti)
	}
	return f
}

// Values returns the entered values in field order.
func (f *FormModal) Values() []string {
	out := make([]string, len(f.inputs))
	for i := range f.inputs {
		out[i] = f.inputs[i].Value()
	}
	return out
}

func (f *FormModal) Init() tea.Cmd { return textinput.Blink }

func (f *FormModal) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		f.width, f.height = msg.Width, msg.Height
		return f, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			f.Cancelled = true
			return f, tea.Quit
		case "tab", "down":
			return f, f.move(1)
		case "shift+tab", "up":
			return f, f.move(-1)
		case "enter":
			if f.focus < len(f.inputs)-1 {
				return f, f.move(1)
			}
			f.Submitted = true
			return f, tea.Quit
		}
	}
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, cmd
}

func (f *FormModal) move(delta int) tea.Cmd {
	f.inputs[f.focus].Blur()
	f.focus = (f.focus + delta + len(f.inputs)) % len(f.inputs)
	return f.inputs[f.focus].Focus()
}

func (f *FormModal) View() string {
	if f.Submitted || f.Cancelled {
		return ""
	}
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(f.Title) + "\n\n")
	for i, fld := range f.fields {
		label := f.styles.Muted.Render(fld.Label)
		if i == f.focus {
			label = f.styles.ActiveItem.Render(fld.Label)
		}
		b.WriteString(label + "\n" + f.inputs[i].View() + "\n\n")
	}
	b.WriteString(f.styles.Muted.Render("tab next · enter submit · esc cancel"))
	box := f.styles.Modal.Render(b.String())
	return lipgloss.Place(f.width, f.height, lipgloss.Center, lipgloss.Center, box)
}
