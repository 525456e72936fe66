package term

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

// KeyMap defines the key bindings of the terminal host.
type KeyMap struct {
	Next       key.Binding
	Prev       key.Binding
	Press      key.Binding // Activates the focused button.
	ScrollUp   key.Binding
	ScrollDown key.Binding
	Quit       key.Binding
}

// DefaultKeyMap is the built-in key binding set.
var DefaultKeyMap = KeyMap{
	Next: key.NewBinding(
		key.WithKeys("tab", "down"),
		key.WithHelp("tab", "next"),
	),
	Prev: key.NewBinding(
		key.WithKeys("shift+tab", "up"),
		key.WithHelp("shift+tab", "previous"),
	),
	Press: key.NewBinding(
		key.WithKeys("enter", " ", "space"),
		key.WithHelp("enter", "press"),
	),
	ScrollUp: key.NewBinding(
		key.WithKeys("pgup"),
		key.WithHelp("pgup", "scroll up"),
	),
	ScrollDown: key.NewBinding(
		key.WithKeys("pgdown"),
		key.WithHelp("pgdn", "scroll down"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c", "esc"),
		key.WithHelp("esc", "quit"),
	),
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Press, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Prev, k.Press},
		{k.ScrollUp, k.ScrollDown, k.Quit},
	}
}

// Styles are the lipgloss styles for focusable widgets. Colours set by the
// application through widget properties are layered on top.
type Styles struct {
	Button         lipgloss.Style
	ButtonFocused  lipgloss.Style
	ButtonDisabled lipgloss.Style
	Field          lipgloss.Style
	FieldFocused   lipgloss.Style
}

// DefaultStyles suit a dark terminal.
var DefaultStyles = Styles{
	Button:         lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
	ButtonFocused:  lipgloss.NewStyle().Reverse(true).Bold(true),
	ButtonDisabled: lipgloss.NewStyle().Faint(true),
	Field:          lipgloss.NewStyle().Underline(true),
	FieldFocused:   lipgloss.NewStyle().Underline(true).Foreground(lipgloss.Color("212")),
}
