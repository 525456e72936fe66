package term

import (
	"slices"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// runMsg carries a callback onto the bubbletea goroutine.
type runMsg func()

// startMsg is sent once by Init.
type startMsg struct{}

// Model is the bubbletea model that presents a widget tree. It owns focus
// and turns key presses into widget callbacks; the widget tree itself is
// driven by whatever reconciles against the root.
type Model struct {
	root   *Widget
	keys   KeyMap
	styles Styles
	help   help.Model

	// OnStart runs on the bubbletea goroutine before the first frame.
	OnStart func()

	focused    *Widget
	focusIndex int
	width      int
	height     int
}

// NewModel returns a model presenting root with the default keys and
// styles.
func NewModel(root *Widget) *Model {
	return &Model{
		root:   root,
		keys:   DefaultKeyMap,
		styles: DefaultStyles,
		help:   help.New(),
	}
}

// Root returns the widget the application is mounted under.
func (m *Model) Root() *Widget { return m.root }

// Focused returns the focused widget, or nil when nothing can take focus.
func (m *Model) Focused() *Widget { return m.focused }

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return func() tea.Msg { return startMsg{} }
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case startMsg:
		if m.OnStart != nil {
			m.OnStart()
		}
	case runMsg:
		msg()
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
	case tea.KeyMsg:
		var quit bool
		cmd, quit = m.handleKey(msg)
		if quit {
			return m, tea.Quit
		}
	}
	return m, tea.Batch(cmd, m.refocus())
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return nil, true
	case key.Matches(msg, m.keys.Next):
		return m.move(1), false
	case key.Matches(msg, m.keys.Prev):
		return m.move(-1), false
	case key.Matches(msg, m.keys.ScrollUp):
		m.scroll(-1)
		return nil, false
	case key.Matches(msg, m.keys.ScrollDown):
		m.scroll(1)
		return nil, false
	}

	w := m.focused
	if w == nil {
		return nil, false
	}
	switch w.class {
	case classButton:
		if key.Matches(msg, m.keys.Press) && w.onClick != nil {
			w.onClick()
		}
	case classEditText:
		before := w.input.Value()
		in, cmd := w.input.Update(msg)
		*w.input = in
		if in.Value() != before {
			w.typed()
		}
		return cmd, false
	}
	return nil, false
}

// move shifts focus by delta, wrapping around.
func (m *Model) move(delta int) tea.Cmd {
	list := m.root.focusables(nil)
	if len(list) == 0 {
		return m.setFocus(nil, 0)
	}
	i := slices.Index(list, m.focused)
	if i < 0 {
		i = m.focusIndex
	}
	i = ((i+delta)%len(list) + len(list)) % len(list)
	return m.setFocus(list[i], i)
}

// refocus keeps focus on a live, enabled widget. When the focused widget
// goes away, focus moves to whatever now occupies its position.
func (m *Model) refocus() tea.Cmd {
	list := m.root.focusables(nil)
	if len(list) == 0 {
		return m.setFocus(nil, 0)
	}
	if i := slices.Index(list, m.focused); i >= 0 {
		m.focusIndex = i
		return nil
	}
	i := min(m.focusIndex, len(list)-1)
	return m.setFocus(list[i], i)
}

func (m *Model) setFocus(w *Widget, index int) tea.Cmd {
	if m.focused == w {
		m.focusIndex = index
		return nil
	}
	if prev := m.focused; prev != nil && prev.input != nil {
		prev.input.Blur()
	}
	m.focused, m.focusIndex = w, index
	if w != nil && w.input != nil {
		return w.input.Focus()
	}
	return nil
}

func (m *Model) scroll(dir int) {
	var walk func(w *Widget)
	walk = func(w *Widget) {
		if w.class == classScrollView {
			w.viewport.SetYOffset(w.viewport.YOffset + dir*max(w.viewport.Height-1, 1))
		}
		for _, c := range w.children {
			walk(c)
		}
	}
	walk(m.root)
}

// View implements tea.Model.
func (m *Model) View() string {
	r := renderer{focused: m.focused, styles: m.styles}
	if m.height > 0 {
		r.scrollRows = max(m.height/2, 3)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		r.render(m.root, m.width),
		m.help.View(m.keys),
	)
}
