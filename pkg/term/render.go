package term

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/go-drift/vui/pkg/widgets"
)

// Layout units are converted to terminal cells at a fixed ratio.
const (
	unitsPerColumn = 10
	unitsPerRow    = 20

	defaultScrollRows = 10

	// Text at or above this size renders bold.
	headingSize = 24
)

func columns(units int) int { return (units + unitsPerColumn/2) / unitsPerColumn }
func rows(units int) int    { return (units + unitsPerRow/2) / unitsPerRow }

func lipglossColor(c color.RGBA) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B))
}

// renderer carries per-frame state down the widget tree.
type renderer struct {
	focused    *Widget
	styles     Styles
	scrollRows int
}

// render draws w into at most width columns. A width of zero means the
// widget takes its natural width.
func (r *renderer) render(w *Widget, width int) string {
	if w.disposed {
		return ""
	}
	style := lipgloss.NewStyle().Padding(
		rows(w.padding.Top), columns(w.padding.Right),
		rows(w.padding.Bottom), columns(w.padding.Left),
	)
	if w.background.A > 0 {
		style = style.Background(lipglossColor(w.background))
	}
	inner := 0
	if width > 0 {
		inner = max(width-style.GetHorizontalFrameSize(), 1)
		style = style.Width(width)
	}

	var content string
	switch w.class {
	case classRoot, classFrameLayout, classEditableView:
		content = r.stack(w.children, inner)
	case classLinearLayout:
		if w.orientation == widgets.Horizontal {
			content = r.row(w, inner)
		} else {
			content = r.stack(w.children, inner)
		}
	case classScrollView:
		w.viewport.Width = inner
		if r.scrollRows > 0 {
			w.viewport.Height = r.scrollRows
		}
		w.viewport.SetContent(r.stack(w.children, inner))
		content = w.viewport.View()
	case classTextView:
		content = r.text(w)
	case classButton:
		content = r.button(w)
	case classEditText:
		content = r.editText(w, inner)
	}
	return style.Render(content)
}

func (r *renderer) stack(children []*Widget, width int) string {
	parts := make([]string, 0, len(children))
	for _, c := range children {
		parts = append(parts, r.render(c, width))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// row lays children out left to right. Weighted children share whatever
// width the others leave; without weights the row is placed by gravity.
func (r *renderer) row(w *Widget, width int) string {
	parts := make([]string, len(w.children))
	var total float64
	used := 0
	for i, c := range w.children {
		if c.weight > 0 {
			total += c.weight
			continue
		}
		parts[i] = r.render(c, 0)
		used += lipgloss.Width(parts[i])
	}

	if total > 0 {
		free := max(width-used, 0)
		left := free
		last := -1
		for i, c := range w.children {
			if c.weight > 0 {
				last = i
			}
		}
		for i, c := range w.children {
			if c.weight <= 0 {
				continue
			}
			share := int(float64(free) * c.weight / total)
			if i == last {
				share = left
			}
			left -= share
			parts[i] = r.render(c, max(share, 1))
		}
		return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
	}

	joined := lipgloss.JoinHorizontal(lipgloss.Top, parts...)
	if width <= 0 {
		return joined
	}
	pos := lipgloss.Left
	switch w.gravity {
	case widgets.GravityCenter:
		pos = lipgloss.Center
	case widgets.GravityEnd:
		pos = lipgloss.Right
	}
	return lipgloss.PlaceHorizontal(width, pos, joined)
}

func (r *renderer) text(w *Widget) string {
	style := lipgloss.NewStyle()
	if w.textColor.A > 0 {
		style = style.Foreground(lipglossColor(w.textColor))
	}
	if w.textSize >= headingSize {
		style = style.Bold(true)
	}
	return style.Render(w.text)
}

func (r *renderer) button(w *Widget) string {
	style := r.styles.Button
	switch {
	case !w.enabled:
		style = r.styles.ButtonDisabled
	case w == r.focused:
		style = r.styles.ButtonFocused
	}
	if w.textColor.A > 0 && w.enabled && w != r.focused {
		style = style.Foreground(lipglossColor(w.textColor))
	}
	return style.Render("[ " + w.text + " ]")
}

func (r *renderer) editText(w *Widget, width int) string {
	if width > 0 {
		w.input.Width = width
	}
	style := r.styles.Field
	if w == r.focused {
		style = r.styles.FieldFocused
	}
	view := w.input.View()
	if strings.TrimSpace(view) == "" {
		view = " "
	}
	return style.Render(view)
}
