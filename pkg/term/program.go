// Package term is a terminal host for vui applications.
//
// Widgets are plain structs drawn with lipgloss each frame; bubbletea owns
// the event loop, and its goroutine is the UI goroutine. Program registers
// itself as the platform dispatcher while it runs, so background work such
// as the hot-reload server reaches the widgets through platform.Dispatch.
package term

import (
	"context"
	stderrors "errors"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/go-drift/vui/pkg/errors"
	"github.com/go-drift/vui/pkg/platform"
)

// Program runs a Model under bubbletea and reports its lifecycle.
type Program struct {
	model     *Model
	lifecycle *platform.Lifecycle
	options   []tea.ProgramOption

	program atomic.Pointer[tea.Program]
}

// NewProgram prepares a program for model. lc, if non-nil, is resumed
// once the first frame is about to draw and detached when Run returns.
func NewProgram(model *Model, lc *platform.Lifecycle, opts ...tea.ProgramOption) *Program {
	return &Program{model: model, lifecycle: lc, options: opts}
}

// Dispatch schedules fn on the bubbletea goroutine. It returns false when
// the program is not running.
func (p *Program) Dispatch(fn func()) bool {
	prog := p.program.Load()
	if prog == nil || fn == nil {
		return false
	}
	prog.Send(runMsg(func() {
		defer errors.Recover("term.dispatch")
		fn()
	}))
	return true
}

// Run starts the terminal UI and blocks until the user quits or ctx is
// done. start runs on the bubbletea goroutine before the first frame and
// is where the application mounts its tree.
func (p *Program) Run(ctx context.Context, start func()) error {
	opts := append([]tea.ProgramOption{tea.WithContext(ctx)}, p.options...)
	prog := tea.NewProgram(p.model, opts...)

	onStart := p.model.OnStart
	p.model.OnStart = func() {
		if onStart != nil {
			onStart()
		}
		if start != nil {
			start()
		}
		if p.lifecycle != nil {
			p.lifecycle.SetState(platform.LifecycleStateResumed)
		}
	}

	p.program.Store(prog)
	platform.RegisterDispatch(func(fn func()) { p.Dispatch(fn) })
	defer func() {
		platform.RegisterDispatch(nil)
		p.program.Store(nil)
		if p.lifecycle != nil {
			p.lifecycle.SetState(platform.LifecycleStatePaused)
			p.lifecycle.SetState(platform.LifecycleStateDetached)
		}
	}()

	_, err := prog.Run()
	if stderrors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
