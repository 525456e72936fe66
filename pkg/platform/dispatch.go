// Package platform connects background goroutines to the goroutine that owns
// the host widgets.
//
// A host registers a dispatch function once at startup. Anything that must
// touch the live widget tree from elsewhere (a network handler, a timer)
// goes through Dispatch or Invoke.
package platform

import (
	"context"
	"errors"
	"sync"
)

// ErrNoDispatcher is returned by Invoke when no host has registered a
// dispatch function.
var ErrNoDispatcher = errors.New("platform: no dispatcher registered")

var (
	dispatchMu   sync.RWMutex
	dispatchFunc func(callback func())
)

// RegisterDispatch sets the dispatch function used to schedule callbacks on the UI thread.
// Passing nil unregisters the current one.
func RegisterDispatch(fn func(callback func())) {
	dispatchMu.Lock()
	dispatchFunc = fn
	dispatchMu.Unlock()
}

// Dispatch schedules a callback to run on the UI thread.
// Returns true if the callback was successfully scheduled, false if no dispatch function
// is registered or the callback is nil.
func Dispatch(callback func()) bool {
	dispatchMu.RLock()
	fn := dispatchFunc
	dispatchMu.RUnlock()
	if fn == nil || callback == nil {
		return false
	}
	fn(callback)
	return true
}

// Invoke runs fn on the UI thread through dispatch and waits for its
// result. A nil dispatch means Dispatch. If ctx ends first Invoke returns
// ctx.Err(); fn may still run later.
func Invoke(ctx context.Context, dispatch func(func()) bool, fn func() error) error {
	if dispatch == nil {
		dispatch = Dispatch
	}
	done := make(chan error, 1)
	if !dispatch(func() { done <- fn() }) {
		return ErrNoDispatcher
	}
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
