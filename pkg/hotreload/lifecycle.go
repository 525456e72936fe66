package hotreload

import (
	"context"

	"github.com/go-drift/vui/pkg/errors"
	"github.com/go-drift/vui/pkg/platform"
)

// Follow runs a fresh Server built from cfg while lc is resumed and stops
// it when the app pauses, the way a mobile app opens its reload port in
// onResume and closes it in onPause. It returns when ctx is done or the
// lifecycle reaches the detached state.
//
// started, if non-nil, is called with each server once it is listening.
func Follow(ctx context.Context, lc *platform.Lifecycle, cfg Config, started func(*Server)) error {
	base, err := New(cfg)
	if err != nil {
		return err
	}

	states := make(chan platform.LifecycleState, 8)
	remove := lc.AddHandler(func(s platform.LifecycleState) {
		select {
		case states <- s:
		case <-ctx.Done():
		}
	})
	defer remove()

	state := lc.State()
	for {
		if state == platform.LifecycleStateDetached {
			return nil
		}
		if state != platform.LifecycleStateResumed {
			select {
			case state = <-states:
				continue
			case <-ctx.Done():
				return nil
			}
		}

		srv := newServer(base.cfg)
		runCtx, cancel := context.WithCancel(ctx)
		errc := make(chan error, 1)
		go func() { errc <- srv.Serve(runCtx) }()

		select {
		case <-srv.Ready():
			if started != nil {
				started(srv)
			}
		case err := <-errc:
			cancel()
			errors.Report(&errors.Error{Op: "hotreload.serve", Kind: errors.KindTransport, Err: err})
			return err
		}

	running:
		for {
			select {
			case state = <-states:
				if state != platform.LifecycleStateResumed {
					break running
				}
			case err := <-errc:
				cancel()
				if err != nil {
					errors.Report(&errors.Error{Op: "hotreload.serve", Kind: errors.KindTransport, Err: err})
				}
				return err
			case <-ctx.Done():
				state = platform.LifecycleStateDetached
				break running
			}
		}
		cancel()
		if err := <-errc; err != nil {
			errors.Report(&errors.Error{Op: "hotreload.serve", Kind: errors.KindTransport, Err: err})
		}
	}
}
