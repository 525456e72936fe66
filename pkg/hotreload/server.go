// Package hotreload ships freshly built trees to a running application.
//
// The Server accepts wire payloads over HTTP, decodes them on the request
// goroutine, and hands the decoded tree to the UI goroutine through a
// dispatch function. It answers only after the UI goroutine has
// reconciled the tree, so a successful response means the new UI is
// live. The Client is the sending side.
package hotreload

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-drift/vui/pkg/errors"
	"github.com/go-drift/vui/pkg/platform"
	"github.com/go-drift/vui/pkg/reconcile"
	"github.com/go-drift/vui/pkg/vnode"
	"github.com/go-drift/vui/pkg/wire"
)

// ContentType is the media type of a wire payload.
const ContentType = "application/octet-stream"

// Defaults applied by New.
const (
	DefaultAddress    = ":8080"
	DefaultPath       = "/reload"
	DefaultMaxPayload = 8 << 20
	DefaultTimeout    = 10 * time.Second
)

// Claim states of a reload job.
const (
	jobPending int32 = iota
	jobStarted
	jobAbandoned
)

var errAbandoned = stderrors.New("hotreload: request abandoned before the UI goroutine ran")

// Target receives decoded trees on the UI goroutine. loop.Loop implements
// it. done must be called once the tree has been reconciled.
type Target interface {
	Replace(tree *vnode.Node, done func(reconcile.Stats))
}

// Config configures a Server.
type Config struct {
	// Address is the TCP listen address. Defaults to ":8080".
	Address string
	// Path is the reload endpoint. Defaults to "/reload".
	Path string
	// Registry resolves type tags in incoming payloads. Required.
	Registry *vnode.Registry
	// Target applies decoded trees. Required.
	Target Target
	// Dispatch schedules work on the UI goroutine. Defaults to
	// platform.Dispatch.
	Dispatch func(func()) bool
	// MaxPayload bounds the request body. Defaults to 8 MiB.
	MaxPayload int64
	// Timeout bounds how long a request waits for the UI goroutine, and
	// the graceful shutdown. Defaults to 10 seconds.
	Timeout time.Duration
	// Logger receives request logs. Nil discards.
	Logger *slog.Logger
}

// Result is the JSON body of every reload response.
type Result struct {
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
	Created   int    `json:"created"`
	Destroyed int    `json:"destroyed"`
	Applied   int    `json:"applied"`
	Skipped   int    `json:"skipped"`
}

// Health is the JSON body of the health endpoint.
type Health struct {
	Status     string `json:"status"`
	Vocabulary string `json:"vocabulary"`
}

// Server is the receiving side of hot reload.
type Server struct {
	cfg     Config
	handler http.Handler

	ready chan struct{}
	addr  net.Addr
}

// New validates cfg, applies defaults and builds the handler. Call Serve
// to start listening, or mount Handler elsewhere.
func New(cfg Config) (*Server, error) {
	if cfg.Registry == nil {
		return nil, stderrors.New("hotreload: Registry is required")
	}
	if cfg.Target == nil {
		return nil, stderrors.New("hotreload: Target is required")
	}
	if cfg.Address == "" {
		cfg.Address = DefaultAddress
	}
	if cfg.Path == "" {
		cfg.Path = DefaultPath
	}
	if cfg.Dispatch == nil {
		cfg.Dispatch = platform.Dispatch
	}
	if cfg.MaxPayload <= 0 {
		cfg.MaxPayload = DefaultMaxPayload
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}

	return newServer(cfg), nil
}

// newServer builds a server from a config New has already resolved.
func newServer(cfg Config) *Server {
	s := &Server{cfg: cfg, ready: make(chan struct{})}
	mux := http.NewServeMux()
	mux.HandleFunc(cfg.Path, s.handleReload)
	mux.HandleFunc("/health", s.handleHealth)
	s.handler = mux
	return s
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler { return s.handler }

// Ready is closed once Serve has bound its listener.
func (s *Server) Ready() <-chan struct{} { return s.ready }

// Addr returns the bound address. Only valid after Ready is closed.
func (s *Server) Addr() net.Addr { return s.addr }

// Serve listens on the configured address and blocks until ctx is done,
// then shuts down gracefully. A Server serves at most once.
func (s *Server) Serve(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.cfg.Address)
	if err != nil {
		return fmt.Errorf("hotreload: listening on %s: %w", s.cfg.Address, err)
	}
	s.addr = listener.Addr()
	close(s.ready)

	server := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      s.cfg.Timeout + 30*time.Second,
		IdleTimeout:       60 * time.Second,
	}
	s.cfg.Logger.Info("hot reload listening", "address", s.addr.String(), "path", s.cfg.Path)

	serveDone := make(chan error, 1)
	go func() {
		if err := server.Serve(listener); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			serveDone <- err
		}
		close(serveDone)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveDone:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Timeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("hotreload: shutdown: %w", err)
	}
	s.cfg.Logger.Info("hot reload stopped")
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, Health{Status: "ok", Vocabulary: s.cfg.Registry.Version()})
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut && r.Method != http.MethodPost {
		w.Header().Set("Allow", "PUT, POST")
		s.fail(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if ct := r.Header.Get("Content-Type"); ct != "" && !isPayloadType(ct) {
		s.fail(w, http.StatusUnsupportedMediaType, "content type must be "+ContentType)
		return
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, s.cfg.MaxPayload+1))
	if err != nil {
		s.fail(w, http.StatusBadRequest, "reading body: "+err.Error())
		return
	}
	if int64(len(data)) > s.cfg.MaxPayload {
		s.fail(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("payload exceeds %d bytes", s.cfg.MaxPayload))
		return
	}

	tree, err := wire.Decode(data, s.cfg.Registry)
	if err != nil {
		errors.Report(&errors.Error{Op: "hotreload.decode", Kind: errors.KindDecode, Err: err})
		s.fail(w, decodeStatus(err), err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.Timeout)
	defer cancel()

	// The job and the deadline race to claim the payload. A job that runs
	// after the request gave up must not apply the tree.
	var claim atomic.Int32
	done := make(chan reconcile.Stats, 1)
	err = platform.Invoke(ctx, s.cfg.Dispatch, func() error {
		if !claim.CompareAndSwap(jobPending, jobStarted) {
			return errAbandoned
		}
		s.cfg.Target.Replace(tree, func(stats reconcile.Stats) { done <- stats })
		return nil
	})
	if err != nil && !stderrors.Is(err, platform.ErrNoDispatcher) && !claim.CompareAndSwap(jobPending, jobAbandoned) {
		// The UI goroutine took the job first; report its outcome.
		err = nil
	}
	var stats reconcile.Stats
	if err == nil {
		select {
		case stats = <-done:
		case <-ctx.Done():
			if claim.Load() != jobStarted {
				err = ctx.Err()
				break
			}
			// Replace is running and cannot be withdrawn.
			select {
			case stats = <-done:
			case <-r.Context().Done():
				err = r.Context().Err()
			}
		}
	}
	switch {
	case stderrors.Is(err, platform.ErrNoDispatcher):
		s.fail(w, http.StatusServiceUnavailable, "no UI dispatcher registered")
		return
	case err != nil:
		errors.Report(&errors.Error{Op: "hotreload.dispatch", Kind: errors.KindTransport, Err: err})
		s.fail(w, http.StatusGatewayTimeout, "waiting for the UI thread: "+err.Error())
		return
	}

	res := Result{
		Status:    "ok",
		Created:   stats.Created,
		Destroyed: stats.Destroyed,
		Applied:   stats.Applied,
		Skipped:   stats.Skipped,
	}
	status := http.StatusOK
	if stats.Skipped > 0 {
		res.Status = "error"
		res.Error = fmt.Sprintf("%d subtrees could not be reconciled", stats.Skipped)
		status = http.StatusInternalServerError
	}
	s.cfg.Logger.Info("hot reload applied",
		"bytes", len(data),
		"created", stats.Created,
		"destroyed", stats.Destroyed,
		"applied", stats.Applied,
		"skipped", stats.Skipped,
	)
	writeJSON(w, status, res)
}

// isPayloadType reports whether a Content-Type header names ContentType,
// ignoring parameters.
func isPayloadType(header string) bool {
	mediaType, _, err := mime.ParseMediaType(header)
	return err == nil && mediaType == ContentType
}

// decodeStatus maps a decode failure to a response code: payloads that
// are well formed but name things this build does not have are 422,
// everything else is 400.
func decodeStatus(err error) int {
	switch {
	case stderrors.Is(err, vnode.ErrUnknownKind),
		stderrors.Is(err, wire.ErrUnknownProp),
		stderrors.Is(err, wire.ErrVocabulary):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadRequest
	}
}

func (s *Server) fail(w http.ResponseWriter, status int, msg string) {
	s.cfg.Logger.Warn("hot reload rejected", "status", status, "error", msg)
	writeJSON(w, status, Result{Status: "error", Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
