package hotreload

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-drift/vui/internal/todo"
	"github.com/go-drift/vui/pkg/errors"
	"github.com/go-drift/vui/pkg/loop"
	"github.com/go-drift/vui/pkg/platform"
	"github.com/go-drift/vui/pkg/reconcile"
	vuitest "github.com/go-drift/vui/pkg/testing"
	"github.com/go-drift/vui/pkg/vnode"
	"github.com/go-drift/vui/pkg/widgets"
	"github.com/go-drift/vui/pkg/wire"
)

// quiet discards error reports for the duration of a test.
func quiet(t *testing.T) {
	t.Helper()
	errors.SetHandler(discard{})
	t.Cleanup(func() { errors.SetHandler(nil) })
}

type discard struct{}

func (discard) HandleError(*errors.Error)      {}
func (discard) HandlePanic(*errors.PanicError) {}

func inline(fn func()) bool { fn(); return true }

type fakeTarget struct {
	trees []*vnode.Node
	stats reconcile.Stats
}

func (f *fakeTarget) Replace(tree *vnode.Node, done func(reconcile.Stats)) {
	f.trees = append(f.trees, tree)
	done(f.stats)
}

func payload(t *testing.T, m todo.Model, vocabulary string) []byte {
	t.Helper()
	tree, err := todo.Build(m)
	if err != nil {
		t.Fatal(err)
	}
	data, err := wire.Encode(tree, wire.Options{Vocabulary: vocabulary, Compression: wire.CompressionZstd})
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func put(t *testing.T, s *Server, contentType string, body []byte) (*httptest.ResponseRecorder, Result) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPut, DefaultPath, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	var res Result
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("response is not JSON: %q", rec.Body.String())
	}
	return rec, res
}

func TestReloadAppliesTree(t *testing.T) {
	host := vuitest.NewHost()
	root := host.NewRoot()
	l := loop.New[todo.Model, todo.Msg](todo.App{}, reconcile.NewSession(reconcile.New(host, nil), root), nil)
	l.Start()

	s, err := New(Config{Registry: widgets.Registry(), Target: l, Dispatch: inline})
	if err != nil {
		t.Fatal(err)
	}

	rec, res := put(t, s, ContentType, payload(t, todo.Model{Todos: []string{"remote"}}, widgets.VocabularyVersion))

	if rec.Code != http.StatusOK || res.Status != "ok" {
		t.Fatalf("status = %d %+v", rec.Code, res)
	}
	if res.Created != 3 {
		t.Errorf("created = %d, want 3 (row, text, button)", res.Created)
	}
	if root.Find("TextView", "remote") == nil {
		t.Error("pushed row is not live")
	}

	// Callbacks survive the reload: the pushed tree carries none, so the
	// running app's handlers stay installed.
	if !root.Find("Button", "Clear all").Tap() {
		t.Fatal("Clear all lost its handler")
	}
	if root.Find("TextView", "remote") != nil {
		t.Error("Clear all should re-render from the local model")
	}
}

func TestReloadRejections(t *testing.T) {
	quiet(t)
	good := payload(t, todo.Model{}, widgets.VocabularyVersion)
	old := vnode.NewRegistry("v1.0.0").Register(widgets.LinearLayoutKind, widgets.TextViewKind)

	tests := []struct {
		name        string
		registry    *vnode.Registry
		contentType string
		body        []byte
		maxPayload  int64
		want        int
	}{
		{name: "truncated", body: good[:len(good)/2], want: http.StatusBadRequest},
		{name: "garbage", body: []byte("hello"), want: http.StatusBadRequest},
		{name: "unknown kind", registry: old, body: good, want: http.StatusUnprocessableEntity},
		{name: "major version", body: payload(t, todo.Model{}, "v2.0.0"), want: http.StatusUnprocessableEntity},
		{name: "content type", contentType: "text/plain", body: good, want: http.StatusUnsupportedMediaType},
		{name: "too large", body: good, maxPayload: 16, want: http.StatusRequestEntityTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := tt.registry
			if reg == nil {
				reg = widgets.Registry()
			}
			ct := tt.contentType
			if ct == "" {
				ct = ContentType
			}
			target := &fakeTarget{}
			s, err := New(Config{Registry: reg, Target: target, Dispatch: inline, MaxPayload: tt.maxPayload})
			if err != nil {
				t.Fatal(err)
			}

			rec, res := put(t, s, ct, tt.body)

			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d (%s)", rec.Code, tt.want, res.Error)
			}
			if res.Status != "error" || res.Error == "" {
				t.Errorf("result = %+v", res)
			}
			if len(target.trees) != 0 {
				t.Error("a rejected payload must not reach the UI")
			}
		})
	}
}

// slowTarget reports completion some time after Replace returns.
type slowTarget struct{ delay time.Duration }

func (s slowTarget) Replace(_ *vnode.Node, done func(reconcile.Stats)) {
	time.AfterFunc(s.delay, func() { done(reconcile.Stats{Created: 1}) })
}

func TestReloadAcceptsContentTypeParameters(t *testing.T) {
	target := &fakeTarget{}
	s, _ := New(Config{Registry: widgets.Registry(), Target: target, Dispatch: inline})
	body := payload(t, todo.Model{}, widgets.VocabularyVersion)

	for _, ct := range []string{ContentType + "; foo=bar", "Application/Octet-Stream"} {
		if rec, res := put(t, s, ct, body); rec.Code != http.StatusOK {
			t.Errorf("Content-Type %q: status = %d %+v", ct, rec.Code, res)
		}
	}
	if rec, _ := put(t, s, "application/octet-stream; =", body); rec.Code != http.StatusUnsupportedMediaType {
		t.Errorf("malformed Content-Type: status = %d, want 415", rec.Code)
	}
	if len(target.trees) != 2 {
		t.Errorf("applied %d trees, want 2", len(target.trees))
	}
}

func TestReloadMethodNotAllowed(t *testing.T) {
	s, _ := New(Config{Registry: widgets.Registry(), Target: &fakeTarget{}, Dispatch: inline})
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, DefaultPath, nil))
	if rec.Code != http.StatusMethodNotAllowed || rec.Header().Get("Allow") == "" {
		t.Errorf("status = %d, Allow = %q", rec.Code, rec.Header().Get("Allow"))
	}
}

func TestReloadDispatchFailures(t *testing.T) {
	quiet(t)
	body := payload(t, todo.Model{}, widgets.VocabularyVersion)

	t.Run("no dispatcher", func(t *testing.T) {
		s, _ := New(Config{
			Registry: widgets.Registry(),
			Target:   &fakeTarget{},
			Dispatch: func(func()) bool { return false },
		})
		if rec, _ := put(t, s, ContentType, body); rec.Code != http.StatusServiceUnavailable {
			t.Errorf("status = %d, want 503", rec.Code)
		}
	})

	t.Run("ui thread stalled", func(t *testing.T) {
		s, _ := New(Config{
			Registry: widgets.Registry(),
			Target:   &fakeTarget{},
			Dispatch: func(func()) bool { return true },
			Timeout:  20 * time.Millisecond,
		})
		if rec, _ := put(t, s, ContentType, body); rec.Code != http.StatusGatewayTimeout {
			t.Errorf("status = %d, want 504", rec.Code)
		}
	})

	t.Run("late job is dropped", func(t *testing.T) {
		target := &fakeTarget{}
		var job func()
		s, _ := New(Config{
			Registry: widgets.Registry(),
			Target:   target,
			Dispatch: func(f func()) bool { job = f; return true },
			Timeout:  20 * time.Millisecond,
		})
		if rec, _ := put(t, s, ContentType, body); rec.Code != http.StatusGatewayTimeout {
			t.Fatalf("status = %d, want 504", rec.Code)
		}
		job()
		if len(target.trees) != 0 {
			t.Errorf("a payload reported as failed was applied %d times", len(target.trees))
		}
	})

	t.Run("started job outlives the deadline", func(t *testing.T) {
		target := slowTarget{delay: 100 * time.Millisecond}
		s, _ := New(Config{
			Registry: widgets.Registry(),
			Target:   target,
			Dispatch: inline,
			Timeout:  20 * time.Millisecond,
		})
		if rec, res := put(t, s, ContentType, body); rec.Code != http.StatusOK {
			t.Errorf("status = %d %+v, want 200 once the tree is applied", rec.Code, res)
		}
	})

	t.Run("skipped subtrees", func(t *testing.T) {
		target := &fakeTarget{stats: reconcile.Stats{Created: 2, Skipped: 1}}
		s, _ := New(Config{Registry: widgets.Registry(), Target: target, Dispatch: inline})
		rec, res := put(t, s, ContentType, body)
		if rec.Code != http.StatusInternalServerError || res.Skipped != 1 || res.Created != 2 {
			t.Errorf("status = %d %+v", rec.Code, res)
		}
	})
}

func TestNewRequiresRegistryAndTarget(t *testing.T) {
	if _, err := New(Config{Target: &fakeTarget{}}); err == nil {
		t.Error("missing Registry should fail")
	}
	if _, err := New(Config{Registry: widgets.Registry()}); err == nil {
		t.Error("missing Target should fail")
	}
}

// uiThread runs a platform.Queue as the UI goroutine for the test.
func uiThread(t *testing.T) *platform.Queue {
	t.Helper()
	q := platform.NewQueue()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		q.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return q
}

func onUI(t *testing.T, q *platform.Queue, fn func()) {
	t.Helper()
	err := platform.Invoke(context.Background(), func(f func()) bool { q.Post(f); return true }, func() error {
		fn()
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestClientPush(t *testing.T) {
	quiet(t)
	q := uiThread(t)
	host := vuitest.NewHost()
	root := host.NewRoot()
	var l *loop.Loop[todo.Model, todo.Msg]
	onUI(t, q, func() {
		l = loop.New[todo.Model, todo.Msg](todo.App{}, reconcile.NewSession(reconcile.New(host, nil), root), nil)
		l.Start()
	})

	s, err := New(Config{
		Registry: widgets.Registry(),
		Target:   l,
		Dispatch: func(f func()) bool { q.Post(f); return true },
	})
	if err != nil {
		t.Fatal(err)
	}
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	c := &Client{BaseURL: ts.URL, Vocabulary: widgets.VocabularyVersion, Compression: wire.CompressionLZ4}
	tree, err := todo.Build(todo.Model{Todos: []string{"pushed"}})
	if err != nil {
		t.Fatal(err)
	}
	res, err := c.Push(context.Background(), tree)
	if err != nil {
		t.Fatalf("Push: %v", err)
	}
	if res.Status != "ok" || res.Created == 0 {
		t.Errorf("result = %+v", res)
	}
	onUI(t, q, func() {
		if root.Find("TextView", "pushed") == nil {
			t.Error("pushed row is not live")
		}
	})

	h, err := c.Health(context.Background())
	if err != nil || h.Vocabulary != widgets.VocabularyVersion {
		t.Errorf("Health = %+v, %v", h, err)
	}

	c.Vocabulary = "v9.0.0"
	_, err = c.Push(context.Background(), tree)
	var pe *PushError
	if !stderrors.As(err, &pe) || pe.StatusCode != http.StatusUnprocessableEntity || pe.Message == "" {
		t.Errorf("Push error = %v, want a 422 PushError", err)
	}
}

func TestClientNetworkError(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	c := &Client{BaseURL: url, Vocabulary: widgets.VocabularyVersion}
	tree, _ := todo.Build(todo.Model{})
	_, err := c.Push(context.Background(), tree)
	var pe *PushError
	if err == nil || stderrors.As(err, &pe) {
		t.Errorf("err = %v, want a transport error", err)
	}
}

func TestFollowRejectsInvalidConfig(t *testing.T) {
	err := Follow(context.Background(), platform.NewLifecycle(), Config{Target: &fakeTarget{}}, nil)
	if err == nil {
		t.Error("Follow without a Registry should fail before waiting on the lifecycle")
	}
}

func TestFollowLifecycle(t *testing.T) {
	lc := platform.NewLifecycle()
	cfg := Config{
		Address:  "127.0.0.1:0",
		Registry: widgets.Registry(),
		Target:   &fakeTarget{},
		Dispatch: inline,
		Timeout:  time.Second,
	}
	servers := make(chan *Server, 2)
	done := make(chan error, 1)
	go func() { done <- Follow(context.Background(), lc, cfg, func(s *Server) { servers <- s }) }()

	waitServer := func() *Server {
		t.Helper()
		select {
		case s := <-servers:
			return s
		case <-time.After(5 * time.Second):
			t.Fatal("server did not start")
			return nil
		}
	}
	health := func(s *Server) error {
		c := &Client{BaseURL: "http://" + s.Addr().String()}
		_, err := c.Health(context.Background())
		return err
	}

	lc.SetState(platform.LifecycleStateResumed)
	first := waitServer()
	if err := health(first); err != nil {
		t.Fatalf("health while resumed: %v", err)
	}

	lc.SetState(platform.LifecycleStatePaused)
	deadline := time.Now().Add(5 * time.Second)
	for health(first) == nil {
		if time.Now().After(deadline) {
			t.Fatal("server still answering after pause")
		}
		time.Sleep(10 * time.Millisecond)
	}

	lc.SetState(platform.LifecycleStateResumed)
	second := waitServer()
	if err := health(second); err != nil {
		t.Fatalf("health after resume: %v", err)
	}

	lc.SetState(platform.LifecycleStateDetached)
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Follow = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Follow did not return after detach")
	}
}
