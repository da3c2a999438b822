package sse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/starford/ansuz/internal/models"
)

func written(path string) models.Invocation {
	return models.Invocation{Command: "write_file", Path: path, OK: true, InvokedAt: time.Now()}
}

// collect waits briefly, then drains everything buffered on ch.
func collect(ch chan []byte) []string {
	time.Sleep(50 * time.Millisecond)
	var out []string
	for {
		select {
		case frame, ok := <-ch:
			if !ok {
				return out
			}
			out = append(out, string(frame))
		default:
			return out
		}
	}
}

func countEvent(frames []string, event string) int {
	n := 0
	for _, f := range frames {
		if strings.Contains(f, "event: "+event+"\n") {
			n++
		}
	}
	return n
}

func TestSubscribeUnsubscribe(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients")
	}
	ch := b.subscribe()
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}
	b.unsubscribe(ch)
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after unsubscribe")
	}
	if _, ok := <-ch; ok {
		t.Error("unsubscribed channel should be closed")
	}
}

func TestObserveInvocationFrames(t *testing.T) {
	b := NewBroker(time.Hour)
	defer b.Close()
	ch := b.subscribe()
	defer b.unsubscribe(ch)

	b.ObserveInvocation(written("/data/a.txt"))

	frames := collect(ch)
	if len(frames) != 2 {
		t.Fatalf("frames = %q, want fs.written and fs.changed", frames)
	}
	first := frames[0]
	for _, want := range []string{"id: 1\n", "event: fs.written\n", `"path":"/data/a.txt"`, `"command":"write_file"`, `"kind":"written"`} {
		if !strings.Contains(first, want) {
			t.Errorf("frame %q missing %q", first, want)
		}
	}
	if !strings.HasPrefix(frames[1], "id: 2\nevent: fs.changed\n") {
		t.Errorf("summary frame = %q", frames[1])
	}
}

func TestObserveInvocationIgnoresReadsAndFailures(t *testing.T) {
	b := NewBroker(time.Hour)
	defer b.Close()
	ch := b.subscribe()
	defer b.unsubscribe(ch)

	b.ObserveInvocation(models.Invocation{Command: "read_file", Path: "r", OK: true})
	b.ObserveInvocation(models.Invocation{Command: "file_exists", Path: "e", OK: true})
	b.ObserveInvocation(models.Invocation{Command: "write_file", Path: "w", OK: false})
	b.ObserveInvocation(models.Invocation{Command: "ensure_dir", Path: "/data/x", OK: true})
	b.ObserveInvocation(models.Invocation{Command: "delete_file", Path: "/data/y", OK: true})

	frames := collect(ch)
	if n := countEvent(frames, "fs.dir_ensured"); n != 1 {
		t.Errorf("fs.dir_ensured = %d", n)
	}
	if n := countEvent(frames, "fs.deleted"); n != 1 {
		t.Errorf("fs.deleted = %d", n)
	}
	if n := countEvent(frames, "fs.written"); n != 0 {
		t.Errorf("failed write must not be published, frames = %q", frames)
	}
}

func TestChangedIsThrottled(t *testing.T) {
	b := NewBroker(500 * time.Millisecond)
	defer b.Close()
	ch := b.subscribe()
	defer b.unsubscribe(ch)

	b.ObserveInvocation(written("a.txt"))
	b.ObserveInvocation(written("b.txt"))

	frames := collect(ch)
	if n := countEvent(frames, "fs.written"); n != 2 {
		t.Errorf("fs.written = %d, want 2", n)
	}
	if n := countEvent(frames, changedEvent); n != 1 {
		t.Errorf("fs.changed = %d, want 1 (throttled)", n)
	}
}

func TestSlowClientDoesNotBlock(t *testing.T) {
	b := NewBroker(time.Hour)
	defer b.Close()
	ch := b.subscribe()
	defer b.unsubscribe(ch)

	done := make(chan struct{})
	go func() {
		for i := 0; i < clientBuffer*3; i++ {
			b.ObserveInvocation(written("f.txt"))
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publishing blocked on a full client buffer")
	}
}

// flushRecorder guards the body so the test can read it while the handler writes.
type flushRecorder struct {
	mu   sync.Mutex
	rec  *httptest.ResponseRecorder
	body strings.Builder
}

func (f *flushRecorder) Header() http.Header { return f.rec.Header() }
func (f *flushRecorder) WriteHeader(code int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rec.WriteHeader(code)
}
func (f *flushRecorder) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.body.Write(p)
}
func (f *flushRecorder) Flush() {}
func (f *flushRecorder) String() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.body.String()
}

func TestServeHTTPStreamsChangesAndKeepAlives(t *testing.T) {
	b := NewBroker(time.Hour, WithKeepAlive(20*time.Millisecond))
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/api/events", nil).WithContext(ctx)
	w := &flushRecorder{rec: httptest.NewRecorder()}

	done := make(chan struct{})
	go func() {
		b.ServeHTTP(w, req)
		close(done)
	}()

	deadline := time.Now().Add(time.Second)
	for b.ClientCount() != 1 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if b.ClientCount() != 1 {
		t.Fatal("handler did not subscribe")
	}

	b.ObserveInvocation(models.Invocation{Command: "delete_file", Path: "x.txt", OK: true})
	time.Sleep(80 * time.Millisecond)

	cancel()
	<-done

	body := w.String()
	if !strings.HasPrefix(body, "retry: 3000\n\n") {
		t.Errorf("stream should open with a retry hint: %q", body)
	}
	if !strings.Contains(body, "event: fs.deleted") {
		t.Errorf("missing change event: %q", body)
	}
	if !strings.Contains(body, ": keep-alive\n\n") {
		t.Errorf("missing keep-alive comment: %q", body)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q", ct)
	}

	deadline = time.Now().Add(time.Second)
	for b.ClientCount() != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if b.ClientCount() != 0 {
		t.Error("client not cleaned up after disconnect")
	}
}

func TestCloseEndsStreamsAndIgnoresLaterChanges(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	ch := b.subscribe()

	b.Close()
	b.Close()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected subscriber channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for channel close")
	}

	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after close")
	}
	b.ObserveInvocation(written("x.txt"))
	if late := b.subscribe(); late == nil {
		t.Fatal("subscribe after close returned nil")
	} else if _, ok := <-late; ok {
		t.Error("subscribe after close should yield a closed channel")
	}
	b.unsubscribe(ch)
}
