package viewer

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/starford/fmnote/internal/note"
	"github.com/starford/fmnote/internal/render"
	"github.com/starford/fmnote/internal/sse"
	"github.com/starford/fmnote/internal/testutil"
	"github.com/starford/fmnote/internal/workflow"
)

func newTestViewer(t *testing.T, name, text string) (*Viewer, *sse.Broker, string) {
	t.Helper()
	dir := testutil.NoteDir(t, map[string]string{name: text})
	path := filepath.Join(dir, name)

	cfg := testutil.Config()
	svc := workflow.NewService(note.NewEnv(cfg), testutil.NoEnv)
	broker := sse.NewBroker(time.Millisecond)
	t.Cleanup(broker.Close)

	v, err := New(path, Params{
		Service:  svc,
		Renderer: render.New(cfg),
		Broker:   broker,
		Logger:   slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})),
		Debounce: 20 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return v, broker, dir
}

func get(t *testing.T, h http.Handler, target string) (int, string) {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	body, _ := io.ReadAll(w.Result().Body)
	return w.Code, string(body)
}

func TestRefresh_FollowsRename(t *testing.T) {
	v, broker, dir := newTestViewer(t, "20230101-Old.md", "---\ntitle: Fresh\n---\nhello\n")
	ch := broker.Subscribe()
	defer broker.Unsubscribe(ch)

	if err := v.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	want := filepath.Join(dir, "20230101-Fresh.md")
	if v.Path() != want {
		t.Fatalf("Path = %q, want %q", v.Path(), want)
	}

	select {
	case msg := <-ch:
		s := string(msg)
		if !strings.Contains(s, "event: note.renamed") || !strings.Contains(s, `"path":"20230101-Fresh.md"`) {
			t.Errorf("event = %q", s)
		}
	case <-time.After(time.Second):
		t.Fatal("no rename event")
	}

	if err := v.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	select {
	case msg := <-ch:
		t.Errorf("unchanged note published %q", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestRefresh_KeepsLastGoodNote(t *testing.T) {
	v, broker, _ := newTestViewer(t, "a.md", "---\ntitle: A\nfilename_sync: false\n---\nfirst\n")
	if err := v.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	ch := broker.Subscribe()
	defer broker.Unsubscribe(ch)
	if err := os.WriteFile(v.Path(), []byte("---\ntitle: [broken\n---\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := v.Refresh(context.Background()); err == nil {
		t.Fatal("expected a parse error")
	}
	_, n := v.current()
	if n == nil || !strings.Contains(n.Content.Body(), "first") {
		t.Error("last good note should stay")
	}
	timeout := time.After(time.Second)
	for {
		select {
		case msg := <-ch:
			if strings.Contains(string(msg), "event: note.error") {
				return
			}
		case <-timeout:
			t.Fatal("no error event")
		}
	}
}

func TestRefresh_Missing(t *testing.T) {
	v, _, _ := newTestViewer(t, "a.md", "---\ntitle: A\n---\n")
	if err := os.Remove(v.Path()); err != nil {
		t.Fatal(err)
	}
	if err := v.Refresh(context.Background()); err == nil {
		t.Error("expected an error for a missing note")
	}
}

func TestHandler(t *testing.T) {
	v, _, dir := newTestViewer(t, "a.md", "---\ntitle: A\nfilename_sync: false\n---\nhello ![](pic.png)\n")
	h := v.Handler()

	if code, _ := get(t, h, "/"); code != http.StatusServiceUnavailable {
		t.Errorf("before refresh: code = %d", code)
	}
	if err := v.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}

	code, body := get(t, h, "/")
	if code != http.StatusOK || !strings.Contains(body, "hello") || !strings.Contains(body, "EventSource") {
		t.Errorf("page: %d %q", code, body)
	}

	if code, body := get(t, h, "/health/live"); code != http.StatusOK || !strings.Contains(body, `"ok"`) {
		t.Errorf("health: %d %q", code, body)
	}

	testutil.WriteFile(t, filepath.Join(dir, "pic.png"), "PNGDATA")
	if code, body := get(t, h, "/pic.png"); code != http.StatusOK || body != "PNGDATA" {
		t.Errorf("asset: %d %q", code, body)
	}
	if code, _ := get(t, h, "/missing.png"); code != http.StatusNotFound {
		t.Errorf("missing asset: code = %d", code)
	}
}

func TestHandler_NeighbourNote(t *testing.T) {
	v, _, dir := newTestViewer(t, "a.md", "---\ntitle: A\n---\n")
	other := filepath.Join(dir, "other.md")
	testutil.WriteFile(t, other, "---\ntitle: Not other\n---\n*hi*\n")

	code, body := get(t, v.Handler(), "/other.md")
	if code != http.StatusOK || !strings.Contains(body, "<em>hi</em>") {
		t.Errorf("neighbour: %d %q", code, body)
	}
	if strings.Contains(body, "EventSource") {
		t.Error("neighbour pages do not live reload")
	}
	if !testutil.Exists(other) {
		t.Error("viewing a neighbour must not rename it")
	}

	testutil.WriteFile(t, filepath.Join(dir, "doc.adoc"), "= Doc\n")
	if code, _ := get(t, v.Handler(), "/doc.adoc"); code != http.StatusUnsupportedMediaType {
		t.Errorf("no-viewer note: code = %d", code)
	}
}

func TestWatch_SyncsOnSave(t *testing.T) {
	v, _, dir := newTestViewer(t, "20230101-First.md", "---\ntitle: First\n---\n")
	if err := v.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- v.Watch(ctx) }()
	defer func() {
		cancel()
		<-done
	}()

	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(v.Path(), []byte("---\ntitle: Second\n---\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	want := filepath.Join(dir, "20230101-Second.md")
	testutil.Eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return v.Path() == want
	}, "watcher did not follow the header change")

	testutil.Eventually(t, 2*time.Second, 50*time.Millisecond, func() bool {
		return testutil.Exists(want)
	}, "renamed file missing")
}
