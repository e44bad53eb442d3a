package inbox

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func TestWatcherSelectsDroppedAudio(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	selector := newFakeSelector()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := New(dir, selector, nopLogger{}, 20*time.Millisecond)
	if err := w.Start(ctx); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	writeFile(t, filepath.Join(dir, "notes.txt"), "ignore me")
	writeFile(t, filepath.Join(dir, "knock.wav"), "RIFF")

	select {
	case path := <-selector.picked:
		if filepath.Base(path) != "knock.wav" {
			t.Fatalf("unexpected selection: %s", path)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("dropped file was not selected")
	}
}

func TestWatcherCollapsesBurstToLastFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	selector := newFakeSelector()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := New(dir, selector, nopLogger{}, 150*time.Millisecond)
	if err := w.Start(ctx); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	writeFile(t, filepath.Join(dir, "first.wav"), "1")
	writeFile(t, filepath.Join(dir, "second.mp3"), "2")

	select {
	case path := <-selector.picked:
		if filepath.Base(path) != "second.mp3" {
			t.Fatalf("expected last file to win, got %s", path)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("dropped file was not selected")
	}

	select {
	case path := <-selector.picked:
		t.Fatalf("burst must select once, also got %s", path)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcherDisabledWithoutDir(t *testing.T) {
	t.Parallel()

	w := New("  ", newFakeSelector(), nopLogger{}, 0)
	if w.Enabled() {
		t.Fatalf("blank dir must disable the watcher")
	}
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("disabled watcher must not fail: %v", err)
	}
	if w.settle != DefaultSettle {
		t.Fatalf("expected default settle, got %s", w.settle)
	}
}

func TestWatcherCreatesMissingDir(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "drop", "here")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := New(dir, newFakeSelector(), nopLogger{}, 0).Start(ctx); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Fatalf("expected drop folder to exist: %v", err)
	}
}

func TestAccepts(t *testing.T) {
	t.Parallel()

	cases := []struct {
		evt  fsnotify.Event
		want bool
	}{
		{evt: fsnotify.Event{Name: "/d/a.wav", Op: fsnotify.Create}, want: true},
		{evt: fsnotify.Event{Name: "/d/a.flac", Op: fsnotify.Write}, want: true},
		{evt: fsnotify.Event{Name: "/d/a.wav", Op: fsnotify.Remove}, want: false},
		{evt: fsnotify.Event{Name: "/d/.a.wav", Op: fsnotify.Create}, want: false},
		{evt: fsnotify.Event{Name: "/d/a.txt", Op: fsnotify.Create}, want: false},
	}
	for _, tc := range cases {
		if got := accepts(tc.evt); got != tc.want {
			t.Fatalf("accepts(%v) = %v, want %v", tc.evt, got, tc.want)
		}
	}
}

func writeFile(t *testing.T, path string, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write failed: %v", err)
	}
}

type fakeSelector struct {
	mu     sync.Mutex
	picked chan string
}

func newFakeSelector() *fakeSelector {
	return &fakeSelector{picked: make(chan string, 8)}
}

func (f *fakeSelector) SelectFile(path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.picked <- path
	return nil
}

type nopLogger struct{}

func (nopLogger) Print(string)   {}
func (nopLogger) Trace(string)   {}
func (nopLogger) Debug(string)   {}
func (nopLogger) Info(string)    {}
func (nopLogger) Warning(string) {}
func (nopLogger) Error(string)   {}
func (nopLogger) Fatal(string)   {}
