package watch

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func waitEvent(t *testing.T, w *Watcher) {
	t.Helper()
	select {
	case <-w.Events():
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a change event")
	}
}

func absPath(t *testing.T, p string) string {
	t.Helper()
	abs, err := filepath.Abs(p)
	if err != nil {
		t.Fatalf("Abs: %v", err)
	}
	return abs
}

// ///////////////////////////////////////////////
// Constructor Tests
// ///////////////////////////////////////////////

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		paths   func(dir string) []string
		wantErr bool
	}{
		{"existing file", func(dir string) []string { return []string{filepath.Join(dir, "ahri.json")} }, false},
		{"missing file in existing dir", func(dir string) []string { return []string{filepath.Join(dir, "nope.json")} }, false},
		{"no files", func(string) []string { return nil }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, filepath.Join(dir, "ahri.json"), `{}`)

			w, err := New(tt.paths(dir), quietLogger())
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			if w.Events() == nil {
				t.Error("Events() channel is nil")
			}
			if err := w.Close(); err != nil {
				t.Errorf("Close: %v", err)
			}
			if err := w.Close(); err != nil {
				t.Errorf("second Close: %v", err)
			}
		})
	}
}

// ///////////////////////////////////////////////
// Event Tests
// ///////////////////////////////////////////////

func TestWatcher_CoalescesRapidWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ahri.json")
	writeFile(t, path, `{}`)

	w, err := New([]string{path}, quietLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()

	writeFile(t, path, `{"Champion": "Ahri"}`)
	writeFile(t, path, `{"Champion": "Ahri", "Role": "Mid"}`)
	time.Sleep(200 * time.Millisecond)

	waitEvent(t, w)
	if got, want := w.TakeChanged(), []string{absPath(t, path)}; !reflect.DeepEqual(got, want) {
		t.Errorf("TakeChanged = %v, want %v", got, want)
	}
	select {
	case <-w.Events():
		t.Error("second event pending after coalesced writes")
	default:
	}
	if got := w.TakeChanged(); len(got) != 0 {
		t.Errorf("TakeChanged after drain = %v, want empty", got)
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ahri.json")
	writeFile(t, path, `{}`)

	w, err := New([]string{path}, quietLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()

	writeFile(t, filepath.Join(dir, "ahri.png"), "png")
	select {
	case <-w.Events():
		t.Errorf("event for an unwatched file, changed = %v", w.TakeChanged())
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcher_ReportsEachChangedFile(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.json")
	b := filepath.Join(dir, "sub", "b.json")
	if err := os.MkdirAll(filepath.Dir(b), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	writeFile(t, a, `{}`)
	writeFile(t, b, `{}`)

	w, err := New([]string{a, b}, quietLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()

	writeFile(t, b, `{"x": 1}`)
	writeFile(t, a, `{"x": 1}`)
	time.Sleep(200 * time.Millisecond)

	waitEvent(t, w)
	want := []string{absPath(t, a), absPath(t, b)}
	if got := w.TakeChanged(); !reflect.DeepEqual(got, want) {
		t.Errorf("TakeChanged = %v, want %v", got, want)
	}
}

// ///////////////////////////////////////////////
// Polling Tests
// ///////////////////////////////////////////////

func TestWatcher_Polling(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ahri.json")
	writeFile(t, path, `{}`)

	w, err := newWatcher([]string{path}, quietLogger(), true, 20*time.Millisecond)
	if err != nil {
		t.Fatalf("newWatcher: %v", err)
	}
	defer w.Close()
	if !w.Polling() {
		t.Fatal("Polling() = false, want true")
	}

	// Let the poller record the initial modification time.
	time.Sleep(50 * time.Millisecond)
	future := time.Now().Add(time.Hour)
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatalf("Chtimes: %v", err)
	}

	waitEvent(t, w)
	if got := w.TakeChanged(); !reflect.DeepEqual(got, []string{absPath(t, path)}) {
		t.Errorf("TakeChanged = %v", got)
	}
}
