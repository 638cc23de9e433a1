package persist

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"tickdeck/internal/models"
)

func statePath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "state.json")
}

// waitForFile polls until path exists or the deadline passes.
func waitForFile(t *testing.T, path string, deadline time.Duration) bool {
	t.Helper()
	stop := time.Now().Add(deadline)
	for time.Now().Before(stop) {
		if _, err := os.Stat(path); err == nil {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return false
}

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	state := Load(filepath.Join(t.TempDir(), "nope.json"))
	want := models.DefaultState()
	if state != want {
		t.Errorf("got %+v, want %+v", state, want)
	}
}

func TestLoadCorruptFileGivesDefaults(t *testing.T) {
	path := statePath(t)
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	state := Load(path)
	if state != models.DefaultState() {
		t.Errorf("Corrupt file must load as defaults, got %+v", state)
	}
}

func TestMovesDebounceToSingleFinalWrite(t *testing.T) {
	path := statePath(t)
	w := newWriter(path, 150*time.Millisecond)
	defer w.Close()

	// A drag burst: twenty position events well inside the quiet
	// interval.
	for i := 1; i <= 20; i++ {
		w.Move(i*10, i*5)
		time.Sleep(2 * time.Millisecond)
	}

	// Mid-burst nothing reaches disk.
	if _, err := os.Stat(path); err == nil {
		t.Error("State written before the quiet interval elapsed")
	}

	if !waitForFile(t, path, 2*time.Second) {
		t.Fatal("Debounced write never happened")
	}
	state := Load(path)
	if state.X != 200 || state.Y != 100 {
		t.Errorf("Expected final position (200, 100), got (%d, %d)", state.X, state.Y)
	}
	if state.Version != models.StateVersion {
		t.Errorf("Version not stamped: %q", state.Version)
	}
}

func TestLockFlushesWithoutWaiting(t *testing.T) {
	path := statePath(t)
	// An hour of quiet: if the file appears, it was the immediate
	// flush, not the debounce timer.
	w := newWriter(path, time.Hour)
	defer w.Close()

	w.SetLocked(true)
	if !waitForFile(t, path, 2*time.Second) {
		t.Fatal("Lock change not flushed immediately")
	}
	if state := Load(path); !state.Locked {
		t.Errorf("Expected locked state, got %+v", state)
	}
}

func TestThemeFlushCarriesPendingPosition(t *testing.T) {
	path := statePath(t)
	w := newWriter(path, time.Hour)
	defer w.Close()

	w.Move(42, 99)
	w.SetTheme("nord")
	if !waitForFile(t, path, 2*time.Second) {
		t.Fatal("Theme change not flushed immediately")
	}
	state := Load(path)
	if state.ThemeID != "nord" {
		t.Errorf("ThemeID: got %q, want nord", state.ThemeID)
	}
	// The flush persists the whole document, position included.
	if state.X != 42 || state.Y != 99 {
		t.Errorf("Pending position lost in flush: (%d, %d)", state.X, state.Y)
	}
}

func TestCloseFlushesPendingState(t *testing.T) {
	path := statePath(t)
	w := newWriter(path, time.Hour)

	w.Move(7, 8)
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	state := Load(path)
	if state.X != 7 || state.Y != 8 {
		t.Errorf("Pending position lost on close: (%d, %d)", state.X, state.Y)
	}
}

func TestCloseWithoutChangesWritesNothing(t *testing.T) {
	path := statePath(t)
	w := newWriter(path, time.Hour)
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := os.Stat(path); err == nil {
		t.Error("Clean close must not create a state file")
	}
}
