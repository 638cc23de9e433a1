// Package persist coalesces high-frequency widget state changes into
// infrequent durable writes of a single JSON document.
package persist

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"tickdeck/internal/logging"
	"tickdeck/internal/models"
)

// QuietInterval is how long position updates must stay quiet before a
// durable write happens. Lock and theme changes are discrete user
// actions and flush immediately instead.
const QuietInterval = 500 * time.Millisecond

type eventKind int

const (
	eventMove eventKind = iota
	eventLock
	eventTheme
)

type event struct {
	kind   eventKind
	x, y   int
	locked bool
	theme  string
}

// Writer owns the persisted state document. Events arrive on a channel
// and are applied by a single goroutine holding a pending-write
// deadline that resets on every position event. Only the last state
// observed before the quiet interval elapses reaches disk; bursts are
// never durably written mid-flight.
//
// Move, SetLocked and SetTheme must not be called after Close.
type Writer struct {
	path     string
	quiet    time.Duration
	events   chan event
	done     chan struct{}
	closeErr error
}

// Load reads the state document, falling back to defaults when the
// file is missing or corrupt. Loading never fails.
func Load(path string) models.PersistedState {
	state := models.DefaultState()
	data, err := os.ReadFile(path)
	if err != nil {
		return state
	}
	var stored models.PersistedState
	if err := json.Unmarshal(data, &stored); err != nil {
		logging.For("persist").Warn("ignoring corrupt state file", "path", path, "err", err)
		return state
	}
	if stored.ThemeID == "" {
		stored.ThemeID = state.ThemeID
	}
	stored.Version = models.StateVersion
	return stored
}

// NewWriter starts a writer persisting to path, seeded from the
// current on-disk document.
func NewWriter(path string) *Writer {
	return newWriter(path, QuietInterval)
}

func newWriter(path string, quiet time.Duration) *Writer {
	w := &Writer{
		path:   path,
		quiet:  quiet,
		events: make(chan event, 64),
		done:   make(chan struct{}),
	}
	go w.loop(Load(path))
	return w
}

// Move records a position change. Debounced.
func (w *Writer) Move(x, y int) {
	w.events <- event{kind: eventMove, x: x, y: y}
}

// SetLocked records a lock toggle. Flushes immediately.
func (w *Writer) SetLocked(locked bool) {
	w.events <- event{kind: eventLock, locked: locked}
}

// SetTheme records a theme selection. Flushes immediately.
func (w *Writer) SetTheme(id string) {
	w.events <- event{kind: eventTheme, theme: id}
}

// Close flushes any pending state and stops the writer. It returns the
// final flush error, if any.
func (w *Writer) Close() error {
	close(w.events)
	<-w.done
	return w.closeErr
}

func (w *Writer) loop(state models.PersistedState) {
	log := logging.For("persist")

	var timer *time.Timer
	var deadline <-chan time.Time
	dirty := false

	stopTimer := func() {
		if timer != nil {
			timer.Stop()
			timer = nil
			deadline = nil
		}
	}
	flush := func() error {
		if err := w.write(state); err != nil {
			log.Error("state write failed", "path", w.path, "err", err)
			return err
		}
		dirty = false
		return nil
	}

	for {
		select {
		case ev, ok := <-w.events:
			if !ok {
				stopTimer()
				if dirty {
					w.closeErr = flush()
				}
				close(w.done)
				return
			}
			switch ev.kind {
			case eventMove:
				state.X, state.Y = ev.x, ev.y
				dirty = true
				if timer == nil {
					timer = time.NewTimer(w.quiet)
					deadline = timer.C
				} else {
					if !timer.Stop() {
						select {
						case <-timer.C:
						default:
						}
					}
					timer.Reset(w.quiet)
				}
			case eventLock:
				state.Locked = ev.locked
				dirty = true
				stopTimer()
				flush()
			case eventTheme:
				state.ThemeID = ev.theme
				dirty = true
				stopTimer()
				flush()
			}

		case <-deadline:
			timer = nil
			deadline = nil
			if dirty {
				flush()
			}
		}
	}
}

// write persists the whole document atomically: marshal, write to a
// temp file in the same directory, rename over the target. A crashed
// flush leaves either the old document or the new one, never a partial
// write.
func (w *Writer) write(state models.PersistedState) error {
	state.Version = models.StateVersion
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	dir := filepath.Dir(w.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".state-*.json")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp state file: %w", err)
	}
	if err := os.Rename(tmpName, w.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}
