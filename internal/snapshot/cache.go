// Package snapshot holds the current grouped task view.
package snapshot

import (
	"errors"
	"fmt"

	"tickdeck/internal/grouping"
	"tickdeck/internal/models"
)

// ErrNotFound indicates an id that is not present in the snapshot.
// Removing or reinserting a missing id is a caller bug, not a
// transient condition.
var ErrNotFound = errors.New("task not found in snapshot")

// Cache is the single-writer holder of the current Snapshot. All
// mutating calls come from the control loop only; the type carries no
// lock. Readers get copies through Current.
type Cache struct {
	snap  models.Snapshot
	dirty bool
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{}
}

// Replace swaps in a freshly reconciled snapshot. In-flight
// completions are tracked by the coordinator, never here, so a refresh
// cannot clobber them.
func (c *Cache) Replace(snap models.Snapshot) {
	c.snap = snap
	c.dirty = true
}

// Current returns a copy the presentation layer can hold without being
// able to mutate the cached groups.
func (c *Cache) Current() models.Snapshot {
	out := models.Snapshot{TakenAt: c.snap.TakenAt}
	for gi, g := range c.snap.Groups {
		if len(g) > 0 {
			out.Groups[gi] = append([]models.Task(nil), g...)
		}
	}
	return out
}

// Contains reports whether a task id is present in the current view.
func (c *Cache) Contains(id string) bool {
	_, _, ok := c.snap.Find(id)
	return ok
}

// RemoveOptimistically removes a task from its group immediately and
// returns the removed value for later rollback.
func (c *Cache) RemoveOptimistically(id string) (models.Task, error) {
	for gi, g := range c.snap.Groups {
		for ti, t := range g {
			if t.ID == id {
				c.snap.Groups[gi] = append(g[:ti:ti], g[ti+1:]...)
				c.dirty = true
				return t, nil
			}
		}
	}
	return models.Task{}, fmt.Errorf("remove %q: %w", id, ErrNotFound)
}

// Reinsert re-adds a previously removed task, re-running the grouping
// rule for just that task so the group's order invariant holds. The
// bucket is computed against the snapshot's own reference moment, so a
// rolled-back task lands in the group the rest of the view was built
// with.
func (c *Cache) Reinsert(task models.Task) {
	g := grouping.GroupOf(c.snap.TakenAt, task)
	c.snap.Groups[g] = grouping.InsertSorted(c.snap.Groups[g], task)
	c.dirty = true
}

// Dirty reports whether the view changed since the last ClearDirty.
// Every mutation marks the snapshot dirty for re-render; there are no
// other side effects.
func (c *Cache) Dirty() bool {
	return c.dirty
}

// ClearDirty acknowledges a re-render.
func (c *Cache) ClearDirty() {
	c.dirty = false
}
