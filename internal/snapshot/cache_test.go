package snapshot

import (
	"errors"
	"testing"
	"time"

	"tickdeck/internal/grouping"
	"tickdeck/internal/models"
)

func buildSnapshot(t *testing.T) models.Snapshot {
	t.Helper()
	zone := time.UTC
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, zone)
	due := func(day, hour int) *time.Time {
		d := time.Date(2025, 6, day, hour, 0, 0, 0, zone)
		return &d
	}
	return grouping.Build(now, []models.Task{
		{ID: "od1", Title: "Overdue", Due: due(9, 23), DueZone: zone},
		{ID: "td1", Title: "Today early", Due: due(10, 9), DueZone: zone},
		{ID: "td2", Title: "Today late", Due: due(10, 15), DueZone: zone},
		{ID: "lt1", Title: "Someday"},
	})
}

func TestCurrentReturnsIndependentCopy(t *testing.T) {
	c := NewCache()
	c.Replace(buildSnapshot(t))

	view := c.Current()
	view.Groups[models.GroupToday][0].Title = "mutated"

	again := c.Current()
	if again.Groups[models.GroupToday][0].Title == "mutated" {
		t.Error("Mutating a returned snapshot must not affect the cache")
	}
}

func TestRemoveOptimistically(t *testing.T) {
	c := NewCache()
	c.Replace(buildSnapshot(t))
	c.ClearDirty()

	removed, err := c.RemoveOptimistically("td1")
	if err != nil {
		t.Fatalf("RemoveOptimistically: %v", err)
	}
	if removed.ID != "td1" || removed.Title != "Today early" {
		t.Errorf("Removed copy lost data: %+v", removed)
	}
	if c.Contains("td1") {
		t.Error("Removed task still present")
	}
	if !c.Dirty() {
		t.Error("Removal must mark the view dirty")
	}

	if _, err := c.RemoveOptimistically("td1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Second removal: got %v, want ErrNotFound", err)
	}
}

func TestReinsertRestoresExactPosition(t *testing.T) {
	c := NewCache()
	c.Replace(buildSnapshot(t))

	removed, err := c.RemoveOptimistically("td1")
	if err != nil {
		t.Fatalf("RemoveOptimistically: %v", err)
	}
	c.Reinsert(removed)

	today := c.Current().Groups[models.GroupToday]
	if len(today) != 2 || today[0].ID != "td1" || today[1].ID != "td2" {
		t.Errorf("Expected [td1 td2] after rollback, got %v", taskIDs(today))
	}
}

func TestReinsertBucketsAgainstSnapshotMoment(t *testing.T) {
	// A task due "today" relative to the snapshot's reference moment
	// must return to Today on rollback, even if wall time has since
	// crossed midnight. The view stays internally consistent until the
	// next refresh rebuilds it.
	c := NewCache()
	c.Replace(buildSnapshot(t))

	removed, _ := c.RemoveOptimistically("td2")
	c.Reinsert(removed)

	if _, got, ok := c.Current().Find("td2"); !ok || got != models.GroupToday {
		t.Errorf("Expected td2 back in Today, got %s (found=%v)", got, ok)
	}
}

func TestDirtyLifecycle(t *testing.T) {
	c := NewCache()
	if c.Dirty() {
		t.Error("Fresh cache must start clean")
	}
	c.Replace(buildSnapshot(t))
	if !c.Dirty() {
		t.Error("Replace must mark dirty")
	}
	c.ClearDirty()
	if c.Dirty() {
		t.Error("ClearDirty must reset the flag")
	}
}

func taskIDs(tasks []models.Task) []string {
	out := make([]string, len(tasks))
	for i, task := range tasks {
		out[i] = task.ID
	}
	return out
}
