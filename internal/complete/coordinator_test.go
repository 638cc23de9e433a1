package complete

import (
	"errors"
	"testing"
	"time"

	"tickdeck/internal/grouping"
	"tickdeck/internal/models"
	"tickdeck/internal/snapshot"
)

func seededCache(t *testing.T) *snapshot.Cache {
	t.Helper()
	zone := time.UTC
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, zone)
	due := func(day, hour int) *time.Time {
		d := time.Date(2025, 6, day, hour, 0, 0, 0, zone)
		return &d
	}
	c := snapshot.NewCache()
	c.Replace(grouping.Build(now, []models.Task{
		{ID: "t1", Title: "Morning", Due: due(10, 9), DueZone: zone},
		{ID: "t2", Title: "Afternoon", Due: due(10, 15), DueZone: zone},
		{ID: "t3", Title: "Someday"},
	}))
	return c
}

func TestBeginRemovesImmediately(t *testing.T) {
	cache := seededCache(t)
	co := NewCoordinator(cache)

	p, err := co.Begin("t1")
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if p.AttemptID == "" || p.TaskID != "t1" || p.Task.Title != "Morning" {
		t.Errorf("Pending record incomplete: %+v", p)
	}
	if cache.Contains("t1") {
		t.Error("Task must disappear from the view before the remote call resolves")
	}
	if !co.InFlight("t1") {
		t.Error("Attempt must be tracked as pending")
	}
}

func TestBeginRejectsDuplicateTrigger(t *testing.T) {
	cache := seededCache(t)
	co := NewCoordinator(cache)

	if _, err := co.Begin("t1"); err != nil {
		t.Fatalf("First Begin: %v", err)
	}
	if _, err := co.Begin("t1"); !errors.Is(err, ErrAlreadyInFlight) {
		t.Errorf("Duplicate trigger: got %v, want ErrAlreadyInFlight", err)
	}
	if co.PendingCount() != 1 {
		t.Errorf("Duplicate trigger must not add an attempt, have %d", co.PendingCount())
	}
}

func TestBeginUnknownID(t *testing.T) {
	co := NewCoordinator(seededCache(t))
	if _, err := co.Begin("ghost"); !errors.Is(err, snapshot.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestResolveSuccessConfirms(t *testing.T) {
	cache := seededCache(t)
	co := NewCoordinator(cache)
	co.Begin("t1")

	res := co.Resolve("t1", nil)
	if res.Outcome != OutcomeConfirmed || res.TaskID != "t1" {
		t.Errorf("Unexpected result: %+v", res)
	}
	if cache.Contains("t1") {
		t.Error("Confirmed task must stay removed")
	}
	if co.InFlight("t1") {
		t.Error("Resolved attempt must leave the pending set")
	}
}

func TestResolveFailureRollsBackToExactPosition(t *testing.T) {
	cache := seededCache(t)
	co := NewCoordinator(cache)
	co.Begin("t1")

	res := co.Resolve("t1", errors.New("502 bad gateway"))
	if res.Outcome != OutcomeRolledBack {
		t.Fatalf("Expected rollback, got %+v", res)
	}
	if res.Title != "Morning" || res.Reason != "502 bad gateway" {
		t.Errorf("Rollback signal must carry title and reason: %+v", res)
	}

	today := cache.Current().Groups[models.GroupToday]
	if len(today) != 2 || today[0].ID != "t1" || today[1].ID != "t2" {
		t.Errorf("Rolled-back task out of position: %v", ids(today))
	}
}

func TestResolveAfterImplicitConfirmIsNoOp(t *testing.T) {
	cache := seededCache(t)
	co := NewCoordinator(cache)
	co.Begin("t1")

	// Refresh arrives without t1: implicit confirmation.
	zone := time.UTC
	cache.Replace(grouping.Build(time.Date(2025, 6, 10, 12, 5, 0, 0, zone), []models.Task{
		{ID: "t2", Title: "Afternoon"},
	}))
	confirmed := co.ReconcileRefresh()
	if len(confirmed) != 1 || confirmed[0].TaskID != "t1" || confirmed[0].Outcome != OutcomeConfirmed {
		t.Fatalf("Expected implicit confirmation of t1, got %+v", confirmed)
	}

	// The original call then fails. Server truth already dropped the
	// task, so no rollback happens.
	res := co.Resolve("t1", errors.New("timeout"))
	if res.Outcome != OutcomeConfirmed {
		t.Errorf("Late failure after implicit confirm must not roll back: %+v", res)
	}
	if cache.Contains("t1") {
		t.Error("Task must not resurrect")
	}
}

func TestReconcileRefreshReRemovesStillPresent(t *testing.T) {
	cache := seededCache(t)
	co := NewCoordinator(cache)
	co.Begin("t1")

	// Refresh still lists t1 (the server has not applied the
	// completion yet) with an updated title.
	zone := time.UTC
	due1 := time.Date(2025, 6, 10, 9, 0, 0, 0, zone)
	cache.Replace(grouping.Build(time.Date(2025, 6, 10, 12, 5, 0, 0, zone), []models.Task{
		{ID: "t1", Title: "Morning (edited)", Due: &due1, DueZone: zone},
		{ID: "t2", Title: "Afternoon"},
	}))
	confirmed := co.ReconcileRefresh()
	if len(confirmed) != 0 {
		t.Fatalf("Still-present task must not confirm: %+v", confirmed)
	}
	if cache.Contains("t1") {
		t.Error("Refresh must not resurrect a pending task")
	}

	// Rollback now restores the server's fresher copy.
	res := co.Resolve("t1", errors.New("boom"))
	if res.Title != "Morning (edited)" {
		t.Errorf("Rollback copy not updated from refresh: %+v", res)
	}
	if found, _, ok := cache.Current().Find("t1"); !ok || found.Title != "Morning (edited)" {
		t.Errorf("Reinserted task stale: %+v (found=%v)", found, ok)
	}
}

func TestAbandonDropsPendingWithoutTouchingView(t *testing.T) {
	cache := seededCache(t)
	co := NewCoordinator(cache)
	co.Begin("t1")

	co.Abandon()
	if co.PendingCount() != 0 {
		t.Errorf("Expected empty pending set, have %d", co.PendingCount())
	}
	if cache.Contains("t1") {
		t.Error("Abandon must not reinsert removed tasks")
	}
}

func ids(tasks []models.Task) []string {
	out := make([]string, len(tasks))
	for i, task := range tasks {
		out[i] = task.ID
	}
	return out
}
