package store

import (
	"path/filepath"
	"testing"
	"time"

	"tickdeck/internal/models"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndLoadTasks(t *testing.T) {
	s := testStore(t)

	zone, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("LoadLocation: %v", err)
	}
	due := time.Date(2025, 6, 10, 9, 0, 0, 0, zone)
	tasks := []models.Task{
		{
			ID:        "a1",
			Title:     "Write report",
			Content:   "quarterly numbers",
			ProjectID: "p1",
			Priority:  models.PriorityHigh,
			Due:       &due,
			DueZone:   zone,
			Created:   time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC),
			Tags:      []string{"work", "urgent"},
		},
		{ID: "b2", Title: "Someday thing", ProjectID: "p2"},
	}

	if err := s.SaveTasks(tasks); err != nil {
		t.Fatalf("SaveTasks: %v", err)
	}
	loaded, err := s.LoadTasks()
	if err != nil {
		t.Fatalf("LoadTasks: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("Expected 2 tasks, got %d", len(loaded))
	}

	got := loaded[0]
	if got.Title != "Write report" || got.Content != "quarterly numbers" || got.Priority != models.PriorityHigh {
		t.Errorf("Task fields lost in round trip: %+v", got)
	}
	if !got.HasDue() || !got.Due.Equal(due) {
		t.Errorf("Due instant changed: %v", got.Due)
	}
	if got.DueZone == nil || got.DueZone.String() != "America/New_York" {
		t.Errorf("Due zone lost: %v", got.DueZone)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "work" {
		t.Errorf("Tags lost: %v", got.Tags)
	}

	if loaded[1].HasDue() || loaded[1].DueZone != nil {
		t.Errorf("Absent due date must stay absent: %+v", loaded[1])
	}
}

func TestSaveTasksReplacesPreviousSet(t *testing.T) {
	s := testStore(t)

	if err := s.SaveTasks([]models.Task{{ID: "old", Title: "Old"}}); err != nil {
		t.Fatalf("SaveTasks: %v", err)
	}
	if err := s.SaveTasks([]models.Task{{ID: "new", Title: "New"}}); err != nil {
		t.Fatalf("SaveTasks: %v", err)
	}

	loaded, err := s.LoadTasks()
	if err != nil {
		t.Fatalf("LoadTasks: %v", err)
	}
	if len(loaded) != 1 || loaded[0].ID != "new" {
		t.Errorf("Expected only the fresh set, got %+v", loaded)
	}
}

func TestProjectIDForTask(t *testing.T) {
	s := testStore(t)

	if err := s.SaveTasks([]models.Task{{ID: "t1", Title: "T", ProjectID: "proj-9"}}); err != nil {
		t.Fatalf("SaveTasks: %v", err)
	}

	pid, err := s.ProjectIDForTask("t1")
	if err != nil {
		t.Fatalf("ProjectIDForTask: %v", err)
	}
	if pid != "proj-9" {
		t.Errorf("got %q, want proj-9", pid)
	}

	if _, err := s.ProjectIDForTask("ghost"); err == nil {
		t.Error("Expected an error for a task not in the cache")
	}
}

func TestLastRefreshedAt(t *testing.T) {
	s := testStore(t)

	ts, err := s.LastRefreshedAt()
	if err != nil {
		t.Fatalf("LastRefreshedAt: %v", err)
	}
	if !ts.IsZero() {
		t.Errorf("Fresh database must report zero time, got %v", ts)
	}

	before := time.Now().Add(-time.Second)
	if err := s.SaveTasks(nil); err != nil {
		t.Fatalf("SaveTasks: %v", err)
	}
	ts, err = s.LastRefreshedAt()
	if err != nil {
		t.Fatalf("LastRefreshedAt: %v", err)
	}
	if ts.Before(before) {
		t.Errorf("Refresh time not updated: %v", ts)
	}
}
