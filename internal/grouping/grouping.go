// Package grouping partitions tasks into temporal buckets and orders
// them deterministically inside each bucket.
package grouping

import (
	"sort"
	"time"

	"tickdeck/internal/models"
)

// Build produces a Snapshot from the current moment and a task set.
// Pure function: identical inputs yield identical group membership and
// identical order.
func Build(now time.Time, tasks []models.Task) models.Snapshot {
	snap := models.Snapshot{TakenAt: now}
	for _, t := range tasks {
		g := GroupOf(now, t)
		snap.Groups[g] = append(snap.Groups[g], t)
	}
	for gi := range snap.Groups {
		sortGroup(snap.Groups[gi])
	}
	return snap
}

// GroupOf buckets a single task. The calendar comparison runs in the
// task's own resolved zone: a 23:00 due yesterday in New York is
// overdue even while UTC still says today.
func GroupOf(now time.Time, t models.Task) models.Group {
	if !t.HasDue() {
		return models.GroupLater
	}
	local := now.In(t.DueZone)
	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, t.DueZone)
	due := t.Due.In(t.DueZone)

	switch {
	case due.Before(today):
		return models.GroupOverdue
	case due.Before(today.AddDate(0, 0, 1)):
		return models.GroupToday
	case due.Before(today.AddDate(0, 0, 2)):
		return models.GroupTomorrow
	default:
		return models.GroupLater
	}
}

// Less is the total order within a group: priority descending, then
// due instant (creation time when no due date) ascending, then id
// ascending. Total, so equal-priority tasks never reorder between
// refreshes.
func Less(a, b models.Task) bool {
	if a.Priority != b.Priority {
		return a.Priority > b.Priority
	}
	sa, sb := secondaryKey(a), secondaryKey(b)
	if !sa.Equal(sb) {
		return sa.Before(sb)
	}
	return a.ID < b.ID
}

func secondaryKey(t models.Task) time.Time {
	if t.HasDue() {
		return *t.Due
	}
	return t.Created
}

func sortGroup(tasks []models.Task) {
	sort.Slice(tasks, func(i, j int) bool {
		return Less(tasks[i], tasks[j])
	})
}

// InsertSorted returns the group with task spliced in at its ordered
// position. Used on rollback so a reinserted task lands exactly where
// a full re-sort would put it.
func InsertSorted(tasks []models.Task, task models.Task) []models.Task {
	i := sort.Search(len(tasks), func(i int) bool {
		return Less(task, tasks[i])
	})
	tasks = append(tasks, models.Task{})
	copy(tasks[i+1:], tasks[i:])
	tasks[i] = task
	return tasks
}
