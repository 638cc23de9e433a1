// Package models defines the core domain types for tickdeck.
package models

import "time"

// UntitledPlaceholder is substituted for tasks the remote service
// returns without a usable title.
const UntitledPlaceholder = "(untitled task)"

// Priority is the ordinal task priority. Higher sorts first.
type Priority int

const (
	PriorityNone Priority = iota
	PriorityLow
	PriorityMedium
	PriorityHigh
)

// PriorityFromRemote maps the remote 0-5 priority scale onto the
// internal ordinal. Out-of-range values collapse to PriorityNone.
func PriorityFromRemote(v int) Priority {
	switch {
	case v >= 4 && v <= 5:
		return PriorityHigh
	case v == 3:
		return PriorityMedium
	case v == 1 || v == 2:
		return PriorityLow
	default:
		return PriorityNone
	}
}

func (p Priority) String() string {
	switch p {
	case PriorityHigh:
		return "high"
	case PriorityMedium:
		return "medium"
	case PriorityLow:
		return "low"
	default:
		return "none"
	}
}

// Task is the canonical, fully normalized unit. Every Task that reaches
// a Snapshot is active; completed tasks never survive normalization.
// Invariant: Due and DueZone are set together or not at all.
type Task struct {
	ID        string
	Title     string
	Content   string
	ProjectID string
	Priority  Priority
	Due       *time.Time
	DueZone   *time.Location
	Created   time.Time
	Tags      []string
}

// HasDue reports whether the task carries a resolved due instant.
func (t Task) HasDue() bool {
	return t.Due != nil
}

// Group is a temporal bucket in the widget view.
type Group int

const (
	GroupOverdue Group = iota
	GroupToday
	GroupTomorrow
	GroupLater

	// GroupCount is the number of buckets; groups render in declaration order.
	GroupCount
)

func (g Group) String() string {
	switch g {
	case GroupOverdue:
		return "Overdue"
	case GroupToday:
		return "Today"
	case GroupTomorrow:
		return "Tomorrow"
	case GroupLater:
		return "Later"
	default:
		return "Unknown"
	}
}

// Snapshot is one grouped, sorted view of all active tasks. Empty
// groups stay present so the render order is fixed.
type Snapshot struct {
	Groups  [GroupCount][]Task
	TakenAt time.Time
}

// Count returns the total number of tasks across all groups.
func (s Snapshot) Count() int {
	n := 0
	for _, g := range s.Groups {
		n += len(g)
	}
	return n
}

// Find returns the task with the given id and its group.
func (s Snapshot) Find(id string) (Task, Group, bool) {
	for gi, g := range s.Groups {
		for _, t := range g {
			if t.ID == id {
				return t, Group(gi), true
			}
		}
	}
	return Task{}, 0, false
}

// PendingCompletion tracks one in-flight optimistic completion. The
// saved Task copy is what rollback reinserts.
type PendingCompletion struct {
	AttemptID   string
	TaskID      string
	Task        Task
	SubmittedAt time.Time
}

// PersistedState is the small durable widget state document.
type PersistedState struct {
	X       int    `json:"x"`
	Y       int    `json:"y"`
	Locked  bool   `json:"locked"`
	ThemeID string `json:"theme_id"`
	Version string `json:"version"`
}

// StateVersion is the persisted document schema version.
const StateVersion = "1.0"

// DefaultState returns the state used when no document exists yet.
func DefaultState() PersistedState {
	return PersistedState{
		X:       100,
		Y:       100,
		ThemeID: "dark",
		Version: StateVersion,
	}
}
