// Package timezone resolves raw due-date strings into zone-correct
// instants. The resolved zone decides which calendar day "today" means
// for a task, so the fallback order here directly drives grouping.
package timezone

import (
	"time"

	"tickdeck/internal/models"
	"tickdeck/internal/normalize"
)

// Layouts the remote service emits. Offset-carrying forms keep their
// own offset and are re-expressed in the resolved zone; naive forms are
// parsed directly in the resolved zone.
var (
	offsetLayouts = []string{
		time.RFC3339,
		"2006-01-02T15:04:05.000-0700",
		"2006-01-02T15:04:05-0700",
	}
	naiveLayouts = []string{
		"2006-01-02T15:04:05",
		"2006-01-02",
	}
)

// Resolver picks the effective time zone for each task.
//
// Resolution order, deterministic: (1) the zone embedded in the task
// data when it names a loadable zone, (2) the configured fallback zone,
// (3) the host local zone. NewResolver collapses (2) and (3): an unset
// or unknown configured name becomes time.Local at construction.
type Resolver struct {
	fallback *time.Location
}

// NewResolver builds a resolver from a configured zone name. An empty
// or unknown name falls back to the host local zone.
func NewResolver(name string) *Resolver {
	if name != "" {
		if loc, err := time.LoadLocation(name); err == nil {
			return &Resolver{fallback: loc}
		}
	}
	return &Resolver{fallback: time.Local}
}

// Effective returns the zone used for "now" when a task carries no
// usable hint of its own.
func (r *Resolver) Effective() *time.Location {
	return r.fallback
}

// Resolve interprets a raw due-date string under the candidate zones
// and returns the instant plus the zone it was resolved in. An empty
// or unparsable string yields (nil, nil): the task is treated as
// having no due date.
func (r *Resolver) Resolve(rawDue, rawZone string) (*time.Time, *time.Location) {
	if rawDue == "" {
		return nil, nil
	}

	zone := r.fallback
	if rawZone != "" {
		if loc, err := time.LoadLocation(rawZone); err == nil {
			zone = loc
		}
	}

	for _, layout := range offsetLayouts {
		if t, err := time.Parse(layout, rawDue); err == nil {
			localized := t.In(zone)
			return &localized, zone
		}
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, rawDue, zone); err == nil {
			return &t, zone
		}
	}
	return nil, nil
}

// Apply finalizes normalized records into Tasks, resolving the due
// instant and the creation time. A creation time that fails to parse
// becomes the zero time, which sorts first among equals.
func (r *Resolver) Apply(items []normalize.Normalized) []models.Task {
	tasks := make([]models.Task, 0, len(items))
	for _, item := range items {
		task := item.Task
		task.Due, task.DueZone = r.Resolve(item.RawDue, item.RawZone)
		task.Created = parseInstant(item.RawCreated)
		tasks = append(tasks, task)
	}
	return tasks
}

func parseInstant(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range offsetLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return t
		}
	}
	return time.Time{}
}
