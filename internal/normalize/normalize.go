// Package normalize converts loosely-typed remote task records into
// strict internal values that every downstream stage can trust.
package normalize

import (
	"strings"

	"tickdeck/internal/models"
)

const (
	// KindText is the only remote task kind the widget displays.
	// Checklist-only and note kinds are dropped.
	KindText = "TEXT"

	// StatusActive is the remote status code for an uncompleted task.
	StatusActive = 0
)

// RawRecord is one untyped task record as decoded from the remote JSON.
type RawRecord map[string]any

// Normalized pairs a partially built Task with the raw temporal fields
// the timezone resolver interprets in the next stage. The normalizer
// itself never parses dates or zones.
type Normalized struct {
	Task       models.Task
	RawDue     string
	RawZone    string
	RawCreated string
}

// Normalize filters and normalizes remote records. It returns the kept
// records plus a count of records dropped for being the wrong kind,
// already completed, or irrecoverably malformed. A bad record is
// skipped, never fatal to the pass.
func Normalize(records []RawRecord) ([]Normalized, int) {
	out := make([]Normalized, 0, len(records))
	dropped := 0

	for _, rec := range records {
		if rec == nil {
			dropped++
			continue
		}
		if str(rec, "kind") != KindText {
			dropped++
			continue
		}
		// Status must be present and zero. A record without a status
		// cannot be proven active.
		if status, ok := numOK(rec, "status"); !ok || status != StatusActive {
			dropped++
			continue
		}
		id := strings.TrimSpace(str(rec, "id"))
		if id == "" {
			// Without a stable id the task can never be completed
			// or deduplicated, so the record is unusable.
			dropped++
			continue
		}

		title := strings.TrimSpace(str(rec, "title"))
		if title == "" {
			title = models.UntitledPlaceholder
		}

		out = append(out, Normalized{
			Task: models.Task{
				ID:        id,
				Title:     title,
				Content:   strings.TrimSpace(str(rec, "content")),
				ProjectID: strings.TrimSpace(str(rec, "projectId")),
				Priority:  models.PriorityFromRemote(num(rec, "priority")),
				Tags:      strs(rec, "tags"),
			},
			RawDue:     str(rec, "dueDate"),
			RawZone:    str(rec, "timeZone"),
			RawCreated: str(rec, "createdTime"),
		})
	}
	return out, dropped
}

// str extracts a string field, tolerating absence and wrong types.
func str(rec RawRecord, key string) string {
	if v, ok := rec[key].(string); ok {
		return v
	}
	return ""
}

// num extracts an integer field, zero when absent or mistyped. JSON
// decoding yields float64; ints appear in hand-built records.
func num(rec RawRecord, key string) int {
	v, _ := numOK(rec, key)
	return v
}

func numOK(rec RawRecord, key string) (int, bool) {
	switch v := rec[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case int64:
		return int(v), true
	default:
		return 0, false
	}
}

func strs(rec RawRecord, key string) []string {
	raw, ok := rec[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
