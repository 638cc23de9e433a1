package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"tickdeck/internal/models"
)

const contentPreviewLen = 60

// View renders the grouped widget. Groups keep their fixed order;
// empty groups exist in the snapshot but are not drawn, matching the
// desktop widget.
func (a *App) View() string {
	var b strings.Builder

	title := "TickTick Tasks"
	if a.refreshing {
		title += " " + a.spin.View()
	}
	b.WriteString(a.st.title.Render(title))
	b.WriteString("\n\n")

	snap := a.cache.Current()
	now := time.Now()

	if snap.Count() == 0 {
		b.WriteString(a.st.content.Render("No active tasks"))
		b.WriteString("\n")
	}

	idx := 0
	for gi := models.Group(0); gi < models.GroupCount; gi++ {
		tasks := snap.Groups[gi]
		if len(tasks) == 0 {
			continue
		}

		header := a.st.groupHeader.Render(gi.String()) + " " +
			a.st.groupCount.Render(countLabel(len(tasks)))
		b.WriteString(header)
		b.WriteString("\n")

		for _, t := range tasks {
			b.WriteString(a.renderTask(now, t, idx == a.cursor))
			b.WriteString("\n")
			idx++
		}
		b.WriteString("\n")
	}

	if a.errNotice != "" {
		b.WriteString(a.st.errorBar.Render(a.errNotice))
		b.WriteString("\n")
	} else if a.notice != "" {
		b.WriteString(a.st.groupCount.Render(a.notice))
		b.WriteString("\n")
	}

	b.WriteString(a.statusLine(snap))
	b.WriteString("\n")
	b.WriteString(a.st.help.Render("↑/↓ move · enter complete · r refresh · t theme · L lock · shift+arrows drag · q quit"))
	b.WriteString("\n")

	return b.String()
}

func (a *App) renderTask(now time.Time, t models.Task, selected bool) string {
	badge := a.st.priority[t.Priority].Render("●")

	line := badge + " " + t.Title
	if label := dueLabel(now, t); label != "" {
		style := a.st.due
		if t.HasDue() && t.Due.Before(now) {
			style = a.st.overdueDue
		}
		line += "  " + style.Render(label)
	}

	style := a.st.task
	if selected {
		style = a.st.selectedTask
	}
	out := style.Render(line)

	if t.Content != "" && selected {
		out += "\n" + a.st.content.Render(truncate(t.Content, contentPreviewLen))
	}
	return out
}

func (a *App) statusLine(snap models.Snapshot) string {
	parts := []string{fmt.Sprintf("%d tasks", snap.Count())}
	if !a.lastRefresh.IsZero() {
		parts = append(parts, "updated "+a.lastRefresh.Format("15:04:05"))
	}
	if a.dropped > 0 {
		parts = append(parts, fmt.Sprintf("%d skipped", a.dropped))
	}
	if n := a.coord.PendingCount(); n > 0 {
		parts = append(parts, fmt.Sprintf("%d completing…", n))
	}
	if a.state.Locked {
		parts = append(parts, "locked")
	}
	return a.st.statusBar.Render(strings.Join(parts, " · "))
}

func countLabel(n int) string {
	if n == 1 {
		return "1 task"
	}
	return fmt.Sprintf("%d tasks", n)
}

// dueLabel is the human due-date line: relative day distance computed
// on calendar days in the task's own zone.
func dueLabel(now time.Time, t models.Task) string {
	if !t.HasDue() {
		return ""
	}
	local := now.In(t.DueZone)
	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, t.DueZone)
	due := t.Due.In(t.DueZone)
	dueDay := time.Date(due.Year(), due.Month(), due.Day(), 0, 0, 0, 0, t.DueZone)

	// Round instead of truncate: DST makes some calendar days 23 or
	// 25 hours long.
	days := int(math.Round(dueDay.Sub(today).Hours() / 24))
	switch {
	case days < -1:
		return fmt.Sprintf("overdue by %d days", -days)
	case days == -1:
		return "overdue by 1 day"
	case days == 0:
		return "due today " + due.Format("15:04")
	case days == 1:
		return "due tomorrow"
	default:
		return fmt.Sprintf("due in %d days", days)
	}
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
