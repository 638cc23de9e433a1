package tui

import (
	"github.com/charmbracelet/lipgloss"

	"tickdeck/internal/models"
)

// Theme is one named color palette for the widget, a terminal port of
// the desktop stylesheet set.
type Theme struct {
	ID         string
	Name       string
	Accent     lipgloss.Color
	Foreground lipgloss.Color
	Muted      lipgloss.Color
	Border     lipgloss.Color
	Danger     lipgloss.Color
	Warning    lipgloss.Color
	Success    lipgloss.Color
}

var themes = []Theme{
	{
		ID:         "dark",
		Name:       "Dark Mode",
		Accent:     lipgloss.Color("#7C3AED"),
		Foreground: lipgloss.Color("#F9FAFB"),
		Muted:      lipgloss.Color("#6B7280"),
		Border:     lipgloss.Color("#374151"),
		Danger:     lipgloss.Color("#EF4444"),
		Warning:    lipgloss.Color("#F59E0B"),
		Success:    lipgloss.Color("#10B981"),
	},
	{
		ID:         "light",
		Name:       "Light Mode",
		Accent:     lipgloss.Color("#6366F1"),
		Foreground: lipgloss.Color("#1F2937"),
		Muted:      lipgloss.Color("#9CA3AF"),
		Border:     lipgloss.Color("#D1D5DB"),
		Danger:     lipgloss.Color("#DC2626"),
		Warning:    lipgloss.Color("#D97706"),
		Success:    lipgloss.Color("#059669"),
	},
	{
		ID:         "nord",
		Name:       "Nord",
		Accent:     lipgloss.Color("#88C0D0"),
		Foreground: lipgloss.Color("#ECEFF4"),
		Muted:      lipgloss.Color("#4C566A"),
		Border:     lipgloss.Color("#434C5E"),
		Danger:     lipgloss.Color("#BF616A"),
		Warning:    lipgloss.Color("#EBCB8B"),
		Success:    lipgloss.Color("#A3BE8C"),
	},
}

// ThemeByID returns the theme with the given id, falling back to the
// first (dark) theme for unknown ids.
func ThemeByID(id string) Theme {
	for _, t := range themes {
		if t.ID == id {
			return t
		}
	}
	return themes[0]
}

// NextTheme cycles to the theme after id.
func NextTheme(id string) Theme {
	for i, t := range themes {
		if t.ID == id {
			return themes[(i+1)%len(themes)]
		}
	}
	return themes[0]
}

// styles holds the per-theme lipgloss styles.
type styles struct {
	title        lipgloss.Style
	groupHeader  lipgloss.Style
	groupCount   lipgloss.Style
	task         lipgloss.Style
	selectedTask lipgloss.Style
	pendingTask  lipgloss.Style
	due          lipgloss.Style
	overdueDue   lipgloss.Style
	content      lipgloss.Style
	statusBar    lipgloss.Style
	errorBar     lipgloss.Style
	help         lipgloss.Style
	priority     map[models.Priority]lipgloss.Style
}

func newStyles(t Theme) styles {
	badge := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	return styles{
		title: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Accent).
			Padding(0, 1),
		groupHeader: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Foreground).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(t.Border),
		groupCount: lipgloss.NewStyle().
			Foreground(t.Muted),
		task: lipgloss.NewStyle().
			Foreground(t.Foreground).
			Padding(0, 2),
		selectedTask: lipgloss.NewStyle().
			Background(t.Accent).
			Foreground(t.Foreground).
			Bold(true).
			Padding(0, 2),
		pendingTask: lipgloss.NewStyle().
			Foreground(t.Muted).
			Strikethrough(true).
			Padding(0, 2),
		due: lipgloss.NewStyle().
			Foreground(t.Muted),
		overdueDue: lipgloss.NewStyle().
			Foreground(t.Danger),
		content: lipgloss.NewStyle().
			Foreground(t.Muted).
			Padding(0, 4),
		statusBar: lipgloss.NewStyle().
			Background(t.Border).
			Foreground(t.Foreground).
			Padding(0, 1),
		errorBar: lipgloss.NewStyle().
			Foreground(t.Danger).
			Bold(true).
			Padding(0, 1),
		help: lipgloss.NewStyle().
			Foreground(t.Muted).
			Italic(true),
		priority: map[models.Priority]lipgloss.Style{
			models.PriorityHigh:   badge.Copy().Foreground(t.Danger),
			models.PriorityMedium: badge.Copy().Foreground(t.Warning),
			models.PriorityLow:    badge.Copy().Foreground(t.Success),
			models.PriorityNone:   badge.Copy().Foreground(t.Muted),
		},
	}
}
