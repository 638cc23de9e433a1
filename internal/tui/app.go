// Package tui provides the terminal widget for tickdeck.
//
// The Bubble Tea Update loop is the single control thread of the
// system: every mutation of the snapshot cache and the pending
// completion bookkeeping happens inside it. Network calls run as
// commands and hand their results back as messages; they never touch
// shared state directly.
package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"tickdeck/internal/complete"
	"tickdeck/internal/config"
	"tickdeck/internal/grouping"
	"tickdeck/internal/models"
	"tickdeck/internal/normalize"
	"tickdeck/internal/persist"
	"tickdeck/internal/snapshot"
	"tickdeck/internal/timezone"
)

// TaskService is the remote collaborator surface the widget needs.
type TaskService interface {
	FetchActiveTasks(ctx context.Context) ([]normalize.RawRecord, error)
	CompleteTask(ctx context.Context, projectID, taskID string) error
}

// CacheStore persists the last reconciled task set between runs.
type CacheStore interface {
	SaveTasks([]models.Task) error
}

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Complete key.Binding
	Refresh  key.Binding
	Theme    key.Binding
	Lock     key.Binding
	Nudge    key.Binding
	Quit     key.Binding
}

var keys = keyMap{
	Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Complete: key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "complete")),
	Refresh:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Theme:    key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "theme")),
	Lock:     key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "lock")),
	Nudge:    key.NewBinding(key.WithKeys("shift+up", "shift+down", "shift+left", "shift+right"), key.WithHelp("shift+arrows", "move")),
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

type (
	refreshTickMsg time.Time
	refreshDoneMsg struct {
		records []normalize.RawRecord
		err     error
	}
	completeDoneMsg struct {
		taskID string
		err    error
	}
	cacheSavedMsg struct {
		err error
	}
)

// Options wires the widget's collaborators. Cache and Writer may be
// nil; the widget then runs without local persistence.
type Options struct {
	Config       *config.Config
	Service      TaskService
	Cache        CacheStore
	Writer       *persist.Writer
	State        models.PersistedState
	Resolver     *timezone.Resolver
	InitialTasks []models.Task
}

// App is the widget's Bubble Tea model.
type App struct {
	cfg      *config.Config
	service  TaskService
	cacheDB  CacheStore
	writer   *persist.Writer
	resolver *timezone.Resolver

	cache *snapshot.Cache
	coord *complete.Coordinator

	theme Theme
	st    styles
	state models.PersistedState

	cursor      int
	width       int
	height      int
	spin        spinner.Model
	refreshing  bool
	lastRefresh time.Time
	dropped     int
	notice      string
	errNotice   string
}

// New builds the widget, pre-painting from the locally cached task set
// so there is something on screen before the first fetch lands.
func New(opts Options) *App {
	cache := snapshot.NewCache()
	if len(opts.InitialTasks) > 0 {
		now := time.Now().In(opts.Resolver.Effective())
		cache.Replace(grouping.Build(now, opts.InitialTasks))
	}

	theme := ThemeByID(opts.State.ThemeID)
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &App{
		cfg:      opts.Config,
		service:  opts.Service,
		cacheDB:  opts.Cache,
		writer:   opts.Writer,
		resolver: opts.Resolver,
		cache:    cache,
		coord:    complete.NewCoordinator(cache),
		theme:    theme,
		st:       newStyles(theme),
		state:    opts.State,
		spin:     sp,
	}
}

// Run starts the widget.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Init kicks off the spinner, the first fetch, and the refresh timer.
func (a *App) Init() tea.Cmd {
	return tea.Batch(a.spin.Tick, a.refreshCmd(), a.scheduleRefresh())
}

// Update is the control thread.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case refreshTickMsg:
		var cmds []tea.Cmd
		if !a.refreshing {
			cmds = append(cmds, a.refreshCmd())
		}
		cmds = append(cmds, a.scheduleRefresh())
		return a, tea.Batch(cmds...)

	case refreshDoneMsg:
		a.refreshing = false
		if msg.err != nil {
			// Keep the last good snapshot on screen.
			a.errNotice = fmt.Sprintf("refresh failed: %v", msg.err)
			return a, nil
		}
		return a, a.applyRefresh(msg.records)

	case completeDoneMsg:
		res := a.coord.Resolve(msg.taskID, msg.err)
		if res.Outcome == complete.OutcomeRolledBack {
			a.errNotice = fmt.Sprintf("couldn't complete %q: %s", res.Title, res.Reason)
		} else if res.Title != "" {
			a.notice = fmt.Sprintf("completed %q", res.Title)
		}
		a.clampCursor()
		return a, nil

	case cacheSavedMsg:
		if msg.err != nil {
			a.errNotice = fmt.Sprintf("cache save failed: %v", msg.err)
		}
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spin, cmd = a.spin.Update(msg)
		return a, cmd
	}
	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		a.coord.Abandon()
		return a, tea.Quit

	case key.Matches(msg, keys.Up):
		if a.cursor > 0 {
			a.cursor--
		}
		return a, nil

	case key.Matches(msg, keys.Down):
		if a.cursor < a.cache.Current().Count()-1 {
			a.cursor++
		}
		return a, nil

	case key.Matches(msg, keys.Refresh):
		if a.refreshing {
			return a, nil
		}
		return a, a.refreshCmd()

	case key.Matches(msg, keys.Complete):
		return a, a.completeSelected()

	case key.Matches(msg, keys.Theme):
		a.theme = NextTheme(a.theme.ID)
		a.st = newStyles(a.theme)
		a.state.ThemeID = a.theme.ID
		if a.writer != nil {
			a.writer.SetTheme(a.theme.ID)
		}
		return a, nil

	case key.Matches(msg, keys.Lock):
		a.state.Locked = !a.state.Locked
		if a.writer != nil {
			a.writer.SetLocked(a.state.Locked)
		}
		return a, nil

	case key.Matches(msg, keys.Nudge):
		return a, a.nudge(msg.String())
	}
	return a, nil
}

// completeSelected triggers an optimistic completion for the task
// under the cursor: it vanishes from the view synchronously, the
// remote call resolves in the background.
func (a *App) completeSelected() tea.Cmd {
	task, ok := a.selectedTask()
	if !ok {
		return nil
	}

	a.notice, a.errNotice = "", ""
	pending, err := a.coord.Begin(task.ID)
	if err != nil {
		if errors.Is(err, complete.ErrAlreadyInFlight) {
			a.errNotice = fmt.Sprintf("%q is already processing", task.Title)
		} else {
			a.errNotice = err.Error()
		}
		return nil
	}
	a.clampCursor()

	return func() tea.Msg {
		err := a.service.CompleteTask(context.Background(), pending.Task.ProjectID, pending.TaskID)
		return completeDoneMsg{taskID: pending.TaskID, err: err}
	}
}

// nudge moves the widget position one cell; position changes are
// debounced by the persistence writer, so dragging bursts cost one
// durable write.
func (a *App) nudge(k string) tea.Cmd {
	if a.state.Locked {
		a.notice = "position locked"
		return nil
	}
	switch k {
	case "shift+up":
		a.state.Y--
	case "shift+down":
		a.state.Y++
	case "shift+left":
		a.state.X--
	case "shift+right":
		a.state.X++
	}
	if a.writer != nil {
		a.writer.Move(a.state.X, a.state.Y)
	}
	return nil
}

func (a *App) refreshCmd() tea.Cmd {
	a.refreshing = true
	svc := a.service
	return func() tea.Msg {
		records, err := svc.FetchActiveTasks(context.Background())
		return refreshDoneMsg{records: records, err: err}
	}
}

func (a *App) scheduleRefresh() tea.Cmd {
	return tea.Tick(a.cfg.RefreshInterval(), func(t time.Time) tea.Msg {
		return refreshTickMsg(t)
	})
}

// applyRefresh runs the reconciliation pipeline on freshly fetched raw
// records and realigns pending completions with the new server truth.
func (a *App) applyRefresh(records []normalize.RawRecord) tea.Cmd {
	items, dropped := normalize.Normalize(records)
	tasks := a.resolver.Apply(items)
	now := time.Now().In(a.resolver.Effective())

	a.cache.Replace(grouping.Build(now, tasks))
	confirmed := a.coord.ReconcileRefresh()
	for _, res := range confirmed {
		if res.Title != "" {
			a.notice = fmt.Sprintf("completed %q", res.Title)
		}
	}

	a.dropped = dropped
	a.lastRefresh = time.Now()
	a.errNotice = ""
	a.clampCursor()

	if a.cacheDB == nil {
		return nil
	}
	db := a.cacheDB
	return func() tea.Msg {
		return cacheSavedMsg{err: db.SaveTasks(tasks)}
	}
}

// selectedTask resolves the cursor to a task in fixed group order.
func (a *App) selectedTask() (models.Task, bool) {
	snap := a.cache.Current()
	i := a.cursor
	for _, g := range snap.Groups {
		if i < len(g) {
			return g[i], true
		}
		i -= len(g)
	}
	return models.Task{}, false
}

func (a *App) clampCursor() {
	n := a.cache.Current().Count()
	if a.cursor >= n {
		a.cursor = n - 1
	}
	if a.cursor < 0 {
		a.cursor = 0
	}
}
