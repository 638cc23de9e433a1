// Package complete drives optimistic task completion: the view changes
// immediately, the remote call resolves in the background, and the two
// always converge.
package complete

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"tickdeck/internal/models"
	"tickdeck/internal/snapshot"
)

// ErrAlreadyInFlight rejects a second completion trigger for a task
// whose first attempt has not resolved yet. No duplicate remote call
// is issued.
var ErrAlreadyInFlight = errors.New("completion already in flight")

// Outcome is the terminal state of one completion attempt.
type Outcome int

const (
	OutcomeConfirmed Outcome = iota
	OutcomeRolledBack
)

// Result is the resolution of one attempt. On rollback it doubles as
// the user-visible error signal carrying the task title and the
// failure reason.
type Result struct {
	Outcome Outcome
	TaskID  string
	Title   string
	Reason  string
}

// Coordinator owns the PendingCompletion bookkeeping. Like the cache,
// it is single-writer: every method runs on the control loop; the
// remote call itself is the caller's background concern.
type Coordinator struct {
	cache   *snapshot.Cache
	pending map[string]models.PendingCompletion
}

// NewCoordinator returns a coordinator over the given cache.
func NewCoordinator(cache *snapshot.Cache) *Coordinator {
	return &Coordinator{
		cache:   cache,
		pending: make(map[string]models.PendingCompletion),
	}
}

// Begin starts a completion attempt: the task disappears from the view
// synchronously and the removed value is saved for rollback. Returns
// ErrAlreadyInFlight for a duplicate trigger and snapshot.ErrNotFound
// when the id is not in the view.
func (co *Coordinator) Begin(id string) (models.PendingCompletion, error) {
	if _, ok := co.pending[id]; ok {
		return models.PendingCompletion{}, fmt.Errorf("task %q: %w", id, ErrAlreadyInFlight)
	}
	task, err := co.cache.RemoveOptimistically(id)
	if err != nil {
		return models.PendingCompletion{}, err
	}
	p := models.PendingCompletion{
		AttemptID:   uuid.New().String(),
		TaskID:      id,
		Task:        task,
		SubmittedAt: time.Now(),
	}
	co.pending[id] = p
	return p, nil
}

// Resolve applies the outcome of the remote call. A nil callErr
// confirms the removal; any error (network, non-2xx, timeout) rolls
// the saved task back into its correct group and returns the signal to
// surface. An id no longer pending, because a refresh already
// confirmed it implicitly, resolves to a no-op confirmation even when
// the original call reports failure: absence from server truth wins.
func (co *Coordinator) Resolve(id string, callErr error) Result {
	p, ok := co.pending[id]
	if !ok {
		return Result{Outcome: OutcomeConfirmed, TaskID: id}
	}
	delete(co.pending, id)

	if callErr == nil {
		return Result{Outcome: OutcomeConfirmed, TaskID: id, Title: p.Task.Title}
	}
	co.cache.Reinsert(p.Task)
	return Result{
		Outcome: OutcomeRolledBack,
		TaskID:  id,
		Title:   p.Task.Title,
		Reason:  callErr.Error(),
	}
}

// ReconcileRefresh realigns pending completions after the cache was
// replaced with a fresh snapshot. A pending task still present in
// server truth is removed again, so the refresh never undoes the
// optimism; its saved rollback copy is updated to the fresh value. A
// pending task absent from the refresh is implicitly confirmed without
// waiting for the original remote response. Returns the implicit
// confirmations.
func (co *Coordinator) ReconcileRefresh() []Result {
	var confirmed []Result
	for id, p := range co.pending {
		task, err := co.cache.RemoveOptimistically(id)
		if err != nil {
			delete(co.pending, id)
			confirmed = append(confirmed, Result{
				Outcome: OutcomeConfirmed,
				TaskID:  id,
				Title:   p.Task.Title,
			})
			continue
		}
		p.Task = task
		co.pending[id] = p
	}
	return confirmed
}

// InFlight reports whether a completion attempt is pending for id.
func (co *Coordinator) InFlight(id string) bool {
	_, ok := co.pending[id]
	return ok
}

// PendingCount returns the number of unresolved attempts.
func (co *Coordinator) PendingCount() int {
	return len(co.pending)
}

// Abandon drops all pending attempts without touching the cache. Used
// on shutdown, when in-flight network operations are walked away from.
func (co *Coordinator) Abandon() {
	co.pending = make(map[string]models.PendingCompletion)
}
