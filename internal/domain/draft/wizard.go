package draft

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/casebook/casebook/internal/domain/medcase"
	"github.com/casebook/casebook/internal/platform/metrics"
)

// ValidationError carries the failed step and its per-field messages. It is
// always recoverable by editing the offending fields.
type ValidationError struct {
	Step        StepID
	FieldErrors map[string]string
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.FieldErrors))
	for f := range e.FieldErrors {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fmt.Sprintf("step %s validation failed: %s", e.Step, strings.Join(fields, ", "))
}

// CaseCreator commits validated draft fields as a new case. Satisfied by
// medcase.Service.
type CaseCreator interface {
	Create(ctx context.Context, in medcase.CreateInput) (*medcase.MedicalCase, error)
}

// Snapshot is the read-only view handed to the presentation layer after
// every transition.
type Snapshot struct {
	DraftID              string            `json:"draft_id"`
	CurrentStepIndex     int               `json:"current_step_index"`
	TotalSteps           int               `json:"total_steps"`
	Step                 StepID            `json:"step"`
	CompletionPercentage float64           `json:"completion_percentage"`
	CompletedSteps       []StepID          `json:"completed_steps"`
	Fields               interface{}       `json:"fields"`
	FieldErrors          map[string]string `json:"field_errors,omitempty"`
	IsSubmitting         bool              `json:"is_submitting"`
	Committed            bool              `json:"committed"`
	LastSavedAt          *time.Time        `json:"last_saved_at,omitempty"`
}

// Wizard drives one draft through the step sequence. All state is guarded by
// a single mutex; the only operations that leave the lock while in flight are
// the debounced autosave timer and the repository call during Submit.
type Wizard struct {
	mu       sync.Mutex
	draft    *CaseDraft
	store    *Store
	cases    CaseCreator
	debounce time.Duration
	logger   zerolog.Logger

	timer      *time.Timer
	lastSaved  Fields
	stepErrors map[StepID]map[string]string
	submitting bool
	committed  bool
	closed     bool
}

// NewWizard wraps a draft in a controller. The draft may be freshly created
// or loaded from the store for resume; either way the controller takes it at
// whatever step it was left on.
func NewWizard(d *CaseDraft, store *Store, cases CaseCreator, debounce time.Duration, logger zerolog.Logger) *Wizard {
	if d.CompletedSteps == nil {
		d.CompletedSteps = make(map[StepID]bool)
	}
	return &Wizard{
		draft:      d,
		store:      store,
		cases:      cases,
		debounce:   debounce,
		logger:     logger.With().Str("draft_id", d.ID.String()).Logger(),
		lastSaved:  d.Fields,
		stepErrors: make(map[StepID]map[string]string),
	}
}

// DraftID returns the id of the wizard's draft.
func (w *Wizard) DraftID() string {
	return w.draft.ID.String()
}

// Edit merges a patch into the given step's fields and schedules a debounced
// autosave. A patch arriving before the previous timer fires reschedules it,
// so a burst of edits produces a single save. Editing never moves the
// current step.
func (w *Wizard) Edit(step StepID, p Patch) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrClosed
	}
	if w.submitting {
		return ErrSubmitInFlight
	}
	if StepIndex(step) < 0 {
		return fmt.Errorf("%w: unknown step %q", ErrInvalidTransition, step)
	}

	w.draft.Fields.apply(step, p)
	delete(w.stepErrors, step)
	w.scheduleAutosaveLocked()
	return nil
}

// scheduleAutosaveLocked resets the debounce timer. Callers hold w.mu.
func (w *Wizard) scheduleAutosaveLocked() {
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.flushAutosave)
}

func (w *Wizard) stopTimerLocked() {
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}

// flushAutosave runs when the debounce quiet period elapses. The save
// reflects the draft fields at firing time, not any intermediate state. If
// the content is unchanged since the last persist, no write is issued. Save
// failures are logged and left for the next cycle; they never surface to the
// user beyond an unsaved indicator.
func (w *Wizard) flushAutosave() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.timer = nil
	if w.closed || w.submitting {
		return
	}
	if reflect.DeepEqual(w.draft.Fields, w.lastSaved) {
		metrics.AutosaveTotal.WithLabelValues("skipped").Inc()
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := w.store.Save(ctx, w.draft); err != nil {
		metrics.AutosaveTotal.WithLabelValues("error").Inc()
		w.logger.Warn().Err(err).Msg("autosave failed, will retry on next cycle")
		return
	}
	w.lastSaved = w.draft.Fields
	metrics.AutosaveTotal.WithLabelValues("saved").Inc()
}

// SaveNow persists the draft immediately, bypassing the debounce. Any
// pending autosave timer is cancelled so no duplicate write follows.
func (w *Wizard) SaveNow(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrClosed
	}
	w.stopTimerLocked()
	return w.persistLocked(ctx)
}

// persistLocked writes the draft and refreshes the dedup snapshot.
func (w *Wizard) persistLocked(ctx context.Context) error {
	if err := w.store.Save(ctx, w.draft); err != nil {
		return err
	}
	w.lastSaved = w.draft.Fields
	metrics.DraftSavesTotal.Inc()
	return nil
}

// Next validates the current step and, if it passes, marks it completed and
// advances. A failed validation leaves the step unchanged and records the
// field errors for the snapshot. Rejected at the last step.
func (w *Wizard) Next(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrClosed
	}
	if w.submitting {
		return ErrSubmitInFlight
	}
	if w.draft.CurrentStepIndex >= TotalSteps-1 {
		return fmt.Errorf("%w: already at the last step", ErrInvalidTransition)
	}

	step := w.draft.CurrentStep()
	res := ValidateStep(step, w.draft.Fields)
	if !res.Valid {
		w.stepErrors[step] = res.FieldErrors
		return &ValidationError{Step: step, FieldErrors: res.FieldErrors}
	}

	delete(w.stepErrors, step)
	w.draft.CompletedSteps[step] = true
	w.draft.CurrentStepIndex++
	w.stopTimerLocked()
	return w.persistLocked(ctx)
}

// Previous retreats one step without validation; users may back out of an
// invalid step. Rejected at step 0.
func (w *Wizard) Previous(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrClosed
	}
	if w.submitting {
		return ErrSubmitInFlight
	}
	if w.draft.CurrentStepIndex == 0 {
		return fmt.Errorf("%w: already at the first step", ErrInvalidTransition)
	}

	w.draft.CurrentStepIndex--
	w.stopTimerLocked()
	return w.persistLocked(ctx)
}

// JumpTo moves directly to a step that is already completed or is the
// current step. Skipping ahead to an unvalidated step is rejected.
func (w *Wizard) JumpTo(ctx context.Context, step StepID) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrClosed
	}
	if w.submitting {
		return ErrSubmitInFlight
	}
	idx := StepIndex(step)
	if idx < 0 {
		return fmt.Errorf("%w: unknown step %q", ErrInvalidTransition, step)
	}
	if step != w.draft.CurrentStep() && !w.draft.CompletedSteps[step] {
		return fmt.Errorf("%w: step %q has not been completed", ErrInvalidTransition, step)
	}

	w.draft.CurrentStepIndex = idx
	w.stopTimerLocked()
	return w.persistLocked(ctx)
}

// Submit commits the draft as a new case. Only legal from the last step with
// a valid final step. While a submission is in flight, re-entrant calls are
// rejected. On success the draft is removed from the store; on failure the
// draft and step position are preserved so a retry reproduces the same
// payload.
func (w *Wizard) Submit(ctx context.Context) (*medcase.MedicalCase, error) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil, ErrClosed
	}
	if w.submitting {
		w.mu.Unlock()
		return nil, ErrSubmitInFlight
	}
	if w.committed {
		w.mu.Unlock()
		return nil, fmt.Errorf("%w: draft already committed", ErrInvalidTransition)
	}
	if w.draft.CurrentStepIndex != TotalSteps-1 {
		w.mu.Unlock()
		return nil, fmt.Errorf("%w: submit is only allowed from the last step", ErrInvalidTransition)
	}

	step := w.draft.CurrentStep()
	res := ValidateStep(step, w.draft.Fields)
	if !res.Valid {
		w.stepErrors[step] = res.FieldErrors
		w.mu.Unlock()
		return nil, &ValidationError{Step: step, FieldErrors: res.FieldErrors}
	}
	delete(w.stepErrors, step)

	w.stopTimerLocked()
	w.submitting = true
	in := w.draft.Fields.toCreateInput()
	w.mu.Unlock()

	mc, err := w.cases.Create(ctx, in)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.submitting = false

	if err != nil {
		result := "error"
		var verr *medcase.ValidationError
		if errors.As(err, &verr) {
			result = "rejected"
		}
		metrics.CaseCommitsTotal.WithLabelValues(result).Inc()
		w.logger.Error().Err(err).Msg("case submission failed, draft retained")
		return nil, fmt.Errorf("submit draft: %w", err)
	}

	w.draft.CompletedSteps[step] = true
	w.committed = true
	metrics.CaseCommitsTotal.WithLabelValues("committed").Inc()

	if err := w.store.Remove(ctx, w.draft.ID); err != nil {
		// The case exists; a stale draft is the lesser problem.
		w.logger.Warn().Err(err).Msg("removing committed draft failed")
	}

	w.logger.Info().Str("case_id", mc.ID.String()).Msg("draft committed")
	return mc, nil
}

// Snapshot returns the current read-only controller state.
func (w *Wizard) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	step := w.draft.CurrentStep()
	completed := make([]StepID, 0, len(w.draft.CompletedSteps))
	for _, s := range StepOrder {
		if w.draft.CompletedSteps[s] {
			completed = append(completed, s)
		}
	}

	return Snapshot{
		DraftID:              w.draft.ID.String(),
		CurrentStepIndex:     w.draft.CurrentStepIndex,
		TotalSteps:           TotalSteps,
		Step:                 step,
		CompletionPercentage: w.draft.CompletionPercentage(),
		CompletedSteps:       completed,
		Fields:               w.draft.Fields.StepData(step),
		FieldErrors:          w.stepErrors[step],
		IsSubmitting:         w.submitting,
		Committed:            w.committed,
		LastSavedAt:          w.draft.LastSavedAt,
	}
}

// Close tears the wizard down. Any pending autosave is cancelled
// unconditionally; nothing is written after Close returns.
func (w *Wizard) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.closed = true
	w.stopTimerLocked()
}
