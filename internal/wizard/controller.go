package wizard

import (
	"context"
	"errors"
	"sync"

	ierr "github.com/recruitdash/recruitdash/internal/errors"
	"github.com/recruitdash/recruitdash/internal/logger"
)

var (
	// ErrSubmissionPending rejects a submit while another is in flight.
	ErrSubmissionPending = errors.New("a submission is already in progress")
	// ErrClosed is returned by operations on a closed wizard session.
	ErrClosed = errors.New("wizard session is closed")
	// ErrNoCancelPrompt is returned by ResolveCancel when Cancel did not
	// ask for confirmation.
	ErrNoCancelPrompt = errors.New("no cancel confirmation is pending")
)

// Transition describes the outcome of a navigation call.
type Transition struct {
	From      Step
	To        Step
	Moved     bool
	Submitted bool
	Job       *Job
}

// CancelOutcome is the result of Cancel.
type CancelOutcome int

const (
	// CancelClosed means there was nothing worth keeping; the wizard was
	// reset and closed.
	CancelClosed CancelOutcome = iota
	// CancelPrompt means the caller must ask the user and call
	// ResolveCancel.
	CancelPrompt
	// CancelBlocked means a submission is in flight; nothing changed.
	CancelBlocked
)

func (o CancelOutcome) String() string {
	switch o {
	case CancelPrompt:
		return "prompt"
	case CancelBlocked:
		return "blocked"
	default:
		return "closed"
	}
}

// CancelResolution is the user's answer to the cancel prompt.
type CancelResolution int

const (
	ContinueLater CancelResolution = iota
	Discard
)

func (r CancelResolution) String() string {
	if r == Discard {
		return "discard"
	}
	return "continue_later"
}

// Controller drives navigation, submission and the cancel flow over a Store.
type Controller struct {
	store     *Store
	submitter *Submitter
	log       *logger.Logger

	onClose     func()
	afterSubmit func(context.Context, Job, Draft)
	onDiscard   func(Draft)

	mu        sync.Mutex
	pending   bool
	prompting bool
	closed    bool
	lastErr   error
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithOnClose sets the callback run when the session ends. It runs at most
// once per session.
func WithOnClose(fn func()) ControllerOption {
	return func(c *Controller) { c.onClose = fn }
}

// WithAfterSubmit sets a callback run after a successful submission with
// the created job and the draft that produced it.
func WithAfterSubmit(fn func(context.Context, Job, Draft)) ControllerOption {
	return func(c *Controller) { c.afterSubmit = fn }
}

// WithOnDiscard sets a callback run with the draft being thrown away when
// the user discards.
func WithOnDiscard(fn func(Draft)) ControllerOption {
	return func(c *Controller) { c.onDiscard = fn }
}

func NewController(store *Store, submitter *Submitter, opts ...ControllerOption) *Controller {
	c := &Controller{
		store:     store,
		submitter: submitter,
		log:       logger.Named("wizard"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Store returns the controller's store.
func (c *Controller) Store() *Store { return c.store }

// Step returns the current step.
func (c *Controller) Step() Step { return c.store.Step() }

// CurrentValid reports whether the current step's rules pass.
func (c *Controller) CurrentValid() bool {
	return Valid(c.store.Step(), c.store.Draft())
}

// Problems lists what blocks leaving the current step.
func (c *Controller) Problems() []string {
	def, ok := DefinitionFor(c.store.Step())
	if !ok {
		return nil
	}
	return def.Check(c.store.Draft())
}

// GoNext advances when the current step is valid. From the last step it
// submits instead. An invalid step is not an error: the returned transition
// simply has Moved false.
//
// A failed submission returns a *SubmitError and leaves every bit of state
// in place so the user can retry.
func (c *Controller) GoNext(ctx context.Context) (Transition, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return Transition{}, ErrClosed
	}
	if c.pending {
		c.mu.Unlock()
		return Transition{}, ErrSubmissionPending
	}

	step := c.store.Step()
	draft := c.store.Draft()
	stay := Transition{From: step, To: step}
	if !Valid(step, draft) {
		c.mu.Unlock()
		return stay, nil
	}
	c.store.MarkComplete(step)

	if next, ok := step.Next(); ok {
		c.store.SetStep(next)
		c.mu.Unlock()
		return Transition{From: step, To: next, Moved: true}, nil
	}

	c.pending = true
	c.lastErr = nil
	c.mu.Unlock()

	job, err := c.submitter.Submit(ctx, draft)

	c.mu.Lock()
	c.pending = false
	if err != nil {
		c.lastErr = err
		c.mu.Unlock()
		c.log.Warn("create job failed: %v", err)
		return stay, err
	}
	c.mu.Unlock()

	c.log.Info("created job %d (%s)", job.ID, job.Title)
	c.store.Reset()
	if c.afterSubmit != nil {
		if err := ierr.Recover(func() error { c.afterSubmit(ctx, job, draft); return nil }); err != nil {
			c.log.Error("after-submit callback: %v", err)
		}
	}
	c.close()
	return Transition{From: step, To: c.store.Step(), Submitted: true, Job: &job}, nil
}

// GoBack moves one step earlier without checking validity. It does not
// move while a submission is in flight.
func (c *Controller) GoBack() Transition {
	c.mu.Lock()
	defer c.mu.Unlock()
	step := c.store.Step()
	if c.closed || c.pending {
		return Transition{From: step, To: step}
	}
	prev, ok := step.Prev()
	if !ok {
		return Transition{From: step, To: step}
	}
	c.store.SetStep(prev)
	return Transition{From: step, To: prev, Moved: true}
}

// CanJump reports whether Jump(target) would move.
func (c *Controller) CanJump(target Step) bool {
	cur := c.store.Step()
	if target.Index() < 0 || target == cur {
		return false
	}
	return target.Index() < cur.Index() || c.store.IsComplete(target)
}

// Jump moves to target when it is earlier than the current step or was
// completed before. Anything else, or any jump during a submission, is
// ignored.
func (c *Controller) Jump(target Step) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.pending || !c.CanJump(target) {
		return false
	}
	c.store.SetStep(target)
	return true
}

// Cancel ends the session straight away when nothing is worth keeping.
// Otherwise it returns CancelPrompt and waits for ResolveCancel. While a
// submission is in flight it returns CancelBlocked and changes nothing.
func (c *Controller) Cancel() CancelOutcome {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return CancelClosed
	}
	if c.pending {
		c.mu.Unlock()
		return CancelBlocked
	}
	if c.store.HasUnsavedChanges() {
		c.prompting = true
		c.mu.Unlock()
		return CancelPrompt
	}
	c.mu.Unlock()

	c.store.Reset()
	c.close()
	return CancelClosed
}

// ResolveCancel answers a pending cancel prompt. ContinueLater keeps the
// draft for the next session; Discard resets it. Both close the session.
func (c *Controller) ResolveCancel(res CancelResolution) error {
	c.mu.Lock()
	if c.pending {
		c.mu.Unlock()
		return ErrSubmissionPending
	}
	if !c.prompting {
		c.mu.Unlock()
		return ErrNoCancelPrompt
	}
	c.prompting = false
	c.mu.Unlock()

	if res == Discard {
		draft := c.store.Draft()
		c.store.Reset()
		if c.onDiscard != nil {
			c.onDiscard(draft)
		}
	}
	c.close()
	return nil
}

// DismissCancel withdraws a pending cancel prompt and keeps editing.
func (c *Controller) DismissCancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prompting = false
}

// CancelPending reports whether a cancel prompt awaits an answer.
func (c *Controller) CancelPending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.prompting
}

// Submitting reports whether a submission is in flight.
func (c *Controller) Submitting() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// LastError is the error from the most recent failed submission, cleared
// when the next one starts.
func (c *Controller) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Closed reports whether the session has ended.
func (c *Controller) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Reopen starts a new session over the same store and re-arms the close
// callback.
func (c *Controller) Reopen() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = false
	c.prompting = false
	c.lastErr = nil
}

func (c *Controller) close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.prompting = false
	c.mu.Unlock()

	if c.onClose != nil {
		c.onClose()
	}
}
