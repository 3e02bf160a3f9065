// Package wizard implements the job-creation wizard: the persisted draft
// store, step validation, field scoping rules, navigation and submission.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/recruitdash/recruitdash/internal/logger"
)

// Store holds the wizard's mutable state. Mutations are atomic and each one
// schedules an asynchronous save of the full snapshot when a Persister is
// configured. Save failures are logged and otherwise ignored; in-memory
// state stays authoritative.
type Store struct {
	mu        sync.Mutex
	step      Step
	completed map[Step]bool
	draft     Draft
	org       *Organization
	review    ReviewMetadata

	defaults  Defaults
	persister Persister
	writer    *writer
	log       *logger.Logger
	now       func() time.Time
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithPersister makes the store save every mutation through p.
func WithPersister(p Persister) StoreOption {
	return func(s *Store) { s.persister = p }
}

// WithDefaults sets the defaults a fresh or reset draft starts from.
func WithDefaults(def Defaults) StoreOption {
	return func(s *Store) { s.defaults = def }
}

// WithLogger overrides the store's logger.
func WithLogger(l *logger.Logger) StoreOption {
	return func(s *Store) { s.log = l }
}

// NewStore creates a store in its initial state. Call Restore to load a
// persisted session.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		defaults: DefaultDefaults(),
		log:      logger.Named("wizard"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.resetLocked()
	if s.persister != nil {
		s.writer = newWriter(s.persister, s.log)
	}
	return s
}

// Restore loads the persisted snapshot, if any. It reports whether a
// snapshot was applied. A snapshot holding only the initial state, or one
// from a newer schema, is ignored and the store keeps its initial state.
func (s *Store) Restore(ctx context.Context) (bool, error) {
	if s.persister == nil {
		return false, nil
	}
	data, err := s.persister.Load(ctx)
	if err != nil {
		return false, fmt.Errorf("load draft snapshot: %w", err)
	}
	if len(data) == 0 {
		return false, nil
	}

	snap, err := DecodeSnapshot(data, s.defaults)
	if errors.Is(err, ErrNewerSnapshot) {
		s.log.Warn("ignoring stored draft: %v", err)
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if snap.IsInitial(s.defaults) {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.step = snap.Step
	s.completed = make(map[Step]bool, len(snap.Completed))
	for _, step := range snap.Completed {
		s.completed[step] = true
	}
	s.draft = snap.Draft.clone()
	s.org = cloneOrg(snap.Organization)
	s.review = snap.Review
	s.log.Debug("restored draft at step %s", s.step)
	return true, nil
}

// SetStep sets the current step. Legality is the controller's concern.
func (s *Store) SetStep(step Step) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.step = step
	s.persistLocked()
}

// MarkComplete records that step was left with a valid draft.
func (s *Store) MarkComplete(step Step) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.completed[step] {
		return
	}
	s.completed[step] = true
	s.persistLocked()
}

// UpdateDraft merges patch into the draft and applies the scoping rules.
func (s *Store) UpdateDraft(patch DraftPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, dropped := resolve(s.draft, patch.merge(s.draft), patch)
	s.draft = next
	s.review = dropped.merge(s.review)
	s.persistLocked()
}

// SetOrganization selects org, or clears the selection when org is nil.
// Selecting overwrites city, state and postal code with the organization's
// address. Either way department and contact are cleared.
func (s *Store) SetOrganization(org *Organization) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if org != nil && org.ID == 0 {
		org = nil
	}
	s.draft, s.review = applyOrganization(s.draft, s.review, org)
	s.org = cloneOrg(org)
	s.persistLocked()
}

// SetReviewMetadata merges display labels. Labels are not validated here;
// LabelFor ignores any that do not match the draft.
func (s *Store) SetReviewMetadata(patch MetadataPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.review = patch.merge(s.review)
	s.persistLocked()
}

// Reset returns the store to its initial state and persists that state.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
	s.persistLocked()
}

func (s *Store) resetLocked() {
	s.step = FirstStep()
	s.completed = make(map[Step]bool)
	s.draft = InitialDraft(s.defaults)
	s.org = nil
	s.review = ReviewMetadata{}
}

// HasUnsavedChanges is the heuristic behind the discard prompt: true once
// any step was completed, the wizard moved past the first step, a title was
// typed, or an organization was chosen.
func (s *Store) HasUnsavedChanges() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.completed) > 0 ||
		s.step != FirstStep() ||
		s.draft.Title != "" ||
		s.org != nil
}

func (s *Store) Step() Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step
}

// Completed returns the completed steps in wizard order.
func (s *Store) Completed() []Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completedLocked()
}

func (s *Store) completedLocked() []Step {
	steps := make([]Step, 0, len(s.completed))
	for _, step := range order {
		if s.completed[step] {
			steps = append(steps, step)
		}
	}
	return steps
}

func (s *Store) IsComplete(step Step) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completed[step]
}

// Draft returns a copy of the current draft.
func (s *Store) Draft() Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft.clone()
}

// Organization returns a copy of the selected organization, or nil.
func (s *Store) Organization() *Organization {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneOrg(s.org)
}

func (s *Store) Review() ReviewMetadata {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.review
}

// Snapshot returns the full store state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		Version:      SnapshotVersion,
		Step:         s.step,
		Completed:    s.completedLocked(),
		Draft:        s.draft.clone(),
		Organization: cloneOrg(s.org),
		Review:       s.review,
		SavedAt:      s.now().UTC(),
	}
}

func (s *Store) persistLocked() {
	if s.writer == nil {
		return
	}
	data, err := s.snapshotLocked().Encode()
	if err != nil {
		s.log.Warn("encode draft snapshot: %v", err)
		return
	}
	s.writer.schedule(data)
}

// Flush waits for scheduled saves to finish.
func (s *Store) Flush(ctx context.Context) error {
	if s.writer == nil {
		return nil
	}
	return s.writer.flush(ctx)
}

// Close writes any pending snapshot and stops the background writer.
func (s *Store) Close() {
	if s.writer != nil {
		s.writer.close()
	}
}

func cloneOrg(org *Organization) *Organization {
	if org == nil {
		return nil
	}
	c := *org
	return &c
}
