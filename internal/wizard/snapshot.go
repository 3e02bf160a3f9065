package wizard

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"time"
)

// SnapshotVersion is the schema version written with every snapshot.
const SnapshotVersion = 1

// ErrNewerSnapshot is returned when a stored snapshot was written by a newer
// schema than this build understands.
var ErrNewerSnapshot = errors.New("snapshot written by a newer version")

// Snapshot is the persisted form of the whole store.
type Snapshot struct {
	Version      int            `json:"version"`
	Step         Step           `json:"step"`
	Completed    []Step         `json:"completed"`
	Draft        Draft          `json:"draft"`
	Organization *Organization  `json:"organization,omitempty"`
	Review       ReviewMetadata `json:"review"`
	SavedAt      time.Time      `json:"saved_at"`
}

// Encode serializes the snapshot as JSON.
func (s Snapshot) Encode() ([]byte, error) {
	s.Version = SnapshotVersion
	return json.Marshal(s)
}

// DecodeSnapshot parses data on top of an initial snapshot built from def,
// so fields missing from older snapshots keep their defaults. Unknown steps
// are dropped and an unknown current step falls back to the first one.
func DecodeSnapshot(data []byte, def Defaults) (Snapshot, error) {
	snap := Snapshot{
		Step:  FirstStep(),
		Draft: InitialDraft(def),
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	if snap.Version > SnapshotVersion {
		return Snapshot{}, fmt.Errorf("%w: version %d", ErrNewerSnapshot, snap.Version)
	}
	snap.Version = SnapshotVersion

	if snap.Step.Index() < 0 {
		snap.Step = FirstStep()
	}
	snap.Completed = slices.DeleteFunc(snap.Completed, func(s Step) bool { return s.Index() < 0 })
	slices.SortFunc(snap.Completed, func(a, b Step) int { return a.Index() - b.Index() })
	snap.Completed = slices.Compact(snap.Completed)

	if snap.Organization != nil && snap.Organization.ID == 0 {
		snap.Organization = nil
	}
	if snap.Organization == nil {
		snap.Draft.OrganizationID = 0
	} else {
		snap.Draft.OrganizationID = snap.Organization.ID
	}
	if snap.Draft.OrganizationID == 0 {
		snap.Draft.DepartmentID = 0
		snap.Draft.ContactID = 0
	}
	return snap, nil
}

// HasCompleted reports whether step is in the snapshot's completed set.
func (s Snapshot) HasCompleted(step Step) bool {
	return slices.Contains(s.Completed, step)
}

// IsInitial reports whether the snapshot holds nothing beyond the initial
// state for def. Reset persists exactly that state after a submission or a
// discard, so such a snapshot is not a session to resume.
func (s Snapshot) IsInitial(def Defaults) bool {
	if s.Step != FirstStep() || len(s.Completed) > 0 || s.Organization != nil || s.Review != (ReviewMetadata{}) {
		return false
	}
	d := s.Draft.clone()
	if len(d.Tags) == 0 {
		d.Tags = nil
	}
	return reflect.DeepEqual(d, InitialDraft(def))
}
