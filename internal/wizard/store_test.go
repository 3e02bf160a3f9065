package wizard

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStore_InitialState(t *testing.T) {
	s := NewStore(WithDefaults(Defaults{Country: "ca", ApplicationForm: "short"}))

	assert.Equal(t, StepBasic, s.Step())
	assert.Empty(t, s.Completed())
	assert.Nil(t, s.Organization())
	assert.Equal(t, ReviewMetadata{}, s.Review())

	d := s.Draft()
	assert.Equal(t, JobTypeFullTime, d.JobType)
	assert.Equal(t, 1, d.Openings)
	assert.Equal(t, "CA", d.Country)
	assert.Equal(t, "short", d.ApplicationForm)
	assert.False(t, s.HasUnsavedChanges())
}

func TestStore_MarkCompleteIdempotent(t *testing.T) {
	p := &memPersister{}
	s := NewStore(WithPersister(p))
	defer s.Close()

	s.MarkComplete(StepBasic)
	s.MarkComplete(StepBasic)
	s.MarkComplete(StepLocation)

	assert.Equal(t, []Step{StepBasic, StepLocation}, s.Completed())
	assert.True(t, s.IsComplete(StepBasic))
	assert.False(t, s.IsComplete(StepTags))
}

func TestStore_ResetIsIdempotent(t *testing.T) {
	s := NewStore()
	s.UpdateDraft(validDraftPatch())
	s.SetOrganization(orgA)
	s.SetReviewMetadata(MetadataPatch{Recruiter: &Label{ID: 9, Name: "Riley"}})
	s.MarkComplete(StepBasic)
	s.SetStep(StepDetails)

	for range 3 {
		s.Reset()
		assert.Equal(t, StepBasic, s.Step())
		assert.Empty(t, s.Completed())
		assert.Equal(t, InitialDraft(DefaultDefaults()), s.Draft())
		assert.Nil(t, s.Organization())
		assert.Equal(t, ReviewMetadata{}, s.Review())
		assert.False(t, s.HasUnsavedChanges())
	}
}

func TestStore_HasUnsavedChanges(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Store)
	}{
		{"title", func(s *Store) { s.UpdateDraft(DraftPatch{Title: Ptr("Backend Engineer")}) }},
		{"completed step", func(s *Store) { s.MarkComplete(StepBasic) }},
		{"later step", func(s *Store) { s.SetStep(StepLocation) }},
		{"organization", func(s *Store) { s.SetOrganization(orgA) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore()
			s.Reset()
			assert.False(t, s.HasUnsavedChanges())
			tt.mutate(s)
			assert.True(t, s.HasUnsavedChanges())
		})
	}

	s := NewStore()
	s.UpdateDraft(DraftPatch{Notes: Ptr("not a title")})
	assert.False(t, s.HasUnsavedChanges(), "only the primary fields count")
}

func TestStore_UpdateDraftMergesShallowly(t *testing.T) {
	s := NewStore()
	s.UpdateDraft(DraftPatch{Title: Ptr("Engineer"), Tags: &[]string{"go", "remote"}})
	s.UpdateDraft(DraftPatch{Description: Ptr("desc")})
	s.UpdateDraft(DraftPatch{Title: Ptr("")})

	d := s.Draft()
	assert.Empty(t, d.Title, "pointer to zero clears")
	assert.Equal(t, "desc", d.Description)
	assert.Equal(t, []string{"go", "remote"}, d.Tags)

	d.Tags[0] = "mutated"
	assert.Equal(t, "go", s.Draft().Tags[0], "Draft returns a copy")
}

func TestStore_PersistsEveryMutation(t *testing.T) {
	p := &memPersister{}
	s := NewStore(WithPersister(p))
	defer s.Close()

	s.UpdateDraft(validDraftPatch())
	s.SetOrganization(orgA)
	s.MarkComplete(StepBasic)
	s.SetStep(StepOrganization)
	s.SetReviewMetadata(MetadataPatch{Recruiter: &Label{ID: 9, Name: "Riley"}})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Flush(ctx))

	var snap Snapshot
	require.NoError(t, json.Unmarshal(p.stored(), &snap))
	assert.Equal(t, SnapshotVersion, snap.Version)
	assert.Equal(t, StepOrganization, snap.Step)
	assert.Equal(t, []Step{StepBasic}, snap.Completed)
	assert.Equal(t, "Backend Engineer", snap.Draft.Title)
	assert.Equal(t, int64(1), snap.Draft.OrganizationID)
	require.NotNil(t, snap.Organization)
	assert.Equal(t, "Acme Staffing", snap.Organization.Name)
	assert.Equal(t, "Riley", snap.Review.Recruiter.Name)
}

func TestStore_PersistFailureDoesNotBlockMutation(t *testing.T) {
	p := &memPersister{saveErr: errBoom}
	s := NewStore(WithPersister(p))
	defer s.Close()

	s.UpdateDraft(DraftPatch{Title: Ptr("Engineer")})
	require.NoError(t, s.Flush(context.Background()))

	assert.Equal(t, "Engineer", s.Draft().Title)
	assert.Nil(t, p.stored())
}

func TestStore_SlowPersisterDoesNotBlockCaller(t *testing.T) {
	p := &memPersister{block: make(chan struct{})}
	s := NewStore(WithPersister(p))

	done := make(chan struct{})
	go func() {
		for i := range 20 {
			s.UpdateDraft(DraftPatch{Openings: Ptr(i + 1)})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("mutations blocked on persistence")
	}

	close(p.block)
	s.Close()

	var snap Snapshot
	require.NoError(t, json.Unmarshal(p.stored(), &snap))
	assert.Equal(t, 20, snap.Draft.Openings, "latest snapshot wins")
	assert.LessOrEqual(t, p.saves, 20)
}

func TestStore_ResetPersistsEmptySnapshot(t *testing.T) {
	p := &memPersister{}
	s := NewStore(WithPersister(p))
	defer s.Close()

	s.UpdateDraft(validDraftPatch())
	s.Reset()
	require.NoError(t, s.Flush(context.Background()))

	snap, err := DecodeSnapshot(p.stored(), DefaultDefaults())
	require.NoError(t, err)
	assert.Equal(t, InitialDraft(DefaultDefaults()), snap.Draft)
	assert.Empty(t, snap.Completed)
}

func TestStore_RestoreRoundTrip(t *testing.T) {
	p := &memPersister{}
	first := NewStore(WithPersister(p))
	first.UpdateDraft(validDraftPatch())
	first.SetOrganization(orgA)
	first.UpdateDraft(DraftPatch{DepartmentID: Ptr(int64(5))})
	first.MarkComplete(StepBasic)
	first.MarkComplete(StepLocation)
	first.SetStep(StepOrganization)
	first.Close()

	second := NewStore(WithPersister(p))
	defer second.Close()
	restored, err := second.Restore(context.Background())
	require.NoError(t, err)
	assert.True(t, restored)

	assert.Equal(t, StepOrganization, second.Step())
	assert.Equal(t, []Step{StepBasic, StepLocation}, second.Completed())
	assert.Equal(t, int64(5), second.Draft().DepartmentID)
	assert.Equal(t, "Backend Engineer", second.Draft().Title)
	assert.Equal(t, orgA.Name, second.Organization().Name)
}

func TestStore_RestoreAfterResetIsNotAResume(t *testing.T) {
	p := &memPersister{}
	first := NewStore(WithPersister(p))
	first.UpdateDraft(validDraftPatch())
	first.SetStep(StepDetails)
	first.Reset()
	require.NoError(t, first.Flush(context.Background()))
	first.Close()
	require.NotEmpty(t, p.stored())

	second := NewStore(WithPersister(p))
	defer second.Close()
	restored, err := second.Restore(context.Background())
	require.NoError(t, err)
	assert.False(t, restored)
	assert.False(t, second.HasUnsavedChanges())
}

func TestStore_RestoreEmptyAndErrors(t *testing.T) {
	restored, err := NewStore(WithPersister(&memPersister{})).Restore(context.Background())
	require.NoError(t, err)
	assert.False(t, restored)

	_, err = NewStore(WithPersister(&memPersister{loadErr: errBoom})).Restore(context.Background())
	assert.ErrorIs(t, err, errBoom)

	restored, err = NewStore().Restore(context.Background())
	require.NoError(t, err)
	assert.False(t, restored)
}

func TestStore_RestoreIgnoresNewerVersion(t *testing.T) {
	p := &memPersister{data: []byte(`{"version": 2, "step": "tags", "draft": {"title": "From the future"}}`)}
	s := NewStore(WithPersister(p))
	defer s.Close()

	restored, err := s.Restore(context.Background())
	require.NoError(t, err)
	assert.False(t, restored)
	assert.Equal(t, StepBasic, s.Step())
	assert.Empty(t, s.Draft().Title)
}
