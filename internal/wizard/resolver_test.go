package wizard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetOrganization_OverwritesLocation(t *testing.T) {
	s := NewStore()
	s.UpdateDraft(DraftPatch{City: Ptr("Dallas"), State: Ptr("TX"), PostalCode: Ptr("75201")})
	s.SetOrganization(orgA)
	s.UpdateDraft(DraftPatch{DepartmentID: Ptr(int64(5)), ContactID: Ptr(int64(6))})

	s.UpdateDraft(DraftPatch{City: Ptr("Round Rock")})
	s.SetOrganization(orgB)

	d := s.Draft()
	assert.Equal(t, int64(2), d.OrganizationID)
	assert.Equal(t, "Boise", d.City)
	assert.Equal(t, "ID", d.State)
	assert.Equal(t, "83702", d.PostalCode)
	assert.Zero(t, d.DepartmentID)
	assert.Zero(t, d.ContactID)
	assert.Equal(t, "Boise Works", s.Organization().Name)
}

func TestSetOrganization_ReselectSameClearsScoped(t *testing.T) {
	s := NewStore()
	s.SetOrganization(orgA)
	s.UpdateDraft(DraftPatch{DepartmentID: Ptr(int64(5))})
	s.SetReviewMetadata(MetadataPatch{Department: &Label{ID: 5, Name: "Platform"}})

	s.SetOrganization(orgA)

	assert.Zero(t, s.Draft().DepartmentID)
	assert.Equal(t, Label{}, s.Review().Department)
}

func TestClearOrganization_KeepsLocation(t *testing.T) {
	s := NewStore()
	s.SetOrganization(orgA)
	s.UpdateDraft(DraftPatch{DepartmentID: Ptr(int64(5)), ContactID: Ptr(int64(7))})

	s.SetOrganization(nil)

	d := s.Draft()
	assert.Zero(t, d.OrganizationID)
	assert.Zero(t, d.DepartmentID)
	assert.Zero(t, d.ContactID)
	assert.Equal(t, "Austin", d.City)
	assert.Equal(t, "TX", d.State)
	assert.Equal(t, "78701", d.PostalCode)
	assert.Nil(t, s.Organization())
}

func TestScopedSelectionsNeedOrganization(t *testing.T) {
	s := NewStore()
	s.UpdateDraft(DraftPatch{DepartmentID: Ptr(int64(5)), ContactID: Ptr(int64(6)), RecruiterID: Ptr(int64(3))})

	d := s.Draft()
	assert.Zero(t, d.DepartmentID)
	assert.Zero(t, d.ContactID)
	assert.Equal(t, int64(3), d.RecruiterID, "recruiter is unscoped")
}

func TestLocationCascade(t *testing.T) {
	filled := DraftPatch{Country: Ptr("US"), State: Ptr("TX"), City: Ptr("Austin")}

	tests := []struct {
		name      string
		patch     DraftPatch
		wantState string
		wantCity  string
		wantCtry  string
	}{
		{"country change clears state and city", DraftPatch{Country: Ptr("CA")}, "", "", "CA"},
		{"same country keeps everything", DraftPatch{Country: Ptr("us")}, "TX", "Austin", "US"},
		{"state change clears city", DraftPatch{State: Ptr("CA")}, "CA", "", "US"},
		{"city change is a leaf", DraftPatch{City: Ptr("Houston")}, "TX", "Houston", "US"},
		{"country with fresh state keeps state", DraftPatch{Country: Ptr("CA"), State: Ptr("ON")}, "ON", "", "CA"},
		{"country with fresh state and city", DraftPatch{Country: Ptr("CA"), State: Ptr("ON"), City: Ptr("Toronto")}, "ON", "Toronto", "CA"},
		{"unrelated field", DraftPatch{Notes: Ptr("x")}, "TX", "Austin", "US"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore()
			s.UpdateDraft(filled)
			s.UpdateDraft(tt.patch)
			d := s.Draft()
			assert.Equal(t, tt.wantCtry, d.Country)
			assert.Equal(t, tt.wantState, d.State)
			assert.Equal(t, tt.wantCity, d.City)
		})
	}
}

func TestGateFor(t *testing.T) {
	g := GateFor(Draft{})
	assert.False(t, g.Departments)
	assert.False(t, g.Contacts)
	assert.True(t, g.Recruiters)
	assert.True(t, g.Workflows)
	assert.True(t, g.Organizations)

	g = GateFor(Draft{OrganizationID: 4})
	assert.True(t, g.Departments)
	assert.True(t, g.Contacts)
}

func TestLabelFor(t *testing.T) {
	d := Draft{DepartmentID: 5, RecruiterID: 9}
	m := ReviewMetadata{
		Department: Label{ID: 5, Name: "Platform"},
		Recruiter:  Label{ID: 8, Name: "Stale Recruiter"},
		Workflow:   Label{ID: 2, Name: "Engineering"},
	}

	name, ok := m.LabelFor(LabelDepartment, d)
	assert.True(t, ok)
	assert.Equal(t, "Platform", name)

	_, ok = m.LabelFor(LabelRecruiter, d)
	assert.False(t, ok, "label for a different id is not shown")

	_, ok = m.LabelFor(LabelWorkflow, d)
	assert.False(t, ok, "label without an id in the draft is not shown")
}
