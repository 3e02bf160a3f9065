package wizard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStep(t *testing.T) {
	for _, step := range Steps() {
		got, err := ParseStep(string(step))
		require.NoError(t, err)
		assert.Equal(t, step, got)
	}

	got, err := ParseStep(" Review ")
	require.NoError(t, err)
	assert.Equal(t, StepReview, got)

	_, err = ParseStep("payment")
	assert.ErrorIs(t, err, ErrUnknownStep)
}

func TestStepOrder(t *testing.T) {
	assert.Equal(t, StepBasic, FirstStep())
	assert.Equal(t, StepReview, LastStep())

	next, ok := StepOrganization.Next()
	assert.True(t, ok)
	assert.Equal(t, StepDetails, next)

	_, ok = StepReview.Next()
	assert.False(t, ok)

	_, ok = StepBasic.Prev()
	assert.False(t, ok)

	assert.Equal(t, -1, Step("nope").Index())
	assert.Len(t, Definitions(), len(Steps()))
	for i, def := range Definitions() {
		assert.Equal(t, Steps()[i], def.Key)
		assert.NotEmpty(t, def.Label)
		assert.NotEmpty(t, def.Description)
	}
}

func TestValid(t *testing.T) {
	base := InitialDraft(DefaultDefaults())

	tests := []struct {
		name  string
		step  Step
		draft func(Draft) Draft
		want  bool
	}{
		{"basic empty", StepBasic, func(d Draft) Draft { return d }, false},
		{"basic whitespace title", StepBasic, func(d Draft) Draft {
			d.Title, d.Description = "   ", "desc"
			return d
		}, false},
		{"basic complete", StepBasic, func(d Draft) Draft {
			d.Title, d.Description = "Engineer", "desc"
			return d
		}, true},
		{"basic bad job type", StepBasic, func(d Draft) Draft {
			d.Title, d.Description, d.JobType = "Engineer", "desc", "gig"
			return d
		}, false},
		{"basic zero openings", StepBasic, func(d Draft) Draft {
			d.Title, d.Description, d.Openings = "Engineer", "desc", 0
			return d
		}, false},
		{"location complete", StepLocation, func(d Draft) Draft {
			d.City, d.State = "Austin", "TX"
			return d
		}, true},
		{"location three letter country", StepLocation, func(d Draft) Draft {
			d.City, d.State, d.Country = "Toronto", "ON", "CAN"
			return d
		}, true},
		{"location bad country", StepLocation, func(d Draft) Draft {
			d.City, d.State, d.Country = "Austin", "TX", "U5"
			return d
		}, false},
		{"location missing state", StepLocation, func(d Draft) Draft {
			d.City = "Austin"
			return d
		}, false},
		{"organization without recruiter", StepOrganization, func(d Draft) Draft {
			d.OrganizationID = 1
			return d
		}, false},
		{"organization complete", StepOrganization, func(d Draft) Draft {
			d.OrganizationID, d.RecruiterID = 1, 2
			return d
		}, true},
		{"details missing date", StepDetails, func(d Draft) Draft { return d }, false},
		{"details unparseable date", StepDetails, func(d Draft) Draft {
			d.StartDate = "next monday"
			return d
		}, false},
		{"details date only", StepDetails, func(d Draft) Draft {
			d.StartDate = "2026-11-02"
			return d
		}, true},
		{"details close before start", StepDetails, func(d Draft) Draft {
			d.StartDate, d.AutoClose, d.CloseDate = "2026-11-02", true, "2026-10-01"
			return d
		}, false},
		{"details close ignored when auto close off", StepDetails, func(d Draft) Draft {
			d.StartDate, d.CloseDate = "2026-11-02", "garbage"
			return d
		}, true},
		{"details auto close", StepDetails, func(d Draft) Draft {
			d.StartDate, d.AutoClose, d.CloseDate = "2026-11-02", true, "2026-12-01"
			return d
		}, true},
		{"tags always", StepTags, func(d Draft) Draft { return d }, true},
		{"review always", StepReview, func(d Draft) Draft { return d }, true},
		{"unknown step", Step("extra"), func(d Draft) Draft { return d }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Valid(tt.step, tt.draft(base)))
		})
	}
}

func TestDefinitionCheckMessages(t *testing.T) {
	def, ok := DefinitionFor(StepBasic)
	require.True(t, ok)
	problems := def.Check(InitialDraft(DefaultDefaults()))
	assert.Equal(t, []string{"title is required", "description is required"}, problems)
}
