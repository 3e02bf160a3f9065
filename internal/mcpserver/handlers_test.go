package mcpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recruitdash/recruitdash/internal/ats"
	"github.com/recruitdash/recruitdash/internal/wizard"
)

type fakeDirectory struct {
	mu          sync.Mutex
	deptCalls   int
	orgs        []ats.Organization
	departments map[int64][]ats.Department
	contacts    map[int64][]ats.Contact
	recruiters  []ats.Recruiter
	workflows   []ats.Workflow
	categories  []ats.Category
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{
		orgs: []ats.Organization{
			{ID: 1, Name: "Acme Staffing", Address: wizard.Address{City: "Austin", State: "TX", PostalCode: "78701", Country: "US"}},
			{ID: 2, Name: "Boise Health", Address: wizard.Address{City: "Boise", State: "ID", PostalCode: "83702", Country: "US"}},
		},
		departments: map[int64][]ats.Department{
			1: {{ID: 10, Name: "Platform"}, {ID: 11, Name: "Payments"}},
			2: {{ID: 20, Name: "Nursing"}},
		},
		contacts: map[int64][]ats.Contact{
			1: {{ID: 30, FirstName: "Dana", LastName: "Reyes"}},
		},
		recruiters: []ats.Recruiter{{ID: 40, Name: "Sam Ortiz"}},
		workflows:  []ats.Workflow{{ID: 50, Title: "Engineering loop"}},
		categories: []ats.Category{{ID: 60, Name: "Software"}},
	}
}

func (f *fakeDirectory) SearchOrganizations(_ context.Context, query string) ([]ats.Organization, error) {
	var out []ats.Organization
	for _, o := range f.orgs {
		if query == "*" || o.Name[:1] == query[:1] {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeDirectory) GetOrganization(_ context.Context, id int64) (ats.Organization, error) {
	for _, o := range f.orgs {
		if o.ID == id {
			return o, nil
		}
	}
	return ats.Organization{}, &ats.APIError{Status: http.StatusNotFound, Message: "not found"}
}

func (f *fakeDirectory) ListDepartments(_ context.Context, orgID int64) ([]ats.Department, error) {
	f.mu.Lock()
	f.deptCalls++
	f.mu.Unlock()
	return f.departments[orgID], nil
}

func (f *fakeDirectory) ListContacts(_ context.Context, orgID int64) ([]ats.Contact, error) {
	return f.contacts[orgID], nil
}

func (f *fakeDirectory) ListRecruiters(context.Context) ([]ats.Recruiter, error) {
	return f.recruiters, nil
}

func (f *fakeDirectory) ListWorkflows(context.Context) ([]ats.Workflow, error) {
	return f.workflows, nil
}

func (f *fakeDirectory) ListCategories(context.Context) ([]ats.Category, error) {
	return f.categories, nil
}

type fakeCreator struct {
	mu   sync.Mutex
	job  wizard.Job
	err  error
	reqs []wizard.JobRequest

	started chan struct{}
	release chan struct{}
}

func (f *fakeCreator) CreateJob(_ context.Context, req wizard.JobRequest) (wizard.Job, error) {
	f.mu.Lock()
	f.reqs = append(f.reqs, req)
	f.mu.Unlock()
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.release != nil {
		<-f.release
	}
	return f.job, f.err
}

type testEnv struct {
	srv     *Server
	dir     *fakeDirectory
	creator *fakeCreator
	closes  int
}

func setupTestServer(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		dir:     newFakeDirectory(),
		creator: &fakeCreator{job: wizard.Job{ID: 900, Title: "Backend Engineer"}},
	}
	store := wizard.NewStore()
	ctrl := wizard.NewController(store, wizard.NewSubmitter(env.creator),
		wizard.WithOnClose(func() { env.closes++ }),
	)
	env.srv = New(ctrl, env.dir)
	return env
}

func (e *testEnv) call(t *testing.T, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	req := mcp.CallToolRequest{
		Params: mcp.CallToolParams{Name: name, Arguments: args},
	}
	handlers := map[string]func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error){
		"wizard-status":              e.srv.handleStatus,
		"wizard-update":              e.srv.handleUpdate,
		"wizard-select-organization": e.srv.handleSelectOrganization,
		"wizard-clear-organization":  e.srv.handleClearOrganization,
		"wizard-next":                e.srv.handleNext,
		"wizard-back":                e.srv.handleBack,
		"wizard-jump":                e.srv.handleJump,
		"wizard-cancel":              e.srv.handleCancel,
		"wizard-resolve-cancel":      e.srv.handleResolveCancel,
		"search-organizations":       e.srv.handleSearchOrganizations,
		"list-departments":           e.srv.handleListDepartments,
		"list-contacts":              e.srv.handleListContacts,
		"list-recruiters":            e.srv.handleListRecruiters,
		"list-workflows":             e.srv.handleListWorkflows,
		"list-categories":            e.srv.handleListCategories,
	}
	h, ok := handlers[name]
	require.True(t, ok, "unknown tool %s", name)
	result, err := h(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, result)
	return result
}

// extractText extracts text from CallToolResult.Content[0]
func extractText(result *mcp.CallToolResult) string {
	if len(result.Content) == 0 {
		return ""
	}
	if textContent, ok := result.Content[0].(mcp.TextContent); ok {
		return textContent.Text
	}
	return ""
}

func (e *testEnv) status(t *testing.T) status {
	t.Helper()
	var st status
	require.NoError(t, json.Unmarshal([]byte(extractText(e.call(t, "wizard-status", nil))), &st))
	return st
}

func (e *testEnv) fillToReview(t *testing.T) {
	t.Helper()
	e.call(t, "wizard-update", map[string]any{"title": "Backend Engineer", "description": "Build APIs"})
	e.call(t, "wizard-next", nil)
	e.call(t, "wizard-update", map[string]any{"city": "Dallas", "state": "TX"})
	e.call(t, "wizard-next", nil)
	e.call(t, "wizard-select-organization", map[string]any{"id": float64(1)})
	e.call(t, "wizard-update", map[string]any{"recruiter_id": float64(40), "department_id": float64(10)})
	e.call(t, "wizard-next", nil)
	e.call(t, "wizard-update", map[string]any{"start_date": "2026-11-02"})
	e.call(t, "wizard-next", nil)
	e.call(t, "wizard-next", nil)
	require.Equal(t, wizard.StepReview, e.srv.ctrl.Step())
}

func TestRegisteredTools(t *testing.T) {
	env := setupTestServer(t)
	tools := env.srv.mcpServer.ListTools()
	for _, name := range []string{
		"wizard-status", "wizard-update", "wizard-select-organization", "wizard-clear-organization",
		"wizard-next", "wizard-back", "wizard-jump", "wizard-cancel", "wizard-resolve-cancel",
		"search-organizations", "list-departments", "list-contacts", "list-recruiters",
		"list-workflows", "list-categories",
	} {
		assert.Contains(t, tools, name)
	}
}

func TestHandleStatus_Initial(t *testing.T) {
	env := setupTestServer(t)
	st := env.status(t)

	assert.Equal(t, wizard.StepBasic, st.Step)
	assert.False(t, st.Valid)
	assert.Contains(t, st.Problems, "title is required")
	assert.Equal(t, wizard.JobTypeFullTime, st.Draft.JobType)
	assert.Empty(t, st.Summary)
}

func TestHandleUpdate(t *testing.T) {
	env := setupTestServer(t)

	result := env.call(t, "wizard-update", map[string]any{
		"title":       "Backend Engineer",
		"description": "Build APIs",
		"openings":    float64(3),
		"tags":        []any{"go", "remote"},
	})
	assert.False(t, result.IsError)
	assert.Contains(t, extractText(result), "is complete")

	d := env.srv.ctrl.Store().Draft()
	assert.Equal(t, "Backend Engineer", d.Title)
	assert.Equal(t, 3, d.Openings)
	assert.Equal(t, []string{"go", "remote"}, d.Tags)
}

func TestHandleUpdate_InvalidArguments(t *testing.T) {
	env := setupTestServer(t)

	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{"empty", map[string]any{}, "no fields provided"},
		{"unknown only", map[string]any{"colour": "red"}, "no known fields"},
		{"wrong type", map[string]any{"title": 5.0}, "'title' must be a string"},
		{"fractional id", map[string]any{"recruiter_id": 1.5}, "whole number"},
		{"id beyond int64", map[string]any{"recruiter_id": 1e19}, "'recruiter_id' is too large"},
		{"id rounding to 2^63", map[string]any{"recruiter_id": 9223372036854775807.0}, "'recruiter_id' is too large"},
		{"negative id", map[string]any{"contact_id": int64(-4)}, "non-negative"},
		{"openings beyond int32", map[string]any{"openings": 1e12}, "'openings' is too large"},
		{"negative openings", map[string]any{"openings": -2.0}, "non-negative"},
		{"bad job type", map[string]any{"job_type": "gig"}, "unknown job_type"},
		{"bad tags", map[string]any{"tags": []any{"go", 1.0}}, "tag 1 is not a string"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := env.call(t, "wizard-update", tt.args)
			assert.True(t, result.IsError)
			assert.Contains(t, extractText(result), tt.want)
		})
	}

	d := env.srv.ctrl.Store().Draft()
	assert.Equal(t, 1, d.Openings)
	assert.Zero(t, d.RecruiterID)
}

func TestHandleUpdate_DepartmentRequiresOrganization(t *testing.T) {
	env := setupTestServer(t)

	result := env.call(t, "wizard-update", map[string]any{"department_id": float64(10)})
	assert.True(t, result.IsError)
	assert.Contains(t, extractText(result), "select an organization")
	assert.Zero(t, env.srv.ctrl.Store().Draft().DepartmentID)

	result = env.call(t, "list-departments", nil)
	assert.True(t, result.IsError)
}

func TestHandleUpdate_RecordsLabels(t *testing.T) {
	env := setupTestServer(t)
	env.call(t, "wizard-select-organization", map[string]any{"id": float64(1)})

	result := env.call(t, "wizard-update", map[string]any{
		"department_id": float64(11),
		"contact_id":    float64(30),
		"recruiter_id":  float64(40),
		"workflow_id":   float64(50),
		"category_id":   float64(60),
	})
	require.False(t, result.IsError, extractText(result))

	store := env.srv.ctrl.Store()
	d, meta := store.Draft(), store.Review()
	for field, want := range map[wizard.LabelField]string{
		wizard.LabelDepartment: "Payments",
		wizard.LabelContact:    "Dana Reyes",
		wizard.LabelRecruiter:  "Sam Ortiz",
		wizard.LabelWorkflow:   "Engineering loop",
		wizard.LabelCategory:   "Software",
	} {
		got, ok := meta.LabelFor(field, d)
		assert.True(t, ok, field)
		assert.Equal(t, want, got, field)
	}
}

func TestHandleUpdate_UnknownDepartment(t *testing.T) {
	env := setupTestServer(t)
	env.call(t, "wizard-select-organization", map[string]any{"id": float64(1)})

	result := env.call(t, "wizard-update", map[string]any{"department_id": float64(20)})
	assert.True(t, result.IsError)
	assert.Contains(t, extractText(result), "department 20 not found for organization 1")
}

func TestHandleSelectOrganization(t *testing.T) {
	env := setupTestServer(t)
	env.call(t, "wizard-update", map[string]any{"city": "Dallas", "state": "TX"})

	result := env.call(t, "wizard-select-organization", map[string]any{"id": float64(2)})
	assert.False(t, result.IsError)
	assert.Contains(t, extractText(result), "Selected Boise Health (2)")

	d := env.srv.ctrl.Store().Draft()
	assert.Equal(t, int64(2), d.OrganizationID)
	assert.Equal(t, "Boise", d.City)
	assert.Equal(t, "ID", d.State)
	assert.Equal(t, "83702", d.PostalCode)
}

func TestHandleSelectOrganization_Errors(t *testing.T) {
	env := setupTestServer(t)

	result := env.call(t, "wizard-select-organization", map[string]any{})
	assert.True(t, result.IsError)

	result = env.call(t, "wizard-select-organization", map[string]any{"id": float64(99)})
	assert.True(t, result.IsError)
	assert.Contains(t, extractText(result), "organization 99 not found")
}

func TestHandleClearOrganization(t *testing.T) {
	env := setupTestServer(t)
	env.call(t, "wizard-select-organization", map[string]any{"id": float64(1)})
	env.call(t, "wizard-update", map[string]any{"department_id": float64(10), "contact_id": float64(30)})

	env.call(t, "wizard-clear-organization", nil)

	d := env.srv.ctrl.Store().Draft()
	assert.Zero(t, d.OrganizationID)
	assert.Zero(t, d.DepartmentID)
	assert.Zero(t, d.ContactID)
	_, ok := env.srv.ctrl.Store().Review().LabelFor(wizard.LabelDepartment, d)
	assert.False(t, ok)
}

func TestHandleNext_BlockedStep(t *testing.T) {
	env := setupTestServer(t)

	result := env.call(t, "wizard-next", nil)
	assert.False(t, result.IsError)
	text := extractText(result)
	assert.Contains(t, text, "Step basic is incomplete")
	assert.Contains(t, text, "title is required")
	assert.Equal(t, wizard.StepBasic, env.srv.ctrl.Step())
}

func TestHandleNext_SubmitsFromReview(t *testing.T) {
	env := setupTestServer(t)
	env.fillToReview(t)

	st := env.status(t)
	assert.Contains(t, st.Summary, "# Backend Engineer")
	assert.Contains(t, st.Summary, "Platform")

	result := env.call(t, "wizard-next", nil)
	assert.False(t, result.IsError)
	assert.Contains(t, extractText(result), "Created job #900: Backend Engineer")

	require.Len(t, env.creator.reqs, 1)
	assert.Equal(t, int64(1), env.creator.reqs[0].OrganizationID)
	assert.Equal(t, int64(10), env.creator.reqs[0].DepartmentID)
	assert.Equal(t, 1, env.closes)
	assert.True(t, env.srv.ctrl.Closed())
	assert.Equal(t, wizard.StepBasic, env.srv.ctrl.Step())
}

func TestHandleNext_SubmitFailureKeepsState(t *testing.T) {
	env := setupTestServer(t)
	env.fillToReview(t)
	env.creator.err = &ats.APIError{Status: http.StatusUnprocessableEntity, Message: "Recruiter is inactive"}

	result := env.call(t, "wizard-next", nil)
	assert.True(t, result.IsError)
	assert.Contains(t, extractText(result), "Recruiter is inactive")
	assert.Equal(t, wizard.StepReview, env.srv.ctrl.Step())
	assert.Equal(t, "Recruiter is inactive", env.status(t).LastError)
	assert.Zero(t, env.closes)
}

func TestHandleNext_ReopensClosedSession(t *testing.T) {
	env := setupTestServer(t)
	env.fillToReview(t)
	env.call(t, "wizard-next", nil)
	require.True(t, env.srv.ctrl.Closed())

	env.call(t, "wizard-update", map[string]any{"title": "Second job"})
	assert.False(t, env.srv.ctrl.Closed())
	assert.Equal(t, "Second job", env.srv.ctrl.Store().Draft().Title)
}

func TestHandleBackAndJump(t *testing.T) {
	env := setupTestServer(t)

	result := env.call(t, "wizard-back", nil)
	assert.Contains(t, extractText(result), "Already on the first step")

	env.call(t, "wizard-update", map[string]any{"title": "Backend Engineer", "description": "Build APIs"})
	env.call(t, "wizard-next", nil)
	require.Equal(t, wizard.StepLocation, env.srv.ctrl.Step())

	result = env.call(t, "wizard-jump", map[string]any{"step": "review"})
	assert.Contains(t, extractText(result), "Cannot jump to review")

	result = env.call(t, "wizard-jump", map[string]any{"step": "basic"})
	assert.Contains(t, extractText(result), "Jumped to basic")
	assert.Equal(t, wizard.StepBasic, env.srv.ctrl.Step())

	result = env.call(t, "wizard-jump", map[string]any{"step": "location"})
	assert.Contains(t, extractText(result), "Jumped to location")

	result = env.call(t, "wizard-back", nil)
	assert.Contains(t, extractText(result), "Moved back to basic")

	result = env.call(t, "wizard-jump", map[string]any{"step": "payroll"})
	assert.True(t, result.IsError)
}

func TestHandleCancel_NothingToKeep(t *testing.T) {
	env := setupTestServer(t)

	result := env.call(t, "wizard-cancel", nil)
	assert.Contains(t, extractText(result), "Nothing to keep")
	assert.Equal(t, 1, env.closes)
}

func TestHandleCancel_Resolutions(t *testing.T) {
	tests := []struct {
		resolution string
		want       string
		title      string
		closes     int
	}{
		{"continue_later", "kept for later", "Backend Engineer", 1},
		{"discard", "discarded", "", 1},
		{"keep_editing", "Cancel withdrawn", "Backend Engineer", 0},
	}
	for _, tt := range tests {
		t.Run(tt.resolution, func(t *testing.T) {
			env := setupTestServer(t)
			env.call(t, "wizard-update", map[string]any{"title": "Backend Engineer"})

			result := env.call(t, "wizard-cancel", nil)
			require.Contains(t, extractText(result), "unsaved changes")
			assert.True(t, env.status(t).CancelPending)

			result = env.call(t, "wizard-resolve-cancel", map[string]any{"resolution": tt.resolution})
			assert.False(t, result.IsError)
			assert.Contains(t, extractText(result), tt.want)
			assert.Equal(t, tt.title, env.srv.ctrl.Store().Draft().Title)
			assert.Equal(t, tt.closes, env.closes)
			assert.False(t, env.srv.ctrl.CancelPending())
		})
	}
}

func TestHandleCancel_DuringSubmission(t *testing.T) {
	env := setupTestServer(t)
	env.fillToReview(t)
	env.creator.started = make(chan struct{}, 1)
	env.creator.release = make(chan struct{})

	done := make(chan *mcp.CallToolResult, 1)
	go func() {
		req := mcp.CallToolRequest{Params: mcp.CallToolParams{Name: "wizard-next"}}
		result, _ := env.srv.handleNext(context.Background(), req)
		done <- result
	}()
	select {
	case <-env.creator.started:
	case <-time.After(2 * time.Second):
		t.Fatal("submission never started")
	}

	result := env.call(t, "wizard-cancel", nil)
	assert.True(t, result.IsError)
	assert.Contains(t, extractText(result), "being created")

	result = env.call(t, "wizard-resolve-cancel", map[string]any{"resolution": "discard"})
	assert.True(t, result.IsError)
	assert.Contains(t, extractText(result), wizard.ErrSubmissionPending.Error())

	result = env.call(t, "wizard-back", nil)
	assert.True(t, result.IsError)
	result = env.call(t, "wizard-jump", map[string]any{"step": "basic"})
	assert.True(t, result.IsError)
	assert.Equal(t, wizard.StepReview, env.srv.ctrl.Step())

	close(env.creator.release)
	result = <-done
	require.NotNil(t, result)
	assert.Contains(t, extractText(result), "Created job #900")
}

func TestHandleResolveCancel_WithoutPrompt(t *testing.T) {
	env := setupTestServer(t)

	result := env.call(t, "wizard-resolve-cancel", map[string]any{"resolution": "discard"})
	assert.True(t, result.IsError)
	assert.Contains(t, extractText(result), wizard.ErrNoCancelPrompt.Error())

	result = env.call(t, "wizard-resolve-cancel", map[string]any{"resolution": "maybe"})
	assert.True(t, result.IsError)
}

func TestHandleSearchOrganizations(t *testing.T) {
	env := setupTestServer(t)

	result := env.call(t, "search-organizations", map[string]any{"query": "Acme"})
	text := extractText(result)
	assert.Contains(t, text, "1 organization(s)")
	assert.Contains(t, text, "1: Acme Staffing (Austin, TX)")

	result = env.call(t, "search-organizations", map[string]any{"query": "Zeta"})
	assert.Contains(t, extractText(result), "No organizations match")

	result = env.call(t, "search-organizations", map[string]any{"query": "  "})
	assert.True(t, result.IsError)
}

func TestHandleListDepartments_CachedPerOrganization(t *testing.T) {
	env := setupTestServer(t)
	env.call(t, "wizard-select-organization", map[string]any{"id": float64(1)})

	text := extractText(env.call(t, "list-departments", nil))
	assert.Contains(t, text, "departments (2):")
	assert.Contains(t, text, "10: Platform")

	env.call(t, "list-departments", nil)
	env.call(t, "wizard-update", map[string]any{"department_id": float64(10)})
	assert.Equal(t, 1, env.dir.deptCalls)

	env.call(t, "wizard-select-organization", map[string]any{"id": float64(2)})
	text = extractText(env.call(t, "list-departments", nil))
	assert.Contains(t, text, "20: Nursing")
	assert.Equal(t, 2, env.dir.deptCalls)
}

func TestHandleListUnscoped(t *testing.T) {
	env := setupTestServer(t)

	assert.Contains(t, extractText(env.call(t, "list-recruiters", nil)), "40: Sam Ortiz")
	assert.Contains(t, extractText(env.call(t, "list-workflows", nil)), "50: Engineering loop")
	assert.Contains(t, extractText(env.call(t, "list-categories", nil)), "60: Software")

	env.call(t, "wizard-select-organization", map[string]any{"id": float64(2)})
	assert.Contains(t, extractText(env.call(t, "list-contacts", nil)), "No contacts available")
}

func TestServerStartStop(t *testing.T) {
	env := setupTestServer(t)

	addr, err := env.srv.Start("127.0.0.1:0")
	require.NoError(t, err)
	assert.NotEmpty(t, addr)
	assert.Equal(t, "http://"+addr+"/mcp", env.srv.URL())

	_, err = env.srv.Start("127.0.0.1:0")
	assert.Error(t, err)

	require.NoError(t, env.srv.Stop(context.Background()))
	require.NoError(t, env.srv.Stop(context.Background()))
}

var _ Directory = (*ats.Client)(nil)

