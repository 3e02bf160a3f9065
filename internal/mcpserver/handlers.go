package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/recruitdash/recruitdash/internal/ats"
	"github.com/recruitdash/recruitdash/internal/review"
	"github.com/recruitdash/recruitdash/internal/wizard"
)

// status is the wizard-status payload.
type status struct {
	Step          wizard.Step           `json:"step"`
	Completed     []wizard.Step         `json:"completed"`
	Valid         bool                  `json:"valid"`
	Problems      []string              `json:"problems,omitempty"`
	CancelPending bool                  `json:"cancel_pending"`
	Closed        bool                  `json:"closed"`
	LastError     string                `json:"last_error,omitempty"`
	Draft         wizard.Draft          `json:"draft"`
	Organization  *wizard.Organization  `json:"organization,omitempty"`
	Review        wizard.ReviewMetadata `json:"review"`
	Summary       string                `json:"summary,omitempty"`
}

func (s *Server) handleStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snap := s.ctrl.Store().Snapshot()
	st := status{
		Step:          snap.Step,
		Completed:     snap.Completed,
		Valid:         s.ctrl.CurrentValid(),
		Problems:      s.ctrl.Problems(),
		CancelPending: s.ctrl.CancelPending(),
		Closed:        s.ctrl.Closed(),
		Draft:         snap.Draft,
		Organization:  snap.Organization,
		Review:        snap.Review,
	}
	if err := s.ctrl.LastError(); err != nil {
		st.LastError = err.Error()
	}
	if snap.Step == wizard.StepReview {
		st.Summary = review.Markdown(snap)
	}

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode status: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) handleUpdate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	if len(args) == 0 {
		return mcp.NewToolResultError("no fields provided"), nil
	}

	patch, err := parsePatch(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if patch.IsEmpty() {
		return mcp.NewToolResultError("no known fields provided"), nil
	}

	ctrl := s.session()
	draft := ctrl.Store().Draft()
	meta, err := s.labelsFor(ctx, patch, draft)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	ctrl.Store().UpdateDraft(patch)
	ctrl.Store().SetReviewMetadata(meta)

	return mcp.NewToolResultText(s.stepLine()), nil
}

// labelsFor checks selected ids against the ATS and returns their display
// labels.
func (s *Server) labelsFor(ctx context.Context, p wizard.DraftPatch, d wizard.Draft) (wizard.MetadataPatch, error) {
	var meta wizard.MetadataPatch
	gate := wizard.GateFor(d)

	if id := p.DepartmentID; id != nil && *id != 0 {
		if !gate.Departments {
			return meta, errors.New("select an organization before choosing a department")
		}
		list, err := s.departments.Load(ctx, d.OrganizationID, s.dir.ListDepartments)
		if err != nil {
			return meta, fmt.Errorf("failed to list departments: %w", err)
		}
		l, ok := find(list, *id, ats.Department.Label)
		if !ok {
			return meta, fmt.Errorf("department %d not found for organization %d", *id, d.OrganizationID)
		}
		meta.Department = &l
	}

	if id := p.ContactID; id != nil && *id != 0 {
		if !gate.Contacts {
			return meta, errors.New("select an organization before choosing a contact")
		}
		list, err := s.contacts.Load(ctx, d.OrganizationID, s.dir.ListContacts)
		if err != nil {
			return meta, fmt.Errorf("failed to list contacts: %w", err)
		}
		l, ok := find(list, *id, ats.Contact.Label)
		if !ok {
			return meta, fmt.Errorf("contact %d not found for organization %d", *id, d.OrganizationID)
		}
		meta.Contact = &l
	}

	if id := p.RecruiterID; id != nil && *id != 0 {
		list, err := s.recruiters.Load(ctx, struct{}{}, unscoped(s.dir.ListRecruiters))
		if err != nil {
			return meta, fmt.Errorf("failed to list recruiters: %w", err)
		}
		l, ok := find(list, *id, ats.Recruiter.Label)
		if !ok {
			return meta, fmt.Errorf("recruiter %d not found", *id)
		}
		meta.Recruiter = &l
	}

	if id := p.WorkflowID; id != nil && *id != 0 {
		list, err := s.workflows.Load(ctx, struct{}{}, unscoped(s.dir.ListWorkflows))
		if err != nil {
			return meta, fmt.Errorf("failed to list workflows: %w", err)
		}
		l, ok := find(list, *id, ats.Workflow.Label)
		if !ok {
			return meta, fmt.Errorf("workflow %d not found", *id)
		}
		meta.Workflow = &l
	}

	if id := p.CategoryID; id != nil && *id != 0 {
		list, err := s.categories.Load(ctx, struct{}{}, unscoped(s.dir.ListCategories))
		if err != nil {
			return meta, fmt.Errorf("failed to list categories: %w", err)
		}
		l, ok := find(list, *id, ats.Category.Label)
		if !ok {
			return meta, fmt.Errorf("category %d not found", *id)
		}
		meta.Category = &l
	}

	return meta, nil
}

func (s *Server) handleSelectOrganization(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, ok, err := intArg(request.GetArguments(), "id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !ok || id <= 0 {
		return mcp.NewToolResultError("missing or invalid 'id' parameter"), nil
	}

	org, err := s.dir.GetOrganization(ctx, id)
	if err != nil {
		var apiErr *ats.APIError
		if errors.As(err, &apiErr) && apiErr.NotFound() {
			return mcp.NewToolResultError(fmt.Sprintf("organization %d not found", id)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("failed to load organization: %v", err)), nil
	}

	s.session().Store().SetOrganization(&org)
	d := s.ctrl.Store().Draft()
	return mcp.NewToolResultText(fmt.Sprintf("Selected %s (%d); location set to %s, %s.\n%s",
		org.Name, org.ID, d.City, d.State, s.stepLine())), nil
}

func (s *Server) handleClearOrganization(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.session().Store().SetOrganization(nil)
	return mcp.NewToolResultText("Organization cleared.\n" + s.stepLine()), nil
}

func (s *Server) handleNext(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tr, err := s.session().GoNext(ctx)
	if err != nil {
		var subErr *wizard.SubmitError
		if errors.As(err, &subErr) {
			return mcp.NewToolResultError("Job was not created: " + subErr.Message), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}

	switch {
	case tr.Submitted:
		msg := fmt.Sprintf("Created job #%d: %s", tr.Job.ID, tr.Job.Title)
		if tr.Job.URL != "" {
			msg += "\n" + tr.Job.URL
		}
		return mcp.NewToolResultText(msg), nil
	case tr.Moved:
		return mcp.NewToolResultText(fmt.Sprintf("Moved from %s to %s.\n%s", tr.From, tr.To, s.stepLine())), nil
	default:
		return mcp.NewToolResultText(fmt.Sprintf("Step %s is incomplete:\n%s", tr.From, bullets(s.ctrl.Problems()))), nil
	}
}

func (s *Server) handleBack(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctrl := s.session()
	if ctrl.Submitting() {
		return mcp.NewToolResultError(wizard.ErrSubmissionPending.Error()), nil
	}
	tr := ctrl.GoBack()
	if !tr.Moved {
		return mcp.NewToolResultText(fmt.Sprintf("Already on the first step (%s).", tr.From)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Moved back to %s.", tr.To)), nil
}

func (s *Server) handleJump(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, _ := request.GetArguments()["step"].(string)
	target, err := wizard.ParseStep(raw)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	ctrl := s.session()
	if ctrl.Submitting() {
		return mcp.NewToolResultError(wizard.ErrSubmissionPending.Error()), nil
	}
	if !ctrl.Jump(target) {
		return mcp.NewToolResultText(fmt.Sprintf(
			"Cannot jump to %s from %s: only earlier or completed steps are reachable.", target, ctrl.Step())), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Jumped to %s.", target)), nil
}

func (s *Server) handleCancel(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	switch s.session().Cancel() {
	case wizard.CancelPrompt:
		return mcp.NewToolResultText("The draft has unsaved changes. Call wizard-resolve-cancel with " +
			"continue_later to keep it, discard to throw it away, or keep_editing to stay."), nil
	case wizard.CancelBlocked:
		return mcp.NewToolResultError("A job is being created; cancel is not possible until it finishes."), nil
	}
	return mcp.NewToolResultText("Nothing to keep; wizard closed."), nil
}

func (s *Server) handleResolveCancel(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, _ := request.GetArguments()["resolution"].(string)

	if res == "keep_editing" {
		if !s.ctrl.CancelPending() {
			return mcp.NewToolResultError(wizard.ErrNoCancelPrompt.Error()), nil
		}
		s.ctrl.DismissCancel()
		return mcp.NewToolResultText("Cancel withdrawn.\n" + s.stepLine()), nil
	}

	var resolution wizard.CancelResolution
	switch res {
	case "continue_later":
		resolution = wizard.ContinueLater
	case "discard":
		resolution = wizard.Discard
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown resolution %q", res)), nil
	}

	if err := s.ctrl.ResolveCancel(resolution); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if resolution == wizard.Discard {
		return mcp.NewToolResultText("Draft discarded; wizard closed."), nil
	}
	return mcp.NewToolResultText("Draft kept for later; wizard closed."), nil
}

func (s *Server) handleSearchOrganizations(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, _ := request.GetArguments()["query"].(string)
	query = strings.TrimSpace(query)
	if query == "" {
		return mcp.NewToolResultError("missing or empty 'query' parameter"), nil
	}

	orgs, err := s.dir.SearchOrganizations(ctx, query)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to search organizations: %v", err)), nil
	}
	if len(orgs) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No organizations match %q.", query)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d organization(s):", len(orgs))
	for _, o := range orgs {
		fmt.Fprintf(&b, "\n  %d: %s", o.ID, o.Name)
		if o.Address.City != "" {
			fmt.Fprintf(&b, " (%s, %s)", o.Address.City, o.Address.State)
		}
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) handleListDepartments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	d := s.ctrl.Store().Draft()
	if !wizard.GateFor(d).Departments {
		return mcp.NewToolResultError("select an organization first"), nil
	}
	list, err := s.departments.Load(ctx, d.OrganizationID, s.dir.ListDepartments)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list departments: %v", err)), nil
	}
	return mcp.NewToolResultText(labelList("departments", list, ats.Department.Label)), nil
}

func (s *Server) handleListContacts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	d := s.ctrl.Store().Draft()
	if !wizard.GateFor(d).Contacts {
		return mcp.NewToolResultError("select an organization first"), nil
	}
	list, err := s.contacts.Load(ctx, d.OrganizationID, s.dir.ListContacts)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list contacts: %v", err)), nil
	}
	return mcp.NewToolResultText(labelList("contacts", list, ats.Contact.Label)), nil
}

func (s *Server) handleListRecruiters(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	list, err := s.recruiters.Load(ctx, struct{}{}, unscoped(s.dir.ListRecruiters))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list recruiters: %v", err)), nil
	}
	return mcp.NewToolResultText(labelList("recruiters", list, ats.Recruiter.Label)), nil
}

func (s *Server) handleListWorkflows(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	list, err := s.workflows.Load(ctx, struct{}{}, unscoped(s.dir.ListWorkflows))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list workflows: %v", err)), nil
	}
	return mcp.NewToolResultText(labelList("workflows", list, ats.Workflow.Label)), nil
}

func (s *Server) handleListCategories(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	list, err := s.categories.Load(ctx, struct{}{}, unscoped(s.dir.ListCategories))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list categories: %v", err)), nil
	}
	return mcp.NewToolResultText(labelList("categories", list, ats.Category.Label)), nil
}

// stepLine summarizes where the wizard stands after a change.
func (s *Server) stepLine() string {
	step := s.ctrl.Step()
	if problems := s.ctrl.Problems(); len(problems) > 0 {
		return fmt.Sprintf("Current step %s still needs:\n%s", step, bullets(problems))
	}
	return fmt.Sprintf("Current step %s is complete; call wizard-next to continue.", step)
}

func bullets(lines []string) string {
	var b strings.Builder
	for i, l := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("  - ")
		b.WriteString(l)
	}
	return b.String()
}

func unscoped[V any](fn func(context.Context) (V, error)) func(context.Context, struct{}) (V, error) {
	return func(ctx context.Context, _ struct{}) (V, error) { return fn(ctx) }
}

func find[T any](list []T, id int64, label func(T) wizard.Label) (wizard.Label, bool) {
	for _, item := range list {
		if l := label(item); l.ID == id {
			return l, true
		}
	}
	return wizard.Label{}, false
}

func labelList[T any](plural string, list []T, label func(T) wizard.Label) string {
	if len(list) == 0 {
		return fmt.Sprintf("No %s available.", plural)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%d):", plural, len(list))
	for _, item := range list {
		l := label(item)
		fmt.Fprintf(&b, "\n  %d: %s", l.ID, l.Name)
	}
	return b.String()
}
