package jobwizard

import (
	"context"

	tea "charm.land/bubbletea/v2"

	"github.com/recruitdash/recruitdash/internal/ats"
	"github.com/recruitdash/recruitdash/internal/wizard"
)

// Directory is the ATS lookup surface the wizard screens use. *ats.Client
// satisfies it.
type Directory interface {
	SearchOrganizations(ctx context.Context, query string) ([]ats.Organization, error)
	ListDepartments(ctx context.Context, orgID int64) ([]ats.Department, error)
	ListContacts(ctx context.Context, orgID int64) ([]ats.Contact, error)
	ListRecruiters(ctx context.Context) ([]ats.Recruiter, error)
	ListWorkflows(ctx context.Context) ([]ats.Workflow, error)
	ListCategories(ctx context.Context) ([]ats.Category, error)
}

// orgResultsMsg carries search results for query.
type orgResultsMsg struct {
	query string
	orgs  []ats.Organization
	err   error
}

// optionsMsg carries a loaded lookup list. orgID is the organization the
// list was scoped to, 0 for unscoped lists.
type optionsMsg struct {
	key     string
	orgID   int64
	options []option
	err     error
}

// searchOrganizations waits out the debounce window for token and runs the
// search if no newer input arrived.
func (m *Model) searchOrganizations(token uint64) tea.Cmd {
	ctx, deb, dir := m.ctx, m.debounce, m.dir
	return func() tea.Msg {
		query, ok := deb.Wait(ctx, token)
		if !ok {
			return nil
		}
		orgs, err := dir.SearchOrganizations(ctx, query)
		return orgResultsMsg{query: query, orgs: orgs, err: err}
	}
}

// loadScoped fetches departments and contacts for the selected
// organization. Nothing is loaded without one.
func (m *Model) loadScoped() tea.Cmd {
	d := m.ctrl.Store().Draft()
	gate := wizard.GateFor(d)
	ctx, dir, orgID := m.ctx, m.dir, d.OrganizationID
	departments, contacts := m.departments, m.contacts

	var cmds []tea.Cmd
	if gate.Departments {
		cmds = append(cmds, func() tea.Msg {
			list, err := departments.Load(ctx, orgID, dir.ListDepartments)
			return optionsMsg{key: keyDepartment, orgID: orgID, options: labels(list, ats.Department.Label), err: err}
		})
	}
	if gate.Contacts {
		cmds = append(cmds, func() tea.Msg {
			list, err := contacts.Load(ctx, orgID, dir.ListContacts)
			return optionsMsg{key: keyContact, orgID: orgID, options: labels(list, ats.Contact.Label), err: err}
		})
	}
	return tea.Batch(cmds...)
}

// loadUnscoped fetches the lists that need no organization.
func (m *Model) loadUnscoped() tea.Cmd {
	ctx, dir := m.ctx, m.dir
	return tea.Batch(
		func() tea.Msg {
			list, err := dir.ListRecruiters(ctx)
			return optionsMsg{key: keyRecruiter, options: labels(list, ats.Recruiter.Label), err: err}
		},
		func() tea.Msg {
			list, err := dir.ListWorkflows(ctx)
			return optionsMsg{key: keyWorkflow, options: labels(list, ats.Workflow.Label), err: err}
		},
		func() tea.Msg {
			list, err := dir.ListCategories(ctx)
			return optionsMsg{key: keyCategory, options: labels(list, ats.Category.Label), err: err}
		},
	)
}

func labels[T any](list []T, label func(T) wizard.Label) []option {
	opts := make([]option, 0, len(list))
	for _, item := range list {
		opts = append(opts, option{label: label(item)})
	}
	return opts
}
