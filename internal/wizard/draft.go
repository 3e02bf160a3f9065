package wizard

import (
	"slices"
	"strings"
)

// JobType is the employment type of a job posting.
type JobType string

const (
	JobTypeFullTime       JobType = "full_time"
	JobTypePartTime       JobType = "part_time"
	JobTypeContract       JobType = "contract"
	JobTypeContractToHire JobType = "contract_to_hire"
	JobTypeTemporary      JobType = "temporary"
	JobTypeInternship     JobType = "internship"
)

// JobTypes lists every accepted job type in display order.
var JobTypes = []JobType{
	JobTypeFullTime,
	JobTypePartTime,
	JobTypeContract,
	JobTypeContractToHire,
	JobTypeTemporary,
	JobTypeInternship,
}

// Valid reports whether t is one of JobTypes.
func (t JobType) Valid() bool {
	return slices.Contains(JobTypes, t)
}

// Draft is the in-progress job the wizard accumulates. Zero values mean
// unset; identifier fields use 0 for "no selection".
//
// AutoClose is wizard-only scratch state and is never sent as-is; it only
// decides whether CloseDate goes out with the request.
type Draft struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	JobType     JobType `json:"job_type"`
	Openings    int     `json:"openings"`

	RemoteAllowed bool   `json:"remote_allowed"`
	City          string `json:"city"`
	State         string `json:"state"`
	PostalCode    string `json:"postal_code"`
	Country       string `json:"country"`

	OrganizationID int64 `json:"organization_id"`
	DepartmentID   int64 `json:"department_id"`
	ContactID      int64 `json:"contact_id"`
	RecruiterID    int64 `json:"recruiter_id"`

	StartDate string `json:"start_date"`
	Salary    string `json:"salary"`
	Rate      string `json:"rate"`
	Duration  string `json:"duration"`
	Notes     string `json:"notes"`
	AutoClose bool   `json:"auto_close"`
	CloseDate string `json:"close_date"`

	CategoryID      int64    `json:"category_id"`
	WorkflowID      int64    `json:"workflow_id"`
	Tags            []string `json:"tags"`
	ApplicationForm string   `json:"application_form"`
}

// Defaults are the values a fresh draft starts from.
type Defaults struct {
	Country         string
	ApplicationForm string
}

// DefaultDefaults returns the built-in draft defaults.
func DefaultDefaults() Defaults {
	return Defaults{Country: "US", ApplicationForm: "standard"}
}

// InitialDraft returns the empty draft for the given defaults. Blank
// default values fall back to the built-in ones.
func InitialDraft(def Defaults) Draft {
	builtin := DefaultDefaults()
	if def.Country == "" {
		def.Country = builtin.Country
	}
	if def.ApplicationForm == "" {
		def.ApplicationForm = builtin.ApplicationForm
	}
	return Draft{
		JobType:         JobTypeFullTime,
		Openings:        1,
		Country:         strings.ToUpper(def.Country),
		ApplicationForm: def.ApplicationForm,
	}
}

func (d Draft) clone() Draft {
	d.Tags = slices.Clone(d.Tags)
	return d
}

// DraftPatch is a partial update to a Draft. A nil field leaves the draft
// value alone; a pointer to the zero value clears it.
//
// The organization identifier is not part of the patch. It only changes
// through Store.SetOrganization so the organization scoping rules always run.
type DraftPatch struct {
	Title       *string
	Description *string
	JobType     *JobType
	Openings    *int

	RemoteAllowed *bool
	City          *string
	State         *string
	PostalCode    *string
	Country       *string

	DepartmentID *int64
	ContactID    *int64
	RecruiterID  *int64

	StartDate *string
	Salary    *string
	Rate      *string
	Duration  *string
	Notes     *string
	AutoClose *bool
	CloseDate *string

	CategoryID      *int64
	WorkflowID      *int64
	Tags            *[]string
	ApplicationForm *string
}

// Ptr returns a pointer to v, for building patches.
func Ptr[T any](v T) *T { return &v }

// IsEmpty reports whether the patch changes nothing.
func (p DraftPatch) IsEmpty() bool {
	return p == DraftPatch{}
}

// merge copies every non-nil patch field onto d.
func (p DraftPatch) merge(d Draft) Draft {
	set(&d.Title, p.Title)
	set(&d.Description, p.Description)
	set(&d.JobType, p.JobType)
	set(&d.Openings, p.Openings)
	set(&d.RemoteAllowed, p.RemoteAllowed)
	set(&d.City, p.City)
	set(&d.State, p.State)
	set(&d.PostalCode, p.PostalCode)
	if p.Country != nil {
		d.Country = normalizeCountry(*p.Country)
	}
	set(&d.DepartmentID, p.DepartmentID)
	set(&d.ContactID, p.ContactID)
	set(&d.RecruiterID, p.RecruiterID)
	set(&d.StartDate, p.StartDate)
	set(&d.Salary, p.Salary)
	set(&d.Rate, p.Rate)
	set(&d.Duration, p.Duration)
	set(&d.Notes, p.Notes)
	set(&d.AutoClose, p.AutoClose)
	set(&d.CloseDate, p.CloseDate)
	set(&d.CategoryID, p.CategoryID)
	set(&d.WorkflowID, p.WorkflowID)
	if p.Tags != nil {
		d.Tags = slices.Clone(*p.Tags)
	}
	set(&d.ApplicationForm, p.ApplicationForm)
	return d
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func normalizeCountry(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Address is an organization's postal address.
type Address struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// Organization is a client organization looked up from the ATS.
type Organization struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name"`
	Address Address `json:"address"`
}

// Label is a display name resolved for an identifier.
type Label struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ReviewMetadata caches display labels for the review step. It is never a
// source of identifiers; see LabelFor.
type ReviewMetadata struct {
	Department Label `json:"department"`
	Contact    Label `json:"contact"`
	Recruiter  Label `json:"recruiter"`
	Category   Label `json:"category"`
	Workflow   Label `json:"workflow"`
}

// LabelField names one ReviewMetadata entry.
type LabelField string

const (
	LabelDepartment LabelField = "department"
	LabelContact    LabelField = "contact"
	LabelRecruiter  LabelField = "recruiter"
	LabelCategory   LabelField = "category"
	LabelWorkflow   LabelField = "workflow"
)

// LabelFor returns the display name for field, but only while the cached
// label still belongs to the identifier currently in the draft.
func (m ReviewMetadata) LabelFor(field LabelField, d Draft) (string, bool) {
	var l Label
	var id int64
	switch field {
	case LabelDepartment:
		l, id = m.Department, d.DepartmentID
	case LabelContact:
		l, id = m.Contact, d.ContactID
	case LabelRecruiter:
		l, id = m.Recruiter, d.RecruiterID
	case LabelCategory:
		l, id = m.Category, d.CategoryID
	case LabelWorkflow:
		l, id = m.Workflow, d.WorkflowID
	default:
		return "", false
	}
	if id == 0 || l.ID != id || l.Name == "" {
		return "", false
	}
	return l.Name, true
}

// MetadataPatch is a partial update to ReviewMetadata.
type MetadataPatch struct {
	Department *Label
	Contact    *Label
	Recruiter  *Label
	Category   *Label
	Workflow   *Label
}

func (p MetadataPatch) merge(m ReviewMetadata) ReviewMetadata {
	set(&m.Department, p.Department)
	set(&m.Contact, p.Contact)
	set(&m.Recruiter, p.Recruiter)
	set(&m.Category, p.Category)
	set(&m.Workflow, p.Workflow)
	return m
}
