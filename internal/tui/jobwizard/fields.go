package jobwizard

import (
	"fmt"
	"strconv"
	"strings"

	"charm.land/bubbles/v2/textarea"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"

	"github.com/recruitdash/recruitdash/internal/wizard"
)

type fieldKind int

const (
	kindText fieldKind = iota
	kindArea
	kindToggle
	kindChoice
	kindSearch
)

// Field keys. They match the draft's JSON names.
const (
	keyTitle           = "title"
	keyDescription     = "description"
	keyJobType         = "job_type"
	keyOpenings        = "openings"
	keyRemote          = "remote_allowed"
	keyCity            = "city"
	keyState           = "state"
	keyPostalCode      = "postal_code"
	keyCountry         = "country"
	keyOrganization    = "organization"
	keyDepartment      = "department_id"
	keyContact         = "contact_id"
	keyRecruiter       = "recruiter_id"
	keyStartDate       = "start_date"
	keySalary          = "salary"
	keyRate            = "rate"
	keyDuration        = "duration"
	keyAutoClose       = "auto_close"
	keyCloseDate       = "close_date"
	keyNotes           = "notes"
	keyCategory        = "category_id"
	keyWorkflow        = "workflow_id"
	keyTags            = "tags"
	keyApplicationForm = "application_form"
)

// option is one entry of a choice field. Job types use value; lookups use
// the label.
type option struct {
	value string
	label wizard.Label
}

func (o option) text() string {
	if o.value != "" {
		return strings.ReplaceAll(o.value, "_", " ")
	}
	return o.label.Name
}

// field is one editable row of a step.
type field struct {
	key   string
	label string
	kind  fieldKind

	input textinput.Model
	area  textarea.Model

	err string
}

func newField(key, label string, kind fieldKind, placeholder string) *field {
	f := &field{key: key, label: label, kind: kind}
	switch kind {
	case kindText, kindSearch:
		f.input = textinput.New()
		f.input.Placeholder = placeholder
		f.input.CharLimit = 200
		f.input.SetWidth(40)
	case kindArea:
		f.area = textarea.New()
		f.area.Placeholder = placeholder
		f.area.CharLimit = 5000
		f.area.SetWidth(60)
		f.area.SetHeight(4)
	}
	return f
}

func (f *field) focus() tea.Cmd {
	switch f.kind {
	case kindText, kindSearch:
		return f.input.Focus()
	case kindArea:
		return f.area.Focus()
	}
	return nil
}

func (f *field) blur() {
	switch f.kind {
	case kindText, kindSearch:
		f.input.Blur()
	case kindArea:
		f.area.Blur()
	}
}

func (f *field) value() string {
	switch f.kind {
	case kindText, kindSearch:
		return f.input.Value()
	case kindArea:
		return f.area.Value()
	}
	return ""
}

func (f *field) setValue(v string) {
	switch f.kind {
	case kindText, kindSearch:
		f.input.SetValue(v)
	case kindArea:
		f.area.SetValue(v)
	}
}

func (f *field) setWidth(w int) {
	switch f.kind {
	case kindText, kindSearch:
		f.input.SetWidth(max(20, w-24))
	case kindArea:
		f.area.SetWidth(max(20, w-20))
	}
}

// editable reports whether the field can be opened in $EDITOR.
func (f *field) editable() bool { return f.kind == kindArea }

// newStepFields builds the rows for step.
func newStepFields(step wizard.Step) []*field {
	switch step {
	case wizard.StepBasic:
		return []*field{
			newField(keyTitle, "Title", kindText, "e.g. Senior Backend Engineer"),
			newField(keyDescription, "Description", kindArea, "What the role involves"),
			newField(keyJobType, "Job type", kindChoice, ""),
			newField(keyOpenings, "Openings", kindText, "1"),
		}
	case wizard.StepLocation:
		return []*field{
			newField(keyCity, "City", kindText, ""),
			newField(keyState, "State", kindText, ""),
			newField(keyPostalCode, "Postal code", kindText, "optional"),
			newField(keyCountry, "Country", kindText, "US"),
			newField(keyRemote, "Remote allowed", kindToggle, ""),
		}
	case wizard.StepOrganization:
		return []*field{
			newField(keyOrganization, "Organization", kindSearch, "type to search"),
			newField(keyDepartment, "Department", kindChoice, ""),
			newField(keyContact, "Contact", kindChoice, ""),
			newField(keyRecruiter, "Recruiter", kindChoice, ""),
		}
	case wizard.StepDetails:
		return []*field{
			newField(keyStartDate, "Start date", kindText, wizard.DateLayout),
			newField(keySalary, "Salary", kindText, "optional"),
			newField(keyRate, "Rate", kindText, "optional"),
			newField(keyDuration, "Duration", kindText, "optional"),
			newField(keyAutoClose, "Auto close", kindToggle, ""),
			newField(keyCloseDate, "Close date", kindText, wizard.DateLayout),
			newField(keyNotes, "Notes", kindArea, "Internal notes"),
		}
	case wizard.StepTags:
		return []*field{
			newField(keyCategory, "Category", kindChoice, ""),
			newField(keyWorkflow, "Workflow", kindChoice, ""),
			newField(keyTags, "Tags", kindText, "comma separated"),
			newField(keyApplicationForm, "Application form", kindText, "standard"),
		}
	}
	return nil
}

// readText returns the draft value shown in a text or area field.
func readText(key string, d wizard.Draft) string {
	switch key {
	case keyTitle:
		return d.Title
	case keyDescription:
		return d.Description
	case keyOpenings:
		return strconv.Itoa(d.Openings)
	case keyCity:
		return d.City
	case keyState:
		return d.State
	case keyPostalCode:
		return d.PostalCode
	case keyCountry:
		return d.Country
	case keyStartDate:
		return d.StartDate
	case keySalary:
		return d.Salary
	case keyRate:
		return d.Rate
	case keyDuration:
		return d.Duration
	case keyCloseDate:
		return d.CloseDate
	case keyNotes:
		return d.Notes
	case keyTags:
		return strings.Join(d.Tags, ", ")
	case keyApplicationForm:
		return d.ApplicationForm
	}
	return ""
}

// textPatch turns typed text into a draft patch.
func textPatch(key, v string) (wizard.DraftPatch, error) {
	var p wizard.DraftPatch
	switch key {
	case keyTitle:
		p.Title = &v
	case keyDescription:
		p.Description = &v
	case keyOpenings:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return p, fmt.Errorf("openings must be a number")
		}
		p.Openings = &n
	case keyCity:
		p.City = &v
	case keyState:
		p.State = &v
	case keyPostalCode:
		p.PostalCode = &v
	case keyCountry:
		p.Country = &v
	case keyStartDate:
		p.StartDate = &v
	case keySalary:
		p.Salary = &v
	case keyRate:
		p.Rate = &v
	case keyDuration:
		p.Duration = &v
	case keyCloseDate:
		p.CloseDate = &v
	case keyNotes:
		p.Notes = &v
	case keyTags:
		tags := splitTags(v)
		p.Tags = &tags
	case keyApplicationForm:
		p.ApplicationForm = &v
	default:
		return p, fmt.Errorf("field %s is not text", key)
	}
	return p, nil
}

func splitTags(v string) []string {
	tags := []string{}
	for _, t := range strings.Split(v, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func readToggle(key string, d wizard.Draft) bool {
	switch key {
	case keyRemote:
		return d.RemoteAllowed
	case keyAutoClose:
		return d.AutoClose
	}
	return false
}

func togglePatch(key string, on bool) wizard.DraftPatch {
	var p wizard.DraftPatch
	switch key {
	case keyRemote:
		p.RemoteAllowed = &on
	case keyAutoClose:
		p.AutoClose = &on
	}
	return p
}

// readChoice returns the selected id (lookups) or value (job type).
func readChoice(key string, d wizard.Draft) (int64, string) {
	switch key {
	case keyJobType:
		return 0, string(d.JobType)
	case keyDepartment:
		return d.DepartmentID, ""
	case keyContact:
		return d.ContactID, ""
	case keyRecruiter:
		return d.RecruiterID, ""
	case keyCategory:
		return d.CategoryID, ""
	case keyWorkflow:
		return d.WorkflowID, ""
	}
	return 0, ""
}

// choicePatch selects o, recording its label for the review step.
func choicePatch(key string, o option) (wizard.DraftPatch, wizard.MetadataPatch) {
	var p wizard.DraftPatch
	var meta wizard.MetadataPatch
	id, label := o.label.ID, o.label
	switch key {
	case keyJobType:
		p.JobType = wizard.Ptr(wizard.JobType(o.value))
	case keyDepartment:
		p.DepartmentID, meta.Department = &id, &label
	case keyContact:
		p.ContactID, meta.Contact = &id, &label
	case keyRecruiter:
		p.RecruiterID, meta.Recruiter = &id, &label
	case keyCategory:
		p.CategoryID, meta.Category = &id, &label
	case keyWorkflow:
		p.WorkflowID, meta.Workflow = &id, &label
	}
	return p, meta
}

func jobTypeOptions() []option {
	opts := make([]option, 0, len(wizard.JobTypes))
	for _, t := range wizard.JobTypes {
		opts = append(opts, option{value: string(t)})
	}
	return opts
}
