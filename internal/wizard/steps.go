package wizard

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Step is one stage of the job wizard.
type Step string

const (
	StepBasic        Step = "basic"
	StepLocation     Step = "location"
	StepOrganization Step = "organization"
	StepDetails      Step = "details"
	StepTags         Step = "tags"
	StepReview       Step = "review"
)

// DateLayout is the format of StartDate and CloseDate.
const DateLayout = "2006-01-02"

// ErrUnknownStep is returned by ParseStep for names outside the step order.
var ErrUnknownStep = errors.New("unknown wizard step")

var order = []Step{
	StepBasic,
	StepLocation,
	StepOrganization,
	StepDetails,
	StepTags,
	StepReview,
}

// Steps returns the fixed step order.
func Steps() []Step {
	return append([]Step(nil), order...)
}

// FirstStep is where every wizard session starts.
func FirstStep() Step { return order[0] }

// LastStep is the step that submits.
func LastStep() Step { return order[len(order)-1] }

// ParseStep converts a step name to a Step.
func ParseStep(s string) (Step, error) {
	step := Step(strings.ToLower(strings.TrimSpace(s)))
	if step.Index() < 0 {
		return "", fmt.Errorf("%w: %q", ErrUnknownStep, s)
	}
	return step, nil
}

// Index is the position of s in the step order, or -1.
func (s Step) Index() int {
	for i, step := range order {
		if step == s {
			return i
		}
	}
	return -1
}

// Next returns the step after s.
func (s Step) Next() (Step, bool) {
	i := s.Index()
	if i < 0 || i == len(order)-1 {
		return s, false
	}
	return order[i+1], true
}

// Prev returns the step before s.
func (s Step) Prev() (Step, bool) {
	i := s.Index()
	if i <= 0 {
		return s, false
	}
	return order[i-1], true
}

// Definition describes one step: how it is presented and what makes it valid.
type Definition struct {
	Key         Step
	Label       string
	Description string
	check       func(Draft) []string
}

// Check returns the problems that block leaving the step. An empty result
// means the step is valid.
func (d Definition) Check(draft Draft) []string {
	if d.check == nil {
		return nil
	}
	return d.check(draft)
}

var definitions = []Definition{
	{
		Key:         StepBasic,
		Label:       "Basics",
		Description: "Title, description, job type and number of openings",
		check:       checkBasic,
	},
	{
		Key:         StepLocation,
		Label:       "Location",
		Description: "Where the job is based and whether remote work is allowed",
		check:       checkLocation,
	},
	{
		Key:         StepOrganization,
		Label:       "Organization",
		Description: "Client organization, department, contact and recruiter",
		check:       checkOrganization,
	},
	{
		Key:         StepDetails,
		Label:       "Details",
		Description: "Start date, compensation and closing rules",
		check:       checkDetails,
	},
	{
		Key:         StepTags,
		Label:       "Tags",
		Description: "Category, workflow, tags and application form",
	},
	{
		Key:         StepReview,
		Label:       "Review",
		Description: "Confirm everything and create the job",
	},
}

// Definitions returns every step definition in order.
func Definitions() []Definition {
	return append([]Definition(nil), definitions...)
}

// DefinitionFor returns the definition of step.
func DefinitionFor(step Step) (Definition, bool) {
	i := step.Index()
	if i < 0 {
		return Definition{}, false
	}
	return definitions[i], true
}

// Valid reports whether draft satisfies step's rules. Unknown steps are
// never valid.
func Valid(step Step, draft Draft) bool {
	def, ok := DefinitionFor(step)
	return ok && len(def.Check(draft)) == 0
}

func checkBasic(d Draft) []string {
	var problems []string
	if strings.TrimSpace(d.Title) == "" {
		problems = append(problems, "title is required")
	}
	if strings.TrimSpace(d.Description) == "" {
		problems = append(problems, "description is required")
	}
	if !d.JobType.Valid() {
		problems = append(problems, fmt.Sprintf("job type %q is not supported", d.JobType))
	}
	if d.Openings < 1 {
		problems = append(problems, "openings must be at least 1")
	}
	return problems
}

func checkLocation(d Draft) []string {
	var problems []string
	if strings.TrimSpace(d.City) == "" {
		problems = append(problems, "city is required")
	}
	if strings.TrimSpace(d.State) == "" {
		problems = append(problems, "state is required")
	}
	if !validCountry(d.Country) {
		problems = append(problems, "country must be a 2 or 3 letter code")
	}
	return problems
}

func validCountry(c string) bool {
	if len(c) < 2 || len(c) > 3 {
		return false
	}
	for _, r := range c {
		if (r < 'A' || r > 'Z') && (r < 'a' || r > 'z') {
			return false
		}
	}
	return true
}

func checkOrganization(d Draft) []string {
	var problems []string
	if d.OrganizationID == 0 {
		problems = append(problems, "an organization must be selected")
	}
	if d.RecruiterID == 0 {
		problems = append(problems, "a recruiter must be selected")
	}
	return problems
}

func checkDetails(d Draft) []string {
	start, err := time.Parse(DateLayout, strings.TrimSpace(d.StartDate))
	switch {
	case strings.TrimSpace(d.StartDate) == "":
		return []string{"start date is required"}
	case err != nil:
		return []string{"start date must be formatted YYYY-MM-DD"}
	}
	if !d.AutoClose {
		return nil
	}
	closeDate, err := time.Parse(DateLayout, strings.TrimSpace(d.CloseDate))
	if err != nil {
		return []string{"close date must be formatted YYYY-MM-DD when auto close is on"}
	}
	if closeDate.Before(start) {
		return []string{"close date cannot be before the start date"}
	}
	return nil
}
