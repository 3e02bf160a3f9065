// Package review builds the summary shown on the wizard's review step. The
// summary is markdown produced from a placeholder template, so teams can
// swap in their own layout, and is rendered for the terminal with glamour.
package review

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"charm.land/glamour/v2"

	"github.com/recruitdash/recruitdash/internal/wizard"
)

// DefaultTemplate is used when no custom template is configured.
const DefaultTemplate = `# {{title}}

{{description}}

| | |
|---|---|
| Job type | {{job_type}} |
| Openings | {{openings}} |
| Location | {{location}} |
| Remote | {{remote}} |
| Organization | {{organization}} |
| Department | {{department}} |
| Contact | {{contact}} |
| Recruiter | {{recruiter}} |
| Start date | {{start_date}} |
| Closes | {{close_date}} |
| Compensation | {{compensation}} |
| Category | {{category}} |
| Workflow | {{workflow}} |
| Tags | {{tags}} |
| Application form | {{application_form}} |
{{notes}}`

const none = "n/a"

// Variables are the values substituted into the template.
type Variables map[string]string

// VariablesFor derives template values from a store snapshot. Labels come
// from the review metadata only when they still match the draft.
func VariablesFor(snap wizard.Snapshot) Variables {
	d := snap.Draft
	label := func(field wizard.LabelField, id int64) string {
		if name, ok := snap.Review.LabelFor(field, d); ok {
			return name
		}
		if id != 0 {
			return "#" + strconv.FormatInt(id, 10)
		}
		return none
	}

	org := none
	if snap.Organization != nil {
		org = snap.Organization.Name
	}

	closeDate := none
	if d.AutoClose && d.CloseDate != "" {
		closeDate = d.CloseDate
	}

	notes := ""
	if strings.TrimSpace(d.Notes) != "" {
		notes = "\n## Notes\n\n" + d.Notes + "\n"
	}

	remote := "No"
	if d.RemoteAllowed {
		remote = "Yes"
	}

	return Variables{
		"title":            orNone(d.Title),
		"description":      d.Description,
		"job_type":         humanize(string(d.JobType)),
		"openings":         strconv.Itoa(d.Openings),
		"location":         location(d),
		"remote":           remote,
		"organization":     org,
		"department":       label(wizard.LabelDepartment, d.DepartmentID),
		"contact":          label(wizard.LabelContact, d.ContactID),
		"recruiter":        label(wizard.LabelRecruiter, d.RecruiterID),
		"category":         label(wizard.LabelCategory, d.CategoryID),
		"workflow":         label(wizard.LabelWorkflow, d.WorkflowID),
		"start_date":       orNone(d.StartDate),
		"close_date":       closeDate,
		"compensation":     compensation(d),
		"tags":             orNone(strings.Join(d.Tags, ", ")),
		"application_form": orNone(d.ApplicationForm),
		"notes":            notes,
	}
}

// Render replaces every {{name}} placeholder with its value. Unknown
// placeholders are left as they are.
func Render(template string, vars Variables) string {
	pairs := make([]string, 0, len(vars)*2)
	for name, val := range vars {
		pairs = append(pairs, "{{"+name+"}}", escapeCell(name, val))
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

// Markdown renders the snapshot with the default template.
func Markdown(snap wizard.Snapshot) string {
	return Render(DefaultTemplate, VariablesFor(snap))
}

// LoadTemplate reads a custom template, or returns the default for an
// empty path.
func LoadTemplate(path string) (string, error) {
	if path == "" {
		return DefaultTemplate, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read review template %s: %w", path, err)
	}
	return string(data), nil
}

// Terminal renders markdown for a terminal of the given width, falling
// back to the raw text if glamour fails.
func Terminal(markdown string, width int) string {
	if width <= 0 || width > 120 {
		width = 120
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return markdown
	}
	out, err := r.Render(markdown)
	if err != nil {
		return markdown
	}
	return strings.TrimSuffix(out, "\n")
}

func location(d wizard.Draft) string {
	var parts []string
	for _, p := range []string{d.City, d.State, d.PostalCode, d.Country} {
		if strings.TrimSpace(p) != "" {
			parts = append(parts, p)
		}
	}
	return orNone(strings.Join(parts, ", "))
}

func compensation(d wizard.Draft) string {
	var parts []string
	if d.Salary != "" {
		parts = append(parts, "salary "+d.Salary)
	}
	if d.Rate != "" {
		parts = append(parts, "rate "+d.Rate)
	}
	if d.Duration != "" {
		parts = append(parts, "for "+d.Duration)
	}
	return orNone(strings.Join(parts, ", "))
}

func humanize(s string) string {
	s = strings.ReplaceAll(s, "_", " ")
	if s == "" {
		return none
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return none
	}
	return s
}

// escapeCell keeps table cells on one row. Multi-line values are only
// allowed in the description and notes sections.
func escapeCell(name, val string) string {
	if name == "description" || name == "notes" {
		return val
	}
	val = strings.ReplaceAll(val, "|", `\|`)
	return strings.ReplaceAll(val, "\n", " ")
}
