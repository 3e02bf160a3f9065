package ats

import (
	"strings"

	"github.com/recruitdash/recruitdash/internal/wizard"
)

// Organization as returned by the ATS.
type Organization = wizard.Organization

type Department struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func (d Department) Label() wizard.Label { return wizard.Label{ID: d.ID, Name: d.Name} }

type Contact struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// FullName joins first and last name, skipping blanks.
func (c Contact) FullName() string {
	return strings.TrimSpace(strings.Join([]string{c.FirstName, c.LastName}, " "))
}

func (c Contact) Label() wizard.Label { return wizard.Label{ID: c.ID, Name: c.FullName()} }

type Recruiter struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (r Recruiter) Label() wizard.Label { return wizard.Label{ID: r.ID, Name: r.Name} }

type Workflow struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

func (w Workflow) Label() wizard.Label { return wizard.Label{ID: w.ID, Name: w.Title} }

type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func (c Category) Label() wizard.Label { return wizard.Label{ID: c.ID, Name: c.Name} }

// Reference holds the unscoped lists every wizard session needs.
type Reference struct {
	Recruiters []Recruiter
	Workflows  []Workflow
	Categories []Category
}
