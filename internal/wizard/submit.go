package wizard

import (
	"context"
	"errors"
	"slices"
)

// JobRequest is the creation payload sent to the ATS. Field names match the
// draft one to one; wizard-only scratch fields are not included.
type JobRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	JobType     JobType `json:"job_type"`
	Openings    int     `json:"openings"`

	RemoteAllowed bool   `json:"remote_allowed"`
	City          string `json:"city"`
	State         string `json:"state"`
	PostalCode    string `json:"postal_code,omitempty"`
	Country       string `json:"country"`

	OrganizationID int64 `json:"organization_id"`
	DepartmentID   int64 `json:"department_id,omitempty"`
	ContactID      int64 `json:"contact_id,omitempty"`
	RecruiterID    int64 `json:"recruiter_id"`

	StartDate string `json:"start_date"`
	Salary    string `json:"salary,omitempty"`
	Rate      string `json:"rate,omitempty"`
	Duration  string `json:"duration,omitempty"`
	Notes     string `json:"notes,omitempty"`
	CloseDate string `json:"close_date,omitempty"`

	CategoryID      int64    `json:"category_id,omitempty"`
	WorkflowID      int64    `json:"workflow_id,omitempty"`
	Tags            []string `json:"tags,omitempty"`
	ApplicationForm string   `json:"application_form"`
}

// Job is the record the ATS returns after creation.
type Job struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url,omitempty"`
}

// JobCreator is the remote create-job operation.
type JobCreator interface {
	CreateJob(ctx context.Context, req JobRequest) (Job, error)
}

// BuildRequest maps a draft to the creation payload. No defaults are added
// beyond what the draft already carries. CloseDate is only sent when
// AutoClose is on.
func BuildRequest(d Draft) JobRequest {
	req := JobRequest{
		Title:           d.Title,
		Description:     d.Description,
		JobType:         d.JobType,
		Openings:        d.Openings,
		RemoteAllowed:   d.RemoteAllowed,
		City:            d.City,
		State:           d.State,
		PostalCode:      d.PostalCode,
		Country:         d.Country,
		OrganizationID:  d.OrganizationID,
		DepartmentID:    d.DepartmentID,
		ContactID:       d.ContactID,
		RecruiterID:     d.RecruiterID,
		StartDate:       d.StartDate,
		Salary:          d.Salary,
		Rate:            d.Rate,
		Duration:        d.Duration,
		Notes:           d.Notes,
		CategoryID:      d.CategoryID,
		WorkflowID:      d.WorkflowID,
		Tags:            slices.Clone(d.Tags),
		ApplicationForm: d.ApplicationForm,
	}
	if d.AutoClose {
		req.CloseDate = d.CloseDate
	}
	return req
}

// RemoteMessager is implemented by errors that carry a message meant for
// the user exactly as the remote system phrased it.
type RemoteMessager interface {
	RemoteMessage() string
}

// SubmitError is a failed submission. Error returns the remote message
// unmodified.
type SubmitError struct {
	Message string
	Err     error
}

func (e *SubmitError) Error() string { return e.Message }

func (e *SubmitError) Unwrap() error { return e.Err }

// Submitter turns drafts into create-job calls.
type Submitter struct {
	creator JobCreator
}

func NewSubmitter(creator JobCreator) *Submitter {
	return &Submitter{creator: creator}
}

// Submit creates the job described by d.
func (s *Submitter) Submit(ctx context.Context, d Draft) (Job, error) {
	job, err := s.creator.CreateJob(ctx, BuildRequest(d))
	if err != nil {
		return Job{}, &SubmitError{Message: remoteMessage(err), Err: err}
	}
	return job, nil
}

func remoteMessage(err error) string {
	var rm RemoteMessager
	if errors.As(err, &rm) {
		if msg := rm.RemoteMessage(); msg != "" {
			return msg
		}
	}
	return err.Error()
}
