package mcpserver

import (
	"fmt"
	"math"

	"github.com/recruitdash/recruitdash/internal/wizard"
)

// parsePatch maps tool arguments onto a draft patch. Only keys present in
// args end up in the patch.
func parsePatch(args map[string]any) (wizard.DraftPatch, error) {
	var p wizard.DraftPatch
	var err error

	strs := map[string]**string{
		"title":            &p.Title,
		"description":      &p.Description,
		"city":             &p.City,
		"state":            &p.State,
		"postal_code":      &p.PostalCode,
		"country":          &p.Country,
		"start_date":       &p.StartDate,
		"salary":           &p.Salary,
		"rate":             &p.Rate,
		"duration":         &p.Duration,
		"notes":            &p.Notes,
		"close_date":       &p.CloseDate,
		"application_form": &p.ApplicationForm,
	}
	for key, dst := range strs {
		if *dst, err = stringArg(args, key); err != nil {
			return p, err
		}
	}

	ids := map[string]**int64{
		"department_id": &p.DepartmentID,
		"contact_id":    &p.ContactID,
		"recruiter_id":  &p.RecruiterID,
		"category_id":   &p.CategoryID,
		"workflow_id":   &p.WorkflowID,
	}
	for key, dst := range ids {
		v, ok, err := intArg(args, key)
		if err != nil {
			return p, err
		}
		if ok {
			*dst = wizard.Ptr(v)
		}
	}

	bools := map[string]**bool{
		"remote_allowed": &p.RemoteAllowed,
		"auto_close":     &p.AutoClose,
	}
	for key, dst := range bools {
		raw, ok := args[key]
		if !ok {
			continue
		}
		b, isBool := raw.(bool)
		if !isBool {
			return p, fmt.Errorf("'%s' must be a boolean", key)
		}
		*dst = wizard.Ptr(b)
	}

	if raw, ok := args["job_type"]; ok {
		s, isStr := raw.(string)
		if !isStr || !wizard.JobType(s).Valid() {
			return p, fmt.Errorf("unknown job_type %v", raw)
		}
		p.JobType = wizard.Ptr(wizard.JobType(s))
	}

	if n, ok, err := intArg(args, "openings"); err != nil {
		return p, err
	} else if ok {
		if n > math.MaxInt32 {
			return p, fmt.Errorf("'openings' is too large")
		}
		p.Openings = wizard.Ptr(int(n))
	}

	if raw, ok := args["tags"]; ok {
		list, isList := raw.([]any)
		if !isList {
			return p, fmt.Errorf("'tags' must be an array of strings")
		}
		tags := make([]string, 0, len(list))
		for i, item := range list {
			s, isStr := item.(string)
			if !isStr {
				return p, fmt.Errorf("tag %d is not a string", i)
			}
			tags = append(tags, s)
		}
		p.Tags = &tags
	}

	return p, nil
}

func stringArg(args map[string]any, key string) (*string, error) {
	raw, ok := args[key]
	if !ok {
		return nil, nil
	}
	s, isStr := raw.(string)
	if !isStr {
		return nil, fmt.Errorf("'%s' must be a string", key)
	}
	return &s, nil
}

// intArg reads a non-negative whole number that fits in an int64. JSON
// numbers arrive as float64.
func intArg(args map[string]any, key string) (int64, bool, error) {
	raw, ok := args[key]
	if !ok {
		return 0, false, nil
	}
	var n int64
	switch v := raw.(type) {
	case float64:
		if v != math.Trunc(v) {
			return 0, false, fmt.Errorf("'%s' must be a non-negative whole number", key)
		}
		// float64(math.MaxInt64) rounds up to 2^63, which int64 cannot hold.
		if v >= math.MaxInt64 {
			return 0, false, fmt.Errorf("'%s' is too large", key)
		}
		n = int64(v)
	case int:
		n = int64(v)
	case int64:
		n = v
	default:
		return 0, false, fmt.Errorf("'%s' must be a number", key)
	}
	if n < 0 {
		return 0, false, fmt.Errorf("'%s' must be a non-negative whole number", key)
	}
	return n, true, nil
}
