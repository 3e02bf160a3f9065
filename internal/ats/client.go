// Package ats is the HTTP client for the applicant-tracking system: the
// lookups that feed the job wizard's selectors and the create-job call.
package ats

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/recruitdash/recruitdash/internal/logger"
	"github.com/recruitdash/recruitdash/internal/wizard"
)

const maxBodyBytes = 4 << 20

// Client talks to the ATS REST API. Requests share one rate limiter, and
// identical GETs in flight at the same time are collapsed into one.
type Client struct {
	base    *url.URL
	hc      *http.Client
	limiter *rate.Limiter
	apiKey  string
	group   singleflight.Group
	log     *logger.Logger
}

// Option configures a Client.
type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.hc = hc }
}

func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = strings.TrimSpace(key) }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.hc.Timeout = d
		}
	}
}

// WithRateLimit caps requests per second. Zero disables limiting.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// New creates a client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid ATS url %q", baseURL)
	}
	c := &Client{
		base:    u,
		hc:      &http.Client{Timeout: 15 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(5), 10),
		log:     logger.Named("ats"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// SearchOrganizations finds organizations whose name matches query.
func (c *Client) SearchOrganizations(ctx context.Context, query string) ([]Organization, error) {
	q := url.Values{}
	q.Set("q", strings.TrimSpace(query))
	var out []Organization
	err := c.get(ctx, "/organizations", q, &out)
	return out, err
}

func (c *Client) GetOrganization(ctx context.Context, id int64) (Organization, error) {
	if id == 0 {
		return Organization{}, ErrNoOrganization
	}
	var out Organization
	err := c.get(ctx, "/organizations/"+strconv.FormatInt(id, 10), nil, &out)
	return out, err
}

// ListDepartments lists departments of an organization.
func (c *Client) ListDepartments(ctx context.Context, orgID int64) ([]Department, error) {
	if orgID == 0 {
		return nil, ErrNoOrganization
	}
	var out []Department
	err := c.get(ctx, fmt.Sprintf("/organizations/%d/departments", orgID), nil, &out)
	return out, err
}

// ListContacts lists contacts of an organization.
func (c *Client) ListContacts(ctx context.Context, orgID int64) ([]Contact, error) {
	if orgID == 0 {
		return nil, ErrNoOrganization
	}
	var out []Contact
	err := c.get(ctx, fmt.Sprintf("/organizations/%d/contacts", orgID), nil, &out)
	return out, err
}

func (c *Client) ListRecruiters(ctx context.Context) ([]Recruiter, error) {
	var out []Recruiter
	err := c.get(ctx, "/recruiters", nil, &out)
	return out, err
}

func (c *Client) ListWorkflows(ctx context.Context) ([]Workflow, error) {
	var out []Workflow
	err := c.get(ctx, "/workflows", nil, &out)
	return out, err
}

func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	var out []Category
	err := c.get(ctx, "/categories", nil, &out)
	return out, err
}

// Prefetch loads the unscoped reference lists concurrently.
func (c *Client) Prefetch(ctx context.Context) (Reference, error) {
	var ref Reference
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		ref.Recruiters, err = c.ListRecruiters(ctx)
		return err
	})
	g.Go(func() (err error) {
		ref.Workflows, err = c.ListWorkflows(ctx)
		return err
	})
	g.Go(func() (err error) {
		ref.Categories, err = c.ListCategories(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Reference{}, err
	}
	return ref, nil
}

// CreateJob posts a new job. It implements wizard.JobCreator.
func (c *Client) CreateJob(ctx context.Context, req wizard.JobRequest) (wizard.Job, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return wizard.Job{}, fmt.Errorf("encode job: %w", err)
	}
	data, err := c.do(ctx, http.MethodPost, "/jobs", nil, body)
	if err != nil {
		return wizard.Job{}, err
	}
	var job wizard.Job
	if err := json.Unmarshal(data, &job); err != nil {
		return wizard.Job{}, fmt.Errorf("decode created job: %w", err)
	}
	c.log.Info("created job %d", job.ID)
	return job, nil
}

// Ping checks that the API answers and the key is accepted.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "/recruiters", url.Values{"limit": {"1"}}, nil)
	return err
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	key := path + "?" + query.Encode()
	// The shared call outlives any single caller's context; each caller
	// still stops waiting when its own context ends.
	ch := c.group.DoChan(key, func() (any, error) {
		callCtx := context.WithoutCancel(ctx)
		if c.hc.Timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(callCtx, c.hc.Timeout)
			defer cancel()
		}
		return c.do(callCtx, http.MethodGet, path, query, nil)
	})
	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return ctx.Err()
	}
	if res.Err != nil {
		return res.Err
	}
	if res.Shared {
		c.log.Debug("shared in-flight lookup %s", key)
	}
	if err := json.Unmarshal(res.Val.([]byte), out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body []byte) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	u := *c.base
	u.Path = c.base.Path + path
	u.RawQuery = query.Encode()

	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), rdr)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	c.log.Debug("%s %s", method, u.Path)
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, parseAPIError(resp.StatusCode, data)
	}
	return data, nil
}
