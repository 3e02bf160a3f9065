package wizard

import (
	"context"
	"errors"
	"sync"
)

// memPersister keeps the last saved blob in memory.
type memPersister struct {
	mu      sync.Mutex
	data    []byte
	saves   int
	loadErr error
	saveErr error
	block   chan struct{}
}

func (m *memPersister) Load(context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.data, nil
}

func (m *memPersister) Save(_ context.Context, data []byte) error {
	if m.block != nil {
		<-m.block
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.data = append([]byte(nil), data...)
	return nil
}

func (m *memPersister) stored() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data
}

// fakeCreator records requests and answers with a canned job or error.
type fakeCreator struct {
	mu       sync.Mutex
	requests []JobRequest
	job      Job
	err      error
	release  chan struct{}
	started  chan struct{}
}

func (f *fakeCreator) CreateJob(ctx context.Context, req JobRequest) (Job, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return Job{}, ctx.Err()
		}
	}
	return f.job, f.err
}

func (f *fakeCreator) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

type remoteErr struct{ msg string }

func (e remoteErr) Error() string         { return "ats: 422: " + e.msg }
func (e remoteErr) RemoteMessage() string { return e.msg }

var errBoom = errors.New("boom")

// validDraftPatch fills every required field of every step except the
// organization, which goes through SetOrganization.
func validDraftPatch() DraftPatch {
	return DraftPatch{
		Title:       Ptr("Backend Engineer"),
		Description: Ptr("Build and run the job APIs"),
		City:        Ptr("Austin"),
		State:       Ptr("TX"),
		RecruiterID: Ptr(int64(9)),
		StartDate:   Ptr("2026-11-02"),
	}
}

var orgA = &Organization{
	ID:      1,
	Name:    "Acme Staffing",
	Address: Address{Street: "1 Congress Ave", City: "Austin", State: "TX", PostalCode: "78701", Country: "US"},
}

var orgB = &Organization{
	ID:      2,
	Name:    "Boise Works",
	Address: Address{City: "Boise", State: "ID", PostalCode: "83702", Country: "US"},
}
