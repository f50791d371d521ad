// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/desertthunder/yt2text/internal/models"
	"github.com/desertthunder/yt2text/internal/services"
	"github.com/desertthunder/yt2text/internal/shared"
)

// MockClient is a scriptable test double for [services.Client].
//
// Snapshots maps jobID to a queue of snapshots returned by successive
// FetchTask calls; the last element repeats once the queue drains. A nil
// entry for a known job yields ErrJobNotFound.
type MockClient struct {
	mu sync.Mutex

	HealthErr    error
	SubmitErr    error
	SubmitIDs    []string
	Snapshots    map[string][]*models.JobSnapshot
	FetchErr     error
	SubmitCalls  []services.SubmitRequest
	FetchCalls   int
	submitCursor int
}

func (m *MockClient) Health(ctx context.Context) error {
	return m.HealthErr
}

func (m *MockClient) Submit(ctx context.Context, req services.SubmitRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SubmitCalls = append(m.SubmitCalls, req)
	if m.SubmitErr != nil {
		return "", m.SubmitErr
	}
	if m.submitCursor < len(m.SubmitIDs) {
		id := m.SubmitIDs[m.submitCursor]
		m.submitCursor++
		return id, nil
	}
	return "job-default", nil
}

func (m *MockClient) SubmitBatch(ctx context.Context, reqs []services.SubmitRequest) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SubmitCalls = append(m.SubmitCalls, reqs...)
	if m.SubmitErr != nil {
		return nil, m.SubmitErr
	}

	ids := make([]string, len(reqs))
	for i := range reqs {
		if m.submitCursor < len(m.SubmitIDs) {
			ids[i] = m.SubmitIDs[m.submitCursor]
			m.submitCursor++
		} else {
			ids[i] = shared.GenerateID()
		}
	}
	return ids, nil
}

func (m *MockClient) FetchTask(ctx context.Context, jobID string) (*models.JobSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.FetchCalls++
	if m.FetchErr != nil {
		return nil, m.FetchErr
	}

	queue, ok := m.Snapshots[jobID]
	if !ok || len(queue) == 0 {
		return nil, shared.ErrJobNotFound
	}

	snap := queue[0]
	if len(queue) > 1 {
		m.Snapshots[jobID] = queue[1:]
	}
	if snap == nil {
		return nil, shared.ErrJobNotFound
	}

	out := *snap
	return &out, nil
}

func (m *MockClient) FetchAll(ctx context.Context) ([]models.JobSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.FetchCalls++
	if m.FetchErr != nil {
		return nil, m.FetchErr
	}

	var all []models.JobSnapshot
	for jobID, queue := range m.Snapshots {
		if len(queue) == 0 || queue[0] == nil {
			continue
		}
		all = append(all, *queue[0])
		if len(queue) > 1 {
			m.Snapshots[jobID] = queue[1:]
		}
	}
	return all, nil
}

// Fetches returns how many fetch calls the client has served. Safe to read
// while an engine polls in the background.
func (m *MockClient) Fetches() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.FetchCalls
}

// Advance pops the head snapshot for a job so the next fetch sees the
// following one. Useful when scripting FetchAll sequences.
func (m *MockClient) Advance(jobID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if queue := m.Snapshots[jobID]; len(queue) > 1 {
		m.Snapshots[jobID] = queue[1:]
	}
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

var _ io.Writer = (*FWriter)(nil)
var _ services.Client = (*MockClient)(nil)
