package testutil

import (
	"context"
	"sync"

	"cloudguide/model"
)

// MockBackend implements model.Backend for testing
type MockBackend struct {
	// Configurable responses
	AskFunc  func(ctx context.Context, query string) (model.BackendReply, error)
	PingFunc func(ctx context.Context) error

	URL string

	mu      sync.Mutex
	queries []string
}

// NewMockBackend creates a mock backend that answers every query with body
func NewMockBackend(body, source string) *MockBackend {
	mock := &MockBackend{URL: "http://mock.invalid"}
	mock.AskFunc = func(ctx context.Context, query string) (model.BackendReply, error) {
		return model.BackendReply{Body: body, SourceHeader: source}, nil
	}
	mock.PingFunc = func(ctx context.Context) error {
		return nil
	}
	return mock
}

func (m *MockBackend) Ask(ctx context.Context, query string) (model.BackendReply, error) {
	m.mu.Lock()
	m.queries = append(m.queries, query)
	m.mu.Unlock()
	return m.AskFunc(ctx, query)
}

func (m *MockBackend) Ping(ctx context.Context) error {
	return m.PingFunc(ctx)
}

func (m *MockBackend) BaseURL() string {
	return m.URL
}

// Queries returns every query received so far
func (m *MockBackend) Queries() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.queries...)
}
