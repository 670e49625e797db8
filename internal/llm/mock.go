package llm

import (
	"context"
	"fmt"
	"sync"
)

// MockProvider is an in-process Provider for tests. Responses are served in
// order; when scripted responses run out the last one repeats. A response
// function can be installed instead for input-dependent behavior.
type MockProvider struct {
	mu        sync.Mutex
	responses []string
	respond   func(req Request) (string, error)
	calls     []Request
}

// NewMockProvider creates an empty mock
func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

// Queue appends scripted responses
func (m *MockProvider) Queue(responses ...string) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, responses...)
	return m
}

// Respond installs a response function, overriding scripted responses
func (m *MockProvider) Respond(fn func(req Request) (string, error)) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.respond = fn
	return m
}

// Calls returns every request seen so far
func (m *MockProvider) Calls() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount returns the number of Generate calls
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func (m *MockProvider) Name() string { return "mock" }

func (m *MockProvider) IsAvailable(ctx context.Context) bool { return true }

func (m *MockProvider) Generate(ctx context.Context, req Request) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, req)

	if m.respond != nil {
		return m.respond(req)
	}
	if len(m.responses) == 0 {
		return "", fmt.Errorf("mock provider has no scripted response")
	}

	resp := m.responses[0]
	if len(m.responses) > 1 {
		m.responses = m.responses[1:]
	}
	return resp, nil
}
