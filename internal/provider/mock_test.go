package provider

import (
	"context"
	"errors"
	"sync"
)

// mockProvider replays scripted responses in order.
type mockProvider struct {
	mu        sync.Mutex
	name      string
	responses []*Response
	errs      []error
	requests  []Request
}

func (m *mockProvider) Name() string {
	if m.name == "" {
		return "mock"
	}
	return m.name
}

func (m *mockProvider) Generate(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := len(m.requests)
	m.requests = append(m.requests, req)
	if i < len(m.errs) && m.errs[i] != nil {
		return nil, m.errs[i]
	}
	if i < len(m.responses) {
		return m.responses[i], nil
	}
	return nil, errors.New("mock: no scripted response")
}

func (m *mockProvider) calls() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Request(nil), m.requests...)
}
