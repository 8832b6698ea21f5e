package engine

import (
	"context"
	"sync"
)

// MockClient is a deterministic test implementation of llm.Client. It replays
// a scripted reply (or error) and records every prompt it receives so tests
// can assert whether the network boundary was reached.
type MockClient struct {
	err     error
	reply   []byte
	prompts []string
	mu      sync.Mutex
}

// NewMockClient creates a mock client that returns the given raw reply.
func NewMockClient(reply []byte) *MockClient {
	return &MockClient{reply: reply}
}

// NewFailingMockClient creates a mock client that returns err on every call.
func NewFailingMockClient(err error) *MockClient {
	return &MockClient{err: err}
}

// Classify records the prompt and returns the scripted reply or error.
func (m *MockClient) Classify(_ context.Context, prompt string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.prompts = append(m.prompts, prompt)
	if m.err != nil {
		return nil, m.err
	}
	return m.reply, nil
}

// CallCount returns how many classification calls were made.
func (m *MockClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

// Prompts returns a copy of the recorded prompts.
func (m *MockClient) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	prompts := make([]string, len(m.prompts))
	copy(prompts, m.prompts)
	return prompts
}
