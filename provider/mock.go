package provider

import (
	"context"
	"sync"

	"github.com/elimu-labs/mwalimu"
)

// MockGenerator is a mock generation client for testing.
type MockGenerator struct {
	mu          sync.Mutex
	Reply       func(req CompletionRequest) (string, error) // Response function (default: echoes a bilingual stub)
	CallCount   int                                         // Number of times Complete was called
	LastRequest *CompletionRequest                          // Last request received
}

// NewMockGenerator creates a mock generator that returns a well-formed
// bilingual answer for any prompt.
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{
		Reply: func(req CompletionRequest) (string, error) {
			return "ENGLISH:\nMock answer.\n\nSWAHILI:\nJibu la mfano.", nil
		},
	}
}

// Complete returns the configured mock reply.
func (m *MockGenerator) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	m.mu.Lock()
	m.CallCount++
	m.LastRequest = &req
	reply := m.Reply
	m.mu.Unlock()
	return reply(req)
}

// Calls returns the number of Complete invocations.
func (m *MockGenerator) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.CallCount
}

// Reset resets the call count and last request.
func (m *MockGenerator) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CallCount = 0
	m.LastRequest = nil
}

// MockRetriever is a mock retrieval client for testing. Passages are served
// by filter type.
type MockRetriever struct {
	mu        sync.Mutex
	Passages  map[string][]Passage // Passages keyed by filter type
	Err       error                // When set, Search fails with this error
	CallCount int
}

// NewMockRetriever creates an empty mock retriever.
func NewMockRetriever() *MockRetriever {
	return &MockRetriever{Passages: make(map[string][]Passage)}
}

// Search returns the configured passages for the filter's type, capped at
// topK.
func (m *MockRetriever) Search(ctx context.Context, query string, filter Filter, topK int) ([]Passage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CallCount++
	if m.Err != nil {
		return nil, m.Err
	}
	passages := m.Passages[filter.Type]
	if topK > 0 && len(passages) > topK {
		passages = passages[:topK]
	}
	return passages, nil
}

// Calls returns the number of Search invocations.
func (m *MockRetriever) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.CallCount
}

// Verify mocks implement the client interfaces
var (
	_ mwalimu.Generator = (*MockGenerator)(nil)
	_ mwalimu.Retriever = (*MockRetriever)(nil)
)
