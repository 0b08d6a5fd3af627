// Copyright 2025 Recallkit Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package mock provides a test double for websearch.Provider.
package mock

import (
	"context"
	"fmt"
	"sync"

	"github.com/recallkit/recall/websearch"
)

// MockProvider is a test double for websearch.Provider.
// It allows custom behavior injection via the SearchFunc field.
// Note: Returns concrete type so tests can assert on call counts.
type MockProvider struct {
	// SearchFunc is called by Search if set.
	// If nil, uses default deterministic behavior.
	SearchFunc func(ctx context.Context, query string, limit int) *websearch.Response

	mu        sync.Mutex
	callCount int
	lastQuery string
}

var _ websearch.Provider = (*MockProvider)(nil)

// NewMockProvider creates a mock provider with default deterministic behavior.
func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

// NewFailingProvider creates a mock provider whose every call fails,
// simulating an unreachable search service.
func NewFailingProvider() *MockProvider {
	p := NewMockProvider()
	p.SearchFunc = func(ctx context.Context, query string, limit int) *websearch.Response {
		return websearch.Failure(p.Name())
	}
	return p
}

// Name identifies the mock in logs and provenance metadata.
func (m *MockProvider) Name() string {
	return "mock"
}

// Search returns deterministic results derived from the query, or
// whatever SearchFunc produces when set.
func (m *MockProvider) Search(ctx context.Context, query string, limit int) *websearch.Response {
	m.mu.Lock()
	m.callCount++
	m.lastQuery = query
	fn := m.SearchFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, query, limit)
	}

	if limit <= 0 {
		limit = 5
	}
	if limit > 3 {
		limit = 3
	}
	results := make([]websearch.Result, 0, limit)
	for i := 0; i < limit; i++ {
		results = append(results, websearch.Result{
			Title:      fmt.Sprintf("Result %d for %s", i+1, query),
			URL:        fmt.Sprintf("https://example.com/%d", i+1),
			Snippet:    fmt.Sprintf("Snippet %d about %s.", i+1, query),
			DisplayURL: "example.com",
			Relevance:  1.0 - float64(i)*0.1,
			Source:     m.Name(),
		})
	}
	return &websearch.Response{
		Results:  results,
		Provider: m.Name(),
		Success:  true,
	}
}

// CallCount returns the number of times Search was called.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// LastQuery returns the query from the most recent Search call.
func (m *MockProvider) LastQuery() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastQuery
}

// Reset clears the call count and any injected behavior.
func (m *MockProvider) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.lastQuery = ""
	m.SearchFunc = nil
}
