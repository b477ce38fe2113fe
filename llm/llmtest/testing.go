// Package llmtest provides mock implementations of the llm interfaces for
// testing consumers without a live provider.
package llmtest

import (
	"context"
	"errors"

	"github.com/Jmurp11/hockey-team-scheduler/llm"
)

// MockGenerateResult is a result for a mocked `Generate` call.
// It can either be a full response or an error.
type MockGenerateResult struct {
	Response *llm.ModelResponse
	Error    error
}

// NewMockGenerateResultResponse constructs a generate result with a response.
func NewMockGenerateResultResponse(response llm.ModelResponse) MockGenerateResult {
	return MockGenerateResult{Response: &response}
}

// NewMockGenerateResultError constructs a generate result that yields an error.
func NewMockGenerateResultError(err error) MockGenerateResult {
	return MockGenerateResult{Error: err}
}

// MockLanguageModel is a mock language model for testing purposes
// that tracks inputs and returns predefined outputs.
type MockLanguageModel struct {
	mockedGenerateResults []MockGenerateResult
	trackedGenerateInputs []llm.LanguageModelInput

	// RepeatLast keeps returning the final queued result instead of
	// draining the queue. Useful for loop-termination tests.
	RepeatLast bool

	provider llm.ProviderName
	modelID  string
}

// NewMockLanguageModel constructs a mock language model instance.
func NewMockLanguageModel() *MockLanguageModel {
	return &MockLanguageModel{
		provider: "mock",
		modelID:  "mock-model",
	}
}

func (m *MockLanguageModel) Provider() llm.ProviderName {
	return m.provider
}

func (m *MockLanguageModel) ModelID() string {
	return m.modelID
}

// Generate returns the next mocked generate result, tracking the provided input.
func (m *MockLanguageModel) Generate(_ context.Context, input *llm.LanguageModelInput) (*llm.ModelResponse, error) {
	if len(m.mockedGenerateResults) == 0 {
		return nil, errors.New("no mocked generate results available")
	}

	result := m.mockedGenerateResults[0]
	if !m.RepeatLast || len(m.mockedGenerateResults) > 1 {
		m.mockedGenerateResults = m.mockedGenerateResults[1:]
	}
	m.trackedGenerateInputs = append(m.trackedGenerateInputs, *input)

	if result.Error != nil {
		return nil, result.Error
	}
	return result.Response, nil
}

// EnqueueGenerateResult enqueues generate results to be returned sequentially.
func (m *MockLanguageModel) EnqueueGenerateResult(results ...MockGenerateResult) {
	m.mockedGenerateResults = append(m.mockedGenerateResults, results...)
}

// TrackedGenerateInputs returns the list of inputs tracked from Generate calls.
func (m *MockLanguageModel) TrackedGenerateInputs() []llm.LanguageModelInput {
	return m.trackedGenerateInputs
}

// Restore clears enqueued results and tracked inputs, returning the mock to
// its initial state.
func (m *MockLanguageModel) Restore() {
	m.mockedGenerateResults = nil
	m.trackedGenerateInputs = nil
}

// MockSearchResult is a result for a mocked `SearchCompletion` call.
type MockSearchResult struct {
	Response *llm.ModelResponse
	Error    error
}

// MockWebSearcher is a mock web-search-augmented completion service.
type MockWebSearcher struct {
	mockedSearchResults []MockSearchResult
	trackedSearchInputs []llm.WebSearchInput
}

// NewMockWebSearcher constructs a mock web searcher instance.
func NewMockWebSearcher() *MockWebSearcher {
	return &MockWebSearcher{}
}

// SearchCompletion returns the next mocked search result, tracking the input.
func (m *MockWebSearcher) SearchCompletion(_ context.Context, input *llm.WebSearchInput) (*llm.ModelResponse, error) {
	if len(m.mockedSearchResults) == 0 {
		return nil, errors.New("no mocked search results available")
	}

	result := m.mockedSearchResults[0]
	m.mockedSearchResults = m.mockedSearchResults[1:]
	m.trackedSearchInputs = append(m.trackedSearchInputs, *input)

	if result.Error != nil {
		return nil, result.Error
	}
	return result.Response, nil
}

// EnqueueSearchResult enqueues search results to be returned sequentially.
func (m *MockWebSearcher) EnqueueSearchResult(results ...MockSearchResult) {
	m.mockedSearchResults = append(m.mockedSearchResults, results...)
}

// TrackedSearchInputs returns the list of inputs tracked from SearchCompletion calls.
func (m *MockWebSearcher) TrackedSearchInputs() []llm.WebSearchInput {
	return m.trackedSearchInputs
}
