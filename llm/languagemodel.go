package llm

import "context"

type ProviderName string

type LanguageModel interface {
	Provider() ProviderName
	ModelID() string
	Generate(ctx context.Context, input *LanguageModelInput) (*ModelResponse, error)
}

// WebSearchInput describes a single web-search-augmented completion request.
// The provider runs the search itself and answers with free-form text that
// the caller is expected to parse.
type WebSearchInput struct {
	// Instructions given to the model alongside search access.
	SystemPrompt *string `json:"system_prompt,omitempty"`
	// The query or task to complete with search results.
	Prompt string `json:"prompt"`
	// The maximum number of tokens that can be generated.
	MaxTokens *int64 `json:"max_tokens,omitempty"`
}

// WebSearcher is a completion service with access to a web search tool.
type WebSearcher interface {
	SearchCompletion(ctx context.Context, input *WebSearchInput) (*ModelResponse, error)
}
