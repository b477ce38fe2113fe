package llm

import "fmt"

// Kind is a classification of error type.
type Kind string

const (
	InvalidInput Kind = "invalid_input"
	Transport    Kind = "transport"
	StatusCode   Kind = "status_code"
	Refusal      Kind = "refusal"
	Invariant    Kind = "invariant"
)

// LanguageModelError represents errors from the language model layer.
type LanguageModelError struct {
	Kind    Kind
	Message string
	Err     error
	// The provider name
	Provider string
	// The status for the StatusCode error kind
	Status int
}

func (e *LanguageModelError) Error() string {
	switch e.Kind {
	case InvalidInput:
		return fmt.Sprintf("invalid input: %s", e.Message)
	case Transport:
		return fmt.Sprintf("transport error: %s", e.Err)
	case StatusCode:
		return fmt.Sprintf("status error: %s (status %d)", e.Message, e.Status)
	case Refusal:
		return fmt.Sprintf("refusal: %s", e.Message)
	case Invariant:
		return fmt.Sprintf("invariant from %s: %s", e.Provider, e.Message)
	default:
		return e.Message
	}
}

// Unwrap allows errors.Is / errors.As to work with wrapped errors.
func (e *LanguageModelError) Unwrap() error {
	return e.Err
}

func NewInvalidInputError(msg string) *LanguageModelError {
	return &LanguageModelError{Kind: InvalidInput, Message: msg}
}

func NewTransportError(err error) *LanguageModelError {
	return &LanguageModelError{Kind: Transport, Message: "transport error", Err: err}
}

func NewStatusCodeError(provider string, status int, body string) *LanguageModelError {
	return &LanguageModelError{Kind: StatusCode, Message: body, Provider: provider, Status: status}
}

func NewRefusalError(msg string) *LanguageModelError {
	return &LanguageModelError{Kind: Refusal, Message: msg}
}

func NewInvariantError(provider, msg string) *LanguageModelError {
	return &LanguageModelError{Kind: Invariant, Message: msg, Provider: provider}
}
