package assistant

import "fmt"

type AssistantError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AssistantError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AssistantError) Unwrap() error {
	return e.Err
}

type ErrorKind string

const (
	LanguageModelErrorKind   ErrorKind = "language_model_error"
	UserContextErrorKind     ErrorKind = "user_context_error"
	ActionExecutionErrorKind ErrorKind = "action_execution_error"
	InvariantErrorKind       ErrorKind = "invariant_error"
)

func NewLanguageModelError(err error) *AssistantError {
	return &AssistantError{
		Kind:    LanguageModelErrorKind,
		Message: fmt.Sprintf("language model error: %v", err),
		Err:     err,
	}
}

func NewUserContextError(err error) *AssistantError {
	return &AssistantError{
		Kind:    UserContextErrorKind,
		Message: fmt.Sprintf("user context error: %v", err),
		Err:     err,
	}
}

func NewActionExecutionError(err error) *AssistantError {
	return &AssistantError{
		Kind:    ActionExecutionErrorKind,
		Message: fmt.Sprintf("action execution error: %v", err),
		Err:     err,
	}
}

func NewInvariantError(msg string) *AssistantError {
	return &AssistantError{
		Kind:    InvariantErrorKind,
		Message: fmt.Sprintf("invariant: %s", msg),
	}
}
