// Package assistant implements the conversational scheduling core: a
// stateless per-turn orchestrator that drives a tool-calling language model
// loop and gates every side effect behind explicit user confirmation.
package assistant

// ChatMessage is one entry of the caller-supplied conversation history.
type ChatMessage struct {
	// Role is user, assistant, or system.
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ActionType identifies the kind of side effect a pending action proposes.
type ActionType string

const (
	ActionCreateGame       ActionType = "create_game"
	ActionAddTournament    ActionType = "add_tournament_to_schedule"
	ActionSendEmail        ActionType = "send_email"
	ActionGameMatchResults ActionType = "game_match_results"
)

// PendingAction is a proposed side effect awaiting confirmation. It is never
// persisted server-side: the caller round-trips it and re-submits it with
// ConfirmAction set to approve it.
type PendingAction struct {
	Type        ActionType     `json:"type"`
	Description string         `json:"description"`
	Data        map[string]any `json:"data"`
}

// TurnRequest is the input of one conversational turn. The orchestrator
// holds no session state, so the caller supplies the full history each time.
type TurnRequest struct {
	Message             string         `json:"message"`
	ConversationHistory []ChatMessage  `json:"conversationHistory"`
	UserID              string         `json:"userId"`
	ConfirmAction       bool           `json:"confirmAction,omitempty"`
	PendingAction       *PendingAction `json:"pendingAction,omitempty"`
}

// TurnResponse is the outcome of one turn. A turn never fails outright:
// failures surface in Error alongside a user-facing Message.
type TurnResponse struct {
	Message        string         `json:"message"`
	Data           map[string]any `json:"data,omitempty"`
	PendingAction  *PendingAction `json:"pendingAction,omitempty"`
	ActionExecuted bool           `json:"actionExecuted,omitempty"`
	Error          string         `json:"error,omitempty"`
}

// ToolExecutionResult is the uniform envelope every tool returns. Failed
// tools set Success false and Error; they do not abort the turn.
type ToolExecutionResult struct {
	Success              bool           `json:"success"`
	Data                 map[string]any `json:"data,omitempty"`
	Error                string         `json:"error,omitempty"`
	RequiresConfirmation bool           `json:"requiresConfirmation,omitempty"`
	PendingAction        *PendingAction `json:"pendingAction,omitempty"`
}
