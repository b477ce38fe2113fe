package assistant

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/Jmurp11/hockey-team-scheduler/llm"
	"github.com/Jmurp11/hockey-team-scheduler/llm/llmtest"
	"github.com/Jmurp11/hockey-team-scheduler/store"
	"github.com/Jmurp11/hockey-team-scheduler/store/memstore"
)

type fixture struct {
	model  *llmtest.MockLanguageModel
	mem    *memstore.Store
	email  *memstore.EmailSender
	orch   *Orchestrator
	userID string
}

func newFixture(t *testing.T, extraTools ...Tool) *fixture {
	t.Helper()
	model := llmtest.NewMockLanguageModel()
	mem := memstore.New()
	email := &memstore.EmailSender{}
	users := &memstore.UserContextResolver{Context: &store.UserContext{
		Name:     "Jamie Murphy",
		TeamID:   "team-self",
		TeamName: "NJ Falcons",
		Rating:   70,
		City:     "Trenton",
		State:    "NJ",
	}}

	tools := append([]Tool{
		&ScheduleTool{Games: mem},
		&CreateGameTool{},
	}, extraTools...)

	orch := New(Options{
		Model: model,
		Users: users,
		Games: mem,
		Email: email,
		Audit: mem,
		Tools: tools,
	})
	return &fixture{model: model, mem: mem, email: email, orch: orch, userID: "u1"}
}

func textResponse(text string) llmtest.MockGenerateResult {
	return llmtest.NewMockGenerateResultResponse(llm.ModelResponse{
		Content: []llm.Part{llm.NewTextPart(text)},
	})
}

func toolCallResponse(parts ...llm.Part) llmtest.MockGenerateResult {
	return llmtest.NewMockGenerateResultResponse(llm.ModelResponse{Content: parts})
}

// countingTool records how many times it ran. Used to observe batch
// completion after a confirmation stop.
type countingTool struct {
	calls atomic.Int64
}

func (c *countingTool) Name() string               { return "counting_tool" }
func (c *countingTool) Description() string        { return "test counter" }
func (c *countingTool) Parameters() llm.JSONSchema { return llm.JSONSchema{"type": "object"} }
func (c *countingTool) Execute(ctx context.Context, args map[string]any, uc *store.UserContext) ToolExecutionResult {
	c.calls.Add(1)
	return successResult(map[string]any{"count": c.calls.Load()})
}

func TestHandleTurnPlainAnswer(t *testing.T) {
	f := newFixture(t)
	f.model.EnqueueGenerateResult(textResponse("You have no games this weekend."))

	resp := f.orch.HandleTurn(context.Background(), &TurnRequest{
		Message: "Anything this weekend?",
		UserID:  f.userID,
	})

	if resp.Message != "You have no games this weekend." {
		t.Errorf("message = %q", resp.Message)
	}
	if resp.Error != "" || resp.PendingAction != nil || resp.ActionExecuted {
		t.Errorf("unexpected response fields: %+v", resp)
	}

	inputs := f.model.TrackedGenerateInputs()
	if len(inputs) != 1 {
		t.Fatalf("model calls = %d, want 1", len(inputs))
	}
	if inputs[0].SystemPrompt == nil || !strings.Contains(*inputs[0].SystemPrompt, "NJ Falcons") {
		t.Errorf("system prompt missing user context")
	}
	if len(inputs[0].Tools) == 0 {
		t.Errorf("tool catalogue not offered to the model")
	}
	if inputs[0].ToolChoice == nil || inputs[0].ToolChoice.Auto == nil {
		t.Errorf("tool choice = %+v, want auto", inputs[0].ToolChoice)
	}
}

func TestHandleTurnToolRoundTrip(t *testing.T) {
	f := newFixture(t)
	if err := f.mem.CreateGame(context.Background(), &store.Game{
		UserID: f.userID, OpponentName: "Rivals", Date: "2026-09-05",
	}); err != nil {
		t.Fatal(err)
	}

	f.model.EnqueueGenerateResult(
		toolCallResponse(llm.NewToolCallPart("call-1", "get_schedule", map[string]any{})),
		textResponse("You play the Rivals on September 5."),
	)

	resp := f.orch.HandleTurn(context.Background(), &TurnRequest{
		Message: "What's on my schedule?",
		UserID:  f.userID,
	})

	if resp.Message != "You play the Rivals on September 5." {
		t.Errorf("message = %q", resp.Message)
	}
	if resp.Data == nil {
		t.Errorf("tool data not carried into the response")
	}

	inputs := f.model.TrackedGenerateInputs()
	if len(inputs) != 2 {
		t.Fatalf("model calls = %d, want 2", len(inputs))
	}
	second := inputs[1].Messages
	last := second[len(second)-1]
	if last.ToolMessage == nil {
		t.Fatalf("last message of second call is not a tool message")
	}
	result := last.ToolMessage.Content[0].ToolResultPart
	if result == nil || result.ToolCallID != "call-1" {
		t.Errorf("tool result part = %+v", result)
	}
	if text := result.Content[0].TextPart.Text; !strings.Contains(text, "Rivals") {
		t.Errorf("tool payload %q missing game data", text)
	}
}

func TestHandleTurnConfirmationStopsLoop(t *testing.T) {
	counter := &countingTool{}
	f := newFixture(t, counter)

	f.model.EnqueueGenerateResult(toolCallResponse(
		llm.NewToolCallPart("call-1", "create_game", map[string]any{
			"opponent_name": "Rivals",
			"date":          "2026-09-12",
		}),
		llm.NewToolCallPart("call-2", "counting_tool", map[string]any{}),
	))

	resp := f.orch.HandleTurn(context.Background(), &TurnRequest{
		Message: "Book the Rivals for the 12th",
		UserID:  f.userID,
	})

	if resp.PendingAction == nil || resp.PendingAction.Type != ActionCreateGame {
		t.Fatalf("pendingAction = %+v, want create_game", resp.PendingAction)
	}
	if !strings.Contains(resp.Message, "Rivals") || !strings.Contains(resp.Message, "2026-09-12") {
		t.Errorf("confirmation message = %q", resp.Message)
	}
	if resp.ActionExecuted {
		t.Errorf("actionExecuted = true before confirmation")
	}
	if len(f.mem.Games()) != 0 {
		t.Errorf("game persisted before confirmation")
	}

	// The rest of the batch still ran; only the model loop stopped.
	if counter.calls.Load() != 1 {
		t.Errorf("trailing batch tool ran %d times, want 1", counter.calls.Load())
	}
	if calls := len(f.model.TrackedGenerateInputs()); calls != 1 {
		t.Errorf("model calls = %d, want 1 (no round-trip after confirmation)", calls)
	}
}

func TestHandleTurnLoopTerminatesAfterFiveIterations(t *testing.T) {
	counter := &countingTool{}
	f := newFixture(t, counter)

	f.model.RepeatLast = true
	f.model.EnqueueGenerateResult(toolCallResponse(
		llm.NewToolCallPart("call-n", "counting_tool", map[string]any{}),
	))

	resp := f.orch.HandleTurn(context.Background(), &TurnRequest{
		Message: "Keep digging",
		UserID:  f.userID,
	})

	if calls := len(f.model.TrackedGenerateInputs()); calls != maxToolIterations {
		t.Errorf("model calls = %d, want exactly %d", calls, maxToolIterations)
	}
	if counter.calls.Load() != maxToolIterations {
		t.Errorf("tool executions = %d, want %d", counter.calls.Load(), maxToolIterations)
	}
	if !strings.Contains(resp.Message, "couldn't finish") {
		t.Errorf("message = %q, want truncation notice", resp.Message)
	}
	if !strings.Contains(resp.Message, "counting_tool") {
		t.Errorf("truncation notice %q does not summarize gathered tool data", resp.Message)
	}
	if resp.Error != "" {
		t.Errorf("truncation is not an error, got %q", resp.Error)
	}
}

func TestHandleTurnModelFailureBecomesApology(t *testing.T) {
	f := newFixture(t)
	f.model.EnqueueGenerateResult(llmtest.NewMockGenerateResultError(errors.New("connection reset")))

	resp := f.orch.HandleTurn(context.Background(), &TurnRequest{
		Message: "hello",
		UserID:  f.userID,
	})

	if resp.Message != apologyMessage {
		t.Errorf("message = %q, want apology", resp.Message)
	}
	if !strings.Contains(resp.Error, "connection reset") {
		t.Errorf("error = %q, want underlying cause", resp.Error)
	}
}

func TestHandleTurnToolFailureSurfacedToModel(t *testing.T) {
	f := newFixture(t)
	f.model.EnqueueGenerateResult(
		toolCallResponse(llm.NewToolCallPart("call-1", "no_such_tool", map[string]any{})),
		textResponse("I can't do that, sorry."),
	)

	resp := f.orch.HandleTurn(context.Background(), &TurnRequest{
		Message: "Do the thing",
		UserID:  f.userID,
	})

	if resp.Error != "" {
		t.Errorf("tool failure should not fail the turn, got error %q", resp.Error)
	}
	inputs := f.model.TrackedGenerateInputs()
	if len(inputs) != 2 {
		t.Fatalf("model calls = %d, want 2 (failure fed back as context)", len(inputs))
	}
	second := inputs[1].Messages
	result := second[len(second)-1].ToolMessage.Content[0].ToolResultPart
	if result.IsError == nil || !*result.IsError {
		t.Errorf("tool result not marked as error")
	}
	if !strings.Contains(result.Content[0].TextPart.Text, "unknown tool") {
		t.Errorf("tool payload %q missing error", result.Content[0].TextPart.Text)
	}
}

func TestConfirmedCreateGameExecutes(t *testing.T) {
	f := newFixture(t)

	resp := f.orch.HandleTurn(context.Background(), &TurnRequest{
		UserID:        f.userID,
		ConfirmAction: true,
		PendingAction: &PendingAction{
			Type:        ActionCreateGame,
			Description: "Add a game against Rivals on 2026-09-12",
			Data: map[string]any{
				"opponent_name": "Rivals",
				"date":          "2026-09-12",
				"time":          "14:30",
			},
		},
	})

	if !resp.ActionExecuted {
		t.Fatalf("actionExecuted = false: %+v", resp)
	}
	if !strings.Contains(resp.Message, "Rivals") || !strings.Contains(resp.Message, "2026-09-12") {
		t.Errorf("message = %q, want opponent and date", resp.Message)
	}

	games := f.mem.Games()
	if len(games) != 1 {
		t.Fatalf("persisted games = %d, want 1", len(games))
	}
	if games[0].OpponentName != "Rivals" || games[0].Date != "2026-09-12" {
		t.Errorf("persisted game = %+v", games[0])
	}
	// No model round-trip on the confirmation path.
	if calls := len(f.model.TrackedGenerateInputs()); calls != 0 {
		t.Errorf("model calls = %d, want 0", calls)
	}

	audit := f.mem.AuditEntries()
	if len(audit) != 1 || audit[0].Action != string(ActionCreateGame) {
		t.Errorf("audit entries = %+v, want one create_game entry", audit)
	}
}

func TestConfirmedAddTournamentExecutes(t *testing.T) {
	f := newFixture(t)

	resp := f.orch.HandleTurn(context.Background(), &TurnRequest{
		UserID:        f.userID,
		ConfirmAction: true,
		PendingAction: &PendingAction{
			Type: ActionAddTournament,
			Data: map[string]any{
				"tournament_id":   "t-9",
				"tournament_name": "Harvest Cup",
				"start_date":      "2026-10-03",
			},
		},
	})

	if !resp.ActionExecuted {
		t.Fatalf("actionExecuted = false: %+v", resp)
	}
	games := f.mem.Games()
	if len(games) != 1 || games[0].TournamentID != "t-9" {
		t.Errorf("placeholder entry = %+v", games)
	}
}

func TestConfirmedSendEmailTransportFailure(t *testing.T) {
	f := newFixture(t)
	f.email.Fail = true

	resp := f.orch.HandleTurn(context.Background(), &TurnRequest{
		UserID:        f.userID,
		ConfirmAction: true,
		PendingAction: &PendingAction{
			Type: ActionSendEmail,
			Data: map[string]any{
				"to":      "dana@bears.example",
				"subject": "Game next week?",
				"body":    "Hi Dana,\n\nWant to play us?",
			},
		},
	})

	if resp.ActionExecuted {
		t.Errorf("actionExecuted = true despite transport failure")
	}
	if resp.Error == "" {
		t.Errorf("error not populated on transport failure")
	}
	if len(f.mem.AuditEntries()) != 0 {
		t.Errorf("audit entry written for a failed action")
	}
}

func TestConfirmedSendEmailSuccess(t *testing.T) {
	f := newFixture(t)

	resp := f.orch.HandleTurn(context.Background(), &TurnRequest{
		UserID:        f.userID,
		ConfirmAction: true,
		PendingAction: &PendingAction{
			Type: ActionSendEmail,
			Data: map[string]any{
				"to":        "dana@bears.example",
				"subject":   "Game next week?",
				"body":      "Hi Dana,\n\nWant to play us?",
				"signature": "Best regards,\nJamie Murphy",
			},
		},
	})

	if !resp.ActionExecuted {
		t.Fatalf("actionExecuted = false: %+v", resp)
	}
	sent := f.email.Sent()
	if len(sent) != 1 {
		t.Fatalf("sent = %d, want 1", len(sent))
	}
	if !strings.Contains(sent[0].TextBody, "Best regards,") {
		t.Errorf("signature not appended to text body: %q", sent[0].TextBody)
	}
	if !strings.Contains(sent[0].HTMLBody, "<br>") {
		t.Errorf("html body not formatted: %q", sent[0].HTMLBody)
	}
}

func TestConfirmedUnknownActionRejected(t *testing.T) {
	f := newFixture(t)

	resp := f.orch.HandleTurn(context.Background(), &TurnRequest{
		UserID:        f.userID,
		ConfirmAction: true,
		PendingAction: &PendingAction{
			Type: ActionGameMatchResults,
			Data: map[string]any{},
		},
	})

	if resp.ActionExecuted {
		t.Errorf("actionExecuted = true for unexecutable action type")
	}
	if resp.Error == "" {
		t.Errorf("error not populated for unexecutable action type")
	}
}
