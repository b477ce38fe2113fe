package assistant

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/Jmurp11/hockey-team-scheduler/llm"
	"github.com/Jmurp11/hockey-team-scheduler/store"
)

// maxToolIterations bounds the tool-call/response cycle within one turn. It
// is the only safeguard against unbounded model latency and cost.
const maxToolIterations = 5

const apologyMessage = "I'm sorry, something went wrong while handling that. Please try again."

// Orchestrator drives one conversational turn at a time. It holds no
// session state: the caller supplies the full history and any pending
// action on every request, so a single Orchestrator serves concurrent
// users.
type Orchestrator struct {
	model llm.LanguageModel
	users store.UserContextResolver
	games store.GameStore
	email store.EmailSender
	audit store.AuditLog
	tools []Tool
}

// Options wires the orchestrator's collaborators. Model, Users, and Games
// are required; Email is required only if a send_email tool is registered;
// Audit may be nil to disable audit logging.
type Options struct {
	Model llm.LanguageModel
	Users store.UserContextResolver
	Games store.GameStore
	Email store.EmailSender
	Audit store.AuditLog
	Tools []Tool
}

func New(opts Options) *Orchestrator {
	return &Orchestrator{
		model: opts.Model,
		users: opts.Users,
		games: opts.Games,
		email: opts.Email,
		audit: opts.Audit,
		tools: opts.Tools,
	}
}

// HandleTurn processes one request. It never returns an error: every
// failure is folded into the response's Error field next to an apologetic
// user-facing message.
func (o *Orchestrator) HandleTurn(ctx context.Context, req *TurnRequest) *TurnResponse {
	span, ctx := NewTurnSpan(ctx, req.UserID)

	var response *TurnResponse
	if req.ConfirmAction && req.PendingAction != nil {
		response = o.executeAction(ctx, req.UserID, req.PendingAction)
	} else {
		response = o.converse(ctx, span, req)
	}

	span.OnEnd(response)
	return response
}

// converse runs the model/tool loop for a non-confirmation turn.
func (o *Orchestrator) converse(ctx context.Context, span *TurnSpan, req *TurnRequest) *TurnResponse {
	uc, err := o.users.ResolveUserContext(ctx, req.UserID)
	if err != nil {
		return o.failTurn(NewUserContextError(err))
	}

	systemPrompt := o.systemPrompt(uc)
	messages := historyToMessages(req.ConversationHistory)
	messages = append(messages, llm.NewUserMessage(llm.NewTextPart(req.Message)))

	toolDefs := make([]llm.Tool, len(o.tools))
	for i, tool := range o.tools {
		toolDefs[i] = llm.Tool{
			Name:        tool.Name(),
			Description: tool.Description(),
			Parameters:  tool.Parameters(),
		}
	}
	toolChoice := llm.NewToolChoiceAuto()

	var toolsRun []string
	var lastData map[string]any

	for iteration := 0; iteration < maxToolIterations; iteration++ {
		response, err := o.model.Generate(ctx, &llm.LanguageModelInput{
			SystemPrompt: &systemPrompt,
			Messages:     messages,
			Tools:        toolDefs,
			ToolChoice:   &toolChoice,
		})
		if err != nil {
			return o.failTurn(NewLanguageModelError(err))
		}
		span.OnModelResponse(response)

		toolCalls := response.ToolCalls()
		if len(toolCalls) == 0 {
			return &TurnResponse{Message: response.Text(), Data: lastData}
		}

		messages = append(messages, llm.NewAssistantMessage(response.Content...))

		// Dispatch the whole batch sequentially in model order. Even when
		// an early result demands confirmation, the remaining tools still
		// run; only their results are discarded from the response.
		var results []ToolExecutionResult
		var confirming *ToolExecutionResult
		for _, call := range toolCalls {
			result := o.dispatch(ctx, call, uc)
			results = append(results, result)
			toolsRun = append(toolsRun, call.ToolName)
			if result.Success && result.Data != nil {
				lastData = result.Data
			}
			if result.RequiresConfirmation && confirming == nil {
				confirming = &result
			}
		}

		if confirming != nil {
			action := confirming.PendingAction
			return &TurnResponse{
				Message:       confirmationMessage(action),
				PendingAction: action,
				Data:          lastData,
			}
		}

		toolParts := make([]llm.Part, len(toolCalls))
		for i, call := range toolCalls {
			isError := !results[i].Success
			toolParts[i] = llm.NewToolResultPart(
				call.ToolCallID,
				call.ToolName,
				[]llm.Part{llm.NewTextPart(resultPayload(results[i]))},
				&isError,
			)
		}
		messages = append(messages, llm.NewToolMessage(toolParts...))
	}

	return &TurnResponse{
		Message: truncationMessage(toolsRun),
		Data:    lastData,
	}
}

// dispatch executes one model-requested tool call inside a span. An
// unknown tool name becomes a failed result the model can read, not a
// turn failure.
func (o *Orchestrator) dispatch(ctx context.Context, call *llm.ToolCallPart, uc *store.UserContext) ToolExecutionResult {
	var tool Tool
	for _, t := range o.tools {
		if t.Name() == call.ToolName {
			tool = t
			break
		}
	}
	if tool == nil {
		return errorResult("unknown tool %q", call.ToolName)
	}

	return startActiveToolSpan(ctx, call.ToolCallID, call.ToolName, tool.Description(),
		func(ctx context.Context) ToolExecutionResult {
			return tool.Execute(ctx, call.Args, uc)
		})
}

// executeAction runs a confirmed pending action. This is the only code path
// with observable side effects.
func (o *Orchestrator) executeAction(ctx context.Context, userID string, action *PendingAction) *TurnResponse {
	var response *TurnResponse
	switch action.Type {
	case ActionCreateGame:
		response = o.executeCreateGame(ctx, userID, action)
	case ActionAddTournament:
		response = o.executeAddTournament(ctx, userID, action)
	case ActionSendEmail:
		response = o.executeSendEmail(ctx, action)
	default:
		return &TurnResponse{
			Message: fmt.Sprintf("I can't execute an action of type %q.", action.Type),
			Error:   NewInvariantError(fmt.Sprintf("unexecutable action type %q", action.Type)).Error(),
		}
	}

	if response.ActionExecuted {
		o.appendAudit(ctx, userID, action)
	}
	return response
}

func (o *Orchestrator) executeCreateGame(ctx context.Context, userID string, action *PendingAction) *TurnResponse {
	opponent := dataString(action.Data, "opponent_name")
	date := dataString(action.Data, "date")
	if opponent == "" || date == "" {
		return o.failAction(NewInvariantError("create_game action is missing the opponent or date"))
	}

	game := &store.Game{
		UserID:       userID,
		OpponentID:   dataString(action.Data, "opponent_id"),
		OpponentName: opponent,
		Date:         date,
		Time:         dataString(action.Data, "time"),
		Location:     dataString(action.Data, "location"),
		HomeAway:     dataString(action.Data, "home_away"),
	}
	if err := o.games.CreateGame(ctx, game); err != nil {
		return o.failAction(NewActionExecutionError(err))
	}

	message := fmt.Sprintf("Done. I've added a game against %s on %s", opponent, date)
	if game.Time != "" {
		message += " at " + game.Time
	}
	message += " to your schedule."
	return &TurnResponse{
		Message:        message,
		ActionExecuted: true,
		Data:           map[string]any{"game": game},
	}
}

func (o *Orchestrator) executeAddTournament(ctx context.Context, userID string, action *PendingAction) *TurnResponse {
	name := dataString(action.Data, "tournament_name")
	if name == "" {
		return o.failAction(NewInvariantError("add_tournament_to_schedule action is missing the tournament name"))
	}

	entry := &store.Game{
		UserID:       userID,
		OpponentName: name,
		Date:         dataString(action.Data, "start_date"),
		Location:     dataString(action.Data, "location"),
		TournamentID: dataString(action.Data, "tournament_id"),
		Notes:        "Tournament placeholder",
	}
	if err := o.games.CreateGame(ctx, entry); err != nil {
		return o.failAction(NewActionExecutionError(err))
	}

	message := fmt.Sprintf("Done. I've added the tournament %q to your schedule", name)
	if entry.Date != "" {
		message += " starting " + entry.Date
	}
	message += "."
	return &TurnResponse{
		Message:        message,
		ActionExecuted: true,
		Data:           map[string]any{"entry": entry},
	}
}

func (o *Orchestrator) executeSendEmail(ctx context.Context, action *PendingAction) *TurnResponse {
	to := dataString(action.Data, "to")
	subject := dataString(action.Data, "subject")
	body := dataString(action.Data, "body")
	if to == "" || subject == "" || body == "" {
		return o.failAction(NewInvariantError("send_email action is missing the recipient, subject, or body"))
	}

	text := body
	if signature := dataString(action.Data, "signature"); signature != "" {
		text += "\n\n" + signature
	}
	html := "<p>" + strings.ReplaceAll(text, "\n", "<br>") + "</p>"

	accepted, err := o.email.Send(ctx, store.EmailMessage{
		To:       to,
		Subject:  subject,
		HTMLBody: html,
		TextBody: text,
	})
	if err != nil {
		return o.failAction(NewActionExecutionError(err))
	}
	if !accepted {
		return o.failAction(NewActionExecutionError(fmt.Errorf("email transport did not accept the message to %s", to)))
	}

	return &TurnResponse{
		Message:        fmt.Sprintf("Sent. Your email %q is on its way to %s.", subject, to),
		ActionExecuted: true,
	}
}

// appendAudit records a confirmed action. Best-effort: a logging failure
// never fails the user-visible action.
func (o *Orchestrator) appendAudit(ctx context.Context, userID string, action *PendingAction) {
	if o.audit == nil {
		return
	}
	err := o.audit.Append(ctx, store.AuditEntry{
		UserID: userID,
		Action: string(action.Type),
		Detail: action.Description,
		At:     time.Now(),
	})
	if err != nil {
		log.Printf("assistant: audit append failed: %v", err)
	}
}

func (o *Orchestrator) systemPrompt(uc *store.UserContext) string {
	var b strings.Builder
	b.WriteString("You are a scheduling assistant for an amateur hockey team manager. ")
	b.WriteString("You help with schedules, finding opponents, tournaments, and contacting other managers.\n\n")

	b.WriteString("About the user:\n")
	if uc.Name != "" {
		fmt.Fprintf(&b, "- Name: %s\n", uc.Name)
	}
	fmt.Fprintf(&b, "- Team: %s (id %s)\n", uc.TeamName, uc.TeamID)
	if uc.AgeGroup != "" {
		fmt.Fprintf(&b, "- Age group: %s\n", uc.AgeGroup)
	}
	fmt.Fprintf(&b, "- Rating: %.0f\n", uc.Rating)
	if uc.AssociationName != "" {
		fmt.Fprintf(&b, "- Association: %s\n", uc.AssociationName)
	}
	if uc.City != "" {
		fmt.Fprintf(&b, "- Home city: %s, %s\n", uc.City, uc.State)
	}

	b.WriteString("\nGround rules:\n")
	b.WriteString("- Nothing is scheduled, registered, or sent until the user explicitly confirms the proposed action.\n")
	b.WriteString("- Always ask for a date before proposing a game if the user hasn't given one.\n")
	b.WriteString("- When a manager contact can't be found, ask a clarifying question instead of guessing.\n")
	b.WriteString("- Keep answers short and concrete. Use 12-hour times when talking to the user.\n")
	return b.String()
}

func (o *Orchestrator) failTurn(err error) *TurnResponse {
	log.Printf("assistant: turn failed: %v", err)
	return &TurnResponse{
		Message: apologyMessage,
		Error:   err.Error(),
	}
}

func (o *Orchestrator) failAction(err *AssistantError) *TurnResponse {
	log.Printf("assistant: action failed: %v", err)
	return &TurnResponse{
		Message: "I couldn't complete that action: " + err.Message,
		Error:   err.Error(),
	}
}

// historyToMessages converts caller-supplied history into model messages.
// System entries are skipped; the orchestrator builds its own system prompt.
func historyToMessages(history []ChatMessage) []llm.Message {
	var messages []llm.Message
	for _, m := range history {
		switch m.Role {
		case "user":
			messages = append(messages, llm.NewUserMessage(llm.NewTextPart(m.Content)))
		case "assistant":
			messages = append(messages, llm.NewAssistantMessage(llm.NewTextPart(m.Content)))
		}
	}
	return messages
}

func confirmationMessage(action *PendingAction) string {
	if action == nil {
		return "Should I go ahead?"
	}
	return fmt.Sprintf("%s. Should I go ahead? Reply to confirm and I'll take care of it.", action.Description)
}

func truncationMessage(toolsRun []string) string {
	if len(toolsRun) == 0 {
		return "I couldn't finish working through that request. Could you rephrase or narrow it down?"
	}
	return fmt.Sprintf(
		"I gathered what I could (%s) but couldn't finish reasoning through the request. The partial results are attached; could you narrow down what you need?",
		strings.Join(dedupe(toolsRun), ", "))
}

func dedupe(items []string) []string {
	seen := make(map[string]bool, len(items))
	var out []string
	for _, item := range items {
		if !seen[item] {
			seen[item] = true
			out = append(out, item)
		}
	}
	return out
}

func dataString(data map[string]any, key string) string {
	if data == nil {
		return ""
	}
	if v, ok := data[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}
