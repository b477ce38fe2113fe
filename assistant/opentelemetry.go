package assistant

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Jmurp11/hockey-team-scheduler/llm"
)

// Initialize the tracer lazily to allow user to have a chance to configure the global tracer provider
var tracer = otel.Tracer("github.com/Jmurp11/hockey-team-scheduler/assistant")

// TurnSpan manages the span covering one conversational turn.
type TurnSpan struct {
	userID string
	usage  *llm.ModelUsage
	span   trace.Span
}

func NewTurnSpan(ctx context.Context, userID string) (*TurnSpan, context.Context) {
	newCtx, span := tracer.Start(ctx, "assistant.turn")
	return &TurnSpan{userID: userID, span: span}, newCtx
}

// OnModelResponse accumulates token usage from one model call.
func (s *TurnSpan) OnModelResponse(response *llm.ModelResponse) {
	if response == nil || response.Usage == nil {
		return
	}
	if s.usage == nil {
		s.usage = &llm.ModelUsage{}
	}
	s.usage.Add(response.Usage)
}

// OnEnd ends the span and sets the final attributes.
func (s *TurnSpan) OnEnd(response *TurnResponse) {
	attrs := []attribute.KeyValue{
		attribute.String("gen_ai.operation.name", "invoke_agent"),
		attribute.String("assistant.user_id", s.userID),
		attribute.Bool("assistant.action_executed", response.ActionExecuted),
		attribute.Bool("assistant.pending_action", response.PendingAction != nil),
	}
	if s.usage != nil {
		attrs = append(attrs, attribute.Int64("gen_ai.model.input_tokens", int64(s.usage.InputTokens)))
		attrs = append(attrs, attribute.Int64("gen_ai.model.output_tokens", int64(s.usage.OutputTokens)))
	}
	if response.Error != "" {
		s.span.SetStatus(codes.Error, response.Error)
	}
	s.span.SetAttributes(attrs...)
	s.span.End()
}

// startActiveToolSpan creates a span for one tool execution.
func startActiveToolSpan(
	ctx context.Context,
	toolCallID string,
	toolName string,
	toolDescription string,
	fn func(context.Context) ToolExecutionResult,
) ToolExecutionResult {
	spanCtx, span := tracer.Start(ctx, "assistant.tool")
	defer func() {
		// Set attributes following OpenTelemetry semantic conventions
		span.SetAttributes(
			attribute.String("gen_ai.operation.name", "execute_tool"),
			attribute.String("gen_ai.tool.call.id", toolCallID),
			attribute.String("gen_ai.tool.description", toolDescription),
			attribute.String("gen_ai.tool.name", toolName),
			attribute.String("gen_ai.tool.type", "function"),
		)
		span.End()
	}()

	res := fn(spanCtx)
	if !res.Success {
		span.SetStatus(codes.Error, res.Error)
	}
	return res
}
