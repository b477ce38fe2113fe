package assistant

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Jmurp11/hockey-team-scheduler/llm"
	"github.com/Jmurp11/hockey-team-scheduler/store"
)

// Tool is one named function the model may request. Any struct implementing
// it can be registered with the orchestrator.
type Tool interface {
	// Name of the tool.
	Name() string
	// A description of the tool to instruct the model how and when to use it.
	Description() string
	// The JSON schema of the parameters that the tool accepts. The type must
	// be "object".
	Parameters() llm.JSONSchema
	// Execute runs the tool. Failures are reported inside the result
	// envelope, never as a panic or an aborted turn: the model is expected
	// to read the error and explain the limitation to the user.
	Execute(ctx context.Context, args map[string]any, uc *store.UserContext) ToolExecutionResult
}

func successResult(data map[string]any) ToolExecutionResult {
	return ToolExecutionResult{Success: true, Data: data}
}

func errorResult(format string, a ...any) ToolExecutionResult {
	return ToolExecutionResult{Success: false, Error: fmt.Sprintf(format, a...)}
}

func confirmationResult(action *PendingAction) ToolExecutionResult {
	return ToolExecutionResult{
		Success:              true,
		RequiresConfirmation: true,
		PendingAction:        action,
	}
}

// resultPayload renders a tool result as the JSON text fed back to the model.
func resultPayload(res ToolExecutionResult) string {
	payload, err := json.Marshal(res)
	if err != nil {
		return fmt.Sprintf(`{"success":false,"error":"unserializable tool result: %v"}`, err)
	}
	return string(payload)
}

// stringArg reads an optional string argument.
func stringArg(args map[string]any, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

// floatArg reads an optional numeric argument, accepting both JSON numbers
// and numeric strings the model sometimes emits.
func floatArg(args map[string]any, key string) float64 {
	switch v := args[key].(type) {
	case float64:
		return v
	case json.Number:
		f, _ := v.Float64()
		return f
	case string:
		var f float64
		_, _ = fmt.Sscanf(v, "%g", &f)
		return f
	}
	return 0
}

func intArg(args map[string]any, key string) int {
	return int(floatArg(args, key))
}

func boolArg(args map[string]any, key string) bool {
	if v, ok := args[key].(bool); ok {
		return v
	}
	return false
}
