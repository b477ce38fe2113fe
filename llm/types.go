package llm

import (
	"encoding/json"
	"fmt"
)

// Part represents a part of a message. Exactly one of the variants is set.
type Part struct {
	TextPart       *TextPart       `json:"-"`
	ToolCallPart   *ToolCallPart   `json:"-"`
	ToolResultPart *ToolResultPart `json:"-"`
}

type PartType string

const (
	PartTypeText       PartType = "text"
	PartTypeToolCall   PartType = "tool-call"
	PartTypeToolResult PartType = "tool-result"
)

func (p Part) Type() PartType {
	switch {
	case p.TextPart != nil:
		return PartTypeText
	case p.ToolCallPart != nil:
		return PartTypeToolCall
	case p.ToolResultPart != nil:
		return PartTypeToolResult
	default:
		return ""
	}
}

// TextPart represents a part of the message that contains text.
type TextPart struct {
	Text string `json:"text"`
}

// ToolCallPart represents a call to a tool the model wants to use.
type ToolCallPart struct {
	ToolCallID string         `json:"tool_call_id"`
	ToolName   string         `json:"tool_name"`
	Args       map[string]any `json:"args"`
}

// ToolResultPart represents the result of a tool call.
type ToolResultPart struct {
	ToolCallID string `json:"tool_call_id"`
	ToolName   string `json:"tool_name"`
	Content    []Part `json:"content"`
	IsError    *bool  `json:"is_error,omitempty"`
}

// MarshalJSON implements custom JSON marshaling for Part
func (p Part) MarshalJSON() ([]byte, error) {
	if p.TextPart != nil {
		return json.Marshal(struct {
			Type PartType `json:"type"`
			*TextPart
		}{
			Type:     PartTypeText,
			TextPart: p.TextPart,
		})
	}
	if p.ToolCallPart != nil {
		return json.Marshal(struct {
			Type PartType `json:"type"`
			*ToolCallPart
		}{
			Type:         PartTypeToolCall,
			ToolCallPart: p.ToolCallPart,
		})
	}
	if p.ToolResultPart != nil {
		return json.Marshal(struct {
			Type PartType `json:"type"`
			*ToolResultPart
		}{
			Type:           PartTypeToolResult,
			ToolResultPart: p.ToolResultPart,
		})
	}
	return nil, fmt.Errorf("part has no content")
}

// UnmarshalJSON implements custom JSON unmarshaling for Part
func (p *Part) UnmarshalJSON(data []byte) error {
	var temp struct {
		Type PartType `json:"type"`
	}
	if err := json.Unmarshal(data, &temp); err != nil {
		return err
	}

	switch temp.Type {
	case PartTypeText:
		var t TextPart
		if err := json.Unmarshal(data, &t); err != nil {
			return err
		}
		p.TextPart = &t
	case PartTypeToolCall:
		var tc ToolCallPart
		if err := json.Unmarshal(data, &tc); err != nil {
			return err
		}
		p.ToolCallPart = &tc
	case PartTypeToolResult:
		var tr ToolResultPart
		if err := json.Unmarshal(data, &tr); err != nil {
			return err
		}
		p.ToolResultPart = &tr
	default:
		return fmt.Errorf("unknown part type: %s", temp.Type)
	}

	return nil
}

// NewTextPart creates a new text part
func NewTextPart(text string) Part {
	return Part{TextPart: &TextPart{Text: text}}
}

// NewToolCallPart creates a new tool call part
func NewToolCallPart(toolCallID, toolName string, args map[string]any) Part {
	return Part{
		ToolCallPart: &ToolCallPart{
			ToolCallID: toolCallID,
			ToolName:   toolName,
			Args:       args,
		},
	}
}

// NewToolResultPart creates a new tool result part
func NewToolResultPart(toolCallID, toolName string, content []Part, isError *bool) Part {
	return Part{
		ToolResultPart: &ToolResultPart{
			ToolCallID: toolCallID,
			ToolName:   toolName,
			Content:    content,
			IsError:    isError,
		},
	}
}

// Message represents a message in an LLM conversation history.
type Message struct {
	UserMessage      *UserMessage      `json:"-"`
	AssistantMessage *AssistantMessage `json:"-"`
	ToolMessage      *ToolMessage      `json:"-"`
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

func (m Message) Role() Role {
	switch {
	case m.UserMessage != nil:
		return RoleUser
	case m.AssistantMessage != nil:
		return RoleAssistant
	case m.ToolMessage != nil:
		return RoleTool
	}
	return ""
}

// UserMessage represents a message sent by the user.
type UserMessage struct {
	Content []Part `json:"content"`
}

// AssistantMessage represents a message generated by the model.
type AssistantMessage struct {
	Content []Part `json:"content"`
}

// ToolMessage represents tool results in the message history.
// Only ToolResultPart should be included in the content.
type ToolMessage struct {
	Content []Part `json:"content"`
}

// MarshalJSON implements custom JSON marshaling for Message
func (m Message) MarshalJSON() ([]byte, error) {
	if m.UserMessage != nil {
		return json.Marshal(struct {
			Role Role `json:"role"`
			*UserMessage
		}{
			Role:        RoleUser,
			UserMessage: m.UserMessage,
		})
	}
	if m.AssistantMessage != nil {
		return json.Marshal(struct {
			Role Role `json:"role"`
			*AssistantMessage
		}{
			Role:             RoleAssistant,
			AssistantMessage: m.AssistantMessage,
		})
	}
	if m.ToolMessage != nil {
		return json.Marshal(struct {
			Role Role `json:"role"`
			*ToolMessage
		}{
			Role:        RoleTool,
			ToolMessage: m.ToolMessage,
		})
	}
	return nil, fmt.Errorf("message has no content")
}

// UnmarshalJSON implements custom JSON unmarshaling for Message
func (m *Message) UnmarshalJSON(data []byte) error {
	var temp struct {
		Role    Role   `json:"role"`
		Content []Part `json:"content"`
	}
	if err := json.Unmarshal(data, &temp); err != nil {
		return err
	}

	switch temp.Role {
	case RoleUser:
		m.UserMessage = &UserMessage{Content: temp.Content}
	case RoleAssistant:
		m.AssistantMessage = &AssistantMessage{Content: temp.Content}
	case RoleTool:
		m.ToolMessage = &ToolMessage{Content: temp.Content}
	default:
		return fmt.Errorf("unknown message role: %s", temp.Role)
	}

	return nil
}

// NewUserMessage creates a new user message
func NewUserMessage(parts ...Part) Message {
	return Message{UserMessage: &UserMessage{Content: parts}}
}

// NewAssistantMessage creates a new assistant message
func NewAssistantMessage(parts ...Part) Message {
	return Message{AssistantMessage: &AssistantMessage{Content: parts}}
}

// NewToolMessage creates a new tool message
func NewToolMessage(parts ...Part) Message {
	return Message{ToolMessage: &ToolMessage{Content: parts}}
}

// JSONSchema represents a JSON schema.
type JSONSchema map[string]any

// Tool represents a tool that can be used by the model.
type Tool struct {
	// The name of the tool.
	Name string `json:"name"`
	// A description of the tool.
	Description string `json:"description"`
	// The JSON schema of the parameters that the tool accepts. The type must be "object".
	Parameters JSONSchema `json:"parameters"`
}

// ToolChoiceOption determines how the model should choose which tool to use.
type ToolChoiceOption struct {
	Auto     *ToolChoiceAuto     `json:"-"`
	None     *ToolChoiceNone     `json:"-"`
	Required *ToolChoiceRequired `json:"-"`
}

// ToolChoiceAuto means the model will automatically choose the tool to use or not use any tools.
type ToolChoiceAuto struct{}

// ToolChoiceNone means the model will not use any tools.
type ToolChoiceNone struct{}

// ToolChoiceRequired means the model will be forced to use a tool.
type ToolChoiceRequired struct{}

// MarshalJSON implements custom JSON marshaling for ToolChoiceOption
func (t ToolChoiceOption) MarshalJSON() ([]byte, error) {
	switch {
	case t.Auto != nil:
		return json.Marshal(map[string]string{"type": "auto"})
	case t.None != nil:
		return json.Marshal(map[string]string{"type": "none"})
	case t.Required != nil:
		return json.Marshal(map[string]string{"type": "required"})
	}
	return nil, fmt.Errorf("tool choice has no content")
}

// UnmarshalJSON implements custom JSON unmarshaling for ToolChoiceOption
func (t *ToolChoiceOption) UnmarshalJSON(data []byte) error {
	var temp struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &temp); err != nil {
		return err
	}

	switch temp.Type {
	case "auto":
		t.Auto = &ToolChoiceAuto{}
	case "none":
		t.None = &ToolChoiceNone{}
	case "required":
		t.Required = &ToolChoiceRequired{}
	default:
		return fmt.Errorf("unknown tool choice type: %s", temp.Type)
	}

	return nil
}

// NewToolChoiceAuto creates an auto tool choice
func NewToolChoiceAuto() ToolChoiceOption {
	return ToolChoiceOption{Auto: &ToolChoiceAuto{}}
}

// NewToolChoiceNone creates a none tool choice
func NewToolChoiceNone() ToolChoiceOption {
	return ToolChoiceOption{None: &ToolChoiceNone{}}
}

// NewToolChoiceRequired creates a required tool choice
func NewToolChoiceRequired() ToolChoiceOption {
	return ToolChoiceOption{Required: &ToolChoiceRequired{}}
}

// ResponseFormatOption represents the format that the model must output.
type ResponseFormatOption struct {
	Text *ResponseFormatText `json:"-"`
	JSON *ResponseFormatJSON `json:"-"`
}

// ResponseFormatText specifies that the model response should be in plain text format.
type ResponseFormatText struct{}

// ResponseFormatJSON specifies that the model response should be in JSON format
// adhering to a specified schema.
type ResponseFormatJSON struct {
	// The name of the schema.
	Name string `json:"name"`
	// The description of the schema.
	Description *string     `json:"description,omitempty"`
	Schema      *JSONSchema `json:"schema,omitempty"`
}

// MarshalJSON implements custom JSON marshaling for ResponseFormatOption
func (r ResponseFormatOption) MarshalJSON() ([]byte, error) {
	if r.Text != nil {
		return json.Marshal(map[string]string{"type": "text"})
	}
	if r.JSON != nil {
		return json.Marshal(struct {
			Type string `json:"type"`
			*ResponseFormatJSON
		}{
			Type:               "json",
			ResponseFormatJSON: r.JSON,
		})
	}
	return nil, fmt.Errorf("response format has no content")
}

// UnmarshalJSON implements custom JSON unmarshaling for ResponseFormatOption
func (r *ResponseFormatOption) UnmarshalJSON(data []byte) error {
	var temp struct {
		Type        string      `json:"type"`
		Name        string      `json:"name,omitempty"`
		Description *string     `json:"description,omitempty"`
		Schema      *JSONSchema `json:"schema,omitempty"`
	}
	if err := json.Unmarshal(data, &temp); err != nil {
		return err
	}

	switch temp.Type {
	case "text":
		r.Text = &ResponseFormatText{}
	case "json":
		r.JSON = &ResponseFormatJSON{
			Name:        temp.Name,
			Description: temp.Description,
			Schema:      temp.Schema,
		}
	default:
		return fmt.Errorf("unknown response format type: %s", temp.Type)
	}

	return nil
}

// NewResponseFormatText creates a text response format
func NewResponseFormatText() ResponseFormatOption {
	return ResponseFormatOption{Text: &ResponseFormatText{}}
}

// NewResponseFormatJSON creates a JSON response format
func NewResponseFormatJSON(name string, description *string, schema *JSONSchema) ResponseFormatOption {
	return ResponseFormatOption{
		JSON: &ResponseFormatJSON{
			Name:        name,
			Description: description,
			Schema:      schema,
		},
	}
}

// ModelUsage represents the token usage of the model.
type ModelUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Add accumulates another usage into this one.
func (u *ModelUsage) Add(other *ModelUsage) {
	if other == nil {
		return
	}
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
}

// ModelResponse represents the response generated by the model.
type ModelResponse struct {
	Content []Part      `json:"content"`
	Usage   *ModelUsage `json:"usage,omitempty"`
}

// Text concatenates the text parts of the response content.
func (r *ModelResponse) Text() string {
	var out string
	for _, part := range r.Content {
		if part.TextPart != nil {
			out += part.TextPart.Text
		}
	}
	return out
}

// ToolCalls returns the tool call parts of the response content in order.
func (r *ModelResponse) ToolCalls() []*ToolCallPart {
	var calls []*ToolCallPart
	for _, part := range r.Content {
		if part.ToolCallPart != nil {
			calls = append(calls, part.ToolCallPart)
		}
	}
	return calls
}

// LanguageModelInput defines the input parameters for the language model completion.
type LanguageModelInput struct {
	// A system prompt is a way of providing context and instructions to the model
	SystemPrompt *string `json:"system_prompt,omitempty"`
	// A list of messages comprising the conversation so far.
	Messages []Message `json:"messages"`
	// Definitions of tools that the model may use.
	Tools          []Tool                `json:"tools,omitempty"`
	ToolChoice     *ToolChoiceOption     `json:"tool_choice,omitempty"`
	ResponseFormat *ResponseFormatOption `json:"response_format,omitempty"`
	// The maximum number of tokens that can be generated in the completion.
	MaxTokens *int64 `json:"max_tokens,omitempty"`
	// Amount of randomness injected into the response. Ranges from 0.0 to 1.0
	Temperature *float64 `json:"temperature,omitempty"`
	// Nucleus sampling parameter. Ranges from 0.0 to 1.0
	TopP *float64 `json:"top_p,omitempty"`
}
