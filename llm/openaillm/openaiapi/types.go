// Package openaiapi mirrors the subset of the OpenAI Responses API used by
// the openaillm provider.
//
// https://platform.openai.com/docs/api-reference/responses/create
package openaiapi

import (
	"encoding/json"
	"fmt"
)

type ResponseCreateParams struct {
	// Model ID used to generate the response, like `gpt-4o` or `o3`.
	Model *string `json:"model,omitempty"`

	// A system (or developer) message inserted into the model's context.
	Instructions *string `json:"instructions,omitempty"`

	// Inputs to the model, used to generate a response.
	Input []ResponseInputItem `json:"input,omitempty"`

	// An upper bound for the number of tokens that can be generated for a response.
	MaxOutputTokens *int64 `json:"max_output_tokens,omitempty"`

	// Whether to store the generated model response for later retrieval via API.
	Store *bool `json:"store,omitempty"`

	// If set to true, the model response data will be streamed to the client.
	Stream *bool `json:"stream,omitempty"`

	// What sampling temperature to use, between 0 and 2.
	Temperature *float64 `json:"temperature,omitempty"`

	// Configuration options for a text response from the model. Can be plain
	// text or structured JSON data.
	Text *ResponseTextConfig `json:"text,omitempty"`

	// How the model should select which tool (or tools) to use when generating
	// a response.
	ToolChoice *ToolChoiceOptions `json:"tool_choice,omitempty"`

	// An array of tools the model may call while generating a response.
	Tools []Tool `json:"tools,omitempty"`

	// An alternative to sampling with temperature, called nucleus sampling.
	TopP *float64 `json:"top_p,omitempty"`
}

// ResponseInputItem is the union of input item types the provider sends.
type ResponseInputItem struct {
	*ResponseInputItemMessage            `json:"-"`
	*ResponseOutputMessage               `json:"-"`
	*ResponseFunctionToolCall            `json:"-"`
	*ResponseInputItemFunctionCallOutput `json:"-"`
}

func (r ResponseInputItem) MarshalJSON() ([]byte, error) {
	if r.ResponseInputItemMessage != nil {
		return json.Marshal(struct {
			Type string `json:"type"`
			*ResponseInputItemMessage
		}{
			Type:                     "message",
			ResponseInputItemMessage: r.ResponseInputItemMessage,
		})
	}
	if r.ResponseOutputMessage != nil {
		return json.Marshal(struct {
			Type string `json:"type"`
			*ResponseOutputMessage
		}{
			Type:                  "message",
			ResponseOutputMessage: r.ResponseOutputMessage,
		})
	}
	if r.ResponseFunctionToolCall != nil {
		return json.Marshal(struct {
			Type string `json:"type"`
			*ResponseFunctionToolCall
		}{
			Type:                     "function_call",
			ResponseFunctionToolCall: r.ResponseFunctionToolCall,
		})
	}
	if r.ResponseInputItemFunctionCallOutput != nil {
		return json.Marshal(struct {
			Type string `json:"type"`
			*ResponseInputItemFunctionCallOutput
		}{
			Type:                                "function_call_output",
			ResponseInputItemFunctionCallOutput: r.ResponseInputItemFunctionCallOutput,
		})
	}
	return nil, fmt.Errorf("ResponseInputItem has no content")
}

// A message input to the model.
type ResponseInputItemMessage struct {
	// A list of one or many input items to the model.
	Content []ResponseInputContent `json:"content"`

	// The role of the message input. One of `user`, `system`, or `developer`.
	Role string `json:"role"`
}

// A text input to the model.
type ResponseInputContent struct {
	*ResponseInputText `json:"-"`
}

func (r ResponseInputContent) MarshalJSON() ([]byte, error) {
	if r.ResponseInputText != nil {
		return json.Marshal(struct {
			Type string `json:"type"`
			*ResponseInputText
		}{
			Type:              "input_text",
			ResponseInputText: r.ResponseInputText,
		})
	}
	return nil, fmt.Errorf("ResponseInputContent has no content")
}

func (r *ResponseInputContent) UnmarshalJSON(data []byte) error {
	var temp struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &temp); err != nil {
		return err
	}
	switch temp.Type {
	case "input_text":
		var t ResponseInputText
		if err := json.Unmarshal(data, &t); err != nil {
			return err
		}
		r.ResponseInputText = &t
	default:
		return fmt.Errorf("unknown ResponseInputContent type: %s", temp.Type)
	}
	return nil
}

type ResponseInputText struct {
	// The text input to the model.
	Text string `json:"text"`
}

type ResponseOutputMessage struct {
	// The unique ID of the output message.
	ID string `json:"id"`

	// The content of the output message.
	Content []ResponseOutputContent `json:"content"`

	// The role of the output message. Always `assistant`.
	Role string `json:"role"`

	// The status of the message input. One of `in_progress`, `completed`, or
	// `incomplete`. Populated when input items are returned via API.
	Status string `json:"status"`
}

type ResponseOutputContent struct {
	*ResponseOutputText    `json:"-"`
	*ResponseOutputRefusal `json:"-"`
}

func (r ResponseOutputContent) MarshalJSON() ([]byte, error) {
	if r.ResponseOutputText != nil {
		return json.Marshal(struct {
			Type string `json:"type"`
			*ResponseOutputText
		}{
			Type:               "output_text",
			ResponseOutputText: r.ResponseOutputText,
		})
	}
	if r.ResponseOutputRefusal != nil {
		return json.Marshal(struct {
			Type string `json:"type"`
			*ResponseOutputRefusal
		}{
			Type:                  "refusal",
			ResponseOutputRefusal: r.ResponseOutputRefusal,
		})
	}
	return nil, fmt.Errorf("ResponseOutputContent has no content")
}

func (r *ResponseOutputContent) UnmarshalJSON(data []byte) error {
	var temp struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &temp); err != nil {
		return err
	}

	switch temp.Type {
	case "output_text":
		var t ResponseOutputText
		if err := json.Unmarshal(data, &t); err != nil {
			return err
		}
		r.ResponseOutputText = &t
	case "refusal":
		var ref ResponseOutputRefusal
		if err := json.Unmarshal(data, &ref); err != nil {
			return err
		}
		r.ResponseOutputRefusal = &ref
	default:
		return fmt.Errorf("unknown ResponseOutputContent type: %s", temp.Type)
	}

	return nil
}

// A text output from the model.
type ResponseOutputText struct {
	// The text output from the model.
	Text string `json:"text"`
}

// A refusal from the model.
type ResponseOutputRefusal struct {
	// The refusal explanation from the model.
	Refusal string `json:"refusal"`
}

// A tool call to run a function.
type ResponseFunctionToolCall struct {
	// A JSON string of the arguments to pass to the function.
	Arguments string `json:"arguments"`

	// The unique ID of the function tool call generated by the model.
	CallID string `json:"call_id"`

	// The name of the function to run.
	Name string `json:"name"`

	// The unique ID of the function tool call.
	ID *string `json:"id,omitempty"`

	// The status of the item. Populated when items are returned via API.
	Status *string `json:"status,omitempty"`
}

// The output of a function tool call.
type ResponseInputItemFunctionCallOutput struct {
	// The unique ID of the function tool call generated by the model.
	CallID string `json:"call_id"`

	// A JSON string of the output of the function tool call.
	Output string `json:"output"`
}

// Configuration options for a text response from the model.
type ResponseTextConfig struct {
	// An object specifying the format that the model must output.
	Format *ResponseFormatTextConfig `json:"format,omitempty"`
}

type ResponseFormatTextConfig struct {
	*ResponseFormatText                 `json:"-"`
	*ResponseFormatTextJSONSchemaConfig `json:"-"`
	*ResponseFormatJSONObject           `json:"-"`
}

func (r ResponseFormatTextConfig) MarshalJSON() ([]byte, error) {
	if r.ResponseFormatText != nil {
		return json.Marshal(struct {
			Type string `json:"type"`
			*ResponseFormatText
		}{
			Type:               "text",
			ResponseFormatText: r.ResponseFormatText,
		})
	}
	if r.ResponseFormatTextJSONSchemaConfig != nil {
		return json.Marshal(struct {
			Type string `json:"type"`
			*ResponseFormatTextJSONSchemaConfig
		}{
			Type:                               "json_schema",
			ResponseFormatTextJSONSchemaConfig: r.ResponseFormatTextJSONSchemaConfig,
		})
	}
	if r.ResponseFormatJSONObject != nil {
		return json.Marshal(struct {
			Type string `json:"type"`
			*ResponseFormatJSONObject
		}{
			Type:                     "json_object",
			ResponseFormatJSONObject: r.ResponseFormatJSONObject,
		})
	}
	return nil, fmt.Errorf("ResponseFormatTextConfig has no content")
}

// Default response format. Used to generate text responses.
type ResponseFormatText struct{}

// Structured Outputs configuration.
type ResponseFormatTextJSONSchemaConfig struct {
	// The name of the response format.
	Name string `json:"name"`

	// The schema for the response format, described as a JSON Schema object.
	Schema map[string]any `json:"schema"`

	// A description of what the response format is for.
	Description *string `json:"description,omitempty"`

	// Whether to enable strict schema adherence when generating the output.
	Strict *bool `json:"strict,omitempty"`
}

// JSON object response format. An older method of generating JSON responses.
type ResponseFormatJSONObject struct{}

type ToolChoiceOptions string

const (
	ToolChoiceOptionsNone     ToolChoiceOptions = "none"
	ToolChoiceOptionsAuto     ToolChoiceOptions = "auto"
	ToolChoiceOptionsRequired ToolChoiceOptions = "required"
)

// A tool that can be used to generate a response.
type Tool struct {
	*FunctionTool  `json:"-"`
	*WebSearchTool `json:"-"`
}

func (t Tool) MarshalJSON() ([]byte, error) {
	if t.FunctionTool != nil {
		return json.Marshal(struct {
			Type string `json:"type"`
			*FunctionTool
		}{
			Type:         "function",
			FunctionTool: t.FunctionTool,
		})
	}
	if t.WebSearchTool != nil {
		return json.Marshal(struct {
			Type string `json:"type"`
			*WebSearchTool
		}{
			Type:          "web_search",
			WebSearchTool: t.WebSearchTool,
		})
	}
	return nil, fmt.Errorf("Tool has no content")
}

// Defines a function in your own code the model can choose to call.
type FunctionTool struct {
	// The name of the function to call.
	Name string `json:"name"`

	// A JSON schema object describing the parameters of the function.
	Parameters any `json:"parameters,omitempty"`

	// Whether to enforce strict parameter validation. Default `true`.
	Strict *bool `json:"strict,omitempty"`

	// A description of the function.
	Description *string `json:"description,omitempty"`
}

// Search the Internet for sources related to the prompt.
type WebSearchTool struct {
	// High level guidance for the amount of context window space to use for
	// the search. One of `low`, `medium`, or `high`. `medium` is the default.
	SearchContextSize *string `json:"search_context_size,omitempty"`
}

type Response struct {
	// Unique identifier for this Response.
	ID string `json:"id"`

	// Unix timestamp (in seconds) of when this Response was created.
	CreatedAt int64 `json:"created_at"`

	// Model ID used to generate the response.
	Model string `json:"model"`

	// An array of content items generated by the model.
	Output []ResponseOutputItem `json:"output"`

	// The status of the response generation.
	Status *string `json:"status,omitempty"`

	// Token usage details.
	Usage *ResponseUsage `json:"usage,omitempty"`
}

// An output item from the model.
type ResponseOutputItem struct {
	*ResponseOutputMessage     `json:"-"`
	*ResponseFunctionToolCall  `json:"-"`
	*ResponseFunctionWebSearch `json:"-"`
}

func (r *ResponseOutputItem) UnmarshalJSON(data []byte) error {
	var temp struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &temp); err != nil {
		return err
	}

	switch temp.Type {
	case "message":
		var m ResponseOutputMessage
		if err := json.Unmarshal(data, &m); err != nil {
			return err
		}
		r.ResponseOutputMessage = &m
	case "function_call":
		var f ResponseFunctionToolCall
		if err := json.Unmarshal(data, &f); err != nil {
			return err
		}
		r.ResponseFunctionToolCall = &f
	case "web_search_call":
		var w ResponseFunctionWebSearch
		if err := json.Unmarshal(data, &w); err != nil {
			return err
		}
		r.ResponseFunctionWebSearch = &w
	default:
		// Item types the provider does not consume (e.g. reasoning) are
		// skipped by leaving all variants nil.
	}

	return nil
}

// The record of a web search tool call.
type ResponseFunctionWebSearch struct {
	// The unique ID of the web search tool call.
	ID string `json:"id"`

	// The status of the web search tool call.
	Status string `json:"status"`
}

// Token usage details.
type ResponseUsage struct {
	// The number of input tokens.
	InputTokens int `json:"input_tokens"`

	// The number of output tokens.
	OutputTokens int `json:"output_tokens"`

	// The total number of tokens used.
	TotalTokens int `json:"total_tokens"`
}
