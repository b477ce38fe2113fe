// Package openaillm implements the llm interfaces on top of the OpenAI
// Responses API.
package openaillm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/Jmurp11/hockey-team-scheduler/llm"
	"github.com/Jmurp11/hockey-team-scheduler/llm/internal/httpjson"
	"github.com/Jmurp11/hockey-team-scheduler/llm/openaillm/openaiapi"
)

const (
	Provider       = "openai"
	DefaultBaseURL = "https://api.openai.com/v1"
)

// OpenAIModel implements llm.LanguageModel and llm.WebSearcher using the
// Responses API.
type OpenAIModel struct {
	modelID string
	apiKey  string
	baseURL string
	client  *http.Client
	headers map[string]string
}

// OpenAIModelOptions represents configuration options for the OpenAI model
type OpenAIModelOptions struct {
	BaseURL    string
	APIKey     string
	Headers    map[string]string
	HTTPClient *http.Client
}

func NewOpenAIModel(modelID string, options OpenAIModelOptions) *OpenAIModel {
	baseURL := options.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	client := options.HTTPClient
	if client == nil {
		client = &http.Client{}
	}

	headers := map[string]string{}
	for k, v := range options.Headers {
		headers[k] = v
	}

	return &OpenAIModel{
		modelID: modelID,
		apiKey:  options.APIKey,
		baseURL: baseURL,
		client:  client,
		headers: headers,
	}
}

// Provider returns the provider name
func (m *OpenAIModel) Provider() llm.ProviderName {
	return Provider
}

// ModelID returns the model ID
func (m *OpenAIModel) ModelID() string {
	return m.modelID
}

func (m *OpenAIModel) requestHeaders() map[string]string {
	headers := map[string]string{
		"Authorization": fmt.Sprintf("Bearer %s", m.apiKey),
	}
	for k, v := range m.headers {
		headers[k] = v
	}
	return headers
}

// Generate implements synchronous generation
func (m *OpenAIModel) Generate(ctx context.Context, input *llm.LanguageModelInput) (*llm.ModelResponse, error) {
	params, err := convertToResponseCreateParams(input, m.modelID)
	if err != nil {
		return nil, err
	}

	response, err := m.doCreate(ctx, params)
	if err != nil {
		return nil, err
	}

	return mapOpenAIResponse(response)
}

// SearchCompletion implements the web-search-augmented completion mode. The
// request carries only the built-in web_search tool, so the output is free
// text informed by live search results.
func (m *OpenAIModel) SearchCompletion(ctx context.Context, input *llm.WebSearchInput) (*llm.ModelResponse, error) {
	params := &openaiapi.ResponseCreateParams{
		Model:        ptrTo(m.modelID),
		Store:        ptrTo(false),
		Instructions: input.SystemPrompt,
		Input: []openaiapi.ResponseInputItem{{
			ResponseInputItemMessage: &openaiapi.ResponseInputItemMessage{
				Role: "user",
				Content: []openaiapi.ResponseInputContent{{
					ResponseInputText: &openaiapi.ResponseInputText{Text: input.Prompt},
				}},
			},
		}},
		MaxOutputTokens: input.MaxTokens,
		Tools: []openaiapi.Tool{{
			WebSearchTool: &openaiapi.WebSearchTool{},
		}},
	}

	response, err := m.doCreate(ctx, params)
	if err != nil {
		return nil, err
	}

	return mapOpenAIResponse(response)
}

func (m *OpenAIModel) doCreate(ctx context.Context, params *openaiapi.ResponseCreateParams) (*openaiapi.Response, error) {
	params.Stream = ptrTo(false)

	response, err := httpjson.DoJSON[openaiapi.Response](ctx, m.client, httpjson.RequestConfig{
		URL:     fmt.Sprintf("%s/responses", m.baseURL),
		Body:    params,
		Headers: m.requestHeaders(),
	})
	if err != nil {
		var statusErr *httpjson.StatusError
		if errors.As(err, &statusErr) {
			return nil, llm.NewStatusCodeError(Provider, statusErr.Status, statusErr.Body)
		}
		return nil, llm.NewTransportError(err)
	}
	return response, nil
}

// MARK: - Convert To OpenAI API Types

func convertToResponseCreateParams(input *llm.LanguageModelInput, modelID string) (*openaiapi.ResponseCreateParams, error) {
	inputItems, err := convertToOpenAIInputs(input.Messages)
	if err != nil {
		return nil, err
	}

	params := &openaiapi.ResponseCreateParams{
		Store:           ptrTo(false),
		Model:           ptrTo(modelID),
		Instructions:    input.SystemPrompt,
		Input:           inputItems,
		Temperature:     input.Temperature,
		TopP:            input.TopP,
		MaxOutputTokens: input.MaxTokens,
	}

	if input.Tools != nil {
		var tools []openaiapi.Tool
		for _, tool := range input.Tools {
			tools = append(tools, openaiapi.Tool{
				FunctionTool: &openaiapi.FunctionTool{
					Name:        tool.Name,
					Description: ptrTo(tool.Description),
					Parameters:  map[string]any(tool.Parameters),
					Strict:      ptrTo(false),
				},
			})
		}
		params.Tools = tools
	}

	if input.ToolChoice != nil {
		params.ToolChoice = convertToOpenAIToolChoice(*input.ToolChoice)
	}

	if input.ResponseFormat != nil {
		params.Text = convertToOpenAITextConfig(*input.ResponseFormat)
	}

	return params, nil
}

func convertToOpenAIToolChoice(choice llm.ToolChoiceOption) *openaiapi.ToolChoiceOptions {
	switch {
	case choice.None != nil:
		return ptrTo(openaiapi.ToolChoiceOptionsNone)
	case choice.Required != nil:
		return ptrTo(openaiapi.ToolChoiceOptionsRequired)
	default:
		return ptrTo(openaiapi.ToolChoiceOptionsAuto)
	}
}

func convertToOpenAITextConfig(format llm.ResponseFormatOption) *openaiapi.ResponseTextConfig {
	if format.JSON != nil {
		if format.JSON.Schema != nil {
			return &openaiapi.ResponseTextConfig{
				Format: &openaiapi.ResponseFormatTextConfig{
					ResponseFormatTextJSONSchemaConfig: &openaiapi.ResponseFormatTextJSONSchemaConfig{
						Name:        format.JSON.Name,
						Schema:      map[string]any(*format.JSON.Schema),
						Description: format.JSON.Description,
					},
				},
			}
		}
		return &openaiapi.ResponseTextConfig{
			Format: &openaiapi.ResponseFormatTextConfig{
				ResponseFormatJSONObject: &openaiapi.ResponseFormatJSONObject{},
			},
		}
	}
	return &openaiapi.ResponseTextConfig{
		Format: &openaiapi.ResponseFormatTextConfig{
			ResponseFormatText: &openaiapi.ResponseFormatText{},
		},
	}
}

// MARK: - To Provider Messages

func convertToOpenAIInputs(messages []llm.Message) ([]openaiapi.ResponseInputItem, error) {
	var inputItems []openaiapi.ResponseInputItem

	for _, message := range messages {
		switch {
		case message.UserMessage != nil:
			item, err := convertUserMessageToOpenAIInputItem(message.UserMessage)
			if err != nil {
				return nil, err
			}
			inputItems = append(inputItems, item)

		case message.AssistantMessage != nil:
			items, err := convertAssistantMessageToOpenAIInputItems(message.AssistantMessage)
			if err != nil {
				return nil, err
			}
			inputItems = append(inputItems, items...)

		case message.ToolMessage != nil:
			items, err := convertToolMessageToOpenAIInputItems(message.ToolMessage)
			if err != nil {
				return nil, err
			}
			inputItems = append(inputItems, items...)
		}
	}

	return inputItems, nil
}

func convertUserMessageToOpenAIInputItem(userMessage *llm.UserMessage) (openaiapi.ResponseInputItem, error) {
	var content []openaiapi.ResponseInputContent
	for _, part := range userMessage.Content {
		if part.TextPart == nil {
			return openaiapi.ResponseInputItem{}, llm.NewInvalidInputError(
				fmt.Sprintf("cannot convert user message part to OpenAI input for type %s", part.Type()))
		}
		content = append(content, openaiapi.ResponseInputContent{
			ResponseInputText: &openaiapi.ResponseInputText{Text: part.TextPart.Text},
		})
	}

	return openaiapi.ResponseInputItem{
		ResponseInputItemMessage: &openaiapi.ResponseInputItemMessage{
			Role:    "user",
			Content: content,
		},
	}, nil
}

func convertAssistantMessageToOpenAIInputItems(assistantMessage *llm.AssistantMessage) ([]openaiapi.ResponseInputItem, error) {
	var inputItems []openaiapi.ResponseInputItem

	for _, part := range assistantMessage.Content {
		switch {
		case part.TextPart != nil:
			inputItems = append(inputItems, openaiapi.ResponseInputItem{
				ResponseOutputMessage: &openaiapi.ResponseOutputMessage{
					// The API requires an item ID on replayed assistant
					// messages; a generated one keeps the turn stateless.
					ID:     fmt.Sprintf("msg_%s", uuid.NewString()),
					Role:   "assistant",
					Status: "completed",
					Content: []openaiapi.ResponseOutputContent{{
						ResponseOutputText: &openaiapi.ResponseOutputText{Text: part.TextPart.Text},
					}},
				},
			})

		case part.ToolCallPart != nil:
			args, _ := json.Marshal(part.ToolCallPart.Args)
			inputItems = append(inputItems, openaiapi.ResponseInputItem{
				ResponseFunctionToolCall: &openaiapi.ResponseFunctionToolCall{
					Arguments: string(args),
					CallID:    part.ToolCallPart.ToolCallID,
					Name:      part.ToolCallPart.ToolName,
				},
			})

		default:
			return nil, llm.NewInvalidInputError(
				fmt.Sprintf("cannot convert assistant message part to OpenAI input for type %s", part.Type()))
		}
	}

	return inputItems, nil
}

func convertToolMessageToOpenAIInputItems(toolMessage *llm.ToolMessage) ([]openaiapi.ResponseInputItem, error) {
	var inputItems []openaiapi.ResponseInputItem

	for _, part := range toolMessage.Content {
		if part.ToolResultPart == nil {
			return nil, llm.NewInvalidInputError("tool messages may only contain tool result parts")
		}

		var texts []string
		for _, content := range part.ToolResultPart.Content {
			if content.TextPart != nil {
				texts = append(texts, content.TextPart.Text)
			}
		}

		inputItems = append(inputItems, openaiapi.ResponseInputItem{
			ResponseInputItemFunctionCallOutput: &openaiapi.ResponseInputItemFunctionCallOutput{
				CallID: part.ToolResultPart.ToolCallID,
				Output: strings.Join(texts, "\n"),
			},
		})
	}

	return inputItems, nil
}

// MARK: - To SDK Response

func mapOpenAIResponse(response *openaiapi.Response) (*llm.ModelResponse, error) {
	var content []llm.Part

	for _, item := range response.Output {
		switch {
		case item.ResponseOutputMessage != nil:
			for _, c := range item.ResponseOutputMessage.Content {
				if c.ResponseOutputRefusal != nil {
					return nil, llm.NewRefusalError(c.ResponseOutputRefusal.Refusal)
				}
				if c.ResponseOutputText != nil {
					content = append(content, llm.NewTextPart(c.ResponseOutputText.Text))
				}
			}

		case item.ResponseFunctionToolCall != nil:
			var args map[string]any
			if item.ResponseFunctionToolCall.Arguments != "" {
				if err := json.Unmarshal([]byte(item.ResponseFunctionToolCall.Arguments), &args); err != nil {
					return nil, llm.NewInvariantError(Provider,
						fmt.Sprintf("invalid tool call arguments: %v", err))
				}
			}
			content = append(content, llm.NewToolCallPart(
				item.ResponseFunctionToolCall.CallID,
				item.ResponseFunctionToolCall.Name,
				args,
			))

		default:
			// web_search_call bookkeeping items and unrecognized item
			// types carry no content for the caller.
		}
	}

	result := &llm.ModelResponse{Content: content}
	if response.Usage != nil {
		result.Usage = &llm.ModelUsage{
			InputTokens:  response.Usage.InputTokens,
			OutputTokens: response.Usage.OutputTokens,
		}
	}

	return result, nil
}

func ptrTo[T any](v T) *T {
	return &v
}
