// Copyright 2025 The AgentFlow Authors
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"context"
	"fmt"
	"iter"
	"os"

	"github.com/bytedance/sonic"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"google.golang.org/genai"

	"github.com/eriperspective/agentflow/types"
)

const (
	// OpenAIDefaultModel is the default model name for [OpenAI].
	OpenAIDefaultModel = "gpt-4o-mini"

	// EnvOpenAIAPIKey is the environment variable name for the OpenAI API key.
	EnvOpenAIAPIKey = "OPENAI_API_KEY"
)

// OpenAI represents an OpenAI GPT Large Language Model.
type OpenAI struct {
	*BaseLLM

	openaiClient openai.Client
}

var _ types.Model = (*OpenAI)(nil)

// NewOpenAI creates a new OpenAI LLM instance.
func NewOpenAI(ctx context.Context, apiKey string, modelName string, opts ...Option) (*OpenAI, error) {
	if apiKey == "" {
		envAPIKey := os.Getenv(EnvOpenAIAPIKey)
		if envAPIKey == "" {
			return nil, fmt.Errorf("either apiKey arg or %q environment variable must be set", EnvOpenAIAPIKey)
		}
		apiKey = envAPIKey
	}

	if modelName == "" {
		modelName = OpenAIDefaultModel
	}

	return &OpenAI{
		BaseLLM:      NewBaseLLM(modelName, opts...),
		openaiClient: openai.NewClient(option.WithAPIKey(apiKey)),
	}, nil
}

// SupportedModels returns a list of supported OpenAI models.
func (m *OpenAI) SupportedModels() []string {
	return []string{
		"gpt-4o",
		"gpt-4o-mini",
		"gpt-4.1",
		"gpt-4.1-mini",
	}
}

// GenerateContent implements [types.Model].
func (m *OpenAI) GenerateContent(ctx context.Context, request *types.LLMRequest) (*types.LLMResponse, error) {
	params, err := m.buildCompletionParams(request)
	if err != nil {
		return nil, err
	}

	resp, err := m.openaiClient.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai: no response choices returned")
	}

	return openaiChoiceToLLMResponse(resp), nil
}

// StreamGenerateContent implements [types.Model].
func (m *OpenAI) StreamGenerateContent(ctx context.Context, request *types.LLMRequest) iter.Seq2[*types.LLMResponse, error] {
	return func(yield func(*types.LLMResponse, error) bool) {
		params, err := m.buildCompletionParams(request)
		if err != nil {
			yield(nil, err)
			return
		}

		stream := m.openaiClient.Chat.Completions.NewStreaming(ctx, params)

		acc := openai.ChatCompletionAccumulator{}
		for stream.Next() {
			chunk := stream.Current()
			acc.AddChunk(chunk)

			if len(chunk.Choices) > 0 && chunk.Choices[0].Delta.Content != "" {
				partial := &types.LLMResponse{
					Content: &genai.Content{
						Role:  RoleModel,
						Parts: []*genai.Part{genai.NewPartFromText(chunk.Choices[0].Delta.Content)},
					},
					Partial: true,
				}
				if !yield(partial, nil) {
					return
				}
			}
		}
		if err := stream.Err(); err != nil {
			yield(nil, err)
			return
		}

		if len(acc.Choices) == 0 {
			yield(nil, fmt.Errorf("openai: no response choices returned"))
			return
		}

		final := openaiChoiceToLLMResponse(&acc.ChatCompletion)
		final.TurnComplete = true
		yield(final, nil)
	}
}

// buildCompletionParams converts a request into [openai.ChatCompletionNewParams].
func (m *OpenAI) buildCompletionParams(request *types.LLMRequest) (openai.ChatCompletionNewParams, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(request.Contents)+1)

	if systemText := request.SystemInstructionText(); systemText != "" {
		messages = append(messages, openai.SystemMessage(systemText))
	}

	for _, content := range request.Contents {
		messages = append(messages, contentToOpenAIMessages(content)...)
	}

	params := openai.ChatCompletionNewParams{
		Model:     m.Name(),
		Messages:  messages,
		MaxTokens: openai.Int(m.maxOutputTokens),
	}

	if config := request.Config; config != nil {
		if config.MaxOutputTokens > 0 {
			params.MaxTokens = openai.Int(int64(config.MaxOutputTokens))
		}

		if config.Temperature != nil {
			params.Temperature = openai.Float(float64(*config.Temperature))
		}

		if config.TopP != nil {
			params.TopP = openai.Float(float64(*config.TopP))
		}

		if len(config.Tools) > 0 && config.Tools[0].FunctionDeclarations != nil {
			tools, err := functionDeclarationsToOpenAITools(config.Tools[0].FunctionDeclarations)
			if err != nil {
				return openai.ChatCompletionNewParams{}, err
			}
			params.Tools = tools
		}
	}

	return params, nil
}

// contentToOpenAIMessages converts a [*genai.Content] into one or more chat messages.
func contentToOpenAIMessages(content *genai.Content) []openai.ChatCompletionMessageParamUnion {
	var messages []openai.ChatCompletionMessageParamUnion

	isModel := content.Role == RoleModel || content.Role == RoleAssistant

	var (
		text      string
		toolCalls []openai.ChatCompletionMessageToolCallUnionParam
	)
	for _, part := range content.Parts {
		switch {
		case part.Text != "":
			text += part.Text

		case part.FunctionCall != nil:
			args, err := sonic.ConfigFastest.MarshalToString(part.FunctionCall.Args)
			if err != nil {
				continue
			}
			toolCalls = append(toolCalls, openai.ChatCompletionMessageToolCallUnionParam{
				OfFunction: &openai.ChatCompletionMessageFunctionToolCallParam{
					ID: part.FunctionCall.ID,
					Function: openai.ChatCompletionMessageFunctionToolCallFunctionParam{
						Name:      part.FunctionCall.Name,
						Arguments: args,
					},
				},
			})

		case part.FunctionResponse != nil:
			result, err := sonic.ConfigFastest.MarshalToString(part.FunctionResponse.Response)
			if err != nil {
				continue
			}
			messages = append(messages, openai.ToolMessage(result, part.FunctionResponse.ID))
		}
	}

	switch {
	case isModel && len(toolCalls) > 0:
		assistant := openai.ChatCompletionAssistantMessageParam{
			ToolCalls: toolCalls,
		}
		if text != "" {
			assistant.Content.OfString = openai.String(text)
		}
		messages = append(messages, openai.ChatCompletionMessageParamUnion{OfAssistant: &assistant})

	case isModel && text != "":
		messages = append(messages, openai.AssistantMessage(text))

	case !isModel && text != "":
		messages = append(messages, openai.UserMessage(text))
	}

	return messages
}

// functionDeclarationsToOpenAITools converts genai function declarations into OpenAI tool params.
func functionDeclarationsToOpenAITools(funcDeclarations []*genai.FunctionDeclaration) ([]openai.ChatCompletionToolUnionParam, error) {
	tools := make([]openai.ChatCompletionToolUnionParam, 0, len(funcDeclarations))
	for _, funcDeclaration := range funcDeclarations {
		params := openai.FunctionParameters{
			"type":       "object",
			"properties": map[string]any{},
		}
		if funcDeclaration.Parameters != nil {
			data, err := sonic.ConfigFastest.Marshal(funcDeclaration.Parameters)
			if err != nil {
				return nil, fmt.Errorf("marshal function parameters: %w", err)
			}
			var schema map[string]any
			if err := sonic.ConfigFastest.Unmarshal(data, &schema); err != nil {
				return nil, fmt.Errorf("unmarshal function parameters: %w", err)
			}
			params = schema
		}

		tools = append(tools, openai.ChatCompletionToolUnionParam{
			OfFunction: &openai.ChatCompletionFunctionToolParam{
				Function: openai.FunctionDefinitionParam{
					Name:        funcDeclaration.Name,
					Description: openai.String(funcDeclaration.Description),
					Parameters:  params,
				},
			},
		})
	}

	return tools, nil
}

// openaiChoiceToLLMResponse converts a chat completion into an [types.LLMResponse].
func openaiChoiceToLLMResponse(resp *openai.ChatCompletion) *types.LLMResponse {
	choice := resp.Choices[0]

	var parts []*genai.Part
	if choice.Message.Content != "" {
		parts = append(parts, genai.NewPartFromText(choice.Message.Content))
	}

	for _, tc := range choice.Message.ToolCalls {
		var args map[string]any
		if err := sonic.ConfigFastest.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
			args = map[string]any{"raw": tc.Function.Arguments}
		}
		part := genai.NewPartFromFunctionCall(tc.Function.Name, args)
		part.FunctionCall.ID = tc.ID
		parts = append(parts, part)
	}

	finishReason := genai.FinishReasonStop
	if choice.FinishReason == "length" {
		finishReason = genai.FinishReasonMaxTokens
	}

	return &types.LLMResponse{
		Content: &genai.Content{
			Role:  RoleModel,
			Parts: parts,
		},
		FinishReason: finishReason,
		Usage: &genai.GenerateContentResponseUsageMetadata{
			PromptTokenCount:     int32(resp.Usage.PromptTokens),
			CandidatesTokenCount: int32(resp.Usage.CompletionTokens),
			TotalTokenCount:      int32(resp.Usage.TotalTokens),
		},
	}
}
