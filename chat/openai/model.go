package openai

import (
	"context"
	"errors"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/imind-lab/mcp-rag/chat"

	openaiE "github.com/imind-lab/mcp-rag/embedding/openai"
)

var ErrNoChoices = errors.New("completion returned no choices")

func NewModel(cfg chat.Config) chat.Model {
	var opts []option.RequestOption
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}

	client := openai.NewClient(openaiE.ClientOptions(cfg.BaseURL, cfg.APIKey, opts...)...)

	return &model{
		client: client,
		model:  cfg.Model,
	}
}

type model struct {
	client openai.Client
	model  string
}

func (m *model) Complete(ctx context.Context, messages []chat.Message, tools []chat.Tool) (chat.Message, error) {
	params := openai.ChatCompletionNewParams{
		Model:    m.model,
		Messages: toMessageParams(messages),
	}

	if len(tools) > 0 {
		params.Tools = toToolParams(tools)
		params.ToolChoice = openai.ChatCompletionToolChoiceOptionUnionParam{
			OfAuto: openai.String("auto"),
		}
	}

	completion, err := m.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return chat.Message{}, err
	}

	if len(completion.Choices) == 0 {
		return chat.Message{}, ErrNoChoices
	}

	msg := completion.Choices[0].Message

	result := chat.Message{
		Role:    chat.RoleAssistant,
		Content: msg.Content,
	}

	for _, call := range msg.ToolCalls {
		result.ToolCalls = append(result.ToolCalls, chat.ToolCall{
			ID:        call.ID,
			Name:      call.Function.Name,
			Arguments: call.Function.Arguments,
		})
	}

	return result, nil
}

func toMessageParams(messages []chat.Message) []openai.ChatCompletionMessageParamUnion {
	params := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case chat.RoleSystem:
			params = append(params, openai.SystemMessage(msg.Content))

		case chat.RoleUser:
			params = append(params, openai.UserMessage(msg.Content))

		case chat.RoleTool:
			params = append(params, openai.ToolMessage(msg.Content, msg.ToolCallID))

		case chat.RoleAssistant:
			assistant := openai.ChatCompletionAssistantMessageParam{}
			if msg.Content != "" {
				assistant.Content.OfString = openai.String(msg.Content)
			}

			for _, call := range msg.ToolCalls {
				assistant.ToolCalls = append(assistant.ToolCalls, openai.ChatCompletionMessageToolCallParam{
					ID: call.ID,
					Function: openai.ChatCompletionMessageToolCallFunctionParam{
						Name:      call.Name,
						Arguments: call.Arguments,
					},
				})
			}

			params = append(params, openai.ChatCompletionMessageParamUnion{
				OfAssistant: &assistant,
			})
		}
	}

	return params
}

func toToolParams(tools []chat.Tool) []openai.ChatCompletionToolParam {
	params := make([]openai.ChatCompletionToolParam, len(tools))
	for i, tool := range tools {
		fn := openai.FunctionDefinitionParam{
			Name:       tool.Name,
			Parameters: openai.FunctionParameters(tool.Parameters),
		}

		if tool.Description != "" {
			fn.Description = openai.String(tool.Description)
		}

		params[i] = openai.ChatCompletionToolParam{
			Function: fn,
		}
	}

	return params
}
