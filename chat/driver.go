package chat

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

var (
	ErrMaxTurnsExceeded = errors.New("maximum number of model turns exceeded")
	ErrNoTools          = errors.New("no tools available")
)

// Driver runs one question at a time against a model that may call tools.
type Driver struct {
	model        Model
	toolbox      Toolbox
	tools        []Tool
	systemPrompt string
	maxTurns     int
	log          *zap.Logger
}

// NewDriver lists the toolbox's tools once; the same schemas are sent with
// every model call.
func NewDriver(ctx context.Context, cfg Config, model Model, toolbox Toolbox) (*Driver, error) {
	tools, err := toolbox.Tools(ctx)
	if err != nil {
		return nil, err
	}

	if len(tools) == 0 {
		return nil, ErrNoTools
	}

	systemPrompt := cfg.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = DefaultSystemPrompt
	}

	maxTurns := cfg.MaxTurns
	if maxTurns == 0 {
		maxTurns = DefaultMaxTurns
	}

	log := zap.L().With(
		zap.String("service", "chat"),
	)

	return &Driver{
		model:        model,
		toolbox:      toolbox,
		tools:        tools,
		systemPrompt: systemPrompt,
		maxTurns:     maxTurns,
		log:          log,
	}, nil
}

func (d *Driver) Tools() []Tool {
	tools := make([]Tool, len(d.tools))
	copy(tools, d.tools)
	return tools
}

// Query answers question. Any fault is logged and turned into Apology.
func (d *Driver) Query(ctx context.Context, question string) string {
	log := d.log.With(
		zap.String("action", "query"),
		zap.String("question", question),
	)

	answer, err := d.Ask(ctx, question)
	if err != nil {
		log.Error(err.Error())
		return Apology
	}

	return answer
}

// Ask runs the tool-calling loop and returns the model's final answer.
func (d *Driver) Ask(ctx context.Context, question string) (string, error) {
	messages := []Message{
		{Role: RoleSystem, Content: d.systemPrompt},
		{Role: RoleUser, Content: question},
	}

	for turn := 0; d.maxTurns < 0 || turn < d.maxTurns; turn++ {
		msg, err := d.model.Complete(ctx, messages, d.tools)
		if err != nil {
			return "", err
		}

		messages = append(messages, msg)

		if len(msg.ToolCalls) == 0 {
			return msg.Content, nil
		}

		for _, call := range msg.ToolCalls {
			log := d.log.With(
				zap.String("action", "tool_call"),
				zap.String("tool", call.Name),
				zap.String("call_id", call.ID),
			)

			result, err := d.toolbox.Call(ctx, call.Name, call.Arguments)
			if err != nil {
				return "", err
			}

			log.Debug("tool called", zap.String("arguments", call.Arguments))

			messages = append(messages, Message{
				Role:       RoleTool,
				Content:    result,
				ToolCallID: call.ID,
			})
		}
	}

	return "", ErrMaxTurnsExceeded
}
