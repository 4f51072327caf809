package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedModel struct {
	replies    []Message
	err        error
	transcript [][]Message
}

func (m *scriptedModel) Complete(ctx context.Context, messages []Message, tools []Tool) (Message, error) {
	m.transcript = append(m.transcript, append([]Message(nil), messages...))

	if m.err != nil {
		return Message{}, m.err
	}

	if len(m.replies) == 0 {
		return Message{Role: RoleAssistant, ToolCalls: []ToolCall{{ID: "loop", Name: "retrieve_docs"}}}, nil
	}

	reply := m.replies[0]
	m.replies = m.replies[1:]
	return reply, nil
}

type recordingToolbox struct {
	tools []Tool
	err   error
	calls []ToolCall
}

func (tb *recordingToolbox) Tools(ctx context.Context) ([]Tool, error) {
	return tb.tools, nil
}

func (tb *recordingToolbox) Call(ctx context.Context, name string, arguments string) (string, error) {
	tb.calls = append(tb.calls, ToolCall{Name: name, Arguments: arguments})

	if tb.err != nil {
		return "", tb.err
	}

	return "result of " + name, nil
}

func (tb *recordingToolbox) Close() error {
	return nil
}

func newToolbox() *recordingToolbox {
	return &recordingToolbox{
		tools: []Tool{
			{Name: "index_docs"},
			{Name: "retrieve_docs"},
		},
	}
}

func TestDriverPlainAnswer(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	model := &scriptedModel{
		replies: []Message{
			{Role: RoleAssistant, Content: "hello"},
		},
	}
	toolbox := newToolbox()

	driver, err := NewDriver(ctx, DefaultConfig(), model, toolbox)
	require.NoError(t, err)

	answer := driver.Query(ctx, "hi")

	assert.Equal("hello", answer)
	assert.Empty(toolbox.calls)
	assert.Len(model.transcript, 1)
	assert.Equal(RoleSystem, model.transcript[0][0].Role)
	assert.Equal(DefaultSystemPrompt, model.transcript[0][0].Content)
	assert.Equal(Message{Role: RoleUser, Content: "hi"}, model.transcript[0][1])
}

func TestDriverDispatchesToolCalls(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	model := &scriptedModel{
		replies: []Message{
			{
				Role: RoleAssistant,
				ToolCalls: []ToolCall{
					{ID: "call_1", Name: "retrieve_docs", Arguments: `{"query":"a"}`},
					{ID: "call_2", Name: "index_docs", Arguments: `{"docs":["b"]}`},
				},
			},
			{Role: RoleAssistant, Content: "done"},
		},
	}
	toolbox := newToolbox()

	driver, err := NewDriver(ctx, DefaultConfig(), model, toolbox)
	require.NoError(t, err)

	answer, err := driver.Ask(ctx, "question")
	require.NoError(t, err)

	assert.Equal("done", answer)
	assert.Len(toolbox.calls, 2)
	assert.Equal("retrieve_docs", toolbox.calls[0].Name)
	assert.Equal(`{"query":"a"}`, toolbox.calls[0].Arguments)
	assert.Equal("index_docs", toolbox.calls[1].Name)

	assert.Len(model.transcript, 2)

	second := model.transcript[1]
	assert.Len(second, 5)
	assert.Equal(RoleAssistant, second[2].Role)
	assert.Equal(Message{Role: RoleTool, Content: "result of retrieve_docs", ToolCallID: "call_1"}, second[3])
	assert.Equal(Message{Role: RoleTool, Content: "result of index_docs", ToolCallID: "call_2"}, second[4])
}

func TestDriverModelFailureApologizes(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	model := &scriptedModel{err: errors.New("connection refused")}
	toolbox := newToolbox()

	driver, err := NewDriver(ctx, DefaultConfig(), model, toolbox)
	require.NoError(t, err)

	assert.Equal(Apology, driver.Query(ctx, "question"))
	assert.Empty(toolbox.calls)
}

func TestDriverToolFailureApologizes(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	model := &scriptedModel{
		replies: []Message{
			{Role: RoleAssistant, ToolCalls: []ToolCall{{ID: "call_1", Name: "retrieve_docs", Arguments: `{`}}},
			{Role: RoleAssistant, Content: "never"},
		},
	}
	toolbox := newToolbox()
	toolbox.err = errors.New("invalid arguments")

	driver, err := NewDriver(ctx, DefaultConfig(), model, toolbox)
	require.NoError(t, err)

	assert.Equal(Apology, driver.Query(ctx, "question"))
	assert.Len(model.transcript, 1)

	// the failed transcript is not carried into the next query
	model.err = nil
	toolbox.err = nil
	assert.Equal("never", driver.Query(ctx, "again"))
	assert.Len(model.transcript[1], 2)
	assert.Equal("again", model.transcript[1][1].Content)
}

func TestDriverMaxTurns(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	model := &scriptedModel{}
	toolbox := newToolbox()

	cfg := DefaultConfig()
	cfg.MaxTurns = 3

	driver, err := NewDriver(ctx, cfg, model, toolbox)
	require.NoError(t, err)

	_, err = driver.Ask(ctx, "question")
	assert.ErrorIs(err, ErrMaxTurnsExceeded)
	assert.Len(model.transcript, 3)
	assert.Len(toolbox.calls, 3)
}

func TestNewDriverRequiresTools(t *testing.T) {
	toolbox := &recordingToolbox{}

	_, err := NewDriver(context.Background(), DefaultConfig(), &scriptedModel{}, toolbox)
	assert.ErrorIs(t, err, ErrNoTools)
}
