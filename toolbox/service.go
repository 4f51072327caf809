package toolbox

import (
	"context"

	"github.com/imind-lab/mcp-rag"
	"github.com/imind-lab/mcp-rag/chat"
)

// NewServiceToolbox dispatches tool calls straight to svc, which may be a
// local service or a proxy over a remote transport.
func NewServiceToolbox(svc mcprag.Service) chat.Toolbox {
	return &serviceToolbox{
		svc: svc,
	}
}

type serviceToolbox struct {
	svc    mcprag.Service
	closer func() error
}

func (tb *serviceToolbox) Tools(ctx context.Context) ([]chat.Tool, error) {
	tools := make([]chat.Tool, 0)
	for _, t := range mcprag.Tools() {
		tool, err := ToTool(t)
		if err != nil {
			return nil, err
		}

		tools = append(tools, tool)
	}

	return tools, nil
}

func (tb *serviceToolbox) Call(ctx context.Context, name string, arguments string) (string, error) {
	args, err := ParseArguments(arguments)
	if err != nil {
		return "", err
	}

	result, err := mcprag.CallTool(ctx, tb.svc, newCallToolRequest(name, args))
	if err != nil {
		return "", err
	}

	return ResultText(result)
}

func (tb *serviceToolbox) Close() error {
	if tb.closer == nil {
		return nil
	}

	return tb.closer()
}
