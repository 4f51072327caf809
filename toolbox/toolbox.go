package toolbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/nats-io/nats.go"

	"github.com/imind-lab/mcp-rag"
	"github.com/imind-lab/mcp-rag/chat"

	natsT "github.com/imind-lab/mcp-rag/transport/nats"
)

var (
	ErrToolFailed     = errors.New("tool execution failed")
	ErrEmptyToolsList = errors.New("server advertised no tools")
)

// New connects to the tool server described by cfg.
func New(ctx context.Context, cfg mcprag.MCPServerConfig) (chat.Toolbox, error) {
	switch cfg.Transport {
	case mcprag.TransportTypeStdio,
		mcprag.TransportTypeSSE,
		mcprag.TransportTypeStreamableHTTP:

		return NewMCPToolbox(ctx, cfg)

	case mcprag.TransportTypeNATS:
		opts := []nats.Option{
			nats.Name("MCPRAG Client"),
		}

		if cfg.Creds != "" {
			opts = append(opts, nats.UserCredentials(cfg.Creds))
		}

		nc, err := nats.Connect(cfg.URL, opts...)
		if err != nil {
			return nil, err
		}

		timeout := cfg.Timeout.Duration()
		if timeout <= 0 {
			timeout = nats.DefaultTimeout
		}

		endpoints := natsT.MakeEndpoints(nc, cfg.Topic, timeout)

		var svc mcprag.Service
		svc = mcprag.ProxyMiddleware(endpoints)(svc)

		tb := NewServiceToolbox(svc).(*serviceToolbox)
		tb.closer = func() error {
			return nc.Drain()
		}

		return tb, nil

	default:
		return nil, mcprag.ErrUnsupportedTransportType
	}
}

// ToTool converts an MCP tool into a chat tool definition.
func ToTool(tool mcp.Tool) (chat.Tool, error) {
	var (
		bs  []byte
		err error
	)

	if len(tool.RawInputSchema) > 0 {
		bs = tool.RawInputSchema
	} else {
		bs, err = json.Marshal(tool.InputSchema)
		if err != nil {
			return chat.Tool{}, err
		}
	}

	var parameters map[string]any
	if err := json.Unmarshal(bs, &parameters); err != nil {
		return chat.Tool{}, err
	}

	return chat.Tool{
		Name:        tool.Name,
		Description: tool.Description,
		Parameters:  parameters,
	}, nil
}

// ParseArguments decodes the model's JSON arguments. Empty input means no arguments.
func ParseArguments(arguments string) (map[string]any, error) {
	args := make(map[string]any)

	if strings.TrimSpace(arguments) == "" {
		return args, nil
	}

	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return nil, fmt.Errorf("decode tool arguments: %w", err)
	}

	return args, nil
}

// ResultText joins the text content of a tool result.
func ResultText(result *mcp.CallToolResult) (string, error) {
	if result == nil {
		return "", ErrToolFailed
	}

	var texts []string
	for _, content := range result.Content {
		switch c := content.(type) {
		case mcp.TextContent:
			texts = append(texts, c.Text)
		case *mcp.TextContent:
			texts = append(texts, c.Text)
		}
	}

	text := strings.Join(texts, "\n")

	if result.IsError {
		return "", fmt.Errorf("%w: %s", ErrToolFailed, text)
	}

	return text, nil
}

func newCallToolRequest(name string, args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Request: mcp.Request{
			Method: string(mcp.MethodToolsCall),
		},
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}
