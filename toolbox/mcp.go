package toolbox

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/imind-lab/mcp-rag"
	"github.com/imind-lab/mcp-rag/chat"
)

type mcpClient interface {
	ListTools(ctx context.Context, req mcp.ListToolsRequest) (*mcp.ListToolsResult, error)
	CallTool(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
	Close() error
}

// NewMCPToolbox starts an MCP client for cfg and performs the initialize handshake.
func NewMCPToolbox(ctx context.Context, cfg mcprag.MCPServerConfig) (chat.Toolbox, error) {
	var (
		c   *client.Client
		err error
	)

	switch cfg.Transport {
	case mcprag.TransportTypeStdio:
		// the stdio client starts its subprocess on creation
		c, err = client.NewStdioMCPClient(
			cfg.Command,
			cfg.Environment,
			cfg.Arguments...,
		)

	case mcprag.TransportTypeSSE:
		c, err = client.NewSSEMCPClient(cfg.URL)
		if err == nil {
			err = c.Start(ctx)
		}

	case mcprag.TransportTypeStreamableHTTP:
		c, err = client.NewStreamableHttpClient(cfg.URL)
		if err == nil {
			err = c.Start(ctx)
		}

	default:
		return nil, mcprag.ErrUnsupportedTransportType
	}

	if err != nil {
		if c != nil {
			c.Close()
		}

		return nil, err
	}

	req := mcp.InitializeRequest{
		Params: mcp.InitializeParams{
			ProtocolVersion: mcp.LATEST_PROTOCOL_VERSION,
			ClientInfo: mcp.Implementation{
				Name:    "mcprag",
				Version: "1.0.0",
			},
		},
	}

	if _, err := c.Initialize(ctx, req); err != nil {
		c.Close()
		return nil, err
	}

	return newMCPToolbox(c, cfg.Timeout.Duration()), nil
}

func newMCPToolbox(c mcpClient, timeout time.Duration) *mcpToolbox {
	log := zap.L().With(
		zap.String("service", "toolbox"),
		zap.String("transport", "mcp"),
	)

	return &mcpToolbox{
		client:  c,
		timeout: timeout,
		log:     log,
	}
}

type mcpToolbox struct {
	client  mcpClient
	timeout time.Duration
	log     *zap.Logger
}

func (tb *mcpToolbox) Tools(ctx context.Context) ([]chat.Tool, error) {
	log := tb.log.With(
		zap.String("action", "list_tools"),
	)

	var (
		cursor mcp.Cursor
		tools  []chat.Tool
	)

	for {
		req := mcp.ListToolsRequest{
			PaginatedRequest: mcp.PaginatedRequest{
				Params: mcp.PaginatedParams{
					Cursor: cursor,
				},
			},
		}

		results, err := tb.client.ListTools(ctx, req)
		if err != nil {
			return nil, err
		}

		for _, t := range results.Tools {
			tool, err := ToTool(t)
			if err != nil {
				log.Error(err.Error(), zap.String("tool", t.Name))
				continue
			}

			tools = append(tools, tool)
		}

		cursor = results.NextCursor
		if cursor == "" {
			break
		}
	}

	if len(tools) == 0 {
		return nil, ErrEmptyToolsList
	}

	names := make([]string, len(tools))
	for i, tool := range tools {
		names[i] = tool.Name
	}

	log.Info("tools listed", zap.Strings("tools", names))
	return tools, nil
}

func (tb *mcpToolbox) Call(ctx context.Context, name string, arguments string) (string, error) {
	args, err := ParseArguments(arguments)
	if err != nil {
		return "", err
	}

	if tb.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, tb.timeout)
		defer cancel()
	}

	result, err := tb.client.CallTool(ctx, newCallToolRequest(name, args))
	if err != nil {
		return "", err
	}

	return ResultText(result)
}

func (tb *mcpToolbox) Close() error {
	return tb.client.Close()
}
