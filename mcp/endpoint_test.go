package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"

	"github.com/imind-lab/mcp-rag"
	"github.com/imind-lab/mcp-rag/embedding/embeddingtest"
	"github.com/imind-lab/mcp-rag/persistence/flat"
	"github.com/imind-lab/mcp-rag/vector"
)

func newService() mcprag.Service {
	store := mcprag.NewStore(flat.NewIndex(vector.Config{}), embeddingtest.NewRuneEmbedder())
	return mcprag.NewService(store)
}

func TestUnmarshalInitializeRequest(t *testing.T) {
	assert := assert.New(t)

	input := []byte(`{
	  "jsonrpc": "2.0",
	  "id": 1,
	  "method": "initialize",
	  "params": {
	    "protocolVersion": "2024-11-05",
	    "capabilities": {
	      "roots": {
	        "listChanged": true
	      },
	      "sampling": {}
	    },
	    "clientInfo": {
	      "name": "mcprag",
	      "version": "1.0.0"
	    }
	  }
	}`)

	var req JSONRPCRequest
	if err := json.Unmarshal(input, &req); err != nil {
		assert.Fail(err.Error())
		return
	}

	var params mcp.InitializeParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		assert.Fail(err.Error())
		return
	}

	assert.Equal(mcp.JSONRPC_VERSION, req.JSONRPC)
	assert.Equal(mcp.NewRequestId(int64(1)), req.ID)
	assert.Equal(mcp.MethodInitialize, req.Method)
	assert.Equal("2024-11-05", params.ProtocolVersion)

	resp := InitializeEndpoint(newService())(context.Background(), req)

	result, ok := resp.(mcp.JSONRPCResponse)
	if !ok {
		assert.Fail("invalid response type")
		return
	}

	initResult, ok := result.Result.(*mcp.InitializeResult)
	if !ok {
		assert.Fail("invalid result type")
		return
	}

	assert.Equal("2024-11-05", initResult.ProtocolVersion)
	assert.Equal("mcprag", initResult.ServerInfo.Name)
	assert.NotNil(initResult.Capabilities.Tools)
}

func TestListToolsEndpoint(t *testing.T) {
	assert := assert.New(t)

	req := JSONRPCRequest{
		JSONRPC: mcp.JSONRPC_VERSION,
		ID:      mcp.NewRequestId(int64(2)),
		Method:  mcp.MethodToolsList,
	}

	resp := ListToolsEndpoint(newService())(context.Background(), req)

	result, ok := resp.(mcp.JSONRPCResponse)
	if !ok {
		assert.Fail("invalid response type")
		return
	}

	tools, ok := result.Result.(*mcp.ListToolsResult)
	if !ok {
		assert.Fail("invalid result type")
		return
	}

	assert.Len(tools.Tools, 2)
	assert.Equal(mcprag.IndexDocsToolName, tools.Tools[0].Name)
	assert.Equal(mcprag.RetrieveDocsToolName, tools.Tools[1].Name)
}

func TestCallToolEndpoint(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	endpoints := MakeEndpoints(newService())
	callTool := endpoints[mcp.MethodToolsCall]

	input := []byte(`{
	  "jsonrpc": "2.0",
	  "id": 3,
	  "method": "tools/call",
	  "params": {
	    "name": "index_docs",
	    "arguments": {
	      "docs": ["糖尿病是一种慢性代谢性疾病。", "哮喘是一种慢性气道炎症性疾病。"]
	    }
	  }
	}`)

	var req JSONRPCRequest
	if err := json.Unmarshal(input, &req); err != nil {
		assert.Fail(err.Error())
		return
	}

	resp := callTool(ctx, req)

	result, ok := resp.(mcp.JSONRPCResponse)
	if !ok {
		assert.Fail("invalid response type")
		return
	}

	callResult, ok := result.Result.(*mcp.CallToolResult)
	if !ok {
		assert.Fail("invalid result type")
		return
	}

	content, ok := callResult.Content[0].(mcp.TextContent)
	if !ok {
		assert.Fail("invalid content type")
		return
	}

	assert.Equal("已索引 2 篇文档，总文档数：2", content.Text)
}

func TestCallToolEndpointErrors(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	callTool := CallToolEndpoint(newService())

	tests := []struct {
		params string
		code   int
	}{
		{`{"name": "unknown_tool", "arguments": {}}`, mcp.INVALID_PARAMS},
		{`{"name": "retrieve_docs", "arguments": {"top_k": 2}}`, mcp.INVALID_PARAMS},
		{`"not an object"`, mcp.INVALID_PARAMS},
	}

	for _, tt := range tests {
		req := JSONRPCRequest{
			JSONRPC: mcp.JSONRPC_VERSION,
			ID:      mcp.NewRequestId(int64(4)),
			Method:  mcp.MethodToolsCall,
			Params:  json.RawMessage(tt.params),
		}

		resp, ok := callTool(ctx, req).(mcp.JSONRPCError)
		if !ok {
			assert.Fail("expected an error response", tt.params)
			continue
		}

		assert.Equal(tt.code, resp.Error.Code, tt.params)
		assert.Equal(req.ID, resp.ID)
	}
}
