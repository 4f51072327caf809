package mcprag

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/xeipuuv/gojsonschema"
)

const (
	IndexDocsToolName    string = "index_docs"
	RetrieveDocsToolName string = "retrieve_docs"
)

func IndexDocsTool() mcp.Tool {
	return mcp.NewTool(IndexDocsToolName,
		mcp.WithDescription("将一批文档加入索引。"),
		mcp.WithArray("docs",
			mcp.Required(),
			mcp.Description("文本列表"),
			mcp.Items(map[string]any{
				"type": "string",
			}),
		),
	)
}

func RetrieveDocsTool() mcp.Tool {
	return mcp.NewTool(RetrieveDocsToolName,
		mcp.WithDescription("检索最相关文档片段。"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("用户查询"),
		),
		mcp.WithNumber("top_k",
			mcp.Description("返回的文档数"),
			mcp.DefaultNumber(float64(DefaultTopK)),
			mcp.Min(1),
		),
	)
}

// Tools returns the tool schemas advertised to clients.
func Tools() []mcp.Tool {
	return []mcp.Tool{
		IndexDocsTool(),
		RetrieveDocsTool(),
	}
}

type IndexDocsArguments struct {
	Docs []string `json:"docs"`
}

type RetrieveDocsArguments struct {
	Query string   `json:"query"`
	TopK  *float64 `json:"top_k,omitempty"`
}

// CallTool validates the request arguments against the tool schema and
// dispatches the call to svc.
func CallTool(ctx context.Context, svc Service, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.Params.Arguments
	if args == nil {
		args = map[string]any{}
	}

	var (
		result string
		err    error
	)

	switch req.Params.Name {
	case IndexDocsToolName:
		var params IndexDocsArguments
		if err := decodeArguments(IndexDocsTool(), args, &params); err != nil {
			return nil, err
		}

		result, err = svc.IndexDocs(ctx, params.Docs)

	case RetrieveDocsToolName:
		var params RetrieveDocsArguments
		if err := decodeArguments(RetrieveDocsTool(), args, &params); err != nil {
			return nil, err
		}

		k := DefaultTopK
		if params.TopK != nil {
			topK := *params.TopK
			if topK != math.Trunc(topK) {
				return nil, ErrInvalidTopK
			}

			// larger values only mean "everything"
			if topK > math.MaxInt32 {
				topK = math.MaxInt32
			}

			k = int(topK)
		}

		result, err = svc.RetrieveDocs(ctx, params.Query, k)

	default:
		return nil, ErrToolNotFound
	}

	if err != nil {
		return nil, err
	}

	return mcp.NewToolResultText(result), nil
}

func decodeArguments(tool mcp.Tool, args any, v any) error {
	schemaLoader := gojsonschema.NewGoLoader(tool.InputSchema)
	documentLoader := gojsonschema.NewGoLoader(args)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidArguments, err.Error())
	}

	if !result.Valid() {
		details := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			details[i] = desc.String()
		}

		return fmt.Errorf("%w: %s", ErrInvalidArguments, strings.Join(details, "; "))
	}

	bs, err := json.Marshal(args)
	if err != nil {
		return err
	}

	return json.Unmarshal(bs, v)
}
