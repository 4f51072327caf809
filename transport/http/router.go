package http

import (
	"github.com/gin-gonic/gin"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/imind-lab/mcp-rag"

	mcpE "github.com/imind-lab/mcp-rag/mcp"
)

func AddRouters(r *gin.Engine, endpoints mcprag.EndpointSet) {
	api := r.Group("/api")
	{
		api.POST("/docs/index", IndexDocsHandler(endpoints.IndexDocs))
		api.GET("/docs/retrieve", RetrieveDocsHandler(endpoints.RetrieveDocs))
	}
}

func AddStreamableRouters(r *gin.Engine, endpoints map[mcp.MCPMethod]mcpE.MCPEndpoint) {
	mcp := r.Group("/mcp")
	{
		mcp.POST("", MCPStreamableHandler(endpoints))
	}
}
