package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-kit/kit/endpoint"

	"github.com/imind-lab/mcp-rag"
)

func IndexDocsHandler(endpoint endpoint.Endpoint) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req mcprag.IndexDocsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.String(http.StatusBadRequest, err.Error())
			c.Error(err)
			c.Abort()
			return
		}

		ctx := c.Request.Context()
		resp, err := endpoint(ctx, req)
		if err != nil {
			c.String(statusCode(err), err.Error())
			c.Error(err)
			c.Abort()
			return
		}

		c.JSON(http.StatusOK, gin.H{"result": resp})
	}
}

func RetrieveDocsHandler(endpoint endpoint.Endpoint) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req mcprag.RetrieveDocsRequest
		if err := c.ShouldBindQuery(&req); err != nil {
			c.String(http.StatusBadRequest, err.Error())
			c.Error(err)
			c.Abort()
			return
		}

		ctx := c.Request.Context()
		resp, err := endpoint(ctx, req)
		if err != nil {
			c.String(statusCode(err), err.Error())
			c.Error(err)
			c.Abort()
			return
		}

		c.JSON(http.StatusOK, gin.H{"result": resp})
	}
}

func statusCode(err error) int {
	switch {
	case errors.Is(err, mcprag.ErrEmptyDocuments),
		errors.Is(err, mcprag.ErrInvalidTopK):
		return http.StatusBadRequest

	default:
		return http.StatusExpectationFailed
	}
}
