package mcprag

import (
	"context"

	"github.com/go-kit/kit/endpoint"
)

type EndpointSet struct {
	IndexDocs    endpoint.Endpoint
	RetrieveDocs endpoint.Endpoint
}

func MakeEndpoints(svc Service) EndpointSet {
	return EndpointSet{
		IndexDocs:    IndexDocsEndpoint(svc),
		RetrieveDocs: RetrieveDocsEndpoint(svc),
	}
}

type IndexDocsRequest struct {
	Docs []string `json:"docs" binding:"required"`
}

func IndexDocsEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(IndexDocsRequest)
		if !ok {
			return nil, ErrInvalidRequest
		}

		return svc.IndexDocs(ctx, req.Docs)
	}
}

type RetrieveDocsRequest struct {
	Query string `json:"query" form:"query"`
	TopK  int    `json:"top_k,omitempty" form:"top_k"`
}

func RetrieveDocsEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(RetrieveDocsRequest)
		if !ok {
			return nil, ErrInvalidRequest
		}

		return svc.RetrieveDocs(ctx, req.Query, req.TopK)
	}
}
