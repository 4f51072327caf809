package nats

import (
	"context"
	"encoding/json"

	"github.com/go-kit/kit/endpoint"
	"github.com/nats-io/nats.go/micro"

	"github.com/imind-lab/mcp-rag"
)

func AddEndpoints(group micro.Group, endpoints mcprag.EndpointSet) error {
	if err := group.AddEndpoint(IndexDocsTopic, IndexDocsHandler(endpoints.IndexDocs)); err != nil {
		return err
	}

	return group.AddEndpoint(RetrieveDocsTopic, RetrieveDocsHandler(endpoints.RetrieveDocs))
}

func IndexDocsHandler(endpoint endpoint.Endpoint) micro.HandlerFunc {
	return func(r micro.Request) {
		var req mcprag.IndexDocsRequest
		if err := json.Unmarshal(r.Data(), &req); err != nil {
			r.Error("400", err.Error(), nil)
			return
		}

		respond(r, endpoint, req)
	}
}

func RetrieveDocsHandler(endpoint endpoint.Endpoint) micro.HandlerFunc {
	return func(r micro.Request) {
		var req mcprag.RetrieveDocsRequest
		if err := json.Unmarshal(r.Data(), &req); err != nil {
			r.Error("400", err.Error(), nil)
			return
		}

		respond(r, endpoint, req)
	}
}

func respond(r micro.Request, endpoint endpoint.Endpoint, req any) {
	ctx := context.Background()
	resp, err := endpoint(ctx, req)
	if err != nil {
		r.Error("417", err.Error(), nil)
		return
	}

	result, ok := resp.(string)
	if !ok {
		r.Error("500", "invalid response type", nil)
		return
	}

	r.Respond([]byte(result))
}
