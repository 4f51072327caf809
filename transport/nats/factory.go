package nats

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-kit/kit/endpoint"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/micro"

	"github.com/imind-lab/mcp-rag"
)

func MakeEndpoints(nc *nats.Conn, prefix string, timeout time.Duration) *mcprag.EndpointSet {
	return &mcprag.EndpointSet{
		IndexDocs:    IndexDocsEndpoint(nc, prefix+"."+IndexDocsTopic, timeout),
		RetrieveDocs: RetrieveDocsEndpoint(nc, prefix+"."+RetrieveDocsTopic, timeout),
	}
}

func IndexDocsEndpoint(nc *nats.Conn, topic string, timeout time.Duration) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(mcprag.IndexDocsRequest)
		if !ok {
			return nil, mcprag.ErrInvalidRequest
		}

		return requestString(ctx, nc, topic, &req, timeout)
	}
}

func RetrieveDocsEndpoint(nc *nats.Conn, topic string, timeout time.Duration) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(mcprag.RetrieveDocsRequest)
		if !ok {
			return nil, mcprag.ErrInvalidRequest
		}

		return requestString(ctx, nc, topic, &req, timeout)
	}
}

func requestString(ctx context.Context, nc *nats.Conn, topic string, req any, timeout time.Duration) (string, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return "", err
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	resp, err := nc.RequestWithContext(ctx, topic, data)
	if err != nil {
		return "", err
	}

	if err := Error(resp); err != nil {
		return "", err
	}

	return string(resp.Data), nil
}

// Error extracts the error a micro handler reported in the reply headers.
func Error(msg *nats.Msg) error {
	if msg == nil {
		return errors.New("nil message")
	}

	code := msg.Header.Get(micro.ErrorCodeHeader)
	if code == "" {
		return nil
	}

	description := msg.Header.Get(micro.ErrorHeader)
	if description == "" {
		description = "unknown error"
	}

	return errors.New(code + ":" + description)
}
