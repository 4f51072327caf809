package mcprag

import (
	"context"
)

// ProxyMiddleware turns a remote endpoint set into a Service.
// The wrapped service is ignored.
func ProxyMiddleware(endpoints *EndpointSet) ServiceMiddleware {
	return func(next Service) Service {
		return &proxyMiddleware{
			endpoints: endpoints,
		}
	}
}

type proxyMiddleware struct {
	endpoints *EndpointSet
}

func (mw *proxyMiddleware) IndexDocs(ctx context.Context, docs []string) (string, error) {
	req := IndexDocsRequest{
		Docs: docs,
	}

	resp, err := mw.endpoints.IndexDocs(ctx, req)
	if err != nil {
		return "", err
	}

	result, ok := resp.(string)
	if !ok {
		return "", ErrInvalidResponse
	}

	return result, nil
}

func (mw *proxyMiddleware) RetrieveDocs(ctx context.Context, query string, topK ...int) (string, error) {
	n := 0
	if len(topK) > 0 {
		n = topK[0]
	}

	req := RetrieveDocsRequest{
		Query: query,
		TopK:  n,
	}

	resp, err := mw.endpoints.RetrieveDocs(ctx, req)
	if err != nil {
		return "", err
	}

	result, ok := resp.(string)
	if !ok {
		return "", ErrInvalidResponse
	}

	return result, nil
}
