package stdio

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	mcpE "github.com/imind-lab/mcp-rag/mcp"
)

var ErrEndpointExists = errors.New("endpoint already exists")

// Server serves newline-delimited JSON-RPC requests, one response line per request.
type Server interface {
	AddEndpoint(method mcp.MCPMethod, endpoint mcpE.MCPEndpoint) error
	Listen(ctx context.Context) error
}

func NewServer(in io.Reader, out io.Writer) Server {
	log := zap.L().With(
		zap.String("transport", "stdio"),
	)

	return &server{
		in:        in,
		out:       out,
		endpoints: make(map[mcp.MCPMethod]mcpE.MCPEndpoint),
		log:       log,
	}
}

type server struct {
	in        io.Reader
	out       io.Writer
	endpoints map[mcp.MCPMethod]mcpE.MCPEndpoint
	log       *zap.Logger
	mu        sync.Mutex
}

func (s *server) AddEndpoint(method mcp.MCPMethod, endpoint mcpE.MCPEndpoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.endpoints[method]
	if ok {
		return ErrEndpointExists
	}

	s.endpoints[method] = endpoint
	return nil
}

// Listen blocks until the input is exhausted or ctx is done.
func (s *server) Listen(ctx context.Context) error {
	scanner := bufio.NewScanner(s.in)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	lines := make(chan string)
	errs := make(chan error, 1)

	go func(ctx context.Context, lines chan<- string, errs chan<- error) {
		defer close(lines)

		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}

		if err := scanner.Err(); err != nil {
			errs <- err
		}
	}(ctx, lines, errs)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case err := <-errs:
			if errors.Is(err, io.EOF) {
				return nil
			}

			return err

		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-errs:
					return err
				default:
					return nil
				}
			}

			if line == "" {
				continue
			}

			resp, ok := s.handle(ctx, line)
			if !ok {
				continue
			}

			bs, err := json.Marshal(resp)
			if err != nil {
				s.log.Error(err.Error())
				continue
			}

			if _, err := fmt.Fprintf(s.out, "%s\n", bs); err != nil {
				return err
			}
		}
	}
}

func (s *server) handle(ctx context.Context, line string) (mcp.JSONRPCMessage, bool) {
	var req mcpE.JSONRPCRequest
	if err := json.Unmarshal([]byte(line), &req); err != nil {
		s.log.Warn("invalid request", zap.Error(err))
		return nil, false
	}

	// notifications carry no id and expect no response
	if req.ID.IsNil() {
		return nil, false
	}

	s.mu.Lock()
	endpoint, ok := s.endpoints[req.Method]
	s.mu.Unlock()

	if !ok {
		return mcpE.ErrorResponse(req.ID, mcp.METHOD_NOT_FOUND, "method not found"), true
	}

	return endpoint(ctx, req), true
}
