package main

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/micro"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/imind-lab/mcp-rag"
	"github.com/imind-lab/mcp-rag/embedding"
	"github.com/imind-lab/mcp-rag/persistence/chromem"
	"github.com/imind-lab/mcp-rag/persistence/flat"
	"github.com/imind-lab/mcp-rag/transport/stdio"
	"github.com/imind-lab/mcp-rag/vector"

	mcpE "github.com/imind-lab/mcp-rag/mcp"
	openaiE "github.com/imind-lab/mcp-rag/embedding/openai"
	httpT "github.com/imind-lab/mcp-rag/transport/http"
	natsT "github.com/imind-lab/mcp-rag/transport/nats"
)

func main() {
	cmd := &cli.Command{
		Name:  "mcprag_server",
		Usage: "MCP RAG tool server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "path",
				Usage: "Path to the configuration directory",
			},
			&cli.StringFlag{
				Name:    "api-key",
				Usage:   "Embedding API key",
				Sources: cli.EnvVars("OPENAI_API_KEY"),
			},
			&cli.StringFlag{
				Name:    "base-url",
				Usage:   "Embedding API base URL",
				Sources: cli.EnvVars("OPENAI_BASE_URL"),
			},
			&cli.StringFlag{
				Name:    "nats",
				Usage:   "NATS server URL, enables the NATS transport",
				Sources: cli.EnvVars("NATS_URL"),
			},
			&cli.BoolFlag{
				Name:  "http",
				Usage: "Enable HTTP transport",
				Value: false,
			},
			&cli.StringFlag{
				Name:  "http-addr",
				Usage: "HTTP server address",
				Value: ":8080",
			},
		},
		Action: run,
	}

	err := cmd.Run(context.Background(), os.Args)
	if err != nil {
		log.Fatal(err.Error())
	}
}

func loadConfig(path string) (mcprag.Config, error) {
	cfg := mcprag.DefaultConfig()

	f, err := os.Open(filepath.Join(path, "config.yaml"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}

		return cfg, err
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func newEmbedder(cfg embedding.Config) (embedding.Embedder, error) {
	switch cfg.Provider {
	case embedding.ProviderOpenAI, "":
		return openaiE.NewEmbedder(cfg), nil

	default:
		return chromem.NewEmbedder(cfg)
	}
}

func newIndex(cfg vector.Config) (vector.Index, error) {
	switch cfg.Backend {
	case vector.BackendFlat, "":
		return flat.NewIndex(cfg), nil

	case vector.BackendChromem:
		return chromem.NewChromemIndex(cfg)

	default:
		return nil, errors.New("unsupported vector backend: " + string(cfg.Backend))
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	path := cmd.String("path")
	if path == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return err
		}

		path = filepath.Join(homeDir, ".imind", "mcp-rag")
	}

	log, err := zap.NewDevelopment()
	if err != nil {
		return err
	}
	defer log.Sync()

	zap.ReplaceGlobals(log)

	cfg, err := loadConfig(path)
	if err != nil {
		return err
	}

	if apiKey := cmd.String("api-key"); apiKey != "" {
		cfg.Embedding.APIKey = apiKey
	}

	if baseURL := cmd.String("base-url"); baseURL != "" {
		cfg.Embedding.BaseURL = baseURL
	}

	if natsURL := cmd.String("nats"); natsURL != "" {
		cfg.NATS.Enabled = true
		cfg.NATS.URL = natsURL
	}

	embedder, err := newEmbedder(cfg.Embedding)
	if err != nil {
		return err
	}

	index, err := newIndex(cfg.Vector)
	if err != nil {
		return err
	}

	store := mcprag.NewStore(index, embedder)

	var svc mcprag.Service
	svc = mcprag.NewService(store)
	svc = mcprag.LoggingMiddleware(log)(svc)

	endpoints := mcprag.MakeEndpoints(svc)
	mcpEndpoints := mcpE.MakeEndpoints(svc)

	// Add NATS Transport
	if cfg.NATS.Enabled {
		opts := []nats.Option{
			nats.Name("MCPRAG Server"),
		}

		if cfg.NATS.Creds != "" {
			opts = append(opts, nats.UserCredentials(cfg.NATS.Creds))
		}

		nc, err := nats.Connect(cfg.NATS.URL, opts...)
		if err != nil {
			return err
		}
		defer nc.Drain()

		srv, err := micro.AddService(nc, micro.Config{
			Name:    "mcprag",
			Version: "1.0.0",
		})

		if err != nil {
			return err
		}
		defer srv.Stop()

		root := srv.AddGroup(cfg.NATS.Topic)
		if err := natsT.AddEndpoints(root, endpoints); err != nil {
			return err
		}

		log.Info("nats transport enabled",
			zap.String("url", cfg.NATS.URL),
			zap.String("topic", cfg.NATS.Topic),
		)
	}

	// Add HTTP Transport
	if cmd.Bool("http") {
		gin.SetMode(gin.ReleaseMode)

		r := gin.New()
		r.Use(gin.Recovery())

		httpT.AddRouters(r, endpoints)
		httpT.AddStreamableRouters(r, mcpEndpoints)

		httpAddr := cmd.String("http-addr")
		go func() {
			if err := r.Run(httpAddr); err != nil {
				log.Error(err.Error(), zap.String("transport", "http"))
			}
		}()
	}

	// stdout belongs to the stdio transport; all logs go to stderr
	s := stdio.NewServer(os.Stdin, os.Stdout)
	for method, endpoint := range mcpEndpoints {
		if err := s.AddEndpoint(method, endpoint); err != nil {
			return err
		}
	}

	done := make(chan error, 1)
	go func() {
		done <- s.Listen(ctx)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	daemon := cfg.NATS.Enabled || cmd.Bool("http")
	return wait(log, quit, done, daemon)
}

// wait blocks until a signal arrives. Without another transport the end of
// stdin also stops the server.
func wait(log *zap.Logger, quit <-chan os.Signal, done <-chan error, daemon bool) error {
	for {
		select {
		case sign := <-quit:
			log.Info("graceful shutdown", zap.String("signal", sign.String()))
			return nil

		case err := <-done:
			if err != nil && !errors.Is(err, context.Canceled) {
				return err
			}

			log.Info("stdin closed")

			if !daemon {
				return nil
			}

			// keep serving the other transports
			done = nil
		}
	}
}
