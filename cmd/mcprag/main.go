package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/imind-lab/mcp-rag"
	"github.com/imind-lab/mcp-rag/chat"
	"github.com/imind-lab/mcp-rag/console"
	"github.com/imind-lab/mcp-rag/toolbox"

	openaiC "github.com/imind-lab/mcp-rag/chat/openai"
)

func main() {
	cmd := &cli.Command{
		Name:  "mcprag",
		Usage: "Medical RAG assistant backed by an MCP tool server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "path",
				Usage: "Path to the configuration directory",
			},
			&cli.StringFlag{
				Name:    "api-key",
				Usage:   "Chat model API key",
				Sources: cli.EnvVars("OPENAI_API_KEY"),
			},
			&cli.StringFlag{
				Name:    "base-url",
				Usage:   "Chat model API base URL",
				Sources: cli.EnvVars("OPENAI_BASE_URL"),
			},
			&cli.StringFlag{
				Name:  "model",
				Usage: "Chat model name",
			},
			&cli.BoolFlag{
				Name:  "no-seed",
				Usage: "Do not index the seed documents at startup",
			},
		},
		ArgsUsage: "[server command and arguments...]",
		Action:    run,
	}

	err := cmd.Run(context.Background(), os.Args)
	if err != nil {
		log.Fatal(err.Error())
	}
}

func loadConfig(path string) (mcprag.ClientConfig, error) {
	cfg := mcprag.DefaultClientConfig()

	f, err := os.Open(filepath.Join(path, "client.yaml"))
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

func seed(ctx context.Context, tb chat.Toolbox, docs []string) (string, error) {
	args, err := json.Marshal(map[string]any{
		"docs": docs,
	})

	if err != nil {
		return "", err
	}

	return tb.Call(ctx, mcprag.IndexDocsToolName, string(args))
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
		cfg.Chat.APIKey = apiKey
	}

	if baseURL := cmd.String("base-url"); baseURL != "" {
		cfg.Chat.BaseURL = baseURL
	}

	if model := cmd.String("model"); model != "" {
		cfg.Chat.Model = model
	}

	if args := cmd.Args().Slice(); len(args) > 0 {
		cfg.MCPServer.Transport = mcprag.TransportTypeStdio
		cfg.MCPServer.Command = args[0]
		cfg.MCPServer.Arguments = args[1:]
	}

	tb, err := toolbox.New(ctx, cfg.MCPServer)
	if err != nil {
		return err
	}
	defer tb.Close()

	if !cmd.Bool("no-seed") && len(cfg.SeedDocs) > 0 {
		result, err := seed(ctx, tb, cfg.SeedDocs)
		if err != nil {
			return err
		}

		fmt.Println(result)
	}

	model := openaiC.NewModel(cfg.Chat)

	driver, err := chat.NewDriver(ctx, cfg.Chat, model, tb)
	if err != nil {
		return err
	}

	names := make([]string, 0)
	for _, tool := range driver.Tools() {
		names = append(names, tool.Name)
	}

	log.Info("connected to tool server",
		zap.String("transport", string(cfg.MCPServer.Transport)),
		zap.Strings("tools", names),
	)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		sign := <-quit
		log.Info("graceful shutdown", zap.String("signal", sign.String()))

		cancel()
		os.Stdin.Close()
	}()

	fmt.Println("医学知识问答系统已启动")

	err = console.New(os.Stdin, os.Stdout).Run(ctx, driver)
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, os.ErrClosed) {
		return err
	}

	fmt.Println("感谢使用，再见！")
	return nil
}
