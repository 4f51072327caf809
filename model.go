package mcprag

import (
	"encoding/json"
	"errors"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/imind-lab/mcp-rag/chat"
	"github.com/imind-lab/mcp-rag/embedding"
	"github.com/imind-lab/mcp-rag/vector"
)

var (
	ErrEmptyDocuments           = errors.New("docs must not be empty")
	ErrInvalidTopK              = errors.New("top_k must be a positive integer")
	ErrEmbeddingCount           = errors.New("embedding count does not match input count")
	ErrToolNotFound             = errors.New("tool not found")
	ErrInvalidArguments         = errors.New("invalid tool arguments")
	ErrInvalidRequest           = errors.New("invalid request type")
	ErrInvalidResponse          = errors.New("invalid response type")
	ErrUnsupportedTransportType = errors.New("unsupported transport type")
)

const (
	// DefaultTopK is the number of documents retrieve_docs returns when top_k is omitted.
	DefaultTopK int = 3

	// NoResults is returned by retrieve_docs when nothing can be retrieved.
	NoResults string = "未检索到相关文档。"
)

// Config is the tool server configuration.
type Config struct {
	Embedding embedding.Config `yaml:"embedding"`
	Vector    vector.Config    `yaml:"vector"`
	NATS      NATSConfig       `yaml:"nats"`
}

type NATSConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
	Creds   string `yaml:"creds"`
	Topic   string `yaml:"topic"`
}

func DefaultConfig() Config {
	return Config{
		Embedding: embedding.Config{
			Provider: embedding.ProviderOpenAI,
			Model:    "text-embedding-3-small",
		},
		Vector: vector.Config{
			Backend:    vector.BackendFlat,
			Dimension:  1536,
			Collection: "docs",
		},
		NATS: NATSConfig{
			Topic: "mcprag",
		},
	}
}

// ClientConfig is the RAG client configuration.
type ClientConfig struct {
	Chat      chat.Config     `yaml:"chat"`
	MCPServer MCPServerConfig `yaml:"mcpServer"`
	SeedDocs  []string        `yaml:"seedDocs"`
}

func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Chat: chat.DefaultConfig(),
		MCPServer: MCPServerConfig{
			Transport: TransportTypeStdio,
			Command:   "mcprag_server",
		},
		SeedDocs: SampleMedicalDocs(),
	}
}

// SampleMedicalDocs returns the documents the client indexes on startup.
func SampleMedicalDocs() []string {
	return []string{
		"糖尿病是一种慢性代谢性疾病，主要特征是血糖水平持续升高。",
		"高血压是指动脉血压持续升高，通常定义为收缩压≥200mmHg和/或舒张压≥90mmHg。",
		"冠心病是由于冠状动脉粥样硬化导致心肌缺血缺氧的疾病。",
		"哮喘是一种慢性气道炎症性疾病，表现为反复发作的喘息、气促、胸闷和咳嗽。",
		"肺炎是由细菌、病毒或其他病原体引起的肺部感染，常见症状包括发热、咳嗽和呼吸困难。",
	}
}

type TransportType string

const (
	TransportTypeStdio          TransportType = "stdio"
	TransportTypeSSE            TransportType = "sse"
	TransportTypeStreamableHTTP TransportType = "streamable-http"
	TransportTypeNATS           TransportType = "nats"
)

type Duration time.Duration

func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

func (d Duration) MarshalJSON() ([]byte, error) {
	str := d.Duration().String()
	return json.Marshal(str)
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}

	duration, err := time.ParseDuration(str)
	if err != nil {
		return err
	}

	*d = Duration(duration)
	return nil
}

func (d Duration) MarshalYAML() (any, error) {
	return d.Duration().String(), nil
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var str string
	if err := value.Decode(&str); err != nil {
		return err
	}

	duration, err := time.ParseDuration(str)
	if err != nil {
		return err
	}

	*d = Duration(duration)
	return nil
}

// MCPServerConfig describes how the client reaches the tool server.
// For the nats transport URL is the NATS server and Topic the service group.
type MCPServerConfig struct {
	Transport   TransportType `json:"transport" yaml:"transport"`
	Command     string        `json:"command" yaml:"command"`
	URL         string        `json:"url" yaml:"url"`
	Arguments   []string      `json:"args" yaml:"args"`
	Environment []string      `json:"env" yaml:"env"`
	Topic       string        `json:"topic,omitempty" yaml:"topic"`
	Creds       string        `json:"creds,omitempty" yaml:"creds"`
	Timeout     Duration      `json:"timeout" yaml:"timeout"`
}
