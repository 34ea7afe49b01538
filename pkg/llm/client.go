package llm

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/andrew/plandex-lite/pkg/models"
)

// Transport names accepted by NewClient
const (
	TransportHTTP = "http"
	TransportSDK  = "sdk"
)

const (
	DefaultModel    = "llama3"
	DefaultEndpoint = "http://localhost:11434/api/chat"
)

// Client is the interface for single-turn chat completion calls.
//
// Chat never returns an error: a failed call (unreachable backend, non-2xx
// status, unparsable body) is logged and reported as ok == false so callers can
// substitute their own fallback and carry on.
type Client interface {
	Chat(ctx context.Context, messages []models.Message) (result models.ChatResult, ok bool)
	Close() error
}

// ModelConfig holds configuration parameters for model generation.
// Zero values are left to the backend's defaults.
type ModelConfig struct {
	Temperature float32 `yaml:"temperature"`
	TopP        float32 `yaml:"top_p"`
	MaxTokens   int     `yaml:"max_tokens"`
}

// Options selects and configures a backend client
type Options struct {
	Transport string
	Endpoint  string
	Model     string
	Timeout   time.Duration
	Config    ModelConfig
}

// NewClient creates a client for the configured transport, defaulting to the
// plain HTTP client
func NewClient(opts Options, logger *zap.Logger) (Client, error) {
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.Endpoint == "" {
		opts.Endpoint = DefaultEndpoint
	}

	switch opts.Transport {
	case "", TransportHTTP:
		return NewOllamaClient(opts, logger), nil
	case TransportSDK:
		return NewSDKClient(opts, logger)
	default:
		return nil, fmt.Errorf("unknown transport %q (want %s or %s)", opts.Transport, TransportHTTP, TransportSDK)
	}
}

// Ask sends a single-turn conversation: the system prompt followed by the
// user prompt
func Ask(ctx context.Context, client Client, system, prompt string) (models.ChatResult, bool) {
	messages := []models.Message{
		{Role: models.RoleSystem, Content: system},
		{Role: models.RoleUser, Content: prompt},
	}
	return client.Chat(ctx, messages)
}
