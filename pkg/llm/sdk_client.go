package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"
	"go.uber.org/zap"

	"github.com/andrew/plandex-lite/pkg/models"
)

const chatPath = "/api/chat"

// SDKClient sends chat requests through the official Ollama Go client
type SDKClient struct {
	client     *api.Client
	httpClient *http.Client
	modelName  string
	options    map[string]interface{}
	logger     *zap.Logger
}

// NewSDKClient creates a client for the server behind opts.Endpoint. The
// endpoint may be given with or without its /api/chat path.
func NewSDKClient(opts Options, logger *zap.Logger) (*SDKClient, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	base, err := baseURL(opts.Endpoint)
	if err != nil {
		return nil, err
	}
	httpClient := &http.Client{Timeout: opts.Timeout}
	return &SDKClient{
		client:     api.NewClient(base, httpClient),
		httpClient: httpClient,
		modelName:  opts.Model,
		options:    sdkOptions(opts.Config),
		logger:     logger,
	}, nil
}

func baseURL(endpoint string) (*url.URL, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid endpoint %q: scheme and host are required", endpoint)
	}
	u.Path = strings.TrimSuffix(strings.TrimSuffix(u.Path, "/"), chatPath)
	return u, nil
}

func sdkOptions(cfg ModelConfig) map[string]interface{} {
	opts := map[string]interface{}{}
	if cfg.Temperature != 0 {
		opts["temperature"] = cfg.Temperature
	}
	if cfg.TopP != 0 {
		opts["top_p"] = cfg.TopP
	}
	if cfg.MaxTokens != 0 {
		opts["num_predict"] = cfg.MaxTokens
	}
	if len(opts) == 0 {
		return nil
	}
	return opts
}

// Chat sends the conversation as a single non-streaming request
func (c *SDKClient) Chat(ctx context.Context, messages []models.Message) (models.ChatResult, bool) {
	wire := make([]api.Message, len(messages))
	for i, msg := range messages {
		wire[i] = api.Message{Role: string(msg.Role), Content: msg.Content}
	}

	stream := false
	req := &api.ChatRequest{
		Model:    c.modelName,
		Messages: wire,
		Stream:   &stream,
		Options:  c.options,
	}

	var (
		result   models.ChatResult
		received bool
	)
	err := c.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		received = true
		result.ModelID = resp.Model
		result.Content += resp.Message.Content
		result.Done = resp.Done
		return nil
	})
	if err != nil {
		c.logger.Warn("chat request failed", zap.String("model", c.modelName), zap.Error(err))
		return models.ChatResult{}, false
	}
	if !received {
		c.logger.Warn("chat request returned no response", zap.String("model", c.modelName))
		return models.ChatResult{}, false
	}
	if result.ModelID == "" {
		result.ModelID = c.modelName
	}
	return result, true
}

// Close releases idle connections
func (c *SDKClient) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}
