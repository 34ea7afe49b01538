package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/andrew/plandex-lite/pkg/models"
)

// OllamaClient posts non-streaming chat requests to an Ollama-compatible endpoint
type OllamaClient struct {
	endpoint   string
	httpClient *http.Client
	modelName  string
	config     ModelConfig
	logger     *zap.Logger
}

// OllamaRequest represents a request to the chat endpoint
type OllamaRequest struct {
	Model    string          `json:"model"`
	Messages []Message       `json:"messages"`
	Stream   bool            `json:"stream"`
	Options  *RequestOptions `json:"options,omitempty"`
}

// Message represents a chat message on the wire
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// RequestOptions represents parameter options for the model
type RequestOptions struct {
	Temperature float32 `json:"temperature,omitempty"`
	TopP        float32 `json:"top_p,omitempty"`
	MaxTokens   int     `json:"num_predict,omitempty"`
}

// OllamaResponse represents a response from the chat endpoint. Message is a
// pointer so a body without it can be told apart from an empty reply.
type OllamaResponse struct {
	Model     string   `json:"model"`
	CreatedAt string   `json:"created_at,omitempty"`
	Message   *Message `json:"message"`
	Done      bool     `json:"done"`
}

// NewOllamaClient creates a client that talks to opts.Endpoint directly
func NewOllamaClient(opts Options, logger *zap.Logger) *OllamaClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OllamaClient{
		endpoint:   opts.Endpoint,
		httpClient: &http.Client{Timeout: opts.Timeout},
		modelName:  opts.Model,
		config:     opts.Config,
		logger:     logger,
	}
}

// Chat sends the conversation and returns the assistant reply
func (c *OllamaClient) Chat(ctx context.Context, messages []models.Message) (models.ChatResult, bool) {
	wire := make([]Message, len(messages))
	for i, msg := range messages {
		wire[i] = Message{Role: string(msg.Role), Content: msg.Content}
	}

	req := OllamaRequest{
		Model:    c.modelName,
		Messages: wire,
		Options:  c.options(),
	}

	resp, err := c.sendChatRequest(ctx, req)
	if err != nil {
		c.logger.Warn("chat request failed", zap.String("endpoint", c.endpoint), zap.Error(err))
		return models.ChatResult{}, false
	}

	model := resp.Model
	if model == "" {
		model = c.modelName
	}
	return models.ChatResult{
		ModelID: model,
		Content: resp.Message.Content,
		Done:    resp.Done,
	}, true
}

func (c *OllamaClient) options() *RequestOptions {
	if c.config == (ModelConfig{}) {
		return nil
	}
	return &RequestOptions{
		Temperature: c.config.Temperature,
		TopP:        c.config.TopP,
		MaxTokens:   c.config.MaxTokens,
	}
}

// sendChatRequest performs the POST and decodes the single JSON response
func (c *OllamaClient) sendChatRequest(ctx context.Context, req OllamaRequest) (*OllamaResponse, error) {
	reqBody, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	c.logger.Debug("sending chat request", zap.String("endpoint", c.endpoint), zap.String("model", c.modelName), zap.Int("messages", len(req.Messages)))
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("Ollama API error (status %d): %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	var out OllamaResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("failed to parse Ollama response: %w", err)
	}
	if out.Message == nil {
		return nil, fmt.Errorf("Ollama response has no message")
	}
	return &out, nil
}

// Close releases idle connections
func (c *OllamaClient) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}
