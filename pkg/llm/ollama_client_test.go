package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrew/plandex-lite/pkg/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, cfg ModelConfig) *OllamaClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewOllamaClient(Options{Endpoint: srv.URL + "/api/chat", Model: "test-model", Config: cfg}, nil)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestOllamaClientSendsNonStreamingRequest(t *testing.T) {
	var got map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/chat", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"model":"test-model","created_at":"2024-01-01T00:00:00Z","message":{"role":"assistant","content":"hello"},"done":true}`))
	}, ModelConfig{})

	res, ok := Ask(context.Background(), c, "be brief", "hi")
	require.True(t, ok)
	assert.Equal(t, models.ChatResult{ModelID: "test-model", Content: "hello", Done: true}, res)

	assert.Equal(t, "test-model", got["model"])
	assert.Equal(t, false, got["stream"])
	assert.NotContains(t, got, "options")
	msgs, _ := got["messages"].([]any)
	require.Len(t, msgs, 2)
	assert.Equal(t, map[string]any{"role": "system", "content": "be brief"}, msgs[0])
	assert.Equal(t, map[string]any{"role": "user", "content": "hi"}, msgs[1])
}

func TestOllamaClientSendsOptions(t *testing.T) {
	var got OllamaRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"message":{"role":"assistant","content":""}}`))
	}, ModelConfig{Temperature: 0.5, MaxTokens: 64})

	res, ok := c.Chat(context.Background(), nil)
	require.True(t, ok)
	assert.Equal(t, "test-model", res.ModelID, "falls back to the configured model")
	assert.Empty(t, res.Content)
	require.NotNil(t, got.Options)
	assert.Equal(t, float32(0.5), got.Options.Temperature)
	assert.Equal(t, 64, got.Options.MaxTokens)
}

func TestOllamaClientFailuresAreAbsent(t *testing.T) {
	tests := map[string]http.HandlerFunc{
		"server error": func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "model not loaded", http.StatusInternalServerError)
		},
		"not found": func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		},
		"unparsable body": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("definitely not json"))
		},
		"missing message": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"model":"m","done":true}`))
		},
	}
	for name, handler := range tests {
		t.Run(name, func(t *testing.T) {
			c := newTestClient(t, handler, ModelConfig{})
			res, ok := Ask(context.Background(), c, "sys", "user")
			assert.False(t, ok)
			assert.Equal(t, models.ChatResult{}, res)
		})
	}
}

func TestOllamaClientUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	endpoint := srv.URL + "/api/chat"
	srv.Close()

	c := NewOllamaClient(Options{Endpoint: endpoint, Model: "m"}, nil)
	_, ok := Ask(context.Background(), c, "sys", "user")
	assert.False(t, ok)
}

func TestNewClientTransports(t *testing.T) {
	c, err := NewClient(Options{}, nil)
	require.NoError(t, err)
	oc, isHTTP := c.(*OllamaClient)
	require.True(t, isHTTP)
	assert.Equal(t, DefaultEndpoint, oc.endpoint)
	assert.Equal(t, DefaultModel, oc.modelName)

	c, err = NewClient(Options{Transport: TransportSDK}, nil)
	require.NoError(t, err)
	assert.IsType(t, &SDKClient{}, c)

	_, err = NewClient(Options{Transport: "carrier-pigeon"}, nil)
	assert.Error(t, err)
}
