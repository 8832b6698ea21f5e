package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"htsflow/internal/common"
)

func TestNewClient(t *testing.T) {
	tests := []struct {
		wantErr error
		name    string
		config  Config
	}{
		{
			name:   "valid config",
			config: Config{APIKey: "test-key"},
		},
		{
			name:    "missing API key",
			config:  Config{},
			wantErr: common.ErrAPIKeyMissing,
		},
		{
			name: "custom model and settings",
			config: Config{
				APIKey:      "test-key",
				Model:       "claude-3-5-haiku-20241022",
				Temperature: 0.5,
				MaxTokens:   200,
				Timeout:     40 * time.Second,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.config)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.NotNil(t, client)
			}
		})
	}
}

func TestClientTimeoutBounds(t *testing.T) {
	client, err := NewClient(Config{APIKey: "test-key", Timeout: 5 * time.Minute})
	require.NoError(t, err)

	ac, ok := client.(*anthropicClient)
	require.True(t, ok)
	assert.Equal(t, MaxTimeout, ac.httpClient.Timeout)

	client, err = NewClient(Config{APIKey: "test-key"})
	require.NoError(t, err)
	ac, ok = client.(*anthropicClient)
	require.True(t, ok)
	assert.Equal(t, DefaultTimeout, ac.httpClient.Timeout)
}

func TestClassifyRequestShape(t *testing.T) {
	var captured struct {
		Model       string  `json:"model"`
		MaxTokens   int     `json:"max_tokens"`
		Temperature float64 `json:"temperature"`
		Messages    []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))

		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"ok"}]}`))
	}))
	defer server.Close()

	client, err := NewClient(Config{APIKey: "test-key", BaseURL: server.URL})
	require.NoError(t, err)

	raw, err := client.Classify(context.Background(), "classify this product")
	require.NoError(t, err)
	assert.Contains(t, string(raw), "ok")

	assert.Equal(t, DefaultModel, captured.Model)
	assert.Equal(t, DefaultMaxTokens, captured.MaxTokens)
	assert.InDelta(t, DefaultTemperature, captured.Temperature, 0.001)
	require.Len(t, captured.Messages, 1)
	assert.Equal(t, "user", captured.Messages[0].Role)
	assert.Equal(t, "classify this product", captured.Messages[0].Content)
}

func TestClassifyStatusMapping(t *testing.T) {
	tests := []struct {
		wantErr    error
		name       string
		statusCode int
	}{
		{name: "unauthorized", statusCode: http.StatusUnauthorized, wantErr: common.ErrAPIKeyInvalid},
		{name: "payment required", statusCode: http.StatusPaymentRequired, wantErr: common.ErrProviderQuota},
		{name: "rate limited", statusCode: http.StatusTooManyRequests, wantErr: common.ErrRateLimited},
		{name: "internal server error", statusCode: http.StatusInternalServerError, wantErr: common.ErrProviderServer},
		{name: "bad gateway", statusCode: http.StatusBadGateway, wantErr: common.ErrProviderServer},
		{name: "service unavailable", statusCode: http.StatusServiceUnavailable, wantErr: common.ErrProviderServer},
		{name: "gateway timeout", statusCode: http.StatusGatewayTimeout, wantErr: common.ErrProviderServer},
		{name: "unexpected status", statusCode: http.StatusTeapot, wantErr: common.ErrClassificationFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.statusCode)
				_, _ = w.Write([]byte(`{"error":{"message":"nope"}}`))
			}))
			defer server.Close()

			client, err := NewClient(Config{APIKey: "test-key", BaseURL: server.URL})
			require.NoError(t, err)

			_, err = client.Classify(context.Background(), "prompt")
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestClassifyTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {}))
	server.Close() // connection refused from here on

	client, err := NewClient(Config{APIKey: "test-key", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = client.Classify(context.Background(), "prompt")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrNetwork)
}
