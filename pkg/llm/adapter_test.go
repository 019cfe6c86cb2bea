package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"bullion-hq/assay/internal/llmtest"
)

func testConfig(name string, server *llmtest.Server) ProviderConfig {
	return ProviderConfig{
		Name:     name,
		APIKey:   "test-key-" + name,
		Model:    "test-model",
		Endpoint: server.Endpoint(llmtest.CompletionsPath),
		Timeout:  5 * time.Second,
	}
}

func testRequest() *GenerationRequest {
	return &GenerationRequest{
		Messages:    BuildMessages("You are concise.", "Say hello"),
		Temperature: 0.4,
		MaxTokens:   64,
	}
}

func TestAdapter_Chat(t *testing.T) {
	mock := llmtest.NewServer()
	defer mock.Close()
	mock.Script(llmtest.CompletionsPath, llmtest.OK("Hello, world!", "test-model"))

	adapter, err := NewAdapter(testConfig("piapi", mock))
	llmtest.AssertNoError(t, err)
	defer adapter.Close()

	text, err := adapter.Chat(context.Background(), testRequest())
	llmtest.AssertNoError(t, err)
	llmtest.AssertEqual(t, text, "Hello, world!")
	llmtest.AssertEqual(t, mock.RequestCount(), 1)

	req := mock.Requests()[0]
	llmtest.AssertEqual(t, req.Authorization, "Bearer test-key-piapi")
	llmtest.AssertEqual(t, req.ContentType, "application/json")
}

func TestAdapter_Chat_WireFormat(t *testing.T) {
	mock := llmtest.NewServer()
	defer mock.Close()
	mock.Script(llmtest.CompletionsPath, llmtest.OK("ok", "test-model"))

	adapter, err := NewAdapter(testConfig("openai", mock))
	llmtest.AssertNoError(t, err)
	defer adapter.Close()

	_, err = adapter.Chat(context.Background(), testRequest())
	llmtest.AssertNoError(t, err)

	payload, err := mock.Requests()[0].Payload()
	llmtest.AssertNoError(t, err)

	llmtest.AssertEqual(t, payload["model"], "test-model")
	llmtest.AssertEqual(t, payload["temperature"], 0.4)
	llmtest.AssertEqual(t, payload["max_tokens"], float64(64))

	messages, ok := payload["messages"].([]any)
	if !ok || len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %v", payload["messages"])
	}
	first, _ := messages[0].(map[string]any)
	llmtest.AssertEqual(t, first["role"], "system")
	llmtest.AssertEqual(t, first["content"], "You are concise.")
}

func TestAdapter_Chat_OmitsEmptySystemPrompt(t *testing.T) {
	mock := llmtest.NewServer()
	defer mock.Close()
	mock.Script(llmtest.CompletionsPath, llmtest.OK("ok", "test-model"))

	adapter, err := NewAdapter(testConfig("openai", mock))
	llmtest.AssertNoError(t, err)
	defer adapter.Close()

	req := &GenerationRequest{
		Messages:    BuildMessages("", "just the prompt"),
		Temperature: 0.4,
	}
	_, err = adapter.Chat(context.Background(), req)
	llmtest.AssertNoError(t, err)

	payload, err := mock.Requests()[0].Payload()
	llmtest.AssertNoError(t, err)

	messages, _ := payload["messages"].([]any)
	if len(messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(messages))
	}
	only, _ := messages[0].(map[string]any)
	llmtest.AssertEqual(t, only["role"], "user")
}

func TestAdapter_Chat_OmitsZeroMaxTokens(t *testing.T) {
	mock := llmtest.NewServer()
	defer mock.Close()
	mock.Script(llmtest.CompletionsPath, llmtest.OK("ok", "test-model"))

	adapter, err := NewAdapter(testConfig("groq", mock))
	llmtest.AssertNoError(t, err)
	defer adapter.Close()

	req := testRequest()
	req.MaxTokens = 0
	_, err = adapter.Chat(context.Background(), req)
	llmtest.AssertNoError(t, err)

	payload, err := mock.Requests()[0].Payload()
	llmtest.AssertNoError(t, err)
	if _, present := payload["max_tokens"]; present {
		t.Fatalf("max_tokens should be omitted when zero, got %v", payload["max_tokens"])
	}
}

func TestAdapter_Chat_ExtraOverridesBaseFields(t *testing.T) {
	mock := llmtest.NewServer()
	defer mock.Close()
	mock.Script(llmtest.CompletionsPath, llmtest.OK("ok", "test-model"))

	adapter, err := NewAdapter(testConfig("piapi", mock))
	llmtest.AssertNoError(t, err)
	defer adapter.Close()

	req := testRequest()
	req.Extra = map[string]any{
		"stream":      false,
		"temperature": 0.9,
	}
	_, err = adapter.Chat(context.Background(), req)
	llmtest.AssertNoError(t, err)

	payload, err := mock.Requests()[0].Payload()
	llmtest.AssertNoError(t, err)
	llmtest.AssertEqual(t, payload["stream"], false)
	llmtest.AssertEqual(t, payload["temperature"], 0.9)
}

func TestAdapter_Chat_ProviderExtraMergedIntoBody(t *testing.T) {
	mock := llmtest.NewServer()
	defer mock.Close()
	mock.Script(llmtest.CompletionsPath, llmtest.OK("ok", "test-model"))

	cfg := testConfig("piapi", mock)
	cfg.Extra = map[string]any{"stream": false, "top_p": 0.8}
	adapter, err := NewAdapter(cfg)
	llmtest.AssertNoError(t, err)
	defer adapter.Close()

	req := testRequest()
	req.Extra = map[string]any{"top_p": 0.5}
	_, err = adapter.Chat(context.Background(), req)
	llmtest.AssertNoError(t, err)

	payload, err := mock.Requests()[0].Payload()
	llmtest.AssertNoError(t, err)
	llmtest.AssertEqual(t, payload["stream"], false)
	// request-level extra wins over the provider's configured extra
	llmtest.AssertEqual(t, payload["top_p"], 0.5)
}

func TestAdapter_Chat_RequestModelOverridesDefault(t *testing.T) {
	mock := llmtest.NewServer()
	defer mock.Close()
	mock.Script(llmtest.CompletionsPath, llmtest.OK("ok", "other-model"))

	adapter, err := NewAdapter(testConfig("deepseek", mock))
	llmtest.AssertNoError(t, err)
	defer adapter.Close()

	req := testRequest()
	req.Model = "other-model"
	_, err = adapter.Chat(context.Background(), req)
	llmtest.AssertNoError(t, err)

	payload, err := mock.Requests()[0].Payload()
	llmtest.AssertNoError(t, err)
	llmtest.AssertEqual(t, payload["model"], "other-model")
}

func TestAdapter_Chat_HTTPError(t *testing.T) {
	mock := llmtest.NewServer()
	defer mock.Close()
	mock.Script(llmtest.CompletionsPath, llmtest.APIError(http.StatusTooManyRequests, "slow down"))

	adapter, err := NewAdapter(testConfig("groq", mock))
	llmtest.AssertNoError(t, err)
	defer adapter.Close()

	_, err = adapter.Chat(context.Background(), testRequest())
	llmtest.AssertError(t, err)

	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected *HTTPError, got %T: %v", err, err)
	}
	llmtest.AssertEqual(t, httpErr.Provider, "groq")
	llmtest.AssertEqual(t, httpErr.StatusCode, http.StatusTooManyRequests)
	if !strings.Contains(httpErr.Body, "slow down") {
		t.Errorf("expected body to carry the provider message, got %q", httpErr.Body)
	}
	llmtest.AssertEqual(t, mock.RequestCount(), 1)
}

func TestAdapter_Chat_TruncatesLongErrorBodies(t *testing.T) {
	mock := llmtest.NewServer()
	defer mock.Close()
	long := strings.Repeat("x", 4096)
	mock.Script(llmtest.CompletionsPath, llmtest.Response{
		StatusCode: http.StatusBadGateway,
		Body:       long,
	})

	adapter, err := NewAdapter(testConfig("openai", mock))
	llmtest.AssertNoError(t, err)
	defer adapter.Close()

	_, err = adapter.Chat(context.Background(), testRequest())

	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected *HTTPError, got %T: %v", err, err)
	}
	if len(httpErr.Body) != maxErrorBody {
		t.Errorf("expected body truncated to %d bytes, got %d", maxErrorBody, len(httpErr.Body))
	}
}

func TestAdapter_Chat_TransportError(t *testing.T) {
	mock := llmtest.NewServer()
	mock.Close() // connection refused from here on

	adapter, err := NewAdapter(ProviderConfig{
		Name:     "piapi",
		APIKey:   "k",
		Model:    "m",
		Endpoint: mock.Endpoint(llmtest.CompletionsPath),
		Timeout:  time.Second,
	})
	llmtest.AssertNoError(t, err)
	defer adapter.Close()

	_, err = adapter.Chat(context.Background(), testRequest())

	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected *TransportError, got %T: %v", err, err)
	}
	llmtest.AssertEqual(t, transportErr.Provider, "piapi")
}

func TestAdapter_Chat_MalformedSuccessResponses(t *testing.T) {
	tests := []struct {
		name     string
		response llmtest.Response
	}{
		{"not json", llmtest.Garbage()},
		{"no choices", llmtest.NoChoices()},
		{"empty content", llmtest.MissingContent()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := llmtest.NewServer()
			defer mock.Close()
			mock.Script(llmtest.CompletionsPath, tt.response)

			adapter, err := NewAdapter(testConfig("piapi", mock))
			llmtest.AssertNoError(t, err)
			defer adapter.Close()

			text, err := adapter.Chat(context.Background(), testRequest())
			if err == nil {
				t.Fatalf("expected error, got text %q", text)
			}

			var respErr *ResponseError
			if !errors.As(err, &respErr) {
				t.Fatalf("expected *ResponseError, got %T: %v", err, err)
			}
			if text != "" {
				t.Errorf("malformed response must not yield text, got %q", text)
			}
		})
	}
}

func TestNewAdapter_Validation(t *testing.T) {
	tests := []struct {
		name   string
		config ProviderConfig
		field  string
	}{
		{"missing name", ProviderConfig{APIKey: "k", Endpoint: "https://x/v1"}, "name"},
		{"missing key", ProviderConfig{Name: "piapi", Endpoint: "https://x/v1"}, "api_key"},
		{"missing endpoint", ProviderConfig{Name: "custom", APIKey: "k"}, "endpoint"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewAdapter(tt.config)
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected *ConfigError, got %T: %v", err, err)
			}
			llmtest.AssertEqual(t, cfgErr.Field, tt.field)
		})
	}
}
