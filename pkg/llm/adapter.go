package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// maxErrorBody bounds how much of a provider response body is carried in
// error values and logs.
const maxErrorBody = 500

// Adapter sends chat completion requests to a single OpenAI-compatible
// endpoint. It performs exactly one HTTP request per Chat call and never
// retries; retry-by-rotation is the failover client's job.
type Adapter struct {
	config ProviderConfig
	client *http.Client
}

// NewAdapter creates an adapter for one provider endpoint.
// It validates that the configuration is structurally usable and returns a
// *ConfigError when it is not. No network activity occurs here.
func NewAdapter(config ProviderConfig) (*Adapter, error) {
	if config.Name == "" {
		return nil, &ConfigError{Provider: "?", Field: "name", Message: "provider name is required"}
	}
	if config.APIKey == "" {
		return nil, &ConfigError{Provider: config.Name, Field: "api_key", Message: "credential is required"}
	}
	if config.Endpoint == "" {
		return nil, &ConfigError{Provider: config.Name, Field: "endpoint", Message: "chat completions URL is required"}
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}

	transport := &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     90 * time.Second,
		ForceAttemptHTTP2:   true,
	}

	return &Adapter{
		config: config,
		client: &http.Client{
			Transport: transport,
			Timeout:   config.Timeout,
		},
	}, nil
}

// Name returns the provider name this adapter is bound to.
func (a *Adapter) Name() string {
	return a.config.Name
}

// Model returns the default model used when a request does not name one.
func (a *Adapter) Model() string {
	return a.config.Model
}

// Close releases idle connections held by the adapter.
func (a *Adapter) Close() error {
	a.client.CloseIdleConnections()
	return nil
}

// completionResponse is the subset of the chat completions response the
// client consumes.
type completionResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Chat sends one chat completion request and returns the generated text.
//
// Failures map onto the package error taxonomy: network-level problems
// return *TransportError, non-2xx statuses return *HTTPError, and 2xx
// responses without a non-empty choices[0].message.content return
// *ResponseError. A malformed success body is never degraded into a
// stringified payload; it is an error so the caller can rotate providers.
func (a *Adapter) Chat(ctx context.Context, req *GenerationRequest) (string, error) {
	body, err := a.buildBody(req)
	if err != nil {
		return "", fmt.Errorf("marshaling request for provider %q: %w", a.config.Name, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.config.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building request for provider %q: %w", a.config.Name, err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+a.config.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	slog.Debug("sending chat completion request",
		"provider", a.config.Name,
		"model", a.model(req),
		"endpoint", a.config.Endpoint,
	)

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return "", &TransportError{Provider: a.config.Name, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &TransportError{Provider: a.config.Name, Err: fmt.Errorf("reading response body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &HTTPError{
			Provider:   a.config.Name,
			StatusCode: resp.StatusCode,
			Body:       truncateBody(respBody),
		}
	}

	var parsed completionResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", &ResponseError{
			Provider: a.config.Name,
			Message:  fmt.Sprintf("invalid JSON: %v", err),
			Body:     truncateBody(respBody),
		}
	}
	if len(parsed.Choices) == 0 {
		return "", &ResponseError{
			Provider: a.config.Name,
			Message:  "response has no choices",
			Body:     truncateBody(respBody),
		}
	}
	content := parsed.Choices[0].Message.Content
	if content == "" {
		return "", &ResponseError{
			Provider: a.config.Name,
			Message:  "choices[0].message.content is empty",
			Body:     truncateBody(respBody),
		}
	}

	return content, nil
}

// model resolves the model identifier for a request.
func (a *Adapter) model(req *GenerationRequest) string {
	if req.Model != "" {
		return req.Model
	}
	return a.config.Model
}

// buildBody assembles the wire-format request body. Standard fields are set
// first, then the provider's configured Extra fields, then the request's own
// Extra entries, so later sources may override earlier keys, matching the
// documented extra-params contract.
func (a *Adapter) buildBody(req *GenerationRequest) ([]byte, error) {
	payload := map[string]any{
		"model":       a.model(req),
		"messages":    req.Messages,
		"temperature": req.Temperature,
	}
	if req.MaxTokens > 0 {
		payload["max_tokens"] = req.MaxTokens
	}
	for k, v := range a.config.Extra {
		payload[k] = v
	}
	for k, v := range req.Extra {
		payload[k] = v
	}
	return json.Marshal(payload)
}

// truncateBody bounds a response body for inclusion in errors and logs.
func truncateBody(body []byte) string {
	if len(body) > maxErrorBody {
		return string(body[:maxErrorBody])
	}
	return string(body)
}
