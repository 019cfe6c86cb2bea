// Package llmtest provides a mock OpenAI-compatible chat completions server
// and shared assertion helpers for exercising the failover client in tests.
package llmtest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// CapturedRequest records one request received by the mock server.
type CapturedRequest struct {
	Path          string
	Authorization string
	ContentType   string
	Body          []byte
}

// Payload unmarshals the captured request body into a generic map so tests
// can assert on individual wire-format fields.
func (r CapturedRequest) Payload() (map[string]any, error) {
	var payload map[string]any
	if err := json.Unmarshal(r.Body, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// Response defines one scripted mock response.
type Response struct {
	StatusCode int
	Body       any
	Delay      time.Duration
	Headers    map[string]string
}

// Server is a scriptable chat completions endpoint. Each path holds a queue
// of responses consumed in order; the last response is repeated once the
// queue drains, so a single scripted response behaves like a fixed handler.
// Every request is captured for wire-format assertions.
type Server struct {
	server *httptest.Server

	mu       sync.Mutex
	queues   map[string][]Response
	requests []CapturedRequest
}

// NewServer creates a started mock server. Callers own Close.
func NewServer() *Server {
	s := &Server{queues: make(map[string][]Response)}
	s.server = httptest.NewServer(http.HandlerFunc(s.handler))
	return s
}

// URL returns the server's base URL.
func (s *Server) URL() string {
	return s.server.URL
}

// Endpoint returns the full URL for a completions path on this server.
func (s *Server) Endpoint(path string) string {
	return s.server.URL + path
}

// Close shuts the server down.
func (s *Server) Close() {
	s.server.Close()
}

// Script replaces the response queue for a path.
func (s *Server) Script(path string, responses ...Response) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queues[path] = responses
}

// Requests returns a copy of every captured request so far.
func (s *Server) Requests() []CapturedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]CapturedRequest, len(s.requests))
	copy(out, s.requests)
	return out
}

// RequestCount returns how many requests the server has received.
func (s *Server) RequestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

// PathCount returns how many requests hit one path.
func (s *Server) PathCount(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.requests {
		if r.Path == path {
			n++
		}
	}
	return n
}

// Reset clears captured requests and scripted queues.
func (s *Server) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = nil
	s.queues = make(map[string][]Response)
}

func (s *Server) handler(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	s.mu.Lock()
	s.requests = append(s.requests, CapturedRequest{
		Path:          r.URL.Path,
		Authorization: r.Header.Get("Authorization"),
		ContentType:   r.Header.Get("Content-Type"),
		Body:          body,
	})
	queue, ok := s.queues[r.URL.Path]
	var response Response
	if ok && len(queue) > 0 {
		response = queue[0]
		if len(queue) > 1 {
			s.queues[r.URL.Path] = queue[1:]
		}
	}
	s.mu.Unlock()

	if !ok || len(queue) == 0 {
		http.NotFound(w, r)
		return
	}

	if response.Delay > 0 {
		time.Sleep(response.Delay)
	}
	for key, value := range response.Headers {
		w.Header().Set(key, value)
	}
	w.WriteHeader(response.StatusCode)

	switch v := response.Body.(type) {
	case nil:
	case string:
		_, _ = w.Write([]byte(v))
	case []byte:
		_, _ = w.Write(v)
	default:
		_ = json.NewEncoder(w).Encode(v)
	}
}

// Completion builds a well-formed chat completion response body.
func Completion(content, model string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": time.Now().Unix(),
		"model":   model,
		"choices": []map[string]any{
			{
				"index": 0,
				"message": map[string]any{
					"role":    "assistant",
					"content": content,
				},
				"finish_reason": "stop",
			},
		},
		"usage": map[string]any{
			"prompt_tokens":     10,
			"completion_tokens": 20,
			"total_tokens":      30,
		},
	}
}

// OK scripts a successful completion response.
func OK(content, model string) Response {
	return Response{StatusCode: http.StatusOK, Body: Completion(content, model)}
}

// APIError scripts an OpenAI-style error response with the given status.
func APIError(statusCode int, message string) Response {
	return Response{
		StatusCode: statusCode,
		Body: map[string]any{
			"error": map[string]any{
				"message": message,
				"type":    "invalid_request_error",
				"code":    statusCode,
			},
		},
	}
}

// MissingContent scripts a 2xx response whose first choice has no content.
func MissingContent() Response {
	return Response{
		StatusCode: http.StatusOK,
		Body: map[string]any{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"choices": []map[string]any{{"index": 0, "message": map[string]any{"role": "assistant"}}},
		},
	}
}

// NoChoices scripts a 2xx response with an empty choices array.
func NoChoices() Response {
	return Response{
		StatusCode: http.StatusOK,
		Body:       map[string]any{"id": "chatcmpl-test", "object": "chat.completion", "choices": []any{}},
	}
}

// Garbage scripts a 2xx response that is not JSON at all.
func Garbage() Response {
	return Response{StatusCode: http.StatusOK, Body: "this is not json"}
}
