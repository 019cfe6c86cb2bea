// Package telegram delivers report messages through the Bot API.
//
// The client covers the one method the reports need, sendMessage, with HTML
// parse mode and optional forum topic routing. Messages longer than the Bot
// API limit are split at newline boundaries and sent as consecutive
// messages.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// DefaultBaseURL is the production Bot API root.
	DefaultBaseURL = "https://api.telegram.org"

	// DefaultTimeout bounds one sendMessage call.
	DefaultTimeout = 30 * time.Second

	// MaxMessageLength is the Bot API text limit per message.
	MaxMessageLength = 4096

	// maxErrorBody bounds how much of an API response body is carried in
	// error values.
	maxErrorBody = 500
)

// APIError is a Bot API rejection: a non-2xx status or an ok:false payload.
type APIError struct {
	// StatusCode is the HTTP status of the response.
	StatusCode int

	// Description is the API's error description when it sent one, else a
	// truncated response body.
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram API error (status %d): %s", e.StatusCode, e.Description)
}

// Options configures the client.
type Options struct {
	// BotToken authenticates against the Bot API. Required.
	BotToken string

	// ThreadID posts into a forum topic when non-zero.
	ThreadID int64

	// Timeout bounds each sendMessage call. Defaults to DefaultTimeout.
	Timeout time.Duration

	// BaseURL overrides the API root for tests.
	BaseURL string

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Client sends messages through one bot.
type Client struct {
	token    string
	threadID int64
	baseURL  string
	http     *http.Client
	logger   *slog.Logger
}

// New creates a client. The bot token is required.
func New(opts Options) (*Client, error) {
	if opts.BotToken == "" {
		return nil, fmt.Errorf("telegram bot token is required")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		token:    opts.BotToken,
		threadID: opts.ThreadID,
		baseURL:  baseURL,
		http:     &http.Client{Timeout: opts.Timeout},
		logger:   logger.With("component", "telegram"),
	}, nil
}

// sendMessageRequest is the Bot API sendMessage payload.
type sendMessageRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
	MessageThreadID       int64  `json:"message_thread_id,omitempty"`
}

// sendMessageResponse is the subset of the API response the client consumes.
type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// SendMessage posts text to the chat as HTML. Text over the API limit is
// split at newline boundaries and delivered as consecutive messages; a
// failed part aborts the remainder.
func (c *Client) SendMessage(ctx context.Context, chatID, text string) error {
	if chatID == "" {
		return fmt.Errorf("telegram chat id is required")
	}

	parts := SplitMessage(text, MaxMessageLength)
	for i, part := range parts {
		if err := c.sendPart(ctx, chatID, part); err != nil {
			return fmt.Errorf("sending part %d/%d: %w", i+1, len(parts), err)
		}
	}

	c.logger.Info("message delivered",
		"chat_id", chatID,
		"parts", len(parts),
		"chars", len(text),
	)
	return nil
}

func (c *Client) sendPart(ctx context.Context, chatID, text string) error {
	payload := sendMessageRequest{
		ChatID:                chatID,
		Text:                  text,
		ParseMode:             "HTML",
		DisableWebPagePreview: true,
		MessageThreadID:       c.threadID,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding sendMessage payload: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", c.baseURL, c.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building sendMessage request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("calling telegram: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading telegram response: %w", err)
	}

	var parsed sendMessageResponse
	decodeErr := json.Unmarshal(respBody, &parsed)

	if resp.StatusCode < 200 || resp.StatusCode > 299 || decodeErr != nil || !parsed.OK {
		description := parsed.Description
		if description == "" {
			description = truncate(respBody)
		}
		return &APIError{StatusCode: resp.StatusCode, Description: description}
	}

	return nil
}

// SplitMessage splits text into chunks of at most limit bytes, preferring
// newline boundaries so HTML tags and sentences stay intact. A single line
// longer than the limit is hard-split at a rune boundary; a part must never
// carry a torn rune, the API rejects invalid UTF-8.
func SplitMessage(text string, limit int) []string {
	if limit <= 0 {
		limit = MaxMessageLength
	}
	if len(text) <= limit {
		return []string{text}
	}

	var parts []string
	for len(text) > limit {
		cut := strings.LastIndex(text[:limit], "\n")
		if cut <= 0 {
			cut = limit
			for cut > 0 && !utf8.RuneStart(text[cut]) {
				cut--
			}
			if cut == 0 {
				// limit smaller than one rune, nothing sane to emit
				cut = limit
			}
		}
		parts = append(parts, strings.TrimRight(text[:cut], "\n"))
		text = strings.TrimLeft(text[cut:], "\n")
	}
	if text != "" {
		parts = append(parts, text)
	}
	return parts
}

func truncate(body []byte) string {
	if len(body) > maxErrorBody {
		return string(body[:maxErrorBody])
	}
	return string(body)
}
