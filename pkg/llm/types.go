package llm

import "time"

// DefaultTimeout is the per-request timeout applied when a provider
// configuration does not set one.
const DefaultTimeout = 60 * time.Second

// Message roles understood by the chat completions wire format.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage represents a single message in a conversation.
// An ordered slice of ChatMessage forms the conversation sent to a provider.
type ChatMessage struct {
	// Role identifies the message sender (system, user, assistant)
	Role string `json:"role"`

	// Content is the message text; it is treated as opaque and never
	// inspected or transformed by the client
	Content string `json:"content"`
}

// BuildMessages assembles the conversation for a prompt pair.
// When systemPrompt is empty the system message is omitted entirely rather
// than sent with empty content, since some providers reject blank messages.
func BuildMessages(systemPrompt, userPrompt string) []ChatMessage {
	messages := make([]ChatMessage, 0, 2)
	if systemPrompt != "" {
		messages = append(messages, ChatMessage{Role: RoleSystem, Content: systemPrompt})
	}
	messages = append(messages, ChatMessage{Role: RoleUser, Content: userPrompt})
	return messages
}

// GenerationRequest describes a single text generation call.
// A request is built fresh for each call and is not mutated by the client,
// so the same value may be replayed against several providers during failover.
type GenerationRequest struct {
	// Messages is the ordered conversation to send
	Messages []ChatMessage

	// Temperature is the sampling temperature, valid range [0, 2]
	Temperature float64

	// MaxTokens caps the completion length; zero means the field is
	// omitted from the request body and the provider default applies
	MaxTokens int

	// Model overrides the provider's configured default model when non-empty
	Model string

	// Extra holds additional wire-format fields merged verbatim into the
	// request body after the standard fields, so an entry here can
	// override model, temperature, or any other base key
	Extra map[string]any
}

// Generation is the outcome of a successful request. Exactly one provider
// produced the text; Provider and Model record which one for attribution.
type Generation struct {
	// Text is the completion content
	Text string

	// Provider is the name of the provider that produced the text
	Provider string

	// Model is the model identifier the request was sent with
	Model string

	// Attempts counts the providers invoked during the call, including
	// the one that succeeded
	Attempts int
}

// ProviderConfig describes one OpenAI-compatible provider endpoint.
type ProviderConfig struct {
	// Name is the unique provider key, e.g. "piapi", "groq", "openai",
	// "deepseek", or any custom name bound to a compatible endpoint
	Name string `json:"name" yaml:"name"`

	// APIKey is the bearer credential; a provider with an empty key is
	// excluded from the available set rather than treated as an error
	APIKey string `json:"-" yaml:"api_key"`

	// Model is the default model identifier used when a request does not
	// name one
	Model string `json:"model" yaml:"model"`

	// Endpoint is the full chat completions URL
	Endpoint string `json:"endpoint" yaml:"endpoint"`

	// Timeout bounds each HTTP request; zero means DefaultTimeout
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// Extra holds provider-specific wire fields merged into every request
	// body sent to this provider, before the request's own Extra entries
	Extra map[string]any `json:"extra,omitempty" yaml:"extra"`
}

// Available reports whether the provider holds a credential and can be
// attempted. Key validity is only discovered by making a request.
func (c ProviderConfig) Available() bool {
	return c.APIKey != ""
}
