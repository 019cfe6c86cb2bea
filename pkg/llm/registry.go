package llm

import "log/slog"

// First-class provider names. Any other name may still be registered as a
// custom OpenAI-compatible provider with an explicit endpoint.
const (
	ProviderPiAPI    = "piapi"
	ProviderGroq     = "groq"
	ProviderOpenAI   = "openai"
	ProviderDeepSeek = "deepseek"
)

// DefaultOrder is the failover order applied when none is configured.
var DefaultOrder = []string{ProviderPiAPI, ProviderGroq, ProviderOpenAI, ProviderDeepSeek}

// builtin holds the catalog entry for a first-class provider.
type builtin struct {
	endpoint string
	model    string
}

var builtins = map[string]builtin{
	ProviderPiAPI:    {endpoint: "https://api.piapi.ai/v1/chat/completions", model: "gpt-4o-mini"},
	ProviderGroq:     {endpoint: "https://api.groq.com/openai/v1/chat/completions", model: "llama-3.1-70b-versatile"},
	ProviderOpenAI:   {endpoint: "https://api.openai.com/v1/chat/completions", model: "gpt-4o-mini"},
	ProviderDeepSeek: {endpoint: "https://api.deepseek.com/v1/chat/completions", model: "deepseek-chat"},
}

// Builtin returns the catalog configuration (name, endpoint, default model)
// for a first-class provider name. The returned config carries no credential.
func Builtin(name string) (ProviderConfig, bool) {
	b, ok := builtins[name]
	if !ok {
		return ProviderConfig{}, false
	}
	return ProviderConfig{Name: name, Endpoint: b.endpoint, Model: b.model}, true
}

// Registry maps provider names to their configurations and resolves the
// failover order a client walks.
type Registry struct {
	names  []string
	byName map[string]ProviderConfig
}

// NewRegistry builds a registry from provider configurations.
// Configurations for first-class names are normalized against the catalog:
// an empty endpoint or model is filled with the catalog value. Entries with
// no name are ignored. Later entries with a duplicate name replace earlier
// ones.
func NewRegistry(configs []ProviderConfig) *Registry {
	r := &Registry{byName: make(map[string]ProviderConfig, len(configs))}
	for _, cfg := range configs {
		if cfg.Name == "" {
			continue
		}
		if b, ok := builtins[cfg.Name]; ok {
			if cfg.Endpoint == "" {
				cfg.Endpoint = b.endpoint
			}
			if cfg.Model == "" {
				cfg.Model = b.model
			}
		}
		if _, exists := r.byName[cfg.Name]; !exists {
			r.names = append(r.names, cfg.Name)
		}
		r.byName[cfg.Name] = cfg
	}
	return r
}

// Lookup returns the configuration registered under name.
func (r *Registry) Lookup(name string) (ProviderConfig, bool) {
	cfg, ok := r.byName[name]
	return cfg, ok
}

// Names returns the registered provider names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Resolve computes the provider order for a client.
//
// The explicit order is used when non-empty, otherwise DefaultOrder.
// Duplicates keep their first occurrence. A non-empty preferred name is
// moved to the front, or inserted at the front when the order does not
// contain it. Names with no registered configuration are dropped with a
// debug log so that orders mentioning providers from newer configurations
// keep working.
func (r *Registry) Resolve(preferred string, order []string) []string {
	if len(order) == 0 {
		order = DefaultOrder
	}

	resolved := make([]string, 0, len(order)+1)
	seen := make(map[string]struct{}, len(order)+1)
	add := func(name string) {
		if name == "" {
			return
		}
		if _, dup := seen[name]; dup {
			return
		}
		seen[name] = struct{}{}
		if _, ok := r.byName[name]; !ok {
			slog.Debug("skipping unknown provider in failover order", "provider", name)
			return
		}
		resolved = append(resolved, name)
	}

	add(preferred)
	for _, name := range order {
		add(name)
	}
	return resolved
}

// Available filters names down to the configurations that hold a credential,
// preserving the relative order of the input.
func (r *Registry) Available(names []string) []ProviderConfig {
	available := make([]ProviderConfig, 0, len(names))
	for _, name := range names {
		cfg, ok := r.byName[name]
		if !ok || !cfg.Available() {
			continue
		}
		available = append(available, cfg)
	}
	return available
}
