package llm

import (
	"testing"

	"bullion-hq/assay/internal/llmtest"
)

func registryFor(names ...string) *Registry {
	configs := make([]ProviderConfig, 0, len(names))
	for _, name := range names {
		configs = append(configs, ProviderConfig{Name: name, APIKey: "key-" + name, Endpoint: "https://example.test/v1"})
	}
	return NewRegistry(configs)
}

func TestBuiltin(t *testing.T) {
	cfg, ok := Builtin(ProviderGroq)
	if !ok {
		t.Fatal("groq should be a builtin provider")
	}
	llmtest.AssertEqual(t, cfg.Endpoint, "https://api.groq.com/openai/v1/chat/completions")
	llmtest.AssertEqual(t, cfg.Model, "llama-3.1-70b-versatile")

	if _, ok := Builtin("nope"); ok {
		t.Fatal("unknown name must not resolve to a builtin")
	}
}

func TestNewRegistry_NormalizesBuiltins(t *testing.T) {
	r := NewRegistry([]ProviderConfig{
		{Name: ProviderPiAPI, APIKey: "k"},
		{Name: ProviderDeepSeek, APIKey: "k", Model: "deepseek-reasoner"},
	})

	piapi, ok := r.Lookup(ProviderPiAPI)
	if !ok {
		t.Fatal("piapi should be registered")
	}
	llmtest.AssertEqual(t, piapi.Endpoint, "https://api.piapi.ai/v1/chat/completions")
	llmtest.AssertEqual(t, piapi.Model, "gpt-4o-mini")

	// An explicit model wins over the catalog default.
	deepseek, _ := r.Lookup(ProviderDeepSeek)
	llmtest.AssertEqual(t, deepseek.Model, "deepseek-reasoner")
	llmtest.AssertEqual(t, deepseek.Endpoint, "https://api.deepseek.com/v1/chat/completions")
}

func TestNewRegistry_CustomProvider(t *testing.T) {
	r := NewRegistry([]ProviderConfig{
		{Name: "local", APIKey: "k", Endpoint: "http://localhost:11434/v1/chat/completions", Model: "llama3"},
	})

	cfg, ok := r.Lookup("local")
	if !ok {
		t.Fatal("custom provider should be registered")
	}
	llmtest.AssertEqual(t, cfg.Endpoint, "http://localhost:11434/v1/chat/completions")
	llmtest.AssertStrings(t, r.Names(), []string{"local"})
}

func TestRegistry_Resolve_DefaultOrder(t *testing.T) {
	r := registryFor(DefaultOrder...)
	llmtest.AssertStrings(t, r.Resolve("", nil), DefaultOrder)
}

func TestRegistry_Resolve_PreferredMovesToFront(t *testing.T) {
	r := registryFor("a", "b", "c")
	llmtest.AssertStrings(t, r.Resolve("b", []string{"a", "b", "c"}), []string{"b", "a", "c"})
}

func TestRegistry_Resolve_PreferredNotInOrder(t *testing.T) {
	r := registryFor("a", "b", "x")
	llmtest.AssertStrings(t, r.Resolve("x", []string{"a", "b"}), []string{"x", "a", "b"})
}

func TestRegistry_Resolve_DropsDuplicates(t *testing.T) {
	r := registryFor("a", "b")
	llmtest.AssertStrings(t, r.Resolve("", []string{"a", "b", "a", "b", "a"}), []string{"a", "b"})
}

func TestRegistry_Resolve_SkipsUnknownNames(t *testing.T) {
	r := registryFor("a", "c")
	llmtest.AssertStrings(t, r.Resolve("", []string{"a", "ghost", "c"}), []string{"a", "c"})

	// An unknown preferred name is dropped as well, not failed.
	llmtest.AssertStrings(t, r.Resolve("ghost", []string{"a", "c"}), []string{"a", "c"})
}

func TestRegistry_Available_FiltersMissingCredentials(t *testing.T) {
	r := NewRegistry([]ProviderConfig{
		{Name: "a", APIKey: "", Endpoint: "https://a.test/v1"},
		{Name: "b", APIKey: "kb", Endpoint: "https://b.test/v1"},
		{Name: "c", APIKey: "", Endpoint: "https://c.test/v1"},
		{Name: "d", APIKey: "kd", Endpoint: "https://d.test/v1"},
	})

	available := r.Available([]string{"a", "b", "c", "d"})
	names := make([]string, len(available))
	for i, cfg := range available {
		names[i] = cfg.Name
	}
	llmtest.AssertStrings(t, names, []string{"b", "d"})
}

func TestRegistry_Available_PreservesOrder(t *testing.T) {
	r := registryFor("c", "a", "b")

	available := r.Available([]string{"b", "c", "a"})
	names := make([]string, len(available))
	for i, cfg := range available {
		names[i] = cfg.Name
	}
	llmtest.AssertStrings(t, names, []string{"b", "c", "a"})
}
