package config

import (
	"sync"
	"testing"
)

func TestSetAndGet(t *testing.T) {
	prev := Get()
	defer Set(prev)

	cfg := DefaultConfig()
	cfg.LLM.Preferred = "groq"
	Set(cfg)

	got := Get()
	if got == nil || got.LLM.Preferred != "groq" {
		t.Fatalf("expected stored config back, got %+v", got)
	}
}

func TestReload_SwapsGlobal(t *testing.T) {
	prev := Get()
	defer Set(prev)

	path := writeTempConfig(t, `
llm:
  preferred: deepseek
`)
	if err := Reload(path); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	if Get().LLM.Preferred != "deepseek" {
		t.Errorf("expected reloaded config, got preferred %q", Get().LLM.Preferred)
	}
}

func TestReload_KeepsPreviousOnFailure(t *testing.T) {
	prev := Get()
	defer Set(prev)

	cfg := DefaultConfig()
	cfg.LLM.Preferred = "openai"
	Set(cfg)

	path := writeTempConfig(t, `
state:
  backend: etcd
`)
	if err := Reload(path); err == nil {
		t.Fatal("expected reload to fail validation")
	}
	if Get().LLM.Preferred != "openai" {
		t.Errorf("failed reload must keep previous config, got %q", Get().LLM.Preferred)
	}
}

func TestGet_ConcurrentAccess(t *testing.T) {
	prev := Get()
	defer Set(prev)

	Set(DefaultConfig())

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if Get() == nil {
					t.Error("Get returned nil after Set")
					return
				}
			}
		}()
	}
	wg.Wait()
}
