package secrets

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestEnv_Resolve(t *testing.T) {
	t.Setenv("PIAPI_API_KEY", "env-value")

	value, err := (Env{}).Resolve("PIAPI_API_KEY")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != "env-value" {
		t.Errorf("expected env-value, got %q", value)
	}
}

func TestEnv_Resolve_Prefix(t *testing.T) {
	t.Setenv("ASSAY_GROQ_API_KEY", "prefixed")

	value, err := (Env{Prefix: "ASSAY_"}).Resolve("GROQ_API_KEY")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != "prefixed" {
		t.Errorf("expected prefixed, got %q", value)
	}
}

func TestEnv_Resolve_MissingAndBlank(t *testing.T) {
	if _, err := (Env{}).Resolve("ASSAY_TEST_NO_SUCH_KEY"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	t.Setenv("ASSAY_TEST_BLANK_KEY", "")
	if _, err := (Env{}).Resolve("ASSAY_TEST_BLANK_KEY"); !errors.Is(err, ErrNotFound) {
		t.Errorf("blank variable should resolve as not found, got %v", err)
	}
}

func TestFileEnv_Resolve(t *testing.T) {
	path := filepath.Join(t.TempDir(), "piapi_key")
	if err := os.WriteFile(path, []byte("  file-value\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PIAPI_API_KEY_FILE", path)

	value, err := (FileEnv{}).Resolve("PIAPI_API_KEY")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != "file-value" {
		t.Errorf("expected trimmed file-value, got %q", value)
	}
}

func TestFileEnv_Resolve_NoIndirection(t *testing.T) {
	if _, err := (FileEnv{}).Resolve("ASSAY_TEST_NO_FILE_KEY"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestFileEnv_Resolve_RejectsOpenPermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leaky_key")
	if err := os.WriteFile(path, []byte("value"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("OPENAI_API_KEY_FILE", path)

	_, err := (FileEnv{}).Resolve("OPENAI_API_KEY")
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Fatalf("expected a permissions error, got %v", err)
	}
}

func TestChain_Resolve_FileWinsOverEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "key")
	if err := os.WriteFile(path, []byte("from-file"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DEEPSEEK_API_KEY_FILE", path)
	t.Setenv("DEEPSEEK_API_KEY", "from-env")

	value, err := Default().Resolve("DEEPSEEK_API_KEY")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != "from-file" {
		t.Errorf("file indirection should win, got %q", value)
	}
}

func TestChain_Resolve_FallsBackToEnv(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "plain")

	value, err := Default().Resolve("GROQ_API_KEY")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != "plain" {
		t.Errorf("expected plain, got %q", value)
	}
}

func TestChain_Resolve_PropagatesHardErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "key")
	if err := os.WriteFile(path, []byte("value"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TELEGRAM_BOT_TOKEN_FILE", path)
	t.Setenv("TELEGRAM_BOT_TOKEN", "should-not-be-used")

	_, err := Default().Resolve("TELEGRAM_BOT_TOKEN")
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Fatalf("open permissions must not fall back to the environment, got %v", err)
	}
}
