package secrets

import (
	"fmt"
	"os"
	"strings"
)

// FileEnv resolves credentials through <NAME>_FILE indirection, the
// convention used for orchestrator-mounted secrets: when the environment
// variable PIAPI_API_KEY_FILE names a file, its trimmed contents become the
// credential.
//
// Secret files must not be group or world accessible; a file with open
// permissions is an error rather than a fallback, since silently ignoring
// it would hide a real deployment problem.
type FileEnv struct{}

// Resolve implements Resolver.
func (FileEnv) Resolve(name string) (string, error) {
	path := os.Getenv(name + "_FILE")
	if path == "" {
		return "", fmt.Errorf("%w: %s_FILE", ErrNotFound, name)
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("stat secret file for %s: %w", name, err)
	}
	if mode := info.Mode().Perm(); mode&0o077 != 0 {
		return "", fmt.Errorf("secret file %s has permissions %04o, want 0600 or 0400", path, mode)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read secret file for %s: %w", name, err)
	}

	value := strings.TrimSpace(string(data))
	if value == "" {
		return "", fmt.Errorf("secret file %s is empty", path)
	}
	return value, nil
}
