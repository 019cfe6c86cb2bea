package secrets

import (
	"fmt"
	"os"
)

// Env resolves credentials from process environment variables.
// An optional prefix namespaces the lookup: with Prefix "ASSAY_" the name
// PIAPI_API_KEY is read from ASSAY_PIAPI_API_KEY.
type Env struct {
	Prefix string
}

// Resolve implements Resolver. Empty values count as absent so that an
// exported-but-blank variable does not shadow another source.
func (e Env) Resolve(name string) (string, error) {
	value := os.Getenv(e.Prefix + name)
	if value == "" {
		return "", fmt.Errorf("%w: %s%s", ErrNotFound, e.Prefix, name)
	}
	return value, nil
}
