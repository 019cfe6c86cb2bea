// Package secrets resolves named credentials from the process environment
// and from mounted secret files.
//
// Configuration loading asks a Resolver for credential names such as
// PIAPI_API_KEY or TELEGRAM_BOT_TOKEN. The default resolver first honors
// file indirection (PIAPI_API_KEY_FILE pointing at a mounted secret) and
// then falls back to the plain environment variable, so the same
// configuration works on a workstation and under an orchestrator.
package secrets

import (
	"errors"
	"fmt"
)

// ErrNotFound reports that a resolver holds no value for the requested name.
var ErrNotFound = errors.New("secret not found")

// Resolver resolves a credential by name.
type Resolver interface {
	Resolve(name string) (string, error)
}

// Chain tries each resolver in order and returns the first hit.
// A resolver error other than ErrNotFound stops the chain, so a present but
// unreadable secret file surfaces as an error instead of silently falling
// back to a weaker source.
type Chain []Resolver

// Resolve implements Resolver.
func (c Chain) Resolve(name string) (string, error) {
	for _, r := range c {
		value, err := r.Resolve(name)
		if err == nil {
			return value, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return "", err
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNotFound, name)
}

// Default returns the resolver used by configuration loading: file
// indirection first, then plain environment variables.
func Default() Resolver {
	return Chain{FileEnv{}, Env{}}
}
