package llm

import (
	"fmt"
	"strings"
)

// ConfigError reports a provider configuration that is structurally unusable,
// such as a missing credential or endpoint. It is raised when an adapter is
// constructed, before any request is made.
type ConfigError struct {
	// Provider is the name of the misconfigured provider
	Provider string

	// Field is the configuration field that is invalid
	Field string

	// Message describes the configuration error
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("provider %q configuration error for field %q: %s",
		e.Provider, e.Field, e.Message)
}

// NoProviderAvailableError reports that no provider in the resolved order
// holds a credential. It is fatal: no network activity has occurred and
// retrying the same client cannot succeed.
type NoProviderAvailableError struct {
	// Order is the resolved provider order that was searched
	Order []string
}

// Error implements the error interface.
func (e *NoProviderAvailableError) Error() string {
	if len(e.Order) == 0 {
		return "no LLM provider available: provider order is empty"
	}
	return fmt.Sprintf("no LLM provider available: none of [%s] has a credential",
		strings.Join(e.Order, ", "))
}

// HTTPError reports a non-2xx response from a provider. The status code is
// preserved for diagnostics and the body is truncated to a bounded prefix.
// It is recoverable: the failover loop rotates to the next provider.
type HTTPError struct {
	// Provider is the name of the provider that returned the status
	Provider string

	// StatusCode is the HTTP status code
	StatusCode int

	// Body is the response body, truncated for log hygiene
	Body string
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	return fmt.Sprintf("provider %q returned status %d: %s", e.Provider, e.StatusCode, e.Body)
}

// TransportError reports a network-level failure: timeout, DNS resolution,
// connection refused or reset. No usable HTTP response was received.
// It is recoverable: the failover loop rotates to the next provider.
type TransportError struct {
	// Provider is the name of the provider the request was sent to
	Provider string

	// Err is the underlying transport error
	Err error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("provider %q request failed: %v", e.Provider, e.Err)
}

// Unwrap returns the underlying error for error chain support.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// ResponseError reports a 2xx response whose body does not contain a usable
// completion, for example missing choices or empty message content. The
// malformed body is never passed off as generated text; the failover loop
// rotates to the next provider instead.
type ResponseError struct {
	// Provider is the name of the provider that returned the response
	Provider string

	// Message describes what was missing or malformed
	Message string

	// Body is the response body, truncated for log hygiene
	Body string
}

// Error implements the error interface.
func (e *ResponseError) Error() string {
	return fmt.Sprintf("provider %q returned unusable response: %s", e.Provider, e.Message)
}

// AllProvidersFailedError reports that every available provider was attempted
// exactly once and all failed. It wraps the last underlying failure.
type AllProvidersFailedError struct {
	// Attempted lists the providers tried, in attempt order
	Attempted []string

	// Err is the error from the last attempt
	Err error
}

// Error implements the error interface.
func (e *AllProvidersFailedError) Error() string {
	return fmt.Sprintf("all LLM providers failed after %d attempt(s) [%s]: last error: %v",
		len(e.Attempted), strings.Join(e.Attempted, ", "), e.Err)
}

// Unwrap returns the last underlying error for error chain support.
func (e *AllProvidersFailedError) Unwrap() error {
	return e.Err
}
