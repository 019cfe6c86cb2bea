package llm

import (
	"context"
	"log/slog"
	"time"
)

// Options configures a FailoverClient.
type Options struct {
	// Preferred names the provider to place at the front of the order.
	// An empty string keeps the configured order as is.
	Preferred string

	// Order is the failover order to walk; empty means DefaultOrder.
	Order []string

	// Providers holds the provider configurations the client may use.
	Providers []ProviderConfig

	// Timeout applies to providers whose configuration does not set one.
	Timeout time.Duration

	// Logger receives initialization and rotation events; nil means
	// slog.Default.
	Logger *slog.Logger
}

// FailoverClient generates text through an ordered chain of
// OpenAI-compatible providers. The first request resolves the chain and
// selects the first available provider as active; every request starts at
// the active provider and rotates forward through the remaining ones until
// an attempt succeeds. A success moves the active cursor to that provider,
// so later requests skip endpoints that already failed this run.
//
// A FailoverClient is not safe for concurrent use. It holds mutable cursor
// state and is meant to live for one logical run; construct a fresh client
// per run so a degraded chain never leaks into the next one.
type FailoverClient struct {
	opts   Options
	logger *slog.Logger

	initialized bool
	initErr     error
	adapters    []*Adapter
	active      int
}

// New creates a failover client. Construction is cheap: the provider chain
// is resolved lazily on the first Generate call and no network activity
// happens until then.
func New(opts Options) *FailoverClient {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &FailoverClient{
		opts:   opts,
		logger: logger.With("component", "llm.failover"),
	}
}

// ensureInit resolves the provider order and builds adapters for the
// available providers. An empty result is terminal: the error is stored and
// returned for every subsequent call without any network activity.
func (c *FailoverClient) ensureInit() error {
	if c.initialized {
		return c.initErr
	}
	c.initialized = true

	configs := make([]ProviderConfig, len(c.opts.Providers))
	copy(configs, c.opts.Providers)
	for i := range configs {
		if configs[i].Timeout <= 0 {
			configs[i].Timeout = c.opts.Timeout
		}
	}

	registry := NewRegistry(configs)
	order := registry.Resolve(c.opts.Preferred, c.opts.Order)
	available := registry.Available(order)
	if len(available) == 0 {
		c.initErr = &NoProviderAvailableError{Order: order}
		c.logger.Error("no provider in the failover order has a credential", "order", order)
		return c.initErr
	}

	adapters := make([]*Adapter, 0, len(available))
	for _, cfg := range available {
		adapter, err := NewAdapter(cfg)
		if err != nil {
			c.logger.Warn("skipping provider with unusable configuration",
				"provider", cfg.Name, "error", err)
			continue
		}
		adapters = append(adapters, adapter)
	}
	if len(adapters) == 0 {
		c.initErr = &NoProviderAvailableError{Order: order}
		return c.initErr
	}

	c.adapters = adapters
	c.active = 0
	c.logger.Info("provider failover chain ready",
		"active", adapters[0].Name(),
		"available", len(adapters),
		"order", order,
	)
	return nil
}

// Generate sends the request to the active provider and rotates forward
// through the remaining available providers until one succeeds.
//
// Each provider is attempted at most once per call, with exactly one HTTP
// request per attempt. On success the provider that answered becomes the
// active one and is attributed in the returned Generation. When every
// provider fails the call returns *AllProvidersFailedError wrapping the
// last failure. A context that dies mid-sweep stops the rotation and the
// error of the aborted attempt is returned as is.
func (c *FailoverClient) Generate(ctx context.Context, req *GenerationRequest) (*Generation, error) {
	if err := c.ensureInit(); err != nil {
		return nil, err
	}

	n := len(c.adapters)
	attempted := make([]string, 0, n)
	var lastErr error

	for i := 0; i < n; i++ {
		idx := (c.active + i) % n
		adapter := c.adapters[idx]

		text, err := adapter.Chat(ctx, req)
		if err == nil {
			if idx != c.active {
				c.logger.Info("failover promoted new active provider",
					"provider", adapter.Name(),
					"previous", c.adapters[c.active].Name(),
					"attempts", len(attempted)+1,
				)
			}
			c.active = idx
			return &Generation{
				Text:     text,
				Provider: adapter.Name(),
				Model:    adapter.model(req),
				Attempts: len(attempted) + 1,
			}, nil
		}

		attempted = append(attempted, adapter.Name())
		lastErr = err
		c.logger.Warn("provider attempt failed, rotating",
			"provider", adapter.Name(),
			"error", err,
			"attempt", len(attempted),
			"remaining", n-i-1,
		)

		if ctx.Err() != nil {
			c.logger.Warn("stopping failover sweep, context is done",
				"attempted", len(attempted))
			return nil, lastErr
		}
	}

	return nil, &AllProvidersFailedError{Attempted: attempted, Err: lastErr}
}

// Active returns the name of the active provider, or an empty string before
// the first successful initialization.
func (c *FailoverClient) Active() string {
	if len(c.adapters) == 0 {
		return ""
	}
	return c.adapters[c.active].Name()
}

// Providers returns the available provider names in failover order,
// resolving the chain if it has not been resolved yet. The error mirrors
// what Generate would return for an unusable chain.
func (c *FailoverClient) Providers() ([]string, error) {
	if err := c.ensureInit(); err != nil {
		return nil, err
	}
	names := make([]string, len(c.adapters))
	for i, adapter := range c.adapters {
		names[i] = adapter.Name()
	}
	return names, nil
}

// Close releases connections held by the provider adapters.
func (c *FailoverClient) Close() error {
	for _, adapter := range c.adapters {
		_ = adapter.Close()
	}
	return nil
}
