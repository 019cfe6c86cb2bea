package config

import (
	"fmt"
	"sync"
)

var (
	// globalConfig holds the singleton configuration instance.
	globalConfig *Config

	// configMutex protects access to globalConfig.
	configMutex sync.RWMutex

	// initOnce ensures configuration is initialized only once.
	initOnce sync.Once
)

// Initialize loads configuration from the given path with environment
// overrides and stores it as the global singleton. It should be called once
// at startup; subsequent calls are ignored.
func Initialize(path string) error {
	var initErr error

	initOnce.Do(func() {
		cfg, err := LoadWithEnv(path)
		if err != nil {
			initErr = err
			return
		}

		configMutex.Lock()
		globalConfig = cfg
		configMutex.Unlock()
	})

	return initErr
}

// Get returns the global configuration instance, or nil if Initialize has
// not been called successfully. Safe for concurrent use.
//
// For testing, prefer passing explicit Config values over the singleton.
func Get() *Config {
	configMutex.RLock()
	defer configMutex.RUnlock()
	return globalConfig
}

// Set replaces the global configuration instance. It exists for tests and
// for the watcher's hot-reload path; normal startup goes through Initialize.
func Set(cfg *Config) {
	configMutex.Lock()
	defer configMutex.Unlock()
	globalConfig = cfg
}

// Reload reloads configuration from the given path and swaps the global
// instance. The previous configuration stays in place when loading or
// validation fails, so a bad edit never takes the daemon down.
func Reload(path string) error {
	cfg, err := LoadWithEnv(path)
	if err != nil {
		return fmt.Errorf("reloading configuration: %w", err)
	}

	configMutex.Lock()
	globalConfig = cfg
	configMutex.Unlock()

	return nil
}

// MustGet returns the global configuration and panics when it has not been
// initialized. Use only after successful startup.
func MustGet() *Config {
	cfg := Get()
	if cfg == nil {
		panic("configuration not initialized: call Initialize first")
	}
	return cfg
}
