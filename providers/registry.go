// Package providers holds image provider implementations for coverkit and
// a registry that builds them by name.
//
// Each provider lives in its own subpackage (e.g., providers/gemini) and
// registers a Factory from its init function. Providers implement
// core.ImageGenerator and SHOULD be safe for concurrent calls.
package providers

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/petal-labs/coverkit/core"
)

// Settings carries the values a Factory needs to build a provider.
// Empty fields fall back to provider defaults.
type Settings struct {
	APIKey  string
	BaseURL string
	Model   core.ModelID
	Logger  zerolog.Logger
}

// Factory creates a provider instance from settings.
type Factory func(s Settings) core.ImageGenerator

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// Register adds a provider factory to the registry.
// If a provider with the same name is already registered, it will be overwritten.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = factory
}

// Get retrieves a provider factory by name.
// Returns nil if the provider is not registered.
func Get(name string) Factory {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return registry[name]
}

// Create builds a provider by name.
// Returns an error if the provider is not registered.
func Create(name string, s Settings) (core.ImageGenerator, error) {
	factory := Get(name)
	if factory == nil {
		return nil, fmt.Errorf("unknown provider: %s (available: %v)", name, List())
	}
	return factory(s), nil
}

// List returns the names of all registered providers in sorted order.
func List() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered returns true if a provider with the given name is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := registry[name]
	return ok
}
