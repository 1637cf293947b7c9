package provider

import (
	"fmt"

	"invaudit/internal/config"
	"invaudit/internal/domain"
	"invaudit/internal/port"
)

// Factory is a function that creates an Extractor from a provider config.
type Factory func(cfg *config.ProviderConfig) (port.Extractor, error)

// registry of extractor factories, populated by init() in each provider
// package or explicitly via Register.
var registry = map[string]Factory{}

// Register registers an extractor factory by provider name.
func Register(name string, factory Factory) {
	registry[name] = factory
}

// NewExtractor creates an Extractor from a provider config using the
// registered factory.
func NewExtractor(cfg *config.ProviderConfig) (port.Extractor, error) {
	factory, ok := registry[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownProvider, cfg.Provider)
	}
	return factory(cfg)
}
