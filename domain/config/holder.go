package config

import "sync/atomic"

// Holder publishes the live InteractionConfig to running engines. Hot reload
// swaps the pointer; readers always see a complete config.
type Holder struct {
	current atomic.Pointer[InteractionConfig]
}

// NewHolder creates a holder; nil falls back to the defaults
func NewHolder(cfg *InteractionConfig) *Holder {
	h := &Holder{}
	h.Store(cfg)
	return h
}

// Load returns the current config
func (h *Holder) Load() *InteractionConfig {
	return h.current.Load()
}

// Store replaces the current config with a copy of cfg
func (h *Holder) Store(cfg *InteractionConfig) {
	if cfg == nil {
		cfg = DefaultInteractionConfig()
	}
	h.current.Store(cfg.Clone())
}
