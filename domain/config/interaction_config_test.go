package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadInteractionConfig(t *testing.T) {
	tests := []struct {
		environment  string
		wantAutoSave bool
		wantRectLog  bool
	}{
		{environment: "production", wantAutoSave: true},
		{environment: "development", wantAutoSave: false, wantRectLog: true},
		{environment: "", wantAutoSave: true},
		{environment: "staging", wantAutoSave: true},
	}

	for _, tt := range tests {
		t.Run(tt.environment, func(t *testing.T) {
			cfg := LoadInteractionConfig(tt.environment)
			assert.Equal(t, tt.wantAutoSave, cfg.AutoSave)
			assert.Equal(t, tt.wantRectLog, cfg.LogRectangleSelection)
			assert.NoError(t, cfg.Validate())
		})
	}
}

func TestInteractionConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*InteractionConfig)
	}{
		{name: "zoom factor not above one", mutate: func(c *InteractionConfig) { c.DiscreteZoomFactor = 1 }},
		{name: "negative pan factor", mutate: func(c *InteractionConfig) { c.ContinuousPanFactor = -0.1 }},
		{name: "zero node radius", mutate: func(c *InteractionConfig) { c.NodeRadius = 0 }},
		{name: "unknown modifier", mutate: func(c *InteractionConfig) { c.LinkModifier = "hyper" }},
		{name: "link and pan share a modifier", mutate: func(c *InteractionConfig) { c.PanModifier = c.LinkModifier }},
		{name: "additive shares the link modifier", mutate: func(c *InteractionConfig) { c.AdditiveModifier = ModifierShift }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultInteractionConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestInteractionConfig_AdditiveMaySharePanModifier(t *testing.T) {
	cfg := DefaultInteractionConfig()
	cfg.AdditiveModifier = cfg.PanModifier
	assert.NoError(t, cfg.Validate())
}

func TestInteractionConfig_Clone(t *testing.T) {
	cfg := DefaultInteractionConfig()
	clone := cfg.Clone()
	clone.MergeRadius = 99

	assert.Equal(t, 10.0, cfg.MergeRadius)
}
