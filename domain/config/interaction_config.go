package config

import (
	"github.com/go-playground/validator/v10"
)

// Modifier names a keyboard modifier that disambiguates gestures
type Modifier string

const (
	ModifierShift Modifier = "shift"
	ModifierCtrl  Modifier = "ctrl"
	ModifierAlt   Modifier = "alt"
	ModifierMeta  Modifier = "meta"
)

// InteractionConfig holds the tunables of the canvas interaction engine
type InteractionConfig struct {
	// Pan/zoom magnitudes. Discrete triggers (keys) are coarser than
	// continuous ones (wheel, drag).
	DiscretePanFactor    float64 `yaml:"discrete_pan_factor" validate:"gt=0,lte=1"`
	ContinuousPanFactor  float64 `yaml:"continuous_pan_factor" validate:"gt=0,lte=1"`
	DiscreteZoomFactor   float64 `yaml:"discrete_zoom_factor" validate:"gt=1"`
	ContinuousZoomFactor float64 `yaml:"continuous_zoom_factor" validate:"gt=1"`

	// Fraction of the viewport size moved by one arrow-key nudge
	NudgeFraction float64 `yaml:"nudge_fraction" validate:"gt=0,lte=1"`

	// Graph-space radius of the merge-candidate search on drop
	MergeRadius float64 `yaml:"merge_radius" validate:"gte=0"`
	// Hit radius used when the palette has no descriptor for a type
	NodeRadius float64 `yaml:"node_radius" validate:"gt=0"`
	// Pointer travel, in screen pixels, still treated as a click
	ClickTolerance float64 `yaml:"click_tolerance" validate:"gte=0"`

	// Modifier bindings. The additive modifier is only read on node clicks,
	// so it may share the background-only pan modifier but not the link one.
	LinkModifier     Modifier `yaml:"link_modifier" validate:"oneof=shift ctrl alt meta,nefield=PanModifier"`
	PanModifier      Modifier `yaml:"pan_modifier" validate:"oneof=shift ctrl alt meta"`
	AdditiveModifier Modifier `yaml:"additive_modifier" validate:"oneof=shift ctrl alt meta,nefield=LinkModifier"`

	// Autosave policy
	AutoSave bool `yaml:"auto_save"`

	// Feature flags
	LogRectangleSelection bool `yaml:"log_rectangle_selection"`
	ConfirmMergeDelete    bool `yaml:"confirm_merge_delete"`
}

// DefaultInteractionConfig returns the default interaction configuration
func DefaultInteractionConfig() *InteractionConfig {
	return &InteractionConfig{
		// Pan/zoom
		DiscretePanFactor:    0.1,
		ContinuousPanFactor:  0.02,
		DiscreteZoomFactor:   1.25,
		ContinuousZoomFactor: 1.05,

		NudgeFraction: 0.01,

		// Hit testing
		MergeRadius:    10,
		NodeRadius:     20,
		ClickTolerance: 0,

		// Modifiers
		LinkModifier:     ModifierShift,
		PanModifier:      ModifierCtrl,
		AdditiveModifier: ModifierMeta,

		AutoSave: true,

		LogRectangleSelection: false,
		ConfirmMergeDelete:    true,
	}
}

// ProductionInteractionConfig returns production-specific configuration
func ProductionInteractionConfig() *InteractionConfig {
	config := DefaultInteractionConfig()

	// Absorb pointer jitter on touch screens
	config.ClickTolerance = 2

	return config
}

// DevelopmentInteractionConfig returns development-specific configuration
func DevelopmentInteractionConfig() *InteractionConfig {
	config := DefaultInteractionConfig()

	// Explicit saves only, and a fuller action log for debugging
	config.AutoSave = false
	config.LogRectangleSelection = true

	return config
}

// LoadInteractionConfig loads interaction configuration based on environment
func LoadInteractionConfig(environment string) *InteractionConfig {
	switch environment {
	case "production":
		return ProductionInteractionConfig()
	case "development":
		return DevelopmentInteractionConfig()
	default:
		return DefaultInteractionConfig()
	}
}

// Clone returns an independent copy
func (c *InteractionConfig) Clone() *InteractionConfig {
	clone := *c
	return &clone
}

// Validate checks if the configuration is valid
func (c *InteractionConfig) Validate() error {
	return validator.New().Struct(c)
}
