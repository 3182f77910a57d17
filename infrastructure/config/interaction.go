package config

import (
	"bytes"
	"os"

	"gopkg.in/yaml.v3"

	domainconfig "brain2-canvas/domain/config"
	pkgerrors "brain2-canvas/pkg/errors"
	"brain2-canvas/pkg/utils"
)

// LoadInteractionConfig returns the preset for the environment with the YAML
// file at path, if any, laid over it. Keys absent from the file keep their
// preset values.
func LoadInteractionConfig(environment, path string) (*domainconfig.InteractionConfig, error) {
	cfg := domainconfig.LoadInteractionConfig(environment)
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, pkgerrors.NewValidationError("failed to read interaction config").WithCause(err).WithDetail("path", path)
	}
	return ParseInteractionConfig(data, cfg)
}

// ParseInteractionConfig overlays YAML onto a copy of base and validates the
// result. Unknown keys are rejected so typos do not silently fall back.
func ParseInteractionConfig(data []byte, base *domainconfig.InteractionConfig) (*domainconfig.InteractionConfig, error) {
	cfg := base.Clone()
	if len(bytes.TrimSpace(data)) > 0 {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil {
			return nil, pkgerrors.NewValidationError("failed to parse interaction config").WithCause(err)
		}
	}
	if err := utils.ValidateStruct(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
