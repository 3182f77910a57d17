package valueobjects

import (
	"encoding/json"
	"strings"

	pkgerrors "brain2-canvas/pkg/errors"
)

// PropertyKind stamps how a property value is interpreted
type PropertyKind string

const (
	KindNormal PropertyKind = "normal"
	KindText   PropertyKind = "text"
	KindJSON   PropertyKind = "json"
)

// ParsePropertyKind rejects anything outside normal/text/json
func ParsePropertyKind(kind string) (PropertyKind, error) {
	k := PropertyKind(strings.ToLower(strings.TrimSpace(kind)))
	if !k.IsValid() {
		return "", pkgerrors.NewUnknownPropertyKindError("", kind)
	}
	return k, nil
}

// IsValid reports whether the kind is a known one
func (k PropertyKind) IsValid() bool {
	switch k {
	case KindNormal, KindText, KindJSON:
		return true
	default:
		return false
	}
}

// Property is a single typed value attached to a node
type Property struct {
	kind  PropertyKind
	value string
}

// NewProperty creates a property, validating kind and, for json, the value
func NewProperty(name string, kind PropertyKind, value string) (Property, error) {
	if strings.TrimSpace(name) == "" {
		return Property{}, pkgerrors.NewValidationError("property name cannot be empty")
	}
	if !kind.IsValid() {
		return Property{}, pkgerrors.NewUnknownPropertyKindError(name, string(kind))
	}
	if kind == KindJSON && value != "" && !json.Valid([]byte(value)) {
		return Property{}, pkgerrors.NewValidationError("property " + name + " is not valid json")
	}
	return Property{kind: kind, value: value}, nil
}

// ReconstructProperty rebuilds a property from stored data without validating
// the kind. Imported projects may carry kinds this build does not know about;
// they survive round trips but are skipped by merges.
func ReconstructProperty(kind, value string) Property {
	return Property{kind: PropertyKind(kind), value: value}
}

// Kind returns the property kind
func (p Property) Kind() PropertyKind {
	return p.kind
}

// Value returns the raw value
func (p Property) Value() string {
	return p.value
}

// Properties is an insertion-ordered name -> Property mapping
type Properties struct {
	names  []string
	values map[string]Property
}

// NewProperties creates an empty property set
func NewProperties() *Properties {
	return &Properties{values: make(map[string]Property)}
}

// Set inserts or replaces a property, keeping the original position on replace
func (p *Properties) Set(name string, prop Property) {
	if p.values == nil {
		p.values = make(map[string]Property)
	}
	if _, exists := p.values[name]; !exists {
		p.names = append(p.names, name)
	}
	p.values[name] = prop
}

// Get returns a property by name
func (p *Properties) Get(name string) (Property, bool) {
	prop, ok := p.values[name]
	return prop, ok
}

// Has reports whether a property exists
func (p *Properties) Has(name string) bool {
	_, ok := p.values[name]
	return ok
}

// Remove deletes a property
func (p *Properties) Remove(name string) bool {
	if _, ok := p.values[name]; !ok {
		return false
	}
	delete(p.values, name)
	for i, n := range p.names {
		if n == name {
			p.names = append(p.names[:i], p.names[i+1:]...)
			break
		}
	}
	return true
}

// Names returns property names in insertion order
func (p *Properties) Names() []string {
	out := make([]string, len(p.names))
	copy(out, p.names)
	return out
}

// Len returns the number of properties
func (p *Properties) Len() int {
	return len(p.names)
}

// Clone returns an independent copy
func (p *Properties) Clone() *Properties {
	c := NewProperties()
	for _, name := range p.names {
		c.Set(name, p.values[name])
	}
	return c
}
