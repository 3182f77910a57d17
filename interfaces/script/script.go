// Package script plays recorded or hand-written gesture scripts against a
// canvas. A script is a YAML list of steps; each step is one pointer, wheel
// or key event, one edit command, or an expectation about the resulting
// state. Scripts drive regression tests and the canvas-replay CLI.
package script

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"brain2-canvas/application/commands"
	"brain2-canvas/application/interaction"
	pkgerrors "brain2-canvas/pkg/errors"
	"brain2-canvas/pkg/utils"
)

// Script is a named sequence of steps played on a screen of fixed size
type Script struct {
	Name   string                 `yaml:"name"`
	Screen interaction.ScreenSize `yaml:"screen"`
	Steps  []Step                 `yaml:"steps" validate:"required,min=1"`
}

// Point is a screen position, either literal or the current screen
// position of an aliased node shifted by the literal offset.
type Point struct {
	X    float64 `yaml:"x"`
	Y    float64 `yaml:"y"`
	Node string  `yaml:"node,omitempty"`
}

// Pointer is a single pointer event
type Pointer struct {
	Point     `yaml:",inline"`
	Modifiers interaction.Modifiers `yaml:"modifiers,omitempty"`
}

// Drag is a pointer-down, evenly spaced moves and a pointer-up
type Drag struct {
	From      Point                 `yaml:"from"`
	To        Point                 `yaml:"to"`
	Steps     int                   `yaml:"steps,omitempty" validate:"gte=0,lte=1000"`
	Modifiers interaction.Modifiers `yaml:"modifiers,omitempty"`
}

// Wheel is one wheel step at a screen position
type Wheel struct {
	Point     `yaml:",inline"`
	DX        float64               `yaml:"dx"`
	DY        float64               `yaml:"dy"`
	Modifiers interaction.Modifiers `yaml:"modifiers,omitempty"`
}

// Key is one key press
type Key struct {
	Key       string                `yaml:"key" validate:"required"`
	Modifiers interaction.Modifiers `yaml:"modifiers,omitempty"`
}

// Click selects a node without moving it
type Click struct {
	Node      string                `yaml:"node" validate:"required"`
	Modifiers interaction.Modifiers `yaml:"modifiers,omitempty"`
}

// GraphPoint is an expected node position in graph units
type GraphPoint struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// Expectation asserts on the canvas state after the previous steps. Unset
// fields are not checked.
type Expectation struct {
	Nodes         *int                  `yaml:"nodes,omitempty"`
	Links         *int                  `yaml:"links,omitempty"`
	SelectedNodes *int                  `yaml:"selected_nodes,omitempty"`
	SelectedLinks *int                  `yaml:"selected_links,omitempty"`
	Gesture       string                `yaml:"gesture,omitempty"`
	Dirty         *bool                 `yaml:"dirty,omitempty"`
	Actions       *int                  `yaml:"actions,omitempty"`
	LastAction    string                `yaml:"last_action,omitempty"`
	Positions     map[string]GraphPoint `yaml:"positions,omitempty"`
	Tolerance     float64               `yaml:"tolerance,omitempty"`
}

// Step holds exactly one event, command or expectation. As names the node
// or link created by the step so later steps can refer to it as $name.
// ExpectError makes the step pass only if it fails with that error type.
type Step struct {
	As          string `yaml:"as,omitempty"`
	ExpectError string `yaml:"expect_error,omitempty"`

	PointerDown *Pointer `yaml:"pointer_down,omitempty"`
	PointerMove *Pointer `yaml:"pointer_move,omitempty"`
	PointerUp   *Pointer `yaml:"pointer_up,omitempty"`
	Drag        *Drag    `yaml:"drag,omitempty"`
	Wheel       *Wheel   `yaml:"wheel,omitempty"`
	Key         *Key     `yaml:"key,omitempty"`
	Click       *Click   `yaml:"click,omitempty"`

	CreateNode      *commands.CreateNodeCommand         `yaml:"create_node,omitempty"`
	SetProperty     *commands.SetNodePropertyCommand    `yaml:"set_property,omitempty"`
	RemoveProperty  *commands.RemoveNodePropertyCommand `yaml:"remove_property,omitempty"`
	MoveNode        *commands.MoveNodeCommand           `yaml:"move_node,omitempty"`
	DeleteNode      *commands.DeleteNodeCommand         `yaml:"delete_node,omitempty"`
	CreateLink      *commands.CreateLinkCommand         `yaml:"create_link,omitempty"`
	UpdateLink      *commands.UpdateLinkCommand         `yaml:"update_link,omitempty"`
	DeleteLink      *commands.DeleteLinkCommand         `yaml:"delete_link,omitempty"`
	DeleteSelection *commands.DeleteSelectionCommand    `yaml:"delete_selection,omitempty"`
	SetReadOnly     *commands.SetReadOnlyCommand        `yaml:"set_read_only,omitempty"`
	Save            *commands.SaveProjectCommand        `yaml:"save,omitempty"`

	Expect *Expectation `yaml:"expect,omitempty"`
}

// Kind names the populated field of the step
func (s Step) Kind() string {
	kinds := s.kinds()
	if len(kinds) != 1 {
		return ""
	}
	return kinds[0]
}

func (s Step) kinds() []string {
	var kinds []string
	add := func(set bool, name string) {
		if set {
			kinds = append(kinds, name)
		}
	}
	add(s.PointerDown != nil, "pointer_down")
	add(s.PointerMove != nil, "pointer_move")
	add(s.PointerUp != nil, "pointer_up")
	add(s.Drag != nil, "drag")
	add(s.Wheel != nil, "wheel")
	add(s.Key != nil, "key")
	add(s.Click != nil, "click")
	add(s.CreateNode != nil, "create_node")
	add(s.SetProperty != nil, "set_property")
	add(s.RemoveProperty != nil, "remove_property")
	add(s.MoveNode != nil, "move_node")
	add(s.DeleteNode != nil, "delete_node")
	add(s.CreateLink != nil, "create_link")
	add(s.UpdateLink != nil, "update_link")
	add(s.DeleteLink != nil, "delete_link")
	add(s.DeleteSelection != nil, "delete_selection")
	add(s.SetReadOnly != nil, "set_read_only")
	add(s.Save != nil, "save")
	add(s.Expect != nil, "expect")
	return kinds
}

// Validate checks the script shape: one action per step, aliases only on
// steps that create something.
func (s *Script) Validate() error {
	if err := utils.ValidateStruct(s); err != nil {
		return err
	}
	if s.Screen.Width < 0 || s.Screen.Height < 0 {
		return pkgerrors.NewValidationError("screen size must not be negative")
	}

	seen := make(map[string]int)
	for i, step := range s.Steps {
		kinds := step.kinds()
		switch len(kinds) {
		case 0:
			return stepValidation(i, "step has no action")
		case 1:
		default:
			return stepValidation(i, "step has more than one action: "+strings.Join(kinds, ", "))
		}

		if step.Drag != nil {
			if err := utils.ValidateStruct(step.Drag); err != nil {
				return pkgerrors.Wrap(err, fmt.Sprintf("step %d", i+1))
			}
		}
		if step.Key != nil {
			if err := utils.ValidateStruct(step.Key); err != nil {
				return pkgerrors.Wrap(err, fmt.Sprintf("step %d", i+1))
			}
		}
		if step.Click != nil {
			if err := utils.ValidateStruct(step.Click); err != nil {
				return pkgerrors.Wrap(err, fmt.Sprintf("step %d", i+1))
			}
		}

		if step.As == "" {
			continue
		}
		if step.CreateNode == nil && step.CreateLink == nil {
			return stepValidation(i, "only create_node and create_link steps can be aliased")
		}
		if prev, dup := seen[step.As]; dup {
			return stepValidation(i, fmt.Sprintf("alias %q already defined by step %d", step.As, prev+1))
		}
		seen[step.As] = i
	}
	return nil
}

func stepValidation(index int, msg string) error {
	return pkgerrors.NewValidationError(fmt.Sprintf("step %d: %s", index+1, msg)).
		WithDetail("step", index+1)
}

// Parse decodes and validates a script. Unknown keys are rejected so a
// typo does not silently skip a step.
func Parse(data []byte) (*Script, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var s Script
	if err := dec.Decode(&s); err != nil {
		if err == io.EOF {
			return nil, pkgerrors.NewValidationError("script is empty")
		}
		return nil, pkgerrors.NewValidationError("invalid script").WithCause(err).
			WithDetail("error", err.Error())
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Load reads and parses a script file
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, pkgerrors.NewNotFoundError("script " + path).WithCause(err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, pkgerrors.Wrap(err, path)
	}
	if s.Name == "" {
		s.Name = path
	}
	return s, nil
}
