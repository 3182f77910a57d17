package script

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"brain2-canvas/application/commands"
	"brain2-canvas/application/commands/bus"
	"brain2-canvas/application/interaction"
	"brain2-canvas/application/queries"
	querybus "brain2-canvas/application/queries/bus"
	"brain2-canvas/domain/core/aggregates"
	"brain2-canvas/domain/core/valueobjects"
	pkgerrors "brain2-canvas/pkg/errors"
)

const defaultTolerance = 1e-6

// Surface receives the raw input events of a script
type Surface interface {
	SetScreenSize(size interaction.ScreenSize) error
	PointerDown(ev interaction.PointerEvent) error
	PointerMove(ev interaction.PointerEvent)
	PointerUp(ev interaction.PointerEvent)
	Wheel(ev interaction.WheelEvent)
	KeyDown(ctx context.Context, ev interaction.KeyEvent) error
	Click(id valueobjects.NodeID, mods interaction.Modifiers)
}

// StepError reports the step at which a script stopped
type StepError struct {
	Index int
	Kind  string
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (%s): %v", e.Index+1, e.Kind, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// Result summarises a played script
type Result struct {
	Script   string            `json:"script"`
	Steps    int               `json:"steps"`
	Aliases  map[string]string `json:"aliases,omitempty"`
	Duration time.Duration     `json:"duration_ns"`
}

// Player plays scripts. Input events go straight to the surface, edits go
// through the command bus and expectations read the query bus, so a replay
// exercises the same paths as an interactive session.
type Player struct {
	surface  Surface
	commands *bus.CommandBus
	queries  *querybus.QueryBus
	logger   *zap.Logger

	screen  interaction.ScreenSize
	aliases map[string]string
}

// NewPlayer creates a new player
func NewPlayer(surface Surface, commandBus *bus.CommandBus, queryBus *querybus.QueryBus, logger *zap.Logger) *Player {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Player{
		surface:  surface,
		commands: commandBus,
		queries:  queryBus,
		logger:   logger,
	}
}

// Play runs every step in order and stops at the first failure. Aliases
// are scoped to one call.
func (p *Player) Play(ctx context.Context, s *Script) (*Result, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	p.aliases = make(map[string]string)
	p.screen = s.Screen
	if p.screen.Width == 0 || p.screen.Height == 0 {
		p.screen = interaction.ScreenSize{Width: 800, Height: 600}
	}
	if err := p.surface.SetScreenSize(p.screen); err != nil {
		return nil, err
	}

	start := time.Now()
	for i, step := range s.Steps {
		if err := ctx.Err(); err != nil {
			return nil, &StepError{Index: i, Kind: step.Kind(), Err: err}
		}
		err := p.play(ctx, step)
		if err = expectError(step.ExpectError, err); err != nil {
			p.logger.Warn("Script step failed",
				zap.String("script", s.Name),
				zap.Int("step", i+1),
				zap.String("kind", step.Kind()),
				zap.Error(err))
			return nil, &StepError{Index: i, Kind: step.Kind(), Err: err}
		}
		p.logger.Debug("Script step played",
			zap.String("script", s.Name),
			zap.Int("step", i+1),
			zap.String("kind", step.Kind()))
	}

	aliases := make(map[string]string, len(p.aliases))
	for k, v := range p.aliases {
		aliases[k] = v
	}
	result := &Result{Script: s.Name, Steps: len(s.Steps), Aliases: aliases, Duration: time.Since(start)}
	p.logger.Info("Script played",
		zap.String("script", s.Name),
		zap.Int("steps", result.Steps),
		zap.Duration("duration", result.Duration))
	return result, nil
}

// expectError turns a step outcome into pass or fail given the expected
// error type, if any.
func expectError(want string, err error) error {
	if want == "" {
		return err
	}
	if err == nil {
		return pkgerrors.NewValidationError("expected " + want + " error, step succeeded")
	}
	if !pkgerrors.IsType(err, pkgerrors.ErrorType(strings.ToUpper(want))) {
		return pkgerrors.NewValidationError(fmt.Sprintf("expected %s error, got: %v", want, err))
	}
	return nil
}

func (p *Player) play(ctx context.Context, step Step) error {
	switch {
	case step.PointerDown != nil:
		ev, err := p.pointerEvent(ctx, *step.PointerDown)
		if err != nil {
			return err
		}
		return p.surface.PointerDown(ev)

	case step.PointerMove != nil:
		ev, err := p.pointerEvent(ctx, *step.PointerMove)
		if err != nil {
			return err
		}
		p.surface.PointerMove(ev)
		return nil

	case step.PointerUp != nil:
		ev, err := p.pointerEvent(ctx, *step.PointerUp)
		if err != nil {
			return err
		}
		p.surface.PointerUp(ev)
		return nil

	case step.Drag != nil:
		return p.drag(ctx, *step.Drag)

	case step.Wheel != nil:
		at, err := p.resolvePoint(ctx, step.Wheel.Point)
		if err != nil {
			return err
		}
		p.surface.Wheel(interaction.WheelEvent{
			Position:  at,
			DeltaX:    step.Wheel.DX,
			DeltaY:    step.Wheel.DY,
			Modifiers: step.Wheel.Modifiers,
		})
		return nil

	case step.Key != nil:
		return p.surface.KeyDown(ctx, interaction.KeyEvent{Key: step.Key.Key, Modifiers: step.Key.Modifiers})

	case step.Click != nil:
		id, err := valueobjects.NewNodeIDFromString(p.resolve(step.Click.Node))
		if err != nil {
			return err
		}
		p.surface.Click(id, step.Click.Modifiers)
		return nil

	case step.Expect != nil:
		return p.check(ctx, *step.Expect)
	}

	return p.send(ctx, step)
}

// send dispatches the step's command with aliases substituted. The step's
// own command is copied so a script can be played more than once.
func (p *Player) send(ctx context.Context, step Step) error {
	switch {
	case step.CreateNode != nil:
		cmd := *step.CreateNode
		if err := p.commands.Send(ctx, &cmd); err != nil {
			return err
		}
		p.alias(step.As, cmd.NodeID)
		return nil
	case step.CreateLink != nil:
		cmd := *step.CreateLink
		cmd.SourceID, cmd.TargetID = p.resolve(cmd.SourceID), p.resolve(cmd.TargetID)
		if err := p.commands.Send(ctx, &cmd); err != nil {
			return err
		}
		p.alias(step.As, cmd.LinkID)
		return nil
	case step.SetProperty != nil:
		cmd := *step.SetProperty
		cmd.NodeID = p.resolve(cmd.NodeID)
		return p.commands.Send(ctx, &cmd)
	case step.RemoveProperty != nil:
		cmd := *step.RemoveProperty
		cmd.NodeID = p.resolve(cmd.NodeID)
		return p.commands.Send(ctx, &cmd)
	case step.MoveNode != nil:
		cmd := *step.MoveNode
		cmd.NodeID = p.resolve(cmd.NodeID)
		return p.commands.Send(ctx, &cmd)
	case step.DeleteNode != nil:
		cmd := *step.DeleteNode
		cmd.NodeID = p.resolve(cmd.NodeID)
		return p.commands.Send(ctx, &cmd)
	case step.UpdateLink != nil:
		cmd := *step.UpdateLink
		cmd.LinkID = p.resolve(cmd.LinkID)
		return p.commands.Send(ctx, &cmd)
	case step.DeleteLink != nil:
		cmd := *step.DeleteLink
		cmd.LinkID = p.resolve(cmd.LinkID)
		return p.commands.Send(ctx, &cmd)
	case step.DeleteSelection != nil:
		return p.commands.Send(ctx, &commands.DeleteSelectionCommand{})
	case step.SetReadOnly != nil:
		cmd := *step.SetReadOnly
		return p.commands.Send(ctx, &cmd)
	case step.Save != nil:
		return p.commands.Send(ctx, &commands.SaveProjectCommand{})
	}
	return pkgerrors.NewValidationError("step has no action")
}

func (p *Player) drag(ctx context.Context, d Drag) error {
	from, err := p.resolvePoint(ctx, d.From)
	if err != nil {
		return err
	}
	to, err := p.resolvePoint(ctx, d.To)
	if err != nil {
		return err
	}

	if err := p.surface.PointerDown(interaction.PointerEvent{Position: from, Modifiers: d.Modifiers}); err != nil {
		return err
	}
	steps := d.Steps
	if steps == 0 {
		steps = 1
	}
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps)
		p.surface.PointerMove(interaction.PointerEvent{
			Position: interaction.ScreenPoint{
				X: from.X + (to.X-from.X)*t,
				Y: from.Y + (to.Y-from.Y)*t,
			},
			Modifiers: d.Modifiers,
		})
	}
	p.surface.PointerUp(interaction.PointerEvent{Position: to, Modifiers: d.Modifiers})
	return nil
}

func (p *Player) pointerEvent(ctx context.Context, ptr Pointer) (interaction.PointerEvent, error) {
	at, err := p.resolvePoint(ctx, ptr.Point)
	if err != nil {
		return interaction.PointerEvent{}, err
	}
	return interaction.PointerEvent{Position: at, Modifiers: ptr.Modifiers}, nil
}

// resolvePoint maps a node reference to the node's current screen position
func (p *Player) resolvePoint(ctx context.Context, pt Point) (interaction.ScreenPoint, error) {
	if pt.Node == "" {
		return interaction.ScreenPoint{X: pt.X, Y: pt.Y}, nil
	}

	node, err := querybus.AskFor[*aggregates.NodeSnapshot](ctx, p.queries, queries.GetNodeQuery{NodeID: p.resolve(pt.Node)})
	if err != nil {
		return interaction.ScreenPoint{}, err
	}
	view, err := querybus.AskFor[*queries.ViewportResult](ctx, p.queries, queries.GetViewportQuery{})
	if err != nil {
		return interaction.ScreenPoint{}, err
	}
	v := view.Viewport
	return interaction.ScreenPoint{
		X: (node.X-v.Left)/v.Width*p.screen.Width + pt.X,
		Y: (node.Y-v.Top)/v.Height*p.screen.Height + pt.Y,
	}, nil
}

func (p *Player) check(ctx context.Context, exp Expectation) error {
	var failures []string
	fail := func(format string, args ...interface{}) {
		failures = append(failures, fmt.Sprintf(format, args...))
	}

	if exp.Nodes != nil || exp.Links != nil || len(exp.Positions) > 0 {
		data, err := querybus.AskFor[*queries.GetGraphDataResult](ctx, p.queries, queries.GetGraphDataQuery{IncludeHidden: true})
		if err != nil {
			return err
		}
		if exp.Nodes != nil && *exp.Nodes != len(data.Graph.Nodes) {
			fail("nodes: want %d, got %d", *exp.Nodes, len(data.Graph.Nodes))
		}
		if exp.Links != nil && *exp.Links != len(data.Graph.Links) {
			fail("links: want %d, got %d", *exp.Links, len(data.Graph.Links))
		}

		tolerance := exp.Tolerance
		if tolerance == 0 {
			tolerance = defaultTolerance
		}
		for ref, want := range exp.Positions {
			id := p.resolve(ref)
			node, ok := findNode(data.Graph.Nodes, id)
			if !ok {
				fail("position of %s: node not found", ref)
				continue
			}
			if math.Abs(node.X-want.X) > tolerance || math.Abs(node.Y-want.Y) > tolerance {
				fail("position of %s: want (%g, %g), got (%g, %g)", ref, want.X, want.Y, node.X, node.Y)
			}
		}
	}

	if exp.SelectedNodes != nil || exp.SelectedLinks != nil {
		sel, err := querybus.AskFor[*queries.SelectionResult](ctx, p.queries, queries.GetSelectionQuery{})
		if err != nil {
			return err
		}
		if exp.SelectedNodes != nil && *exp.SelectedNodes != len(sel.NodeIDs) {
			fail("selected nodes: want %d, got %d", *exp.SelectedNodes, len(sel.NodeIDs))
		}
		if exp.SelectedLinks != nil && *exp.SelectedLinks != len(sel.LinkIDs) {
			fail("selected links: want %d, got %d", *exp.SelectedLinks, len(sel.LinkIDs))
		}
	}

	if exp.Gesture != "" {
		view, err := querybus.AskFor[*queries.ViewportResult](ctx, p.queries, queries.GetViewportQuery{})
		if err != nil {
			return err
		}
		if view.ActiveGesture != exp.Gesture {
			fail("gesture: want %s, got %s", exp.Gesture, view.ActiveGesture)
		}
	}

	if exp.Dirty != nil {
		status, err := querybus.AskFor[*queries.SaveStatusResult](ctx, p.queries, queries.GetSaveStatusQuery{})
		if err != nil {
			return err
		}
		if status.Dirty != *exp.Dirty {
			fail("dirty: want %t, got %t", *exp.Dirty, status.Dirty)
		}
	}

	if exp.Actions != nil || exp.LastAction != "" {
		list, err := querybus.AskFor[*queries.ListActionsResult](ctx, p.queries, queries.ListActionsQuery{Limit: 1})
		if err != nil {
			return err
		}
		if exp.Actions != nil && *exp.Actions != list.Total {
			fail("actions: want %d, got %d", *exp.Actions, list.Total)
		}
		if exp.LastAction != "" {
			last := "none"
			if len(list.Actions) > 0 {
				last = string(list.Actions[0].Name)
			}
			if last != exp.LastAction {
				fail("last action: want %s, got %s", exp.LastAction, last)
			}
		}
	}

	if len(failures) > 0 {
		return pkgerrors.NewValidationError("expectation failed: " + strings.Join(failures, "; ")).
			WithCode("EXPECTATION_FAILED").
			WithDetail("failures", failures)
	}
	return nil
}

func findNode(nodes []aggregates.NodeSnapshot, id string) (aggregates.NodeSnapshot, bool) {
	for _, n := range nodes {
		if n.ID == id {
			return n, true
		}
	}
	return aggregates.NodeSnapshot{}, false
}

func (p *Player) alias(name, id string) {
	if name != "" {
		p.aliases[name] = id
	}
}

// resolve replaces a $alias with the id it names; anything else is
// returned unchanged so literal ids work too.
func (p *Player) resolve(ref string) string {
	if !strings.HasPrefix(ref, "$") {
		return ref
	}
	if id, ok := p.aliases[ref[1:]]; ok {
		return id
	}
	return ref
}
