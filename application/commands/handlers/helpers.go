package handlers

import (
	"fmt"

	"brain2-canvas/application/commands/bus"
	"brain2-canvas/domain/core/valueobjects"
	pkgerrors "brain2-canvas/pkg/errors"
)

func parseNodeID(raw string) (valueobjects.NodeID, error) {
	id, err := valueobjects.NewNodeIDFromString(raw)
	if err != nil {
		return valueobjects.NodeID{}, pkgerrors.NewValidationError("invalid node ID").WithCause(err)
	}
	return id, nil
}

func parseLinkID(raw string) (valueobjects.LinkID, error) {
	id, err := valueobjects.NewLinkIDFromString(raw)
	if err != nil {
		return valueobjects.LinkID{}, pkgerrors.NewValidationError("invalid link ID").WithCause(err)
	}
	return id, nil
}

func unexpected(cmd bus.Command) error {
	return pkgerrors.NewInternalError(fmt.Sprintf("unexpected command %T", cmd))
}
