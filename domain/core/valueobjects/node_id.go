package valueobjects

import (
	"errors"

	"github.com/google/uuid"
)

// NodeID is a value object representing a unique node identifier
// Value objects are immutable and have no identity beyond their value
type NodeID struct {
	value string
}

// NewNodeID creates a new random NodeID
func NewNodeID() NodeID {
	return NodeID{value: uuid.New().String()}
}

// NewNodeIDFromString creates a NodeID from an existing string
func NewNodeIDFromString(id string) (NodeID, error) {
	if id == "" {
		return NodeID{}, errors.New("node ID cannot be empty")
	}
	if !isValidUUID(id) {
		return NodeID{}, errors.New("node ID must be a valid UUID")
	}
	return NodeID{value: id}, nil
}

// String returns the string representation of the NodeID
func (id NodeID) String() string {
	return id.value
}

// Equals checks if two NodeIDs are equal
func (id NodeID) Equals(other NodeID) bool {
	return id.value == other.value
}

// IsZero checks if the NodeID is the zero value
func (id NodeID) IsZero() bool {
	return id.value == ""
}

// MarshalText implements encoding.TextMarshaler so ids work as map keys and
// in yaml/json documents alike.
func (id NodeID) MarshalText() ([]byte, error) {
	return []byte(id.value), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (id *NodeID) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*id = NodeID{}
		return nil
	}
	parsed, err := NewNodeIDFromString(string(data))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// LinkID identifies a committed link between two nodes
type LinkID struct {
	value string
}

// NewLinkID creates a new random LinkID
func NewLinkID() LinkID {
	return LinkID{value: uuid.New().String()}
}

// NewLinkIDFromString creates a LinkID from an existing string
func NewLinkIDFromString(id string) (LinkID, error) {
	if id == "" {
		return LinkID{}, errors.New("link ID cannot be empty")
	}
	if !isValidUUID(id) {
		return LinkID{}, errors.New("link ID must be a valid UUID")
	}
	return LinkID{value: id}, nil
}

// String returns the string representation of the LinkID
func (id LinkID) String() string {
	return id.value
}

// Equals checks if two LinkIDs are equal
func (id LinkID) Equals(other LinkID) bool {
	return id.value == other.value
}

// IsZero checks if the LinkID is the zero value
func (id LinkID) IsZero() bool {
	return id.value == ""
}

// MarshalText implements encoding.TextMarshaler
func (id LinkID) MarshalText() ([]byte, error) {
	return []byte(id.value), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (id *LinkID) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*id = LinkID{}
		return nil
	}
	parsed, err := NewLinkIDFromString(string(data))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// isValidUUID validates if a string is a valid UUID
func isValidUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
