package host

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Tree answers containment questions about rendered nodes.
type Tree interface {
	Contains(ancestor, node Node) bool
}

// FocusTrap keeps focus inside a subtree while active.
type FocusTrap interface {
	Activate(root Node) error
	Deactivate()
}

// ScrollLock disables document scrolling while enabled.
type ScrollLock interface {
	Enable()
	Disable()
}

// Popover positions content against a target node.
type Popover interface {
	Position(popover, target Node) error
}

// Portal mounts content outside the owning tree.
type Portal interface {
	Mount(kind string) (Node, error)
	Unmount(node Node)
}

// IDGenerator returns ids that are unique for the lifetime of the host.
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator generates ids from random UUIDs.
type UUIDGenerator struct {
	// Prefix is prepended with a "-" when set.
	Prefix string
}

// NewID implements IDGenerator.
func (g UUIDGenerator) NewID() string {
	id := uuid.NewString()
	if g.Prefix == "" {
		return id
	}

	return g.Prefix + "-" + id
}

// MakeID joins id parts with "--", skipping nil and empty parts.
//
//	MakeID("tabs", "tab", 2) == "tabs--tab--2"
func MakeID(parts ...any) string {
	kept := make([]string, 0, len(parts))

	for _, part := range parts {
		if part == nil {
			continue
		}

		s := fmt.Sprint(part)
		if s == "" {
			continue
		}

		kept = append(kept, s)
	}

	return strings.Join(kept, "--")
}
