package resource

import "fmt"

// Op is the kind of operation a Manager has in flight.
type Op int

const (
	OpIdle Op = iota
	OpFetching
	OpCreating
	OpUpdating
	OpDeleting
)

func (o Op) String() string {
	switch o {
	case OpIdle:
		return "Idle"
	case OpFetching:
		return "Fetching"
	case OpCreating:
		return "Creating"
	case OpUpdating:
		return "Updating"
	case OpDeleting:
		return "Deleting"
	default:
		return "Unknown"
	}
}

// PendingOperation is the in-flight operation. ID is set only for Updating
// and Deleting.
type PendingOperation struct {
	Op Op
	ID string
}

var Idle = PendingOperation{Op: OpIdle}

func Fetching() PendingOperation { return PendingOperation{Op: OpFetching} }
func Creating() PendingOperation { return PendingOperation{Op: OpCreating} }
func Updating(id string) PendingOperation { return PendingOperation{Op: OpUpdating, ID: id} }
func Deleting(id string) PendingOperation { return PendingOperation{Op: OpDeleting, ID: id} }

// IsIdle reports whether nothing is in flight.
func (p PendingOperation) IsIdle() bool { return p.Op == OpIdle }

// Targets reports whether an update or delete of id is in flight.
func (p PendingOperation) Targets(id string) bool {
	return (p.Op == OpUpdating || p.Op == OpDeleting) && p.ID == id
}

func (p PendingOperation) String() string {
	if p.ID != "" {
		return fmt.Sprintf("%s(%s)", p.Op, p.ID)
	}
	return p.Op.String()
}
