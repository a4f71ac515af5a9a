package domain

import "fmt"

type Operation string

const (
	OperationList   Operation = "list"
	OperationAdd    Operation = "add"
	OperationEdit   Operation = "edit"
	OperationUpdate Operation = "update"
	OperationDelete Operation = "delete"
)

// Requirement is the minimum role an operation demands. Higher values are more restrictive.
type Requirement int

const (
	RequireAuthenticated Requirement = iota + 1
	RequireElevated
)

func (r Requirement) String() string {
	switch r {
	case RequireAuthenticated:
		return "any authenticated role"
	case RequireElevated:
		return "ADMIN or MANAGER role"
	default:
		return "unknown requirement"
	}
}

// Policy maps each operation to the minimum role it demands.
type Policy map[Operation]Requirement

// DefaultPolicy returns the user administration policy table.
func DefaultPolicy() Policy {
	return Policy{
		OperationList:   RequireAuthenticated,
		OperationAdd:    RequireAuthenticated,
		OperationEdit:   RequireElevated,
		OperationUpdate: RequireElevated,
		OperationDelete: RequireElevated,
	}
}

// Merge combines two tables, keeping the more restrictive requirement where both define an operation.
func (p Policy) Merge(other Policy) Policy {
	merged := make(Policy, len(p)+len(other))
	for op, req := range p {
		merged[op] = req
	}
	for op, req := range other {
		if req > merged[op] {
			merged[op] = req
		}
	}
	return merged
}

// Authorize returns an empty reason when principal may perform op.
// Operations absent from the table are always denied.
func (p Policy) Authorize(principal Principal, op Operation) (reason string, allowed bool) {
	req, ok := p[op]
	if !ok {
		return fmt.Sprintf("operation %q is not permitted", op), false
	}
	if !principal.Authenticated() {
		return "authentication required", false
	}
	switch req {
	case RequireAuthenticated:
		return "", true
	case RequireElevated:
		if principal.HasElevatedRole() {
			return "", true
		}
	}
	return fmt.Sprintf("operation %q requires %s", op, req), false
}
