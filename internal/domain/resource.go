package domain

// Resource is a single stored key/value pair, keyed by its ring ID.
type Resource struct {
	Key   ID
	Value []byte
}

// Role describes why a node is holding a given resource.
type Role int

const (
	// RolePrimary means the node owns the key outright: it lies in the
	// node's (predecessor, self] arc.
	RolePrimary Role = iota
	// RoleReplica means the node holds the key only because it is one of
	// the primary owner's successors (see spec C8 replication).
	RoleReplica
)

func (r Role) String() string {
	if r == RolePrimary {
		return "primary"
	}
	return "replica"
}
