package dhtv1

import "ChordDHT/internal/domain"

// NodeToWire converts a domain.Node into its wire representation. Returns
// nil for a nil input so optional fields (e.g. GetPredecessor's answer when
// no predecessor is known) round-trip cleanly.
func NodeToWire(n *domain.Node) *Node {
	if n == nil {
		return nil
	}
	return &Node{Id: []byte(n.ID), Address: n.Addr}
}

// NodeFromWire is the inverse of NodeToWire.
func NodeFromWire(n *Node) *domain.Node {
	if n == nil || len(n.Id) == 0 {
		return nil
	}
	return &domain.Node{ID: domain.ID(n.Id), Addr: n.Address}
}

// NodeListToWire converts a slice of domain.Node pointers, skipping nils so
// a sparse successor list doesn't cross the wire with holes.
func NodeListToWire(nodes []*domain.Node) []*Node {
	out := make([]*Node, 0, len(nodes))
	for _, n := range nodes {
		if n != nil {
			out = append(out, NodeToWire(n))
		}
	}
	return out
}

// NodeListFromWire is the inverse of NodeListToWire.
func NodeListFromWire(nodes []*Node) []*domain.Node {
	out := make([]*domain.Node, 0, len(nodes))
	for _, n := range nodes {
		if dn := NodeFromWire(n); dn != nil {
			out = append(out, dn)
		}
	}
	return out
}

// RoleToWire maps a domain.Role to its wire string.
func RoleToWire(r domain.Role) string { return r.String() }

// RoleFromWire maps a wire role string back to domain.Role, defaulting to
// Replica for anything unrecognized (the conservative choice: an unknown
// role should never be mistaken for ownership it wasn't granted).
func RoleFromWire(s string) domain.Role {
	if s == "primary" {
		return domain.RolePrimary
	}
	return domain.RoleReplica
}

// ResourceToTransferEntry packs a stored resource and its role for the
// Transfer/Replicate wire messages.
func ResourceToTransferEntry(res domain.Resource, role domain.Role) *TransferEntry {
	return &TransferEntry{Key: []byte(res.Key), Value: res.Value, Role: RoleToWire(role)}
}

// TransferEntryToResource is the inverse of ResourceToTransferEntry.
func TransferEntryToResource(e *TransferEntry) (domain.Resource, domain.Role) {
	return domain.Resource{Key: domain.ID(e.Key), Value: e.Value}, RoleFromWire(e.Role)
}
