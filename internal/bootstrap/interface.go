// Package bootstrap abstracts how a node discovers the peer set it may
// join, independent of the join algorithm itself (internal/node handles
// the actual Chord join once a candidate address is in hand).
package bootstrap

import (
	"context"

	"ChordDHT/internal/domain"
)

// Bootstrap resolves and optionally publishes peer addresses for ring
// discovery (spec.md §6 bootstrap modes: static list, DNS/Route53).
type Bootstrap interface {
	// Discover returns known peer addresses, in no particular order.
	Discover(ctx context.Context) ([]string, error)
	// Register publishes self as discoverable, a no-op for modes that
	// don't maintain a registry (e.g. a static peer list).
	Register(ctx context.Context, node *domain.Node) error
	// Deregister removes self from the registry, a no-op where Register
	// was also a no-op.
	Deregister(ctx context.Context, node *domain.Node) error
}
