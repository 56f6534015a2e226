package node

import (
	"time"

	"ChordDHT/internal/logger"
)

// Option configures a Node at construction time.
type Option func(*Node)

// WithLogger sets the logger used by the node and every component it owns.
func WithLogger(l logger.Logger) Option {
	return func(n *Node) {
		if l != nil {
			n.lgr = l
		}
	}
}

// WithHopLimit bounds forwarding depth for a single FindSuccessor lookup
// (spec C9: reference 2*M). The default is set by New from the node's
// identifier space if this option is never supplied.
func WithHopLimit(limit int32) Option {
	return func(n *Node) {
		if limit > 0 {
			n.hopLimit = limit
		}
	}
}

// WithStaleGrace sets the node's staleGrace duration. The replication
// maintainer does not consult it: evictStaleReplicas drops a Replica entry
// found outside its primary's k-successor window in the same round that
// finds it, with no grace period.
func WithStaleGrace(d time.Duration) Option {
	return func(n *Node) {
		if d > 0 {
			n.staleGrace = d
		}
	}
}

// WithMonitorAddr sets the address the node pushes periodic state
// snapshots to (spec.md §6). Empty means snapshot push is disabled.
func WithMonitorAddr(addr string) Option {
	return func(n *Node) { n.monitorAddr = addr }
}
