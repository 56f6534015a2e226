package node

import (
	"context"

	"ChordDHT/internal/client"
	"ChordDHT/internal/domain"
	"ChordDHT/internal/logger"
)

// replicate pushes every Primary resource self holds to the first k
// successors and reconciles Replica entries: promoting any self now owns
// outright and evicting any that have drifted out of the replica window
// (spec C8 replication maintainer).
func (n *Node) replicate(ctx context.Context) {
	k := n.rt.Space().ReplicationFactor
	if k <= 0 {
		return
	}

	n.promoteOwnedReplicas()

	primaries := n.s.Primaries()
	if len(primaries) > 0 {
		targets := n.replicaTargets(k)
		for _, target := range targets {
			n.pushReplicas(ctx, target, primaries)
		}
	}

	n.evictStaleReplicas(ctx, k)
}

// replicaTargets returns the entries among the first k successor-list slots,
// skipping self and nil slots. It does not remove duplicates or check
// liveness.
func (n *Node) replicaTargets(k int) []*domain.Node {
	self := n.rt.Self()
	out := make([]*domain.Node, 0, k)
	for i := 0; i < k && i < n.rt.Space().SuccListSize; i++ {
		s := n.rt.GetSuccessor(i)
		if s == nil || s.ID.Equal(self.ID) {
			continue
		}
		out = append(out, s)
	}
	return out
}

func (n *Node) pushReplicas(ctx context.Context, target *domain.Node, resources []domain.Resource) {
	cli, closeFn, err := n.dialOrPool(target.Addr)
	if err != nil {
		n.lgr.Warn("replicate: could not reach target", logger.FNode("target", target), logger.F("err", err))
		return
	}
	defer closeFn()

	callCtx, cancel := context.WithTimeout(ctx, n.cp.FailureTimeout())
	defer cancel()
	if err := client.Replicate(callCtx, cli, resources); err != nil {
		n.lgr.Warn("replicate: push failed", logger.FNode("target", target), logger.F("count", len(resources)), logger.F("err", err))
		return
	}
	n.lgr.Debug("replicate: pushed primaries", logger.FNode("target", target), logger.F("count", len(resources)))
}

// promoteOwnedReplicas upgrades any locally held Replica that self now owns
// outright to Primary. A predecessor failure or a Notify acceptance can
// shift the (predecessor, self] arc onto a key self was only holding as a
// replica; that copy is the only surviving one until the next push round
// re-replicates it, so it must never be treated as stale (spec §4.8
// "promoted to Primary if N now sits in the correct range").
func (n *Node) promoteOwnedReplicas() {
	for _, res := range n.s.All() {
		role, ok := n.s.Role(res.Key)
		if !ok || role != domain.RoleReplica {
			continue
		}
		if !n.IsOwner(res.Key) {
			continue
		}
		n.s.SetRole(res.Key, domain.RolePrimary)
		n.lgr.Info("replicate: promoted held replica to primary", logger.F("key", res.Key.String()))
	}
}

// evictStaleReplicas drops any locally held Replica whose presumed primary
// no longer keeps self among its first k successors, i.e. an ownership
// change moved the replica window away from self (spec C8 "stale replica
// eviction"). A key self owns outright is never a candidate here —
// promoteOwnedReplicas already retagged it Primary this round.
func (n *Node) evictStaleReplicas(ctx context.Context, k int) {
	for _, res := range n.s.All() {
		role, ok := n.s.Role(res.Key)
		if !ok || role != domain.RoleReplica {
			continue
		}
		if n.IsOwner(res.Key) {
			continue
		}
		if n.isWithinReplicaWindowOf(ctx, res.Key, k) {
			continue
		}
		if err := n.s.Delete(res.Key); err != nil {
			n.lgr.Debug("replicate: eviction race, entry already gone", logger.F("key", res.Key.String()))
		}
	}
}

// isWithinReplicaWindowOf resolves key's presumed primary and asks it
// directly whether self still falls among its first k successors: the
// window is the primary's, not self's, so it cannot be answered from local
// state alone. Any resolution failure keeps the replica rather than risk
// the only surviving copy of key (invariant: under-replication is not
// acceptable).
func (n *Node) isWithinReplicaWindowOf(ctx context.Context, key domain.ID, k int) bool {
	findCtx, cancel := context.WithTimeout(ctx, n.cp.FailureTimeout())
	primary, _, err := n.FindSuccessor(findCtx, key)
	cancel()
	if err != nil || primary == nil {
		return true
	}

	self := n.rt.Self()
	if primary.ID.Equal(self.ID) {
		return true
	}

	cli, closeFn, err := n.dialOrPool(primary.Addr)
	if err != nil {
		return true
	}
	defer closeFn()

	listCtx, cancel := context.WithTimeout(ctx, n.cp.FailureTimeout())
	succs, err := client.GetSuccessorList(listCtx, cli)
	cancel()
	if err != nil {
		return true
	}
	return n.InReplicaWindow(succs, k)
}
