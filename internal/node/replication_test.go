package node

import (
	"context"
	"testing"

	"ChordDHT/internal/domain"
)

func TestReplicaTargetsSkipsSelfAndNil(t *testing.T) {
	sp := mustSpace(t)
	n := testNode(t, sp, 100, "self")
	self := n.rt.Self()
	a := &domain.Node{ID: sp.FromUint64(10), Addr: "a"}
	b := &domain.Node{ID: sp.FromUint64(20), Addr: "b"}
	n.rt.SetSuccessorList([]*domain.Node{self, a, nil, b})

	got := n.replicaTargets(4)
	if len(got) != 2 {
		t.Fatalf("replicaTargets = %v, want 2 entries (self and nil skipped)", got)
	}
	if !got[0].Equal(a) || !got[1].Equal(b) {
		t.Fatalf("replicaTargets = %v, want [a, b]", got)
	}
}

func TestReplicaTargetsRespectsK(t *testing.T) {
	sp := mustSpace(t)
	n := testNode(t, sp, 100, "self")
	a := &domain.Node{ID: sp.FromUint64(10), Addr: "a"}
	b := &domain.Node{ID: sp.FromUint64(20), Addr: "b"}
	n.rt.SetSuccessorList([]*domain.Node{a, b, nil, nil})

	got := n.replicaTargets(1)
	if len(got) != 1 || !got[0].Equal(a) {
		t.Fatalf("replicaTargets(1) = %v, want [a]", got)
	}
}

func TestPromoteOwnedReplicasUpgradesOwnedKey(t *testing.T) {
	sp := mustSpace(t)
	n := testNode(t, sp, 100, "self")

	key := sp.FromUint64(1) // owned by self: no predecessor set, self owns everything
	n.s.Put(domain.Resource{Key: key, Value: []byte("v")}, domain.RoleReplica)

	n.promoteOwnedReplicas()

	role, ok := n.s.Role(key)
	if !ok || role != domain.RolePrimary {
		t.Fatalf("promoteOwnedReplicas left role = %v, want Primary for a key self owns", role)
	}
}

func TestPromoteOwnedReplicasLeavesUnownedKeyAlone(t *testing.T) {
	sp := mustSpace(t)
	n := testNode(t, sp, 100, "self")
	n.rt.SetPredecessor(&domain.Node{ID: sp.FromUint64(50), Addr: "pred"})

	key := sp.FromUint64(10) // outside (50,100], not owned by self
	n.s.Put(domain.Resource{Key: key, Value: []byte("v")}, domain.RoleReplica)

	n.promoteOwnedReplicas()

	role, ok := n.s.Role(key)
	if !ok || role != domain.RoleReplica {
		t.Fatalf("promoteOwnedReplicas changed role of an unowned key to %v, want unchanged Replica", role)
	}
}

func TestEvictStaleReplicasNeverDeletesAnOwnedKey(t *testing.T) {
	sp := mustSpace(t)
	n := testNode(t, sp, 100, "self")

	key := sp.FromUint64(1) // owned outright: no predecessor set
	n.s.Put(domain.Resource{Key: key, Value: []byte("v")}, domain.RoleReplica)

	n.evictStaleReplicas(context.Background(), 2)

	if _, err := n.s.Get(key); err != nil {
		t.Fatalf("evictStaleReplicas deleted a key self owns outright: %v", err)
	}
}
