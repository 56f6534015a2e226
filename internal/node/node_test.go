package node

import (
	"testing"
	"time"

	"ChordDHT/internal/client"
	"ChordDHT/internal/domain"
)

func mustSpace(t *testing.T) domain.Space {
	t.Helper()
	sp, err := domain.NewSpace(8, 4, 2)
	if err != nil {
		t.Fatalf("NewSpace failed: %v", err)
	}
	return sp
}

func testNode(t *testing.T, sp domain.Space, id uint64, addr string) *Node {
	t.Helper()
	self := &domain.Node{ID: sp.FromUint64(id), Addr: addr}
	pool := client.NewPool(50*time.Millisecond, 50*time.Millisecond)
	return New(self, sp, pool)
}

func TestIsOwnerNoPredecessorOwnsEverything(t *testing.T) {
	sp := mustSpace(t)
	n := testNode(t, sp, 100, "self")

	if !n.IsOwner(sp.FromUint64(1)) {
		t.Fatalf("with no predecessor set, self should own every key")
	}
}

func TestIsOwnerRightClosedArc(t *testing.T) {
	sp := mustSpace(t)
	n := testNode(t, sp, 100, "self")
	n.rt.SetPredecessor(&domain.Node{ID: sp.FromUint64(50), Addr: "pred"})

	if n.IsOwner(sp.FromUint64(50)) {
		t.Errorf("predecessor's own id must not be owned by self (open on the low end)")
	}
	if !n.IsOwner(sp.FromUint64(51)) {
		t.Errorf("51 is in (50,100], want owned")
	}
	if !n.IsOwner(sp.FromUint64(100)) {
		t.Errorf("self's own id must be owned (closed on the high end)")
	}
	if n.IsOwner(sp.FromUint64(101)) {
		t.Errorf("101 falls outside (50,100], want not owned")
	}
}

func TestInReplicaWindow(t *testing.T) {
	sp := mustSpace(t)
	n := testNode(t, sp, 100, "self")
	self := n.rt.Self()
	other := &domain.Node{ID: sp.FromUint64(20), Addr: "other"}

	primarySuccessors := []*domain.Node{other, self, nil, nil}

	if n.InReplicaWindow(primarySuccessors, 1) {
		t.Errorf("self sits at index 1 of the primary's successors, must not be within a window of 1")
	}
	if !n.InReplicaWindow(primarySuccessors, 2) {
		t.Errorf("self sits at index 1 of the primary's successors, must be within a window of 2")
	}
	if n.InReplicaWindow(nil, 2) {
		t.Errorf("an empty successor list never puts self in the replica window")
	}
	if n.InReplicaWindow([]*domain.Node{other, nil}, 2) {
		t.Errorf("self absent from the primary's successors must not be in the window")
	}
}

func TestReceiveReplicaDoesNotDowngradeOwnedKey(t *testing.T) {
	sp := mustSpace(t)
	n := testNode(t, sp, 100, "self")

	key := sp.FromUint64(1) // owned outright: no predecessor set
	n.s.Put(domain.Resource{Key: key, Value: []byte("mine")}, domain.RolePrimary)

	n.ReceiveReplica(domain.Resource{Key: key, Value: []byte("stale-push")})

	res, err := n.s.Get(key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	role, ok := n.s.Role(key)
	if !ok || role != domain.RolePrimary {
		t.Fatalf("ReceiveReplica downgraded an owned Primary to %v", role)
	}
	if string(res.Value) != "mine" {
		t.Fatalf("ReceiveReplica clobbered a Primary's value with a replica push: got %q", res.Value)
	}
}

func TestReceiveReplicaStoresNewKeyAsReplica(t *testing.T) {
	sp := mustSpace(t)
	n := testNode(t, sp, 100, "self")
	n.rt.SetPredecessor(&domain.Node{ID: sp.FromUint64(50), Addr: "pred"})

	key := sp.FromUint64(10) // outside (50,100], not owned by self
	n.ReceiveReplica(domain.Resource{Key: key, Value: []byte("v")})

	role, ok := n.s.Role(key)
	if !ok || role != domain.RoleReplica {
		t.Fatalf("ReceiveReplica stored a non-owned key with role %v, want Replica", role)
	}
}

func TestReceiveReplicaInstallsOwnedKeyAsPrimary(t *testing.T) {
	sp := mustSpace(t)
	n := testNode(t, sp, 100, "self")

	key := sp.FromUint64(1) // owned outright, not yet held locally
	n.ReceiveReplica(domain.Resource{Key: key, Value: []byte("v")})

	role, ok := n.s.Role(key)
	if !ok || role != domain.RolePrimary {
		t.Fatalf("ReceiveReplica installed an owned key with role %v, want Primary", role)
	}
}
