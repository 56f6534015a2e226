package routingtable

import (
	"testing"

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

func node(sp domain.Space, n uint64, addr string) *domain.Node {
	return &domain.Node{ID: sp.FromUint64(n), Addr: addr}
}

func TestInitSingleNode(t *testing.T) {
	sp := mustSpace(t)
	self := node(sp, 10, "a")
	rt := New(self, sp)
	rt.InitSingleNode()

	if succ := rt.FirstSuccessor(); !succ.Equal(self) {
		t.Errorf("FirstSuccessor = %v, want self", succ)
	}
	if pred := rt.GetPredecessor(); !pred.Equal(self) {
		t.Errorf("GetPredecessor = %v, want self", pred)
	}
	if rt.PredecessorState() != PredecessorKnown {
		t.Errorf("PredecessorState = %v, want Known", rt.PredecessorState())
	}
	for i := 0; i < rt.NumFingers(); i++ {
		if f := rt.GetFinger(i); !f.Equal(self) {
			t.Errorf("finger %d = %v, want self", i, f)
		}
	}
}

func TestPromoteCandidateShiftsAndPads(t *testing.T) {
	sp := mustSpace(t)
	self := node(sp, 10, "self")
	rt := New(self, sp)
	a, b, c := node(sp, 20, "a"), node(sp, 30, "b"), node(sp, 40, "c")
	rt.SetSuccessorList([]*domain.Node{a, b, c, nil})

	rt.PromoteCandidate(1) // head "a" dies -> promote index 1: "b" becomes the new head

	if got := rt.FirstSuccessor(); !got.Equal(b) {
		t.Fatalf("FirstSuccessor after promote = %v, want b", got)
	}
	if got := rt.GetSuccessor(1); !got.Equal(c) {
		t.Fatalf("successor[1] after promote = %v, want c", got)
	}
	if got := rt.GetSuccessor(2); got != nil {
		t.Fatalf("successor[2] after promote = %v, want nil (padded)", got)
	}
}

func TestPredecessorSuspectThenClear(t *testing.T) {
	sp := mustSpace(t)
	self := node(sp, 10, "self")
	rt := New(self, sp)
	p := node(sp, 5, "p")
	rt.SetPredecessor(p)
	if rt.PredecessorState() != PredecessorKnown {
		t.Fatalf("expected Known after SetPredecessor")
	}
	rt.SuspectPredecessor()
	if rt.PredecessorState() != PredecessorSuspect {
		t.Fatalf("expected Suspect after SuspectPredecessor")
	}
	if got := rt.GetPredecessor(); !got.Equal(p) {
		t.Fatalf("Suspect must not drop the pointer, got %v", got)
	}
	rt.ClearPredecessor()
	if rt.PredecessorState() != PredecessorUnknown {
		t.Fatalf("expected Unknown after ClearPredecessor")
	}
	if got := rt.GetPredecessor(); got != nil {
		t.Fatalf("expected nil predecessor after ClearPredecessor, got %v", got)
	}
}

func TestClosestPrecedingFingerFallsBackToSuccessorThenSelf(t *testing.T) {
	sp := mustSpace(t)
	self := node(sp, 10, "self")
	rt := New(self, sp)

	target := sp.FromUint64(200)
	if got := rt.ClosestPrecedingFinger(target); !got.Equal(self) {
		t.Fatalf("with no fingers/successor, want self, got %v", got)
	}

	succ := node(sp, 20, "succ")
	rt.SetSuccessor(0, succ)
	if got := rt.ClosestPrecedingFinger(target); !got.Equal(succ) {
		t.Fatalf("with only a successor, want succ, got %v", got)
	}

	finger := node(sp, 150, "finger")
	rt.SetFinger(5, finger)
	if got := rt.ClosestPrecedingFinger(target); !got.Equal(finger) {
		t.Fatalf("with a qualifying finger, want finger, got %v", got)
	}
}
