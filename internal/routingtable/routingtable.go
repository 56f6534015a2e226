// Package routingtable holds a node's Chord routing state: its successor
// list, predecessor pointer, and finger table (spec C3).
package routingtable

import (
	"sync"

	"ChordDHT/internal/domain"
	"ChordDHT/internal/logger"
)

// routingEntry is a single slot holding a node reference, guarded by its
// own lock so readers of one finger never block writers of another.
type routingEntry struct {
	node *domain.Node
	mu   sync.RWMutex
}

// PredecessorState tracks how much to trust the current predecessor
// pointer (spec C3/C7): a freshly-learned predecessor is Known; one that
// just failed a liveness check is Suspect, giving stabilization a chance
// to replace it before routing decisions are affected; while no predecessor
// is held (none observed yet, or it was cleared) the state is Unknown.
type PredecessorState int

const (
	PredecessorUnknown PredecessorState = iota
	PredecessorKnown
	PredecessorSuspect
)

func (s PredecessorState) String() string {
	switch s {
	case PredecessorKnown:
		return "known"
	case PredecessorSuspect:
		return "suspect"
	default:
		return "unknown"
	}
}

// fingerEntry is one slot of the finger table: the ring position the slot
// is anchored at (start = self + 2^i) and the node currently believed to
// be its successor.
type fingerEntry struct {
	start ID
	entry routingEntry
}

// ID is a local alias kept for readability inside this package.
type ID = domain.ID

// RoutingTable is the Chord routing state owned by a single node: a
// successor list for fault tolerance (M2), a predecessor pointer with a
// trust state, and a finger table of size Bits for O(log N) routing.
type RoutingTable struct {
	logger logger.Logger
	space  domain.Space
	self   *domain.Node

	successorList []*routingEntry
	succListSize  int

	predMu    sync.RWMutex
	predNode  *domain.Node
	predState PredecessorState

	fingers []*fingerEntry
}

// New builds a RoutingTable for self, with successorList slots and a
// finger table sized to space.Bits. All slots start empty; callers fill
// them via InitSingleNode (first node of a ring) or through join +
// stabilization.
func New(self *domain.Node, space domain.Space, opts ...Option) *RoutingTable {
	rt := &RoutingTable{
		self:          self,
		space:         space,
		successorList: make([]*routingEntry, space.SuccListSize),
		succListSize:  space.SuccListSize,
		fingers:       make([]*fingerEntry, space.Bits),
		logger:        &logger.NopLogger{},
	}
	for i := range rt.successorList {
		rt.successorList[i] = &routingEntry{}
	}
	for i := range rt.fingers {
		start, _ := space.FingerStart(self.ID, i)
		rt.fingers[i] = &fingerEntry{start: start}
	}
	for _, opt := range opts {
		opt(rt)
	}
	rt.logger.Debug("routing table initialized", logger.F("bits", space.Bits), logger.F("succListSize", space.SuccListSize))
	return rt
}

// InitSingleNode points the first successor, the predecessor (as Known) and
// every finger at self, the configuration of the first node in a fresh ring
// (spec C6 join, single-node case). Successor slots 1..R-1 stay empty.
func (rt *RoutingTable) InitSingleNode() {
	rt.SetSuccessor(0, rt.self)
	rt.setPredecessor(rt.self, PredecessorKnown)
	for i := range rt.fingers {
		rt.SetFinger(i, rt.self)
	}
	rt.logger.Debug("routing table initialized as single-node ring")
}

// Space returns the identifier space this table routes over.
func (rt *RoutingTable) Space() domain.Space { return rt.space }

// Self returns the local node owning this routing table.
func (rt *RoutingTable) Self() *domain.Node { return rt.self }

// --- successor list ---

// GetSuccessor returns the i-th successor, or nil if unset or out of range.
func (rt *RoutingTable) GetSuccessor(i int) *domain.Node {
	if i < 0 || i >= len(rt.successorList) {
		rt.logger.Warn("GetSuccessor: index out of range", logger.F("requested", i))
		return nil
	}
	e := rt.successorList[i]
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.node
}

// FirstSuccessor is GetSuccessor(0), the node's immediate Chord successor.
func (rt *RoutingTable) FirstSuccessor() *domain.Node {
	return rt.GetSuccessor(0)
}

// SetSuccessor updates slot i.
func (rt *RoutingTable) SetSuccessor(i int, node *domain.Node) {
	if i < 0 || i >= len(rt.successorList) {
		rt.logger.Warn("SetSuccessor: index out of range", logger.F("requested", i))
		return
	}
	e := rt.successorList[i]
	e.mu.Lock()
	e.node = node
	e.mu.Unlock()
	rt.logger.Debug("SetSuccessor", logger.F("index", i), logger.FNode("successor", node))
}

// SuccessorList returns a snapshot slice of every non-nil successor,
// in order; the caller may freely mutate the returned slice.
func (rt *RoutingTable) SuccessorList() []*domain.Node {
	out := make([]*domain.Node, 0, len(rt.successorList))
	for _, e := range rt.successorList {
		e.mu.RLock()
		n := e.node
		e.mu.RUnlock()
		if n != nil {
			out = append(out, n)
		}
	}
	return out
}

// SetSuccessorList overwrites the whole list; the slice must have length
// equal to the configured successor list size.
func (rt *RoutingTable) SetSuccessorList(nodes []*domain.Node) {
	if len(nodes) != len(rt.successorList) {
		rt.logger.Warn("SetSuccessorList: length mismatch", logger.F("expected", len(rt.successorList)), logger.F("got", len(nodes)))
		return
	}
	for i, n := range nodes {
		rt.SetSuccessor(i, n)
	}
}

// PromoteCandidate shifts the successor list left starting at i: the node
// at i becomes the new head, everything after it shifts up, and the list
// is padded with nil. Used when the current successor is found dead and a
// backup from the list takes over (spec C7 stabilize).
func (rt *RoutingTable) PromoteCandidate(i int) {
	if i <= 0 || i >= rt.succListSize {
		rt.logger.Warn("PromoteCandidate: invalid index", logger.F("requested", i))
		return
	}
	candidate := rt.GetSuccessor(i)
	if candidate == nil {
		rt.logger.Warn("PromoteCandidate: candidate is nil", logger.F("index", i))
		return
	}
	newList := make([]*domain.Node, 0, rt.succListSize)
	newList = append(newList, candidate)
	for j := i + 1; j < rt.succListSize; j++ {
		if n := rt.GetSuccessor(j); n != nil {
			newList = append(newList, n)
		}
	}
	for len(newList) < rt.succListSize {
		newList = append(newList, nil)
	}
	rt.SetSuccessorList(newList)
	rt.logger.Debug("PromoteCandidate", logger.F("from_index", i), logger.FNode("candidate", candidate))
}

// --- predecessor ---

// GetPredecessor returns the current predecessor, or nil if unknown.
func (rt *RoutingTable) GetPredecessor() *domain.Node {
	rt.predMu.RLock()
	defer rt.predMu.RUnlock()
	return rt.predNode
}

// PredecessorState reports the trust state of the current predecessor.
func (rt *RoutingTable) PredecessorState() PredecessorState {
	rt.predMu.RLock()
	defer rt.predMu.RUnlock()
	return rt.predState
}

// SetPredecessor records a newly-learned predecessor as Known.
func (rt *RoutingTable) SetPredecessor(node *domain.Node) {
	rt.setPredecessor(node, PredecessorKnown)
}

// SuspectPredecessor marks the current predecessor Suspect after a failed
// liveness check (spec C7 check_predecessor), without discarding it. The
// state returns to Known only through SetPredecessor (a Notify from a
// candidate closer than the current predecessor), or to Unknown through
// ClearPredecessor.
func (rt *RoutingTable) SuspectPredecessor() {
	rt.predMu.Lock()
	if rt.predNode != nil {
		rt.predState = PredecessorSuspect
	}
	rt.predMu.Unlock()
}

// ClearPredecessor drops the predecessor entirely, returning to Unknown.
func (rt *RoutingTable) ClearPredecessor() {
	rt.setPredecessor(nil, PredecessorUnknown)
}

func (rt *RoutingTable) setPredecessor(node *domain.Node, state PredecessorState) {
	rt.predMu.Lock()
	rt.predNode = node
	rt.predState = state
	rt.predMu.Unlock()
	rt.logger.Debug("SetPredecessor", logger.FNode("predecessor", node), logger.F("state", state.String()))
}

// --- finger table ---

// NumFingers returns the configured finger table size (space.Bits).
func (rt *RoutingTable) NumFingers() int { return len(rt.fingers) }

// FingerStart returns the ring position finger i is anchored at
// (self + 2^i mod 2^Bits).
func (rt *RoutingTable) FingerStart(i int) domain.ID {
	if i < 0 || i >= len(rt.fingers) {
		return nil
	}
	return rt.fingers[i].start
}

// GetFinger returns the node currently stored at finger slot i.
func (rt *RoutingTable) GetFinger(i int) *domain.Node {
	if i < 0 || i >= len(rt.fingers) {
		rt.logger.Warn("GetFinger: index out of range", logger.F("requested", i))
		return nil
	}
	f := rt.fingers[i]
	f.entry.mu.RLock()
	defer f.entry.mu.RUnlock()
	return f.entry.node
}

// SetFinger updates finger slot i.
func (rt *RoutingTable) SetFinger(i int, node *domain.Node) {
	if i < 0 || i >= len(rt.fingers) {
		rt.logger.Warn("SetFinger: index out of range", logger.F("requested", i))
		return
	}
	f := rt.fingers[i]
	f.entry.mu.Lock()
	f.entry.node = node
	f.entry.mu.Unlock()
	rt.logger.Debug("SetFinger", logger.F("index", i), logger.FNode("node", node))
}

// ClosestPrecedingFinger scans the finger table from the highest index
// down, returning the closest known node strictly preceding target in
// (self, target) — the standard Chord routing step used by the lookup
// engine's local hop (spec C5). Falls back to self's successor, and
// finally self, if no finger qualifies.
func (rt *RoutingTable) ClosestPrecedingFinger(target domain.ID) *domain.Node {
	for i := len(rt.fingers) - 1; i >= 0; i-- {
		n := rt.GetFinger(i)
		if n != nil && n.ID.BetweenOpen(rt.self.ID, target) {
			return n
		}
	}
	if succ := rt.FirstSuccessor(); succ != nil {
		return succ
	}
	return rt.self
}

// DebugLog emits a single structured DEBUG log with a snapshot of the
// entire routing table: self, predecessor, successor list, and fingers.
// Entries are read once under lock each to avoid recursive per-entry logs.
func (rt *RoutingTable) DebugLog() {
	rt.predMu.RLock()
	pred := rt.predNode
	predState := rt.predState
	rt.predMu.RUnlock()

	successors := make([]map[string]any, 0, len(rt.successorList))
	for i, e := range rt.successorList {
		e.mu.RLock()
		n := e.node
		e.mu.RUnlock()
		successors = append(successors, nodeLogEntry(i, n))
	}

	fingers := make([]map[string]any, 0, len(rt.fingers))
	for i, f := range rt.fingers {
		f.entry.mu.RLock()
		n := f.entry.node
		f.entry.mu.RUnlock()
		fingers = append(fingers, nodeLogEntry(i, n))
	}

	rt.logger.Debug("routing table snapshot",
		logger.FNode("self", rt.self),
		logger.FNode("predecessor", pred),
		logger.F("predecessor_state", predState.String()),
		logger.F("successors", successors),
		logger.F("fingers", fingers),
	)
}

func nodeLogEntry(index int, n *domain.Node) map[string]any {
	if n == nil {
		return map[string]any{"index": index, "node": nil}
	}
	return map[string]any{"index": index, "id": n.ID.String(), "addr": n.Addr}
}
