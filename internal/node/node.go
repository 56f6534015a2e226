// Package node composes the nine spec components into a single running DHT
// participant: routing state (C3), local storage (C2), a peer client pool
// (C4), the lookup engine (C5, lookup.go), join/leave/transfer (C6,
// membership.go), the stabilizer set (C7, stabilize.go), the replication
// maintainer (C8, replication.go), and the monitor snapshot push. Request
// handlers (C9) live in internal/server and delegate into this package.
package node

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	dhtv1 "ChordDHT/internal/api/dht/v1"
	"ChordDHT/internal/client"
	"ChordDHT/internal/ctxutil"
	"ChordDHT/internal/domain"
	"ChordDHT/internal/logger"
	"ChordDHT/internal/routingtable"
	"ChordDHT/internal/storage"
)

// Lifecycle is the node's coarse running state, independent of any single
// component's internal state.
type Lifecycle int32

const (
	Initializing Lifecycle = iota
	Solo
	Joining
	Running
	Leaving
	Terminated
)

func (l Lifecycle) String() string {
	switch l {
	case Solo:
		return "solo"
	case Joining:
		return "joining"
	case Running:
		return "running"
	case Leaving:
		return "leaving"
	case Terminated:
		return "terminated"
	default:
		return "initializing"
	}
}

// Node ties together the routing table, local store, and peer client pool
// for one DHT participant, plus the tunables the maintenance loops use.
type Node struct {
	lgr logger.Logger

	rt *routingtable.RoutingTable
	s  *storage.Storage
	cp *client.Pool

	lifecycle atomic.Int32

	hopLimit    int32
	staleGrace  time.Duration
	monitorAddr string

	fixFingerNext atomic.Int32
	predFailures  atomic.Int32
}

// New builds a Node for self within space, with an empty routing table and
// store. Callers follow with Start (solo ring) or Join (existing ring)
// before serving traffic.
func New(self *domain.Node, space domain.Space, pool *client.Pool, opts ...Option) *Node {
	n := &Node{
		lgr:        &logger.NopLogger{},
		cp:         pool,
		hopLimit:   int32(2 * space.Bits),
		staleGrace: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(n)
	}
	n.rt = routingtable.New(self, space, routingtable.WithLogger(n.lgr.Named("routingtable")))
	n.s = storage.New(n.lgr.Named("storage"))
	n.lifecycle.Store(int32(Initializing))
	return n
}

// Self returns the local node reference.
func (n *Node) Self() *domain.Node { return n.rt.Self() }

// Space returns the identifier space this node routes over.
func (n *Node) Space() domain.Space { return n.rt.Space() }

// RoutingTable exposes the node's routing state, used by request handlers
// to serve GetPredecessor/GetSuccessor/GetSuccessorList directly.
func (n *Node) RoutingTable() *routingtable.RoutingTable { return n.rt }

// Storage exposes the node's local store, used by request handlers and the
// replication maintainer.
func (n *Node) Storage() *storage.Storage { return n.s }

// Pool exposes the node's peer client pool.
func (n *Node) Pool() *client.Pool { return n.cp }

// Lifecycle reports the node's current coarse running state.
func (n *Node) Lifecycle() Lifecycle { return Lifecycle(n.lifecycle.Load()) }

func (n *Node) setLifecycle(l Lifecycle) {
	old := Lifecycle(n.lifecycle.Swap(int32(l)))
	if old != l {
		n.lgr.Info("lifecycle transition", logger.F("from", old.String()), logger.F("to", l.String()))
	}
}

// IsOwner reports whether self is the primary owner of id under the
// current predecessor pointer, i.e. id falls in (predecessor, self].
func (n *Node) IsOwner(id domain.ID) bool {
	self := n.rt.Self()
	pred := n.rt.GetPredecessor()
	if pred == nil {
		return true
	}
	return id.BetweenRightClosed(pred.ID, self.ID)
}

// InReplicaWindow reports whether self sits within the first k entries of
// primarySuccessors, the condition under which self is entitled to hold a
// Replica of primary's keys (spec C8). primarySuccessors is the primary's
// own successor list, fetched from the primary directly — membership is
// about self's position in the primary's window, not the other way round.
func (n *Node) InReplicaWindow(primarySuccessors []*domain.Node, k int) bool {
	self := n.rt.Self()
	for i := 0; i < k && i < len(primarySuccessors); i++ {
		s := primarySuccessors[i]
		if s != nil && s.ID.Equal(self.ID) {
			return true
		}
	}
	return false
}

// Notify is the receiver side of the stabilize protocol (spec C7): a peer
// believes it may be self's predecessor. If accepted, keys now owned by
// the new predecessor are handed off asynchronously.
func (n *Node) Notify(candidate *domain.Node) {
	self := n.rt.Self()
	if candidate == nil || candidate.ID.Equal(self.ID) {
		return
	}

	pred := n.rt.GetPredecessor()
	if pred != nil && !candidate.ID.BetweenOpen(pred.ID, self.ID) {
		return
	}

	if err := n.cp.AddRef(candidate.Addr); err != nil {
		n.lgr.Warn("Notify: failed to add candidate predecessor to pool", logger.FNode("candidate", candidate), logger.F("err", err))
	}
	n.rt.SetPredecessor(candidate)
	if pred != nil {
		if err := n.cp.Release(pred.Addr); err != nil {
			n.lgr.Warn("Notify: failed to release old predecessor", logger.FNode("old", pred), logger.F("err", err))
		}
	}
	n.lgr.Info("Notify: predecessor updated", logger.FNode("new", candidate), logger.FNode("old", pred))

	handoff := pred
	if handoff == nil {
		handoff = self
	}
	var resources []domain.Resource
	for _, res := range n.s.Between(handoff.ID, candidate.ID) {
		if role, ok := n.s.Role(res.Key); ok && role == domain.RolePrimary {
			resources = append(resources, res)
		}
	}
	if len(resources) > 0 {
		go n.handOffPrimaries(candidate, resources)
	}
}

// handOffPrimaries transfers resources to their new primary owner
// candidate, demoting self's copy to Replica on success (spec C8
// "ownership change on join/leave").
func (n *Node) handOffPrimaries(candidate *domain.Node, resources []domain.Resource) {
	ctx, cancel := context.WithTimeout(context.Background(), n.cp.FailureTimeout())
	defer cancel()

	cli, closeFn, err := n.dialOrPool(candidate.Addr)
	if err != nil {
		n.lgr.Warn("handOffPrimaries: could not reach new primary", logger.FNode("candidate", candidate), logger.F("err", err))
		return
	}
	defer closeFn()

	for _, res := range resources {
		if err := client.Store(ctx, cli, res.Key, res.Value, domain.RolePrimary); err != nil {
			n.lgr.Warn("handOffPrimaries: failed to hand off resource", logger.F("key", res.Key.String()), logger.F("err", err))
			continue
		}
		n.s.SetRole(res.Key, domain.RoleReplica)
	}
	n.lgr.Debug("handOffPrimaries: handoff round complete", logger.F("count", len(resources)), logger.FNode("candidate", candidate))
}

// StoreLocal holds res under role in the local store, the common path for
// both the external Put (once ownership is resolved) and the peer Store
// RPC (spec C2, C9).
func (n *Node) StoreLocal(res domain.Resource, role domain.Role) {
	n.s.Put(res, role)
}

// ReceiveReplica stores res as pushed by a presumed primary, without
// downgrading a key self already owns or already holds as Primary (spec
// §4.8 step 2: a node "stores the entry with role Replica if it does not
// already hold it as Primary"; a node that believes itself owner upgrades
// to Primary instead of accepting the push as a replica).
func (n *Node) ReceiveReplica(res domain.Resource) {
	if n.IsOwner(res.Key) {
		if role, ok := n.s.Role(res.Key); !ok || role != domain.RolePrimary {
			n.s.Put(res, domain.RolePrimary)
		}
		return
	}
	if role, ok := n.s.Role(res.Key); ok && role == domain.RolePrimary {
		return
	}
	n.s.Put(res, domain.RoleReplica)
}

// RetrieveLocal fetches a resource from the local store only, with no
// routing (spec C9 Retrieve handler, and the availability-preferring
// Get fallback to a held Replica).
func (n *Node) RetrieveLocal(id domain.ID) (domain.Resource, error) {
	return n.s.Get(id)
}

// RemoveLocal deletes a resource from the local store only.
func (n *Node) RemoveLocal(id domain.ID) error {
	return n.s.Delete(id)
}

// Put resolves the owner of key and stores (key, value) as Primary there,
// forwarding the request if self is not the owner (spec C9 put).
func (n *Node) Put(ctx context.Context, key domain.ID, value []byte) error {
	if err := ctxutil.CheckContext(ctx); err != nil {
		return err
	}
	if n.IsOwner(key) {
		n.StoreLocal(domain.Resource{Key: key, Value: value}, domain.RolePrimary)
		n.lgr.Info("Put: stored locally", logger.F("key", key.String()))
		return nil
	}

	owner, _, err := n.FindSuccessor(ctx, key)
	if err != nil {
		return fmt.Errorf("put: locating owner of %s: %w", key.String(), err)
	}
	if owner.ID.Equal(n.rt.Self().ID) {
		n.StoreLocal(domain.Resource{Key: key, Value: value}, domain.RolePrimary)
		return nil
	}
	return n.forwardStore(ctx, owner, domain.Resource{Key: key, Value: value})
}

func (n *Node) forwardStore(ctx context.Context, owner *domain.Node, res domain.Resource) error {
	cli, closeFn, err := n.dialOrPool(owner.Addr)
	if err != nil {
		return fmt.Errorf("put: dialing owner %s: %w", owner.Addr, err)
	}
	defer closeFn()
	if err := client.Store(ctx, cli, res.Key, res.Value, domain.RolePrimary); err != nil {
		return fmt.Errorf("put: storing at owner %s: %w", owner.Addr, err)
	}
	return nil
}

// Get resolves key's owner and returns its value, preferring a locally
// held Replica over forwarding when self is not the primary but already
// has a copy (spec C9 get availability preference).
func (n *Node) Get(ctx context.Context, key domain.ID) ([]byte, error) {
	if err := ctxutil.CheckContext(ctx); err != nil {
		return nil, err
	}
	if n.IsOwner(key) {
		res, err := n.RetrieveLocal(key)
		if err == nil {
			return res.Value, nil
		}
		if !isNotFound(err) {
			return nil, err
		}
	} else if res, err := n.RetrieveLocal(key); err == nil {
		return res.Value, nil
	}

	owner, _, err := n.FindSuccessor(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("get: locating owner of %s: %w", key.String(), err)
	}
	if owner.ID.Equal(n.rt.Self().ID) {
		res, err := n.RetrieveLocal(key)
		if err != nil {
			return nil, err
		}
		return res.Value, nil
	}
	cli, closeFn, err := n.dialOrPool(owner.Addr)
	if err != nil {
		return nil, fmt.Errorf("get: dialing owner %s: %w", owner.Addr, err)
	}
	defer closeFn()
	return client.Retrieve(ctx, cli, key)
}

// Delete resolves key's owner and removes it there, forwarding as needed.
func (n *Node) Delete(ctx context.Context, key domain.ID) error {
	if err := ctxutil.CheckContext(ctx); err != nil {
		return err
	}
	if n.IsOwner(key) {
		return n.RemoveLocal(key)
	}
	owner, _, err := n.FindSuccessor(ctx, key)
	if err != nil {
		return fmt.Errorf("delete: locating owner of %s: %w", key.String(), err)
	}
	if owner.ID.Equal(n.rt.Self().ID) {
		return n.RemoveLocal(key)
	}
	cli, closeFn, err := n.dialOrPool(owner.Addr)
	if err != nil {
		return fmt.Errorf("delete: dialing owner %s: %w", owner.Addr, err)
	}
	defer closeFn()
	return client.Remove(ctx, cli, key)
}

// dialOrPool returns a client for addr, preferring a pooled connection and
// falling back to an ephemeral dial for peers not part of the routing
// state. The returned close function is always safe to call.
func (n *Node) dialOrPool(addr string) (dhtv1.DHTClient, func(), error) {
	if cli, err := n.cp.GetFromPool(addr); err == nil {
		return cli, func() {}, nil
	}
	cli, conn, err := n.cp.DialEphemeral(addr)
	if err != nil {
		return nil, nil, err
	}
	return cli, func() { _ = conn.Close() }, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
