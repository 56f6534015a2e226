package node

import (
	"context"
	"fmt"

	"ChordDHT/internal/client"
	"ChordDHT/internal/domain"
	"ChordDHT/internal/logger"
)

// Start configures the node as the sole member of a fresh ring: predecessor,
// first successor and every finger slot point at self, and the remaining
// successor-list slots stay empty (spec C6 Start).
func (n *Node) Start() {
	n.rt.InitSingleNode()
	n.setLifecycle(Solo)
}

// Join bootstraps this node into the ring reachable through bootstrapAddr
// (spec C6 Join). On success the node's successor list and first finger
// are populated and one synchronous stabilize/fix-fingers round has run;
// the periodic stabilizer set (StartStabilizers) takes over from there.
func (n *Node) Join(ctx context.Context, bootstrapAddr string) error {
	n.setLifecycle(Joining)
	self := n.rt.Self()

	n.rt.ClearPredecessor()

	if err := n.cp.AddRef(bootstrapAddr); err != nil {
		return fmt.Errorf("join: dialing bootstrap %s: %w", bootstrapAddr, err)
	}
	bootstrap, err := n.cp.GetFromPool(bootstrapAddr)
	if err != nil {
		return fmt.Errorf("join: %w", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, n.cp.FailureTimeout())
	succ, _, err := client.FindSuccessor(callCtx, bootstrap, self.ID, 0)
	cancel()
	if err != nil {
		return fmt.Errorf("join: bootstrap find_successor failed: %w", err)
	}
	if succ == nil {
		return fmt.Errorf("join: bootstrap returned no successor")
	}

	if succ.Addr != bootstrapAddr {
		if err := n.cp.AddRef(succ.Addr); err != nil {
			n.lgr.Warn("join: failed to add successor to pool", logger.FNode("succ", succ), logger.F("err", err))
		}
	}
	n.rt.SetSuccessor(0, succ)
	n.rt.SetFinger(0, succ)

	n.refreshSuccessorListFrom(succ)

	if succ.Addr != bootstrapAddr {
		if err := n.cp.Release(bootstrapAddr); err != nil {
			n.lgr.Warn("join: failed to release bootstrap connection", logger.F("addr", bootstrapAddr), logger.F("err", err))
		}
	}

	n.pullOwnedKeys(ctx, succ)
	n.notifySuccessor(ctx, succ)

	n.stabilize()
	for i := 0; i < n.rt.NumFingers(); i++ {
		n.fixFingerAt(ctx, i)
	}

	n.setLifecycle(Running)
	n.lgr.Info("join: completed", logger.FNode("successor", succ))
	return nil
}

// refreshSuccessorListFrom fetches succ's own successor list and rebuilds
// this node's list as [succ] ++ succ's list, truncated to size and with
// self removed to avoid a self-loop (spec C6 join step 3).
func (n *Node) refreshSuccessorListFrom(succ *domain.Node) {
	size := n.rt.Space().SuccListSize
	self := n.rt.Self()

	newList := make([]*domain.Node, size)
	newList[0] = succ

	if succ.ID.Equal(self.ID) {
		n.rt.SetSuccessorList(newList)
		return
	}

	cli, closeFn, err := n.dialOrPool(succ.Addr)
	if err != nil {
		n.lgr.Warn("refreshSuccessorListFrom: could not reach successor", logger.FNode("succ", succ), logger.F("err", err))
		n.rt.SetSuccessorList(newList)
		return
	}
	defer closeFn()

	ctx, cancel := context.WithTimeout(context.Background(), n.cp.FailureTimeout())
	remote, err := client.GetSuccessorList(ctx, cli)
	cancel()
	if err != nil {
		n.lgr.Warn("refreshSuccessorListFrom: get_successor_list failed", logger.FNode("succ", succ), logger.F("err", err))
		n.rt.SetSuccessorList(newList)
		return
	}

	idx := 1
	for _, s := range remote {
		if idx >= size {
			break
		}
		if s == nil || s.ID.Equal(self.ID) {
			continue
		}
		newList[idx] = s
		idx++
	}
	n.rt.SetSuccessorList(newList)
}

// pullOwnedKeys asks succ for every Primary entry it holds in the arc that
// becomes self's on join, and installs them locally as Primary (spec C6
// step 4's transfer_keys, joiner side). succ's old predecessor bounds the
// arc; a transport failure or solo-ring successor falls back to succ's own
// id, mirroring the handoff range Notify computes when a node with no
// predecessor accepts its first one.
func (n *Node) pullOwnedKeys(ctx context.Context, succ *domain.Node) {
	self := n.rt.Self()
	if succ.ID.Equal(self.ID) {
		return
	}

	cli, closeFn, err := n.dialOrPool(succ.Addr)
	if err != nil {
		n.lgr.Warn("join: could not reach successor for key transfer", logger.FNode("succ", succ), logger.F("err", err))
		return
	}
	defer closeFn()

	predCtx, cancel := context.WithTimeout(ctx, n.cp.FailureTimeout())
	oldPred, err := client.GetPredecessor(predCtx, cli)
	cancel()
	from := succ.ID
	if err == nil && oldPred != nil {
		from = oldPred.ID
	}

	transferCtx, cancel := context.WithTimeout(ctx, n.cp.FailureTimeout())
	resources, roles, err := client.Transfer(transferCtx, cli, from, self.ID)
	cancel()
	if err != nil {
		n.lgr.Warn("join: transfer_keys failed", logger.FNode("succ", succ), logger.F("err", err))
		return
	}

	var installed int
	for i, res := range resources {
		if roles[i] != domain.RolePrimary {
			continue
		}
		n.StoreLocal(res, domain.RolePrimary)
		installed++
	}
	n.lgr.Info("join: keys transferred", logger.F("count", installed), logger.FNode("succ", succ))
}

func (n *Node) notifySuccessor(ctx context.Context, succ *domain.Node) {
	self := n.rt.Self()
	if succ.ID.Equal(self.ID) {
		return
	}
	cli, closeFn, err := n.dialOrPool(succ.Addr)
	if err != nil {
		n.lgr.Warn("join: could not notify successor", logger.FNode("succ", succ), logger.F("err", err))
		return
	}
	defer closeFn()

	callCtx, cancel := context.WithTimeout(ctx, n.cp.FailureTimeout())
	defer cancel()
	if err := client.Notify(callCtx, cli, self); err != nil {
		n.lgr.Warn("join: notify successor failed", logger.FNode("succ", succ), logger.F("err", err))
	}
}

// Leave performs a graceful departure (spec C6 Leave): primaries are
// pushed to the immediate successor before the node stops responding to
// new lookups. The optional courtesy "leaving" call on predecessor/
// successor described in spec.md §4.4 is intentionally not sent — there is
// no wire method for it, and spec.md marks it optional; stabilization
// converges on the departure at the next tick regardless.
func (n *Node) Leave(ctx context.Context) error {
	n.setLifecycle(Leaving)

	succ := n.rt.FirstSuccessor()
	self := n.rt.Self()
	if succ == nil || succ.ID.Equal(self.ID) {
		n.setLifecycle(Terminated)
		return nil
	}

	primaries := n.s.Primaries()
	cli, closeFn, err := n.dialOrPool(succ.Addr)
	if err != nil {
		n.setLifecycle(Terminated)
		return fmt.Errorf("leave: dialing successor %s: %w", succ.Addr, err)
	}
	defer closeFn()

	callCtx, cancel := context.WithTimeout(ctx, n.cp.FailureTimeout())
	defer cancel()
	var failed int
	for _, res := range primaries {
		if err := client.Store(callCtx, cli, res.Key, res.Value, domain.RolePrimary); err != nil {
			failed++
			n.lgr.Warn("leave: failed to push primary to successor", logger.F("key", res.Key.String()), logger.F("err", err))
		}
	}
	n.lgr.Info("leave: primaries pushed", logger.F("count", len(primaries)), logger.F("failed", failed), logger.FNode("successor", succ))

	n.setLifecycle(Terminated)
	return nil
}

// TransferRange returns every resource self holds in (from, to], tagged
// with the role held, for the Transfer RPC (spec C6 ownership handoff).
func (n *Node) TransferRange(from, to domain.ID) ([]domain.Resource, []domain.Role) {
	resources := n.s.Between(from, to)
	roles := make([]domain.Role, len(resources))
	for i, r := range resources {
		role, _ := n.s.Role(r.Key)
		roles[i] = role
	}
	return resources, roles
}
