package node

import (
	"context"
	"errors"
	"fmt"

	"ChordDHT/internal/client"
	"ChordDHT/internal/ctxutil"
	"ChordDHT/internal/domain"
	"ChordDHT/internal/logger"
)

// FindSuccessor resolves the node responsible for target (spec C5),
// forwarding recursively to the next hop when self isn't the owner.
// Returns the resolved owner and the accumulated hop count.
func (n *Node) FindSuccessor(ctx context.Context, target domain.ID) (*domain.Node, int32, error) {
	return n.findSuccessor(ctx, target, ctxutil.Hops(ctx))
}

func (n *Node) findSuccessor(ctx context.Context, target domain.ID, hops int32) (*domain.Node, int32, error) {
	if err := ctxutil.CheckContext(ctx); err != nil {
		return nil, hops, err
	}
	if hops > n.hopLimit {
		return nil, hops, fmt.Errorf("find_successor: %w: hop limit %d exceeded", domain.ErrRouting, n.hopLimit)
	}

	self := n.rt.Self()
	succ := n.rt.FirstSuccessor()
	if succ == nil {
		return nil, hops, fmt.Errorf("find_successor: %w: no successor known", domain.ErrRouting)
	}
	if target.BetweenRightClosed(self.ID, succ.ID) {
		return succ, hops, nil
	}

	return n.forwardFindSuccessor(ctx, target, hops)
}

// forwardFindSuccessor picks the closest preceding finger and forwards the
// lookup to it, falling back through weaker fingers and finally the
// successor list on transport failure (spec C5 step 3).
func (n *Node) forwardFindSuccessor(ctx context.Context, target domain.ID, hops int32) (*domain.Node, int32, error) {
	self := n.rt.Self()

	for _, next := range n.closestPrecedingCandidates(target) {
		if next.ID.Equal(self.ID) {
			continue
		}
		res, newHops, err := n.callFindSuccessor(ctx, next, target, hops+1)
		if err == nil {
			return res, newHops, nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, hops, err
		}
		n.lgr.Warn("find_successor: hop failed, trying next candidate", logger.FNode("candidate", next), logger.F("err", err))
	}

	for _, s := range n.rt.SuccessorList() {
		if s == nil || s.ID.Equal(self.ID) {
			continue
		}
		res, newHops, err := n.callFindSuccessor(ctx, s, target, hops+1)
		if err == nil {
			return res, newHops, nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, hops, err
		}
	}

	return nil, hops, fmt.Errorf("find_successor: %w: no reachable successor candidate", domain.ErrTransport)
}

// closestPrecedingCandidates returns ClosestPrecedingNode's pick, followed
// by progressively weaker finger candidates, so a dead first choice has a
// fallback chain before the successor list is tried.
func (n *Node) closestPrecedingCandidates(target domain.ID) []*domain.Node {
	self := n.rt.Self()
	var out []*domain.Node
	seen := make(map[string]bool)
	for i := n.rt.NumFingers() - 1; i >= 0; i-- {
		f := n.rt.GetFinger(i)
		if f != nil && f.ID.BetweenOpen(self.ID, target) && !seen[f.Addr] {
			out = append(out, f)
			seen[f.Addr] = true
		}
	}
	if succ := n.rt.FirstSuccessor(); succ != nil && !seen[succ.Addr] {
		out = append(out, succ)
	}
	return out
}

// ClosestPrecedingNode scans the finger table from the highest index down,
// returning the first finger strictly between self and target (spec C5).
// If none qualifies it returns self's first successor, and self only when
// no successor is set.
func (n *Node) ClosestPrecedingNode(target domain.ID) *domain.Node {
	return n.rt.ClosestPrecedingFinger(target)
}

func (n *Node) callFindSuccessor(ctx context.Context, peer *domain.Node, target domain.ID, hops int32) (*domain.Node, int32, error) {
	if peer.ID.Equal(n.rt.Self().ID) {
		return n.findSuccessor(ctx, target, hops)
	}
	cli, closeFn, err := n.dialOrPool(peer.Addr)
	if err != nil {
		return nil, hops, fmt.Errorf("%w: %v", domain.ErrTransport, err)
	}
	defer closeFn()

	res, hopCount, err := client.FindSuccessor(ctx, cli, target, hops)
	if err != nil {
		return nil, hops, err
	}
	return res, hopCount, nil
}
