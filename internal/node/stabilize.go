package node

import (
	"context"
	"math/rand"
	"time"

	"ChordDHT/internal/client"
	"ChordDHT/internal/domain"
	"ChordDHT/internal/logger"
)

// StabilizerIntervals bundles the periods of the five periodic maintenance
// loops (stabilize, fix_fingers, check_predecessor, replicate and
// monitor_push; spec C7, C8); each loop jitters its own period by up to 20% to avoid every
// node in a ring ticking in lockstep.
type StabilizerIntervals struct {
	Stabilize        time.Duration
	FixFingers       time.Duration
	CheckPredecessor time.Duration
	Replicate        time.Duration
	MonitorPush      time.Duration
}

// StartStabilizers launches the stabilize, fix_fingers, check_predecessor,
// replication maintainer and monitor_push loops as independent goroutines, each
// stopping when ctx is done (spec C7, C8).
func (n *Node) StartStabilizers(ctx context.Context, intervals StabilizerIntervals) {
	go n.runLoop(ctx, "stabilize", intervals.Stabilize, func() { n.stabilize() })
	go n.runLoop(ctx, "fix_fingers", intervals.FixFingers, func() { n.fixFingers(ctx) })
	go n.runLoop(ctx, "check_predecessor", intervals.CheckPredecessor, func() { n.checkPredecessor() })
	go n.runLoop(ctx, "replicate", intervals.Replicate, func() { n.replicate(ctx) })
	go n.runLoop(ctx, "monitor_push", intervals.MonitorPush, func() { n.pushSnapshot(ctx) })
}

// runLoop ticks fn every interval (jittered ±20%) until ctx is canceled.
func (n *Node) runLoop(ctx context.Context, name string, interval time.Duration, fn func()) {
	if interval <= 0 {
		return
	}
	timer := time.NewTimer(jitter(interval))
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			n.lgr.Debug("maintenance loop stopped", logger.F("loop", name))
			return
		case <-timer.C:
			fn()
			timer.Reset(jitter(interval))
		}
	}
}

func jitter(base time.Duration) time.Duration {
	span := int64(base) / 5
	if span <= 0 {
		return base
	}
	delta := time.Duration(rand.Int63n(span)) // up to 20%
	if rand.Intn(2) == 0 {
		return base + delta
	}
	return base - delta
}

// stabilize verifies the immediate successor is still the clockwise-
// nearest live node and notifies it (spec C7 stabilize).
func (n *Node) stabilize() {
	self := n.rt.Self()
	succ := n.rt.FirstSuccessor()
	if succ == nil {
		n.lgr.Warn("stabilize: no successor set")
		return
	}

	if succ.ID.Equal(self.ID) {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), n.cp.FailureTimeout())
	cli, err := n.cp.GetFromPool(succ.Addr)
	if err != nil {
		cancel()
		n.handleSuccessorFailure(succ)
		return
	}
	x, err := client.GetPredecessor(ctx, cli)
	cancel()
	if err != nil {
		n.handleSuccessorFailure(succ)
		return
	}

	if x != nil && x.ID.BetweenOpen(self.ID, succ.ID) {
		if err := n.cp.AddRef(x.Addr); err != nil {
			n.lgr.Warn("stabilize: failed to add new successor to pool", logger.FNode("candidate", x), logger.F("err", err))
		} else {
			n.rt.SetSuccessor(0, x)
			n.rt.SetFinger(0, x)
			if err := n.cp.Release(succ.Addr); err != nil {
				n.lgr.Warn("stabilize: failed to release old successor", logger.FNode("old", succ), logger.F("err", err))
			}
			succ = x
		}
	}

	n.notifySuccessor(context.Background(), succ)
	n.refreshSuccessorListFrom(succ)
}

// handleSuccessorFailure promotes the next live candidate from the
// successor list when the immediate successor stops responding, or
// reverts to single-node mode if every candidate has failed (spec C7
// stabilize transport-error fallback).
func (n *Node) handleSuccessorFailure(failed *domain.Node) {
	n.lgr.Warn("stabilize: successor unreachable, promoting candidate", logger.FNode("failed", failed))
	size := n.rt.Space().SuccListSize
	for i := 1; i < size; i++ {
		candidate := n.rt.GetSuccessor(i)
		if candidate == nil {
			continue
		}
		n.rt.PromoteCandidate(i)
		n.rt.SetFinger(0, candidate)
		if err := n.cp.Release(failed.Addr); err != nil {
			n.lgr.Warn("stabilize: failed to release dead successor", logger.FNode("failed", failed), logger.F("err", err))
		}
		n.lgr.Info("stabilize: promoted backup successor", logger.FNode("new", candidate))
		return
	}

	n.lgr.Warn("stabilize: no live successor candidates, reverting to single-node mode")
	if pred := n.rt.GetPredecessor(); pred != nil {
		_ = n.cp.Release(pred.Addr)
	}
	for _, s := range n.rt.SuccessorList() {
		if s != nil {
			_ = n.cp.Release(s.Addr)
		}
	}
	n.rt.InitSingleNode()
}

// fixFingers advances the rotating finger index by one and refreshes that
// slot via a fresh lookup (spec C7 fix_fingers).
func (n *Node) fixFingers(ctx context.Context) {
	next := int(n.fixFingerNext.Add(1)-1) % n.rt.NumFingers()
	n.fixFingerAt(ctx, next)
}

func (n *Node) fixFingerAt(ctx context.Context, i int) {
	start := n.rt.FingerStart(i)
	if start == nil {
		return
	}
	callCtx, cancel := context.WithTimeout(ctx, n.cp.FailureTimeout())
	defer cancel()
	succ, _, err := n.FindSuccessor(callCtx, start)
	if err != nil {
		n.lgr.Debug("fix_fingers: lookup failed, leaving stale entry", logger.F("index", i), logger.F("err", err))
		return
	}
	n.rt.SetFinger(i, succ)
}

// checkPredecessor pings the current predecessor, clearing it after the
// second consecutive failure; a single failure only marks it Suspect,
// giving stabilization a chance to replace it (spec C7 predecessor state
// machine).
func (n *Node) checkPredecessor() {
	pred := n.rt.GetPredecessor()
	if pred == nil || pred.ID.Equal(n.rt.Self().ID) {
		return
	}

	cli, err := n.cp.GetFromPool(pred.Addr)
	if err != nil {
		n.clearDeadPredecessor(pred)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), n.cp.FailureTimeout())
	err = client.Ping(ctx, cli)
	cancel()
	if err == nil {
		n.predFailures.Store(0)
		return
	}

	if n.predFailures.Add(1) < 2 {
		n.rt.SuspectPredecessor()
		n.lgr.Warn("check_predecessor: predecessor unresponsive, marked suspect", logger.FNode("pred", pred))
		return
	}

	n.clearDeadPredecessor(pred)
}

func (n *Node) clearDeadPredecessor(pred *domain.Node) {
	n.predFailures.Store(0)
	n.rt.ClearPredecessor()
	if err := n.cp.Release(pred.Addr); err != nil {
		n.lgr.Warn("check_predecessor: failed to release dead predecessor", logger.FNode("pred", pred), logger.F("err", err))
	}
	n.lgr.Info("check_predecessor: predecessor cleared after repeated failures", logger.FNode("pred", pred))
}
