package node

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"ChordDHT/internal/logger"
)

// Snapshot is the read-only state view pushed to an external monitor
// (spec.md §6); the monitor service and its ingestion contract are an
// out-of-scope collaborator, so this shape is the only thing owed to it.
type Snapshot struct {
	ID          string   `json:"id"`
	Address     string   `json:"address"`
	Predecessor string   `json:"predecessor,omitempty"`
	Successors  []string `json:"successors"`
	Fingers     []string `json:"finger_table"`
	StoredKeys  []string `json:"stored_keys"`
}

func (n *Node) buildSnapshot() Snapshot {
	self := n.rt.Self()
	snap := Snapshot{
		ID:      self.ID.Hex(),
		Address: self.Addr,
	}
	if pred := n.rt.GetPredecessor(); pred != nil {
		snap.Predecessor = pred.ID.Hex()
	}
	for _, s := range n.rt.SuccessorList() {
		if s != nil {
			snap.Successors = append(snap.Successors, s.ID.Hex())
		}
	}
	for i := 0; i < n.rt.NumFingers(); i++ {
		if f := n.rt.GetFinger(i); f != nil {
			snap.Fingers = append(snap.Fingers, f.ID.Hex())
		}
	}
	for _, res := range n.s.All() {
		snap.StoredKeys = append(snap.StoredKeys, res.Key.Hex())
	}
	return snap
}

// pushSnapshot best-effort POSTs the current state snapshot to the
// configured monitor endpoint. No monitor is wired if monitorAddr is empty.
// Failures are logged and dropped (spec.md §6 "drops are tolerated").
func (n *Node) pushSnapshot(ctx context.Context) {
	if n.monitorAddr == "" {
		return
	}
	body, err := json.Marshal(n.buildSnapshot())
	if err != nil {
		n.lgr.Debug("pushSnapshot: marshal failed", logger.F("err", err))
		return
	}

	callCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	url := "http://" + n.monitorAddr + "/snapshot"
	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		n.lgr.Debug("pushSnapshot: request build failed", logger.F("err", err))
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		n.lgr.Debug("pushSnapshot: push failed", logger.F("monitor", n.monitorAddr), logger.F("err", err))
		return
	}
	_ = resp.Body.Close()
}
