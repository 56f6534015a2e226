// Package client is the node's C4 Peer client capability: a ref-counted
// gRPC connection pool plus typed query wrappers over the peer-to-peer DHT
// service (internal/api/dht/v1), used by the lookup, stabilize, membership
// and replication engines in internal/node.
package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	dhtv1 "ChordDHT/internal/api/dht/v1"
	"ChordDHT/internal/api/codec"
	"ChordDHT/internal/logger"
	"ChordDHT/internal/telemetry/lookuptrace"
)

// poolEntry is one cached connection, reference-counted so a node that
// appears in both the successor list and the finger table isn't dialed
// twice and isn't torn down while either still needs it.
type poolEntry struct {
	conn *grpc.ClientConn
	cli  dhtv1.DHTClient
	refs int
}

// Pool caches one gRPC connection per peer address. Routing-table and
// replication code calls AddRef when a peer enters its state (successor
// list, finger table, predecessor) and Release when it leaves; GetFromPool
// only ever reads the cache, never dials, so a transient lookup never pays
// for a connection nobody asked to keep open.
type Pool struct {
	lgr            logger.Logger
	mu             sync.Mutex
	conns          map[string]*poolEntry
	dialOpts       []grpc.DialOption
	dialTimeout    time.Duration
	failureTimeout time.Duration
}

// NewPool builds an empty pool. failureTimeout is the RPC timeout (spec C4's
// T_rpc) handed out by FailureTimeout; the pool itself applies no deadline
// to calls made over its connections, so an RPC is bounded only when its
// caller wraps the context with that timeout.
func NewPool(dialTimeout, failureTimeout time.Duration, opts ...Option) *Pool {
	p := &Pool{
		lgr:            &logger.NopLogger{},
		conns:          make(map[string]*poolEntry),
		dialOpts: []grpc.DialOption{
			grpc.WithTransportCredentials(insecure.NewCredentials()),
			grpc.WithStatsHandler(otelgrpc.NewClientHandler()),
			grpc.WithChainUnaryInterceptor(lookuptrace.ClientInterceptor()),
		},
		dialTimeout:    dialTimeout,
		failureTimeout: failureTimeout,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// FailureTimeout returns the RPC timeout every query wrapper should use.
func (p *Pool) FailureTimeout() time.Duration { return p.failureTimeout }

// AddRef dials addr if not already connected and increments its reference
// count. Safe to call repeatedly for the same address (e.g. a node present
// in both the successor list and a finger slot).
func (p *Pool) AddRef(addr string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if e, ok := p.conns[addr]; ok {
		e.refs++
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), p.dialTimeout)
	defer cancel()
	conn, err := grpc.DialContext(ctx, addr, p.dialOpts...)
	if err != nil {
		return fmt.Errorf("client: dial %s: %w", addr, err)
	}
	p.conns[addr] = &poolEntry{conn: conn, cli: dhtv1.NewDHTClient(conn), refs: 1}
	p.lgr.Debug("AddRef: connection opened", logger.F("addr", addr))
	return nil
}

// Release decrements addr's reference count, closing and evicting the
// connection once it reaches zero. Releasing an address not in the pool is
// a no-op: callers release defensively on every routing-state removal.
func (p *Pool) Release(addr string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, ok := p.conns[addr]
	if !ok {
		return nil
	}
	e.refs--
	if e.refs > 0 {
		return nil
	}
	delete(p.conns, addr)
	p.lgr.Debug("Release: connection closed", logger.F("addr", addr))
	return e.conn.Close()
}

// GetFromPool returns the cached client for addr. It never dials: a peer
// must first be added via AddRef (i.e. it must be part of the routing
// state) for a lookup or maintenance task to reuse its connection.
func (p *Pool) GetFromPool(addr string) (dhtv1.DHTClient, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, ok := p.conns[addr]
	if !ok {
		return nil, fmt.Errorf("client: no pooled connection to %s", addr)
	}
	return e.cli, nil
}

// DialEphemeral opens a one-off connection to addr for a single RPC, used
// when the routing state doesn't already reference the peer (e.g. an
// ownership transfer to a brand-new joiner). The caller owns the returned
// connection and must Close it.
func (p *Pool) DialEphemeral(addr string) (dhtv1.DHTClient, *grpc.ClientConn, error) {
	ctx, cancel := context.WithTimeout(context.Background(), p.dialTimeout)
	defer cancel()
	conn, err := grpc.DialContext(ctx, addr, p.dialOpts...)
	if err != nil {
		return nil, nil, fmt.Errorf("client: ephemeral dial %s: %w", addr, err)
	}
	return dhtv1.NewDHTClient(conn), conn, nil
}

// Close tears down every pooled connection regardless of reference count,
// used during node shutdown.
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	var firstErr error
	for addr, e := range p.conns {
		if err := e.conn.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(p.conns, addr)
	}
	return firstErr
}

// DebugLog emits a DEBUG snapshot of every pooled address and its
// reference count.
func (p *Pool) DebugLog() {
	p.mu.Lock()
	entries := make([]map[string]any, 0, len(p.conns))
	for addr, e := range p.conns {
		entries = append(entries, map[string]any{"addr": addr, "refs": e.refs})
	}
	p.mu.Unlock()
	p.lgr.Debug("client pool snapshot", logger.F("count", len(entries)), logger.F("entries", entries))
}

// callOptions installs the JSON codec on every RPC issued through this
// package, since none of the wire messages are protobuf-generated types.
var callOptions = []grpc.CallOption{codec.CallOption()}
