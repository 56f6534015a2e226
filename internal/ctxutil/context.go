// Package ctxutil provides the request-scoped context helpers shared by the
// lookup engine, stabilizer and request handlers: trace-ID attachment, hop
// counting for bounded lookup forwarding, and context-cancellation mapping
// to gRPC status errors.
package ctxutil

import (
	"context"
	"errors"
	"time"

	"ChordDHT/internal/domain"
	"ChordDHT/internal/trace"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type traceKey struct{}
type hopsKey struct{}

// Option configures a context built by New.
type Option func(*config)

type config struct {
	withTrace bool
	withHops  bool
	nodeID    domain.ID
	timeout   time.Duration
}

// WithTrace attaches a fresh trace ID derived from nodeID to the context.
func WithTrace(nodeID domain.ID) Option {
	return func(c *config) {
		c.withTrace = true
		c.nodeID = nodeID
	}
}

// WithTimeout bounds the context with d. The caller must defer the returned
// cancel function.
func WithTimeout(d time.Duration) Option {
	return func(c *config) { c.timeout = d }
}

// WithHops initializes the hop counter at 0.
func WithHops() Option {
	return func(c *config) { c.withHops = true }
}

// New builds a context from opts, returning it alongside a cancel function
// (nil when no timeout was requested).
func New(opts ...Option) (context.Context, context.CancelFunc) {
	cfg := &config{}
	for _, o := range opts {
		o(cfg)
	}

	var ctx context.Context
	var cancel context.CancelFunc
	if cfg.timeout > 0 {
		ctx, cancel = context.WithTimeout(context.Background(), cfg.timeout)
	} else {
		ctx = context.Background()
	}
	if cfg.withTrace {
		ctx, _ = trace.AttachTraceID(ctx, cfg.nodeID)
	}
	if cfg.withHops {
		ctx = context.WithValue(ctx, hopsKey{}, int32(0))
	}
	return ctx, cancel
}

// TraceID extracts the trace ID carried by ctx, or "" if none.
func TraceID(ctx context.Context) string {
	return trace.GetTraceID(ctx)
}

// EnsureTraceID returns ctx unchanged if it already carries a trace ID,
// otherwise attaches a fresh one derived from nodeID.
func EnsureTraceID(ctx context.Context, nodeID domain.ID) context.Context {
	if id := trace.GetTraceID(ctx); id == "" {
		ctx, _ = trace.AttachTraceID(ctx, nodeID)
	}
	return ctx
}

// Hops returns the number of forwarding hops recorded on ctx, or 0 if the
// context was never initialized with WithHops.
func Hops(ctx context.Context) int32 {
	if v, ok := ctx.Value(hopsKey{}).(int32); ok {
		return v
	}
	return 0
}

// IncHops returns a context with the hop counter incremented by one. A
// context never initialized with WithHops starts counting from 1.
func IncHops(ctx context.Context) context.Context {
	return context.WithValue(ctx, hopsKey{}, Hops(ctx)+1)
}

// WithHopCount seeds ctx with an explicit starting hop count, used by the
// lookup engine when forwarding a request that already carries a hop count
// from the wire (FindSuccessorRequest.Hops) rather than starting fresh.
func WithHopCount(ctx context.Context, hops int32) context.Context {
	return context.WithValue(ctx, hopsKey{}, hops)
}

// CheckContext maps an already-canceled or expired ctx to the matching gRPC
// status error, or nil if ctx is still live. Handlers call this before doing
// any work so a client that has given up doesn't pay for a lookup.
func CheckContext(ctx context.Context) error {
	switch err := ctx.Err(); {
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "request was canceled by client")
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "request deadline exceeded")
	default:
		return nil
	}
}
