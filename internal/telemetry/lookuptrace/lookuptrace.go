// Package lookuptrace instruments FindSuccessor's recursive hop chain with
// OpenTelemetry spans, carried across gRPC calls via metadata rather than
// the call's own request fields (spec.md lookup hop tracing supplement).
package lookuptrace

import (
	"context"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

const (
	lookupMetaKey    = "x-chord-lookup"
	hopMetaKey       = "x-chord-hop"
	tracerName       = "chord/lookuptrace"
	findSuccessorRPC = "/dht.v1.DHTService/FindSuccessor"
)

var tracer = otel.Tracer(tracerName)

// WithLookup marks the outgoing context as belonging to a traced lookup.
func WithLookup(ctx context.Context) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	md.Set(lookupMetaKey, "true")
	return metadata.NewOutgoingContext(ctx, md)
}

// IsLookup reports whether the incoming context was marked by WithLookup.
func IsLookup(ctx context.Context) bool {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return false
	}
	values := md.Get(lookupMetaKey)
	return len(values) > 0 && values[0] == "true"
}

// ServerInterceptor opens a span for each FindSuccessor hop belonging to a
// traced lookup, extracting the propagated parent context and hop count
// from inbound metadata.
func ServerInterceptor() grpc.UnaryServerInterceptor {
	propagator := otel.GetTextMapPropagator()

	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if info.FullMethod != findSuccessorRPC || !IsLookup(ctx) {
			return handler(ctx, req)
		}

		var hopCount int
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if vals := md.Get(hopMetaKey); len(vals) > 0 {
				hopCount, _ = strconv.Atoi(vals[0])
			}
			ctx = propagator.Extract(ctx, metadataCarrier(md))
		}

		ctx, span := tracer.Start(ctx, info.FullMethod, trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()
		span.SetAttributes(
			attribute.String("rpc.method", info.FullMethod),
			attribute.Int("chord.hop", hopCount),
		)

		return handler(ctx, req)
	}
}

// ClientInterceptor mirrors ServerInterceptor on the caller side, bumping
// the hop count and injecting the current span context into outbound
// metadata before the call is invoked.
func ClientInterceptor() grpc.UnaryClientInterceptor {
	propagator := otel.GetTextMapPropagator()

	return func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		if !IsLookup(ctx) {
			return invoker(ctx, method, req, reply, cc, opts...)
		}

		var hopCount int
		if md, ok := metadata.FromOutgoingContext(ctx); ok {
			if vals := md.Get(hopMetaKey); len(vals) > 0 {
				hopCount, _ = strconv.Atoi(vals[0])
			}
		}
		hopCount++

		md, _ := metadata.FromOutgoingContext(ctx)
		md = md.Copy()
		md.Set(hopMetaKey, strconv.Itoa(hopCount))
		ctx = metadata.NewOutgoingContext(ctx, md)

		ctx, span := tracer.Start(ctx, method, trace.WithSpanKind(trace.SpanKindClient))
		defer span.End()
		span.SetAttributes(attribute.Int("chord.hop", hopCount))

		propagator.Inject(ctx, metadataCarrier(md))
		ctx = metadata.NewOutgoingContext(ctx, md)

		return invoker(ctx, method, req, reply, cc, opts...)
	}
}

type metadataCarrier metadata.MD

func (mc metadataCarrier) Get(key string) string {
	vals := metadata.MD(mc).Get(key)
	if len(vals) == 0 {
		return ""
	}
	return vals[0]
}

func (mc metadataCarrier) Set(key, value string) {
	metadata.MD(mc).Set(key, value)
}

func (mc metadataCarrier) Keys() []string {
	out := make([]string, 0, len(mc))
	for k := range mc {
		out = append(out, k)
	}
	return out
}
