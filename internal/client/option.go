package client

import (
	"ChordDHT/internal/logger"

	"google.golang.org/grpc"
)

// Option configures a Pool at construction time.
type Option func(*Pool)

// WithLogger sets the logger used by the pool.
func WithLogger(l logger.Logger) Option {
	return func(p *Pool) {
		if l != nil {
			p.lgr = l
		}
	}
}

// WithDialOptions appends extra gRPC dial options to the pool's defaults
// (e.g. an in-process bufconn dialer instead of a real socket).
func WithDialOptions(opts ...grpc.DialOption) Option {
	return func(p *Pool) {
		p.dialOpts = append(p.dialOpts, opts...)
	}
}
