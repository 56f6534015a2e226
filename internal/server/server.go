// Package server hosts the node's two gRPC surfaces — the peer-to-peer DHT
// service and the external client API — over a single listener, and
// implements the request handlers (spec C9) that translate wire calls into
// internal/node operations.
package server

import (
	"fmt"
	"net"

	clientv1 "ChordDHT/internal/api/client/v1"
	"ChordDHT/internal/api/codec"
	dhtv1 "ChordDHT/internal/api/dht/v1"
	"ChordDHT/internal/logger"
	"ChordDHT/internal/node"
	"ChordDHT/internal/telemetry/lookuptrace"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
)

// Server wraps a gRPC server hosting both the client and DHT services.
type Server struct {
	grpcServer *grpc.Server
	listener   net.Listener
	lgr        logger.Logger
}

// New creates a gRPC server bound to lis, registers both the client and DHT
// services against n, and installs the JSON codec, OpenTelemetry stats
// handler, and lookup-hop tracing interceptor. Extra grpcOpts are appended
// after these defaults.
func New(lis net.Listener, n *node.Node, grpcOpts []grpc.ServerOption, srvOpts ...Option) (*Server, error) {
	opts := append([]grpc.ServerOption{
		codec.ServerOption(),
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(lookuptrace.ServerInterceptor()),
	}, grpcOpts...)

	s := &Server{
		grpcServer: grpc.NewServer(opts...),
		listener:   lis,
		lgr:        &logger.NopLogger{},
	}
	for _, opt := range srvOpts {
		opt(s)
	}

	clientv1.RegisterClientAPIServer(s.grpcServer, NewClientService(n))
	dhtv1.RegisterDHTServer(s.grpcServer, NewDHTService(n))
	return s, nil
}

// Start runs the gRPC server and blocks until it stops.
func (s *Server) Start() error {
	if err := s.grpcServer.Serve(s.listener); err != nil {
		return fmt.Errorf("server: grpc server stopped: %w", err)
	}
	return nil
}

// Stop immediately stops the server, dropping in-flight RPCs.
func (s *Server) Stop() {
	s.grpcServer.Stop()
}

// GracefulStop waits for in-flight RPCs to finish before stopping.
func (s *Server) GracefulStop() {
	s.grpcServer.GracefulStop()
}
