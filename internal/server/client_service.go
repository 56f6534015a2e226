package server

import (
	"context"

	clientv1 "ChordDHT/internal/api/client/v1"
	"ChordDHT/internal/domain"
	"ChordDHT/internal/node"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// clientService implements clientv1.ClientAPIServer, the external half of
// the request handler set (spec C9 put/get/delete).
type clientService struct {
	clientv1.UnimplementedClientAPIServer
	node *node.Node
}

// NewClientService binds n to the external Put/Get/Delete gRPC surface.
func NewClientService(n *node.Node) clientv1.ClientAPIServer {
	return &clientService{node: n}
}

func (s *clientService) Put(ctx context.Context, req *clientv1.PutRequest) (*clientv1.PutResponse, error) {
	if req == nil || len(req.Key) == 0 {
		return nil, status.Error(codes.InvalidArgument, "missing key")
	}
	id := domain.ID(req.Key)
	if err := s.node.Space().IsValidID(id); err != nil {
		return nil, status.Error(codes.InvalidArgument, "invalid key")
	}
	if err := s.node.Put(ctx, id, req.Value); err != nil {
		return nil, toStatus(err)
	}
	return &clientv1.PutResponse{}, nil
}

func (s *clientService) Get(ctx context.Context, req *clientv1.GetRequest) (*clientv1.GetResponse, error) {
	if req == nil || len(req.Key) == 0 {
		return nil, status.Error(codes.InvalidArgument, "missing key")
	}
	id := domain.ID(req.Key)
	if err := s.node.Space().IsValidID(id); err != nil {
		return nil, status.Error(codes.InvalidArgument, "invalid key")
	}
	value, err := s.node.Get(ctx, id)
	if err != nil {
		return nil, toStatus(err)
	}
	return &clientv1.GetResponse{Value: value}, nil
}

func (s *clientService) Delete(ctx context.Context, req *clientv1.DeleteRequest) (*clientv1.DeleteResponse, error) {
	if req == nil || len(req.Key) == 0 {
		return nil, status.Error(codes.InvalidArgument, "missing key")
	}
	id := domain.ID(req.Key)
	if err := s.node.Space().IsValidID(id); err != nil {
		return nil, status.Error(codes.InvalidArgument, "invalid key")
	}
	if err := s.node.Delete(ctx, id); err != nil {
		return nil, toStatus(err)
	}
	return &clientv1.DeleteResponse{}, nil
}
