package server

import (
	"context"
	"errors"

	"ChordDHT/internal/client"
	"ChordDHT/internal/ctxutil"
	"ChordDHT/internal/domain"
	"ChordDHT/internal/node"

	dhtv1 "ChordDHT/internal/api/dht/v1"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// dhtService implements dhtv1.DHTServer, the peer-to-peer half of the
// request handler set (spec C9), translating wire calls into operations on
// the bound node.
type dhtService struct {
	dhtv1.UnimplementedDHTServer
	node *node.Node
}

// NewDHTService binds n to the peer-to-peer gRPC surface.
func NewDHTService(n *node.Node) dhtv1.DHTServer {
	return &dhtService{node: n}
}

func (s *dhtService) FindSuccessor(ctx context.Context, req *dhtv1.FindSuccessorRequest) (*dhtv1.FindSuccessorResponse, error) {
	if err := ctxutil.CheckContext(ctx); err != nil {
		return nil, err
	}
	if req == nil || len(req.TargetId) == 0 {
		return nil, status.Error(codes.InvalidArgument, "missing target_id")
	}
	target := domain.ID(req.TargetId)
	ctx = ctxutil.WithHopCount(ctx, req.Hops)
	succ, hops, err := s.node.FindSuccessor(ctx, target)
	if err != nil {
		return nil, toStatus(err)
	}
	return &dhtv1.FindSuccessorResponse{Node: dhtv1.NodeToWire(succ), HopCount: hops}, nil
}

func (s *dhtService) GetPredecessor(ctx context.Context, _ *dhtv1.Empty) (*dhtv1.Node, error) {
	if err := ctxutil.CheckContext(ctx); err != nil {
		return nil, err
	}
	pred := s.node.RoutingTable().GetPredecessor()
	if pred == nil {
		return nil, status.Error(codes.NotFound, "no predecessor set")
	}
	return dhtv1.NodeToWire(pred), nil
}

func (s *dhtService) GetSuccessor(ctx context.Context, _ *dhtv1.Empty) (*dhtv1.Node, error) {
	if err := ctxutil.CheckContext(ctx); err != nil {
		return nil, err
	}
	succ := s.node.RoutingTable().FirstSuccessor()
	if succ == nil {
		return nil, status.Error(codes.NotFound, "no successor set")
	}
	return dhtv1.NodeToWire(succ), nil
}

func (s *dhtService) GetSuccessorList(ctx context.Context, _ *dhtv1.Empty) (*dhtv1.SuccessorList, error) {
	if err := ctxutil.CheckContext(ctx); err != nil {
		return nil, err
	}
	return &dhtv1.SuccessorList{Successors: dhtv1.NodeListToWire(s.node.RoutingTable().SuccessorList())}, nil
}

func (s *dhtService) Notify(ctx context.Context, req *dhtv1.Node) (*dhtv1.Empty, error) {
	if err := ctxutil.CheckContext(ctx); err != nil {
		return nil, err
	}
	if req == nil || len(req.Id) == 0 || req.Address == "" {
		return nil, status.Error(codes.InvalidArgument, "invalid node")
	}
	s.node.Notify(dhtv1.NodeFromWire(req))
	return &dhtv1.Empty{}, nil
}

func (s *dhtService) Ping(ctx context.Context, _ *dhtv1.Empty) (*dhtv1.Empty, error) {
	if err := ctxutil.CheckContext(ctx); err != nil {
		return nil, err
	}
	return &dhtv1.Empty{}, nil
}

// Store persists a resource under the role the caller asserts (Primary
// during handoff/forwarding, Replica during replication push).
func (s *dhtService) Store(ctx context.Context, req *dhtv1.StoreRequest) (*dhtv1.Empty, error) {
	if req == nil || len(req.Key) == 0 {
		return nil, status.Error(codes.InvalidArgument, "missing key")
	}
	id := domain.ID(req.Key)
	if err := s.node.Space().IsValidID(id); err != nil {
		return nil, status.Error(codes.InvalidArgument, "invalid key")
	}
	s.node.StoreLocal(domain.Resource{Key: id, Value: req.Value}, dhtv1.RoleFromWire(req.Role))
	return &dhtv1.Empty{}, nil
}

func (s *dhtService) Retrieve(ctx context.Context, req *dhtv1.RetrieveRequest) (*dhtv1.RetrieveResponse, error) {
	if req == nil || len(req.Key) == 0 {
		return nil, status.Error(codes.InvalidArgument, "missing key")
	}
	id := domain.ID(req.Key)
	if err := s.node.Space().IsValidID(id); err != nil {
		return nil, status.Error(codes.InvalidArgument, "invalid key")
	}
	res, err := s.node.RetrieveLocal(id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, status.Error(codes.NotFound, "key not found")
		}
		return nil, status.Error(codes.Internal, err.Error())
	}
	return &dhtv1.RetrieveResponse{Value: res.Value}, nil
}

func (s *dhtService) Remove(ctx context.Context, req *dhtv1.RemoveRequest) (*dhtv1.Empty, error) {
	if req == nil || len(req.Key) == 0 {
		return nil, status.Error(codes.InvalidArgument, "missing key")
	}
	id := domain.ID(req.Key)
	if err := s.node.Space().IsValidID(id); err != nil {
		return nil, status.Error(codes.InvalidArgument, "invalid key")
	}
	if err := s.node.RemoveLocal(id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, status.Error(codes.NotFound, "key not found")
		}
		return nil, status.Error(codes.Internal, err.Error())
	}
	return &dhtv1.Empty{}, nil
}

// Transfer returns everything self holds in (from, to], the ownership
// handoff primitive used during join (spec C6).
func (s *dhtService) Transfer(ctx context.Context, req *dhtv1.TransferRequest) (*dhtv1.TransferResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "missing range")
	}
	resources, roles := s.node.TransferRange(domain.ID(req.From), domain.ID(req.To))
	entries := make([]*dhtv1.TransferEntry, len(resources))
	for i, res := range resources {
		entries[i] = dhtv1.ResourceToTransferEntry(res, roles[i])
	}
	return &dhtv1.TransferResponse{Resources: entries}, nil
}

// Replicate accepts a batch of primary-owned resources pushed by their
// owner and hands each to Node.ReceiveReplica: a key this node already
// holds as Primary is left untouched; otherwise the entry is stored as
// Primary if this node owns the key, and as Replica if it does not (spec
// C8, §4.8 step 2).
func (s *dhtService) Replicate(ctx context.Context, req *dhtv1.ReplicateRequest) (*dhtv1.Empty, error) {
	if req == nil {
		return &dhtv1.Empty{}, nil
	}
	for _, e := range req.Entries {
		res, _ := dhtv1.TransferEntryToResource(e)
		s.node.ReceiveReplica(res)
	}
	return &dhtv1.Empty{}, nil
}

// toStatus maps the node's sentinel error taxonomy onto gRPC status codes.
func toStatus(err error) error {
	switch {
	case errors.Is(err, domain.ErrRouting):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, domain.ErrTransport):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, client.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, client.ErrUnavailable):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, client.ErrDeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
