package client

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	dhtv1 "ChordDHT/internal/api/dht/v1"
	"ChordDHT/internal/domain"
)

// Sentinel errors every query wrapper normalizes a peer RPC failure to, so
// the lookup/stabilize/membership engines can branch on cause with
// errors.Is instead of inspecting gRPC status codes directly.
var (
	ErrNotFound         = errors.New("client: resource not found")
	ErrUnavailable      = errors.New("client: peer unavailable")
	ErrDeadlineExceeded = errors.New("client: request timeout exceeded")
	ErrInternal         = errors.New("client: internal rpc error")
)

// normalizeError maps a gRPC status error to one of this package's sentinel
// errors, wrapping the original so %w-based diagnostics still work.
func normalizeError(err error) error {
	if err == nil {
		return nil
	}
	s, ok := status.FromError(err)
	if !ok {
		return errors.Join(ErrInternal, err)
	}
	switch s.Code() {
	case codes.NotFound:
		return errors.Join(ErrNotFound, err)
	case codes.Unavailable:
		return errors.Join(ErrUnavailable, err)
	case codes.DeadlineExceeded, codes.Canceled:
		return errors.Join(ErrDeadlineExceeded, err)
	default:
		return errors.Join(ErrInternal, err)
	}
}

// FindSuccessor asks peer to resolve target, forwarding hops so hop-count
// tracing stays consistent across the recursive chain.
func FindSuccessor(ctx context.Context, peer dhtv1.DHTClient, target domain.ID, hops int32) (*domain.Node, int32, error) {
	resp, err := peer.FindSuccessor(ctx, &dhtv1.FindSuccessorRequest{TargetId: []byte(target), Hops: hops}, callOptions...)
	if err != nil {
		return nil, 0, normalizeError(err)
	}
	return dhtv1.NodeFromWire(resp.Node), resp.HopCount, nil
}

// GetPredecessor asks peer for its predecessor. A nil node with no error
// means peer doesn't know one yet.
func GetPredecessor(ctx context.Context, peer dhtv1.DHTClient) (*domain.Node, error) {
	resp, err := peer.GetPredecessor(ctx, &dhtv1.Empty{}, callOptions...)
	if err != nil {
		return nil, normalizeError(err)
	}
	return dhtv1.NodeFromWire(resp), nil
}

// GetSuccessor asks peer for its immediate successor.
func GetSuccessor(ctx context.Context, peer dhtv1.DHTClient) (*domain.Node, error) {
	resp, err := peer.GetSuccessor(ctx, &dhtv1.Empty{}, callOptions...)
	if err != nil {
		return nil, normalizeError(err)
	}
	return dhtv1.NodeFromWire(resp), nil
}

// GetSuccessorList asks peer for its full successor list, used to rebuild
// the local successor list on join and during stabilize.
func GetSuccessorList(ctx context.Context, peer dhtv1.DHTClient) ([]*domain.Node, error) {
	resp, err := peer.GetSuccessorList(ctx, &dhtv1.Empty{}, callOptions...)
	if err != nil {
		return nil, normalizeError(err)
	}
	return dhtv1.NodeListFromWire(resp.Successors), nil
}

// Notify tells peer that self believes it may be its predecessor.
func Notify(ctx context.Context, peer dhtv1.DHTClient, self *domain.Node) error {
	_, err := peer.Notify(ctx, dhtv1.NodeToWire(self), callOptions...)
	return normalizeError(err)
}

// Ping checks that peer is alive and responsive, used by check_predecessor.
func Ping(ctx context.Context, peer dhtv1.DHTClient) error {
	_, err := peer.Ping(ctx, &dhtv1.Empty{}, callOptions...)
	return normalizeError(err)
}

// Store asks peer to hold (key, value) under the given role.
func Store(ctx context.Context, peer dhtv1.DHTClient, key domain.ID, value []byte, role domain.Role) error {
	_, err := peer.Store(ctx, &dhtv1.StoreRequest{Key: []byte(key), Value: value, Role: dhtv1.RoleToWire(role)}, callOptions...)
	return normalizeError(err)
}

// Retrieve asks peer for the value stored under key.
func Retrieve(ctx context.Context, peer dhtv1.DHTClient, key domain.ID) ([]byte, error) {
	resp, err := peer.Retrieve(ctx, &dhtv1.RetrieveRequest{Key: []byte(key)}, callOptions...)
	if err != nil {
		return nil, normalizeError(err)
	}
	return resp.Value, nil
}

// Remove asks peer to delete the resource stored under key.
func Remove(ctx context.Context, peer dhtv1.DHTClient, key domain.ID) error {
	_, err := peer.Remove(ctx, &dhtv1.RemoveRequest{Key: []byte(key)}, callOptions...)
	return normalizeError(err)
}

// Transfer asks peer for every resource it holds in (from, to], used during
// ownership handoff on join and leave.
func Transfer(ctx context.Context, peer dhtv1.DHTClient, from, to domain.ID) ([]domain.Resource, []domain.Role, error) {
	resp, err := peer.Transfer(ctx, &dhtv1.TransferRequest{From: []byte(from), To: []byte(to)}, callOptions...)
	if err != nil {
		return nil, nil, normalizeError(err)
	}
	resources := make([]domain.Resource, 0, len(resp.Resources))
	roles := make([]domain.Role, 0, len(resp.Resources))
	for _, e := range resp.Resources {
		res, role := dhtv1.TransferEntryToResource(e)
		resources = append(resources, res)
		roles = append(roles, role)
	}
	return resources, roles, nil
}

// Replicate pushes a batch of resources to peer to be held as Replica.
func Replicate(ctx context.Context, peer dhtv1.DHTClient, resources []domain.Resource) error {
	entries := make([]*dhtv1.TransferEntry, 0, len(resources))
	for _, r := range resources {
		entries = append(entries, dhtv1.ResourceToTransferEntry(r, domain.RoleReplica))
	}
	_, err := peer.Replicate(ctx, &dhtv1.ReplicateRequest{Entries: entries}, callOptions...)
	return normalizeError(err)
}
