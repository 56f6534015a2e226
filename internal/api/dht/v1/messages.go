// Package dhtv1 defines the peer-to-peer RPC surface nodes use to talk to
// each other: FindSuccessor, predecessor/successor-list exchange, Notify,
// Ping, and the Store/Retrieve/Remove trio that moves resource data (spec
// C4, C9). Every message here is a plain JSON-tagged struct, carried over
// gRPC via the custom codec in internal/api/codec instead of protobuf wire
// encoding — see DESIGN.md for why.
package dhtv1

// Node mirrors domain.Node on the wire.
type Node struct {
	Id      []byte `json:"id"`
	Address string `json:"address"`
}

// Empty is this API's equivalent of google.protobuf.Empty: there is no
// protobuf wire format underneath to make emptypb meaningful, so RPCs with
// no payload exchange a zero-field struct instead.
type Empty struct{}

// FindSuccessorRequest asks the callee to resolve target, forwarding to the
// next hop if it isn't the owner itself. Hops counts how many nodes have
// already forwarded this lookup, enforced against a hard limit by the
// receiving node (spec C5: bounded at 2*m hops).
type FindSuccessorRequest struct {
	TargetId []byte `json:"target_id"`
	Hops     int32  `json:"hops"`
}

// FindSuccessorResponse carries the resolved owner plus the total hop
// count accumulated along the way, surfaced for lookup-hop tracing.
type FindSuccessorResponse struct {
	Node     *Node `json:"node"`
	HopCount int32 `json:"hop_count"`
}

// SuccessorList is the callee's current successor list.
type SuccessorList struct {
	Successors []*Node `json:"successors"`
}

// ReplicateRequest pushes a batch of resources to be held as Replica,
// issued by the primary's replication maintainer (spec C8) toward its
// successor list.
type ReplicateRequest struct {
	Entries []*TransferEntry `json:"entries"`
}

// StoreRequest asks the callee to hold (key, value) locally.
type StoreRequest struct {
	Key   []byte `json:"key"`
	Value []byte `json:"value"`
	// Role tells the callee whether it is being asked to hold this key as
	// Primary (the real owner) or Replica (successor-based replication).
	Role string `json:"role"`
}

// RetrieveRequest asks the callee for the value stored under Key.
type RetrieveRequest struct {
	Key []byte `json:"key"`
}

// RetrieveResponse carries the resolved value.
type RetrieveResponse struct {
	Value []byte `json:"value"`
}

// RemoveRequest asks the callee to delete the resource stored under Key.
type RemoveRequest struct {
	Key []byte `json:"key"`
}

// TransferRequest asks the callee (a newly joined or departing node's
// neighbor) for every resource it holds in (From, To], used during key
// ownership transfer (spec C6).
type TransferRequest struct {
	From []byte `json:"from"`
	To   []byte `json:"to"`
}

// TransferResponse carries the matching resources, each tagged with the
// role the sender held it under so the receiver can preserve Primary vs.
// Replica status.
type TransferResponse struct {
	Resources []*TransferEntry `json:"resources"`
}

// TransferEntry is one (key, value, role) triple inside a TransferResponse.
type TransferEntry struct {
	Key   []byte `json:"key"`
	Value []byte `json:"value"`
	Role  string `json:"role"`
}
