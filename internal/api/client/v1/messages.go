// Package clientv1 is the hand-written wire contract for the external
// client-facing surface (Put/Get/Delete), mirroring the shape
// protoc-gen-go-grpc would produce from a "client.v1.ClientAPI" proto
// service — message structs, a typed client stub, and a server interface —
// carried instead as plain JSON-tagged structs (see internal/api/codec).
package clientv1

// PutRequest asks the contacted node to store value under key, resolving
// ownership and forwarding as needed (spec C9 put).
type PutRequest struct {
	Key   []byte `json:"key"`
	Value []byte `json:"value"`
}

type PutResponse struct{}

// GetRequest asks the contacted node to resolve and return key's value
// (spec C9 get).
type GetRequest struct {
	Key []byte `json:"key"`
}

type GetResponse struct {
	Value []byte `json:"value"`
}

// DeleteRequest asks the contacted node to resolve and remove key.
type DeleteRequest struct {
	Key []byte `json:"key"`
}

type DeleteResponse struct{}
