// Package codec installs a JSON-based encoding.Codec for the node's gRPC
// traffic. Every message in internal/api/dht/v1 and internal/api/client/v1
// is a plain Go struct (no protoc-generated types); this codec is what lets
// them travel over real google.golang.org/grpc connections.
package codec

import (
	"encoding/json"
	"fmt"
)

// Name is the codec's content-subtype, negotiated over the wire the same
// way "proto" is for protobuf.
const Name = "json"

// Codec implements google.golang.org/grpc/encoding.Codec using
// encoding/json. It requires every RPC message type to be a JSON-tagged
// struct (or a pointer to one); the stubs and handlers in internal/api
// always pass grpc a pointer allocated with new(T).
type Codec struct{}

func (Codec) Marshal(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("codec: marshal %T: %w", v, err)
	}
	return b, nil
}

func (Codec) Unmarshal(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("codec: unmarshal into %T: %w", v, err)
	}
	return nil
}

func (Codec) Name() string { return Name }
