package codec

import "google.golang.org/grpc"

// ServerOption installs the JSON codec on a grpc.Server, bypassing the
// usual protobuf content-type negotiation entirely.
func ServerOption() grpc.ServerOption {
	return grpc.ForceServerCodec(Codec{})
}

// CallOption installs the JSON codec on a single RPC invocation; client
// stubs pass this on every call alongside the caller's own options.
func CallOption() grpc.CallOption {
	return grpc.ForceCodec(Codec{})
}
