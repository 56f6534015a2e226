package dhtv1

import (
	"context"

	"ChordDHT/internal/api/codec"

	"google.golang.org/grpc"
)

// serviceName is the gRPC service path, matching the convention protoc
// would generate from a "dht.v1.DHTService" proto package/service.
const serviceName = "dht.v1.DHTService"

// DHTClient is the typed client stub for the peer-to-peer DHT service.
type DHTClient interface {
	FindSuccessor(ctx context.Context, in *FindSuccessorRequest, opts ...grpc.CallOption) (*FindSuccessorResponse, error)
	GetPredecessor(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*Node, error)
	GetSuccessor(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*Node, error)
	GetSuccessorList(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*SuccessorList, error)
	Notify(ctx context.Context, in *Node, opts ...grpc.CallOption) (*Empty, error)
	Ping(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*Empty, error)
	Store(ctx context.Context, in *StoreRequest, opts ...grpc.CallOption) (*Empty, error)
	Retrieve(ctx context.Context, in *RetrieveRequest, opts ...grpc.CallOption) (*RetrieveResponse, error)
	Remove(ctx context.Context, in *RemoveRequest, opts ...grpc.CallOption) (*Empty, error)
	Transfer(ctx context.Context, in *TransferRequest, opts ...grpc.CallOption) (*TransferResponse, error)
	Replicate(ctx context.Context, in *ReplicateRequest, opts ...grpc.CallOption) (*Empty, error)
}

type dhtClient struct {
	cc grpc.ClientConnInterface
}

// NewDHTClient wraps a dialed connection with the typed DHT client stub.
// Every call forces the JSON codec regardless of what the connection
// negotiated, since there is no protobuf descriptor to negotiate with.
func NewDHTClient(cc grpc.ClientConnInterface) DHTClient {
	return &dhtClient{cc: cc}
}

func (c *dhtClient) invoke(ctx context.Context, method string, in, out any, opts ...grpc.CallOption) error {
	callOpts := append([]grpc.CallOption{codec.CallOption()}, opts...)
	return c.cc.Invoke(ctx, method, in, out, callOpts...)
}

func (c *dhtClient) FindSuccessor(ctx context.Context, in *FindSuccessorRequest, opts ...grpc.CallOption) (*FindSuccessorResponse, error) {
	out := new(FindSuccessorResponse)
	if err := c.invoke(ctx, "/"+serviceName+"/FindSuccessor", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *dhtClient) GetPredecessor(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*Node, error) {
	out := new(Node)
	if err := c.invoke(ctx, "/"+serviceName+"/GetPredecessor", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *dhtClient) GetSuccessor(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*Node, error) {
	out := new(Node)
	if err := c.invoke(ctx, "/"+serviceName+"/GetSuccessor", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *dhtClient) GetSuccessorList(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*SuccessorList, error) {
	out := new(SuccessorList)
	if err := c.invoke(ctx, "/"+serviceName+"/GetSuccessorList", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *dhtClient) Notify(ctx context.Context, in *Node, opts ...grpc.CallOption) (*Empty, error) {
	out := new(Empty)
	if err := c.invoke(ctx, "/"+serviceName+"/Notify", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *dhtClient) Ping(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*Empty, error) {
	out := new(Empty)
	if err := c.invoke(ctx, "/"+serviceName+"/Ping", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *dhtClient) Store(ctx context.Context, in *StoreRequest, opts ...grpc.CallOption) (*Empty, error) {
	out := new(Empty)
	if err := c.invoke(ctx, "/"+serviceName+"/Store", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *dhtClient) Retrieve(ctx context.Context, in *RetrieveRequest, opts ...grpc.CallOption) (*RetrieveResponse, error) {
	out := new(RetrieveResponse)
	if err := c.invoke(ctx, "/"+serviceName+"/Retrieve", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *dhtClient) Remove(ctx context.Context, in *RemoveRequest, opts ...grpc.CallOption) (*Empty, error) {
	out := new(Empty)
	if err := c.invoke(ctx, "/"+serviceName+"/Remove", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *dhtClient) Transfer(ctx context.Context, in *TransferRequest, opts ...grpc.CallOption) (*TransferResponse, error) {
	out := new(TransferResponse)
	if err := c.invoke(ctx, "/"+serviceName+"/Transfer", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *dhtClient) Replicate(ctx context.Context, in *ReplicateRequest, opts ...grpc.CallOption) (*Empty, error) {
	out := new(Empty)
	if err := c.invoke(ctx, "/"+serviceName+"/Replicate", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// DHTServer is the interface internal/server implements to handle incoming
// peer RPCs.
type DHTServer interface {
	FindSuccessor(context.Context, *FindSuccessorRequest) (*FindSuccessorResponse, error)
	GetPredecessor(context.Context, *Empty) (*Node, error)
	GetSuccessor(context.Context, *Empty) (*Node, error)
	GetSuccessorList(context.Context, *Empty) (*SuccessorList, error)
	Notify(context.Context, *Node) (*Empty, error)
	Ping(context.Context, *Empty) (*Empty, error)
	Store(context.Context, *StoreRequest) (*Empty, error)
	Retrieve(context.Context, *RetrieveRequest) (*RetrieveResponse, error)
	Remove(context.Context, *RemoveRequest) (*Empty, error)
	Transfer(context.Context, *TransferRequest) (*TransferResponse, error)
	Replicate(context.Context, *ReplicateRequest) (*Empty, error)
}

// UnimplementedDHTServer must be embedded in any DHTServer implementation
// to guarantee forward compatibility if this interface grows new methods.
type UnimplementedDHTServer struct{}

func (UnimplementedDHTServer) FindSuccessor(context.Context, *FindSuccessorRequest) (*FindSuccessorResponse, error) {
	return nil, errUnimplemented("FindSuccessor")
}
func (UnimplementedDHTServer) GetPredecessor(context.Context, *Empty) (*Node, error) {
	return nil, errUnimplemented("GetPredecessor")
}
func (UnimplementedDHTServer) GetSuccessor(context.Context, *Empty) (*Node, error) {
	return nil, errUnimplemented("GetSuccessor")
}
func (UnimplementedDHTServer) GetSuccessorList(context.Context, *Empty) (*SuccessorList, error) {
	return nil, errUnimplemented("GetSuccessorList")
}
func (UnimplementedDHTServer) Notify(context.Context, *Node) (*Empty, error) {
	return nil, errUnimplemented("Notify")
}
func (UnimplementedDHTServer) Ping(context.Context, *Empty) (*Empty, error) {
	return nil, errUnimplemented("Ping")
}
func (UnimplementedDHTServer) Store(context.Context, *StoreRequest) (*Empty, error) {
	return nil, errUnimplemented("Store")
}
func (UnimplementedDHTServer) Retrieve(context.Context, *RetrieveRequest) (*RetrieveResponse, error) {
	return nil, errUnimplemented("Retrieve")
}
func (UnimplementedDHTServer) Remove(context.Context, *RemoveRequest) (*Empty, error) {
	return nil, errUnimplemented("Remove")
}
func (UnimplementedDHTServer) Transfer(context.Context, *TransferRequest) (*TransferResponse, error) {
	return nil, errUnimplemented("Transfer")
}
func (UnimplementedDHTServer) Replicate(context.Context, *ReplicateRequest) (*Empty, error) {
	return nil, errUnimplemented("Replicate")
}

// RegisterDHTServer registers srv's handlers on an in-construction
// grpc.Server, the same call shape protoc-gen-go-grpc emits.
func RegisterDHTServer(s grpc.ServiceRegistrar, srv DHTServer) {
	s.RegisterService(&serviceDesc, srv)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*DHTServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "FindSuccessor", Handler: findSuccessorHandler},
		{MethodName: "GetPredecessor", Handler: getPredecessorHandler},
		{MethodName: "GetSuccessor", Handler: getSuccessorHandler},
		{MethodName: "GetSuccessorList", Handler: getSuccessorListHandler},
		{MethodName: "Notify", Handler: notifyHandler},
		{MethodName: "Ping", Handler: pingHandler},
		{MethodName: "Store", Handler: storeHandler},
		{MethodName: "Retrieve", Handler: retrieveHandler},
		{MethodName: "Remove", Handler: removeHandler},
		{MethodName: "Transfer", Handler: transferHandler},
		{MethodName: "Replicate", Handler: replicateHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "dht/v1/dht.proto",
}

func findSuccessorHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(FindSuccessorRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DHTServer).FindSuccessor(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/FindSuccessor"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DHTServer).FindSuccessor(ctx, req.(*FindSuccessorRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func getPredecessorHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DHTServer).GetPredecessor(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/GetPredecessor"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DHTServer).GetPredecessor(ctx, req.(*Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func getSuccessorHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DHTServer).GetSuccessor(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/GetSuccessor"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DHTServer).GetSuccessor(ctx, req.(*Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func getSuccessorListHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DHTServer).GetSuccessorList(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/GetSuccessorList"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DHTServer).GetSuccessorList(ctx, req.(*Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func notifyHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(Node)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DHTServer).Notify(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/Notify"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DHTServer).Notify(ctx, req.(*Node))
	}
	return interceptor(ctx, in, info, handler)
}

func pingHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DHTServer).Ping(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/Ping"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DHTServer).Ping(ctx, req.(*Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func storeHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(StoreRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DHTServer).Store(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/Store"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DHTServer).Store(ctx, req.(*StoreRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func retrieveHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(RetrieveRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DHTServer).Retrieve(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/Retrieve"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DHTServer).Retrieve(ctx, req.(*RetrieveRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func removeHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(RemoveRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DHTServer).Remove(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/Remove"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DHTServer).Remove(ctx, req.(*RemoveRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func transferHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(TransferRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DHTServer).Transfer(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/Transfer"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DHTServer).Transfer(ctx, req.(*TransferRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func replicateHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ReplicateRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DHTServer).Replicate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/Replicate"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DHTServer).Replicate(ctx, req.(*ReplicateRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func errUnimplemented(method string) error {
	return &unimplementedError{method: method}
}

type unimplementedError struct{ method string }

func (e *unimplementedError) Error() string {
	return "dhtv1: method " + e.method + " not implemented"
}
