package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "tasklist.identity.v1.IdentityService"

// IdentityServiceServer lists the RPC handlers registered by identityServiceDesc.
type IdentityServiceServer interface {
	Register(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Login(context.Context, *structpb.Struct) (*structpb.Struct, error)
	WhoAmI(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	ChangePassword(context.Context, *structpb.Struct) (*emptypb.Empty, error)
	UpdateProfile(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteIdentity(context.Context, *emptypb.Empty) (*emptypb.Empty, error)
	GetIdentity(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListIdentities(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	Ping(context.Context, *emptypb.Empty) (*structpb.Struct, error)
}

var identityServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*IdentityServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Register", IdentityServiceServer.Register),
		unary("Login", IdentityServiceServer.Login),
		unary("WhoAmI", IdentityServiceServer.WhoAmI),
		unary("ChangePassword", IdentityServiceServer.ChangePassword),
		unary("UpdateProfile", IdentityServiceServer.UpdateProfile),
		unary("DeleteIdentity", IdentityServiceServer.DeleteIdentity),
		unary("GetIdentity", IdentityServiceServer.GetIdentity),
		unary("ListIdentities", IdentityServiceServer.ListIdentities),
		unary("Ping", IdentityServiceServer.Ping),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "tasklist/identity/v1/identity.proto",
}

// FullMethod returns the gRPC method path, e.g. "/tasklist.identity.v1.IdentityService/Login".
func FullMethod(name string) string {
	return "/" + ServiceName + "/" + name
}

// unary adapts a typed handler to grpc.MethodDesc, the same shape protoc
// generates for each method.
func unary[Req any, Resp proto.Message, PReq interface {
	*Req
	proto.Message
}](name string, h func(IdentityServiceServer, context.Context, PReq) (Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := PReq(new(Req))
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return h(srv.(IdentityServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(name)}
			handler := func(ctx context.Context, req any) (any, error) {
				return h(srv.(IdentityServiceServer), ctx, req.(PReq))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}
