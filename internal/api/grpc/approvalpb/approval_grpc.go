// Package approvalpb declares the greenhouse.admin.v1.Approvals gRPC service.
// Messages are protobuf well-known types, so no generated message code is
// needed.
package approvalpb

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const ServiceName = "greenhouse.admin.v1.Approvals"

const (
	Approvals_Approve_FullMethodName            = "/" + ServiceName + "/Approve"
	Approvals_Decline_FullMethodName            = "/" + ServiceName + "/Decline"
	Approvals_RetryProvisioning_FullMethodName  = "/" + ServiceName + "/RetryProvisioning"
	Approvals_EditClient_FullMethodName         = "/" + ServiceName + "/EditClient"
	Approvals_DecommissionClient_FullMethodName = "/" + ServiceName + "/DecommissionClient"
	Approvals_ListRequests_FullMethodName       = "/" + ServiceName + "/ListRequests"
	Approvals_ListClients_FullMethodName        = "/" + ServiceName + "/ListClients"
)

// ApprovalsClient is the client API for the Approvals service.
type ApprovalsClient interface {
	Approve(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error)
	Decline(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*emptypb.Empty, error)
	RetryProvisioning(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error)
	EditClient(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*emptypb.Empty, error)
	DecommissionClient(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*emptypb.Empty, error)
	ListRequests(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	ListClients(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type approvalsClient struct {
	cc grpc.ClientConnInterface
}

func NewApprovalsClient(cc grpc.ClientConnInterface) ApprovalsClient {
	return &approvalsClient{cc}
}

func (c *approvalsClient) Approve(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, Approvals_Approve_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *approvalsClient) Decline(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, Approvals_Decline_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *approvalsClient) RetryProvisioning(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, Approvals_RetryProvisioning_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *approvalsClient) EditClient(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, Approvals_EditClient_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *approvalsClient) DecommissionClient(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, Approvals_DecommissionClient_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *approvalsClient) ListRequests(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, Approvals_ListRequests_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *approvalsClient) ListClients(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, Approvals_ListClients_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// ApprovalsServer is the server API for the Approvals service. Implementations
// must embed UnimplementedApprovalsServer.
type ApprovalsServer interface {
	Approve(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	Decline(context.Context, *wrapperspb.StringValue) (*emptypb.Empty, error)
	RetryProvisioning(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	EditClient(context.Context, *structpb.Struct) (*emptypb.Empty, error)
	DecommissionClient(context.Context, *wrapperspb.StringValue) (*emptypb.Empty, error)
	ListRequests(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListClients(context.Context, *structpb.Struct) (*structpb.Struct, error)
	mustEmbedUnimplementedApprovalsServer()
}

// UnimplementedApprovalsServer returns Unimplemented for every method.
type UnimplementedApprovalsServer struct{}

func (UnimplementedApprovalsServer) Approve(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Approve not implemented")
}
func (UnimplementedApprovalsServer) Decline(context.Context, *wrapperspb.StringValue) (*emptypb.Empty, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Decline not implemented")
}
func (UnimplementedApprovalsServer) RetryProvisioning(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method RetryProvisioning not implemented")
}
func (UnimplementedApprovalsServer) EditClient(context.Context, *structpb.Struct) (*emptypb.Empty, error) {
	return nil, status.Errorf(codes.Unimplemented, "method EditClient not implemented")
}
func (UnimplementedApprovalsServer) DecommissionClient(context.Context, *wrapperspb.StringValue) (*emptypb.Empty, error) {
	return nil, status.Errorf(codes.Unimplemented, "method DecommissionClient not implemented")
}
func (UnimplementedApprovalsServer) ListRequests(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ListRequests not implemented")
}
func (UnimplementedApprovalsServer) ListClients(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ListClients not implemented")
}
func (UnimplementedApprovalsServer) mustEmbedUnimplementedApprovalsServer() {}

func RegisterApprovalsServer(s grpc.ServiceRegistrar, srv ApprovalsServer) {
	s.RegisterService(&Approvals_ServiceDesc, srv)
}

// unary adapts a typed server method to a grpc.MethodHandler.
func unary[Req any, Resp any](fullMethod string, call func(ApprovalsServer, context.Context, *Req) (Resp, error)) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(ApprovalsServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(ApprovalsServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// Approvals_ServiceDesc is the grpc.ServiceDesc for the Approvals service.
var Approvals_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ApprovalsServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Approve", Handler: unary(Approvals_Approve_FullMethodName, ApprovalsServer.Approve)},
		{MethodName: "Decline", Handler: unary(Approvals_Decline_FullMethodName, ApprovalsServer.Decline)},
		{MethodName: "RetryProvisioning", Handler: unary(Approvals_RetryProvisioning_FullMethodName, ApprovalsServer.RetryProvisioning)},
		{MethodName: "EditClient", Handler: unary(Approvals_EditClient_FullMethodName, ApprovalsServer.EditClient)},
		{MethodName: "DecommissionClient", Handler: unary(Approvals_DecommissionClient_FullMethodName, ApprovalsServer.DecommissionClient)},
		{MethodName: "ListRequests", Handler: unary(Approvals_ListRequests_FullMethodName, ApprovalsServer.ListRequests)},
		{MethodName: "ListClients", Handler: unary(Approvals_ListClients_FullMethodName, ApprovalsServer.ListClients)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "greenhouse/admin/v1/approvals.proto",
}
