package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const ServiceName = "usermgmt.UserAdmin"

// UserAdminServer is the gRPC surface of the user administration service.
// Requests and responses use protobuf well-known types, so no generated stubs are needed.
type UserAdminServer interface {
	AddUser(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	EditUser(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.Struct, error)
	UpdateUser(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ListUsers(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error)
	DeleteUser(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.Struct, error)
}

func RegisterUserAdminServer(s grpc.ServiceRegistrar, srv UserAdminServer) {
	s.RegisterService(&UserAdminServiceDesc, srv)
}

var UserAdminServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*UserAdminServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "AddUser",
			Handler: unary("AddUser", newStruct, func(s UserAdminServer, ctx context.Context, req proto.Message) (proto.Message, error) {
				return s.AddUser(ctx, req.(*structpb.Struct))
			}),
		},
		{
			MethodName: "EditUser",
			Handler: unary("EditUser", newInt64, func(s UserAdminServer, ctx context.Context, req proto.Message) (proto.Message, error) {
				return s.EditUser(ctx, req.(*wrapperspb.Int64Value))
			}),
		},
		{
			MethodName: "UpdateUser",
			Handler: unary("UpdateUser", newStruct, func(s UserAdminServer, ctx context.Context, req proto.Message) (proto.Message, error) {
				return s.UpdateUser(ctx, req.(*structpb.Struct))
			}),
		},
		{
			MethodName: "ListUsers",
			Handler: unary("ListUsers", newEmpty, func(s UserAdminServer, ctx context.Context, req proto.Message) (proto.Message, error) {
				return s.ListUsers(ctx, req.(*emptypb.Empty))
			}),
		},
		{
			MethodName: "DeleteUser",
			Handler: unary("DeleteUser", newInt64, func(s UserAdminServer, ctx context.Context, req proto.Message) (proto.Message, error) {
				return s.DeleteUser(ctx, req.(*wrapperspb.Int64Value))
			}),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "usermgmt/user_admin.proto",
}

func newStruct() proto.Message { return new(structpb.Struct) }
func newInt64() proto.Message  { return new(wrapperspb.Int64Value) }
func newEmpty() proto.Message  { return new(emptypb.Empty) }

func fullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

type callFunc func(s UserAdminServer, ctx context.Context, req proto.Message) (proto.Message, error)

func unary(method string, newReq func() proto.Message, call callFunc) grpc.MethodHandler {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := newReq()
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(UserAdminServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod(method),
		}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(UserAdminServer), ctx, req.(proto.Message))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// UserAdminClient calls a remote UserAdmin service.
type UserAdminClient struct {
	cc grpc.ClientConnInterface
}

func NewUserAdminClient(cc grpc.ClientConnInterface) *UserAdminClient {
	return &UserAdminClient{cc: cc}
}

func (c *UserAdminClient) AddUser(ctx context.Context, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, fullMethod("AddUser"), req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *UserAdminClient) EditUser(ctx context.Context, req *wrapperspb.Int64Value, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, fullMethod("EditUser"), req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *UserAdminClient) UpdateUser(ctx context.Context, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, fullMethod("UpdateUser"), req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *UserAdminClient) ListUsers(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, fullMethod("ListUsers"), &emptypb.Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *UserAdminClient) DeleteUser(ctx context.Context, req *wrapperspb.Int64Value, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, fullMethod("DeleteUser"), req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
