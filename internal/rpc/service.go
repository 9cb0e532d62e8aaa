package rpc

import (
	"context"

	"google.golang.org/grpc"
)

const ServiceName = "itemkeeper.session.SessionService"

const (
	SessionService_Login_FullMethodName   = "/" + ServiceName + "/Login"
	SessionService_Refresh_FullMethodName = "/" + ServiceName + "/Refresh"
	SessionService_Logout_FullMethodName  = "/" + ServiceName + "/Logout"
	SessionService_Me_FullMethodName      = "/" + ServiceName + "/Me"
)

// SessionServiceServer is implemented by the server side of the session service.
type SessionServiceServer interface {
	Login(context.Context, *LoginRequest) (*LoginResponse, error)
	Refresh(context.Context, *RefreshRequest) (*RefreshResponse, error)
	Logout(context.Context, *LogoutRequest) (*LogoutResponse, error)
	Me(context.Context, *MeRequest) (*MeResponse, error)
}

func RegisterSessionServiceServer(s grpc.ServiceRegistrar, srv SessionServiceServer) {
	s.RegisterService(&SessionService_ServiceDesc, srv)
}

// unaryHandler adapts a typed method to grpc.MethodHandler, running the
// interceptor chain when one is installed.
func unaryHandler[Req, Resp any](fullMethod string, call func(SessionServiceServer, context.Context, *Req) (*Resp, error)) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(SessionServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(SessionServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var SessionService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SessionServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Login",
			Handler:    unaryHandler(SessionService_Login_FullMethodName, SessionServiceServer.Login),
		},
		{
			MethodName: "Refresh",
			Handler:    unaryHandler(SessionService_Refresh_FullMethodName, SessionServiceServer.Refresh),
		},
		{
			MethodName: "Logout",
			Handler:    unaryHandler(SessionService_Logout_FullMethodName, SessionServiceServer.Logout),
		},
		{
			MethodName: "Me",
			Handler:    unaryHandler(SessionService_Me_FullMethodName, SessionServiceServer.Me),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "itemkeeper/session",
}

// SessionServiceClient is the client API for the session service.
type SessionServiceClient interface {
	Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error)
	Refresh(ctx context.Context, in *RefreshRequest, opts ...grpc.CallOption) (*RefreshResponse, error)
	Logout(ctx context.Context, in *LogoutRequest, opts ...grpc.CallOption) (*LogoutResponse, error)
	Me(ctx context.Context, in *MeRequest, opts ...grpc.CallOption) (*MeResponse, error)
}

type sessionServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewSessionServiceClient(cc grpc.ClientConnInterface) SessionServiceClient {
	return &sessionServiceClient{cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(ContentSubtype)}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *sessionServiceClient) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error) {
	return invoke[LoginResponse](ctx, c.cc, SessionService_Login_FullMethodName, in, opts)
}

func (c *sessionServiceClient) Refresh(ctx context.Context, in *RefreshRequest, opts ...grpc.CallOption) (*RefreshResponse, error) {
	return invoke[RefreshResponse](ctx, c.cc, SessionService_Refresh_FullMethodName, in, opts)
}

func (c *sessionServiceClient) Logout(ctx context.Context, in *LogoutRequest, opts ...grpc.CallOption) (*LogoutResponse, error) {
	return invoke[LogoutResponse](ctx, c.cc, SessionService_Logout_FullMethodName, in, opts)
}

func (c *sessionServiceClient) Me(ctx context.Context, in *MeRequest, opts ...grpc.CallOption) (*MeResponse, error) {
	return invoke[MeResponse](ctx, c.cc, SessionService_Me_FullMethodName, in, opts)
}
