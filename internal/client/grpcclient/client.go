// Package grpcclient talks to the session service over gRPC. Protected calls
// carry the access token as bearer metadata and are retried once after a
// refresh when the server answers Unauthenticated.
package grpcclient

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/itemkeeper/internal/client/models"
	"github.com/dmitrijs2005/itemkeeper/internal/client/session"
	"github.com/dmitrijs2005/itemkeeper/internal/common"
	"github.com/dmitrijs2005/itemkeeper/internal/rpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")
)

// selfAuthenticated methods carry their own credentials and skip the
// access token interceptor.
var selfAuthenticated = map[string]bool{
	rpc.SessionService_Login_FullMethodName:   true,
	rpc.SessionService_Refresh_FullMethodName: true,
	rpc.SessionService_Logout_FullMethodName:  true,
}

type GRPCClient struct {
	conn   *grpc.ClientConn
	client rpc.SessionServiceClient
	store  *session.Store

	mu           sync.Mutex
	refreshToken string
}

// New dials target. Extra options are appended after the defaults, so tests
// can supply a bufconn dialer.
func New(target string, store *session.Store, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{store: store}

	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.accessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(target, dialOpts...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	c.client = rpc.NewSessionServiceClient(conn)
	return c, nil
}

func (c *GRPCClient) Close() error {
	return c.conn.Close()
}

func withBearer(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AuthorizationMetadataKey, common.BearerPrefix+token)
	return metadata.NewOutgoingContext(ctx, md)
}

func (c *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if selfAuthenticated[method] {
		return invoker(ctx, method, req, reply, cc, opts...)
	}

	err := invoker(withBearer(ctx, c.store.AccessToken()), method, req, reply, cc, opts...)
	if status.Code(err) != codes.Unauthenticated {
		return err
	}

	c.store.BeginRefresh()
	token, rerr := c.Refresh(ctx)
	if rerr != nil || token == "" {
		c.store.Clear()
		return err
	}
	c.store.SetAccessToken(token)

	return invoker(withBearer(ctx, token), method, req, reply, cc, opts...)
}

func (c *GRPCClient) currentRefreshToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refreshToken
}

func (c *GRPCClient) setRefreshToken(t string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.refreshToken = t
}

func (c *GRPCClient) Login(ctx context.Context, email, password string) error {
	resp, err := c.client.Login(ctx, &rpc.LoginRequest{Email: email, Password: password})
	if err != nil {
		return mapError(err)
	}
	c.store.SetAccessToken(resp.AccessToken)
	c.setRefreshToken(resp.RefreshToken)
	return nil
}

// Refresh returns a new access token without touching the store.
func (c *GRPCClient) Refresh(ctx context.Context) (string, error) {
	rt := c.currentRefreshToken()
	if rt == "" {
		return "", ErrBadRequest
	}
	resp, err := c.client.Refresh(withBearer(ctx, rt), &rpc.RefreshRequest{})
	if err != nil {
		return "", mapError(err)
	}
	return resp.AccessToken, nil
}

// Logout revokes the refresh token and clears local state either way.
func (c *GRPCClient) Logout(ctx context.Context) error {
	rt := c.currentRefreshToken()
	defer func() {
		c.store.Clear()
		c.setRefreshToken("")
	}()
	if rt == "" {
		return nil
	}
	if _, err := c.client.Logout(withBearer(ctx, rt), &rpc.LogoutRequest{}); err != nil {
		return mapError(err)
	}
	return nil
}

func (c *GRPCClient) Me(ctx context.Context) (*models.User, error) {
	resp, err := c.client.Me(ctx, &rpc.MeRequest{})
	if err != nil {
		return nil, mapError(err)
	}
	return &models.User{ID: resp.ID, UserName: resp.UserName, Email: resp.Email}, nil
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated:
		return fmt.Errorf("%w: %s", ErrUnauthorized, st.Message())
	case codes.PermissionDenied:
		return fmt.Errorf("%w: %s", ErrForbidden, st.Message())
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", ErrBadRequest, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
