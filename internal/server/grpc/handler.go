package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/itemkeeper/internal/common"
	"github.com/dmitrijs2005/itemkeeper/internal/rpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func (s *GRPCServer) Login(ctx context.Context, req *rpc.LoginRequest) (*rpc.LoginResponse, error) {
	pair, err := s.sessions.Login(ctx, req.Email, req.Password)
	if err != nil {
		return nil, s.statusError(ctx, "login", err)
	}

	return &rpc.LoginResponse{
		AccessToken:           pair.AccessToken,
		RefreshToken:          pair.RefreshToken,
		RefreshTokenExpiresAt: pair.RefreshTokenExpiresAt,
	}, nil
}

func (s *GRPCServer) Refresh(ctx context.Context, _ *rpc.RefreshRequest) (*rpc.RefreshResponse, error) {
	access, err := s.sessions.Refresh(ctx, bearerFromMetadata(ctx))
	if err != nil {
		return nil, s.statusError(ctx, "token refresh", err)
	}
	return &rpc.RefreshResponse{AccessToken: access}, nil
}

func (s *GRPCServer) Logout(ctx context.Context, _ *rpc.LogoutRequest) (*rpc.LogoutResponse, error) {
	if err := s.sessions.Logout(ctx, bearerFromMetadata(ctx)); err != nil {
		return nil, s.statusError(ctx, "logout", err)
	}
	return &rpc.LogoutResponse{Message: "Logged out successfully"}, nil
}

func (s *GRPCServer) Me(ctx context.Context, _ *rpc.MeRequest) (*rpc.MeResponse, error) {
	user, ok := userFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "unauthorized")
	}
	return &rpc.MeResponse{ID: user.ID, UserName: user.UserName, Email: user.Email}, nil
}

// statusError maps service errors onto gRPC codes. Unknown errors are logged
// and reported as Internal without detail.
func (s *GRPCServer) statusError(ctx context.Context, op string, err error) error {
	switch {
	case errors.Is(err, common.ErrorValidation):
		return status.Error(codes.InvalidArgument, "email and password are required")
	case errors.Is(err, common.ErrorInvalidCredentials):
		return status.Error(codes.Unauthenticated, "invalid email or password")
	case errors.Is(err, common.ErrMissingToken):
		return status.Error(codes.InvalidArgument, "refresh token is required")
	case errors.Is(err, common.ErrInvalidToken), errors.Is(err, common.ErrRefreshTokenExpired):
		return status.Error(codes.PermissionDenied, "invalid refresh token")
	default:
		s.logger.Error(ctx, "request failed", "op", op, "error", err)
		return status.Error(codes.Internal, "internal error")
	}
}
