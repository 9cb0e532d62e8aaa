package grpc

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/itemkeeper/internal/common"
	"github.com/dmitrijs2005/itemkeeper/internal/logging"
	"github.com/dmitrijs2005/itemkeeper/internal/rpc"
	"github.com/dmitrijs2005/itemkeeper/internal/server/models"
	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const userKey ctxKey = "user"

func userFromContext(ctx context.Context) (*models.PublicUser, bool) {
	u, ok := ctx.Value(userKey).(*models.PublicUser)
	return u, ok
}

// protectedMethods need a valid access token.
var protectedMethods = map[string]bool{
	rpc.SessionService_Me_FullMethodName: true,
}

func bearerFromMetadata(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	values := md.Get(common.AuthorizationMetadataKey)
	if len(values) == 0 {
		return ""
	}
	return common.BearerToken(values[0])
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	if !protectedMethods[info.FullMethod] {
		return handler(ctx, req)
	}

	accessToken := bearerFromMetadata(ctx)
	if accessToken == "" {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	user, err := s.sessions.Authenticate(ctx, accessToken)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorNotFound):
			return nil, status.Error(codes.Unauthenticated, "user not found")
		case errors.Is(err, common.ErrInvalidToken), errors.Is(err, common.ErrTokenExpired):
			return nil, status.Error(codes.Unauthenticated, "invalid token")
		default:
			s.logger.Error(ctx, "authentication failed", "error", err)
			return nil, status.Error(codes.Internal, "internal error")
		}
	}

	return handler(context.WithValue(ctx, userKey, user), req)
}

const requestIDMetadata = "x-request-id"

func requestIDFromMetadata(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if v := md.Get(requestIDMetadata); len(v) > 0 && len(v[0]) <= 128 {
		return v[0]
	}
	return ""
}

func (s *GRPCServer) loggingInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	id := requestIDFromMetadata(ctx)
	if id == "" {
		id = uuid.NewString()
	}
	ctx = logging.WithRequestID(ctx, id)

	start := time.Now()
	resp, err := handler(ctx, req)
	s.logger.Info(ctx, "rpc",
		"method", info.FullMethod,
		"code", status.Code(err).String(),
		"duration", time.Since(start),
	)
	return resp, err
}
