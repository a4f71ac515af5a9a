package grpc

import (
	"context"
	"errors"
	"user_admin/internal/auth"
	"user_admin/internal/domain"
	"user_admin/internal/middleware"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type principalCtxKey struct{}

// AuthInterceptor verifies the "authorization" metadata and stores the principal in the context.
func AuthInterceptor(verifier middleware.PrincipalVerifier, log *logrus.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		md, _ := metadata.FromIncomingContext(ctx)
		values := md.Get("authorization")
		if len(values) == 0 || values[0] == "" {
			log.Warnf("gRPC Interceptor: Missing authorization metadata for %s", info.FullMethod)
			return nil, status.Error(codes.Unauthenticated, "authorization metadata required")
		}

		principal, err := verifier.PrincipalFromHeader(values[0])
		if err != nil {
			log.Warnf("gRPC Interceptor: Rejected token for %s: %v", info.FullMethod, err)
			if errors.Is(err, auth.ErrExpiredToken) {
				return nil, status.Error(codes.Unauthenticated, "token expired")
			}
			return nil, status.Error(codes.Unauthenticated, "invalid token")
		}

		return handler(context.WithValue(ctx, principalCtxKey{}, principal), req)
	}
}

func principalFromContext(ctx context.Context) domain.Principal {
	if p, ok := ctx.Value(principalCtxKey{}).(domain.Principal); ok {
		return p
	}
	return domain.Principal{}
}
