package grpc

import (
	"context"
	"strings"
	"time"

	"github.com/dmitrijs2005/tasklist/internal/common"
	"github.com/dmitrijs2005/tasklist/internal/server/models"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const identityKey ctxKey = "identity"

// publicMethods are reachable without a session token.
var publicMethods = map[string]bool{
	FullMethod("Register"): true,
	FullMethod("Login"):    true,
	FullMethod("Ping"):     true,
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if publicMethods[info.FullMethod] {
		return handler(ctx, req)
	}

	accessToken := tokenFromMetadata(ctx)
	if len(accessToken) == 0 {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	identity, err := s.identities.VerifySessionToken(ctx, accessToken)
	if err != nil {
		return nil, toStatus(err)
	}

	ctx = context.WithValue(ctx, identityKey, identity)

	return handler(ctx, req)
}

func (s *GRPCServer) metricsInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	code := status.Code(err)

	s.metrics.ObserveRPC(info.FullMethod, code.String(), time.Since(start))
	if code == codes.Internal || code == codes.Unknown {
		s.logger.Error(ctx, "rpc failed", "method", info.FullMethod, "code", code.String())
	} else {
		s.logger.Debug(ctx, "rpc", "method", info.FullMethod, "code", code.String())
	}

	return resp, err
}

// tokenFromMetadata reads access_token, falling back to "authorization: Bearer <token>".
func tokenFromMetadata(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if values := md.Get(common.AccessTokenHeaderName); len(values) > 0 && values[0] != "" {
		return values[0]
	}
	for _, v := range md.Get(common.AuthorizationHeaderName) {
		scheme, token, found := strings.Cut(v, " ")
		if found && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}
	return ""
}

// callerFromContext returns the identity stored by accessTokenInterceptor.
func callerFromContext(ctx context.Context) (*models.PublicIdentity, error) {
	identity, ok := ctx.Value(identityKey).(*models.PublicIdentity)
	if !ok || identity == nil {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}
	return identity, nil
}
