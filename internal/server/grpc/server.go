// Package grpc exposes CredentialService over gRPC. Messages are protobuf
// well-known types (structpb.Struct, emptypb.Empty) carried by the default
// proto codec, so no generated code is needed.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/tasklist/internal/logging"
	"github.com/dmitrijs2005/tasklist/internal/server/auth"
	"github.com/dmitrijs2005/tasklist/internal/server/metrics"
	"github.com/dmitrijs2005/tasklist/internal/server/models"
	"github.com/dmitrijs2005/tasklist/internal/server/services"
	"google.golang.org/grpc"
)

// IdentityService is the part of services.CredentialService the transport needs.
type IdentityService interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.PublicIdentity, error)
	Login(ctx context.Context, in services.LoginInput) (*auth.SessionToken, error)
	VerifySessionToken(ctx context.Context, token string) (*models.PublicIdentity, error)
	ChangePassword(ctx context.Context, id, newPassword string) error
	UpdateProfile(ctx context.Context, id string, in services.UpdateProfileInput) (*models.PublicIdentity, error)
	DeleteIdentity(ctx context.Context, id string) error
	GetIdentity(ctx context.Context, id string) (*models.PublicIdentity, error)
	ListIdentities(ctx context.Context) ([]*models.PublicIdentity, error)
}

type GRPCServer struct {
	address    string
	identities IdentityService
	metrics    *metrics.Metrics
	logger     logging.Logger
}

func NewGRPCServer(a string, l logging.Logger, svc IdentityService, m *metrics.Metrics) *GRPCServer {
	return &GRPCServer{
		address:    a,
		logger:     l.With("module", "grpc_server"),
		identities: svc,
		metrics:    m,
	}
}

// newServer builds a grpc.Server with the interceptor chain and the
// identity service registered.
func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.metricsInterceptor, s.accessTokenInterceptor))
	srv.RegisterService(&identityServiceDesc, s)
	return srv
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is cancelled, then stops
// gracefully.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.newServer()

	stopped := make(chan struct{})
	defer close(stopped)

	go func() {
		select {
		case <-ctx.Done():
			s.logger.Info(ctx, "Stopping gRPC server...")
			srv.GracefulStop()
		case <-stopped:
		}
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	return srv.Serve(lis)
}
