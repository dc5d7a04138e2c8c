package grpc

import (
	"context"

	"github.com/dmitrijs2005/tasklist/internal/server/services"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

func (s *GRPCServer) Register(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in services.RegisterInput
	var err error
	if in.Email, err = stringField(req, fieldEmail); err != nil {
		return nil, err
	}
	if in.Password, err = stringField(req, fieldPassword); err != nil {
		return nil, err
	}
	if in.DisplayName, err = stringField(req, fieldDisplayName); err != nil {
		return nil, err
	}

	identity, err := s.identities.Register(ctx, in)
	if err != nil {
		return nil, toStatus(err)
	}

	s.logger.Info(ctx, "Registered", "id", identity.ID)
	return identityToStruct(identity), nil
}

func (s *GRPCServer) Login(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in services.LoginInput
	var err error
	if in.Email, err = stringField(req, fieldEmail); err != nil {
		return nil, err
	}
	if in.Password, err = stringField(req, fieldPassword); err != nil {
		return nil, err
	}

	token, err := s.identities.Login(ctx, in)
	if err != nil {
		return nil, toStatus(err)
	}

	return tokenToStruct(token), nil
}

func (s *GRPCServer) WhoAmI(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	caller, err := callerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return identityToStruct(caller), nil
}

func (s *GRPCServer) ChangePassword(ctx context.Context, req *structpb.Struct) (*emptypb.Empty, error) {
	caller, err := callerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	password, err := stringField(req, fieldPassword)
	if err != nil {
		return nil, err
	}

	if err := s.identities.ChangePassword(ctx, caller.ID, password); err != nil {
		return nil, toStatus(err)
	}
	return &emptypb.Empty{}, nil
}

func (s *GRPCServer) UpdateProfile(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	caller, err := callerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var in services.UpdateProfileInput
	if in.DisplayName, err = optionalString(req, fieldDisplayName); err != nil {
		return nil, err
	}
	if in.Password, err = optionalString(req, fieldPassword); err != nil {
		return nil, err
	}

	identity, err := s.identities.UpdateProfile(ctx, caller.ID, in)
	if err != nil {
		return nil, toStatus(err)
	}
	return identityToStruct(identity), nil
}

func (s *GRPCServer) DeleteIdentity(ctx context.Context, _ *emptypb.Empty) (*emptypb.Empty, error) {
	caller, err := callerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.identities.DeleteIdentity(ctx, caller.ID); err != nil {
		return nil, toStatus(err)
	}

	s.logger.Info(ctx, "Deleted", "id", caller.ID)
	return &emptypb.Empty{}, nil
}

func (s *GRPCServer) GetIdentity(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := stringField(req, fieldID)
	if err != nil {
		return nil, err
	}

	identity, err := s.identities.GetIdentity(ctx, id)
	if err != nil {
		return nil, toStatus(err)
	}
	return identityToStruct(identity), nil
}

func (s *GRPCServer) ListIdentities(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	list, err := s.identities.ListIdentities(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return identitiesToStruct(list), nil
}

func (s *GRPCServer) Ping(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		fieldStatus: structpb.NewStringValue("OK"),
	}}, nil
}
