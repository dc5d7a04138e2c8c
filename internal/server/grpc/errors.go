package grpc

import (
	"errors"

	"github.com/dmitrijs2005/tasklist/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// toStatus maps service errors onto gRPC statuses. Messages are fixed
// strings except for input errors, which carry only the field and rule.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	switch {
	case errors.Is(err, common.ErrInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrRegistrationConflict), errors.Is(err, common.ErrDuplicateIdentity):
		return status.Error(codes.AlreadyExists, common.ErrRegistrationConflict.Error())
	case errors.Is(err, common.ErrInvalidCredentials):
		return status.Error(codes.Unauthenticated, common.ErrInvalidCredentials.Error())
	case errors.Is(err, common.ErrTokenExpired):
		return status.Error(codes.Unauthenticated, common.ErrTokenExpired.Error())
	case errors.Is(err, common.ErrTokenInvalid):
		return status.Error(codes.Unauthenticated, common.ErrTokenInvalid.Error())
	case errors.Is(err, common.ErrIdentityNotFound):
		return status.Error(codes.NotFound, common.ErrIdentityNotFound.Error())
	case errors.Is(err, common.ErrStoreUnavailable):
		return status.Error(codes.Unavailable, common.ErrStoreUnavailable.Error())
	default:
		return status.Error(codes.Internal, common.ErrorInternal.Error())
	}
}
