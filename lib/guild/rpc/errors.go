package rpc

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"gfx.cafe/gfx/guild/lib/guild/matcher"
	"gfx.cafe/gfx/guild/lib/guild/registry"
	"gfx.cafe/gfx/guild/lib/guild/resources"
)

func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	var code codes.Code
	switch {
	case errors.Is(err, registry.ErrDuplicateIdentifier):
		code = codes.AlreadyExists
	case errors.Is(err, registry.ErrNotFound):
		code = codes.NotFound
	case errors.Is(err, registry.ErrInvalidState):
		code = codes.FailedPrecondition
	case errors.Is(err, registry.ErrInvalidIdentifier), errors.Is(err, resources.ErrInvalidValue):
		code = codes.InvalidArgument
	case errors.Is(err, matcher.ErrClosed):
		code = codes.Unavailable
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return status.FromContextError(err).Err()
	default:
		code = codes.Internal
	}
	return status.Error(code, err.Error())
}
