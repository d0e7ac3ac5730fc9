package service

import (
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/kndndrj/datasink/core"
)

// ToStatus converts a classified error to its transport status. Errors
// that already carry a status pass through unchanged.
func ToStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	var code codes.Code
	switch core.KindOf(err) {
	case core.ErrorAlreadyExists:
		code = codes.AlreadyExists
	case core.ErrorNotFound:
		code = codes.NotFound
	case core.ErrorInvalidArgument:
		code = codes.InvalidArgument
	case core.ErrorUnavailable:
		code = codes.Unavailable
	default:
		code = codes.Internal
	}

	return status.Error(code, err.Error())
}

// FromStatus converts a transport status back into a classified error,
// the inverse of ToStatus. Non-status errors pass through unchanged.
func FromStatus(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}

	var kind core.ErrorKind
	switch st.Code() {
	case codes.AlreadyExists:
		kind = core.ErrorAlreadyExists
	case codes.NotFound:
		kind = core.ErrorNotFound
	case codes.InvalidArgument:
		kind = core.ErrorInvalidArgument
	case codes.Unavailable:
		kind = core.ErrorUnavailable
	default:
		kind = core.ErrorInternal
	}

	return core.NewError(kind, st.Message())
}
