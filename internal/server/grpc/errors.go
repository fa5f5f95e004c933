package grpc

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/darktrack/internal/common"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/durationpb"
)

var now = time.Now

// toStatus maps service errors to gRPC statuses. Anything unexpected
// becomes an opaque Internal error; the cause is only logged.
func (s *GRPCServer) toStatus(ctx context.Context, method string, err error) error {
	var verr *common.ValidationError
	var rl *common.RateLimitError

	switch {
	case errors.As(err, &verr):
		st, derr := status.New(codes.InvalidArgument, verr.Message).WithDetails(&errdetails.BadRequest{
			FieldViolations: []*errdetails.BadRequest_FieldViolation{{Field: verr.Field, Description: verr.Message}},
		})
		if derr != nil {
			return status.Error(codes.InvalidArgument, verr.Message)
		}
		return st.Err()

	case errors.As(err, &rl):
		return rateLimitStatus(rl).Err()

	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, "not found")
	}

	s.logger.Error(ctx, "request failed", "method", method, "error", err)
	return status.Error(codes.Internal, "internal error")
}

func rateLimitStatus(rl *common.RateLimitError) *status.Status {
	st := status.New(codes.ResourceExhausted, rl.Error())
	detailed, err := st.WithDetails(
		&errdetails.RetryInfo{RetryDelay: durationpb.New(rl.RetryAfter(now()))},
		&errdetails.ErrorInfo{
			Reason: common.RateLimitReason,
			Domain: common.ErrorInfoDomain,
			Metadata: map[string]string{
				common.MetaNextAvailableAt:      rl.NextAvailableISO(),
				common.MetaNextAvailableDisplay: rl.NextAvailableDisplay(),
			},
		},
	)
	if err != nil {
		return st
	}
	return detailed
}
