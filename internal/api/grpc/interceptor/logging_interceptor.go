package interceptor

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"rentflow/internal/logger"
)

// LoggingInterceptor logs every unary call and turns handler panics into
// codes.Internal.
type LoggingInterceptor struct {
	now func() time.Time
}

func NewLoggingInterceptor() *LoggingInterceptor {
	return &LoggingInterceptor{now: time.Now}
}

// Unary returns a server interceptor function that logs unary RPCs
func (i *LoggingInterceptor) Unary() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp interface{}, err error) {
		start := i.now()
		defer func() {
			if r := recover(); r != nil {
				logger.Error("gRPC handler panicked", "method", info.FullMethod, "panic", r)
				resp, err = nil, status.Error(codes.Internal, "internal error")
			}
			code := status.Code(err)
			args := []any{"method", info.FullMethod, "code", code.String(), "duration", i.now().Sub(start)}
			if code != codes.OK {
				logger.Warn("gRPC call failed", append(args, "error", err)...)
				return
			}
			logger.Debug("gRPC call", args...)
		}()
		return handler(ctx, req)
	}
}
