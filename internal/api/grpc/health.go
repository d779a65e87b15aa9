package grpc

import (
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"rentflow/internal/api/grpc/interceptor"
	"rentflow/internal/logger"
)

// BookingServiceName is the health entry reported for the booking API.
const BookingServiceName = "rentflow.booking"

// HealthServer serves grpc.health.v1 and reflection. Status starts as
// NOT_SERVING until the HTTP listener is up.
type HealthServer struct {
	server *grpc.Server
	health *health.Server
}

func NewHealthServer() *HealthServer {
	s := grpc.NewServer(
		grpc.UnaryInterceptor(interceptor.NewLoggingInterceptor().Unary()),
	)
	h := health.NewServer()
	healthpb.RegisterHealthServer(s, h)

	// Register reflection service for grpcurl
	reflection.Register(s)

	hs := &HealthServer{server: s, health: h}
	hs.SetServing(false)
	return hs
}

// SetServing flips both the overall status and the booking entry.
func (s *HealthServer) SetServing(serving bool) {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		st = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", st)
	s.health.SetServingStatus(BookingServiceName, st)
	logger.Info("Health status updated", "status", st.String())
}

func (s *HealthServer) Serve(lis net.Listener) error {
	logger.Info("gRPC health server listening", "address", lis.Addr().String())
	return s.server.Serve(lis)
}

// Stop reports NOT_SERVING to watchers, then drains in-flight calls.
func (s *HealthServer) Stop() {
	s.health.Shutdown()
	s.server.GracefulStop()
}
