package router

import (
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/recovery"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/dtroode/greenhouse-admin/internal/api/grpc/approvalpb"
	"github.com/dtroode/greenhouse-admin/internal/api/grpc/handler"
	"github.com/dtroode/greenhouse-admin/internal/api/grpc/middleware"
	"github.com/dtroode/greenhouse-admin/internal/logger"
	"github.com/dtroode/greenhouse-admin/internal/model"
)

// Router represents a gRPC router for the approval service.
// It manages gRPC service registration and middleware configuration.
type Router struct {
	approvalHandler *handler.Approval
	contextManager  model.ContextManager
	health          *health.Server
	logger          *logger.Logger
}

// New creates new gRPC Router instance.
func New(
	approvalHandler *handler.Approval,
	contextManager model.ContextManager,
	logger *logger.Logger,
) *Router {
	return &Router{
		approvalHandler: approvalHandler,
		contextManager:  contextManager,
		health:          health.NewServer(),
		logger:          logger,
	}
}

// Health exposes the health server so the process can flip serving status.
func (r *Router) Health() *health.Server {
	return r.health
}

// Register registers all gRPC services and middleware.
// Panics are recovered innermost so that the logging interceptor sees the
// resulting Internal status.
//
// Returns the configured gRPC server instance.
func (r *Router) Register() *grpc.Server {
	logging := middleware.NewLogging(r.logger, r.contextManager)
	recoverer := middleware.NewRecovery(r.logger)

	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			logging.HandleGRPC,
			recovery.UnaryServerInterceptor(recovery.WithRecoveryHandlerContext(recoverer.HandlePanic)),
		),
		grpc.ChainStreamInterceptor(
			recovery.StreamServerInterceptor(recovery.WithRecoveryHandlerContext(recoverer.HandlePanic)),
		),
	)
	r.registerApprovalRoutes(s)
	r.registerHealthRoutes(s)

	return s
}

func (r *Router) registerApprovalRoutes(server *grpc.Server) {
	approvalpb.RegisterApprovalsServer(server, r.approvalHandler)
	r.health.SetServingStatus(approvalpb.ServiceName, healthpb.HealthCheckResponse_SERVING)
}

func (r *Router) registerHealthRoutes(server *grpc.Server) {
	healthpb.RegisterHealthServer(server, r.health)
}
