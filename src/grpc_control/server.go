package grpc_control

import (
	"fmt"
	"net"

	"options-flow/src/logger"
	"options-flow/src/models"

	"google.golang.org/grpc"
)

// GrpcServer hosts the control service.
type GrpcServer struct {
	Addr   string
	Logger *logger.Logger
	server *grpc.Server
}

// -----------------------------------------------------------------------------

func NewGrpcServer(cfg *models.MConfig, service ControlServer, log *logger.Logger) *GrpcServer {
	srv := grpc.NewServer()
	RegisterControlServer(srv, service)
	return &GrpcServer{
		Addr:   fmt.Sprintf("%s:%d", cfg.GrpcHost, cfg.GrpcPort),
		Logger: log,
		server: srv,
	}
}

// -----------------------------------------------------------------------------

func (g *GrpcServer) Start() error {
	lis, err := net.Listen("tcp", g.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen for gRPC on %s: %w", g.Addr, err)
	}
	g.Logger.Info("Starting gRPC Control Server on %s", g.Addr)
	return g.Serve(lis)
}

// Serve blocks serving on lis until Stop.
func (g *GrpcServer) Serve(lis net.Listener) error {
	if err := g.server.Serve(lis); err != nil && err != grpc.ErrServerStopped {
		return err
	}
	return nil
}

// -----------------------------------------------------------------------------

func (g *GrpcServer) Stop() error {
	g.server.GracefulStop()
	g.Logger.Info("gRPC Control Server stopped")
	return nil
}
