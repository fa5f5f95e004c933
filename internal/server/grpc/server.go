// Package grpc exposes ScanService over gRPC with the JSON codec declared
// in internal/api.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/darktrack/internal/api"
	"github.com/dmitrijs2005/darktrack/internal/logging"
	"github.com/dmitrijs2005/darktrack/internal/server/models"
	"github.com/dmitrijs2005/darktrack/internal/server/reports"
	"google.golang.org/grpc"
)

// Scanner is the part of services.ScanService served here.
type Scanner interface {
	ScanEmail(ctx context.Context, userID, email string) (*models.ScanWithBreaches, error)
	ScanSelf(ctx context.Context, userID string) (*models.ScanWithBreaches, error)
	QuickLookup(ctx context.Context, userID, email string) (*models.ScanResult, error)
	SaveLookup(ctx context.Context, userID string, result *models.ScanResult) (*models.ScanWithBreaches, error)
	ListScans(ctx context.Context, userID string, limit int) ([]*models.ScanWithBreaches, error)
	LatestScan(ctx context.Context, userID string) (*models.ScanWithBreaches, error)
	GetBreachesForScan(ctx context.Context, userID, scanID string) ([]*models.Breach, error)
	GetLatestBreaches(ctx context.Context, userID string) ([]*models.Breach, error)
	RegenerateAnalysis(ctx context.Context, userID, scanID string) (*models.Scan, error)
}

type ReportExporter interface {
	Export(ctx context.Context, userID, scanID string) (*reports.Export, error)
}

type GRPCServer struct {
	address   string
	scans     Scanner
	reports   ReportExporter
	logger    logging.Logger
	jwtSecret []byte
}

var _ api.ScanServiceServer = (*GRPCServer)(nil)

func NewGRPCServer(a string, l logging.Logger, scans Scanner, reports ReportExporter, secretKey string) *GRPCServer {
	return &GRPCServer{
		address:   a,
		logger:    l.With("module", "grpc_server"),
		scans:     scans,
		reports:   reports,
		jwtSecret: []byte(secretKey),
	}
}

// newServer builds the grpc.Server with interceptors and the service registered.
func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.accessTokenInterceptor))
	api.RegisterScanServiceServer(srv, s)
	return srv
}

func (s *GRPCServer) Run(ctx context.Context) error {

	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", s.address)

	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
