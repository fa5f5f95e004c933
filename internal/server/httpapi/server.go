// Package httpapi serves ScanService to the dashboard as JSON over HTTP.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/darktrack/internal/logging"
	"github.com/dmitrijs2005/darktrack/internal/server/models"
	"github.com/dmitrijs2005/darktrack/internal/server/reports"
	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 10 * time.Second

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

type Server struct {
	address   string
	scans     Scanner
	reports   ReportExporter
	logger    logging.Logger
	jwtSecret []byte
	now       func() time.Time
}

func NewServer(address string, l logging.Logger, scans Scanner, reports ReportExporter, secretKey string) *Server {
	return &Server{
		address:   address,
		scans:     scans,
		reports:   reports,
		logger:    l.With("module", "http_server"),
		jwtSecret: []byte(secretKey),
		now:       time.Now,
	}
}

// Handler builds the gin engine with all routes.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "OK"}) })

	g := r.Group("/api", s.requireAuth())
	g.POST("/scan", s.scan)
	g.POST("/scan/self", s.scanSelf)
	g.POST("/lookup", s.quickLookup)
	g.POST("/lookup/save", s.saveLookup)
	g.GET("/scans", s.listScans)
	g.GET("/scans/latest", s.latestScan)
	g.POST("/scans/:scanId/analysis", s.regenerateAnalysis)
	g.POST("/scans/:scanId/report", s.exportReport)
	g.GET("/breaches", s.latestBreaches)
	g.GET("/breaches/:scanId", s.scanBreaches)

	return r
}

func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug(c.Request.Context(), "http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}
