// Package api exposes the scoring engine and claim review workflow over
// HTTP. Handlers are thin adapters; all decision logic lives in the
// service layer.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/aba-necessity-server/internal/domain"
	"github.com/aba-necessity-server/internal/middleware"
	"github.com/aba-necessity-server/internal/service"
)

// Server represents the HTTP server
type Server struct {
	cfg           domain.ServerConfig
	defaultPolicy domain.PolicyProfile
	logger        *logrus.Logger
	claims        *service.ClaimService
	analytics     *service.AnalyticsService
	policies      domain.PolicyRepository
	patients      domain.PatientRepository
	audit         domain.AuditRepository
	router        *gin.Engine
	server        *http.Server
}

// NewServer creates a new HTTP server instance
func NewServer(
	cfg domain.ServerConfig,
	defaultPolicy domain.PolicyProfile,
	logger *logrus.Logger,
	claims *service.ClaimService,
	analytics *service.AnalyticsService,
	policies domain.PolicyRepository,
	patients domain.PatientRepository,
	audit domain.AuditRepository,
) *Server {
	if logger.GetLevel() >= logrus.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CorrelationID())
	router.Use(middleware.CORS())
	if cfg.RateLimit > 0 {
		router.Use(middleware.RateLimit(cfg.RateLimit, cfg.RateBurst))
	}

	s := &Server{
		cfg:           cfg,
		defaultPolicy: defaultPolicy,
		logger:        logger,
		claims:        claims,
		analytics:     analytics,
		policies:      policies,
		patients:      patients,
		audit:         audit,
		router:        router,
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/calculate", s.handleCalculate)

		v1.GET("/claims", s.handleListClaims)
		v1.POST("/claims", s.handleCreateClaim)
		v1.GET("/claims/:id", s.handleGetClaim)
		v1.GET("/claims/:id/audit", s.handleClaimAudit)
		v1.PATCH("/claims/:id/status", s.handleClaimTransition)

		v1.GET("/patients", s.handleListPatients)
		v1.POST("/patients", s.handleCreatePatient)
		v1.GET("/patients/:id", s.handleGetPatient)

		v1.GET("/payer-profiles", s.handleListPolicies)
		v1.GET("/payer-profiles/:id", s.handleGetPolicy)
		v1.PUT("/payer-profiles/:id", s.handleUpdatePolicy)

		v1.GET("/analytics", s.handleAnalytics)
	}
}

// Router exposes the gin engine, mainly for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start starts the HTTP server and blocks until ctx is canceled, then
// shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", addr).Info("HTTP server listening")
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return s.server.Shutdown(shutdownCtx)
}
