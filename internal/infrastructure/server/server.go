package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"golang.org/x/net/netutil"

	apihttp "github.com/GriffinCanCode/glitchly/backend/internal/api/http"
	"github.com/GriffinCanCode/glitchly/backend/internal/api/middleware"
	"github.com/GriffinCanCode/glitchly/backend/internal/domain/lifecycle"
	"github.com/GriffinCanCode/glitchly/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/glitchly/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/glitchly/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/glitchly/backend/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/glitchly/backend/internal/shared/paths"
)

// Form encoding can triple the size of the posted code
const formOverhead = 3

// Server wraps the HTTP server and dependencies
type Server struct {
	router   *gin.Engine
	http     *http.Server
	manager  *lifecycle.Manager
	tracer   *tracing.Tracer
	logger   *logging.Logger
	config   *config.Config
	metrics  *monitoring.Metrics
	registry *prometheus.Registry
	recovery *lifecycle.RecoveryReport
}

// NewServer wires storage, middleware and routes, and repairs storage left
// behind by a previous run before any request is served.
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	logger := logging.NewFromSettings(cfg.Logging.Level, cfg.Logging.Development)

	logger.Info("Initializing Glitchly server",
		zap.String("addr", cfg.Server.Addr()),
		zap.String("public_dir", cfg.Storage.PublicDir),
		zap.String("storage_dir", cfg.Storage.StorageDir),
		zap.Duration("freeze_delay", cfg.Storage.FreezeDelay),
	)

	// Initialize metrics first (needed by other components)
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := monitoring.NewMetrics(registry)

	tracer := tracing.New("glitchly", logger.Component("tracing"))

	manager, err := lifecycle.NewManager(lifecycle.Options{
		Layout:            paths.New(cfg.Storage.PublicDir, cfg.Storage.StorageDir),
		FreezeDelay:       cfg.Storage.FreezeDelay,
		FreezeAfterThaw:   cfg.Storage.FreezeAfterThaw,
		FreezeOnStartup:   cfg.Storage.FreezeOnStartup,
		FreezeConcurrency: cfg.Storage.FreezeConcurrency,
		CompressionLevel:  cfg.Storage.CompressionLevel,
		MaxContentBytes:   cfg.Storage.MaxContentBytes,
	}, logger.Component("lifecycle"))
	if err != nil {
		tracer.Close()
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	manager.WithMetrics(metrics)

	report, err := manager.RecoverOnStartup(ctx)
	if err != nil {
		manager.Close()
		tracer.Close()
		return nil, fmt.Errorf("startup recovery failed: %w", err)
	}

	// Create router
	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(tracing.HTTPMiddleware(tracer))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.RequestLogger(logger.Component("http")))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	handlers := apihttp.NewHandlers(manager, metrics, logger.Component("handlers")).
		WithGatherer(registry).
		WithBreaker(manager.Breaker())
	handlers.Register(router, cfg.Storage.MaxContentBytes*formOverhead+4096, cfg.Metrics.Enabled)

	logger.Info("Server initialized successfully")

	return &Server{
		router: router,
		http: &http.Server{
			Addr:    cfg.Server.Addr(),
			Handler: router,
		},
		manager:  manager,
		tracer:   tracer,
		logger:   logger,
		config:   cfg,
		metrics:  metrics,
		registry: registry,
		recovery: report,
	}, nil
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Manager returns the lifecycle manager
func (s *Server) Manager() *lifecycle.Manager {
	return s.manager
}

// Recovery returns what startup recovery found
func (s *Server) Recovery() *lifecycle.RecoveryReport {
	return s.recovery
}

// Run serves HTTP until Close is called
func (s *Server) Run() error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.http.Addr, err)
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln, capped at Server.MaxConnections when set.
func (s *Server) Serve(ln net.Listener) error {
	if limit := s.config.Server.MaxConnections; limit > 0 {
		ln = netutil.LimitListener(ln, limit)
	}
	s.logger.Info("Starting HTTP server",
		zap.String("addr", ln.Addr().String()),
		zap.Int("max_connections", s.config.Server.MaxConnections),
	)
	if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Close stops accepting requests, drains in-flight ones and settles
// background freezes. With FreezeOnShutdown every active app is archived
// first; otherwise pending freezes are cancelled and apps stay active.
func (s *Server) Close(ctx context.Context) error {
	s.logger.Info("Shutting down server...")

	var errs []error
	if err := s.http.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}

	if s.config.Storage.FreezeOnShutdown {
		frozen, err := s.manager.FreezeAll(ctx)
		s.logger.Info("Froze active apps", zap.Int("frozen", frozen))
		if err != nil {
			errs = append(errs, fmt.Errorf("freeze on shutdown: %w", err))
		}
	}

	s.manager.Close()
	s.tracer.Close()

	// Sync logger before exit
	_ = s.logger.Sync()

	return errors.Join(errs...)
}
