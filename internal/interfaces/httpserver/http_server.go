package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	streakapidocs "github.com/ogonki/streak-api/docs/swagger"
	"github.com/ogonki/streak-api/internal/config"
	"github.com/ogonki/streak-api/internal/infrastructure/metrics"
	"github.com/ogonki/streak-api/internal/interfaces/httpserver/handlers"
	"github.com/ogonki/streak-api/internal/interfaces/httpserver/middlewares"
	"github.com/ogonki/streak-api/internal/interfaces/httpserver/responses"
	"github.com/ogonki/streak-api/internal/interfaces/httpserver/routes"
)

// ReadinessCheck reports whether a backing service is reachable.
type ReadinessCheck func(ctx context.Context) error

const readinessTimeout = 2 * time.Second

// Probe and scrape endpoints; not traced and logged at debug.
var probePaths = []string{"/healthz", "/readyz", "/metrics"}

// HttpServer serves the webhook and the operational endpoints.
type HttpServer struct {
	cfg    *config.Config
	engine *gin.Engine
	log    zerolog.Logger
}

// New builds the gin engine: middleware chain, core routes, then the versioned API.
func New(cfg *config.Config, log zerolog.Logger, handlerProvider *handlers.Provider, ready ReadinessCheck) *HttpServer {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	streakapidocs.SwaggerInfo.BasePath = "/"

	engine := gin.New()
	engine.HandleMethodNotAllowed = true
	engine.NoMethod(responses.MethodNotAllowed)
	engine.Use(
		gin.Recovery(),
		middlewares.RequestID(),
		middlewares.Tracing(cfg.ServiceName, probePaths...),
		middlewares.Logging(log, probePaths...),
		middlewares.Metrics(),
	)

	registerCoreRoutes(engine, cfg, ready)
	routes.NewProvider(handlerProvider, cfg.TelegramWebhookSecret).Register(engine)

	return &HttpServer{cfg: cfg, engine: engine, log: log}
}

// Handler exposes the engine, mainly for tests.
func (s *HttpServer) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then drains in-flight updates for at
// most ShutdownTimeout.
func (s *HttpServer) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr(),
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	case <-ctx.Done():
	}

	s.log.Info().Dur("timeout", s.cfg.ShutdownTimeout).Msg("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http: %w", err)
	}
	return nil
}

func registerCoreRoutes(engine *gin.Engine, cfg *config.Config, ready ReadinessCheck) {
	engine.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": cfg.ServiceName,
			"status":  "ok",
		})
	})

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	engine.GET("/readyz", func(c *gin.Context) {
		if ready != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
			defer cancel()
			if err := ready(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	engine.GET("/metrics", gin.WrapH(metrics.Handler()))
	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
