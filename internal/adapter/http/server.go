package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/quake-map/internal/mapview"
	"github.com/couchcryptid/quake-map/internal/menu"
	"github.com/couchcryptid/quake-map/internal/pipeline"
)

// Session is the single map session the page drives.
type Session interface {
	sharedobs.ReadinessChecker
	State() pipeline.State
	Layers() []string
	SetPeriod(ctx context.Context, label string) error
	SetMagnitude(ctx context.Context, band string) error
	SetDepth(ctx context.Context, band string) error
	SetLayerVisible(ctx context.Context, layer string, visible bool) error
}

// LayerReader exposes layer group snapshots.
type LayerReader interface {
	Snapshot(name string) (mapview.LayerSnapshot, bool)
}

// MenuReader exposes the page's select elements.
type MenuReader interface {
	All() []menu.Select
}

// Server exposes health, metrics, and the page's session API.
type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	session    Session
	layers     LayerReader
	menus      MenuReader
	logger     *slog.Logger
}

// NewServer creates an HTTP server with the probe, metrics, and /api/v1 routes.
func NewServer(addr string, session Session, layers LayerReader, menus MenuReader, logger *slog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestLogger(logger))

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      engine,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		engine:  engine,
		session: session,
		layers:  layers,
		menus:   menus,
		logger:  logger,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.engine.GET("/healthz", gin.WrapF(sharedobs.LivenessHandler()))
	s.engine.GET("/readyz", gin.WrapF(sharedobs.ReadinessHandler(s.session)))
	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := s.engine.Group("/api/v1")
	v1.GET("/state", s.handleState)
	v1.PUT("/selection/:dimension", s.handleSelection)
	v1.GET("/menus", s.handleMenus)
	v1.GET("/layers", s.handleLayers)
	v1.GET("/layers/:name", s.handleLayer)
	v1.POST("/layers/:name/visibility", s.handleVisibility)
	v1.GET("/legend", s.handleLegend)
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

// requestLogger logs one line per request at debug, or warn for 5xx.
func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		level := slog.LevelDebug
		if c.Writer.Status() >= http.StatusInternalServerError {
			level = slog.LevelWarn
		}
		logger.Log(c.Request.Context(), level, "http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
		)
	}
}
