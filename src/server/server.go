package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"stock-analytics/src/dashboard"
	"stock-analytics/src/helpers"
	"stock-analytics/src/logger"
	"stock-analytics/src/metrics"
	"stock-analytics/src/models"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------
// DashboardServer
// -----------------------------------------------------------------------------

type DashboardServer struct {
	Config  *models.MConfig
	Service *dashboard.Service
	Errors  *helpers.ErrorHandler
	Logger  *logger.Logger
	engine  *gin.Engine
}

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

func NewDashboardServer(cfg *models.MConfig, svc *dashboard.Service, logger *logger.Logger) *DashboardServer {
	if cfg.LogLevel != "DEBUG" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &DashboardServer{
		Config:  cfg,
		Service: svc,
		Errors:  helpers.NewErrorHandler(logger),
		Logger:  logger,
		engine:  gin.Default(),
	}

	s.engine.Use(metrics.GinMiddleware())

	// CORS for local front-ends
	s.engine.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if strings.HasPrefix(origin, "http://127.0.0.1:") || strings.HasPrefix(origin, "http://localhost:") {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	s.setupRoutes()
	return s
}

// -----------------------------------------------------------------------------
// Route Setup
// -----------------------------------------------------------------------------

func (s *DashboardServer) setupRoutes() {
	api := s.engine.Group("/api")
	api.GET("/health", s.getHealth)
	api.GET("/tickers", s.getTickers)
	api.GET("/dashboard", s.getDashboard)
	api.GET("/summary", s.getSummary)

	s.engine.GET("/metrics", gin.WrapH(metrics.Handler()))
}

// Handler exposes the routes, mainly for tests.
func (s *DashboardServer) Handler() http.Handler {
	return s.engine
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *DashboardServer) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.Config.Host, s.Config.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.Logger.Info("Starting dashboard on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.Logger.Info("Shutting down dashboard...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// -----------------------------------------------------------------------------
// Route Handlers
// -----------------------------------------------------------------------------

func (s *DashboardServer) getHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"name":   s.Config.Name,
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getTickers(c *gin.Context) {
	universe, err := s.Service.Universe(c.Request.Context())
	if err != nil {
		s.fail(c, err, "tickers")
		return
	}
	c.JSON(http.StatusOK, universe)
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getDashboard(c *gin.Context) {
	windows, err := parseWindows(c.Query("windows"))
	if err != nil {
		s.fail(c, err, "dashboard")
		return
	}

	requested, err := s.requestedTickers(c)
	if err != nil {
		s.fail(c, err, "dashboard")
		return
	}

	result, err := s.Service.Run(c.Request.Context(), requested, windows)
	if err != nil {
		s.fail(c, err, "dashboard")
		return
	}
	c.JSON(http.StatusOK, result)
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getSummary(c *gin.Context) {
	requested, err := s.requestedTickers(c)
	if err != nil {
		s.fail(c, err, "summary")
		return
	}

	rows, err := s.Service.Summary(c.Request.Context(), requested)
	if err != nil {
		s.fail(c, err, "summary")
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": rows})
}

// -----------------------------------------------------------------------------

// requestedTickers reads ?tickers=. Without the parameter the default selection
// applies; an explicit empty value selects nothing.
func (s *DashboardServer) requestedTickers(c *gin.Context) ([]string, error) {
	if raw, ok := c.GetQuery("tickers"); ok {
		return parseTickers(raw), nil
	}

	universe, err := s.Service.Universe(c.Request.Context())
	if err != nil {
		return nil, err
	}
	return universe.Defaults, nil
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) fail(c *gin.Context, err error, op string) {
	s.Errors.Handle(err, op)
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}
