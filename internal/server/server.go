// Package server exposes the projection engine, upload ingestion, and the
// snapshot store over HTTP.
package server

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/freshbudget/freshbudget/internal/calculation"
	"github.com/freshbudget/freshbudget/internal/config"
	"github.com/freshbudget/freshbudget/internal/store"
)

// Server wires the engine and snapshot store behind a gin router.
type Server struct {
	router *gin.Engine
	engine *calculation.Engine
	store  *store.Store
	logger *zap.Logger
}

// NewServer builds a ready-to-run server. The snapshot store is opened at
// cfg.DBPath.
func NewServer(cfg *config.AppConfig, logger *zap.Logger) (*Server, error) {
	if !cfg.DevMode {
		gin.SetMode(gin.ReleaseMode)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	snapshots, err := store.New(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	s := &Server{
		router: gin.New(),
		engine: calculation.NewEngine(logger),
		store:  snapshots,
		logger: logger,
	}
	s.router.Use(gin.Recovery(), s.requestLog(), cors())
	s.setupRoutes()
	return s, nil
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}

func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)))
	}
}

func (s *Server) setupRoutes() {
	api := s.router.Group("/api")
	{
		api.GET("/health", s.Health)

		api.POST("/revenue/calculate", s.CalculateRevenue)
		api.POST("/volume/calculate", s.CalculateVolumes)

		api.GET("/opex/working", s.WorkingOpexCatalog)
		api.GET("/capex/working", s.WorkingCapexCatalog)

		api.POST("/lob/save", s.SaveLOB)
		api.GET("/lob/get/:lob", s.LoadLOB)

		api.GET("/template/existing", s.ExistingRevenueTemplate)
		api.GET("/template/opex_existing", s.OpexOverrideTemplate)
		api.POST("/upload/existing", s.UploadExistingRevenue)
		api.POST("/upload/opex_existing", s.UploadOpexOverrides)
	}
}

// Run starts the HTTP listener and blocks.
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

// Close releases the snapshot store.
func (s *Server) Close() error {
	return s.store.Close()
}

// Router exposes the gin engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}
