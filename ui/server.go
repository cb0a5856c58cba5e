// Package ui exposes the HTTP API: dataset upload and lifecycle endpoints
// plus the analytics surface built on top of the stored rows.
package ui

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"chemviz/adapters/tabular"
	"chemviz/internal"
	"chemviz/internal/config"
	"chemviz/ports"
)

// Server represents the HTTP API server
type Server struct {
	router *gin.Engine
	store  ports.DatasetStore
	reader *tabular.Reader
	cfg    *config.Config
	logger *internal.Logger
}

// NewServer creates the API server and registers all routes
func NewServer(store ports.DatasetStore, cfg *config.Config, logger *internal.Logger) *Server {
	gin.SetMode(cfg.Server.GinMode)
	s := &Server{
		router: gin.New(),
		store:  store,
		reader: tabular.NewReader(),
		cfg:    cfg,
		logger: logger.WithComponent("ui"),
	}
	s.router.Use(gin.Logger(), gin.Recovery())
	s.router.MaxMultipartMemory = cfg.Data.MaxUploadBytes
	s.setupRoutes()
	return s
}

// Handler returns the server as an http.Handler, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleDocs)

	api := s.router.Group("/api")
	{
		api.POST("/upload/", s.handleUpload)
		api.GET("/summary/:id", s.handleEquipmentSummary)
		api.GET("/analysis/:id", s.handleEquipmentAnalysis)
		api.GET("/history/", s.handleHistory)

		datasets := api.Group("/datasets")
		{
			datasets.GET("/", s.handleListDatasets)
			datasets.GET("/active", s.handleActiveDataset)
			datasets.GET("/:id", s.handleGetDataset)
			datasets.GET("/:id/data", s.handleDatasetData)
			datasets.POST("/:id/activate", s.handleActivateDataset)
			datasets.DELETE("/:id", s.handleDeleteDataset)
		}

		analytics := api.Group("/analytics")
		{
			analytics.GET("/", s.handleAnalyticsRoot)
			analytics.GET("/summary", s.handleSummary)
			analytics.GET("/summary/:id", s.handleSummary)
			analytics.GET("/kpis", s.handleKPIs)
			analytics.GET("/kpis/:id", s.handleKPIs)
			analytics.GET("/charts", s.handleAllCharts)
			analytics.GET("/charts/:id", s.handleAllCharts)
			analytics.GET("/charts/:id/:type", s.handleChart)
			analytics.GET("/columns", s.handleColumns)
			analytics.GET("/columns/:id", s.handleColumns)
		}
	}
}
