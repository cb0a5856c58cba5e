package ui

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"chemviz/domain/core"
	"chemviz/domain/dataset"
	"chemviz/internal/analytics"
)

// handleAnalyticsRoot lists the analytics endpoints
func (s *Server) handleAnalyticsRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"summary": "/api/analytics/summary/{dataset_id}",
		"kpis":    "/api/analytics/kpis/{dataset_id}",
		"charts":  "/api/analytics/charts/{dataset_id}",
		"chart":   "/api/analytics/charts/{dataset_id}/{type}",
		"columns": "/api/analytics/columns/{dataset_id}",
	})
}

// handleSummary returns the statistical summary of a dataset
func (s *Server) handleSummary(c *gin.Context) {
	ds, engine, ok := s.engineForRequest(c)
	if !ok {
		return
	}
	summary := engine.Summary()
	c.JSON(http.StatusOK, gin.H{
		"dataset_id":          ds.ID,
		"dataset_name":        ds.Name,
		"overview":            summary.Overview,
		"numeric_summary":     summary.NumericSummary,
		"categorical_summary": summary.CategoricalSummary,
		"kpi_metrics":         summary.KPIMetrics,
	})
}

func (s *Server) handleKPIs(c *gin.Context) {
	ds, engine, ok := s.engineForRequest(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"dataset_id": ds.ID,
		"kpis":       engine.KPIs(),
	})
}

// handleAllCharts returns every chart the dataset supports plus the manifest
func (s *Server) handleAllCharts(c *gin.Context) {
	ds, engine, ok := s.engineForRequest(c)
	if !ok {
		return
	}
	result := engine.AllCharts()
	c.JSON(http.StatusOK, gin.H{
		"dataset_id": ds.ID,
		"charts":     result,
	})
}

// handleChart renders one chart kind with optional x_column, y_column and
// bins query parameters
func (s *Server) handleChart(c *gin.Context) {
	ds, engine, ok := s.engineForRequest(c)
	if !ok {
		return
	}

	bins := analytics.DefaultHistogramBins
	if raw := c.Query("bins"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bins must be a positive integer"})
			return
		}
		bins = parsed
	}

	kind := c.Param("type")
	if kind == analytics.ChartCombined {
		c.JSON(http.StatusOK, gin.H{
			"dataset_id": ds.ID,
			"charts":     engine.AllCharts(),
		})
		return
	}

	payload, err := engine.Chart(kind, c.Query("x_column"), c.Query("y_column"), bins)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"dataset_id": ds.ID,
		"chart":      payload,
	})
}

func (s *Server) handleColumns(c *gin.Context) {
	ds, engine, ok := s.engineForRequest(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"dataset_id":          ds.ID,
		"columns":             ds.Columns,
		"column_types":        ds.ColumnTypes,
		"numeric_columns":     engine.NumericColumns(),
		"categorical_columns": engine.CategoricalColumns(),
	})
}

// handleEquipmentSummary returns the fixed-schema equipment aggregates
func (s *Server) handleEquipmentSummary(c *gin.Context) {
	ds, ok := s.readyDatasetByParam(c)
	if !ok {
		return
	}
	summary := analytics.DomainSummary(ds.Rows)
	c.JSON(http.StatusOK, gin.H{
		"dataset_id":              ds.ID,
		"dataset_name":            ds.Name,
		"total_equipment":         summary.TotalEquipment,
		"average_flowrate":        summary.AverageFlowrate,
		"average_temperature":     summary.AverageTemperature,
		"dominant_equipment_type": summary.DominantEquipmentType,
	})
}

// handleEquipmentAnalysis returns the chart-ready equipment distributions
func (s *Server) handleEquipmentAnalysis(c *gin.Context) {
	ds, ok := s.readyDatasetByParam(c)
	if !ok {
		return
	}
	summary := analytics.DomainSummary(ds.Rows)
	c.JSON(http.StatusOK, gin.H{
		"dataset_id":                  ds.ID,
		"equipment_type_distribution": summary.EquipmentTypeDistribution,
		"temperature_by_equipment":    summary.TemperatureByEquipment,
		"pressure_distribution":       summary.PressureDistribution,
	})
}

// engineForRequest resolves the optional :id parameter (falling back to the
// active dataset), checks readiness and builds a per-request engine.
func (s *Server) engineForRequest(c *gin.Context) (*dataset.Dataset, *analytics.Engine, bool) {
	ds, ok := s.resolveDataset(c)
	if !ok {
		return nil, nil, false
	}
	if !ds.IsReady() {
		s.respondError(c, core.ErrDatasetNotReady)
		return nil, nil, false
	}
	if !ds.HasData() {
		s.respondError(c, core.ErrEmptyDataset)
		return nil, nil, false
	}
	return ds, analytics.NewEngine(ds.Rows, ds.Columns, ds.ColumnTypes), true
}

func (s *Server) resolveDataset(c *gin.Context) (*dataset.Dataset, bool) {
	raw := c.Param("id")
	if raw == "" {
		ds, err := s.store.GetActive(c.Request.Context())
		if err != nil {
			s.respondError(c, err)
			return nil, false
		}
		return ds, true
	}

	id, err := core.ParseDatasetID(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	ds, err := s.store.GetByID(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return nil, false
	}
	return ds, true
}

// readyDatasetByParam is datasetByParam plus readiness and data checks
func (s *Server) readyDatasetByParam(c *gin.Context) (*dataset.Dataset, bool) {
	ds, ok := s.datasetByParam(c)
	if !ok {
		return nil, false
	}
	if !ds.IsReady() {
		s.respondError(c, core.ErrDatasetNotReady)
		return nil, false
	}
	if !ds.HasData() {
		s.respondError(c, core.ErrEmptyDataset)
		return nil, false
	}
	return ds, true
}
