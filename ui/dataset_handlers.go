package ui

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"chemviz/domain/core"
	"chemviz/domain/dataset"
)

// handleUpload accepts a multipart CSV/Excel upload, parses it synchronously
// and stores the dataset as the new active one. A schema mismatch against the
// equipment columns is reported as a warning, not a rejection.
func (s *Server) handleUpload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file provided, expected multipart field 'file'"})
		return
	}
	if fileHeader.Size > s.cfg.Data.MaxUploadBytes {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("file exceeds the %d byte upload limit", s.cfg.Data.MaxUploadBytes),
		})
		return
	}
	if !s.reader.Supports(fileHeader.Filename) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported file type, expected .csv, .xlsx or .xls"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		s.respondError(c, err)
		return
	}
	defer file.Close()

	ctx := c.Request.Context()
	ds := dataset.New(datasetName(fileHeader.Filename), fileHeader.Filename, fileHeader.Size)
	if err := s.store.Create(ctx, ds); err != nil {
		s.respondError(c, err)
		return
	}

	result, err := s.reader.Parse(fileHeader.Filename, file)
	if err != nil {
		ds.MarkFailed(err.Error())
		if storeErr := s.store.Update(ctx, ds); storeErr != nil {
			s.logger.Error("failed to record failed upload: %v", storeErr)
		}
		s.respondError(c, err)
		return
	}

	ds.Columns = result.Columns
	ds.ColumnTypes = result.Types
	ds.Rows = result.Rows
	ds.DataPreview = dataset.Preview(result.Rows)
	ds.RowCount = len(result.Rows)
	ds.ColumnCount = len(result.Columns)
	ds.MarkCompleted()

	if err := s.store.Update(ctx, ds); err != nil {
		s.respondError(c, err)
		return
	}
	if err := s.store.Activate(ctx, ds.ID); err != nil {
		s.respondError(c, err)
		return
	}
	if err := s.store.EnforceHistoryLimit(ctx, s.cfg.Data.MaxHistory); err != nil {
		s.logger.Warn("failed to prune dataset history: %v", err)
	}

	validation := dataset.ValidateColumns(result.Columns)
	s.logger.Info("uploaded dataset %s (%d rows, %d columns)", ds.ID, ds.RowCount, ds.ColumnCount)

	c.JSON(http.StatusCreated, gin.H{
		"dataset_id":        ds.ID,
		"name":              ds.Name,
		"original_filename": ds.OriginalFilename,
		"row_count":         ds.RowCount,
		"column_count":      ds.ColumnCount,
		"columns":           ds.Columns,
		"column_types":      ds.ColumnTypes,
		"data_preview":      ds.DataPreview,
		"validation":        validation,
		"processing_status": ds.Status,
	})
}

// handleHistory returns the most recent uploads, newest first
func (s *Server) handleHistory(c *gin.Context) {
	datasets, err := s.store.List(c.Request.Context(), s.cfg.Data.MaxHistory)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":    len(datasets),
		"datasets": datasetSummaries(datasets),
	})
}

func (s *Server) handleListDatasets(c *gin.Context) {
	datasets, err := s.store.List(c.Request.Context(), s.cfg.Data.MaxHistory)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, datasetSummaries(datasets))
}

func (s *Server) handleGetDataset(c *gin.Context) {
	ds, ok := s.datasetByParam(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, datasetSummary(ds))
}

// handleDatasetData returns the full parsed rows of a dataset
func (s *Server) handleDatasetData(c *gin.Context) {
	ds, ok := s.datasetByParam(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"dataset_id":   ds.ID,
		"columns":      ds.Columns,
		"column_types": ds.ColumnTypes,
		"row_count":    ds.RowCount,
		"data":         ds.Rows,
	})
}

func (s *Server) handleActivateDataset(c *gin.Context) {
	id, err := core.ParseDatasetID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.store.Activate(c.Request.Context(), id); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"dataset_id": id, "is_active": true})
}

func (s *Server) handleActiveDataset(c *gin.Context) {
	ds, err := s.store.GetActive(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, datasetSummary(ds))
}

// handleDeleteDataset removes a dataset. Deleting the active dataset
// promotes the newest remaining one.
func (s *Server) handleDeleteDataset(c *gin.Context) {
	id, err := core.ParseDatasetID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()

	ds, err := s.store.GetByID(ctx, id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	if err := s.store.Delete(ctx, id); err != nil {
		s.respondError(c, err)
		return
	}
	if ds.IsActive {
		remaining, err := s.store.List(ctx, 1)
		if err == nil && len(remaining) > 0 {
			if err := s.store.Activate(ctx, remaining[0].ID); err != nil {
				s.logger.Warn("failed to promote dataset %s: %v", remaining[0].ID, err)
			}
		}
	}
	c.Status(http.StatusNoContent)
}

// datasetByParam resolves the :id path parameter into a stored dataset,
// writing the error response itself on failure.
func (s *Server) datasetByParam(c *gin.Context) (*dataset.Dataset, bool) {
	id, err := core.ParseDatasetID(c.Param("id"))
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

// datasetSummary strips the full row payload from a dataset for listings
func datasetSummary(ds *dataset.Dataset) gin.H {
	return gin.H{
		"id":                ds.ID,
		"name":              ds.Name,
		"original_filename": ds.OriginalFilename,
		"file_size":         ds.FileSize,
		"row_count":         ds.RowCount,
		"column_count":      ds.ColumnCount,
		"columns":           ds.Columns,
		"column_types":      ds.ColumnTypes,
		"data_preview":      ds.DataPreview,
		"processing_status": ds.Status,
		"processing_error":  ds.ProcessingError,
		"is_active":         ds.IsActive,
		"uploaded_at":       ds.UploadedAt,
		"updated_at":        ds.UpdatedAt,
	}
}

func datasetSummaries(datasets []*dataset.Dataset) []gin.H {
	summaries := make([]gin.H, 0, len(datasets))
	for _, ds := range datasets {
		summaries = append(summaries, datasetSummary(ds))
	}
	return summaries
}

// datasetName derives a display name from the uploaded filename
func datasetName(filename string) string {
	name := filename
	if idx := strings.LastIndex(name, "."); idx > 0 {
		name = name[:idx]
	}
	return name
}
