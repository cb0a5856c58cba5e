package ui

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"chemviz/domain/core"
	"chemviz/internal/errors"
)

// respondError maps domain and application errors onto HTTP status codes:
// missing resources are 404, rejected requests are 400, everything else 500.
func (s *Server) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError

	switch {
	case core.IsNotFoundError(err):
		status = http.StatusNotFound
	case core.IsAnalyticsError(err),
		stderrors.Is(err, core.ErrDatasetNotReady),
		stderrors.Is(err, core.ErrParseFailed):
		status = http.StatusBadRequest
	default:
		switch errors.GetCode(err) {
		case errors.CodeNotFound:
			status = http.StatusNotFound
		case errors.CodeInvalidInput, errors.CodeValidationError,
			errors.CodeParseError, errors.CodeChartUnsupported,
			errors.CodeInsufficientColumns, errors.CodeEmptyDataset,
			errors.CodeDatasetNotReady:
			status = http.StatusBadRequest
		}
	}

	if status == http.StatusInternalServerError {
		s.logger.Error("request failed: %v", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
