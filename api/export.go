package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dkoval/milesworth/internal/export"
	"github.com/dkoval/milesworth/internal/metrics"
	"github.com/dkoval/milesworth/internal/service/recommend"
)

type ExportHandler struct {
	service  recommend.RecommendUseCase
	defaults QueryDefaults
}

func NewExportHandler(service recommend.RecommendUseCase, defaults QueryDefaults) *ExportHandler {
	return &ExportHandler{service: service, defaults: defaults}
}

func (h *ExportHandler) Register(router *gin.RouterGroup) {
	router.GET("/export/csv", h.csv)
	router.GET("/export/pdf", h.pdf)
}

// csv re-runs the search with the same parameters the table used, so the
// exported row count matches the displayed result set.
func (h *ExportHandler) csv(c *gin.Context) {
	q, err := BindQuery(c, h.defaults)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	routes, err := h.service.Search(c.Request.Context(), q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	filename := fmt.Sprintf("recommendations_%s_%s_%s_%s.csv", q.Origin, q.Destination, q.StartDate, q.EndDate)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Status(http.StatusOK)

	if err := export.WriteCSV(c.Writer, routes); err != nil {
		// headers are gone already, nothing to do but log via gin
		_ = c.Error(err)
		return
	}
	metrics.ObserveExport("csv")
}

func (h *ExportHandler) pdf(c *gin.Context) {
	q, err := BindQuery(c, h.defaults)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	routes, err := h.service.Search(c.Request.Context(), q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	data, err := export.PDFReport(q, routes)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	filename := fmt.Sprintf("recommendations_%s_%s_%s_%s.pdf", q.Origin, q.Destination, q.StartDate, q.EndDate)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	metrics.ObserveExport("pdf")
	c.Data(http.StatusOK, "application/pdf", data)
}
