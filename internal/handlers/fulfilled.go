package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tooltag/tooltag-backend/internal/logger"
	"github.com/tooltag/tooltag-backend/internal/services"
)

type FulfilledHandler struct {
	log       *logger.Logger
	fulfilled services.FulfilledService
	report    services.ReportService
}

func NewFulfilledHandler(baseLog *logger.Logger, fulfilled services.FulfilledService, report services.ReportService) *FulfilledHandler {
	return &FulfilledHandler{
		log:       baseLog.With("handler", "FulfilledHandler"),
		fulfilled: fulfilled,
		report:    report,
	}
}

func filterFromQuery(c *gin.Context) services.FulfilledFilter {
	return services.FulfilledFilter{
		Title:       c.Query("title"),
		Priority:    c.Query("priority"),
		FulfilledBy: c.Query("fulfilled_by"),
	}
}

func (h *FulfilledHandler) List(c *gin.Context) {
	records, err := h.fulfilled.List(c.Request.Context(), filterFromQuery(c))
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, records)
}

func (h *FulfilledHandler) Report(c *gin.Context) {
	pdf, err := h.report.Build(c.Request.Context(), filterFromQuery(c))
	if err != nil {
		RespondError(c, err)
		return
	}
	filename := fmt.Sprintf("fulfilled_report_%s.pdf", time.Now().Format("20060102_150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
