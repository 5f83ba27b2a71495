package handler

import (
	"fmt"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/iniulez/spbsfi/internal/service"
	"github.com/xuri/excelize/v2"
)

// ============================================================
// Activity Handler
// ============================================================

type ActivityHandler struct {
	svc *service.ActivityService
}

func NewActivityHandler(svc *service.ActivityService) *ActivityHandler {
	return &ActivityHandler{svc: svc}
}

func (h *ActivityHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	logs, total, err := h.svc.List(c.Request.Context(), page, pageSize,
		GetFilters(c, "user_id", "related_document_id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, ListResponse{Items: logs, Pagination: NewPagination(page, pageSize, total)})
}

// ============================================================
// Dashboard Handler
// ============================================================

type DashboardHandler struct {
	svc *service.DashboardService
}

func NewDashboardHandler(svc *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

// Summary handles GET /api/v1/dashboard.
func (h *DashboardHandler) Summary(c *gin.Context) {
	counters, err := h.svc.Summary(c.Request.Context(), GetActor(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, counters)
}

// ============================================================
// Report Handler
// ============================================================

type ReportHandler struct {
	svc *service.ReportService
}

func NewReportHandler(svc *service.ReportService) *ReportHandler {
	return &ReportHandler{svc: svc}
}

func writeXLSX(c *gin.Context, f *excelize.File, filename string) {
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, url.PathEscape(filename)))
	if err := f.Write(c.Writer); err != nil {
		InternalError(c, "write report: "+err.Error())
	}
}

// StockReport handles GET /api/v1/reports/stock.
func (h *ReportHandler) StockReport(c *gin.Context) {
	f, filename, err := h.svc.ExportStockReport(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	writeXLSX(c, f, filename)
}

// MovementReport handles GET /api/v1/reports/movements/:itemId.
func (h *ReportHandler) MovementReport(c *gin.Context) {
	f, filename, err := h.svc.ExportMovementReport(c.Request.Context(), c.Param("itemId"))
	if err != nil {
		HandleError(c, err)
		return
	}
	writeXLSX(c, f, filename)
}

// FRBReport handles GET /api/v1/reports/frbs.
func (h *ReportHandler) FRBReport(c *gin.Context) {
	f, filename, err := h.svc.ExportFRBReport(c.Request.Context(),
		GetFilters(c, "project_id", "pm_id", "status"))
	if err != nil {
		HandleError(c, err)
		return
	}
	writeXLSX(c, f, filename)
}
