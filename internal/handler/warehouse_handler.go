package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/iniulez/spbsfi/internal/service"
	"github.com/iniulez/spbsfi/internal/sse"
)

// WarehouseHandler exposes the warehouse-side documents: GRNs, checklists,
// DOs, TTBs, and rejection reports.
type WarehouseHandler struct {
	receiving   *service.ReceivingService
	fulfillment *service.FulfillmentService
	hub         *sse.Hub
}

func NewWarehouseHandler(receiving *service.ReceivingService, fulfillment *service.FulfillmentService, hub *sse.Hub) *WarehouseHandler {
	return &WarehouseHandler{receiving: receiving, fulfillment: fulfillment, hub: hub}
}

// ============================================================
// Goods receipts
// ============================================================

func (h *WarehouseHandler) ListGRNs(c *gin.Context) {
	page, pageSize := GetPagination(c)
	grns, total, err := h.receiving.List(c.Request.Context(), page, pageSize,
		GetFilters(c, "po_id", "search"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, ListResponse{Items: grns, Pagination: NewPagination(page, pageSize, total)})
}

func (h *WarehouseHandler) GetGRN(c *gin.Context) {
	grn, err := h.receiving.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, grn)
}

// ListAwaitingReceipt handles GET /api/v1/grns/awaiting, the POs still
// expecting goods.
func (h *WarehouseHandler) ListAwaitingReceipt(c *gin.Context) {
	pos, err := h.receiving.ListAwaitingReceipt(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"items": pos})
}

// RecordGRN handles POST /api/v1/grns.
func (h *WarehouseHandler) RecordGRN(c *gin.Context) {
	var req service.RecordGRNRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}
	grn, err := h.receiving.RecordGRN(c.Request.Context(), GetActor(c), &req)
	if err != nil {
		HandleError(c, err)
		return
	}
	h.hub.PublishDocumentUpdate("grn", grn.ID, "recorded")
	Created(c, grn)
}

// ============================================================
// Delivery orders and preparation
// ============================================================

func (h *WarehouseHandler) ListDOs(c *gin.Context) {
	page, pageSize := GetPagination(c)
	dos, total, err := h.fulfillment.ListDOs(c.Request.Context(), page, pageSize,
		GetFilters(c, "frb_id", "status", "search"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, ListResponse{Items: dos, Pagination: NewPagination(page, pageSize, total)})
}

func (h *WarehouseHandler) GetDO(c *gin.Context) {
	do, err := h.fulfillment.GetDO(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, do)
}

func (h *WarehouseHandler) ListChecklists(c *gin.Context) {
	page, pageSize := GetPagination(c)
	checklists, total, err := h.fulfillment.ListChecklists(c.Request.Context(), page, pageSize,
		GetFilters(c, "do_id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, ListResponse{Items: checklists, Pagination: NewPagination(page, pageSize, total)})
}

// RecordChecklist handles POST /api/v1/checklists.
func (h *WarehouseHandler) RecordChecklist(c *gin.Context) {
	var req service.RecordChecklistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}
	checklist, err := h.fulfillment.RecordChecklist(c.Request.Context(), GetActor(c), &req)
	if err != nil {
		HandleError(c, err)
		return
	}
	h.hub.PublishDocumentUpdate("do", req.DOID, "prepared")
	Created(c, checklist)
}

// SendDO handles POST /api/v1/dos/:id/send.
func (h *WarehouseHandler) SendDO(c *gin.Context) {
	do, err := h.fulfillment.SendDO(c.Request.Context(), GetActor(c), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	h.hub.PublishDocumentUpdate("do", do.ID, "sent")
	Success(c, do)
}

// ============================================================
// TTBs and rejection reports
// ============================================================

func (h *WarehouseHandler) ListTTBs(c *gin.Context) {
	page, pageSize := GetPagination(c)
	ttbs, total, err := h.fulfillment.ListTTBs(c.Request.Context(), page, pageSize,
		GetFilters(c, "do_id", "status"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, ListResponse{Items: ttbs, Pagination: NewPagination(page, pageSize, total)})
}

func (h *WarehouseHandler) GetTTB(c *gin.Context) {
	ttb, err := h.fulfillment.GetTTB(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, ttb)
}

// RecordTTB handles POST /api/v1/ttbs.
func (h *WarehouseHandler) RecordTTB(c *gin.Context) {
	var req service.RecordTTBRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}
	ttb, err := h.fulfillment.RecordTTB(c.Request.Context(), GetActor(c), &req)
	if err != nil {
		HandleError(c, err)
		return
	}
	h.hub.PublishDocumentUpdate("ttb", ttb.ID, ttb.Status)
	Created(c, ttb)
}

func (h *WarehouseHandler) ListRejectionReports(c *gin.Context) {
	page, pageSize := GetPagination(c)
	reports, total, err := h.fulfillment.ListRejectionReports(c.Request.Context(), page, pageSize,
		GetFilters(c, "reconciliation_status"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, ListResponse{Items: reports, Pagination: NewPagination(page, pageSize, total)})
}

// StartReconciliation handles POST /api/v1/rejection-reports/:id/start.
func (h *WarehouseHandler) StartReconciliation(c *gin.Context) {
	report, err := h.fulfillment.StartReconciliation(c.Request.Context(), GetActor(c), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	h.hub.PublishDocumentUpdate("rejection_report", report.ID, "in_progress")
	Success(c, report)
}

type resolveRequest struct {
	ResolutionNotes string `json:"resolution_notes" binding:"required"`
}

// ResolveReconciliation handles POST /api/v1/rejection-reports/:id/resolve.
func (h *WarehouseHandler) ResolveReconciliation(c *gin.Context) {
	var req resolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}
	report, err := h.fulfillment.ResolveReconciliation(c.Request.Context(), GetActor(c), c.Param("id"), req.ResolutionNotes)
	if err != nil {
		HandleError(c, err)
		return
	}
	h.hub.PublishDocumentUpdate("rejection_report", report.ID, "resolved")
	Success(c, report)
}
