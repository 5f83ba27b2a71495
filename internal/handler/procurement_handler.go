package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/iniulez/spbsfi/internal/service"
	"github.com/iniulez/spbsfi/internal/sse"
)

// ProcurementHandler exposes PRs and POs.
type ProcurementHandler struct {
	svc *service.ProcurementService
	hub *sse.Hub
}

func NewProcurementHandler(svc *service.ProcurementService, hub *sse.Hub) *ProcurementHandler {
	return &ProcurementHandler{svc: svc, hub: hub}
}

func (h *ProcurementHandler) ListPRs(c *gin.Context) {
	page, pageSize := GetPagination(c)
	prs, total, err := h.svc.ListPRs(c.Request.Context(), page, pageSize,
		GetFilters(c, "frb_id", "status", "search"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, ListResponse{Items: prs, Pagination: NewPagination(page, pageSize, total)})
}

func (h *ProcurementHandler) GetPR(c *gin.Context) {
	pr, err := h.svc.GetPR(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, pr)
}

// DecidePR handles POST /api/v1/prs/:id/decide.
func (h *ProcurementHandler) DecidePR(c *gin.Context) {
	var req decideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}
	pr, err := h.svc.DecidePR(c.Request.Context(), GetActor(c), c.Param("id"), req.Approve, req.Reason)
	if err != nil {
		HandleError(c, err)
		return
	}
	h.hub.PublishDocumentUpdate("pr", pr.ID, "decided")
	Success(c, pr)
}

func (h *ProcurementHandler) ListPOs(c *gin.Context) {
	page, pageSize := GetPagination(c)
	pos, total, err := h.svc.ListPOs(c.Request.Context(), page, pageSize,
		GetFilters(c, "supplier_id", "status", "search"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, ListResponse{Items: pos, Pagination: NewPagination(page, pageSize, total)})
}

func (h *ProcurementHandler) GetPO(c *gin.Context) {
	po, err := h.svc.GetPO(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, po)
}

// CreatePO handles POST /api/v1/pos.
func (h *ProcurementHandler) CreatePO(c *gin.Context) {
	var req service.CreatePORequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}
	po, err := h.svc.CreatePO(c.Request.Context(), GetActor(c), &req)
	if err != nil {
		HandleError(c, err)
		return
	}
	h.hub.PublishDocumentUpdate("po", po.ID, "created")
	Created(c, po)
}

// ShipPO handles POST /api/v1/pos/:id/ship.
func (h *ProcurementHandler) ShipPO(c *gin.Context) {
	po, err := h.svc.ShipPO(c.Request.Context(), GetActor(c), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	h.hub.PublishDocumentUpdate("po", po.ID, "shipped")
	Success(c, po)
}

type cancelRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// CancelPO handles POST /api/v1/pos/:id/cancel.
func (h *ProcurementHandler) CancelPO(c *gin.Context) {
	var req cancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}
	po, err := h.svc.CancelPO(c.Request.Context(), GetActor(c), c.Param("id"), req.Reason)
	if err != nil {
		HandleError(c, err)
		return
	}
	h.hub.PublishDocumentUpdate("po", po.ID, "canceled")
	Success(c, po)
}
