package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/iniulez/spbsfi/internal/service"
	"github.com/iniulez/spbsfi/internal/sse"
)

// FRBHandler exposes the FRB lifecycle.
type FRBHandler struct {
	svc *service.FRBService
	hub *sse.Hub
}

func NewFRBHandler(svc *service.FRBService, hub *sse.Hub) *FRBHandler {
	return &FRBHandler{svc: svc, hub: hub}
}

func (h *FRBHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	frbs, total, err := h.svc.List(c.Request.Context(), page, pageSize,
		GetFilters(c, "project_id", "pm_id", "status", "search"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, ListResponse{Items: frbs, Pagination: NewPagination(page, pageSize, total)})
}

func (h *FRBHandler) Get(c *gin.Context) {
	frb, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, frb)
}

func (h *FRBHandler) Create(c *gin.Context) {
	var req service.CreateFRBRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}
	frb, err := h.svc.Create(c.Request.Context(), GetActor(c), &req)
	if err != nil {
		HandleError(c, err)
		return
	}
	h.hub.PublishDocumentUpdate("frb", frb.ID, "created")
	Created(c, frb)
}

func (h *FRBHandler) Update(c *gin.Context) {
	var req service.UpdateFRBRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}
	frb, err := h.svc.Update(c.Request.Context(), GetActor(c), c.Param("id"), &req)
	if err != nil {
		HandleError(c, err)
		return
	}
	h.hub.PublishDocumentUpdate("frb", frb.ID, "updated")
	Success(c, frb)
}

// Submit handles POST /api/v1/frbs/:id/submit.
func (h *FRBHandler) Submit(c *gin.Context) {
	frb, err := h.svc.Submit(c.Request.Context(), GetActor(c), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	h.hub.PublishDocumentUpdate("frb", frb.ID, "submitted")
	Success(c, frb)
}

type decideRequest struct {
	Approve bool   `json:"approve"`
	Reason  string `json:"reason"`
}

// Decide handles POST /api/v1/frbs/:id/decide, the director approval.
func (h *FRBHandler) Decide(c *gin.Context) {
	var req decideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}
	frb, err := h.svc.DirectorDecide(c.Request.Context(), GetActor(c), c.Param("id"), req.Approve, req.Reason)
	if err != nil {
		HandleError(c, err)
		return
	}
	h.hub.PublishDocumentUpdate("frb", frb.ID, "decided")
	Success(c, frb)
}

// Validate handles POST /api/v1/frbs/:id/validate, the purchasing split.
func (h *FRBHandler) Validate(c *gin.Context) {
	var req service.ValidateFRBRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}
	result, err := h.svc.Validate(c.Request.Context(), GetActor(c), c.Param("id"), &req)
	if err != nil {
		HandleError(c, err)
		return
	}
	h.hub.PublishDocumentUpdate("frb", result.FRB.ID, "validated")
	Success(c, result)
}
