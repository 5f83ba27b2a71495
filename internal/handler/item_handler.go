package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/iniulez/spbsfi/internal/service"
)

// ItemHandler covers the item master and the stock ledger.
type ItemHandler struct {
	svc *service.StockService
}

func NewItemHandler(svc *service.StockService) *ItemHandler {
	return &ItemHandler{svc: svc}
}

func (h *ItemHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	items, total, err := h.svc.ListItems(c.Request.Context(), page, pageSize, GetFilters(c, "search"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, ListResponse{Items: items, Pagination: NewPagination(page, pageSize, total)})
}

func (h *ItemHandler) Get(c *gin.Context) {
	item, err := h.svc.GetItem(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, item)
}

func (h *ItemHandler) Create(c *gin.Context) {
	var req service.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}
	item, err := h.svc.CreateItem(c.Request.Context(), GetActor(c), &req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, item)
}

func (h *ItemHandler) Update(c *gin.Context) {
	var req service.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}
	item, err := h.svc.UpdateItem(c.Request.Context(), GetActor(c), c.Param("id"), &req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, item)
}

// Adjust handles POST /api/v1/items/:id/adjust, the manual stock correction.
func (h *ItemHandler) Adjust(c *gin.Context) {
	var req service.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}
	movement, err := h.svc.Adjust(c.Request.Context(), GetActor(c), c.Param("id"), &req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, movement)
}

// Movements handles GET /api/v1/items/:id/movements, the ledger history.
func (h *ItemHandler) Movements(c *gin.Context) {
	page, pageSize := GetPagination(c)
	movements, total, err := h.svc.ListMovements(c.Request.Context(), c.Param("id"), page, pageSize)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, ListResponse{Items: movements, Pagination: NewPagination(page, pageSize, total)})
}
