package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/iniulez/spbsfi/internal/repository"
	"github.com/iniulez/spbsfi/internal/service"
	"github.com/iniulez/spbsfi/internal/sse"
	"github.com/iniulez/spbsfi/internal/storage"
)

// Handlers is the handler collection the router registers.
type Handlers struct {
	Auth         *AuthHandler
	User         *UserHandler
	Project      *ProjectHandler
	Supplier     *SupplierHandler
	Item         *ItemHandler
	FRB          *FRBHandler
	Procurement  *ProcurementHandler
	Warehouse    *WarehouseHandler
	Notification *NotificationHandler
	Activity     *ActivityHandler
	Report       *ReportHandler
	Dashboard    *DashboardHandler
	Upload       *UploadHandler
	SSE          *SSEHandler
}

func NewHandlers(svc *service.Services, blobs *storage.BlobStore, hub *sse.Hub) *Handlers {
	return &Handlers{
		Auth:         NewAuthHandler(svc.Auth),
		User:         NewUserHandler(svc.User),
		Project:      NewProjectHandler(svc.Project),
		Supplier:     NewSupplierHandler(svc.Supplier),
		Item:         NewItemHandler(svc.Stock),
		FRB:          NewFRBHandler(svc.FRB, hub),
		Procurement:  NewProcurementHandler(svc.Procurement, hub),
		Warehouse:    NewWarehouseHandler(svc.Receiving, svc.Fulfillment, hub),
		Notification: NewNotificationHandler(svc.Notification),
		Activity:     NewActivityHandler(svc.Activity),
		Report:       NewReportHandler(svc.Report),
		Dashboard:    NewDashboardHandler(svc.Dashboard),
		Upload:       NewUploadHandler(blobs),
		SSE:          NewSSEHandler(hub),
	}
}

// Response is the envelope every endpoint answers with.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ListResponse carries a page of items.
type ListResponse struct {
	Items      interface{} `json:"items"`
	Pagination *Pagination `json:"pagination"`
}

type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

func NewPagination(page, pageSize int, total int64) *Pagination {
	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}
	return &Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      int(total),
		TotalPages: totalPages,
	}
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(200, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(201, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

func Error(c *gin.Context, code int, message string) {
	statusCode := code / 100
	if statusCode < 100 || statusCode > 599 {
		statusCode = 500
	}
	c.JSON(statusCode, Response{
		Code:    code,
		Message: message,
	})
}

func BadRequest(c *gin.Context, message string) {
	Error(c, 40000, message)
}

func Unauthorized(c *gin.Context, message string) {
	Error(c, 40100, message)
}

func Forbidden(c *gin.Context, message string) {
	Error(c, 40300, message)
}

func NotFound(c *gin.Context, message string) {
	Error(c, 40400, message)
}

func Conflict(c *gin.Context, message string) {
	Error(c, 40900, message)
}

func InternalError(c *gin.Context, message string) {
	Error(c, 50000, message)
}

// HandleError maps service errors onto the response envelope. Anything not
// recognized is a 500.
func HandleError(c *gin.Context, err error) {
	var validationErr *service.ValidationError
	var forbiddenErr *service.ForbiddenError
	var transitionErr *service.InvalidTransitionError
	var conflictErr *service.ConflictError
	var stockErr *service.StockInsufficientError

	switch {
	case errors.Is(err, repository.ErrNotFound):
		NotFound(c, "Resource not found")
	case errors.Is(err, service.ErrInvalidCredentials):
		Unauthorized(c, err.Error())
	case errors.As(err, &validationErr):
		BadRequest(c, validationErr.Error())
	case errors.As(err, &forbiddenErr):
		Forbidden(c, forbiddenErr.Error())
	case errors.As(err, &transitionErr):
		Conflict(c, transitionErr.Error())
	case errors.As(err, &conflictErr):
		Conflict(c, conflictErr.Error())
	case errors.As(err, &stockErr):
		Error(c, 40901, stockErr.Error())
	default:
		InternalError(c, err.Error())
	}
}

// GetUserID returns the authenticated user's ID.
func GetUserID(c *gin.Context) string {
	userID, _ := c.Get("user_id")
	if id, ok := userID.(string); ok {
		return id
	}
	return ""
}

// GetActor builds the acting identity from the JWT claims.
func GetActor(c *gin.Context) service.Actor {
	return service.Actor{
		ID:   GetUserID(c),
		Name: c.GetString("user_name"),
		Role: c.GetString("user_role"),
	}
}

// GetPagination reads page/page_size query params with sane bounds.
func GetPagination(c *gin.Context) (page, pageSize int) {
	page = 1
	pageSize = 20

	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v
		}
	}

	if ps := c.Query("page_size"); ps != "" {
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
			pageSize = v
		}
	}

	return page, pageSize
}

// GetFilters collects the named query params that are present.
func GetFilters(c *gin.Context, keys ...string) map[string]string {
	filters := make(map[string]string)
	for _, key := range keys {
		if v := c.Query(key); v != "" {
			filters[key] = v
		}
	}
	return filters
}
