package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/poetrydeveloper/app-store-v2/internal/store/service"
)

// RequestHandler 采购申请与行项
type RequestHandler struct {
	svc *service.RequestService
}

func NewRequestHandler(svc *service.RequestService) *RequestHandler {
	return &RequestHandler{svc: svc}
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

type itemsStatusRequest struct {
	IDs    []string `json:"ids" binding:"required,min=1"`
	Status string   `json:"status" binding:"required"`
}

type completionRequest struct {
	Completed *bool `json:"completed" binding:"required"`
}

// Create POST /requests
func (h *RequestHandler) Create(c *gin.Context) {
	var req service.CreateRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}
	detail, err := h.svc.CreateRequest(c.Request.Context(), &req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, detail)
}

// Get GET /requests/:id
func (h *RequestHandler) Get(c *gin.Context) {
	detail, err := h.svc.GetRequest(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, detail)
}

// ChangeStatus PUT /requests/:id/status
func (h *RequestHandler) ChangeStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}
	if err := h.svc.ChangeRequestStatus(c.Request.Context(), c.Param("id"), req.Status); err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"id": c.Param("id"), "status": req.Status})
}

// ListItems GET /request-items?status=
func (h *RequestHandler) ListItems(c *gin.Context) {
	items, err := h.svc.ListItemsByStatus(c.Request.Context(), c.Query("status"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"items": items})
}

// ListOpenItems GET /request-items/open
func (h *RequestHandler) ListOpenItems(c *gin.Context) {
	items, err := h.svc.ListOpenItems(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"items": items})
}

// UpdateItem PUT /request-items/:id
func (h *RequestHandler) UpdateItem(c *gin.Context) {
	var req service.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}
	item, err := h.svc.UpdateItem(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, item)
}

// SetCompletion PUT /request-items/:id/completion
func (h *RequestHandler) SetCompletion(c *gin.Context) {
	var req completionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}
	item, err := h.svc.SetItemCompletion(c.Request.Context(), c.Param("id"), *req.Completed)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, item)
}

// ChangeItemsStatus POST /request-items/change-status
func (h *RequestHandler) ChangeItemsStatus(c *gin.Context) {
	var req itemsStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}
	changed, err := h.svc.ChangeItemsRequestStatus(c.Request.Context(), req.IDs, req.Status)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"request_ids": changed, "status": req.Status})
}
