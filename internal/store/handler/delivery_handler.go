package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/poetrydeveloper/app-store-v2/internal/store/service"
	"github.com/xuri/excelize/v2"
)

// DeliveryHandler 到货登记
type DeliveryHandler struct {
	svc    *service.DeliveryService
	units  *service.UnitService
	export *service.ExportService
}

func NewDeliveryHandler(svc *service.DeliveryService, units *service.UnitService, export *service.ExportService) *DeliveryHandler {
	return &DeliveryHandler{svc: svc, units: units, export: export}
}

var deliveryFilterKeys = []string{"status", "extra_shipment", "request_item_id", "search"}

type generateBatchRequest struct {
	IDs []string `json:"ids" binding:"required,min=1"`
}

// List GET /deliveries
func (h *DeliveryHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	items, total, err := h.svc.List(c.Request.Context(), page, pageSize, queryFilters(c, deliveryFilterKeys...))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, ListResponse{Items: items, Pagination: newPagination(page, pageSize, total)})
}

// Create POST /deliveries
func (h *DeliveryHandler) Create(c *gin.Context) {
	var req service.DeliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}
	d, err := h.svc.Create(c.Request.Context(), &req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, d)
}

// Get GET /deliveries/:id
func (h *DeliveryHandler) Get(c *gin.Context) {
	d, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, d)
}

// Update PUT /deliveries/:id
func (h *DeliveryHandler) Update(c *gin.Context) {
	var req service.DeliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}
	d, err := h.svc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, d)
}

// Delete DELETE /deliveries/:id
func (h *DeliveryHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		HandleError(c, err)
		return
	}
	Success(c, nil)
}

// GenerateUnits POST /deliveries/:id/units
func (h *DeliveryHandler) GenerateUnits(c *gin.Context) {
	out, err := h.units.GenerateUnits(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, out)
}

// GenerateBatch POST /deliveries/generate-units
func (h *DeliveryHandler) GenerateBatch(c *gin.Context) {
	var req generateBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}
	res := h.units.GenerateBatch(c.Request.Context(), req.IDs)
	Success(c, gin.H{
		"created":  res.Created,
		"skipped":  res.Skipped,
		"errors":   res.Errors,
		"messages": res.Messages(),
	})
}

// Export GET /deliveries/export
func (h *DeliveryHandler) Export(c *gin.Context) {
	f, filename, err := h.export.ExportDeliveries(c.Request.Context(), queryFilters(c, deliveryFilterKeys...))
	if err != nil {
		HandleError(c, err)
		return
	}
	writeXLSX(c, f, filename)
}

func writeXLSX(c *gin.Context, f *excelize.File, filename string) {
	defer f.Close()

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename=\""+filename+"\"")
	c.Header("Content-Transfer-Encoding", "binary")

	if err := f.Write(c.Writer); err != nil {
		InternalError(c, "write excel: "+err.Error())
	}
}
