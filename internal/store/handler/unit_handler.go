package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/poetrydeveloper/app-store-v2/internal/store/service"
)

// UnitHandler 单品查询与导出
type UnitHandler struct {
	svc    *service.UnitService
	export *service.ExportService
}

func NewUnitHandler(svc *service.UnitService, export *service.ExportService) *UnitHandler {
	return &UnitHandler{svc: svc, export: export}
}

var unitFilterKeys = []string{"delivery_id", "product_id", "search"}

// List GET /units
func (h *UnitHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	items, total, err := h.svc.ListUnits(c.Request.Context(), page, pageSize, queryFilters(c, unitFilterKeys...))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, ListResponse{Items: items, Pagination: newPagination(page, pageSize, total)})
}

// GetBySerial GET /units/:serial
func (h *UnitHandler) GetBySerial(c *gin.Context) {
	u, err := h.svc.GetBySerial(c.Request.Context(), c.Param("serial"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, u)
}

// Export GET /units/export
func (h *UnitHandler) Export(c *gin.Context) {
	f, filename, err := h.export.ExportUnits(c.Request.Context(), queryFilters(c, unitFilterKeys...))
	if err != nil {
		HandleError(c, err)
		return
	}
	writeXLSX(c, f, filename)
}
