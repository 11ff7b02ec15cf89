package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/poetrydeveloper/app-store-v2/internal/store/service"
)

// SaleHandler 营业日、事件、销售与日报
type SaleHandler struct {
	svc *service.SaleService
}

func NewSaleHandler(svc *service.SaleService) *SaleHandler {
	return &SaleHandler{svc: svc}
}

type tradingDayRequest struct {
	Date string `json:"date"`
}

// CreateTradingDay POST /trading-days
func (h *SaleHandler) CreateTradingDay(c *gin.Context) {
	var req tradingDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}
	day, err := h.svc.CreateTradingDay(c.Request.Context(), req.Date)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, day)
}

// GetTradingDay GET /trading-days/:date
func (h *SaleHandler) GetTradingDay(c *gin.Context) {
	day, err := h.svc.GetTradingDay(c.Request.Context(), c.Param("date"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, day)
}

// RecordEvent POST /trading-days/:date/events
func (h *SaleHandler) RecordEvent(c *gin.Context) {
	var req service.RecordEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}
	ev, err := h.svc.RecordEvent(c.Request.Context(), c.Param("date"), &req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, ev)
}

// RecordSale POST /sales
func (h *SaleHandler) RecordSale(c *gin.Context) {
	var req service.RecordSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}
	ev, err := h.svc.RecordSale(c.Request.Context(), &req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, ev)
}

// DailyReport GET /reports/daily-sales?from=&to=
func (h *SaleHandler) DailyReport(c *gin.Context) {
	rows, err := h.svc.DailyReport(c.Request.Context(), c.Query("from"), c.Query("to"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"items": rows})
}
