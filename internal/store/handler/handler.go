package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/poetrydeveloper/app-store-v2/internal/store/repository"
	"github.com/poetrydeveloper/app-store-v2/internal/store/service"
)

// Handlers 处理器集合
type Handlers struct {
	Catalog  *CatalogHandler
	Request  *RequestHandler
	Delivery *DeliveryHandler
	Unit     *UnitHandler
	Sale     *SaleHandler
}

// NewHandlers 创建处理器集合
func NewHandlers(svc *service.Services) *Handlers {
	return &Handlers{
		Catalog:  NewCatalogHandler(svc.Catalog),
		Request:  NewRequestHandler(svc.Request),
		Delivery: NewDeliveryHandler(svc.Delivery, svc.Unit, svc.Export),
		Unit:     NewUnitHandler(svc.Unit, svc.Export),
		Sale:     NewSaleHandler(svc.Sale),
	}
}

// Register 注册 /api/v1 下的路由
func (h *Handlers) Register(api *gin.RouterGroup) {
	catalog := api.Group("/catalog")
	{
		catalog.GET("/search", h.Catalog.Search)
		catalog.GET("/categories", h.Catalog.Categories)
		catalog.POST("/categories", h.Catalog.CreateCategory)
		catalog.GET("/products/:id", h.Catalog.GetProduct)
		catalog.POST("/products", h.Catalog.CreateProduct)
	}

	requests := api.Group("/requests")
	{
		requests.POST("", h.Request.Create)
		requests.GET("/:id", h.Request.Get)
		requests.PUT("/:id/status", h.Request.ChangeStatus)
	}

	items := api.Group("/request-items")
	{
		items.GET("", h.Request.ListItems)
		items.GET("/open", h.Request.ListOpenItems)
		items.POST("/change-status", h.Request.ChangeItemsStatus)
		items.PUT("/:id", h.Request.UpdateItem)
		items.PUT("/:id/completion", h.Request.SetCompletion)
	}

	deliveries := api.Group("/deliveries")
	{
		deliveries.GET("", h.Delivery.List)
		deliveries.POST("", h.Delivery.Create)
		deliveries.GET("/export", h.Delivery.Export)
		deliveries.POST("/generate-units", h.Delivery.GenerateBatch)
		deliveries.GET("/:id", h.Delivery.Get)
		deliveries.PUT("/:id", h.Delivery.Update)
		deliveries.DELETE("/:id", h.Delivery.Delete)
		deliveries.POST("/:id/units", h.Delivery.GenerateUnits)
	}

	units := api.Group("/units")
	{
		units.GET("", h.Unit.List)
		units.GET("/export", h.Unit.Export)
		units.GET("/:serial", h.Unit.GetBySerial)
	}

	days := api.Group("/trading-days")
	{
		days.POST("", h.Sale.CreateTradingDay)
		days.GET("/:date", h.Sale.GetTradingDay)
		days.POST("/:date/events", h.Sale.RecordEvent)
	}

	api.POST("/sales", h.Sale.RecordSale)
	api.GET("/reports/daily-sales", h.Sale.DailyReport)
}

// Response 通用响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ListResponse 列表响应结构
type ListResponse struct {
	Items      interface{} `json:"items"`
	Pagination *Pagination `json:"pagination"`
}

// Pagination 分页信息
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

func newPagination(page, pageSize int, total int64) *Pagination {
	return &Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      int(total),
		TotalPages: int((total + int64(pageSize) - 1) / int64(pageSize)),
	}
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(200, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Created 创建成功响应
func Created(c *gin.Context, data interface{}) {
	c.JSON(201, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Error 错误响应
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

// BadRequest 参数错误响应
func BadRequest(c *gin.Context, message string) {
	Error(c, 40000, message)
}

// NotFound 资源不存在响应
func NotFound(c *gin.Context, message string) {
	Error(c, 40400, message)
}

// Conflict 冲突响应
func Conflict(c *gin.Context, message string) {
	Error(c, 40900, message)
}

// InternalError 服务器错误响应
func InternalError(c *gin.Context, message string) {
	Error(c, 50000, message)
}

// ServiceUnavailable 存储暂时不可用，客户端可重试
func ServiceUnavailable(c *gin.Context, message string) {
	Error(c, 50300, message)
}

// HandleError 按错误类型映射响应
func HandleError(c *gin.Context, err error) {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		BadRequest(c, ve.Error())
	case errors.Is(err, repository.ErrNotFound):
		NotFound(c, err.Error())
	case errors.Is(err, service.ErrMissingProduct):
		BadRequest(c, err.Error())
	case errors.Is(err, service.ErrSerialGenerationExhausted):
		Conflict(c, err.Error())
	case errors.Is(err, repository.ErrTransient):
		ServiceUnavailable(c, err.Error())
	default:
		InternalError(c, err.Error())
	}
}

// GetPagination 从请求获取分页参数
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

// queryFilters 收集非空查询参数
func queryFilters(c *gin.Context, keys ...string) map[string]string {
	filters := make(map[string]string, len(keys))
	for _, k := range keys {
		if v := c.Query(k); v != "" {
			filters[k] = v
		}
	}
	return filters
}
