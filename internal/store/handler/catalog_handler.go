package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/poetrydeveloper/app-store-v2/internal/store/service"
)

// CatalogHandler 商品目录
type CatalogHandler struct {
	svc *service.CatalogService
}

func NewCatalogHandler(svc *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

// Search GET /catalog/search?q=
func (h *CatalogHandler) Search(c *gin.Context) {
	hits, err := h.svc.SearchProducts(c.Request.Context(), c.Query("q"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, hits)
}

// Categories GET /catalog/categories
func (h *CatalogHandler) Categories(c *gin.Context) {
	tree, err := h.svc.CategoryTree(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, tree)
}

// GetProduct GET /catalog/products/:id
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	p, err := h.svc.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, p)
}

// CreateProduct POST /catalog/products
func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var req service.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}
	p, err := h.svc.CreateProduct(c.Request.Context(), &req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, p)
}

// CreateCategory POST /catalog/categories
func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var req service.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}
	cat, err := h.svc.CreateCategory(c.Request.Context(), &req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, cat)
}
