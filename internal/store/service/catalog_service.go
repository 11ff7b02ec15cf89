package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/poetrydeveloper/app-store-v2/internal/store/entity"
	"github.com/poetrydeveloper/app-store-v2/internal/store/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SearchCache 商品搜索结果缓存
type SearchCache interface {
	GetHits(ctx context.Context, key string) ([]entity.ProductHit, bool)
	SetHits(ctx context.Context, key string, hits []entity.ProductHit, ttl time.Duration)
	Purge(ctx context.Context)
}

// CatalogService 商品目录服务
type CatalogService struct {
	catalogRepo *repository.CatalogRepository
	cache       SearchCache
	limit       int
	ttl         time.Duration
	logger      *zap.Logger
}

// NewCatalogService cache 可为 nil
func NewCatalogService(repos *repository.Repositories, cache SearchCache, limit int, ttl time.Duration, logger *zap.Logger) *CatalogService {
	if limit <= 0 {
		limit = 10
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{
		catalogRepo: repos.Catalog,
		cache:       cache,
		limit:       limit,
		ttl:         ttl,
		logger:      logger,
	}
}

// CreateProductRequest 创建商品请求
type CreateProductRequest struct {
	Code       string          `json:"code" binding:"required"`
	Name       string          `json:"name" binding:"required"`
	CategoryID *string         `json:"category_id"`
	Price      decimal.Decimal `json:"price"`
}

// CreateCategoryRequest 创建分类请求
type CreateCategoryRequest struct {
	Name     string  `json:"name" binding:"required"`
	ParentID *string `json:"parent_id"`
}

// SearchProducts 按名称不区分大小写的子串搜索，最多返回 limit 条
func (s *CatalogService) SearchProducts(ctx context.Context, q string) ([]entity.ProductHit, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return []entity.ProductHit{}, nil
	}
	key := entity.FoldName(q)

	if s.cache != nil {
		if hits, ok := s.cache.GetHits(ctx, key); ok {
			return hits, nil
		}
	}

	hits, err := s.catalogRepo.SearchByName(ctx, key, s.limit)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	if hits == nil {
		hits = []entity.ProductHit{}
	}
	if s.cache != nil {
		s.cache.SetHits(ctx, key, hits, s.ttl)
	}
	return hits, nil
}

// CategoryTree 分类树
func (s *CatalogService) CategoryTree(ctx context.Context) ([]entity.Category, error) {
	return s.catalogRepo.CategoryTree(ctx)
}

// GetProduct 商品详情
func (s *CatalogService) GetProduct(ctx context.Context, id string) (*entity.Product, error) {
	return s.catalogRepo.FindProductByID(ctx, id)
}

// CreateProduct 创建商品
func (s *CatalogService) CreateProduct(ctx context.Context, req *CreateProductRequest) (*entity.Product, error) {
	if req.Price.IsNegative() {
		return nil, invalid("price", ErrInvalidPrice)
	}
	p := &entity.Product{
		ID:         entity.NewID(),
		Code:       strings.TrimSpace(req.Code),
		Name:       strings.TrimSpace(req.Name),
		CategoryID: req.CategoryID,
		Price:      req.Price,
	}
	if err := s.catalogRepo.CreateProduct(ctx, p); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, invalidf("code", ErrDuplicateCode, "product code %q already exists", p.Code)
		}
		return nil, fmt.Errorf("create product: %w", repository.Classify(err))
	}
	if s.cache != nil {
		s.cache.Purge(ctx)
	}
	s.logger.Info("product created", zap.String("id", p.ID), zap.String("code", p.Code))
	return p, nil
}

// CreateCategory 创建分类
func (s *CatalogService) CreateCategory(ctx context.Context, req *CreateCategoryRequest) (*entity.Category, error) {
	c := &entity.Category{
		ID:       entity.NewID(),
		Name:     strings.TrimSpace(req.Name),
		ParentID: req.ParentID,
	}
	if err := s.catalogRepo.CreateCategory(ctx, c); err != nil {
		return nil, fmt.Errorf("create category: %w", repository.Classify(err))
	}
	return c, nil
}
