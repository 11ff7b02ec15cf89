package repository

import (
	"context"
	"strings"

	"github.com/poetrydeveloper/app-store-v2/internal/store/entity"
	"gorm.io/gorm"
)

// CatalogRepository 商品目录仓库（核心只读）
type CatalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// WithTx 绑定到事务
func (r *CatalogRepository) WithTx(tx *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: tx}
}

// FindProductByID 根据ID查找商品
func (r *CatalogRepository) FindProductByID(ctx context.Context, id string) (*entity.Product, error) {
	var p entity.Product
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// SearchByName 按名称子串搜索（folded 为大小写折叠后的关键字）
func (r *CatalogRepository) SearchByName(ctx context.Context, folded string, limit int) ([]entity.ProductHit, error) {
	var hits []entity.ProductHit
	err := r.db.WithContext(ctx).
		Model(&entity.Product{}).
		Select("id, name").
		Where(`search_name LIKE ? ESCAPE '\'`, "%"+escapeLike(folded)+"%").
		Order("name ASC").
		Limit(limit).
		Scan(&hits).Error
	return hits, err
}

// CategoryTree 查询根分类及其子分类
func (r *CatalogRepository) CategoryTree(ctx context.Context) ([]entity.Category, error) {
	var roots []entity.Category
	err := r.db.WithContext(ctx).
		Preload("Children", func(db *gorm.DB) *gorm.DB {
			return db.Order("name ASC")
		}).
		Where("parent_id IS NULL").
		Order("name ASC").
		Find(&roots).Error
	return roots, err
}

// CreateProduct 创建商品
func (r *CatalogRepository) CreateProduct(ctx context.Context, p *entity.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

// CreateCategory 创建分类
func (r *CatalogRepository) CreateCategory(ctx context.Context, c *entity.Category) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(s)
}
