package repository

import (
	"context"

	"github.com/poetrydeveloper/app-store-v2/internal/store/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UnitRepository 单品仓库
type UnitRepository struct {
	db *gorm.DB
}

func NewUnitRepository(db *gorm.DB) *UnitRepository {
	return &UnitRepository{db: db}
}

// WithTx 绑定到事务
func (r *UnitRepository) WithTx(tx *gorm.DB) *UnitRepository {
	return &UnitRepository{db: tx}
}

// CountByDelivery 统计到货下的单品数
func (r *UnitRepository) CountByDelivery(ctx context.Context, deliveryID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&entity.ProductUnit{}).
		Where("delivery_id = ?", deliveryID).
		Count(&n).Error
	return n, err
}

// Insert 在保存点内插入单品；序列号冲突时只回滚本条，事务其余部分不受影响
func (r *UnitRepository) Insert(ctx context.Context, unit *entity.ProductUnit) error {
	return r.db.WithContext(ctx).Transaction(func(sp *gorm.DB) error {
		return sp.Omit(clause.Associations).Create(unit).Error
	})
}

// FindAll 查询单品列表
func (r *UnitRepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.ProductUnit, int64, error) {
	var items []entity.ProductUnit
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.ProductUnit{})

	if deliveryID := filters["delivery_id"]; deliveryID != "" {
		query = query.Where("store_product_units.delivery_id = ?", deliveryID)
	}
	if productID := filters["product_id"]; productID != "" {
		query = query.Where("store_product_units.product_id = ?", productID)
	}
	if search := filters["search"]; search != "" {
		query = query.
			Joins("LEFT JOIN store_products ON store_products.id = store_product_units.product_id").
			Where("store_product_units.serial_number LIKE ? OR store_products.code LIKE ? OR store_products.search_name LIKE ?",
				"%"+search+"%", "%"+search+"%", "%"+entity.FoldName(search)+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Preload("Product").
		Order("store_product_units.created_at DESC, store_product_units.serial_number ASC").
		Offset(offset).
		Limit(pageSize).
		Find(&items).Error

	return items, total, err
}

// FindBySerial 根据序列号查找单品
func (r *UnitRepository) FindBySerial(ctx context.Context, serial string) (*entity.ProductUnit, error) {
	var u entity.ProductUnit
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("serial_number = ?", serial).
		First(&u).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

// FindByID 根据ID查找单品
func (r *UnitRepository) FindByID(ctx context.Context, id string) (*entity.ProductUnit, error) {
	var u entity.ProductUnit
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

// ListForExport 导出用
func (r *UnitRepository) ListForExport(ctx context.Context, filters map[string]string) ([]entity.ProductUnit, error) {
	items, _, err := r.FindAll(ctx, 1, exportLimit, filters)
	return items, err
}
