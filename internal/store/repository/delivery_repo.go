package repository

import (
	"context"

	"github.com/poetrydeveloper/app-store-v2/internal/store/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DeliveryRepository 到货记录仓库
type DeliveryRepository struct {
	db *gorm.DB
}

func NewDeliveryRepository(db *gorm.DB) *DeliveryRepository {
	return &DeliveryRepository{db: db}
}

// WithTx 绑定到事务
func (r *DeliveryRepository) WithTx(tx *gorm.DB) *DeliveryRepository {
	return &DeliveryRepository{db: tx}
}

// FindAll 查询到货列表
func (r *DeliveryRepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.Delivery, int64, error) {
	var items []entity.Delivery
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Delivery{})

	if status := filters["status"]; status != "" {
		query = query.Where("store_deliveries.status = ?", status)
	}
	switch filters["extra_shipment"] {
	case "true":
		query = query.Where("store_deliveries.extra_shipment = ?", true)
	case "false":
		query = query.Where("store_deliveries.extra_shipment = ?", false)
	}
	if requestItemID := filters["request_item_id"]; requestItemID != "" {
		query = query.Where("store_deliveries.request_item_id = ?", requestItemID)
	}
	if search := filters["search"]; search != "" {
		query = query.
			Joins("LEFT JOIN store_products ON store_products.id = store_deliveries.product_id").
			Where("store_products.code LIKE ? OR store_products.search_name LIKE ?",
				"%"+search+"%", "%"+entity.FoldName(search)+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Preload("Product").
		Order("store_deliveries.delivery_date DESC, store_deliveries.created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}

	if err := r.fillUnitCounts(ctx, items); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// FindByID 根据ID查找到货记录
func (r *DeliveryRepository) FindByID(ctx context.Context, id string) (*entity.Delivery, error) {
	var d entity.Delivery
	err := r.db.WithContext(ctx).
		Preload("Product").
		Preload("RequestItem").
		Preload("RequestItem.Request").
		Where("id = ?", id).
		First(&d).Error
	if err != nil {
		return nil, notFound(err)
	}
	count, err := r.countUnits(ctx, d.ID)
	if err != nil {
		return nil, err
	}
	d.UnitsCreated = count
	return &d, nil
}

// Lock 加行锁读取到货记录，必须在事务内调用
func (r *DeliveryRepository) Lock(ctx context.Context, id string) (*entity.Delivery, error) {
	var d entity.Delivery
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&d).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &d, nil
}

// Create 创建到货记录
func (r *DeliveryRepository) Create(ctx context.Context, d *entity.Delivery) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(d).Error
}

// Update 保存到货记录
func (r *DeliveryRepository) Update(ctx context.Context, d *entity.Delivery) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(d).Error
}

// Delete 删除到货记录及其单品
func (r *DeliveryRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Where("delivery_id = ?", id).Delete(&entity.ProductUnit{}).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Delivery{}).Error
}

// CountSoldUnits 该到货下已售出的单品数
func (r *DeliveryRepository) CountSoldUnits(ctx context.Context, id string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&entity.Sale{}).
		Joins("JOIN store_product_units ON store_product_units.id = store_sales.product_unit_id").
		Where("store_product_units.delivery_id = ?", id).
		Count(&n).Error
	return n, err
}

// ListForExport 按筛选条件查询全部到货（导出用）
func (r *DeliveryRepository) ListForExport(ctx context.Context, filters map[string]string) ([]entity.Delivery, error) {
	items, _, err := r.FindAll(ctx, 1, exportLimit, filters)
	return items, err
}

const exportLimit = 10000

func (r *DeliveryRepository) countUnits(ctx context.Context, deliveryID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&entity.ProductUnit{}).
		Where("delivery_id = ?", deliveryID).
		Count(&n).Error
	return n, err
}

func (r *DeliveryRepository) fillUnitCounts(ctx context.Context, items []entity.Delivery) error {
	if len(items) == 0 {
		return nil
	}
	ids := make([]string, len(items))
	for i := range items {
		ids[i] = items[i].ID
	}

	var rows []struct {
		DeliveryID string
		Cnt        int64
	}
	err := r.db.WithContext(ctx).
		Model(&entity.ProductUnit{}).
		Select("delivery_id, COUNT(*) AS cnt").
		Where("delivery_id IN ?", ids).
		Group("delivery_id").
		Scan(&rows).Error
	if err != nil {
		return err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.DeliveryID] = row.Cnt
	}
	for i := range items {
		items[i].UnitsCreated = counts[items[i].ID]
	}
	return nil
}
