package repository

import (
	"context"

	"github.com/poetrydeveloper/app-store-v2/internal/store/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RequestRepository 采购申请仓库
type RequestRepository struct {
	db *gorm.DB
}

func NewRequestRepository(db *gorm.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

// WithTx 绑定到事务
func (r *RequestRepository) WithTx(tx *gorm.DB) *RequestRepository {
	return &RequestRepository{db: tx}
}

// FindByID 根据ID查找申请（含行项）
func (r *RequestRepository) FindByID(ctx context.Context, id string) (*entity.Request, error) {
	var req entity.Request
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("Items.Product").
		Where("id = ?", id).
		First(&req).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &req, nil
}

// Create 创建申请及行项
func (r *RequestRepository) Create(ctx context.Context, req *entity.Request) error {
	return r.db.WithContext(ctx).Create(req).Error
}

// UpdateStatus 更新申请状态
func (r *RequestRepository) UpdateStatus(ctx context.Context, id, status string) error {
	res := r.db.WithContext(ctx).
		Model(&entity.Request{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// FindItemByID 查找行项（含申请和商品）
func (r *RequestRepository) FindItemByID(ctx context.Context, id string) (*entity.RequestItem, error) {
	var item entity.RequestItem
	err := r.db.WithContext(ctx).
		Preload("Request").
		Preload("Product").
		Where("id = ?", id).
		First(&item).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &item, nil
}

// LockItem 加行锁读取行项（SELECT ... FOR UPDATE），必须在事务内调用
func (r *RequestRepository) LockItem(ctx context.Context, id string) (*entity.RequestItem, error) {
	var item entity.RequestItem
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&item).Error
	if err != nil {
		return nil, notFound(err)
	}

	var req entity.Request
	if err := r.db.WithContext(ctx).Where("id = ?", item.RequestID).First(&req).Error; err != nil {
		return nil, notFound(err)
	}
	item.Request = &req
	return &item, nil
}

// SaveItem 保存行项
func (r *RequestRepository) SaveItem(ctx context.Context, item *entity.RequestItem) error {
	return r.db.WithContext(ctx).
		Model(&entity.RequestItem{}).
		Where("id = ?", item.ID).
		Updates(map[string]interface{}{
			"quantity":           item.Quantity,
			"delivered_quantity": item.DeliveredQuantity,
			"is_completed":       item.IsCompleted,
			"price_per_unit":     item.PricePerUnit,
			"supplier":           item.Supplier,
			"customer":           item.Customer,
		}).Error
}

// ListItemsByStatus 按申请状态查询行项
func (r *RequestRepository) ListItemsByStatus(ctx context.Context, status string) ([]entity.RequestItem, error) {
	var items []entity.RequestItem
	err := r.db.WithContext(ctx).
		Joins("JOIN store_requests ON store_requests.id = store_request_items.request_id").
		Preload("Request").
		Preload("Product").
		Where("store_requests.status = ?", status).
		Order("store_request_items.created_at DESC").
		Find(&items).Error
	return items, err
}

// ListOpenItems 可登记到货的行项：申请已下单(in_request/extra)且未交付完毕
func (r *RequestRepository) ListOpenItems(ctx context.Context) ([]entity.RequestItem, error) {
	var items []entity.RequestItem
	err := r.db.WithContext(ctx).
		Joins("JOIN store_requests ON store_requests.id = store_request_items.request_id").
		Preload("Request").
		Preload("Product").
		Where("store_requests.status IN ?", []string{entity.RequestStatusInRequest, entity.RequestStatusExtra}).
		Where("store_request_items.delivered_quantity < store_request_items.quantity").
		Order("store_request_items.created_at ASC").
		Find(&items).Error
	return items, err
}
