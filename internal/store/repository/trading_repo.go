package repository

import (
	"context"
	"errors"
	"time"

	"github.com/poetrydeveloper/app-store-v2/internal/store/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TradingRepository 营业日/事件/销售仓库
type TradingRepository struct {
	db *gorm.DB
}

func NewTradingRepository(db *gorm.DB) *TradingRepository {
	return &TradingRepository{db: db}
}

// WithTx 绑定到事务
func (r *TradingRepository) WithTx(tx *gorm.DB) *TradingRepository {
	return &TradingRepository{db: tx}
}

// FindDayByDate 按日期查找营业日（含事件和销售）
func (r *TradingRepository) FindDayByDate(ctx context.Context, date time.Time) (*entity.TradingDay, error) {
	var day entity.TradingDay
	err := r.db.WithContext(ctx).
		Preload("Events", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("Events.Sale").
		Preload("Events.Sale.ProductUnit").
		Where("date = ?", date).
		First(&day).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &day, nil
}

// CreateDay 创建营业日
func (r *TradingRepository) CreateDay(ctx context.Context, day *entity.TradingDay) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(day).Error
}

// GetOrCreateDay 获取或创建营业日；并发创建同一天时回读已存在的记录
func (r *TradingRepository) GetOrCreateDay(ctx context.Context, date time.Time) (*entity.TradingDay, error) {
	day, err := r.findDay(ctx, date)
	if err == nil {
		return day, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	day = &entity.TradingDay{ID: entity.NewID(), Date: date}
	err = r.db.WithContext(ctx).Transaction(func(sp *gorm.DB) error {
		return sp.Omit(clause.Associations).Create(day).Error
	})
	if err == nil {
		return day, nil
	}
	if IsUniqueViolation(err) {
		return r.findDay(ctx, date)
	}
	return nil, err
}

func (r *TradingRepository) findDay(ctx context.Context, date time.Time) (*entity.TradingDay, error) {
	var day entity.TradingDay
	if err := r.db.WithContext(ctx).Where("date = ?", date).First(&day).Error; err != nil {
		return nil, err
	}
	return &day, nil
}

// CreateEvent 创建事件
func (r *TradingRepository) CreateEvent(ctx context.Context, ev *entity.Event) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(ev).Error
}

// CreateSale 创建销售记录
func (r *TradingRepository) CreateSale(ctx context.Context, sale *entity.Sale) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(sale).Error
}
