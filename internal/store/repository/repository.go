package repository

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"
	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("record not found")
)

// Repositories 门店仓库集合
type Repositories struct {
	Catalog  *CatalogRepository
	Request  *RequestRepository
	Delivery *DeliveryRepository
	Unit     *UnitRepository
	Trading  *TradingRepository
	Report   *ReportRepository
}

// NewRepositories 创建仓库集合；rdb 为同一连接池上的 sqlx 句柄，供报表查询使用
func NewRepositories(db *gorm.DB, rdb *sqlx.DB) *Repositories {
	return &Repositories{
		Catalog:  NewCatalogRepository(db),
		Request:  NewRequestRepository(db),
		Delivery: NewDeliveryRepository(db),
		Unit:     NewUnitRepository(db),
		Trading:  NewTradingRepository(db),
		Report:   NewReportRepository(rdb),
	}
}

// RunInTx 在事务中执行 fn，瞬时存储错误统一包装为 ErrTransient
func RunInTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	return Classify(db.WithContext(ctx).Transaction(fn))
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
