package service

import (
	"fmt"

	"github.com/poetrydeveloper/app-store-v2/internal/config"
	"github.com/poetrydeveloper/app-store-v2/internal/store/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Services 服务集合
type Services struct {
	Catalog  *CatalogService
	Request  *RequestService
	Delivery *DeliveryService
	Unit     *UnitService
	Sale     *SaleService
	Export   *ExportService
}

// NewServices 创建服务集合；cache 为 nil 时不缓存商品搜索
func NewServices(db *gorm.DB, repos *repository.Repositories, cache SearchCache, cfg *config.Config, logger *zap.Logger) (*Services, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	serials, err := NewTimestampSerial(cfg.Units.SerialPrefix, nil)
	if err != nil {
		return nil, fmt.Errorf("serial generator: %w", err)
	}
	units := NewUnitService(db, repos, serials, cfg.Units.MaxAttempts, logger.Named("units"))

	return &Services{
		Catalog:  NewCatalogService(repos, cache, cfg.Catalog.SearchLimit, cfg.Catalog.CacheTTL, logger.Named("catalog")),
		Request:  NewRequestService(db, repos, logger.Named("requests")),
		Delivery: NewDeliveryService(db, repos, units, cfg.Units.AutoGenerate, logger.Named("deliveries")),
		Unit:     units,
		Sale:     NewSaleService(db, repos, logger.Named("sales")),
		Export:   NewExportService(repos),
	}, nil
}
