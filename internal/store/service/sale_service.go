package service

import (
	"context"
	"fmt"
	"time"

	"github.com/poetrydeveloper/app-store-v2/internal/store/entity"
	"github.com/poetrydeveloper/app-store-v2/internal/store/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SaleService 营业日、事件与销售
type SaleService struct {
	db          *gorm.DB
	tradingRepo *repository.TradingRepository
	unitRepo    *repository.UnitRepository
	reportRepo  *repository.ReportRepository
	now         func() time.Time
	logger      *zap.Logger
}

// NewSaleService 创建销售服务
func NewSaleService(db *gorm.DB, repos *repository.Repositories, logger *zap.Logger) *SaleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SaleService{
		db:          db,
		tradingRepo: repos.Trading,
		unitRepo:    repos.Unit,
		reportRepo:  repos.Report,
		now:         time.Now,
		logger:      logger,
	}
}

// RecordEventRequest 登记事件请求
type RecordEventRequest struct {
	Type        string `json:"type" binding:"required"`
	Description string `json:"description"`
}

// RecordSaleRequest 登记销售请求
type RecordSaleRequest struct {
	Date          string          `json:"date"` // 默认当天
	ProductUnitID string          `json:"product_unit_id" binding:"required"`
	Price         decimal.Decimal `json:"price"`
	Description   string          `json:"description"`
}

// CreateTradingDay 创建营业日，已存在时直接返回
func (s *SaleService) CreateTradingDay(ctx context.Context, date string) (*entity.TradingDay, error) {
	day, err := parseDate(date, s.now())
	if err != nil {
		return nil, invalid("date", err)
	}
	td, err := s.tradingRepo.GetOrCreateDay(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("create trading day: %w", repository.Classify(err))
	}
	return td, nil
}

// GetTradingDay 营业日详情（含事件与销售）
func (s *SaleService) GetTradingDay(ctx context.Context, date string) (*entity.TradingDay, error) {
	day, err := parseDate(date, s.now())
	if err != nil {
		return nil, invalid("date", err)
	}
	return s.tradingRepo.FindDayByDate(ctx, day)
}

// RecordEvent 在营业日上登记事件
func (s *SaleService) RecordEvent(ctx context.Context, date string, req *RecordEventRequest) (*entity.Event, error) {
	if !entity.ValidEventType(req.Type) {
		return nil, invalidf("type", ErrInvalidEventType, "invalid event type %q", req.Type)
	}
	day, err := parseDate(date, s.now())
	if err != nil {
		return nil, invalid("date", err)
	}

	var ev *entity.Event
	err = repository.RunInTx(ctx, s.db, func(tx *gorm.DB) error {
		trading := s.tradingRepo.WithTx(tx)
		td, err := trading.GetOrCreateDay(ctx, day)
		if err != nil {
			return err
		}
		ev = &entity.Event{
			ID:           entity.NewID(),
			TradingDayID: td.ID,
			Type:         req.Type,
			Description:  req.Description,
		}
		return trading.CreateEvent(ctx, ev)
	})
	if err != nil {
		return nil, err
	}
	return ev, nil
}

// RecordSale 登记销售：营业日、sale 事件和销售记录在同一事务内写入，一个单品只能售出一次
func (s *SaleService) RecordSale(ctx context.Context, req *RecordSaleRequest) (*entity.Event, error) {
	if !req.Price.IsPositive() {
		return nil, invalid("price", ErrInvalidPrice)
	}
	day, err := parseDate(req.Date, s.now())
	if err != nil {
		return nil, invalid("date", err)
	}

	var ev *entity.Event
	err = repository.RunInTx(ctx, s.db, func(tx *gorm.DB) error {
		trading := s.tradingRepo.WithTx(tx)
		unit, err := s.unitRepo.WithTx(tx).FindByID(ctx, req.ProductUnitID)
		if err != nil {
			return fmt.Errorf("product unit %s: %w", req.ProductUnitID, err)
		}
		td, err := trading.GetOrCreateDay(ctx, day)
		if err != nil {
			return err
		}
		ev = &entity.Event{
			ID:           entity.NewID(),
			TradingDayID: td.ID,
			Type:         entity.EventTypeSale,
			Description:  req.Description,
		}
		if err := trading.CreateEvent(ctx, ev); err != nil {
			return err
		}
		sale := &entity.Sale{
			ID:            entity.NewID(),
			EventID:       ev.ID,
			ProductUnitID: unit.ID,
			Price:         req.Price,
		}
		if err := trading.CreateSale(ctx, sale); err != nil {
			if repository.IsUniqueViolation(err) {
				return invalidf("product_unit_id", ErrUnitAlreadySold, "product unit %s is already sold", unit.SerialNumber)
			}
			return err
		}
		sale.ProductUnit = unit
		ev.Sale = sale
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("sale recorded",
		zap.String("event_id", ev.ID),
		zap.String("product_unit_id", req.ProductUnitID),
		zap.String("price", req.Price.String()))
	return ev, nil
}

// DailyReport 区间内每个营业日的事件数、销售笔数与销售额
func (s *SaleService) DailyReport(ctx context.Context, from, to string) ([]repository.DailySalesRow, error) {
	now := s.now()
	end, err := parseDate(to, now)
	if err != nil {
		return nil, invalid("to", err)
	}
	start, err := parseDate(from, end.AddDate(0, 0, -30))
	if err != nil {
		return nil, invalid("from", err)
	}
	if start.After(end) {
		return nil, invalidf("from", ErrInvalidDate, "from must not be after to")
	}
	return s.reportRepo.DailySales(ctx, start, end)
}
