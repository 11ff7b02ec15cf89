package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/poetrydeveloper/app-store-v2/internal/store/entity"
	"github.com/poetrydeveloper/app-store-v2/internal/store/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UnitService 单品生成与查询
type UnitService struct {
	db           *gorm.DB
	deliveryRepo *repository.DeliveryRepository
	unitRepo     *repository.UnitRepository
	catalogRepo  *repository.CatalogRepository
	serials      SerialGenerator
	maxAttempts  int
	now          func() time.Time
	logger       *zap.Logger
}

// NewUnitService 创建单品服务
func NewUnitService(
	db *gorm.DB,
	repos *repository.Repositories,
	serials SerialGenerator,
	maxAttempts int,
	logger *zap.Logger,
) *UnitService {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UnitService{
		db:           db,
		deliveryRepo: repos.Delivery,
		unitRepo:     repos.Unit,
		catalogRepo:  repos.Catalog,
		serials:      serials,
		maxAttempts:  maxAttempts,
		now:          time.Now,
		logger:       logger,
	}
}

// UnitOutcome 单个到货的生成结果
type UnitOutcome struct {
	DeliveryID string `json:"delivery_id"`
	Created    int    `json:"created"`
	Skipped    bool   `json:"skipped"`
}

// GenerateUnits 为到货生成单品：已有单品则跳过，否则恰好生成 quantity 个
func (s *UnitService) GenerateUnits(ctx context.Context, deliveryID string) (*UnitOutcome, error) {
	var out *UnitOutcome
	err := repository.RunInTx(ctx, s.db, func(tx *gorm.DB) error {
		var err error
		out, err = s.generateInTx(ctx, tx, deliveryID)
		return err
	})
	if err != nil {
		s.logger.Error("generate units failed", zap.String("delivery_id", deliveryID), zap.Error(err))
		return nil, err
	}
	s.logger.Info("generate units",
		zap.String("delivery_id", deliveryID),
		zap.Int("created", out.Created),
		zap.Bool("skipped", out.Skipped))
	return out, nil
}

// generateInTx 在调用方事务内生成单品，任何错误都使整个事务回滚
func (s *UnitService) generateInTx(ctx context.Context, tx *gorm.DB, deliveryID string) (*UnitOutcome, error) {
	d, err := s.deliveryRepo.WithTx(tx).Lock(ctx, deliveryID)
	if err != nil {
		return nil, err
	}
	out := &UnitOutcome{DeliveryID: d.ID}

	units := s.unitRepo.WithTx(tx)
	existing, err := units.CountByDelivery(ctx, d.ID)
	if err != nil {
		return nil, err
	}
	if existing > 0 {
		out.Skipped = true
		return out, nil
	}

	if d.ProductID == "" {
		return nil, ErrMissingProduct
	}
	product, err := s.catalogRepo.WithTx(tx).FindProductByID(ctx, d.ProductID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrMissingProduct
	}
	if err != nil {
		return nil, err
	}

	for i := 0; i < d.Quantity; i++ {
		if err := s.issueOne(ctx, units, product, d); err != nil {
			return nil, err
		}
		out.Created++
	}
	return out, nil
}

// issueOne 插入一个单品，序列号冲突或瞬时错误时重新生成，最多 maxAttempts 次
func (s *UnitService) issueOne(ctx context.Context, units *repository.UnitRepository, product *entity.Product, d *entity.Delivery) error {
	var lastErr error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		unit := &entity.ProductUnit{
			ID:           entity.NewID(),
			SerialNumber: s.serials.Generate(product, d, s.now()),
			ProductID:    product.ID,
			DeliveryID:   d.ID,
		}
		err := units.Insert(ctx, unit)
		if err == nil {
			return nil
		}
		if !repository.IsUniqueViolation(err) && !repository.IsTransient(err) {
			return fmt.Errorf("insert product unit: %w", err)
		}
		lastErr = err
		s.logger.Warn("serial collision, regenerating",
			zap.String("delivery_id", d.ID),
			zap.String("serial", unit.SerialNumber),
			zap.Int("attempt", attempt),
			zap.Error(err))
	}
	return fmt.Errorf("%w: delivery %s after %d attempts: %v",
		ErrSerialGenerationExhausted, d.ID, s.maxAttempts, lastErr)
}

// BatchResult 批量生成结果
type BatchResult struct {
	Created int      `json:"created"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors"`
}

// Messages 面向用户的提示：成功数、跳过数、逐条错误
func (r *BatchResult) Messages() []string {
	var msgs []string
	if r.Created > 0 {
		msgs = append(msgs, fmt.Sprintf("created %d product units", r.Created))
	}
	if r.Skipped > 0 {
		msgs = append(msgs, fmt.Sprintf("skipped %d deliveries, units already exist", r.Skipped))
	}
	return append(msgs, r.Errors...)
}

// GenerateBatch 批量生成，每个到货独立事务，单个失败不影响其余
func (s *UnitService) GenerateBatch(ctx context.Context, deliveryIDs []string) *BatchResult {
	res := &BatchResult{Errors: []string{}}
	seen := make(map[string]bool, len(deliveryIDs))

	for _, id := range deliveryIDs {
		if seen[id] {
			continue
		}
		seen[id] = true

		if err := ctx.Err(); err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("delivery %s: %v", id, err))
			continue
		}
		out, err := s.GenerateUnits(ctx, id)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("delivery %s: %v", id, err))
			continue
		}
		if out.Skipped {
			res.Skipped++
			continue
		}
		res.Created += out.Created
	}
	return res
}

// ListUnits 单品列表
func (s *UnitService) ListUnits(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.ProductUnit, int64, error) {
	return s.unitRepo.FindAll(ctx, page, pageSize, filters)
}

// GetBySerial 按序列号查询单品
func (s *UnitService) GetBySerial(ctx context.Context, serial string) (*entity.ProductUnit, error) {
	return s.unitRepo.FindBySerial(ctx, serial)
}
