package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/poetrydeveloper/app-store-v2/internal/store/entity"
	"github.com/poetrydeveloper/app-store-v2/internal/store/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DeliveryService 到货登记服务
type DeliveryService struct {
	db           *gorm.DB
	requestRepo  *repository.RequestRepository
	deliveryRepo *repository.DeliveryRepository
	unitRepo     *repository.UnitRepository
	units        *UnitService
	autoGenerate bool
	now          func() time.Time
	logger       *zap.Logger
}

// NewDeliveryService 创建到货服务；autoGenerate 为 true 时新建到货即生成单品
func NewDeliveryService(
	db *gorm.DB,
	repos *repository.Repositories,
	units *UnitService,
	autoGenerate bool,
	logger *zap.Logger,
) *DeliveryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DeliveryService{
		db:           db,
		requestRepo:  repos.Request,
		deliveryRepo: repos.Delivery,
		unitRepo:     repos.Unit,
		units:        units,
		autoGenerate: autoGenerate,
		now:          time.Now,
		logger:       logger,
	}
}

// DeliveryRequest 新建/编辑到货请求
type DeliveryRequest struct {
	RequestItemID string `json:"request_item_id" binding:"required"`
	DeliveryDate  string `json:"delivery_date"` // YYYY-MM-DD；新建默认当天，编辑默认保持原日期
	Quantity      int    `json:"quantity"`
	ExtraShipment bool   `json:"extra_shipment"`
	Notes         string `json:"notes"`
}

// build 日期为空时留零值，由 Save 在加锁后补齐
func (s *DeliveryService) build(req *DeliveryRequest) (*entity.Delivery, error) {
	var date time.Time
	if req.DeliveryDate != "" {
		parsed, err := parseDate(req.DeliveryDate, time.Time{})
		if err != nil {
			return nil, invalid("delivery_date", err)
		}
		date = parsed
	}
	return &entity.Delivery{
		RequestItemID: req.RequestItemID,
		DeliveryDate:  date,
		Quantity:      req.Quantity,
		ExtraShipment: req.ExtraShipment,
		Notes:         req.Notes,
	}, nil
}

// Create 登记到货
func (s *DeliveryService) Create(ctx context.Context, req *DeliveryRequest) (*entity.Delivery, error) {
	d, err := s.build(req)
	if err != nil {
		return nil, err
	}
	if err := s.Save(ctx, d); err != nil {
		return nil, err
	}
	return s.deliveryRepo.FindByID(ctx, d.ID)
}

// Update 编辑到货（可改数量、日期，也可改挂到其他行项）
func (s *DeliveryService) Update(ctx context.Context, id string, req *DeliveryRequest) (*entity.Delivery, error) {
	d, err := s.build(req)
	if err != nil {
		return nil, err
	}
	d.ID = id
	if err := s.Save(ctx, d); err != nil {
		return nil, err
	}
	return s.deliveryRepo.FindByID(ctx, d.ID)
}

// Save 在单个事务内校验并保存到货，同步行项的已交付数量与完成状态。
// d.ID 为空时新建，否则编辑已有记录。DeliveryDate 为零值时新建取当天，编辑保持原日期。
// 已生成单品的到货只能改日期、备注等，不能改数量或改挂行项。
func (s *DeliveryService) Save(ctx context.Context, d *entity.Delivery) error {
	creating := d.ID == ""
	var generated *UnitOutcome

	err := repository.RunInTx(ctx, s.db, func(tx *gorm.DB) error {
		deliveries := s.deliveryRepo.WithTx(tx)
		requests := s.requestRepo.WithTx(tx)

		var previous *entity.Delivery
		if !creating {
			prev, err := deliveries.Lock(ctx, d.ID)
			if err != nil {
				return err
			}
			previous = prev

			if err := s.checkUnitsUnchanged(ctx, s.unitRepo.WithTx(tx), d, previous); err != nil {
				return err
			}
		}
		if d.DeliveryDate.IsZero() {
			if previous != nil {
				d.DeliveryDate = previous.DeliveryDate
			} else {
				d.DeliveryDate = dateOnly(s.now())
			}
		}

		lines, err := lockLines(ctx, requests, d, previous)
		if err != nil {
			return err
		}
		item := lines[d.RequestItemID]

		if err := Validate(d, item, previous); err != nil {
			return err
		}

		snapshot(d, item)
		d.Status = DeriveStatus(d, item.Quantity)

		switch {
		case previous == nil:
			applyDelta(item, d.Quantity)
		case previous.RequestItemID == item.ID:
			applyDelta(item, d.Quantity-previous.Quantity)
		default:
			old := lines[previous.RequestItemID]
			applyDelta(old, -previous.Quantity)
			if err := requests.SaveItem(ctx, old); err != nil {
				return fmt.Errorf("save request item: %w", err)
			}
			applyDelta(item, d.Quantity)
		}
		if err := requests.SaveItem(ctx, item); err != nil {
			return fmt.Errorf("save request item: %w", err)
		}

		if creating {
			d.ID = entity.NewID()
			if err := deliveries.Create(ctx, d); err != nil {
				return fmt.Errorf("create delivery: %w", err)
			}
		} else {
			d.CreatedAt = previous.CreatedAt
			if err := deliveries.Update(ctx, d); err != nil {
				return fmt.Errorf("update delivery: %w", err)
			}
		}

		s.logger.Info("delivery reconciled",
			zap.String("delivery_id", d.ID),
			zap.String("request_item_id", item.ID),
			zap.Int("delivered", item.DeliveredQuantity),
			zap.Int("quantity", item.Quantity),
			zap.Bool("completed", item.IsCompleted))

		if creating && s.autoGenerate {
			out, err := s.units.generateInTx(ctx, tx, d.ID)
			if err != nil {
				return err
			}
			generated = out
		}
		return nil
	})
	if err != nil {
		if creating {
			d.ID = ""
		}
		return err
	}
	if generated != nil {
		d.UnitsCreated = int64(generated.Created)
	}
	return nil
}

// checkUnitsUnchanged 到货已有单品时，数量和所属行项必须保持不变
func (s *DeliveryService) checkUnitsUnchanged(ctx context.Context, units *repository.UnitRepository, d, previous *entity.Delivery) error {
	if d.Quantity == previous.Quantity && d.RequestItemID == previous.RequestItemID {
		return nil
	}
	n, err := units.CountByDelivery(ctx, previous.ID)
	if err != nil {
		return err
	}
	if n == 0 {
		return nil
	}
	if d.RequestItemID != previous.RequestItemID {
		return invalidf("request_item_id", ErrDeliveryHasUnits,
			"delivery has %d product units and cannot be moved to another request item", n)
	}
	return invalidf("quantity", ErrDeliveryHasUnits,
		"delivery has %d product units, quantity cannot change", n)
}

// lockLines 按 ID 升序锁定涉及的行项（改挂时为新旧两行）
func lockLines(ctx context.Context, requests *repository.RequestRepository, d, previous *entity.Delivery) (map[string]*entity.RequestItem, error) {
	ids := []string{d.RequestItemID}
	if previous != nil && previous.RequestItemID != d.RequestItemID {
		ids = append(ids, previous.RequestItemID)
	}
	sort.Strings(ids)

	lines := make(map[string]*entity.RequestItem, len(ids))
	for _, id := range ids {
		item, err := requests.LockItem(ctx, id)
		if err != nil {
			return nil, err
		}
		lines[id] = item
	}
	return lines, nil
}

// Delete 删除到货：回退行项已交付数量并删除其单品。单品已售出时拒绝删除
func (s *DeliveryService) Delete(ctx context.Context, id string) error {
	return repository.RunInTx(ctx, s.db, func(tx *gorm.DB) error {
		deliveries := s.deliveryRepo.WithTx(tx)
		requests := s.requestRepo.WithTx(tx)

		d, err := deliveries.Lock(ctx, id)
		if err != nil {
			return err
		}
		sold, err := deliveries.CountSoldUnits(ctx, d.ID)
		if err != nil {
			return err
		}
		if sold > 0 {
			return invalidf("id", ErrDeliveryHasSales, "delivery has %d sold units and cannot be deleted", sold)
		}

		item, err := requests.LockItem(ctx, d.RequestItemID)
		if err != nil {
			return err
		}
		applyDelta(item, -d.Quantity)
		if err := requests.SaveItem(ctx, item); err != nil {
			return fmt.Errorf("save request item: %w", err)
		}
		if err := deliveries.Delete(ctx, d.ID); err != nil {
			return fmt.Errorf("delete delivery: %w", err)
		}

		s.logger.Info("delivery deleted",
			zap.String("delivery_id", d.ID),
			zap.String("request_item_id", item.ID),
			zap.Int("delivered", item.DeliveredQuantity),
			zap.Bool("completed", item.IsCompleted))
		return nil
	})
}

// Get 到货详情
func (s *DeliveryService) Get(ctx context.Context, id string) (*entity.Delivery, error) {
	return s.deliveryRepo.FindByID(ctx, id)
}

// List 到货列表
func (s *DeliveryService) List(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.Delivery, int64, error) {
	return s.deliveryRepo.FindAll(ctx, page, pageSize, filters)
}
