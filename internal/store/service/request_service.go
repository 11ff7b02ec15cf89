package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/poetrydeveloper/app-store-v2/internal/store/entity"
	"github.com/poetrydeveloper/app-store-v2/internal/store/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RequestService 采购申请服务
type RequestService struct {
	db          *gorm.DB
	requestRepo *repository.RequestRepository
	catalogRepo *repository.CatalogRepository
	reportRepo  *repository.ReportRepository
	logger      *zap.Logger
}

// NewRequestService 创建申请服务
func NewRequestService(db *gorm.DB, repos *repository.Repositories, logger *zap.Logger) *RequestService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RequestService{
		db:          db,
		requestRepo: repos.Request,
		catalogRepo: repos.Catalog,
		reportRepo:  repos.Report,
		logger:      logger,
	}
}

// CreateRequestRequest 创建申请请求
type CreateRequestRequest struct {
	Status string                   `json:"status"`
	Notes  string                   `json:"notes"`
	Items  []CreateRequestItemInput `json:"items" binding:"dive"`
}

// CreateRequestItemInput 申请行项
type CreateRequestItemInput struct {
	ProductID    string          `json:"product_id" binding:"required"`
	Quantity     int             `json:"quantity"`
	PricePerUnit decimal.Decimal `json:"price_per_unit"`
	Supplier     string          `json:"supplier"`
	Customer     string          `json:"customer"`
}

// UpdateItemRequest 编辑行项请求，未传的字段保持不变
type UpdateItemRequest struct {
	Quantity     *int             `json:"quantity"`
	PricePerUnit *decimal.Decimal `json:"price_per_unit"`
	Supplier     *string          `json:"supplier"`
	Customer     *string          `json:"customer"`
}

// ItemView 行项及其派生值
type ItemView struct {
	entity.RequestItem
	TotalCost decimal.Decimal `json:"total_cost"`
	Progress  string          `json:"progress"`
}

func viewOf(item *entity.RequestItem) ItemView {
	return ItemView{
		RequestItem: *item,
		TotalCost:   ComputeTotalCost(item),
		Progress:    ComputeProgress(item).String(),
	}
}

func viewsOf(items []entity.RequestItem) []ItemView {
	views := make([]ItemView, len(items))
	for i := range items {
		views[i] = viewOf(&items[i])
	}
	return views
}

// RequestDetail 申请详情
type RequestDetail struct {
	*entity.Request
	Items      []ItemView                       `json:"items"`
	Completion *repository.RequestCompletionRow `json:"completion"`
	Completed  bool                             `json:"completed"`
}

// CreateRequest 创建申请及行项
func (s *RequestService) CreateRequest(ctx context.Context, req *CreateRequestRequest) (*RequestDetail, error) {
	status := req.Status
	if status == "" {
		status = entity.RequestStatusCandidate
	}
	if !entity.ValidRequestStatus(status) {
		return nil, invalidf("status", ErrInvalidStatus, "invalid status %q", status)
	}

	r := &entity.Request{ID: entity.NewID(), Status: status, Notes: req.Notes}
	for i, in := range req.Items {
		if in.Quantity < 1 {
			return nil, invalidf(fmt.Sprintf("items[%d].quantity", i), ErrInvalidQuantity, "item %d: quantity must be at least 1", i)
		}
		if in.PricePerUnit.IsNegative() {
			return nil, invalidf(fmt.Sprintf("items[%d].price_per_unit", i), ErrInvalidPrice, "item %d: price must not be negative", i)
		}
		if _, err := s.catalogRepo.FindProductByID(ctx, in.ProductID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, invalidf(fmt.Sprintf("items[%d].product_id", i), ErrUnknownProduct, "item %d: product %s does not exist", i, in.ProductID)
			}
			return nil, err
		}
		r.Items = append(r.Items, entity.RequestItem{
			ID:           entity.NewID(),
			RequestID:    r.ID,
			ProductID:    in.ProductID,
			Quantity:     in.Quantity,
			PricePerUnit: in.PricePerUnit,
			Supplier:     orDefault(in.Supplier, entity.DefaultSupplier),
			Customer:     orDefault(in.Customer, entity.DefaultCustomer),
		})
	}

	if err := repository.Classify(s.requestRepo.Create(ctx, r)); err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	return s.GetRequest(ctx, r.ID)
}

// GetRequest 申请详情（含行项和完成度）
func (s *RequestService) GetRequest(ctx context.Context, id string) (*RequestDetail, error) {
	r, err := s.requestRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	completion, err := s.reportRepo.RequestCompletion(ctx, id)
	if err != nil {
		return nil, err
	}
	return &RequestDetail{
		Request:    r,
		Items:      viewsOf(r.Items),
		Completion: completion,
		Completed:  completion.AllCompleted(),
	}, nil
}

// ChangeRequestStatus 修改申请状态
func (s *RequestService) ChangeRequestStatus(ctx context.Context, requestID, status string) error {
	if !entity.ValidRequestStatus(status) {
		return invalidf("status", ErrInvalidStatus, "invalid status %q", status)
	}
	if err := s.requestRepo.UpdateStatus(ctx, requestID, status); err != nil {
		return err
	}
	s.logger.Info("request status changed", zap.String("request_id", requestID), zap.String("status", status))
	return nil
}

// ChangeItemsRequestStatus 按行项批量修改其所属申请的状态，返回受影响的申请ID
func (s *RequestService) ChangeItemsRequestStatus(ctx context.Context, itemIDs []string, status string) ([]string, error) {
	if !entity.ValidRequestStatus(status) {
		return nil, invalidf("status", ErrInvalidStatus, "invalid status %q", status)
	}

	var changed []string
	err := repository.RunInTx(ctx, s.db, func(tx *gorm.DB) error {
		requests := s.requestRepo.WithTx(tx)
		seen := map[string]bool{}
		for _, id := range itemIDs {
			item, err := requests.FindItemByID(ctx, id)
			if err != nil {
				return fmt.Errorf("request item %s: %w", id, err)
			}
			if seen[item.RequestID] {
				continue
			}
			seen[item.RequestID] = true
			if err := requests.UpdateStatus(ctx, item.RequestID, status); err != nil {
				return err
			}
			changed = append(changed, item.RequestID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("request status changed", zap.Strings("request_ids", changed), zap.String("status", status))
	return changed, nil
}

// UpdateItem 编辑行项；数量变化后经对账函数重算完成状态
func (s *RequestService) UpdateItem(ctx context.Context, id string, req *UpdateItemRequest) (*ItemView, error) {
	var view ItemView
	err := repository.RunInTx(ctx, s.db, func(tx *gorm.DB) error {
		requests := s.requestRepo.WithTx(tx)
		item, err := requests.LockItem(ctx, id)
		if err != nil {
			return err
		}

		if req.Quantity != nil {
			item.Quantity = *req.Quantity
		}
		if req.PricePerUnit != nil {
			item.PricePerUnit = *req.PricePerUnit
		}
		if req.Supplier != nil {
			item.Supplier = *req.Supplier
		}
		if req.Customer != nil {
			item.Customer = *req.Customer
		}

		if item.Quantity < 1 {
			return invalid("quantity", ErrInvalidQuantity)
		}
		if !item.PricePerUnit.IsPositive() {
			return invalid("price_per_unit", ErrInvalidPrice)
		}

		reconcile(item, item.DeliveredQuantity)
		if err := requests.SaveItem(ctx, item); err != nil {
			return fmt.Errorf("save request item: %w", err)
		}
		view = viewOf(item)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// SetItemCompletion 手工标记完成：完成时已交付数量置为申请数量，取消时置 0
func (s *RequestService) SetItemCompletion(ctx context.Context, id string, completed bool) (*ItemView, error) {
	var view ItemView
	err := repository.RunInTx(ctx, s.db, func(tx *gorm.DB) error {
		requests := s.requestRepo.WithTx(tx)
		item, err := requests.LockItem(ctx, id)
		if err != nil {
			return err
		}
		if completed {
			reconcile(item, item.Quantity)
		} else {
			reconcile(item, 0)
		}
		if err := requests.SaveItem(ctx, item); err != nil {
			return fmt.Errorf("save request item: %w", err)
		}
		view = viewOf(item)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("request item completion overridden",
		zap.String("request_item_id", id),
		zap.Bool("completed", completed),
		zap.Int("delivered", view.DeliveredQuantity))
	return &view, nil
}

// ListItemsByStatus 按申请状态列出行项，默认 candidate
func (s *RequestService) ListItemsByStatus(ctx context.Context, status string) ([]ItemView, error) {
	if status == "" {
		status = entity.RequestStatusCandidate
	}
	if !entity.ValidRequestStatus(status) {
		return nil, invalidf("status", ErrInvalidStatus, "invalid status %q", status)
	}
	items, err := s.requestRepo.ListItemsByStatus(ctx, status)
	if err != nil {
		return nil, err
	}
	return viewsOf(items), nil
}

// ListOpenItems 可登记到货的行项
func (s *RequestService) ListOpenItems(ctx context.Context) ([]ItemView, error) {
	items, err := s.requestRepo.ListOpenItems(ctx)
	if err != nil {
		return nil, err
	}
	return viewsOf(items), nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
