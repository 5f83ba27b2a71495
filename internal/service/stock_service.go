package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/iniulez/spbsfi/internal/entity"
	"github.com/iniulez/spbsfi/internal/repository"
	"gorm.io/gorm"
)

// StockService owns the item master and the single stock-mutation path.
// Every workflow step that moves stock (GRN in, checklist out, rejection
// reversal) funnels through adjustStock so the non-negative invariant is
// enforced in exactly one place.
type StockService struct {
	db           *gorm.DB
	itemRepo     *repository.ItemRepository
	activityRepo *repository.ActivityLogRepository
}

func NewStockService(db *gorm.DB, itemRepo *repository.ItemRepository, activityRepo *repository.ActivityLogRepository) *StockService {
	return &StockService{db: db, itemRepo: itemRepo, activityRepo: activityRepo}
}

// adjustStock applies one ledger adjustment, translating repository
// sentinels into the service's typed errors. tx may be nil for standalone
// adjustments; cascades pass their enclosing transaction.
func adjustStock(ctx context.Context, tx *gorm.DB, itemRepo *repository.ItemRepository, itemID string, quantity float64, direction, refType, refID, notes, actorID string) (*entity.StockMovement, error) {
	movement, err := itemRepo.AdjustStock(ctx, tx, itemID, quantity, direction, refType, refID, notes, actorID)
	if err != nil {
		if errors.Is(err, repository.ErrInsufficientStock) {
			return nil, &StockInsufficientError{ItemID: itemID, Requested: quantity}
		}
		return nil, err
	}
	return movement, nil
}

func (s *StockService) ListItems(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.Item, int64, error) {
	return s.itemRepo.FindAll(ctx, page, pageSize, filters)
}

func (s *StockService) GetItem(ctx context.Context, id string) (*entity.Item, error) {
	return s.itemRepo.FindByID(ctx, id)
}

// CreateItemRequest carries a new item master record.
type CreateItemRequest struct {
	ItemName           string  `json:"item_name" binding:"required"`
	Description        string  `json:"description"`
	Unit               string  `json:"unit"`
	InitialStock       float64 `json:"initial_stock"`
	EstimatedUnitPrice float64 `json:"estimated_unit_price"`
}

func (s *StockService) CreateItem(ctx context.Context, actor Actor, req *CreateItemRequest) (*entity.Item, error) {
	if err := ensureRole(actor, actionItemManage); err != nil {
		return nil, err
	}
	if req.InitialStock < 0 {
		return nil, newValidationError("initial_stock", "must not be negative")
	}
	if req.EstimatedUnitPrice < 0 {
		return nil, newValidationError("estimated_unit_price", "must not be negative")
	}

	unit := req.Unit
	if unit == "" {
		unit = "pcs"
	}
	item := &entity.Item{
		ID:                 uuid.New().String()[:32],
		ItemName:           req.ItemName,
		Description:        req.Description,
		Unit:               unit,
		CurrentStock:       req.InitialStock,
		EstimatedUnitPrice: req.EstimatedUnitPrice,
	}
	if err := s.itemRepo.Create(ctx, item); err != nil {
		return nil, err
	}
	s.activityRepo.LogActivity(ctx, actor.ID, actor.Name, actor.Role,
		fmt.Sprintf("Created item %s", item.ItemName), item.ID)
	return item, nil
}

// UpdateItemRequest edits master fields. Stock is not editable here.
type UpdateItemRequest struct {
	ItemName           *string  `json:"item_name"`
	Description        *string  `json:"description"`
	Unit               *string  `json:"unit"`
	EstimatedUnitPrice *float64 `json:"estimated_unit_price"`
}

func (s *StockService) UpdateItem(ctx context.Context, actor Actor, id string, req *UpdateItemRequest) (*entity.Item, error) {
	if err := ensureRole(actor, actionItemManage); err != nil {
		return nil, err
	}
	item, err := s.itemRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.ItemName != nil {
		item.ItemName = *req.ItemName
	}
	if req.Description != nil {
		item.Description = *req.Description
	}
	if req.Unit != nil {
		item.Unit = *req.Unit
	}
	if req.EstimatedUnitPrice != nil {
		if *req.EstimatedUnitPrice < 0 {
			return nil, newValidationError("estimated_unit_price", "must not be negative")
		}
		item.EstimatedUnitPrice = *req.EstimatedUnitPrice
	}

	if err := s.itemRepo.Update(ctx, item); err != nil {
		return nil, err
	}
	s.activityRepo.LogActivity(ctx, actor.ID, actor.Name, actor.Role,
		fmt.Sprintf("Updated item %s", item.ItemName), item.ID)
	return item, nil
}

// AdjustStockRequest is a manual warehouse/admin correction.
type AdjustStockRequest struct {
	Quantity  float64 `json:"quantity" binding:"required"`
	Direction string  `json:"direction" binding:"required"`
	Notes     string  `json:"notes"`
}

func (s *StockService) Adjust(ctx context.Context, actor Actor, itemID string, req *AdjustStockRequest) (*entity.StockMovement, error) {
	if err := ensureRole(actor, actionStockAdjust); err != nil {
		return nil, err
	}
	if req.Quantity <= 0 {
		return nil, newValidationError("quantity", "must be greater than zero")
	}
	if req.Direction != entity.StockDirectionAdd && req.Direction != entity.StockDirectionSubtract {
		return nil, newValidationError("direction", "must be add or subtract")
	}

	movement, err := adjustStock(ctx, nil, s.itemRepo, itemID, req.Quantity, req.Direction,
		entity.StockRefManual, "", req.Notes, actor.ID)
	if err != nil {
		return nil, err
	}
	s.activityRepo.LogActivity(ctx, actor.ID, actor.Name, actor.Role,
		fmt.Sprintf("Manual stock adjustment %s %.2f for item %s", req.Direction, req.Quantity, itemID), itemID)
	return movement, nil
}

func (s *StockService) ListMovements(ctx context.Context, itemID string, page, pageSize int) ([]entity.StockMovement, int64, error) {
	return s.itemRepo.ListMovements(ctx, itemID, page, pageSize)
}
