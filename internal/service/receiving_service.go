package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/iniulez/spbsfi/internal/entity"
	"github.com/iniulez/spbsfi/internal/repository"
	"gorm.io/gorm"
)

// ReceivingService records goods receipts against purchase orders. A GRN is
// the only way supplier goods enter stock.
type ReceivingService struct {
	db       *gorm.DB
	grnRepo  *repository.GRNRepository
	poRepo   *repository.PORepository
	prRepo   *repository.PRRepository
	itemRepo *repository.ItemRepository
	activity *repository.ActivityLogRepository
	notifier *NotificationService
	frbSvc   *FRBService
}

func NewReceivingService(
	db *gorm.DB,
	grnRepo *repository.GRNRepository,
	poRepo *repository.PORepository,
	prRepo *repository.PRRepository,
	itemRepo *repository.ItemRepository,
	activity *repository.ActivityLogRepository,
	notifier *NotificationService,
	frbSvc *FRBService,
) *ReceivingService {
	return &ReceivingService{
		db:       db,
		grnRepo:  grnRepo,
		poRepo:   poRepo,
		prRepo:   prRepo,
		itemRepo: itemRepo,
		activity: activity,
		notifier: notifier,
		frbSvc:   frbSvc,
	}
}

func (s *ReceivingService) List(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.GoodsReceipt, int64, error) {
	return s.grnRepo.FindAll(ctx, page, pageSize, filters)
}

func (s *ReceivingService) Get(ctx context.Context, id string) (*entity.GoodsReceipt, error) {
	return s.grnRepo.FindByID(ctx, id)
}

// ListAwaitingReceipt lists POs the warehouse can still record receipts for.
func (s *ReceivingService) ListAwaitingReceipt(ctx context.Context) ([]entity.PurchaseOrder, error) {
	return s.poRepo.FindAwaitingReceipt(ctx)
}

// GRNItemRequest is one received line.
type GRNItemRequest struct {
	ItemID             string  `json:"item_id" binding:"required"`
	ReceivedQuantity   float64 `json:"received_quantity" binding:"required"`
	ConditionAtReceipt string  `json:"condition_at_receipt" binding:"required"`
	QuantityDamaged    float64 `json:"quantity_damaged"`
	ActionTaken        string  `json:"action_taken"`
	PhotoDamaged       string  `json:"photo_damaged"`
}

// RecordGRNRequest records a goods receipt against a shipped PO.
type RecordGRNRequest struct {
	POID  string           `json:"po_id" binding:"required"`
	Notes string           `json:"notes"`
	Items []GRNItemRequest `json:"items" binding:"required"`
}

// RecordGRN stores the receipt and moves stock in, all in one transaction.
// The undamaged part of every line always enters stock; the damaged part
// enters only when the warehouse accepted it anyway. Receiving enough to
// cover the PR closes the PO as fully received, otherwise it goes to
// partially received.
func (s *ReceivingService) RecordGRN(ctx context.Context, actor Actor, req *RecordGRNRequest) (*entity.GoodsReceipt, error) {
	if err := ensureRole(actor, actionGRNRecord); err != nil {
		return nil, err
	}
	po, err := s.poRepo.FindByID(ctx, req.POID)
	if err != nil {
		return nil, err
	}
	if po.Status != entity.POStatusShipped && po.Status != entity.POStatusPartiallyReceived {
		return nil, &InvalidTransitionError{Document: "PO", From: po.Status, Action: "received against"}
	}
	if len(req.Items) == 0 {
		return nil, newValidationError("items", "at least one item is required")
	}
	pr, err := s.prRepo.FindByID(ctx, po.PRID)
	if err != nil {
		return nil, err
	}
	ordered := make(map[string]bool, len(pr.Items))
	for _, prLine := range pr.Items {
		ordered[prLine.ItemID] = true
	}
	for _, line := range req.Items {
		if !ordered[line.ItemID] {
			return nil, newValidationError("items", fmt.Sprintf("item %s is not on PO %s", line.ItemID, po.POCode))
		}
		if line.ReceivedQuantity <= 0 {
			return nil, newValidationError("received_quantity", "must be greater than zero")
		}
		if line.QuantityDamaged < 0 || line.QuantityDamaged > line.ReceivedQuantity {
			return nil, newValidationError("quantity_damaged", "must be between zero and the received quantity")
		}
		if line.QuantityDamaged > 0 && line.ActionTaken == "" {
			return nil, newValidationError("action_taken", "required when a quantity is damaged")
		}
	}

	code, err := s.grnRepo.GenerateCode(ctx)
	if err != nil {
		return nil, fmt.Errorf("generate GRN code: %w", err)
	}

	grn := &entity.GoodsReceipt{
		ID:          uuid.New().String()[:32],
		GRNCode:     code,
		POID:        po.ID,
		WarehouseID: actor.ID,
		ReceiptDate: time.Now(),
		Notes:       req.Notes,
	}

	var anyDamage, allDamaged bool
	allDamaged = true
	for i, line := range req.Items {
		if line.QuantityDamaged > 0 {
			anyDamage = true
		}
		if line.QuantityDamaged < line.ReceivedQuantity {
			allDamaged = false
		}
		grn.Items = append(grn.Items, entity.GRNItem{
			ID:                 uuid.New().String()[:32],
			GRNID:              grn.ID,
			ItemID:             line.ItemID,
			ReceivedQuantity:   line.ReceivedQuantity,
			ConditionAtReceipt: line.ConditionAtReceipt,
			QuantityDamaged:    line.QuantityDamaged,
			ActionTaken:        line.ActionTaken,
			PhotoDamaged:       line.PhotoDamaged,
			SortOrder:          i + 1,
		})
	}
	switch {
	case !anyDamage:
		grn.OverallCondition = entity.GRNConditionGood
	case allDamaged:
		grn.OverallCondition = entity.GRNConditionDamaged
	default:
		grn.OverallCondition = entity.GRNConditionPartiallyDamaged
	}

	var fullyReceived bool
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(grn).Error; err != nil {
			return err
		}

		for _, line := range grn.Items {
			stockIn := line.ReceivedQuantity - line.QuantityDamaged
			if line.QuantityDamaged > 0 && line.ActionTaken == entity.ActionAccepted {
				stockIn = line.ReceivedQuantity
			}
			if stockIn <= 0 {
				continue
			}
			if _, err := adjustStock(ctx, tx, s.itemRepo, line.ItemID, stockIn,
				entity.StockDirectionAdd, entity.StockRefGRN, grn.ID,
				fmt.Sprintf("Receipt %s against PO %s", grn.GRNCode, po.POCode), actor.ID); err != nil {
				return err
			}
		}

		totals, err := s.grnRepo.ReceivedTotals(ctx, tx, po.ID)
		if err != nil {
			return err
		}
		fullyReceived = true
		for _, prLine := range pr.Items {
			if totals[prLine.ItemID] < prLine.QuantityToPurchase {
				fullyReceived = false
				break
			}
		}

		po.Status = entity.POStatusPartiallyReceived
		if fullyReceived {
			po.Status = entity.POStatusFullyReceived
			now := time.Now()
			po.ActualDeliveryDate = &now
		}
		return tx.Model(&entity.PurchaseOrder{}).
			Where("id = ?", po.ID).
			Updates(map[string]interface{}{
				"status":               po.Status,
				"actual_delivery_date": po.ActualDeliveryDate,
			}).Error
	})
	if err != nil {
		return nil, err
	}

	s.activity.LogActivity(ctx, actor.ID, actor.Name, actor.Role,
		fmt.Sprintf("Recorded GRN %s for PO %s (%s)", grn.GRNCode, po.POCode, po.Status), grn.ID)
	s.notifier.NotifyRole(ctx, entity.RolePurchasing,
		fmt.Sprintf("GRN %s recorded, PO %s is now %s.", grn.GRNCode, po.POCode, po.Status), "/purchasing/po/"+po.ID)

	if fullyReceived {
		if err := s.frbSvc.maybeComplete(ctx, pr.FRBID, actor); err != nil {
			return grn, err
		}
	}
	return grn, nil
}
