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

// ProcurementService handles the purchase side of the workflow: director
// approval of PRs and the PO lifecycle up to shipment.
type ProcurementService struct {
	db           *gorm.DB
	prRepo       *repository.PRRepository
	poRepo       *repository.PORepository
	supplierRepo *repository.SupplierRepository
	frbRepo      *repository.FRBRepository
	activity     *repository.ActivityLogRepository
	notifier     *NotificationService
}

func NewProcurementService(
	db *gorm.DB,
	prRepo *repository.PRRepository,
	poRepo *repository.PORepository,
	supplierRepo *repository.SupplierRepository,
	frbRepo *repository.FRBRepository,
	activity *repository.ActivityLogRepository,
	notifier *NotificationService,
) *ProcurementService {
	return &ProcurementService{
		db:           db,
		prRepo:       prRepo,
		poRepo:       poRepo,
		supplierRepo: supplierRepo,
		frbRepo:      frbRepo,
		activity:     activity,
		notifier:     notifier,
	}
}

func (s *ProcurementService) ListPRs(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.PurchaseRequest, int64, error) {
	return s.prRepo.FindAll(ctx, page, pageSize, filters)
}

func (s *ProcurementService) GetPR(ctx context.Context, id string) (*entity.PurchaseRequest, error) {
	return s.prRepo.FindByID(ctx, id)
}

func (s *ProcurementService) ListPOs(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.PurchaseOrder, int64, error) {
	return s.poRepo.FindAll(ctx, page, pageSize, filters)
}

func (s *ProcurementService) GetPO(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	return s.poRepo.FindByID(ctx, id)
}

// DecidePR approves or rejects a purchase request. Only the director may
// decide, and only while the PR awaits approval.
func (s *ProcurementService) DecidePR(ctx context.Context, actor Actor, id string, approve bool, reason string) (*entity.PurchaseRequest, error) {
	if err := ensureRole(actor, actionPRDecide); err != nil {
		return nil, err
	}
	pr, err := s.prRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if pr.Status != entity.PRStatusAwaitingApproval {
		return nil, &InvalidTransitionError{Document: "PR", From: pr.Status, Action: "decided"}
	}

	now := time.Now()
	pr.DirectorApprovalDate = &now
	if approve {
		pr.Status = entity.PRStatusApproved
	} else {
		if reason == "" {
			return nil, newValidationError("reason", "rejection reason is required")
		}
		pr.Status = entity.PRStatusRejected
		pr.DirectorRejectionReason = reason
	}

	if err := s.prRepo.Update(ctx, pr); err != nil {
		return nil, err
	}

	if approve {
		s.activity.LogActivity(ctx, actor.ID, actor.Name, actor.Role,
			fmt.Sprintf("Approved PR %s", pr.PRCode), pr.ID)
		s.notifier.Notify(ctx, pr.PurchasingID,
			fmt.Sprintf("PR %s approved, PO can be issued.", pr.PRCode), "/purchasing/po")
	} else {
		s.activity.LogActivity(ctx, actor.ID, actor.Name, actor.Role,
			fmt.Sprintf("Rejected PR %s: %s", pr.PRCode, reason), pr.ID)
		s.notifier.Notify(ctx, pr.PurchasingID,
			fmt.Sprintf("PR %s was rejected. Reason: %s", pr.PRCode, reason), "/purchasing/pr/"+pr.ID)
	}
	return pr, nil
}

// CreatePORequest issues a PO for an approved PR.
type CreatePORequest struct {
	PRID                 string    `json:"pr_id" binding:"required"`
	SupplierID           string    `json:"supplier_id" binding:"required"`
	ExpectedDeliveryDate time.Time `json:"expected_delivery_date" binding:"required"`
}

// CreatePO turns an approved PR into a purchase order. The PO total is the
// sum of PR quantities times the unit prices snapshotted on the originating
// FRB. PO creation and the PR's move to processed commit together, and the
// unique PR index makes a second PO for the same PR impossible.
func (s *ProcurementService) CreatePO(ctx context.Context, actor Actor, req *CreatePORequest) (*entity.PurchaseOrder, error) {
	if err := ensureRole(actor, actionPOCreate); err != nil {
		return nil, err
	}
	pr, err := s.prRepo.FindByID(ctx, req.PRID)
	if err != nil {
		return nil, err
	}
	if pr.Status != entity.PRStatusApproved {
		return nil, &InvalidTransitionError{Document: "PR", From: pr.Status, Action: "converted to a PO"}
	}
	if existing, err := s.poRepo.FindByPRID(ctx, pr.ID); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, &ConflictError{Message: fmt.Sprintf("PR %s already has PO %s", pr.PRCode, existing.POCode)}
	}

	supplier, err := s.supplierRepo.FindByID(ctx, req.SupplierID)
	if err != nil {
		return nil, fmt.Errorf("lookup supplier: %w", err)
	}

	frb, err := s.frbRepo.FindByID(ctx, pr.FRBID)
	if err != nil {
		return nil, err
	}
	prices := make(map[string]float64, len(frb.Items))
	for _, line := range frb.Items {
		prices[line.ItemID] = line.EstimatedUnitPrice
	}
	var total float64
	for _, line := range pr.Items {
		total += line.QuantityToPurchase * prices[line.ItemID]
	}

	code, err := s.poRepo.GenerateCode(ctx)
	if err != nil {
		return nil, fmt.Errorf("generate PO code: %w", err)
	}
	po := &entity.PurchaseOrder{
		ID:                   uuid.New().String()[:32],
		POCode:               code,
		PRID:                 pr.ID,
		SupplierID:           supplier.ID,
		OrderDate:            time.Now(),
		ExpectedDeliveryDate: req.ExpectedDeliveryDate,
		TotalPrice:           total,
		Status:               entity.POStatusOrdered,
		CreatedBy:            actor.ID,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(po).Error; err != nil {
			return err
		}
		return tx.Model(&entity.PurchaseRequest{}).
			Where("id = ?", pr.ID).
			Update("status", entity.PRStatusProcessed).Error
	})
	if err != nil {
		return nil, err
	}

	s.activity.LogActivity(ctx, actor.ID, actor.Name, actor.Role,
		fmt.Sprintf("Issued PO %s for PR %s (total %.2f)", po.POCode, pr.PRCode, total), po.ID)
	s.notifier.Notify(ctx, pr.PMID,
		fmt.Sprintf("PO %s issued for PR %s.", po.POCode, pr.PRCode), "/pm/frb/"+pr.FRBID)
	return po, nil
}

// ShipPO marks an ordered PO as shipped by the supplier and tells the
// warehouse to expect goods.
func (s *ProcurementService) ShipPO(ctx context.Context, actor Actor, id string) (*entity.PurchaseOrder, error) {
	if err := ensureRole(actor, actionPOShip); err != nil {
		return nil, err
	}
	po, err := s.poRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if po.Status != entity.POStatusOrdered {
		return nil, &InvalidTransitionError{Document: "PO", From: po.Status, Action: "marked shipped"}
	}

	po.Status = entity.POStatusShipped
	if err := s.poRepo.Update(ctx, po); err != nil {
		return nil, err
	}

	s.activity.LogActivity(ctx, actor.ID, actor.Name, actor.Role,
		fmt.Sprintf("PO %s marked shipped", po.POCode), po.ID)
	s.notifier.NotifyRole(ctx, entity.RoleWarehouse,
		fmt.Sprintf("PO %s shipped, goods incoming.", po.POCode), "/warehouse/goods-receipt")
	return po, nil
}

// CancelPO cancels a PO that has not shipped yet.
func (s *ProcurementService) CancelPO(ctx context.Context, actor Actor, id, reason string) (*entity.PurchaseOrder, error) {
	if err := ensureRole(actor, actionPOCancel); err != nil {
		return nil, err
	}
	po, err := s.poRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if po.Status != entity.POStatusOrdered {
		return nil, &InvalidTransitionError{Document: "PO", From: po.Status, Action: "canceled"}
	}
	if reason == "" {
		return nil, newValidationError("reason", "cancellation reason is required")
	}

	po.Status = entity.POStatusCanceled
	if err := s.poRepo.Update(ctx, po); err != nil {
		return nil, err
	}

	s.activity.LogActivity(ctx, actor.ID, actor.Name, actor.Role,
		fmt.Sprintf("Canceled PO %s: %s", po.POCode, reason), po.ID)
	return po, nil
}
