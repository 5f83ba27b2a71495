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

// FulfillmentService runs the warehouse-to-recipient half of the workflow:
// checklist preparation, dispatch, the signed TTB, and the reconciliation
// cycle a rejection opens.
type FulfillmentService struct {
	db            *gorm.DB
	doRepo        *repository.DORepository
	checklistRepo *repository.ChecklistRepository
	ttbRepo       *repository.TTBRepository
	rejectionRepo *repository.RejectionRepository
	frbRepo       *repository.FRBRepository
	itemRepo      *repository.ItemRepository
	activity      *repository.ActivityLogRepository
	notifier      *NotificationService
	frbSvc        *FRBService
}

func NewFulfillmentService(
	db *gorm.DB,
	doRepo *repository.DORepository,
	checklistRepo *repository.ChecklistRepository,
	ttbRepo *repository.TTBRepository,
	rejectionRepo *repository.RejectionRepository,
	frbRepo *repository.FRBRepository,
	itemRepo *repository.ItemRepository,
	activity *repository.ActivityLogRepository,
	notifier *NotificationService,
	frbSvc *FRBService,
) *FulfillmentService {
	return &FulfillmentService{
		db:            db,
		doRepo:        doRepo,
		checklistRepo: checklistRepo,
		ttbRepo:       ttbRepo,
		rejectionRepo: rejectionRepo,
		frbRepo:       frbRepo,
		itemRepo:      itemRepo,
		activity:      activity,
		notifier:      notifier,
		frbSvc:        frbSvc,
	}
}

func (s *FulfillmentService) ListDOs(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.DeliveryOrder, int64, error) {
	return s.doRepo.FindAll(ctx, page, pageSize, filters)
}

func (s *FulfillmentService) GetDO(ctx context.Context, id string) (*entity.DeliveryOrder, error) {
	return s.doRepo.FindByID(ctx, id)
}

func (s *FulfillmentService) ListChecklists(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.GoodsPreparationChecklist, int64, error) {
	return s.checklistRepo.FindAll(ctx, page, pageSize, filters)
}

func (s *FulfillmentService) ListTTBs(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.TandaTerimaBarang, int64, error) {
	return s.ttbRepo.FindAll(ctx, page, pageSize, filters)
}

func (s *FulfillmentService) GetTTB(ctx context.Context, id string) (*entity.TandaTerimaBarang, error) {
	return s.ttbRepo.FindByID(ctx, id)
}

func (s *FulfillmentService) ListRejectionReports(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.RejectionReport, int64, error) {
	return s.rejectionRepo.FindAll(ctx, page, pageSize, filters)
}

// ChecklistItemRequest is the warehouse verdict on one DO line. Quantities
// come from the DO itself, not from the caller.
type ChecklistItemRequest struct {
	ItemID              string `json:"item_id" binding:"required"`
	ConditionStatus     string `json:"condition_status" binding:"required"`
	FunctionalityStatus string `json:"functionality_status" binding:"required"`
	Notes               string `json:"notes"`
	PhotoIssue          string `json:"photo_issue"`
}

// RecordChecklistRequest prepares the goods for a created DO.
type RecordChecklistRequest struct {
	DOID  string                 `json:"do_id" binding:"required"`
	Items []ChecklistItemRequest `json:"items" binding:"required"`
}

// RecordChecklist checks the goods for a DO off the shelf. When every line
// is good and working, the checklist is ready to ship: stock is decremented
// line by line and the DO becomes prepared, all in one transaction, so a
// shortfall on any line rolls back every decrement. A not-ready checklist
// is recorded without touching stock and the DO stays where it was.
func (s *FulfillmentService) RecordChecklist(ctx context.Context, actor Actor, req *RecordChecklistRequest) (*entity.GoodsPreparationChecklist, error) {
	if err := ensureRole(actor, actionChecklistRecord); err != nil {
		return nil, err
	}
	do, err := s.doRepo.FindByID(ctx, req.DOID)
	if err != nil {
		return nil, err
	}
	if do.Status != entity.DOStatusCreated {
		return nil, &InvalidTransitionError{Document: "DO", From: do.Status, Action: "prepared"}
	}
	if existing, err := s.checklistRepo.FindByDOID(ctx, do.ID); err != nil {
		return nil, err
	} else if existing != nil && existing.OverallStatus == entity.ChecklistReadyToShip {
		return nil, &ConflictError{Message: fmt.Sprintf("DO %s has already been prepared", do.DOCode)}
	}

	verdicts := make(map[string]ChecklistItemRequest, len(req.Items))
	for _, line := range req.Items {
		if _, dup := verdicts[line.ItemID]; dup {
			return nil, newValidationError("items", fmt.Sprintf("item %s appears more than once", line.ItemID))
		}
		verdicts[line.ItemID] = line
	}
	for itemID := range verdicts {
		found := false
		for _, doLine := range do.Items {
			if doLine.ItemID == itemID {
				found = true
				break
			}
		}
		if !found {
			return nil, newValidationError("items", fmt.Sprintf("item %s is not on the DO", itemID))
		}
	}
	for _, doLine := range do.Items {
		if _, ok := verdicts[doLine.ItemID]; !ok {
			return nil, newValidationError("items", fmt.Sprintf("missing checklist entry for item %s", doLine.ItemID))
		}
	}

	code, err := s.checklistRepo.GenerateCode(ctx)
	if err != nil {
		return nil, fmt.Errorf("generate checklist code: %w", err)
	}

	checklist := &entity.GoodsPreparationChecklist{
		ID:            uuid.New().String()[:32],
		ChecklistCode: code,
		DOID:          do.ID,
		WarehouseID:   actor.ID,
		CheckDate:     time.Now(),
		OverallStatus: entity.ChecklistReadyToShip,
	}
	for i, doLine := range do.Items {
		line := verdicts[doLine.ItemID]
		if line.ConditionStatus != entity.ItemConditionGood || line.FunctionalityStatus != entity.ItemFunctionalityWorking {
			checklist.OverallStatus = entity.ChecklistNotReady
		}
		checklist.Items = append(checklist.Items, entity.ChecklistItem{
			ID:                  uuid.New().String()[:32],
			ChecklistID:         checklist.ID,
			ItemID:              doLine.ItemID,
			PreparedQuantity:    doLine.DeliveredQuantity,
			ConditionStatus:     line.ConditionStatus,
			FunctionalityStatus: line.FunctionalityStatus,
			Notes:               line.Notes,
			PhotoIssue:          line.PhotoIssue,
			SortOrder:           i + 1,
		})
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(checklist).Error; err != nil {
			return err
		}
		if checklist.OverallStatus != entity.ChecklistReadyToShip {
			return nil
		}
		for _, line := range checklist.Items {
			if _, err := adjustStock(ctx, tx, s.itemRepo, line.ItemID, line.PreparedQuantity,
				entity.StockDirectionSubtract, entity.StockRefChecklist, checklist.ID,
				fmt.Sprintf("Prepared for DO %s", do.DOCode), actor.ID); err != nil {
				return err
			}
		}
		return tx.Model(&entity.DeliveryOrder{}).
			Where("id = ?", do.ID).
			Update("status", entity.DOStatusPrepared).Error
	})
	if err != nil {
		return nil, err
	}

	if checklist.OverallStatus == entity.ChecklistReadyToShip {
		do.Status = entity.DOStatusPrepared
		s.activity.LogActivity(ctx, actor.ID, actor.Name, actor.Role,
			fmt.Sprintf("Prepared DO %s (checklist %s)", do.DOCode, checklist.ChecklistCode), do.ID)
		s.notifier.NotifyRole(ctx, entity.RolePurchasing,
			fmt.Sprintf("DO %s is prepared and ready to ship.", do.DOCode), "/purchasing/do/"+do.ID)
	} else {
		s.activity.LogActivity(ctx, actor.ID, actor.Name, actor.Role,
			fmt.Sprintf("Checklist %s for DO %s: not ready", checklist.ChecklistCode, do.DOCode), do.ID)
	}
	return checklist, nil
}

// SendDO dispatches a prepared DO to the recipient.
func (s *FulfillmentService) SendDO(ctx context.Context, actor Actor, id string) (*entity.DeliveryOrder, error) {
	if err := ensureRole(actor, actionDOSend); err != nil {
		return nil, err
	}
	do, err := s.doRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if do.Status != entity.DOStatusPrepared {
		return nil, &InvalidTransitionError{Document: "DO", From: do.Status, Action: "sent"}
	}

	do.Status = entity.DOStatusSent
	if err := s.doRepo.Update(ctx, do); err != nil {
		return nil, err
	}

	frb, err := s.frbRepo.FindByID(ctx, do.FRBID)
	if err != nil {
		return nil, err
	}
	s.activity.LogActivity(ctx, actor.ID, actor.Name, actor.Role,
		fmt.Sprintf("Sent DO %s", do.DOCode), do.ID)
	s.notifier.Notify(ctx, frb.PMID,
		fmt.Sprintf("DO %s for FRB %s is on its way.", do.DOCode, frb.FRBCode), "/pm/frb/"+frb.ID)
	return do, nil
}

// TTBRejectionRequest details why the recipient refused the delivery.
type TTBRejectionRequest struct {
	Reason         string            `json:"reason" binding:"required"`
	DetailedReason string            `json:"detailed_reason" binding:"required"`
	PhotosOfDamage entity.StringList `json:"photos_of_damage"`
}

// RecordTTBRequest records the recipient's acceptance or rejection of a
// sent DO.
type RecordTTBRequest struct {
	DOID               string               `json:"do_id" binding:"required"`
	Accepted           bool                 `json:"accepted"`
	RecipientName      string               `json:"recipient_name" binding:"required"`
	RecipientContact   string               `json:"recipient_contact"`
	RecipientSignature string               `json:"recipient_signature"`
	PhotoOfDelivery    entity.StringList    `json:"photo_of_delivery"`
	RecipientStatement string               `json:"recipient_statement"`
	Rejection          *TTBRejectionRequest `json:"rejection"`
}

// RecordTTB terminates a sent DO. Acceptance requires the recipient's
// signature and delivers the DO. Rejection opens a rejection report and
// returns the delivered quantities to stock, so the ledger nets to zero
// for the round trip; the report, the compensating stock moves, and the
// DO and FRB status changes commit as one transaction.
func (s *FulfillmentService) RecordTTB(ctx context.Context, actor Actor, req *RecordTTBRequest) (*entity.TandaTerimaBarang, error) {
	if err := ensureRole(actor, actionTTBRecord); err != nil {
		return nil, err
	}
	do, err := s.doRepo.FindByID(ctx, req.DOID)
	if err != nil {
		return nil, err
	}
	if do.Status != entity.DOStatusSent {
		return nil, &InvalidTransitionError{Document: "DO", From: do.Status, Action: "confirmed"}
	}
	if existing, err := s.ttbRepo.FindByDOID(ctx, do.ID); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, &ConflictError{Message: fmt.Sprintf("DO %s already has TTB %s", do.DOCode, existing.TTBCode)}
	}

	if req.Accepted {
		if req.RecipientSignature == "" {
			return nil, newValidationError("recipient_signature", "signature is required to accept a delivery")
		}
	} else {
		if req.Rejection == nil {
			return nil, newValidationError("rejection", "rejection details are required")
		}
		switch req.Rejection.Reason {
		case entity.RejectionReasonDamaged, entity.RejectionReasonWrongQuantity,
			entity.RejectionReasonWrongItem, entity.RejectionReasonLateDelivery,
			entity.RejectionReasonOther:
		default:
			return nil, newValidationError("rejection.reason", "unknown rejection reason")
		}
	}

	frb, err := s.frbRepo.FindByID(ctx, do.FRBID)
	if err != nil {
		return nil, err
	}

	code, err := s.ttbRepo.GenerateCode(ctx)
	if err != nil {
		return nil, fmt.Errorf("generate TTB code: %w", err)
	}
	ttb := &entity.TandaTerimaBarang{
		ID:                 uuid.New().String()[:32],
		TTBCode:            code,
		DOID:               do.ID,
		WarehouseID:        actor.ID,
		RecipientName:      req.RecipientName,
		RecipientContact:   req.RecipientContact,
		DeliveryAddress:    frb.DeliveryAddress,
		RecipientSignature: req.RecipientSignature,
		PhotoOfDelivery:    req.PhotoOfDelivery,
		RecipientStatement: req.RecipientStatement,
		AcceptanceDate:     time.Now(),
		Status:             entity.TTBStatusAccepted,
	}
	if !req.Accepted {
		ttb.Status = entity.TTBStatusRejected
	}
	for i, line := range do.Items {
		ttb.Items = append(ttb.Items, entity.TTBItem{
			ID:                uuid.New().String()[:32],
			TTBID:             ttb.ID,
			ItemID:            line.ItemID,
			DeliveredQuantity: line.DeliveredQuantity,
			SortOrder:         i + 1,
		})
	}

	if req.Accepted {
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(ttb).Error; err != nil {
				return err
			}
			return tx.Model(&entity.DeliveryOrder{}).
				Where("id = ?", do.ID).
				Update("status", entity.DOStatusDelivered).Error
		})
		if err != nil {
			return nil, err
		}

		s.activity.LogActivity(ctx, actor.ID, actor.Name, actor.Role,
			fmt.Sprintf("TTB %s: DO %s accepted by %s", ttb.TTBCode, do.DOCode, req.RecipientName), ttb.ID)
		s.notifier.Notify(ctx, frb.PMID,
			fmt.Sprintf("Delivery for FRB %s accepted (TTB %s).", frb.FRBCode, ttb.TTBCode), "/pm/frb/"+frb.ID)

		if err := s.frbSvc.maybeComplete(ctx, frb.ID, actor); err != nil {
			return ttb, err
		}
		return ttb, nil
	}

	reportCode, err := s.rejectionRepo.GenerateCode(ctx)
	if err != nil {
		return nil, fmt.Errorf("generate report code: %w", err)
	}
	report := &entity.RejectionReport{
		ID:                   uuid.New().String()[:32],
		ReportCode:           reportCode,
		TTBID:                ttb.ID,
		WarehouseID:          actor.ID,
		ReportingDate:        time.Now(),
		ReasonForRejection:   req.Rejection.Reason,
		DetailedReason:       req.Rejection.DetailedReason,
		PhotosOfDamage:       req.Rejection.PhotosOfDamage,
		ReconciliationStatus: entity.ReconciliationPending,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(ttb).Error; err != nil {
			return err
		}
		if err := tx.Create(report).Error; err != nil {
			return err
		}
		for _, line := range do.Items {
			if _, err := adjustStock(ctx, tx, s.itemRepo, line.ItemID, line.DeliveredQuantity,
				entity.StockDirectionAdd, entity.StockRefTTBRejection, ttb.ID,
				fmt.Sprintf("Returned after rejected DO %s", do.DOCode), actor.ID); err != nil {
				return err
			}
		}
		if err := tx.Model(&entity.DeliveryOrder{}).
			Where("id = ?", do.ID).
			Update("status", entity.DOStatusRejectedByRecipient).Error; err != nil {
			return err
		}
		return tx.Model(&entity.FormRequestBarang{}).
			Where("id = ?", frb.ID).
			Update("status", entity.FRBStatusRejectedByRecipient).Error
	})
	if err != nil {
		return nil, err
	}

	s.activity.LogActivity(ctx, actor.ID, actor.Name, actor.Role,
		fmt.Sprintf("TTB %s: DO %s rejected (%s), report %s opened", ttb.TTBCode, do.DOCode, req.Rejection.Reason, report.ReportCode), ttb.ID)
	s.notifier.Notify(ctx, frb.PMID,
		fmt.Sprintf("Delivery for FRB %s was rejected by the recipient.", frb.FRBCode), "/pm/frb/"+frb.ID)
	s.notifier.NotifyRole(ctx, entity.RolePurchasing,
		fmt.Sprintf("Rejection report %s opened for DO %s.", report.ReportCode, do.DOCode), "/reconciliation")
	return ttb, nil
}

// StartReconciliation picks up a pending rejection report.
func (s *FulfillmentService) StartReconciliation(ctx context.Context, actor Actor, reportID string) (*entity.RejectionReport, error) {
	if err := ensureRole(actor, actionReconcile); err != nil {
		return nil, err
	}
	report, err := s.rejectionRepo.FindByID(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if report.ReconciliationStatus != entity.ReconciliationPending {
		return nil, &InvalidTransitionError{Document: "rejection report", From: report.ReconciliationStatus, Action: "started"}
	}

	report.ReconciliationStatus = entity.ReconciliationInProgress
	if err := s.rejectionRepo.Update(ctx, report); err != nil {
		return nil, err
	}
	s.activity.LogActivity(ctx, actor.ID, actor.Name, actor.Role,
		fmt.Sprintf("Started reconciliation of report %s", report.ReportCode), report.ID)
	return report, nil
}

// ResolveReconciliation closes a rejection report with resolution notes.
func (s *FulfillmentService) ResolveReconciliation(ctx context.Context, actor Actor, reportID, notes string) (*entity.RejectionReport, error) {
	if err := ensureRole(actor, actionReconcile); err != nil {
		return nil, err
	}
	if notes == "" {
		return nil, newValidationError("resolution_notes", "resolution notes are required")
	}
	report, err := s.rejectionRepo.FindByID(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if report.ReconciliationStatus == entity.ReconciliationResolved {
		return nil, &InvalidTransitionError{Document: "rejection report", From: report.ReconciliationStatus, Action: "resolved"}
	}

	now := time.Now()
	report.ReconciliationStatus = entity.ReconciliationResolved
	report.ResolutionNotes = notes
	report.ResolutionDate = &now
	if err := s.rejectionRepo.Update(ctx, report); err != nil {
		return nil, err
	}
	s.activity.LogActivity(ctx, actor.ID, actor.Name, actor.Role,
		fmt.Sprintf("Resolved reconciliation of report %s", report.ReportCode), report.ID)
	return report, nil
}
