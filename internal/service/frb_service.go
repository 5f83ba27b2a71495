package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/iniulez/spbsfi/internal/entity"
	"github.com/iniulez/spbsfi/internal/repository"
	"gorm.io/gorm"
)

// FRBService runs the Form Request Barang state machine, including the
// purchasing validation that fans out into delivery orders and purchase
// requests.
type FRBService struct {
	db          *gorm.DB
	frbRepo     *repository.FRBRepository
	prRepo      *repository.PRRepository
	doRepo      *repository.DORepository
	poRepo      *repository.PORepository
	itemRepo    *repository.ItemRepository
	projectRepo *repository.ProjectRepository
	activity    *repository.ActivityLogRepository
	notifier    *NotificationService
}

func NewFRBService(
	db *gorm.DB,
	frbRepo *repository.FRBRepository,
	prRepo *repository.PRRepository,
	doRepo *repository.DORepository,
	poRepo *repository.PORepository,
	itemRepo *repository.ItemRepository,
	projectRepo *repository.ProjectRepository,
	activity *repository.ActivityLogRepository,
	notifier *NotificationService,
) *FRBService {
	return &FRBService{
		db:          db,
		frbRepo:     frbRepo,
		prRepo:      prRepo,
		doRepo:      doRepo,
		poRepo:      poRepo,
		itemRepo:    itemRepo,
		projectRepo: projectRepo,
		activity:    activity,
		notifier:    notifier,
	}
}

func (s *FRBService) List(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.FormRequestBarang, int64, error) {
	return s.frbRepo.FindAll(ctx, page, pageSize, filters)
}

func (s *FRBService) Get(ctx context.Context, id string) (*entity.FormRequestBarang, error) {
	return s.frbRepo.FindByID(ctx, id)
}

// FRBItemRequest is one requested line.
type FRBItemRequest struct {
	ItemID            string  `json:"item_id" binding:"required"`
	RequestedQuantity float64 `json:"requested_quantity" binding:"required"`
}

// CreateFRBRequest creates a goods request, as a draft or submitted straight
// for director approval.
type CreateFRBRequest struct {
	ProjectID        string           `json:"project_id" binding:"required"`
	DeliveryDeadline time.Time        `json:"delivery_deadline" binding:"required"`
	RecipientName    string           `json:"recipient_name" binding:"required"`
	RecipientContact string           `json:"recipient_contact"`
	DeliveryAddress  string           `json:"delivery_address" binding:"required"`
	ProjectPOFile    string           `json:"project_po_file"`
	Items            []FRBItemRequest `json:"items" binding:"required"`
	AsDraft          bool             `json:"as_draft"`
}

func (s *FRBService) Create(ctx context.Context, actor Actor, req *CreateFRBRequest) (*entity.FormRequestBarang, error) {
	if err := ensureRole(actor, actionFRBCreate); err != nil {
		return nil, err
	}
	if len(req.Items) == 0 {
		return nil, newValidationError("items", "at least one item is required")
	}

	project, err := s.projectRepo.FindByID(ctx, req.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("lookup project: %w", err)
	}

	code, err := s.frbRepo.GenerateCode(ctx)
	if err != nil {
		return nil, fmt.Errorf("generate FRB code: %w", err)
	}

	status := entity.FRBStatusAwaitingApproval
	if req.AsDraft {
		status = entity.FRBStatusDraft
	}

	frb := &entity.FormRequestBarang{
		ID:               uuid.New().String()[:32],
		FRBCode:          code,
		ProjectID:        project.ID,
		PMID:             actor.ID,
		SubmissionDate:   time.Now(),
		DeliveryDeadline: req.DeliveryDeadline,
		RecipientName:    req.RecipientName,
		RecipientContact: req.RecipientContact,
		DeliveryAddress:  req.DeliveryAddress,
		ProjectPOFile:    req.ProjectPOFile,
		Status:           status,
	}

	for i, line := range req.Items {
		if line.RequestedQuantity <= 0 {
			return nil, newValidationError("items", "requested quantity must be greater than zero")
		}
		item, err := s.itemRepo.FindByID(ctx, line.ItemID)
		if err != nil {
			return nil, fmt.Errorf("lookup item %s: %w", line.ItemID, err)
		}
		frb.Items = append(frb.Items, entity.FRBItem{
			ID:                uuid.New().String()[:32],
			FRBID:             frb.ID,
			ItemID:            item.ID,
			RequestedQuantity: line.RequestedQuantity,
			// snapshot, so later price edits keep history intact
			EstimatedUnitPrice: item.EstimatedUnitPrice,
			SortOrder:          i + 1,
		})
	}

	if err := s.frbRepo.Create(ctx, frb); err != nil {
		return nil, err
	}

	s.activity.LogActivity(ctx, actor.ID, actor.Name, actor.Role,
		fmt.Sprintf("Submitted FRB %s (status %s)", frb.FRBCode, frb.Status), frb.ID)
	if !req.AsDraft {
		s.notifier.NotifyRole(ctx, entity.RoleDirector,
			fmt.Sprintf("FRB %s requires your approval.", frb.FRBCode), "/director/frb-approval")
	}
	return frb, nil
}

// UpdateFRBRequest edits a draft or director-rejected FRB. Line items, when
// present, replace the existing set.
type UpdateFRBRequest struct {
	DeliveryDeadline *time.Time       `json:"delivery_deadline"`
	RecipientName    *string          `json:"recipient_name"`
	RecipientContact *string          `json:"recipient_contact"`
	DeliveryAddress  *string          `json:"delivery_address"`
	ProjectPOFile    *string          `json:"project_po_file"`
	Items            []FRBItemRequest `json:"items"`
}

func (s *FRBService) Update(ctx context.Context, actor Actor, id string, req *UpdateFRBRequest) (*entity.FormRequestBarang, error) {
	if err := ensureRole(actor, actionFRBUpdate); err != nil {
		return nil, err
	}
	frb, err := s.frbRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if frb.PMID != actor.ID {
		return nil, &ForbiddenError{Role: actor.Role, Action: "edit another PM's FRB"}
	}
	if frb.Status != entity.FRBStatusDraft && frb.Status != entity.FRBStatusRejectedByDirector {
		return nil, &InvalidTransitionError{Document: "FRB", From: frb.Status, Action: "edited"}
	}

	if req.DeliveryDeadline != nil {
		frb.DeliveryDeadline = *req.DeliveryDeadline
	}
	if req.RecipientName != nil {
		frb.RecipientName = *req.RecipientName
	}
	if req.RecipientContact != nil {
		frb.RecipientContact = *req.RecipientContact
	}
	if req.DeliveryAddress != nil {
		frb.DeliveryAddress = *req.DeliveryAddress
	}
	if req.ProjectPOFile != nil {
		frb.ProjectPOFile = *req.ProjectPOFile
	}

	if req.Items != nil {
		var items []entity.FRBItem
		for i, line := range req.Items {
			if line.RequestedQuantity <= 0 {
				return nil, newValidationError("items", "requested quantity must be greater than zero")
			}
			item, err := s.itemRepo.FindByID(ctx, line.ItemID)
			if err != nil {
				return nil, fmt.Errorf("lookup item %s: %w", line.ItemID, err)
			}
			items = append(items, entity.FRBItem{
				ID:                 uuid.New().String()[:32],
				FRBID:              frb.ID,
				ItemID:             item.ID,
				RequestedQuantity:  line.RequestedQuantity,
				EstimatedUnitPrice: item.EstimatedUnitPrice,
				SortOrder:          i + 1,
			})
		}
		if err := s.frbRepo.ReplaceItems(ctx, frb.ID, items); err != nil {
			return nil, err
		}
		frb.Items = items
	}

	if err := s.frbRepo.Update(ctx, frb); err != nil {
		return nil, err
	}
	s.activity.LogActivity(ctx, actor.ID, actor.Name, actor.Role,
		fmt.Sprintf("Updated FRB %s", frb.FRBCode), frb.ID)
	return frb, nil
}

// Submit moves a draft or director-rejected FRB (back) into the approval
// queue.
func (s *FRBService) Submit(ctx context.Context, actor Actor, id string) (*entity.FormRequestBarang, error) {
	if err := ensureRole(actor, actionFRBUpdate); err != nil {
		return nil, err
	}
	frb, err := s.frbRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if frb.PMID != actor.ID {
		return nil, &ForbiddenError{Role: actor.Role, Action: "submit another PM's FRB"}
	}
	if frb.Status != entity.FRBStatusDraft && frb.Status != entity.FRBStatusRejectedByDirector {
		return nil, &InvalidTransitionError{Document: "FRB", From: frb.Status, Action: "submitted"}
	}

	frb.Status = entity.FRBStatusAwaitingApproval
	frb.SubmissionDate = time.Now()
	frb.DirectorRejectionReason = ""
	if err := s.frbRepo.Update(ctx, frb); err != nil {
		return nil, err
	}

	s.activity.LogActivity(ctx, actor.ID, actor.Name, actor.Role,
		fmt.Sprintf("Submitted FRB %s for director approval", frb.FRBCode), frb.ID)
	s.notifier.NotifyRole(ctx, entity.RoleDirector,
		fmt.Sprintf("FRB %s requires your approval.", frb.FRBCode), "/director/frb-approval")
	return frb, nil
}

// DirectorDecide approves or rejects a submitted FRB. Rejection requires a
// reason; the PM may edit and resubmit afterwards.
func (s *FRBService) DirectorDecide(ctx context.Context, actor Actor, id string, approve bool, reason string) (*entity.FormRequestBarang, error) {
	if err := ensureRole(actor, actionFRBDecide); err != nil {
		return nil, err
	}
	frb, err := s.frbRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if frb.Status != entity.FRBStatusAwaitingApproval {
		return nil, &InvalidTransitionError{Document: "FRB", From: frb.Status, Action: "decided"}
	}

	now := time.Now()
	frb.DirectorApprovalDate = &now
	if approve {
		frb.Status = entity.FRBStatusApprovedByDirector
	} else {
		if reason == "" {
			return nil, newValidationError("reason", "rejection reason is required")
		}
		frb.Status = entity.FRBStatusRejectedByDirector
		frb.DirectorRejectionReason = reason
	}

	if err := s.frbRepo.Update(ctx, frb); err != nil {
		return nil, err
	}

	if approve {
		s.activity.LogActivity(ctx, actor.ID, actor.Name, actor.Role,
			fmt.Sprintf("Approved FRB %s", frb.FRBCode), frb.ID)
		s.notifier.Notify(ctx, frb.PMID,
			fmt.Sprintf("Your FRB %s has been approved.", frb.FRBCode), "/pm/frb/"+frb.ID)
		s.notifier.NotifyRole(ctx, entity.RolePurchasing,
			fmt.Sprintf("FRB %s approved, ready for validation.", frb.FRBCode), "/purchasing/frb-validation")
	} else {
		s.activity.LogActivity(ctx, actor.ID, actor.Name, actor.Role,
			fmt.Sprintf("Rejected FRB %s: %s", frb.FRBCode, reason), frb.ID)
		s.notifier.Notify(ctx, frb.PMID,
			fmt.Sprintf("Your FRB %s was rejected. Reason: %s", frb.FRBCode, reason), "/pm/frb/"+frb.ID)
	}
	return frb, nil
}

// ValidateItemDecision sets the purchasing-approved quantity for one FRB line.
type ValidateItemDecision struct {
	FRBItemID        string  `json:"frb_item_id" binding:"required"`
	ApprovedQuantity float64 `json:"approved_quantity"`
}

// ValidateFRBRequest carries the purchasing validation decision.
type ValidateFRBRequest struct {
	Items []ValidateItemDecision `json:"items" binding:"required"`
	Notes string                 `json:"notes"`
}

// ValidateFRBResult reports what the validation produced.
type ValidateFRBResult struct {
	FRB           *entity.FormRequestBarang `json:"frb"`
	DeliveryOrder *entity.DeliveryOrder     `json:"delivery_order,omitempty"`
	PR            *entity.PurchaseRequest   `json:"purchase_request,omitempty"`
}

// Validate splits an approved FRB into a DO for what stock covers and a PR
// for the shortfall, then settles the FRB status. The whole cascade runs in
// one transaction, and a second validation of the same FRB is refused once
// a DO or PR exists, so repeating the call cannot duplicate documents.
func (s *FRBService) Validate(ctx context.Context, actor Actor, id string, req *ValidateFRBRequest) (*ValidateFRBResult, error) {
	if err := ensureRole(actor, actionFRBValidate); err != nil {
		return nil, err
	}
	frb, err := s.frbRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if frb.Status != entity.FRBStatusApprovedByDirector && frb.Status != entity.FRBStatusInValidation {
		return nil, &InvalidTransitionError{Document: "FRB", From: frb.Status, Action: "validated"}
	}

	existingDOs, err := s.doRepo.FindByFRBID(ctx, frb.ID)
	if err != nil {
		return nil, err
	}
	existingPRs, err := s.prRepo.FindByFRBID(ctx, frb.ID)
	if err != nil {
		return nil, err
	}
	if len(existingDOs) > 0 || len(existingPRs) > 0 {
		return nil, &ConflictError{Message: fmt.Sprintf("FRB %s has already been validated", frb.FRBCode)}
	}

	// Mark the FRB as taken up by purchasing before settling the outcome,
	// so an interrupted validation is visible and can be resumed.
	if frb.Status == entity.FRBStatusApprovedByDirector {
		if err := s.db.WithContext(ctx).Model(&entity.FormRequestBarang{}).
			Where("id = ?", frb.ID).
			Update("status", entity.FRBStatusInValidation).Error; err != nil {
			return nil, err
		}
		frb.Status = entity.FRBStatusInValidation
	}

	decisions := make(map[string]float64, len(req.Items))
	for _, d := range req.Items {
		if d.ApprovedQuantity < 0 {
			return nil, newValidationError("approved_quantity", "must not be negative")
		}
		decisions[d.FRBItemID] = d.ApprovedQuantity
	}
	for _, line := range frb.Items {
		if _, ok := decisions[line.ID]; !ok {
			return nil, newValidationError("items", fmt.Sprintf("missing decision for line %s", line.ID))
		}
	}

	result := &ValidateFRBResult{FRB: frb}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var doItems []entity.DOItem
		var prItems []entity.PRItem

		for i := range frb.Items {
			line := &frb.Items[i]
			approved := decisions[line.ID]
			line.ApprovedQuantity = &approved
			if err := tx.Model(&entity.FRBItem{}).
				Where("id = ?", line.ID).
				Update("approved_quantity", approved).Error; err != nil {
				return err
			}
			if approved == 0 {
				continue
			}

			var stock float64
			if err := tx.Model(&entity.Item{}).
				Select("current_stock").
				Where("id = ?", line.ItemID).
				Scan(&stock).Error; err != nil {
				return err
			}

			availableFromStock := approved
			if stock < availableFromStock {
				availableFromStock = stock
			}
			if availableFromStock > 0 {
				doItems = append(doItems, entity.DOItem{
					ID:                uuid.New().String()[:32],
					ItemID:            line.ItemID,
					DeliveredQuantity: availableFromStock,
					SortOrder:         len(doItems) + 1,
				})
			}
			if needsPurchase := approved - stock; needsPurchase > 0 {
				prItems = append(prItems, entity.PRItem{
					ID:                 uuid.New().String()[:32],
					ItemID:             line.ItemID,
					QuantityToPurchase: needsPurchase,
					SortOrder:          len(prItems) + 1,
				})
			}
		}

		if len(doItems) > 0 {
			doCode, err := s.doRepo.GenerateCode(ctx)
			if err != nil {
				return fmt.Errorf("generate DO code: %w", err)
			}
			do := &entity.DeliveryOrder{
				ID:           uuid.New().String()[:32],
				DOCode:       doCode,
				FRBID:        frb.ID,
				PurchasingID: actor.ID,
				CreationDate: time.Now(),
				Status:       entity.DOStatusCreated,
			}
			for i := range doItems {
				doItems[i].DOID = do.ID
			}
			do.Items = doItems
			if err := tx.Create(do).Error; err != nil {
				return err
			}
			result.DeliveryOrder = do
		}

		if len(prItems) > 0 {
			prCode, err := s.prRepo.GenerateCode(ctx)
			if err != nil {
				return fmt.Errorf("generate PR code: %w", err)
			}
			pr := &entity.PurchaseRequest{
				ID:           uuid.New().String()[:32],
				PRCode:       prCode,
				FRBID:        frb.ID,
				PMID:         frb.PMID,
				PurchasingID: actor.ID,
				RequestDate:  time.Now(),
				Status:       entity.PRStatusAwaitingApproval,
			}
			for i := range prItems {
				prItems[i].PRID = pr.ID
			}
			pr.Items = prItems
			if err := tx.Create(pr).Error; err != nil {
				return err
			}
			result.PR = pr
		}

		switch {
		case result.DeliveryOrder != nil && result.PR == nil:
			frb.Status = entity.FRBStatusFullyStocked
		case result.DeliveryOrder != nil && result.PR != nil:
			frb.Status = entity.FRBStatusPartiallyStocked
		case result.PR != nil:
			frb.Status = entity.FRBStatusInPurchasingProcess
		default:
			// every line approved at zero, nothing to do
			frb.Status = entity.FRBStatusCompleted
		}

		now := time.Now()
		frb.PurchasingValidationDate = &now
		frb.PurchasingValidationNotes = req.Notes
		return tx.Omit("Items").Save(frb).Error
	})
	if err != nil {
		// A concurrent validation that committed first trips the unique
		// index on the DO or PR frb_id.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, &ConflictError{Message: fmt.Sprintf("FRB %s has already been validated", frb.FRBCode)}
		}
		return nil, err
	}

	s.activity.LogActivity(ctx, actor.ID, actor.Name, actor.Role,
		fmt.Sprintf("Validated FRB %s (status %s)", frb.FRBCode, frb.Status), frb.ID)
	s.notifier.Notify(ctx, frb.PMID,
		fmt.Sprintf("FRB %s validation complete. Status: %s.", frb.FRBCode, frb.Status), "/pm/frb/"+frb.ID)
	if result.DeliveryOrder != nil {
		s.notifier.NotifyRole(ctx, entity.RoleWarehouse,
			fmt.Sprintf("DO %s created for FRB %s, ready for preparation.", result.DeliveryOrder.DOCode, frb.FRBCode),
			"/warehouse/do-preparation")
	}
	if result.PR != nil {
		s.notifier.NotifyRole(ctx, entity.RoleDirector,
			fmt.Sprintf("PR %s requires your approval.", result.PR.PRCode), "/director/pr-approval")
	}
	return result, nil
}

// maybeComplete closes an FRB once every delivery order is delivered and
// every derived purchase is fully received. Called after TTB acceptance and
// after a PO reaches fully received.
func (s *FRBService) maybeComplete(ctx context.Context, frbID string, actor Actor) error {
	frb, err := s.frbRepo.FindByID(ctx, frbID)
	if err != nil {
		return err
	}
	switch frb.Status {
	case entity.FRBStatusCompleted, entity.FRBStatusRejectedByRecipient,
		entity.FRBStatusDraft, entity.FRBStatusAwaitingApproval, entity.FRBStatusRejectedByDirector:
		return nil
	}

	dos, err := s.doRepo.FindByFRBID(ctx, frbID)
	if err != nil {
		return err
	}
	for _, do := range dos {
		if do.Status != entity.DOStatusDelivered {
			return nil
		}
	}

	prs, err := s.prRepo.FindByFRBID(ctx, frbID)
	if err != nil {
		return err
	}
	for _, pr := range prs {
		if pr.Status == entity.PRStatusRejected {
			continue
		}
		if pr.Status != entity.PRStatusProcessed {
			return nil
		}
		po, err := s.poRepo.FindByPRID(ctx, pr.ID)
		if err != nil {
			return err
		}
		if po == nil || (po.Status != entity.POStatusFullyReceived && po.Status != entity.POStatusCanceled) {
			return nil
		}
	}

	frb.Status = entity.FRBStatusCompleted
	if err := s.frbRepo.Update(ctx, frb); err != nil {
		return err
	}
	s.activity.LogActivity(ctx, actor.ID, actor.Name, actor.Role,
		fmt.Sprintf("FRB %s completed", frb.FRBCode), frb.ID)
	s.notifier.Notify(ctx, frb.PMID,
		fmt.Sprintf("Your FRB %s is complete.", frb.FRBCode), "/pm/frb/"+frb.ID)
	return nil
}
