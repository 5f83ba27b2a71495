package service

import (
	"context"

	"github.com/iniulez/spbsfi/internal/entity"
	"gorm.io/gorm"
)

// DashboardService computes the per-role worklist counters shown on the
// landing page. Counts only, the lists themselves come from the document
// endpoints.
type DashboardService struct {
	db *gorm.DB
}

func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{db: db}
}

func (s *DashboardService) count(ctx context.Context, model interface{}, query string, args ...interface{}) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(model).Where(query, args...).Count(&n).Error
	return n, err
}

// Summary returns the counters relevant to the actor's role.
func (s *DashboardService) Summary(ctx context.Context, actor Actor) (map[string]int64, error) {
	out := make(map[string]int64)
	var err error

	add := func(key string, model interface{}, query string, args ...interface{}) {
		if err != nil {
			return
		}
		out[key], err = s.count(ctx, model, query, args...)
	}

	switch actor.Role {
	case entity.RoleProjectManager:
		add("frb_draft", &entity.FormRequestBarang{}, "pm_id = ? AND status = ?", actor.ID, entity.FRBStatusDraft)
		add("frb_awaiting_approval", &entity.FormRequestBarang{}, "pm_id = ? AND status = ?", actor.ID, entity.FRBStatusAwaitingApproval)
		add("frb_rejected", &entity.FormRequestBarang{}, "pm_id = ? AND status IN ?", actor.ID,
			[]string{entity.FRBStatusRejectedByDirector, entity.FRBStatusRejectedByRecipient})
		add("frb_in_progress", &entity.FormRequestBarang{}, "pm_id = ? AND status IN ?", actor.ID,
			[]string{entity.FRBStatusApprovedByDirector, entity.FRBStatusInValidation,
				entity.FRBStatusInPurchasingProcess, entity.FRBStatusPartiallyStocked, entity.FRBStatusFullyStocked})
		add("frb_completed", &entity.FormRequestBarang{}, "pm_id = ? AND status = ?", actor.ID, entity.FRBStatusCompleted)

	case entity.RoleDirector:
		add("frb_pending_approval", &entity.FormRequestBarang{}, "status = ?", entity.FRBStatusAwaitingApproval)
		add("pr_pending_approval", &entity.PurchaseRequest{}, "status = ?", entity.PRStatusAwaitingApproval)

	case entity.RolePurchasing:
		add("frb_pending_validation", &entity.FormRequestBarang{}, "status IN ?",
			[]string{entity.FRBStatusApprovedByDirector, entity.FRBStatusInValidation})
		add("pr_approved", &entity.PurchaseRequest{}, "status = ?", entity.PRStatusApproved)
		add("po_in_flight", &entity.PurchaseOrder{}, "status IN ?",
			[]string{entity.POStatusOrdered, entity.POStatusShipped, entity.POStatusPartiallyReceived})
		add("rejection_open", &entity.RejectionReport{}, "reconciliation_status <> ?", entity.ReconciliationResolved)

	case entity.RoleWarehouse:
		add("do_to_prepare", &entity.DeliveryOrder{}, "status = ?", entity.DOStatusCreated)
		add("do_to_send", &entity.DeliveryOrder{}, "status = ?", entity.DOStatusPrepared)
		add("do_in_transit", &entity.DeliveryOrder{}, "status = ?", entity.DOStatusSent)
		add("po_awaiting_receipt", &entity.PurchaseOrder{}, "status IN ?",
			[]string{entity.POStatusShipped, entity.POStatusPartiallyReceived})
		add("rejection_open", &entity.RejectionReport{}, "reconciliation_status <> ?", entity.ReconciliationResolved)

	case entity.RoleAdmin:
		add("users", &entity.User{}, "1 = 1")
		add("projects", &entity.Project{}, "1 = 1")
		add("suppliers", &entity.Supplier{}, "1 = 1")
		add("items", &entity.Item{}, "1 = 1")
		add("frb_total", &entity.FormRequestBarang{}, "1 = 1")
		add("frb_active", &entity.FormRequestBarang{}, "status NOT IN ?",
			[]string{entity.FRBStatusCompleted, entity.FRBStatusRejectedByRecipient})
	}

	if err != nil {
		return nil, err
	}
	return out, nil
}
