package service

import (
	"context"
	"errors"
	"testing"

	"github.com/iniulez/spbsfi/internal/entity"
	"github.com/iniulez/spbsfi/internal/testutil"
)

// createDO validates a fully stocked FRB and returns its delivery order.
func (e *testEnv) createDO(t *testing.T, itemID string, quantity float64) *entity.DeliveryOrder {
	t.Helper()
	frb := e.createApprovedFRB(t, []FRBItemRequest{{ItemID: itemID, RequestedQuantity: quantity}})
	result, err := e.svc.FRB.Validate(context.Background(), e.purchasing, frb.ID, approveAll(frb))
	if err != nil {
		t.Fatalf("validate FRB: %v", err)
	}
	if result.DeliveryOrder == nil {
		t.Fatal("expected a delivery order")
	}
	return result.DeliveryOrder
}

func goodChecklist(do *entity.DeliveryOrder) *RecordChecklistRequest {
	req := &RecordChecklistRequest{DOID: do.ID}
	for _, line := range do.Items {
		req.Items = append(req.Items, ChecklistItemRequest{
			ItemID:              line.ItemID,
			ConditionStatus:     entity.ItemConditionGood,
			FunctionalityStatus: entity.ItemFunctionalityWorking,
		})
	}
	return req
}

func TestRecordChecklistReadyDecrementsStock(t *testing.T) {
	env := setupServiceTest(t)
	ctx := context.Background()
	item := testutil.SeedItem(t, env.db, "AC Split 1PK", 8)
	do := env.createDO(t, item.ID, 3)

	checklist, err := env.svc.Fulfillment.RecordChecklist(ctx, env.warehouse, goodChecklist(do))
	if err != nil {
		t.Fatalf("record checklist: %v", err)
	}
	if checklist.OverallStatus != entity.ChecklistReadyToShip {
		t.Errorf("expected ready_to_ship, got %s", checklist.OverallStatus)
	}
	if got := env.stockOf(t, item.ID); got != 5 {
		t.Errorf("expected stock 5 after preparation, got %v", got)
	}

	do2, _ := env.svc.Fulfillment.GetDO(ctx, do.ID)
	if do2.Status != entity.DOStatusPrepared {
		t.Errorf("expected DO prepared, got %s", do2.Status)
	}

	// a second preparation is refused
	_, err = env.svc.Fulfillment.RecordChecklist(ctx, env.warehouse, goodChecklist(do))
	var transition *InvalidTransitionError
	if !errors.As(err, &transition) {
		t.Fatalf("expected InvalidTransitionError, got %v", err)
	}
}

func TestRecordChecklistNotReadyLeavesStockAlone(t *testing.T) {
	env := setupServiceTest(t)
	ctx := context.Background()
	item := testutil.SeedItem(t, env.db, "Proyektor", 6)
	do := env.createDO(t, item.ID, 2)

	req := &RecordChecklistRequest{
		DOID: do.ID,
		Items: []ChecklistItemRequest{{
			ItemID:              item.ID,
			ConditionStatus:     entity.ItemConditionMajorDamage,
			FunctionalityStatus: entity.ItemFunctionalityNotWorking,
			Notes:               "lens cracked",
		}},
	}
	checklist, err := env.svc.Fulfillment.RecordChecklist(ctx, env.warehouse, req)
	if err != nil {
		t.Fatalf("record checklist: %v", err)
	}
	if checklist.OverallStatus != entity.ChecklistNotReady {
		t.Errorf("expected not_ready, got %s", checklist.OverallStatus)
	}
	if got := env.stockOf(t, item.ID); got != 6 {
		t.Errorf("stock moved for a not-ready checklist: %v", got)
	}

	// the DO stays where it was, so preparation can be retried after a fix
	do2, _ := env.svc.Fulfillment.GetDO(ctx, do.ID)
	if do2.Status != entity.DOStatusCreated {
		t.Errorf("expected DO created, got %s", do2.Status)
	}
	if _, err := env.svc.Fulfillment.RecordChecklist(ctx, env.warehouse, goodChecklist(do)); err != nil {
		t.Fatalf("retry checklist: %v", err)
	}
	if got := env.stockOf(t, item.ID); got != 4 {
		t.Errorf("expected stock 4 after retry, got %v", got)
	}
}

func TestRecordChecklistShortfallRollsBack(t *testing.T) {
	env := setupServiceTest(t)
	ctx := context.Background()
	item := testutil.SeedItem(t, env.db, "Rak Gudang", 5)
	do := env.createDO(t, item.ID, 5)

	// stock drains between validation and preparation
	if _, err := env.svc.Stock.Adjust(ctx, env.warehouse, item.ID, &AdjustStockRequest{
		Quantity:  3,
		Direction: entity.StockDirectionSubtract,
		Notes:     "emergency issue to another site",
	}); err != nil {
		t.Fatalf("drain stock: %v", err)
	}

	_, err := env.svc.Fulfillment.RecordChecklist(ctx, env.warehouse, goodChecklist(do))
	var insufficient *StockInsufficientError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected StockInsufficientError, got %v", err)
	}

	// the whole transaction rolled back: no checklist row, stock untouched,
	// DO still created
	var count int64
	env.db.Model(&entity.GoodsPreparationChecklist{}).Where("do_id = ?", do.ID).Count(&count)
	if count != 0 {
		t.Errorf("checklist persisted despite rollback: %d rows", count)
	}
	if got := env.stockOf(t, item.ID); got != 2 {
		t.Errorf("expected stock 2, got %v", got)
	}
	do2, _ := env.svc.Fulfillment.GetDO(ctx, do.ID)
	if do2.Status != entity.DOStatusCreated {
		t.Errorf("expected DO created, got %s", do2.Status)
	}
}

func TestRecordChecklistRejectsDuplicateLines(t *testing.T) {
	env := setupServiceTest(t)
	ctx := context.Background()
	bolt := testutil.SeedItem(t, env.db, "Baut M8", 10)
	nut := testutil.SeedItem(t, env.db, "Mur M8", 10)
	frb := env.createApprovedFRB(t, []FRBItemRequest{
		{ItemID: bolt.ID, RequestedQuantity: 4},
		{ItemID: nut.ID, RequestedQuantity: 3},
	})
	result, err := env.svc.FRB.Validate(ctx, env.purchasing, frb.ID, approveAll(frb))
	if err != nil {
		t.Fatalf("validate FRB: %v", err)
	}
	do := result.DeliveryOrder
	if do == nil || len(do.Items) != 2 {
		t.Fatalf("expected a two-line DO, got %+v", do)
	}

	// the same line twice must not stand in for the missing one
	dup := ChecklistItemRequest{
		ItemID:              bolt.ID,
		ConditionStatus:     entity.ItemConditionGood,
		FunctionalityStatus: entity.ItemFunctionalityWorking,
	}
	_, err = env.svc.Fulfillment.RecordChecklist(ctx, env.warehouse, &RecordChecklistRequest{
		DOID:  do.ID,
		Items: []ChecklistItemRequest{dup, dup},
	})
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError for duplicated line, got %v", err)
	}

	// one entry for a two-line DO is refused as well
	_, err = env.svc.Fulfillment.RecordChecklist(ctx, env.warehouse, &RecordChecklistRequest{
		DOID:  do.ID,
		Items: []ChecklistItemRequest{dup},
	})
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError for missing line, got %v", err)
	}

	// nothing stuck: no checklist rows, stock untouched
	var count int64
	env.db.Model(&entity.GoodsPreparationChecklist{}).Where("do_id = ?", do.ID).Count(&count)
	if count != 0 {
		t.Errorf("checklist persisted despite refusal: %d rows", count)
	}
	if got := env.stockOf(t, bolt.ID); got != 10 {
		t.Errorf("expected bolt stock 10, got %v", got)
	}
	if got := env.stockOf(t, nut.ID); got != 10 {
		t.Errorf("expected nut stock 10, got %v", got)
	}

	// the complete checklist still goes through and decrements each line once
	checklist, err := env.svc.Fulfillment.RecordChecklist(ctx, env.warehouse, goodChecklist(do))
	if err != nil {
		t.Fatalf("record checklist: %v", err)
	}
	if checklist.OverallStatus != entity.ChecklistReadyToShip {
		t.Errorf("expected ready_to_ship, got %s", checklist.OverallStatus)
	}
	if got := env.stockOf(t, bolt.ID); got != 6 {
		t.Errorf("expected bolt stock 6, got %v", got)
	}
	if got := env.stockOf(t, nut.ID); got != 7 {
		t.Errorf("expected nut stock 7, got %v", got)
	}
}

func TestSendDORequiresPrepared(t *testing.T) {
	env := setupServiceTest(t)
	ctx := context.Background()
	item := testutil.SeedItem(t, env.db, "Tenda Proyek", 3)
	do := env.createDO(t, item.ID, 1)

	_, err := env.svc.Fulfillment.SendDO(ctx, env.warehouse, do.ID)
	var transition *InvalidTransitionError
	if !errors.As(err, &transition) {
		t.Fatalf("expected InvalidTransitionError, got %v", err)
	}

	if _, err := env.svc.Fulfillment.RecordChecklist(ctx, env.warehouse, goodChecklist(do)); err != nil {
		t.Fatalf("record checklist: %v", err)
	}
	sent, err := env.svc.Fulfillment.SendDO(ctx, env.warehouse, do.ID)
	if err != nil {
		t.Fatalf("send DO: %v", err)
	}
	if sent.Status != entity.DOStatusSent {
		t.Errorf("expected sent, got %s", sent.Status)
	}
}

// sendDO pushes a created DO through preparation and dispatch.
func (e *testEnv) sendDO(t *testing.T, do *entity.DeliveryOrder) {
	t.Helper()
	ctx := context.Background()
	if _, err := e.svc.Fulfillment.RecordChecklist(ctx, e.warehouse, goodChecklist(do)); err != nil {
		t.Fatalf("record checklist: %v", err)
	}
	if _, err := e.svc.Fulfillment.SendDO(ctx, e.warehouse, do.ID); err != nil {
		t.Fatalf("send DO: %v", err)
	}
}

func TestRecordTTBAcceptCompletesFRB(t *testing.T) {
	env := setupServiceTest(t)
	ctx := context.Background()
	item := testutil.SeedItem(t, env.db, "Kipas Industri", 10)
	do := env.createDO(t, item.ID, 4)
	env.sendDO(t, do)

	// acceptance without the recipient's signature is refused
	_, err := env.svc.Fulfillment.RecordTTB(ctx, env.warehouse, &RecordTTBRequest{
		DOID:          do.ID,
		Accepted:      true,
		RecipientName: "Mandor Lapangan",
	})
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	ttb, err := env.svc.Fulfillment.RecordTTB(ctx, env.warehouse, &RecordTTBRequest{
		DOID:               do.ID,
		Accepted:           true,
		RecipientName:      "Mandor Lapangan",
		RecipientSignature: "sig/2026/abc.png",
	})
	if err != nil {
		t.Fatalf("record TTB: %v", err)
	}
	if ttb.Status != entity.TTBStatusAccepted {
		t.Errorf("expected accepted, got %s", ttb.Status)
	}

	do2, _ := env.svc.Fulfillment.GetDO(ctx, do.ID)
	if do2.Status != entity.DOStatusDelivered {
		t.Errorf("expected delivered, got %s", do2.Status)
	}

	// the sole DO delivered with no open PRs closes the FRB
	frb, _ := env.svc.FRB.Get(ctx, do.FRBID)
	if frb.Status != entity.FRBStatusCompleted {
		t.Errorf("expected completed, got %s", frb.Status)
	}

	// one TTB per DO
	_, err = env.svc.Fulfillment.RecordTTB(ctx, env.warehouse, &RecordTTBRequest{
		DOID:               do.ID,
		Accepted:           true,
		RecipientName:      "Mandor Lapangan",
		RecipientSignature: "sig/2026/abc.png",
	})
	var transition *InvalidTransitionError
	var conflict *ConflictError
	if !errors.As(err, &transition) && !errors.As(err, &conflict) {
		t.Fatalf("expected refusal of second TTB, got %v", err)
	}
}

func TestRecordTTBRejectReturnsStock(t *testing.T) {
	env := setupServiceTest(t)
	ctx := context.Background()
	item := testutil.SeedItem(t, env.db, "Lampu Sorot", 7)
	do := env.createDO(t, item.ID, 5)
	env.sendDO(t, do)

	if got := env.stockOf(t, item.ID); got != 2 {
		t.Fatalf("expected stock 2 after dispatch, got %v", got)
	}

	ttb, err := env.svc.Fulfillment.RecordTTB(ctx, env.warehouse, &RecordTTBRequest{
		DOID:          do.ID,
		RecipientName: "Mandor Lapangan",
		Rejection: &TTBRejectionRequest{
			Reason:         entity.RejectionReasonDamaged,
			DetailedReason: "crates arrived crushed",
		},
	})
	if err != nil {
		t.Fatalf("record TTB: %v", err)
	}
	if ttb.Status != entity.TTBStatusRejected {
		t.Errorf("expected rejected, got %s", ttb.Status)
	}

	// the rejected goods come back, so the ledger nets to zero for the trip
	if got := env.stockOf(t, item.ID); got != 7 {
		t.Errorf("expected stock 7 after return, got %v", got)
	}

	do2, _ := env.svc.Fulfillment.GetDO(ctx, do.ID)
	if do2.Status != entity.DOStatusRejectedByRecipient {
		t.Errorf("expected rejected_by_recipient, got %s", do2.Status)
	}
	frb, _ := env.svc.FRB.Get(ctx, do.FRBID)
	if frb.Status != entity.FRBStatusRejectedByRecipient {
		t.Errorf("expected FRB rejected_by_recipient, got %s", frb.Status)
	}

	// the rejection opened a pending report
	reports, total, err := env.svc.Fulfillment.ListRejectionReports(ctx, 1, 10, nil)
	if err != nil {
		t.Fatalf("list reports: %v", err)
	}
	if total != 1 {
		t.Fatalf("expected 1 report, got %d", total)
	}
	if reports[0].ReconciliationStatus != entity.ReconciliationPending {
		t.Errorf("expected pending, got %s", reports[0].ReconciliationStatus)
	}
}

func TestRecordTTBRejectValidation(t *testing.T) {
	env := setupServiceTest(t)
	ctx := context.Background()
	item := testutil.SeedItem(t, env.db, "Pagar Seng", 4)
	do := env.createDO(t, item.ID, 2)
	env.sendDO(t, do)

	// rejection needs details
	_, err := env.svc.Fulfillment.RecordTTB(ctx, env.warehouse, &RecordTTBRequest{
		DOID:          do.ID,
		RecipientName: "Mandor",
	})
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	// and a known reason
	_, err = env.svc.Fulfillment.RecordTTB(ctx, env.warehouse, &RecordTTBRequest{
		DOID:          do.ID,
		RecipientName: "Mandor",
		Rejection: &TTBRejectionRequest{
			Reason:         "did_not_like_it",
			DetailedReason: "n/a",
		},
	})
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError for unknown reason, got %v", err)
	}
}

func TestReconciliationLifecycle(t *testing.T) {
	env := setupServiceTest(t)
	ctx := context.Background()
	item := testutil.SeedItem(t, env.db, "Pompa Celup", 3)
	do := env.createDO(t, item.ID, 2)
	env.sendDO(t, do)

	if _, err := env.svc.Fulfillment.RecordTTB(ctx, env.warehouse, &RecordTTBRequest{
		DOID:          do.ID,
		RecipientName: "Mandor",
		Rejection: &TTBRejectionRequest{
			Reason:         entity.RejectionReasonWrongItem,
			DetailedReason: "ordered 3in, received 2in",
		},
	}); err != nil {
		t.Fatalf("record TTB: %v", err)
	}

	reports, _, err := env.svc.Fulfillment.ListRejectionReports(ctx, 1, 10, nil)
	if err != nil || len(reports) != 1 {
		t.Fatalf("list reports: %v (%d)", err, len(reports))
	}
	reportID := reports[0].ID

	// resolving straight from pending is allowed, but notes are mandatory
	_, err = env.svc.Fulfillment.ResolveReconciliation(ctx, env.purchasing, reportID, "")
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	report, err := env.svc.Fulfillment.StartReconciliation(ctx, env.purchasing, reportID)
	if err != nil {
		t.Fatalf("start reconciliation: %v", err)
	}
	if report.ReconciliationStatus != entity.ReconciliationInProgress {
		t.Errorf("expected in_progress, got %s", report.ReconciliationStatus)
	}

	// cannot start twice
	_, err = env.svc.Fulfillment.StartReconciliation(ctx, env.purchasing, reportID)
	var transition *InvalidTransitionError
	if !errors.As(err, &transition) {
		t.Fatalf("expected InvalidTransitionError, got %v", err)
	}

	report, err = env.svc.Fulfillment.ResolveReconciliation(ctx, env.purchasing, reportID, "replacement shipped on new DO")
	if err != nil {
		t.Fatalf("resolve reconciliation: %v", err)
	}
	if report.ReconciliationStatus != entity.ReconciliationResolved {
		t.Errorf("expected resolved, got %s", report.ReconciliationStatus)
	}
	if report.ResolutionDate == nil {
		t.Error("expected resolution date to be stamped")
	}

	// resolved is terminal
	_, err = env.svc.Fulfillment.ResolveReconciliation(ctx, env.purchasing, reportID, "again")
	if !errors.As(err, &transition) {
		t.Fatalf("expected InvalidTransitionError, got %v", err)
	}
}
