package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/iniulez/spbsfi/internal/entity"
	"github.com/iniulez/spbsfi/internal/testutil"
)

func TestCreateFRBAsDraft(t *testing.T) {
	env := setupServiceTest(t)
	ctx := context.Background()
	item := testutil.SeedItem(t, env.db, "Genset 5kVA", 2)
	project := testutil.SeedProject(t, env.db, "Gedung A", env.pm.ID)

	frb, err := env.svc.FRB.Create(ctx, env.pm, &CreateFRBRequest{
		ProjectID:        project.ID,
		DeliveryDeadline: time.Now().Add(7 * 24 * time.Hour),
		RecipientName:    "Mandor Lapangan",
		DeliveryAddress:  "Jl. Sudirman 10",
		Items:            []FRBItemRequest{{ItemID: item.ID, RequestedQuantity: 1}},
		AsDraft:          true,
	})
	if err != nil {
		t.Fatalf("create FRB: %v", err)
	}
	if frb.Status != entity.FRBStatusDraft {
		t.Errorf("expected draft, got %s", frb.Status)
	}
	if frb.FRBCode == "" {
		t.Error("expected a generated FRB code")
	}
	if len(frb.Items) != 1 {
		t.Fatalf("expected 1 line, got %d", len(frb.Items))
	}
	// the unit price is snapshotted on the line at creation
	if frb.Items[0].EstimatedUnitPrice != item.EstimatedUnitPrice {
		t.Errorf("expected snapshotted price %v, got %v", item.EstimatedUnitPrice, frb.Items[0].EstimatedUnitPrice)
	}

	// a draft is not decidable
	_, err = env.svc.FRB.DirectorDecide(ctx, env.director, frb.ID, true, "")
	var transition *InvalidTransitionError
	if !errors.As(err, &transition) {
		t.Fatalf("expected InvalidTransitionError, got %v", err)
	}
}

func TestDirectorRejectRequiresReason(t *testing.T) {
	env := setupServiceTest(t)
	ctx := context.Background()
	item := testutil.SeedItem(t, env.db, "Scaffolding Set", 10)
	project := testutil.SeedProject(t, env.db, "Gedung B", env.pm.ID)

	frb, err := env.svc.FRB.Create(ctx, env.pm, &CreateFRBRequest{
		ProjectID:        project.ID,
		DeliveryDeadline: time.Now().Add(7 * 24 * time.Hour),
		RecipientName:    "Mandor",
		DeliveryAddress:  "Jl. Thamrin 5",
		Items:            []FRBItemRequest{{ItemID: item.ID, RequestedQuantity: 2}},
	})
	if err != nil {
		t.Fatalf("create FRB: %v", err)
	}

	_, err = env.svc.FRB.DirectorDecide(ctx, env.director, frb.ID, false, "")
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError for empty reason, got %v", err)
	}

	frb, err = env.svc.FRB.DirectorDecide(ctx, env.director, frb.ID, false, "over budget")
	if err != nil {
		t.Fatalf("reject FRB: %v", err)
	}
	if frb.Status != entity.FRBStatusRejectedByDirector {
		t.Errorf("expected rejected_by_director, got %s", frb.Status)
	}
	if frb.DirectorRejectionReason != "over budget" {
		t.Errorf("expected stored reason, got %q", frb.DirectorRejectionReason)
	}

	// the PM may fix and resubmit, which clears the rejection reason
	frb, err = env.svc.FRB.Submit(ctx, env.pm, frb.ID)
	if err != nil {
		t.Fatalf("resubmit FRB: %v", err)
	}
	if frb.Status != entity.FRBStatusAwaitingApproval {
		t.Errorf("expected awaiting_director_approval, got %s", frb.Status)
	}
	if frb.DirectorRejectionReason != "" {
		t.Errorf("rejection reason not cleared: %q", frb.DirectorRejectionReason)
	}
}

func TestDirectorDecideRequiresDirectorRole(t *testing.T) {
	env := setupServiceTest(t)
	ctx := context.Background()
	item := testutil.SeedItem(t, env.db, "Helm Proyek", 50)
	project := testutil.SeedProject(t, env.db, "Gedung C", env.pm.ID)

	frb, err := env.svc.FRB.Create(ctx, env.pm, &CreateFRBRequest{
		ProjectID:        project.ID,
		DeliveryDeadline: time.Now().Add(24 * time.Hour),
		RecipientName:    "Mandor",
		DeliveryAddress:  "Jl. Gatot Subroto 1",
		Items:            []FRBItemRequest{{ItemID: item.ID, RequestedQuantity: 5}},
	})
	if err != nil {
		t.Fatalf("create FRB: %v", err)
	}

	_, err = env.svc.FRB.DirectorDecide(ctx, env.pm, frb.ID, true, "")
	var forbidden *ForbiddenError
	if !errors.As(err, &forbidden) {
		t.Fatalf("expected ForbiddenError, got %v", err)
	}
}

func TestValidateFullyStocked(t *testing.T) {
	env := setupServiceTest(t)
	ctx := context.Background()
	item := testutil.SeedItem(t, env.db, "Bata Ringan", 100)

	frb := env.createApprovedFRB(t, []FRBItemRequest{{ItemID: item.ID, RequestedQuantity: 40}})
	result, err := env.svc.FRB.Validate(ctx, env.purchasing, frb.ID, approveAll(frb))
	if err != nil {
		t.Fatalf("validate FRB: %v", err)
	}

	if result.FRB.Status != entity.FRBStatusFullyStocked {
		t.Errorf("expected fully_stocked, got %s", result.FRB.Status)
	}
	if result.DeliveryOrder == nil {
		t.Fatal("expected a delivery order")
	}
	if result.PR != nil {
		t.Errorf("unexpected PR %s for fully stocked request", result.PR.PRCode)
	}
	if len(result.DeliveryOrder.Items) != 1 || result.DeliveryOrder.Items[0].DeliveredQuantity != 40 {
		t.Errorf("unexpected DO lines: %+v", result.DeliveryOrder.Items)
	}
	if result.DeliveryOrder.Status != entity.DOStatusCreated {
		t.Errorf("expected DO created, got %s", result.DeliveryOrder.Status)
	}

	// validation only allocates, it does not move stock
	if got := env.stockOf(t, item.ID); got != 100 {
		t.Errorf("stock moved during validation: %v", got)
	}
}

func TestValidateSplitsShortfallIntoPR(t *testing.T) {
	env := setupServiceTest(t)
	ctx := context.Background()
	stocked := testutil.SeedItem(t, env.db, "Paku 5cm", 30)
	short := testutil.SeedItem(t, env.db, "Triplek 9mm", 4)

	frb := env.createApprovedFRB(t, []FRBItemRequest{
		{ItemID: stocked.ID, RequestedQuantity: 10},
		{ItemID: short.ID, RequestedQuantity: 9},
	})
	result, err := env.svc.FRB.Validate(ctx, env.purchasing, frb.ID, approveAll(frb))
	if err != nil {
		t.Fatalf("validate FRB: %v", err)
	}

	if result.FRB.Status != entity.FRBStatusPartiallyStocked {
		t.Errorf("expected partially_stocked, got %s", result.FRB.Status)
	}
	if result.DeliveryOrder == nil || result.PR == nil {
		t.Fatalf("expected both DO and PR, got DO=%v PR=%v", result.DeliveryOrder, result.PR)
	}

	// the stocked line and the covered part of the short line go on the DO
	doQty := make(map[string]float64)
	for _, line := range result.DeliveryOrder.Items {
		doQty[line.ItemID] = line.DeliveredQuantity
	}
	if doQty[stocked.ID] != 10 || doQty[short.ID] != 4 {
		t.Errorf("unexpected DO quantities: %v", doQty)
	}

	// only the shortfall goes on the PR
	if len(result.PR.Items) != 1 {
		t.Fatalf("expected 1 PR line, got %d", len(result.PR.Items))
	}
	if result.PR.Items[0].ItemID != short.ID || result.PR.Items[0].QuantityToPurchase != 5 {
		t.Errorf("unexpected PR line: %+v", result.PR.Items[0])
	}
	if result.PR.Status != entity.PRStatusAwaitingApproval {
		t.Errorf("expected PR awaiting approval, got %s", result.PR.Status)
	}
}

func TestValidateNothingInStock(t *testing.T) {
	env := setupServiceTest(t)
	ctx := context.Background()
	item := testutil.SeedItem(t, env.db, "Lift Barang", 0)

	frb := env.createApprovedFRB(t, []FRBItemRequest{{ItemID: item.ID, RequestedQuantity: 2}})
	result, err := env.svc.FRB.Validate(ctx, env.purchasing, frb.ID, approveAll(frb))
	if err != nil {
		t.Fatalf("validate FRB: %v", err)
	}

	if result.FRB.Status != entity.FRBStatusInPurchasingProcess {
		t.Errorf("expected in_purchasing_process, got %s", result.FRB.Status)
	}
	if result.DeliveryOrder != nil {
		t.Errorf("unexpected DO for zero-stock request")
	}
	if result.PR == nil || result.PR.Items[0].QuantityToPurchase != 2 {
		t.Errorf("expected PR for full quantity, got %+v", result.PR)
	}
}

func TestValidateTwiceIsRefused(t *testing.T) {
	env := setupServiceTest(t)
	ctx := context.Background()
	item := testutil.SeedItem(t, env.db, "Kursi Kantor", 20)

	frb := env.createApprovedFRB(t, []FRBItemRequest{{ItemID: item.ID, RequestedQuantity: 5}})
	if _, err := env.svc.FRB.Validate(ctx, env.purchasing, frb.ID, approveAll(frb)); err != nil {
		t.Fatalf("first validate: %v", err)
	}

	_, err := env.svc.FRB.Validate(ctx, env.purchasing, frb.ID, approveAll(frb))
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError on repeat validation, got %v", err)
	}

	// no duplicate documents were created
	var doCount int64
	env.db.Model(&entity.DeliveryOrder{}).Where("frb_id = ?", frb.ID).Count(&doCount)
	if doCount != 1 {
		t.Errorf("expected exactly 1 DO, got %d", doCount)
	}
}

func TestValidateConcurrentlyCreatesOneSetOfDocuments(t *testing.T) {
	env := setupServiceTest(t)
	ctx := context.Background()
	item := testutil.SeedItem(t, env.db, "Genset 5KVA", 20)
	frb := env.createApprovedFRB(t, []FRBItemRequest{{ItemID: item.ID, RequestedQuantity: 5}})

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = env.svc.FRB.Validate(ctx, env.purchasing, frb.ID, approveAll(frb))
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
			continue
		}
		var conflict *ConflictError
		if !errors.As(err, &conflict) {
			t.Errorf("expected ConflictError from the losing call, got %v", err)
		}
	}
	if successes != 1 {
		t.Errorf("expected exactly one validation to succeed, got %d", successes)
	}

	var doCount int64
	env.db.Model(&entity.DeliveryOrder{}).Where("frb_id = ?", frb.ID).Count(&doCount)
	if doCount != 1 {
		t.Errorf("expected exactly 1 DO, got %d", doCount)
	}
}

func TestValidateMarksFRBInValidation(t *testing.T) {
	env := setupServiceTest(t)
	ctx := context.Background()
	a := testutil.SeedItem(t, env.db, "Helm Proyek", 10)
	b := testutil.SeedItem(t, env.db, "Rompi Safety", 10)
	frb := env.createApprovedFRB(t, []FRBItemRequest{
		{ItemID: a.ID, RequestedQuantity: 2},
		{ItemID: b.ID, RequestedQuantity: 2},
	})

	// an incomplete submission leaves the FRB parked in validation
	_, err := env.svc.FRB.Validate(ctx, env.purchasing, frb.ID, &ValidateFRBRequest{
		Items: []ValidateItemDecision{{FRBItemID: frb.Items[0].ID, ApprovedQuantity: 2}},
	})
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	frb2, err := env.svc.FRB.Get(ctx, frb.ID)
	if err != nil {
		t.Fatalf("get FRB: %v", err)
	}
	if frb2.Status != entity.FRBStatusInValidation {
		t.Errorf("expected in_purchasing_validation, got %s", frb2.Status)
	}

	// validation can be finished from there
	result, err := env.svc.FRB.Validate(ctx, env.purchasing, frb.ID, approveAll(frb))
	if err != nil {
		t.Fatalf("validate FRB: %v", err)
	}
	if result.FRB.Status != entity.FRBStatusFullyStocked {
		t.Errorf("expected fully_stocked, got %s", result.FRB.Status)
	}
}

func TestValidateRequiresDecisionPerLine(t *testing.T) {
	env := setupServiceTest(t)
	ctx := context.Background()
	a := testutil.SeedItem(t, env.db, "Kabel Tray", 10)
	b := testutil.SeedItem(t, env.db, "Klem Kabel", 10)

	frb := env.createApprovedFRB(t, []FRBItemRequest{
		{ItemID: a.ID, RequestedQuantity: 2},
		{ItemID: b.ID, RequestedQuantity: 3},
	})

	req := &ValidateFRBRequest{Items: []ValidateItemDecision{
		{FRBItemID: frb.Items[0].ID, ApprovedQuantity: 2},
	}}
	_, err := env.svc.FRB.Validate(ctx, env.purchasing, frb.ID, req)
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError for missing line decision, got %v", err)
	}
}

func TestUpdateOtherPMsFRBForbidden(t *testing.T) {
	env := setupServiceTest(t)
	ctx := context.Background()
	item := testutil.SeedItem(t, env.db, "Meja Kerja", 5)
	project := testutil.SeedProject(t, env.db, "Gedung D", env.pm.ID)

	frb, err := env.svc.FRB.Create(ctx, env.pm, &CreateFRBRequest{
		ProjectID:        project.ID,
		DeliveryDeadline: time.Now().Add(24 * time.Hour),
		RecipientName:    "Mandor",
		DeliveryAddress:  "Jl. Rasuna Said 8",
		Items:            []FRBItemRequest{{ItemID: item.ID, RequestedQuantity: 1}},
		AsDraft:          true,
	})
	if err != nil {
		t.Fatalf("create FRB: %v", err)
	}

	otherPM := seedActor(t, env.db, "Other PM", entity.RoleProjectManager)
	name := "Changed"
	_, err = env.svc.FRB.Update(ctx, otherPM, frb.ID, &UpdateFRBRequest{RecipientName: &name})
	var forbidden *ForbiddenError
	if !errors.As(err, &forbidden) {
		t.Fatalf("expected ForbiddenError, got %v", err)
	}
}
