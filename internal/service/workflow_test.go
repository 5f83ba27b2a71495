package service

import (
	"context"
	"testing"
	"time"

	"github.com/iniulez/spbsfi/internal/entity"
	"github.com/iniulez/spbsfi/internal/testutil"
)

// TestFullWorkflow walks one request end to end: a partially stocked FRB
// fans out into a DO and a PR, the PR becomes a PO that is shipped and
// received, the DO is prepared, sent and accepted, and only once both
// branches finish does the FRB complete.
func TestFullWorkflow(t *testing.T) {
	env := setupServiceTest(t)
	ctx := context.Background()
	item := testutil.SeedItem(t, env.db, "Conduit 20mm", 6)

	frb := env.createApprovedFRB(t, []FRBItemRequest{{ItemID: item.ID, RequestedQuantity: 10}})
	result, err := env.svc.FRB.Validate(ctx, env.purchasing, frb.ID, approveAll(frb))
	if err != nil {
		t.Fatalf("validate FRB: %v", err)
	}
	if result.FRB.Status != entity.FRBStatusPartiallyStocked {
		t.Fatalf("expected partially_stocked, got %s", result.FRB.Status)
	}
	do := result.DeliveryOrder
	pr := result.PR
	if do == nil || pr == nil {
		t.Fatal("expected both a DO and a PR")
	}
	if do.Items[0].DeliveredQuantity != 6 || pr.Items[0].QuantityToPurchase != 4 {
		t.Fatalf("unexpected split: DO %v, PR %v", do.Items[0].DeliveredQuantity, pr.Items[0].QuantityToPurchase)
	}

	// delivery branch: prepare, send, accept
	env.sendDO(t, do)
	if _, err := env.svc.Fulfillment.RecordTTB(ctx, env.warehouse, &RecordTTBRequest{
		DOID:               do.ID,
		Accepted:           true,
		RecipientName:      "Mandor Lapangan",
		RecipientSignature: "sig/2026/workflow.png",
	}); err != nil {
		t.Fatalf("record TTB: %v", err)
	}

	// the purchase branch is still open, so the FRB must not complete yet
	current, _ := env.svc.FRB.Get(ctx, frb.ID)
	if current.Status == entity.FRBStatusCompleted {
		t.Fatal("FRB completed while the PR was still open")
	}

	// purchase branch: approve PR, issue and ship PO, receive the goods
	if _, err := env.svc.Procurement.DecidePR(ctx, env.director, pr.ID, true, ""); err != nil {
		t.Fatalf("approve PR: %v", err)
	}
	supplier := seedSupplier(t, env)
	po, err := env.svc.Procurement.CreatePO(ctx, env.purchasing, &CreatePORequest{
		PRID:                 pr.ID,
		SupplierID:           supplier.ID,
		ExpectedDeliveryDate: time.Now().Add(7 * 24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("create PO: %v", err)
	}
	if _, err := env.svc.Procurement.ShipPO(ctx, env.purchasing, po.ID); err != nil {
		t.Fatalf("ship PO: %v", err)
	}
	if _, err := env.svc.Receiving.RecordGRN(ctx, env.warehouse, &RecordGRNRequest{
		POID: po.ID,
		Items: []GRNItemRequest{{
			ItemID:             item.ID,
			ReceivedQuantity:   4,
			ConditionAtReceipt: entity.ReceiptConditionGood,
		}},
	}); err != nil {
		t.Fatalf("record GRN: %v", err)
	}

	// both branches closed: the receipt is what tips the FRB over
	current, _ = env.svc.FRB.Get(ctx, frb.ID)
	if current.Status != entity.FRBStatusCompleted {
		t.Errorf("expected completed, got %s", current.Status)
	}

	// stock ledger: 6 out for the DO, 4 in from the GRN
	if got := env.stockOf(t, item.ID); got != 4 {
		t.Errorf("expected final stock 4, got %v", got)
	}
	if count := env.movementCount(t, item.ID); count != 2 {
		t.Errorf("expected 2 ledger entries, got %d", count)
	}
}
