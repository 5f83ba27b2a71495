package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/iniulez/spbsfi/internal/entity"
	"github.com/iniulez/spbsfi/internal/testutil"
)

// createShippedPO sets up a zero-stock FRB for the item, runs it to an
// approved PR, issues the PO, and marks it shipped.
func (e *testEnv) createShippedPO(t *testing.T, itemID string, quantity float64) *entity.PurchaseOrder {
	t.Helper()
	ctx := context.Background()

	pr := e.createApprovedPR(t, itemID, quantity)
	supplier := seedSupplier(t, e)
	po, err := e.svc.Procurement.CreatePO(ctx, e.purchasing, &CreatePORequest{
		PRID:                 pr.ID,
		SupplierID:           supplier.ID,
		ExpectedDeliveryDate: time.Now().Add(7 * 24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("create PO: %v", err)
	}
	po, err = e.svc.Procurement.ShipPO(ctx, e.purchasing, po.ID)
	if err != nil {
		t.Fatalf("ship PO: %v", err)
	}
	return po
}

func TestRecordGRNMovesStockIn(t *testing.T) {
	env := setupServiceTest(t)
	ctx := context.Background()
	item := testutil.SeedItem(t, env.db, "Panel Listrik", 0)
	po := env.createShippedPO(t, item.ID, 6)

	grn, err := env.svc.Receiving.RecordGRN(ctx, env.warehouse, &RecordGRNRequest{
		POID: po.ID,
		Items: []GRNItemRequest{{
			ItemID:             item.ID,
			ReceivedQuantity:   6,
			ConditionAtReceipt: entity.ReceiptConditionGood,
		}},
	})
	if err != nil {
		t.Fatalf("record GRN: %v", err)
	}
	if grn.OverallCondition != entity.GRNConditionGood {
		t.Errorf("expected good condition, got %s", grn.OverallCondition)
	}
	if got := env.stockOf(t, item.ID); got != 6 {
		t.Errorf("expected stock 6, got %v", got)
	}

	// full coverage closes the PO
	po, err = env.svc.Procurement.GetPO(ctx, po.ID)
	if err != nil {
		t.Fatalf("get PO: %v", err)
	}
	if po.Status != entity.POStatusFullyReceived {
		t.Errorf("expected fully_received, got %s", po.Status)
	}
	if po.ActualDeliveryDate == nil {
		t.Error("expected actual delivery date to be stamped")
	}
}

func TestRecordGRNPartialThenComplete(t *testing.T) {
	env := setupServiceTest(t)
	ctx := context.Background()
	item := testutil.SeedItem(t, env.db, "Keramik 60x60", 0)
	po := env.createShippedPO(t, item.ID, 10)

	_, err := env.svc.Receiving.RecordGRN(ctx, env.warehouse, &RecordGRNRequest{
		POID: po.ID,
		Items: []GRNItemRequest{{
			ItemID:             item.ID,
			ReceivedQuantity:   4,
			ConditionAtReceipt: entity.ReceiptConditionGood,
		}},
	})
	if err != nil {
		t.Fatalf("first GRN: %v", err)
	}
	got, _ := env.svc.Procurement.GetPO(ctx, po.ID)
	if got.Status != entity.POStatusPartiallyReceived {
		t.Errorf("expected partially_received, got %s", got.Status)
	}

	// the remainder arrives on a later truck
	_, err = env.svc.Receiving.RecordGRN(ctx, env.warehouse, &RecordGRNRequest{
		POID: po.ID,
		Items: []GRNItemRequest{{
			ItemID:             item.ID,
			ReceivedQuantity:   6,
			ConditionAtReceipt: entity.ReceiptConditionGood,
		}},
	})
	if err != nil {
		t.Fatalf("second GRN: %v", err)
	}
	got, _ = env.svc.Procurement.GetPO(ctx, po.ID)
	if got.Status != entity.POStatusFullyReceived {
		t.Errorf("expected fully_received, got %s", got.Status)
	}
	if stock := env.stockOf(t, item.ID); stock != 10 {
		t.Errorf("expected stock 10, got %v", stock)
	}
}

func TestRecordGRNDamagedReturnedExcludedFromStock(t *testing.T) {
	env := setupServiceTest(t)
	ctx := context.Background()
	item := testutil.SeedItem(t, env.db, "Kaca Tempered", 0)
	po := env.createShippedPO(t, item.ID, 5)

	grn, err := env.svc.Receiving.RecordGRN(ctx, env.warehouse, &RecordGRNRequest{
		POID: po.ID,
		Items: []GRNItemRequest{{
			ItemID:             item.ID,
			ReceivedQuantity:   5,
			ConditionAtReceipt: entity.ReceiptConditionMajorDamage,
			QuantityDamaged:    2,
			ActionTaken:        entity.ActionReturnedToSupplier,
		}},
	})
	if err != nil {
		t.Fatalf("record GRN: %v", err)
	}
	if grn.OverallCondition != entity.GRNConditionPartiallyDamaged {
		t.Errorf("expected partially_damaged, got %s", grn.OverallCondition)
	}
	// only the undamaged part enters stock
	if got := env.stockOf(t, item.ID); got != 3 {
		t.Errorf("expected stock 3, got %v", got)
	}
}

func TestRecordGRNDamagedAcceptedEntersStock(t *testing.T) {
	env := setupServiceTest(t)
	ctx := context.Background()
	item := testutil.SeedItem(t, env.db, "Pintu Besi", 0)
	po := env.createShippedPO(t, item.ID, 4)

	_, err := env.svc.Receiving.RecordGRN(ctx, env.warehouse, &RecordGRNRequest{
		POID: po.ID,
		Items: []GRNItemRequest{{
			ItemID:             item.ID,
			ReceivedQuantity:   4,
			ConditionAtReceipt: entity.ReceiptConditionMinorDamage,
			QuantityDamaged:    1,
			ActionTaken:        entity.ActionAccepted,
		}},
	})
	if err != nil {
		t.Fatalf("record GRN: %v", err)
	}
	// accepted damage still goes on the shelf
	if got := env.stockOf(t, item.ID); got != 4 {
		t.Errorf("expected stock 4, got %v", got)
	}
}

func TestRecordGRNValidation(t *testing.T) {
	env := setupServiceTest(t)
	ctx := context.Background()
	item := testutil.SeedItem(t, env.db, "Baut M12", 0)
	po := env.createShippedPO(t, item.ID, 10)

	cases := []struct {
		name string
		line GRNItemRequest
	}{
		{"damaged exceeds received", GRNItemRequest{
			ItemID: item.ID, ReceivedQuantity: 3, ConditionAtReceipt: entity.ReceiptConditionMajorDamage, QuantityDamaged: 5, ActionTaken: entity.ActionReturnedToSupplier,
		}},
		{"damage without action", GRNItemRequest{
			ItemID: item.ID, ReceivedQuantity: 3, ConditionAtReceipt: entity.ReceiptConditionMajorDamage, QuantityDamaged: 1,
		}},
		{"zero received", GRNItemRequest{
			ItemID: item.ID, ReceivedQuantity: 0, ConditionAtReceipt: entity.ReceiptConditionGood,
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.svc.Receiving.RecordGRN(ctx, env.warehouse, &RecordGRNRequest{
				POID:  po.ID,
				Items: []GRNItemRequest{tc.line},
			})
			var validation *ValidationError
			if !errors.As(err, &validation) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
		})
	}

	// nothing entered stock from the refused attempts
	if got := env.stockOf(t, item.ID); got != 0 {
		t.Errorf("expected stock 0, got %v", got)
	}
}

func TestRecordGRNRejectsItemsNotOnOrder(t *testing.T) {
	env := setupServiceTest(t)
	ctx := context.Background()
	ordered := testutil.SeedItem(t, env.db, "Pipa PVC 3in", 0)
	stray := testutil.SeedItem(t, env.db, "Pipa PVC 2in", 0)
	po := env.createShippedPO(t, ordered.ID, 5)

	_, err := env.svc.Receiving.RecordGRN(ctx, env.warehouse, &RecordGRNRequest{
		POID: po.ID,
		Items: []GRNItemRequest{{
			ItemID:             stray.ID,
			ReceivedQuantity:   5,
			ConditionAtReceipt: entity.ReceiptConditionGood,
		}},
	})
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError for unordered item, got %v", err)
	}

	// neither item gained stock and the PO is untouched
	if got := env.stockOf(t, stray.ID); got != 0 {
		t.Errorf("unordered item gained stock: %v", got)
	}
	if got := env.stockOf(t, ordered.ID); got != 0 {
		t.Errorf("ordered item gained stock: %v", got)
	}
	po, err = env.svc.Procurement.GetPO(ctx, po.ID)
	if err != nil {
		t.Fatalf("get PO: %v", err)
	}
	if po.Status != entity.POStatusShipped {
		t.Errorf("expected shipped, got %s", po.Status)
	}
}

func TestRecordGRNRequiresShippedPO(t *testing.T) {
	env := setupServiceTest(t)
	ctx := context.Background()
	item := testutil.SeedItem(t, env.db, "Gerinda Tangan", 0)

	pr := env.createApprovedPR(t, item.ID, 2)
	supplier := seedSupplier(t, env)
	po, err := env.svc.Procurement.CreatePO(ctx, env.purchasing, &CreatePORequest{
		PRID:                 pr.ID,
		SupplierID:           supplier.ID,
		ExpectedDeliveryDate: time.Now().Add(24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("create PO: %v", err)
	}

	// still ordered, not shipped
	_, err = env.svc.Receiving.RecordGRN(ctx, env.warehouse, &RecordGRNRequest{
		POID: po.ID,
		Items: []GRNItemRequest{{
			ItemID: item.ID, ReceivedQuantity: 2, ConditionAtReceipt: entity.ReceiptConditionGood,
		}},
	})
	var transition *InvalidTransitionError
	if !errors.As(err, &transition) {
		t.Fatalf("expected InvalidTransitionError, got %v", err)
	}
}
