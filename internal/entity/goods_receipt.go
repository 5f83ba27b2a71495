package entity

import "time"

// GoodsReceipt (GRN) records goods arriving from a supplier against a PO.
// Recording it is what moves stock in and advances the PO.
type GoodsReceipt struct {
	ID               string    `json:"id" gorm:"primaryKey;size:32"`
	GRNCode          string    `json:"grn_code" gorm:"size:32;uniqueIndex;not null"`
	POID             string    `json:"po_id" gorm:"size:32;not null;index"`
	WarehouseID      string    `json:"warehouse_id" gorm:"size:32;not null"`
	ReceiptDate      time.Time `json:"receipt_date"`
	OverallCondition string    `json:"overall_condition" gorm:"size:32;not null"`
	Notes            string    `json:"notes" gorm:"type:text"`
	CreatedAt        time.Time `json:"created_at"`

	Items []GRNItem `json:"items,omitempty" gorm:"foreignKey:GRNID"`
}

func (GoodsReceipt) TableName() string {
	return "goods_receipts"
}

// Overall receipt conditions
const (
	GRNConditionGood             = "good"
	GRNConditionDamaged          = "damaged"
	GRNConditionPartiallyDamaged = "partially_damaged"
)

// Per-line condition at receipt
const (
	ReceiptConditionGood           = "good"
	ReceiptConditionMinorDamage    = "minor_damage"
	ReceiptConditionMajorDamage    = "major_damage"
	ReceiptConditionMismatchedSpec = "mismatched_spec"
)

// Action taken for the damaged part of a line
const (
	ActionAccepted           = "accepted"
	ActionReturnedToSupplier = "returned_to_supplier"
	ActionToBeRepaired       = "to_be_repaired"
)

// GRNItem is one received line. QuantityDamaged never exceeds
// ReceivedQuantity.
type GRNItem struct {
	ID                 string  `json:"id" gorm:"primaryKey;size:32"`
	GRNID              string  `json:"grn_id" gorm:"size:32;not null;index"`
	ItemID             string  `json:"item_id" gorm:"size:32;not null"`
	ReceivedQuantity   float64 `json:"received_quantity" gorm:"type:decimal(12,2);not null"`
	ConditionAtReceipt string  `json:"condition_at_receipt" gorm:"size:32;not null"`
	QuantityDamaged    float64 `json:"quantity_damaged" gorm:"type:decimal(12,2);default:0"`
	ActionTaken        string  `json:"action_taken" gorm:"size:32;not null"`
	PhotoDamaged       string  `json:"photo_damaged" gorm:"size:512"`
	SortOrder          int     `json:"sort_order" gorm:"default:0"`
}

func (GRNItem) TableName() string {
	return "grn_items"
}
