package entity

import "time"

// Item is a stocked good. CurrentStock is never written directly; every
// mutation goes through the stock ledger so the non-negative invariant holds.
type Item struct {
	ID                 string    `json:"id" gorm:"primaryKey;size:32"`
	ItemName           string    `json:"item_name" gorm:"size:200;not null"`
	Description        string    `json:"description" gorm:"type:text"`
	Unit               string    `json:"unit" gorm:"size:20;default:pcs"`
	CurrentStock       float64   `json:"current_stock" gorm:"type:decimal(12,2);not null;default:0"`
	EstimatedUnitPrice float64   `json:"estimated_unit_price" gorm:"type:decimal(15,2);not null;default:0"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func (Item) TableName() string {
	return "items"
}

// Stock adjustment directions
const (
	StockDirectionAdd      = "add"
	StockDirectionSubtract = "subtract"
)

// Stock movement reference types
const (
	StockRefGRN          = "grn"           // receiving from supplier
	StockRefChecklist    = "checklist"     // preparation for delivery
	StockRefTTBRejection = "ttb_rejection" // compensating return after rejected delivery
	StockRefManual       = "manual"        // admin/warehouse correction
)

// StockMovement is an append-only ledger line for one adjustment.
// Quantity is signed: positive for add, negative for subtract.
type StockMovement struct {
	ID            string    `json:"id" gorm:"primaryKey;size:32"`
	ItemID        string    `json:"item_id" gorm:"size:32;not null;index"`
	Quantity      float64   `json:"quantity" gorm:"type:decimal(12,2);not null"`
	ResultStock   float64   `json:"result_stock" gorm:"type:decimal(12,2);not null"`
	ReferenceType string    `json:"reference_type" gorm:"size:20;not null"`
	ReferenceID   string    `json:"reference_id" gorm:"size:32;index"`
	Notes         string    `json:"notes" gorm:"type:text"`
	CreatedBy     string    `json:"created_by" gorm:"size:32"`
	CreatedAt     time.Time `json:"created_at"`
}

func (StockMovement) TableName() string {
	return "stock_movements"
}
