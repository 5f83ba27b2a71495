package entity

import "time"

// PurchaseOrder (PO) is the supplier commitment derived from exactly one
// approved PR. Its item lines are the PR's lines.
type PurchaseOrder struct {
	ID                   string     `json:"id" gorm:"primaryKey;size:32"`
	POCode               string     `json:"po_code" gorm:"size:32;uniqueIndex;not null"`
	PRID                 string     `json:"pr_id" gorm:"size:32;not null;uniqueIndex"`
	SupplierID           string     `json:"supplier_id" gorm:"size:32;not null;index"`
	OrderDate            time.Time  `json:"order_date"`
	ExpectedDeliveryDate time.Time  `json:"expected_delivery_date"`
	ActualDeliveryDate   *time.Time `json:"actual_delivery_date"`
	TotalPrice           float64    `json:"total_price" gorm:"type:decimal(15,2);not null"`
	Status               string     `json:"status" gorm:"size:32;not null;default:ordered;index"`
	CreatedBy            string     `json:"created_by" gorm:"size:32"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

func (PurchaseOrder) TableName() string {
	return "purchase_orders"
}

// PO statuses
const (
	POStatusOrdered           = "ordered"
	POStatusShipped           = "shipped"
	POStatusPartiallyReceived = "partially_received"
	POStatusFullyReceived     = "fully_received"
	POStatusCanceled          = "canceled"
)
