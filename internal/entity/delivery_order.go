package entity

import "time"

// DeliveryOrder (DO) instructs the warehouse to fulfill (part of) an FRB
// from stock already on hand.
type DeliveryOrder struct {
	ID           string    `json:"id" gorm:"primaryKey;size:32"`
	DOCode       string    `json:"do_code" gorm:"size:32;uniqueIndex;not null"`
	FRBID        string    `json:"frb_id" gorm:"size:32;not null;uniqueIndex"`
	PurchasingID string    `json:"purchasing_id" gorm:"size:32;not null"`
	CreationDate time.Time `json:"creation_date"`
	Status       string    `json:"status" gorm:"size:32;not null;default:created;index"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Items []DOItem `json:"items,omitempty" gorm:"foreignKey:DOID"`
}

func (DeliveryOrder) TableName() string {
	return "delivery_orders"
}

// DO statuses
const (
	DOStatusCreated             = "created"
	DOStatusPrepared            = "prepared_by_warehouse"
	DOStatusSent                = "sent"
	DOStatusDelivered           = "delivered"
	DOStatusRejectedByRecipient = "rejected_by_recipient"
)

// DOItem is one fulfilled-from-stock line.
type DOItem struct {
	ID                string  `json:"id" gorm:"primaryKey;size:32"`
	DOID              string  `json:"do_id" gorm:"size:32;not null;index"`
	ItemID            string  `json:"item_id" gorm:"size:32;not null"`
	DeliveredQuantity float64 `json:"delivered_quantity" gorm:"type:decimal(12,2);not null"`
	SortOrder         int     `json:"sort_order" gorm:"default:0"`
}

func (DOItem) TableName() string {
	return "do_items"
}
