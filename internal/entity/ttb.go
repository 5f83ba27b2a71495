package entity

import "time"

// TandaTerimaBarang (TTB) is the signed delivery acceptance or rejection
// that terminates a DO.
type TandaTerimaBarang struct {
	ID                 string    `json:"id" gorm:"primaryKey;size:32"`
	TTBCode            string    `json:"ttb_code" gorm:"size:32;uniqueIndex;not null"`
	DOID               string    `json:"do_id" gorm:"size:32;not null;uniqueIndex"`
	WarehouseID        string    `json:"warehouse_id" gorm:"size:32;not null"`
	RecipientName      string    `json:"recipient_name" gorm:"size:100;not null"`
	RecipientContact   string    `json:"recipient_contact" gorm:"size:50"`
	DeliveryAddress    string    `json:"delivery_address" gorm:"type:text"`
	RecipientSignature string    `json:"recipient_signature" gorm:"size:512"` // blob URL
	PhotoOfDelivery    StringList `json:"photo_of_delivery" gorm:"type:jsonb"` // blob URLs
	RecipientStatement string    `json:"recipient_statement" gorm:"type:text"`
	AcceptanceDate     time.Time `json:"acceptance_date"`
	Status             string    `json:"status" gorm:"size:20;not null"`
	CreatedAt          time.Time `json:"created_at"`

	Items []TTBItem `json:"items,omitempty" gorm:"foreignKey:TTBID"`
}

func (TandaTerimaBarang) TableName() string {
	return "ttbs"
}

// TTB statuses
const (
	TTBStatusAccepted = "accepted"
	TTBStatusRejected = "rejected"
)

// TTBItem mirrors the DO line it confirms.
type TTBItem struct {
	ID                    string  `json:"id" gorm:"primaryKey;size:32"`
	TTBID                 string  `json:"ttb_id" gorm:"size:32;not null;index"`
	ItemID                string  `json:"item_id" gorm:"size:32;not null"`
	DeliveredQuantity     float64 `json:"delivered_quantity" gorm:"type:decimal(12,2);not null"`
	ConditionAtAcceptance string  `json:"condition_at_acceptance" gorm:"size:32"`
	SortOrder             int     `json:"sort_order" gorm:"default:0"`
}

func (TTBItem) TableName() string {
	return "ttb_items"
}
