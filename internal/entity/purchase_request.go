package entity

import "time"

// PurchaseRequest (PR) covers the stock shortfall of an FRB validation.
// PRs exist only as a side effect of validation, so FRBID is mandatory.
type PurchaseRequest struct {
	ID           string    `json:"id" gorm:"primaryKey;size:32"`
	PRCode       string    `json:"pr_code" gorm:"size:32;uniqueIndex;not null"`
	FRBID        string    `json:"frb_id" gorm:"size:32;not null;uniqueIndex"`
	PMID         string    `json:"pm_id" gorm:"size:32;not null"`
	PurchasingID string    `json:"purchasing_id" gorm:"size:32;not null"`
	RequestDate  time.Time `json:"request_date"`
	Status       string    `json:"status" gorm:"size:32;not null;default:awaiting_director_approval;index"`

	DirectorApprovalDate    *time.Time `json:"director_approval_date"`
	DirectorRejectionReason string     `json:"director_rejection_reason" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Items []PRItem `json:"items,omitempty" gorm:"foreignKey:PRID"`
}

func (PurchaseRequest) TableName() string {
	return "purchase_requests"
}

// PR statuses
const (
	PRStatusAwaitingApproval = "awaiting_director_approval"
	PRStatusApproved         = "approved"
	PRStatusRejected         = "rejected"
	PRStatusProcessed        = "processed" // PO created
)

// PRItem is one shortfall line derived from an FRB item.
type PRItem struct {
	ID                 string  `json:"id" gorm:"primaryKey;size:32"`
	PRID               string  `json:"pr_id" gorm:"size:32;not null;index"`
	ItemID             string  `json:"item_id" gorm:"size:32;not null"`
	QuantityToPurchase float64 `json:"quantity_to_purchase" gorm:"type:decimal(12,2);not null"`
	SortOrder          int     `json:"sort_order" gorm:"default:0"`
}

func (PRItem) TableName() string {
	return "pr_items"
}
