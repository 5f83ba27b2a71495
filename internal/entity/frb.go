package entity

import "time"

// FormRequestBarang (FRB) is the goods request a project manager raises.
// It is the root document of the workflow: director approval, purchasing
// validation, and the DO/PR split all hang off it.
type FormRequestBarang struct {
	ID               string     `json:"id" gorm:"primaryKey;size:32"`
	FRBCode          string     `json:"frb_code" gorm:"size:32;uniqueIndex;not null"`
	ProjectID        string     `json:"project_id" gorm:"size:32;not null;index"`
	PMID             string     `json:"pm_id" gorm:"size:32;not null;index"`
	SubmissionDate   time.Time  `json:"submission_date"`
	DeliveryDeadline time.Time  `json:"delivery_deadline"`
	RecipientName    string     `json:"recipient_name" gorm:"size:100;not null"`
	RecipientContact string     `json:"recipient_contact" gorm:"size:50"`
	DeliveryAddress  string     `json:"delivery_address" gorm:"type:text;not null"`
	ProjectPOFile    string     `json:"project_po_file" gorm:"size:512"`
	Status           string     `json:"status" gorm:"size:32;not null;default:draft;index"`

	DirectorApprovalDate      *time.Time `json:"director_approval_date"`
	DirectorRejectionReason   string     `json:"director_rejection_reason" gorm:"type:text"`
	PurchasingValidationDate  *time.Time `json:"purchasing_validation_date"`
	PurchasingValidationNotes string     `json:"purchasing_validation_notes" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Items []FRBItem `json:"items,omitempty" gorm:"foreignKey:FRBID"`
}

func (FormRequestBarang) TableName() string {
	return "frbs"
}

// FRB statuses
const (
	FRBStatusDraft                = "draft"
	FRBStatusAwaitingApproval     = "awaiting_director_approval"
	FRBStatusApprovedByDirector   = "approved_by_director"
	FRBStatusRejectedByDirector   = "rejected_by_director"
	FRBStatusInValidation         = "in_purchasing_validation"
	FRBStatusInPurchasingProcess  = "in_purchasing_process"
	FRBStatusPartiallyStocked     = "partially_stocked"
	FRBStatusFullyStocked         = "fully_stocked"
	FRBStatusCompleted            = "completed"
	FRBStatusRejectedByRecipient  = "rejected_by_recipient"
)

// FRBItem is one requested line. EstimatedUnitPrice is a snapshot from the
// item master at request time so later price edits do not rewrite history.
type FRBItem struct {
	ID                 string   `json:"id" gorm:"primaryKey;size:32"`
	FRBID              string   `json:"frb_id" gorm:"size:32;not null;index"`
	ItemID             string   `json:"item_id" gorm:"size:32;not null"`
	RequestedQuantity  float64  `json:"requested_quantity" gorm:"type:decimal(12,2);not null"`
	ApprovedQuantity   *float64 `json:"approved_quantity" gorm:"type:decimal(12,2)"`
	EstimatedUnitPrice float64  `json:"estimated_unit_price" gorm:"type:decimal(15,2);not null"`
	SortOrder          int      `json:"sort_order" gorm:"default:0"`
}

func (FRBItem) TableName() string {
	return "frb_items"
}
