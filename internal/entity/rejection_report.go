package entity

import "time"

// RejectionReport tracks the reconciliation cycle opened when a TTB is
// rejected. Exactly one report per rejected TTB.
type RejectionReport struct {
	ID                   string     `json:"id" gorm:"primaryKey;size:32"`
	ReportCode           string     `json:"report_code" gorm:"size:32;uniqueIndex;not null"`
	TTBID                string     `json:"ttb_id" gorm:"size:32;not null;uniqueIndex"`
	WarehouseID          string     `json:"warehouse_id" gorm:"size:32;not null"`
	ReportingDate        time.Time  `json:"reporting_date"`
	ReasonForRejection   string     `json:"reason_for_rejection" gorm:"size:32;not null"`
	DetailedReason       string     `json:"detailed_reason" gorm:"type:text;not null"`
	PhotosOfDamage       StringList `json:"photos_of_damage" gorm:"type:jsonb"`
	ReconciliationStatus string     `json:"reconciliation_status" gorm:"size:20;not null;default:pending;index"`
	ResolutionNotes      string     `json:"resolution_notes" gorm:"type:text"`
	ResolutionDate       *time.Time `json:"resolution_date"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

func (RejectionReport) TableName() string {
	return "rejection_reports"
}

// Rejection reasons
const (
	RejectionReasonDamaged       = "damaged"
	RejectionReasonWrongQuantity = "wrong_quantity"
	RejectionReasonWrongItem     = "wrong_item"
	RejectionReasonLateDelivery  = "late_delivery"
	RejectionReasonOther         = "other"
)

// Reconciliation statuses
const (
	ReconciliationPending    = "pending"
	ReconciliationInProgress = "in_progress"
	ReconciliationResolved   = "resolved"
)
