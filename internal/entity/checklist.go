package entity

import "time"

// GoodsPreparationChecklist records the warehouse picking goods for a DO.
// Recording it is what moves stock out and marks the DO prepared.
type GoodsPreparationChecklist struct {
	ID            string    `json:"id" gorm:"primaryKey;size:32"`
	ChecklistCode string    `json:"checklist_code" gorm:"size:32;uniqueIndex;not null"`
	DOID          string    `json:"do_id" gorm:"size:32;not null;index"`
	WarehouseID   string    `json:"warehouse_id" gorm:"size:32;not null"`
	CheckDate     time.Time `json:"check_date"`
	OverallStatus string    `json:"overall_status" gorm:"size:32;not null"`
	CreatedAt     time.Time `json:"created_at"`

	Items []ChecklistItem `json:"items,omitempty" gorm:"foreignKey:ChecklistID"`
}

func (GoodsPreparationChecklist) TableName() string {
	return "preparation_checklists"
}

// Checklist overall statuses
const (
	ChecklistReadyToShip = "ready_to_ship"
	ChecklistNotReady    = "not_ready"
)

// Per-line condition and functionality statuses
const (
	ItemConditionGood        = "good"
	ItemConditionMinorDamage = "minor_damage"
	ItemConditionMajorDamage = "major_damage"

	ItemFunctionalityWorking    = "working"
	ItemFunctionalityNotWorking = "not_working"
)

// ChecklistItem is one prepared line.
type ChecklistItem struct {
	ID                  string  `json:"id" gorm:"primaryKey;size:32"`
	ChecklistID         string  `json:"checklist_id" gorm:"size:32;not null;index"`
	ItemID              string  `json:"item_id" gorm:"size:32;not null"`
	PreparedQuantity    float64 `json:"prepared_quantity" gorm:"type:decimal(12,2);not null"`
	ConditionStatus     string  `json:"condition_status" gorm:"size:32;not null"`
	FunctionalityStatus string  `json:"functionality_status" gorm:"size:32;not null"`
	Notes               string  `json:"notes" gorm:"type:text"`
	PhotoIssue          string  `json:"photo_issue" gorm:"size:512"`
	SortOrder           int     `json:"sort_order" gorm:"default:0"`
}

func (ChecklistItem) TableName() string {
	return "checklist_items"
}
