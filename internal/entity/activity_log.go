package entity

import "time"

// ActivityLog is the append-only audit trail. User name and role are
// denormalized so entries survive user edits. Never mutated after creation.
type ActivityLog struct {
	ID                string    `json:"id" gorm:"primaryKey;size:32"`
	UserID            string    `json:"user_id" gorm:"size:32;not null;index"`
	UserName          string    `json:"user_name" gorm:"size:100"`
	UserRole          string    `json:"user_role" gorm:"size:20"`
	Action            string    `json:"action" gorm:"type:text;not null"`
	RelatedDocumentID string    `json:"related_document_id" gorm:"size:32;index"`
	Details           JSONB     `json:"details" gorm:"type:jsonb"`
	CreatedAt         time.Time `json:"created_at"`
}

func (ActivityLog) TableName() string {
	return "activity_logs"
}
