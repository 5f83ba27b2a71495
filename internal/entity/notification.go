package entity

import "time"

// Notification is one entry in a user's feed. IsRead is the only field that
// ever changes after creation.
type Notification struct {
	ID        string    `json:"id" gorm:"primaryKey;size:32"`
	UserID    string    `json:"user_id" gorm:"size:32;not null;index"`
	Message   string    `json:"message" gorm:"type:text;not null"`
	Link      string    `json:"link" gorm:"size:512"`
	IsRead    bool      `json:"is_read" gorm:"not null;default:false"`
	CreatedAt time.Time `json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
