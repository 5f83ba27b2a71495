package entity

import "time"

// Supplier master record.
type Supplier struct {
	ID            string    `json:"id" gorm:"primaryKey;size:32"`
	SupplierName  string    `json:"supplier_name" gorm:"size:200;not null"`
	ContactPerson string    `json:"contact_person" gorm:"size:100"`
	Phone         string    `json:"phone" gorm:"size:30"`
	Email         string    `json:"email" gorm:"size:200"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (Supplier) TableName() string {
	return "suppliers"
}
