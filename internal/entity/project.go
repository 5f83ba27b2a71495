package entity

import "time"

// Project groups goods requests under an owning project manager.
type Project struct {
	ID            string    `json:"id" gorm:"primaryKey;size:32"`
	ProjectName   string    `json:"project_name" gorm:"size:200;not null"`
	PMID          string    `json:"pm_id" gorm:"size:32;not null;index"`
	ProjectPOFile string    `json:"project_po_file" gorm:"size:512"` // blob URL
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (Project) TableName() string {
	return "projects"
}
