package entity

import "time"

// User is an account in one of the five fixed roles.
type User struct {
	ID           string    `json:"id" gorm:"primaryKey;size:32"`
	Name         string    `json:"name" gorm:"size:100;not null"`
	Email        string    `json:"email" gorm:"size:200;uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"size:100;not null"`
	Role         string    `json:"role" gorm:"size:20;not null"`
	Status       string    `json:"status" gorm:"size:20;default:active"` // active/disabled
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// Roles
const (
	RoleProjectManager = "project_manager"
	RoleDirector       = "director"
	RolePurchasing     = "purchasing"
	RoleWarehouse      = "warehouse"
	RoleAdmin          = "admin"
)

// ValidRole reports whether role is one of the closed role set.
func ValidRole(role string) bool {
	switch role {
	case RoleProjectManager, RoleDirector, RolePurchasing, RoleWarehouse, RoleAdmin:
		return true
	}
	return false
}
