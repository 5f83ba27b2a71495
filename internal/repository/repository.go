package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("record not found")
)

// Repositories is the collection handed to services.
type Repositories struct {
	User         *UserRepository
	Project      *ProjectRepository
	Item         *ItemRepository
	Supplier     *SupplierRepository
	FRB          *FRBRepository
	PR           *PRRepository
	PO           *PORepository
	DO           *DORepository
	GRN          *GRNRepository
	Checklist    *ChecklistRepository
	TTB          *TTBRepository
	Rejection    *RejectionRepository
	ActivityLog  *ActivityLogRepository
	Notification *NotificationRepository
}

// NewRepositories wires every repository over one gorm handle.
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:         NewUserRepository(db),
		Project:      NewProjectRepository(db),
		Item:         NewItemRepository(db),
		Supplier:     NewSupplierRepository(db),
		FRB:          NewFRBRepository(db),
		PR:           NewPRRepository(db),
		PO:           NewPORepository(db),
		DO:           NewDORepository(db),
		GRN:          NewGRNRepository(db),
		Checklist:    NewChecklistRepository(db),
		TTB:          NewTTBRepository(db),
		Rejection:    NewRejectionRepository(db),
		ActivityLog:  NewActivityLogRepository(db),
		Notification: NewNotificationRepository(db),
	}
}

// nextCode produces sequential document codes like FRB-2026-0001.
func nextCode(ctx context.Context, db *gorm.DB, model interface{}, column, abbrev string) (string, error) {
	year := time.Now().Format("2006")
	prefix := fmt.Sprintf("%s-%s-", abbrev, year)

	var maxCode string
	err := db.WithContext(ctx).
		Model(model).
		Select(fmt.Sprintf("COALESCE(MAX(%s), '')", column)).
		Where(column+" LIKE ?", prefix+"%").
		Scan(&maxCode).Error
	if err != nil {
		return "", err
	}

	var seq int
	if maxCode != "" {
		fmt.Sscanf(maxCode, abbrev+"-"+year+"-%04d", &seq)
	}
	seq++
	return fmt.Sprintf("%s-%s-%04d", abbrev, year, seq), nil
}
