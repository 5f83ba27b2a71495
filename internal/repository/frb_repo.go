package repository

import (
	"context"
	"errors"

	"github.com/iniulez/spbsfi/internal/entity"
	"gorm.io/gorm"
)

type FRBRepository struct {
	db *gorm.DB
}

func NewFRBRepository(db *gorm.DB) *FRBRepository {
	return &FRBRepository{db: db}
}

func (r *FRBRepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.FormRequestBarang, int64, error) {
	var frbs []entity.FormRequestBarang
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.FormRequestBarang{})

	if projectID := filters["project_id"]; projectID != "" {
		query = query.Where("project_id = ?", projectID)
	}
	if pmID := filters["pm_id"]; pmID != "" {
		query = query.Where("pm_id = ?", pmID)
	}
	if status := filters["status"]; status != "" {
		query = query.Where("status = ?", status)
	}
	if search := filters["search"]; search != "" {
		query = query.Where("frb_code ILIKE ? OR recipient_name ILIKE ?", "%"+search+"%", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Preload("Items").
		Order("submission_date DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&frbs).Error

	return frbs, total, err
}

func (r *FRBRepository) FindByID(ctx context.Context, id string) (*entity.FormRequestBarang, error) {
	var frb entity.FormRequestBarang
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Where("id = ?", id).
		First(&frb).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &frb, nil
}

func (r *FRBRepository) Create(ctx context.Context, frb *entity.FormRequestBarang) error {
	return r.db.WithContext(ctx).Create(frb).Error
}

func (r *FRBRepository) Update(ctx context.Context, frb *entity.FormRequestBarang) error {
	return r.db.WithContext(ctx).Omit("Items").Save(frb).Error
}

// ReplaceItems swaps the FRB's line items, used when a PM edits a draft or
// a rejected request before resubmitting.
func (r *FRBRepository) ReplaceItems(ctx context.Context, frbID string, items []entity.FRBItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&entity.FRBItem{}, "frb_id = ?", frbID).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		return tx.Create(&items).Error
	})
}

func (r *FRBRepository) GenerateCode(ctx context.Context) (string, error) {
	return nextCode(ctx, r.db, &entity.FormRequestBarang{}, "frb_code", "FRB")
}
