package repository

import (
	"context"
	"errors"

	"github.com/iniulez/spbsfi/internal/entity"
	"gorm.io/gorm"
)

type ChecklistRepository struct {
	db *gorm.DB
}

func NewChecklistRepository(db *gorm.DB) *ChecklistRepository {
	return &ChecklistRepository{db: db}
}

func (r *ChecklistRepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.GoodsPreparationChecklist, int64, error) {
	var checklists []entity.GoodsPreparationChecklist
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.GoodsPreparationChecklist{})

	if doID := filters["do_id"]; doID != "" {
		query = query.Where("do_id = ?", doID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Preload("Items").
		Order("check_date DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&checklists).Error

	return checklists, total, err
}

func (r *ChecklistRepository) FindByID(ctx context.Context, id string) (*entity.GoodsPreparationChecklist, error) {
	var checklist entity.GoodsPreparationChecklist
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Where("id = ?", id).
		First(&checklist).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &checklist, nil
}

func (r *ChecklistRepository) FindByDOID(ctx context.Context, doID string) (*entity.GoodsPreparationChecklist, error) {
	var checklist entity.GoodsPreparationChecklist
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("do_id = ?", doID).
		First(&checklist).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &checklist, nil
}

func (r *ChecklistRepository) GenerateCode(ctx context.Context) (string, error) {
	return nextCode(ctx, r.db, &entity.GoodsPreparationChecklist{}, "checklist_code", "GPC")
}
