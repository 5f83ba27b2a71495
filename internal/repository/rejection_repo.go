package repository

import (
	"context"
	"errors"

	"github.com/iniulez/spbsfi/internal/entity"
	"gorm.io/gorm"
)

type RejectionRepository struct {
	db *gorm.DB
}

func NewRejectionRepository(db *gorm.DB) *RejectionRepository {
	return &RejectionRepository{db: db}
}

func (r *RejectionRepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.RejectionReport, int64, error) {
	var reports []entity.RejectionReport
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.RejectionReport{})

	if status := filters["reconciliation_status"]; status != "" {
		query = query.Where("reconciliation_status = ?", status)
	}
	if ttbID := filters["ttb_id"]; ttbID != "" {
		query = query.Where("ttb_id = ?", ttbID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Order("reporting_date DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&reports).Error

	return reports, total, err
}

func (r *RejectionRepository) FindByID(ctx context.Context, id string) (*entity.RejectionReport, error) {
	var report entity.RejectionReport
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&report).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &report, nil
}

func (r *RejectionRepository) Update(ctx context.Context, report *entity.RejectionReport) error {
	return r.db.WithContext(ctx).Save(report).Error
}

func (r *RejectionRepository) GenerateCode(ctx context.Context) (string, error) {
	return nextCode(ctx, r.db, &entity.RejectionReport{}, "report_code", "RR")
}
