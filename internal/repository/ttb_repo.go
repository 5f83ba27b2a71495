package repository

import (
	"context"
	"errors"

	"github.com/iniulez/spbsfi/internal/entity"
	"gorm.io/gorm"
)

type TTBRepository struct {
	db *gorm.DB
}

func NewTTBRepository(db *gorm.DB) *TTBRepository {
	return &TTBRepository{db: db}
}

func (r *TTBRepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.TandaTerimaBarang, int64, error) {
	var ttbs []entity.TandaTerimaBarang
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.TandaTerimaBarang{})

	if doID := filters["do_id"]; doID != "" {
		query = query.Where("do_id = ?", doID)
	}
	if status := filters["status"]; status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Preload("Items").
		Order("acceptance_date DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&ttbs).Error

	return ttbs, total, err
}

func (r *TTBRepository) FindByID(ctx context.Context, id string) (*entity.TandaTerimaBarang, error) {
	var ttb entity.TandaTerimaBarang
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Where("id = ?", id).
		First(&ttb).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &ttb, nil
}

func (r *TTBRepository) FindByDOID(ctx context.Context, doID string) (*entity.TandaTerimaBarang, error) {
	var ttb entity.TandaTerimaBarang
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("do_id = ?", doID).
		First(&ttb).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &ttb, nil
}

func (r *TTBRepository) GenerateCode(ctx context.Context) (string, error) {
	return nextCode(ctx, r.db, &entity.TandaTerimaBarang{}, "ttb_code", "TTB")
}
