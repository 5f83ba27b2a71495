package repository

import (
	"context"
	"errors"

	"github.com/iniulez/spbsfi/internal/entity"
	"gorm.io/gorm"
)

type DORepository struct {
	db *gorm.DB
}

func NewDORepository(db *gorm.DB) *DORepository {
	return &DORepository{db: db}
}

func (r *DORepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.DeliveryOrder, int64, error) {
	var dos []entity.DeliveryOrder
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.DeliveryOrder{})

	if frbID := filters["frb_id"]; frbID != "" {
		query = query.Where("frb_id = ?", frbID)
	}
	if status := filters["status"]; status != "" {
		query = query.Where("status = ?", status)
	}
	if search := filters["search"]; search != "" {
		query = query.Where("do_code ILIKE ?", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Preload("Items").
		Order("creation_date DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&dos).Error

	return dos, total, err
}

func (r *DORepository) FindByID(ctx context.Context, id string) (*entity.DeliveryOrder, error) {
	var do entity.DeliveryOrder
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Where("id = ?", id).
		First(&do).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &do, nil
}

// FindByFRBID returns the DOs derived from one FRB. Used by the validation
// idempotency guard and the FRB completion check.
func (r *DORepository) FindByFRBID(ctx context.Context, frbID string) ([]entity.DeliveryOrder, error) {
	var dos []entity.DeliveryOrder
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("frb_id = ?", frbID).
		Find(&dos).Error
	return dos, err
}

func (r *DORepository) Create(ctx context.Context, do *entity.DeliveryOrder) error {
	return r.db.WithContext(ctx).Create(do).Error
}

func (r *DORepository) Update(ctx context.Context, do *entity.DeliveryOrder) error {
	return r.db.WithContext(ctx).Omit("Items").Save(do).Error
}

func (r *DORepository) GenerateCode(ctx context.Context) (string, error) {
	return nextCode(ctx, r.db, &entity.DeliveryOrder{}, "do_code", "DO")
}
