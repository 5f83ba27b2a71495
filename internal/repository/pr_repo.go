package repository

import (
	"context"
	"errors"

	"github.com/iniulez/spbsfi/internal/entity"
	"gorm.io/gorm"
)

type PRRepository struct {
	db *gorm.DB
}

func NewPRRepository(db *gorm.DB) *PRRepository {
	return &PRRepository{db: db}
}

func (r *PRRepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.PurchaseRequest, int64, error) {
	var prs []entity.PurchaseRequest
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.PurchaseRequest{})

	if frbID := filters["frb_id"]; frbID != "" {
		query = query.Where("frb_id = ?", frbID)
	}
	if status := filters["status"]; status != "" {
		query = query.Where("status = ?", status)
	}
	if purchasingID := filters["purchasing_id"]; purchasingID != "" {
		query = query.Where("purchasing_id = ?", purchasingID)
	}
	if search := filters["search"]; search != "" {
		query = query.Where("pr_code ILIKE ?", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Preload("Items").
		Order("request_date DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&prs).Error

	return prs, total, err
}

func (r *PRRepository) FindByID(ctx context.Context, id string) (*entity.PurchaseRequest, error) {
	var pr entity.PurchaseRequest
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Where("id = ?", id).
		First(&pr).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &pr, nil
}

// FindByFRBID returns the PRs derived from one FRB. Used by the validation
// idempotency guard and the FRB completion check.
func (r *PRRepository) FindByFRBID(ctx context.Context, frbID string) ([]entity.PurchaseRequest, error) {
	var prs []entity.PurchaseRequest
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("frb_id = ?", frbID).
		Find(&prs).Error
	return prs, err
}

func (r *PRRepository) Create(ctx context.Context, pr *entity.PurchaseRequest) error {
	return r.db.WithContext(ctx).Create(pr).Error
}

func (r *PRRepository) Update(ctx context.Context, pr *entity.PurchaseRequest) error {
	return r.db.WithContext(ctx).Omit("Items").Save(pr).Error
}

func (r *PRRepository) GenerateCode(ctx context.Context) (string, error) {
	return nextCode(ctx, r.db, &entity.PurchaseRequest{}, "pr_code", "PR")
}
