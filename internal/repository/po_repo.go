package repository

import (
	"context"
	"errors"

	"github.com/iniulez/spbsfi/internal/entity"
	"gorm.io/gorm"
)

type PORepository struct {
	db *gorm.DB
}

func NewPORepository(db *gorm.DB) *PORepository {
	return &PORepository{db: db}
}

func (r *PORepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.PurchaseOrder, int64, error) {
	var pos []entity.PurchaseOrder
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.PurchaseOrder{})

	if supplierID := filters["supplier_id"]; supplierID != "" {
		query = query.Where("supplier_id = ?", supplierID)
	}
	if status := filters["status"]; status != "" {
		query = query.Where("status = ?", status)
	}
	if search := filters["search"]; search != "" {
		query = query.Where("po_code ILIKE ?", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Order("order_date DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&pos).Error

	return pos, total, err
}

// FindAwaitingReceipt lists POs the warehouse can still receive against.
func (r *PORepository) FindAwaitingReceipt(ctx context.Context) ([]entity.PurchaseOrder, error) {
	var pos []entity.PurchaseOrder
	err := r.db.WithContext(ctx).
		Where("status IN ?", []string{entity.POStatusOrdered, entity.POStatusShipped, entity.POStatusPartiallyReceived}).
		Order("expected_delivery_date ASC").
		Find(&pos).Error
	return pos, err
}

func (r *PORepository) FindByID(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	var po entity.PurchaseOrder
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&po).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &po, nil
}

func (r *PORepository) FindByPRID(ctx context.Context, prID string) (*entity.PurchaseOrder, error) {
	var po entity.PurchaseOrder
	err := r.db.WithContext(ctx).Where("pr_id = ?", prID).First(&po).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &po, nil
}

func (r *PORepository) Create(ctx context.Context, po *entity.PurchaseOrder) error {
	return r.db.WithContext(ctx).Create(po).Error
}

func (r *PORepository) Update(ctx context.Context, po *entity.PurchaseOrder) error {
	return r.db.WithContext(ctx).Save(po).Error
}

func (r *PORepository) GenerateCode(ctx context.Context) (string, error) {
	return nextCode(ctx, r.db, &entity.PurchaseOrder{}, "po_code", "PO")
}
