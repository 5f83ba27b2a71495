package repository

import (
	"context"
	"errors"

	"github.com/iniulez/spbsfi/internal/entity"
	"gorm.io/gorm"
)

type GRNRepository struct {
	db *gorm.DB
}

func NewGRNRepository(db *gorm.DB) *GRNRepository {
	return &GRNRepository{db: db}
}

func (r *GRNRepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.GoodsReceipt, int64, error) {
	var grns []entity.GoodsReceipt
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.GoodsReceipt{})

	if poID := filters["po_id"]; poID != "" {
		query = query.Where("po_id = ?", poID)
	}
	if search := filters["search"]; search != "" {
		query = query.Where("grn_code ILIKE ?", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Preload("Items").
		Order("receipt_date DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&grns).Error

	return grns, total, err
}

func (r *GRNRepository) FindByID(ctx context.Context, id string) (*entity.GoodsReceipt, error) {
	var grn entity.GoodsReceipt
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Where("id = ?", id).
		First(&grn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &grn, nil
}

// ReceivedTotals sums received quantity per item across every GRN recorded
// against a PO. Pass tx to read inside an enclosing transaction.
func (r *GRNRepository) ReceivedTotals(ctx context.Context, tx *gorm.DB, poID string) (map[string]float64, error) {
	db := tx
	if db == nil {
		db = r.db
	}

	var rows []struct {
		ItemID string
		Total  float64
	}
	err := db.WithContext(ctx).
		Model(&entity.GRNItem{}).
		Select("grn_items.item_id AS item_id, SUM(grn_items.received_quantity) AS total").
		Joins("JOIN goods_receipts ON goods_receipts.id = grn_items.grn_id").
		Where("goods_receipts.po_id = ?", poID).
		Group("grn_items.item_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	totals := make(map[string]float64, len(rows))
	for _, row := range rows {
		totals[row.ItemID] = row.Total
	}
	return totals, nil
}

func (r *GRNRepository) GenerateCode(ctx context.Context) (string, error) {
	return nextCode(ctx, r.db, &entity.GoodsReceipt{}, "grn_code", "GRN")
}
