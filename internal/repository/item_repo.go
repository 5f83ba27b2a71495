package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/iniulez/spbsfi/internal/entity"
	"gorm.io/gorm"
)

// ErrInsufficientStock is returned when a subtract would drive stock negative.
var ErrInsufficientStock = errors.New("insufficient stock")

// ItemRepository owns the item master and the stock ledger. AdjustStock is
// the only code path in the repo that writes current_stock.
type ItemRepository struct {
	db *gorm.DB
}

func NewItemRepository(db *gorm.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

func (r *ItemRepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.Item, int64, error) {
	var items []entity.Item
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Item{})

	if search := filters["search"]; search != "" {
		query = query.Where("item_name ILIKE ?", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Order("item_name ASC").
		Offset(offset).
		Limit(pageSize).
		Find(&items).Error

	return items, total, err
}

func (r *ItemRepository) FindByID(ctx context.Context, id string) (*entity.Item, error) {
	var item entity.Item
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

func (r *ItemRepository) Create(ctx context.Context, item *entity.Item) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// Update writes master fields only. CurrentStock is deliberately excluded so
// nothing bypasses the ledger.
func (r *ItemRepository) Update(ctx context.Context, item *entity.Item) error {
	return r.db.WithContext(ctx).Model(&entity.Item{}).
		Where("id = ?", item.ID).
		Updates(map[string]interface{}{
			"item_name":            item.ItemName,
			"description":          item.Description,
			"unit":                 item.Unit,
			"estimated_unit_price": item.EstimatedUnitPrice,
			"updated_at":           time.Now(),
		}).Error
}

// AdjustStock applies one signed stock delta as a single conditional UPDATE,
// so concurrent adjustments against the same item serialize on the row and
// the stock can never go negative. A ledger row is written alongside.
// Pass tx to join an enclosing transaction; nil uses the repository handle.
func (r *ItemRepository) AdjustStock(ctx context.Context, tx *gorm.DB, itemID string, quantity float64, direction, refType, refID, notes, actorID string) (*entity.StockMovement, error) {
	db := tx
	if db == nil {
		db = r.db
	}
	db = db.WithContext(ctx)

	delta := quantity
	if direction == entity.StockDirectionSubtract {
		delta = -quantity
	}

	res := db.Model(&entity.Item{}).
		Where("id = ? AND current_stock + ? >= 0", itemID, delta).
		Update("current_stock", gorm.Expr("current_stock + ?", delta))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := db.Model(&entity.Item{}).Where("id = ?", itemID).Count(&count).Error; err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, ErrNotFound
		}
		return nil, ErrInsufficientStock
	}

	var resultStock float64
	if err := db.Model(&entity.Item{}).
		Select("current_stock").
		Where("id = ?", itemID).
		Scan(&resultStock).Error; err != nil {
		return nil, err
	}

	movement := &entity.StockMovement{
		ID:            uuid.New().String()[:32],
		ItemID:        itemID,
		Quantity:      delta,
		ResultStock:   resultStock,
		ReferenceType: refType,
		ReferenceID:   refID,
		Notes:         notes,
		CreatedBy:     actorID,
	}
	if err := db.Create(movement).Error; err != nil {
		return nil, err
	}
	return movement, nil
}

func (r *ItemRepository) ListMovements(ctx context.Context, itemID string, page, pageSize int) ([]entity.StockMovement, int64, error) {
	var movements []entity.StockMovement
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.StockMovement{})
	if itemID != "" {
		query = query.Where("item_id = ?", itemID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&movements).Error

	return movements, total, err
}
