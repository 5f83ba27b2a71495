package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/iniulez/spbsfi/internal/entity"
	"gorm.io/gorm"
)

type ActivityLogRepository struct {
	db *gorm.DB
}

func NewActivityLogRepository(db *gorm.DB) *ActivityLogRepository {
	return &ActivityLogRepository{db: db}
}

func (r *ActivityLogRepository) Create(ctx context.Context, log *entity.ActivityLog) error {
	if log.ID == "" {
		log.ID = uuid.New().String()[:32]
	}
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *ActivityLogRepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.ActivityLog, int64, error) {
	var logs []entity.ActivityLog
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.ActivityLog{})

	if userID := filters["user_id"]; userID != "" {
		query = query.Where("user_id = ?", userID)
	}
	if docID := filters["related_document_id"]; docID != "" {
		query = query.Where("related_document_id = ?", docID)
	}
	if search := filters["search"]; search != "" {
		query = query.Where("action ILIKE ?", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&logs).Error

	return logs, total, err
}

// LogActivity writes an audit entry best-effort. Audit failures never block
// or roll back the mutation they describe.
func (r *ActivityLogRepository) LogActivity(ctx context.Context, userID, userName, userRole, action, relatedDocumentID string) {
	log := &entity.ActivityLog{
		ID:                uuid.New().String()[:32],
		UserID:            userID,
		UserName:          userName,
		UserRole:          userRole,
		Action:            action,
		RelatedDocumentID: relatedDocumentID,
	}
	r.db.WithContext(ctx).Create(log)
}
