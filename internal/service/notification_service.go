package service

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/iniulez/spbsfi/internal/entity"
	"github.com/iniulez/spbsfi/internal/repository"
	"github.com/iniulez/spbsfi/internal/sse"
	"github.com/redis/go-redis/v9"
)

const unreadCacheTTL = 5 * time.Minute

// NotificationService owns the per-user feed. Writes are best-effort: a
// failed notification is logged and dropped, never surfaced to the workflow
// mutation that triggered it.
type NotificationService struct {
	repo     *repository.NotificationRepository
	userRepo *repository.UserRepository
	rdb      *redis.Client
	hub      *sse.Hub
}

func NewNotificationService(repo *repository.NotificationRepository, userRepo *repository.UserRepository, rdb *redis.Client, hub *sse.Hub) *NotificationService {
	return &NotificationService{repo: repo, userRepo: userRepo, rdb: rdb, hub: hub}
}

func unreadKey(userID string) string {
	return "spbsfi:notif:unread:" + userID
}

// Notify appends to one user's feed and pushes it over SSE.
func (s *NotificationService) Notify(ctx context.Context, userID, message, link string) {
	n := &entity.Notification{
		ID:      uuid.New().String()[:32],
		UserID:  userID,
		Message: message,
		Link:    link,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		log.Printf("[notify] dropped notification for user %s: %v", userID, err)
		return
	}
	s.invalidateUnread(ctx, userID)
	if s.hub != nil {
		s.hub.PublishNotification(userID, n.ID, message, link)
	}
}

// NotifyRole fans a message out to every active user in a role.
func (s *NotificationService) NotifyRole(ctx context.Context, role, message, link string) {
	users, err := s.userRepo.FindByRole(ctx, role)
	if err != nil {
		log.Printf("[notify] role fan-out to %s failed: %v", role, err)
		return
	}
	for _, user := range users {
		s.Notify(ctx, user.ID, message, link)
	}
}

func (s *NotificationService) Feed(ctx context.Context, userID string, page, pageSize int, unreadOnly bool) ([]entity.Notification, int64, error) {
	return s.repo.FindByUser(ctx, userID, page, pageSize, unreadOnly)
}

// CountUnread serves the badge counter, read-through cached in Redis.
func (s *NotificationService) CountUnread(ctx context.Context, userID string) (int64, error) {
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, unreadKey(userID)).Result(); err == nil {
			if count, err := strconv.ParseInt(cached, 10, 64); err == nil {
				return count, nil
			}
		}
	}

	count, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, err
	}
	if s.rdb != nil {
		s.rdb.Set(ctx, unreadKey(userID), strconv.FormatInt(count, 10), unreadCacheTTL)
	}
	return count, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, id, userID string) error {
	rows, err := s.repo.MarkRead(ctx, id, userID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	s.invalidateUnread(ctx, userID)
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) error {
	if err := s.repo.MarkAllRead(ctx, userID); err != nil {
		return err
	}
	s.invalidateUnread(ctx, userID)
	return nil
}

func (s *NotificationService) invalidateUnread(ctx context.Context, userID string) {
	if s.rdb != nil {
		s.rdb.Del(ctx, unreadKey(userID))
	}
}
