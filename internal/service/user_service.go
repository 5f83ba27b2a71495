package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/iniulez/spbsfi/internal/entity"
	"github.com/iniulez/spbsfi/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// UserService is admin-only account management.
type UserService struct {
	userRepo *repository.UserRepository
	activity *repository.ActivityLogRepository
}

func NewUserService(userRepo *repository.UserRepository, activity *repository.ActivityLogRepository) *UserService {
	return &UserService{userRepo: userRepo, activity: activity}
}

func (s *UserService) List(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.User, int64, error) {
	return s.userRepo.FindAll(ctx, page, pageSize, filters)
}

func (s *UserService) Get(ctx context.Context, id string) (*entity.User, error) {
	return s.userRepo.FindByID(ctx, id)
}

type CreateUserRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"required"`
}

func (s *UserService) Create(ctx context.Context, actor Actor, req *CreateUserRequest) (*entity.User, error) {
	if err := ensureRole(actor, actionUserManage); err != nil {
		return nil, err
	}
	if !entity.ValidRole(req.Role) {
		return nil, newValidationError("role", "unknown role")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &entity.User{
		ID:           uuid.New().String()[:32],
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         req.Role,
		Status:       "active",
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	s.activity.LogActivity(ctx, actor.ID, actor.Name, actor.Role,
		fmt.Sprintf("Created user %s (%s)", user.Name, user.Role), user.ID)
	return user, nil
}

type UpdateUserRequest struct {
	Name     *string `json:"name"`
	Role     *string `json:"role"`
	Status   *string `json:"status"`
	Password *string `json:"password"`
}

func (s *UserService) Update(ctx context.Context, actor Actor, id string, req *UpdateUserRequest) (*entity.User, error) {
	if err := ensureRole(actor, actionUserManage); err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Role != nil {
		if !entity.ValidRole(*req.Role) {
			return nil, newValidationError("role", "unknown role")
		}
		user.Role = *req.Role
	}
	if req.Status != nil {
		if *req.Status != "active" && *req.Status != "disabled" {
			return nil, newValidationError("status", "must be active or disabled")
		}
		user.Status = *req.Status
	}
	if req.Password != nil {
		if len(*req.Password) < 8 {
			return nil, newValidationError("password", "must be at least 8 characters")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = string(hash)
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	s.activity.LogActivity(ctx, actor.ID, actor.Name, actor.Role,
		fmt.Sprintf("Updated user %s", user.Name), user.ID)
	return user, nil
}
