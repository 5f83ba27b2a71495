package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/iniulez/spbsfi/internal/entity"
	"github.com/iniulez/spbsfi/internal/repository"
)

// SupplierService manages the supplier master.
type SupplierService struct {
	supplierRepo *repository.SupplierRepository
	activity     *repository.ActivityLogRepository
}

func NewSupplierService(supplierRepo *repository.SupplierRepository, activity *repository.ActivityLogRepository) *SupplierService {
	return &SupplierService{supplierRepo: supplierRepo, activity: activity}
}

func (s *SupplierService) List(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.Supplier, int64, error) {
	return s.supplierRepo.FindAll(ctx, page, pageSize, filters)
}

func (s *SupplierService) Get(ctx context.Context, id string) (*entity.Supplier, error) {
	return s.supplierRepo.FindByID(ctx, id)
}

type CreateSupplierRequest struct {
	SupplierName  string `json:"supplier_name" binding:"required"`
	ContactPerson string `json:"contact_person"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
}

func (s *SupplierService) Create(ctx context.Context, actor Actor, req *CreateSupplierRequest) (*entity.Supplier, error) {
	if err := ensureRole(actor, actionSupplierManage); err != nil {
		return nil, err
	}
	supplier := &entity.Supplier{
		ID:            uuid.New().String()[:32],
		SupplierName:  req.SupplierName,
		ContactPerson: req.ContactPerson,
		Phone:         req.Phone,
		Email:         req.Email,
	}
	if err := s.supplierRepo.Create(ctx, supplier); err != nil {
		return nil, err
	}
	s.activity.LogActivity(ctx, actor.ID, actor.Name, actor.Role,
		fmt.Sprintf("Created supplier %s", supplier.SupplierName), supplier.ID)
	return supplier, nil
}

type UpdateSupplierRequest struct {
	SupplierName  *string `json:"supplier_name"`
	ContactPerson *string `json:"contact_person"`
	Phone         *string `json:"phone"`
	Email         *string `json:"email"`
}

func (s *SupplierService) Update(ctx context.Context, actor Actor, id string, req *UpdateSupplierRequest) (*entity.Supplier, error) {
	if err := ensureRole(actor, actionSupplierManage); err != nil {
		return nil, err
	}
	supplier, err := s.supplierRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.SupplierName != nil {
		supplier.SupplierName = *req.SupplierName
	}
	if req.ContactPerson != nil {
		supplier.ContactPerson = *req.ContactPerson
	}
	if req.Phone != nil {
		supplier.Phone = *req.Phone
	}
	if req.Email != nil {
		supplier.Email = *req.Email
	}
	if err := s.supplierRepo.Update(ctx, supplier); err != nil {
		return nil, err
	}
	s.activity.LogActivity(ctx, actor.ID, actor.Name, actor.Role,
		fmt.Sprintf("Updated supplier %s", supplier.SupplierName), supplier.ID)
	return supplier, nil
}
