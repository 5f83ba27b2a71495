package service

import (
	"context"

	"github.com/iniulez/spbsfi/internal/config"
	"github.com/iniulez/spbsfi/internal/entity"
	"github.com/iniulez/spbsfi/internal/repository"
	"github.com/iniulez/spbsfi/internal/sse"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Services is the service collection the handlers depend on.
type Services struct {
	Auth         *AuthService
	User         *UserService
	Project      *ProjectService
	Supplier     *SupplierService
	Stock        *StockService
	FRB          *FRBService
	Procurement  *ProcurementService
	Receiving    *ReceivingService
	Fulfillment  *FulfillmentService
	Notification *NotificationService
	Activity     *ActivityService
	Report       *ReportService
	Dashboard    *DashboardService
}

func NewServices(db *gorm.DB, repos *repository.Repositories, rdb *redis.Client, hub *sse.Hub, cfg *config.Config) *Services {
	notifier := NewNotificationService(repos.Notification, repos.User, rdb, hub)
	frbSvc := NewFRBService(db, repos.FRB, repos.PR, repos.DO, repos.PO,
		repos.Item, repos.Project, repos.ActivityLog, notifier)

	return &Services{
		Auth:     NewAuthService(repos.User, rdb, cfg),
		User:     NewUserService(repos.User, repos.ActivityLog),
		Project:  NewProjectService(repos.Project, repos.ActivityLog),
		Supplier: NewSupplierService(repos.Supplier, repos.ActivityLog),
		Stock:    NewStockService(db, repos.Item, repos.ActivityLog),
		FRB:      frbSvc,
		Procurement: NewProcurementService(db, repos.PR, repos.PO, repos.Supplier,
			repos.FRB, repos.ActivityLog, notifier),
		Receiving: NewReceivingService(db, repos.GRN, repos.PO, repos.PR,
			repos.Item, repos.ActivityLog, notifier, frbSvc),
		Fulfillment: NewFulfillmentService(db, repos.DO, repos.Checklist, repos.TTB,
			repos.Rejection, repos.FRB, repos.Item, repos.ActivityLog, notifier, frbSvc),
		Notification: notifier,
		Activity:     NewActivityService(repos.ActivityLog),
		Report:       NewReportService(repos.Item, repos.ActivityLog, repos.FRB),
		Dashboard:    NewDashboardService(db),
	}
}

// ActivityService reads the audit trail.
type ActivityService struct {
	repo *repository.ActivityLogRepository
}

func NewActivityService(repo *repository.ActivityLogRepository) *ActivityService {
	return &ActivityService{repo: repo}
}

func (s *ActivityService) List(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.ActivityLog, int64, error) {
	return s.repo.FindAll(ctx, page, pageSize, filters)
}
