package service

import (
	"context"
	"testing"
	"time"

	"github.com/iniulez/spbsfi/internal/config"
	"github.com/iniulez/spbsfi/internal/entity"
	"github.com/iniulez/spbsfi/internal/repository"
	"github.com/iniulez/spbsfi/internal/testutil"
	"gorm.io/gorm"
)

// testEnv bundles what every service test needs: a schema-isolated DB, the
// wired services, and one seeded user per role.
type testEnv struct {
	db  *gorm.DB
	svc *Services

	pm         Actor
	director   Actor
	purchasing Actor
	warehouse  Actor
}

func setupServiceTest(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)

	cfg := &config.Config{
		JWT: config.JWTConfig{
			Secret:             testutil.JWTSecret,
			AccessTokenExpire:  time.Hour,
			RefreshTokenExpire: 24 * time.Hour,
			Issuer:             "spbsfi",
		},
	}
	svc := NewServices(db, repos, nil, nil, cfg)

	env := &testEnv{db: db, svc: svc}
	env.pm = seedActor(t, db, "Test PM", entity.RoleProjectManager)
	env.director = seedActor(t, db, "Test Director", entity.RoleDirector)
	env.purchasing = seedActor(t, db, "Test Purchasing", entity.RolePurchasing)
	env.warehouse = seedActor(t, db, "Test Warehouse", entity.RoleWarehouse)
	return env
}

func seedActor(t *testing.T, db *gorm.DB, name, role string) Actor {
	t.Helper()
	user := testutil.SeedUser(t, db, name, role)
	return Actor{ID: user.ID, Name: user.Name, Role: user.Role}
}

func (e *testEnv) stockOf(t *testing.T, itemID string) float64 {
	t.Helper()
	var stock float64
	if err := e.db.Model(&entity.Item{}).Select("current_stock").Where("id = ?", itemID).Scan(&stock).Error; err != nil {
		t.Fatalf("read stock: %v", err)
	}
	return stock
}

func (e *testEnv) movementCount(t *testing.T, itemID string) int64 {
	t.Helper()
	var count int64
	if err := e.db.Model(&entity.StockMovement{}).Where("item_id = ?", itemID).Count(&count).Error; err != nil {
		t.Fatalf("count movements: %v", err)
	}
	return count
}

// createApprovedFRB walks an FRB through submission and director approval so
// workflow tests can start at purchasing validation.
func (e *testEnv) createApprovedFRB(t *testing.T, items []FRBItemRequest) *entity.FormRequestBarang {
	t.Helper()
	ctx := context.Background()

	project := testutil.SeedProject(t, e.db, "Test Project", e.pm.ID)
	frb, err := e.svc.FRB.Create(ctx, e.pm, &CreateFRBRequest{
		ProjectID:        project.ID,
		DeliveryDeadline: time.Now().Add(14 * 24 * time.Hour),
		RecipientName:    "Site Foreman",
		DeliveryAddress:  "Jl. Proyek No. 1",
		Items:            items,
	})
	if err != nil {
		t.Fatalf("create FRB: %v", err)
	}

	frb, err = e.svc.FRB.DirectorDecide(ctx, e.director, frb.ID, true, "")
	if err != nil {
		t.Fatalf("approve FRB: %v", err)
	}
	if frb.Status != entity.FRBStatusApprovedByDirector {
		t.Fatalf("expected approved_by_director, got %s", frb.Status)
	}
	return frb
}

// approveAll builds a validation request approving every requested quantity
// as-is.
func approveAll(frb *entity.FormRequestBarang) *ValidateFRBRequest {
	req := &ValidateFRBRequest{}
	for _, line := range frb.Items {
		req.Items = append(req.Items, ValidateItemDecision{
			FRBItemID:        line.ID,
			ApprovedQuantity: line.RequestedQuantity,
		})
	}
	return req
}
