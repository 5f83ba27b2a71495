package handler

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iniulez/spbsfi/internal/config"
	"github.com/iniulez/spbsfi/internal/entity"
	"github.com/iniulez/spbsfi/internal/middleware"
	"github.com/iniulez/spbsfi/internal/repository"
	"github.com/iniulez/spbsfi/internal/service"
	"github.com/iniulez/spbsfi/internal/sse"
	"github.com/iniulez/spbsfi/internal/testutil"
	"gorm.io/gorm"
)

type frbTestEnv struct {
	db     *gorm.DB
	router *gin.Engine

	pm         *entity.User
	director   *entity.User
	purchasing *entity.User
	warehouse  *entity.User
}

func setupFRBTest(t *testing.T) *frbTestEnv {
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
	hub := sse.NewHub()
	services := service.NewServices(db, repos, nil, hub, cfg)
	handlers := NewHandlers(services, nil, hub)

	router := testutil.SetupRouter()
	api := testutil.AuthGroup(router, "/api/v1")

	frbs := api.Group("/frbs")
	frbs.GET("", handlers.FRB.List)
	frbs.GET("/:id", handlers.FRB.Get)
	frbs.POST("", middleware.RequireRole("project_manager"), handlers.FRB.Create)
	frbs.POST("/:id/submit", middleware.RequireRole("project_manager"), handlers.FRB.Submit)
	frbs.POST("/:id/decide", middleware.RequireRole("director"), handlers.FRB.Decide)
	frbs.POST("/:id/validate", middleware.RequireRole("purchasing"), handlers.FRB.Validate)

	return &frbTestEnv{
		db:         db,
		router:     router,
		pm:         testutil.SeedUser(t, db, "PM One", "project_manager"),
		director:   testutil.SeedUser(t, db, "Director One", "director"),
		purchasing: testutil.SeedUser(t, db, "Purchasing One", "purchasing"),
		warehouse:  testutil.SeedUser(t, db, "Warehouse One", "warehouse"),
	}
}

func tokenFor(u *entity.User) string {
	return testutil.GenerateTestToken(u.ID, u.Name, u.Role)
}

func (e *frbTestEnv) createFRB(t *testing.T, itemID string, quantity float64) string {
	t.Helper()
	project := testutil.SeedProject(t, e.db, "Handler Test Project", e.pm.ID)

	w := testutil.DoRequest(e.router, http.MethodPost, "/api/v1/frbs", map[string]interface{}{
		"project_id":        project.ID,
		"delivery_deadline": time.Now().Add(7 * 24 * time.Hour).Format(time.RFC3339),
		"recipient_name":    "Mandor Lapangan",
		"delivery_address":  "Jl. Pluit Raya 9",
		"items": []map[string]interface{}{
			{"item_id": itemID, "requested_quantity": quantity},
		},
	}, tokenFor(e.pm))
	if w.Code != http.StatusCreated {
		t.Fatalf("create FRB: status %d body %s", w.Code, w.Body.String())
	}

	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	return data["id"].(string)
}

func TestFRBEndpointsRequireAuth(t *testing.T) {
	env := setupFRBTest(t)

	w := testutil.DoRequest(env.router, http.MethodGet, "/api/v1/frbs", nil, "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestFRBCreateGatedByRole(t *testing.T) {
	env := setupFRBTest(t)
	item := testutil.SeedItem(t, env.db, "Exhaust Fan", 5)
	project := testutil.SeedProject(t, env.db, "Role Gate Project", env.pm.ID)

	body := map[string]interface{}{
		"project_id":        project.ID,
		"delivery_deadline": time.Now().Add(24 * time.Hour).Format(time.RFC3339),
		"recipient_name":    "Mandor",
		"delivery_address":  "Jl. Ancol 3",
		"items": []map[string]interface{}{
			{"item_id": item.ID, "requested_quantity": 1},
		},
	}
	w := testutil.DoRequest(env.router, http.MethodPost, "/api/v1/frbs", body, tokenFor(env.warehouse))
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403 for warehouse, got %d", w.Code)
	}

	w = testutil.DoRequest(env.router, http.MethodPost, "/api/v1/frbs", body, tokenFor(env.pm))
	if w.Code != http.StatusCreated {
		t.Errorf("expected 201 for PM, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	if resp["code"].(float64) != 0 {
		t.Errorf("expected envelope code 0, got %v", resp["code"])
	}
}

func TestFRBDecideAndValidateOverHTTP(t *testing.T) {
	env := setupFRBTest(t)
	item := testutil.SeedItem(t, env.db, "Water Heater", 2)
	frbID := env.createFRB(t, item.ID, 5)

	// director approves
	w := testutil.DoRequest(env.router, http.MethodPost, "/api/v1/frbs/"+frbID+"/decide",
		map[string]interface{}{"approve": true}, tokenFor(env.director))
	if w.Code != http.StatusOK {
		t.Fatalf("decide: status %d body %s", w.Code, w.Body.String())
	}

	// purchasing validates, approving the requested quantity
	var frb entity.FormRequestBarang
	if err := env.db.Preload("Items").Where("id = ?", frbID).First(&frb).Error; err != nil {
		t.Fatalf("load FRB: %v", err)
	}
	var decisions []map[string]interface{}
	for _, line := range frb.Items {
		decisions = append(decisions, map[string]interface{}{
			"frb_item_id":       line.ID,
			"approved_quantity": line.RequestedQuantity,
		})
	}
	validateBody := map[string]interface{}{"items": decisions}

	w = testutil.DoRequest(env.router, http.MethodPost, "/api/v1/frbs/"+frbID+"/validate",
		validateBody, tokenFor(env.purchasing))
	if w.Code != http.StatusOK {
		t.Fatalf("validate: status %d body %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	got := data["frb"].(map[string]interface{})
	// 2 in stock against 5 requested splits into a DO and a PR
	if got["status"] != entity.FRBStatusPartiallyStocked {
		t.Errorf("expected partially_stocked, got %v", got["status"])
	}
	if data["delivery_order"] == nil || data["purchase_request"] == nil {
		t.Errorf("expected both DO and PR in response: %v", data)
	}

	// a repeat validation conflicts
	w = testutil.DoRequest(env.router, http.MethodPost, "/api/v1/frbs/"+frbID+"/validate",
		validateBody, tokenFor(env.purchasing))
	if w.Code != http.StatusConflict {
		t.Errorf("expected 409 on repeat validation, got %d", w.Code)
	}
	resp = testutil.ParseResponse(w)
	if resp["code"].(float64) != 40900 {
		t.Errorf("expected envelope code 40900, got %v", resp["code"])
	}
}

func TestFRBDecideRejectWithoutReason(t *testing.T) {
	env := setupFRBTest(t)
	item := testutil.SeedItem(t, env.db, "Solar Panel", 1)
	frbID := env.createFRB(t, item.ID, 1)

	w := testutil.DoRequest(env.router, http.MethodPost, "/api/v1/frbs/"+frbID+"/decide",
		map[string]interface{}{"approve": false}, tokenFor(env.director))
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	if resp["code"].(float64) != 40000 {
		t.Errorf("expected envelope code 40000, got %v", resp["code"])
	}
}

func TestFRBListPagination(t *testing.T) {
	env := setupFRBTest(t)
	item := testutil.SeedItem(t, env.db, "Toolbox", 100)
	for i := 0; i < 3; i++ {
		env.createFRB(t, item.ID, float64(i+1))
	}

	w := testutil.DoRequest(env.router, http.MethodGet,
		fmt.Sprintf("/api/v1/frbs?page=1&page_size=2&pm_id=%s", env.pm.ID), nil, tokenFor(env.pm))
	if w.Code != http.StatusOK {
		t.Fatalf("list: status %d", w.Code)
	}
	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	items := data["items"].([]interface{})
	pagination := data["pagination"].(map[string]interface{})
	if len(items) != 2 {
		t.Errorf("expected 2 items on the page, got %d", len(items))
	}
	if pagination["total"].(float64) != 3 {
		t.Errorf("expected total 3, got %v", pagination["total"])
	}
}
