package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/iniulez/spbsfi/internal/config"
	"github.com/iniulez/spbsfi/internal/entity"
	"github.com/iniulez/spbsfi/internal/handler"
	"github.com/iniulez/spbsfi/internal/middleware"
	"github.com/iniulez/spbsfi/internal/repository"
	"github.com/iniulez/spbsfi/internal/service"
	"github.com/iniulez/spbsfi/internal/sse"
	"github.com/iniulez/spbsfi/internal/storage"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := initLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting spbsfi service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
	)

	db, err := initDatabase(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := db.AutoMigrate(
		&entity.User{},
		&entity.Project{},
		&entity.Supplier{},
		&entity.Item{},
		&entity.StockMovement{},
		&entity.FormRequestBarang{},
		&entity.FRBItem{},
		&entity.PurchaseRequest{},
		&entity.PRItem{},
		&entity.PurchaseOrder{},
		&entity.DeliveryOrder{},
		&entity.DOItem{},
		&entity.GoodsReceipt{},
		&entity.GRNItem{},
		&entity.GoodsPreparationChecklist{},
		&entity.ChecklistItem{},
		&entity.TandaTerimaBarang{},
		&entity.TTBItem{},
		&entity.RejectionReport{},
		&entity.ActivityLog{},
		&entity.Notification{},
	); err != nil {
		zapLogger.Fatal("Failed to migrate database", zap.Error(err))
	}
	zapLogger.Info("Database migration completed")

	rdb := initRedis(cfg.Redis)

	var blobs *storage.BlobStore
	if cfg.MinIO.Endpoint != "" {
		blobs, err = storage.NewBlobStore(context.Background(), cfg.MinIO)
		if err != nil {
			zapLogger.Warn("Blob storage unavailable, uploads disabled", zap.Error(err))
			blobs = nil
		}
	}

	hub := sse.NewHub()
	repos := repository.NewRepositories(db)
	services := service.NewServices(db, repos, rdb, hub, cfg)
	handlers := handler.NewHandlers(services, blobs, hub)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(zapLogger))
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	registerRoutes(router, handlers, cfg, rdb)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: 0, // Disable for SSE long-lived connections
	}

	go func() {
		zapLogger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exited")
}

func initLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	return zapCfg.Build()
}

func initDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	return db, nil
}

func initRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func registerRoutes(r *gin.Engine, h *handler.Handlers, cfg *config.Config, rdb *redis.Client) {
	r.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/health/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
		})
	})

	v1 := r.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		// SSE stream accepts the token as a query param
		sseGroup := v1.Group("/sse")
		sseGroup.Use(middleware.JWTAuth(cfg.JWT.Secret, rdb))
		{
			sseGroup.GET("/events", h.SSE.Stream)
		}

		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(cfg.JWT.Secret, rdb))
		{
			authorized.GET("/auth/me", h.Auth.GetCurrentUser)
			authorized.POST("/auth/logout", h.Auth.Logout)

			authorized.GET("/dashboard", h.Dashboard.Summary)

			users := authorized.Group("/users")
			users.Use(middleware.RequireRole("admin"))
			{
				users.GET("", h.User.List)
				users.GET("/:id", h.User.Get)
				users.POST("", h.User.Create)
				users.PUT("/:id", h.User.Update)
			}

			projects := authorized.Group("/projects")
			{
				projects.GET("", h.Project.List)
				projects.GET("/:id", h.Project.Get)
				projects.POST("", middleware.RequireRole("project_manager"), h.Project.Create)
				projects.PUT("/:id", middleware.RequireRole("project_manager"), h.Project.Update)
			}

			suppliers := authorized.Group("/suppliers")
			{
				suppliers.GET("", h.Supplier.List)
				suppliers.GET("/:id", h.Supplier.Get)
				suppliers.POST("", middleware.RequireRole("admin"), h.Supplier.Create)
				suppliers.PUT("/:id", middleware.RequireRole("admin"), h.Supplier.Update)
			}

			items := authorized.Group("/items")
			{
				items.GET("", h.Item.List)
				items.GET("/:id", h.Item.Get)
				items.GET("/:id/movements", h.Item.Movements)
				items.POST("", middleware.RequireRole("warehouse"), h.Item.Create)
				items.PUT("/:id", middleware.RequireRole("warehouse"), h.Item.Update)
				items.POST("/:id/adjust", middleware.RequireRole("warehouse"), h.Item.Adjust)
			}

			frbs := authorized.Group("/frbs")
			{
				frbs.GET("", h.FRB.List)
				frbs.GET("/:id", h.FRB.Get)
				frbs.POST("", middleware.RequireRole("project_manager"), h.FRB.Create)
				frbs.PUT("/:id", middleware.RequireRole("project_manager"), h.FRB.Update)
				frbs.POST("/:id/submit", middleware.RequireRole("project_manager"), h.FRB.Submit)
				frbs.POST("/:id/decide", middleware.RequireRole("director"), h.FRB.Decide)
				frbs.POST("/:id/validate", middleware.RequireRole("purchasing"), h.FRB.Validate)
			}

			prs := authorized.Group("/prs")
			{
				prs.GET("", h.Procurement.ListPRs)
				prs.GET("/:id", h.Procurement.GetPR)
				prs.POST("/:id/decide", middleware.RequireRole("director"), h.Procurement.DecidePR)
			}

			pos := authorized.Group("/pos")
			{
				pos.GET("", h.Procurement.ListPOs)
				pos.GET("/:id", h.Procurement.GetPO)
				pos.POST("", middleware.RequireRole("purchasing"), h.Procurement.CreatePO)
				pos.POST("/:id/ship", middleware.RequireRole("purchasing"), h.Procurement.ShipPO)
				pos.POST("/:id/cancel", middleware.RequireRole("purchasing"), h.Procurement.CancelPO)
			}

			grns := authorized.Group("/grns")
			{
				grns.GET("", h.Warehouse.ListGRNs)
				grns.GET("/awaiting", h.Warehouse.ListAwaitingReceipt)
				grns.GET("/:id", h.Warehouse.GetGRN)
				grns.POST("", middleware.RequireRole("warehouse"), h.Warehouse.RecordGRN)
			}

			dos := authorized.Group("/dos")
			{
				dos.GET("", h.Warehouse.ListDOs)
				dos.GET("/:id", h.Warehouse.GetDO)
				dos.POST("/:id/send", middleware.RequireRole("warehouse"), h.Warehouse.SendDO)
			}

			checklists := authorized.Group("/checklists")
			{
				checklists.GET("", h.Warehouse.ListChecklists)
				checklists.POST("", middleware.RequireRole("warehouse"), h.Warehouse.RecordChecklist)
			}

			ttbs := authorized.Group("/ttbs")
			{
				ttbs.GET("", h.Warehouse.ListTTBs)
				ttbs.GET("/:id", h.Warehouse.GetTTB)
				ttbs.POST("", middleware.RequireRole("warehouse"), h.Warehouse.RecordTTB)
			}

			reports := authorized.Group("/rejection-reports")
			{
				reports.GET("", h.Warehouse.ListRejectionReports)
				reports.POST("/:id/start", middleware.RequireRole("purchasing", "warehouse"), h.Warehouse.StartReconciliation)
				reports.POST("/:id/resolve", middleware.RequireRole("purchasing", "warehouse"), h.Warehouse.ResolveReconciliation)
			}

			notifications := authorized.Group("/notifications")
			{
				notifications.GET("", h.Notification.List)
				notifications.GET("/unread-count", h.Notification.UnreadCount)
				notifications.POST("/:id/read", h.Notification.MarkRead)
				notifications.POST("/read-all", h.Notification.MarkAllRead)
			}

			authorized.GET("/activities", h.Activity.List)

			xlsx := authorized.Group("/reports")
			{
				xlsx.GET("/stock", h.Report.StockReport)
				xlsx.GET("/movements/:itemId", h.Report.MovementReport)
				xlsx.GET("/frbs", h.Report.FRBReport)
			}

			uploads := authorized.Group("/uploads")
			{
				uploads.POST("/:kind", h.Upload.Upload)
				uploads.GET("/url", h.Upload.Download)
			}
		}
	}
}
