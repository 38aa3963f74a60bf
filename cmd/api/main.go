package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-liquor-inventory/internal/config"
	"go-liquor-inventory/internal/handler"
	"go-liquor-inventory/internal/lock"
	"go-liquor-inventory/internal/middleware"
	"go-liquor-inventory/internal/model"
	"go-liquor-inventory/internal/repository"
	"go-liquor-inventory/internal/sequence"
	"go-liquor-inventory/internal/service"
	"go-liquor-inventory/internal/ws"
	"go-liquor-inventory/pkg/database"
	"go-liquor-inventory/pkg/logger"

	"github.com/bsm/redislock"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func main() {
	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		logger.Get().Warn(".env file not found, relying on system env")
	}
	cfg := config.Load()
	logger.SetLevel(cfg.LogLevel)
	log := logger.Get()

	// 2. Setup Database
	db, err := database.ConnectDB(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	if cfg.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			log.WithError(err).Fatal("failed to migrate database")
		}
	}

	userRepo := repository.NewUserRepo(db)
	privilegeRepo := repository.NewPrivilegeRepo(db)
	roleRepo := repository.NewRoleRepo(db)
	dashboardRepo := repository.NewDashboardRepo(db)
	store := repository.NewStore(db)

	// 3. Seed default privileges, roles, and admin user
	if cfg.SeedDefaultData {
		seedPrivilegesRolesAndAdmin(cfg, log, privilegeRepo, roleRepo, userRepo)
	}

	// 4. Order locks and transaction numbers: shared through Redis when
	// configured, otherwise process-local.
	locker, numbers, closeRedis := coordination(cfg, log)
	defer closeRedis()

	// 5. Setup WebSocket Hub
	wsHub := ws.NewHub(log)
	go wsHub.Run()

	// 6. Dependency Injection (Wiring Layers)
	importOrderService := service.NewImportOrderService(store, locker, numbers, wsHub, log, cfg.OrderLockTTL)
	invService := service.NewInventoryService(store, numbers, wsHub, log)
	dashService := service.NewDashboardService(dashboardRepo, cfg.LowStockThreshold)
	authService := service.NewAuthService(userRepo, log)
	userService := service.NewUserService(userRepo, privilegeRepo, roleRepo, log)

	orderHandler := handler.NewImportOrderHandler(importOrderService)
	invHandler := handler.NewInventoryHandler(invService)
	dashHandler := handler.NewDashboardHandler(dashService)
	authHandler := handler.NewAuthHandler(authService)
	roleHandler := handler.NewRoleHandler(roleRepo, privilegeRepo)
	userHandler := handler.NewUserHandler(userService)

	// 7. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: cfg.AppName,
	})

	app.Use(fiberlogger.New())
	app.Use(recover.New())
	app.Use(cors.New())

	// 8. Routes
	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/login", authHandler.Login)
	auth.Post("/validate-token", authHandler.ValidateToken)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", middleware.RequireAuth(userRepo))
	priv := middleware.RequirePrivilege

	protected.Get("/dashboard/stats", priv(model.PrivDashboardView), dashHandler.GetDashboardStats)
	protected.Get("/dashboard/stock-movement", priv(model.PrivDashboardView), dashHandler.GetStockMovement)

	protected.Get("/import-orders", priv(model.PrivImportOrderView), orderHandler.GetImportOrders)
	protected.Get("/import-orders/:id", priv(model.PrivImportOrderView), orderHandler.GetImportOrder)
	protected.Post("/import-orders", priv(model.PrivImportOrderCreate), orderHandler.CreateImportOrder)
	protected.Post("/import-orders/:id/approve", priv(model.PrivImportOrderApprove), orderHandler.ApproveImportOrder)
	protected.Post("/import-orders/:id/complete", priv(model.PrivImportOrderComplete), orderHandler.CompleteImportOrder)
	protected.Post("/import-orders/:id/cancel", priv(model.PrivImportOrderCancel), orderHandler.CancelImportOrder)

	protected.Get("/products", invHandler.GetProducts)
	protected.Get("/products/:id", invHandler.GetProduct)
	protected.Post("/products", priv(model.PrivProductCreate), invHandler.CreateProduct)
	protected.Put("/products/:id", priv(model.PrivProductUpdate), invHandler.UpdateProduct)

	protected.Get("/suppliers", invHandler.GetSuppliers)
	protected.Post("/suppliers", priv(model.PrivSupplierCreate), invHandler.CreateSupplier)

	protected.Get("/inventory", priv(model.PrivInventoryView), invHandler.GetInventories)
	protected.Get("/inventory/:productId", priv(model.PrivInventoryView), invHandler.GetInventory)
	protected.Get("/inventory/:productId/transactions", priv(model.PrivInventoryView), invHandler.GetProductTransactions)
	protected.Post("/inventory/:productId/adjustments", priv(model.PrivInventoryAdjust), invHandler.AdjustInventory)

	ledgerView := middleware.RequireAnyPrivilege(model.PrivInventoryView, model.PrivImportOrderView)
	protected.Get("/inventory-transactions", ledgerView, invHandler.GetTransactions)
	protected.Get("/inventory-transactions/:id", ledgerView, invHandler.GetTransaction)

	protected.Get("/users", priv(model.PrivUserView), userHandler.GetUsers)
	protected.Get("/users/:id", priv(model.PrivUserView), userHandler.GetUser)
	protected.Post("/users", priv(model.PrivUserCreate), userHandler.CreateUser)
	protected.Put("/users/:id", priv(model.PrivUserUpdate), userHandler.UpdateUser)
	protected.Put("/users/:id/privileges", priv(model.PrivUserUpdate), userHandler.UpdateUserPrivileges)

	protected.Get("/roles", roleHandler.GetRoles)
	protected.Get("/privileges", roleHandler.GetPrivileges)

	// WebSocket Route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		if !wsHub.Join(c) {
			c.Close()
			return
		}
		defer wsHub.Leave(c)

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 9. Graceful Shutdown
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.WithError(err).Panic("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.WithError(err).Error("server forced to shutdown")
	}
	wsHub.Stop()
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	log.Info("server exited")
}

// coordination picks the order locker and transaction numbering backend.
func coordination(cfg config.Config, log *logrus.Logger) (lock.Locker, *sequence.NumberGenerator, func()) {
	if cfg.RedisAddress == "" {
		log.Warn("REDIS_ADDRESS not set, using in-process order locks and transaction numbers")
		return lock.NewLocalLocker(cfg.OrderLockWait), sequence.NewLocalNumberGenerator(), func() {}
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddress,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.WithError(err).Fatal("failed to connect to redis")
	}
	log.WithField("addr", cfg.RedisAddress).Info("redis connection established")

	locker := lock.NewRedisLocker(redislock.New(rdb), cfg.OrderLockWait)
	numbers := sequence.NewNumberGenerator(sequence.NewRedisSequence(rdb, "liquor-inventory:txn-seq", 48*time.Hour))
	return locker, numbers, func() { rdb.Close() }
}

// seedPrivilegesRolesAndAdmin creates default privileges, roles, and admin user if they don't exist
func seedPrivilegesRolesAndAdmin(cfg config.Config, log *logrus.Logger, privilegeRepo repository.PrivilegeRepository, roleRepo repository.RoleRepository, userRepo repository.UserRepository) {
	if err := privilegeRepo.SeedDefaults(); err != nil {
		log.WithError(err).Warn("failed to seed privileges")
	}
	if err := roleRepo.SeedDefaults(); err != nil {
		log.WithError(err).Warn("failed to seed roles")
	}

	allPrivileges, err := privilegeRepo.FindAll()
	if err != nil {
		log.WithError(err).Warn("failed to load privileges")
		return
	}

	// Roles only receive their defaults while they have no privileges at all,
	// so manual changes survive restarts. MASTER_ADMIN always tracks the full set.
	for code, codes := range model.RolePrivilegeCodes {
		role, err := roleRepo.FindByCode(code)
		if err != nil {
			continue
		}
		if codes == nil && len(role.Privileges) == len(allPrivileges) {
			continue
		}
		if codes != nil && len(role.Privileges) > 0 {
			continue
		}
		grant := allPrivileges
		if codes != nil {
			if grant, err = privilegeRepo.FindByCodes(codes); err != nil {
				log.WithError(err).WithField("role", code).Warn("failed to load role privileges")
				continue
			}
		}
		if err := roleRepo.ReplacePrivileges(role, grant); err != nil {
			log.WithError(err).WithField("role", code).Warn("failed to assign role privileges")
			continue
		}
		log.WithFields(logrus.Fields{"role": code, "privileges": len(grant)}).Info("role privileges assigned")
	}

	if _, err := userRepo.FindByEmail(cfg.AdminEmail); err == nil {
		return
	}
	masterRole, err := roleRepo.FindByCode(model.RoleMasterAdmin)
	if err != nil {
		log.WithError(err).Warn("MASTER_ADMIN role missing, admin user not created")
		return
	}
	admin := &model.User{
		Email:    cfg.AdminEmail,
		FullName: "Master Administrator",
		RoleID:   &masterRole.ID,
		IsActive: true,
	}
	if err := admin.SetPassword(cfg.AdminPassword); err != nil {
		log.WithError(err).Warn("failed to hash admin password")
		return
	}
	if err := userRepo.Create(admin); err != nil {
		log.WithError(err).Warn("failed to create admin user")
		return
	}
	log.WithField("email", cfg.AdminEmail).Info("admin user created (MASTER_ADMIN)")
}
