package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tts-guard-backend/config"
	"tts-guard-backend/db"
	"tts-guard-backend/db/models"
	"tts-guard-backend/internal/bootstrap"
	"tts-guard-backend/internal/events"
	"tts-guard-backend/middleware"
	"tts-guard-backend/notifications"
	"tts-guard-backend/token"
	"tts-guard-backend/utils"
	"tts-guard-backend/websocket"

	// Repositories
	client_repositories "tts-guard-backend/clients/repositories"
	dashboard_repositories "tts-guard-backend/dashboard/repositories"
	financial_repositories "tts-guard-backend/financials/repositories"
	inspection_repositories "tts-guard-backend/inspections/repositories"
	report_repositories "tts-guard-backend/reports/repositories"
	user_repositories "tts-guard-backend/users/repositories"

	// Services
	client_services "tts-guard-backend/clients/services"
	dashboard_services "tts-guard-backend/dashboard/services"
	demo_services "tts-guard-backend/demo/services"
	financial_services "tts-guard-backend/financials/services"
	inspection_services "tts-guard-backend/inspections/services"
	report_services "tts-guard-backend/reports/services"
	user_services "tts-guard-backend/users/services"

	// Routes
	client_routes "tts-guard-backend/clients/routes"
	dashboard_routes "tts-guard-backend/dashboard/routes"
	demo_routes "tts-guard-backend/demo/routes"
	financial_routes "tts-guard-backend/financials/routes"
	inspection_routes "tts-guard-backend/inspections/routes"
	report_routes "tts-guard-backend/reports/routes"
	user_routes "tts-guard-backend/users/routes"

	// bleve
	bleveControllers "tts-guard-backend/bleve/controllers"
	bleveRepositories "tts-guard-backend/bleve/repositories"
	bleveRoutes "tts-guard-backend/bleve/routes"
	bleveServices "tts-guard-backend/bleve/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	config.InitLogger()
	defer config.Logger.Sync()
	config.LoadEnv()

	if err := utils.InitializeDateLocation(config.GetEnv("APP_TIMEZONE")); err != nil {
		config.Logger.Fatal("Failed to initialize date location", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gdb := config.ConfigureDatabase()
	if err := db.EnsureSeeded(gdb, utils.Today()); err != nil {
		config.Logger.Fatal("Failed to seed database", zap.Error(err))
	}
	policy := config.LoadPolicy()

	// Redis backs the dashboard cache, sessions and the digest queue. Without
	// it the API still runs: uncached, in-process sessions, inline digest.
	var cache utils.Cache = utils.NopCache{}
	var sessions token.SessionStore = token.NewMemorySessionStore()
	var redisClient *redis.Client
	if rdb, err := config.InitRedisServer(ctx); err != nil {
		config.Logger.Warn("Redis unavailable, running without cache and queue", zap.Error(err))
	} else {
		redisClient = rdb
		defer redisClient.Close()
		cache = utils.NewRedisCache(redisClient)
		sessions = token.NewRedisSessionStore(redisClient)
	}

	tokenMaker, err := token.NewPasetoMaker(config.GetEnv("TOKEN_SYMMETRIC_KEY"))
	if err != nil {
		config.Logger.Fatal("Cannot create token maker", zap.Error(err))
	}
	appCtx := &middleware.AppContext{
		PasetoMaker: tokenMaker,
		Ctx:         ctx,
		Sessions:    sessions,
	}

	// Realtime events
	wsHub := websocket.NewHub()
	go wsHub.Run(ctx)
	var publisher events.Publisher = wsHub

	// Search index
	indexPath := config.GetEnvDefault("BLEVE_INDEX_PATH", "./bleve_data")
	indexingService := bleveServices.NewIndexingService(config.Logger, indexPath)
	defer indexingService.Close()
	bleveRepo := bleveRepositories.NewBleveRepository(indexingService)

	// Repositories
	clientRepo := client_repositories.NewClientRepository(gdb)
	dashboardRepo := dashboard_repositories.NewDashboardRepository(gdb)
	financialRepo := financial_repositories.NewFinancialRepository(gdb)
	inspectionRepo := inspection_repositories.NewInspectionRepository(gdb)
	reportRepo := report_repositories.NewReportRepository(gdb)
	userRepo := user_repositories.NewUserRepository(gdb)

	if err := bootstrap.IndexBleveData(ctx, clientRepo, bleveRepo); err != nil {
		config.Logger.Error("Initial search indexing failed", zap.Error(err))
	}

	// Services
	aggregator := dashboard_services.NewAggregator(dashboardRepo, cache, policy)
	directory := client_services.NewDirectoryService(gdb, clientRepo, cache, publisher, bleveRepo)
	inspections := inspection_services.NewInspectionService(gdb, inspectionRepo, policy, cache, publisher, directory)
	financials := financial_services.NewFinancialService(gdb, financialRepo, cache, publisher)
	reports := report_services.NewReportService(reportRepo, policy, utils.ExportDir)
	users := user_services.NewUserService(userRepo, user_services.NewLoginLimiter(time.Minute, 5))
	demo := demo_services.NewDemoService(gdb, clientRepo, bleveRepo, cache, publisher)

	// Overdue digest: queued through asynq when redis is up, inline otherwise.
	var mailer notifications.Mailer
	if m, err := notifications.NewSMTPMailerFromEnv(); err != nil {
		config.Logger.Warn("Mailer not configured, digest emails disabled", zap.Error(err))
	} else {
		mailer = m
	}
	digest := &notifications.DigestHandler{
		Overdue:    aggregator,
		Mailer:     mailer,
		Recipients: config.GetEnvList("DIGEST_RECIPIENTS"),
	}

	var enqueuer notifications.Enqueuer
	if redisClient != nil {
		asynqRedisOpt := asynq.RedisClientOpt{
			Addr:     config.GetEnv("REDIS_ADDRESS"),
			Password: config.GetEnv("REDIS_PASSWORD"),
			DB:       config.GetEnvInt("REDIS_DB", 0),
		}
		asynqClient := asynq.NewClient(asynqRedisOpt)
		defer asynqClient.Close()
		enqueuer = asynqClient

		worker, mux := notifications.NewWorker(asynqRedisOpt, digest)
		if err := worker.Start(mux); err != nil {
			config.Logger.Error("Digest worker failed to start", zap.Error(err))
		} else {
			defer worker.Shutdown()
		}
	}

	scheduler := notifications.NewScheduler(inspections, enqueuer, digest)
	if err := scheduler.Start(ctx, config.GetEnvDefault("SWEEP_CRON", notifications.DefaultSweepCron)); err != nil {
		config.Logger.Fatal("Scheduler failed to start", zap.Error(err))
	}
	defer scheduler.Stop()

	if err := utils.EnsureDirectoryExists(utils.ExportDir); err != nil {
		config.Logger.Fatal("Cannot create export directory", zap.Error(err))
	}

	app := fiber.New(fiber.Config{AppName: "TTS Guard API"})
	app.Use(recover.New())
	middleware.InitCors(app)
	app.Static("/public", "./public")

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	wsHandler := websocket.NewWsHandler(wsHub, tokenMaker)
	app.Get("/ws", wsHandler.HandleWebSocket)

	protected := user_routes.AuthRouterInit(app.Group("/api/v1"), users, appCtx)
	dashboard_routes.DashboardRouterInit(protected, aggregator)
	client_routes.ClientRouterInit(protected, directory, aggregator)
	inspection_routes.InspectionRouterInit(protected, inspections)
	financial_routes.FinancialRouterInit(protected, financials)
	report_routes.ReportRouterInit(protected, reports)
	bleveRoutes.InitBleveRoutes(protected, bleveControllers.NewSearchController(bleveRepo))
	demo_routes.DemoRouterInit(protected, demo,
		middleware.RequireRole(string(models.AdminRole), string(models.OperationsRole)))

	go func() {
		<-ctx.Done()
		config.Logger.Info("Shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			config.Logger.Error("Server shutdown failed", zap.Error(err))
		}
	}()

	port := config.GetEnvDefault("PORT", "8080")
	config.Logger.Info("Server starting", zap.String("port", port))
	if err := app.Listen(":" + port); err != nil {
		config.Logger.Error("Server failed", zap.String("port", port), zap.Error(err))
	}
}
