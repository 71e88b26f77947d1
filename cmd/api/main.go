package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/Fluffaro/desk-cartel/internal/api/http"
	"github.com/Fluffaro/desk-cartel/internal/api/http/handlers"
	"github.com/Fluffaro/desk-cartel/internal/auth"
	"github.com/Fluffaro/desk-cartel/internal/config"
	"github.com/Fluffaro/desk-cartel/internal/events"
	"github.com/Fluffaro/desk-cartel/internal/observability"
	"github.com/Fluffaro/desk-cartel/internal/persistence"
	"github.com/Fluffaro/desk-cartel/internal/repository"
	"github.com/Fluffaro/desk-cartel/internal/repository/memory"
	"github.com/Fluffaro/desk-cartel/internal/scheduler"
	"github.com/Fluffaro/desk-cartel/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	var (
		txRunner     repository.TxRunner
		userRepo     repository.UserRepository
		agentRepo    repository.AgentRepository
		priorityRepo repository.PriorityRepository
		categoryRepo repository.CategoryRepository
		ticketRepo   repository.TicketRepository
	)

	pool := pg.PoolHandle()
	if pool != nil {
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pool, logger); err != nil {
				logger.Fatal("failed to run migrations", zap.Error(err))
			}
		}
		txRunner = repository.NewPgxTxRunner(pool)
		userRepo = repository.NewUserRepository(pool)
		agentRepo = repository.NewAgentRepository(pool)
		priorityRepo = repository.NewPriorityRepository(pool)
		categoryRepo = repository.NewCategoryRepository(pool)
		ticketRepo = repository.NewTicketRepository(pool)
	} else {
		// No DSN configured: run against in-memory repositories. State does
		// not survive a restart, so this mode is for local development only.
		logger.Warn("running with in-memory repositories; state is not persisted")
		store := memory.NewStore()
		txRunner = store
		userRepo = store.Users()
		agentRepo = store.Agents()
		priorityRepo = store.Priorities()
		categoryRepo = store.Categories()
		ticketRepo = store.Tickets()
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	assignmentService := service.NewAssignmentService(service.AssignmentDependencies{
		TicketRepo: ticketRepo,
		AgentRepo:  agentRepo,
		TxRunner:   txRunner,
		Dispatcher: dispatcher,
		Logger:     logger,
		Metrics:    metrics,
	})
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:   ticketRepo,
		AgentRepo:    agentRepo,
		PriorityRepo: priorityRepo,
		CategoryRepo: categoryRepo,
		Assignments:  assignmentService,
		TxRunner:     txRunner,
		Dispatcher:   dispatcher,
		Logger:       logger,
	})
	agentService := service.NewAgentService(service.AgentDependencies{
		AgentRepo:  agentRepo,
		UserRepo:   userRepo,
		TxRunner:   txRunner,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	catalogService := service.NewCatalogService(priorityRepo, categoryRepo)
	authService := service.NewAuthService(cfg.Auth, userRepo)

	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	notificationService.RegisterHandlers()

	if cfg.Scheduler.Enabled {
		var deduper scheduler.WarningDeduper
		if redis.Client != nil {
			deduper = redis
		}
		sweeps := scheduler.NewSweeps(scheduler.SweepDependencies{
			TicketRepo:      ticketRepo,
			AgentRepo:       agentRepo,
			Assignments:     assignmentService,
			Dispatcher:      dispatcher,
			Deduper:         deduper,
			Logger:          logger,
			WarningFraction: cfg.Scheduler.DeadlineWarningFraction,
		})
		sched := scheduler.New(logger, metrics, sweeps.Jobs(cfg.Scheduler)...)
		sched.Start(ctx)
		defer sched.Wait()
	}

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo, agentRepo)

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: cfg.App.Env == "production",
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, time.Duration(cfg.App.RequestTimeoutSeconds)*time.Second)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Agents:         handlers.NewAgentsHandler(agentService),
		Catalog:        handlers.NewCatalogHandler(catalogService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
	cancel()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
