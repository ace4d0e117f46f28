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

	httptransport "github.com/thomlank/QuikTik/internal/api/http"
	"github.com/thomlank/QuikTik/internal/api/http/handlers"
	"github.com/thomlank/QuikTik/internal/auth"
	"github.com/thomlank/QuikTik/internal/config"
	"github.com/thomlank/QuikTik/internal/events"
	"github.com/thomlank/QuikTik/internal/observability"
	"github.com/thomlank/QuikTik/internal/persistence"
	"github.com/thomlank/QuikTik/internal/repository"
	"github.com/thomlank/QuikTik/internal/service"
	"github.com/thomlank/QuikTik/internal/worker"
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

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	repos := repository.NewRepos(pool)
	uow := repository.NewUnitOfWork(pool)

	snapshotCache := persistence.NewSnapshotCache(redis, cfg.Redis.SnapshotTTLSeconds)
	actorProvider := service.NewActorProvider(repos.Memberships, snapshotCache)

	dispatcher := events.NewInMemoryDispatcher()
	invalidator := worker.NewSnapshotInvalidator(snapshotCache, logger)
	invalidator.Register(dispatcher)

	authService := service.NewAuthService(*cfg, repos.Users)
	userService := service.NewUserService(service.UserDependencies{
		Repos:         repos,
		UnitOfWork:    uow,
		ActorProvider: actorProvider,
		BcryptCost:    cfg.Auth.BcryptCost,
	})
	membershipService := service.NewMembershipService(service.MembershipDependencies{
		Repos:      repos,
		UnitOfWork: uow,
		Dispatcher: dispatcher,
	})
	ticketService := service.NewTicketService(service.TicketDependencies{
		Repos:         repos,
		UnitOfWork:    uow,
		ActorProvider: actorProvider,
		Dispatcher:    dispatcher,
	})
	categoryService := service.NewCategoryService(repos, uow)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), repos.Users)

	metrics := observability.NewMetrics()
	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, time.Duration(cfg.App.RequestTimeoutSeconds)*time.Second)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Users:          handlers.NewUsersHandler(userService),
		Teams:          handlers.NewTeamsHandler(membershipService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Categories:     handlers.NewCategoriesHandler(categoryService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
