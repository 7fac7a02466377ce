package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"teagate/internal/config"
	"teagate/internal/constants"
	"teagate/internal/logger"
	"teagate/internal/management"
	"teagate/internal/simulation"
	"teagate/pkg/bootstrap"
	"teagate/pkg/cel"
	"teagate/pkg/health"
	"teagate/pkg/metrics"
	"teagate/pkg/middleware"
	"teagate/pkg/migrations"
	"teagate/pkg/ratelimit"
	"teagate/pkg/ruledsl"
	"teagate/pkg/tracing"
)

type App struct {
	*bootstrap.Base
	dbConnector *bootstrap.DatabaseConnector
	db          *sql.DB
	mongoClient *mongo.Client
	selector    *cel.Evaluator
	rateLimit   *ratelimit.Store
	server      *http.Server
	router      *gin.Engine
}

func NewApp(cfg *config.Config, log logger.Logger) *App {
	return &App{
		Base:        bootstrap.NewBase(cfg, constants.ServiceManagement, log),
		dbConnector: bootstrap.NewDatabaseConnector(cfg, log),
	}
}

func (a *App) Initialize(ctx context.Context) error {
	if err := a.InitTracing(); err != nil {
		return err
	}

	if err := a.initDatabase(ctx); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	if a.Config.Database.RunMigrations {
		if err := migrations.RunPostgres(a.db, a.Config.Database.MigrationsDir, migrations.Up); err != nil {
			return err
		}
		a.Logger.InfowCtx(ctx, "Database migrations applied")
	}

	if err := a.initMongoDB(ctx); err != nil {
		return fmt.Errorf("failed to initialize MongoDB: %w", err)
	}

	if err := a.InitProducer(); err != nil {
		a.Logger.WarnwCtx(ctx, "Failed to create config event producer, rule events will be disabled", "error", err)
	}

	selector, err := cel.NewEvaluator()
	if err != nil {
		return fmt.Errorf("failed to initialize selector evaluator: %w", err)
	}
	a.selector = selector

	svc := a.newManagementService()
	if a.Config.Management.SeedOnStart {
		if _, err := svc.Seed(ctx); err != nil {
			return fmt.Errorf("failed to seed demo data: %w", err)
		}
	}

	a.initRouter(svc)
	a.initServer()
	return nil
}

func (a *App) initDatabase(ctx context.Context) error {
	db, err := a.dbConnector.InitPostgreSQL(ctx)
	if err != nil {
		return err
	}
	a.db = db
	return nil
}

// initMongoDB connects the report archive. MongoDB is optional: a failed
// connection only disables the archive.
func (a *App) initMongoDB(ctx context.Context) error {
	if !a.Config.Simulation.Archive.Enabled {
		return nil
	}

	initCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	client, err := a.dbConnector.InitMongoDB(initCtx)
	if err != nil {
		a.Logger.WarnwCtx(initCtx, "MongoDB connection failed, continuing without report archive", "error", err)
		return nil
	}
	if client == nil {
		return nil
	}
	a.mongoClient = client

	if err := migrations.EnsureReportIndexes(initCtx, a.mongoDatabase(), a.reportCollection()); err != nil {
		return err
	}
	return nil
}

func (a *App) mongoDatabase() *mongo.Database {
	name := a.Config.Database.MongoDB.Database
	if name == "" {
		name = constants.DefaultMongoDBName
	}
	return a.mongoClient.Database(name)
}

func (a *App) reportCollection() string {
	if c := a.Config.Simulation.Archive.Collection; c != "" {
		return c
	}
	return constants.DefaultReportCollection
}

func (a *App) newManagementService() management.Service {
	repo := management.NewPostgresRepository(a.db, constants.ServiceManagement)

	opts := []management.ServiceOption{management.WithLogger(a.Logger)}
	if a.Config.Management.Audit.Enabled {
		opts = append(opts, management.WithVersioning(management.NewVersioningRepository(a.db)))
	}
	if a.Producer != nil {
		topic := a.Config.Broker.Kafka.RuleEventsTopic
		if topic == "" {
			topic = constants.DefaultRuleEventsTopic
		}
		opts = append(opts, management.WithConfigEvents(management.NewConfigEventProducer(a.Producer, topic)))
	}
	if a.selector != nil {
		opts = append(opts, management.WithSelector(a.selector))
	}
	return management.NewService(repo, repo, opts...)
}

func (a *App) newSimulationService() *simulation.Service {
	repo := management.NewPostgresRepository(a.db, constants.ServiceManagement)

	opts := []simulation.Option{simulation.WithSelector(a.selector)}
	if cacheCfg := a.Config.Simulation.RuleCache; cacheCfg.Enabled {
		opts = append(opts, simulation.WithRuleCache(ruledsl.NewCache(time.Duration(cacheCfg.TTLSeconds)*time.Second)))
	}
	if a.mongoClient != nil {
		archive := simulation.NewMongoReportArchive(a.mongoDatabase(), a.reportCollection())
		opts = append(opts, simulation.WithArchive(simulation.NewCircuitBreakerArchive(archive, a.Config.CircuitBreaker)))
	}
	return simulation.NewService(repo, repo, a.Logger, opts...)
}

func (a *App) initRouter(svc management.Service) {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	if a.Config.Tracing.Enabled {
		router.Use(tracing.GinMiddleware(constants.ServiceManagement)...)
	}

	router.Use(middleware.RecoveryMiddleware(a.Logger))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware(a.Logger))
	router.Use(middleware.CORSMiddleware())

	if rl := a.Config.Management.RateLimit; rl.Enabled {
		a.rateLimit = ratelimit.NewStore(ratelimit.RateLimitConfig{
			RPS:             rl.RPS,
			Burst:           rl.Burst,
			CleanupInterval: time.Duration(rl.CleanupInterval) * time.Second,
			MaxAge:          time.Duration(rl.MaxAge) * time.Second,
		})
		router.Use(ratelimit.RateLimitMiddleware(a.rateLimit))
		a.Logger.Infow("Rate limiting enabled", "rps", rl.RPS, "burst", rl.Burst)
	}

	router.Use(management.ActorMiddleware())

	management.NewHandler(svc, a.Logger).RegisterRoutes(router)
	simulation.NewHandler(a.newSimulationService(), a.Logger).RegisterRoutes(router)

	metrics.RegisterManagementMetrics()
	metrics.RegisterSimulationMetrics()
	if a.Producer != nil {
		metrics.RegisterBrokerMetrics()
	}
	if a.Config.CircuitBreaker.Enabled {
		metrics.RegisterCircuitBreakerMetrics()
	}

	healthRegistry := health.NewCheckerRegistry()
	healthRegistry.Register(health.NewPostgreSQLChecker(a.db))
	if a.mongoClient != nil {
		healthRegistry.RegisterOptional(health.NewMongoDBChecker(a.mongoClient))
	}

	router.GET("/health", gin.WrapH(healthRegistry.Handler()))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	a.router = router
}

func (a *App) initServer() {
	a.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      a.router,
		ReadTimeout:  a.Config.Server.ReadTimeoutSeconds * time.Second,
		WriteTimeout: a.Config.Server.WriteTimeoutSeconds * time.Second,
	}
}

func (a *App) Run(ctx context.Context) error {
	if a.rateLimit != nil {
		go a.rateLimit.Run(ctx)
	}

	errChan := make(chan error, 1)
	go func() {
		a.Logger.InfowCtx(ctx, "Server listening", "port", a.Config.Server.Port)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		return a.Shutdown(context.Background())
	case err := <-errChan:
		_ = a.Shutdown(context.Background())
		return err
	}
}

func (a *App) Shutdown(ctx context.Context) error {
	return a.Base.Shutdown(ctx, func(ctx context.Context) []error {
		var errs []error

		if a.server != nil {
			shutdownCtx, cancel := context.WithTimeout(ctx, constants.ShutdownTimeout)
			defer cancel()
			if err := a.server.Shutdown(shutdownCtx); err != nil {
				errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
			}
		}

		return append(errs, a.dbConnector.ShutdownDatabases(ctx, nil, a.db, a.mongoClient)...)
	})
}
