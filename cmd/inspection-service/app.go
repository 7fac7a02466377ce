package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/errgroup"

	"teagate/internal/config"
	"teagate/internal/constants"
	"teagate/internal/deduplication"
	"teagate/internal/logger"
	"teagate/internal/management"
	"teagate/internal/simulation"
	"teagate/pkg/bootstrap"
	"teagate/pkg/health"
	"teagate/pkg/logging"
	"teagate/pkg/metrics"
	"teagate/pkg/migrations"
	"teagate/pkg/ruledsl"
)

const cacheMetricsInterval = 30 * time.Second

type App struct {
	*bootstrap.Base
	dbConnector *bootstrap.DatabaseConnector
	db          *sql.DB
	redis       *redis.Client
	mongoClient *mongo.Client
	dedup       *deduplication.Service
	rules       *simulation.RuleSet
	inspector   *simulation.Inspector
	server      *http.Server
}

func NewApp(cfg *config.Config, log logger.Logger) *App {
	return &App{
		Base:        bootstrap.NewBase(cfg, constants.ServiceInspection, log),
		dbConnector: bootstrap.NewDatabaseConnector(cfg, log),
	}
}

func (a *App) Initialize(ctx context.Context) error {
	if err := a.InitTracing(); err != nil {
		return err
	}

	db, err := a.dbConnector.InitPostgreSQL(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	a.db = db

	rdb, err := a.dbConnector.InitRedis(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize Redis: %w", err)
	}
	a.redis = rdb

	if err := a.initMongoDB(ctx); err != nil {
		return err
	}

	if err := a.initDedup(); err != nil {
		return fmt.Errorf("failed to initialize deduplication: %w", err)
	}

	if err := a.InitProducer(); err != nil {
		return err
	}
	if a.Producer == nil {
		return errors.New("a broker is required to publish verdicts")
	}

	a.initPipeline()
	if err := a.rules.Load(ctx); err != nil {
		return fmt.Errorf("failed to load rules: %w", err)
	}

	metrics.RegisterSimulationMetrics()
	metrics.RegisterInspectionMetrics()
	metrics.RegisterBrokerMetrics()
	metrics.RegisterDatabaseMetrics()
	if a.Config.CircuitBreaker.Enabled {
		metrics.RegisterCircuitBreakerMetrics()
	}

	a.initHTTPServer()
	return nil
}

func (a *App) initMongoDB(ctx context.Context) error {
	if !a.Config.Simulation.Archive.Enabled {
		return nil
	}
	client, err := a.dbConnector.InitMongoDB(ctx)
	if err != nil {
		a.Logger.WarnwCtx(ctx, "MongoDB connection failed, continuing without report archive", "error", err)
		return nil
	}
	if client == nil {
		return nil
	}
	a.mongoClient = client
	return migrations.EnsureReportIndexes(ctx, a.mongoDatabase(), a.reportCollection())
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

func (a *App) initDedup() error {
	var repo deduplication.Repository = deduplication.NewRepository(a.redis)
	if a.Config.CircuitBreaker.Enabled {
		repo = deduplication.NewCircuitBreakerRepository(repo, a.Config.CircuitBreaker)
		a.Logger.Info("Circuit breaker enabled for deduplication repository")
	}

	svc, err := deduplication.NewService(repo, a.Config.Inspection, a.Logger)
	if err != nil {
		return err
	}
	a.dedup = svc
	return nil
}

func (a *App) initPipeline() {
	repo := management.NewPostgresRepository(a.db, constants.ServiceInspection)

	var cache *ruledsl.Cache
	if cacheCfg := a.Config.Simulation.RuleCache; cacheCfg.Enabled {
		cache = ruledsl.NewCache(time.Duration(cacheCfg.TTLSeconds) * time.Second)
	}

	opts := []simulation.Option{simulation.WithRuleCache(cache)}
	if a.mongoClient != nil {
		archive := simulation.NewMongoReportArchive(a.mongoDatabase(), a.reportCollection())
		opts = append(opts, simulation.WithArchive(simulation.NewCircuitBreakerArchive(archive, a.Config.CircuitBreaker)))
	}
	simulator := simulation.NewService(repo, repo, a.Logger, opts...)

	a.rules = simulation.NewRuleSet(repo, a.Config.Simulation.Reload, cache, a.Logger)
	a.inspector = simulation.NewInspector(simulator, a.rules, a.dedup, a.Producer, a.verdictTopic(), a.Logger)
}

func (a *App) verdictTopic() string {
	if t := a.Config.Broker.Kafka.VerdictTopic; t != "" {
		return t
	}
	return constants.DefaultVerdictTopic
}

func (a *App) inspectionTopic() string {
	if t := a.Config.Broker.Kafka.InspectionTopic; t != "" {
		return t
	}
	return constants.DefaultInspectionTopic
}

func (a *App) ruleEventsTopic() string {
	if t := a.Config.Broker.Kafka.RuleEventsTopic; t != "" {
		return t
	}
	return constants.DefaultRuleEventsTopic
}

func (a *App) initHTTPServer() {
	healthRegistry := health.NewCheckerRegistry()
	healthRegistry.Register(health.NewPostgreSQLChecker(a.db))
	healthRegistry.Register(health.NewRedisChecker(a.redis))
	if a.mongoClient != nil {
		healthRegistry.RegisterOptional(health.NewMongoDBChecker(a.mongoClient))
	}

	mux := http.NewServeMux()
	mux.Handle("/health", healthRegistry.Handler())
	mux.Handle("/metrics", promhttp.Handler())

	a.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      mux,
		ReadTimeout:  a.Config.Server.ReadTimeoutSeconds * time.Second,
		WriteTimeout: a.Config.Server.WriteTimeoutSeconds * time.Second,
	}
}

// ruleEventsGroup gives every instance its own consumer group so each one
// sees every rule change.
func ruleEventsGroup(base string) string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = uuid.New().String()
	}
	return fmt.Sprintf("%s-rules-%s", base, host)
}

func (a *App) Run(ctx context.Context) error {
	inspections, err := a.NewConsumer("")
	if err != nil {
		return err
	}
	ruleEvents, err := a.NewConsumer(ruleEventsGroup(a.Config.Broker.Kafka.GroupID))
	if err != nil {
		return err
	}
	configHandler := simulation.NewConfigEventHandler(a.rules, a.dedup, a.Logger)

	g, gCtx := errgroup.WithContext(ctx)
	logCtx := logging.WithServiceName(gCtx, constants.ServiceInspection)

	g.Go(func() error {
		a.Logger.InfowCtx(logCtx, "HTTP server starting", "port", a.Config.Server.Port)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
		defer cancel()
		return a.server.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		a.Logger.InfowCtx(logCtx, "Consuming inspection events", "topic", a.inspectionTopic(), "verdict_topic", a.verdictTopic())
		return inspections.Consume(gCtx, a.inspectionTopic(), a.inspector.HandleInspection)
	})

	g.Go(func() error {
		a.Logger.InfowCtx(logCtx, "Consuming rule events", "topic", a.ruleEventsTopic())
		return ruleEvents.Consume(gCtx, a.ruleEventsTopic(), configHandler.HandleConfigUpdateEvent)
	})

	g.Go(func() error {
		return a.rules.StartReloader(gCtx)
	})

	g.Go(func() error {
		a.dedup.RunCacheMetrics(gCtx, cacheMetricsInterval)
		return nil
	})

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (a *App) Shutdown(ctx context.Context) error {
	return a.Base.Shutdown(ctx, func(ctx context.Context) []error {
		return a.dbConnector.ShutdownDatabases(ctx, a.redis, a.db, a.mongoClient)
	})
}
