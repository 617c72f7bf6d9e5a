package app

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Avi-Bendetsky/Quiz-to-build-sub004/internal/cache"
	"github.com/Avi-Bendetsky/Quiz-to-build-sub004/internal/config"
	"github.com/Avi-Bendetsky/Quiz-to-build-sub004/internal/logger"
	"github.com/Avi-Bendetsky/Quiz-to-build-sub004/internal/repository"
	"github.com/Avi-Bendetsky/Quiz-to-build-sub004/internal/service"
)

const pingTimeout = 5 * time.Second

// App wires storage, caches and services for the server and the CLI
type App struct {
	Config *config.Config
	Log    logger.Logger

	Mongo *mongo.Client
	Redis *redis.Client
	DB    *mongo.Database

	SessionRepo   repository.SessionRepo
	QuestionRepo  repository.QuestionRepo
	RuleRepo      repository.RuleRepo
	ResponseRepo  repository.ResponseRepo
	DimensionRepo repository.DimensionRepo

	HeatmapCache cache.HeatmapCache

	AuthService     *service.AuthService
	AdaptiveService *service.AdaptiveLogicService
	HeatmapService  *service.HeatmapService
	EventsService   *service.SessionEventService
}

// New connects to MongoDB and Redis and builds the service graph.
// MongoDB must be reachable; an unreachable Redis only disables caching.
func New(ctx context.Context, cfg *config.Config, log logger.Logger) (*App, error) {
	if log == nil {
		log = logger.Nop()
	}

	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		mongoClient.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	log.Infof("Connected to MongoDB (%s)", cfg.MongoDatabase)

	db := mongoClient.Database(cfg.MongoDatabase)
	repository.EnsureIndexes(ctx, db, log)

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.Warnf("Redis unavailable at %s, heatmaps will not be cached: %v", cfg.RedisAddr, err)
	} else {
		log.Infof("Connected to Redis")
	}

	a := Build(db, rdb, cfg, log)
	a.Mongo = mongoClient
	return a, nil
}

// Build assembles repositories and services over an existing database handle
func Build(db *mongo.Database, rdb *redis.Client, cfg *config.Config, log logger.Logger) *App {
	if log == nil {
		log = logger.Nop()
	}

	a := &App{
		Config: cfg,
		Log:    log,
		Redis:  rdb,
		DB:     db,
	}

	a.SessionRepo = repository.NewSessionRepo(db)
	a.RuleRepo = repository.NewRuleRepo(db)
	a.QuestionRepo = repository.NewQuestionRepo(db, a.RuleRepo)
	a.ResponseRepo = repository.NewResponseRepo(db)
	a.DimensionRepo = repository.NewDimensionRepo(db)

	if rdb != nil {
		a.HeatmapCache = cache.NewHeatmapCache(rdb, cfg.HeatmapCacheTTL)
	}

	a.AuthService = service.NewAuthService(cfg.JWTSecret, cfg.TokenTTL)
	a.AdaptiveService = service.NewAdaptiveLogicService(a.QuestionRepo, a.RuleRepo, service.NewConditionEvaluator())
	a.HeatmapService = service.NewHeatmapService(a.SessionRepo, a.QuestionRepo, a.ResponseRepo, a.DimensionRepo, a.HeatmapCache, log)
	a.EventsService = service.NewSessionEventService(a.AdaptiveService, a.HeatmapService, log)

	return a
}

// Close releases the database and cache connections
func (a *App) Close(ctx context.Context) {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.Log.Warnf("Failed to close Redis client: %v", err)
		}
	}
	if a.Mongo != nil {
		if err := a.Mongo.Disconnect(ctx); err != nil {
			a.Log.Warnf("Failed to disconnect MongoDB: %v", err)
		}
	}
}
