package bootstrap

import (
	"context"
	"log"
	"time"

	"jit-learning-be/internal/config"
	"jit-learning-be/internal/controller"
	"jit-learning-be/internal/handler"
	"jit-learning-be/internal/pkg/logger"
	"jit-learning-be/internal/repository/memory"
	"jit-learning-be/internal/repository/unitofwork"
	"jit-learning-be/internal/service"
	"jit-learning-be/internal/websocket"
	"jit-learning-be/pkg/events"
	"jit-learning-be/pkg/genai"
	"jit-learning-be/pkg/genai/template"
	"jit-learning-be/pkg/learning/analytics"
	"jit-learning-be/pkg/learning/consistency"
	"jit-learning-be/pkg/learning/content"
	"jit-learning-be/pkg/learning/dailyctx"
	"jit-learning-be/pkg/learning/progression"

	pktNats "jit-learning-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Container wires every service once at startup. Nothing here is global;
// consumers receive their dependencies by reference.
type Container struct {
	// Controllers
	ContentController   controller.IContentController
	SessionController   controller.ISessionController
	AnalyticsController controller.IAnalyticsController

	// Background services (run from main)
	PreloadWorker service.IPreloadWorkerService

	// WebSockets
	ProgressHandler *handler.ProgressHandler
	WebSocketHub    *websocket.Hub

	// Held for shutdown
	NatsPublisher *pktNats.Publisher
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// In-process event bus for preload jobs
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermillLogger)

	// NATS for domain events; absence degrades to a nop publisher
	var publisher events.Publisher = events.NopPublisher{}
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	} else {
		publisher = natsPub
	}

	// Redis backs the device-scoped store and the websocket cluster channel
	// when reachable; otherwise everything stays in process memory.
	var rdb *redis.Client
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{Addr: cfg.App.RedisURL}
	}
	rdb = redis.NewClient(opt)
	var deviceStore memory.KVStore
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v. Falling back to in-memory store", err)
		rdb = nil
		deviceStore = memory.NewGoCacheStore(24 * time.Hour)
	} else {
		deviceStore = memory.NewRedisStore(rdb)
	}

	// Session-scoped store is always in-memory; it dies with the process.
	sessionStore := memory.NewGoCacheStore(cfg.Learning.SessionInactivity)

	// WebSocket hub
	wsLogger := logger.NewIsolatedLogger("logs/progress.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// Core engines
	tracker := progression.NewTracker(sessionStore, uowFactory, publisher, sysLogger, cfg.Learning.SessionInactivity)
	analyticsEngine := analytics.NewEngine(uowFactory, publisher, sysLogger, cfg.Learning.AnalyticsCacheTTL)

	scorer := consistency.NewScorer(consistency.Thresholds{
		Acceptance: cfg.Learning.ConsistencyThreshold,
		TermCap:    cfg.Learning.ConsistencyTermCap,
		Density:    cfg.Learning.ConsistencyDensity,
	}, sysLogger)

	contexts := dailyctx.NewKVProvider(deviceStore, sysLogger)

	// Generation boundary: template factory always exists as fallback.
	fallbackProvider := template.NewFactory()
	var aiProvider genai.ContentProvider = fallbackProvider
	if cfg.Ai.Provider == "ollama" {
		aiProvider = genai.NewOllamaProvider(
			cfg.Ai.BaseURL,
			cfg.Ai.Model,
			time.Duration(cfg.Ai.TimeoutSecs)*time.Second,
		)
		log.Printf("[INFO] Using Content Provider: OLLAMA (%s)", cfg.Ai.Model)
	} else {
		log.Printf("[INFO] Using Content Provider: TEMPLATE ONLY")
	}

	contentCache := content.NewTieredCache(
		cfg.Learning.HotCacheCapacity,
		cfg.Learning.WarmCacheCapacity,
		cfg.Learning.CacheTTL,
		deviceStore,
		sysLogger,
	)

	preloader := content.NewWatermillPreloader(pubSub, cfg.Learning.PreloadProbability, sysLogger)

	orchestrator := content.NewOrchestrator(
		contexts,
		analyticsEngine,
		aiProvider,
		fallbackProvider,
		scorer,
		contentCache,
		preloader,
		sysLogger,
	)

	// Periodic TTL sweep over both cache tiers
	go func() {
		ticker := time.NewTicker(cfg.Learning.CacheTTL / 2)
		defer ticker.Stop()
		for range ticker.C {
			if removed := contentCache.Sweep(); removed > 0 {
				sysLogger.Debug("bootstrap", "cache sweep", map[string]interface{}{"removed": removed})
			}
		}
	}()

	// Services
	contentService := service.NewContentService(orchestrator, contexts, scorer, contentCache, 24*time.Hour)
	sessionService := service.NewSessionService(tracker, analyticsEngine, contexts, uowFactory, wsHub)
	analyticsService := service.NewAnalyticsService(analyticsEngine)
	preloadWorker := service.NewPreloadWorkerService(pubSub, orchestrator, sysLogger)

	return &Container{
		ContentController:   controller.NewContentController(contentService),
		SessionController:   controller.NewSessionController(sessionService),
		AnalyticsController: controller.NewAnalyticsController(analyticsService),
		PreloadWorker:       preloadWorker,
		ProgressHandler:     handler.NewProgressHandler(wsHub, wsLogger),
		WebSocketHub:        wsHub,
		NatsPublisher:       natsPub,
	}
}
