package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"copydesk/internal/cache"
	"copydesk/internal/config"
	cronrunner "copydesk/internal/cron"
	"copydesk/internal/db"
	"copydesk/internal/discovery"
	"copydesk/internal/handler"
	"copydesk/internal/logger"
	"copydesk/internal/notify"
	gormrepository "copydesk/internal/repository/gorm"
	"copydesk/internal/service"
	"copydesk/internal/stream"
	"copydesk/internal/tokensource"

	_ "copydesk/docs"
)

func main() {
	cfgPath := os.Getenv("CD_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	envOnly := false
	if envOnlyRaw := os.Getenv("CD_ENV_ONLY"); envOnlyRaw != "" {
		envOnly = strings.EqualFold(envOnlyRaw, "true") || envOnlyRaw == "1"
	}

	cfg, err := config.Load(cfgPath, envOnly)
	if err != nil {
		panic(err)
	}

	logger, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	dbConn, err := db.Open(cfg.DB)
	if err != nil {
		logger.Fatal("db open failed", zap.Error(err))
	}
	defer db.Close(dbConn)

	if err := db.SetTimezone(dbConn, cfg.DB.Timezone); err != nil {
		logger.Warn("failed to set timezone", zap.Error(err))
	}
	if err := db.AutoMigrate(dbConn); err != nil {
		logger.Fatal("auto-migrate failed", zap.Error(err))
	}

	store := gormrepository.New(dbConn.Gorm)
	hub := notify.NewHub(logger)

	var snapshotStore discovery.SnapshotStore
	if cfg.Redis.Enabled {
		snapCache, err := cache.NewSnapshotCache(context.Background(), cfg.Redis)
		if err != nil {
			logger.Warn("redis unavailable; snapshot restore disabled", zap.Error(err))
		} else {
			snapshotStore = snapCache
			defer snapCache.Close()
		}
	}

	// Constructed unconditionally: the push-stream path reuses its
	// transform even when polling is disabled.
	newIssueSource := tokensource.NewNewIssueSource(cfg.Sources.NewIssue, cfg.Sources.NativeUSDRate)
	agg := &discovery.Aggregator{
		Gate:            tokensource.NewHealthGate(cfg.Sources.HealthGate),
		Repo:            store,
		Notify:          hub,
		Store:           snapshotStore,
		Logger:          logger,
		DisplayLimit:    cfg.Discovery.DisplayLimit,
		StreamBufferCap: cfg.Discovery.StreamBufferSize,
	}
	if cfg.Sources.NewIssue.Enabled {
		agg.NewIssue = newIssueSource
	}
	if cfg.Sources.Migrating.Enabled {
		agg.Migrating = tokensource.NewMigratingSource(cfg.Sources.Migrating)
	}
	if cfg.Sources.Trending.Enabled {
		agg.Trending = tokensource.NewTrendingSource(cfg.Sources.Trending)
	}
	if cfg.Sources.Surging.Enabled {
		agg.Surging = tokensource.NewSurgingSource(cfg.Sources.Surging)
	}
	agg.SetMinMarketCap(cfg.Discovery.MinMarketCap)
	agg.Restore(context.Background())

	configSvc := &service.CopyConfigService{Repo: store, Notify: hub, Logger: logger}
	prefSvc := &service.PreferenceService{Repo: store}
	sweeper := &service.PendingTradeSweeper{Repo: store, Notify: hub, Logger: logger}

	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(corsMiddleware())

	healthHandler := &handler.HealthHandler{DB: dbConn.Gorm}
	healthHandler.Register(engine)
	configHandler := &handler.CopyConfigHandler{Repo: store, Configs: configSvc}
	configHandler.Register(engine)
	tradeHandler := &handler.PendingTradeHandler{Repo: store}
	tradeHandler.Register(engine)
	positionHandler := &handler.PositionHandler{Repo: store}
	positionHandler.Register(engine)
	discoveryHandler := &handler.DiscoveryHandler{Agg: agg}
	discoveryHandler.Register(engine)
	prefHandler := &handler.PreferenceHandler{Prefs: prefSvc}
	prefHandler.Register(engine)
	streamHandler := &handler.StreamHandler{Hub: hub, Logger: logger}
	streamHandler.Register(engine)

	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: engine,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cronRunner := cronrunner.New(logger, ctx)

	_, err = cronRunner.Add("@every "+cfg.Discovery.RefreshInterval.String(), func(ctx context.Context) {
		if err := agg.RefreshOnce(ctx); err != nil {
			logger.Warn("discovery refresh failed", zap.Error(err))
		}
	})
	if err != nil {
		logger.Warn("cron register discovery refresh failed", zap.Error(err))
	}

	_, err = cronRunner.Add("@every "+cfg.Trades.ExpirySweepInterval.String(), func(ctx context.Context) {
		if err := sweeper.SweepOnce(ctx); err != nil {
			logger.Warn("pending trade sweep failed", zap.Error(err))
		}
	})
	if err != nil {
		logger.Warn("cron register trade sweep failed", zap.Error(err))
	}

	_, err = cronRunner.Add("@every "+cfg.Discovery.SnapshotPrune.String(), func(ctx context.Context) {
		cutoff := time.Now().UTC().Add(-cfg.Discovery.SnapshotKeep)
		n, err := store.PruneRawSourceSnapshots(ctx, cutoff)
		if err != nil {
			logger.Warn("raw snapshot prune failed", zap.Error(err))
			return
		}
		if n > 0 {
			logger.Info("pruned raw source snapshots", zap.Int64("count", n))
		}
	})
	if err != nil {
		logger.Warn("cron register snapshot prune failed", zap.Error(err))
	}

	cronRunner.Start()
	defer cronRunner.Stop()

	if cfg.Streams.Enabled {
		pushClient := stream.New(stream.Options{
			URL:        cfg.Streams.URL,
			BackoffMin: cfg.Streams.BackoffMin,
			BackoffMax: cfg.Streams.BackoffMax,
			Heartbeat:  cfg.Streams.Heartbeat,
			Logger:     logger,
		})
		go func() {
			err := pushClient.Run(ctx, func(env stream.Envelope, raw []byte) {
				card, ok := newIssueSource.TransformStreamPayload(raw, time.Now().UTC())
				if !ok {
					return
				}
				agg.OnStreamCard(card, env.TxType == stream.TxTypeMigrate)
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("push stream stopped", zap.Error(err))
			}
		}()
	}

	// First cycle lands before the cron tick so the columns are not empty
	// for the full refresh interval after boot.
	go func() {
		if err := agg.RefreshOnce(ctx); err != nil {
			logger.Warn("initial discovery refresh failed", zap.Error(err))
		}
	}()

	errCh := make(chan error, 1)

	go func() {
		logger.Info("http server starting", zap.String("addr", cfg.Server.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown requested")
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization,X-User-ID")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
