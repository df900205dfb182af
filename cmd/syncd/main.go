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
	"go.uber.org/zap"

	"roundsync/internal/client/linera"
	"roundsync/internal/config"
	cronrunner "roundsync/internal/cron"
	"roundsync/internal/db"
	"roundsync/internal/handler"
	"roundsync/internal/logger"
	gormrepository "roundsync/internal/repository/gorm"
	"roundsync/internal/service"
)

func main() {
	cfgPath := os.Getenv("RS_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	envOnly := false
	if envOnlyRaw := os.Getenv("RS_ENV_ONLY"); envOnlyRaw != "" {
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

	if err := db.AutoMigrate(dbConn); err != nil {
		logger.Fatal("auto-migrate failed", zap.Error(err))
	}

	chainHTTP := &http.Client{Timeout: cfg.Chain.Timeout}
	chainClient := &linera.Client{HTTP: chainHTTP, Logger: logger}
	store := gormrepository.New(dbConn.Gorm)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	type chainSync struct {
		name   string
		ep     string
		sync   service.SyncFunc
		runner *service.SyncRunner
	}
	var runners []chainSync

	for _, chain := range cfg.Prediction {
		svc := &service.PredictionSyncService{
			Chain:      chain.Name,
			Endpoint:   chain.Endpoint,
			Client:     chainClient,
			Repo:       store,
			Logger:     logger,
			KeepRounds: cfg.Sync.KeepRounds,
		}
		runner := service.NewSyncRunner("prediction:"+chain.Name, svc.SyncOnce, logger)
		runners = append(runners, chainSync{name: chain.Name, ep: chain.Endpoint, sync: svc.SyncOnce, runner: runner})
	}

	lotterySvc := &service.LotterySyncService{
		Endpoint:   cfg.Lottery.Endpoint,
		Client:     chainClient,
		Repo:       store,
		Logger:     logger,
		KeepRounds: cfg.Sync.KeepRounds,
	}
	lotteryRunner := service.NewSyncRunner("lottery", lotterySvc.SyncOnce, logger)
	runners = append(runners, chainSync{name: "lottery", ep: cfg.Lottery.Endpoint, sync: lotterySvc.SyncOnce, runner: lotteryRunner})

	// Blocking initial sync so the mirror is populated before the API or any
	// notification arrives.
	for _, cs := range runners {
		if err := cs.sync(ctx); err != nil {
			logger.Warn("initial sync failed", zap.String("sync", cs.name), zap.Error(err))
		}
	}

	for _, cs := range runners {
		go func(r *service.SyncRunner) {
			if err := r.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("sync runner stopped", zap.Error(err))
			}
		}(cs.runner)
	}

	// One notification stream per endpoint. Events carry no payload worth
	// parsing; any event just kicks the owning runner, which re-fetches full
	// state.
	for _, cs := range runners {
		chainID, err := linera.ChainIDFromEndpoint(cs.ep)
		if err != nil {
			logger.Warn("cannot derive chain id, relying on cron only",
				zap.String("sync", cs.name),
				zap.Error(err),
			)
			continue
		}
		wsURL, err := linera.WSURLFromEndpoint(cs.ep)
		if err != nil {
			logger.Warn("cannot derive ws url, relying on cron only",
				zap.String("sync", cs.name),
				zap.Error(err),
			)
			continue
		}
		stream := linera.NewNotificationStream(linera.NotificationStreamOptions{
			URL:     wsURL,
			ChainID: chainID,
			Logger:  logger.With(zap.String("sync", cs.name)),
		})
		trigger := cs.runner.Trigger
		go func() {
			if err := stream.Run(ctx, trigger); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("notification stream stopped", zap.Error(err))
			}
		}()
	}

	// Safety net: periodic full re-sync catches anything dropped while a
	// socket was reconnecting.
	cronRunner := cronrunner.New(logger, ctx)
	_, err = cronRunner.Add(cfg.Sync.SafetyInterval, func(ctx context.Context) {
		for _, cs := range runners {
			cs.runner.Trigger()
		}
	})
	if err != nil {
		logger.Warn("cron register safety sync failed", zap.Error(err))
	}
	cronRunner.Start()
	defer cronRunner.Stop()

	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(corsMiddleware())

	healthHandler := &handler.HealthHandler{DB: dbConn}
	healthHandler.Register(engine)
	roundHandler := &handler.RoundHandler{Repo: store}
	roundHandler.Register(engine)

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: engine,
	}

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
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET,OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
