package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"marketplace-admin/internal/core/auth"
	"marketplace-admin/internal/core/cache"
	"marketplace-admin/internal/core/config"
	"marketplace-admin/internal/core/database"
	"marketplace-admin/internal/core/logger"
	"marketplace-admin/internal/core/server"
	"marketplace-admin/internal/domain"
	"marketplace-admin/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log, cleanup := logger.Build(logger.Options{
		Level:       cfg.Log.Level,
		JSON:        cfg.Log.JSON,
		AddCaller:   true,
		Development: !cfg.Production(),
		Rotate: logger.FileRotate{
			Enable:     cfg.Log.Rotate.Enable,
			Filename:   cfg.Log.Rotate.Filename,
			MaxSizeMB:  cfg.Log.Rotate.MaxSizeMB,
			MaxBackups: cfg.Log.Rotate.MaxBackups,
			MaxAgeDays: cfg.Log.Rotate.MaxAgeDays,
			Compress:   cfg.Log.Rotate.Compress,
		},
	})
	defer cleanup()
	defer logger.RedirectStdLog(log, zapcore.InfoLevel)()

	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}
	gin.DefaultWriter = logger.ToWriter(log.Named("gin"), zapcore.DebugLevel)
	gin.DefaultErrorWriter = logger.ToWriter(log.Named("gin"), zapcore.ErrorLevel)

	if cfg.JWT.Secret == "" {
		log.Fatal("jwt.secret is empty; set APP_JWT_SECRET")
	}

	ctx := context.Background()
	st, err := database.Open(ctx, database.Opts{
		Driver:     cfg.Mongo.Driver,
		URI:        cfg.Mongo.URI,
		Database:   cfg.Mongo.Database,
		TimeoutSec: cfg.Mongo.TimeoutSec,
	}, log)
	if err != nil {
		log.Fatal("store open", zap.Error(err))
	}
	if err := database.EnsureIndexes(ctx, st, domain.Catalog()); err != nil {
		log.Fatal("ensure indexes", zap.Error(err))
	}

	var rc *cache.Cache
	if cfg.Redis.Addr != "" {
		rc = cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err := rc.Ping(ctx); err != nil {
			log.Warn("redis unavailable, banner reads go to the store", zap.Error(err))
		}
		defer rc.Close()
	}

	jwter := &auth.JWTer{
		Secret:     []byte(cfg.JWT.Secret),
		Issuer:     cfg.JWT.Issuer,
		TTL:        time.Duration(cfg.JWT.TTLMin) * time.Minute,
		CookieName: cfg.JWT.CookieName,
		Secure:     cfg.Production(),
	}

	h := cfg.App.HTTP
	r := router.NewAPIEngine(router.Deps{
		Log:   log,
		Store: st,
		JWT:   jwter,
		Cache: rc,
		Server: server.Options{
			AllowOrigins:   cfg.CORS.AllowOrigins,
			RateLimitRPS:   h.RateLimitRPS,
			RateLimitBurst: h.RateLimitBurst,
			GlobalRPS:      h.GlobalRPS,
			GlobalBurst:    h.GlobalBurst,
			MaxConcurrent:  h.MaxConcurrent,
			MaxBodyBytes:   h.MaxBodyMB << 20,
			RequestTimeout: time.Duration(h.RequestTimeoutSec) * time.Second,
		},
	})

	addr := server.Addr(h.Host, h.Port)
	srv := server.BuildServer(
		addr, r,
		time.Duration(h.ReadTimeoutSec)*time.Second,
		time.Duration(h.WriteTimeoutSec)*time.Second,
		time.Duration(h.IdleTimeoutSec)*time.Second,
	)
	if el, err := logger.ToStdLogger(log.Named("http"), zapcore.WarnLevel); err == nil {
		srv.ErrorLog = el
	}

	host4human := h.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := "http://" + host4human + ":" + fmt.Sprint(h.Port)
	log.Info("admin api starting",
		zap.String("addr", addr),
		zap.String("env", cfg.App.Env),
		zap.String("store", cfg.Mongo.Driver),
		zap.String("open", baseURL),
		zap.String("health", baseURL+"/health"),
	)

	go func() {
		if err := server.StartHTTP(srv, log); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("admin api start FAILED", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		log.Warn("http shutdown", zap.Error(err))
	}
	if err := st.Close(sctx); err != nil {
		log.Warn("store close", zap.Error(err))
	}
	log.Info("admin api stopped gracefully")
}
