package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"Lee_Forum/internal/config"
	"Lee_Forum/internal/handler"
	"Lee_Forum/internal/middleware"
	"Lee_Forum/internal/pkg"
	"Lee_Forum/internal/pkg/logger"
	"Lee_Forum/internal/repository/rdb"
	"Lee_Forum/internal/repository/redis"
	"Lee_Forum/internal/router"
	"Lee_Forum/internal/service"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Close() }()

	if err := run(cfg, log); err != nil {
		log.Error("server exited", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *logger.Logger) error {
	store, err := rdb.Open(cfg.Database)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	// 自动建表（开发阶段 OK）
	if err := store.AutoMigrate(); err != nil {
		return err
	}

	rc, err := redis.NewClient(cfg.Redis)
	if err != nil {
		return err
	}
	defer func() { _ = rc.Close() }()

	tokens := pkg.NewTokenManager(cfg.JWT)
	sessions := redis.NewSessionRepository(rc, cfg.JWT.RefreshTTL)

	svc := service.New(store, log, service.NewPaging(cfg.Moderation), service.SystemClock)

	// 审计事件投递：没有配置 kafka 时只写日志
	sender := service.LogSender(log)
	producer := pkg.NewKafkaProducer(cfg.Kafka)
	if producer != nil {
		sender = service.KafkaSender(producer)
		defer func() { _ = producer.Close() }()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	relayer := service.NewOutboxRelayer(store, cfg.Outbox, sender, log)
	relayerDone := make(chan struct{})
	go func() {
		defer close(relayerDone)
		relayer.Run(ctx)
	}()

	gin.SetMode(cfg.Server.Mode)
	r := router.InitRouter(cfg.Server, handler.New(svc), middleware.AuthMiddleware(tokens, sessions), log)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server started", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		stop()
		<-relayerDone
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	<-relayerDone
	return nil
}
