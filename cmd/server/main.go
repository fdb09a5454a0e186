package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/avolkov/seckill-service/internal/config"
	"github.com/avolkov/seckill-service/internal/infrastructure/http/server"
	"github.com/avolkov/seckill-service/internal/infrastructure/monitoring"
	"github.com/avolkov/seckill-service/internal/infrastructure/persistence/postgres"
	"github.com/avolkov/seckill-service/internal/infrastructure/persistence/redis"
	"github.com/avolkov/seckill-service/internal/infrastructure/scheduler"
	"github.com/avolkov/seckill-service/internal/infrastructure/worker"
	"github.com/avolkov/seckill-service/internal/pkg/clock"
	"github.com/avolkov/seckill-service/internal/pkg/logger"
)

func main() {
	configPath := flag.String("config", "config.json", "Path to configuration file")
	flag.Parse()

	log := logger.NewLogger()
	log.Info("Starting Seckill Service")

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal("Failed to load configuration", "error", err)
	}

	if err := postgres.RunMigrations(cfg.Database, log); err != nil {
		log.Fatal("Failed to run migrations", "error", err)
	}

	pgConn, err := postgres.NewConnection(cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", "error", err)
	}
	defer pgConn.Close()

	redisConn, err := redis.NewConnection(cfg.Redis)
	if err != nil {
		log.Fatal("Failed to connect to Redis", "error", err)
	}
	defer redisConn.Close()
	monitoring.InstrumentRedisClient(redisConn.GetClient())

	serverCtx, serverStopCtx := context.WithCancel(context.Background())
	defer serverStopCtx()

	dbMetricsCollector := monitoring.NewDBMetricsCollector(pgConn.GetDB())
	dbMetricsCollector.StartCollecting(serverCtx, 30*time.Second)

	gate := redis.NewAdmissionGate(redisConn, cfg.Queue.Stream, log)

	queue := redis.NewIntentQueue(redisConn, cfg.Queue.Stream, cfg.Queue.Group, cfg.Queue.Consumer)
	if err := queue.EnsureGroup(serverCtx); err != nil {
		log.Fatal("Failed to prepare order stream", "error", err)
	}

	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-serverCtx.Done():
				return
			case <-ticker.C:
				if err := queue.ObservePendingDepth(serverCtx); err != nil {
					log.Error("Failed to observe queue pending depth", "error", err.Error())
				}
			}
		}
	}()

	locker := redis.NewLock(redisConn, cfg.Lock.KeyPrefix)
	orderRepo := postgres.NewOrderRepository(pgConn)

	fulfillment := worker.NewFulfillmentWorker(
		queue,
		orderRepo,
		locker,
		clock.NewRealClock(),
		log,
		worker.Options{
			BlockTimeout:    cfg.Queue.BlockTimeout.Std(),
			LockLease:       cfg.Lock.Lease.Std(),
			RecoveryBackoff: cfg.Worker.RecoveryBackoff.Std(),
			WorkerCount:     cfg.Worker.Count,
		},
	)
	fulfillment.Start(serverCtx)

	voucherRepo := postgres.NewVoucherRepository(pgConn)
	reconciler := scheduler.NewStockReconciler(gate, voucherRepo, log, time.Minute)
	go reconciler.Start(serverCtx)

	httpServer := server.NewServer(cfg, pgConn, redisConn, gate, log)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigChan
		log.Info("Shutting down server...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error("Server shutdown error", "error", err)
		}

		reconciler.Stop()
		fulfillment.Stop()

		serverStopCtx()
	}()

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("Server failed", "error", err)
	}

	<-serverCtx.Done()
	log.Info("Server stopped")
}
