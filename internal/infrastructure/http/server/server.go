package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/avolkov/seckill-service/internal/application/use_cases"
	"github.com/avolkov/seckill-service/internal/config"
	"github.com/avolkov/seckill-service/internal/infrastructure/http/handlers"
	"github.com/avolkov/seckill-service/internal/infrastructure/persistence/postgres"
	"github.com/avolkov/seckill-service/internal/infrastructure/persistence/redis"
	"github.com/avolkov/seckill-service/internal/pkg/clock"
	"github.com/avolkov/seckill-service/internal/pkg/logger"
)

type Server struct {
	server         *http.Server
	logger         *logger.Logger
	healthHandler  *handlers.HealthHandler
	seckillHandler *handlers.SeckillHandler
	voucherHandler *handlers.VoucherHandler
	adminHandler   *handlers.AdminHandler
}

func NewServer(
	cfg *config.Config,
	pgConn *postgres.Connection,
	redisConn *redis.Connection,
	gate *redis.AdmissionGate,
	log *logger.Logger,
) *Server {
	voucherRepo := postgres.NewVoucherRepository(pgConn)
	ids := redis.NewIDGenerator(redisConn)
	clk := clock.NewRealClock()

	seckillUseCase := use_cases.NewSeckillUseCase(voucherRepo, gate, ids, clk, log)
	initializeSaleUseCase := use_cases.NewInitializeSaleUseCase(voucherRepo, gate, log)

	seckillHandler := handlers.NewSeckillHandler(seckillUseCase, log)
	voucherHandler := handlers.NewVoucherHandler(voucherRepo, log)
	adminHandler := handlers.NewAdminHandler(initializeSaleUseCase, log)
	healthHandler := handlers.NewHealthHandler(pgConn.GetDB(), redisConn.GetClient(), log)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		server:         server,
		logger:         log,
		healthHandler:  healthHandler,
		seckillHandler: seckillHandler,
		voucherHandler: voucherHandler,
		adminHandler:   adminHandler,
	}
}

func (s *Server) ListenAndServe() error {
	s.server.Handler = s.setupRoutes()

	s.logger.Info("Starting HTTP server", "address", s.server.Addr)

	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}
