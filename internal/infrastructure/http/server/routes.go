package server

import (
	"net/http"
	"time"

	"github.com/avolkov/seckill-service/internal/infrastructure/http/middleware"
	"github.com/avolkov/seckill-service/internal/infrastructure/monitoring"
)

func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	monitoring.RegisterMetricsEndpoint(mux)

	mux.HandleFunc("/health", s.healthHandler.HandleHealth())

	mux.HandleFunc("/seckill", s.seckillHandler.HandleSeckill())
	mux.HandleFunc("/vouchers/", s.voucherHandler.HandleGetVoucher)
	mux.HandleFunc("/admin/vouchers", s.adminHandler.HandleInitializeSale)

	handler := middleware.NewRecoveryMiddleware(s.logger)(mux)
	handler = middleware.NewLoggingMiddleware(s.logger)(handler)
	handler = monitoring.WrapHandler(handler)
	handler = s.timeoutMiddleware(handler)

	return handler
}

func (s *Server) timeoutMiddleware(next http.Handler) http.Handler {
	return http.TimeoutHandler(next, 30*time.Second, "Request timeout")
}
