package scheduler

import (
	"context"
	"strconv"
	"time"

	"github.com/avolkov/seckill-service/internal/application/ports"
	"github.com/avolkov/seckill-service/internal/infrastructure/monitoring"
	"github.com/avolkov/seckill-service/internal/pkg/logger"
)

// StockReconciler periodically compares the admission-store stock counter
// with the persisted stock column. Under correct operation both converge to
// the same value (and reach zero together); any drift is exported and logged.
// The reconciler only observes, it never corrects either side.
type StockReconciler struct {
	gate     ports.AdmissionGate
	vouchers ports.VoucherRepository
	log      *logger.Logger
	interval time.Duration

	stopChan chan struct{}
}

func NewStockReconciler(
	gate ports.AdmissionGate,
	vouchers ports.VoucherRepository,
	log *logger.Logger,
	interval time.Duration,
) *StockReconciler {
	return &StockReconciler{
		gate:     gate,
		vouchers: vouchers,
		log:      log,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

func (s *StockReconciler) Start(ctx context.Context) {
	s.log.Info("Starting stock reconciler", "interval", s.interval.String())

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("Stock reconciler stopped")
			return
		case <-s.stopChan:
			s.log.Info("Stock reconciler stopped")
			return
		case <-ticker.C:
			s.reconcile(ctx)
		}
	}
}

func (s *StockReconciler) Stop() {
	close(s.stopChan)
}

func (s *StockReconciler) reconcile(ctx context.Context) {
	voucherIDs, err := s.vouchers.ListVoucherIDs(ctx)
	if err != nil {
		s.log.Error("Failed to list vouchers for reconciliation", "error", err.Error())
		return
	}

	for _, voucherID := range voucherIDs {
		cached, ok, err := s.gate.StockCounter(ctx, voucherID)
		if err != nil {
			s.log.Error("Failed to read cached stock", "error", err.Error(), "voucher_id", voucherID)
			continue
		}
		if !ok {
			continue
		}

		persisted, err := s.vouchers.GetStock(ctx, voucherID)
		if err != nil {
			s.log.Error("Failed to read persisted stock", "error", err.Error(), "voucher_id", voucherID)
			continue
		}

		drift := cached - persisted
		monitoring.StockDriftGauge.WithLabelValues(strconv.FormatUint(voucherID, 10)).Set(float64(drift))

		// Cached below persisted is expected while intents are in flight;
		// anything else means the two sides diverged.
		if drift > 0 {
			s.log.Error("Stock drift detected",
				"voucher_id", voucherID,
				"cached_stock", cached,
				"persisted_stock", persisted,
			)
		}
	}
}
