package use_cases

import (
	"context"
	"time"

	"github.com/avolkov/seckill-service/internal/application/ports"
	"github.com/avolkov/seckill-service/internal/domain/voucher"
	"github.com/avolkov/seckill-service/internal/pkg/logger"
)

// InitializeSaleUseCase seeds a sale before its window opens: the voucher row
// with its authoritative stock, and the admission-store mirror of that stock.
type InitializeSaleUseCase struct {
	vouchers ports.VoucherRepository
	gate     ports.AdmissionGate
	log      *logger.Logger
}

func NewInitializeSaleUseCase(
	vouchers ports.VoucherRepository,
	gate ports.AdmissionGate,
	log *logger.Logger,
) *InitializeSaleUseCase {
	return &InitializeSaleUseCase{
		vouchers: vouchers,
		gate:     gate,
		log:      log,
	}
}

func (uc *InitializeSaleUseCase) InitializeSale(ctx context.Context, voucherID uint64, stock int, begin, end time.Time) (*voucher.Voucher, error) {
	v, err := voucher.NewVoucher(voucherID, stock, begin, end)
	if err != nil {
		return nil, err
	}

	if err := uc.vouchers.CreateVoucher(ctx, v); err != nil {
		return nil, err
	}

	// The database row exists before the counter is primed, so admission can
	// never run ahead of the authoritative stock.
	if err := uc.gate.InitializeSale(ctx, voucherID, stock); err != nil {
		return nil, err
	}

	uc.log.Info("Sale initialized",
		"voucher_id", voucherID,
		"stock", stock,
		"begin_time", v.BeginTime.Format(time.RFC3339),
		"end_time", v.EndTime.Format(time.RFC3339),
	)

	return v, nil
}
