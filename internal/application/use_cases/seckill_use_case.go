package use_cases

import (
	"context"
	"fmt"

	"github.com/avolkov/seckill-service/internal/application/ports"
	domainErrors "github.com/avolkov/seckill-service/internal/domain/errors"
	"github.com/avolkov/seckill-service/internal/pkg/clock"
	"github.com/avolkov/seckill-service/internal/pkg/logger"
)

const orderIDTag = "order"

// SeckillUseCase is the synchronous admission path. It answers as soon as the
// gate admits or rejects; persistence happens asynchronously behind the queue.
type SeckillUseCase struct {
	vouchers ports.VoucherRepository
	gate     ports.AdmissionGate
	ids      ports.IDGenerator
	clk      clock.Clock
	log      *logger.Logger
}

func NewSeckillUseCase(
	vouchers ports.VoucherRepository,
	gate ports.AdmissionGate,
	ids ports.IDGenerator,
	clk clock.Clock,
	log *logger.Logger,
) *SeckillUseCase {
	return &SeckillUseCase{
		vouchers: vouchers,
		gate:     gate,
		ids:      ids,
		clk:      clk,
		log:      log,
	}
}

// SubmitPurchase admits (or rejects) one purchase of one voucher unit. On
// success the returned order id refers to an order that will exist in the
// database shortly; the caller does not wait for it.
func (uc *SeckillUseCase) SubmitPurchase(ctx context.Context, voucherID, userID uint64) (uint64, error) {
	v, err := uc.vouchers.GetVoucherByID(ctx, voucherID)
	if err != nil {
		return 0, err
	}

	if err := v.CheckWindow(uc.clk.Now()); err != nil {
		return 0, err
	}

	// The id is generated before admission so the gate can enqueue the full
	// intent in its atomic step. A failed admission wastes the id, which is
	// harmless.
	orderID, err := uc.ids.NextID(ctx, orderIDTag)
	if err != nil {
		return 0, fmt.Errorf("failed to generate order id: %w", err)
	}

	result, err := uc.gate.Admit(ctx, voucherID, userID, orderID)
	if err != nil {
		return 0, fmt.Errorf("admission failed: %w", err)
	}

	switch result {
	case ports.AdmissionOK:
		uc.log.Info("Purchase admitted",
			"order_id", orderID,
			"user_id", userID,
			"voucher_id", voucherID,
		)
		return orderID, nil
	case ports.AdmissionOutOfStock:
		return 0, domainErrors.ErrOutOfStock
	case ports.AdmissionDuplicate:
		return 0, domainErrors.ErrDuplicateOrder
	case ports.AdmissionNotInitialized:
		// Distinct from OUT_OF_STOCK: operators must be able to tell "sold
		// out" from "never configured".
		return 0, domainErrors.ErrSaleNotInitialized
	default:
		return 0, fmt.Errorf("unexpected admission result %d", result)
	}
}
