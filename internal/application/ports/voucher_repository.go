package ports

import (
	"context"

	"github.com/avolkov/seckill-service/internal/domain/voucher"
)

type VoucherRepository interface {
	GetVoucherByID(ctx context.Context, id uint64) (*voucher.Voucher, error)
	CreateVoucher(ctx context.Context, v *voucher.Voucher) error

	// GetStock reads the persisted stock column, used by the reconciler to
	// compare against the admission-store counter.
	GetStock(ctx context.Context, voucherID uint64) (int, error)

	// ListVoucherIDs returns the ids of all configured vouchers.
	ListVoucherIDs(ctx context.Context) ([]uint64, error)
}
