package ports

import (
	"context"

	"github.com/avolkov/seckill-service/internal/domain/order"
)

// OrderRepository owns the persisted order records and the authoritative
// stock column. Persist runs the whole fulfillment transaction: order-exists
// re-check, conditional stock decrement, order insert, commit or roll back
// together.
type OrderRepository interface {
	Persist(ctx context.Context, intent order.Intent) (order.PersistOutcome, error)

	GetOrder(ctx context.Context, userID, voucherID uint64) (*order.Order, error)
	CountOrdersByVoucher(ctx context.Context, voucherID uint64) (int, error)
}
