package order

import (
	"time"
)

// Intent is an admitted-but-not-yet-persisted purchase. It lives only in the
// work queue; once the fulfillment stage acknowledges it, the persisted Order
// row is the sole record of the purchase.
type Intent struct {
	OrderID   uint64
	UserID    uint64
	VoucherID uint64
}

// Order is the persisted record, created exactly once per (user, voucher)
// pair and never updated afterwards.
type Order struct {
	ID        uint64
	UserID    uint64
	VoucherID uint64
	CreatedAt time.Time
}

// PersistOutcome classifies the result of the fulfillment transaction.
type PersistOutcome int

const (
	PersistCreated PersistOutcome = iota
	PersistDuplicate
	PersistInsufficientStock
)

func (o PersistOutcome) String() string {
	switch o {
	case PersistCreated:
		return "created"
	case PersistDuplicate:
		return "duplicate"
	case PersistInsufficientStock:
		return "insufficient_stock"
	default:
		return "unknown"
	}
}
