package ports

import (
	"context"
)

// AdmissionResult is the decision of the atomic admission step.
type AdmissionResult int

const (
	AdmissionOK AdmissionResult = iota
	AdmissionOutOfStock
	AdmissionDuplicate
	AdmissionNotInitialized
)

func (r AdmissionResult) String() string {
	switch r {
	case AdmissionOK:
		return "ok"
	case AdmissionOutOfStock:
		return "out_of_stock"
	case AdmissionDuplicate:
		return "duplicate"
	case AdmissionNotInitialized:
		return "not_initialized"
	default:
		return "unknown"
	}
}

// AdmissionGate decides, in a single indivisible step against the shared
// store, whether a user may buy one unit of a voucher. On OK the gate has
// already decremented the cached stock, recorded the user in the purchased
// set and enqueued the order intent.
type AdmissionGate interface {
	Admit(ctx context.Context, voucherID, userID, orderID uint64) (AdmissionResult, error)

	// InitializeSale primes the stock counter and clears the purchased set
	// for a voucher before its window opens.
	InitializeSale(ctx context.Context, voucherID uint64, stock int) error

	// StockCounter reads the cached stock counter. ok is false when the sale
	// was never initialized.
	StockCounter(ctx context.Context, voucherID uint64) (stock int, ok bool, err error)
}
