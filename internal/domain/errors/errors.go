package errors

import (
	"errors"
)

var (
	ErrVoucherNotFound    = errors.New("voucher not found")
	ErrSaleNotStarted     = errors.New("sale has not started yet")
	ErrSaleEnded          = errors.New("sale has already ended")
	ErrSaleNotInitialized = errors.New("sale is not initialized in the admission store")

	ErrOutOfStock     = errors.New("voucher is out of stock")
	ErrDuplicateOrder = errors.New("user has already ordered this voucher")

	ErrInvalidStock  = errors.New("stock must be positive")
	ErrInvalidWindow = errors.New("sale window end must be after begin")

	ErrLockNotAcquired = errors.New("lock is held by another owner")
)
