package voucher

import (
	"time"

	domainErrors "github.com/avolkov/seckill-service/internal/domain/errors"
)

// Voucher is the catalog row for a single seckill sale. Stock here is the
// authoritative persisted counter; the admission store mirrors it for the
// duration of the sale window.
type Voucher struct {
	ID        uint64
	Stock     int
	BeginTime time.Time
	EndTime   time.Time
	CreatedAt time.Time
}

func NewVoucher(id uint64, stock int, begin, end time.Time) (*Voucher, error) {
	if stock <= 0 {
		return nil, domainErrors.ErrInvalidStock
	}
	if !end.After(begin) {
		return nil, domainErrors.ErrInvalidWindow
	}

	return &Voucher{
		ID:        id,
		Stock:     stock,
		BeginTime: begin.UTC(),
		EndTime:   end.UTC(),
		CreatedAt: time.Now().UTC(),
	}, nil
}

// CheckWindow reports whether the sale accepts orders at the given instant.
func (v *Voucher) CheckWindow(now time.Time) error {
	if now.Before(v.BeginTime) {
		return domainErrors.ErrSaleNotStarted
	}
	if !now.Before(v.EndTime) {
		return domainErrors.ErrSaleEnded
	}
	return nil
}
