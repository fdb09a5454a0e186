package use_cases

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avolkov/seckill-service/internal/application/ports"
	domainErrors "github.com/avolkov/seckill-service/internal/domain/errors"
	"github.com/avolkov/seckill-service/internal/domain/voucher"
	"github.com/avolkov/seckill-service/internal/pkg/clock"
	"github.com/avolkov/seckill-service/internal/pkg/logger"
)

type mockVoucherRepo struct {
	vouchers map[uint64]*voucher.Voucher
}

func newMockVoucherRepo(vs ...*voucher.Voucher) *mockVoucherRepo {
	repo := &mockVoucherRepo{vouchers: make(map[uint64]*voucher.Voucher)}
	for _, v := range vs {
		repo.vouchers[v.ID] = v
	}
	return repo
}

func (m *mockVoucherRepo) GetVoucherByID(ctx context.Context, id uint64) (*voucher.Voucher, error) {
	v, ok := m.vouchers[id]
	if !ok {
		return nil, domainErrors.ErrVoucherNotFound
	}
	return v, nil
}

func (m *mockVoucherRepo) CreateVoucher(ctx context.Context, v *voucher.Voucher) error {
	m.vouchers[v.ID] = v
	return nil
}

func (m *mockVoucherRepo) GetStock(ctx context.Context, voucherID uint64) (int, error) {
	v, ok := m.vouchers[voucherID]
	if !ok {
		return 0, domainErrors.ErrVoucherNotFound
	}
	return v.Stock, nil
}

func (m *mockVoucherRepo) ListVoucherIDs(ctx context.Context) ([]uint64, error) {
	ids := make([]uint64, 0, len(m.vouchers))
	for id := range m.vouchers {
		ids = append(ids, id)
	}
	return ids, nil
}

type mockGate struct {
	result     ports.AdmissionResult
	err        error
	lastOrder  uint64
	initCalls  int
	admitCalls int
}

func (m *mockGate) Admit(ctx context.Context, voucherID, userID, orderID uint64) (ports.AdmissionResult, error) {
	m.admitCalls++
	m.lastOrder = orderID
	return m.result, m.err
}

func (m *mockGate) InitializeSale(ctx context.Context, voucherID uint64, stock int) error {
	m.initCalls++
	return nil
}

func (m *mockGate) StockCounter(ctx context.Context, voucherID uint64) (int, bool, error) {
	return 0, false, nil
}

type mockIDGenerator struct {
	next uint64
	err  error
}

func (m *mockIDGenerator) NextID(ctx context.Context, tag string) (uint64, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.next++
	return m.next, nil
}

func testLogger() *logger.Logger {
	return logger.NewLoggerWithOutput(io.Discard)
}

func activeVoucher(t *testing.T, id uint64, stock int, now time.Time) *voucher.Voucher {
	t.Helper()
	v, err := voucher.NewVoucher(id, stock, now.Add(-time.Hour), now.Add(time.Hour))
	require.NoError(t, err)
	return v
}

func TestSubmitPurchase_Admitted(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	clk := clock.NewMockClock(now)
	gate := &mockGate{result: ports.AdmissionOK}
	ids := &mockIDGenerator{}

	uc := NewSeckillUseCase(newMockVoucherRepo(activeVoucher(t, 7, 100, now)), gate, ids, clk, testLogger())

	orderID, err := uc.SubmitPurchase(context.Background(), 7, 1001)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), orderID)
	assert.Equal(t, orderID, gate.lastOrder)
	assert.Equal(t, 1, gate.admitCalls)
}

func TestSubmitPurchase_VoucherNotFound(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	uc := NewSeckillUseCase(newMockVoucherRepo(), &mockGate{}, &mockIDGenerator{}, clock.NewMockClock(now), testLogger())

	_, err := uc.SubmitPurchase(context.Background(), 404, 1001)
	assert.ErrorIs(t, err, domainErrors.ErrVoucherNotFound)
}

func TestSubmitPurchase_OutsideWindow(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	clk := clock.NewMockClock(now)
	gate := &mockGate{result: ports.AdmissionOK}

	v, err := voucher.NewVoucher(7, 100, now.Add(time.Hour), now.Add(2*time.Hour))
	require.NoError(t, err)
	uc := NewSeckillUseCase(newMockVoucherRepo(v), gate, &mockIDGenerator{}, clk, testLogger())

	_, err = uc.SubmitPurchase(context.Background(), 7, 1001)
	assert.ErrorIs(t, err, domainErrors.ErrSaleNotStarted)

	clk.Advance(4 * time.Hour)
	_, err = uc.SubmitPurchase(context.Background(), 7, 1001)
	assert.ErrorIs(t, err, domainErrors.ErrSaleEnded)

	// The gate is never consulted for requests outside the window.
	assert.Equal(t, 0, gate.admitCalls)
}

func TestSubmitPurchase_Rejections(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name    string
		result  ports.AdmissionResult
		wantErr error
	}{
		{"out of stock", ports.AdmissionOutOfStock, domainErrors.ErrOutOfStock},
		{"duplicate", ports.AdmissionDuplicate, domainErrors.ErrDuplicateOrder},
		{"not initialized", ports.AdmissionNotInitialized, domainErrors.ErrSaleNotInitialized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gate := &mockGate{result: tc.result}
			uc := NewSeckillUseCase(newMockVoucherRepo(activeVoucher(t, 7, 100, now)), gate, &mockIDGenerator{}, clock.NewMockClock(now), testLogger())

			_, err := uc.SubmitPurchase(context.Background(), 7, 1001)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestSubmitPurchase_IDGeneratorFailure(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	gate := &mockGate{result: ports.AdmissionOK}
	ids := &mockIDGenerator{err: errors.New("redis unavailable")}

	uc := NewSeckillUseCase(newMockVoucherRepo(activeVoucher(t, 7, 100, now)), gate, ids, clock.NewMockClock(now), testLogger())

	_, err := uc.SubmitPurchase(context.Background(), 7, 1001)
	require.Error(t, err)
	assert.Equal(t, 0, gate.admitCalls)
}

func TestSubmitPurchase_GateFailure(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	gate := &mockGate{err: errors.New("redis unavailable")}

	uc := NewSeckillUseCase(newMockVoucherRepo(activeVoucher(t, 7, 100, now)), gate, &mockIDGenerator{}, clock.NewMockClock(now), testLogger())

	_, err := uc.SubmitPurchase(context.Background(), 7, 1001)
	require.Error(t, err)
}
