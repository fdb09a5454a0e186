package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avolkov/seckill-service/internal/application/ports"
	"github.com/avolkov/seckill-service/internal/application/use_cases"
	domainErrors "github.com/avolkov/seckill-service/internal/domain/errors"
	"github.com/avolkov/seckill-service/internal/domain/voucher"
	"github.com/avolkov/seckill-service/internal/pkg/clock"
	"github.com/avolkov/seckill-service/internal/pkg/logger"
)

type stubVoucherRepo struct {
	voucher *voucher.Voucher
}

func (s *stubVoucherRepo) GetVoucherByID(ctx context.Context, id uint64) (*voucher.Voucher, error) {
	if s.voucher == nil || s.voucher.ID != id {
		return nil, domainErrors.ErrVoucherNotFound
	}
	return s.voucher, nil
}

func (s *stubVoucherRepo) CreateVoucher(ctx context.Context, v *voucher.Voucher) error {
	s.voucher = v
	return nil
}

func (s *stubVoucherRepo) GetStock(ctx context.Context, voucherID uint64) (int, error) {
	return s.voucher.Stock, nil
}

func (s *stubVoucherRepo) ListVoucherIDs(ctx context.Context) ([]uint64, error) {
	return nil, nil
}

type stubGate struct {
	result ports.AdmissionResult
}

func (s *stubGate) Admit(ctx context.Context, voucherID, userID, orderID uint64) (ports.AdmissionResult, error) {
	return s.result, nil
}

func (s *stubGate) InitializeSale(ctx context.Context, voucherID uint64, stock int) error {
	return nil
}

func (s *stubGate) StockCounter(ctx context.Context, voucherID uint64) (int, bool, error) {
	return 0, false, nil
}

type stubIDGenerator struct{}

func (s *stubIDGenerator) NextID(ctx context.Context, tag string) (uint64, error) {
	return 12345, nil
}

func seckillTestHandler(t *testing.T, result ports.AdmissionResult) *SeckillHandler {
	t.Helper()

	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	v, err := voucher.NewVoucher(7, 100, now.Add(-time.Hour), now.Add(time.Hour))
	require.NoError(t, err)

	log := logger.NewLoggerWithOutput(io.Discard)
	uc := use_cases.NewSeckillUseCase(
		&stubVoucherRepo{voucher: v},
		&stubGate{result: result},
		&stubIDGenerator{},
		clock.NewMockClock(now),
		log,
	)
	return NewSeckillHandler(uc, log)
}

func TestHandleSeckill_Admitted(t *testing.T) {
	handler := seckillTestHandler(t, ports.AdmissionOK)

	req := httptest.NewRequest(http.MethodPost, "/seckill?voucher_id=7", nil)
	req.Header.Set("X-User-ID", "1001")
	rec := httptest.NewRecorder()

	handler.HandleSeckill()(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data struct {
			OrderID uint64 `json:"order_id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, uint64(12345), body.Data.OrderID)
}

func TestHandleSeckill_Rejections(t *testing.T) {
	cases := []struct {
		name       string
		result     ports.AdmissionResult
		wantStatus int
	}{
		{"out of stock", ports.AdmissionOutOfStock, http.StatusConflict},
		{"duplicate", ports.AdmissionDuplicate, http.StatusConflict},
		{"not initialized", ports.AdmissionNotInitialized, http.StatusServiceUnavailable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := seckillTestHandler(t, tc.result)

			req := httptest.NewRequest(http.MethodPost, "/seckill?voucher_id=7", nil)
			req.Header.Set("X-User-ID", "1001")
			rec := httptest.NewRecorder()

			handler.HandleSeckill()(rec, req)

			assert.Equal(t, tc.wantStatus, rec.Code)
		})
	}
}

func TestHandleSeckill_ValidationFailures(t *testing.T) {
	handler := seckillTestHandler(t, ports.AdmissionOK)

	cases := []struct {
		name   string
		target string
		userID string
	}{
		{"missing voucher id", "/seckill", "1001"},
		{"bad voucher id", "/seckill?voucher_id=abc", "1001"},
		{"missing user header", "/seckill?voucher_id=7", ""},
		{"bad user header", "/seckill?voucher_id=7", "not-a-number"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, tc.target, nil)
			if tc.userID != "" {
				req.Header.Set("X-User-ID", tc.userID)
			}
			rec := httptest.NewRecorder()

			handler.HandleSeckill()(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestHandleSeckill_MethodNotAllowed(t *testing.T) {
	handler := seckillTestHandler(t, ports.AdmissionOK)

	req := httptest.NewRequest(http.MethodGet, "/seckill?voucher_id=7", nil)
	req.Header.Set("X-User-ID", "1001")
	rec := httptest.NewRecorder()

	handler.HandleSeckill()(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandleSeckill_VoucherNotFound(t *testing.T) {
	handler := seckillTestHandler(t, ports.AdmissionOK)

	req := httptest.NewRequest(http.MethodPost, "/seckill?voucher_id=999", nil)
	req.Header.Set("X-User-ID", "1001")
	rec := httptest.NewRecorder()

	handler.HandleSeckill()(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
