package handlers

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/avolkov/seckill-service/internal/application/use_cases"
	"github.com/avolkov/seckill-service/internal/pkg/logger"
)

func adminTestHandler() *AdminHandler {
	log := logger.NewLoggerWithOutput(io.Discard)
	uc := use_cases.NewInitializeSaleUseCase(&stubVoucherRepo{}, &stubGate{}, log)
	return NewAdminHandler(uc, log)
}

func TestHandleInitializeSale(t *testing.T) {
	handler := adminTestHandler()

	body := `{
		"voucher_id": 7,
		"stock": 100,
		"begin_time": "2026-06-01T10:00:00Z",
		"end_time": "2026-06-01T12:00:00Z"
	}`
	req := httptest.NewRequest(http.MethodPost, "/admin/vouchers", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handler.HandleInitializeSale(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"voucher_id":7`)
	assert.Contains(t, rec.Body.String(), `"stock":100`)
}

func TestHandleInitializeSale_Validation(t *testing.T) {
	handler := adminTestHandler()

	cases := []struct {
		name string
		body string
	}{
		{"malformed json", `{`},
		{"missing voucher id", `{"stock": 10, "begin_time": "2026-06-01T10:00:00Z", "end_time": "2026-06-01T12:00:00Z"}`},
		{"zero stock", `{"voucher_id": 7, "stock": 0, "begin_time": "2026-06-01T10:00:00Z", "end_time": "2026-06-01T12:00:00Z"}`},
		{"bad begin time", `{"voucher_id": 7, "stock": 10, "begin_time": "yesterday", "end_time": "2026-06-01T12:00:00Z"}`},
		{"window ends before it begins", `{"voucher_id": 7, "stock": 10, "begin_time": "2026-06-01T12:00:00Z", "end_time": "2026-06-01T10:00:00Z"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/admin/vouchers", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()

			handler.HandleInitializeSale(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestHandleInitializeSale_MethodNotAllowed(t *testing.T) {
	handler := adminTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/admin/vouchers", nil)
	rec := httptest.NewRecorder()

	handler.HandleInitializeSale(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
