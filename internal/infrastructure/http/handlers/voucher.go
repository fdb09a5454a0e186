package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/avolkov/seckill-service/internal/application/ports"
	"github.com/avolkov/seckill-service/internal/infrastructure/http/response"
	"github.com/avolkov/seckill-service/internal/pkg/logger"
)

type VoucherHandler struct {
	vouchers ports.VoucherRepository
	log      *logger.Logger
}

func NewVoucherHandler(vouchers ports.VoucherRepository, log *logger.Logger) *VoucherHandler {
	return &VoucherHandler{
		vouchers: vouchers,
		log:      log,
	}
}

type VoucherResponse struct {
	ID        uint64 `json:"id"`
	Stock     int    `json:"stock"`
	BeginTime string `json:"begin_time"`
	EndTime   string `json:"end_time"`
}

func (h *VoucherHandler) HandleGetVoucher(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	idPart := strings.TrimPrefix(r.URL.Path, "/vouchers/")
	id, err := strconv.ParseUint(idPart, 10, 64)
	if err != nil {
		response.WriteValidationError(w, "Validation failed", map[string]string{
			"id": "voucher id must be a positive integer",
		})
		return
	}

	v, err := h.vouchers.GetVoucherByID(r.Context(), id)
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}

	response.WriteSuccess(w, VoucherResponse{
		ID:        v.ID,
		Stock:     v.Stock,
		BeginTime: v.BeginTime.Format(time.RFC3339),
		EndTime:   v.EndTime.Format(time.RFC3339),
	})
}
