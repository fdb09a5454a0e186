package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/avolkov/seckill-service/internal/application/use_cases"
	"github.com/avolkov/seckill-service/internal/infrastructure/http/response"
	"github.com/avolkov/seckill-service/internal/pkg/logger"
)

type AdminHandler struct {
	initializeSale *use_cases.InitializeSaleUseCase
	log            *logger.Logger
}

func NewAdminHandler(
	initializeSale *use_cases.InitializeSaleUseCase,
	log *logger.Logger,
) *AdminHandler {
	return &AdminHandler{
		initializeSale: initializeSale,
		log:            log,
	}
}

type InitializeSaleRequest struct {
	VoucherID uint64 `json:"voucher_id"`
	Stock     int    `json:"stock"`
	BeginTime string `json:"begin_time"`
	EndTime   string `json:"end_time"`
}

type InitializeSaleResponse struct {
	VoucherID uint64 `json:"voucher_id"`
	Stock     int    `json:"stock"`
	BeginTime string `json:"begin_time"`
	EndTime   string `json:"end_time"`
}

func (h *AdminHandler) HandleInitializeSale(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req InitializeSaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.WriteError(w, http.StatusBadRequest, response.StatusValidationError, "Invalid request body")
		return
	}

	validationErrors := make(map[string]string)
	if req.VoucherID == 0 {
		validationErrors["voucher_id"] = "voucher_id is required"
	}
	if req.Stock <= 0 {
		validationErrors["stock"] = "stock must be greater than 0"
	}

	begin, err := time.Parse(time.RFC3339, req.BeginTime)
	if err != nil {
		validationErrors["begin_time"] = "Invalid begin_time format (use RFC3339)"
	}
	end, err := time.Parse(time.RFC3339, req.EndTime)
	if err != nil {
		validationErrors["end_time"] = "Invalid end_time format (use RFC3339)"
	}

	if len(validationErrors) > 0 {
		response.WriteValidationError(w, "Validation failed", validationErrors)
		return
	}

	v, err := h.initializeSale.InitializeSale(r.Context(), req.VoucherID, req.Stock, begin, end)
	if err != nil {
		h.log.Error("Failed to initialize sale",
			"voucher_id", req.VoucherID,
			"error", err.Error(),
		)
		response.WriteDomainError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusCreated, response.Success(InitializeSaleResponse{
		VoucherID: v.ID,
		Stock:     v.Stock,
		BeginTime: v.BeginTime.Format(time.RFC3339),
		EndTime:   v.EndTime.Format(time.RFC3339),
	}))
}
