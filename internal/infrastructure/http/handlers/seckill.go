package handlers

import (
	"net/http"
	"strconv"

	"github.com/avolkov/seckill-service/internal/application/commands"
	"github.com/avolkov/seckill-service/internal/application/use_cases"
	"github.com/avolkov/seckill-service/internal/infrastructure/http/response"
	"github.com/avolkov/seckill-service/internal/pkg/logger"
)

// userIDHeader carries the identity resolved by the upstream session service.
// This service performs no authentication of its own.
const userIDHeader = "X-User-ID"

type SeckillHandler struct {
	seckillUseCase *use_cases.SeckillUseCase
	log            *logger.Logger
}

func NewSeckillHandler(
	seckillUseCase *use_cases.SeckillUseCase,
	log *logger.Logger,
) *SeckillHandler {
	return &SeckillHandler{
		seckillUseCase: seckillUseCase,
		log:            log,
	}
}

func (h *SeckillHandler) HandleSeckill() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		validationErrors := make(map[string]string)

		voucherID, err := strconv.ParseUint(r.URL.Query().Get("voucher_id"), 10, 64)
		if err != nil {
			validationErrors["voucher_id"] = "voucher_id must be a positive integer"
		}

		userID, err := strconv.ParseUint(r.Header.Get(userIDHeader), 10, 64)
		if err != nil {
			validationErrors["user_id"] = "X-User-ID header must carry a resolved user id"
		}

		if len(validationErrors) > 0 {
			response.WriteValidationError(w, "Validation failed", validationErrors)
			return
		}

		cmd := commands.SeckillCommand{
			VoucherID: voucherID,
			UserID:    userID,
		}

		handler := commands.NewSeckillHandler(h.seckillUseCase, h.log)

		resp, err := handler.Handle(r.Context(), cmd)
		if err != nil {
			h.log.Warn("Seckill request rejected",
				"voucher_id", voucherID,
				"user_id", userID,
				"error", err.Error(),
			)
			response.WriteDomainError(w, err)
			return
		}

		response.WriteSuccess(w, resp)
	}
}
