package commands

import (
	"context"

	"github.com/avolkov/seckill-service/internal/application/use_cases"
	"github.com/avolkov/seckill-service/internal/pkg/logger"
)

type SeckillCommand struct {
	VoucherID uint64
	UserID    uint64
}

type SeckillResponse struct {
	OrderID uint64 `json:"order_id"`
}

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

func (h *SeckillHandler) Handle(ctx context.Context, cmd SeckillCommand) (*SeckillResponse, error) {
	orderID, err := h.seckillUseCase.SubmitPurchase(ctx, cmd.VoucherID, cmd.UserID)
	if err != nil {
		return nil, err
	}

	return &SeckillResponse{
		OrderID: orderID,
	}, nil
}
