package redis

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/avolkov/seckill-service/internal/application/ports"
	"github.com/avolkov/seckill-service/internal/infrastructure/monitoring"
	"github.com/avolkov/seckill-service/internal/pkg/logger"
)

const (
	stockKeyPrefix = "seckill:stock:"
	orderKeyPrefix = "seckill:order:"
)

// admitLuaScript performs the whole admission decision server-side. The
// duplicate check, the stock check, the decrement and the stream append run
// as one step, so no other admission call for the same voucher can interleave
// between the read and the write.
//
// Returns: 0 admitted, 1 out of stock, 2 duplicate, 3 sale not initialized.
const admitLuaScript = `
	local stock_key = KEYS[1]
	local order_key = KEYS[2]
	local stream_key = KEYS[3]
	local user_id = ARGV[1]
	local voucher_id = ARGV[2]
	local order_id = ARGV[3]

	if redis.call('EXISTS', stock_key) == 0 then
		return 3
	end

	if redis.call('SISMEMBER', order_key, user_id) == 1 then
		return 2
	end

	if tonumber(redis.call('GET', stock_key)) <= 0 then
		return 1
	end

	redis.call('INCRBY', stock_key, -1)
	redis.call('SADD', order_key, user_id)
	redis.call('XADD', stream_key, '*', 'user_id', user_id, 'voucher_id', voucher_id, 'order_id', order_id)

	return 0
`

// AdmissionGate runs the seckill admission script against Redis. It is the
// only writer of the stock counter and the purchased set during a sale.
type AdmissionGate struct {
	client      *redis.Client
	streamKey   string
	admitScript *redis.Script
	log         *logger.Logger
}

func NewAdmissionGate(conn *Connection, streamKey string, log *logger.Logger) *AdmissionGate {
	return &AdmissionGate{
		client:      conn.GetClient(),
		streamKey:   streamKey,
		admitScript: redis.NewScript(admitLuaScript),
		log:         log,
	}
}

func (g *AdmissionGate) Admit(ctx context.Context, voucherID, userID, orderID uint64) (ports.AdmissionResult, error) {
	keys := []string{
		stockKey(voucherID),
		orderKey(voucherID),
		g.streamKey,
	}
	args := []interface{}{
		strconv.FormatUint(userID, 10),
		strconv.FormatUint(voucherID, 10),
		strconv.FormatUint(orderID, 10),
	}

	result, err := g.admitScript.Run(ctx, g.client, keys, args...).Int()
	if err != nil {
		return 0, fmt.Errorf("admission script failed: %w", err)
	}

	var outcome ports.AdmissionResult
	switch result {
	case 0:
		outcome = ports.AdmissionOK
	case 1:
		outcome = ports.AdmissionOutOfStock
	case 2:
		outcome = ports.AdmissionDuplicate
	case 3:
		outcome = ports.AdmissionNotInitialized
		g.log.Error("Admission attempted against uninitialized sale", "voucher_id", voucherID)
	default:
		return 0, fmt.Errorf("admission script returned unexpected code %d", result)
	}

	monitoring.RecordAdmission(outcome.String())
	return outcome, nil
}

func (g *AdmissionGate) InitializeSale(ctx context.Context, voucherID uint64, stock int) error {
	pipe := g.client.TxPipeline()
	pipe.Set(ctx, stockKey(voucherID), stock, 0)
	pipe.Del(ctx, orderKey(voucherID))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to prime sale counters: %w", err)
	}

	g.log.Info("Sale initialized in admission store", "voucher_id", voucherID, "stock", stock)
	return nil
}

func (g *AdmissionGate) StockCounter(ctx context.Context, voucherID uint64) (int, bool, error) {
	result, err := g.client.Get(ctx, stockKey(voucherID)).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}

	stock, err := strconv.Atoi(result)
	if err != nil {
		return 0, false, fmt.Errorf("stock counter holds non-numeric value %q: %w", result, err)
	}

	return stock, true, nil
}

func stockKey(voucherID uint64) string {
	return stockKeyPrefix + strconv.FormatUint(voucherID, 10)
}

func orderKey(voucherID uint64) string {
	return orderKeyPrefix + strconv.FormatUint(voucherID, 10)
}
