package worker

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/avolkov/seckill-service/internal/application/ports"
	domainErrors "github.com/avolkov/seckill-service/internal/domain/errors"
	"github.com/avolkov/seckill-service/internal/domain/order"
	"github.com/avolkov/seckill-service/internal/infrastructure/monitoring"
	"github.com/avolkov/seckill-service/internal/pkg/clock"
	"github.com/avolkov/seckill-service/internal/pkg/logger"
)

// FulfillmentWorker drains the order-intent queue and materializes admitted
// purchases into the database. Delivery is at least once: an entry is
// acknowledged only after its outcome is settled, and any entry read but not
// acknowledged is replayed through the pending range.
type FulfillmentWorker struct {
	queue  ports.IntentQueue
	orders ports.OrderRepository
	locker ports.Locker
	clk    clock.Clock
	log    *logger.Logger

	blockTimeout    time.Duration
	lockLease       time.Duration
	recoveryBackoff time.Duration
	workerCount     int

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type Options struct {
	BlockTimeout    time.Duration
	LockLease       time.Duration
	RecoveryBackoff time.Duration
	WorkerCount     int
}

func NewFulfillmentWorker(
	queue ports.IntentQueue,
	orders ports.OrderRepository,
	locker ports.Locker,
	clk clock.Clock,
	log *logger.Logger,
	opts Options,
) *FulfillmentWorker {
	if opts.WorkerCount <= 0 {
		opts.WorkerCount = 1
	}

	return &FulfillmentWorker{
		queue:           queue,
		orders:          orders,
		locker:          locker,
		clk:             clk,
		log:             log,
		blockTimeout:    opts.BlockTimeout,
		lockLease:       opts.LockLease,
		recoveryBackoff: opts.RecoveryBackoff,
		workerCount:     opts.WorkerCount,
	}
}

// Start launches the consumption loops. Each loop first drains the pending
// range, picking up entries left behind by a crash, then settles into normal
// consumption.
func (w *FulfillmentWorker) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)

	for i := 0; i < w.workerCount; i++ {
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			w.recoverPending(ctx)
			w.run(ctx)
		}()
	}

	w.log.Info("Fulfillment worker started", "workers", w.workerCount)
}

// Stop cancels the blocking reads and waits for in-flight entries to settle.
func (w *FulfillmentWorker) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
	w.log.Info("Fulfillment worker stopped")
}

func (w *FulfillmentWorker) run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		entry, err := w.queue.ReadNext(ctx, w.blockTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			w.log.Error("Failed to read order intent", "error", err.Error())
			w.recoverPending(ctx)
			continue
		}
		if entry == nil {
			// Idle block timeout elapsed, not an error.
			continue
		}

		if err := w.handleEntry(ctx, entry); err != nil {
			w.log.Error("Failed to process order intent",
				"error", err.Error(),
				"entry_id", entry.ID,
				"order_id", entry.Intent.OrderID,
			)
			w.recoverPending(ctx)
		}
	}
}

// recoverPending replays entries delivered to this consumer but never
// acknowledged, until the pending range is exhausted. Failures inside the
// replay back off briefly and retry; they never skip an entry.
func (w *FulfillmentWorker) recoverPending(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		entry, err := w.queue.ReadPending(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			w.log.Error("Failed to read pending entries", "error", err.Error())
			w.clk.Sleep(w.recoveryBackoff)
			continue
		}
		if entry == nil {
			return
		}

		if err := w.handleEntry(ctx, entry); err != nil {
			w.log.Error("Failed to process pending entry",
				"error", err.Error(),
				"entry_id", entry.ID,
			)
			w.clk.Sleep(w.recoveryBackoff)
		}
	}
}

// handleEntry settles one intent and acknowledges it. A returned error means
// the entry was NOT acknowledged and stays in the pending range.
func (w *FulfillmentWorker) handleEntry(ctx context.Context, entry *ports.QueueEntry) error {
	if err := w.fulfill(ctx, entry.Intent); err != nil {
		return err
	}

	if err := w.queue.Acknowledge(ctx, entry.ID); err != nil {
		// The intent is persisted; re-delivery will see DUPLICATE and ack.
		return fmt.Errorf("acknowledge failed after persist: %w", err)
	}

	return nil
}

func (w *FulfillmentWorker) fulfill(ctx context.Context, intent order.Intent) error {
	end := monitoring.TimeFulfillment()
	defer end()

	lockKey := strconv.FormatUint(intent.UserID, 10)
	token, ok, err := w.locker.TryLock(ctx, lockKey, w.lockLease)
	if err != nil {
		return fmt.Errorf("lock store unavailable: %w", err)
	}
	if !ok {
		// Transient: the entry stays unacknowledged and is re-delivered.
		return fmt.Errorf("user %d: %w", intent.UserID, domainErrors.ErrLockNotAcquired)
	}
	defer func() {
		if err := w.locker.Unlock(ctx, lockKey, token); err != nil {
			w.log.Error("Failed to release fulfillment lock",
				"error", err.Error(),
				"user_id", intent.UserID,
			)
		}
	}()

	outcome, err := w.orders.Persist(ctx, intent)
	if err != nil {
		return fmt.Errorf("persist failed: %w", err)
	}

	monitoring.RecordFulfillment(outcome.String())

	switch outcome {
	case order.PersistCreated:
		w.log.Info("Order persisted",
			"order_id", intent.OrderID,
			"user_id", intent.UserID,
			"voucher_id", intent.VoucherID,
		)
	case order.PersistDuplicate:
		// The gate should have rejected this upstream. Log the divergence and
		// discard; retrying cannot change the outcome.
		w.log.Error("Fulfillment divergence: duplicate order",
			"order_id", intent.OrderID,
			"user_id", intent.UserID,
			"voucher_id", intent.VoucherID,
		)
	case order.PersistInsufficientStock:
		w.log.Error("Fulfillment divergence: insufficient persisted stock",
			"order_id", intent.OrderID,
			"voucher_id", intent.VoucherID,
		)
	}

	return nil
}
