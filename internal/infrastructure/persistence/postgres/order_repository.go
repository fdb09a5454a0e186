package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/avolkov/seckill-service/internal/domain/order"
	"github.com/avolkov/seckill-service/internal/infrastructure/monitoring"
)

type OrderRepository struct {
	conn *Connection
}

func NewOrderRepository(conn *Connection) *OrderRepository {
	return &OrderRepository{
		conn: conn,
	}
}

// Persist runs the fulfillment transaction: defensive duplicate re-check,
// conditional stock decrement, order insert. All three commit or roll back
// together. DUPLICATE and INSUFFICIENT_STOCK are outcomes, not errors; the
// caller decides whether they are anomalies.
func (r *OrderRepository) Persist(ctx context.Context, intent order.Intent) (order.PersistOutcome, error) {
	tx, err := r.conn.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var count int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM orders WHERE user_id = $1 AND voucher_id = $2`,
		intent.UserID, intent.VoucherID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to check existing order: %w", err)
	}
	if count > 0 {
		return order.PersistDuplicate, nil
	}

	// stock > 0 is evaluated atomically with the decrement, so a concurrent
	// transaction can never push the column negative.
	result, err := tx.ExecContext(ctx,
		`UPDATE vouchers SET stock = stock - 1 WHERE id = $1 AND stock > 0`,
		intent.VoucherID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to decrement stock: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return order.PersistInsufficientStock, nil
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO orders (id, user_id, voucher_id, created_at) VALUES ($1, $2, $3, NOW())`,
		intent.OrderID, intent.UserID, intent.VoucherID,
	)
	if err != nil {
		monitoring.FulfillmentOutcomesTotal.WithLabelValues("insert_error").Inc()
		return 0, fmt.Errorf("failed to insert order: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit fulfillment transaction: %w", err)
	}

	return order.PersistCreated, nil
}

func (r *OrderRepository) GetOrder(ctx context.Context, userID, voucherID uint64) (*order.Order, error) {
	query := `
		SELECT id, user_id, voucher_id, created_at
		FROM orders
		WHERE user_id = $1 AND voucher_id = $2
	`

	var o order.Order
	row := monitoring.InstrumentQueryRow(ctx, r.conn.db, "SELECT", "orders", query, userID, voucherID)
	err := row.Scan(&o.ID, &o.UserID, &o.VoucherID, &o.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &o, nil
}

func (r *OrderRepository) CountOrdersByVoucher(ctx context.Context, voucherID uint64) (int, error) {
	query := `SELECT COUNT(*) FROM orders WHERE voucher_id = $1`

	var count int
	row := monitoring.InstrumentQueryRow(ctx, r.conn.db, "SELECT", "orders", query, voucherID)
	err := row.Scan(&count)
	return count, err
}
