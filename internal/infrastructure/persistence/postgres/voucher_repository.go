package postgres

import (
	"context"
	"database/sql"

	domainErrors "github.com/avolkov/seckill-service/internal/domain/errors"
	"github.com/avolkov/seckill-service/internal/domain/voucher"
	"github.com/avolkov/seckill-service/internal/infrastructure/monitoring"
)

type VoucherRepository struct {
	conn *Connection
}

func NewVoucherRepository(conn *Connection) *VoucherRepository {
	return &VoucherRepository{
		conn: conn,
	}
}

func (r *VoucherRepository) GetVoucherByID(ctx context.Context, id uint64) (*voucher.Voucher, error) {
	query := `
		SELECT id, stock, begin_time, end_time, created_at
		FROM vouchers
		WHERE id = $1
	`

	var v voucher.Voucher
	row := monitoring.InstrumentQueryRow(ctx, r.conn.db, "SELECT", "vouchers", query, id)
	err := row.Scan(&v.ID, &v.Stock, &v.BeginTime, &v.EndTime, &v.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, domainErrors.ErrVoucherNotFound
	}
	if err != nil {
		return nil, err
	}

	return &v, nil
}

func (r *VoucherRepository) CreateVoucher(ctx context.Context, v *voucher.Voucher) error {
	query := `
		INSERT INTO vouchers (id, stock, begin_time, end_time, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := monitoring.InstrumentExec(ctx, r.conn.db, "INSERT", "vouchers", query,
		v.ID, v.Stock, v.BeginTime, v.EndTime, v.CreatedAt,
	)
	return err
}

func (r *VoucherRepository) ListVoucherIDs(ctx context.Context) ([]uint64, error) {
	query := `SELECT id FROM vouchers ORDER BY id`

	rows, err := monitoring.InstrumentQuery(ctx, r.conn.db, "SELECT", "vouchers", query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

func (r *VoucherRepository) GetStock(ctx context.Context, voucherID uint64) (int, error) {
	query := `SELECT stock FROM vouchers WHERE id = $1`

	var stock int
	row := monitoring.InstrumentQueryRow(ctx, r.conn.db, "SELECT", "vouchers", query, voucherID)
	err := row.Scan(&stock)
	if err == sql.ErrNoRows {
		return 0, domainErrors.ErrVoucherNotFound
	}
	return stock, err
}
