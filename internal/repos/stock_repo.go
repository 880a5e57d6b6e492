package repos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"stockroom/internal/domain"
)

// StockRepo persists one stock row per product id.
type StockRepo struct{ db *sqlx.DB }

func NewStockRepo(db *sqlx.DB) *StockRepo { return &StockRepo{db: db} }

// FindByProductID returns domain.ErrStockNotFound when no row exists.
func (r *StockRepo) FindByProductID(ctx context.Context, productID int64) (domain.StockRecord, error) {
	var rec domain.StockRecord
	err := r.db.GetContext(ctx, &rec, r.db.Rebind(`
		SELECT id, product_id, quantity, version FROM stock
		WHERE product_id = ?
	`), productID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.StockRecord{}, fmt.Errorf("product %d: %w", productID, domain.ErrStockNotFound)
	}
	if err != nil {
		return domain.StockRecord{}, storageErr("find stock", err)
	}
	return rec, nil
}

// Upsert sets the quantity for rec.ProductID, creating the row if needed, and
// returns the row as stored. The unique product_id makes this the per-key
// serialization point; every call bumps the row version.
func (r *StockRepo) Upsert(ctx context.Context, rec domain.StockRecord) (domain.StockRecord, error) {
	var saved domain.StockRecord
	err := r.db.GetContext(ctx, &saved, r.db.Rebind(`
		INSERT INTO stock(product_id, quantity, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(product_id) DO UPDATE SET
		  quantity = excluded.quantity,
		  updated_at = excluded.updated_at,
		  version = stock.version + 1
		RETURNING id, product_id, quantity, version
	`), rec.ProductID, rec.Quantity)
	if err != nil {
		return domain.StockRecord{}, storageErr("upsert stock", err)
	}
	return saved, nil
}

// ListAll returns a snapshot of every stock row.
func (r *StockRepo) ListAll(ctx context.Context) ([]domain.StockRecord, error) {
	rows := []domain.StockRecord{}
	if err := r.db.SelectContext(ctx, &rows, `SELECT id, product_id, quantity, version FROM stock ORDER BY id`); err != nil {
		return nil, storageErr("list stock", err)
	}
	return rows, nil
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", domain.ErrStorageFailure, op, err)
}
