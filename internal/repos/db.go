package repos

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// OpenDB connects with the named driver ("sqlite" or "postgres") and makes
// sure the stock schema exists.
func OpenDB(driver, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == "sqlite" {
		// one connection: :memory: databases are per-connection and writers serialize anyway
		db.SetMaxOpenConns(1)
	}
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	if err := ensureSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS stock(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  product_id INTEGER NOT NULL UNIQUE CHECK (product_id >= 1),
  quantity INTEGER NOT NULL DEFAULT 0 CHECK (quantity >= 0),
  version INTEGER NOT NULL DEFAULT 1,
  updated_at TEXT
);
`
	if db.DriverName() == "postgres" {
		schema = `
CREATE TABLE IF NOT EXISTS stock(
  id BIGSERIAL PRIMARY KEY,
  product_id BIGINT NOT NULL UNIQUE CHECK (product_id >= 1),
  quantity BIGINT NOT NULL DEFAULT 0 CHECK (quantity >= 0),
  version BIGINT NOT NULL DEFAULT 1,
  updated_at TIMESTAMPTZ
);
`
	}
	_, err := db.Exec(schema)
	return err
}

// SeedDemo inserts a few stock rows when the table is empty. Safe to run on
// every start.
func SeedDemo(db *sqlx.DB, logger *zap.Logger) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM stock`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	logger.Info("seeding demo stock rows")

	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, row := range []struct{ productID, qty int }{{1, 20}, {2, 15}, {3, 0}} {
		if _, err := tx.Exec(tx.Rebind(`
			INSERT INTO stock(product_id, quantity, updated_at)
			VALUES (?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT(product_id) DO NOTHING
		`), row.productID, row.qty); err != nil {
			return err
		}
	}
	return tx.Commit()
}
