package domain

import "github.com/shopspring/decimal"

// ProductIdentity is the catalog's descriptive data for a product id.
type ProductIdentity struct {
	ID    int64           `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// StockRecord is the persisted quantity-on-hand for one product.
// ID and Version are assigned by the store and stay zero until the record is
// persisted. Version grows by one on every write to the row.
type StockRecord struct {
	ID        int64 `db:"id" json:"id"`
	ProductID int64 `db:"product_id" json:"productId"`
	Quantity  int   `db:"quantity" json:"quantity"`
	Version   int64 `db:"version" json:"version"`
}

// InventoryView joins a stock record with its product name. Never persisted.
type InventoryView struct {
	ProductID   int64  `json:"productId"`
	ProductName string `json:"productName"`
	Quantity    int    `json:"quantity"`
}
