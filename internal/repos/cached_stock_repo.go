package repos

import (
	"context"

	"go.uber.org/zap"

	"stockroom/internal/domain"
)

// CachedStockRepo puts StockCache in front of StockRepo. The database stays
// authoritative; cache failures are logged and never fail a call. Cache
// writes are versioned, so whichever of a read fill and a write lands last,
// the entry ends at the newest stored row.
type CachedStockRepo struct {
	store  *StockRepo
	cache  *StockCache
	logger *zap.Logger
}

func NewCachedStockRepo(store *StockRepo, cache *StockCache, logger *zap.Logger) *CachedStockRepo {
	return &CachedStockRepo{store: store, cache: cache, logger: logger}
}

func (r *CachedStockRepo) FindByProductID(ctx context.Context, productID int64) (domain.StockRecord, error) {
	rec, hit, err := r.cache.Get(ctx, productID)
	if err != nil {
		r.logger.Warn("stock cache read failed, using database", zap.Int64("product_id", productID), zap.Error(err))
	} else if hit {
		return rec, nil
	}

	rec, err = r.store.FindByProductID(ctx, productID)
	if err != nil {
		return domain.StockRecord{}, err
	}
	if _, err := r.cache.Set(ctx, rec); err != nil {
		r.logger.Warn("stock cache populate failed", zap.Int64("product_id", productID), zap.Error(err))
	}
	return rec, nil
}

// Upsert writes the database first, then writes the stored row through to
// the cache. If that fails the entry is dropped instead.
func (r *CachedStockRepo) Upsert(ctx context.Context, rec domain.StockRecord) (domain.StockRecord, error) {
	saved, err := r.store.Upsert(ctx, rec)
	if err != nil {
		return domain.StockRecord{}, err
	}
	if _, err := r.cache.Set(ctx, saved); err != nil {
		r.logger.Warn("stock cache write-through failed", zap.Int64("product_id", saved.ProductID), zap.Error(err))
		if err := r.cache.Invalidate(ctx, saved.ProductID); err != nil {
			r.logger.Warn("stock cache invalidate failed", zap.Int64("product_id", saved.ProductID), zap.Error(err))
		}
	}
	return saved, nil
}

// ListAll always reads the database; snapshots are not cached.
func (r *CachedStockRepo) ListAll(ctx context.Context) ([]domain.StockRecord, error) {
	return r.store.ListAll(ctx)
}
