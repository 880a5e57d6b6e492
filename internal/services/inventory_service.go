package services

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"stockroom/internal/domain"
	"stockroom/internal/events"
	"stockroom/internal/telemetry"
)

// StockStore is the persistence the service needs. *repos.StockRepo and
// *repos.CachedStockRepo satisfy it.
type StockStore interface {
	FindByProductID(ctx context.Context, productID int64) (domain.StockRecord, error)
	Upsert(ctx context.Context, rec domain.StockRecord) (domain.StockRecord, error)
	ListAll(ctx context.Context) ([]domain.StockRecord, error)
}

// ProductLookup resolves product identity. Any error means the product is
// unavailable.
type ProductLookup interface {
	Fetch(ctx context.Context, productID int64) (domain.ProductIdentity, error)
}

const defaultListConcurrency = 8

type InventoryService struct {
	Store   StockStore
	Catalog ProductLookup
	Events  events.Publisher
	Log     *zap.Logger
	Metrics *telemetry.Metrics

	tracer    trace.Tracer
	listLimit int
}

type Option func(*InventoryService)

func WithPublisher(p events.Publisher) Option { return func(s *InventoryService) { s.Events = p } }
func WithLogger(l *zap.Logger) Option         { return func(s *InventoryService) { s.Log = l } }
func WithMetrics(m *telemetry.Metrics) Option { return func(s *InventoryService) { s.Metrics = m } }

func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *InventoryService) { s.tracer = tp.Tracer("stockroom/services") }
}

// WithListConcurrency bounds the catalog fetches ListInventory runs at once.
func WithListConcurrency(n int) Option {
	return func(s *InventoryService) {
		if n > 0 {
			s.listLimit = n
		}
	}
}

func NewInventoryService(store StockStore, catalog ProductLookup, opts ...Option) *InventoryService {
	s := &InventoryService{
		Store:     store,
		Catalog:   catalog,
		Events:    events.NopPublisher{},
		Log:       zap.NewNop(),
		tracer:    otel.Tracer("stockroom/services"),
		listLimit: defaultListConcurrency,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// GetByProductID joins the stored quantity with the catalog name. A record
// whose product cannot be resolved is never returned.
func (s *InventoryService) GetByProductID(ctx context.Context, productID int64) (view domain.InventoryView, err error) {
	ctx, span := s.tracer.Start(ctx, "inventory.get", trace.WithAttributes(attribute.Int64("product.id", productID)))
	defer func() { endSpan(span, err) }()

	if productID < 1 {
		return domain.InventoryView{}, domain.InvalidArgument("productId")
	}

	rec, err := s.Store.FindByProductID(ctx, productID)
	if err != nil {
		return domain.InventoryView{}, storeErr(err)
	}

	identity, err := s.resolve(ctx, "get", productID)
	if err != nil {
		return domain.InventoryView{}, err
	}
	return domain.InventoryView{ProductID: productID, ProductName: identity.Name, Quantity: rec.Quantity}, nil
}

// UpdateStock sets the quantity for a product the catalog confirms, creating
// the stock record on first use. Repeating a call with the same quantity
// leaves the same state.
func (s *InventoryService) UpdateStock(ctx context.Context, productID int64, quantity *int) (view domain.InventoryView, err error) {
	ctx, span := s.tracer.Start(ctx, "inventory.update", trace.WithAttributes(attribute.Int64("product.id", productID)))
	defer func() { endSpan(span, err) }()

	if productID < 1 {
		return domain.InventoryView{}, domain.InvalidArgument("productId")
	}
	if quantity == nil || *quantity < 0 {
		return domain.InventoryView{}, domain.InvalidArgument("quantity")
	}
	span.SetAttributes(attribute.Int("stock.quantity", *quantity))

	identity, err := s.resolve(ctx, "update", productID)
	if err != nil {
		return domain.InventoryView{}, err
	}

	rec, err := s.Store.FindByProductID(ctx, productID)
	switch {
	case errors.Is(err, domain.ErrStockNotFound):
		rec = domain.StockRecord{ProductID: productID}
	case err != nil:
		return domain.InventoryView{}, storeErr(err)
	}

	rec.Quantity = *quantity
	saved, err := s.Store.Upsert(ctx, rec)
	if err != nil {
		return domain.InventoryView{}, storeErr(err)
	}

	if s.Metrics != nil {
		s.Metrics.StockUpdates.Inc()
	}
	s.publish(ctx, events.NewStockUpdated(saved.ProductID, identity.Name, saved.Quantity))

	return domain.InventoryView{ProductID: productID, ProductName: identity.Name, Quantity: saved.Quantity}, nil
}

// ListInventory resolves every stored record and leaves out the ones whose
// product does not resolve. Output order follows the store snapshot.
func (s *InventoryService) ListInventory(ctx context.Context) (views []domain.InventoryView, err error) {
	ctx, span := s.tracer.Start(ctx, "inventory.list")
	defer func() { endSpan(span, err) }()

	records, err := s.Store.ListAll(ctx)
	if err != nil {
		return nil, storeErr(err)
	}

	resolved := make([]*domain.InventoryView, len(records))
	var g errgroup.Group
	g.SetLimit(s.listLimit)
	for i, rec := range records {
		i, rec := i, rec
		g.Go(func() error {
			identity, err := s.resolve(ctx, "list", rec.ProductID)
			if err != nil {
				return nil
			}
			resolved[i] = &domain.InventoryView{ProductID: rec.ProductID, ProductName: identity.Name, Quantity: rec.Quantity}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("list inventory: %w", err)
	}

	views = make([]domain.InventoryView, 0, len(records))
	for i, v := range resolved {
		if v == nil {
			s.Log.Warn("inventory item omitted, product unresolvable", zap.Int64("product_id", records[i].ProductID))
			if s.Metrics != nil {
				s.Metrics.ListOmitted.Inc()
			}
			continue
		}
		views = append(views, *v)
	}
	span.SetAttributes(
		attribute.Int("inventory.records", len(records)),
		attribute.Int("inventory.omitted", len(records)-len(views)),
	)
	return views, nil
}

func (s *InventoryService) resolve(ctx context.Context, op string, productID int64) (domain.ProductIdentity, error) {
	identity, err := s.Catalog.Fetch(ctx, productID)
	if err != nil {
		s.Log.Warn("catalog lookup failed", zap.String("op", op), zap.Int64("product_id", productID), zap.Error(err))
		if s.Metrics != nil {
			s.Metrics.CatalogFailures.WithLabelValues(op).Inc()
		}
		return domain.ProductIdentity{}, fmt.Errorf("product %d: %w", productID, domain.ErrProductUnresolvable)
	}
	return identity, nil
}

// publish is best effort: the stock row is already stored.
func (s *InventoryService) publish(ctx context.Context, evt events.StockUpdated) {
	if err := s.Events.PublishStockUpdated(ctx, evt); err != nil {
		s.Log.Error("publish stock updated event", zap.Int64("product_id", evt.ProductID), zap.Error(err))
		if s.Metrics != nil {
			s.Metrics.EventPublishFails.Inc()
		}
	}
}

func storeErr(err error) error {
	if errors.Is(err, domain.ErrStockNotFound) || errors.Is(err, domain.ErrStorageFailure) {
		return err
	}
	return fmt.Errorf("%w: %v", domain.ErrStorageFailure, err)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
