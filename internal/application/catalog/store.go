package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/amishe1/lubex-bot/internal/domain/catalog"
	"github.com/amishe1/lubex-bot/internal/domain/shared"
	"github.com/amishe1/lubex-bot/internal/infrastructure/logger"
	"github.com/amishe1/lubex-bot/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ProductSource is the product API
type ProductSource interface {
	ListProducts(ctx context.Context) ([]catalog.Product, error)
	GetProduct(ctx context.Context, id catalog.ProductID) (*catalog.Product, error)
}

// Store holds the last fetched catalog and the active category filter
type Store struct {
	source     ProductSource
	categories catalog.CategorySet
	logger     *zap.Logger

	mu       sync.RWMutex
	products []catalog.Product
	loaded   bool
	filter   string
}

// NewStore creates a catalog store over source. An empty category list
// uses catalog.DefaultCategories.
func NewStore(source ProductSource, categories []string, l *zap.Logger) *Store {
	if len(categories) == 0 {
		categories = catalog.DefaultCategories
	}
	if l == nil {
		l = zap.NewNop()
	}
	return &Store{
		source:     source,
		categories: catalog.NewCategorySet(categories),
		logger:     l,
		filter:     catalog.CategoryAll,
	}
}

// Load fetches the catalog and replaces the product set. On failure the
// previous set is kept and a FetchError is returned.
func (s *Store) Load(ctx context.Context) error {
	ctx, span := telemetry.StartSpan(ctx, "catalog", "load")
	defer span.End()

	products, err := s.source.ListProducts(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		logger.Enrich(ctx, s.logger).Warn("Catalog load failed", zap.Error(err))
		return shared.NewFetchError(err)
	}

	snapshot := make([]catalog.Product, len(products))
	copy(snapshot, products)

	s.mu.Lock()
	s.products = snapshot
	s.loaded = true
	s.mu.Unlock()

	span.SetAttributes(attribute.Int("products.count", len(snapshot)))
	logger.Enrich(ctx, s.logger).Debug("Catalog loaded", zap.Int("count", len(snapshot)))
	return nil
}

// SetFilter selects the active category. The name is matched against the
// category set ignoring case.
func (s *Store) SetFilter(category string) error {
	resolved, ok := s.categories.Resolve(category)
	if !ok {
		return shared.NewValidationError(fmt.Sprintf("Unknown category %q", category))
	}
	s.mu.Lock()
	s.filter = resolved
	s.mu.Unlock()
	return nil
}

// Filter returns the active category
func (s *Store) Filter() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter
}

// Categories returns the category set in display order
func (s *Store) Categories() []string {
	return s.categories.Values()
}

// Loaded reports whether a load has ever succeeded
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Products returns the full current product set
func (s *Store) Products() []catalog.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]catalog.Product, len(s.products))
	copy(out, s.products)
	return out
}

// Filtered returns the products under the active filter, computed on each
// call
func (s *Store) Filtered() []catalog.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return catalog.Filter(s.products, s.filter)
}

// Find returns the loaded product whose id renders as ref
func (s *Store) Find(ref string) (catalog.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.products {
		if p.ID.String() == ref {
			return p, nil
		}
	}
	return catalog.Product{}, shared.NewDomainError(shared.CodeNotFound, fmt.Sprintf("Product %s not found", ref))
}

// Get fetches a single product from the API for the detail view. A missing
// product is NotFound; any other failure is a FetchError.
func (s *Store) Get(ctx context.Context, ref string) (*catalog.Product, error) {
	ctx, span := telemetry.StartSpan(ctx, "catalog", "get", attribute.String("product.id", ref))
	defer span.End()

	id := catalog.NewProductID(ref)
	if p, err := s.Find(ref); err == nil {
		id = p.ID
	}

	product, err := s.source.GetProduct(ctx, id)
	if err != nil {
		telemetry.RecordError(span, err)
		if errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		return nil, shared.NewFetchError(err)
	}
	return product, nil
}
