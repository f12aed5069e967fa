// Package cart is the cart store: the in-memory cart plus its durable
// copy. Every mutation is persisted before it returns.
package cart

import (
	"context"
	"errors"
	"sync"

	"github.com/amishe1/lubex-bot/internal/domain/cart"
	"github.com/amishe1/lubex-bot/internal/domain/catalog"
	"github.com/amishe1/lubex-bot/internal/domain/shared"
	"github.com/amishe1/lubex-bot/internal/infrastructure/persistence"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultKey namespaces the persisted cart
const DefaultKey = "lubex_cart"

// Storage is the durable key/value store the cart is saved to. Load returns
// persistence.ErrNotFound when nothing is stored.
type Storage interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
}

// Store owns the cart
type Store struct {
	storage Storage
	key     string
	sink    DiagnosticSink
	logger  *zap.Logger

	mu   sync.Mutex
	cart cart.Cart
}

// Option configures a Store
type Option func(*Store)

// WithDiagnosticSink receives unreadable-cart reports
func WithDiagnosticSink(sink DiagnosticSink) Option {
	return func(s *Store) {
		s.sink = sink
	}
}

// WithLogger sets a custom logger
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// NewStore creates the store and restores the cart saved under key. A
// missing cart starts empty; an unreadable one starts empty and is reported
// to the diagnostic sink.
func NewStore(ctx context.Context, storage Storage, key string, opts ...Option) *Store {
	if key == "" {
		key = DefaultKey
	}
	s := &Store{
		storage: storage,
		key:     key,
		logger:  zap.NewNop(),
		cart:    cart.Empty(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.sink == nil {
		s.sink = NewLogSink(s.logger, nil)
	}
	s.restore(ctx)
	return s
}

func (s *Store) restore(ctx context.Context) {
	data, err := s.storage.Load(ctx, s.key)
	if errors.Is(err, persistence.ErrNotFound) {
		return
	}
	if err != nil {
		s.sink.Report(ctx, s.key, shared.WrapDomainError(shared.CodeStorageCorruption, "Stored cart could not be read", err))
		return
	}
	restored, err := cart.Decode(data)
	if err != nil {
		s.sink.Report(ctx, s.key, shared.WrapDomainError(shared.CodeStorageCorruption, "Stored cart is unreadable", err))
		return
	}
	s.cart = restored
}

// persist saves c; the caller holds mu
func (s *Store) persist(ctx context.Context, c cart.Cart) error {
	data, err := cart.Encode(c)
	if err != nil {
		return shared.NewStorageError(err)
	}
	if err := s.storage.Save(ctx, s.key, data); err != nil {
		s.logger.Warn("Cart persist failed", zap.String("key", s.key), zap.Error(err))
		return shared.NewStorageError(err)
	}
	return nil
}

// Add puts quantity units of product in the cart, merging with an existing
// line. If saving fails the cart is left as it was.
func (s *Store) Add(ctx context.Context, product catalog.Product, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.cart.Add(product, quantity)
	if err := s.persist(ctx, next); err != nil {
		return err
	}
	s.cart = next
	return nil
}

// SetQuantity adjusts the line at index by delta, removing it at zero. An
// index out of range changes nothing and reports false.
func (s *Store) SetQuantity(ctx context.Context, index, delta int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, changed := s.cart.SetQuantity(index, delta)
	if !changed {
		return false, nil
	}
	if err := s.persist(ctx, next); err != nil {
		return false, err
	}
	s.cart = next
	return true, nil
}

// Clear empties the cart. Memory is always cleared; a save failure is
// still returned.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart = cart.Empty()
	return s.persist(ctx, s.cart)
}

// Snapshot returns the current cart value
func (s *Store) Snapshot() cart.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart
}

// Lines returns a copy of the cart lines
func (s *Store) Lines() []cart.Line {
	return s.Snapshot().Lines()
}

// Total returns the sum of quantity times price
func (s *Store) Total() decimal.Decimal {
	return s.Snapshot().Total()
}

// Count returns the total number of units, used for the badge
func (s *Store) Count() int {
	return s.Snapshot().Count()
}

// State returns Empty or NonEmpty
func (s *Store) State() cart.State {
	return s.Snapshot().State()
}

// IsEmpty reports whether the cart has no lines
func (s *Store) IsEmpty() bool {
	return s.Snapshot().IsEmpty()
}

// Key returns the storage key
func (s *Store) Key() string {
	return s.key
}
