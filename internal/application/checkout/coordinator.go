// Package checkout submits the cart as an order. The cart is cleared if and
// only if the server confirms the order.
package checkout

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/amishe1/lubex-bot/internal/domain/cart"
	"github.com/amishe1/lubex-bot/internal/domain/checkout"
	"github.com/amishe1/lubex-bot/internal/domain/shared"
	"github.com/amishe1/lubex-bot/internal/infrastructure/host"
	"github.com/amishe1/lubex-bot/internal/infrastructure/logger"
	"github.com/amishe1/lubex-bot/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// OrderAPI is the order endpoint
type OrderAPI interface {
	Checkout(ctx context.Context, req *checkout.Request) (*checkout.Receipt, error)
}

// CartStore is the part of the cart store checkout needs
type CartStore interface {
	Snapshot() cart.Cart
	Clear(ctx context.Context) error
}

// Coordinator runs checkout attempts, one at a time
type Coordinator struct {
	orders  OrderAPI
	carts   CartStore
	host    host.Surface
	metrics *telemetry.Metrics
	logger  *zap.Logger
	newKey  func() string

	inFlight atomic.Bool
}

// Option configures a Coordinator
type Option func(*Coordinator)

// WithHost notifies the embedding host after a successful order
func WithHost(h host.Surface) Option {
	return func(c *Coordinator) {
		c.host = h
	}
}

// WithMetrics records checkout outcomes
func WithMetrics(m *telemetry.Metrics) Option {
	return func(c *Coordinator) {
		c.metrics = m
	}
}

// WithLogger sets a custom logger
func WithLogger(l *zap.Logger) Option {
	return func(c *Coordinator) {
		c.logger = l
	}
}

// WithKeyGenerator replaces the idempotency key generator
func WithKeyGenerator(fn func() string) Option {
	return func(c *Coordinator) {
		c.newKey = fn
	}
}

// NewCoordinator creates a checkout coordinator
func NewCoordinator(orders OrderAPI, carts CartStore, opts ...Option) *Coordinator {
	c := &Coordinator{
		orders: orders,
		carts:  carts,
		host:   host.Nop{},
		logger: zap.NewNop(),
		newKey: uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// InFlight reports whether a submission is outstanding. The checkout action
// stays disabled while it is true.
func (c *Coordinator) InFlight() bool {
	return c.inFlight.Load()
}

// Submit places an order for the current cart. It returns the receipt when
// the server confirms the order, after clearing the cart. Otherwise the
// cart is untouched and the error is one of:
//   - ValidationError: empty cart or missing customer fields, no request made
//   - CheckoutInFlight: another submission is outstanding
//   - ApplicationError: the server rejected the order; the message is its reason
//   - NetworkError: the request failed or the response was unreadable
func (c *Coordinator) Submit(ctx context.Context, customer checkout.CustomerInfo) (*checkout.Receipt, error) {
	if !c.inFlight.CompareAndSwap(false, true) {
		c.metrics.ObserveCheckout(telemetry.OutcomeInFlight)
		return nil, shared.ErrCheckoutInFlight
	}
	defer c.inFlight.Store(false)

	ctx, span := telemetry.StartSpan(ctx, "checkout", "submit")
	defer span.End()
	log := logger.Enrich(ctx, c.logger)

	snapshot := c.carts.Snapshot()
	req, err := checkout.NewRequest(customer, snapshot, c.newKey())
	if err != nil {
		c.metrics.ObserveCheckout(telemetry.OutcomeValidation)
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("checkout.lines", len(req.Items)),
		attribute.String("checkout.idempotency_key", req.IdempotencyKey),
	)

	receipt, err := c.orders.Checkout(ctx, req)
	if err != nil {
		telemetry.RecordError(span, err)
		if errors.Is(err, shared.ErrApplication) {
			c.metrics.ObserveCheckout(telemetry.OutcomeRejected)
			log.Info("Order rejected", zap.String("reason", shared.Reason(err)))
			return nil, err
		}
		c.metrics.ObserveCheckout(telemetry.OutcomeNetwork)
		log.Warn("Order request failed", zap.Error(err))
		if !errors.Is(err, shared.ErrNetwork) {
			err = shared.NewNetworkError(err)
		}
		return nil, err
	}
	if receipt == nil || receipt.OrderID == "" {
		c.metrics.ObserveCheckout(telemetry.OutcomeNetwork)
		err := shared.NewNetworkError(errors.New("order confirmed without an order id"))
		telemetry.RecordError(span, err)
		log.Warn("Order response without id", zap.Error(err))
		return nil, err
	}

	if err := c.carts.Clear(ctx); err != nil {
		log.Error("Order placed but cart could not be saved empty",
			zap.String("order_id", receipt.OrderID),
			zap.Error(err),
		)
	}
	c.metrics.ObserveCheckout(telemetry.OutcomeOK)
	span.SetAttributes(attribute.String("order.id", receipt.OrderID))
	log.Info("Order placed", zap.String("order_id", receipt.OrderID))

	c.host.Close(ctx, receipt.OrderID)
	return receipt, nil
}
