// Package admin is the operator-side product management. Every mutating
// call carries the admin credential and reports the server's verdict.
package admin

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/amishe1/lubex-bot/internal/domain/catalog"
	"github.com/amishe1/lubex-bot/internal/domain/shared"
	"github.com/amishe1/lubex-bot/internal/infrastructure/api"
	"github.com/amishe1/lubex-bot/internal/infrastructure/logger"
	"github.com/amishe1/lubex-bot/internal/infrastructure/telemetry"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ProductReader is the public product API
type ProductReader interface {
	ListProducts(ctx context.Context) ([]catalog.Product, error)
	GetProduct(ctx context.Context, id catalog.ProductID) (*catalog.Product, error)
}

// ProductWriter is the token-gated admin API
type ProductWriter interface {
	CreateProduct(ctx context.Context, p api.ProductPayload) error
	UpdateProduct(ctx context.Context, id catalog.ProductID, p api.ProductPayload) error
	DeleteProduct(ctx context.Context, id catalog.ProductID) error
	// Authorized reports whether a credential is configured
	Authorized() bool
}

// ImageUploader stores a local image and returns its public URL
type ImageUploader interface {
	UploadFile(ctx context.Context, localPath string) (string, error)
}

// ProductFields is what the operator enters for create and update. Price
// and stock are kept as entered text.
type ProductFields struct {
	Name        string `validate:"required"`
	Category    string
	Price       string `validate:"required,numeric"`
	Stock       string
	Description string
	ImageURL    string
	// ImagePath is a local file uploaded before the request; its URL
	// replaces ImageURL
	ImagePath string
}

// Validate requires a name and a numeric price
func (f ProductFields) Validate() error {
	f.Name = strings.TrimSpace(f.Name)
	f.Price = strings.TrimSpace(f.Price)
	if err := validate.Struct(f); err != nil {
		return shared.NewValidationError("Name and a numeric price are required")
	}
	return nil
}

// payload converts validated fields. Stock falls back to 0 when blank or
// not a number.
func (f ProductFields) payload() (api.ProductPayload, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(f.Price))
	if err != nil {
		return api.ProductPayload{}, shared.NewValidationError("Name and a numeric price are required")
	}
	if price.IsNegative() {
		return api.ProductPayload{}, shared.NewValidationError("Price must not be negative")
	}
	stock, err := strconv.Atoi(strings.TrimSpace(f.Stock))
	if err != nil {
		stock = 0
	}
	return api.ProductPayload{
		Name:        strings.TrimSpace(f.Name),
		Category:    strings.TrimSpace(f.Category),
		Price:       json.Number(price.String()),
		Stock:       stock,
		Description: f.Description,
		ImageURL:    strings.TrimSpace(f.ImageURL),
	}, nil
}

// FieldsFromProduct pre-fills an edit form
func FieldsFromProduct(p catalog.Product) ProductFields {
	return ProductFields{
		Name:        p.Name,
		Category:    p.Category,
		Price:       p.Price.String(),
		Stock:       strconv.Itoa(p.Stock),
		Description: p.Description,
		ImageURL:    p.ImageURL,
	}
}

// Coordinator runs admin operations
type Coordinator struct {
	reader ProductReader
	writer ProductWriter
	images ImageUploader
	logger *zap.Logger
}

// Option configures a Coordinator
type Option func(*Coordinator)

// WithImageUploader enables ImagePath uploads
func WithImageUploader(u ImageUploader) Option {
	return func(c *Coordinator) {
		c.images = u
	}
}

// WithLogger sets a custom logger
func WithLogger(l *zap.Logger) Option {
	return func(c *Coordinator) {
		c.logger = l
	}
}

// NewCoordinator creates an admin coordinator
func NewCoordinator(reader ProductReader, writer ProductWriter, opts ...Option) *Coordinator {
	c := &Coordinator{
		reader: reader,
		writer: writer,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// List returns every product
func (c *Coordinator) List(ctx context.Context) ([]catalog.Product, error) {
	ctx, span := telemetry.StartSpan(ctx, "admin", "list_products")
	defer span.End()

	products, err := c.reader.ListProducts(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, shared.NewFetchError(err)
	}
	return products, nil
}

// Get returns one product, used to pre-fill an edit
func (c *Coordinator) Get(ctx context.Context, ref string) (*catalog.Product, error) {
	ctx, span := telemetry.StartSpan(ctx, "admin", "get_product", attribute.String("product.id", ref))
	defer span.End()

	p, err := c.reader.GetProduct(ctx, catalog.ParseProductID(ref))
	if err != nil {
		telemetry.RecordError(span, err)
		if errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		return nil, shared.NewFetchError(err)
	}
	return p, nil
}

// Create adds a product
func (c *Coordinator) Create(ctx context.Context, fields ProductFields) error {
	ctx, span := telemetry.StartSpan(ctx, "admin", "create_product")
	defer span.End()

	if err := c.authorize(); err != nil {
		return err
	}
	p, err := c.prepare(ctx, fields)
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	return c.report(ctx, "create", c.writer.CreateProduct(ctx, p))
}

// Update replaces the product identified by ref
func (c *Coordinator) Update(ctx context.Context, ref string, fields ProductFields) error {
	ctx, span := telemetry.StartSpan(ctx, "admin", "update_product", attribute.String("product.id", ref))
	defer span.End()

	id, err := parseRef(ref)
	if err != nil {
		return err
	}
	if err := c.authorize(); err != nil {
		return err
	}
	p, err := c.prepare(ctx, fields)
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	return c.report(ctx, "update", c.writer.UpdateProduct(ctx, id, p))
}

// Delete removes the product identified by ref
func (c *Coordinator) Delete(ctx context.Context, ref string) error {
	ctx, span := telemetry.StartSpan(ctx, "admin", "delete_product", attribute.String("product.id", ref))
	defer span.End()

	id, err := parseRef(ref)
	if err != nil {
		return err
	}
	if err := c.authorize(); err != nil {
		return err
	}
	return c.report(ctx, "delete", c.writer.DeleteProduct(ctx, id))
}

// authorize fails before any upload or request when no token is set
func (c *Coordinator) authorize() error {
	if !c.writer.Authorized() {
		return shared.NewValidationError("Admin token is required")
	}
	return nil
}

func parseRef(ref string) (catalog.ProductID, error) {
	id := catalog.ParseProductID(ref)
	if id.IsZero() {
		return id, shared.NewValidationError("Product id is required")
	}
	return id, nil
}

// prepare validates fields and uploads the image if one was given
func (c *Coordinator) prepare(ctx context.Context, fields ProductFields) (api.ProductPayload, error) {
	if err := fields.Validate(); err != nil {
		return api.ProductPayload{}, err
	}
	p, err := fields.payload()
	if err != nil {
		return api.ProductPayload{}, err
	}
	if fields.ImagePath != "" {
		if c.images == nil {
			return api.ProductPayload{}, shared.NewValidationError("Image upload is not configured; pass an image URL instead")
		}
		imageURL, err := c.images.UploadFile(ctx, fields.ImagePath)
		if err != nil {
			return api.ProductPayload{}, shared.WrapDomainError(shared.CodeNetwork, "Image upload failed", err)
		}
		p.ImageURL = imageURL
	}
	return p, nil
}

// report logs the outcome; failures keep the raw payload on the error
func (c *Coordinator) report(ctx context.Context, op string, err error) error {
	log := logger.Enrich(ctx, c.logger).With(zap.String("operation", op))
	if err == nil {
		log.Info("Admin operation succeeded")
		return nil
	}
	var de *shared.DomainError
	if errors.As(err, &de) && len(de.Payload) > 0 {
		log.Warn("Admin operation rejected", zap.ByteString("payload", de.Payload))
	} else {
		log.Warn("Admin operation failed", zap.Error(err))
	}
	return err
}

// Payload returns the raw server response carried by err, if any
func Payload(err error) []byte {
	var de *shared.DomainError
	if errors.As(err, &de) {
		return de.Payload
	}
	return nil
}
