package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/amishe1/lubex-bot/internal/domain/catalog"
	"github.com/amishe1/lubex-bot/internal/domain/shared"
	"github.com/amishe1/lubex-bot/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// Endpoint labels
const (
	EndpointListProducts = "products.list"
	EndpointGetProduct   = "products.get"
	EndpointCheckout     = "checkout"
	EndpointAdminCreate  = "admin.create"
	EndpointAdminUpdate  = "admin.update"
	EndpointAdminDelete  = "admin.delete"
)

// ListProducts fetches the full product catalog
func (c *Client) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	ctx, span := telemetry.StartSpan(ctx, "api", EndpointListProducts)
	defer span.End()

	resp, err := c.doJSON(ctx, EndpointListProducts, http.MethodGet, nil, nil, "products")
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if !resp.OK() {
		err := fmt.Errorf("list products: unexpected status %d", resp.StatusCode)
		telemetry.RecordError(span, err)
		return nil, err
	}

	var products []catalog.Product
	if err := json.Unmarshal(resp.Body, &products); err != nil {
		err = fmt.Errorf("list products: decoding response: %w", err)
		telemetry.RecordError(span, err)
		return nil, err
	}
	if products == nil {
		products = []catalog.Product{}
	}
	span.SetAttributes(attribute.Int("products.count", len(products)))
	return products, nil
}

// GetProduct fetches one product by id. A 404 returns a NotFound error.
func (c *Client) GetProduct(ctx context.Context, id catalog.ProductID) (*catalog.Product, error) {
	ctx, span := telemetry.StartSpan(ctx, "api", EndpointGetProduct, attribute.String("product.id", id.String()))
	defer span.End()

	resp, err := c.doJSON(ctx, EndpointGetProduct, http.MethodGet, nil, nil, "products", id.String())
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, shared.WrapDomainError(shared.CodeNotFound, "Product not found", fmt.Errorf("product %s", id))
	}
	if !resp.OK() {
		err := fmt.Errorf("get product: unexpected status %d", resp.StatusCode)
		telemetry.RecordError(span, err)
		return nil, err
	}

	var product catalog.Product
	if err := json.Unmarshal(resp.Body, &product); err != nil {
		err = fmt.Errorf("get product: decoding response: %w", err)
		telemetry.RecordError(span, err)
		return nil, err
	}
	return &product, nil
}
