package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/amishe1/lubex-bot/internal/domain/catalog"
	"github.com/amishe1/lubex-bot/internal/domain/shared"
	"github.com/amishe1/lubex-bot/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// DefaultAdminHeader carries the admin credential
const DefaultAdminHeader = "x-admin-token"

// ProductPayload is the JSON body for admin create and update. ID is only
// sent on update.
type ProductPayload struct {
	ID          *catalog.ProductID `json:"id,omitempty"`
	Name        string             `json:"name"`
	Category    string             `json:"category"`
	Price       json.Number        `json:"price"`
	Stock       int                `json:"stock"`
	Description string             `json:"description"`
	ImageURL    string             `json:"image_url"`
}

// AdminClient attaches the admin credential to product-mutating calls
type AdminClient struct {
	client *Client
	header string
	token  string
}

// Admin returns an admin view of the client. An empty header uses
// DefaultAdminHeader.
func (c *Client) Admin(header, token string) *AdminClient {
	if header == "" {
		header = DefaultAdminHeader
	}
	return &AdminClient{client: c, header: header, token: token}
}

// Client returns the underlying API client
func (a *AdminClient) Client() *Client {
	return a.client
}

// Authorized reports whether a token is set
func (a *AdminClient) Authorized() bool {
	return a.token != ""
}

// CreateProduct posts a new product
func (a *AdminClient) CreateProduct(ctx context.Context, p ProductPayload) error {
	p.ID = nil
	return a.send(ctx, EndpointAdminCreate, http.MethodPost, p)
}

// UpdateProduct replaces the product identified by id
func (a *AdminClient) UpdateProduct(ctx context.Context, id catalog.ProductID, p ProductPayload) error {
	p.ID = &id
	return a.send(ctx, EndpointAdminUpdate, http.MethodPut, p)
}

// DeleteProduct removes a product
func (a *AdminClient) DeleteProduct(ctx context.Context, id catalog.ProductID) error {
	return a.send(ctx, EndpointAdminDelete, http.MethodDelete, struct {
		ID catalog.ProductID `json:"id"`
	}{ID: id})
}

func (a *AdminClient) send(ctx context.Context, endpoint, method string, body any) error {
	ctx, span := telemetry.StartSpan(ctx, "api", endpoint, attribute.String("http.method", method))
	defer span.End()

	if !a.Authorized() {
		return shared.NewValidationError("Admin token is required")
	}

	resp, err := a.client.doJSON(ctx, endpoint, method, body,
		map[string]string{a.header: a.token},
		"admin", "products",
	)
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	if _, err := classify(resp); err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	return nil
}
