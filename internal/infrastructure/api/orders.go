package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/amishe1/lubex-bot/internal/domain/checkout"
	"github.com/amishe1/lubex-bot/internal/domain/shared"
	"github.com/amishe1/lubex-bot/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// IdempotencyHeader carries the per-attempt key on checkout
const IdempotencyHeader = "Idempotency-Key"

// Checkout submits an order as a multipart form: the customer fields, the
// item list as a JSON "items" field and an optional "photo" file.
func (c *Client) Checkout(ctx context.Context, req *checkout.Request) (*checkout.Receipt, error) {
	ctx, span := telemetry.StartSpan(ctx, "api", EndpointCheckout,
		attribute.Int("checkout.items", len(req.Items)),
	)
	defer span.End()

	body, contentType, err := encodeCheckoutForm(req)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	headers := map[string]string{}
	if req.IdempotencyKey != "" {
		headers[IdempotencyHeader] = req.IdempotencyKey
	}

	resp, err := c.Do(ctx, Request{
		Endpoint:    EndpointCheckout,
		Method:      http.MethodPost,
		Path:        []string{"checkout"},
		Headers:     headers,
		Body:        body,
		ContentType: contentType,
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	env, err := classify(resp)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if strings.TrimSpace(env.OrderID) == "" {
		err := shared.NewNetworkError(errors.New("checkout response has no orderId"))
		telemetry.RecordError(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.String("order.id", env.OrderID))
	return &checkout.Receipt{OrderID: env.OrderID}, nil
}

func encodeCheckoutForm(req *checkout.Request) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := []struct{ name, value string }{
		{"name", req.Customer.Name},
		{"phone", req.Customer.Phone},
		{"address", req.Customer.Address},
		{"notes", req.Customer.Notes},
	}
	for _, f := range fields {
		if err := w.WriteField(f.name, f.value); err != nil {
			return nil, "", fmt.Errorf("writing form field %s: %w", f.name, err)
		}
	}

	items, err := json.Marshal(req.Items)
	if err != nil {
		return nil, "", fmt.Errorf("encoding items: %w", err)
	}
	if err := w.WriteField("items", string(items)); err != nil {
		return nil, "", fmt.Errorf("writing form field items: %w", err)
	}

	if photo := req.Customer.Photo; photo != nil && len(photo.Data) > 0 {
		h := make(textproto.MIMEHeader)
		filename := photo.Filename
		if filename == "" {
			filename = "photo"
		}
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="photo"; filename=%q`, filename))
		contentType := photo.ContentType
		if contentType == "" {
			contentType = http.DetectContentType(photo.Data)
		}
		h.Set("Content-Type", contentType)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("creating photo part: %w", err)
		}
		if _, err := part.Write(photo.Data); err != nil {
			return nil, "", fmt.Errorf("writing photo part: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("closing form: %w", err)
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}
