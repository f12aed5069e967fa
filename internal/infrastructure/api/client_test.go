package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/amishe1/lubex-bot/internal/domain/cart"
	"github.com/amishe1/lubex-bot/internal/domain/catalog"
	"github.com/amishe1/lubex-bot/internal/domain/checkout"
	"github.com/amishe1/lubex-bot/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(Config{
		BaseURL:   server.URL + "/api",
		Timeout:   2 * time.Second,
		UserAgent: "lubex-test/1.0",
	})
	require.NoError(t, err)
	return client
}

func checkoutRequest(t *testing.T) *checkout.Request {
	t.Helper()
	c := cart.Empty().
		Add(catalog.Product{ID: catalog.NewProductID("p1"), Name: "Engine oil", Price: decimal.NewFromInt(100)}, 2).
		Add(catalog.Product{ID: catalog.NewNumericProductID(7), Name: "Grease", Price: decimal.NewFromInt(40)}, 1)
	req, err := checkout.NewRequest(checkout.CustomerInfo{
		Name:    "Abebe",
		Phone:   "0911000000",
		Address: "Bole, Addis Ababa",
	}, c, "key-1")
	require.NoError(t, err)
	return req
}

func TestNewClient(t *testing.T) {
	t.Run("requires base url", func(t *testing.T) {
		_, err := NewClient(Config{})
		assert.Error(t, err)
	})

	t.Run("rejects relative base url", func(t *testing.T) {
		_, err := NewClient(Config{BaseURL: "/api"})
		assert.Error(t, err)
	})

	t.Run("keeps base path when joining", func(t *testing.T) {
		client, err := NewClient(Config{BaseURL: "http://shop.example.com/api/"})
		require.NoError(t, err)
		assert.Equal(t, "http://shop.example.com/api/products/a%20b", client.buildURL("products", "a b").String())
	})
}

func TestClient_ListProducts(t *testing.T) {
	t.Run("decodes the product array", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "/api/products", r.URL.Path)
			assert.Equal(t, "application/json", r.Header.Get("Accept"))
			assert.Equal(t, "lubex-test/1.0", r.Header.Get("User-Agent"))
			assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
			_, _ = w.Write([]byte(`[{"id":1,"name":"Gear oil","category":"Gear Oils","price":"1250","stock":3},{"id":"x2","name":"Grease","category":"Greases","price":90}]`))
		})

		products, err := client.ListProducts(context.Background())
		require.NoError(t, err)
		require.Len(t, products, 2)
		assert.Equal(t, catalog.NewNumericProductID(1), products[0].ID)
		assert.True(t, products[0].Price.Equal(decimal.NewFromInt(1250)))
		assert.Equal(t, "x2", products[1].ID.String())
	})

	t.Run("null body is an empty catalog", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`null`))
		})

		products, err := client.ListProducts(context.Background())
		require.NoError(t, err)
		assert.Empty(t, products)
	})

	t.Run("server error is returned", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})

		_, err := client.ListProducts(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "500")
	})

	t.Run("undecodable body is returned", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html>`))
		})

		_, err := client.ListProducts(context.Background())
		assert.Error(t, err)
	})
}

func TestClient_GetProduct(t *testing.T) {
	t.Run("fetches by id", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/products/42", r.URL.Path)
			_, _ = w.Write([]byte(`{"id":42,"name":"Hydraulic oil","price":300}`))
		})

		p, err := client.GetProduct(context.Background(), catalog.NewNumericProductID(42))
		require.NoError(t, err)
		assert.Equal(t, "Hydraulic oil", p.Name)
	})

	t.Run("404 is not found", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})

		_, err := client.GetProduct(context.Background(), catalog.NewProductID("missing"))
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestClient_Checkout(t *testing.T) {
	t.Run("sends a multipart form and returns the order id", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/api/checkout", r.URL.Path)
			assert.Equal(t, "key-1", r.Header.Get(IdempotencyHeader))
			require.NoError(t, r.ParseMultipartForm(1<<20))

			assert.Equal(t, "Abebe", r.FormValue("name"))
			assert.Equal(t, "0911000000", r.FormValue("phone"))
			assert.Equal(t, "Bole, Addis Ababa", r.FormValue("address"))
			assert.Equal(t, "", r.FormValue("notes"))
			assert.JSONEq(t, `[{"product_id":"p1","quantity":2},{"product_id":7,"quantity":1}]`, r.FormValue("items"))

			_, _, err := r.FormFile("photo")
			assert.ErrorIs(t, err, http.ErrMissingFile)

			_, _ = w.Write([]byte(`{"ok":true,"orderId":1001}`))
		})

		receipt, err := client.Checkout(context.Background(), checkoutRequest(t))
		require.NoError(t, err)
		assert.Equal(t, "1001", receipt.OrderID)
	})

	t.Run("attaches the photo part", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseMultipartForm(1<<20))
			f, header, err := r.FormFile("photo")
			require.NoError(t, err)
			defer f.Close()
			data, err := io.ReadAll(f)
			require.NoError(t, err)

			assert.Equal(t, "receipt.png", header.Filename)
			assert.Equal(t, "image/png", header.Header.Get("Content-Type"))
			assert.Equal(t, []byte("png-bytes"), data)
			_, _ = w.Write([]byte(`{"ok":true,"orderId":"ord-9"}`))
		})

		req := checkoutRequest(t)
		req.Customer.Photo = &checkout.Attachment{Filename: "receipt.png", ContentType: "image/png", Data: []byte("png-bytes")}

		receipt, err := client.Checkout(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, "ord-9", receipt.OrderID)
	})

	t.Run("ok false is an application error with the server reason", func(t *testing.T) {
		body := `{"ok":false,"reason":"out_of_stock"}`
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(body))
		})

		_, err := client.Checkout(context.Background(), checkoutRequest(t))
		require.ErrorIs(t, err, shared.ErrApplication)
		assert.Equal(t, "out_of_stock", shared.Reason(err))

		var de *shared.DomainError
		require.True(t, errors.As(err, &de))
		assert.JSONEq(t, body, string(de.Payload))
	})

	t.Run("non-2xx json error is an application error", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"ok":false,"error":"invalid items"}`))
		})

		_, err := client.Checkout(context.Background(), checkoutRequest(t))
		require.ErrorIs(t, err, shared.ErrApplication)
		assert.Equal(t, "invalid items", shared.Reason(err))
	})

	t.Run("malformed response is a network error", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html>bad gateway</html>`))
		})

		_, err := client.Checkout(context.Background(), checkoutRequest(t))
		assert.ErrorIs(t, err, shared.ErrNetwork)
	})

	t.Run("success without an order id is a network error", func(t *testing.T) {
		for _, body := range []string{`{"ok":true}`, `{"ok":true,"orderId":""}`, `{"ok":true,"orderId":{"n":1}}`} {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			})

			receipt, err := client.Checkout(context.Background(), checkoutRequest(t))
			assert.ErrorIs(t, err, shared.ErrNetwork, body)
			assert.Nil(t, receipt, body)
		}
	})

	t.Run("html 502 is a network error", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(`<html>bad gateway</html>`))
		})

		_, err := client.Checkout(context.Background(), checkoutRequest(t))
		assert.ErrorIs(t, err, shared.ErrNetwork)
	})

	t.Run("timeout is a network error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}))
		t.Cleanup(server.Close)

		client, err := NewClient(Config{BaseURL: server.URL, Timeout: 50 * time.Millisecond})
		require.NoError(t, err)

		_, err = client.Checkout(context.Background(), checkoutRequest(t))
		assert.ErrorIs(t, err, shared.ErrNetwork)
	})
}

func TestAdminClient(t *testing.T) {
	t.Run("create sends the credential header and json body", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/api/admin/products", r.URL.Path)
			assert.Equal(t, "secret", r.Header.Get("x-admin-token"))
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

			body, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			assert.JSONEq(t, `{"name":"Grease","category":"Greases","price":120.5,"stock":0,"description":"","image_url":""}`, string(body))
			_, _ = w.Write([]byte(`{"ok":true}`))
		})

		err := client.Admin("", "secret").CreateProduct(context.Background(), ProductPayload{
			Name:     "Grease",
			Category: "Greases",
			Price:    json.Number("120.5"),
		})
		assert.NoError(t, err)
	})

	t.Run("update includes the id", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPut, r.Method)
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, float64(9), body["id"])
			_, _ = w.Write([]byte(`{"ok":true}`))
		})

		err := client.Admin("", "secret").UpdateProduct(context.Background(), catalog.NewNumericProductID(9), ProductPayload{
			Name:  "Gear oil",
			Price: json.Number("10"),
		})
		assert.NoError(t, err)
	})

	t.Run("delete sends only the id", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodDelete, r.Method)
			assert.Equal(t, "tok", r.Header.Get("x-custom-admin"))
			body, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			assert.JSONEq(t, `{"id":"p1"}`, string(body))
			_, _ = w.Write([]byte(`{"ok":true}`))
		})

		err := client.Admin("x-custom-admin", "tok").DeleteProduct(context.Background(), catalog.NewProductID("p1"))
		assert.NoError(t, err)
	})

	t.Run("failure carries the raw payload", func(t *testing.T) {
		body := `{"ok":false,"error":"unauthorized","detail":{"hint":"check token"}}`
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(body))
		})

		err := client.Admin("", "wrong").DeleteProduct(context.Background(), catalog.NewProductID("p1"))
		require.ErrorIs(t, err, shared.ErrApplication)

		var de *shared.DomainError
		require.True(t, errors.As(err, &de))
		assert.Equal(t, "unauthorized", de.Message)
		assert.JSONEq(t, body, string(de.Payload))
	})

	t.Run("missing token never calls the server", func(t *testing.T) {
		calls := 0
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			calls++
		})

		err := client.Admin("", "").CreateProduct(context.Background(), ProductPayload{Name: "x", Price: json.Number("1")})
		assert.ErrorIs(t, err, shared.ErrValidation)
		assert.Zero(t, calls)
	})
}

func TestParseEnvelope(t *testing.T) {
	cases := []struct {
		name    string
		body    string
		hasOK   bool
		ok      bool
		orderID string
		reason  string
	}{
		{"ok with numeric id", `{"ok":true,"orderId":12}`, true, true, "12", `{"ok":true,"orderId":12}`},
		{"ok with string id", `{"ok":true,"orderId":"A-1"}`, true, true, "A-1", `{"ok":true,"orderId":"A-1"}`},
		{"reason field", `{"ok":false,"reason":"out_of_stock"}`, true, false, "", "out_of_stock"},
		{"message field", `{"ok":false,"message":"closed"}`, true, false, "", "closed"},
		{"nested error", `{"ok":false,"error":{"message":"bad phone"}}`, true, false, "", "bad phone"},
		{"no reason falls back to body", `{"ok":false}`, true, false, "", `{"ok":false}`},
		{"no ok field", `{"error":"nope"}`, false, false, "", "nope"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env, hasOK, err := parseEnvelope([]byte(tc.body))
			require.NoError(t, err)
			assert.Equal(t, tc.hasOK, hasOK)
			assert.Equal(t, tc.ok, env.OK)
			assert.Equal(t, tc.orderID, env.OrderID)
			assert.Equal(t, tc.reason, env.Reason)
		})
	}

	t.Run("non-object is an error", func(t *testing.T) {
		for _, body := range []string{`[]`, `"ok"`, `null`, `<html>`} {
			_, _, err := parseEnvelope([]byte(body))
			assert.Error(t, err, body)
		}
	})

	t.Run("non-boolean ok is an error", func(t *testing.T) {
		_, _, err := parseEnvelope([]byte(`{"ok":"yes"}`))
		assert.Error(t, err)
	})
}

func TestClient_PropagatesTraceContext(t *testing.T) {
	before := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { otel.SetTextMapPropagator(before) })

	var traceparent, requestID string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		traceparent = r.Header.Get("Traceparent")
		requestID = r.Header.Get("X-Request-ID")
		_, _ = w.Write([]byte(`[]`))
	})

	traceID, _ := trace.TraceIDFromHex("0102030405060708090a0b0c0d0e0f10")
	spanID, _ := trace.SpanIDFromHex("0102030405060708")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	_, err := client.ListProducts(ctx)
	require.NoError(t, err)
	assert.Contains(t, traceparent, traceID.String())
	assert.NotEmpty(t, requestID)
}
