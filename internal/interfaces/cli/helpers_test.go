package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	catalogapp "github.com/amishe1/lubex-bot/internal/application/catalog"
	cartapp "github.com/amishe1/lubex-bot/internal/application/cart"
	checkoutapp "github.com/amishe1/lubex-bot/internal/application/checkout"
	"github.com/amishe1/lubex-bot/internal/infrastructure/api"
	"github.com/amishe1/lubex-bot/internal/infrastructure/host"
	"github.com/amishe1/lubex-bot/internal/infrastructure/persistence"
	"github.com/stretchr/testify/require"
)

const productsJSON = `[
	{"id":1,"name":"Super 5W-30","category":"Engine Oils","price":1250,"stock":10,"description":"Fully synthetic","image_url":"https://img.example.com/1.jpg"},
	{"id":2,"name":"EP 90","category":"Gear Oils","price":900,"stock":5},
	{"id":3,"name":"Lithium Grease","category":"Greases","price":300.5,"stock":0}
]`

// fakeBackend serves the product and order APIs
type fakeBackend struct {
	mu            sync.Mutex
	checkoutReply string
	checkouts     []map[string]string
}

func (b *fakeBackend) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/products":
			_, _ = w.Write([]byte(productsJSON))
		case r.Method == http.MethodGet && r.URL.Path == "/api/products/2":
			_, _ = w.Write([]byte(`{"id":2,"name":"EP 90","category":"Gear Oils","price":900,"stock":5,"description":"Heavy duty gear oil"}`))
		case r.Method == http.MethodPost && r.URL.Path == "/api/checkout":
			require.NoError(t, r.ParseMultipartForm(1<<20))
			b.mu.Lock()
			b.checkouts = append(b.checkouts, map[string]string{
				"name":  r.FormValue("name"),
				"phone": r.FormValue("phone"),
				"items": r.FormValue("items"),
			})
			reply := b.checkoutReply
			b.mu.Unlock()
			_, _ = w.Write([]byte(reply))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

func newTestStorefront(t *testing.T, backend *fakeBackend) (*Storefront, *bytes.Buffer) {
	t.Helper()
	server := httptest.NewServer(backend.handler(t))
	t.Cleanup(server.Close)

	client, err := api.NewClient(api.Config{BaseURL: server.URL + "/api", Timeout: 2 * time.Second})
	require.NoError(t, err)

	ctx := context.Background()
	carts := cartapp.NewStore(ctx, persistence.NewMemoryStorage(), cartapp.DefaultKey)
	out := &bytes.Buffer{}
	return &Storefront{
		Catalog:  catalogapp.NewStore(client, nil, nil),
		Cart:     carts,
		Checkout: checkoutapp.NewCoordinator(client, carts),
		Host:     host.Nop{},
		Render:   NewRenderer("Birr"),
		Out:      out,
	}, out
}

func decodeItems(t *testing.T, raw string) []map[string]any {
	t.Helper()
	var items []map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &items))
	return items
}
