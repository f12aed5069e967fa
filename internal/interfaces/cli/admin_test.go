package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	adminapp "github.com/amishe1/lubex-bot/internal/application/admin"
	"github.com/amishe1/lubex-bot/internal/domain/shared"
	"github.com/amishe1/lubex-bot/internal/infrastructure/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type adminCall struct {
	Method string
	Body   map[string]any
}

type fakeAdminBackend struct {
	mu    sync.Mutex
	token string
	calls []adminCall
}

func (b *fakeAdminBackend) handler(t *testing.T) http.HandlerFunc {
	products := (&fakeBackend{}).handler(t)
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/admin/products" {
			products(w, r)
			return
		}
		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var body map[string]any
		require.NoError(t, json.Unmarshal(raw, &body))

		b.mu.Lock()
		b.calls = append(b.calls, adminCall{Method: r.Method, Body: body})
		b.mu.Unlock()

		if r.Header.Get(api.DefaultAdminHeader) != b.token {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"ok":false,"error":"unauthorized"}`))
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}
}

func runAdmin(t *testing.T, backend *fakeAdminBackend, args ...string) (string, error) {
	t.Helper()
	server := httptest.NewServer(backend.handler(t))
	t.Cleanup(server.Close)

	factory := func(_ context.Context, opts AdminOptions) (*AdminConsole, func(), error) {
		client, err := api.NewClient(api.Config{BaseURL: server.URL + "/api", Timeout: 2 * time.Second})
		if err != nil {
			return nil, nil, err
		}
		return &AdminConsole{
			Admin:  adminapp.NewCoordinator(client, client.Admin("", opts.Token)),
			Render: NewRenderer("Birr"),
		}, func() {}, nil
	}

	out := &bytes.Buffer{}
	cmd, cleanup := NewAdminCommand(factory, out)
	defer cleanup()
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestAdminCommand_List(t *testing.T) {
	out, err := runAdmin(t, &fakeAdminBackend{token: "secret"}, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Super 5W-30")
	assert.Contains(t, out, "stock 10")
	assert.Contains(t, out, "1,250 Birr")
}

func TestAdminCommand_Create(t *testing.T) {
	backend := &fakeAdminBackend{token: "secret"}
	out, err := runAdmin(t, backend, "--token", "secret", "create",
		"--name", "ATF Dexron", "--category", "Gear Oils", "--price", "780.50", "--stock", "12")
	require.NoError(t, err)
	assert.Contains(t, out, "Product created.")

	require.Len(t, backend.calls, 1)
	call := backend.calls[0]
	assert.Equal(t, http.MethodPost, call.Method)
	assert.Equal(t, "ATF Dexron", call.Body["name"])
	assert.EqualValues(t, 780.5, call.Body["price"])
	assert.EqualValues(t, 12, call.Body["stock"])
	assert.NotContains(t, call.Body, "id")
}

func TestAdminCommand_CreateRequiresNameAndPrice(t *testing.T) {
	backend := &fakeAdminBackend{token: "secret"}
	_, err := runAdmin(t, backend, "--token", "secret", "create", "--name", "ATF", "--price", "cheap")
	assert.ErrorIs(t, err, shared.ErrValidation)
	assert.Empty(t, backend.calls)
}

func TestAdminCommand_UpdateKeepsUnsetFields(t *testing.T) {
	backend := &fakeAdminBackend{token: "secret"}
	out, err := runAdmin(t, backend, "--token", "secret", "update", "2", "--price", "950")
	require.NoError(t, err)
	assert.Contains(t, out, "Product updated.")

	require.Len(t, backend.calls, 1)
	body := backend.calls[0].Body
	assert.Equal(t, http.MethodPut, backend.calls[0].Method)
	assert.EqualValues(t, 2, body["id"])
	assert.Equal(t, "EP 90", body["name"])
	assert.Equal(t, "Heavy duty gear oil", body["description"])
	assert.EqualValues(t, 950, body["price"])
	assert.EqualValues(t, 5, body["stock"])
}

func TestAdminCommand_DeleteRejected(t *testing.T) {
	backend := &fakeAdminBackend{token: "secret"}
	out, err := runAdmin(t, backend, "--token", "wrong", "delete", "3")
	assert.ErrorIs(t, err, shared.ErrApplication)
	assert.Equal(t, "Failed: {\"ok\":false,\"error\":\"unauthorized\"}\n", out)

	require.Len(t, backend.calls, 1)
	assert.Equal(t, http.MethodDelete, backend.calls[0].Method)
	assert.EqualValues(t, 3, backend.calls[0].Body["id"])
}

func TestAdminCommand_MissingToken(t *testing.T) {
	backend := &fakeAdminBackend{token: "secret"}
	out, err := runAdmin(t, backend, "delete", "3")
	assert.ErrorIs(t, err, shared.ErrValidation)
	assert.True(t, strings.HasPrefix(out, "Failed: Admin token is required"))
	assert.Empty(t, backend.calls)
}

func TestMergeChanged(t *testing.T) {
	cmd, _ := NewAdminCommand(nil, io.Discard)
	update, _, err := cmd.Find([]string{"update"})
	require.NoError(t, err)
	require.NoError(t, update.Flags().Parse([]string{"--stock", "0", "--name", "New"}))

	base := adminapp.ProductFields{Name: "Old", Price: "10", Stock: "4", Category: "Greases"}
	got := mergeChanged(update.Flags(), base, adminapp.ProductFields{Name: "New", Stock: "0"})
	assert.Equal(t, adminapp.ProductFields{Name: "New", Price: "10", Stock: "0", Category: "Greases"}, got)
}
