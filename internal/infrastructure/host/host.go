// Package host integrates with the surface embedding the storefront: it
// asks the host to expand on start and to close after an order. Both are
// best-effort.
package host

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/amishe1/lubex-bot/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// Surface is the embedding host
type Surface interface {
	Expand(ctx context.Context)
	Close(ctx context.Context, orderID string)
}

// Nop is used when no host is configured
type Nop struct{}

// Expand does nothing
func (Nop) Expand(context.Context) {}

// Close does nothing
func (Nop) Close(context.Context, string) {}

// WebhookConfig holds the host callback endpoints
type WebhookConfig struct {
	ExpandURL string
	CloseURL  string
	Timeout   time.Duration
}

// Webhook notifies the host by POSTing to its callback URLs. Failures are
// logged at debug and never returned.
type Webhook struct {
	cfg    WebhookConfig
	client *http.Client
	logger *zap.Logger
}

// New returns a Webhook for cfg, or Nop when no URL is configured
func New(cfg WebhookConfig, l *zap.Logger) Surface {
	if cfg.ExpandURL == "" && cfg.CloseURL == "" {
		return Nop{}
	}
	return NewWebhook(cfg, l)
}

// NewWebhook creates a webhook host
func NewWebhook(cfg WebhookConfig, l *zap.Logger) *Webhook {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 3 * time.Second
	}
	if l == nil {
		l = zap.NewNop()
	}
	return &Webhook{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: l,
	}
}

// Expand asks the host to give the storefront its full viewport
func (w *Webhook) Expand(ctx context.Context) {
	w.notify(ctx, w.cfg.ExpandURL, map[string]string{"event": "expand"})
}

// Close asks the host to close the storefront after an order
func (w *Webhook) Close(ctx context.Context, orderID string) {
	w.notify(ctx, w.cfg.CloseURL, map[string]string{"event": "close", "orderId": orderID})
}

func (w *Webhook) notify(ctx context.Context, url string, payload map[string]string) {
	if url == "" {
		return
	}
	log := logger.Enrich(ctx, w.logger).With(zap.String("event", payload["event"]))
	if err := w.post(ctx, url, payload); err != nil {
		log.Debug("Host callback failed", zap.Error(err))
		return
	}
	log.Debug("Host callback delivered")
}

func (w *Webhook) post(ctx context.Context, url string, payload map[string]string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}
