// Package notify posts operator alerts to an ntfy-style plain-text webhook.
package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Webhook delivers alerts to one endpoint.
type Webhook struct {
	client   *http.Client
	endpoint string
}

func NewWebhook(endpoint string, client *http.Client) *Webhook {
	return &Webhook{client: client, endpoint: endpoint}
}

func (w *Webhook) Notify(ctx context.Context, message string) error {
	return Send(ctx, w.client, w.endpoint, message)
}

// Send posts message as text/plain to endpoint.
func Send(ctx context.Context, client *http.Client, endpoint, message string) error {
	c := client
	if c == nil {
		c = http.DefaultClient
	}
	if endpoint == "" {
		return fmt.Errorf("alert webhook endpoint is empty")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(message))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "text/plain")

	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("alert webhook failed: status=%d", resp.StatusCode)
	}
	return nil
}
