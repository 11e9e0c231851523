package dispatch

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// WebhookOfferer posts assignment offers to a driver-app backend, falling back
// from a live WebSocket session when one is configured first.
type WebhookOfferer struct {
	Endpoint string
	Client   *http.Client
	WS       *WSRegistry // optional; tried before the webhook
}

func NewWebhookOfferer(endpoint string, ws *WSRegistry) *WebhookOfferer {
	return &WebhookOfferer{Endpoint: endpoint, Client: &http.Client{Timeout: 3 * time.Second}, WS: ws}
}

func (w *WebhookOfferer) Offer(driverID string, offer AssignmentOffer) error {
	if w.WS != nil {
		if err := w.WS.Offer(driverID, offer); err == nil {
			return nil
		} else if !errors.Is(err, ErrNoSession) {
			return err
		}
	}
	if w.Endpoint == "" {
		return ErrNoSession
	}
	body, err := json.Marshal(map[string]any{"driver_id": driverID, "offer": offer})
	if err != nil {
		return err
	}
	resp, err := w.Client.Post(w.Endpoint, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook offer status %d", resp.StatusCode)
	}
	return nil
}
