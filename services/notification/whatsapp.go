// File: services/notification/whatsapp.go
package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"flowdesk/config"
)

// Messenger is the third-party messaging channel (WhatsApp-style gateway).
type Messenger interface {
	// Connected reports whether the outbound gateway session is live.
	Connected() bool
	SendText(ctx context.Context, phone, text string) error
}

// WhatsAppMessenger talks to a Green-API style WhatsApp gateway instance.
// The instance connection state is polled lazily and cached briefly so
// every dispatch does not hit the gateway twice.
type WhatsAppMessenger struct {
	baseURL  string
	instance string
	token    string
	client   *http.Client

	mu           sync.Mutex
	connected    bool
	stateChecked time.Time
}

const stateCacheTTL = time.Minute

// NewWhatsAppMessenger returns nil when the gateway is not configured;
// the dispatcher then skips the channel.
func NewWhatsAppMessenger() *WhatsAppMessenger {
	cfg := config.AppConfig
	if cfg.WhatsAppBaseURL == "" || cfg.WhatsAppInstance == "" {
		return nil
	}
	return &WhatsAppMessenger{
		baseURL:  strings.TrimRight(cfg.WhatsAppBaseURL, "/"),
		instance: cfg.WhatsAppInstance,
		token:    cfg.WhatsAppToken,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// Connected checks the gateway instance state, with a short-lived cache.
func (m *WhatsAppMessenger) Connected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if time.Since(m.stateChecked) < stateCacheTTL {
		return m.connected
	}
	m.stateChecked = time.Now()
	m.connected = m.checkState()
	return m.connected
}

func (m *WhatsAppMessenger) checkState() bool {
	url := fmt.Sprintf("%s/waInstance%s/getStateInstance/%s", m.baseURL, m.instance, m.token)
	resp, err := m.client.Get(url)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	var state struct {
		StateInstance string `json:"stateInstance"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		return false
	}
	return state.StateInstance == "authorized"
}

// SendText sends a plain text message to the phone number.
func (m *WhatsAppMessenger) SendText(ctx context.Context, phone, text string) error {
	payload, err := json.Marshal(map[string]string{
		"chatId":  strings.TrimPrefix(phone, "+") + "@c.us",
		"message": text,
	})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/waInstance%s/sendMessage/%s", m.baseURL, m.instance, m.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("whatsapp gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("whatsapp gateway returned status %d", resp.StatusCode)
	}
	return nil
}
