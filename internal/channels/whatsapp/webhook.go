package whatsapp

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/djenggot/orderbot/pkg/logging"
)

// WebhookHandler handles Cloud API webhook verification and inbound messages.
//
// onMessage reports whether the message was accepted; when the dispatcher's
// inbound queue is full the handler answers 429 so Meta redelivers later.
type WebhookHandler struct {
	verifyToken string
	appSecret   string
	onMessage   func(msg ParsedInboundMessage) bool
	logger      *logging.Logger
}

// NewWebhookHandler creates a webhook handler.
func NewWebhookHandler(verifyToken, appSecret string, onMessage func(ParsedInboundMessage) bool, logger *logging.Logger) *WebhookHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &WebhookHandler{
		verifyToken: verifyToken,
		appSecret:   appSecret,
		onMessage:   onMessage,
		logger:      logger,
	}
}

// HandleVerification handles the GET webhook verification challenge from Meta.
func (h *WebhookHandler) HandleVerification(w http.ResponseWriter, r *http.Request) {
	mode := r.URL.Query().Get("hub.mode")
	token := r.URL.Query().Get("hub.verify_token")
	challenge := r.URL.Query().Get("hub.challenge")

	if mode == "subscribe" && token == h.verifyToken {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, challenge)
		return
	}

	http.Error(w, "Forbidden", http.StatusForbidden)
}

// HandleInbound handles POST webhook events (incoming messages).
func (h *WebhookHandler) HandleInbound(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	signature := r.Header.Get("X-Hub-Signature-256")
	if !VerifySignature(h.appSecret, body, signature) {
		h.logger.Warn("rejecting webhook with bad signature")
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var event WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	accepted := true
	for _, msg := range ParseWebhookEvent(event) {
		if h.onMessage != nil && !h.onMessage(msg) {
			accepted = false
		}
	}
	if !accepted {
		// Queue full; ask Meta to redeliver rather than buffering unboundedly.
		http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// ParseWebhookEvent extracts the text messages from a webhook event.
func ParseWebhookEvent(event WebhookEvent) []ParsedInboundMessage {
	var messages []ParsedInboundMessage

	for _, entry := range event.Entry {
		for _, change := range entry.Changes {
			if change.Field != "messages" {
				continue
			}
			for _, m := range change.Value.Messages {
				if m.Type != "text" || m.Text == nil {
					continue
				}
				messages = append(messages, ParsedInboundMessage{
					SenderID:  m.From,
					MessageID: m.ID,
					Body:      m.Text.Body,
					IsGroup:   m.GroupID != "" || isGroupSender(m.From),
				})
			}
		}
	}

	return messages
}

// isGroupSender recognizes group-style JIDs from bridged transports,
// e.g. "628123456789-1631234567@g.us".
func isGroupSender(from string) bool {
	return strings.HasSuffix(from, "@g.us") || strings.Contains(from, "-")
}

// VerifySignature verifies the X-Hub-Signature-256 header.
func VerifySignature(appSecret string, body []byte, signature string) bool {
	if appSecret == "" || signature == "" {
		return false
	}

	// Signature format: "sha256=<hex>"
	const prefix = "sha256="
	if len(signature) <= len(prefix) {
		return false
	}
	sigHex := signature[len(prefix):]

	mac := hmac.New(sha256.New, []byte(appSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(sigHex))
}
