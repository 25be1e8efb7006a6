package handlers

import (
	"io"
	"log"
	"net/http"

	"lead-backend/internal/metrics"
	"lead-backend/internal/services"
	"lead-backend/internal/whatsapp"
)

// WebhookHandler receives provider callbacks. Parse failures are the
// caller's fault and get a 4xx; processing failures are logged and
// still acknowledged so the provider does not retry forever.
type WebhookHandler struct {
	Service     *services.WhatsAppService
	VerifyToken string
}

func NewWebhookHandler(service *services.WhatsAppService, verifyToken string) *WebhookHandler {
	return &WebhookHandler{
		Service:     service,
		VerifyToken: verifyToken,
	}
}

// VerifyMeta handles the Meta webhook subscription handshake
func (h *WebhookHandler) VerifyMeta(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	mode := q.Get("hub.mode")
	token := q.Get("hub.verify_token")
	challenge := q.Get("hub.challenge")

	if mode != "subscribe" || token == "" || token != h.VerifyToken {
		http.Error(w, "Verification failed", http.StatusForbidden)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(challenge))
}

// MetaWebhook handles inbound message batches from the Meta Cloud API
func (h *WebhookHandler) MetaWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	messages, err := whatsapp.ParseMetaWebhook(body)
	if err != nil {
		metrics.WebhookEventsTotal.WithLabelValues("meta", "parse_error").Inc()
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	for i := range messages {
		if err := h.Service.ProcessInbound(r.Context(), &messages[i], "meta"); err != nil {
			log.Printf("[Webhook] Failed to process Meta message from %s: %v", messages[i].From, err)
		}
	}

	w.WriteHeader(http.StatusOK)
}

// MaytapiWebhook handles inbound events from Maytapi
func (h *WebhookHandler) MaytapiWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	msg, err := whatsapp.ParseMaytapiWebhook(body)
	if err != nil {
		metrics.WebhookEventsTotal.WithLabelValues("maytapi", "parse_error").Inc()
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if msg == nil {
		// Status callbacks and outbound echoes
		metrics.WebhookEventsTotal.WithLabelValues("maytapi", "ignored").Inc()
		w.WriteHeader(http.StatusOK)
		return
	}

	if err := h.Service.ProcessInbound(r.Context(), msg, "maytapi"); err != nil {
		log.Printf("[Webhook] Failed to process Maytapi message from %s: %v", msg.From, err)
	}

	w.WriteHeader(http.StatusOK)
}
