package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"lead-backend/internal/models"
	"lead-backend/internal/services"

	"github.com/gorilla/mux"
)

type WhatsAppConnectionHandler struct {
	Service *services.WhatsAppService
}

func NewWhatsAppConnectionHandler(s *services.WhatsAppService) *WhatsAppConnectionHandler {
	return &WhatsAppConnectionHandler{Service: s}
}

func (h *WhatsAppConnectionHandler) CreateConnection(w http.ResponseWriter, r *http.Request) {
	var req models.CreateConnectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	conn, err := h.Service.CreateConnection(r.Context(), &req)
	if err != nil {
		http.Error(w, err.Error(), serviceErrorStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(conn)
}

func (h *WhatsAppConnectionHandler) GetConnection(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	conn, err := h.Service.GetConnection(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), serviceErrorStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(conn)
}

func (h *WhatsAppConnectionHandler) ListConnections(w http.ResponseWriter, r *http.Request) {
	conns, err := h.Service.ListConnections(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if conns == nil {
		conns = []*models.WhatsAppConnection{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(conns)
}

func (h *WhatsAppConnectionHandler) UpdateConnection(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	var req models.UpdateConnectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	conn, err := h.Service.UpdateConnection(r.Context(), id, &req)
	if err != nil {
		http.Error(w, err.Error(), serviceErrorStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(conn)
}

// SendMessage sends a text from the connection's phone
func (h *WhatsAppConnectionHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	var req models.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.Service.SendMessage(r.Context(), id, &req); err != nil {
		http.Error(w, err.Error(), serviceErrorStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Message sent"})
}

// GetQRCode proxies the provider's pairing screen for the connection
func (h *WhatsAppConnectionHandler) GetQRCode(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	raw, err := h.Service.ConnectionQR(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), serviceErrorStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(raw)
}

// RefreshStatus proxies the provider's live phone status and records it
func (h *WhatsAppConnectionHandler) RefreshStatus(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	raw, err := h.Service.RefreshConnectionStatus(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), serviceErrorStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(raw)
}

func (h *WhatsAppConnectionHandler) DeleteConnection(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	if err := h.Service.DeleteConnection(r.Context(), id); err != nil {
		http.Error(w, err.Error(), serviceErrorStatus(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
