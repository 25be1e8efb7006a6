package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"lead-backend/internal/models"
	"lead-backend/internal/services"

	"github.com/gorilla/mux"
)

type BrokerHandler struct {
	Service *services.BrokerService
}

func NewBrokerHandler(s *services.BrokerService) *BrokerHandler {
	return &BrokerHandler{Service: s}
}

func (h *BrokerHandler) CreateBroker(w http.ResponseWriter, r *http.Request) {
	var req models.CreateBrokerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	broker, err := h.Service.CreateBroker(r.Context(), &req)
	if err != nil {
		http.Error(w, err.Error(), serviceErrorStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(broker)
}

func (h *BrokerHandler) GetBroker(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	broker, err := h.Service.GetBroker(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), serviceErrorStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(broker)
}

// ListBrokers returns the roster with today's assignment counts
func (h *BrokerHandler) ListBrokers(w http.ResponseWriter, r *http.Request) {
	brokers, err := h.Service.ListBrokers(r.Context())
	if err != nil {
		http.Error(w, err.Error(), serviceErrorStatus(err))
		return
	}

	if brokers == nil {
		brokers = []*models.BrokerDailyLoad{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(brokers)
}

func (h *BrokerHandler) UpdateBroker(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	var req models.UpdateBrokerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	broker, err := h.Service.UpdateBroker(r.Context(), id, &req)
	if err != nil {
		http.Error(w, err.Error(), serviceErrorStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(broker)
}

// Reorder replaces the roster ordering with the given broker id sequence
func (h *BrokerHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	var req models.ReorderBrokersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	brokers, err := h.Service.Reorder(r.Context(), &req)
	if err != nil {
		http.Error(w, err.Error(), serviceErrorStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(brokers)
}

func (h *BrokerHandler) DeleteBroker(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	if err := h.Service.DeleteBroker(r.Context(), id); err != nil {
		http.Error(w, err.Error(), serviceErrorStatus(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
