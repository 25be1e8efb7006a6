package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"lead-backend/internal/distribution"
	"lead-backend/internal/middleware"
	"lead-backend/internal/models"
	"lead-backend/internal/repositories"
	"lead-backend/internal/services"

	"github.com/gorilla/mux"
)

type LeadHandler struct {
	Service *services.LeadService
}

func NewLeadHandler(s *services.LeadService) *LeadHandler {
	return &LeadHandler{Service: s}
}

// serviceErrorStatus maps service errors to HTTP status codes
func serviceErrorStatus(err error) int {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, distribution.ErrLeadNotFound):
		return http.StatusNotFound
	case errors.Is(err, distribution.ErrAlreadyAssigned):
		return http.StatusConflict
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, services.ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *LeadHandler) CreateLead(w http.ResponseWriter, r *http.Request) {
	var req models.CreateLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	lead, err := h.Service.CreateLead(r.Context(), &req)
	if err != nil {
		http.Error(w, err.Error(), serviceErrorStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(lead)
}

func (h *LeadHandler) GetLead(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	callerID, _ := middleware.GetUserIDFromContext(r.Context())
	callerRole, _ := middleware.GetRoleFromContext(r.Context())

	lead, err := h.Service.GetLead(r.Context(), id, callerID, callerRole)
	if err != nil {
		http.Error(w, err.Error(), serviceErrorStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(lead)
}

// ListLeads returns leads matching the query filters. Brokers only
// ever see their own leads regardless of filters.
func (h *LeadHandler) ListLeads(w http.ResponseWriter, r *http.Request) {
	callerID, _ := middleware.GetUserIDFromContext(r.Context())
	callerRole, _ := middleware.GetRoleFromContext(r.Context())

	filter := parseLeadFilter(r)
	leads, err := h.Service.ListLeads(r.Context(), filter, callerID, callerRole)
	if err != nil {
		http.Error(w, err.Error(), serviceErrorStatus(err))
		return
	}

	if leads == nil {
		leads = []*models.Lead{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(leads)
}

func parseLeadFilter(r *http.Request) *models.LeadFilter {
	q := r.URL.Query()
	filter := &models.LeadFilter{
		Status: q.Get("status"),
		Source: q.Get("source"),
		Search: q.Get("search"),
	}
	if v := q.Get("broker_id"); v != "" {
		if id, err := strconv.Atoi(v); err == nil {
			filter.AssignedBrokerID = &id
		}
	}
	if q.Get("unassigned") == "true" {
		filter.Unassigned = true
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Limit = n
		}
	}
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Offset = n
		}
	}
	return filter
}

func (h *LeadHandler) UpdateLead(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	callerID, _ := middleware.GetUserIDFromContext(r.Context())
	callerRole, _ := middleware.GetRoleFromContext(r.Context())

	var req models.UpdateLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	lead, err := h.Service.UpdateLead(r.Context(), id, &req, callerID, callerRole)
	if err != nil {
		http.Error(w, err.Error(), serviceErrorStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(lead)
}

// Distribute runs the assignment pass for an unassigned lead. A nil
// broker in the response means every active broker is at capacity.
func (h *LeadHandler) Distribute(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	broker, err := h.Service.Distribute(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), serviceErrorStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if broker == nil {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"assigned": false,
			"message":  "All active brokers are at their daily limit",
		})
		return
	}
	json.NewEncoder(w).Encode(map[string]interface{}{
		"assigned": true,
		"broker":   broker,
	})
}

// DistributionHistory returns the assignment ledger entries for one lead
func (h *LeadHandler) DistributionHistory(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	callerID, _ := middleware.GetUserIDFromContext(r.Context())
	callerRole, _ := middleware.GetRoleFromContext(r.Context())

	history, err := h.Service.DistributionHistory(r.Context(), id, callerID, callerRole)
	if err != nil {
		http.Error(w, err.Error(), serviceErrorStatus(err))
		return
	}

	if history == nil {
		history = []*models.LeadDistribution{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(history)
}

func (h *LeadHandler) DeleteLead(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	if err := h.Service.DeleteLead(r.Context(), id); err != nil {
		http.Error(w, err.Error(), serviceErrorStatus(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
