package handlers

import (
	"encoding/json"
	"net/http"

	"lead-backend/internal/models"
	"lead-backend/internal/repositories"
)

type LeadStatusHandler struct {
	Repo *repositories.LeadStatusRepository
}

func NewLeadStatusHandler(repo *repositories.LeadStatusRepository) *LeadStatusHandler {
	return &LeadStatusHandler{Repo: repo}
}

// ListStatuses returns the pipeline status catalog for frontend dropdowns
func (h *LeadStatusHandler) ListStatuses(w http.ResponseWriter, r *http.Request) {
	statuses, err := h.Repo.List(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if statuses == nil {
		statuses = []*models.LeadStatusInfo{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(statuses)
}
