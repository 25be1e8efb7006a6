package handlers

import (
	"net/http"
	"strconv"
	"time"

	"lead-backend/internal/models"
	"lead-backend/internal/repositories"
	"lead-backend/internal/timeutil"
	"lead-backend/pkg/utils"
)

// DistributionHandler exposes the assignment ledger to admins
type DistributionHandler struct {
	Repo *repositories.DistributionRepository
}

func NewDistributionHandler(repo *repositories.DistributionRepository) *DistributionHandler {
	return &DistributionHandler{Repo: repo}
}

// ListDistributions returns ledger entries matching the query filters,
// newest first
func (h *DistributionHandler) ListDistributions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := &models.DistributionFilter{
		Method: q.Get("method"),
	}

	if v := q.Get("lead_id"); v != "" {
		if id, err := strconv.Atoi(v); err == nil {
			filter.LeadID = &id
		}
	}
	if v := q.Get("broker_id"); v != "" {
		if id, err := strconv.Atoi(v); err == nil {
			filter.BrokerID = &id
		}
	}
	if v := q.Get("from"); v != "" {
		t, err := time.ParseInLocation(timeutil.DateLayout, v, time.UTC)
		if err != nil {
			http.Error(w, "Invalid from date, expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		filter.From = &t
	}
	if v := q.Get("to"); v != "" {
		t, err := time.ParseInLocation(timeutil.DateLayout, v, time.UTC)
		if err != nil {
			http.Error(w, "Invalid to date, expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		// Make the upper bound inclusive of the named day
		end := t.AddDate(0, 0, 1)
		filter.To = &end
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

	dists, err := h.Repo.List(r.Context(), filter)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Failed to list distributions")
		return
	}

	if dists == nil {
		dists = []*models.LeadDistribution{}
	}

	utils.RespondJSON(w, http.StatusOK, dists)
}
