package handlers

import (
	"net/http"

	"lead-backend/internal/middleware"
	"lead-backend/internal/services"
	"lead-backend/pkg/utils"
)

type DashboardHandler struct {
	Service *services.StatsService
}

func NewDashboardHandler(s *services.StatsService) *DashboardHandler {
	return &DashboardHandler{Service: s}
}

// Stats returns the aggregate dashboard numbers, scoped to the
// caller's own leads unless the caller is an admin
func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	callerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "User ID not found in context")
		return
	}
	callerRole, _ := middleware.GetRoleFromContext(r.Context())

	stats, err := h.Service.DashboardStats(r.Context(), callerID, callerRole)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Failed to compute dashboard stats")
		return
	}

	utils.RespondJSON(w, http.StatusOK, stats)
}
