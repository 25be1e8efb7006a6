package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"lead-backend/internal/services"
)

type ReportHandler struct {
	Service *services.ReportService
}

func NewReportHandler(service *services.ReportService) *ReportHandler {
	return &ReportHandler{Service: service}
}

// GetLeadsExcel handles GET /api/reports/leads/excel
// Accepts the same query filters as the lead list endpoint
func (h *ReportHandler) GetLeadsExcel(w http.ResponseWriter, r *http.Request) {
	filter := parseLeadFilter(r)

	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	data, filename, err := h.Service.LeadsExcel(ctx, filter)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to generate Excel report: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	w.Write(data)
}

// GetLeadsPDF handles GET /api/reports/leads/pdf
func (h *ReportHandler) GetLeadsPDF(w http.ResponseWriter, r *http.Request) {
	filter := parseLeadFilter(r)

	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	data, filename, err := h.Service.LeadsPDF(ctx, filter)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to generate PDF report: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	w.Write(data)
}
