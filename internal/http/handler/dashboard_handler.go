package handler

import (
	"net/http"
	"time"

	"github.com/khiva-consulting/backoffice-api/internal/service"
	"go.uber.org/zap"
)

type DashboardHandler struct {
	dashboardService *service.DashboardService
	logger           *zap.Logger
}

func NewDashboardHandler(dashboardService *service.DashboardService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		logger:           logger,
	}
}

// Overview godoc
// @Summary Get the main dashboard: revenue, clients, debt and acquisition channels
// @Tags Dashboard
// @Produce json
// @Success 200 {object} domain.OverviewDashboardDTO
// @Security BearerAuth
// @Router /dashboard/overview [get]
func (h *DashboardHandler) Overview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.dashboardService.Overview(r.Context())
	if err != nil {
		h.logger.Error("failed to build overview dashboard", zap.Error(err))
		respondServiceError(w, err, "Failed to build dashboard")
		return
	}
	respondJSON(w, http.StatusOK, overview)
}

// Contracts godoc
// @Summary Get contract statistics over a date range
// @Tags Dashboard
// @Produce json
// @Param from query string false "Range start (YYYY-MM-DD), defaults to 30 days ago"
// @Param to query string false "Range end (YYYY-MM-DD), defaults to today"
// @Success 200 {object} domain.ContractsDashboardDTO
// @Security BearerAuth
// @Router /dashboard/contracts [get]
func (h *DashboardHandler) Contracts(w http.ResponseWriter, r *http.Request) {
	from, to := parseRange(r)
	stats, err := h.dashboardService.Contracts(r.Context(), from, to)
	if err != nil {
		h.logger.Error("failed to build contracts dashboard", zap.Error(err))
		respondServiceError(w, err, "Failed to build dashboard")
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

// Leads godoc
// @Summary Get lead funnel statistics over a date range
// @Tags Dashboard
// @Produce json
// @Param from query string false "Range start (YYYY-MM-DD), defaults to 30 days ago"
// @Param to query string false "Range end (YYYY-MM-DD), defaults to today"
// @Success 200 {object} domain.LeadsDashboardDTO
// @Security BearerAuth
// @Router /dashboard/leads [get]
func (h *DashboardHandler) Leads(w http.ResponseWriter, r *http.Request) {
	from, to := parseRange(r)
	stats, err := h.dashboardService.Leads(r.Context(), from, to)
	if err != nil {
		h.logger.Error("failed to build leads dashboard", zap.Error(err))
		respondServiceError(w, err, "Failed to build dashboard")
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

func parseRange(r *http.Request) (time.Time, time.Time) {
	var from, to time.Time
	if t := parseDateParam(r, "from"); t != nil {
		from = *t
	}
	if t := parseDateParam(r, "to"); t != nil {
		to = *t
	}
	return from, to
}
