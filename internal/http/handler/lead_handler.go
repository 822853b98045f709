package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/khiva-consulting/backoffice-api/internal/domain"
	"github.com/khiva-consulting/backoffice-api/internal/repository"
	"github.com/khiva-consulting/backoffice-api/internal/service"
	"go.uber.org/zap"
)

// maxAudioUploadSize caps a single call recording upload at 25 MB.
const maxAudioUploadSize = 25 << 20

type LeadHandler struct {
	leadService *service.LeadService
	logger      *zap.Logger
}

func NewLeadHandler(leadService *service.LeadService, logger *zap.Logger) *LeadHandler {
	return &LeadHandler{
		leadService: leadService,
		logger:      logger,
	}
}

// List godoc
// @Summary List leads with filtering, sorting and pagination
// @Tags Leads
// @Produce json
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Param operatorId query string false "Filter by operator"
// @Param stageId query string false "Filter by stage ID"
// @Param stageKey query string false "Filter by stage key"
// @Param callStatus query string false "Filter by call status"
// @Param isConverted query bool false "Filter by conversion flag"
// @Param hasFollowUp query bool false "Filter by follow-up presence"
// @Param createdAfter query string false "Created after (YYYY-MM-DD)"
// @Param createdBefore query string false "Created before (YYYY-MM-DD)"
// @Param search query string false "Search phone, name or notes"
// @Param sortBy query string false "Sort: created_desc, created_asc, follow_up_asc, follow_up_desc"
// @Success 200 {object} domain.PaginatedResponse
// @Security BearerAuth
// @Router /leads [get]
func (h *LeadHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)
	filters := h.parseFilters(r)
	sortBy := repository.LeadSortOption(r.URL.Query().Get("sortBy"))

	leads, total, err := h.leadService.List(r.Context(), page, pageSize, filters, sortBy)
	if err != nil {
		h.logger.Error("failed to list leads", zap.Error(err))
		respondServiceError(w, err, "Failed to list leads")
		return
	}
	respondJSON(w, http.StatusOK, paginated(leads, total, page, pageSize))
}

func (h *LeadHandler) parseFilters(r *http.Request) *repository.LeadFilters {
	q := r.URL.Query()
	filters := &repository.LeadFilters{}

	if v := q.Get("operatorId"); v != "" {
		if id, err := uuid.Parse(v); err == nil {
			filters.OperatorID = &id
		}
	}
	if v := q.Get("stageId"); v != "" {
		if id, err := uuid.Parse(v); err == nil {
			filters.StageID = &id
		}
	}
	if v := q.Get("stageKey"); v != "" {
		key := domain.StageKey(v)
		filters.StageKey = &key
	}
	if v := q.Get("callStatus"); v != "" {
		status := domain.CallStatus(v)
		filters.CallStatus = &status
	}
	if v := q.Get("isConverted"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			filters.IsConverted = &b
		}
	}
	if v := q.Get("hasFollowUp"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			filters.HasFollowUp = &b
		}
	}
	filters.CreatedAfter = parseDateParam(r, "createdAfter")
	filters.CreatedBefore = parseDateParam(r, "createdBefore")
	if v := q.Get("search"); v != "" {
		filters.SearchQuery = &v
	}
	return filters
}

// Create godoc
// @Summary Register a lead
// @Tags Leads
// @Accept json
// @Produce json
// @Param request body domain.CreateLeadRequest true "Lead"
// @Success 201 {object} domain.LeadDTO
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Router /leads [post]
func (h *LeadHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	lead, err := h.leadService.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, err, "Failed to create lead")
		return
	}
	w.Header().Set("Location", "/api/v1/leads/"+lead.ID.String())
	respondJSON(w, http.StatusCreated, lead)
}

// QuickCreate godoc
// @Summary Capture a lead from just a phone number
// @Tags Leads
// @Accept json
// @Produce json
// @Param request body domain.QuickCreateLeadRequest true "Lead"
// @Success 201 {object} domain.LeadDTO
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Router /leads/quick [post]
func (h *LeadHandler) QuickCreate(w http.ResponseWriter, r *http.Request) {
	var req domain.QuickCreateLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	lead, err := h.leadService.QuickCreate(r.Context(), &req)
	if err != nil {
		respondServiceError(w, err, "Failed to create lead")
		return
	}
	respondJSON(w, http.StatusCreated, lead)
}

// GetByID godoc
// @Summary Get a lead by ID
// @Tags Leads
// @Produce json
// @Param id path string true "Lead ID"
// @Success 200 {object} domain.LeadDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /leads/{id} [get]
func (h *LeadHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid lead ID")
		return
	}

	lead, err := h.leadService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, err, "Failed to get lead")
		return
	}
	respondJSON(w, http.StatusOK, lead)
}

// Update godoc
// @Summary Update a lead
// @Description The stage is re-resolved from the updated call fields unless the lead sits on a custom stage.
// @Tags Leads
// @Accept json
// @Produce json
// @Param id path string true "Lead ID"
// @Param request body domain.UpdateLeadRequest true "Changes"
// @Success 200 {object} domain.LeadDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /leads/{id} [put]
func (h *LeadHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid lead ID")
		return
	}

	var req domain.UpdateLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	lead, err := h.leadService.Update(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, err, "Failed to update lead")
		return
	}
	respondJSON(w, http.StatusOK, lead)
}

// Delete godoc
// @Summary Delete a lead and its stored call recording
// @Tags Leads
// @Param id path string true "Lead ID"
// @Success 204
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /leads/{id} [delete]
func (h *LeadHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid lead ID")
		return
	}

	if err := h.leadService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, err, "Failed to delete lead")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Transition godoc
// @Summary Move a lead to a pipeline stage
// @Description Moving to a system stage also updates the call fields the stage implies; moving to the converted stage creates the client.
// @Tags Leads
// @Accept json
// @Produce json
// @Param id path string true "Lead ID"
// @Param request body domain.TransitionLeadRequest true "Target stage"
// @Success 200 {object} domain.LeadDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /leads/{id}/transition [post]
func (h *LeadHandler) Transition(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid lead ID")
		return
	}

	var req domain.TransitionLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	lead, err := h.leadService.TransitionStage(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, err, "Failed to move lead")
		return
	}
	respondJSON(w, http.StatusOK, lead)
}

// Convert godoc
// @Summary Convert a lead into a client
// @Tags Leads
// @Produce json
// @Param id path string true "Lead ID"
// @Success 200 {object} domain.LeadDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /leads/{id}/convert [post]
func (h *LeadHandler) Convert(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid lead ID")
		return
	}

	lead, err := h.leadService.Convert(r.Context(), id)
	if err != nil {
		respondServiceError(w, err, "Failed to convert lead")
		return
	}
	respondJSON(w, http.StatusOK, lead)
}

// Board godoc
// @Summary Get the kanban board, one column per stage
// @Tags Leads
// @Produce json
// @Success 200 {array} domain.KanbanColumnDTO
// @Security BearerAuth
// @Router /leads/board [get]
func (h *LeadHandler) Board(w http.ResponseWriter, r *http.Request) {
	columns, err := h.leadService.Board(r.Context())
	if err != nil {
		h.logger.Error("failed to build lead board", zap.Error(err))
		respondServiceError(w, err, "Failed to build lead board")
		return
	}
	respondJSON(w, http.StatusOK, columns)
}

// Statistics godoc
// @Summary Get lead funnel statistics
// @Tags Leads
// @Produce json
// @Success 200 {object} domain.LeadsDashboardDTO
// @Security BearerAuth
// @Router /leads/statistics [get]
func (h *LeadHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.leadService.Statistics(r.Context())
	if err != nil {
		h.logger.Error("failed to build lead statistics", zap.Error(err))
		respondServiceError(w, err, "Failed to build lead statistics")
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

// UploadAudio godoc
// @Summary Attach a call recording to a lead
// @Tags Leads
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Lead ID"
// @Param audio formData file true "Audio file"
// @Success 200 {object} domain.LeadDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /leads/{id}/audio [post]
func (h *LeadHandler) UploadAudio(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid lead ID")
		return
	}

	if err := r.ParseMultipartForm(maxAudioUploadSize); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	file, header, err := r.FormFile("audio")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Audio file is required")
		return
	}
	defer file.Close()

	lead, err := h.leadService.AttachAudio(r.Context(), id, header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		respondServiceError(w, err, "Failed to store audio")
		return
	}
	respondJSON(w, http.StatusOK, lead)
}
