package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/khiva-consulting/backoffice-api/internal/domain"
	"github.com/khiva-consulting/backoffice-api/internal/service"
	"go.uber.org/zap"
)

type LeadStageHandler struct {
	stageService *service.StageService
	logger       *zap.Logger
}

func NewLeadStageHandler(stageService *service.StageService, logger *zap.Logger) *LeadStageHandler {
	return &LeadStageHandler{
		stageService: stageService,
		logger:       logger,
	}
}

// List godoc
// @Summary List pipeline stages in board order
// @Tags LeadStages
// @Produce json
// @Success 200 {array} domain.LeadStageDTO
// @Security BearerAuth
// @Router /lead-stages [get]
func (h *LeadStageHandler) List(w http.ResponseWriter, r *http.Request) {
	stages, err := h.stageService.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list lead stages", zap.Error(err))
		respondServiceError(w, err, "Failed to list lead stages")
		return
	}
	respondJSON(w, http.StatusOK, stages)
}

// Create godoc
// @Summary Create a custom pipeline stage
// @Tags LeadStages
// @Accept json
// @Produce json
// @Param request body domain.CreateLeadStageRequest true "Stage"
// @Success 201 {object} domain.LeadStageDTO
// @Failure 400 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Router /lead-stages [post]
func (h *LeadStageHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateLeadStageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	stage, err := h.stageService.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, err, "Failed to create lead stage")
		return
	}
	respondJSON(w, http.StatusCreated, stage)
}

// GetByID godoc
// @Summary Get a pipeline stage by ID
// @Tags LeadStages
// @Produce json
// @Param id path string true "Stage ID"
// @Success 200 {object} domain.LeadStageDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /lead-stages/{id} [get]
func (h *LeadStageHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid stage ID")
		return
	}

	stage, err := h.stageService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, err, "Failed to get lead stage")
		return
	}
	respondJSON(w, http.StatusOK, stage)
}

// Update godoc
// @Summary Update a pipeline stage
// @Description System stage keys are immutable; name, color and order may change.
// @Tags LeadStages
// @Accept json
// @Produce json
// @Param id path string true "Stage ID"
// @Param request body domain.UpdateLeadStageRequest true "Changes"
// @Success 200 {object} domain.LeadStageDTO
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Router /lead-stages/{id} [put]
func (h *LeadStageHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid stage ID")
		return
	}

	var req domain.UpdateLeadStageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	stage, err := h.stageService.Update(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, err, "Failed to update lead stage")
		return
	}
	respondJSON(w, http.StatusOK, stage)
}

// Delete godoc
// @Summary Delete a custom pipeline stage
// @Description System stages cannot be deleted. Leads on the stage move back to the default column.
// @Tags LeadStages
// @Param id path string true "Stage ID"
// @Success 204
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Router /lead-stages/{id} [delete]
func (h *LeadStageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid stage ID")
		return
	}

	if err := h.stageService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, err, "Failed to delete lead stage")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
