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

type OperatorHandler struct {
	operatorService *service.OperatorService
	logger          *zap.Logger
}

func NewOperatorHandler(operatorService *service.OperatorService, logger *zap.Logger) *OperatorHandler {
	return &OperatorHandler{
		operatorService: operatorService,
		logger:          logger,
	}
}

// List godoc
// @Summary List call operators with their lead counts
// @Tags Operators
// @Produce json
// @Success 200 {array} domain.OperatorDTO
// @Security BearerAuth
// @Router /operators [get]
func (h *OperatorHandler) List(w http.ResponseWriter, r *http.Request) {
	operators, err := h.operatorService.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list operators", zap.Error(err))
		respondServiceError(w, err, "Failed to list operators")
		return
	}
	respondJSON(w, http.StatusOK, operators)
}

// Create godoc
// @Summary Create a call operator
// @Tags Operators
// @Accept json
// @Produce json
// @Param request body domain.CreateOperatorRequest true "Operator"
// @Success 201 {object} domain.OperatorDTO
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Router /operators [post]
func (h *OperatorHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateOperatorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	operator, err := h.operatorService.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, err, "Failed to create operator")
		return
	}
	respondJSON(w, http.StatusCreated, operator)
}

// GetByID godoc
// @Summary Get a call operator by ID
// @Tags Operators
// @Produce json
// @Param id path string true "Operator ID"
// @Success 200 {object} domain.OperatorDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /operators/{id} [get]
func (h *OperatorHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid operator ID")
		return
	}

	operator, err := h.operatorService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, err, "Failed to get operator")
		return
	}
	respondJSON(w, http.StatusOK, operator)
}

// Update godoc
// @Summary Rename a call operator
// @Tags Operators
// @Accept json
// @Produce json
// @Param id path string true "Operator ID"
// @Param request body domain.UpdateOperatorRequest true "Changes"
// @Success 200 {object} domain.OperatorDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /operators/{id} [put]
func (h *OperatorHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid operator ID")
		return
	}

	var req domain.UpdateOperatorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	operator, err := h.operatorService.Update(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, err, "Failed to update operator")
		return
	}
	respondJSON(w, http.StatusOK, operator)
}

// Delete godoc
// @Summary Delete a call operator
// @Description Refused while any lead is still assigned to the operator.
// @Tags Operators
// @Param id path string true "Operator ID"
// @Success 204
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Router /operators/{id} [delete]
func (h *OperatorHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid operator ID")
		return
	}

	if err := h.operatorService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, err, "Failed to delete operator")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
