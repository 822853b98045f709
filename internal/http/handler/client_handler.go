package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/khiva-consulting/backoffice-api/internal/domain"
	"github.com/khiva-consulting/backoffice-api/internal/export"
	"github.com/khiva-consulting/backoffice-api/internal/repository"
	"github.com/khiva-consulting/backoffice-api/internal/service"
	"go.uber.org/zap"
)

type ClientHandler struct {
	clientService *service.ClientService
	excel         *export.ExcelExporter
	pdf           *export.PDFExporter
	logger        *zap.Logger
}

func NewClientHandler(
	clientService *service.ClientService,
	excel *export.ExcelExporter,
	pdf *export.PDFExporter,
	logger *zap.Logger,
) *ClientHandler {
	return &ClientHandler{
		clientService: clientService,
		excel:         excel,
		pdf:           pdf,
		logger:        logger,
	}
}

// List godoc
// @Summary List clients with filtering and pagination
// @Tags Clients
// @Produce json
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Param heard query string false "Filter by acquisition channel"
// @Param createdAfter query string false "Created after (YYYY-MM-DD)"
// @Param createdBefore query string false "Created before (YYYY-MM-DD)"
// @Param search query string false "Search name, phone or passport number"
// @Success 200 {object} domain.PaginatedResponse
// @Security BearerAuth
// @Router /clients [get]
func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)
	filters := h.parseFilters(r)

	clients, total, err := h.clientService.List(r.Context(), page, pageSize, filters)
	if err != nil {
		h.logger.Error("failed to list clients", zap.Error(err))
		respondServiceError(w, err, "Failed to list clients")
		return
	}
	respondJSON(w, http.StatusOK, paginated(clients, total, page, pageSize))
}

func (h *ClientHandler) parseFilters(r *http.Request) *repository.ClientFilters {
	q := r.URL.Query()
	filters := &repository.ClientFilters{}
	if v := q.Get("heard"); v != "" {
		filters.Heard = &v
	}
	filters.CreatedAfter = parseDateParam(r, "createdAfter")
	filters.CreatedBefore = parseDateParam(r, "createdBefore")
	if v := q.Get("search"); v != "" {
		filters.SearchQuery = &v
	}
	return filters
}

// Create godoc
// @Summary Create a client
// @Tags Clients
// @Accept json
// @Produce json
// @Param request body domain.ClientPayload true "Client"
// @Success 201 {object} domain.ClientDTO
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Router /clients [post]
func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload domain.ClientPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(payload); err != nil {
		respondValidationError(w, err)
		return
	}

	client, err := h.clientService.Create(r.Context(), &payload)
	if err != nil {
		respondServiceError(w, err, "Failed to create client")
		return
	}
	w.Header().Set("Location", "/api/v1/clients/"+client.ID.String())
	respondJSON(w, http.StatusCreated, client)
}

// GetByID godoc
// @Summary Get a client by ID
// @Tags Clients
// @Produce json
// @Param id path string true "Client ID"
// @Success 200 {object} domain.ClientDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /clients/{id} [get]
func (h *ClientHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid client ID")
		return
	}

	client, err := h.clientService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, err, "Failed to get client")
		return
	}
	respondJSON(w, http.StatusOK, client)
}

// Update godoc
// @Summary Update a client
// @Tags Clients
// @Accept json
// @Produce json
// @Param id path string true "Client ID"
// @Param request body domain.ClientPayload true "Changes"
// @Success 200 {object} domain.ClientDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /clients/{id} [put]
func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid client ID")
		return
	}

	var payload domain.ClientPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(payload); err != nil {
		respondValidationError(w, err)
		return
	}

	client, err := h.clientService.Update(r.Context(), id, &payload)
	if err != nil {
		respondServiceError(w, err, "Failed to update client")
		return
	}
	respondJSON(w, http.StatusOK, client)
}

// Delete godoc
// @Summary Delete a client
// @Tags Clients
// @Param id path string true "Client ID"
// @Success 204
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /clients/{id} [delete]
func (h *ClientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid client ID")
		return
	}

	if err := h.clientService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, err, "Failed to delete client")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ExportExcel godoc
// @Summary Download the filtered client list as an Excel workbook
// @Tags Clients
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param heard query string false "Filter by acquisition channel"
// @Param createdAfter query string false "Created after (YYYY-MM-DD)"
// @Param createdBefore query string false "Created before (YYYY-MM-DD)"
// @Param search query string false "Search name, phone or passport number"
// @Success 200 {file} binary
// @Security BearerAuth
// @Router /clients/export/excel [get]
func (h *ClientHandler) ExportExcel(w http.ResponseWriter, r *http.Request) {
	clients, err := h.clientService.ListAll(r.Context(), h.parseFilters(r))
	if err != nil {
		h.logger.Error("failed to load clients for export", zap.Error(err))
		respondServiceError(w, err, "Failed to export clients")
		return
	}

	data, err := h.excel.ClientList(clients)
	if err != nil {
		h.logger.Error("failed to render client workbook", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to export clients")
		return
	}
	serveFile(w, data,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		fmt.Sprintf("mijozlar_%s.xlsx", time.Now().Format("2006-01-02")))
}

// ExportPDF godoc
// @Summary Download the filtered client list as a PDF
// @Tags Clients
// @Produce application/pdf
// @Param heard query string false "Filter by acquisition channel"
// @Param createdAfter query string false "Created after (YYYY-MM-DD)"
// @Param createdBefore query string false "Created before (YYYY-MM-DD)"
// @Param search query string false "Search name, phone or passport number"
// @Success 200 {file} binary
// @Security BearerAuth
// @Router /clients/export/pdf [get]
func (h *ClientHandler) ExportPDF(w http.ResponseWriter, r *http.Request) {
	clients, err := h.clientService.ListAll(r.Context(), h.parseFilters(r))
	if err != nil {
		h.logger.Error("failed to load clients for export", zap.Error(err))
		respondServiceError(w, err, "Failed to export clients")
		return
	}

	data, err := h.pdf.ClientList(clients)
	if err != nil {
		h.logger.Error("failed to render client PDF", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to export clients")
		return
	}
	serveFile(w, data, "application/pdf",
		fmt.Sprintf("mijozlar_%s.pdf", time.Now().Format("2006-01-02")))
}

// serveFile writes binary content as a browser download
func serveFile(w http.ResponseWriter, data []byte, contentType, filename string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
