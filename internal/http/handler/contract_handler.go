package handler

import (
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/khiva-consulting/backoffice-api/internal/auth"
	"github.com/khiva-consulting/backoffice-api/internal/domain"
	"github.com/khiva-consulting/backoffice-api/internal/export"
	"github.com/khiva-consulting/backoffice-api/internal/media"
	"github.com/khiva-consulting/backoffice-api/internal/repository"
	"github.com/khiva-consulting/backoffice-api/internal/service"
	"go.uber.org/zap"
)

// maxContractUploadSize caps a contract write with attached images at 64 MB.
const maxContractUploadSize = 64 << 20

// imageFormFields maps multipart field names to attachment categories.
var imageFormFields = map[string]media.Category{
	"passportImages":          media.CategoryPassport,
	"visaImages":              media.CategoryVisa,
	"completedContractImages": media.CategoryCompletedContract,
}

type ContractHandler struct {
	contractService *service.ContractService
	pdf             *export.PDFExporter
	logger          *zap.Logger
}

func NewContractHandler(
	contractService *service.ContractService,
	pdf *export.PDFExporter,
	logger *zap.Logger,
) *ContractHandler {
	return &ContractHandler{
		contractService: contractService,
		pdf:             pdf,
		logger:          logger,
	}
}

// List godoc
// @Summary List contracts with filtering and pagination
// @Tags Contracts
// @Produce json
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Param status query string false "Filter by status"
// @Param clientId query string false "Filter by client"
// @Param dateFrom query string false "Contract date from (YYYY-MM-DD)"
// @Param dateTo query string false "Contract date to (YYYY-MM-DD)"
// @Param search query string false "Search client name, phone or passport"
// @Success 200 {object} domain.PaginatedResponse
// @Security BearerAuth
// @Router /contracts [get]
func (h *ContractHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)
	filters := h.parseFilters(r)

	contracts, total, err := h.contractService.List(r.Context(), page, pageSize, filters)
	if err != nil {
		h.logger.Error("failed to list contracts", zap.Error(err))
		respondServiceError(w, err, "Failed to list contracts")
		return
	}
	respondJSON(w, http.StatusOK, paginated(contracts, total, page, pageSize))
}

func (h *ContractHandler) parseFilters(r *http.Request) *repository.ContractFilters {
	q := r.URL.Query()
	filters := &repository.ContractFilters{}
	if v := q.Get("status"); v != "" {
		status := domain.ContractStatus(v)
		filters.Status = &status
	}
	if v := q.Get("clientId"); v != "" {
		if id, err := uuid.Parse(v); err == nil {
			filters.ClientID = &id
		}
	}
	filters.DateFrom = parseDateParam(r, "dateFrom")
	filters.DateTo = parseDateParam(r, "dateTo")
	filters.CreatedAfter = parseDateParam(r, "createdAfter")
	filters.CreatedBefore = parseDateParam(r, "createdBefore")
	if v := q.Get("search"); v != "" {
		filters.SearchQuery = &v
	}
	return filters
}

// Create godoc
// @Summary Create a contract with its client, family members and images
// @Description Accepts plain JSON, or multipart/form-data with the JSON under a "payload" field and image files under passportImages, visaImages and completedContractImages.
// @Tags Contracts
// @Accept json
// @Accept multipart/form-data
// @Produce json
// @Param request body domain.ContractPayload true "Contract"
// @Success 201 {object} domain.ContractDTO
// @Failure 400 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Router /contracts [post]
func (h *ContractHandler) Create(w http.ResponseWriter, r *http.Request) {
	payload, images, ok := h.decodeContractRequest(w, r)
	if !ok {
		return
	}

	createdBy := ""
	if userCtx, found := auth.FromContext(r.Context()); found {
		createdBy = userCtx.Username
	}

	contract, err := h.contractService.Create(r.Context(), payload, images, createdBy)
	if err != nil {
		respondServiceError(w, err, "Failed to create contract")
		return
	}
	w.Header().Set("Location", "/api/v1/contracts/"+contract.ID.String())
	respondJSON(w, http.StatusCreated, contract)
}

// GetByID godoc
// @Summary Get a contract by ID
// @Tags Contracts
// @Produce json
// @Param id path string true "Contract ID"
// @Success 200 {object} domain.ContractDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /contracts/{id} [get]
func (h *ContractHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid contract ID")
		return
	}

	contract, err := h.contractService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, err, "Failed to get contract")
		return
	}
	respondJSON(w, http.StatusOK, contract)
}

// Details godoc
// @Summary Get a contract with its client, family members and image paths
// @Tags Contracts
// @Produce json
// @Param id path string true "Contract ID"
// @Success 200 {object} domain.ContractDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /contracts/{id}/details [get]
func (h *ContractHandler) Details(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid contract ID")
		return
	}

	contract, err := h.contractService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, err, "Failed to get contract details")
		return
	}
	respondJSON(w, http.StatusOK, contract)
}

// GetByNumber godoc
// @Summary Get a contract by its sequential number
// @Tags Contracts
// @Produce json
// @Param number path int true "Contract number"
// @Success 200 {object} domain.ContractDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /contracts/by-number/{number} [get]
func (h *ContractHandler) GetByNumber(w http.ResponseWriter, r *http.Request) {
	number, err := strconv.Atoi(chi.URLParam(r, "number"))
	if err != nil || number < 1 {
		respondWithError(w, http.StatusBadRequest, "Invalid contract number")
		return
	}

	contract, err := h.contractService.GetByNumber(r.Context(), number)
	if err != nil {
		respondServiceError(w, err, "Failed to get contract")
		return
	}
	respondJSON(w, http.StatusOK, contract)
}

// Update godoc
// @Summary Update a contract aggregate
// @Description Same body formats as create. Family members are replaced wholesale; image lists are reconciled against the stored ones.
// @Tags Contracts
// @Accept json
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Contract ID"
// @Param request body domain.ContractPayload true "Changes"
// @Success 200 {object} domain.ContractDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /contracts/{id} [put]
func (h *ContractHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid contract ID")
		return
	}

	payload, images, ok := h.decodeContractRequest(w, r)
	if !ok {
		return
	}

	contract, err := h.contractService.Update(r.Context(), id, payload, images)
	if err != nil {
		respondServiceError(w, err, "Failed to update contract")
		return
	}
	respondJSON(w, http.StatusOK, contract)
}

// Delete godoc
// @Summary Delete a contract and its family members
// @Tags Contracts
// @Param id path string true "Contract ID"
// @Success 204
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /contracts/{id} [delete]
func (h *ContractHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid contract ID")
		return
	}

	if err := h.contractService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, err, "Failed to delete contract")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ExportPDF godoc
// @Summary Download the rendered contract document
// @Tags Contracts
// @Produce application/pdf
// @Param id path string true "Contract ID"
// @Success 200 {file} binary
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /contracts/{id}/pdf [get]
func (h *ContractHandler) ExportPDF(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid contract ID")
		return
	}

	contract, err := h.contractService.GetEntity(r.Context(), id)
	if err != nil {
		respondServiceError(w, err, "Failed to get contract")
		return
	}

	data, err := h.pdf.Contract(contract)
	if err != nil {
		h.logger.Error("failed to render contract PDF",
			zap.String("contract_id", id.String()), zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to render contract")
		return
	}
	serveFile(w, data, "application/pdf",
		fmt.Sprintf("shartnoma_%d.pdf", contract.ContractNumber))
}

// decodeContractRequest reads either a JSON body or a multipart form with a
// "payload" JSON field. Responds with the error itself when decoding fails.
func (h *ContractHandler) decodeContractRequest(w http.ResponseWriter, r *http.Request) (*domain.ContractPayload, service.ContractImages, bool) {
	var payload domain.ContractPayload
	images := service.ContractImages{}

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(maxContractUploadSize); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid multipart form")
			return nil, nil, false
		}
		raw := r.FormValue("payload")
		if raw == "" {
			respondWithError(w, http.StatusBadRequest, "Missing payload field")
			return nil, nil, false
		}
		if err := parseJSON(raw, &payload); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid payload JSON")
			return nil, nil, false
		}
		for field, category := range imageFormFields {
			uploads, err := openUploads(r.MultipartForm.File[field])
			if err != nil {
				respondWithError(w, http.StatusBadRequest, "Failed to read uploaded file")
				return nil, nil, false
			}
			if len(uploads) > 0 {
				images[category] = uploads
			}
		}
	} else {
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid request body")
			return nil, nil, false
		}
	}

	if err := validate.Struct(payload); err != nil {
		respondValidationError(w, err)
		return nil, nil, false
	}
	return &payload, images, true
}

func openUploads(headers []*multipart.FileHeader) ([]media.Upload, error) {
	uploads := make([]media.Upload, 0, len(headers))
	for _, header := range headers {
		file, err := header.Open()
		if err != nil {
			return nil, err
		}
		uploads = append(uploads, media.Upload{
			Filename: header.Filename,
			Data:     file,
		})
	}
	return uploads, nil
}
