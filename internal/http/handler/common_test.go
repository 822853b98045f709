package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khiva-consulting/backoffice-api/internal/domain"
	"github.com/khiva-consulting/backoffice-api/internal/service"
)

func TestRespondServiceError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "not found", err: service.ErrNotFound, wantStatus: http.StatusNotFound},
		{name: "conflict", err: service.ErrConflict, wantStatus: http.StatusConflict},
		{name: "invalid input", err: service.ErrInvalidInput, wantStatus: http.StatusBadRequest},
		{name: "invalid credentials", err: service.ErrInvalidCredentials, wantStatus: http.StatusUnauthorized},
		{name: "unauthorized", err: service.ErrUnauthorized, wantStatus: http.StatusUnauthorized},
		{name: "permission denied", err: service.ErrPermissionDenied, wantStatus: http.StatusForbidden},
		{name: "system stage", err: service.ErrSystemStage, wantStatus: http.StatusConflict},
		{name: "operator has leads", err: service.ErrOperatorHasLeads, wantStatus: http.StatusConflict},
		{name: "last admin", err: service.ErrCannotRemoveLastAdmin, wantStatus: http.StatusConflict},
		{name: "already converted", err: service.ErrAlreadyConverted, wantStatus: http.StatusConflict},
		{name: "wrapped sentinel", err: fmt.Errorf("lookup: %w", service.ErrNotFound), wantStatus: http.StatusNotFound},
		{name: "unmapped error", err: fmt.Errorf("disk full"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			respondServiceError(rec, tt.err, "operation failed")

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var apiErr domain.APIError
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&apiErr))
			assert.Equal(t, tt.wantStatus, apiErr.Status)
			if tt.wantStatus == http.StatusInternalServerError {
				// internal details never leak to the client
				assert.Equal(t, "operation failed", apiErr.Detail)
			}
		})
	}
}

func TestPassportNumberValidation(t *testing.T) {
	type payload struct {
		PassportNumber string `validate:"passport_number"`
	}

	tests := []struct {
		name   string
		number string
		valid  bool
	}{
		{name: "standard", number: "AB1234567", valid: true},
		{name: "lowercase letters", number: "ab1234567", valid: true},
		{name: "single digit", number: "AA1", valid: true},
		{name: "no digits", number: "AB", valid: false},
		{name: "too many digits", number: "AB12345678", valid: false},
		{name: "one letter", number: "A1234567", valid: false},
		{name: "digits first", number: "1234567AB", valid: false},
		{name: "empty", number: "", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate.Struct(payload{PassportNumber: tt.number})
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestParsePagination(t *testing.T) {
	tests := []struct {
		name         string
		query        string
		wantPage     int
		wantPageSize int
	}{
		{name: "defaults", query: "", wantPage: 1, wantPageSize: 20},
		{name: "explicit", query: "page=3&pageSize=50", wantPage: 3, wantPageSize: 50},
		{name: "zero page clamps", query: "page=0", wantPage: 1, wantPageSize: 20},
		{name: "negative page clamps", query: "page=-5", wantPage: 1, wantPageSize: 20},
		{name: "oversized page size caps", query: "pageSize=5000", wantPage: 1, wantPageSize: 200},
		{name: "garbage ignored", query: "page=abc&pageSize=xyz", wantPage: 1, wantPageSize: 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/?"+tt.query, nil)
			page, pageSize := parsePagination(r)
			assert.Equal(t, tt.wantPage, page)
			assert.Equal(t, tt.wantPageSize, pageSize)
		})
	}
}

func TestParseDateParam(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?from=2025-03-15&bad=15.03.2025", nil)

	got := parseDateParam(r, "from")
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC), *got)

	assert.Nil(t, parseDateParam(r, "bad"))
	assert.Nil(t, parseDateParam(r, "missing"))
}

func TestPaginated(t *testing.T) {
	resp := paginated([]string{"a", "b"}, 42, 3, 20)
	assert.Equal(t, int64(42), resp.Total)
	assert.Equal(t, 20, resp.Limit)
	assert.Equal(t, 40, resp.Offset)
}

func TestRespondValidationError_FieldNames(t *testing.T) {
	type payload struct {
		ClientName string `validate:"required"`
		Email      string `validate:"email"`
	}

	err := validate.Struct(payload{Email: "not-an-email"})
	require.Error(t, err)

	rec := httptest.NewRecorder()
	respondValidationError(rec, err)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var apiErr domain.APIError
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&apiErr))
	assert.Contains(t, apiErr.Errors, "clientName")
	assert.Contains(t, apiErr.Errors, "email")
}
