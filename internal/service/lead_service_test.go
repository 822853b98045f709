package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/khiva-consulting/backoffice-api/internal/domain"
	"github.com/khiva-consulting/backoffice-api/internal/repository"
	"github.com/khiva-consulting/backoffice-api/internal/service"
	"github.com/khiva-consulting/backoffice-api/internal/testutil"
)

func newLeadService(db *gorm.DB) *service.LeadService {
	return service.NewLeadService(
		repository.NewLeadRepository(db),
		repository.NewLeadStageRepository(db),
		repository.NewOperatorRepository(db),
		repository.NewClientRepository(db),
		nil,
		zap.NewNop(),
	)
}

func seedSystemStages(t *testing.T, db *gorm.DB) {
	t.Helper()
	stageRepo := repository.NewLeadStageRepository(db)
	require.NoError(t, stageRepo.EnsureSeeds(context.Background(), domain.SystemStageSeeds()))
}

func TestLeadService_Create_MissingStageRowFallsBack(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	// only the default stage exists; the resolved answered row is absent
	fallback := &domain.LeadStage{
		Key:           domain.StageNotAnswered,
		Name:          "JAVOB BERILMADI",
		IsSystemStage: true,
	}
	require.NoError(t, db.Create(fallback).Error)

	svc := newLeadService(db)
	answered := domain.CallStatusAnswered
	dto, err := svc.Create(ctx, &domain.CreateLeadRequest{
		PhoneNumber: "+998901234567",
		CallStatus:  &answered,
	})
	require.NoError(t, err)

	require.NotNil(t, dto.StageID)
	assert.Equal(t, fallback.ID, *dto.StageID)
	assert.Equal(t, domain.StageNotAnswered, dto.StageKey)
}

func TestLeadService_Create_FailsWithoutDefaultStage(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	svc := newLeadService(db)

	_, err := svc.Create(ctx, &domain.CreateLeadRequest{PhoneNumber: "+998901234567"})
	require.Error(t, err)
}

func TestLeadService_Convert(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	seedSystemStages(t, db)
	svc := newLeadService(db)

	created, err := svc.Create(ctx, &domain.CreateLeadRequest{
		PhoneNumber: "+998901234567",
		ClientName:  "Aziz Karimov",
	})
	require.NoError(t, err)

	converted, err := svc.Convert(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, converted.IsConverted)
	require.NotNil(t, converted.ConvertedClientID)
	assert.Equal(t, domain.StageConverted, converted.StageKey)

	_, err = svc.Convert(ctx, created.ID)
	assert.ErrorIs(t, err, service.ErrAlreadyConverted)
}
