package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/khiva-consulting/backoffice-api/internal/domain"
	"github.com/khiva-consulting/backoffice-api/internal/repository"
	"github.com/khiva-consulting/backoffice-api/internal/service"
	"github.com/khiva-consulting/backoffice-api/internal/testutil"
)

func TestStageService_EnsureSystemStages_SeedsOnceAndKeepsEdits(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	stageRepo := repository.NewLeadStageRepository(db)
	leadRepo := repository.NewLeadRepository(db)
	svc := service.NewStageService(stageRepo, leadRepo, zap.NewNop())

	require.NoError(t, svc.EnsureSystemStages(ctx))

	stages, err := stageRepo.List(ctx)
	require.NoError(t, err)
	require.Len(t, stages, 6)
	for _, stage := range stages {
		assert.True(t, stage.IsSystemStage, "seeded stage %s must be a system stage", stage.Key)
	}

	// admin edits to names survive a restart
	answered, err := stageRepo.GetByKey(ctx, domain.StageAnswered)
	require.NoError(t, err)
	answered.Name = "Gaplashildi"
	require.NoError(t, stageRepo.Update(ctx, answered))

	require.NoError(t, svc.EnsureSystemStages(ctx))

	stages, err = stageRepo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, stages, 6)

	answered, err = stageRepo.GetByKey(ctx, domain.StageAnswered)
	require.NoError(t, err)
	assert.Equal(t, "Gaplashildi", answered.Name)
}

func TestStageService_EnsureSystemStages_BackfillsStagelessLeads(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	stageRepo := repository.NewLeadStageRepository(db)
	leadRepo := repository.NewLeadRepository(db)
	svc := service.NewStageService(stageRepo, leadRepo, zap.NewNop())

	// rows imported before the stage catalog existed carry no stage
	answered := domain.CallStatusAnswered
	followUp := time.Now().Add(48 * time.Hour)
	leads := []*domain.Lead{
		{PhoneNumber: "998901111111", CallStatus: &answered},
		{PhoneNumber: "998902222222", IsConverted: true},
		{PhoneNumber: "998903333333", FollowUpDate: &followUp},
		{PhoneNumber: "998904444444"},
	}
	for _, lead := range leads {
		require.NoError(t, db.Create(lead).Error)
	}

	require.NoError(t, svc.EnsureSystemStages(ctx))

	wantKeys := []domain.StageKey{
		domain.StageAnswered,
		domain.StageConverted,
		domain.StageFollowUp,
		domain.StageNotAnswered,
	}
	for i, lead := range leads {
		got, err := leadRepo.GetByID(ctx, lead.ID)
		require.NoError(t, err)
		require.NotNil(t, got.StageID, "lead %s must get a stage", got.PhoneNumber)
		require.NotNil(t, got.Stage)
		assert.Equal(t, wantKeys[i], got.Stage.Key, "lead %s", got.PhoneNumber)
	}
}

func TestStageService_EnsureSystemStages_BackfillIdempotent(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	stageRepo := repository.NewLeadStageRepository(db)
	leadRepo := repository.NewLeadRepository(db)
	svc := service.NewStageService(stageRepo, leadRepo, zap.NewNop())

	lead := &domain.Lead{PhoneNumber: "998905555555"}
	require.NoError(t, db.Create(lead).Error)

	require.NoError(t, svc.EnsureSystemStages(ctx))
	first, err := leadRepo.GetByID(ctx, lead.ID)
	require.NoError(t, err)
	require.NotNil(t, first.StageID)

	require.NoError(t, svc.EnsureSystemStages(ctx))
	second, err := leadRepo.GetByID(ctx, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, *first.StageID, *second.StageID)
}
