package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/khiva-consulting/backoffice-api/internal/domain"
	"github.com/khiva-consulting/backoffice-api/internal/mapper"
	"github.com/khiva-consulting/backoffice-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type StageService struct {
	stageRepo *repository.LeadStageRepository
	leadRepo  *repository.LeadRepository
	logger    *zap.Logger
	now       func() time.Time
}

func NewStageService(stageRepo *repository.LeadStageRepository, leadRepo *repository.LeadRepository, logger *zap.Logger) *StageService {
	return &StageService{stageRepo: stageRepo, leadRepo: leadRepo, logger: logger, now: time.Now}
}

// EnsureSystemStages seeds the six pipeline stages on startup with
// get-or-create semantics, then assigns a stage to any lead left without
// one. Existing rows keep their admin-edited names and colors.
func (s *StageService) EnsureSystemStages(ctx context.Context) error {
	if err := s.stageRepo.EnsureSeeds(ctx, domain.SystemStageSeeds()); err != nil {
		return fmt.Errorf("failed to ensure system stages: %w", err)
	}
	if err := s.backfillStagelessLeads(ctx); err != nil {
		return fmt.Errorf("failed to backfill stage-less leads: %w", err)
	}
	return nil
}

// backfillStagelessLeads resolves and sets a stage for every lead whose
// stage_id is null, for example rows imported before the stage catalog
// existed. Leads resolving to a missing stage row get the default
// not_answered stage.
func (s *StageService) backfillStagelessLeads(ctx context.Context) error {
	leads, err := s.leadRepo.ListStageless(ctx)
	if err != nil {
		return err
	}
	if len(leads) == 0 {
		return nil
	}

	stages, err := s.stageRepo.List(ctx)
	if err != nil {
		return err
	}
	byKey := make(map[domain.StageKey]uuid.UUID, len(stages))
	for i := range stages {
		byKey[stages[i].Key] = stages[i].ID
	}

	for i := range leads {
		lead := &leads[i]
		key := domain.ResolveLeadStageKey(lead, s.now())
		stageID, ok := byKey[key]
		if !ok {
			s.logger.Warn("resolved stage row missing during backfill, using default stage",
				zap.String("stage", string(key)))
			if stageID, ok = byKey[domain.StageNotAnswered]; !ok {
				return fmt.Errorf("default stage %q missing", domain.StageNotAnswered)
			}
		}
		if err := s.leadRepo.AssignStage(ctx, lead.ID, stageID); err != nil {
			return err
		}
	}
	s.logger.Info("assigned stages to stage-less leads", zap.Int("count", len(leads)))
	return nil
}

func (s *StageService) List(ctx context.Context) ([]domain.LeadStageDTO, error) {
	stages, err := s.stageRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list stages: %w", err)
	}

	dtos := make([]domain.LeadStageDTO, len(stages))
	for i := range stages {
		dtos[i] = mapper.ToLeadStageDTO(&stages[i])
		count, err := s.stageRepo.CountLeads(ctx, stages[i].ID)
		if err != nil {
			s.logger.Warn("failed to count stage leads", zap.Error(err))
			continue
		}
		dtos[i].LeadCount = count
	}
	return dtos, nil
}

func (s *StageService) GetByID(ctx context.Context, id uuid.UUID) (*domain.LeadStageDTO, error) {
	stage, err := s.stageRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get stage: %w", err)
	}
	dto := mapper.ToLeadStageDTO(stage)
	return &dto, nil
}

func (s *StageService) Create(ctx context.Context, req *domain.CreateLeadStageRequest) (*domain.LeadStageDTO, error) {
	if _, err := s.stageRepo.GetByKey(ctx, req.Key); err == nil {
		return nil, fmt.Errorf("stage key %q: %w", req.Key, ErrConflict)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check stage key: %w", err)
	}

	stage := &domain.LeadStage{
		Key:         req.Key,
		Name:        req.Name,
		Description: req.Description,
		SortOrder:   req.SortOrder,
	}
	if req.Color != "" {
		stage.Color = req.Color
	}

	if err := s.stageRepo.Create(ctx, stage); err != nil {
		return nil, fmt.Errorf("failed to create stage: %w", err)
	}

	dto := mapper.ToLeadStageDTO(stage)
	return &dto, nil
}

func (s *StageService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateLeadStageRequest) (*domain.LeadStageDTO, error) {
	stage, err := s.stageRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get stage: %w", err)
	}

	// The key of a system stage is load-bearing for the resolver and
	// cannot change. Display fields stay editable.
	if req.Key != "" && req.Key != stage.Key {
		if stage.IsSystemStage {
			return nil, ErrSystemStage
		}
		if _, err := s.stageRepo.GetByKey(ctx, req.Key); err == nil {
			return nil, fmt.Errorf("stage key %q: %w", req.Key, ErrConflict)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to check stage key: %w", err)
		}
		stage.Key = req.Key
	}

	stage.Name = req.Name
	stage.Description = req.Description
	stage.SortOrder = req.SortOrder
	if req.Color != "" {
		stage.Color = req.Color
	}

	if err := s.stageRepo.Update(ctx, stage); err != nil {
		return nil, fmt.Errorf("failed to update stage: %w", err)
	}

	dto := mapper.ToLeadStageDTO(stage)
	return &dto, nil
}

// Delete removes a custom stage, moving its leads to the not-answered
// fallback first. System stages cannot be deleted.
func (s *StageService) Delete(ctx context.Context, id uuid.UUID) error {
	stage, err := s.stageRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get stage: %w", err)
	}

	if stage.IsSystemStage {
		return ErrSystemStage
	}

	fallback, err := s.stageRepo.GetByKey(ctx, domain.StageNotAnswered)
	if err != nil {
		return fmt.Errorf("failed to get fallback stage: %w", err)
	}

	if err := s.stageRepo.DeleteReassigningLeads(ctx, stage.ID, fallback.ID); err != nil {
		return fmt.Errorf("failed to delete stage: %w", err)
	}

	s.logger.Info("deleted custom stage",
		zap.String("key", string(stage.Key)),
		zap.String("fallback", string(fallback.Key)))
	return nil
}
