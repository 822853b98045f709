package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/khiva-consulting/backoffice-api/internal/domain"
	"gorm.io/gorm"
)

type LeadStageRepository struct {
	db *gorm.DB
}

func NewLeadStageRepository(db *gorm.DB) *LeadStageRepository {
	return &LeadStageRepository{db: db}
}

func (r *LeadStageRepository) Create(ctx context.Context, stage *domain.LeadStage) error {
	return r.db.WithContext(ctx).Create(stage).Error
}

func (r *LeadStageRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.LeadStage, error) {
	var stage domain.LeadStage
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&stage).Error
	if err != nil {
		return nil, err
	}
	return &stage, nil
}

func (r *LeadStageRepository) GetByKey(ctx context.Context, key domain.StageKey) (*domain.LeadStage, error) {
	var stage domain.LeadStage
	err := r.db.WithContext(ctx).Where("key = ?", key).First(&stage).Error
	if err != nil {
		return nil, err
	}
	return &stage, nil
}

func (r *LeadStageRepository) Update(ctx context.Context, stage *domain.LeadStage) error {
	return r.db.WithContext(ctx).Save(stage).Error
}

// List returns all stages ordered for the kanban board
func (r *LeadStageRepository) List(ctx context.Context) ([]domain.LeadStage, error) {
	var stages []domain.LeadStage
	err := r.db.WithContext(ctx).
		Order("sort_order ASC, created_at ASC").
		Find(&stages).Error
	return stages, err
}

// DeleteReassigningLeads removes a custom stage after moving its leads to the
// fallback stage. Both steps happen in one transaction.
func (r *LeadStageRepository) DeleteReassigningLeads(ctx context.Context, stageID, fallbackStageID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&domain.Lead{}).
			Where("stage_id = ?", stageID).
			Updates(map[string]interface{}{
				"stage_id":   fallbackStageID,
				"updated_at": time.Now(),
			}).Error; err != nil {
			return fmt.Errorf("failed to reassign leads: %w", err)
		}
		if err := tx.Delete(&domain.LeadStage{}, "id = ?", stageID).Error; err != nil {
			return fmt.Errorf("failed to delete stage: %w", err)
		}
		return nil
	})
}

// EnsureSeeds creates any missing system stages and backfills key fields on
// existing ones. Names, colors and ordering of present rows are left alone so
// admin edits survive restarts.
func (r *LeadStageRepository) EnsureSeeds(ctx context.Context, seeds []domain.SystemStageSeed) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, seed := range seeds {
			var stage domain.LeadStage
			err := tx.Where("key = ?", seed.Key).First(&stage).Error
			if err == gorm.ErrRecordNotFound {
				stage = domain.LeadStage{
					Key:           seed.Key,
					Name:          seed.Name,
					Color:         seed.Color,
					Description:   seed.Description,
					SortOrder:     seed.SortOrder,
					IsSystemStage: true,
				}
				if err := tx.Create(&stage).Error; err != nil {
					return fmt.Errorf("failed to seed stage %s: %w", seed.Key, err)
				}
				continue
			}
			if err != nil {
				return fmt.Errorf("failed to look up stage %s: %w", seed.Key, err)
			}
			if !stage.IsSystemStage {
				if err := tx.Model(&stage).Update("is_system_stage", true).Error; err != nil {
					return fmt.Errorf("failed to mark stage %s as system: %w", seed.Key, err)
				}
			}
		}
		return nil
	})
}

// CountLeads returns the number of leads currently in a stage
func (r *LeadStageRepository) CountLeads(ctx context.Context, stageID uuid.UUID) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&domain.Lead{}).
		Where("stage_id = ?", stageID).
		Count(&total).Error
	return total, err
}
