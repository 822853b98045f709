package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/khiva-consulting/backoffice-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LeadFilters contains all filter options for listing leads
type LeadFilters struct {
	OperatorID    *uuid.UUID
	StageID       *uuid.UUID
	StageKey      *domain.StageKey
	CallStatus    *domain.CallStatus
	IsConverted   *bool
	HasFollowUp   *bool
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
	SearchQuery   *string
}

// LeadSortOption represents available sort options
type LeadSortOption string

const (
	LeadSortByCreatedDesc  LeadSortOption = "created_desc"
	LeadSortByCreatedAsc   LeadSortOption = "created_asc"
	LeadSortByFollowUpAsc  LeadSortOption = "follow_up_asc"
	LeadSortByFollowUpDesc LeadSortOption = "follow_up_desc"
)

type LeadRepository struct {
	db *gorm.DB
}

func NewLeadRepository(db *gorm.DB) *LeadRepository {
	return &LeadRepository{db: db}
}

func (r *LeadRepository) Create(ctx context.Context, lead *domain.Lead) error {
	// Omit associations to avoid GORM trying to validate related records
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(lead).Error
}

func (r *LeadRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Lead, error) {
	var lead domain.Lead
	err := r.db.WithContext(ctx).
		Preload("Operator").
		Preload("Stage").
		Preload("ConvertedClient").
		Where("id = ?", id).
		First(&lead).Error
	if err != nil {
		return nil, err
	}
	return &lead, nil
}

func (r *LeadRepository) Update(ctx context.Context, lead *domain.Lead) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(lead).Error
}

func (r *LeadRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Lead{}, "id = ?", id).Error
}

func (r *LeadRepository) List(ctx context.Context, page, pageSize int, filters *LeadFilters, sortBy LeadSortOption) ([]domain.Lead, int64, error) {
	var leads []domain.Lead
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Lead{}).
		Preload("Operator").
		Preload("Stage")

	query = r.applyFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = r.applySorting(query, sortBy)

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Find(&leads).Error

	return leads, total, err
}

// GetByStage returns all leads in a stage, newest first, for the kanban board
func (r *LeadRepository) GetByStage(ctx context.Context, stageID uuid.UUID) ([]domain.Lead, error) {
	var leads []domain.Lead
	err := r.db.WithContext(ctx).
		Preload("Operator").
		Preload("Stage").
		Where("stage_id = ?", stageID).
		Order("created_at DESC").
		Find(&leads).Error
	return leads, err
}

// CountByStage returns lead counts grouped by stage id
func (r *LeadRepository) CountByStage(ctx context.Context) (map[uuid.UUID]int64, error) {
	type stageCount struct {
		StageID *uuid.UUID
		Count   int64
	}
	var rows []stageCount
	err := r.db.WithContext(ctx).Model(&domain.Lead{}).
		Select("stage_id, COUNT(*) as count").
		Group("stage_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[uuid.UUID]int64, len(rows))
	for _, row := range rows {
		if row.StageID != nil {
			counts[*row.StageID] = row.Count
		}
	}
	return counts, nil
}

// CountByCallStatus returns lead counts grouped by call status
func (r *LeadRepository) CountByCallStatus(ctx context.Context) (map[domain.CallStatus]int64, error) {
	type statusCount struct {
		CallStatus *domain.CallStatus
		Count      int64
	}
	var rows []statusCount
	err := r.db.WithContext(ctx).Model(&domain.Lead{}).
		Select("call_status, COUNT(*) as count").
		Group("call_status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[domain.CallStatus]int64, len(rows))
	for _, row := range rows {
		if row.CallStatus != nil {
			counts[*row.CallStatus] = row.Count
		}
	}
	return counts, nil
}

// CountByOperator returns lead counts per operator with the conversion breakdown
type OperatorLeadCount struct {
	OperatorID     uuid.UUID
	OperatorName   string
	TotalLeads     int64
	ConvertedLeads int64
}

func (r *LeadRepository) CountByOperator(ctx context.Context) ([]OperatorLeadCount, error) {
	var rows []OperatorLeadCount
	err := r.db.WithContext(ctx).Model(&domain.Lead{}).
		Select("call_operators.id as operator_id, call_operators.full_name as operator_name, COUNT(leads.id) as total_leads, COUNT(CASE WHEN leads.is_converted THEN 1 END) as converted_leads").
		Joins("JOIN call_operators ON call_operators.id = leads.operator_id").
		Group("call_operators.id, call_operators.full_name").
		Order("total_leads DESC").
		Scan(&rows).Error
	return rows, err
}

// CountCreatedByDay returns per-day lead creation counts within a date range
func (r *LeadRepository) CountCreatedByDay(ctx context.Context, from, to time.Time) ([]DateCountRow, error) {
	var rows []DateCountRow
	err := r.db.WithContext(ctx).Model(&domain.Lead{}).
		Select("DATE(created_at) as date, COUNT(*) as count").
		Where("created_at >= ? AND created_at < ?", from, to).
		Group("DATE(created_at)").
		Order("date ASC").
		Scan(&rows).Error
	return rows, err
}

// Count returns totals used by the lead statistics endpoint.
func (r *LeadRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&domain.Lead{}).Count(&total).Error
	return total, err
}

func (r *LeadRepository) CountConverted(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&domain.Lead{}).
		Where("is_converted = ?", true).
		Count(&total).Error
	return total, err
}

// CountCreatedSince counts leads created at or after the given time
func (r *LeadRepository) CountCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&domain.Lead{}).
		Where("created_at >= ?", since).
		Count(&total).Error
	return total, err
}

// GetDueFollowUps returns unconverted leads whose follow-up date falls inside the window
func (r *LeadRepository) GetDueFollowUps(ctx context.Context, from, to time.Time) ([]domain.Lead, error) {
	var leads []domain.Lead
	err := r.db.WithContext(ctx).
		Preload("Operator").
		Where("is_converted = ?", false).
		Where("follow_up_date IS NOT NULL").
		Where("follow_up_date >= ? AND follow_up_date < ?", from, to).
		Order("follow_up_date ASC").
		Find(&leads).Error
	return leads, err
}

// ListStageless returns leads that have no stage assigned
func (r *LeadRepository) ListStageless(ctx context.Context) ([]domain.Lead, error) {
	var leads []domain.Lead
	err := r.db.WithContext(ctx).
		Where("stage_id IS NULL").
		Find(&leads).Error
	return leads, err
}

// AssignStage sets the stage of a single lead
func (r *LeadRepository) AssignStage(ctx context.Context, leadID, stageID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&domain.Lead{}).
		Where("id = ?", leadID).
		Updates(map[string]interface{}{
			"stage_id":   stageID,
			"updated_at": time.Now(),
		}).Error
}

// ReassignStage moves every lead from one stage to another in the given transaction
func (r *LeadRepository) ReassignStage(tx *gorm.DB, fromStageID, toStageID uuid.UUID) error {
	return tx.Model(&domain.Lead{}).
		Where("stage_id = ?", fromStageID).
		Updates(map[string]interface{}{
			"stage_id":   toStageID,
			"updated_at": time.Now(),
		}).Error
}

// WithTransaction executes operations within a transaction
func (r *LeadRepository) WithTransaction(ctx context.Context, fn func(*gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func (r *LeadRepository) applyFilters(query *gorm.DB, filters *LeadFilters) *gorm.DB {
	if filters == nil {
		return query
	}

	if filters.OperatorID != nil {
		query = query.Where("operator_id = ?", *filters.OperatorID)
	}

	if filters.StageID != nil {
		query = query.Where("stage_id = ?", *filters.StageID)
	}

	if filters.StageKey != nil {
		query = query.Joins("JOIN lead_stages ON lead_stages.id = leads.stage_id").
			Where("lead_stages.key = ?", *filters.StageKey)
	}

	if filters.CallStatus != nil {
		query = query.Where("call_status = ?", *filters.CallStatus)
	}

	if filters.IsConverted != nil {
		query = query.Where("is_converted = ?", *filters.IsConverted)
	}

	if filters.HasFollowUp != nil {
		if *filters.HasFollowUp {
			query = query.Where("follow_up_date IS NOT NULL")
		} else {
			query = query.Where("follow_up_date IS NULL")
		}
	}

	if filters.CreatedAfter != nil {
		query = query.Where("leads.created_at >= ?", *filters.CreatedAfter)
	}

	if filters.CreatedBefore != nil {
		query = query.Where("leads.created_at <= ?", *filters.CreatedBefore)
	}

	if filters.SearchQuery != nil && *filters.SearchQuery != "" {
		searchPattern := "%" + strings.ToLower(*filters.SearchQuery) + "%"
		query = query.Where("LOWER(phone_number) LIKE ? OR LOWER(client_name) LIKE ? OR LOWER(notes) LIKE ?",
			searchPattern, searchPattern, searchPattern)
	}

	return query
}

func (r *LeadRepository) applySorting(query *gorm.DB, sortBy LeadSortOption) *gorm.DB {
	switch sortBy {
	case LeadSortByCreatedAsc:
		return query.Order("leads.created_at ASC")
	case LeadSortByFollowUpAsc:
		return query.Order("follow_up_date ASC NULLS LAST")
	case LeadSortByFollowUpDesc:
		return query.Order("follow_up_date DESC NULLS LAST")
	default: // LeadSortByCreatedDesc
		return query.Order("leads.created_at DESC")
	}
}
