package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/khiva-consulting/backoffice-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ContractFilters contains all filter options for listing contracts
type ContractFilters struct {
	Status        *domain.ContractStatus
	ClientID      *uuid.UUID
	DateFrom      *time.Time
	DateTo        *time.Time
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
	SearchQuery   *string
}

type ContractRepository struct {
	db *gorm.DB
}

func NewContractRepository(db *gorm.DB) *ContractRepository {
	return &ContractRepository{db: db}
}

// NextContractNumber reserves the next contract number inside the given
// transaction. The highest-numbered row is locked so two concurrent writers
// cannot be handed the same number; Postgres does not allow FOR UPDATE on
// aggregate queries, so the lock targets the top row rather than MAX().
// On an empty table the unique index on contract_number backstops the race.
func (r *ContractRepository) NextContractNumber(tx *gorm.DB) (int, error) {
	var top domain.ConsultingContract
	err := tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("contract_number").
		Order("contract_number DESC").
		First(&top).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 1, nil
		}
		return 0, fmt.Errorf("failed to get max contract number: %w", err)
	}
	return top.ContractNumber + 1, nil
}

func (r *ContractRepository) Create(tx *gorm.DB, contract *domain.ConsultingContract) error {
	return tx.Omit(clause.Associations).Create(contract).Error
}

func (r *ContractRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.ConsultingContract, error) {
	var contract domain.ConsultingContract
	err := r.db.WithContext(ctx).
		Preload("Client").
		Preload("FamilyMembers").
		Where("id = ?", id).
		First(&contract).Error
	if err != nil {
		return nil, err
	}
	return &contract, nil
}

func (r *ContractRepository) GetByNumber(ctx context.Context, number int) (*domain.ConsultingContract, error) {
	var contract domain.ConsultingContract
	err := r.db.WithContext(ctx).
		Preload("Client").
		Preload("FamilyMembers").
		Where("contract_number = ?", number).
		First(&contract).Error
	if err != nil {
		return nil, err
	}
	return &contract, nil
}

// GetLatestByClient returns the newest contract for a client, used by the bot
func (r *ContractRepository) GetLatestByClient(ctx context.Context, clientID uuid.UUID) (*domain.ConsultingContract, error) {
	var contract domain.ConsultingContract
	err := r.db.WithContext(ctx).
		Preload("Client").
		Preload("FamilyMembers").
		Where("client_id = ?", clientID).
		Order("contract_number DESC").
		First(&contract).Error
	if err != nil {
		return nil, err
	}
	return &contract, nil
}

func (r *ContractRepository) Update(tx *gorm.DB, contract *domain.ConsultingContract) error {
	return tx.Omit(clause.Associations).Save(contract).Error
}

func (r *ContractRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&domain.ContractFamilyMember{}, "contract_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.ConsultingContract{}, "id = ?", id).Error
	})
}

func (r *ContractRepository) List(ctx context.Context, page, pageSize int, filters *ContractFilters) ([]domain.ConsultingContract, int64, error) {
	var contracts []domain.ConsultingContract
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.ConsultingContract{}).
		Preload("Client").
		Preload("FamilyMembers")
	query = r.applyFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("contract_number DESC").Offset(offset).Limit(pageSize).Find(&contracts).Error

	return contracts, total, err
}

// ReplaceFamilyMembers deletes the contract's family members and recreates
// them from the given set, all inside the caller's transaction.
func (r *ContractRepository) ReplaceFamilyMembers(tx *gorm.DB, contractID uuid.UUID, members []domain.ContractFamilyMember) error {
	if err := tx.Delete(&domain.ContractFamilyMember{}, "contract_id = ?", contractID).Error; err != nil {
		return fmt.Errorf("failed to delete family members: %w", err)
	}
	if len(members) == 0 {
		return nil
	}
	for i := range members {
		members[i].ContractID = contractID
	}
	if err := tx.Create(&members).Error; err != nil {
		return fmt.Errorf("failed to create family members: %w", err)
	}
	return nil
}

func (r *ContractRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&domain.ConsultingContract{}).Count(&total).Error
	return total, err
}

// CountByStatus returns contract counts grouped by status
func (r *ContractRepository) CountByStatus(ctx context.Context) (map[domain.ContractStatus]int64, error) {
	type statusCount struct {
		Status domain.ContractStatus
		Count  int64
	}
	var rows []statusCount
	err := r.db.WithContext(ctx).Model(&domain.ConsultingContract{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[domain.ContractStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// SumPaidSince sums amount_paid over contracts dated at or after the given time
func (r *ContractRepository) SumPaidSince(ctx context.Context, since time.Time) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&domain.ConsultingContract{}).
		Where("contract_date >= ?", since).
		Select("COALESCE(SUM(amount_paid), 0)").
		Scan(&total).Error
	return total, err
}

// SumPaidTotal sums amount_paid over all contracts
func (r *ContractRepository) SumPaidTotal(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&domain.ConsultingContract{}).
		Select("COALESCE(SUM(amount_paid), 0)").
		Scan(&total).Error
	return total, err
}

// SumPaidByDay returns per-day payment sums within a date range
func (r *ContractRepository) SumPaidByDay(ctx context.Context, from, to time.Time) ([]DateAmountRow, error) {
	var rows []DateAmountRow
	err := r.db.WithContext(ctx).Model(&domain.ConsultingContract{}).
		Select("DATE(contract_date) as date, COALESCE(SUM(amount_paid), 0) as amount").
		Where("contract_date >= ? AND contract_date < ?", from, to).
		Group("DATE(contract_date)").
		Order("date ASC").
		Scan(&rows).Error
	return rows, err
}

// CountCreatedByDay returns per-day contract counts within a date range
func (r *ContractRepository) CountCreatedByDay(ctx context.Context, from, to time.Time) ([]DateCountRow, error) {
	var rows []DateCountRow
	err := r.db.WithContext(ctx).Model(&domain.ConsultingContract{}).
		Select("DATE(contract_date) as date, COUNT(*) as count").
		Where("contract_date >= ? AND contract_date < ?", from, to).
		Group("DATE(contract_date)").
		Order("date ASC").
		Scan(&rows).Error
	return rows, err
}

// DebtSummaryRow aggregates outstanding balances over non-cancelled contracts
type DebtSummaryRow struct {
	TotalDebt      int64
	DebtorCount    int64
	NonDebtorCount int64
}

// DebtSummary returns the outstanding debt total and the debtor split
func (r *ContractRepository) DebtSummary(ctx context.Context) (*DebtSummaryRow, error) {
	row := &DebtSummaryRow{}
	err := r.db.WithContext(ctx).Model(&domain.ConsultingContract{}).
		Select("COALESCE(SUM(CASE WHEN total_service_fee > amount_paid THEN total_service_fee - amount_paid ELSE 0 END), 0) as total_debt, "+
			"COUNT(CASE WHEN total_service_fee > amount_paid THEN 1 END) as debtor_count, "+
			"COUNT(CASE WHEN total_service_fee <= amount_paid THEN 1 END) as non_debtor_count").
		Where("status <> ?", domain.ContractStatusCancelled).
		Scan(row).Error
	if err != nil {
		return nil, err
	}
	return row, nil
}

// ListForWarehouse returns contracts updated since the given watermark,
// oldest first, for the warehouse sync job.
func (r *ContractRepository) ListForWarehouse(ctx context.Context, updatedSince time.Time, limit int) ([]domain.ConsultingContract, error) {
	var contracts []domain.ConsultingContract
	err := r.db.WithContext(ctx).
		Preload("Client").
		Where("updated_at > ?", updatedSince).
		Order("updated_at ASC").
		Limit(limit).
		Find(&contracts).Error
	return contracts, err
}

// WithTransaction executes operations within a transaction
func (r *ContractRepository) WithTransaction(ctx context.Context, fn func(*gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func (r *ContractRepository) applyFilters(query *gorm.DB, filters *ContractFilters) *gorm.DB {
	if filters == nil {
		return query
	}

	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}

	if filters.ClientID != nil {
		query = query.Where("client_id = ?", *filters.ClientID)
	}

	if filters.DateFrom != nil {
		query = query.Where("contract_date >= ?", *filters.DateFrom)
	}

	if filters.DateTo != nil {
		query = query.Where("contract_date <= ?", *filters.DateTo)
	}

	if filters.CreatedAfter != nil {
		query = query.Where("consulting_contracts.created_at >= ?", *filters.CreatedAfter)
	}

	if filters.CreatedBefore != nil {
		query = query.Where("consulting_contracts.created_at <= ?", *filters.CreatedBefore)
	}

	if filters.SearchQuery != nil && *filters.SearchQuery != "" {
		searchPattern := "%" + strings.ToLower(*filters.SearchQuery) + "%"
		query = query.Joins("JOIN client_information ON client_information.id = consulting_contracts.client_id").
			Where("LOWER(client_information.full_name) LIKE ? OR LOWER(client_information.phone) LIKE ? OR CAST(contract_number AS TEXT) LIKE ?",
				searchPattern, searchPattern, searchPattern)
	}

	return query
}
