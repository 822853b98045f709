package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/khiva-consulting/backoffice-api/internal/domain"
	"gorm.io/gorm"
)

// ClientFilters contains all filter options for listing clients
type ClientFilters struct {
	Heard         *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
	SearchQuery   *string
}

type ClientRepository struct {
	db *gorm.DB
}

func NewClientRepository(db *gorm.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

func (r *ClientRepository) Create(ctx context.Context, client *domain.ClientInformation) error {
	return r.db.WithContext(ctx).Create(client).Error
}

func (r *ClientRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.ClientInformation, error) {
	var client domain.ClientInformation
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&client).Error
	if err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *ClientRepository) Update(ctx context.Context, client *domain.ClientInformation) error {
	return r.db.WithContext(ctx).Save(client).Error
}

func (r *ClientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.ClientInformation{}, "id = ?", id).Error
}

func (r *ClientRepository) List(ctx context.Context, page, pageSize int, filters *ClientFilters) ([]domain.ClientInformation, int64, error) {
	var clients []domain.ClientInformation
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.ClientInformation{})
	query = r.applyFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&clients).Error

	return clients, total, err
}

// ListAll returns every client ordered by creation date, used by the exports
func (r *ClientRepository) ListAll(ctx context.Context, filters *ClientFilters) ([]domain.ClientInformation, error) {
	var clients []domain.ClientInformation
	query := r.db.WithContext(ctx).Model(&domain.ClientInformation{})
	query = r.applyFilters(query, filters)
	err := query.Order("created_at ASC").Find(&clients).Error
	return clients, err
}

// FindByNameAndPhone looks up the client used for contract upserts. The match
// is on the identity triple, not the id.
func (r *ClientRepository) FindByNameAndPhone(tx *gorm.DB, firstName, lastName, phone string) (*domain.ClientInformation, error) {
	var client domain.ClientInformation
	err := tx.Where("first_name = ? AND last_name = ? AND phone = ?", firstName, lastName, phone).
		First(&client).Error
	if err != nil {
		return nil, err
	}
	return &client, nil
}

// FindByPhone returns the most recent client with the given phone on either
// phone column. Used by the bot lookup.
func (r *ClientRepository) FindByPhone(ctx context.Context, phone string) (*domain.ClientInformation, error) {
	var client domain.ClientInformation
	err := r.db.WithContext(ctx).
		Where("phone = ? OR phone2 = ?", phone, phone).
		Order("created_at DESC").
		First(&client).Error
	if err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *ClientRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&domain.ClientInformation{}).Count(&total).Error
	return total, err
}

// CountCreatedSince counts clients created at or after the given time
func (r *ClientRepository) CountCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&domain.ClientInformation{}).
		Where("created_at >= ?", since).
		Count(&total).Error
	return total, err
}

// CountByHeard returns client counts grouped by the acquisition channel
func (r *ClientRepository) CountByHeard(ctx context.Context) ([]LabelCountRow, error) {
	var rows []LabelCountRow
	err := r.db.WithContext(ctx).Model(&domain.ClientInformation{}).
		Select("COALESCE(NULLIF(heard, ''), 'unknown') as label, COUNT(*) as count").
		Group("label").
		Order("count DESC").
		Scan(&rows).Error
	return rows, err
}

func (r *ClientRepository) applyFilters(query *gorm.DB, filters *ClientFilters) *gorm.DB {
	if filters == nil {
		return query
	}

	if filters.Heard != nil {
		query = query.Where("heard = ?", *filters.Heard)
	}

	if filters.CreatedAfter != nil {
		query = query.Where("created_at >= ?", *filters.CreatedAfter)
	}

	if filters.CreatedBefore != nil {
		query = query.Where("created_at <= ?", *filters.CreatedBefore)
	}

	if filters.SearchQuery != nil && *filters.SearchQuery != "" {
		searchPattern := "%" + strings.ToLower(*filters.SearchQuery) + "%"
		query = query.Where(
			"LOWER(full_name) LIKE ? OR LOWER(phone) LIKE ? OR LOWER(phone2) LIKE ? OR LOWER(passport_number) LIKE ?",
			searchPattern, searchPattern, searchPattern, searchPattern)
	}

	return query
}
