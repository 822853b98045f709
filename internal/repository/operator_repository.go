package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/khiva-consulting/backoffice-api/internal/domain"
	"gorm.io/gorm"
)

type OperatorRepository struct {
	db *gorm.DB
}

func NewOperatorRepository(db *gorm.DB) *OperatorRepository {
	return &OperatorRepository{db: db}
}

func (r *OperatorRepository) Create(ctx context.Context, operator *domain.CallOperator) error {
	return r.db.WithContext(ctx).Create(operator).Error
}

func (r *OperatorRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.CallOperator, error) {
	var operator domain.CallOperator
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&operator).Error
	if err != nil {
		return nil, err
	}
	return &operator, nil
}

func (r *OperatorRepository) Update(ctx context.Context, operator *domain.CallOperator) error {
	return r.db.WithContext(ctx).Save(operator).Error
}

func (r *OperatorRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.CallOperator{}, "id = ?", id).Error
}

func (r *OperatorRepository) List(ctx context.Context) ([]domain.CallOperator, error) {
	var operators []domain.CallOperator
	err := r.db.WithContext(ctx).
		Order("full_name ASC").
		Find(&operators).Error
	return operators, err
}

// CountLeads returns the number of leads assigned to an operator
func (r *OperatorRepository) CountLeads(ctx context.Context, id uuid.UUID) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&domain.Lead{}).
		Where("operator_id = ?", id).
		Count(&total).Error
	return total, err
}
