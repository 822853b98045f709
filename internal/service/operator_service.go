package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/khiva-consulting/backoffice-api/internal/domain"
	"github.com/khiva-consulting/backoffice-api/internal/mapper"
	"github.com/khiva-consulting/backoffice-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type OperatorService struct {
	operatorRepo *repository.OperatorRepository
	logger       *zap.Logger
}

func NewOperatorService(operatorRepo *repository.OperatorRepository, logger *zap.Logger) *OperatorService {
	return &OperatorService{operatorRepo: operatorRepo, logger: logger}
}

func (s *OperatorService) Create(ctx context.Context, req *domain.CreateOperatorRequest) (*domain.OperatorDTO, error) {
	operator := &domain.CallOperator{FullName: req.FullName}
	if err := s.operatorRepo.Create(ctx, operator); err != nil {
		return nil, fmt.Errorf("failed to create operator: %w", err)
	}
	dto := mapper.ToOperatorDTO(operator)
	return &dto, nil
}

func (s *OperatorService) GetByID(ctx context.Context, id uuid.UUID) (*domain.OperatorDTO, error) {
	operator, err := s.operatorRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get operator: %w", err)
	}
	dto := mapper.ToOperatorDTO(operator)
	dto.LeadCount, _ = s.operatorRepo.CountLeads(ctx, id)
	return &dto, nil
}

func (s *OperatorService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateOperatorRequest) (*domain.OperatorDTO, error) {
	operator, err := s.operatorRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get operator: %w", err)
	}

	operator.FullName = req.FullName
	if err := s.operatorRepo.Update(ctx, operator); err != nil {
		return nil, fmt.Errorf("failed to update operator: %w", err)
	}

	dto := mapper.ToOperatorDTO(operator)
	return &dto, nil
}

// Delete refuses to remove an operator that still has leads assigned
func (s *OperatorService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.operatorRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get operator: %w", err)
	}

	leadCount, err := s.operatorRepo.CountLeads(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count operator leads: %w", err)
	}
	if leadCount > 0 {
		return ErrOperatorHasLeads
	}

	return s.operatorRepo.Delete(ctx, id)
}

func (s *OperatorService) List(ctx context.Context) ([]domain.OperatorDTO, error) {
	operators, err := s.operatorRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list operators: %w", err)
	}

	dtos := make([]domain.OperatorDTO, len(operators))
	for i := range operators {
		dtos[i] = mapper.ToOperatorDTO(&operators[i])
		count, err := s.operatorRepo.CountLeads(ctx, operators[i].ID)
		if err != nil {
			s.logger.Warn("failed to count operator leads", zap.Error(err))
			continue
		}
		dtos[i].LeadCount = count
	}
	return dtos, nil
}
