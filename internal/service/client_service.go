package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/khiva-consulting/backoffice-api/internal/domain"
	"github.com/khiva-consulting/backoffice-api/internal/mapper"
	"github.com/khiva-consulting/backoffice-api/internal/phone"
	"github.com/khiva-consulting/backoffice-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ClientService struct {
	clientRepo *repository.ClientRepository
	logger     *zap.Logger
}

func NewClientService(clientRepo *repository.ClientRepository, logger *zap.Logger) *ClientService {
	return &ClientService{clientRepo: clientRepo, logger: logger}
}

func (s *ClientService) Create(ctx context.Context, payload *domain.ClientPayload) (*domain.ClientDTO, error) {
	client := &domain.ClientInformation{}
	if err := applyClientPayload(client, payload); err != nil {
		return nil, err
	}

	if err := s.clientRepo.Create(ctx, client); err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	dto := mapper.ToClientDTO(client)
	return &dto, nil
}

func (s *ClientService) GetByID(ctx context.Context, id uuid.UUID) (*domain.ClientDTO, error) {
	client, err := s.clientRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	dto := mapper.ToClientDTO(client)
	return &dto, nil
}

func (s *ClientService) Update(ctx context.Context, id uuid.UUID, payload *domain.ClientPayload) (*domain.ClientDTO, error) {
	client, err := s.clientRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get client: %w", err)
	}

	if err := applyClientPayload(client, payload); err != nil {
		return nil, err
	}

	if err := s.clientRepo.Update(ctx, client); err != nil {
		return nil, fmt.Errorf("failed to update client: %w", err)
	}

	dto := mapper.ToClientDTO(client)
	return &dto, nil
}

func (s *ClientService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.clientRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get client: %w", err)
	}
	return s.clientRepo.Delete(ctx, id)
}

func (s *ClientService) List(ctx context.Context, page, pageSize int, filters *repository.ClientFilters) ([]domain.ClientDTO, int64, error) {
	clients, total, err := s.clientRepo.List(ctx, page, pageSize, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list clients: %w", err)
	}

	dtos := make([]domain.ClientDTO, len(clients))
	for i := range clients {
		dtos[i] = mapper.ToClientDTO(&clients[i])
	}
	return dtos, total, nil
}

// ListAll returns the full filtered client list for file exports.
func (s *ClientService) ListAll(ctx context.Context, filters *repository.ClientFilters) ([]domain.ClientInformation, error) {
	clients, err := s.clientRepo.ListAll(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	return clients, nil
}

// UpsertInTx finds or creates the client a contract belongs to, matching on
// the first name / last name / phone triple. Field updates follow the
// non-empty-overwrite rule; see applyClientPayload.
func (s *ClientService) UpsertInTx(tx *gorm.DB, payload *domain.ClientPayload) (*domain.ClientInformation, error) {
	normalizedPhone := normalizeClientPhone(payload.Phone)

	client, err := s.clientRepo.FindByNameAndPhone(tx, payload.FirstName, payload.LastName, normalizedPhone)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to look up client: %w", err)
		}
		client = &domain.ClientInformation{}
	}

	if err := applyClientPayload(client, payload); err != nil {
		return nil, err
	}

	if client.ID == uuid.Nil {
		if err := tx.Create(client).Error; err != nil {
			return nil, fmt.Errorf("failed to create client: %w", err)
		}
		return client, nil
	}
	if err := tx.Save(client).Error; err != nil {
		return nil, fmt.Errorf("failed to update client: %w", err)
	}
	return client, nil
}

// applyClientPayload copies payload fields onto the client. Empty payload
// values leave existing data alone, except BirthDate: a present key always
// applies, so an explicit null clears the stored date.
func applyClientPayload(client *domain.ClientInformation, payload *domain.ClientPayload) error {
	if payload.FirstName != "" {
		client.FirstName = payload.FirstName
	}
	if payload.LastName != "" {
		client.LastName = payload.LastName
	}
	if payload.MiddleName != "" {
		client.MiddleName = payload.MiddleName
	}
	if payload.Phone != "" {
		client.Phone = normalizeClientPhone(payload.Phone)
	}
	if payload.Phone2 != "" {
		client.Phone2 = normalizeClientPhone(payload.Phone2)
	}
	if payload.PassportNumber != "" {
		client.PassportNumber = payload.PassportNumber
	}
	if payload.PassportIssuePlace != "" {
		client.PassportIssuePlace = payload.PassportIssuePlace
	}
	if payload.Address != "" {
		client.Address = payload.Address
	}
	if payload.Email != "" {
		client.Email = payload.Email
	}
	if payload.Password != "" {
		client.Password = payload.Password
	}
	if payload.Heard != "" {
		client.Heard = payload.Heard
	}

	if payload.PassportIssueDate != nil && *payload.PassportIssueDate != "" {
		t, err := domain.ParseDate(*payload.PassportIssueDate)
		if err != nil {
			return fmt.Errorf("passport issue date: %w", ErrInvalidInput)
		}
		client.PassportIssueDate = &t
	}
	if payload.PassportExpiryDate != nil && *payload.PassportExpiryDate != "" {
		t, err := domain.ParseDate(*payload.PassportExpiryDate)
		if err != nil {
			return fmt.Errorf("passport expiry date: %w", ErrInvalidInput)
		}
		client.PassportExpiryDate = &t
	}

	if payload.BirthDate.Set {
		client.BirthDate = payload.BirthDate.Value
	}

	client.FullName = client.ComposeFullName()
	return nil
}

// normalizeClientPhone canonicalizes to +998XXXXXXXXX, falling back to the
// raw input for numbers that fail to parse. Empty input stays empty.
func normalizeClientPhone(raw string) string {
	normalized, err := phone.Normalize(raw)
	if err != nil {
		if errors.Is(err, phone.ErrEmpty) {
			return ""
		}
		return raw
	}
	return normalized
}
