package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/khiva-consulting/backoffice-api/internal/domain"
	"github.com/khiva-consulting/backoffice-api/internal/mapper"
	"github.com/khiva-consulting/backoffice-api/internal/media"
	"github.com/khiva-consulting/backoffice-api/internal/repository"
	"github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Contract field defaults applied when the payload leaves them out
const (
	DefaultContractLocation = "Xiva"
	DefaultServiceCountry   = "Angliya"
	DefaultVisaType         = "Ishchi viza"
	DefaultServiceName      = "Angliya ishchi viza paketi"
	DefaultPaymentDueDays   = 3
	DefaultDurationMonths   = 8
)

// ContractImages carries the raw multipart uploads per image category.
// Uploads take priority over base64 entries in the payload lists.
type ContractImages map[media.Category][]media.Upload

type ContractService struct {
	contractRepo  *repository.ContractRepository
	clientService *ClientService
	reconciler    *media.Reconciler
	logger        *zap.Logger
	now           func() time.Time
}

func NewContractService(
	contractRepo *repository.ContractRepository,
	clientService *ClientService,
	reconciler *media.Reconciler,
	logger *zap.Logger,
) *ContractService {
	return &ContractService{
		contractRepo:  contractRepo,
		clientService: clientService,
		reconciler:    reconciler,
		logger:        logger,
		now:           time.Now,
	}
}

// Create writes the full contract aggregate in one transaction: contract
// number reservation, client upsert, image reconciliation and family members.
func (s *ContractService) Create(ctx context.Context, payload *domain.ContractPayload, images ContractImages, createdBy string) (*domain.ContractDTO, error) {
	contract := &domain.ConsultingContract{CreatedBy: createdBy}
	if err := s.applyPayload(contract, payload); err != nil {
		return nil, err
	}

	err := s.contractRepo.WithTransaction(ctx, func(tx *gorm.DB) error {
		if payload.ContractNumber != nil {
			contract.ContractNumber = *payload.ContractNumber
		} else {
			number, err := s.contractRepo.NextContractNumber(tx)
			if err != nil {
				return err
			}
			contract.ContractNumber = number
		}

		client, err := s.clientService.UpsertInTx(tx, &payload.Client)
		if err != nil {
			return err
		}
		contract.ClientID = client.ID

		if err := s.reconcileImages(ctx, contract, payload, images, client.FullName); err != nil {
			return err
		}

		if err := s.contractRepo.Create(tx, contract); err != nil {
			return fmt.Errorf("failed to create contract: %w", err)
		}

		members, err := buildFamilyMembers(payload.FamilyMembers)
		if err != nil {
			return err
		}
		return s.contractRepo.ReplaceFamilyMembers(tx, contract.ID, members)
	})
	if err != nil {
		return nil, translateContractError(err)
	}

	return s.reload(ctx, contract.ID)
}

func (s *ContractService) GetByID(ctx context.Context, id uuid.UUID) (*domain.ContractDTO, error) {
	return s.reload(ctx, id)
}

// GetEntity returns the loaded aggregate for document rendering.
func (s *ContractService) GetEntity(ctx context.Context, id uuid.UUID) (*domain.ConsultingContract, error) {
	contract, err := s.contractRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get contract: %w", err)
	}
	return contract, nil
}

func (s *ContractService) GetByNumber(ctx context.Context, number int) (*domain.ContractDTO, error) {
	contract, err := s.contractRepo.GetByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get contract: %w", err)
	}
	dto := mapper.ToContractDTO(contract)
	return &dto, nil
}

// Update rewrites the aggregate. Family members are deleted and recreated,
// never diffed; image lists are reconciled against the stored ones.
func (s *ContractService) Update(ctx context.Context, id uuid.UUID, payload *domain.ContractPayload, images ContractImages) (*domain.ContractDTO, error) {
	contract, err := s.contractRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get contract: %w", err)
	}

	if err := s.applyPayload(contract, payload); err != nil {
		return nil, err
	}
	if payload.ContractNumber != nil {
		contract.ContractNumber = *payload.ContractNumber
	}

	err = s.contractRepo.WithTransaction(ctx, func(tx *gorm.DB) error {
		client, err := s.clientService.UpsertInTx(tx, &payload.Client)
		if err != nil {
			return err
		}
		contract.ClientID = client.ID

		if err := s.reconcileImages(ctx, contract, payload, images, client.FullName); err != nil {
			return err
		}

		if err := s.contractRepo.Update(tx, contract); err != nil {
			return fmt.Errorf("failed to update contract: %w", err)
		}

		members, err := buildFamilyMembers(payload.FamilyMembers)
		if err != nil {
			return err
		}
		return s.contractRepo.ReplaceFamilyMembers(tx, contract.ID, members)
	})
	if err != nil {
		return nil, translateContractError(err)
	}

	return s.reload(ctx, id)
}

func (s *ContractService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.contractRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get contract: %w", err)
	}
	return s.contractRepo.Delete(ctx, id)
}

func (s *ContractService) List(ctx context.Context, page, pageSize int, filters *repository.ContractFilters) ([]domain.ContractDTO, int64, error) {
	contracts, total, err := s.contractRepo.List(ctx, page, pageSize, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list contracts: %w", err)
	}
	return mapper.ToContractDTOs(contracts), total, nil
}

// applyPayload sets the scalar contract fields and fills the documented
// defaults for anything the payload leaves empty.
func (s *ContractService) applyPayload(contract *domain.ConsultingContract, payload *domain.ContractPayload) error {
	if payload.ContractDate != "" {
		t, err := domain.ParseDate(payload.ContractDate)
		if err != nil {
			return fmt.Errorf("contract date: %w", ErrInvalidInput)
		}
		contract.ContractDate = t
	} else if contract.ContractDate.IsZero() {
		contract.ContractDate = s.now()
	}

	contract.ContractLocation = orDefault(payload.ContractLocation, contract.ContractLocation, DefaultContractLocation)
	contract.ServiceName = orDefault(payload.ServiceName, contract.ServiceName, DefaultServiceName)
	contract.ServiceCountry = orDefault(payload.ServiceCountry, contract.ServiceCountry, DefaultServiceCountry)
	contract.VisaType = orDefault(payload.VisaType, contract.VisaType, DefaultVisaType)
	contract.ServiceDescription = payload.ServiceDescription
	contract.Notes = payload.Notes

	contract.TotalServiceFee = int64(payload.TotalServiceFee)
	contract.InitialPaymentAmount = int64(payload.InitialPaymentAmount)
	contract.RefundAmount = int64(payload.RefundAmount)
	contract.AmountPaid = int64(payload.AmountPaid)

	if payload.PostInterviewPaymentAmount != nil {
		contract.PostInterviewPaymentAmount = int64(*payload.PostInterviewPaymentAmount)
	} else {
		// Remainder after the initial payment, floored at zero
		rest := contract.TotalServiceFee - contract.InitialPaymentAmount
		if rest < 0 {
			rest = 0
		}
		contract.PostInterviewPaymentAmount = rest
	}

	contract.InitialPaymentDueDays = intOrDefault(payload.InitialPaymentDueDays, contract.InitialPaymentDueDays, DefaultPaymentDueDays)
	contract.PostInterviewDueDays = intOrDefault(payload.PostInterviewDueDays, contract.PostInterviewDueDays, DefaultPaymentDueDays)
	contract.ServiceDurationMonths = intOrDefault(payload.ServiceDurationMonths, contract.ServiceDurationMonths, DefaultDurationMonths)

	if payload.Status != "" {
		if !payload.Status.IsValid() {
			return fmt.Errorf("contract status %q: %w", payload.Status, ErrInvalidInput)
		}
		contract.Status = payload.Status
	} else if contract.Status == "" {
		contract.Status = domain.ContractStatusPreparation
	}

	return nil
}

// reconcileImages runs the attachment pipeline for all three categories
func (s *ContractService) reconcileImages(ctx context.Context, contract *domain.ConsultingContract, payload *domain.ContractPayload, images ContractImages, clientName string) error {
	categories := []struct {
		category media.Category
		existing []string
		base64   []string
		target   *pq.StringArray
	}{
		{media.CategoryPassport, contract.PassportImages, payload.PassportImages, &contract.PassportImages},
		{media.CategoryVisa, contract.VisaImages, payload.VisaImages, &contract.VisaImages},
		{media.CategoryCompletedContract, contract.CompletedContractImages, payload.CompletedContractImages, &contract.CompletedContractImages},
	}

	for _, c := range categories {
		sub := media.Submission{
			Uploads: images[c.category],
			Base64:  c.base64,
		}
		paths, err := s.reconciler.Reconcile(ctx, c.category, c.existing, sub, clientName)
		if err != nil {
			return err
		}
		*c.target = pq.StringArray(paths)
	}
	return nil
}

func (s *ContractService) reload(ctx context.Context, id uuid.UUID) (*domain.ContractDTO, error) {
	contract, err := s.contractRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to reload contract: %w", err)
	}
	dto := mapper.ToContractDTO(contract)
	return &dto, nil
}

func buildFamilyMembers(payloads []domain.FamilyMemberPayload) ([]domain.ContractFamilyMember, error) {
	members := make([]domain.ContractFamilyMember, 0, len(payloads))
	for _, p := range payloads {
		if !p.Relationship.IsValid() {
			return nil, fmt.Errorf("family relationship %q: %w", p.Relationship, ErrInvalidInput)
		}
		member := domain.ContractFamilyMember{
			Relationship:   p.Relationship,
			FirstName:      p.FirstName,
			LastName:       p.LastName,
			MiddleName:     p.MiddleName,
			PassportNumber: p.PassportNumber,
			Phone:          p.Phone,
			Notes:          p.Notes,
		}
		member.FullName = member.ComposeFullName()

		for _, d := range []struct {
			raw    *string
			target **time.Time
			name   string
		}{
			{p.PassportIssueDate, &member.PassportIssueDate, "passport issue date"},
			{p.PassportExpiryDate, &member.PassportExpiryDate, "passport expiry date"},
			{p.BirthDate, &member.BirthDate, "birth date"},
		} {
			if d.raw == nil || *d.raw == "" {
				continue
			}
			t, err := domain.ParseDate(*d.raw)
			if err != nil {
				return nil, fmt.Errorf("family member %s: %w", d.name, ErrInvalidInput)
			}
			*d.target = &t
		}

		members = append(members, member)
	}
	return members, nil
}

// translateContractError maps storage-level failures to service sentinels
func translateContractError(err error) error {
	var limitErr *media.LimitError
	var slugErr *media.SlugError
	if errors.As(err, &limitErr) || errors.As(err, &slugErr) {
		return fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return fmt.Errorf("contract number already taken: %w", ErrConflict)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("contract number already taken: %w", ErrConflict)
	}
	return err
}

func orDefault(payloadValue, current, fallback string) string {
	if payloadValue != "" {
		return payloadValue
	}
	if current != "" {
		return current
	}
	return fallback
}

func intOrDefault(payloadValue *int, current, fallback int) int {
	if payloadValue != nil {
		return *payloadValue
	}
	if current != 0 {
		return current
	}
	return fallback
}
