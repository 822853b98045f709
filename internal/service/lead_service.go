package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/khiva-consulting/backoffice-api/internal/domain"
	"github.com/khiva-consulting/backoffice-api/internal/mapper"
	"github.com/khiva-consulting/backoffice-api/internal/media"
	"github.com/khiva-consulting/backoffice-api/internal/phone"
	"github.com/khiva-consulting/backoffice-api/internal/repository"
	"github.com/khiva-consulting/backoffice-api/internal/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// followUpDefaultDelay is applied when a lead moves to follow_up without an
// explicit date.
const followUpDefaultDelay = 72 * time.Hour

type LeadService struct {
	leadRepo     *repository.LeadRepository
	stageRepo    *repository.LeadStageRepository
	operatorRepo *repository.OperatorRepository
	clientRepo   *repository.ClientRepository
	store        storage.Storage
	logger       *zap.Logger
	now          func() time.Time
}

func NewLeadService(
	leadRepo *repository.LeadRepository,
	stageRepo *repository.LeadStageRepository,
	operatorRepo *repository.OperatorRepository,
	clientRepo *repository.ClientRepository,
	store storage.Storage,
	logger *zap.Logger,
) *LeadService {
	return &LeadService{
		leadRepo:     leadRepo,
		stageRepo:    stageRepo,
		operatorRepo: operatorRepo,
		clientRepo:   clientRepo,
		store:        store,
		logger:       logger,
		now:          time.Now,
	}
}

func (s *LeadService) Create(ctx context.Context, req *domain.CreateLeadRequest) (*domain.LeadDTO, error) {
	if req.CallStatus != nil && !req.CallStatus.IsValid() {
		return nil, fmt.Errorf("call status %q: %w", *req.CallStatus, ErrInvalidInput)
	}

	if req.OperatorID != nil {
		if _, err := s.operatorRepo.GetByID(ctx, *req.OperatorID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("operator: %w", ErrNotFound)
			}
			return nil, fmt.Errorf("failed to get operator: %w", err)
		}
	}

	lead := &domain.Lead{
		PhoneNumber:  s.normalizePhone(req.PhoneNumber),
		ClientName:   req.ClientName,
		OperatorID:   req.OperatorID,
		CallStatus:   req.CallStatus,
		CallDuration: req.CallDuration,
		Notes:        req.Notes,
		FollowUpDate: req.FollowUpDate,
	}

	if err := s.assignStage(ctx, lead); err != nil {
		return nil, err
	}

	if err := s.leadRepo.Create(ctx, lead); err != nil {
		return nil, fmt.Errorf("failed to create lead: %w", err)
	}

	return s.reload(ctx, lead.ID)
}

// QuickCreate captures a lead from just a phone number, e.g. a missed call
func (s *LeadService) QuickCreate(ctx context.Context, req *domain.QuickCreateLeadRequest) (*domain.LeadDTO, error) {
	return s.Create(ctx, &domain.CreateLeadRequest{
		PhoneNumber: req.PhoneNumber,
		ClientName:  req.ClientName,
		OperatorID:  req.OperatorID,
	})
}

func (s *LeadService) GetByID(ctx context.Context, id uuid.UUID) (*domain.LeadDTO, error) {
	return s.reload(ctx, id)
}

func (s *LeadService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateLeadRequest) (*domain.LeadDTO, error) {
	if req.CallStatus != nil && !req.CallStatus.IsValid() {
		return nil, fmt.Errorf("call status %q: %w", *req.CallStatus, ErrInvalidInput)
	}

	lead, err := s.leadRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}

	if req.OperatorID != nil {
		if _, err := s.operatorRepo.GetByID(ctx, *req.OperatorID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("operator: %w", ErrNotFound)
			}
			return nil, fmt.Errorf("failed to get operator: %w", err)
		}
	}

	lead.PhoneNumber = s.normalizePhone(req.PhoneNumber)
	lead.ClientName = req.ClientName
	lead.OperatorID = req.OperatorID
	lead.CallStatus = req.CallStatus
	lead.CallDuration = req.CallDuration
	lead.Notes = req.Notes
	lead.FollowUpDate = req.FollowUpDate

	if err := s.assignStage(ctx, lead); err != nil {
		return nil, err
	}

	if err := s.leadRepo.Update(ctx, lead); err != nil {
		return nil, fmt.Errorf("failed to update lead: %w", err)
	}

	return s.reload(ctx, id)
}

func (s *LeadService) Delete(ctx context.Context, id uuid.UUID) error {
	lead, err := s.leadRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get lead: %w", err)
	}

	if err := s.leadRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete lead: %w", err)
	}

	if lead.AudioPath != "" {
		if err := s.store.Delete(ctx, media.StorageKey(lead.AudioPath)); err != nil {
			s.logger.Warn("failed to delete lead audio", zap.String("path", lead.AudioPath), zap.Error(err))
		}
	}
	return nil
}

func (s *LeadService) List(ctx context.Context, page, pageSize int, filters *repository.LeadFilters, sortBy repository.LeadSortOption) ([]domain.LeadDTO, int64, error) {
	leads, total, err := s.leadRepo.List(ctx, page, pageSize, filters, sortBy)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list leads: %w", err)
	}
	return mapper.ToLeadDTOs(leads), total, nil
}

// TransitionStage moves a lead to a target stage. For system stages the
// driving fields are rewritten so the stored stage and the resolver agree;
// a custom stage only moves the card.
func (s *LeadService) TransitionStage(ctx context.Context, id uuid.UUID, req *domain.TransitionLeadRequest) (*domain.LeadDTO, error) {
	lead, err := s.leadRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}

	stage, err := s.stageRepo.GetByKey(ctx, req.StageKey)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("stage %q: %w", req.StageKey, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get stage: %w", err)
	}

	switch req.StageKey {
	case domain.StageConverted:
		if err := s.convert(ctx, lead); err != nil {
			return nil, err
		}
	case domain.StageFollowUp:
		followUp := s.now().Add(followUpDefaultDelay)
		if req.FollowUpDate != nil {
			followUp = *req.FollowUpDate
		}
		lead.FollowUpDate = &followUp
	case domain.StageAnswered, domain.StageNotAnswered, domain.StageClientAnswered, domain.StageClientNotAnswered:
		status := callStatusForStage(req.StageKey)
		lead.CallStatus = &status
		lead.FollowUpDate = nil
	}

	lead.StageID = &stage.ID
	if err := s.leadRepo.Update(ctx, lead); err != nil {
		return nil, fmt.Errorf("failed to transition lead: %w", err)
	}

	return s.reload(ctx, id)
}

// Convert marks the lead converted and creates its client record.
func (s *LeadService) Convert(ctx context.Context, id uuid.UUID) (*domain.LeadDTO, error) {
	return s.TransitionStage(ctx, id, &domain.TransitionLeadRequest{StageKey: domain.StageConverted})
}

// Board returns the kanban view: every stage with its leads in order.
func (s *LeadService) Board(ctx context.Context) ([]domain.KanbanColumnDTO, error) {
	stages, err := s.stageRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list stages: %w", err)
	}

	columns := make([]domain.KanbanColumnDTO, 0, len(stages))
	for i := range stages {
		leads, err := s.leadRepo.GetByStage(ctx, stages[i].ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load stage leads: %w", err)
		}
		column := domain.KanbanColumnDTO{
			Stage: mapper.ToLeadStageDTO(&stages[i]),
			Leads: mapper.ToLeadDTOs(leads),
		}
		column.Stage.LeadCount = int64(len(leads))
		columns = append(columns, column)
	}
	return columns, nil
}

// Statistics returns the lead funnel summary
func (s *LeadService) Statistics(ctx context.Context) (*domain.LeadsDashboardDTO, error) {
	total, err := s.leadRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count leads: %w", err)
	}
	converted, err := s.leadRepo.CountConverted(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count converted leads: %w", err)
	}

	dto := &domain.LeadsDashboardDTO{
		Total:     total,
		Converted: converted,
	}
	if total > 0 {
		dto.ConversionRate = float64(converted) / float64(total) * 100
	}

	stages, err := s.stageRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list stages: %w", err)
	}
	stageCounts, err := s.leadRepo.CountByStage(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count by stage: %w", err)
	}
	for i := range stages {
		dto.ByStage = append(dto.ByStage, domain.LabelCountDTO{
			Label: stages[i].Name,
			Count: stageCounts[stages[i].ID],
		})
	}

	operatorCounts, err := s.leadRepo.CountByOperator(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count by operator: %w", err)
	}
	for _, row := range operatorCounts {
		dto.ByOperator = append(dto.ByOperator, domain.LabelCountDTO{
			Label: row.OperatorName,
			Count: row.TotalLeads,
		})
	}

	statusCounts, err := s.leadRepo.CountByCallStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count by call status: %w", err)
	}
	for status, count := range statusCounts {
		dto.ByCallStatus = append(dto.ByCallStatus, domain.LabelCountDTO{
			Label: string(status),
			Count: count,
		})
	}

	now := s.now()
	daily, err := s.leadRepo.CountCreatedByDay(ctx, now.AddDate(0, 0, -30), now)
	if err != nil {
		return nil, fmt.Errorf("failed to count daily leads: %w", err)
	}
	for _, row := range daily {
		dto.DailyCreated = append(dto.DailyCreated, domain.DateCountDTO{Date: row.Date, Count: row.Count})
	}

	return dto, nil
}

// AttachAudio stores a call recording and links it to the lead
func (s *LeadService) AttachAudio(ctx context.Context, id uuid.UUID, filename, contentType string, data io.Reader) (*domain.LeadDTO, error) {
	lead, err := s.leadRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}

	slug := media.Slugify(filename)
	if slug == "" {
		return nil, fmt.Errorf("audio filename: %w", ErrInvalidInput)
	}
	key := fmt.Sprintf("%s/%s_%s", media.CategoryLeadAudio.Folder(), lead.ID, slug)

	if _, err := s.store.Save(ctx, key, contentType, data); err != nil {
		return nil, fmt.Errorf("failed to store audio: %w", err)
	}

	lead.AudioPath = media.NormalizePath(key)
	if err := s.leadRepo.Update(ctx, lead); err != nil {
		return nil, fmt.Errorf("failed to update lead: %w", err)
	}

	return s.reload(ctx, id)
}

// convert is the one-shot client creation for a converting lead
func (s *LeadService) convert(ctx context.Context, lead *domain.Lead) error {
	lead.FollowUpDate = nil
	if lead.IsConverted {
		return ErrAlreadyConverted
	}
	lead.IsConverted = true

	name := lead.ClientName
	if name == "" {
		name = fmt.Sprintf("Lead #%s", lead.PhoneNumber)
	}

	client := &domain.ClientInformation{
		FirstName: name,
		FullName:  name,
		Phone:     lead.PhoneNumber,
		Heard:     "Lead orqali",
	}
	if err := s.clientRepo.Create(ctx, client); err != nil {
		return fmt.Errorf("failed to create client from lead: %w", err)
	}
	lead.ConvertedClientID = &client.ID
	return nil
}

// assignStage recomputes the denormalized stage from the driving fields.
// A missing stage row falls back to the default not_answered row; the
// write only fails when the fallback row is missing too.
func (s *LeadService) assignStage(ctx context.Context, lead *domain.Lead) error {
	key := domain.ResolveLeadStageKey(lead, s.now())
	stage, err := s.stageRepo.GetByKey(ctx, key)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to resolve stage %q: %w", key, err)
		}
		s.logger.Warn("resolved stage row missing, using default stage",
			zap.String("stage", string(key)))
		stage, err = s.stageRepo.GetByKey(ctx, domain.StageNotAnswered)
		if err != nil {
			return fmt.Errorf("failed to resolve default stage: %w", err)
		}
	}
	lead.StageID = &stage.ID
	return nil
}

// normalizePhone stores the canonical +998 form when the number parses,
// the raw input otherwise.
func (s *LeadService) normalizePhone(raw string) string {
	normalized, err := phone.Normalize(raw)
	if err != nil {
		s.logger.Debug("keeping unnormalized lead phone", zap.String("phone", raw), zap.Error(err))
		return raw
	}
	return normalized
}

func (s *LeadService) reload(ctx context.Context, id uuid.UUID) (*domain.LeadDTO, error) {
	lead, err := s.leadRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to reload lead: %w", err)
	}
	dto := mapper.ToLeadDTO(lead)
	return &dto, nil
}

func callStatusForStage(key domain.StageKey) domain.CallStatus {
	switch key {
	case domain.StageAnswered:
		return domain.CallStatusAnswered
	case domain.StageClientAnswered:
		return domain.CallStatusClientAnswered
	case domain.StageClientNotAnswered:
		return domain.CallStatusClientNotAnswered
	default:
		return domain.CallStatusNotAnswered
	}
}
