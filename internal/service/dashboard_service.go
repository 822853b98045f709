package service

import (
	"context"
	"fmt"
	"time"

	"github.com/khiva-consulting/backoffice-api/internal/domain"
	"github.com/khiva-consulting/backoffice-api/internal/repository"
	"go.uber.org/zap"
)

type DashboardService struct {
	contractRepo *repository.ContractRepository
	clientRepo   *repository.ClientRepository
	leadRepo     *repository.LeadRepository
	stageRepo    *repository.LeadStageRepository
	logger       *zap.Logger
	now          func() time.Time
}

func NewDashboardService(
	contractRepo *repository.ContractRepository,
	clientRepo *repository.ClientRepository,
	leadRepo *repository.LeadRepository,
	stageRepo *repository.LeadStageRepository,
	logger *zap.Logger,
) *DashboardService {
	return &DashboardService{
		contractRepo: contractRepo,
		clientRepo:   clientRepo,
		leadRepo:     leadRepo,
		stageRepo:    stageRepo,
		logger:       logger,
		now:          time.Now,
	}
}

// Overview aggregates the front-page metrics: revenue windows, client
// counts, contract state split, debt and the acquisition channel breakdown.
func (s *DashboardService) Overview(ctx context.Context) (*domain.OverviewDashboardDTO, error) {
	now := s.now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	weekStart := dayStart.AddDate(0, 0, -6)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	dto := &domain.OverviewDashboardDTO{}

	var err error
	if dto.Revenue.Daily, err = s.contractRepo.SumPaidSince(ctx, dayStart); err != nil {
		return nil, fmt.Errorf("failed to sum daily revenue: %w", err)
	}
	if dto.Revenue.Weekly, err = s.contractRepo.SumPaidSince(ctx, weekStart); err != nil {
		return nil, fmt.Errorf("failed to sum weekly revenue: %w", err)
	}
	if dto.Revenue.Monthly, err = s.contractRepo.SumPaidSince(ctx, monthStart); err != nil {
		return nil, fmt.Errorf("failed to sum monthly revenue: %w", err)
	}
	if dto.Revenue.Total, err = s.contractRepo.SumPaidTotal(ctx); err != nil {
		return nil, fmt.Errorf("failed to sum total revenue: %w", err)
	}

	if dto.ClientCount, err = s.clientRepo.Count(ctx); err != nil {
		return nil, fmt.Errorf("failed to count clients: %w", err)
	}
	if dto.MonthClientCount, err = s.clientRepo.CountCreatedSince(ctx, monthStart); err != nil {
		return nil, fmt.Errorf("failed to count month clients: %w", err)
	}

	statusCounts, err := s.contractRepo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count contracts by status: %w", err)
	}
	dto.CompletedContracts = statusCounts[domain.ContractStatusCompleted]
	for status, count := range statusCounts {
		if status != domain.ContractStatusCompleted && status != domain.ContractStatusCancelled {
			dto.ActiveContracts += count
		}
	}

	debt, err := s.contractRepo.DebtSummary(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize debt: %w", err)
	}
	dto.TotalDebt = debt.TotalDebt
	dto.DebtorCount = debt.DebtorCount
	dto.NonDebtorCount = debt.NonDebtorCount

	heard, err := s.clientRepo.CountByHeard(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count heard channels: %w", err)
	}
	for _, row := range heard {
		dto.HeardBreakdown = append(dto.HeardBreakdown, domain.LabelCountDTO{Label: row.Label, Count: row.Count})
	}

	// Per-day client signups over the trailing week; gaps stay at zero
	weekRows, err := s.clientCountsByDay(ctx, weekStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	dto.WeekClients = weekRows

	return dto, nil
}

// Contracts returns contract volume, status split and payment flow for the
// given range. A zero range defaults to the trailing 30 days.
func (s *DashboardService) Contracts(ctx context.Context, from, to time.Time) (*domain.ContractsDashboardDTO, error) {
	from, to = s.defaultRange(from, to)

	dto := &domain.ContractsDashboardDTO{}

	created, err := s.contractRepo.CountCreatedByDay(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to count contracts by day: %w", err)
	}
	for _, row := range created {
		dto.DailyCreated = append(dto.DailyCreated, domain.DateCountDTO{Date: row.Date, Count: row.Count})
	}

	statusCounts, err := s.contractRepo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count contracts by status: %w", err)
	}
	for status, count := range statusCounts {
		dto.ByStatus = append(dto.ByStatus, domain.LabelCountDTO{Label: string(status), Count: count})
	}

	payments, err := s.contractRepo.SumPaidByDay(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to sum payments by day: %w", err)
	}
	for _, row := range payments {
		dto.RevenueOverTime = append(dto.RevenueOverTime, domain.DateAmountDTO{Date: row.Date, Amount: row.Amount})
	}

	debt, err := s.contractRepo.DebtSummary(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize debt: %w", err)
	}
	dto.DebtorCount = debt.DebtorCount
	dto.NonDebtorCount = debt.NonDebtorCount

	return dto, nil
}

// Leads returns the lead funnel for the given range
func (s *DashboardService) Leads(ctx context.Context, from, to time.Time) (*domain.LeadsDashboardDTO, error) {
	from, to = s.defaultRange(from, to)

	dto := &domain.LeadsDashboardDTO{}

	var err error
	if dto.Total, err = s.leadRepo.Count(ctx); err != nil {
		return nil, fmt.Errorf("failed to count leads: %w", err)
	}
	if dto.Converted, err = s.leadRepo.CountConverted(ctx); err != nil {
		return nil, fmt.Errorf("failed to count converted leads: %w", err)
	}
	if dto.Total > 0 {
		dto.ConversionRate = float64(dto.Converted) / float64(dto.Total) * 100
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

	operators, err := s.leadRepo.CountByOperator(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count by operator: %w", err)
	}
	for _, row := range operators {
		dto.ByOperator = append(dto.ByOperator, domain.LabelCountDTO{Label: row.OperatorName, Count: row.TotalLeads})
	}

	statusCounts, err := s.leadRepo.CountByCallStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count by call status: %w", err)
	}
	for status, count := range statusCounts {
		dto.ByCallStatus = append(dto.ByCallStatus, domain.LabelCountDTO{Label: string(status), Count: count})
	}

	daily, err := s.leadRepo.CountCreatedByDay(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to count leads by day: %w", err)
	}
	for _, row := range daily {
		dto.DailyCreated = append(dto.DailyCreated, domain.DateCountDTO{Date: row.Date, Count: row.Count})
	}

	return dto, nil
}

// clientCountsByDay fills zero rows for days with no signups
func (s *DashboardService) clientCountsByDay(ctx context.Context, from, to time.Time) ([]domain.DateCountDTO, error) {
	counts := make(map[string]int64)
	for day := from; day.Before(to); day = day.AddDate(0, 0, 1) {
		counts[day.Format("2006-01-02")] = 0
	}

	var rows []domain.DateCountDTO
	clients, err := s.clientRepo.ListAll(ctx, &repository.ClientFilters{CreatedAfter: &from, CreatedBefore: &to})
	if err != nil {
		return nil, fmt.Errorf("failed to list week clients: %w", err)
	}
	for i := range clients {
		counts[clients[i].CreatedAt.Format("2006-01-02")]++
	}

	for day := from; day.Before(to); day = day.AddDate(0, 0, 1) {
		key := day.Format("2006-01-02")
		rows = append(rows, domain.DateCountDTO{Date: key, Count: counts[key]})
	}
	return rows, nil
}

func (s *DashboardService) defaultRange(from, to time.Time) (time.Time, time.Time) {
	if to.IsZero() {
		to = s.now()
	}
	if from.IsZero() {
		from = to.AddDate(0, 0, -30)
	}
	return from, to
}
