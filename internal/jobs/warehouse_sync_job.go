package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/khiva-consulting/backoffice-api/internal/domain"
	"github.com/khiva-consulting/backoffice-api/internal/warehouse"
	"go.uber.org/zap"
)

// WarehouseSyncJobName is the name of the warehouse push job
const WarehouseSyncJobName = "warehouse_sync"

// warehouseSyncBatchSize caps the number of contracts pushed per run
const warehouseSyncBatchSize = 500

// ContractSource lists contracts changed since the watermark.
// This interface allows the job to read contracts without importing the
// repository package directly.
type ContractSource interface {
	ListForWarehouse(ctx context.Context, updatedSince time.Time, limit int) ([]domain.ConsultingContract, error)
}

// WarehouseSyncJob pushes changed contracts to the reporting warehouse.
// The watermark is kept in memory: a restart re-pushes everything, which is
// safe because the upsert is idempotent.
type WarehouseSyncJob struct {
	contracts ContractSource
	client    *warehouse.Client
	logger    *zap.Logger
	timeout   time.Duration

	mu       sync.Mutex
	lastSync time.Time
}

// NewWarehouseSyncJob creates a new warehouse push job.
// The timeout bounds one full run.
func NewWarehouseSyncJob(contracts ContractSource, client *warehouse.Client, logger *zap.Logger, timeout time.Duration) *WarehouseSyncJob {
	return &WarehouseSyncJob{
		contracts: contracts,
		client:    client,
		logger:    logger,
		timeout:   timeout,
	}
}

// Run executes one sync pass. Called by the scheduler.
func (j *WarehouseSyncJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()

	j.mu.Lock()
	since := j.lastSync
	j.mu.Unlock()

	contracts, err := j.contracts.ListForWarehouse(ctx, since, warehouseSyncBatchSize)
	if err != nil {
		j.logger.Error("warehouse sync failed to list contracts",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		return
	}
	if len(contracts) == 0 {
		return
	}

	rows := make([]warehouse.ContractRow, 0, len(contracts))
	var watermark time.Time
	for i := range contracts {
		rows = append(rows, toContractRow(&contracts[i]))
		if contracts[i].UpdatedAt.After(watermark) {
			watermark = contracts[i].UpdatedAt
		}
	}

	synced, err := j.client.UpsertContracts(ctx, rows)
	if err != nil {
		j.logger.Error("warehouse sync failed",
			zap.Error(err),
			zap.Int("synced", synced),
			zap.Duration("duration", time.Since(start)))
		return
	}

	j.mu.Lock()
	j.lastSync = watermark
	j.mu.Unlock()

	j.logger.Info("warehouse sync completed",
		zap.Int("synced", synced),
		zap.Time("watermark", watermark),
		zap.Duration("duration", time.Since(start)))
}

func toContractRow(contract *domain.ConsultingContract) warehouse.ContractRow {
	row := warehouse.ContractRow{
		ContractID:      contract.ID.String(),
		ContractNumber:  contract.ContractNumber,
		ContractDate:    contract.ContractDate,
		ServiceCountry:  contract.ServiceCountry,
		VisaType:        contract.VisaType,
		TotalServiceFee: contract.TotalServiceFee,
		AmountPaid:      contract.AmountPaid,
		Status:          string(contract.Status),
		UpdatedAt:       contract.UpdatedAt,
	}
	if contract.Client != nil {
		row.ClientName = contract.Client.FullName
		row.ClientPhone = contract.Client.Phone
	}
	return row
}

// RegisterWarehouseSyncJob wires the job into the scheduler. A nil client
// means the warehouse is disabled and nothing is registered.
func RegisterWarehouseSyncJob(scheduler *Scheduler, contracts ContractSource, client *warehouse.Client, logger *zap.Logger, cronExpr string, timeout time.Duration) error {
	if client == nil {
		logger.Info("warehouse disabled, skipping sync job registration")
		return nil
	}
	job := NewWarehouseSyncJob(contracts, client, logger, timeout)
	return scheduler.AddJob(WarehouseSyncJobName, cronExpr, job.Run)
}
