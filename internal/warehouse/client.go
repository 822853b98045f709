// Package warehouse pushes contract reporting rows to the MS SQL Server
// warehouse consumed by the BI tooling. The connection is optional; when
// disabled the nightly sync job is skipped.
package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/khiva-consulting/backoffice-api/internal/config"
	_ "github.com/microsoft/go-mssqldb" // MS SQL Server driver
	"go.uber.org/zap"
)

const (
	// Retry configuration for connection attempts
	defaultMaxRetries     = 3
	defaultInitialBackoff = 1 * time.Second
	defaultMaxBackoff     = 10 * time.Second
	defaultBackoffFactor  = 2.0

	defaultHealthCheckTimeout = 5 * time.Second

	contractsTable = "backoffice_contracts"
)

// ContractRow is one denormalized contract record in the warehouse
type ContractRow struct {
	ContractID      string
	ContractNumber  int
	ContractDate    time.Time
	ClientName      string
	ClientPhone     string
	ServiceCountry  string
	VisaType        string
	TotalServiceFee int64
	AmountPaid      int64
	Status          string
	UpdatedAt       time.Time
}

// Client manages the warehouse connection pool and the upsert statement.
type Client struct {
	db           *sql.DB
	config       *config.WarehouseConfig
	logger       *zap.Logger
	queryTimeout time.Duration
}

// HealthStatus represents the health check result for the warehouse connection
type HealthStatus struct {
	Status  string        `json:"status"`
	Latency time.Duration `json:"latency_ms"`
	Error   string        `json:"error,omitempty"`
	Open    int           `json:"open_connections"`
	InUse   int           `json:"in_use"`
	Idle    int           `json:"idle"`
}

// NewClient connects to the warehouse with retry and backoff.
// Returns nil without error when the warehouse is disabled or unconfigured.
func NewClient(cfg *config.WarehouseConfig, logger *zap.Logger) (*Client, error) {
	if cfg == nil || !cfg.Enabled {
		logger.Info("Warehouse connection disabled")
		return nil, nil
	}

	if cfg.URL == "" || cfg.User == "" || cfg.Password == "" {
		logger.Warn("Warehouse enabled but missing credentials, skipping connection",
			zap.Bool("url_present", cfg.URL != ""),
			zap.Bool("user_present", cfg.User != ""),
			zap.Bool("password_present", cfg.Password != ""),
		)
		return nil, nil
	}

	connStr, err := buildConnectionString(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build connection string: %w", err)
	}

	var db *sql.DB
	backoff := defaultInitialBackoff

	for attempt := 1; attempt <= defaultMaxRetries; attempt++ {
		logger.Info("Attempting warehouse connection",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", defaultMaxRetries),
		)

		db, err = sql.Open("sqlserver", connStr)
		if err == nil {
			db.SetMaxOpenConns(cfg.MaxOpenConns)
			db.SetMaxIdleConns(cfg.MaxIdleConns)
			db.SetConnMaxLifetime(cfg.ConnMaxLifetimeDuration())

			ctx, cancel := context.WithTimeout(context.Background(), defaultHealthCheckTimeout)
			err = db.PingContext(ctx)
			cancel()
			if err == nil {
				logger.Info("Warehouse connection established", zap.Int("attempts_taken", attempt))
				return &Client{
					db:           db,
					config:       cfg,
					logger:       logger,
					queryTimeout: cfg.QueryTimeoutDuration(),
				}, nil
			}
			_ = db.Close()
		}

		logger.Warn("Warehouse connection attempt failed", zap.Error(err), zap.Int("attempt", attempt))
		if attempt < defaultMaxRetries {
			time.Sleep(backoff)
			backoff = min(time.Duration(float64(backoff)*defaultBackoffFactor), defaultMaxBackoff)
		}
	}

	return nil, fmt.Errorf("failed to connect to warehouse after %d attempts: %w", defaultMaxRetries, err)
}

// buildConnectionString constructs a SQL Server connection string from the
// config. URL format expected: host:port/database or host:port.
func buildConnectionString(cfg *config.WarehouseConfig) (string, error) {
	urlParts := strings.SplitN(cfg.URL, "/", 2)
	hostPort := urlParts[0]
	database := ""
	if len(urlParts) > 1 {
		database = urlParts[1]
	}

	hostParts := strings.SplitN(hostPort, ":", 2)
	host := hostParts[0]
	port := "1433"
	if len(hostParts) > 1 {
		port = hostParts[1]
	}

	query := url.Values{}
	query.Add("encrypt", "true")
	query.Add("TrustServerCertificate", "false")
	query.Add("connection timeout", "30")
	if database != "" {
		query.Add("database", database)
	}

	u := &url.URL{
		Scheme:   "sqlserver",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     fmt.Sprintf("%s:%s", host, port),
		RawQuery: query.Encode(),
	}

	return u.String(), nil
}

// EnsureSchema creates the contracts reporting table when missing
func (c *Client) EnsureSchema(ctx context.Context) error {
	if c == nil || c.db == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.queryTimeout)
	defer cancel()

	stmt := fmt.Sprintf(`IF OBJECT_ID('%s', 'U') IS NULL
CREATE TABLE %s (
	contract_id NVARCHAR(36) NOT NULL PRIMARY KEY,
	contract_number INT NOT NULL,
	contract_date DATE NOT NULL,
	client_name NVARCHAR(300) NOT NULL,
	client_phone NVARCHAR(30) NULL,
	service_country NVARCHAR(100) NULL,
	visa_type NVARCHAR(100) NULL,
	total_service_fee BIGINT NOT NULL,
	amount_paid BIGINT NOT NULL,
	status NVARCHAR(50) NOT NULL,
	updated_at DATETIME2 NOT NULL
)`, contractsTable, contractsTable)

	if _, err := c.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("failed to ensure warehouse schema: %w", err)
	}
	return nil
}

// UpsertContracts merges the given rows into the reporting table.
// Each row is merged on contract_id so reruns are idempotent.
func (c *Client) UpsertContracts(ctx context.Context, rows []ContractRow) (int, error) {
	if c == nil || c.db == nil {
		return 0, nil
	}
	if len(rows) == 0 {
		return 0, nil
	}

	stmt := fmt.Sprintf(`MERGE %s AS target
USING (SELECT @p1 AS contract_id) AS source
ON target.contract_id = source.contract_id
WHEN MATCHED THEN UPDATE SET
	contract_number = @p2, contract_date = @p3, client_name = @p4,
	client_phone = @p5, service_country = @p6, visa_type = @p7,
	total_service_fee = @p8, amount_paid = @p9, status = @p10, updated_at = @p11
WHEN NOT MATCHED THEN INSERT
	(contract_id, contract_number, contract_date, client_name, client_phone,
	 service_country, visa_type, total_service_fee, amount_paid, status, updated_at)
VALUES (@p1, @p2, @p3, @p4, @p5, @p6, @p7, @p8, @p9, @p10, @p11);`, contractsTable)

	synced := 0
	for _, row := range rows {
		rowCtx, cancel := context.WithTimeout(ctx, c.queryTimeout)
		_, err := c.db.ExecContext(rowCtx, stmt,
			row.ContractID, row.ContractNumber, row.ContractDate, row.ClientName,
			row.ClientPhone, row.ServiceCountry, row.VisaType,
			row.TotalServiceFee, row.AmountPaid, row.Status, row.UpdatedAt,
		)
		cancel()
		if err != nil {
			return synced, fmt.Errorf("failed to upsert contract %s: %w", row.ContractID, err)
		}
		synced++
	}
	return synced, nil
}

// Close gracefully closes the warehouse connection
func (c *Client) Close() error {
	if c == nil || c.db == nil {
		return nil
	}

	c.logger.Info("Closing warehouse connection")
	if err := c.db.Close(); err != nil {
		return fmt.Errorf("failed to close warehouse connection: %w", err)
	}
	return nil
}

// HealthCheck pings the warehouse and reports pool statistics
func (c *Client) HealthCheck(ctx context.Context) *HealthStatus {
	if c == nil || c.db == nil {
		return &HealthStatus{Status: "disabled"}
	}

	start := time.Now()
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultHealthCheckTimeout)
		defer cancel()
	}

	err := c.db.PingContext(ctx)
	latency := time.Since(start)

	stats := c.db.Stats()
	status := &HealthStatus{
		Latency: latency,
		Open:    stats.OpenConnections,
		InUse:   stats.InUse,
		Idle:    stats.Idle,
	}

	if err != nil {
		status.Status = "unhealthy"
		status.Error = err.Error()
	} else {
		status.Status = "healthy"
	}
	return status
}
