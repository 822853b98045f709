package repository_test

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/khiva-consulting/backoffice-api/internal/repository"
	"github.com/khiva-consulting/backoffice-api/internal/testutil"
)

func TestNextContractNumber(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewContractRepository(db)

	next, err := repo.NextContractNumber(db)
	require.NoError(t, err)
	assert.Equal(t, 1, next, "empty table starts at 1")

	for _, n := range []int{1, 2, 7} {
		require.NoError(t, db.Exec(
			`INSERT INTO consulting_contracts (id, contract_number) VALUES (?, ?)`,
			uuid.NewString(), n).Error)
	}

	next, err = repo.NextContractNumber(db)
	require.NoError(t, err)
	assert.Equal(t, 8, next, "continues from the highest number, not the count")
}

// Postgres rejects FOR UPDATE on aggregate queries (0A000), so the number
// reservation must lock the top row instead of MAX(). Rendering the query
// against the postgres dialector catches a regression without a server.
func TestNextContractNumber_PostgresStatement(t *testing.T) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=backoffice dbname=backoffice",
	}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
		Logger:               logger.Discard,
	})
	require.NoError(t, err)

	var rendered string
	err = db.Callback().Query().After("gorm:query").Register("capture_statement", func(tx *gorm.DB) {
		rendered = tx.Statement.SQL.String()
	})
	require.NoError(t, err)

	repo := repository.NewContractRepository(db)
	_, err = repo.NextContractNumber(db)
	require.NoError(t, err)

	sql := strings.ToUpper(rendered)
	require.NotEmpty(t, sql)
	assert.NotContains(t, sql, "MAX(")
	assert.Contains(t, sql, "FOR UPDATE")
	assert.Contains(t, sql, "ORDER BY")
	assert.Contains(t, sql, "LIMIT")
}
