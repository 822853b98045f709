package export_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/khiva-consulting/backoffice-api/internal/domain"
	"github.com/khiva-consulting/backoffice-api/internal/export"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

func TestExcelExporter_ClientList(t *testing.T) {
	exporter := export.NewExcelExporter(zap.NewNop())

	created := time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)
	clients := []domain.ClientInformation{
		{
			FirstName: "Aziz",
			LastName:  "Karimov",
			FullName:  "Karimov Aziz",
			Phone:     "+998901234567",
			Phone2:    "+998971112233",
			Heard:     "Instagram",
		},
		{
			FirstName: "Dilnoza",
			LastName:  "Rashidova",
			FullName:  "Rashidova Dilnoza",
			Phone:     "+998935554433",
			Heard:     "Lead orqali",
		},
	}
	clients[0].CreatedAt = created
	clients[1].CreatedAt = created

	data, err := exporter.ClientList(clients)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Mijozlar")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{"N", "To'liq ismi", "Telefon raqami", "Qayerda eshitgan", "Qo'shilgan sanasi"}, rows[0])

	// Both phone numbers are joined in one cell
	assert.Equal(t, "1", rows[1][0])
	assert.Equal(t, "Karimov Aziz", rows[1][1])
	assert.Equal(t, "+998901234567, +998971112233", rows[1][2])
	assert.Equal(t, "Instagram", rows[1][3])
	assert.Equal(t, "15.03.2025", rows[1][4])

	assert.Equal(t, "+998935554433", rows[2][2])
}

func TestExcelExporter_ClientList_Empty(t *testing.T) {
	exporter := export.NewExcelExporter(zap.NewNop())

	data, err := exporter.ClientList(nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Mijozlar")
	require.NoError(t, err)
	require.Len(t, rows, 1, "only the header row")
}

func TestPDFExporter_ClientList(t *testing.T) {
	exporter := export.NewPDFExporter(zap.NewNop())

	data, err := exporter.ClientList([]domain.ClientInformation{
		{FullName: "Karimov Aziz", Phone: "+998901234567", Heard: "Instagram"},
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestPDFExporter_Contract(t *testing.T) {
	exporter := export.NewPDFExporter(zap.NewNop())

	contract := &domain.ConsultingContract{
		ContractNumber:        17,
		ContractDate:          time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
		ContractLocation:      "Xiva",
		ServiceName:           "Angliya ishchi viza paketi",
		ServiceCountry:        "Angliya",
		VisaType:              "Ishchi viza",
		TotalServiceFee:       85_000_000,
		AmountPaid:            20_000_000,
		ServiceDurationMonths: 8,
		Status:                domain.ContractStatusPreparation,
		Client: &domain.ClientInformation{
			FullName: "Karimov Aziz",
			Phone:    "+998901234567",
		},
		FamilyMembers: []domain.ContractFamilyMember{
			{Relationship: domain.RelationshipSpouse, FullName: "Karimova Nodira"},
		},
	}

	data, err := exporter.Contract(contract)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
	assert.Greater(t, len(data), 1000)
}
