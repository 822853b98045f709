// Package export renders client lists and contract documents to Excel and
// PDF for download endpoints and the bot.
package export

import (
	"bytes"
	"fmt"

	"github.com/khiva-consulting/backoffice-api/internal/domain"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

var clientSheetHeaders = []string{"N", "To'liq ismi", "Telefon raqami", "Qayerda eshitgan", "Qo'shilgan sanasi"}

var clientSheetWidths = []float64{6, 30, 25, 20, 18}

type ExcelExporter struct {
	logger *zap.Logger
}

func NewExcelExporter(logger *zap.Logger) *ExcelExporter {
	return &ExcelExporter{logger: logger}
}

// ClientList renders the client roster as a single-sheet workbook
func (e *ExcelExporter) ClientList(clients []domain.ClientInformation) ([]byte, error) {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			e.logger.Warn("failed to close workbook", zap.Error(err))
		}
	}()

	const sheet = "Mijozlar"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		e.logger.Warn("failed to drop default sheet", zap.Error(err))
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for i, header := range clientSheetHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
		if err := f.SetCellStyle(sheet, cell, cell, headerStyle); err != nil {
			return nil, fmt.Errorf("failed to style header: %w", err)
		}

		column, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheet, column, column, clientSheetWidths[i]); err != nil {
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for i, client := range clients {
		row := i + 2
		phones := client.Phone
		if client.Phone2 != "" {
			phones += ", " + client.Phone2
		}
		values := []interface{}{
			i + 1,
			client.FullName,
			phones,
			client.Heard,
			client.CreatedAt.Format("02.01.2006"),
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, fmt.Errorf("failed to write row %d: %w", row, err)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}
