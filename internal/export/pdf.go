package export

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/go-pdf/fpdf"
	"github.com/khiva-consulting/backoffice-api/internal/domain"
	"go.uber.org/zap"
)

type PDFExporter struct {
	logger *zap.Logger
}

func NewPDFExporter(logger *zap.Logger) *PDFExporter {
	return &PDFExporter{logger: logger}
}

// ClientList renders the client roster as a landscape table
func (e *PDFExporter) ClientList(clients []domain.ClientInformation) ([]byte, error) {
	pdf := fpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, tr("Mijozlar ro'yxati"), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	widths := []float64{15, 90, 65, 55, 40}

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(217, 225, 242)
	for i, header := range clientSheetHeaders {
		pdf.CellFormat(widths[i], 8, tr(header), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for i, client := range clients {
		phones := client.Phone
		if client.Phone2 != "" {
			phones += ", " + client.Phone2
		}
		cells := []string{
			strconv.Itoa(i + 1),
			client.FullName,
			phones,
			client.Heard,
			client.CreatedAt.Format("02.01.2006"),
		}
		for j, cell := range cells {
			align := "L"
			if j == 0 {
				align = "C"
			}
			pdf.CellFormat(widths[j], 7, tr(cell), "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	return e.output(pdf)
}

// Contract renders the printable contract document
func (e *PDFExporter) Contract(contract *domain.ConsultingContract) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, tr(fmt.Sprintf("SHARTNOMA № %d", contract.ContractNumber)), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("%s, %s", contract.ContractLocation, contract.ContractDate.Format("02.01.2006"))), "", 1, "C", false, 0, "")
	pdf.Ln(6)

	clientName := ""
	if contract.Client != nil {
		clientName = contract.Client.FullName
	}

	e.section(pdf, tr, "Mijoz ma'lumotlari")
	rows := [][2]string{
		{"To'liq ismi", clientName},
	}
	if contract.Client != nil {
		rows = append(rows,
			[2]string{"Telefon", contract.Client.Phone},
			[2]string{"Pasport raqami", contract.Client.PassportNumber},
			[2]string{"Manzil", contract.Client.Address},
		)
	}
	e.table(pdf, tr, rows)

	e.section(pdf, tr, "Xizmat shartlari")
	e.table(pdf, tr, [][2]string{
		{"Xizmat nomi", contract.ServiceName},
		{"Davlat", contract.ServiceCountry},
		{"Viza turi", contract.VisaType},
		{"Xizmat muddati", fmt.Sprintf("%d oy", contract.ServiceDurationMonths)},
	})

	e.section(pdf, tr, "To'lov shartlari")
	e.table(pdf, tr, [][2]string{
		{"Umumiy xizmat narxi", e.amount(contract.TotalServiceFee)},
		{"Boshlang'ich to'lov", e.amount(contract.InitialPaymentAmount)},
		{"Boshlang'ich to'lov muddati", fmt.Sprintf("%d kun", contract.InitialPaymentDueDays)},
		{"Suhbatdan keyingi to'lov", e.amount(contract.PostInterviewPaymentAmount)},
		{"Suhbatdan keyingi muddat", fmt.Sprintf("%d kun", contract.PostInterviewDueDays)},
		{"To'langan", e.amount(contract.AmountPaid)},
		{"Qoldiq", e.amount(contract.RemainingAmount())},
	})

	if len(contract.FamilyMembers) > 0 {
		e.section(pdf, tr, "Oila a'zolari")
		for _, member := range contract.FamilyMembers {
			line := fmt.Sprintf("%s — %s", member.ComposeFullName(), member.Relationship)
			if member.PassportNumber != "" {
				line += fmt.Sprintf(" (%s)", member.PassportNumber)
			}
			pdf.SetFont("Helvetica", "", 10)
			pdf.CellFormat(0, 6, tr(line), "", 1, "L", false, 0, "")
		}
		pdf.Ln(2)
	}

	if contract.Notes != "" {
		e.section(pdf, tr, "Izohlar")
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 6, tr(contract.Notes), "", "L", false)
	}

	return e.output(pdf)
}

func (e *PDFExporter) section(pdf *fpdf.Fpdf, tr func(string) string, title string) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, tr(title), "", 1, "L", false, 0, "")
	pdf.Ln(1)
}

func (e *PDFExporter) table(pdf *fpdf.Fpdf, tr func(string) string, rows [][2]string) {
	pdf.SetFont("Helvetica", "", 10)
	for _, row := range rows {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(70, 7, tr(row[0]), "1", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 7, tr(row[1]), "1", 1, "L", false, 0, "")
	}
	pdf.Ln(3)
}

// amount formats the figure with its spelled-out Uzbek form
func (e *PDFExporter) amount(value int64) string {
	return fmt.Sprintf("%d so'm (%s so'm)", value, NumberToWordsUz(value))
}

func (e *PDFExporter) output(pdf *fpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
