// Package export writes financial lists as spreadsheets and mirrors confirmed
// payouts to a shared Google Sheet.
package export

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/mamadbah2/franchise/internal/domain/models"
	"github.com/mamadbah2/franchise/internal/format"
)

// ContentType is the media type of the generated workbooks.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// FileName returns the download name of a list export.
func FileName(kind, month string) string {
	return fmt.Sprintf("%s_%s.xlsx", kind, month)
}

// InvoicesXLSX writes the invoices of a month.
func InvoicesXLSX(w io.Writer, items []models.Invoice) error {
	rows := make([][]interface{}, 0, len(items))
	for _, inv := range items {
		rows = append(rows, []interface{}{
			inv.StudentName, inv.UnitName, inv.Month, format.Date(inv.DueDate),
			number(inv.AmountNet), string(inv.Status), inv.PaymentMethod,
		})
	}
	return write(w, "Mensalidades",
		[]string{"Aluno", "Unidade", "Mês", "Vencimento", "Valor", "Status", "Forma de pagamento"}, rows)
}

// ExpensesXLSX writes the expenses of a month.
func ExpensesXLSX(w io.Writer, items []models.Expense) error {
	rows := make([][]interface{}, 0, len(items))
	for _, e := range items {
		rows = append(rows, []interface{}{
			e.Description, e.Category, format.Date(e.Date), number(e.Amount), string(e.Status),
		})
	}
	return write(w, "Despesas", []string{"Fornecedor", "Tipo", "Vencimento", "Valor", "Status"}, rows)
}

// PayoutsXLSX writes the payouts of a month.
func PayoutsXLSX(w io.Writer, items []models.Payout) error {
	rows := make([][]interface{}, 0, len(items))
	for _, p := range items {
		rows = append(rows, []interface{}{
			p.EntityName, p.EntityType.Label(), p.Month(),
			number(p.GrossValue), number(p.AdvanceDeduction), number(p.NetValue), string(p.Status),
		})
	}
	return write(w, "Repasses",
		[]string{"Referência", "Tipo", "Mês", "Valor bruto", "Adiantamentos", "Valor", "Status"}, rows)
}

func write(w io.Writer, sheet string, headers []string, rows [][]interface{}) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("name sheet %s: %w", sheet, err)
	}

	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return fmt.Errorf("write header %s: %w", cell, err)
		}
	}
	for r, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, r+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", r+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func number(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}
