// Package export renders a transaction set as CSV, summarized JSON, or an
// XLSX workbook for download.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"studiodesk/internal/core"
)

// Supported output formats. Anything unrecognized falls back to JSON.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
	FormatXLSX = "xlsx"
)

var columns = []string{
	"Date",
	"Customer Name",
	"Phone Number",
	"Service",
	"Amount Paid",
	"Service By",
	"Expenses",
	"Net Profit",
	"Timestamp",
}

// NormalizeFormat maps a raw format parameter to a supported format.
func NormalizeFormat(format string) string {
	switch format {
	case FormatCSV:
		return FormatCSV
	case FormatXLSX:
		return FormatXLSX
	default:
		return FormatJSON
	}
}

// Filename returns the download name for an export generated now.
func Filename(period, format string, now time.Time) string {
	return fmt.Sprintf("business_export_%s_%s.%s",
		core.NormalizePeriod(period), now.Format(core.DateLayout), NormalizeFormat(format))
}

// CSV renders transactions as comma-separated text, one quoted field per
// column, rows in the order given. Field values are wrapped in quotes as-is;
// embedded quote characters are not escaped.
func CSV(transactions []core.Transaction) string {
	var b strings.Builder
	b.WriteString(strings.Join(columns, ","))
	b.WriteByte('\n')

	for _, txn := range transactions {
		fields := []string{
			txn.Date,
			txn.CustomerName,
			txn.PhoneNumber,
			txn.Service,
			formatAmount(txn.AmountPaid),
			txn.ServiceBy,
			formatAmount(txn.Expenses),
			formatAmount(txn.NetProfit()),
			txn.CreatedAt.Format(time.RFC3339),
		}
		for i, field := range fields {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteByte('"')
			b.WriteString(field)
			b.WriteByte('"')
		}
		b.WriteByte('\n')
	}

	return b.String()
}

// Summary is the header block of a JSON export.
type Summary struct {
	TotalTransactions int     `json:"totalTransactions"`
	TotalIncome       float64 `json:"totalIncome"`
	TotalExpenses     float64 `json:"totalExpenses"`
	NetProfit         float64 `json:"netProfit"`
	ExportDate        string  `json:"exportDate"`
	Filter            string  `json:"filter"`
}

// Document is the full JSON export payload.
type Document struct {
	Summary      Summary            `json:"summary"`
	Transactions []core.Transaction `json:"transactions"`
}

// JSON renders transactions plus a totals summary as an indented JSON
// document.
func JSON(transactions []core.Transaction, period string, now time.Time) ([]byte, error) {
	s := core.Summarize(transactions)

	doc := Document{
		Summary: Summary{
			TotalTransactions: s.TransactionCount,
			TotalIncome:       s.TotalIncome,
			TotalExpenses:     s.TotalExpenses,
			NetProfit:         s.NetIncome,
			ExportDate:        now.Format(time.RFC3339),
			Filter:            core.NormalizePeriod(period),
		},
		Transactions: transactions,
	}

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal export document: %w", err)
	}
	return out, nil
}

// XLSX renders transactions as a workbook with one row per transaction and a
// totals block underneath.
func XLSX(transactions []core.Transaction, period string, now time.Time) ([]byte, error) {
	f := excelize.NewFile()

	sheetName := "Transactions"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)

	for i, header := range columns {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err == nil {
		f.SetRowStyle(sheetName, 1, 1, headerStyle)
	}

	for rowIndex, txn := range transactions {
		row := rowIndex + 2
		values := []interface{}{
			txn.Date,
			txn.CustomerName,
			txn.PhoneNumber,
			txn.Service,
			txn.AmountPaid,
			txn.ServiceBy,
			txn.Expenses,
			txn.NetProfit(),
			txn.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		for colIndex, value := range values {
			cell := fmt.Sprintf("%c%d", 'A'+colIndex, row)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	s := core.Summarize(transactions)
	base := len(transactions) + 3
	totals := []struct {
		label string
		value interface{}
	}{
		{"Total Transactions", s.TransactionCount},
		{"Total Income", s.TotalIncome},
		{"Total Expenses", s.TotalExpenses},
		{"Net Profit", s.NetIncome},
		{"Filter", core.NormalizePeriod(period)},
		{"Export Date", now.Format("2006-01-02 15:04:05")},
	}
	for i, row := range totals {
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", base+i), row.label)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", base+i), row.value)
	}

	for i := range columns {
		col := string('A' + rune(i))
		f.SetColWidth(sheetName, col, col, 15)
	}

	if f.GetSheetName(0) != sheetName {
		f.DeleteSheet("Sheet1")
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
