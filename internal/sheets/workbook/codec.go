// Package workbook reads and writes the two-sheet ledger workbook (.xlsx).
//
// The same codec backs the on-disk ledger file and the download export, so a
// downloaded file can be dropped in place of the ledger file as-is.
package workbook

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"cashbook/internal/core"
	"cashbook/internal/ledger"
)

// ContentType is the MIME type of an .xlsx workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// amountFormat is the built-in "0.00" number format.
const amountFormat = 2

// Encode serializes both tables into one workbook: sheet Income, then sheet
// Expense, each with a header row and no index column.
func Encode(income, expense []core.Row) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeTables(f, income, expense); err != nil {
		return nil, fmt.Errorf("%w: %v", ledger.ErrEncoding, err)
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("%w: write buffer: %v", ledger.ErrEncoding, err)
	}
	return buf.Bytes(), nil
}

// Decode parses a workbook produced by Encode (or any workbook with the same
// sheet and header layout). A missing sheet or header is reported as
// ledger.ErrStorageUnavailable; an unparseable amount or date cell as
// ledger.ErrMalformedRow.
func Decode(data []byte) (income, expense []core.Row, err error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: open workbook: %v", ledger.ErrStorageUnavailable, err)
	}
	defer f.Close()

	if income, err = readTable(f, core.Income); err != nil {
		return nil, nil, err
	}
	if expense, err = readTable(f, core.Expense); err != nil {
		return nil, nil, err
	}
	return income, expense, nil
}

func writeTables(f *excelize.File, income, expense []core.Row) error {
	// NewFile starts with a single default sheet; reuse it for Income.
	if err := f.SetSheetName(f.GetSheetName(0), core.Income.String()); err != nil {
		return fmt.Errorf("rename default sheet: %w", err)
	}
	if _, err := f.NewSheet(core.Expense.String()); err != nil {
		return fmt.Errorf("create sheet %s: %w", core.Expense, err)
	}
	style, err := f.NewStyle(&excelize.Style{NumFmt: amountFormat})
	if err != nil {
		return fmt.Errorf("create amount style: %w", err)
	}
	if err := writeTable(f, core.Income, income, style); err != nil {
		return err
	}
	if err := writeTable(f, core.Expense, expense, style); err != nil {
		return err
	}
	f.SetActiveSheet(0)
	return nil
}

func writeTable(f *excelize.File, table core.Table, rows []core.Row, amountStyle int) error {
	sheet := table.String()
	headers := table.Headers()
	header := make([]any, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write %s header: %w", sheet, err)
	}
	if err := f.SetColStyle(sheet, "A", amountStyle); err != nil {
		return fmt.Errorf("style %s amounts: %w", sheet, err)
	}
	for i, r := range rows {
		line := i + 2
		if err := f.SetCellFloat(sheet, "A"+strconv.Itoa(line), r.Amount.Float64(), 2, 64); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, line, err)
		}
		if err := f.SetCellStr(sheet, "B"+strconv.Itoa(line), r.Label); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, line, err)
		}
		if err := f.SetCellStr(sheet, "C"+strconv.Itoa(line), r.Date.String()); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, line, err)
		}
	}
	return nil
}

func readTable(f *excelize.File, table core.Table) ([]core.Row, error) {
	sheet := table.String()
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx == -1 {
		return nil, fmt.Errorf("%w: missing sheet %s", ledger.ErrStorageUnavailable, sheet)
	}
	values, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: read sheet %s: %v", ledger.ErrStorageUnavailable, sheet, err)
	}
	rows := []core.Row{}
	if len(values) == 0 {
		return rows, nil
	}

	headers := values[0]
	colAmount := indexOf(headers, "Amount")
	colLabel := indexOf(headers, table.LabelHeader())
	colDate := indexOf(headers, "Date")
	if colAmount == -1 || colLabel == -1 || colDate == -1 {
		return nil, fmt.Errorf("%w: unexpected %s header %v", ledger.ErrStorageUnavailable, sheet, headers)
	}

	for i := 1; i < len(values); i++ {
		line := values[i]
		if isBlank(line) {
			continue
		}
		amount, err := parseAmountCell(safeGet(line, colAmount))
		if err != nil {
			return nil, fmt.Errorf("%w: %s row %d: %v", ledger.ErrMalformedRow, sheet, i+1, err)
		}
		date, err := parseDateCell(safeGet(line, colDate))
		if err != nil {
			return nil, fmt.Errorf("%w: %s row %d: %v", ledger.ErrMalformedRow, sheet, i+1, err)
		}
		rows = append(rows, core.Row{
			Amount: amount,
			Label:  strings.TrimSpace(safeGet(line, colLabel)),
			Date:   date,
		})
	}
	return rows, nil
}

// parseAmountCell takes the raw cell text, so numeric cells arrive in their
// stored form and text cells may use a decimal comma.
func parseAmountCell(s string) (core.Money, error) {
	m, err := core.ParseAmount(s)
	if err != nil {
		return core.Money{}, fmt.Errorf("amount %q: %w", s, err)
	}
	return m, nil
}

// parseDateCell accepts YYYY-MM-DD text, a datetime text starting with it,
// or an Excel serial date number.
func parseDateCell(s string) (core.Date, error) {
	s = strings.TrimSpace(s)
	if len(s) >= len(core.DateLayout) {
		if d, err := core.ParseDate(s[:len(core.DateLayout)]); err == nil {
			return d, nil
		}
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return core.Date{}, fmt.Errorf("date %q: %w", s, err)
		}
		return core.Date{Time: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}, nil
	}
	return core.Date{}, fmt.Errorf("date %q: %w", s, core.ErrInvalidDate)
}

func indexOf(headers []string, name string) int {
	for i, h := range headers {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i
		}
	}
	return -1
}

func safeGet(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
