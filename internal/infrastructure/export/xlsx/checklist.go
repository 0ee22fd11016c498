// Package xlsx renders a loan checklist as a spreadsheet workbook.
package xlsx

import (
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/loan-workbench/internal/core/checklist"
	"github.com/kirillkom/loan-workbench/internal/core/domain"
)

const (
	SheetSummary    = "Summary"
	SheetMissing    = "Missing"
	SheetCompleted  = "Completed"
	SheetUnassigned = "Unassigned"

	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// WriteChecklist writes a four-sheet workbook for the loan to w.
func WriteChecklist(w io.Writer, loan domain.Loan, result checklist.Result) error {
	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return fmt.Errorf("rename summary sheet: %w", err)
	}
	for _, name := range []string{SheetMissing, SheetCompleted, SheetUnassigned} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	summary := result.Summary()
	if err := writeRows(f, SheetSummary, header, []string{"Field", "Value"}, [][]any{
		{"Loan ID", loan.ID},
		{"Borrower", loan.BorrowerName},
		{"Lender", loan.Lender},
		{"Loan Amount", loan.LoanAmount},
		{"LTV", loan.LTV},
		{"DSCR", loan.DSCR},
		{"Required", summary.RequiredCount},
		{"Fulfilled", summary.FulfilledCount},
		{"Missing", summary.MissingCount},
		{"Approved", summary.ApprovedCount},
		{"Progress %", summary.ProgressPercent},
	}); err != nil {
		return err
	}

	missing := make([][]any, 0, len(result.Missing))
	for _, m := range result.Missing {
		missing = append(missing, []any{m.Name, m.Stage, string(m.Requirement.Kind)})
	}
	if err := writeRows(f, SheetMissing, header, []string{"Requirement", "Stage", "Source"}, missing); err != nil {
		return err
	}

	completed := make([][]any, 0, len(result.Completed))
	for _, entry := range result.Completed {
		requirement := ""
		if entry.Requirement != nil {
			requirement = entry.Requirement.Name
		}
		completed = append(completed, []any{
			entry.Document.Category, requirement, string(entry.Document.Status), entry.Document.Filename, entry.Document.ID,
		})
	}
	if err := writeRows(f, SheetCompleted, header, []string{"Category", "Requirement", "Status", "Filename", "Document ID"}, completed); err != nil {
		return err
	}

	unassigned := make([][]any, 0, len(result.Unassigned))
	for _, doc := range result.Unassigned {
		unassigned = append(unassigned, []any{doc.Filename, doc.Category, string(doc.Status), doc.ID})
	}
	if err := writeRows(f, SheetUnassigned, header, []string{"Filename", "Last Category", "Status", "Document ID"}, unassigned); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, headerStyle int, header []string, rows [][]any) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write %s header: %w", sheet, err)
	}
	if err := f.SetRowStyle(sheet, 1, 1, headerStyle); err != nil {
		return fmt.Errorf("style %s header: %w", sheet, err)
	}
	for i, row := range rows {
		cell := "A" + strconv.Itoa(i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+2, err)
		}
	}
	lastCol, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return fmt.Errorf("resolve %s columns: %w", sheet, err)
	}
	if err := f.SetColWidth(sheet, "A", lastCol, 24); err != nil {
		return fmt.Errorf("size %s columns: %w", sheet, err)
	}
	return nil
}
