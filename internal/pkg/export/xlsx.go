package export

import (
	"fmt"
	"io"

	"github.com/cmlabs-hris/spa-payroll/internal/domain/payroll"
	"github.com/xuri/excelize/v2"
)

const (
	SheetSummary     = "Summary"
	SheetInvoices    = "Invoices"
	SheetOvertime    = "Overtime"
	SheetDiagnostics = "Diagnostics"
)

// ContentTypeXLSX is the MIME type of the workbook written by WritePayrollXLSX
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// FileName is the suggested download name, e.g. payroll-NV001-2025-02.xlsx
func FileName(report payroll.PayrollReport) string {
	return fmt.Sprintf("payroll-%s-%s.xlsx", report.Employee.Code, report.Period)
}

// WritePayrollXLSX renders a payroll report as a workbook with one sheet per section.
func WritePayrollXLSX(w io.Writer, report payroll.PayrollReport) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{SheetInvoices, SheetOvertime, SheetDiagnostics} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	summary := [][]interface{}{
		{"Employee", report.Employee.Name},
		{"Employee code", report.Employee.Code},
		{"Period", report.Period},
		{"Base salary", report.BaseSalary},
		{"Total commission", report.TotalCommission},
		{"Total overtime", report.TotalOvertimeAmount},
		{"Total salary", report.TotalSalary},
		{"Invoices", report.Summary.InvoiceCount},
		{"Credited invoices", report.Summary.CreditedInvoiceCount},
		{"Total revenue", report.Summary.TotalRevenue},
		{"Average commission per invoice", report.Summary.AverageCommissionPerInvoice},
		{"Commission on legacy default prices", report.Summary.LegacyDefaultCommission},
		{"Diagnostics", report.Summary.DiagnosticCount},
	}
	if err := writeRows(f, SheetSummary, summary); err != nil {
		return err
	}

	invoices := [][]interface{}{
		{"Invoice", "Created at", "Credit source", "Service", "Quantity", "Unit price", "Commission rate", "Credit share", "Commission", "Price source"},
	}
	for _, inv := range report.Invoices {
		if len(inv.Services) == 0 {
			invoices = append(invoices, []interface{}{inv.InvoiceID, inv.CreatedAt, string(inv.CreditSource), "", 0, 0, 0, 0, 0, ""})
			continue
		}
		for _, line := range inv.Services {
			invoices = append(invoices, []interface{}{
				inv.InvoiceID, inv.CreatedAt, string(inv.CreditSource), line.Service, line.Quantity,
				line.UnitPrice, line.CommissionRate.InexactFloat64(), line.CreditShare.InexactFloat64(),
				line.Commission, string(line.PriceSource),
			})
		}
	}
	if err := writeRows(f, SheetInvoices, invoices); err != nil {
		return err
	}

	overtime := [][]interface{}{{"Date", "Hours", "Hourly rate", "Total"}}
	for _, ot := range report.Overtime {
		overtime = append(overtime, []interface{}{ot.Date, ot.Hours.InexactFloat64(), ot.HourlyRate, ot.TotalAmount})
	}
	if err := writeRows(f, SheetOvertime, overtime); err != nil {
		return err
	}

	diagnostics := [][]interface{}{{"Kind", "Invoice", "Service", "Message"}}
	for _, d := range report.Diagnostics {
		var invoiceID interface{} = ""
		if d.InvoiceID != nil {
			invoiceID = *d.InvoiceID
		}
		diagnostics = append(diagnostics, []interface{}{string(d.Kind), invoiceID, d.Service, d.Message})
	}
	if err := writeRows(f, SheetDiagnostics, diagnostics); err != nil {
		return err
	}

	if err := f.SetColWidth(SheetSummary, "A", "A", 36); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}
	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
