package payroll

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/cmlabs-hris/spa-payroll/internal/config"
	"github.com/cmlabs-hris/spa-payroll/internal/domain/payroll"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

var reportNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("spa-payroll/payroll-report"))

type PayrollServiceImpl struct {
	payrollRepo payroll.PayrollRepository
	workers     int
	fallback    LegacyPriceFallbackPolicy
}

func NewPayrollService(payrollRepo payroll.PayrollRepository, cfg config.PayrollConfig) *PayrollServiceImpl {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	return &PayrollServiceImpl{
		payrollRepo: payrollRepo,
		workers:     workers,
		fallback: LegacyPriceFallbackPolicy{
			Enabled:        cfg.LegacyFallback.Enabled,
			PrimaryCode:    cfg.LegacyFallback.PrimaryCode,
			PrimaryPrice:   cfg.LegacyFallback.PrimaryPrice,
			DefaultPrice:   cfg.LegacyFallback.DefaultPrice,
			CommissionRate: cfg.LegacyFallback.CommissionRate,
		},
	}
}

// snapshot is everything read from the store for one report
type snapshot struct {
	employee payroll.Employee
	services []payroll.ServiceDefinition
	invoices []payroll.Invoice
	overtime []payroll.OvertimeRecord
}

type invoiceResult struct {
	breakdown   payroll.InvoiceBreakdown
	legacyTotal int64
	diagnostics []payroll.Diagnostic
}

// ComputePayroll builds the payroll report of one employee for a "YYYY-MM" period.
// Only an unknown/inactive employee and a malformed period are errors; data-quality
// problems end up in the report diagnostics.
func (s *PayrollServiceImpl) ComputePayroll(ctx context.Context, employeeID int64, periodStr string) (payroll.PayrollReport, error) {
	period, err := payroll.ParsePeriod(periodStr)
	if err != nil {
		return payroll.PayrollReport{}, err
	}
	if employeeID <= 0 {
		return payroll.PayrollReport{}, fmt.Errorf("%w: %d", payroll.ErrEmployeeNotFound, employeeID)
	}

	snap, err := s.load(ctx, employeeID, period)
	if err != nil {
		return payroll.PayrollReport{}, err
	}
	emp := snap.employee

	var diagnostics []payroll.Diagnostic
	invoices, filterDiags := filterInvoices(snap.invoices, period)
	diagnostics = append(diagnostics, filterDiags...)

	itemsByInvoice := map[int64][]payroll.InvoiceLineItem{}
	if len(invoices) > 0 {
		ids := make([]int64, 0, len(invoices))
		for _, inv := range invoices {
			ids = append(ids, inv.ID)
		}
		items, err := s.payrollRepo.ListInvoiceLineItems(ctx, ids)
		if err != nil {
			return payroll.PayrollReport{}, fmt.Errorf("failed to list invoice items: %w", err)
		}
		for _, item := range items {
			itemsByInvoice[item.InvoiceID] = append(itemsByInvoice[item.InvoiceID], item)
		}
	}

	calculator := NewCommissionCalculator(NewCatalog(snap.services), s.fallback)

	// invoices are independent; results are stored by index to keep output order stable
	results := make([]invoiceResult, len(invoices))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, inv := range invoices {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = computeInvoice(calculator, inv, itemsByInvoice[inv.ID], emp)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return payroll.PayrollReport{}, err
	}

	report := payroll.PayrollReport{
		ReportID: ReportID(emp.ID, period),
		Employee: payroll.EmployeeSnapshot{
			ID:                    emp.ID,
			Code:                  emp.Code,
			Name:                  emp.DisplayName,
			BaseSalary:            emp.BaseSalary,
			DefaultCommissionRate: emp.DefaultCommissionRate,
			Active:                emp.Active,
		},
		Period:     period.String(),
		BaseSalary: emp.BaseSalary,
		Invoices:   make([]payroll.InvoiceBreakdown, 0, len(results)),
		Overtime:   []payroll.OvertimeBreakdown{},
	}

	for i, r := range results {
		report.Invoices = append(report.Invoices, r.breakdown)
		report.TotalCommission += r.breakdown.Commission
		report.Summary.TotalRevenue += invoices[i].TotalAmount
		report.Summary.LegacyDefaultCommission += r.legacyTotal
		if len(r.breakdown.Services) > 0 {
			report.Summary.CreditedInvoiceCount++
		}
		diagnostics = append(diagnostics, r.diagnostics...)
	}

	for _, ot := range snap.overtime {
		if !period.ContainsDate(ot.Date) {
			diagnostics = append(diagnostics, newDiagnostic(payroll.DiagnosticOvertimeOutOfPeriod, nil, "",
				"overtime record %d dated %s is outside %s", ot.ID, ot.Date.Format("2006-01-02"), period))
			continue
		}
		report.TotalOvertimeAmount += ot.TotalAmount
		report.Overtime = append(report.Overtime, payroll.OvertimeBreakdown{
			Date:        ot.Date.Format("2006-01-02"),
			Hours:       ot.Hours,
			HourlyRate:  ot.HourlyRate,
			TotalAmount: ot.TotalAmount,
		})
	}

	report.TotalSalary = report.BaseSalary + report.TotalCommission + report.TotalOvertimeAmount
	report.Summary.InvoiceCount = len(report.Invoices)
	if report.Summary.InvoiceCount > 0 {
		avg := decimal.NewFromInt(report.TotalCommission).Div(decimal.NewFromInt(int64(report.Summary.InvoiceCount)))
		report.Summary.AverageCommissionPerInvoice = RoundHalfUp(avg)
	}

	if diagnostics == nil {
		diagnostics = []payroll.Diagnostic{}
	}
	report.Diagnostics = diagnostics
	report.Summary.DiagnosticCount = len(diagnostics)

	for _, d := range diagnostics {
		attrs := []any{"employee_id", emp.ID, "period", report.Period, "kind", d.Kind, "message", d.Message}
		if d.InvoiceID != nil {
			attrs = append(attrs, "invoice_id", *d.InvoiceID)
		}
		slog.WarnContext(ctx, "Payroll diagnostic", attrs...)
	}
	slog.InfoContext(ctx, "Payroll computed",
		"employee_id", emp.ID,
		"period", report.Period,
		"invoice_count", report.Summary.InvoiceCount,
		"total_commission", report.TotalCommission,
		"total_salary", report.TotalSalary,
	)

	return report, nil
}

// load issues the four independent reads concurrently; all must finish before credit resolution.
func (s *PayrollServiceImpl) load(ctx context.Context, employeeID int64, period payroll.Period) (snapshot, error) {
	var snap snapshot
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		emp, err := s.payrollRepo.GetEmployee(gctx, employeeID)
		if err != nil {
			return err
		}
		if !emp.Active {
			return fmt.Errorf("%w: employee %d is inactive", payroll.ErrEmployeeNotFound, employeeID)
		}
		snap.employee = emp
		return nil
	})
	g.Go(func() error {
		services, err := s.payrollRepo.ListServices(gctx, true)
		if err != nil {
			return fmt.Errorf("failed to list services: %w", err)
		}
		snap.services = services
		return nil
	})
	g.Go(func() error {
		invoices, err := s.payrollRepo.ListCreditableInvoices(gctx, employeeID, period)
		if err != nil {
			return fmt.Errorf("failed to list invoices: %w", err)
		}
		snap.invoices = invoices
		return nil
	})
	g.Go(func() error {
		overtime, err := s.payrollRepo.ListOvertimeRecords(gctx, employeeID, period)
		if err != nil {
			return fmt.Errorf("failed to list overtime records: %w", err)
		}
		snap.overtime = overtime
		return nil
	})

	if err := g.Wait(); err != nil {
		return snapshot{}, err
	}
	return snap, nil
}

// filterInvoices re-applies the paid / Vietnam-local month rules, dedups by id and
// orders by (created_at, id).
func filterInvoices(invoices []payroll.Invoice, period payroll.Period) ([]payroll.Invoice, []payroll.Diagnostic) {
	var diags []payroll.Diagnostic
	seen := make(map[int64]bool, len(invoices))
	kept := make([]payroll.Invoice, 0, len(invoices))

	for _, inv := range invoices {
		if seen[inv.ID] {
			continue
		}
		seen[inv.ID] = true

		if inv.PaymentStatus != payroll.PaymentStatusPaid {
			diags = append(diags, newDiagnostic(payroll.DiagnosticInvoiceNotPaid, &inv.ID, "",
				"invoice status is %q", inv.PaymentStatus))
			continue
		}
		if !period.Contains(inv.CreatedAt) {
			diags = append(diags, newDiagnostic(payroll.DiagnosticInvoiceOutOfPeriod, &inv.ID, "",
				"invoice created %s (Vietnam time) is outside %s",
				payroll.ToVietnamLocalDate(inv.CreatedAt).Format(time.RFC3339), period))
			continue
		}
		kept = append(kept, inv)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		if !kept[i].CreatedAt.Equal(kept[j].CreatedAt) {
			return kept[i].CreatedAt.Before(kept[j].CreatedAt)
		}
		return kept[i].ID < kept[j].ID
	})
	return kept, diags
}

func computeInvoice(calc *CommissionCalculator, inv payroll.Invoice, items []payroll.InvoiceLineItem, emp payroll.Employee) invoiceResult {
	source, diags := ResolveCreditSource(inv, items)
	if conflict := DetectSourceConflict(inv, items, emp); conflict != nil {
		diags = append(diags, *conflict)
	}

	commission := calc.Calculate(inv.ID, source.Credits(emp))
	diags = append(diags, commission.Diagnostics...)

	return invoiceResult{
		breakdown: payroll.InvoiceBreakdown{
			InvoiceID:    inv.ID,
			CreatedAt:    payroll.ToVietnamLocalDate(inv.CreatedAt).Format(time.RFC3339),
			TotalAmount:  inv.TotalAmount,
			CreditSource: source.Kind(),
			Services:     commission.Lines,
			Commission:   commission.Total,
		},
		legacyTotal: commission.LegacyDefaultTotal,
		diagnostics: diags,
	}
}

// ReportID is stable for an employee and period so repeated runs produce identical reports.
func ReportID(employeeID int64, period payroll.Period) string {
	return uuid.NewSHA1(reportNamespace, []byte(fmt.Sprintf("%d:%s", employeeID, period))).String()
}
