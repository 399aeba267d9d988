package payroll

import (
	"github.com/cmlabs-hris/spa-payroll/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========== REQUEST DTOs ==========

type ComputePayrollRequest struct {
	EmployeeID int64  `json:"employee_id"`
	Period     string `json:"period"`
}

func (r *ComputePayrollRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.EmployeeID <= 0 {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "must be a positive integer"})
	}
	if validator.IsEmpty(r.Period) {
		errs = append(errs, validator.ValidationError{Field: "period", Message: "is required"})
	} else if _, err := ParsePeriod(r.Period); err != nil {
		errs = append(errs, validator.ValidationError{Field: "period", Message: "must be YYYY-MM"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ========== REPORT DTOs ==========

// PriceSource tells auditors where a line's unit price came from.
type PriceSource string

const (
	PriceSourceCatalog       PriceSource = "catalog"
	PriceSourceLegacyDefault PriceSource = "legacyDefault"
	PriceSourceInvoiceItem   PriceSource = "invoiceItem"
)

// CreditSourceKind names the invoice shape commission was derived from.
type CreditSourceKind string

const (
	CreditSourceMapping CreditSourceKind = "mapping"
	CreditSourceLegacy  CreditSourceKind = "legacy"
	CreditSourceItems   CreditSourceKind = "items"
	CreditSourceNone    CreditSourceKind = "none"
)

type EmployeeSnapshot struct {
	ID                    int64           `json:"id"`
	Code                  string          `json:"code"`
	Name                  string          `json:"name"`
	BaseSalary            int64           `json:"baseSalary"`
	DefaultCommissionRate decimal.Decimal `json:"defaultCommissionRate"`
	Active                bool            `json:"active"`
}

type ServiceCommission struct {
	Service        string          `json:"service"`
	Quantity       int             `json:"quantity"`
	UnitPrice      int64           `json:"unitPrice"`
	CommissionRate decimal.Decimal `json:"commissionRate"`
	CreditShare    decimal.Decimal `json:"creditShare"`
	Commission     int64           `json:"commission"`
	PriceSource    PriceSource     `json:"priceSource"`
}

type InvoiceBreakdown struct {
	InvoiceID    int64               `json:"invoiceId"`
	CreatedAt    string              `json:"createdAt"` // Vietnam local, RFC3339
	TotalAmount  int64               `json:"totalAmount"`
	CreditSource CreditSourceKind    `json:"creditSource"`
	Services     []ServiceCommission `json:"services"`
	Commission   int64               `json:"commission"`
}

type OvertimeBreakdown struct {
	Date        string          `json:"date"`
	Hours       decimal.Decimal `json:"hours"`
	HourlyRate  int64           `json:"hourlyRate"`
	TotalAmount int64           `json:"totalAmount"`
}

type PayrollSummary struct {
	InvoiceCount                int   `json:"invoiceCount"`
	CreditedInvoiceCount        int   `json:"creditedInvoiceCount"`
	TotalRevenue                int64 `json:"totalRevenue"`
	AverageCommissionPerInvoice int64 `json:"averageCommissionPerInvoice"`
	LegacyDefaultCommission     int64 `json:"legacyDefaultCommission"`
	DiagnosticCount             int   `json:"diagnosticCount"`
}

type Diagnostic struct {
	Kind      DiagnosticKind `json:"kind"`
	InvoiceID *int64         `json:"invoiceId,omitempty"`
	Service   string         `json:"service,omitempty"`
	Message   string         `json:"message"`
}

// PayrollReport - Computed, never persisted
type PayrollReport struct {
	ReportID            string              `json:"reportId"`
	Employee            EmployeeSnapshot    `json:"employee"`
	Period              string              `json:"period"`
	BaseSalary          int64               `json:"baseSalary"`
	TotalCommission     int64               `json:"totalCommission"`
	TotalOvertimeAmount int64               `json:"totalOvertimeAmount"`
	TotalSalary         int64               `json:"totalSalary"`
	Invoices            []InvoiceBreakdown  `json:"invoices"`
	Overtime            []OvertimeBreakdown `json:"overtime"`
	Summary             PayrollSummary      `json:"summary"`
	Diagnostics         []Diagnostic        `json:"diagnostics"`
}
