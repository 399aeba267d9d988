package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// Employee - Staff member as seen by payroll (read-only here)
type Employee struct {
	ID          int64
	Code        string
	DisplayName string
	BaseSalary  int64
	// Shown on reports only, per-service rates come from the catalog
	DefaultCommissionRate decimal.Decimal
	Active                bool
}

// ServiceDefinition - Catalog entry. Name is the join key for legacy invoices.
type ServiceDefinition struct {
	ID             int64
	Name           string
	UnitPrice      int64
	CommissionRate decimal.Decimal // percentage, 0-100
	Active         bool
}

// PaymentStatus enum
type PaymentStatus string

const (
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusPending PaymentStatus = "pending"
)

// Invoice - POS invoice. Three historical shapes carry the service/employee credit:
// ServiceEmployeeMapping (current), Dichvu + EmployeeName (legacy) and
// invoice_items.employee_id (oldest).
type Invoice struct {
	ID            int64
	EmployeeID    *int64
	TotalAmount   int64
	PaymentStatus PaymentStatus
	CreatedAt     time.Time // UTC

	Dichvu                 *string // e.g. "2TI,1BÔNG"
	EmployeeName           *string // e.g. "An,Binh"
	ServiceEmployeeMapping *string // raw JSON array of MappingEntry
}

// MappingEntry - One element of invoices.service_employee_mapping
type MappingEntry struct {
	Service         string          `json:"service"`
	Employees       []string        `json:"employees"`
	TotalQuantity   int             `json:"total_quantity"`
	CommissionSplit decimal.Decimal `json:"commission_split"`
}

// InvoiceLineItem - invoice_items row. ServiceID may point at a food/buffet item on old rows.
type InvoiceLineItem struct {
	ID         int64
	InvoiceID  int64
	ServiceID  *int64
	EmployeeID *int64
	Quantity   int
	UnitPrice  int64
}

// OvertimeRecord - Overtime entry, Date is a plain calendar date
type OvertimeRecord struct {
	ID          int64
	EmployeeID  int64
	Date        time.Time
	Hours       decimal.Decimal
	HourlyRate  int64
	TotalAmount int64
}
