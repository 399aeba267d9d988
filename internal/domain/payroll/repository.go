package payroll

import "context"

// PayrollRepository defines the read-only data access the payroll engine needs.
type PayrollRepository interface {
	// GetEmployee returns ErrEmployeeNotFound when no row exists
	GetEmployee(ctx context.Context, id int64) (Employee, error)
	ListActiveEmployeeIDs(ctx context.Context) ([]int64, error)

	ListServices(ctx context.Context, activeOnly bool) ([]ServiceDefinition, error)

	// ListCreditableInvoices returns paid invoices in the Vietnam-local month associated with
	// the employee by invoice item, by employee_name membership or by invoices.employee_id,
	// deduplicated by invoice id.
	ListCreditableInvoices(ctx context.Context, employeeID int64, period Period) ([]Invoice, error)
	ListInvoiceLineItems(ctx context.Context, invoiceIDs []int64) ([]InvoiceLineItem, error)

	ListOvertimeRecords(ctx context.Context, employeeID int64, period Period) ([]OvertimeRecord, error)
}
