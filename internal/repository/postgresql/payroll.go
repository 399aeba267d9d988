package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/spa-payroll/internal/domain/payroll"
	"github.com/cmlabs-hris/spa-payroll/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type payrollRepository struct {
	db database.Querier
}

func NewPayrollRepository(db database.Querier) payroll.PayrollRepository {
	return &payrollRepository{db: db}
}

// ========== EMPLOYEES ==========

func (r *payrollRepository) GetEmployee(ctx context.Context, id int64) (payroll.Employee, error) {
	query := `
		SELECT id, employee_code, name, base_salary, commission_rate, is_active
		FROM employees
		WHERE id = $1
	`

	var e payroll.Employee
	err := r.db.QueryRow(ctx, query, id).Scan(
		&e.ID, &e.Code, &e.DisplayName, &e.BaseSalary, &e.DefaultCommissionRate, &e.Active,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Employee{}, fmt.Errorf("%w: %d", payroll.ErrEmployeeNotFound, id)
		}
		return payroll.Employee{}, fmt.Errorf("failed to get employee: %w", err)
	}

	return e, nil
}

func (r *payrollRepository) ListActiveEmployeeIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.db.Query(ctx, `SELECT id FROM employees WHERE is_active = true ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list active employees: %w", err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("failed to scan employee id: %w", err)
	}
	return ids, nil
}

// ========== SERVICE CATALOG ==========

func (r *payrollRepository) ListServices(ctx context.Context, activeOnly bool) ([]payroll.ServiceDefinition, error) {
	query := `
		SELECT id, name, price, commission_rate, is_active
		FROM services
	`
	if activeOnly {
		query += " WHERE is_active = true"
	}
	query += " ORDER BY id"

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	defer rows.Close()

	var services []payroll.ServiceDefinition
	for rows.Next() {
		var s payroll.ServiceDefinition
		if err := rows.Scan(&s.ID, &s.Name, &s.UnitPrice, &s.CommissionRate, &s.Active); err != nil {
			return nil, fmt.Errorf("failed to scan service: %w", err)
		}
		services = append(services, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate services: %w", err)
	}

	return services, nil
}

// ========== INVOICES ==========

// ListCreditableInvoices unions the three ways an invoice names an employee. The
// month bounds are the Vietnam-local month converted to UTC instants, so created_at
// is never compared against a UTC calendar month.
func (r *payrollRepository) ListCreditableInvoices(ctx context.Context, employeeID int64, period payroll.Period) ([]payroll.Invoice, error) {
	start, end := period.MonthBounds()

	query := `
		SELECT i.id, i.employee_id, i.total_amount, i.payment_status, i.created_at,
			   i.dichvu, i.employee_name, i.service_employee_mapping::text
		FROM invoices i
		JOIN employees e ON e.id = $1
		WHERE i.payment_status = $2
		  AND i.created_at >= $3 AND i.created_at < $4
		  AND (
				i.employee_id = e.id
			 OR (e.name <> '' AND position(lower(e.name) in lower(coalesce(i.employee_name, ''))) > 0)
			 OR EXISTS (
					SELECT 1 FROM invoice_items ii
					WHERE ii.invoice_id = i.id AND ii.employee_id = e.id
				)
		  )
		ORDER BY i.created_at, i.id
	`

	rows, err := r.db.Query(ctx, query, employeeID, string(payroll.PaymentStatusPaid), start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	defer rows.Close()

	var invoices []payroll.Invoice
	for rows.Next() {
		var inv payroll.Invoice
		if err := rows.Scan(
			&inv.ID, &inv.EmployeeID, &inv.TotalAmount, &inv.PaymentStatus, &inv.CreatedAt,
			&inv.Dichvu, &inv.EmployeeName, &inv.ServiceEmployeeMapping,
		); err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		inv.CreatedAt = inv.CreatedAt.UTC()
		invoices = append(invoices, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate invoices: %w", err)
	}

	return invoices, nil
}

func (r *payrollRepository) ListInvoiceLineItems(ctx context.Context, invoiceIDs []int64) ([]payroll.InvoiceLineItem, error) {
	if len(invoiceIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT id, invoice_id, service_id, employee_id, quantity, unit_price
		FROM invoice_items
		WHERE invoice_id = ANY($1)
		ORDER BY invoice_id, id
	`

	rows, err := r.db.Query(ctx, query, invoiceIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoice items: %w", err)
	}
	defer rows.Close()

	var items []payroll.InvoiceLineItem
	for rows.Next() {
		var it payroll.InvoiceLineItem
		if err := rows.Scan(&it.ID, &it.InvoiceID, &it.ServiceID, &it.EmployeeID, &it.Quantity, &it.UnitPrice); err != nil {
			return nil, fmt.Errorf("failed to scan invoice item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate invoice items: %w", err)
	}

	return items, nil
}

// ========== OVERTIME ==========

// ListOvertimeRecords filters on the plain date column, overtime has no timezone shift.
func (r *payrollRepository) ListOvertimeRecords(ctx context.Context, employeeID int64, period payroll.Period) ([]payroll.OvertimeRecord, error) {
	start := time.Date(period.Year, period.Month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	query := `
		SELECT id, employee_id, date, hours, hourly_rate,
			   COALESCE(total_amount, ROUND(hours * hourly_rate)::bigint)
		FROM overtime_records
		WHERE employee_id = $1 AND date >= $2 AND date < $3
		ORDER BY date, id
	`

	rows, err := r.db.Query(ctx, query, employeeID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list overtime records: %w", err)
	}
	defer rows.Close()

	var records []payroll.OvertimeRecord
	for rows.Next() {
		var o payroll.OvertimeRecord
		if err := rows.Scan(&o.ID, &o.EmployeeID, &o.Date, &o.Hours, &o.HourlyRate, &o.TotalAmount); err != nil {
			return nil, fmt.Errorf("failed to scan overtime record: %w", err)
		}
		records = append(records, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate overtime records: %w", err)
	}

	return records, nil
}
