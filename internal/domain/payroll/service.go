package payroll

import "context"

type PayrollService interface {
	ComputePayroll(ctx context.Context, employeeID int64, period string) (PayrollReport, error)
}
