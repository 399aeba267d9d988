package cron

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/cmlabs-hris/spa-payroll/internal/domain/payroll"
	"golang.org/x/sync/errgroup"
)

type EmployeeLister interface {
	ListActiveEmployeeIDs(ctx context.Context) ([]int64, error)
}

type ReportRefresher interface {
	Refresh(ctx context.Context, employeeID int64, period string) (payroll.PayrollReport, error)
}

// PayrollJobs keeps the report cache warm for the current Vietnam-local month.
type PayrollJobs struct {
	employees EmployeeLister
	reports   ReportRefresher
	workers   int
	now       func() time.Time
}

func NewPayrollJobs(employees EmployeeLister, reports ReportRefresher, workers int) *PayrollJobs {
	if workers < 1 {
		workers = 1
	}
	return &PayrollJobs{
		employees: employees,
		reports:   reports,
		workers:   workers,
		now:       time.Now,
	}
}

func (j *PayrollJobs) RegisterJobs(scheduler *Scheduler, interval time.Duration) {
	scheduler.AddJob("warm_payroll_reports", interval, j.WarmCurrentPeriod)
}

// WarmCurrentPeriod recomputes every active employee's report for the running month.
// A failed employee is logged and skipped.
func (j *PayrollJobs) WarmCurrentPeriod(ctx context.Context) error {
	local := payroll.ToVietnamLocalDate(j.now())
	period := payroll.Period{Year: local.Year(), Month: local.Month()}.String()

	ids, err := j.employees.ListActiveEmployeeIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list active employees: %w", err)
	}

	var failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(j.workers)
	for _, id := range ids {
		g.Go(func() error {
			if _, err := j.reports.Refresh(gctx, id, period); err != nil {
				failed.Add(1)
				slog.WarnContext(gctx, "Payroll warm-up failed", "employee_id", id, "period", period, "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return err
	}
	slog.Info("Payroll reports warmed", "period", period, "employees", len(ids), "failed", failed.Load())
	return nil
}
