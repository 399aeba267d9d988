package payroll

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/cmlabs-hris/spa-payroll/internal/domain/payroll"
	"github.com/cmlabs-hris/spa-payroll/internal/pkg/cache"
)

// CachedPayrollService serves reports from redis when present. Reports are deterministic
// for a data snapshot, so a cached copy differs only if the data changed within the TTL.
type CachedPayrollService struct {
	next  payroll.PayrollService
	cache *cache.ReportCache
}

func NewCachedPayrollService(next payroll.PayrollService, reportCache *cache.ReportCache) *CachedPayrollService {
	return &CachedPayrollService{next: next, cache: reportCache}
}

func (s *CachedPayrollService) ComputePayroll(ctx context.Context, employeeID int64, period string) (payroll.PayrollReport, error) {
	// malformed periods go straight through so the caller gets ErrInvalidPeriod
	p, err := payroll.ParsePeriod(period)
	if err != nil {
		return s.next.ComputePayroll(ctx, employeeID, period)
	}
	key := p.String()

	raw, found, err := s.cache.Get(ctx, employeeID, key)
	if err != nil {
		slog.WarnContext(ctx, "Report cache read failed", "employee_id", employeeID, "period", key, "error", err)
	}
	if found {
		var report payroll.PayrollReport
		if err := json.Unmarshal(raw, &report); err == nil {
			return report, nil
		}
		slog.WarnContext(ctx, "Discarding undecodable cached report", "employee_id", employeeID, "period", key)
	}

	return s.Refresh(ctx, employeeID, key)
}

// Refresh recomputes the report and overwrites the cached copy.
func (s *CachedPayrollService) Refresh(ctx context.Context, employeeID int64, period string) (payroll.PayrollReport, error) {
	report, err := s.next.ComputePayroll(ctx, employeeID, period)
	if err != nil {
		return payroll.PayrollReport{}, err
	}

	payload, err := json.Marshal(report)
	if err != nil {
		slog.WarnContext(ctx, "Failed to encode report for cache", "employee_id", employeeID, "error", err)
		return report, nil
	}
	if err := s.cache.Set(ctx, employeeID, report.Period, payload); err != nil {
		slog.WarnContext(ctx, "Report cache write failed", "employee_id", employeeID, "period", report.Period, "error", err)
	}
	return report, nil
}
