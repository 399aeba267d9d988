package cron

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/spa-payroll/internal/domain/payroll"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmployeeLister struct {
	ids []int64
	err error
}

func (f *fakeEmployeeLister) ListActiveEmployeeIDs(ctx context.Context) ([]int64, error) {
	return f.ids, f.err
}

type fakeRefresher struct {
	mu      sync.Mutex
	calls   []int64
	periods []string
	failFor int64
}

func (f *fakeRefresher) Refresh(ctx context.Context, employeeID int64, period string) (payroll.PayrollReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, employeeID)
	f.periods = append(f.periods, period)
	if employeeID == f.failFor {
		return payroll.PayrollReport{}, payroll.ErrEmployeeNotFound
	}
	return payroll.PayrollReport{Period: period}, nil
}

func TestPayrollJobs_WarmCurrentPeriod(t *testing.T) {
	refresher := &fakeRefresher{failFor: 2}
	jobs := NewPayrollJobs(&fakeEmployeeLister{ids: []int64{1, 2, 3}}, refresher, 2)
	// 2025-02-28T18:00Z is already March in Vietnam
	jobs.now = func() time.Time { return time.Date(2025, 2, 28, 18, 0, 0, 0, time.UTC) }

	require.NoError(t, jobs.WarmCurrentPeriod(context.Background()))

	sort.Slice(refresher.calls, func(i, j int) bool { return refresher.calls[i] < refresher.calls[j] })
	assert.Equal(t, []int64{1, 2, 3}, refresher.calls)
	for _, p := range refresher.periods {
		assert.Equal(t, "2025-03", p)
	}
}

func TestPayrollJobs_ListFailure(t *testing.T) {
	jobs := NewPayrollJobs(&fakeEmployeeLister{err: errors.New("db down")}, &fakeRefresher{}, 1)

	err := jobs.WarmCurrentPeriod(context.Background())
	assert.ErrorContains(t, err, "db down")
}

func TestScheduler_RunOnce(t *testing.T) {
	s := NewScheduler()
	runs := 0
	s.AddJob("count", time.Hour, func(ctx context.Context) error {
		runs++
		return nil
	})
	s.AddJob("ignored", 0, func(ctx context.Context) error {
		runs += 100
		return nil
	})

	s.RunOnce(context.Background())
	assert.Equal(t, 1, runs)
}

func TestScheduler_StartStop(t *testing.T) {
	s := NewScheduler()
	started := make(chan struct{}, 1)
	s.AddJob("tick", time.Hour, func(ctx context.Context) error {
		select {
		case started <- struct{}{}:
		default:
		}
		return nil
	})

	s.Start(context.Background())
	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("job did not run on start")
	}
	s.Stop()
	// second stop is a no-op
	s.Stop()
}
