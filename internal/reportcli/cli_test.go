package reportcli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/cmlabs-hris/spa-payroll/internal/domain/payroll"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type fakePayrollService struct {
	computeFn func(ctx context.Context, employeeID int64, period string) (payroll.PayrollReport, error)
}

func (f *fakePayrollService) ComputePayroll(ctx context.Context, employeeID int64, period string) (payroll.PayrollReport, error) {
	return f.computeFn(ctx, employeeID, period)
}

func TestParseArgs(t *testing.T) {
	opts, err := ParseArgs([]string{"-employee", "12", "-period", "2025-02"}, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, Options{EmployeeID: 12, Period: "2025-02", Format: FormatJSON}, opts)

	opts, err = ParseArgs([]string{"-employee=3", "-period=2025-01", "-format=xlsx", "-out=r.xlsx"}, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, opts.Format)
	assert.Equal(t, "r.xlsx", opts.Output)

	_, err = ParseArgs([]string{"-period", "2025-02"}, io.Discard)
	assert.True(t, errors.Is(err, ErrUsage))

	_, err = ParseArgs([]string{"-employee", "1", "-period", "2025-02", "-format", "csv"}, io.Discard)
	assert.True(t, errors.Is(err, ErrUsage))
}

func TestRender(t *testing.T) {
	svc := &fakePayrollService{computeFn: func(ctx context.Context, employeeID int64, period string) (payroll.PayrollReport, error) {
		return payroll.PayrollReport{
			Employee:    payroll.EmployeeSnapshot{ID: employeeID, Code: "NV012"},
			Period:      period,
			BaseSalary:  5000000,
			TotalSalary: 5005000,
			Invoices:    []payroll.InvoiceBreakdown{},
			Overtime:    []payroll.OvertimeBreakdown{},
			Diagnostics: []payroll.Diagnostic{},
		}, nil
	}}

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		_, err := Render(context.Background(), svc, Options{EmployeeID: 12, Period: "2025-02", Format: FormatJSON}, &buf)
		require.NoError(t, err)

		var got map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
		assert.Equal(t, float64(5005000), got["totalSalary"])
		assert.Equal(t, "2025-02", got["period"])
	})

	t.Run("xlsx", func(t *testing.T) {
		var buf bytes.Buffer
		_, err := Render(context.Background(), svc, Options{EmployeeID: 12, Period: "2025-02", Format: FormatXLSX}, &buf)
		require.NoError(t, err)

		f, err := excelize.OpenReader(&buf)
		require.NoError(t, err)
		defer f.Close()
		v, err := f.GetCellValue("Summary", "B7")
		require.NoError(t, err)
		assert.Equal(t, "5005000", v)
	})

	t.Run("service error", func(t *testing.T) {
		failing := &fakePayrollService{computeFn: func(ctx context.Context, employeeID int64, period string) (payroll.PayrollReport, error) {
			return payroll.PayrollReport{}, payroll.ErrEmployeeNotFound
		}}
		var buf bytes.Buffer
		_, err := Render(context.Background(), failing, Options{EmployeeID: 99, Period: "2025-02", Format: FormatJSON}, &buf)
		assert.True(t, errors.Is(err, payroll.ErrEmployeeNotFound))
		assert.Zero(t, buf.Len())
	})
}
