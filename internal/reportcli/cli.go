package reportcli

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/cmlabs-hris/spa-payroll/internal/domain/payroll"
	"github.com/cmlabs-hris/spa-payroll/internal/pkg/export"
)

var ErrUsage = errors.New("usage")

const (
	FormatJSON = "json"
	FormatXLSX = "xlsx"
)

type Options struct {
	EmployeeID int64
	Period     string
	Format     string
	Output     string
}

// ParseArgs reads the payroll-report flags.
func ParseArgs(args []string, stderr io.Writer) (Options, error) {
	fs := flag.NewFlagSet("payroll-report", flag.ContinueOnError)
	fs.SetOutput(stderr)
	employeeID := fs.Int64("employee", 0, "employee id")
	period := fs.String("period", "", "payroll month, YYYY-MM")
	format := fs.String("format", FormatJSON, "output format: json | xlsx")
	output := fs.String("out", "", "output file (default stdout, or payroll-<code>-<period>.xlsx for xlsx)")
	if err := fs.Parse(args); err != nil {
		return Options{}, err
	}

	opts := Options{EmployeeID: *employeeID, Period: *period, Format: *format, Output: *output}
	if opts.EmployeeID <= 0 || opts.Period == "" {
		return Options{}, fmt.Errorf("%w: payroll-report -employee <id> -period <YYYY-MM> [-format json|xlsx] [-out file]", ErrUsage)
	}
	if opts.Format != FormatJSON && opts.Format != FormatXLSX {
		return Options{}, fmt.Errorf("%w: unknown format %q", ErrUsage, opts.Format)
	}
	return opts, nil
}

// Render computes one report and writes it to w in the requested format.
func Render(ctx context.Context, svc payroll.PayrollService, opts Options, w io.Writer) (payroll.PayrollReport, error) {
	report, err := svc.ComputePayroll(ctx, opts.EmployeeID, opts.Period)
	if err != nil {
		return payroll.PayrollReport{}, err
	}

	switch opts.Format {
	case FormatXLSX:
		if err := export.WritePayrollXLSX(w, report); err != nil {
			return payroll.PayrollReport{}, err
		}
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return payroll.PayrollReport{}, fmt.Errorf("encode report: %w", err)
		}
	}
	return report, nil
}
