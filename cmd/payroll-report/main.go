package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/cmlabs-hris/spa-payroll/internal/config"
	"github.com/cmlabs-hris/spa-payroll/internal/pkg/database"
	"github.com/cmlabs-hris/spa-payroll/internal/pkg/export"
	"github.com/cmlabs-hris/spa-payroll/internal/reportcli"
	"github.com/cmlabs-hris/spa-payroll/internal/repository/postgresql"
	payrollService "github.com/cmlabs-hris/spa-payroll/internal/service/payroll"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, reportcli.ErrUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(args []string) error {
	opts, err := reportcli.ParseArgs(args, os.Stderr)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	// stdout carries the report, logs go to stderr
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL())
	if err != nil {
		return fmt.Errorf("error connecting to database: %w", err)
	}
	defer db.Close()

	svc := payrollService.NewPayrollService(postgresql.NewPayrollRepository(db), cfg.Payroll)

	var buf bytes.Buffer
	report, err := reportcli.Render(ctx, svc, opts, &buf)
	if err != nil {
		return err
	}

	out := opts.Output
	if out == "" && opts.Format == reportcli.FormatXLSX {
		out = export.FileName(report)
	}
	if out == "" {
		_, err = io.Copy(os.Stdout, &buf)
		return err
	}
	if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	fmt.Fprintf(os.Stderr, "wrote %s\n", out)
	return nil
}
