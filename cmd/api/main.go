package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/spa-payroll/internal/config"
	"github.com/cmlabs-hris/spa-payroll/internal/domain/payroll"
	appHTTP "github.com/cmlabs-hris/spa-payroll/internal/handler/http"
	"github.com/cmlabs-hris/spa-payroll/internal/pkg/cache"
	"github.com/cmlabs-hris/spa-payroll/internal/pkg/cron"
	"github.com/cmlabs-hris/spa-payroll/internal/pkg/database"
	"github.com/cmlabs-hris/spa-payroll/internal/repository/postgresql"
	payrollService "github.com/cmlabs-hris/spa-payroll/internal/service/payroll"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL())
	if err != nil {
		return fmt.Errorf("error connecting to database: %w", err)
	}
	defer db.Close()

	payrollRepo := postgresql.NewPayrollRepository(db)
	baseSvc := payrollService.NewPayrollService(payrollRepo, cfg.Payroll)

	var payrollSvc payroll.PayrollService = baseSvc
	scheduler := cron.NewScheduler()

	if cfg.Redis.Addr != "" {
		rdb, err := cache.NewRedisClient(cfg.Redis)
		if err != nil {
			return err
		}
		defer rdb.Close()

		cachedSvc := payrollService.NewCachedPayrollService(baseSvc, cache.NewReportCache(rdb, cfg.Redis.TTL))
		payrollSvc = cachedSvc

		if cfg.Payroll.WarmupInterval > 0 {
			cron.NewPayrollJobs(payrollRepo, cachedSvc, cfg.Payroll.Workers).
				RegisterJobs(scheduler, cfg.Payroll.WarmupInterval)
		}
	}

	scheduler.Start(ctx)
	defer scheduler.Stop()

	payrollHandler := appHTTP.NewPayrollHandler(payrollSvc)
	router := appHTTP.NewRouter(cfg.App, payrollHandler)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server running", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	slog.Info("Shutting down server")
	return srv.Shutdown(shutdownCtx)
}
