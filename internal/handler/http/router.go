package http

import (
	"log/slog"
	"os"

	"github.com/cmlabs-hris/spa-payroll/internal/config"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
)

func NewRouter(cfg config.AppConfig, payrollHandler PayrollHandler) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(cfg.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "spa-payroll"),
		slog.String("version", "v1.0.0"),
		slog.String("env", cfg.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/payroll/employees/{employeeID}", func(r chi.Router) {
			r.Get("/", payrollHandler.GetPayroll)
			r.Get("/export", payrollHandler.ExportPayroll)
		})
	})

	return r
}
