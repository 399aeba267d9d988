package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/spa-payroll/internal/domain/payroll"
	"github.com/cmlabs-hris/spa-payroll/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		BadRequest(w, "Validation failed", validationErrs.ToMap())
		return
	}

	switch {
	// Payroll domain errors
	case errors.Is(err, payroll.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, payroll.ErrInvalidPeriod):
		BadRequest(w, "Invalid period, expected YYYY-MM", nil)

	// Default
	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
