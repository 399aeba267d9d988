package http

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/spa-payroll/internal/domain/payroll"
	"github.com/cmlabs-hris/spa-payroll/internal/handler/http/response"
	"github.com/cmlabs-hris/spa-payroll/internal/pkg/export"
	"github.com/cmlabs-hris/spa-payroll/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

type PayrollHandler interface {
	GetPayroll(w http.ResponseWriter, r *http.Request)
	ExportPayroll(w http.ResponseWriter, r *http.Request)
}

type payrollHandlerImpl struct {
	payrollService payroll.PayrollService
}

func NewPayrollHandler(payrollService payroll.PayrollService) PayrollHandler {
	return &payrollHandlerImpl{payrollService: payrollService}
}

func (h *payrollHandlerImpl) GetPayroll(w http.ResponseWriter, r *http.Request) {
	req, ok := parseComputeRequest(w, r)
	if !ok {
		return
	}

	result, err := h.payrollService.ComputePayroll(r.Context(), req.EmployeeID, req.Period)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) ExportPayroll(w http.ResponseWriter, r *http.Request) {
	req, ok := parseComputeRequest(w, r)
	if !ok {
		return
	}

	result, err := h.payrollService.ComputePayroll(r.Context(), req.EmployeeID, req.Period)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	// render fully before writing headers so a failure can still return JSON
	var buf bytes.Buffer
	if err := export.WritePayrollXLSX(&buf, result); err != nil {
		slog.Error("Failed to render payroll workbook", "employee_id", req.EmployeeID, "error", err)
		response.InternalServerError(w, "Failed to render payroll workbook")
		return
	}

	w.Header().Set("Content-Type", export.ContentTypeXLSX)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName(result)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func parseComputeRequest(w http.ResponseWriter, r *http.Request) (payroll.ComputePayrollRequest, bool) {
	idParam := chi.URLParam(r, "employeeID")
	employeeID, ok := validator.ParseID(idParam)
	if !ok {
		response.BadRequest(w, "Employee ID must be a positive integer", nil)
		return payroll.ComputePayrollRequest{}, false
	}

	req := payroll.ComputePayrollRequest{
		EmployeeID: employeeID,
		Period:     r.URL.Query().Get("period"),
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return payroll.ComputePayrollRequest{}, false
	}
	return req, true
}
